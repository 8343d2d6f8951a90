package models

import "time"

// Friend is a directed edge meaning UserID considers FriendID a confirmed
// friend. Edges are always written in symmetric pairs.
// The primary key is a composite of (UserID, FriendID) to ensure uniqueness.
type Friend struct {
	UserID    uint `gorm:"primaryKey"`
	FriendID  uint `gorm:"primaryKey;index"`
	CreatedAt time.Time

	User       User `gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	FriendUser User `gorm:"foreignKey:FriendID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}
