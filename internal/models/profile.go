package models

import (
	"time"

	"gamevault/backend/internal/presence"
)

// PresenceStatus is the last explicit state written on login or logout.
type PresenceStatus string

const (
	StatusOnline  PresenceStatus = "online"
	StatusOffline PresenceStatus = "offline"
)

const DefaultAvatar = "avatars/default.png"

// Profile is owned by exactly one User.
type Profile struct {
	ID        uint           `gorm:"primaryKey"`
	UserID    uint           `gorm:"not null;uniqueIndex"`
	Nickname  string         `gorm:"size:50;unique;not null"`
	Avatar    string         `gorm:"size:255;not null;default:'avatars/default.png'"`
	Bio       string         `gorm:"type:text"`
	Status    PresenceStatus `gorm:"size:10;not null;default:'offline'"`
	LastSeen  time.Time      `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsOnline derives online-ness from LastSeen; Status is not trusted.
func (p Profile) IsOnline(now time.Time) bool {
	return presence.IsOnline(p.LastSeen, now)
}
