package models

import "time"

// Message is a direct chat message between two friends. Only IsRead may
// change after creation, and nothing sets it yet.
type Message struct {
	ID         uint      `gorm:"primaryKey"`
	SenderID   uint      `gorm:"not null;index:idx_messages_conversation,priority:1"`
	ReceiverID uint      `gorm:"not null;index:idx_messages_conversation,priority:2"`
	Text       string    `gorm:"type:text;not null"`
	Timestamp  time.Time `gorm:"column:sent_at;not null;index:idx_messages_conversation,priority:3"`
	IsRead     bool      `gorm:"not null;default:false"`

	Sender   User `gorm:"foreignKey:SenderID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Receiver User `gorm:"foreignKey:ReceiverID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}
