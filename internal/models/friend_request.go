package models

import (
	"time"

	"gorm.io/gorm"
)

// FriendRequestStatus defines the state of a friend request.
type FriendRequestStatus string

const (
	// RequestPending is the only status a stored request ever has: resolving a
	// request deletes its row.
	RequestPending  FriendRequestStatus = "pending"
	RequestAccepted FriendRequestStatus = "accepted"
	RequestRejected FriendRequestStatus = "rejected"
)

// FriendRequest is a pending, directed proposal from Sender to Receiver.
//
// PairLow/PairHigh hold the two user ids in ascending order. Their unique
// index allows a single request per unordered pair, so two users sending
// each other requests at the same moment cannot both persist one.
type FriendRequest struct {
	ID         uint                `gorm:"primaryKey"`
	SenderID   uint                `gorm:"not null;uniqueIndex:idx_friend_requests_sender_receiver"`
	ReceiverID uint                `gorm:"not null;uniqueIndex:idx_friend_requests_sender_receiver;index"`
	PairLow    uint                `gorm:"not null;uniqueIndex:idx_friend_requests_pair"`
	PairHigh   uint                `gorm:"not null;uniqueIndex:idx_friend_requests_pair"`
	Status     FriendRequestStatus `gorm:"type:varchar(10);not null;default:'pending'"`
	CreatedAt  time.Time

	Sender   User `gorm:"foreignKey:SenderID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Receiver User `gorm:"foreignKey:ReceiverID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

// BeforeCreate fills the canonical pair columns.
func (r *FriendRequest) BeforeCreate(_ *gorm.DB) error {
	r.PairLow, r.PairHigh = OrderedPair(r.SenderID, r.ReceiverID)
	if r.Status == "" {
		r.Status = RequestPending
	}
	return nil
}

// OrderedPair returns a and b in ascending order.
func OrderedPair(a, b uint) (uint, uint) {
	if a > b {
		return b, a
	}
	return a, b
}
