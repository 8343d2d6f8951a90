package models

import "time"

// User is the identity principal. Users are hard-deleted so that the
// database cascades remove their profile, friend edges and requests.
type User struct {
	ID           uint   `gorm:"primaryKey"`
	Username     string `gorm:"size:150;unique;not null"`
	Email        string `gorm:"size:255;index"`
	PasswordHash string `gorm:"size:255;not null"`
	Role         string `gorm:"size:50;not null;default:'user';index"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Profile Profile `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

const RoleAdmin = "admin"
