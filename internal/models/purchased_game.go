package models

import "time"

// PurchasedGame records that a user owns a game.
type PurchasedGame struct {
	ID          uint      `gorm:"primaryKey"`
	UserID      uint      `gorm:"not null;uniqueIndex:idx_purchased_games_user_game"`
	GameID      uint      `gorm:"not null;uniqueIndex:idx_purchased_games_user_game"`
	PurchasedAt time.Time `gorm:"autoCreateTime"`

	User User `gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Game Game `gorm:"foreignKey:GameID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}
