package models

import "gorm.io/gorm"

// Game represents a game in the catalog. Prices are in minor currency units.
type Game struct {
	gorm.Model
	Title       string `gorm:"size:100;not null;index"`
	Description string `gorm:"type:text"`
	Genre       string `gorm:"size:50;index"`
	ReleaseYear int
	Rating      float64 `gorm:"not null;default:0"`
	Image       string  `gorm:"size:255"`
	Price       int64   `gorm:"not null;default:0"`
	Discount    int     `gorm:"not null;default:0"` // percent

	Screenshots []GameScreenshot `gorm:"constraint:OnDelete:CASCADE;"`
	Reviews     []Review         `gorm:"constraint:OnDelete:CASCADE;"`
}

// SellPrice is the discounted price in minor units, truncated.
func (g Game) SellPrice() int64 {
	if g.Discount > 0 {
		return g.Price * int64(100-g.Discount) / 100
	}
	return g.Price
}

// GameScreenshot is an image attached to a game.
type GameScreenshot struct {
	gorm.Model
	GameID uint   `gorm:"not null;index"`
	Image  string `gorm:"size:255;not null"`
}

// Review is a rated comment on a game.
type Review struct {
	gorm.Model
	GameID uint   `gorm:"not null;index"`
	Text   string `gorm:"type:text;not null"`
	Rating int    `gorm:"not null"`
}
