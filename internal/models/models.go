package models

// All lists every model in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Profile{},
		&Game{},
		&GameScreenshot{},
		&Review{},
		&PurchasedGame{},
		&Friend{},
		&FriendRequest{},
		&Message{},
	}
}
