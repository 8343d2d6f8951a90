// Package cart keeps the per-session shopping cart and favorites list.
//
// A cart maps game ids to a quantity, which is always 1 because a game can
// only be bought once. Favorites are an ordered list of game ids.
package cart

import (
	"context"
	"sort"
)

// Store holds carts and favorites keyed by an opaque session id.
type Store interface {
	// Cart returns the session's cart. A missing session has an empty cart.
	Cart(ctx context.Context, sessionID string) (map[uint]int, error)
	// MergeCart adds games with quantity 1, keeping entries already present.
	MergeCart(ctx context.Context, sessionID string, gameIDs ...uint) error
	RemoveFromCart(ctx context.Context, sessionID string, gameID uint) error
	ClearCart(ctx context.Context, sessionID string) error

	// Favorites returns favorite game ids in the order they were added.
	Favorites(ctx context.Context, sessionID string) ([]uint, error)
	AddFavorite(ctx context.Context, sessionID string, gameID uint) error
	RemoveFavorite(ctx context.Context, sessionID string, gameID uint) error
}

// GameIDs returns the ids in a cart in ascending order.
func GameIDs(cart map[uint]int) []uint {
	ids := make([]uint, 0, len(cart))
	for id := range cart {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
