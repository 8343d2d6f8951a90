// Package checkout turns a session cart into a payment session and, once
// paid, into owned games.
package checkout

import (
	"context"

	"gamevault/backend/internal/apperr"
	"gamevault/backend/internal/cart"
	"gamevault/backend/internal/logging"
	"gamevault/backend/internal/metrics"
	"gamevault/backend/internal/models"
	"gamevault/backend/internal/payment"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrEmptyCart is returned when there is nothing to pay for.
var ErrEmptyCart = errors.New("cart is empty")

// ErrGateway wraps failures of the payment provider.
var ErrGateway = errors.New("payment provider unavailable")

type Service struct {
	db       *gorm.DB
	carts    cart.Store
	gateway  payment.Gateway
	currency string
}

func NewService(db *gorm.DB, carts cart.Store, gateway payment.Gateway, currency string) *Service {
	return &Service{db: db, carts: carts, gateway: gateway, currency: currency}
}

// Summary is the priced content of a cart.
type Summary struct {
	Games []models.Game
	// Total is the sum of sell prices in minor units.
	Total int64
}

// Summary loads the games in the session cart. Ids of games that no longer
// exist are ignored.
func (s *Service) Summary(ctx context.Context, sessionID string) (*Summary, error) {
	items, err := s.carts.Cart(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	sum := &Summary{Games: []models.Game{}}
	if len(items) == 0 {
		return sum, nil
	}
	if err := s.db.WithContext(ctx).
		Where("id IN ?", cart.GameIDs(items)).
		Order("title ASC, id ASC").
		Find(&sum.Games).Error; err != nil {
		return nil, errors.Wrap(err, "load cart games")
	}
	for _, g := range sum.Games {
		sum.Total += g.SellPrice()
	}
	return sum, nil
}

// Begin opens a payment session for the session cart and returns the URL to
// redirect the buyer to. The cart is left untouched.
func (s *Service) Begin(ctx context.Context, sessionID, successURL, cancelURL string) (string, error) {
	sum, err := s.Summary(ctx, sessionID)
	if err != nil {
		return "", err
	}
	if len(sum.Games) == 0 {
		return "", ErrEmptyCart
	}

	items := make([]payment.LineItem, 0, len(sum.Games))
	for _, g := range sum.Games {
		items = append(items, payment.LineItem{Title: g.Title, UnitAmount: g.SellPrice(), Quantity: 1})
	}

	url, err := s.gateway.CreateCheckoutSession(ctx, payment.CheckoutRequest{
		Currency:   s.currency,
		Items:      items,
		SuccessURL: successURL,
		CancelURL:  cancelURL,
		Reference:  sessionID,
	})
	metrics.RecordCheckoutSession(err == nil)
	if err != nil {
		logging.Log.WithFields(logrus.Fields{
			"session_id": sessionID,
			"error":      err,
		}).Error("failed to create checkout session")
		return "", errors.Wrap(ErrGateway, err.Error())
	}
	return url, nil
}

// Complete verifies that checkoutSessionID was paid for this browser session,
// then records every game still in the cart as owned by userID and empties
// the cart. Games already owned are skipped.
func (s *Service) Complete(ctx context.Context, userID uint, sessionID, checkoutSessionID string) ([]models.Game, error) {
	if checkoutSessionID == "" {
		return nil, apperr.Validation("Missing checkout session")
	}
	status, err := s.gateway.CheckoutSessionStatus(ctx, checkoutSessionID)
	if err != nil {
		logging.Log.WithError(err).Error("failed to verify checkout session")
		return nil, errors.Wrap(ErrGateway, err.Error())
	}
	if !status.Paid || status.Reference != sessionID {
		return nil, apperr.Forbidden("Payment has not been completed")
	}

	sum, err := s.Summary(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if len(sum.Games) > 0 {
		owned := make([]models.PurchasedGame, 0, len(sum.Games))
		for _, g := range sum.Games {
			owned = append(owned, models.PurchasedGame{UserID: userID, GameID: g.ID})
		}
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&owned).Error
		})
		if err != nil {
			return nil, errors.Wrap(err, "record purchases")
		}
	}

	if err := s.carts.ClearCart(ctx, sessionID); err != nil {
		return nil, err
	}

	logging.Log.WithFields(logrus.Fields{
		"user_id": userID,
		"games":   len(sum.Games),
	}).Info("checkout completed")
	return sum.Games, nil
}
