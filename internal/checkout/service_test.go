package checkout

import (
	"context"
	"testing"
	"time"

	"gamevault/backend/internal/apperr"
	"gamevault/backend/internal/cart"
	"gamevault/backend/internal/database/dbtest"
	"gamevault/backend/internal/models"
	"gamevault/backend/internal/payment"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeGateway struct {
	requests []payment.CheckoutRequest
	status   payment.SessionStatus
	err      error
}

func (f *fakeGateway) CreateCheckoutSession(_ context.Context, req payment.CheckoutRequest) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.requests = append(f.requests, req)
	return "https://pay.example/session/1", nil
}

func (f *fakeGateway) CheckoutSessionStatus(_ context.Context, _ string) (*payment.SessionStatus, error) {
	if f.err != nil {
		return nil, f.err
	}
	st := f.status
	return &st, nil
}

type fixture struct {
	svc     *Service
	db      *gorm.DB
	carts   *cart.MemoryStore
	gateway *fakeGateway
	games   []models.Game
	userID  uint
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := dbtest.New(t)
	games := []models.Game{
		{Title: "Portal", Price: 1000, Discount: 25},
		{Title: "Doom", Price: 1499},
	}
	require.NoError(t, db.Create(&games).Error)
	user := models.User{Username: "alice", PasswordHash: "x"}
	require.NoError(t, db.Create(&user).Error)

	carts := cart.NewMemoryStore(time.Hour)
	gw := &fakeGateway{status: payment.SessionStatus{Paid: true, Reference: "sid"}}
	return &fixture{
		svc:     NewService(db, carts, gw, "uah"),
		db:      db,
		carts:   carts,
		gateway: gw,
		games:   games,
		userID:  user.ID,
	}
}

func TestSummary(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.carts.MergeCart(ctx, "sid", f.games[0].ID, f.games[1].ID, 9999))

	sum, err := f.svc.Summary(ctx, "sid")
	require.NoError(t, err)
	require.Len(t, sum.Games, 2)
	assert.Equal(t, int64(750+1499), sum.Total)
}

func TestBeginWithEmptyCart(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Begin(context.Background(), "sid", "ok", "cancel")
	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Empty(t, f.gateway.requests)
}

func TestBeginBuildsLineItems(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.carts.MergeCart(ctx, "sid", f.games[0].ID, f.games[1].ID))

	url, err := f.svc.Begin(ctx, "sid", "https://shop/success", "https://shop/cart")
	require.NoError(t, err)
	assert.Equal(t, "https://pay.example/session/1", url)

	require.Len(t, f.gateway.requests, 1)
	req := f.gateway.requests[0]
	assert.Equal(t, "uah", req.Currency)
	assert.Equal(t, "sid", req.Reference)
	assert.Equal(t, []payment.LineItem{
		{Title: "Doom", UnitAmount: 1499, Quantity: 1},
		{Title: "Portal", UnitAmount: 750, Quantity: 1},
	}, req.Items)

	items, err := f.carts.Cart(ctx, "sid")
	require.NoError(t, err)
	assert.Len(t, items, 2, "opening a payment session keeps the cart")
}

func TestBeginGatewayFailureKeepsCart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.carts.MergeCart(ctx, "sid", f.games[0].ID))
	f.gateway.err = errors.New("stripe down")

	_, err := f.svc.Begin(ctx, "sid", "ok", "cancel")
	assert.ErrorIs(t, err, ErrGateway)

	items, err := f.carts.Cart(ctx, "sid")
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestCompleteRecordsPurchasesAndClearsCart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.db.Create(&models.PurchasedGame{UserID: f.userID, GameID: f.games[0].ID}).Error)
	require.NoError(t, f.carts.MergeCart(ctx, "sid", f.games[0].ID, f.games[1].ID))

	games, err := f.svc.Complete(ctx, f.userID, "sid", "cs_1")
	require.NoError(t, err)
	assert.Len(t, games, 2)

	var owned int64
	require.NoError(t, f.db.Model(&models.PurchasedGame{}).Where("user_id = ?", f.userID).Count(&owned).Error)
	assert.Equal(t, int64(2), owned, "an already owned game is not duplicated")

	items, err := f.carts.Cart(ctx, "sid")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestCompleteRequiresPaidSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.carts.MergeCart(ctx, "sid", f.games[0].ID))

	_, err := f.svc.Complete(ctx, f.userID, "sid", "")
	assert.ErrorIs(t, err, apperr.ErrValidation)

	f.gateway.status = payment.SessionStatus{Paid: false, Reference: "sid"}
	_, err = f.svc.Complete(ctx, f.userID, "sid", "cs_1")
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	f.gateway.status = payment.SessionStatus{Paid: true, Reference: "someone-else"}
	_, err = f.svc.Complete(ctx, f.userID, "sid", "cs_1")
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	var owned int64
	require.NoError(t, f.db.Model(&models.PurchasedGame{}).Count(&owned).Error)
	assert.Zero(t, owned)
	items, err := f.carts.Cart(ctx, "sid")
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestCompleteWithEmptyCart(t *testing.T) {
	f := newFixture(t)

	games, err := f.svc.Complete(context.Background(), f.userID, "sid", "cs_1")
	require.NoError(t, err)
	assert.Empty(t, games)
}
