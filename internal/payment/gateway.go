// Package payment creates hosted checkout sessions with the payment provider.
package payment

import (
	"context"

	"github.com/pkg/errors"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// LineItem is one purchasable entry. UnitAmount is in minor currency units.
type LineItem struct {
	Title      string
	UnitAmount int64
	Quantity   int64
}

// CheckoutRequest describes a checkout session to open.
type CheckoutRequest struct {
	Currency   string
	Items      []LineItem
	SuccessURL string
	CancelURL  string
	// Reference is echoed back by the provider, e.g. the browser session id.
	Reference string
}

// SessionStatus is what the provider reports about a checkout session.
type SessionStatus struct {
	Paid      bool
	Reference string
}

// SessionIDPlaceholder is replaced by the provider with the checkout session
// id when it redirects to the success URL.
const SessionIDPlaceholder = "{CHECKOUT_SESSION_ID}"

// Gateway opens checkout sessions and returns the URL to send the buyer to.
type Gateway interface {
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (string, error)
	CheckoutSessionStatus(ctx context.Context, id string) (*SessionStatus, error)
}

// StripeGateway is a Gateway backed by Stripe Checkout.
type StripeGateway struct {
	api *client.API
}

func NewStripeGateway(secretKey string) *StripeGateway {
	return &StripeGateway{api: client.New(secretKey, nil)}
}

func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (string, error) {
	if len(req.Items) == 0 {
		return "", errors.New("checkout session needs at least one item")
	}

	params := sessionParams(req)
	params.Context = ctx
	sess, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		return "", errors.Wrap(err, "create stripe checkout session")
	}
	return sess.URL, nil
}

func (g *StripeGateway) CheckoutSessionStatus(ctx context.Context, id string) (*SessionStatus, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	sess, err := g.api.CheckoutSessions.Get(id, params)
	if err != nil {
		return nil, errors.Wrap(err, "get stripe checkout session")
	}
	return &SessionStatus{
		Paid:      sess.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid,
		Reference: sess.ClientReferenceID,
	}, nil
}

func sessionParams(req CheckoutRequest) *stripe.CheckoutSessionParams {
	items := make([]*stripe.CheckoutSessionLineItemParams, 0, len(req.Items))
	for _, it := range req.Items {
		qty := it.Quantity
		if qty < 1 {
			qty = 1
		}
		items = append(items, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency: stripe.String(req.Currency),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(it.Title),
				},
				UnitAmount: stripe.Int64(it.UnitAmount),
			},
			Quantity: stripe.Int64(qty),
		})
	}

	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems:          items,
		SuccessURL:         stripe.String(req.SuccessURL),
		CancelURL:          stripe.String(req.CancelURL),
	}
	if req.Reference != "" {
		params.ClientReferenceID = stripe.String(req.Reference)
	}
	return params
}
