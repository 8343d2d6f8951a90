package handler

import (
	"net/http"

	"gamevault/backend/internal/checkout"
	"gamevault/backend/internal/payment"
	"gamevault/backend/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
)

const (
	cartPath           = "/api/v1/cart"
	paymentSuccessPath = "/api/v1/payment/success"
)

// region --- DTOs ---

// PaymentSuccessResponse lists the games that were just purchased.
type PaymentSuccessResponse struct {
	Message string         `json:"message" example:"Payment successful"`
	Games   []GameResponse `json:"games"`
}

// endregion

// region --- Checkout Handlers ---

// Checkout godoc
// @Summary      Start checkout
// @Description  Opens a payment session for the cart and redirects to it with 303. An empty cart redirects back to the cart.
// @Tags         checkout
// @Produce      json
// @Success      303
// @Failure      502 {object} ErrorResponse "Payment provider failure; the cart is kept"
// @Router       /checkout [post]
func Checkout(c *gin.Context) {
	url, err := checkouts.Begin(
		c.Request.Context(),
		session.ID(c),
		baseURL+paymentSuccessPath+"?session_id="+payment.SessionIDPlaceholder,
		baseURL+cartPath,
	)
	switch {
	case errors.Is(err, checkout.ErrEmptyCart):
		c.Redirect(http.StatusSeeOther, cartPath)
	case errors.Is(err, checkout.ErrGateway):
		c.JSON(http.StatusBadGateway, gin.H{"error": "Checkout failed, please try again"})
	case err != nil:
		respondError(c, err)
	default:
		c.Redirect(http.StatusSeeOther, url)
	}
}

// PaymentSuccess godoc
// @Summary      Complete checkout
// @Description  Verifies the paid payment session, records every game still in the cart as owned and empties the cart.
// @Tags         checkout
// @Produce      json
// @Security     BearerAuth
// @Param        session_id query string true "Payment session ID"
// @Success      200 {object} PaymentSuccessResponse
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse "Payment not completed"
// @Failure      502 {object} ErrorResponse
// @Router       /payment/success [get]
func PaymentSuccess(c *gin.Context) {
	purchased, err := checkouts.Complete(c.Request.Context(), currentUserID(c), session.ID(c), c.Query("session_id"))
	switch {
	case errors.Is(err, checkout.ErrGateway):
		c.JSON(http.StatusBadGateway, gin.H{"error": "Could not verify payment, please try again"})
		return
	case err != nil:
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, PaymentSuccessResponse{
		Message: "Payment successful",
		Games:   newGameResponses(purchased, nil),
	})
}

// endregion
