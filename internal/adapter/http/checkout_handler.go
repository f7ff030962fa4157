package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/loayeid/shophub/internal/adapter/http/middleware"
	"github.com/loayeid/shophub/internal/entity"
	"github.com/loayeid/shophub/internal/usecase"
)

type CheckoutHandler struct {
	intents *usecase.CreateIntent
	place   *usecase.PlaceOrder
}

func NewCheckoutHandler(intents *usecase.CreateIntent, place *usecase.PlaceOrder) *CheckoutHandler {
	return &CheckoutHandler{intents: intents, place: place}
}

type paymentIntentReq struct {
	Amount   int64  `json:"amount" binding:"required"`
	Currency string `json:"currency"`
}

// CreatePaymentIntent issues a gateway handle for the total the client just
// reviewed. Amount is in minor units.
func (h *CheckoutHandler) CreatePaymentIntent(c *gin.Context) {
	var req paymentIntentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	intent, err := h.intents.Execute(ctx, req.Amount, req.Currency)
	if err != nil {
		var gwErr *entity.GatewayError
		switch {
		case errors.Is(err, usecase.ErrInvalidAmount):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_amount"})
		case errors.As(err, &gwErr):
			c.JSON(http.StatusBadGateway, gin.H{"error": "payment_gateway_unavailable"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "server_error"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"clientSecret": intent.ClientSecret,
		"intentId":     intent.ID,
	})
}

type placeOrderReq struct {
	IntentID      string `json:"intentId" binding:"required"`
	PaymentMethod string `json:"paymentMethod" binding:"required"`

	// Guest identity; ignored when a principal is attached.
	CustomerName  string `json:"customerName"`
	CustomerEmail string `json:"customerEmail"`

	ShippingAddress entity.Address `json:"shippingAddress" binding:"required"`
	BillingAddress  entity.Address `json:"billingAddress" binding:"required"`
}

// PlaceOrder runs the paid tail of the checkout: confirm the charge, write
// the order, clear the cart. Every failure class maps to a distinct status so
// the storefront can tell "retry" from "call support".
func (h *CheckoutHandler) PlaceOrder(c *gin.Context) {
	var req placeOrderReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request"})
		return
	}

	sid := sessionID(c)
	if sid == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing_session"})
		return
	}

	in := usecase.PlaceOrderInput{
		SessionID:       sid,
		UserName:        req.CustomerName,
		UserEmail:       req.CustomerEmail,
		IntentID:        req.IntentID,
		PaymentMethod:   req.PaymentMethod,
		ShippingAddress: req.ShippingAddress,
		BillingAddress:  req.BillingAddress,
	}
	if p, ok := middleware.Principal(c); ok {
		in.UserID = p.ID
		in.UserName = p.Name
		in.UserEmail = p.Email
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	out, err := h.place.Execute(ctx, in)
	if err != nil {
		h.placeOrderError(c, err)
		return
	}

	middleware.OrderPlaced()
	c.JSON(http.StatusOK, gin.H{"success": true, "orderId": out.OrderID})
}

func (h *CheckoutHandler) placeOrderError(c *gin.Context, err error) {
	var payErr *entity.PaymentError
	var gwErr *entity.GatewayError

	switch {
	case errors.Is(err, entity.ErrEmptyCart), errors.Is(err, entity.ErrInvalidCartLine):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, usecase.ErrStaleIntent):
		c.JSON(http.StatusConflict, gin.H{"error": "cart_changed", "message": "cart changed since payment started, please retry checkout"})
	case errors.Is(err, usecase.ErrConfirmInFlight):
		c.JSON(http.StatusConflict, gin.H{"error": "confirm_in_flight"})
	case errors.As(err, &payErr):
		c.JSON(http.StatusPaymentRequired, gin.H{"error": "payment_failed", "reason": payErr.Reason})
	case errors.Is(err, usecase.ErrReconcileRequired):
		middleware.ReconcileRaised()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "order_not_recorded", "message": "your payment went through but the order could not be recorded, please contact support"})
	case errors.As(err, &gwErr):
		c.JSON(http.StatusBadGateway, gin.H{"error": "payment_gateway_unavailable"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server_error"})
	}
}
