package entity

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	StatusProcessing OrderStatus = "processing"
	StatusShipped    OrderStatus = "shipped"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
	StatusRefunded   OrderStatus = "refunded"
)

var ErrInvalidTransition = errors.New("invalid status transition")

func (s OrderStatus) Valid() bool {
	switch s {
	case StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled, StatusRefunded:
		return true
	}
	return false
}

// CanTransitionTo reports whether the staff-driven lifecycle allows moving
// from s to next. refunded is terminal; the refunded -> refunded no-op is
// handled by the caller, not here.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if s == StatusRefunded {
		return false
	}
	if next == StatusRefunded {
		return true
	}
	switch s {
	case StatusProcessing:
		return next == StatusShipped || next == StatusCancelled
	case StatusShipped:
		return next == StatusDelivered || next == StatusCancelled
	}
	return false
}

// Address is embedded in an order twice (shipping and billing); it is not a
// standalone entity. AddressLine2 may be empty.
type Address struct {
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	AddressLine1 string `json:"addressLine1"`
	AddressLine2 string `json:"addressLine2"`
	City         string `json:"city"`
	State        string `json:"state"`
	PostalCode   string `json:"postalCode"`
	Country      string `json:"country"`
	Phone        string `json:"phone"`
}

// OrderLine is a purchase-time snapshot of one cart line. Immutable after
// creation; never exists outside its owning order.
type OrderLine struct {
	ProductID   string          `json:"productId"`
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
}

// Order is the aggregate root written exactly once per confirmed payment.
// Everything except Status is immutable after creation.
type Order struct {
	ID              string          `json:"id"`
	UserID          string          `json:"userId,omitempty"` // empty for guest checkout
	UserName        string          `json:"userName"`
	UserEmail       string          `json:"userEmail"`
	PaymentMethod   string          `json:"paymentMethod"`
	CardLast4       string          `json:"cardLast4,omitempty"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	Tax             decimal.Decimal `json:"tax"`
	Shipping        decimal.Decimal `json:"shipping"`
	Total           decimal.Decimal `json:"total"`
	Status          OrderStatus     `json:"status"`
	CreatedAt       time.Time       `json:"createdAt"`
	ShippingAddress Address         `json:"shippingAddress"`
	BillingAddress  Address         `json:"billingAddress"`
	Lines           []OrderLine     `json:"items"`
}
