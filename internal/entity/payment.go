package entity

import "fmt"

type IntentStatus string

const (
	IntentRequiresPaymentMethod IntentStatus = "requires_payment_method"
	IntentRequiresConfirmation  IntentStatus = "requires_confirmation"
	IntentSucceeded             IntentStatus = "succeeded"
	IntentFailed                IntentStatus = "failed"
)

// PaymentIntent is a reference to a gateway-issued authorization handle.
// It lives for a single checkout attempt and is never persisted locally;
// only the settlement outcome survives (on the order record).
type PaymentIntent struct {
	ID               string
	ClientSecret     string
	AmountMinorUnits int64
	Currency         string
	Status           IntentStatus
}

// ConfirmedPayment is the terminal outcome of a successful confirmation.
// SettlementRef is a non-sensitive audit token (card last4), never a PAN.
type ConfirmedPayment struct {
	IntentID      string
	SettlementRef string
	Method        string
}

// GatewayError covers failures reaching or being rejected by the payment
// gateway before any money moves. The shopper may retry; the cart is intact.
type GatewayError struct {
	Op  string
	Err error
}

func (e *GatewayError) Error() string { return fmt.Sprintf("payment gateway %s: %v", e.Op, e.Err) }
func (e *GatewayError) Unwrap() error { return e.Err }

// PaymentError is a declined or otherwise failed confirmation, carrying the
// gateway-provided reason (card_declined, authentication_required, ...).
// Nothing was persisted and the cart is intact.
type PaymentError struct {
	Reason string
}

func (e *PaymentError) Error() string { return "payment failed: " + e.Reason }
