package usecase

import (
	"context"

	"github.com/loayeid/shophub/internal/entity"
)

// Outbound ports. Adapters live under internal/adapter.

type OrderRepo interface {
	// Create persists the order header and all its lines as one atomic unit.
	Create(ctx context.Context, o *entity.Order) error
	GetByID(ctx context.Context, id string) (*entity.Order, error)
	// List returns all orders with their lines, newest first.
	List(ctx context.Context) ([]*entity.Order, error)
	// UpdateStatusIf applies the transition only if the row still holds
	// fromStatus; returns false when nothing matched.
	UpdateStatusIf(ctx context.Context, id string, fromStatus, toStatus entity.OrderStatus) (bool, error)
}

// UserRecord is the persistence shape of a store account (kept out of domain).
type UserRecord struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         entity.Role
}

type UserRepo interface {
	GetByEmail(ctx context.Context, email string) (*UserRecord, error)
}

// CartStore is the session-scoped key-value store backing the shopper's cart.
type CartStore interface {
	// Get returns the cart for the session; an unknown session yields an
	// empty cart, not an error.
	Get(ctx context.Context, sessionID string) (*entity.Cart, error)
	Put(ctx context.Context, cart *entity.Cart) error
	Clear(ctx context.Context, sessionID string) error
}

type PaymentGateway interface {
	CreateIntent(ctx context.Context, amountMinorUnits int64, currency string) (*entity.PaymentIntent, error)
	GetIntent(ctx context.Context, intentID string) (*entity.PaymentIntent, error)
	// Confirm submits the payment method against the intent. Must be
	// idempotent per intent: re-confirming a succeeded intent returns the
	// same settlement outcome, never a second charge.
	Confirm(ctx context.Context, intentID, paymentMethod string) (*entity.ConfirmedPayment, error)
}

// IdempotencyStore guards the single point where money moves. Unlock frees a
// lock whose attempt ended without a recorded outcome, so the same key may
// try again.
type IdempotencyStore interface {
	TryLock(ctx context.Context, scope, key string) (bool, error)
	Unlock(ctx context.Context, scope, key string) error
	Remember(ctx context.Context, scope, key, value string) error
	Recall(ctx context.Context, scope, key string) (string, bool, error)
}

type StatusPublisher interface {
	PublishStatusChanged(ctx context.Context, msg OrderStatusChangedMsg) error
}

// AlertPublisher raises operator-visible incidents. Used when a charge
// succeeded but the order write did not.
type AlertPublisher interface {
	PublishReconcile(ctx context.Context, msg ReconcileAlertMsg) error
}

type OrderCache interface {
	SetStatus(ctx context.Context, orderID, status string) error
	GetStatus(ctx context.Context, orderID string) (string, bool, error)
}

type MailSender interface {
	Send(ctx context.Context, to, subject, body string) error
}
