package gateway

import (
	"context"
	"errors"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"

	"github.com/loayeid/shophub/internal/entity"
	"github.com/loayeid/shophub/internal/usecase"
)

// StripeGateway adapts the Stripe PaymentIntents API to the checkout's
// payment port. Confirmation leans on Stripe's own per-intent idempotency:
// re-confirming a succeeded intent is answered from the intent state, not
// charged again.
type StripeGateway struct {
	api *client.API
}

func NewStripeGateway(secretKey string) *StripeGateway {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &StripeGateway{api: api}
}

func (g *StripeGateway) CreateIntent(ctx context.Context, amountMinorUnits int64, currency string) (*entity.PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(amountMinorUnits),
		Currency:           stripe.String(currency),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
	}
	params.Context = ctx

	pi, err := g.api.PaymentIntents.New(params)
	if err != nil {
		return nil, &entity.GatewayError{Op: "create intent", Err: err}
	}
	return toIntent(pi), nil
}

func (g *StripeGateway) GetIntent(ctx context.Context, intentID string) (*entity.PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	pi, err := g.api.PaymentIntents.Get(intentID, params)
	if err != nil {
		return nil, &entity.GatewayError{Op: "get intent", Err: err}
	}
	return toIntent(pi), nil
}

func (g *StripeGateway) Confirm(ctx context.Context, intentID, paymentMethod string) (*entity.ConfirmedPayment, error) {
	params := &stripe.PaymentIntentConfirmParams{
		PaymentMethod: stripe.String(paymentMethod),
	}
	params.Context = ctx
	params.AddExpand("latest_charge")

	pi, err := g.api.PaymentIntents.Confirm(intentID, params)
	if err != nil {
		return g.confirmError(ctx, intentID, err)
	}
	if pi.Status != stripe.PaymentIntentStatusSucceeded {
		return nil, &entity.PaymentError{Reason: string(pi.Status)}
	}
	return confirmed(pi), nil
}

// confirmError separates shopper-facing declines from infrastructure faults.
// An "unexpected state" answer usually means a retry raced an earlier confirm
// that already succeeded, so the intent is re-read before giving up.
func (g *StripeGateway) confirmError(ctx context.Context, intentID string, err error) (*entity.ConfirmedPayment, error) {
	var sErr *stripe.Error
	if !errors.As(err, &sErr) {
		return nil, &entity.GatewayError{Op: "confirm", Err: err}
	}

	switch {
	case sErr.Type == stripe.ErrorTypeCard:
		return nil, &entity.PaymentError{Reason: string(sErr.Code)}
	case sErr.Code == stripe.ErrorCodePaymentIntentUnexpectedState:
		params := &stripe.PaymentIntentParams{}
		params.Context = ctx
		params.AddExpand("latest_charge")
		pi, getErr := g.api.PaymentIntents.Get(intentID, params)
		if getErr == nil && pi.Status == stripe.PaymentIntentStatusSucceeded {
			return confirmed(pi), nil
		}
		return nil, &entity.GatewayError{Op: "confirm", Err: err}
	default:
		return nil, &entity.GatewayError{Op: "confirm", Err: err}
	}
}

func toIntent(pi *stripe.PaymentIntent) *entity.PaymentIntent {
	return &entity.PaymentIntent{
		ID:               pi.ID,
		ClientSecret:     pi.ClientSecret,
		AmountMinorUnits: pi.Amount,
		Currency:         string(pi.Currency),
		Status:           mapStatus(pi.Status),
	}
}

func mapStatus(s stripe.PaymentIntentStatus) entity.IntentStatus {
	switch s {
	case stripe.PaymentIntentStatusSucceeded:
		return entity.IntentSucceeded
	case stripe.PaymentIntentStatusRequiresConfirmation:
		return entity.IntentRequiresConfirmation
	case stripe.PaymentIntentStatusRequiresPaymentMethod:
		return entity.IntentRequiresPaymentMethod
	default:
		return entity.IntentFailed
	}
}

func confirmed(pi *stripe.PaymentIntent) *entity.ConfirmedPayment {
	return &entity.ConfirmedPayment{
		IntentID:      pi.ID,
		SettlementRef: cardLast4(pi),
		Method:        "stripe",
	}
}

func cardLast4(pi *stripe.PaymentIntent) string {
	ch := pi.LatestCharge
	if ch == nil || ch.PaymentMethodDetails == nil || ch.PaymentMethodDetails.Card == nil {
		return ""
	}
	return ch.PaymentMethodDetails.Card.Last4
}

var _ usecase.PaymentGateway = (*StripeGateway)(nil)
