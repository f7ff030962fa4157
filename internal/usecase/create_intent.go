package usecase

import (
	"context"
	"errors"

	"github.com/loayeid/shophub/internal/entity"
)

var ErrInvalidAmount = errors.New("invalid amount")

const defaultCurrency = "usd"

// CreateIntent asks the gateway for a fresh authorization handle for one
// checkout attempt. Nothing is persisted locally; if the displayed total
// changes the client must request a new intent.
type CreateIntent struct {
	gw PaymentGateway
}

func NewCreateIntent(gw PaymentGateway) *CreateIntent {
	return &CreateIntent{gw: gw}
}

func (uc *CreateIntent) Execute(ctx context.Context, amountMinorUnits int64, currency string) (*entity.PaymentIntent, error) {
	if amountMinorUnits <= 0 {
		return nil, ErrInvalidAmount
	}
	if currency == "" {
		currency = defaultCurrency
	}
	return uc.gw.CreateIntent(ctx, amountMinorUnits, currency)
}
