package entity

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrEmptyCart       = errors.New("cart is empty")
	ErrInvalidCartLine = errors.New("invalid cart line")
)

// Rates and thresholds used by ComputeTotals. Shipping is flat-rate and
// waived for subtotals strictly above the free-shipping threshold.
var (
	taxRate               = decimal.NewFromFloat(0.08)
	flatShipping          = decimal.NewFromFloat(5.99)
	freeShippingThreshold = decimal.NewFromInt(50)
)

// CartLine is one product position in a shopper's cart. Name and price are
// snapshots taken when the line was added, not re-joined to the live product.
type CartLine struct {
	ProductID   string          `json:"productId"`
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"price"`
}

func (l CartLine) Validate() error {
	if l.ProductID == "" {
		return fmt.Errorf("%w: missing product id", ErrInvalidCartLine)
	}
	if l.Quantity < 1 {
		return fmt.Errorf("%w: quantity must be >= 1", ErrInvalidCartLine)
	}
	if l.UnitPrice.IsNegative() {
		return fmt.Errorf("%w: negative unit price", ErrInvalidCartLine)
	}
	return nil
}

// Cart is the session-scoped aggregate a shopper builds before checkout.
// It is loaded once at flow entry and written back only on explicit mutation.
type Cart struct {
	SessionID string     `json:"sessionId"`
	Lines     []CartLine `json:"items"`
}

func (c *Cart) Validate() error {
	for _, l := range c.Lines {
		if err := l.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Cart) IsEmpty() bool { return len(c.Lines) == 0 }

// Totals is the reviewable checkout amount breakdown. The four fields are
// always recomputed together; never mutate one independently.
type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Shipping decimal.Decimal `json:"shipping"`
	Total    decimal.Decimal `json:"total"`
}

// ComputeTotals derives the checkout totals from the cart lines.
// Pure function: tax is 8% of the subtotal rounded to cents, shipping is
// 5.99 unless the subtotal exceeds 50.00, total is the exact sum of the
// three parts. An empty line list yields a zero subtotal.
func ComputeTotals(lines []CartLine) Totals {
	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	tax := subtotal.Mul(taxRate).Round(2)
	shipping := flatShipping
	if subtotal.GreaterThan(freeShippingThreshold) {
		shipping = decimal.Zero
	}
	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Shipping: shipping,
		Total:    subtotal.Add(tax).Add(shipping),
	}
}

// AmountMinorUnits converts the total to integer cents, the unit the payment
// gateway charges in.
func (t Totals) AmountMinorUnits() int64 {
	return t.Total.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
