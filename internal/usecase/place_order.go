package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/loayeid/shophub/internal/entity"
	"github.com/loayeid/shophub/internal/logging"
)

var (
	// ErrStaleIntent: the intent amount no longer matches the cart total
	// (item added mid-checkout). The client must request a new intent.
	ErrStaleIntent = errors.New("payment intent amount does not match cart total")

	// ErrConfirmInFlight: another confirmation for the same intent is
	// currently running; the submit guard was bypassed.
	ErrConfirmInFlight = errors.New("payment confirmation already in flight")

	// ErrReconcileRequired: money was captured but the order write failed.
	// Not retryable; an operator must reconcile the charge by hand.
	ErrReconcileRequired = errors.New("payment captured but order not recorded")
)

type PlaceOrderInput struct {
	SessionID string

	// Buyer; UserID empty means guest checkout.
	UserID    string
	UserName  string
	UserEmail string

	IntentID      string
	PaymentMethod string // opaque gateway token, never raw card data

	ShippingAddress entity.Address
	BillingAddress  entity.Address
}

type PlaceOrderOutput struct {
	OrderID       string
	SettlementRef string
}

// PlaceOrder runs the confirm -> write -> clear tail of the checkout
// pipeline. The three steps are strictly sequential; each failure halts the
// pipeline at that step and leaves the cart intact, except a write failure
// after a successful charge, which raises a reconciliation alert.
type PlaceOrder struct {
	carts  CartStore
	gw     PaymentGateway
	repo   OrderRepo
	idem   IdempotencyStore
	alerts AlertPublisher
	cache  OrderCache
	mail   MailSender
	now    func() time.Time
}

func NewPlaceOrder(carts CartStore, gw PaymentGateway, repo OrderRepo, idem IdempotencyStore, alerts AlertPublisher, cache OrderCache, mail MailSender) *PlaceOrder {
	return &PlaceOrder{
		carts:  carts,
		gw:     gw,
		repo:   repo,
		idem:   idem,
		alerts: alerts,
		cache:  cache,
		mail:   mail,
		now:    time.Now,
	}
}

const confirmScope = "checkout:confirm"

// confirmReceipt is the outcome remembered per intent so a duplicate submit
// can be answered without touching the cart or the gateway again.
type confirmReceipt struct {
	OrderID       string `json:"orderId"`
	SettlementRef string `json:"settlementRef"`
}

func (uc *PlaceOrder) Execute(ctx context.Context, in PlaceOrderInput) (PlaceOrderOutput, error) {
	log := logging.FromCtx(ctx)

	// Replay: this intent already produced an order. Answer with the same
	// result before any cart or gateway work; the first success cleared the
	// cart, so a duplicate submit would otherwise fail the empty-cart check.
	raw, ok, err := uc.idem.Recall(ctx, confirmScope, in.IntentID)
	if err != nil {
		log.Warn("idempotency recall failed", "intent_id", in.IntentID, "error", err)
	} else if ok {
		var receipt confirmReceipt
		if err := json.Unmarshal([]byte(raw), &receipt); err != nil {
			log.Warn("idempotency recall decode failed", "intent_id", in.IntentID, "error", err)
		} else {
			log.Info("place-order replay", "order_id", receipt.OrderID, "intent_id", in.IntentID)
			return PlaceOrderOutput{OrderID: receipt.OrderID, SettlementRef: receipt.SettlementRef}, nil
		}
	}

	cart, err := uc.carts.Get(ctx, in.SessionID)
	if err != nil {
		return PlaceOrderOutput{}, fmt.Errorf("load cart: %w", err)
	}
	if cart.IsEmpty() {
		return PlaceOrderOutput{}, entity.ErrEmptyCart
	}
	if err := cart.Validate(); err != nil {
		return PlaceOrderOutput{}, err
	}
	totals := entity.ComputeTotals(cart.Lines)

	// The intent was created for the total the shopper reviewed. If the cart
	// changed since, refuse before any money moves.
	intent, err := uc.gw.GetIntent(ctx, in.IntentID)
	if err != nil {
		return PlaceOrderOutput{}, err
	}
	if intent.AmountMinorUnits != totals.AmountMinorUnits() {
		return PlaceOrderOutput{}, ErrStaleIntent
	}

	locked, err := uc.idem.TryLock(ctx, confirmScope, in.IntentID)
	if err != nil {
		return PlaceOrderOutput{}, fmt.Errorf("idempotency lock: %w", err)
	}
	if !locked {
		return PlaceOrderOutput{}, ErrConfirmInFlight
	}

	// Single point where money moves. The gateway is idempotent per intent
	// as the second line of defense.
	confirmed, err := uc.gw.Confirm(ctx, in.IntentID, in.PaymentMethod)
	if err != nil {
		// Declined or unreachable: nothing persisted, cart untouched. The
		// lock is released so the shopper can retry the confirmation itself
		// rather than starting over with a fresh intent.
		if unlockErr := uc.idem.Unlock(ctx, confirmScope, in.IntentID); unlockErr != nil {
			log.Warn("idempotency unlock failed", "intent_id", in.IntentID, "error", unlockErr)
		}
		return PlaceOrderOutput{}, err
	}

	order := &entity.Order{
		ID:              uuid.NewString(),
		UserID:          in.UserID,
		UserName:        in.UserName,
		UserEmail:       in.UserEmail,
		PaymentMethod:   confirmed.Method,
		CardLast4:       confirmed.SettlementRef,
		Subtotal:        totals.Subtotal,
		Tax:             totals.Tax,
		Shipping:        totals.Shipping,
		Total:           totals.Total,
		Status:          entity.StatusProcessing,
		CreatedAt:       uc.now().UTC(),
		ShippingAddress: in.ShippingAddress,
		BillingAddress:  in.BillingAddress,
		Lines:           orderLines(cart.Lines),
	}

	if err := uc.repo.Create(ctx, order); err != nil {
		// Money taken, no order recorded. Never retried automatically:
		// a blind retry risks a duplicate order for one charge.
		alert := ReconcileAlertMsg{
			IntentID:         in.IntentID,
			SettlementRef:    confirmed.SettlementRef,
			UserID:           in.UserID,
			UserEmail:        in.UserEmail,
			AmountMinorUnits: totals.AmountMinorUnits(),
			Currency:         intent.Currency,
			Reason:           err.Error(),
			At:               uc.now().UTC(),
		}
		log.Error("order write failed after successful charge",
			"intent_id", in.IntentID,
			"settlement_ref", confirmed.SettlementRef,
			"amount_minor", alert.AmountMinorUnits,
			"currency", alert.Currency,
			"user_email", in.UserEmail,
			"error", err,
		)
		if pubErr := uc.alerts.PublishReconcile(ctx, alert); pubErr != nil {
			log.Error("reconcile alert publish failed", "intent_id", in.IntentID, "error", pubErr)
		}
		return PlaceOrderOutput{}, fmt.Errorf("%w: %v", ErrReconcileRequired, err)
	}

	if receipt, err := json.Marshal(confirmReceipt{OrderID: order.ID, SettlementRef: confirmed.SettlementRef}); err == nil {
		if err := uc.idem.Remember(ctx, confirmScope, in.IntentID, string(receipt)); err != nil {
			log.Warn("idempotency remember failed", "intent_id", in.IntentID, "error", err)
		}
	}

	// Only now is the snapshot consumed.
	if err := uc.carts.Clear(ctx, in.SessionID); err != nil {
		log.Warn("cart clear failed", "session_id", in.SessionID, "error", err)
	}
	if err := uc.cache.SetStatus(ctx, order.ID, string(order.Status)); err != nil {
		log.Warn("status cache set failed", "order_id", order.ID, "error", err)
	}
	uc.sendConfirmation(ctx, order)

	log.Info("order placed",
		"order_id", order.ID,
		"total", order.Total.StringFixed(2),
		"lines", len(order.Lines),
		"settlement_ref", confirmed.SettlementRef,
	)
	return PlaceOrderOutput{OrderID: order.ID, SettlementRef: confirmed.SettlementRef}, nil
}

func (uc *PlaceOrder) sendConfirmation(ctx context.Context, o *entity.Order) {
	if uc.mail == nil || o.UserEmail == "" {
		return
	}
	subject := "Your ShopHub order " + o.ID
	body := fmt.Sprintf("Thank you for your purchase, %s!\n\nOrder %s has been placed.\nTotal: %s %s\n",
		o.UserName, o.ID, o.Total.StringFixed(2), "USD")
	if err := uc.mail.Send(ctx, o.UserEmail, subject, body); err != nil {
		logging.FromCtx(ctx).Warn("confirmation mail failed", "order_id", o.ID, "error", err)
	}
}

func orderLines(lines []entity.CartLine) []entity.OrderLine {
	out := make([]entity.OrderLine, 0, len(lines))
	for _, l := range lines {
		out = append(out, entity.OrderLine{
			ProductID:   l.ProductID,
			ProductName: l.ProductName,
			Quantity:    l.Quantity,
			Price:       l.UnitPrice,
		})
	}
	return out
}
