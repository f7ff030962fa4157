package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/loayeid/shophub/internal/entity"
	"github.com/loayeid/shophub/internal/logging"
)

var (
	ErrMissingStatus = errors.New("no status or refund flag given")
	ErrOrderNotFound = errors.New("order not found")

	// ErrConcurrentUpdate: the order changed between read and update.
	ErrConcurrentUpdate = errors.New("order status changed concurrently")
)

type UpdateStatusInput struct {
	OrderID string
	Status  entity.OrderStatus
	Refund  bool
}

// UpdateStatus drives the post-creation order lifecycle from staff actions.
// Only admin/manager principals may call it. A refund request forces the
// refunded target; moving into refunded also marks the trigger point for
// out-of-band gateway refund handling, which stays an operator action.
type UpdateStatus struct {
	repo   OrderRepo
	events StatusPublisher
	cache  OrderCache
	now    func() time.Time
}

func NewUpdateStatus(repo OrderRepo, events StatusPublisher, cache OrderCache) *UpdateStatus {
	return &UpdateStatus{repo: repo, events: events, cache: cache, now: time.Now}
}

func (uc *UpdateStatus) Execute(ctx context.Context, actor *entity.Principal, in UpdateStatusInput) error {
	if _, err := entity.RequireRole(actor, entity.RoleAdmin, entity.RoleManager); err != nil {
		return err
	}

	target := in.Status
	if in.Refund {
		target = entity.StatusRefunded
	}
	if target == "" {
		return ErrMissingStatus
	}
	if !target.Valid() {
		return fmt.Errorf("%w: unknown status %q", entity.ErrInvalidTransition, target)
	}

	order, err := uc.repo.GetByID(ctx, in.OrderID)
	if err != nil {
		return err
	}
	if order == nil {
		return ErrOrderNotFound
	}

	if order.Status == entity.StatusRefunded {
		if target == entity.StatusRefunded {
			// Already in the requested terminal state; double-refund
			// attempts must not fail loudly.
			return nil
		}
		return fmt.Errorf("%w: order is refunded", entity.ErrInvalidTransition)
	}
	if target == order.Status {
		return nil
	}
	if !order.Status.CanTransitionTo(target) {
		return fmt.Errorf("%w: %s -> %s", entity.ErrInvalidTransition, order.Status, target)
	}

	applied, err := uc.repo.UpdateStatusIf(ctx, in.OrderID, order.Status, target)
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	if !applied {
		return ErrConcurrentUpdate
	}

	log := logging.FromCtx(ctx)
	if err := uc.cache.SetStatus(ctx, in.OrderID, string(target)); err != nil {
		log.Warn("status cache set failed", "order_id", in.OrderID, "error", err)
	}
	msg := OrderStatusChangedMsg{
		OrderID: in.OrderID,
		UserID:  order.UserID,
		Status:  string(target),
		Actor:   actor.ID,
		At:      uc.now().UTC(),
	}
	if err := uc.events.PublishStatusChanged(ctx, msg); err != nil {
		log.Warn("status event publish failed", "order_id", in.OrderID, "error", err)
	}
	log.Info("order status updated", "order_id", in.OrderID, "from", order.Status, "to", target, "actor", actor.ID)
	return nil
}
