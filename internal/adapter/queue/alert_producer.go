package queue

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/loayeid/shophub/internal/usecase"
)

const (
	alertExchange  = "order.alerts"
	reconcileKey   = "order.reconcile"
	ReconcileQueue = "order.reconcile.q"
)

// AlertProducer publishes reconcile alerts raised when a charge succeeded but
// the order write did not. The alert must survive a broker restart; a lost
// alert means a charged customer with no order on record.
type AlertProducer struct {
	ch *amqp.Channel
}

// NewAlertProducer sets up the exchange, queue, and binding once at startup.
func NewAlertProducer(ch *amqp.Channel) (*AlertProducer, error) {
	if err := ch.ExchangeDeclare(
		alertExchange,
		"topic",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	q, err := ch.QueueDeclare(
		ReconcileQueue,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("declare queue: %w", err)
	}

	if err := ch.QueueBind(q.Name, reconcileKey, alertExchange, false, nil); err != nil {
		return nil, fmt.Errorf("queue bind: %w", err)
	}

	if err := ch.Confirm(false); err != nil {
		return nil, fmt.Errorf("enable confirm mode: %w", err)
	}

	return &AlertProducer{ch: ch}, nil
}

func (p *AlertProducer) PublishReconcile(ctx context.Context, msg usecase.ReconcileAlertMsg) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	}

	if err := p.ch.PublishWithContext(ctx, alertExchange, reconcileKey, false, false, pub); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

var _ usecase.AlertPublisher = (*AlertProducer)(nil)
