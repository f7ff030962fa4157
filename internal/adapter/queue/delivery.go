package queue

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Handler processes a single delivery off an alert queue. Implementations
// must be idempotent: a redelivered reconcile alert means the same charge,
// not a new one. Return nil => ACK; return error => NACK (requeue behavior
// controlled by Router).
type Handler interface {
	Handle(ctx context.Context, d amqp.Delivery) error
}

// JSONHandler decodes d.Body into the alert payload type T and hands it to
// HandleFunc. A body that does not decode is a poison message and comes back
// as an error so the Router can drop or requeue it.
type JSONHandler[T any] struct {
	HandleFunc func(ctx context.Context, msg T) error
}

func (h JSONHandler[T]) Handle(ctx context.Context, d amqp.Delivery) error {
	var v T
	if err := json.Unmarshal(d.Body, &v); err != nil {
		return fmt.Errorf("decode %s delivery: %w", d.RoutingKey, err)
	}
	return h.HandleFunc(ctx, v)
}
