package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/IBM/sarama"

	"github.com/loayeid/shophub/internal/usecase"
)

// StatusProducer publishes order status transitions. Keying by order ID keeps
// all events for one order on the same partition, so consumers observe the
// transitions in order.
type StatusProducer struct {
	producer sarama.SyncProducer
	topic    string
}

func NewStatusProducer(producer sarama.SyncProducer, topic string) *StatusProducer {
	return &StatusProducer{producer: producer, topic: topic}
}

func (p *StatusProducer) PublishStatusChanged(_ context.Context, msg usecase.OrderStatusChangedMsg) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	_, _, err = p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(msg.OrderID),
		Value: sarama.ByteEncoder(body),
	})
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

var _ usecase.StatusPublisher = (*StatusProducer)(nil)
