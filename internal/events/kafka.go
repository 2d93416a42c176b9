package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/mmynk/splitwiser/internal/models"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// defaultPublishTimeout bounds how long a request waits on the brokers.
const defaultPublishTimeout = 5 * time.Second

// KafkaPublisher writes events as JSON messages to a single topic.
type KafkaPublisher struct {
	writer  messageWriter
	timeout time.Duration
}

var _ Publisher = (*KafkaPublisher)(nil)

// NewKafkaPublisher creates a publisher for topic on brokers. Messages with the
// same key land on the same partition.
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
			BatchTimeout: 50 * time.Millisecond,
		},
		timeout: defaultPublishTimeout,
	}
}

func (p *KafkaPublisher) PublishExpenseRecorded(ctx context.Context, expense *models.Expense) error {
	return p.publish(ctx, expenseEvent(TypeExpenseRecorded, expense))
}

func (p *KafkaPublisher) PublishExpenseDeleted(ctx context.Context, expense *models.Expense) error {
	return p.publish(ctx, expenseEvent(TypeExpenseDeleted, expense))
}

func (p *KafkaPublisher) PublishSettlementRecorded(ctx context.Context, settlement *models.Settlement) error {
	return p.publish(ctx, settlementEvent(settlement))
}

func (p *KafkaPublisher) publish(ctx context.Context, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", event.Type, err)
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.Key()),
		Value: data,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(event.Type)},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to publish %s event: %w", event.Type, err)
	}
	return nil
}

// Close flushes pending messages and closes the writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
