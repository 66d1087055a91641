package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
)

// TopicReconciled carries one message per reconciled collection batch
const TopicReconciled = "collections.reconciled"

// FailedPayment is a debt the payment service refused
type FailedPayment struct {
	RequestID string `json:"request_id"`
	Error     string `json:"error"`
}

// Reconciled is published after a batch result has been reconciled
type Reconciled struct {
	DriverID        string          `json:"driver_id"`
	Channel         string          `json:"channel"`
	PaymentFor      string          `json:"payment_for"`
	RequestIDs      []string        `json:"request_ids"`
	Created         []string        `json:"created"`
	Failed          []FailedPayment `json:"failed,omitempty"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	PartiallyFailed bool            `json:"partially_failed"`
	OccurredAt      time.Time       `json:"occurred_at"`
}

// Publisher announces collection outcomes to downstream consumers
type Publisher interface {
	PublishReconciled(ctx context.Context, ev Reconciled) error
	Close() error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes events to Kafka, keyed by driver so one driver's
// batches stay ordered within a partition
type KafkaPublisher struct {
	writer messageWriter
}

// NewKafkaPublisher creates a publisher for the given broker
func NewKafkaPublisher(broker string) *KafkaPublisher {
	logger := log.New(os.Stdout, "kafka-writer: ", 0)
	return &KafkaPublisher{writer: &kafka.Writer{
		Addr:         kafka.TCP(broker),
		Topic:        TopicReconciled,
		Balancer:     &kafka.Hash{},
		Logger:       kafka.LoggerFunc(logger.Printf),
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}}
}

func (p *KafkaPublisher) PublishReconciled(ctx context.Context, ev Reconciled) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to encode reconciled event: %w", err)
	}
	if err := p.writer.WriteMessages(ctx, kafka.Message{Key: []byte(ev.DriverID), Value: payload}); err != nil {
		return fmt.Errorf("failed to publish reconciled event: %w", err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NopPublisher drops every event, used when no broker is configured
type NopPublisher struct{}

func (NopPublisher) PublishReconciled(context.Context, Reconciled) error { return nil }
func (NopPublisher) Close() error                                       { return nil }

var (
	_ Publisher = (*KafkaPublisher)(nil)
	_ Publisher = NopPublisher{}
)
