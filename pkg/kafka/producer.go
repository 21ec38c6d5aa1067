package kafka

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/utafrali/storefront/pkg/logger"
)

// Producer publishes event envelopes to a Kafka topic. Messages are keyed by
// aggregate ID so events for the same aggregate stay ordered within a
// partition.
type Producer struct {
	writer  *kafkago.Writer
	brokers []string
	logger  *slog.Logger
}

// NewProducer creates a Kafka producer for the given brokers and topic.
func NewProducer(brokers []string, topic string, log *slog.Logger) *Producer {
	writer := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafkago.RequireAll,
	}
	return &Producer{
		writer:  writer,
		brokers: brokers,
		logger:  log,
	}
}

// Publish writes a single event to the topic.
func (p *Producer) Publish(ctx context.Context, event *Event) error {
	if event.CorrelationID == "" {
		event.CorrelationID = logger.CorrelationIDFromContext(ctx)
	}

	data, err := event.Marshal()
	if err != nil {
		return fmt.Errorf("marshal event %s: %w", event.EventType, err)
	}

	msg := kafkago.Message{
		Key:   []byte(event.AggregateID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "event_type", Value: []byte(event.EventType)},
			{Key: "event_id", Value: []byte(event.EventID)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write event %s: %w", event.EventType, err)
	}

	p.logger.Debug("event published",
		slog.String("event_type", event.EventType),
		slog.String("event_id", event.EventID),
		slog.String("aggregate_id", event.AggregateID),
	)
	return nil
}

// Ping verifies connectivity to at least one broker.
func (p *Producer) Ping(ctx context.Context) error {
	var lastErr error
	for _, broker := range p.brokers {
		conn, err := kafkago.DialContext(ctx, "tcp", broker)
		if err != nil {
			lastErr = err
			continue
		}
		brokersList, err := conn.Brokers()
		_ = conn.Close()
		if err != nil {
			lastErr = err
			continue
		}
		if len(brokersList) > 0 {
			return nil
		}
	}
	if lastErr != nil {
		return fmt.Errorf("ping kafka: %w", lastErr)
	}
	return fmt.Errorf("ping kafka: no brokers available")
}

// Close flushes and closes the underlying writer.
func (p *Producer) Close() error {
	return p.writer.Close()
}

// BrokerAddr formats a host and port into a broker address.
func BrokerAddr(host string, port int) string {
	return net.JoinHostPort(host, strconv.Itoa(port))
}
