package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"example.com/activitydirectory/internal/domain"
)

type messageWriter interface {
	WriteMessages(context.Context, ...kafka.Message) error
}

// NewKafkaWriter builds the writer for the roster topic. Records with the same
// key land on the same partition.
func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		Compression:            kafka.Snappy,
		AllowAutoTopicCreation: true,
	}
}

// KafkaPublisher implements domain.EventPublisher on top of a topic writer.
// Records are keyed by activity name so one activity's changes stay ordered.
type KafkaPublisher struct {
	writer  messageWriter
	topic   string
	timeout time.Duration
}

// NewKafkaPublisher constructs a publisher. topic labels the delivery metrics
// and must match the writer's topic. A non-positive timeout leaves the
// caller's context deadline in charge.
func NewKafkaPublisher(writer messageWriter, topic string, timeout time.Duration) *KafkaPublisher {
	return &KafkaPublisher{writer: writer, topic: topic, timeout: timeout}
}

// PublishRosterChange implements domain.EventPublisher.
func (p *KafkaPublisher) PublishRosterChange(ctx context.Context, change domain.RosterChange) error {
	event := NewRosterChanged(change)
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode %s: %w", event.EventType, err)
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	record := kafka.Message{
		Key:   []byte(event.Activity),
		Value: payload,
		Time:  event.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.EventType)},
			{Key: "event_id", Value: []byte(event.EventID)},
		},
	}

	if err := p.writer.WriteMessages(ctx, record); err != nil {
		failedCounter.WithLabelValues(p.topic, event.EventType).Inc()
		return fmt.Errorf("publish %s to %s: %w", event.EventType, p.topic, err)
	}
	deliveredCounter.WithLabelValues(p.topic, event.EventType).Inc()
	return nil
}

// NopPublisher discards roster changes. Used when no brokers are configured.
type NopPublisher struct{}

// PublishRosterChange implements domain.EventPublisher.
func (NopPublisher) PublishRosterChange(context.Context, domain.RosterChange) error { return nil }
