package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"
)

// EventPublisher publishes call events to Kafka.
type EventPublisher struct {
	writer messageWriter
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// NewEventPublisher constructs a publisher for the given topic.
func NewEventPublisher(k *Kafka, topic string) *EventPublisher {
	return &EventPublisher{writer: k.NewWriter(topic)}
}

// PublishCallEvent emits an event keyed by call id so a call's events stay ordered.
func (p *EventPublisher) PublishCallEvent(ctx context.Context, event CallEvent) error {
	record, err := encodeEvent(event)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, record); err != nil {
		return fmt.Errorf("event publisher: write message: %w", err)
	}
	return nil
}

// Close closes the publisher.
func (p *EventPublisher) Close() error {
	return p.writer.Close()
}

func encodeEvent(event CallEvent) (kafka.Message, error) {
	value, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("event publisher: marshal message: %w", err)
	}
	return kafka.Message{
		Key:     []byte(event.CallID),
		Value:   value,
		Time:    event.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
		},
	}, nil
}

// NopPublisher drops events; used when Kafka is not configured.
type NopPublisher struct{}

// PublishCallEvent does nothing.
func (NopPublisher) PublishCallEvent(context.Context, CallEvent) error { return nil }
