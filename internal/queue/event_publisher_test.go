package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"

	"github.com/acme/vapi-caller/internal/config"
	"github.com/acme/vapi-caller/internal/domain"
)

type recordingWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *recordingWriter) Close() error { return nil }

func TestPublishCallEventKeysByCallID(t *testing.T) {
	writer := &recordingWriter{}
	pub := &EventPublisher{writer: writer}

	event := NewCallEvent(CallEventEnded, "call-7", domain.CallStatusEnded)
	if err := pub.PublishCallEvent(context.Background(), event); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(writer.msgs) != 1 {
		t.Fatalf("expected one message, got %d", len(writer.msgs))
	}
	msg := writer.msgs[0]
	if string(msg.Key) != "call-7" {
		t.Fatalf("expected key call-7, got %q", msg.Key)
	}

	if len(msg.Headers) != 1 || string(msg.Headers[0].Value) != string(CallEventEnded) {
		t.Fatalf("expected event_type header, got %+v", msg.Headers)
	}

	var decoded CallEvent
	if err := json.Unmarshal(msg.Value, &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.Type != CallEventEnded || decoded.Status != domain.CallStatusEnded || decoded.ID != event.ID {
		t.Fatalf("unexpected event %+v", decoded)
	}
}

func TestPublishCallEventWrapsWriterError(t *testing.T) {
	boom := errors.New("broker down")
	pub := &EventPublisher{writer: &recordingWriter{err: boom}}
	err := pub.PublishCallEvent(context.Background(), NewCallEvent(CallEventCreated, "c", domain.CallStatusQueued))
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped writer error, got %v", err)
	}
}

func TestNewKafkaRequiresBrokers(t *testing.T) {
	if _, err := NewKafka(configWithBrokers()); err == nil {
		t.Fatalf("expected error without brokers")
	}
}

func TestNewKafkaDefaultsTopicLayout(t *testing.T) {
	k, err := NewKafka(configWithBrokers("localhost:9092"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if k.cfg.Partitions != 1 || k.cfg.ReplicationFactor != 1 {
		t.Fatalf("expected partitions and replication of 1, got %+v", k.cfg)
	}
	w := k.NewWriter("vapi.call.events")
	if w.Topic != "vapi.call.events" {
		t.Fatalf("unexpected topic %q", w.Topic)
	}
}

func configWithBrokers(brokers ...string) config.KafkaConfig {
	return config.KafkaConfig{Brokers: brokers}
}
