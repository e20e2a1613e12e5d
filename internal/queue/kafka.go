package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/acme/vapi-caller/internal/config"
)

const dialTimeout = 10 * time.Second

// Kafka holds broker settings shared by writers and admin calls.
type Kafka struct {
	cfg config.KafkaConfig
}

// NewKafka validates the broker list.
func NewKafka(cfg config.KafkaConfig) (*Kafka, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka: no brokers configured")
	}
	if cfg.Partitions < 1 {
		cfg.Partitions = 1
	}
	if cfg.ReplicationFactor < 1 {
		cfg.ReplicationFactor = 1
	}
	return &Kafka{cfg: cfg}, nil
}

// NewWriter returns a synchronous writer that hashes keys to partitions,
// so all events of one call land on the same partition.
func (k *Kafka) NewWriter(topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(k.cfg.Brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: 10 * time.Millisecond,
		Transport:    &kafka.Transport{ClientID: k.cfg.ClientID, DialTimeout: dialTimeout},
	}
}

// Close is a no-op; writers own their connections.
func (k *Kafka) Close() error {
	return nil
}

// Ping dials the first reachable broker.
func (k *Kafka) Ping(ctx context.Context) error {
	conn, err := k.dial(ctx)
	if err != nil {
		return err
	}
	return conn.Close()
}

// EnsureTopics creates any missing topic with the configured partitions and replication.
func (k *Kafka) EnsureTopics(ctx context.Context, topics ...string) error {
	conn, err := k.dial(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	existing, err := conn.ReadPartitions()
	if err != nil {
		return fmt.Errorf("kafka: read partitions: %w", err)
	}
	known := make(map[string]struct{}, len(existing))
	for _, p := range existing {
		known[p.Topic] = struct{}{}
	}

	var missing []kafka.TopicConfig
	for _, topic := range topics {
		if _, ok := known[topic]; ok || topic == "" {
			continue
		}
		missing = append(missing, kafka.TopicConfig{
			Topic:             topic,
			NumPartitions:     k.cfg.Partitions,
			ReplicationFactor: k.cfg.ReplicationFactor,
		})
	}
	if len(missing) == 0 {
		return nil
	}
	if err := conn.CreateTopics(missing...); err != nil {
		return fmt.Errorf("kafka: create topics: %w", err)
	}
	return nil
}

func (k *Kafka) dial(ctx context.Context) (*kafka.Conn, error) {
	dialer := &kafka.Dialer{Timeout: dialTimeout, ClientID: k.cfg.ClientID}
	var lastErr error
	for _, broker := range k.cfg.Brokers {
		conn, err := dialer.DialContext(ctx, "tcp", broker)
		if err == nil {
			return conn, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("kafka: dial: %w", lastErr)
}
