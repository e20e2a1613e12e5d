package app

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/acme/vapi-caller/internal/api/handlers"
	"github.com/acme/vapi-caller/internal/config"
	"github.com/acme/vapi-caller/internal/infra/redis"
	"github.com/acme/vapi-caller/internal/queue"
	callsvc "github.com/acme/vapi-caller/internal/service/call"
	"github.com/acme/vapi-caller/internal/service/idempotency"
	"github.com/acme/vapi-caller/internal/telephony"
	telephonyMock "github.com/acme/vapi-caller/internal/telephony/mock"
	"github.com/acme/vapi-caller/internal/vapi"
	"github.com/acme/vapi-caller/pkg/logger"
)

// Container wires together shared infrastructure dependencies.
// Redis and Kafka are optional and stay nil when not configured.
type Container struct {
	Config *config.Config
	Logger *logger.Logger

	Redis    *redis.Client
	Kafka    *queue.Kafka
	Provider telephony.Provider
	Events   *queue.EventPublisher
	Guard    *idempotency.Guard
	Calls    *callsvc.Service
}

// Build constructs a container for the given configuration path.
// An empty path reads configuration from the environment only.
func Build(ctx context.Context, configPath string) (*Container, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	lg, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, err
	}

	return BuildWith(ctx, cfg, lg)
}

// BuildWith wires components from an already loaded configuration.
func BuildWith(ctx context.Context, cfg *config.Config, lg *logger.Logger) (*Container, error) {
	c := &Container{Config: cfg, Logger: lg}

	switch cfg.CallBridge.ProviderName {
	case config.ProviderMock:
		c.Provider = telephonyMock.NewProvider()
	default:
		c.Provider = vapi.NewFromConfig(cfg.Vapi)
	}
	lg.Info("call provider selected",
		zap.String("provider", cfg.CallBridge.ProviderName),
		zap.Stringer("vapi", cfg.Vapi),
	)

	if cfg.Redis.Enabled() {
		redisClient, err := redis.NewClient(ctx, cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("bootstrap redis: %w", err)
		}
		c.Redis = redisClient
		c.Guard = idempotency.NewGuard(redisClient.Inner(), cfg.Idempotency)
	}

	var events callsvc.EventPublisher
	if cfg.Kafka.Enabled() {
		kafka, err := queue.NewKafka(cfg.Kafka)
		if err != nil {
			_ = c.Close(ctx)
			return nil, fmt.Errorf("bootstrap kafka: %w", err)
		}
		c.Kafka = kafka
		c.Events = queue.NewEventPublisher(kafka, cfg.Kafka.EventTopic)
		events = c.Events
	}

	c.Calls = callsvc.NewService(c.Provider, events, lg, callsvc.Defaults{
		AssistantID:   cfg.Vapi.AssistantID,
		PhoneNumberID: cfg.Vapi.PhoneNumberID,
		PollInterval:  cfg.Poll.Interval,
		PollTimeout:   cfg.Poll.Timeout,
	})

	return c, nil
}

// HandlerSet builds HTTP handlers with dependencies.
func (c *Container) HandlerSet() *handlers.HandlerSet {
	checks := make(map[string]handlers.HealthCheck)
	var guard handlers.IdempotencyGuard
	if c.Guard != nil {
		guard = c.Guard
	}
	if c.Redis != nil {
		checks["redis"] = c.Redis.Ping
	}
	if c.Kafka != nil {
		checks["kafka"] = c.Kafka.Ping
	}
	return handlers.NewHandlerSet(c.Calls, guard, c.Logger, checks)
}

// EnsureTopics creates the call event topic when Kafka is configured.
func (c *Container) EnsureTopics(ctx context.Context) error {
	if c.Kafka == nil {
		return nil
	}
	return c.Kafka.EnsureTopics(ctx, c.Config.Kafka.EventTopic)
}

// Close releases all held resources.
func (c *Container) Close(_ context.Context) error {
	var errs []error
	if c.Events != nil {
		if err := c.Events.Close(); err != nil {
			errs = append(errs, fmt.Errorf("event publisher close: %w", err))
		}
	}
	if c.Kafka != nil {
		if err := c.Kafka.Close(); err != nil {
			errs = append(errs, fmt.Errorf("kafka close: %w", err))
		}
	}
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis close: %w", err))
		}
	}
	if c.Logger != nil {
		c.Logger.Sync()
	}
	return errors.Join(errs...)
}
