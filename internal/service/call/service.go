package call

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/acme/vapi-caller/internal/domain"
	"github.com/acme/vapi-caller/internal/queue"
	"github.com/acme/vapi-caller/internal/telephony"
	"github.com/acme/vapi-caller/pkg/logger"
)

// EventPublisher is responsible for emitting call events.
type EventPublisher interface {
	PublishCallEvent(ctx context.Context, event queue.CallEvent) error
}

// Defaults are applied when a request leaves a field empty.
type Defaults struct {
	AssistantID   string
	PhoneNumberID string
	PollInterval  time.Duration
	PollTimeout   time.Duration
}

// Service coordinates call creation and inspection.
type Service struct {
	provider        telephony.Provider
	events          EventPublisher
	logger          *logger.Logger
	defaults        Defaults
	summaryDefaults domain.SummaryDefaults
	minPollInterval time.Duration
	now             func() time.Time
	tracer          trace.Tracer
}

// Option customises a Service.
type Option func(*Service)

// WithDefaults overrides the texts returned for a missing summary or transcript.
func WithDefaults(summary, transcript string) Option {
	return func(s *Service) {
		s.summaryDefaults = domain.SummaryDefaults{Summary: summary, Transcript: transcript}
	}
}

// NewService builds the call service. events and lg may be nil.
func NewService(provider telephony.Provider, events EventPublisher, lg *logger.Logger, defaults Defaults, opts ...Option) *Service {
	if events == nil {
		events = queue.NopPublisher{}
	}
	if lg == nil {
		lg = logger.NewNop()
	}
	s := &Service{
		provider:        provider,
		events:          events,
		logger:          lg,
		defaults:        defaults,
		summaryDefaults: domain.DefaultSummaryDefaults(),
		minPollInterval: MinPollInterval,
		now:             func() time.Time { return time.Now().UTC() },
		tracer:          otel.Tracer("vapi.callservice"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) publish(ctx context.Context, event queue.CallEvent) {
	if err := s.events.PublishCallEvent(ctx, event); err != nil {
		s.logger.WithContext(ctx).Warn("call service: publish event",
			zap.String("call_id", event.CallID),
			zap.String("event", string(event.Type)),
			zap.Error(err),
		)
	}
}
