package call

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/acme/vapi-caller/internal/domain"
	"github.com/acme/vapi-caller/internal/queue"
	"github.com/acme/vapi-caller/internal/vapi"
)

// MinPollInterval is the lower bound for both poll interval and timeout.
const MinPollInterval = time.Second

// WaitOptions controls WaitForCall. Zero values fall back to the service defaults.
type WaitOptions struct {
	Interval time.Duration
	Timeout  time.Duration
}

// WaitForCall polls a call until it ends, the timeout elapses or the remote
// service reports a status outside the known lifecycle.
func (s *Service) WaitForCall(ctx context.Context, callID string, opts WaitOptions) (*domain.WaitResult, error) {
	interval := s.clamp(opts.Interval, s.defaults.PollInterval, 3*time.Second)
	timeout := s.clamp(opts.Timeout, s.defaults.PollTimeout, 5*time.Minute)

	ctx, span := s.tracer.Start(ctx, "call.wait", trace.WithAttributes(
		attribute.String("call.id", callID),
		attribute.Int64("interval_ms", interval.Milliseconds()),
		attribute.Int64("timeout_ms", timeout.Milliseconds()),
	))
	defer span.End()

	log := s.logger.WithContext(ctx)
	start := s.now()
	var last domain.CallStatus

	for {
		res, err := s.provider.GetCall(ctx, callID)
		if err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("call service: poll call %s: %w", callID, err)
		}
		if res.StatusCode < 200 || res.StatusCode >= 300 {
			err := &vapi.StatusError{Method: http.MethodGet, Path: "/call/" + url.PathEscape(callID), StatusCode: res.StatusCode, Body: string(res.Raw)}
			span.RecordError(err)
			return nil, fmt.Errorf("call service: poll call %s: %w", callID, err)
		}

		record := res.Value
		status := domain.NormalizeStatus(record.Status, record.State)
		if !status.Known() {
			log.Warn("call poll: unexpected status", zap.String("call_id", callID), zap.String("status", string(status)))
			return &domain.WaitResult{CallID: callID, Status: status, Unexpected: true, Raw: res.Raw}, nil
		}

		if status != last {
			log.Debug("call poll: status changed", zap.String("call_id", callID), zap.String("status", string(status)))
			s.publish(ctx, queue.NewCallEvent(queue.CallEventStatusChanged, callID, status))
			last = status
		}

		if status.Terminal() {
			result := &domain.WaitResult{
				CallID:     callID,
				Status:     status,
				Summary:    optionalString(record.Summary()),
				Transcript: optionalString(record.Transcript()),
			}
			event := queue.NewCallEvent(queue.CallEventEnded, callID, status)
			event.Summary = record.Summary()
			s.publish(ctx, event)
			return result, nil
		}

		if s.now().Sub(start) > timeout {
			span.SetAttributes(attribute.Bool("timed_out", true))
			return &domain.WaitResult{CallID: callID, Status: status, TimedOut: true}, nil
		}

		if err := sleep(ctx, interval); err != nil {
			return nil, fmt.Errorf("call service: poll call %s: %w", callID, err)
		}
	}
}

func (s *Service) clamp(requested, configured, fallback time.Duration) time.Duration {
	d := requested
	if d <= 0 {
		d = configured
	}
	if d <= 0 {
		d = fallback
	}
	if d < s.minPollInterval {
		d = s.minPollInterval
	}
	return d
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func optionalString(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
