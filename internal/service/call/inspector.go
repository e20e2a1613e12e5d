package call

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/acme/vapi-caller/internal/domain"
	apperrors "github.com/acme/vapi-caller/pkg/errors"
)

// GetCallSummary fetches a call and projects its summary and transcript.
// Missing or empty fields become the configured defaults; only transport and
// decode failures are returned as errors. Non-2xx JSON responses are projected
// like any other record and reported through HTTPStatus.
func (s *Service) GetCallSummary(ctx context.Context, callID string) (domain.CallSummary, error) {
	if strings.TrimSpace(callID) == "" {
		return domain.CallSummary{}, fmt.Errorf("%w: call id is required", apperrors.ErrValidation)
	}

	ctx, span := s.tracer.Start(ctx, "call.inspect", trace.WithAttributes(attribute.String("call.id", callID)))
	defer span.End()

	res, err := s.provider.GetCall(ctx, callID)
	if err != nil {
		span.RecordError(err)
		return domain.CallSummary{}, fmt.Errorf("call service: get call %s: %w", callID, err)
	}

	record := res.Value
	id := record.ID
	if id == "" {
		id = callID
	}

	return s.summaryDefaults.Project(domain.CallSummary{
		CallID:     id,
		Status:     domain.NormalizeStatus(record.Status, record.State),
		HTTPStatus: res.StatusCode,
		Summary:    record.Summary(),
		Transcript: record.Transcript(),
	}), nil
}
