package call

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/acme/vapi-caller/internal/domain"
	"github.com/acme/vapi-caller/internal/queue"
	"github.com/acme/vapi-caller/internal/vapi"
	apperrors "github.com/acme/vapi-caller/pkg/errors"
)

// Template variable names referenced by the assistant prompt.
const (
	VarListingName     = "listing_name"
	VarListingPhone    = "listing_phone"
	VarListingAddress  = "listing_address"
	VarJoinedQuestions = "joined_questions"
)

var e164 = regexp.MustCompile(`^\+[1-9]\d{1,14}$`)

// StartCallInput encapsulates the arguments for placing a call.
type StartCallInput struct {
	AssistantID    string
	PhoneNumberID  string
	CustomerNumber string
	ListingName    string
	ListingAddress string
	Questions      []string
	Variables      map[string]string
}

// RenderQuestions renders one "- <question>" line per entry, in order.
// Inner line breaks are flattened so the line count always equals len(questions).
func RenderQuestions(questions []string) string {
	lines := make([]string, 0, len(questions))
	for _, q := range questions {
		q = strings.Join(strings.Fields(q), " ")
		lines = append(lines, "- "+q)
	}
	return strings.Join(lines, "\n")
}

// BuildCreateCallRequest validates input and assembles the POST /call body.
// The customer number is sent both as the dialled number and as listing_phone.
func BuildCreateCallRequest(input StartCallInput) (vapi.CreateCallRequest, error) {
	if err := validateStartInput(input); err != nil {
		return vapi.CreateCallRequest{}, err
	}

	vars := make(map[string]string, len(input.Variables)+4)
	for k, v := range input.Variables {
		vars[k] = v
	}
	vars[VarListingName] = input.ListingName
	vars[VarListingPhone] = input.CustomerNumber
	vars[VarListingAddress] = input.ListingAddress
	vars[VarJoinedQuestions] = RenderQuestions(input.Questions)

	return vapi.CreateCallRequest{
		AssistantID:        input.AssistantID,
		PhoneNumberID:      input.PhoneNumberID,
		Customer:           vapi.Customer{Number: input.CustomerNumber},
		AssistantOverrides: &vapi.AssistantOverrides{VariableValues: vars},
	}, nil
}

func validateStartInput(input StartCallInput) error {
	if input.AssistantID == "" {
		return fmt.Errorf("%w: assistant id is required", apperrors.ErrValidation)
	}
	if input.PhoneNumberID == "" {
		return fmt.Errorf("%w: phone number id is required", apperrors.ErrValidation)
	}
	if !e164.MatchString(input.CustomerNumber) {
		return fmt.Errorf("%w: customer number %q is not in E.164 format", apperrors.ErrValidation, input.CustomerNumber)
	}
	return nil
}

// PrepareCall fills configured ids into input and builds the request without sending it.
func (s *Service) PrepareCall(input StartCallInput) (vapi.CreateCallRequest, error) {
	if input.AssistantID == "" {
		input.AssistantID = s.defaults.AssistantID
	}
	if input.PhoneNumberID == "" {
		input.PhoneNumberID = s.defaults.PhoneNumberID
	}
	return BuildCreateCallRequest(input)
}

// StartCall places an outbound call. Non-2xx responses surface as *vapi.StatusError;
// a success without a call id is an ErrRemote failure.
func (s *Service) StartCall(ctx context.Context, input StartCallInput) (*vapi.Result[vapi.CallRecord], error) {
	req, err := s.PrepareCall(input)
	if err != nil {
		return nil, err
	}

	ctx, span := s.tracer.Start(ctx, "call.start", trace.WithAttributes(
		attribute.String("assistant.id", req.AssistantID),
		attribute.Int("questions", len(input.Questions)),
	))
	defer span.End()

	res, err := s.provider.CreateCall(ctx, req)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("call service: create call: %w", err)
	}
	if res.Value.ID == "" {
		err := fmt.Errorf("%w: call service: create call: no call id returned (status %d)", apperrors.ErrRemote, res.StatusCode)
		span.RecordError(err)
		s.logger.WithContext(ctx).Error("call created without id", zap.Int("http_status", res.StatusCode))
		return nil, err
	}

	status := domain.NormalizeStatus(res.Value.Status, res.Value.State)
	span.SetAttributes(attribute.String("call.id", res.Value.ID))
	s.logger.WithContext(ctx).Info("call created",
		zap.String("call_id", res.Value.ID),
		zap.String("status", string(status)),
		zap.Int("http_status", res.StatusCode),
	)
	s.publish(ctx, queue.NewCallEvent(queue.CallEventCreated, res.Value.ID, status))

	return res, nil
}
