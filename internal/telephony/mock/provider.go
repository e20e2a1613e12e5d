package mock

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/acme/vapi-caller/internal/domain"
	"github.com/acme/vapi-caller/internal/vapi"
	apperrors "github.com/acme/vapi-caller/pkg/errors"
)

var progression = []domain.CallStatus{
	domain.CallStatusQueued,
	domain.CallStatusRinging,
	domain.CallStatusInProgress,
	domain.CallStatusEnded,
}

// Provider simulates the remote call lifecycle in memory.
// Every GetCall advances a call one step until it has ended.
type Provider struct {
	mu    sync.Mutex
	calls map[string]*simulatedCall
	now   func() time.Time
}

type simulatedCall struct {
	record vapi.CallRecord
	step   int
	vars   map[string]string
}

// NewProvider constructs an empty mock provider.
func NewProvider() *Provider {
	return &Provider{
		calls: make(map[string]*simulatedCall),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// CreateCall registers a queued call.
func (p *Provider) CreateCall(ctx context.Context, req vapi.CreateCallRequest) (*vapi.Result[vapi.CallRecord], error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var vars map[string]string
	if req.AssistantOverrides != nil {
		vars = req.AssistantOverrides.VariableValues
	}

	customer := req.Customer
	call := &simulatedCall{
		record: vapi.CallRecord{
			ID:        uuid.NewString(),
			Type:      "outboundPhoneCall",
			Status:    string(progression[0]),
			CreatedAt: p.now().Format(time.RFC3339),
			Customer:  &customer,
		},
		vars: vars,
	}

	p.mu.Lock()
	p.calls[call.record.ID] = call
	p.mu.Unlock()

	return result(http.StatusCreated, call.record)
}

// GetCall returns the call and advances its status. Unknown ids yield a 404 result,
// as the remote service does.
func (p *Provider) GetCall(ctx context.Context, callID string) (*vapi.Result[vapi.CallRecord], error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(callID) == "" {
		return nil, fmt.Errorf("%w: mock: call id is required", apperrors.ErrValidation)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	call, ok := p.calls[callID]
	if !ok {
		raw := json.RawMessage(`{"message":"Not Found","statusCode":404}`)
		return &vapi.Result[vapi.CallRecord]{StatusCode: http.StatusNotFound, Raw: raw}, nil
	}

	if call.step < len(progression)-1 {
		call.step++
		call.record.Status = string(progression[call.step])
		if progression[call.step].Terminal() {
			call.record.EndedAt = p.now().Format(time.RFC3339)
			call.record.EndedReason = "customer-ended-call"
			call.record.Analysis = &vapi.Analysis{Summary: p.summaryFor(call)}
			call.record.Artifact = &vapi.Artifact{Transcript: p.transcriptFor(call)}
		}
	}

	return result(http.StatusOK, call.record)
}

func (p *Provider) summaryFor(call *simulatedCall) string {
	name := call.vars["listing_name"]
	if name == "" {
		name = "the listing"
	}
	return fmt.Sprintf("Simulated call to %s completed.", name)
}

func (p *Provider) transcriptFor(call *simulatedCall) string {
	lines := []string{"AI: Hello, I'm calling with a few questions."}
	for _, q := range strings.Split(call.vars["joined_questions"], "\n") {
		if q = strings.TrimSpace(strings.TrimPrefix(q, "- ")); q != "" {
			lines = append(lines, "AI: "+q, "User: I'll have to check on that.")
		}
	}
	return strings.Join(lines, "\n")
}

func result(status int, record vapi.CallRecord) (*vapi.Result[vapi.CallRecord], error) {
	raw, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("mock: marshal record: %w", err)
	}
	return &vapi.Result[vapi.CallRecord]{StatusCode: status, Value: record, Raw: raw}, nil
}
