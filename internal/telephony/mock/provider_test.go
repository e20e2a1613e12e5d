package mock

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/acme/vapi-caller/internal/domain"
	"github.com/acme/vapi-caller/internal/vapi"
	apperrors "github.com/acme/vapi-caller/pkg/errors"
)

func TestProviderWalksLifecycle(t *testing.T) {
	p := NewProvider()
	ctx := context.Background()

	created, err := p.CreateCall(ctx, vapi.CreateCallRequest{
		Customer: vapi.Customer{Number: "+14804146609"},
		AssistantOverrides: &vapi.AssistantOverrides{VariableValues: map[string]string{
			"listing_name":     "Sunnyview Apartments",
			"joined_questions": "- Can I host loud parties?\n- Is parking included?",
		}},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Value.Status != string(domain.CallStatusQueued) {
		t.Fatalf("expected queued, got %q", created.Value.Status)
	}

	want := []domain.CallStatus{domain.CallStatusRinging, domain.CallStatusInProgress, domain.CallStatusEnded, domain.CallStatusEnded}
	var last *vapi.Result[vapi.CallRecord]
	for i, status := range want {
		last, err = p.GetCall(ctx, created.Value.ID)
		if err != nil {
			t.Fatalf("get %d: %v", i, err)
		}
		if last.Value.Status != string(status) {
			t.Fatalf("step %d: expected %q, got %q", i, status, last.Value.Status)
		}
	}

	if !strings.Contains(last.Value.Summary(), "Sunnyview Apartments") {
		t.Fatalf("expected summary to mention listing, got %q", last.Value.Summary())
	}
	if !strings.Contains(last.Value.Transcript(), "Is parking included?") {
		t.Fatalf("expected transcript to contain questions, got %q", last.Value.Transcript())
	}
	if len(last.Raw) == 0 {
		t.Fatalf("expected raw body")
	}
}

func TestProviderUnknownCall(t *testing.T) {
	p := NewProvider()
	res, err := p.GetCall(context.Background(), "nope")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 result, got %d", res.StatusCode)
	}
	if _, err := p.GetCall(context.Background(), ""); !errors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
