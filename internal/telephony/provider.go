package telephony

import (
	"context"

	"github.com/acme/vapi-caller/internal/vapi"
)

// Provider abstracts the voice-call integration.
// *vapi.Client satisfies it; mock.Provider is an in-memory stand-in.
type Provider interface {
	CreateCall(ctx context.Context, req vapi.CreateCallRequest) (*vapi.Result[vapi.CallRecord], error)
	GetCall(ctx context.Context, callID string) (*vapi.Result[vapi.CallRecord], error)
}

var _ Provider = (*vapi.Client)(nil)
