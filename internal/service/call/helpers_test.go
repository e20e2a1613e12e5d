package call

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/acme/vapi-caller/internal/queue"
	"github.com/acme/vapi-caller/internal/vapi"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.CallEvent
}

func (p *recordingPublisher) PublishCallEvent(_ context.Context, event queue.CallEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) types() []queue.CallEventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]queue.CallEventType, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

// scriptedProvider replays a fixed sequence of call records, repeating the last one.
type scriptedProvider struct {
	mu      sync.Mutex
	records []vapi.CallRecord
	calls   int
	created *vapi.CreateCallRequest
}

func (p *scriptedProvider) CreateCall(_ context.Context, req vapi.CreateCallRequest) (*vapi.Result[vapi.CallRecord], error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.created = &req
	record := vapi.CallRecord{ID: "call-1", Status: "queued"}
	raw, _ := json.Marshal(record)
	return &vapi.Result[vapi.CallRecord]{StatusCode: http.StatusCreated, Value: record, Raw: raw}, nil
}

func (p *scriptedProvider) GetCall(_ context.Context, _ string) (*vapi.Result[vapi.CallRecord], error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	idx := p.calls
	if idx >= len(p.records) {
		idx = len(p.records) - 1
	}
	p.calls++
	record := p.records[idx]
	raw, _ := json.Marshal(record)
	return &vapi.Result[vapi.CallRecord]{StatusCode: http.StatusOK, Value: record, Raw: raw}, nil
}
