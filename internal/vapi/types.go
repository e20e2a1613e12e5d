package vapi

import "encoding/json"

// CreateCallRequest is the body of POST /call.
type CreateCallRequest struct {
	AssistantID        string              `json:"assistantId"`
	PhoneNumberID      string              `json:"phoneNumberId"`
	Customer           Customer            `json:"customer"`
	AssistantOverrides *AssistantOverrides `json:"assistantOverrides,omitempty"`
}

// Customer identifies the dialled party.
type Customer struct {
	Number string `json:"number"`
}

// AssistantOverrides carries per-call prompt variables.
type AssistantOverrides struct {
	VariableValues map[string]string `json:"variableValues,omitempty"`
}

// CallRecord is the remote representation of one phone call.
// Analysis and Artifact are only populated once the call has ended.
type CallRecord struct {
	ID          string    `json:"id"`
	Type        string    `json:"type,omitempty"`
	Status      string    `json:"status,omitempty"`
	State       string    `json:"state,omitempty"`
	EndedReason string    `json:"endedReason,omitempty"`
	CreatedAt   string    `json:"createdAt,omitempty"`
	EndedAt     string    `json:"endedAt,omitempty"`
	Customer    *Customer `json:"customer,omitempty"`
	Analysis    *Analysis `json:"analysis,omitempty"`
	Artifact    *Artifact `json:"artifact,omitempty"`
}

type Analysis struct {
	Summary           string          `json:"summary,omitempty"`
	SuccessEvaluation json.RawMessage `json:"successEvaluation,omitempty"`
}

type Artifact struct {
	Transcript   string `json:"transcript,omitempty"`
	RecordingURL string `json:"recordingUrl,omitempty"`
}

// Summary returns analysis.summary or "" when either level is absent.
func (r *CallRecord) Summary() string {
	if r == nil || r.Analysis == nil {
		return ""
	}
	return r.Analysis.Summary
}

// Transcript returns artifact.transcript or "" when either level is absent.
func (r *CallRecord) Transcript() string {
	if r == nil || r.Artifact == nil {
		return ""
	}
	return r.Artifact.Transcript
}

// Response is a raw API response whose body is known to be valid JSON.
type Response struct {
	StatusCode int
	Body       json.RawMessage
}

// OK reports a 2xx status.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Decode unmarshals the body into v. Failures keep the raw body.
func (r *Response) Decode(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return &DecodeError{StatusCode: r.StatusCode, Body: string(r.Body), Err: err}
	}
	return nil
}

// Result pairs a decoded value with the status and body it came from.
type Result[T any] struct {
	StatusCode int
	Value      T
	Raw        json.RawMessage
}

func decodeResult[T any](resp *Response) (*Result[T], error) {
	out := &Result[T]{StatusCode: resp.StatusCode, Raw: resp.Body}
	if err := resp.Decode(&out.Value); err != nil {
		return nil, err
	}
	return out, nil
}
