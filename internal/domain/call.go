package domain

import (
	"encoding/json"
	"strings"
)

// CallStatus enumerates lifecycle stages reported by the remote service.
type CallStatus string

const (
	CallStatusScheduled  CallStatus = "scheduled"
	CallStatusQueued     CallStatus = "queued"
	CallStatusRinging    CallStatus = "ringing"
	CallStatusInProgress CallStatus = "in-progress"
	CallStatusForwarding CallStatus = "forwarding"
	CallStatusEnded      CallStatus = "ended"
)

// Default texts used when a call has no summary or transcript yet.
const (
	NoSummaryFound    = "No summary found"
	NoTranscriptFound = "No transcript found"
)

var knownStatuses = map[CallStatus]struct{}{
	CallStatusScheduled:  {},
	CallStatusQueued:     {},
	CallStatusRinging:    {},
	CallStatusInProgress: {},
	CallStatusForwarding: {},
	CallStatusEnded:      {},
}

// NormalizeStatus prefers status over state and lower-cases the result.
func NormalizeStatus(status, state string) CallStatus {
	s := strings.TrimSpace(status)
	if s == "" {
		s = strings.TrimSpace(state)
	}
	return CallStatus(strings.ToLower(s))
}

// Known reports whether the status belongs to the documented lifecycle.
func (s CallStatus) Known() bool {
	_, ok := knownStatuses[s]
	return ok
}

// Terminal reports whether analysis and artifacts can be expected.
func (s CallStatus) Terminal() bool {
	return s == CallStatusEnded
}

// CallSummary is the projection returned by the call inspector.
// Summary and Transcript are never empty.
type CallSummary struct {
	CallID     string     `json:"call_id"`
	Status     CallStatus `json:"status"`
	HTTPStatus int        `json:"http_status"`
	Summary    string     `json:"summary"`
	Transcript string     `json:"transcript"`
}

// SummaryDefaults holds the texts substituted for absent fields.
type SummaryDefaults struct {
	Summary    string
	Transcript string
}

// DefaultSummaryDefaults returns the standard "not found" texts.
func DefaultSummaryDefaults() SummaryDefaults {
	return SummaryDefaults{Summary: NoSummaryFound, Transcript: NoTranscriptFound}
}

// ValueOr returns value unless it is empty, in which case fallback is returned.
// Absent and empty are treated the same.
func ValueOr(value string, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

// WaitResult describes how a poll for call completion finished.
type WaitResult struct {
	CallID     string          `json:"call_id"`
	Status     CallStatus      `json:"status"`
	Summary    *string         `json:"summary,omitempty"`
	Transcript *string         `json:"transcript,omitempty"`
	TimedOut   bool            `json:"timed_out,omitempty"`
	Unexpected bool            `json:"unexpected,omitempty"`
	Raw        json.RawMessage `json:"raw,omitempty"`
}

// Project fills empty summary and transcript fields with the defaults.
func (d SummaryDefaults) Project(s CallSummary) CallSummary {
	s.Summary = ValueOr(s.Summary, d.Summary)
	s.Transcript = ValueOr(s.Transcript, d.Transcript)
	return s
}
