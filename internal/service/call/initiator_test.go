package call

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/acme/vapi-caller/internal/queue"
	"github.com/acme/vapi-caller/internal/vapi"
	apperrors "github.com/acme/vapi-caller/pkg/errors"
)

func TestRenderQuestions(t *testing.T) {
	cases := []struct {
		name      string
		questions []string
		want      string
	}{
		{name: "none", questions: nil, want: ""},
		{name: "one", questions: []string{"Can I host loud parties?"}, want: "- Can I host loud parties?"},
		{
			name: "ordered",
			questions: []string{
				"Can I host loud parties?",
				"Did anyone famous live here in the past?",
				"What should I do about noise complaints?",
			},
			want: "- Can I host loud parties?\n- Did anyone famous live here in the past?\n- What should I do about noise complaints?",
		},
		{name: "inner newline flattened", questions: []string{"Is parking\nincluded? ", "Pets?"}, want: "- Is parking included?\n- Pets?"},
	}

	for _, tc := range cases {
		got := RenderQuestions(tc.questions)
		if got != tc.want {
			t.Errorf("%s: got %q, want %q", tc.name, got, tc.want)
		}
		if len(tc.questions) == 0 {
			continue
		}
		lines := strings.Split(got, "\n")
		if len(lines) != len(tc.questions) {
			t.Errorf("%s: expected %d lines, got %d", tc.name, len(tc.questions), len(lines))
		}
		for _, line := range lines {
			if !strings.HasPrefix(line, "- ") {
				t.Errorf("%s: line %q lacks bullet prefix", tc.name, line)
			}
		}
	}
}

func TestBuildCreateCallRequestDuplicatesNumber(t *testing.T) {
	req, err := BuildCreateCallRequest(StartCallInput{
		AssistantID:    "assistant",
		PhoneNumberID:  "phone",
		CustomerNumber: "+14804146609",
		ListingName:    "Sunnyview Apartments",
		ListingAddress: "123 Main St, Philadelphia, PA",
		Questions:      []string{"Can I host loud parties?"},
		Variables:      map[string]string{"listing_phone": "+10000000000", "tour_date": "Friday"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	vars := req.AssistantOverrides.VariableValues
	if req.Customer.Number != "+14804146609" || vars[VarListingPhone] != req.Customer.Number {
		t.Fatalf("expected customer.number and listing_phone to match, got %q and %q", req.Customer.Number, vars[VarListingPhone])
	}
	if vars[VarListingName] != "Sunnyview Apartments" || vars[VarListingAddress] != "123 Main St, Philadelphia, PA" {
		t.Fatalf("unexpected listing vars %v", vars)
	}
	if vars[VarJoinedQuestions] != "- Can I host loud parties?" {
		t.Fatalf("unexpected joined questions %q", vars[VarJoinedQuestions])
	}
	if vars["tour_date"] != "Friday" {
		t.Fatalf("expected extra variable to be kept")
	}
}

func TestBuildCreateCallRequestValidation(t *testing.T) {
	valid := StartCallInput{AssistantID: "a", PhoneNumberID: "p", CustomerNumber: "+14804146609"}
	cases := []StartCallInput{
		{PhoneNumberID: "p", CustomerNumber: "+14804146609"},
		{AssistantID: "a", CustomerNumber: "+14804146609"},
		{AssistantID: "a", PhoneNumberID: "p", CustomerNumber: "4804146609"},
		{AssistantID: "a", PhoneNumberID: "p", CustomerNumber: "+0123"},
		{AssistantID: "a", PhoneNumberID: "p", CustomerNumber: "(555) 123-4567"},
	}

	for _, tc := range cases {
		if _, err := BuildCreateCallRequest(tc); !errors.Is(err, apperrors.ErrValidation) {
			t.Errorf("expected validation error for %+v, got %v", tc, err)
		}
	}
	if _, err := BuildCreateCallRequest(valid); err != nil {
		t.Fatalf("unexpected error for valid input: %v", err)
	}
}

func TestStartCallAppliesDefaultsAndPublishes(t *testing.T) {
	provider := &scriptedProvider{}
	events := &recordingPublisher{}
	svc := NewService(provider, events, nil, Defaults{AssistantID: "default-assistant", PhoneNumberID: "default-phone"})

	res, err := svc.StartCall(context.Background(), StartCallInput{CustomerNumber: "+14804146609"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Value.ID != "call-1" {
		t.Fatalf("unexpected record %+v", res.Value)
	}
	if provider.created.AssistantID != "default-assistant" || provider.created.PhoneNumberID != "default-phone" {
		t.Fatalf("expected defaults to be applied, got %+v", provider.created)
	}
	if got := events.types(); len(got) != 1 || got[0] != queue.CallEventCreated {
		t.Fatalf("expected one created event, got %v", got)
	}
}

func TestStartCallSurfacesStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Invalid Key"}`))
	}))
	t.Cleanup(srv.Close)

	svc := NewService(vapi.New(vapi.Options{BaseURL: srv.URL, APIKey: "bad"}), nil, nil, Defaults{AssistantID: "a", PhoneNumberID: "p"})
	_, err := svc.StartCall(context.Background(), StartCallInput{CustomerNumber: "+14804146609"})

	var statusErr *vapi.StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected *vapi.StatusError, got %v", err)
	}
	if statusErr.StatusCode != http.StatusUnauthorized || statusErr.Body != `{"message":"Invalid Key"}` {
		t.Fatalf("unexpected status error %+v", statusErr)
	}
}

func TestStartCallRejectsSuccessWithoutCallID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"status":"queued"}`))
	}))
	t.Cleanup(srv.Close)

	events := &recordingPublisher{}
	svc := NewService(vapi.New(vapi.Options{BaseURL: srv.URL, APIKey: "k"}), events, nil, Defaults{AssistantID: "a", PhoneNumberID: "p"})
	res, err := svc.StartCall(context.Background(), StartCallInput{CustomerNumber: "+14804146609"})

	if !errors.Is(err, apperrors.ErrRemote) {
		t.Fatalf("expected ErrRemote, got %v", err)
	}
	if res != nil {
		t.Fatalf("expected no result, got %+v", res)
	}
	if got := events.types(); len(got) != 0 {
		t.Fatalf("expected no events, got %v", got)
	}
}

func TestStartCallKeepsNonJSONBody(t *testing.T) {
	const page = "<html>bad gateway</html>"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(page))
	}))
	t.Cleanup(srv.Close)

	svc := NewService(vapi.New(vapi.Options{BaseURL: srv.URL, APIKey: "k"}), nil, nil, Defaults{AssistantID: "a", PhoneNumberID: "p"})
	_, err := svc.StartCall(context.Background(), StartCallInput{CustomerNumber: "+14804146609"})

	var decodeErr *vapi.DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("expected *vapi.DecodeError, got %v", err)
	}
	if decodeErr.Body != page || decodeErr.StatusCode != http.StatusBadGateway {
		t.Fatalf("unexpected decode error %+v", decodeErr)
	}
}
