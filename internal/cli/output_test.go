package cli

import (
	"bytes"
	"flag"
	"strings"
	"testing"

	"github.com/acme/vapi-caller/internal/domain"
)

func TestPrintResponseIndentsJSON(t *testing.T) {
	var buf bytes.Buffer
	PrintResponse(&buf, 201, []byte(`{"id":"call-1"}`))

	want := "Status: 201\n{\n  \"id\": \"call-1\"\n}\n"
	if buf.String() != want {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

func TestPrintResponseKeepsNonJSONVerbatim(t *testing.T) {
	var buf bytes.Buffer
	PrintResponse(&buf, 502, []byte("<html>Bad Gateway</html>"))

	if buf.String() != "Status: 502\n<html>Bad Gateway</html>\n" {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

func TestPrintSummarySections(t *testing.T) {
	var buf bytes.Buffer
	PrintSummary(&buf, domain.CallSummary{
		HTTPStatus: 200,
		Status:     domain.CallStatusEnded,
		Summary:    domain.NoSummaryFound,
		Transcript: "AI: Hello",
	})

	out := buf.String()
	for _, want := range []string{"Status: 200", "Call status: ended", "--- Analysis Summary ---\nNo summary found", "--- Transcript ---\nAI: Hello"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestPrintWaitResult(t *testing.T) {
	summary := "Tenant asked about parking."
	cases := []struct {
		name   string
		res    domain.WaitResult
		want   []string
		absent []string
	}{
		{
			name:   "ended",
			res:    domain.WaitResult{Status: domain.CallStatusEnded, Summary: &summary},
			want:   []string{"Call status: ended", "--- Analysis Summary ---\nTenant asked about parking.", "--- Transcript ---\nNo transcript found"},
			absent: []string{"unexpected", "timed out"},
		},
		{
			name:   "timed out",
			res:    domain.WaitResult{Status: domain.CallStatusRinging, TimedOut: true},
			want:   []string{"Call status: ringing (timed out"},
			absent: []string{"--- Analysis Summary ---"},
		},
		{
			name:   "unexpected",
			res:    domain.WaitResult{Status: "voicemail", Unexpected: true, Raw: []byte(`{"state":"Voicemail"}`)},
			want:   []string{"Call status: voicemail (unexpected status)", "--- Raw Record ---", `"state": "Voicemail"`},
			absent: []string{"--- Analysis Summary ---"},
		},
	}

	for _, tc := range cases {
		var buf bytes.Buffer
		PrintWaitResult(&buf, &tc.res)
		out := buf.String()
		for _, want := range tc.want {
			if !strings.Contains(out, want) {
				t.Errorf("%s: expected %q in output:\n%s", tc.name, want, out)
			}
		}
		for _, absent := range tc.absent {
			if strings.Contains(out, absent) {
				t.Errorf("%s: unexpected %q in output:\n%s", tc.name, absent, out)
			}
		}
	}
}

func TestStringListCollectsRepeatedFlags(t *testing.T) {
	var questions StringList
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.Var(&questions, "q", "")
	if err := fs.Parse([]string{"-q", "one", "-q", "two"}); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(questions) != 2 || questions[1] != "two" {
		t.Fatalf("unexpected list %v", questions)
	}
}
