// Package cli holds the console formatting shared by the command line tools.
package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/acme/vapi-caller/internal/domain"
)

// PrintResponse writes "Status: <code>" followed by the body, indented when it is JSON
// and verbatim otherwise.
func PrintResponse(w io.Writer, status int, body []byte) {
	fmt.Fprintf(w, "Status: %d\n", status)

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, body, "", "  "); err != nil {
		fmt.Fprintln(w, string(body))
		return
	}
	fmt.Fprintln(w, pretty.String())
}

// PrintSummary writes the call status followed by the summary and transcript sections.
func PrintSummary(w io.Writer, s domain.CallSummary) {
	fmt.Fprintf(w, "Status: %d\n", s.HTTPStatus)
	if s.Status != "" {
		fmt.Fprintf(w, "Call status: %s\n", s.Status)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "--- Analysis Summary ---")
	fmt.Fprintln(w, s.Summary)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "--- Transcript ---")
	fmt.Fprintln(w, s.Transcript)
}

// PrintWaitResult writes the outcome of waiting for a call. Timeouts and statuses
// outside the known lifecycle are reported instead of the summary sections.
func PrintWaitResult(w io.Writer, res *domain.WaitResult) {
	switch {
	case res.Unexpected:
		fmt.Fprintf(w, "Call status: %s (unexpected status)\n", res.Status)
		fmt.Fprintln(w)
		fmt.Fprintln(w, "--- Raw Record ---")
		var pretty bytes.Buffer
		if err := json.Indent(&pretty, res.Raw, "", "  "); err != nil {
			fmt.Fprintln(w, string(res.Raw))
			return
		}
		fmt.Fprintln(w, pretty.String())
	case res.TimedOut:
		fmt.Fprintf(w, "Call status: %s (timed out waiting for the call to end)\n", res.Status)
	default:
		defaults := domain.DefaultSummaryDefaults()
		fmt.Fprintf(w, "Call status: %s\n", res.Status)
		fmt.Fprintln(w)
		fmt.Fprintln(w, "--- Analysis Summary ---")
		fmt.Fprintln(w, valueOr(res.Summary, defaults.Summary))
		fmt.Fprintln(w)
		fmt.Fprintln(w, "--- Transcript ---")
		fmt.Fprintln(w, valueOr(res.Transcript, defaults.Transcript))
	}
}

func valueOr(value *string, fallback string) string {
	if value == nil {
		return fallback
	}
	return domain.ValueOr(*value, fallback)
}

// StringList is a repeatable string flag.
type StringList []string

func (l *StringList) String() string {
	return fmt.Sprint([]string(*l))
}

func (l *StringList) Set(v string) error {
	*l = append(*l, v)
	return nil
}
