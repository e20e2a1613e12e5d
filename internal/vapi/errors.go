package vapi

import (
	"fmt"
	"net/http"

	apperrors "github.com/acme/vapi-caller/pkg/errors"
)

// DecodeError reports a response body that could not be decoded.
// Body holds the response text verbatim.
type DecodeError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("vapi: decode response (status %d): %v", e.StatusCode, e.Err)
}

func (e *DecodeError) Unwrap() []error {
	if e.Err == nil {
		return []error{apperrors.ErrDecode}
	}
	return []error{apperrors.ErrDecode, e.Err}
}

// StatusError reports a non-2xx response to a call that requires success.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("vapi: %s %s returned status %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

func (e *StatusError) Unwrap() []error {
	errs := []error{apperrors.ErrRemote}
	switch {
	case e.StatusCode == http.StatusNotFound:
		errs = append(errs, apperrors.ErrNotFound)
	case e.StatusCode == http.StatusConflict:
		errs = append(errs, apperrors.ErrConflict)
	case e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500:
		errs = append(errs, apperrors.ErrUnavailable)
	}
	return errs
}
