package vapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/acme/vapi-caller/internal/config"
	apperrors "github.com/acme/vapi-caller/pkg/errors"
)

// DefaultBaseURL is the public Vapi API endpoint.
const DefaultBaseURL = "https://api.vapi.ai"

// RetryPolicy bounds retries of GET requests. POST requests are never retried.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// Options configures a Client.
type Options struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	Retry      RetryPolicy
	HTTPClient *http.Client
}

// Client issues authenticated requests against the Vapi API.
// It holds no mutable state and is safe for concurrent use.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	retry   RetryPolicy
	tracer  trace.Tracer
}

// New constructs a client.
func New(opts Options) *Client {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}

	retry := opts.Retry
	if retry.MaxAttempts < 1 {
		retry.MaxAttempts = 1
	}

	return &Client{
		baseURL: baseURL,
		apiKey:  opts.APIKey,
		http:    httpClient,
		retry:   retry,
		tracer:  otel.Tracer("vapi.client"),
	}
}

// NewFromConfig constructs a client from application configuration.
func NewFromConfig(cfg config.VapiConfig) *Client {
	return New(Options{
		BaseURL: cfg.BaseURL,
		APIKey:  cfg.APIKey,
		Timeout: cfg.RequestTimeout,
		Retry: RetryPolicy{
			MaxAttempts: cfg.Retry.MaxAttempts,
			BaseDelay:   cfg.Retry.BaseDelay,
			MaxDelay:    cfg.Retry.MaxDelay,
		},
	})
}

// Send performs one authenticated request and returns the JSON body with its status.
// Any status is returned as a Response when the body is JSON; the caller decides
// what counts as success. A non-JSON body yields *DecodeError with the raw text.
func (c *Client) Send(ctx context.Context, method, path string, body any) (*Response, error) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("vapi: marshal %s %s body: %w", method, path, err)
		}
	}

	attempts := 1
	if method == http.MethodGet {
		attempts = c.retry.MaxAttempts
	}

	for attempt := 1; ; attempt++ {
		resp, err := c.do(ctx, method, path, payload)
		if attempt >= attempts || !shouldRetry(ctx, resp, err) {
			return resp, err
		}
		if waitErr := sleep(ctx, c.backoff(attempt)); waitErr != nil {
			return resp, err
		}
	}
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte) (*Response, error) {
	ctx, span := c.tracer.Start(ctx, "vapi.request", trace.WithAttributes(
		attribute.String("http.method", method),
		attribute.String("vapi.path", path),
	))
	defer span.End()

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.resolve(path), reader)
	if err != nil {
		return nil, fmt.Errorf("vapi: build request: %w", err)
	}
	c.applyHeaders(req)

	res, err := c.http.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport failure")
		return nil, fmt.Errorf("%w: vapi: %s %s: %w", apperrors.ErrTransport, method, path, err)
	}
	defer res.Body.Close()

	span.SetAttributes(attribute.Int("http.status_code", res.StatusCode))

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("%w: vapi: read %s %s body: %w", apperrors.ErrTransport, method, path, err)
	}

	var probe json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		span.RecordError(err)
		return nil, &DecodeError{StatusCode: res.StatusCode, Body: string(raw), Err: err}
	}

	return &Response{StatusCode: res.StatusCode, Body: probe}, nil
}

func (c *Client) resolve(path string) string {
	return c.baseURL + "/" + strings.TrimLeft(path, "/")
}

func (c *Client) applyHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
}

func (c *Client) backoff(attempt int) time.Duration {
	base := c.retry.BaseDelay
	if base <= 0 {
		base = 500 * time.Millisecond
	}
	maxDelay := c.retry.MaxDelay
	if maxDelay <= 0 {
		maxDelay = 5 * time.Second
	}

	delay := time.Duration(math.Pow(2, float64(attempt-1))) * base
	if delay > maxDelay {
		delay = maxDelay
	}
	return delay
}

func shouldRetry(ctx context.Context, resp *Response, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	if err != nil {
		var decodeErr *DecodeError
		if apperrors.As(err, &decodeErr) {
			return retryableStatus(decodeErr.StatusCode)
		}
		return apperrors.Is(err, apperrors.ErrTransport)
	}
	return retryableStatus(resp.StatusCode)
}

func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= 500
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// CreateCall submits POST /call. A non-2xx response is returned as *StatusError.
func (c *Client) CreateCall(ctx context.Context, req CreateCallRequest) (*Result[CallRecord], error) {
	const path = "/call"
	resp, err := c.Send(ctx, http.MethodPost, path, req)
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, &StatusError{Method: http.MethodPost, Path: path, StatusCode: resp.StatusCode, Body: string(resp.Body)}
	}
	return decodeResult[CallRecord](resp)
}

// GetCall fetches GET /call/{id}. Any JSON response is decoded, whatever its status.
func (c *Client) GetCall(ctx context.Context, callID string) (*Result[CallRecord], error) {
	if strings.TrimSpace(callID) == "" {
		return nil, fmt.Errorf("%w: vapi: call id is required", apperrors.ErrValidation)
	}
	resp, err := c.Send(ctx, http.MethodGet, "/call/"+url.PathEscape(callID), nil)
	if err != nil {
		return nil, err
	}
	return decodeResult[CallRecord](resp)
}
