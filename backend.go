package upag

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	ctxutil "github.com/upag-io/upag-go/internal/infrastructure/context"
	infrahttp "github.com/upag-io/upag-go/internal/infrastructure/http"
	"github.com/upag-io/upag-go/internal/infrastructure/metrics"
)

// Backend performs authenticated calls against the Upag REST surface. Paths
// are relative to the base URL and may carry a query string. A non-nil out
// receives the decoded response body. Every failure is an *Error.
type Backend interface {
	Get(ctx context.Context, path string, out any, opts ...RequestOption) error
	Post(ctx context.Context, path string, body, out any, opts ...RequestOption) error
	Put(ctx context.Context, path string, body, out any, opts ...RequestOption) error
	Delete(ctx context.Context, path string, out any, opts ...RequestOption) error
}

// RequestOption customizes a single request.
type RequestOption func(*requestOptions)

type requestOptions struct {
	headers http.Header
}

// WithHeader adds a header to a single request. It cannot replace the
// Authorization header.
func WithHeader(key, value string) RequestOption {
	return func(o *requestOptions) {
		o.headers.Set(key, value)
	}
}

// WithIdempotencyKey sets the Idempotency-Key header, letting the server
// deduplicate retried creates.
func WithIdempotencyKey(key string) RequestOption {
	return WithHeader("Idempotency-Key", key)
}

// WithCorrelationID returns a context whose calls carry id as X-Correlation-ID.
// Calls without one get a generated id.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return ctxutil.WithCorrelationID(ctx, id)
}

// httpBackend is the Backend used by Client. It keeps no per-call state and
// is safe for concurrent use.
type httpBackend struct {
	baseURL   string
	apiKey    string
	userAgent string
	client    *infrahttp.TracedClient
	limiter   *infrahttp.RequestLimiter
	metrics   *metrics.Recorder
}

func newHTTPBackend(cfg Config) (*httpBackend, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, ErrAPIKeyRequired
	}
	if cfg.Timeout < 0 {
		return nil, &ConfigError{Field: "Timeout", Message: "must not be negative"}
	}
	if cfg.RateLimit < 0 {
		return nil, &ConfigError{Field: "RateLimit", Message: "must not be negative"}
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if !strings.HasPrefix(baseURL, "https://") && !strings.HasPrefix(baseURL, "http://") {
		return nil, &ConfigError{Field: "BaseURL", Message: "must be an absolute http(s) URL"}
	}

	recorder, err := metrics.NewRecorder(cfg.Metrics)
	if err != nil {
		return nil, &ConfigError{Field: "Metrics", Message: err.Error()}
	}

	limiter := infrahttp.NewRequestLimiter(cfg.RateLimit, cfg.MaxConcurrentRequests)

	var inner infrahttp.Doer = cfg.HTTPClient
	if cfg.HTTPClient == nil {
		inner = infrahttp.NewClient(&infrahttp.ClientConfig{
			Timeout:         cfg.Timeout,
			Transport:       cfg.Transport,
			MaxConnsPerHost: limiter.MaxConcurrent(),
		})
	}

	traced := infrahttp.NewTracedClient(&infrahttp.TracedClientConfig{
		AuditEnabled:    cfg.AuditRepository != nil,
		LogRequestBody:  cfg.LogRequestBody,
		LogResponseBody: cfg.LogResponseBody,
		MaxBodySize:     cfg.MaxBodySize,
	}, inner, cfg.Logger, cfg.AuditRepository)

	return &httpBackend{
		baseURL:   baseURL,
		apiKey:    apiKey,
		userAgent: userAgent,
		client:    traced,
		limiter:   limiter,
		metrics:   recorder,
	}, nil
}

func (b *httpBackend) Get(ctx context.Context, path string, out any, opts ...RequestOption) error {
	return b.call(ctx, http.MethodGet, path, nil, out, opts)
}

func (b *httpBackend) Post(ctx context.Context, path string, body, out any, opts ...RequestOption) error {
	return b.call(ctx, http.MethodPost, path, body, out, opts)
}

func (b *httpBackend) Put(ctx context.Context, path string, body, out any, opts ...RequestOption) error {
	return b.call(ctx, http.MethodPut, path, body, out, opts)
}

func (b *httpBackend) Delete(ctx context.Context, path string, out any, opts ...RequestOption) error {
	return b.call(ctx, http.MethodDelete, path, nil, out, opts)
}

// Close waits for pending audit writes.
func (b *httpBackend) Close() error {
	b.client.Wait()
	return nil
}

func (b *httpBackend) call(ctx context.Context, method, path string, body, out any, opts []RequestOption) error {
	resource, operation := describe(method, path)
	start := time.Now()

	err := b.do(ctx, method, path, operation, body, out, opts)

	b.metrics.Observe(method, resource, outcome(err), time.Since(start))
	return err
}

func (b *httpBackend) do(ctx context.Context, method, path, operation string, body, out any, opts []RequestOption) error {
	ctx, _ = ctxutil.EnsureCorrelationID(ctx)
	ctx = ctxutil.WithOperation(ctx, operation)

	var payload io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return newClientError(fmt.Errorf("encode request body: %w", err))
		}
		payload = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, b.baseURL+path, payload)
	if err != nil {
		return newClientError(fmt.Errorf("build request: %w", err))
	}

	o := requestOptions{headers: http.Header{}}
	for _, opt := range opts {
		opt(&o)
	}
	for key, values := range o.headers {
		req.Header[key] = values
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", b.userAgent)
	req.Header.Set("Authorization", "Bearer "+b.apiKey)

	release, err := b.limiter.Acquire(ctx)
	if err != nil {
		return newClientError(fmt.Errorf("wait for request slot: %w", err))
	}
	defer release()

	// Nothing has been sent yet, so a context that is already done is a client failure.
	if err := ctx.Err(); err != nil {
		return newClientError(fmt.Errorf("request not sent: %w", err))
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return transportError(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return newNetworkError(fmt.Errorf("read response body: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(resp.StatusCode, data)
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		e := newClientError(fmt.Errorf("decode response: %w", err))
		e.StatusCode = resp.StatusCode
		return e
	}
	return nil
}

// transportError classifies a failed round trip. Only failures after the
// request left the client are network errors.
func transportError(err error) *Error {
	if errors.Is(err, infrahttp.ErrRequestBody) {
		return newClientError(err)
	}
	return newNetworkError(err)
}

// describe derives the metrics resource label and the audit operation name
// from a relative path, e.g. "/customers/cus_1" -> ("customers", "GET /customers/{id}").
func describe(method, path string) (resource, operation string) {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	segments := strings.Split(strings.Trim(path, "/"), "/")
	resource = segments[0]

	operation = method + " /" + resource
	if len(segments) > 1 {
		operation += "/{id}"
	}
	return resource, operation
}

func outcome(err error) string {
	if err == nil {
		return metrics.OutcomeSuccess
	}
	switch {
	case IsNetworkError(err):
		return metrics.OutcomeNetworkError
	case IsClientError(err):
		return metrics.OutcomeClientError
	default:
		return metrics.OutcomeAPIError
	}
}
