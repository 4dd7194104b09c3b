package http

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/upag-io/upag-go/audit"
	ctxutil "github.com/upag-io/upag-go/internal/infrastructure/context"
	"github.com/upag-io/upag-go/internal/infrastructure/security"
)

// ErrRequestBody marks failures to read the outgoing request body. Such
// requests never reach the network.
var ErrRequestBody = errors.New("read request body")

// Doer is satisfied by *http.Client and by TracedClient itself.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// TracedClient wraps an HTTP client to log every Upag round trip and,
// when an audit repository is configured, persist a sanitized audit record.
type TracedClient struct {
	client       Doer
	log          *slog.Logger
	auditRepo    audit.Repository
	auditEnabled bool
	logReqBody   bool
	logRespBody  bool
	maxBodySize  int
	pending      sync.WaitGroup
}

// TracedClientConfig holds configuration for the traced HTTP client.
type TracedClientConfig struct {
	AuditEnabled    bool
	LogRequestBody  bool
	LogResponseBody bool
	MaxBodySize     int
}

// NewTracedClient creates a traced client around client. A nil cfg disables
// body logging and auditing.
func NewTracedClient(cfg *TracedClientConfig, client Doer, log *slog.Logger, auditRepo audit.Repository) *TracedClient {
	if cfg == nil {
		cfg = &TracedClientConfig{}
	}
	maxBodySize := cfg.MaxBodySize
	if maxBodySize == 0 {
		maxBodySize = 102400 // 100KB
	}
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &TracedClient{
		client:       client,
		log:          log,
		auditRepo:    auditRepo,
		auditEnabled: cfg.AuditEnabled && auditRepo != nil,
		logReqBody:   cfg.LogRequestBody,
		logRespBody:  cfg.LogResponseBody,
		maxBodySize:  maxBodySize,
	}
}

// Do executes the request, logs it and hands a sanitized copy to the audit repository.
func (c *TracedClient) Do(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	correlationID := ctxutil.GetCorrelationID(ctx)
	operation := c.extractOperation(req)
	start := time.Now()

	if correlationID != "" {
		req.Header.Set("X-Correlation-ID", correlationID)
	}

	var requestBody []byte
	if req.Body != nil && req.Body != http.NoBody {
		var err error
		requestBody, err = io.ReadAll(req.Body)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrRequestBody, err)
		}
		req.Body.Close()
		req.Body = io.NopCloser(bytes.NewReader(requestBody))
	}

	c.logRequest(correlationID, operation, req, requestBody)

	resp, err := c.client.Do(req)
	duration := time.Since(start)

	var responseBody []byte
	if resp != nil && resp.Body != nil {
		var readErr error
		responseBody, readErr = io.ReadAll(resp.Body)
		resp.Body.Close()
		resp.Body = io.NopCloser(bytes.NewReader(responseBody))
		if readErr != nil && err == nil {
			err = fmt.Errorf("read response body: %w", readErr)
			resp = nil
		}
	}

	c.logResponse(correlationID, operation, req, resp, err, duration, responseBody)

	if c.auditEnabled {
		record := c.buildRecord(correlationID, operation, req, resp, err, duration, requestBody, responseBody)
		c.pending.Add(1)
		go func() {
			defer c.pending.Done()
			defer func() {
				if r := recover(); r != nil {
					c.log.Error("Panic in audit persistence",
						"panic", r,
						"correlation_id", correlationID,
						"operation", operation,
					)
				}
			}()

			// The request context may already be cancelled; the audit write outlives it.
			saveCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if saveErr := c.auditRepo.Save(saveCtx, record); saveErr != nil {
				c.log.Error("Failed to persist audit record",
					"error", saveErr,
					"correlation_id", correlationID,
					"operation", operation,
				)
			}
		}()
	}

	return resp, err
}

// Wait blocks until every in-flight audit write has finished.
func (c *TracedClient) Wait() {
	c.pending.Wait()
}

func (c *TracedClient) logRequest(correlationID, operation string, req *http.Request, body []byte) {
	attrs := []any{
		"correlation_id", correlationID,
		"operation", operation,
		"method", req.Method,
		"url", security.SanitizeURL(req.URL.String()),
	}
	if c.logReqBody && len(body) > 0 {
		attrs = append(attrs, "request_body", string(security.SanitizeBody(body, c.maxBodySize)))
	}

	c.log.Debug("upag_request", attrs...)
}

func (c *TracedClient) logResponse(correlationID, operation string, req *http.Request, resp *http.Response, err error, duration time.Duration, body []byte) {
	attrs := []any{
		"correlation_id", correlationID,
		"operation", operation,
		"method", req.Method,
		"url", security.SanitizeURL(req.URL.String()),
		"duration_ms", duration.Milliseconds(),
	}

	if err != nil {
		attrs = append(attrs, "error", err.Error())
		c.log.Error("upag_request_failed", attrs...)
		return
	}

	attrs = append(attrs, "status", resp.StatusCode, "response_size_bytes", len(body))
	if c.logRespBody && len(body) > 0 {
		attrs = append(attrs, "response_body", string(security.SanitizeBody(body, c.maxBodySize)))
	}

	switch {
	case resp.StatusCode >= 500:
		c.log.Error("upag_response", attrs...)
	case resp.StatusCode >= 400:
		c.log.Warn("upag_response", attrs...)
	default:
		c.log.Info("upag_response", attrs...)
	}
}

func (c *TracedClient) buildRecord(correlationID, operation string, req *http.Request, resp *http.Response, err error, duration time.Duration, requestBody, responseBody []byte) audit.Record {
	record := audit.Record{
		CorrelationID:  correlationID,
		Operation:      operation,
		RequestMethod:  req.Method,
		RequestURL:     security.SanitizeURL(req.URL.String()),
		RequestHeaders: security.SanitizeHeaders(req.Header),
		RequestBody:    security.SanitizeBody(requestBody, c.maxBodySize),
		DurationMs:     duration.Milliseconds(),
		CreatedAt:      time.Now().UTC(),
	}

	if resp != nil {
		status := resp.StatusCode
		record.ResponseStatus = &status
		record.ResponseHeaders = security.SanitizeHeaders(resp.Header)
		record.ResponseBody = security.SanitizeBody(responseBody, c.maxBodySize)
	}
	if err != nil {
		record.ErrorMessage = err.Error()
	}

	return record
}

// extractOperation prefers the operation stored in the request context and
// falls back to "<METHOD> <last path segment>".
func (c *TracedClient) extractOperation(req *http.Request) string {
	if op := ctxutil.GetOperation(req.Context()); op != "" {
		return op
	}

	parts := strings.Split(strings.Trim(req.URL.Path, "/"), "/")
	if last := parts[len(parts)-1]; last != "" {
		return req.Method + " " + last
	}
	return req.Method
}
