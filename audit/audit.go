// Package audit describes the trail of Upag API round trips that a client can
// optionally persist. Records are sanitized before they reach a Repository.
package audit

import (
	"context"
	"encoding/json"
	"time"
)

// Record captures a single request/response exchange with the Upag API.
type Record struct {
	ID              int64
	CorrelationID   string
	Operation       string
	RequestMethod   string
	RequestURL      string
	RequestHeaders  map[string]string
	RequestBody     json.RawMessage
	ResponseStatus  *int
	ResponseHeaders map[string]string
	ResponseBody    json.RawMessage
	DurationMs      int64
	ErrorMessage    string
	CreatedAt       time.Time
}

// Repository defines the contract for persisting and retrieving audit records.
type Repository interface {
	// Save persists an audit record.
	Save(ctx context.Context, record Record) error

	// FindByCorrelationID returns every record sharing a correlation ID, newest first.
	FindByCorrelationID(ctx context.Context, correlationID string) ([]Record, error)
}
