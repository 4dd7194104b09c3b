// Package postgres stores audit records in PostgreSQL through a pgx pool.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/upag-io/upag-go/audit"
)

const insertRecord = `
	INSERT INTO upag_audit_log (
		correlation_id, operation, request_method, request_url,
		request_headers, request_body, response_status, response_headers,
		response_body, duration_ms, error_message
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
`

const selectByCorrelationID = `
	SELECT id, correlation_id, operation, request_method, request_url,
	       request_headers, request_body, response_status, response_headers,
	       response_body, duration_ms, error_message, created_at
	FROM upag_audit_log
	WHERE correlation_id = $1
	ORDER BY created_at DESC
`

// Repository implements audit.Repository using PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

// NewRepository creates a PostgreSQL audit repository. log may be nil.
func NewRepository(pool *pgxpool.Pool, log *slog.Logger) *Repository {
	return &Repository{pool: pool, log: log}
}

var _ audit.Repository = (*Repository)(nil)

// Save persists an audit record.
func (r *Repository) Save(ctx context.Context, record audit.Record) error {
	args, err := insertArgs(record)
	if err != nil {
		return err
	}

	if _, err := r.pool.Exec(ctx, insertRecord, args...); err != nil {
		if r.log != nil {
			r.log.Error("Failed to insert audit record",
				"correlation_id", record.CorrelationID,
				"operation", record.Operation,
				"method", record.RequestMethod,
				"error", err,
			)
		}
		return fmt.Errorf("insert audit record: %w", err)
	}

	if r.log != nil {
		r.log.Debug("Audit record saved",
			"correlation_id", record.CorrelationID,
			"operation", record.Operation,
			"response_status", record.ResponseStatus,
			"duration_ms", record.DurationMs,
		)
	}
	return nil
}

// FindByCorrelationID retrieves all records with the given correlation ID.
func (r *Repository) FindByCorrelationID(ctx context.Context, correlationID string) ([]audit.Record, error) {
	rows, err := r.pool.Query(ctx, selectByCorrelationID, correlationID)
	if err != nil {
		return nil, fmt.Errorf("query audit records: %w", err)
	}

	records, err := pgx.CollectRows(rows, scanRecord)
	if err != nil {
		return nil, fmt.Errorf("collect audit records: %w", err)
	}
	return records, nil
}

// insertArgs maps a record onto the positional parameters of insertRecord.
func insertArgs(record audit.Record) ([]any, error) {
	requestHeaders, err := json.Marshal(headersOrEmpty(record.RequestHeaders))
	if err != nil {
		return nil, fmt.Errorf("marshal request headers: %w", err)
	}
	responseHeaders, err := json.Marshal(headersOrEmpty(record.ResponseHeaders))
	if err != nil {
		return nil, fmt.Errorf("marshal response headers: %w", err)
	}

	return []any{
		record.CorrelationID,
		record.Operation,
		record.RequestMethod,
		record.RequestURL,
		requestHeaders,
		nullableJSON(record.RequestBody),
		record.ResponseStatus,
		responseHeaders,
		nullableJSON(record.ResponseBody),
		record.DurationMs,
		record.ErrorMessage,
	}, nil
}

func scanRecord(row pgx.CollectableRow) (audit.Record, error) {
	var (
		record                          audit.Record
		requestHeaders, responseHeaders []byte
		requestBody, responseBody       []byte
	)

	err := row.Scan(
		&record.ID,
		&record.CorrelationID,
		&record.Operation,
		&record.RequestMethod,
		&record.RequestURL,
		&requestHeaders,
		&requestBody,
		&record.ResponseStatus,
		&responseHeaders,
		&responseBody,
		&record.DurationMs,
		&record.ErrorMessage,
		&record.CreatedAt,
	)
	if err != nil {
		return record, fmt.Errorf("scan audit record: %w", err)
	}

	if err := json.Unmarshal(requestHeaders, &record.RequestHeaders); err != nil {
		return record, fmt.Errorf("unmarshal request headers: %w", err)
	}
	if err := json.Unmarshal(responseHeaders, &record.ResponseHeaders); err != nil {
		return record, fmt.Errorf("unmarshal response headers: %w", err)
	}
	record.RequestBody = requestBody
	record.ResponseBody = responseBody

	return record, nil
}

func headersOrEmpty(h map[string]string) map[string]string {
	if h == nil {
		return map[string]string{}
	}
	return h
}

// nullableJSON keeps empty bodies as SQL NULL instead of an invalid jsonb literal.
func nullableJSON(body json.RawMessage) any {
	if len(body) == 0 {
		return nil
	}
	return []byte(body)
}
