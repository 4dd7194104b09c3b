package upag

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrorType is the normalized failure category of an API call.
type ErrorType string

const (
	// ErrorTypeAPI means the server answered with a non-2xx status.
	ErrorTypeAPI ErrorType = "api_error"
	// ErrorTypeNetwork means the request was sent but no response arrived.
	ErrorTypeNetwork ErrorType = "network_error"
	// ErrorTypeClient means the request could not be built or sent, or the
	// response body could not be decoded.
	ErrorTypeClient ErrorType = "client_error"
)

const networkErrorMessage = "No response received from server"

// Error is the single error shape returned by every API operation.
type Error struct {
	Type       ErrorType `json:"type"`
	Message    string    `json:"message"`
	Code       string    `json:"code,omitempty"`
	StatusCode int       `json:"statusCode,omitempty"`
	Details    any       `json:"details,omitempty"`

	// ServerType is the "type" reported in the API error body, if any.
	// It never replaces Type.
	ServerType string `json:"serverType,omitempty"`

	// Err is the underlying cause for network and client errors.
	Err error `json:"-"`
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("upag: ")
	b.WriteString(string(e.Type))
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " (status %d)", e.StatusCode)
	}
	if e.Code != "" {
		fmt.Fprintf(&b, " [%s]", e.Code)
	}
	b.WriteString(": ")
	b.WriteString(e.Message)
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// AsError extracts the *Error from err's chain.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsAPIError reports whether err is a server-side rejection.
func IsAPIError(err error) bool {
	e, ok := AsError(err)
	return ok && e.Type == ErrorTypeAPI
}

// IsNetworkError reports whether err means no response was received.
func IsNetworkError(err error) bool {
	e, ok := AsError(err)
	return ok && e.Type == ErrorTypeNetwork
}

// IsClientError reports whether err means the request never left the client.
func IsClientError(err error) bool {
	e, ok := AsError(err)
	return ok && e.Type == ErrorTypeClient
}

// ConfigError reports invalid client configuration. It is returned by the
// constructors before any network activity.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "upag: invalid config: " + e.Field + ": " + e.Message
}

// ErrAPIKeyRequired is returned when a client is built without an API key.
var ErrAPIKeyRequired = &ConfigError{Field: "APIKey", Message: "API key is required"}

// newAPIError converts a non-2xx response into an *Error. Each field of the
// JSON error body is decoded on its own, so an unexpected shape in one field
// does not drop the others. Bodies that are not a JSON object still produce
// an API error carrying the status.
func newAPIError(status int, body []byte) *Error {
	e := &Error{
		Type:       ErrorTypeAPI,
		StatusCode: status,
	}

	var fields map[string]json.RawMessage
	if len(body) > 0 && json.Unmarshal(body, &fields) == nil {
		e.ServerType = stringField(fields["type"])
		e.Message = stringField(fields["message"])
		e.Code = stringField(fields["code"])
		e.Details = anyField(fields["details"])
		if e.Details == nil {
			e.Details = anyField(fields["errors"])
		}
	}

	if e.Message == "" {
		e.Message = fmt.Sprintf("%d %s", status, http.StatusText(status))
	}
	return e
}

func stringField(raw json.RawMessage) string {
	var s string
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil {
		return ""
	}
	return s
}

func anyField(raw json.RawMessage) any {
	var v any
	if len(raw) == 0 || json.Unmarshal(raw, &v) != nil {
		return nil
	}
	return v
}

func newNetworkError(cause error) *Error {
	return &Error{
		Type:    ErrorTypeNetwork,
		Message: networkErrorMessage,
		Err:     cause,
	}
}

func newClientError(cause error) *Error {
	return &Error{
		Type:    ErrorTypeClient,
		Message: cause.Error(),
		Err:     cause,
	}
}
