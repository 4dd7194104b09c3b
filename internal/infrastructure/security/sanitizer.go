package security

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"unicode/utf8"
)

// Sensitive header names that should be redacted.
var sensitiveHeaders = map[string]bool{
	"authorization":       true,
	"proxy-authorization": true,
	"cookie":              true,
	"set-cookie":          true,
	"x-api-key":           true,
	"idempotency-key":     true,
}

// Sensitive field names in JSON bodies and query strings. Matching is by
// case-insensitive substring so "cardNumber" and "api_key" are both caught.
var sensitiveFields = []string{
	"password",
	"secret",
	"token",
	"apikey",
	"api_key",
	"authorization",
	"credential",
	"number",
	"cvv",
	"cvc",
	"taxid",
	"pixkey",
}

const redactedValue = "[REDACTED]"

// SanitizeHeaders removes sensitive headers from an HTTP header map.
// Returns a new map with sensitive values redacted.
func SanitizeHeaders(headers http.Header) map[string]string {
	sanitized := make(map[string]string, len(headers))
	for key, values := range headers {
		if sensitiveHeaders[strings.ToLower(key)] {
			sanitized[key] = redactedValue
			continue
		}
		sanitized[key] = strings.Join(values, ", ")
	}
	return sanitized
}

// SanitizeBody redacts card data and credentials from a JSON body.
// Bodies larger than maxSize are replaced by a truncated preview; non-JSON
// bodies are wrapped so the result is always valid JSON.
func SanitizeBody(body []byte, maxSize int) json.RawMessage {
	if len(body) == 0 {
		return nil
	}

	if !utf8.Valid(body) {
		return wrap(map[string]any{
			"_binary": true,
			"_size":   len(body),
			"_base64": base64.StdEncoding.EncodeToString(body),
		})
	}

	var data any
	if err := json.Unmarshal(body, &data); err != nil {
		return wrap(map[string]any{
			"_raw":    truncate(string(body), maxSize),
			"_format": "text",
		})
	}

	sanitized, err := json.Marshal(sanitizeValue(data))
	if err != nil {
		return wrap(map[string]any{"_format": "unserializable"})
	}

	if maxSize > 0 && len(sanitized) > maxSize {
		return wrap(map[string]any{
			"_truncated": true,
			"_size":      len(sanitized),
			"_preview":   string(sanitized[:maxSize]),
		})
	}

	return sanitized
}

// SanitizeURL redacts sensitive query parameter values from a URL.
func SanitizeURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.RawQuery == "" {
		return raw
	}

	query := u.Query()
	changed := false
	for key := range query {
		if isSensitiveField(key) {
			query.Set(key, redactedValue)
			changed = true
		}
	}
	if !changed {
		return raw
	}

	u.RawQuery = query.Encode()
	return u.String()
}

func isSensitiveField(name string) bool {
	lower := strings.ToLower(name)
	for _, field := range sensitiveFields {
		if strings.Contains(lower, field) {
			return true
		}
	}
	return false
}

func sanitizeValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for key, value := range val {
			if isSensitiveField(key) {
				out[key] = redactedValue
			} else {
				out[key] = sanitizeValue(value)
			}
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, value := range val {
			out[i] = sanitizeValue(value)
		}
		return out
	default:
		return val
	}
}

func truncate(s string, maxSize int) string {
	if maxSize > 0 && len(s) > maxSize {
		return s[:maxSize]
	}
	return s
}

func wrap(v map[string]any) json.RawMessage {
	result, _ := json.Marshal(v)
	return result
}
