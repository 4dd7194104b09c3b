package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithWriter_JSONOutsideDevelopment(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "upag-cli", "info", " Production ")

	log.Info("upag_response", "status", 201)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "upag_response", entry["msg"])
	assert.Equal(t, "upag-cli", entry["app"])
	assert.Equal(t, "production", entry["env"])
	assert.Equal(t, float64(201), entry["status"])

	_, err := time.Parse(time.RFC3339Nano, entry["time"].(string))
	assert.NoError(t, err, "JSON records keep the full timestamp")
}

func TestNewWithWriter_TextInDevelopment(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "upag-cli", "debug", "local")

	log.Debug("upag_request", "operation", "GET /customers")

	out := buf.String()
	assert.Contains(t, out, "level=DEBUG")
	assert.Contains(t, out, "msg=upag_request")
	assert.Contains(t, out, "app=upag-cli")
	assert.Contains(t, out, "env=local")
	assert.Regexp(t, `^time=\d{2}:\d{2}:\d{2}\.\d{3} `, out)
}

func TestNewWithWriter_FiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "upag-cli", "warn", "production")

	log.Info("hidden")
	assert.Zero(t, buf.Len())

	log.Warn("shown")
	assert.NotZero(t, buf.Len())
}

func TestClockTime(t *testing.T) {
	at := time.Date(2024, 3, 1, 14, 5, 9, 123_000_000, time.UTC)

	got := clockTime(nil, slog.Time(slog.TimeKey, at))
	assert.Equal(t, "14:05:09.123", got.Value.String())

	nested := clockTime([]string{"request"}, slog.Time(slog.TimeKey, at))
	assert.Equal(t, slog.KindTime, nested.Value.Kind(), "grouped attributes are left alone")

	other := clockTime(nil, slog.String("status", "ok"))
	assert.Equal(t, "ok", other.Value.String())
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"info+2":  slog.LevelInfo + 2,
		"verbose": slog.LevelInfo,
		"":        slog.LevelInfo,
	}

	for input, want := range tests {
		assert.Equal(t, want, parseLevel(input), "level %q", input)
	}
}
