// Package logger builds the slog logger used by the upag CLI.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// New builds the CLI logger on stderr; stdout carries command output.
func New(appName, level, environment string) *slog.Logger {
	return NewWithWriter(os.Stderr, appName, level, environment)
}

// NewWithWriter writes text records with a short clock in development
// environments (local, dev, development) and JSON records everywhere else.
// Every record carries the app and env attributes.
func NewWithWriter(w io.Writer, appName, level, environment string) *slog.Logger {
	env := strings.ToLower(strings.TrimSpace(environment))
	opts := &slog.HandlerOptions{Level: parseLevel(level)}

	var handler slog.Handler
	if isDevelopment(env) {
		opts.ReplaceAttr = clockTime
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	return slog.New(handler).With("app", appName, "env", env)
}

func isDevelopment(env string) bool {
	switch env {
	case "local", "dev", "development":
		return true
	}
	return false
}

// clockTime drops the date from the top-level time attribute.
func clockTime(groups []string, a slog.Attr) slog.Attr {
	if len(groups) == 0 && a.Key == slog.TimeKey && a.Value.Kind() == slog.KindTime {
		return slog.String(slog.TimeKey, a.Value.Time().Format("15:04:05.000"))
	}
	return a
}

// parseLevel accepts slog level names in any case ("debug", "WARN", "info+2").
// Unknown values mean info.
func parseLevel(level string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		return slog.LevelInfo
	}
	return l
}
