package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig encapsulates all runtime configuration knobs of the upag CLI.
type AppConfig struct {
	App      AppSettings
	Log      LogSettings
	Upag     UpagSettings
	Database DatabaseSettings
	Audit    AuditSettings
}

type AppSettings struct {
	Name        string
	Environment string
}

type LogSettings struct {
	Level string
}

type UpagSettings struct {
	APIKey                string
	BaseURL               string
	Timeout               time.Duration
	RateLimitRPS          float64 // 0 disables the rate limit
	MaxConcurrentRequests int     // 0 disables the in-flight cap
}

type DatabaseSettings struct {
	Host            string
	Port            int
	Database        string
	User            string
	Password        string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Configured reports whether enough is set to open a connection.
func (d DatabaseSettings) Configured() bool {
	return d.Host != "" && d.Database != ""
}

type AuditSettings struct {
	Enabled         bool
	LogRequestBody  bool
	LogResponseBody bool
	MaxBodySize     int
}

// Load resolves the configuration from environment variables.
// A .env file in the working directory is loaded first when present;
// variables already set in the environment take precedence over it.
func Load() (AppConfig, error) {
	_ = godotenv.Load()

	cfg := AppConfig{
		App: AppSettings{
			Name:        getEnv("APP_NAME", "upag-cli"),
			Environment: getEnv("APP_ENV", "local"),
		},
		Log: LogSettings{
			Level: getEnv("LOG_LEVEL", "warn"),
		},
		Upag: UpagSettings{
			APIKey:                strings.TrimSpace(os.Getenv("UPAG_API_KEY")),
			BaseURL:               strings.TrimSpace(os.Getenv("UPAG_BASE_URL")),
			Timeout:               getEnvAsDuration("UPAG_TIMEOUT", 30*time.Second),
			RateLimitRPS:          getEnvAsFloat("UPAG_RATE_LIMIT_RPS", 0),
			MaxConcurrentRequests: getEnvAsInt("UPAG_MAX_CONCURRENT_REQUESTS", 0),
		},
		Database: DatabaseSettings{
			Host:            strings.TrimSpace(os.Getenv("DB_HOST")),
			Port:            getEnvAsInt("DB_PORT", 5432),
			Database:        getEnv("DB_NAME", "upag"),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", ""),
			SSLMode:         getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 5),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 1),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		Audit: AuditSettings{
			Enabled:         getEnvAsBool("AUDIT_ENABLED", false),
			LogRequestBody:  getEnvAsBool("AUDIT_LOG_REQUEST_BODY", true),
			LogResponseBody: getEnvAsBool("AUDIT_LOG_RESPONSE_BODY", true),
			MaxBodySize:     getEnvAsInt("AUDIT_MAX_BODY_SIZE", 102400),
		},
	}

	if cfg.Upag.APIKey == "" {
		return cfg, errors.New("invalid config: UPAG_API_KEY is required")
	}
	if cfg.Upag.BaseURL != "" &&
		!strings.HasPrefix(cfg.Upag.BaseURL, "https://") && !strings.HasPrefix(cfg.Upag.BaseURL, "http://") {
		return cfg, errors.New("invalid config: UPAG_BASE_URL must be an absolute http(s) URL")
	}
	if cfg.Upag.Timeout <= 0 {
		return cfg, errors.New("invalid config: UPAG_TIMEOUT must be greater than 0")
	}
	if cfg.Upag.RateLimitRPS < 0 {
		return cfg, errors.New("invalid config: UPAG_RATE_LIMIT_RPS cannot be negative")
	}
	if cfg.Upag.MaxConcurrentRequests < 0 {
		return cfg, errors.New("invalid config: UPAG_MAX_CONCURRENT_REQUESTS cannot be negative")
	}
	if cfg.Audit.MaxBodySize <= 0 {
		return cfg, errors.New("invalid config: AUDIT_MAX_BODY_SIZE must be greater than 0")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}
