package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	upag "github.com/upag-io/upag-go"
	"github.com/upag-io/upag-go/audit"
	"github.com/upag-io/upag-go/audit/postgres"
	"github.com/upag-io/upag-go/internal/infrastructure/config"
	"github.com/upag-io/upag-go/internal/infrastructure/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdout)
	stop()

	if err != nil {
		writeError(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	if len(args) == 0 || isHelp(args[0]) {
		fmt.Fprint(stdout, usage)
		return nil
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New(cfg.App.Name, cfg.Log.Level, cfg.App.Environment)

	auditRepo, closeAudit := openAudit(ctx, cfg, log)
	defer closeAudit()

	client, err := upag.NewWithConfig(upag.Config{
		APIKey:                cfg.Upag.APIKey,
		BaseURL:               cfg.Upag.BaseURL,
		Timeout:               cfg.Upag.Timeout,
		Logger:                log,
		LogRequestBody:        cfg.Audit.LogRequestBody,
		LogResponseBody:       cfg.Audit.LogResponseBody,
		MaxBodySize:           cfg.Audit.MaxBodySize,
		RateLimit:             cfg.Upag.RateLimitRPS,
		MaxConcurrentRequests: cfg.Upag.MaxConcurrentRequests,
		AuditRepository:       auditRepo,
	})
	if err != nil {
		return err
	}
	defer client.Close()

	return execute(ctx, client, args, stdout)
}

// openAudit connects the audit trail when it is enabled and a database is
// configured. Connection failures disable auditing instead of failing the command.
func openAudit(ctx context.Context, cfg config.AppConfig, log *slog.Logger) (audit.Repository, func()) {
	noop := func() {}

	if !cfg.Audit.Enabled {
		return nil, noop
	}
	if !cfg.Database.Configured() {
		log.Warn("Audit trail disabled: database not configured",
			"audit_enabled_config", cfg.Audit.Enabled,
		)
		return nil, noop
	}

	pool, err := postgres.NewPool(ctx, postgres.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		Database:        cfg.Database.Database,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		SSLMode:         cfg.Database.SSLMode,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		log.Warn("Audit trail disabled: failed to connect to database",
			"error", err,
			"host", cfg.Database.Host,
			"database", cfg.Database.Database,
			"user", cfg.Database.User,
			"password_set", cfg.Database.Password != "",
		)
		return nil, noop
	}

	if err := postgres.Migrate(ctx, pool, log); err != nil {
		log.Warn("Audit trail disabled: migration failed", "error", err)
		pool.Close()
		return nil, noop
	}

	log.Debug("Audit trail enabled",
		"database", cfg.Database.Database,
		"max_body_size", cfg.Audit.MaxBodySize,
	)
	return postgres.NewRepository(pool, log), pool.Close
}

// writeError prints err as the normalized error JSON.
func writeError(w io.Writer, err error) {
	e, ok := upag.AsError(err)
	if !ok {
		e = &upag.Error{Type: upag.ErrorTypeClient, Message: err.Error()}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(e)
}

func isHelp(arg string) bool {
	return arg == "help" || arg == "-h" || arg == "--help"
}

const usage = `Usage: upag <resource> <action> [flags] [id]

Resources and actions:
  customers        create --data JSON|@file
                   get ID
                   update ID --data JSON|@file
                   delete ID
                   list [--limit N] [--page N]
  payment-methods  create --data JSON|@file
                   get ID
                   delete ID
                   list [--limit N] [--page N] [--customer ID]
  payments         create --data JSON|@file
                   get ID
                   list [--limit N] [--page N] [--customer ID] [--status STATUS]

Global flags:
  --correlation-id ID   send ID as X-Correlation-ID
  --idempotency-key K   send K as Idempotency-Key (create only)

Configuration is read from the environment and an optional .env file.
UPAG_API_KEY is required.
`
