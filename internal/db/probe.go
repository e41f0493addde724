package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/cblogserver/backend/internal/config"
	"github.com/cblogserver/backend/internal/platform/retry"
)

// ConnectivityError reports that the probe could not reach the database.
type ConnectivityError struct {
	Host     string
	Database string
	Err      error
}

func (e *ConnectivityError) Error() string {
	return fmt.Sprintf("connection test to %s/%s failed: %v", e.Host, e.Database, e.Err)
}

func (e *ConnectivityError) Unwrap() error { return e.Err }

// Prober opens one throwaway connection with the validated credentials and
// closes it again. Only this check is retried; queries never are.
type Prober struct {
	Policy retry.Policy
	Logger *slog.Logger

	openMySQL func(dsn string) (*sql.DB, error)
}

func NewProber(policy retry.Policy, logger *slog.Logger) *Prober {
	if logger == nil {
		logger = slog.Default()
	}
	return &Prober{Policy: policy, Logger: logger}
}

func (p *Prober) Probe(ctx context.Context, cfg *config.Configuration) error {
	policy := p.Policy
	policy.OnRetry = func(attempt int, err error, backoff time.Duration) {
		p.Logger.WarnContext(ctx, "Connection test failed, retrying",
			"host", cfg.DB.Hostname, "database", cfg.DB.Database,
			"attempt", attempt, "backoff", backoff, "error", err)
	}

	p.Logger.InfoContext(ctx, "Connection test", "driver", cfg.DB.Driver, "host", cfg.DB.Hostname, "database", cfg.DB.Database)
	err := retry.DoVoid(ctx, policy, classify, func() error {
		return p.dial(ctx, cfg)
	})
	if err != nil {
		return &ConnectivityError{Host: cfg.DB.Hostname, Database: cfg.DB.Database, Err: err}
	}
	p.Logger.InfoContext(ctx, "Connection test passed", "host", cfg.DB.Hostname, "database", cfg.DB.Database)
	return nil
}

func (p *Prober) dial(ctx context.Context, cfg *config.Configuration) error {
	switch cfg.DB.Driver {
	case config.DriverSQLite:
		return probeSQLite(ctx, cfg.DB.Database)
	case config.DriverMySQL:
		return p.probeMySQL(ctx, cfg.DB)
	default:
		return fmt.Errorf("unsupported driver %q", cfg.DB.Driver)
	}
}

func (p *Prober) probeMySQL(ctx context.Context, d config.Database) error {
	open := p.openMySQL
	if open == nil {
		open = func(dsn string) (*sql.DB, error) { return sql.Open("mysql", dsn) }
	}
	db, err := open(DSN(d))
	if err != nil {
		return err
	}
	defer db.Close()
	db.SetMaxOpenConns(1)
	return db.PingContext(ctx)
}

// classify stops on credential and schema errors, which waiting will not fix.
func classify(err error) retry.Action {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case 1044, 1045, 1049: // access denied for database, access denied for user, unknown database
			return retry.Stop
		}
	}
	return retry.Retry
}
