package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Elahizes/spin-wheel/internal/platform/retry"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type options struct {
	observer QueryObserver
	maxConns int32
}

type Option func(*options)

// WithQueryObserver reports every query's duration and outcome to o.
func WithQueryObserver(o QueryObserver) Option {
	return func(opts *options) { opts.observer = o }
}

// WithMaxConns overrides the pool size derived from the URL.
func WithMaxConns(n int32) Option {
	return func(opts *options) { opts.maxConns = n }
}

// Connect opens a pool and waits until the database answers, retrying
// transient failures with the startup policy.
func Connect(ctx context.Context, databaseURL string, opts ...Option) (*pgxpool.Pool, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	poolCfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}
	if o.observer != nil {
		poolCfg.ConnConfig.Tracer = &queryTracer{observer: o.observer}
	}
	if o.maxConns > 0 {
		poolCfg.MaxConns = o.maxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	policy := retry.Startup
	policy.OnRetry = func(attempt int, err error, backoff time.Duration) {
		slog.Warn("Database not reachable, retrying", "attempt", attempt, "backoff", backoff, "error", err)
	}
	if err := retry.DoVoid(ctx, policy, retry.Transient, func(ctx context.Context) error {
		err := pool.Ping(ctx)
		if isConfigError(err) {
			return retry.Permanent(err)
		}
		return err
	}); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	slog.Info("Database connected",
		"sslmode", sslMode(databaseURL),
		"max_conns", poolCfg.MaxConns,
		"traced", o.observer != nil)
	return pool, nil
}

// isConfigError reports rejected credentials (class 28) and unknown
// databases, which no retry will fix.
func isConfigError(err error) bool {
	pgErr, ok := errors.AsType[*pgconn.PgError](err)
	if !ok {
		return false
	}
	return strings.HasPrefix(pgErr.Code, "28") || pgErr.Code == "3D000"
}

func sslMode(databaseURL string) string {
	u, err := url.Parse(databaseURL)
	if err != nil {
		return "unknown"
	}
	if mode := strings.ToLower(u.Query().Get("sslmode")); mode != "" {
		return mode
	}
	return "prefer (default)"
}
