package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"
	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/Elahizes/spin-wheel/internal/adapter/auth"
	"github.com/Elahizes/spin-wheel/internal/adapter/postgres"
	"github.com/Elahizes/spin-wheel/internal/adapter/redis"
	"github.com/Elahizes/spin-wheel/internal/app"
	"github.com/Elahizes/spin-wheel/internal/platform/config"
	"github.com/Elahizes/spin-wheel/internal/platform/logging"
)

// runtime holds configuration and lazily opened connections shared by the
// subcommands of one invocation.
type runtime struct {
	cfg     *config.Config
	clock   clockwork.Clock
	rdb     *goredis.Client
	pool    *pgxpool.Pool
	closers []func()
}

func newRootCommand() *cobra.Command {
	rt := &runtime{clock: clockwork.NewRealClock()}

	root := &cobra.Command{
		Use:          "spinadmin",
		Short:        "Spin wheel operator commands",
		Long:         "spinadmin runs admin operations against the configured spin store and principal database. Configuration is read from the environment (and .env) like the server.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			rt.cfg = cfg
			slog.SetDefault(logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat))
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			rt.close()
		},
	}

	root.AddCommand(
		newDeleteSpinsCommand(rt),
		newGrantAdminCommand(rt),
		newTokenCommand(rt),
		newSeedCommand(rt),
	)
	return root
}

func (rt *runtime) redis(ctx context.Context) (*goredis.Client, error) {
	if rt.rdb != nil {
		return rt.rdb, nil
	}
	client, err := redis.NewClient(ctx, rt.cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	rt.rdb = client
	rt.closers = append(rt.closers, func() { _ = client.Close() })
	return client, nil
}

func (rt *runtime) postgres(ctx context.Context) (*pgxpool.Pool, error) {
	if rt.pool != nil {
		return rt.pool, nil
	}
	pool, err := postgres.Connect(ctx, rt.cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	rt.closers = append(rt.closers, pool.Close)
	if err := postgres.RunMigrationsWithLock(ctx, pool); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	rt.pool = pool
	return pool, nil
}

func (rt *runtime) spinStore(ctx context.Context) (*redis.SpinStore, error) {
	client, err := rt.redis(ctx)
	if err != nil {
		return nil, err
	}
	return redis.NewSpinStore(client), nil
}

func (rt *runtime) gate(ctx context.Context) (*app.Gate, error) {
	pool, err := rt.postgres(ctx)
	if err != nil {
		return nil, err
	}
	codec := auth.NewCodec(rt.cfg.AuthTokenSecret, rt.cfg.AuthTokenIssuer, rt.cfg.AuthTokenTTL, rt.clock)
	// A one-shot process has nothing to cache.
	return app.NewGate(postgres.NewPrincipalRepo(pool), codec, rt.cfg.AdminSetupSecret, 0, rt.clock), nil
}

func (rt *runtime) close() {
	for i := len(rt.closers) - 1; i >= 0; i-- {
		rt.closers[i]()
	}
	rt.closers = nil
}
