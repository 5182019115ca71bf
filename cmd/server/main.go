package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"
	goredis "github.com/redis/go-redis/v9"

	"github.com/Elahizes/spin-wheel/internal/adapter/auth"
	"github.com/Elahizes/spin-wheel/internal/adapter/httpserver"
	"github.com/Elahizes/spin-wheel/internal/adapter/kafka"
	"github.com/Elahizes/spin-wheel/internal/adapter/metrics"
	"github.com/Elahizes/spin-wheel/internal/adapter/postgres"
	"github.com/Elahizes/spin-wheel/internal/adapter/redis"
	"github.com/Elahizes/spin-wheel/internal/adapter/websocket"
	"github.com/Elahizes/spin-wheel/internal/app"
	"github.com/Elahizes/spin-wheel/internal/domain"
	"github.com/Elahizes/spin-wheel/internal/platform/config"
	"github.com/Elahizes/spin-wheel/internal/platform/logging"
	"github.com/Elahizes/spin-wheel/internal/platform/version"
)

const shutdownTimeout = 10 * time.Second

func runGracefulShutdown(srv *httpserver.Server, dashboards *websocket.Handler, publisher *kafka.AuditPublisher) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}
		if err := dashboards.Shutdown(shutdownCtx); err != nil {
			slog.Error("Dashboard shutdown error", "error", err)
		}
		if publisher != nil {
			if err := publisher.Close(); err != nil {
				slog.Error("Failed to close audit publisher", "error", err)
			}
		}

		close(done)
	}()

	return done
}

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func setupDB(cfg *config.Config, m *metrics.PostgresMetrics) *pgxpool.Pool {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := postgres.Connect(ctx, cfg.DatabaseURL, postgres.WithQueryObserver(m))
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	if err := postgres.RunMigrationsWithLock(ctx, pool); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	return pool
}

func setupRedis(cfg *config.Config, m *metrics.RedisMetrics) *goredis.Client {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := redis.NewClient(ctx, cfg.RedisURL, redis.NewMetricsHook(m), redis.NewCircuitBreakerHook(m))
	if err != nil {
		slog.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}

	if cfg.RedisKeyspaceEvents {
		if err := redis.EnableKeyspaceEvents(ctx, client); err != nil {
			slog.Error("Failed to enable keyspace notifications", "error", err)
			os.Exit(1)
		}
	}
	return client
}

func setupAuditor(cfg *config.Config) (domain.DeletionAuditor, *kafka.AuditPublisher) {
	if !cfg.AuditEnabled() {
		slog.Info("Deletion audit disabled (KAFKA_BROKERS not set)")
		return nil, nil
	}
	publisher := kafka.NewAuditPublisher(cfg.KafkaBrokers, cfg.KafkaAuditTopic)
	slog.Info("Deletion audit enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaAuditTopic)
	return publisher, publisher
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()

	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Application starting", "env", cfg.AppEnv, "port", cfg.Port, "version", version.Get().Version)

	registry := metrics.NewRegistry()
	redisMetrics := metrics.NewRedisMetrics(registry)

	pool := setupDB(cfg, metrics.NewPostgresMetrics(registry))
	defer pool.Close()

	redisClient := setupRedis(cfg, redisMetrics)
	defer func() { _ = redisClient.Close() }()

	spinStore := redis.NewSpinStore(redisClient)
	principals := postgres.NewPrincipalRepo(pool)
	prizes := postgres.NewPrizeRepo(pool)
	codec := auth.NewCodec(cfg.AuthTokenSecret, cfg.AuthTokenIssuer, cfg.AuthTokenTTL, clock)

	auditor, publisher := setupAuditor(cfg)

	deleter, err := app.NewDeleter(spinStore, auditor, metrics.NewDeleteMetrics(registry), clock, cfg.DeleteChunkSize)
	if err != nil {
		slog.Error("Failed to create deleter", "error", err)
		os.Exit(1)
	}
	gate := app.NewGate(principals, codec, cfg.AdminSetupSecret, cfg.AuthCacheTTL, clock)
	catalog := app.NewCatalog(prizes, principals)

	dashboards := websocket.NewHandler(gate, spinStore, metrics.NewFeedMetrics(registry), metrics.NewWebSocketMetrics(registry), clock, websocket.Config{
		AllowedOrigins: cfg.DashboardAllowedOrigins,
		Development:    cfg.AppEnv != "production",
		DefaultLimit:   cfg.RecentEventsLimit,
		MaxConnections: cfg.MaxWebSocketConnections,
	})

	healthChecks := []httpserver.HealthCheck{
		{Name: "redis", Check: func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }},
		{Name: "postgres", Check: pool.Ping},
	}

	srv := httpserver.NewServer(cfg, httpserver.Services{
		Deleter:     deleter,
		Gate:        gate,
		Catalog:     catalog,
		Dashboard:   dashboards,
		Metrics:     metrics.Handler(registry),
		HTTPMetrics: metrics.NewHTTPMetrics(registry),
	}, healthChecks)

	done := runGracefulShutdown(srv, dashboards, publisher)

	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
}
