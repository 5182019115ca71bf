package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

// MaxStoreBatchOps is the remote store's documented per-transaction limit.
const MaxStoreBatchOps = 500

type Config struct {
	AppEnv      string `env:"APP_ENV" default:"development"`
	Port        string `env:"PORT" default:"8080"`
	DatabaseURL string `env:"DATABASE_URL"`
	RedisURL    string `env:"REDIS_URL"`
	LogLevel    string `env:"LOG_LEVEL" default:"info"`
	LogFormat   string `env:"LOG_FORMAT" default:"text"`

	// Enables keyspace notifications on the Redis server at startup. Disable
	// when the server is managed and CONFIG SET is not permitted.
	RedisKeyspaceEvents bool `env:"REDIS_KEYSPACE_EVENTS" default:"true"`

	AuthTokenSecret  string        `env:"AUTH_TOKEN_SECRET"`
	AuthTokenIssuer  string        `env:"AUTH_TOKEN_ISSUER" default:"spin-wheel"`
	AuthTokenTTL     time.Duration `env:"AUTH_TOKEN_TTL" default:"1h"`
	AuthCacheTTL     time.Duration `env:"AUTH_CACHE_TTL" default:"30s"`
	AdminSetupSecret string        `env:"ADMIN_SETUP_SECRET"`

	DeleteChunkSize   int `env:"DELETE_CHUNK_SIZE" default:"400"`
	RecentEventsLimit int `env:"RECENT_EVENTS_LIMIT" default:"10"`

	MaxWebSocketConnections int    `env:"MAX_WEBSOCKET_CONNECTIONS" default:"1000"`
	CORSAllowOrigin         string `env:"CORS_ALLOW_ORIGIN" default:"*"`

	// Browser origins allowed to open the dashboard socket. Localhost is
	// also allowed outside production.
	DashboardAllowedOrigins []string `env:"DASHBOARD_ALLOWED_ORIGINS"`

	KafkaBrokers    []string `env:"KAFKA_BROKERS"`
	KafkaAuditTopic string   `env:"KAFKA_AUDIT_TOPIC" default:"spins.deleted"`
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Load(&cfg, &env.Options{SliceSep: ","}); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// AuditEnabled reports whether deletion audit records should be published.
func (c *Config) AuditEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

func validate(cfg *Config) error {
	required := map[string]string{
		"DATABASE_URL":      cfg.DatabaseURL,
		"REDIS_URL":         cfg.RedisURL,
		"AUTH_TOKEN_SECRET": cfg.AuthTokenSecret,
	}
	for name, value := range required {
		if value == "" {
			return fmt.Errorf("%s is required", name)
		}
	}

	if len(cfg.AuthTokenSecret) < 32 {
		return errors.New("AUTH_TOKEN_SECRET must be at least 32 characters")
	}
	if cfg.DeleteChunkSize < 1 || cfg.DeleteChunkSize >= MaxStoreBatchOps {
		return fmt.Errorf("DELETE_CHUNK_SIZE must be between 1 and %d, got %d", MaxStoreBatchOps-1, cfg.DeleteChunkSize)
	}
	if cfg.RecentEventsLimit < 1 || cfg.RecentEventsLimit > 100 {
		return fmt.Errorf("RECENT_EVENTS_LIMIT must be between 1 and 100, got %d", cfg.RecentEventsLimit)
	}
	if cfg.AuthTokenTTL <= 0 {
		return errors.New("AUTH_TOKEN_TTL must be positive")
	}
	if cfg.MaxWebSocketConnections < 1 {
		return errors.New("MAX_WEBSOCKET_CONNECTIONS must be positive")
	}

	if cfg.AppEnv == "production" {
		if err := validateProductionSSL(cfg.DatabaseURL); err != nil {
			return err
		}
		if cfg.AdminSetupSecret != "" && len(cfg.AdminSetupSecret) < 16 {
			return errors.New("ADMIN_SETUP_SECRET must be at least 16 characters in production")
		}
		for _, origin := range cfg.DashboardAllowedOrigins {
			if strings.TrimSpace(origin) == "*" {
				return errors.New("DASHBOARD_ALLOWED_ORIGINS must not contain * in production")
			}
		}
	}

	return nil
}

func validateProductionSSL(databaseURL string) error {
	u, err := url.Parse(databaseURL)
	if err != nil {
		return fmt.Errorf("DATABASE_URL is not a valid URL: %w", err)
	}
	mode := strings.ToLower(u.Query().Get("sslmode"))
	if mode == "disable" || mode == "allow" {
		return fmt.Errorf("DATABASE_URL uses sslmode=%s which is not allowed in production", mode)
	}
	return nil
}
