package postgres

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/tern/v2/migrate"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

const (
	versionTable = "public.schema_version"

	// Advisory lock key: "spinwh" as ASCII hex.
	migrationLockID    = 0x7370696e7768
	lockReleaseTimeout = 5 * time.Second
)

// RunMigrationsWithLock migrates the schema to the latest embedded version
// while holding a session advisory lock, so replicas starting together
// migrate once.
func RunMigrationsWithLock(ctx context.Context, pool *pgxpool.Pool) error {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire connection for migration: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", migrationLockID); err != nil {
		return fmt.Errorf("failed to acquire migration lock: %w", err)
	}
	defer unlock(conn.Conn())

	from, to, err := migrateLatest(ctx, conn.Conn())
	if err != nil {
		return err
	}
	if from == to {
		slog.Info("Database schema up to date", "version", to)
	} else {
		slog.Info("Database schema migrated", "from", from, "to", to)
	}
	return nil
}

func migrateLatest(ctx context.Context, conn *pgx.Conn) (from, to int32, err error) {
	migrationFS, err := fs.Sub(migrationFiles, "migrations")
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read migrations: %w", err)
	}

	migrator, err := migrate.NewMigrator(ctx, conn, versionTable)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to create migrator: %w", err)
	}
	if err := migrator.LoadMigrations(migrationFS); err != nil {
		return 0, 0, fmt.Errorf("failed to load migrations: %w", err)
	}

	from, err = migrator.GetCurrentVersion(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	if err := migrator.Migrate(ctx); err != nil {
		return from, 0, fmt.Errorf("failed to migrate database: %w", err)
	}
	return from, int32(len(migrator.Migrations)), nil
}

// unlock runs on a fresh context so a cancelled caller still releases the
// session lock.
func unlock(conn *pgx.Conn) {
	ctx, cancel := context.WithTimeout(context.Background(), lockReleaseTimeout)
	defer cancel()

	if _, err := conn.Exec(ctx, "SELECT pg_advisory_unlock($1)", migrationLockID); err != nil {
		slog.Error("Failed to release migration lock", "error", err)
	}
}
