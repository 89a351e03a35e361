// Package testutil wires database-backed tests to a real PostgreSQL.
package testutil

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap/zaptest"

	"habittracker/internal/repository"
	"habittracker/migrations"
	"habittracker/pkg/db"
)

const DatabaseURLEnv = "HABITS_TEST_DATABASE_URL"

const testLockKey = 727100

// Postgres returns a migrated, emptied pool. The test is skipped when
// HABITS_TEST_DATABASE_URL is unset.
func Postgres(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn := os.Getenv(DatabaseURLEnv)
	if dsn == "" {
		t.Skipf("%s not set; skipping database test", DatabaseURLEnv)
	}

	logger := zaptest.NewLogger(t)
	pool, err := db.NewConnectionFromURL(dsn, logger)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(pool.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Packages run in parallel under go test ./...; one test owns the
	// database at a time.
	lockConn, err := pool.Acquire(context.Background())
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if _, err := lockConn.Exec(context.Background(), "SELECT pg_advisory_lock($1)", testLockKey); err != nil {
		lockConn.Release()
		t.Fatalf("lock: %v", err)
	}
	t.Cleanup(func() {
		_, _ = lockConn.Exec(context.Background(), "SELECT pg_advisory_unlock($1)", testLockKey)
		lockConn.Release()
	})

	if _, err := db.NewMigrator(pool, migrations.FS, logger).Up(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := repository.ResetAll(ctx, pool, logger); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if _, err := pool.Exec(ctx, "DELETE FROM outbox_events"); err != nil {
		t.Fatalf("reset outbox: %v", err)
	}
	return pool
}
