package db

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// migrationLockID serialises concurrent migrators via pg_advisory_xact_lock.
const migrationLockID = 727_001

// Migration is one NNN_name.sql file.
type Migration struct {
	Version int
	Name    string
	SQL     string
}

// Migrator applies embedded SQL migrations and tracks the applied version
// in schema_version.
type Migrator struct {
	db     *pgxpool.Pool
	fs     fs.FS
	logger *zap.Logger
}

func NewMigrator(db *pgxpool.Pool, migrationFS fs.FS, logger *zap.Logger) *Migrator {
	return &Migrator{db: db, fs: migrationFS, logger: logger}
}

// ReadMigrations parses migration files from the FS root, sorted by version.
func ReadMigrations(migrationFS fs.FS) ([]Migration, error) {
	entries, err := fs.ReadDir(migrationFS, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var migrations []Migration
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		prefix, rest, ok := strings.Cut(entry.Name(), "_")
		if !ok {
			return nil, fmt.Errorf("invalid migration filename %s (expected NNN_name.sql)", entry.Name())
		}
		version, err := strconv.Atoi(prefix)
		if err != nil || version < 1 {
			return nil, fmt.Errorf("invalid version number in filename %s", entry.Name())
		}

		content, err := fs.ReadFile(migrationFS, entry.Name())
		if err != nil {
			return nil, fmt.Errorf("failed to read migration %s: %w", entry.Name(), err)
		}

		migrations = append(migrations, Migration{
			Version: version,
			Name:    strings.TrimSuffix(rest, ".sql"),
			SQL:     string(content),
		})
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})
	for i := 1; i < len(migrations); i++ {
		if migrations[i].Version == migrations[i-1].Version {
			return nil, fmt.Errorf("duplicate migration version %d", migrations[i].Version)
		}
	}

	return migrations, nil
}

// CurrentVersion returns the applied schema version, 0 on a fresh database.
func (m *Migrator) CurrentVersion(ctx context.Context) (int, error) {
	if err := m.ensureVersionTable(ctx); err != nil {
		return 0, err
	}
	var version int
	err := m.db.QueryRow(ctx, `SELECT version FROM schema_version`).Scan(&version)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get current version: %w", err)
	}
	return version, nil
}

// Up applies every pending migration, each in its own transaction.
// Returns the number of migrations applied.
func (m *Migrator) Up(ctx context.Context) (int, error) {
	migrations, err := ReadMigrations(m.fs)
	if err != nil {
		return 0, err
	}
	if err := m.ensureVersionTable(ctx); err != nil {
		return 0, err
	}

	applied := 0
	for _, mig := range migrations {
		ok, err := m.apply(ctx, mig)
		if err != nil {
			return applied, err
		}
		if ok {
			applied++
		}
	}

	if applied == 0 {
		m.logger.Info("Database schema is up to date")
	} else {
		m.logger.Info("Database migrations applied", zap.Int("count", applied))
	}
	return applied, nil
}

func (m *Migrator) apply(ctx context.Context, mig Migration) (bool, error) {
	tx, err := m.db.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to begin migration tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, migrationLockID); err != nil {
		return false, fmt.Errorf("failed to acquire migration lock: %w", err)
	}

	var current int
	err = tx.QueryRow(ctx, `SELECT version FROM schema_version`).Scan(&current)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return false, fmt.Errorf("failed to read schema version: %w", err)
	}
	if current >= mig.Version {
		return false, nil
	}

	m.logger.Info("Applying migration",
		zap.Int("version", mig.Version),
		zap.String("name", mig.Name),
	)
	if _, err := tx.Exec(ctx, mig.SQL); err != nil {
		return false, fmt.Errorf("migration %03d_%s failed: %w", mig.Version, mig.Name, err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM schema_version`); err != nil {
		return false, fmt.Errorf("failed to clear schema version: %w", err)
	}
	if _, err := tx.Exec(ctx, `INSERT INTO schema_version (version) VALUES ($1)`, mig.Version); err != nil {
		return false, fmt.Errorf("failed to record schema version: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("failed to commit migration %d: %w", mig.Version, err)
	}
	return true, nil
}

func (m *Migrator) ensureVersionTable(ctx context.Context) error {
	_, err := m.db.Exec(ctx, `CREATE TABLE IF NOT EXISTS schema_version (version INTEGER PRIMARY KEY)`)
	if err != nil {
		return fmt.Errorf("failed to ensure schema_version table: %w", err)
	}
	return nil
}
