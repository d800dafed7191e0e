// Package migrations embeds the PostgreSQL schema and applies it in file order.
// Applied files are recorded in schema_migrations with their checksum, so an
// edited migration is reported instead of silently re-run.
package migrations

import (
	"context"
	"crypto/sha256"
	"embed"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed *.sql
var files embed.FS

// migratorLockID keeps two processes from migrating the same database at once.
const migratorLockID int64 = 7462839

// Status reports what Apply did with one file.
type Status struct {
	Name    string
	Applied bool // false when the file was already recorded
}

// Names returns the embedded migration file names in apply order.
// File names must look like NNN_description.sql with a unique NNN.
func Names() ([]string, error) {
	names, err := fs.Glob(files, "*.sql")
	if err != nil {
		return nil, err
	}
	sort.Strings(names)

	seen := make(map[string]bool, len(names))
	for _, name := range names {
		version, err := Version(name)
		if err != nil {
			return nil, err
		}
		if seen[version] {
			return nil, fmt.Errorf("duplicate migration version %s", version)
		}
		seen[version] = true
	}
	return names, nil
}

// Version extracts the NNN prefix of a migration file name.
func Version(name string) (string, error) {
	version, _, ok := strings.Cut(name, "_")
	if !ok || version == "" {
		return "", fmt.Errorf("invalid migration filename %s: expected NNN_description.sql", name)
	}
	return version, nil
}

// Apply runs every embedded migration not yet recorded in schema_migrations.
// A recorded file whose checksum changed is an error.
func Apply(ctx context.Context, pool *pgxpool.Pool) ([]Status, error) {
	names, err := Names()
	if err != nil {
		return nil, fmt.Errorf("failed to list migrations: %w", err)
	}

	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire connection: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", migratorLockID); err != nil {
		return nil, fmt.Errorf("failed to take migration lock: %w", err)
	}
	defer conn.Exec(context.WithoutCancel(ctx), "SELECT pg_advisory_unlock($1)", migratorLockID) //nolint:errcheck

	if _, err := conn.Exec(ctx, `
CREATE TABLE IF NOT EXISTS schema_migrations (
	version TEXT PRIMARY KEY,
	filename TEXT NOT NULL,
	checksum TEXT NOT NULL,
	applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`); err != nil {
		return nil, fmt.Errorf("failed to create schema_migrations: %w", err)
	}

	statuses := make([]Status, 0, len(names))
	for _, name := range names {
		applied, err := applyOne(ctx, conn.Conn(), name)
		if err != nil {
			return statuses, err
		}
		statuses = append(statuses, Status{Name: name, Applied: applied})
	}
	return statuses, nil
}

func applyOne(ctx context.Context, conn *pgx.Conn, name string) (bool, error) {
	version, err := Version(name)
	if err != nil {
		return false, err
	}
	sqlFile, err := files.ReadFile(name)
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", name, err)
	}
	sum := sha256.Sum256(sqlFile)
	checksum := hex.EncodeToString(sum[:])

	var existing string
	err = conn.QueryRow(ctx, "SELECT checksum FROM schema_migrations WHERE version = $1", version).Scan(&existing)
	switch {
	case err == nil:
		if existing != checksum {
			return false, fmt.Errorf("checksum mismatch for %s: recorded %s, embedded %s", name, existing, checksum)
		}
		return false, nil
	case !errors.Is(err, pgx.ErrNoRows):
		return false, fmt.Errorf("failed to query schema_migrations for %s: %w", name, err)
	}

	tx, err := conn.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction for %s: %w", name, err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, string(sqlFile)); err != nil {
		return false, fmt.Errorf("migration %s failed: %w", name, err)
	}
	if _, err := tx.Exec(ctx,
		"INSERT INTO schema_migrations (version, filename, checksum) VALUES ($1, $2, $3)",
		version, name, checksum); err != nil {
		return false, fmt.Errorf("failed to record migration %s: %w", name, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("failed to commit migration %s: %w", name, err)
	}
	return true, nil
}
