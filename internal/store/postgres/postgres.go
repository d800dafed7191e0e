// Package postgres keeps the ledger blobs in a PostgreSQL table for hosted
// deployments.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"bomboniere/internal/store"
	"bomboniere/migrations"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ledgerLockID serializes Update calls across every connection and process
// sharing the database.
const ledgerLockID int64 = 0x626f6d62

type Backend struct {
	pool *pgxpool.Pool
}

var _ store.Backend = (*Backend)(nil)

// New wraps an open pool and applies the embedded schema.
func New(ctx context.Context, pool *pgxpool.Pool) (*Backend, error) {
	if _, err := migrations.Apply(ctx, pool); err != nil {
		return nil, err
	}
	return &Backend{pool: pool}, nil
}

func (b *Backend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return get(ctx, b.pool, key)
}

func (b *Backend) Put(ctx context.Context, key string, value []byte) error {
	return put(ctx, b.pool, key, value)
}

func (b *Backend) Update(ctx context.Context, fn func(txn store.Txn) error) error {
	tx, err := b.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", ledgerLockID); err != nil {
		return fmt.Errorf("failed to acquire ledger lock: %w", err)
	}

	if err := fn(&txn{ctx: ctx, tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Close is a no-op: the pool belongs to the caller.
func (b *Backend) Close() error {
	return nil
}

type txn struct {
	ctx context.Context
	tx  pgx.Tx
}

func (t *txn) Get(key string) ([]byte, bool, error) {
	return get(t.ctx, t.tx, key)
}

func (t *txn) Put(key string, value []byte) error {
	return put(t.ctx, t.tx, key, value)
}

// pgxQuerier is satisfied by both *pgxpool.Pool and pgx.Tx.
type pgxQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func get(ctx context.Context, q pgxQuerier, key string) ([]byte, bool, error) {
	var value []byte
	err := q.QueryRow(ctx, "SELECT value::text FROM kv_blobs WHERE key = $1", key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read key %s: %w", key, err)
	}
	return value, true, nil
}

func put(ctx context.Context, q pgxQuerier, key string, value []byte) error {
	_, err := q.Exec(ctx, `
		INSERT INTO kv_blobs (key, value, updated_at)
		VALUES ($1, $2::jsonb, NOW())
		ON CONFLICT (key) DO UPDATE SET
			value      = EXCLUDED.value,
			updated_at = NOW()
	`, key, string(value))
	if err != nil {
		return fmt.Errorf("failed to write key %s: %w", key, err)
	}
	return nil
}
