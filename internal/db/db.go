package db

import (
	"context"
	"fmt"
	"log"

	"bomboniere/internal/config"
	"bomboniere/internal/store"
	"bomboniere/internal/store/memory"
	"bomboniere/internal/store/postgres"
	"bomboniere/internal/store/sqlite"

	"github.com/jackc/pgx/v5/pgxpool"
)

func NewPool(ctx context.Context, connStr string) (*pgxpool.Pool, error) {
	if connStr == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable not set")
	}

	config, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to parse DATABASE_URL: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	return pool, nil
}

// Open connects the backend selected by cfg and wraps it in a typed store.
// The returned close function releases everything Open acquired.
func Open(ctx context.Context, cfg config.StoreConfig) (*store.Store, func(), error) {
	switch cfg.Driver {
	case config.DriverMemory:
		log.Println("[store] using in-memory backend: data is lost on exit")
		s := store.New(memory.New())
		return s, func() { _ = s.Close() }, nil

	case config.DriverSQLite:
		backend, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		log.Printf("[store] using sqlite backend at %s", cfg.SQLitePath)
		s := store.New(backend)
		return s, func() { _ = s.Close() }, nil

	case config.DriverPostgres:
		pool, err := NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		backend, err := postgres.New(ctx, pool)
		if err != nil {
			pool.Close()
			return nil, nil, err
		}
		log.Println("[store] using postgres backend")
		s := store.New(backend)
		return s, func() {
			_ = s.Close()
			pool.Close()
		}, nil
	}
	return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
}
