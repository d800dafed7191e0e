// Package store persists the ledger collections as JSON documents in a
// key/value blob backend. Every collection lives under its own key and is
// read and written whole.
package store

import (
	"context"
	"encoding/json"
	"fmt"

	"bomboniere/internal/core"
)

// Collection keys.
const (
	KeyClients      = "clients"
	KeyTransactions = "transactions"
	KeyProducts     = "products"
	KeySettings     = "settings"
)

// Txn is a view of the backend inside one atomic unit of work.
type Txn interface {
	Get(key string) ([]byte, bool, error)
	Put(key string, value []byte) error
}

// Backend is a synchronous key/value blob store.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte) error
	// Update runs fn in a single atomic unit. Writes made through the Txn are
	// discarded when fn returns an error.
	Update(ctx context.Context, fn func(txn Txn) error) error
	Close() error
}

// Store implements core.Store on top of a Backend.
type Store struct {
	backend Backend
}

var _ core.Store = (*Store)(nil)

func New(backend Backend) *Store {
	return &Store{backend: backend}
}

// Close releases the underlying backend.
func (s *Store) Close() error {
	return s.backend.Close()
}

func (s *Store) GetClients(ctx context.Context) ([]core.Client, bool, error) {
	var clients []core.Client
	found, err := s.get(ctx, KeyClients, &clients)
	return clients, found, err
}

func (s *Store) PutClients(ctx context.Context, clients []core.Client) error {
	return s.put(ctx, KeyClients, clients)
}

func (s *Store) GetTransactions(ctx context.Context) ([]core.Transaction, bool, error) {
	var txs []core.Transaction
	found, err := s.get(ctx, KeyTransactions, &txs)
	return txs, found, err
}

func (s *Store) UpdateLedger(ctx context.Context, fn func(state *core.LedgerState) (bool, error)) error {
	return s.backend.Update(ctx, func(txn Txn) error {
		var state core.LedgerState
		found, err := decodeFrom(txn, KeyClients, &state.Clients)
		if err != nil {
			return err
		}
		state.ClientsFound = found
		txFound, err := decodeFrom(txn, KeyTransactions, &state.Transactions)
		if err != nil {
			return err
		}
		if state.Clients == nil {
			state.Clients = []core.Client{}
		}
		if state.Transactions == nil {
			state.Transactions = []core.Transaction{}
		}

		commit, err := fn(&state)
		if err != nil || !commit {
			return err
		}

		// An absent ledger stays absent until something is appended to it.
		if txFound || len(state.Transactions) > 0 {
			if err := encodeTo(txn, KeyTransactions, state.Transactions); err != nil {
				return err
			}
		}
		return encodeTo(txn, KeyClients, state.Clients)
	})
}

func (s *Store) GetProducts(ctx context.Context) ([]core.Product, bool, error) {
	var products []core.Product
	found, err := s.get(ctx, KeyProducts, &products)
	return products, found, err
}

func (s *Store) PutProducts(ctx context.Context, products []core.Product) error {
	return s.put(ctx, KeyProducts, products)
}

func (s *Store) UpdateProducts(ctx context.Context, fn func(products []core.Product, found bool) ([]core.Product, error)) error {
	return s.backend.Update(ctx, func(txn Txn) error {
		var products []core.Product
		found, err := decodeFrom(txn, KeyProducts, &products)
		if err != nil {
			return err
		}
		next, err := fn(products, found)
		if err != nil {
			return err
		}
		if next == nil {
			next = []core.Product{}
		}
		return encodeTo(txn, KeyProducts, next)
	})
}

func (s *Store) GetSettings(ctx context.Context) (core.Settings, bool, error) {
	var settings core.Settings
	found, err := s.get(ctx, KeySettings, &settings)
	return settings, found, err
}

func (s *Store) PutSettings(ctx context.Context, settings core.Settings) error {
	return s.put(ctx, KeySettings, settings)
}

func (s *Store) UpdateSettings(ctx context.Context, fn func(settings core.Settings, found bool) (core.Settings, error)) error {
	return s.backend.Update(ctx, func(txn Txn) error {
		var settings core.Settings
		found, err := decodeFrom(txn, KeySettings, &settings)
		if err != nil {
			return err
		}
		next, err := fn(settings, found)
		if err != nil {
			return err
		}
		return encodeTo(txn, KeySettings, next)
	})
}

func (s *Store) get(ctx context.Context, key string, v any) (bool, error) {
	raw, found, err := s.backend.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	if !found {
		return false, nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return false, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return true, nil
}

func (s *Store) put(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := s.backend.Put(ctx, key, raw); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

func decodeFrom(txn Txn, key string, v any) (bool, error) {
	raw, found, err := txn.Get(key)
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	if !found {
		return false, nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return false, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return true, nil
}

func encodeTo(txn Txn, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := txn.Put(key, raw); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}
