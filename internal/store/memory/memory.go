// Package memory is an in-process blob backend. Nothing survives a restart;
// it backs tests and throwaway runs.
package memory

import (
	"context"
	"errors"
	"sync"

	"bomboniere/internal/store"
)

var ErrClosed = errors.New("memory backend is closed")

type Backend struct {
	mu     sync.Mutex
	blobs  map[string][]byte
	closed bool
}

var _ store.Backend = (*Backend)(nil)

func New() *Backend {
	return &Backend{blobs: make(map[string][]byte)}
}

func (b *Backend) Get(_ context.Context, key string) ([]byte, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, false, ErrClosed
	}
	v, ok := b.blobs[key]
	if !ok {
		return nil, false, nil
	}
	return clone(v), true, nil
}

func (b *Backend) Put(_ context.Context, key string, value []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrClosed
	}
	b.blobs[key] = clone(value)
	return nil
}

// Update holds the backend lock for the whole of fn and applies the staged
// writes only when fn succeeds.
func (b *Backend) Update(_ context.Context, fn func(txn store.Txn) error) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrClosed
	}
	t := &txn{base: b.blobs, staged: make(map[string][]byte)}
	if err := fn(t); err != nil {
		return err
	}
	for k, v := range t.staged {
		b.blobs[k] = v
	}
	return nil
}

func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}

// Keys returns the keys currently stored.
func (b *Backend) Keys() []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	keys := make([]string, 0, len(b.blobs))
	for k := range b.blobs {
		keys = append(keys, k)
	}
	return keys
}

type txn struct {
	base   map[string][]byte
	staged map[string][]byte
}

func (t *txn) Get(key string) ([]byte, bool, error) {
	if v, ok := t.staged[key]; ok {
		return clone(v), true, nil
	}
	v, ok := t.base[key]
	if !ok {
		return nil, false, nil
	}
	return clone(v), true, nil
}

func (t *txn) Put(key string, value []byte) error {
	t.staged[key] = clone(value)
	return nil
}

func clone(v []byte) []byte {
	out := make([]byte, len(v))
	copy(out, v)
	return out
}
