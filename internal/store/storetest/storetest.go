// Package storetest holds the behaviour every store.Backend must share.
// Backend packages call Run from their own tests.
package storetest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"bomboniere/internal/core"
	"bomboniere/internal/store"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Run exercises a backend through the typed store. newBackend must return an
// empty backend each time it is called.
func Run(t *testing.T, newBackend func(t *testing.T) store.Backend) {
	t.Run("GetMissingKey", func(t *testing.T) {
		b := newBackend(t)
		_, found, err := b.Get(context.Background(), "nothing-here")
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("PutOverwrites", func(t *testing.T) {
		b := newBackend(t)
		ctx := context.Background()
		require.NoError(t, b.Put(ctx, store.KeySettings, []byte(`{"pixKey":"a"}`)))
		require.NoError(t, b.Put(ctx, store.KeySettings, []byte(`{"pixKey":"b"}`)))

		s := store.New(b)
		settings, found, err := s.GetSettings(ctx)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "b", settings.PixKey)
	})

	t.Run("LedgerRoundTrip", func(t *testing.T) {
		s := store.New(newBackend(t))
		ctx := context.Background()
		when := time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC)

		err := s.UpdateLedger(ctx, func(state *core.LedgerState) (bool, error) {
			assert.NotNil(t, state.Clients)
			assert.NotNil(t, state.Transactions)
			state.Clients = append(state.Clients, core.Client{
				ID: "c1", Name: "Ana", Phone: "11 9999", Balance: decimal.RequireFromString("7.25"), LastPurchase: &when,
			})
			state.Transactions = append(state.Transactions, core.Transaction{
				ID: "t1", ClientID: "c1", ClientName: "Ana", ProductID: "p1", ProductName: "Trufa",
				Amount: decimal.RequireFromString("7.25"), Date: when, DueDate: core.ComputeDueDate(when),
			})
			return true, nil
		})
		require.NoError(t, err)

		clients, found, err := s.GetClients(ctx)
		require.NoError(t, err)
		require.True(t, found)
		require.Len(t, clients, 1)
		assert.Equal(t, "Ana", clients[0].Name)
		assert.Equal(t, "7.25", clients[0].Balance.String())
		require.NotNil(t, clients[0].LastPurchase)
		assert.True(t, when.Equal(*clients[0].LastPurchase))

		txs, found, err := s.GetTransactions(ctx)
		require.NoError(t, err)
		require.True(t, found)
		require.Len(t, txs, 1)
		assert.Equal(t, "t1", txs[0].ID)
		assert.True(t, core.ComputeDueDate(when).Equal(txs[0].DueDate))
	})

	t.Run("LedgerRollbackOnError", func(t *testing.T) {
		s := store.New(newBackend(t))
		ctx := context.Background()
		boom := errors.New("boom")

		err := s.UpdateLedger(ctx, func(state *core.LedgerState) (bool, error) {
			state.Clients = append(state.Clients, core.Client{ID: "c1", Name: "Ana"})
			return true, boom
		})
		assert.ErrorIs(t, err, boom)

		_, found, err := s.GetClients(ctx)
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("LedgerNoCommit", func(t *testing.T) {
		s := store.New(newBackend(t))
		ctx := context.Background()

		err := s.UpdateLedger(ctx, func(state *core.LedgerState) (bool, error) {
			state.Clients = append(state.Clients, core.Client{ID: "c1", Name: "Ana"})
			return false, nil
		})
		require.NoError(t, err)

		_, found, err := s.GetTransactions(ctx)
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("UpdateProducts", func(t *testing.T) {
		s := store.New(newBackend(t))
		ctx := context.Background()

		err := s.UpdateProducts(ctx, func(products []core.Product, found bool) ([]core.Product, error) {
			assert.False(t, found)
			return append(products, core.Product{ID: "p1", Name: "Bala", Price: decimal.RequireFromString("0.50"), Icon: "candy"}), nil
		})
		require.NoError(t, err)

		products, found, err := s.GetProducts(ctx)
		require.NoError(t, err)
		assert.True(t, found)
		require.Len(t, products, 1)
		assert.Equal(t, "0.5", products[0].Price.String())
	})

	t.Run("UpdateSettings", func(t *testing.T) {
		s := store.New(newBackend(t))
		ctx := context.Background()

		err := s.UpdateSettings(ctx, func(settings core.Settings, found bool) (core.Settings, error) {
			assert.False(t, found)
			settings.OwnerName = "Dona Rosa"
			return settings, nil
		})
		require.NoError(t, err)

		err = s.UpdateSettings(ctx, func(settings core.Settings, found bool) (core.Settings, error) {
			assert.True(t, found)
			assert.Equal(t, "Dona Rosa", settings.OwnerName)
			return settings, errors.New("boom")
		})
		assert.Error(t, err)

		settings, found, err := s.GetSettings(ctx)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "Dona Rosa", settings.OwnerName)
	})

	t.Run("LedgerReportsClientsFound", func(t *testing.T) {
		s := store.New(newBackend(t))
		ctx := context.Background()

		err := s.UpdateLedger(ctx, func(state *core.LedgerState) (bool, error) {
			assert.False(t, state.ClientsFound)
			return true, nil
		})
		require.NoError(t, err)

		_, found, err := s.GetTransactions(ctx)
		require.NoError(t, err)
		assert.False(t, found, "an untouched empty ledger is not written")

		err = s.UpdateLedger(ctx, func(state *core.LedgerState) (bool, error) {
			assert.True(t, state.ClientsFound)
			return false, nil
		})
		require.NoError(t, err)
	})

	t.Run("ConcurrentUpdatesSerialize", func(t *testing.T) {
		s := store.New(newBackend(t))
		ctx := context.Background()
		require.NoError(t, s.PutClients(ctx, []core.Client{{ID: "c1", Name: "Ana", Balance: decimal.Zero}}))

		const workers = 8
		var wg sync.WaitGroup
		errs := make(chan error, workers)
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				errs <- s.UpdateLedger(ctx, func(state *core.LedgerState) (bool, error) {
					state.Clients[0].Balance = state.Clients[0].Balance.Add(decimal.NewFromInt(1))
					return true, nil
				})
			}()
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			require.NoError(t, err)
		}

		clients, _, err := s.GetClients(ctx)
		require.NoError(t, err)
		assert.Equal(t, "8", clients[0].Balance.String())
	})
}
