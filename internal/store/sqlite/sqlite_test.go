package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"bomboniere/internal/core"
	"bomboniere/internal/store"
	"bomboniere/internal/store/sqlite"
	"bomboniere/internal/store/storetest"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) *sqlite.Backend {
	t.Helper()
	b, err := sqlite.Open(context.Background(), filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func TestBackend(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Backend {
		return openTemp(t)
	})
}

func TestBackend_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "ledger.db")

	b, err := sqlite.Open(ctx, path)
	require.NoError(t, err)
	ledger := core.NewLedger(store.New(b))
	require.NoError(t, ledger.UpsertClient(ctx, core.Client{ID: "c1", Name: "Ana", Balance: decimal.Zero}))
	_, _, err = ledger.AddTransaction(ctx, core.Transaction{ID: "t1", ClientID: "c1", Amount: decimal.NewFromInt(9)})
	require.NoError(t, err)
	require.NoError(t, b.Close())

	b, err = sqlite.Open(ctx, path)
	require.NoError(t, err)
	defer b.Close()

	c, found, err := core.NewLedger(store.New(b)).FindClient(ctx, "c1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "9", c.Balance.String())
}
