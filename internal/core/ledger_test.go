package core_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"bomboniere/internal/core"
	"bomboniere/internal/store"
	"bomboniere/internal/store/memory"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, time.March, 10, 14, 0, 0, 0, time.UTC)

func newTestLedger(t *testing.T) (*core.Ledger, *memory.Backend) {
	t.Helper()
	backend := memory.New()
	seq := 0
	ledger := core.NewLedger(store.New(backend),
		core.WithClock(func() time.Time { return testNow }),
		core.WithIDGenerator(func() string {
			seq++
			return fmt.Sprintf("gen-%d", seq)
		}),
	)
	return ledger, backend
}

func sale(id, clientID, amount string) core.Transaction {
	return core.Transaction{
		ID:          id,
		ClientID:    clientID,
		ClientName:  "Cliente " + clientID,
		ProductID:   "p1",
		ProductName: "Café Espresso",
		Amount:      decimal.RequireFromString(amount),
		Date:        testNow,
		DueDate:     core.ComputeDueDate(testNow),
	}
}

func assertBalancesMatchLedger(t *testing.T, ledger *core.Ledger) {
	t.Helper()
	ctx := context.Background()
	clients, err := ledger.ListClients(ctx)
	require.NoError(t, err)
	txs, err := ledger.ListTransactions(ctx)
	require.NoError(t, err)
	for _, c := range clients {
		assert.True(t, c.Balance.Equal(core.LedgerBalance(txs, c.ID)),
			"client %s balance %s does not match ledger %s", c.ID, c.Balance, core.LedgerBalance(txs, c.ID))
	}
}

func TestLedger_MaterializesEmptyCollections(t *testing.T) {
	ledger, backend := newTestLedger(t)
	ctx := context.Background()

	txs, err := ledger.ListTransactions(ctx)
	require.NoError(t, err)
	assert.Empty(t, txs)
	assert.NotNil(t, txs)
	assert.Empty(t, backend.Keys(), "reading transactions must not persist anything")

	clients, err := ledger.ListClients(ctx)
	require.NoError(t, err)
	assert.Empty(t, clients)
	assert.ElementsMatch(t, []string{store.KeyClients}, backend.Keys())
}

func TestLedger_UpsertClient(t *testing.T) {
	ledger, _ := newTestLedger(t)
	ctx := context.Background()

	require.NoError(t, ledger.UpsertClient(ctx, core.Client{ID: "c1", Name: "Ana", Phone: "11 9999", Balance: decimal.Zero}))
	require.NoError(t, ledger.UpsertClient(ctx, core.Client{ID: "c2", Name: "Bia", Balance: decimal.Zero}))
	require.NoError(t, ledger.UpsertClient(ctx, core.Client{ID: "c1", Name: "Ana Paula", Phone: "11 8888", Balance: decimal.Zero}))

	clients, err := ledger.ListClients(ctx)
	require.NoError(t, err)
	require.Len(t, clients, 2)
	assert.Equal(t, "Ana Paula", clients[0].Name)
	assert.Equal(t, "11 8888", clients[0].Phone)
	assert.Equal(t, "Bia", clients[1].Name)

	c, found, err := ledger.FindClient(ctx, "c2")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Bia", c.Name)

	_, found, err = ledger.FindClient(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestLedger_AddTransactionMovesBalance(t *testing.T) {
	ledger, _ := newTestLedger(t)
	ctx := context.Background()
	require.NoError(t, ledger.UpsertClient(ctx, core.Client{ID: "c1", Name: "Ana", Balance: decimal.Zero}))

	balance, found, err := ledger.AddTransaction(ctx, sale("t1", "c1", "5.50"))
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "5.5", balance.String())

	balance, _, err = ledger.AddTransaction(ctx, sale("t2", "c1", "12.25"))
	require.NoError(t, err)
	assert.Equal(t, "17.75", balance.String())

	c, _, err := ledger.FindClient(ctx, "c1")
	require.NoError(t, err)
	require.NotNil(t, c.LastPurchase)
	assert.True(t, testNow.Equal(*c.LastPurchase))

	assertBalancesMatchLedger(t, ledger)
}

func TestLedger_AddTransactionForUnknownClient(t *testing.T) {
	ledger, _ := newTestLedger(t)
	ctx := context.Background()

	balance, found, err := ledger.AddTransaction(ctx, sale("t1", "ghost", "4"))
	require.NoError(t, err)
	assert.False(t, found)
	assert.True(t, balance.IsZero())

	txs, err := ledger.ListTransactions(ctx)
	require.NoError(t, err)
	assert.Len(t, txs, 1)
}

func TestLedger_ApplyBalanceDeltaUnknownClient(t *testing.T) {
	ledger, _ := newTestLedger(t)
	ctx := context.Background()
	require.NoError(t, ledger.UpsertClient(ctx, core.Client{ID: "c1", Name: "Ana", Balance: decimal.Zero}))

	balance, found, err := ledger.ApplyBalanceDelta(ctx, "ghost", decimal.NewFromInt(10))
	require.NoError(t, err)
	assert.False(t, found)
	assert.True(t, balance.IsZero())

	c, _, err := ledger.FindClient(ctx, "c1")
	require.NoError(t, err)
	assert.True(t, c.Balance.IsZero())
	assert.Nil(t, c.LastPurchase)
}

func TestLedger_SettleDebt(t *testing.T) {
	ledger, _ := newTestLedger(t)
	ctx := context.Background()
	require.NoError(t, ledger.UpsertClient(ctx, core.Client{ID: "c1", Name: "Ana", Balance: decimal.Zero}))
	_, _, err := ledger.AddTransaction(ctx, sale("t1", "c1", "45.50"))
	require.NoError(t, err)

	tx, err := ledger.SettleDebt(ctx, "c1")
	require.NoError(t, err)
	require.NotNil(t, tx)

	assert.Equal(t, "gen-1", tx.ID)
	assert.Equal(t, "c1", tx.ClientID)
	assert.Equal(t, "Ana", tx.ClientName)
	assert.Equal(t, core.PaymentProductID, tx.ProductID)
	assert.Equal(t, "Pagamento de Fatura", tx.ProductName)
	assert.Equal(t, "-45.5", tx.Amount.String())
	assert.True(t, tx.IsPaid)
	assert.True(t, tx.IsPayment())
	assert.True(t, testNow.Equal(tx.Date))
	assert.True(t, testNow.Equal(tx.DueDate))

	c, _, err := ledger.FindClient(ctx, "c1")
	require.NoError(t, err)
	assert.True(t, c.Balance.IsZero())

	txs, err := ledger.ListTransactions(ctx)
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, tx.ID, txs[1].ID)

	assertBalancesMatchLedger(t, ledger)
}

func TestLedger_SettleDebtNothingOwed(t *testing.T) {
	ledger, _ := newTestLedger(t)
	ctx := context.Background()
	require.NoError(t, ledger.UpsertClient(ctx, core.Client{ID: "c1", Name: "Ana", Balance: decimal.Zero}))

	tx, err := ledger.SettleDebt(ctx, "c1")
	require.NoError(t, err)
	assert.Nil(t, tx)

	tx, err = ledger.SettleDebt(ctx, "ghost")
	require.NoError(t, err)
	assert.Nil(t, tx)

	txs, err := ledger.ListTransactions(ctx)
	require.NoError(t, err)
	assert.Empty(t, txs)
}

func TestLedger_BalanceInvariantAcrossMixedOperations(t *testing.T) {
	ledger, _ := newTestLedger(t)
	ctx := context.Background()
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, ledger.UpsertClient(ctx, core.Client{ID: id, Name: id, Balance: decimal.Zero}))
	}

	steps := []func() error{
		func() error { _, _, err := ledger.AddTransaction(ctx, sale("1", "a", "3.10")); return err },
		func() error { _, _, err := ledger.AddTransaction(ctx, sale("2", "b", "7")); return err },
		func() error { _, err := ledger.SettleDebt(ctx, "a"); return err },
		func() error { _, _, err := ledger.AddTransaction(ctx, sale("3", "a", "0.20")); return err },
		func() error { _, _, err := ledger.AddTransaction(ctx, sale("4", "c", "19.99")); return err },
		func() error { _, err := ledger.SettleDebt(ctx, "c"); return err },
		func() error { _, _, err := ledger.AddTransaction(ctx, sale("5", "b", "0.01")); return err },
	}
	for i, step := range steps {
		require.NoError(t, step(), "step %d", i)
		assertBalancesMatchLedger(t, ledger)
	}

	a, _, err := ledger.FindClient(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "0.2", a.Balance.String())
}

func TestLedger_DeleteClientKeepsHistory(t *testing.T) {
	ledger, _ := newTestLedger(t)
	ctx := context.Background()
	require.NoError(t, ledger.UpsertClient(ctx, core.Client{ID: "c1", Name: "Ana", Balance: decimal.Zero}))
	_, _, err := ledger.AddTransaction(ctx, sale("t1", "c1", "8"))
	require.NoError(t, err)

	require.NoError(t, ledger.DeleteClient(ctx, "c1"))
	require.NoError(t, ledger.DeleteClient(ctx, "c1"))

	clients, err := ledger.ListClients(ctx)
	require.NoError(t, err)
	assert.Empty(t, clients)

	txs, err := ledger.ListTransactions(ctx)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, "c1", txs[0].ClientID)
}

func TestLedger_ProductsSeededOnFirstRead(t *testing.T) {
	ledger, backend := newTestLedger(t)
	ctx := context.Background()

	products, err := ledger.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, len(core.DefaultProducts()))
	for i, want := range core.DefaultProducts() {
		assert.Equal(t, want.ID, products[i].ID)
		assert.True(t, want.Price.Equal(products[i].Price), "price of %s", want.ID)
	}
	assert.Contains(t, backend.Keys(), store.KeyProducts)

	require.NoError(t, ledger.SaveProduct(ctx, core.Product{ID: "p9", Name: "Pudim", Price: decimal.NewFromInt(9), Icon: "cake"}))
	require.NoError(t, ledger.DeleteProduct(ctx, "p1"))

	products, err = ledger.ListProducts(ctx)
	require.NoError(t, err)
	assert.Len(t, products, len(core.DefaultProducts()))
	assert.Equal(t, "p9", products[len(products)-1].ID)
	for _, p := range products {
		assert.NotEqual(t, "p1", p.ID)
	}
}

func TestLedger_SaveProductSeedsCatalogFirst(t *testing.T) {
	ledger, _ := newTestLedger(t)
	ctx := context.Background()

	require.NoError(t, ledger.SaveProduct(ctx, core.Product{ID: "p2", Name: "Cappuccino", Price: decimal.NewFromInt(10), Icon: "coffee"}))

	products, err := ledger.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, len(core.DefaultProducts()))
	assert.Equal(t, "10", products[1].Price.String())
}

func TestLedger_SettingsDefaults(t *testing.T) {
	ledger, backend := newTestLedger(t)
	ctx := context.Background()

	settings, err := ledger.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, core.DefaultSettings(), settings)
	assert.Contains(t, backend.Keys(), store.KeySettings)

	settings.PixKey = "pix@loja.com"
	settings.InstantMessage = false
	require.NoError(t, ledger.SaveSettings(ctx, settings))

	got, err := ledger.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, settings, got)
}

func TestLedger_AddTransactionsCommitsTogether(t *testing.T) {
	ledger, _ := newTestLedger(t)
	ctx := context.Background()
	require.NoError(t, ledger.UpsertClient(ctx, core.Client{ID: "c1", Name: "Ana", Balance: decimal.Zero}))

	balance, found, err := ledger.AddTransactions(ctx, []core.Transaction{
		sale("t1", "c1", "12.50"),
		sale("t2", "c1", "6"),
	})
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "18.5", balance.String())

	txs, err := ledger.ListTransactions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"t1", "t2"}, txIDs(txs))

	balance, found, err = ledger.AddTransactions(ctx, nil)
	require.NoError(t, err)
	assert.False(t, found)
	assert.True(t, balance.IsZero())
	assertBalancesMatchLedger(t, ledger)
}

func TestLedger_RestoreDefaultProducts(t *testing.T) {
	ledger, _ := newTestLedger(t)
	ctx := context.Background()

	require.NoError(t, ledger.DeleteProduct(ctx, "p2"))
	require.NoError(t, ledger.DeleteProduct(ctx, "p5"))
	require.NoError(t, ledger.SaveProduct(ctx, core.Product{ID: "p1", Name: "Chocolate 70%", Price: decimal.RequireFromString("14"), Icon: "candy"}))

	restored, err := ledger.RestoreDefaultProducts(ctx)
	require.NoError(t, err)
	require.Len(t, restored, 2)
	assert.Equal(t, "p2", restored[0].ID)
	assert.Equal(t, "p5", restored[1].ID)

	products, err := ledger.ListProducts(ctx)
	require.NoError(t, err)
	assert.Len(t, products, 6)
	assert.Equal(t, "Chocolate 70%", products[0].Name)

	restored, err = ledger.RestoreDefaultProducts(ctx)
	require.NoError(t, err)
	assert.Empty(t, restored)
}

// interleavingBackend runs interleave once, right after a plain read of key
// comes back empty, to simulate another writer committing in that window.
type interleavingBackend struct {
	*memory.Backend
	key        string
	interleave func()
	fired      bool
}

func (b *interleavingBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	v, found, err := b.Backend.Get(ctx, key)
	if err == nil && !found && key == b.key && !b.fired {
		b.fired = true
		b.interleave()
	}
	return v, found, err
}

func TestLedger_FirstReadKeepsConcurrentWrite(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name   string
		key    string
		write  func(t *testing.T, other *core.Ledger)
		verify func(t *testing.T, ledger *core.Ledger)
	}{
		{
			name: "clients",
			key:  store.KeyClients,
			write: func(t *testing.T, other *core.Ledger) {
				require.NoError(t, other.UpsertClient(ctx, core.Client{ID: "c1", Name: "Ana", Balance: decimal.Zero}))
			},
			verify: func(t *testing.T, ledger *core.Ledger) {
				clients, err := ledger.ListClients(ctx)
				require.NoError(t, err)
				require.Len(t, clients, 1)
				assert.Equal(t, "c1", clients[0].ID)
			},
		},
		{
			name: "products",
			key:  store.KeyProducts,
			write: func(t *testing.T, other *core.Ledger) {
				require.NoError(t, other.SaveProduct(ctx, core.Product{ID: "p9", Name: "Pudim", Price: decimal.NewFromInt(9), Icon: "cake"}))
			},
			verify: func(t *testing.T, ledger *core.Ledger) {
				products, err := ledger.ListProducts(ctx)
				require.NoError(t, err)
				require.Len(t, products, len(core.DefaultProducts())+1)
				assert.Equal(t, "p9", products[len(products)-1].ID)
			},
		},
		{
			name: "settings",
			key:  store.KeySettings,
			write: func(t *testing.T, other *core.Ledger) {
				settings := core.DefaultSettings()
				settings.PixKey = "owner@pix"
				require.NoError(t, other.SaveSettings(ctx, settings))
			},
			verify: func(t *testing.T, ledger *core.Ledger) {
				settings, err := ledger.GetSettings(ctx)
				require.NoError(t, err)
				assert.Equal(t, "owner@pix", settings.PixKey)
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			inner := memory.New()
			other := core.NewLedger(store.New(inner))
			backend := &interleavingBackend{Backend: inner, key: tc.key}
			backend.interleave = func() { tc.write(t, other) }
			ledger := core.NewLedger(store.New(backend))

			// The first read races with the other writer and must return its data.
			tc.verify(t, ledger)
			assert.True(t, backend.fired)
			// The stored collection keeps it too.
			tc.verify(t, other)
		})
	}
}
