package core_test

import (
	"testing"
	"time"

	"bomboniere/internal/core"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entry(id, clientID, amount string, date time.Time) core.Transaction {
	return core.Transaction{ID: id, ClientID: clientID, Amount: decimal.RequireFromString(amount), Date: date}
}

func TestSummarize(t *testing.T) {
	now := time.Date(2024, time.March, 22, 9, 0, 0, 0, time.UTC)
	clients := []core.Client{
		{ID: "a", Balance: decimal.NewFromInt(10)},
		{ID: "b", Balance: decimal.Zero},
		{ID: "c", Balance: decimal.NewFromInt(30)},
		{ID: "d", Balance: decimal.NewFromInt(10)},
		{ID: "e", Balance: decimal.NewFromInt(1)},
		{ID: "f", Balance: decimal.NewFromInt(2)},
		{ID: "g", Balance: decimal.NewFromInt(3)},
	}
	txs := []core.Transaction{
		entry("1", "a", "50", time.Date(2024, time.February, 28, 0, 0, 0, 0, time.UTC)),
		entry("2", "a", "10", time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)),
		entry("3", "c", "30", time.Date(2024, time.March, 2, 0, 0, 0, 0, time.UTC)),
		entry("4", "a", "-50", time.Date(2024, time.March, 3, 0, 0, 0, 0, time.UTC)),
		entry("5", "d", "10", time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC)),
		entry("6", "e", "1", time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)),
		entry("7", "f", "2", time.Date(2023, time.March, 6, 0, 0, 0, 0, time.UTC)),
	}

	s := core.Summarize(clients, txs, now)

	assert.Equal(t, "56", s.TotalReceivable.String())
	assert.Equal(t, 6, s.DebtorCount)
	assert.Equal(t, "51", s.MonthlySales.String())
	assert.Equal(t, "50", s.MonthlyReceipts.String())
	assert.Equal(t, "Ciclo Vigente: 21 a 05 (Vence dia 05)", s.CycleLabel)

	require.Len(t, s.RecentTransactions, 5)
	assert.Equal(t, []string{"7", "6", "5", "4", "3"}, txIDs(s.RecentTransactions))

	require.Len(t, s.TopDebtors, 5)
	ids := make([]string, 0, len(s.TopDebtors))
	for _, c := range s.TopDebtors {
		ids = append(ids, c.ID)
	}
	assert.Equal(t, []string{"c", "a", "d", "g", "f"}, ids)
}

func TestSummarize_Empty(t *testing.T) {
	s := core.Summarize(nil, nil, time.Date(2024, time.March, 8, 0, 0, 0, 0, time.UTC))

	assert.True(t, s.TotalReceivable.IsZero())
	assert.Zero(t, s.DebtorCount)
	assert.NotNil(t, s.RecentTransactions)
	assert.NotNil(t, s.TopDebtors)
	assert.Equal(t, "Ciclo Vigente: 06 a 19 (Vence dia 20)", s.CycleLabel)
}

func TestClientHistory(t *testing.T) {
	now := time.Date(2024, time.March, 8, 0, 0, 0, 0, time.UTC)
	txs := []core.Transaction{
		entry("1", "a", "5", now),
		entry("2", "b", "3", now),
		entry("3", "a", "-5", now),
	}

	assert.Equal(t, []string{"1", "3"}, txIDs(core.ClientHistory(txs, "a")))
	assert.Empty(t, core.ClientHistory(txs, "z"))
	assert.True(t, core.LedgerBalance(txs, "a").IsZero())
	assert.Equal(t, "3", core.LedgerBalance(txs, "b").String())
}

func txIDs(txs []core.Transaction) []string {
	ids := make([]string, 0, len(txs))
	for _, t := range txs {
		ids = append(ids, t.ID)
	}
	return ids
}
