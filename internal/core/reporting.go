package core

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

const (
	recentTransactionsLimit = 5
	topDebtorsLimit         = 5
)

// Summary is the owner's dashboard view of the ledger.
type Summary struct {
	TotalReceivable    decimal.Decimal `json:"totalReceivable"`
	DebtorCount        int             `json:"debtorCount"`
	MonthlySales       decimal.Decimal `json:"monthlySales"`    // positive entries dated in the current month
	MonthlyReceipts    decimal.Decimal `json:"monthlyReceipts"` // |negative entries| dated in the current month
	CycleLabel         string          `json:"cycleLabel"`
	RecentTransactions []Transaction   `json:"recentTransactions"` // newest first
	TopDebtors         []Client        `json:"topDebtors"`         // highest balance first
}

// Summarize computes the dashboard figures for the calendar month of now.
func Summarize(clients []Client, transactions []Transaction, now time.Time) Summary {
	s := Summary{
		TotalReceivable:    decimal.Zero,
		MonthlySales:       decimal.Zero,
		MonthlyReceipts:    decimal.Zero,
		CycleLabel:         CycleLabel(now),
		RecentTransactions: []Transaction{},
		TopDebtors:         []Client{},
	}

	for _, c := range clients {
		s.TotalReceivable = s.TotalReceivable.Add(c.Balance)
		if c.Balance.IsPositive() {
			s.DebtorCount++
			s.TopDebtors = append(s.TopDebtors, c)
		}
	}
	sort.SliceStable(s.TopDebtors, func(i, j int) bool {
		return s.TopDebtors[i].Balance.GreaterThan(s.TopDebtors[j].Balance)
	})
	if len(s.TopDebtors) > topDebtorsLimit {
		s.TopDebtors = s.TopDebtors[:topDebtorsLimit]
	}

	year, month, _ := now.Date()
	for _, t := range transactions {
		ty, tm, _ := t.Date.In(now.Location()).Date()
		if ty != year || tm != month {
			continue
		}
		switch {
		case t.Amount.IsPositive():
			s.MonthlySales = s.MonthlySales.Add(t.Amount)
		case t.Amount.IsNegative():
			s.MonthlyReceipts = s.MonthlyReceipts.Add(t.Amount.Abs())
		}
	}

	for i := len(transactions) - 1; i >= 0 && len(s.RecentTransactions) < recentTransactionsLimit; i-- {
		s.RecentTransactions = append(s.RecentTransactions, transactions[i])
	}
	return s
}

// ClientHistory filters the ledger down to one client's entries, keeping order.
func ClientHistory(transactions []Transaction, clientID string) []Transaction {
	out := make([]Transaction, 0)
	for _, t := range transactions {
		if t.ClientID == clientID {
			out = append(out, t)
		}
	}
	return out
}

// LedgerBalance sums a client's entries. For a consistent store it equals the
// client's stored balance.
func LedgerBalance(transactions []Transaction, clientID string) decimal.Decimal {
	sum := decimal.Zero
	for _, t := range transactions {
		if t.ClientID == clientID {
			sum = sum.Add(t.Amount)
		}
	}
	return sum
}
