package app

import (
	"time"

	"bomboniere/internal/core"

	"github.com/shopspring/decimal"
)

// ClientRow is a client as shown in the client list.
type ClientRow struct {
	core.Client
	DueDate      *time.Time `json:"dueDate,omitempty"` // due date of the last purchase's cycle
	DueDateLabel string     `json:"dueDateLabel"`      // dd/mm/yyyy or "-" when never bought
	Overdue      bool       `json:"overdue"`
}

// ClientListResult is returned by ListClients.
type ClientListResult struct {
	Clients []ClientRow `json:"clients"`
}

// ClientResult is returned by RegisterClient.
type ClientResult struct {
	Client core.Client `json:"client"`
}

// ProductListResult is returned by ListProducts.
type ProductListResult struct {
	Products []core.Product `json:"products"`
}

// ProductResult is returned by SaveProduct.
type ProductResult struct {
	Product core.Product `json:"product"`
}

// NotificationResult is a rendered customer message and its wa.me link.
type NotificationResult struct {
	ClientID string `json:"clientId"`
	Phone    string `json:"phone"`
	Message  string `json:"message"`
	Link     string `json:"link"`
}

// SaleResult is returned by RecordSale.
type SaleResult struct {
	Transactions []core.Transaction  `json:"transactions"`
	Total        decimal.Decimal     `json:"total"`
	Balance      decimal.Decimal     `json:"balance"` // client balance after the sale
	DueDate      time.Time           `json:"dueDate"`
	Notification *NotificationResult `json:"notification,omitempty"` // nil when instant messages are off
}

// SettlementResult is returned by SettleDebt.
type SettlementResult struct {
	Settled     bool              `json:"settled"`
	Amount      decimal.Decimal   `json:"amount"` // amount received, positive
	Transaction *core.Transaction `json:"transaction,omitempty"`
}

// TransactionListResult is returned by ListTransactions.
type TransactionListResult struct {
	Transactions []core.Transaction `json:"transactions"`
	Balance      *decimal.Decimal   `json:"balance,omitempty"` // ledger sum, set when filtered by client
}

// DueDateResult is returned by ComputeDueDate.
type DueDateResult struct {
	Date       time.Time `json:"date"`
	DueDate    time.Time `json:"dueDate"`
	Formatted  string    `json:"formatted"`
	CycleLabel string    `json:"cycleLabel"`
}
