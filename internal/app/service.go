package app

import (
	"context"

	"bomboniere/internal/core"
)

// ApplicationService is the single interface all UI adapters (CLI, Web) call.
// It decouples presentation from business logic. Implementations must contain
// no fmt.Println, no ANSI codes, and no display logic of any kind.
type ApplicationService interface {
	// ListClients returns clients in registration order, optionally narrowed by
	// a name search and to those who owe something.
	ListClients(ctx context.Context, filter ClientFilter) (*ClientListResult, error)

	// RegisterClient creates a client with a fresh id and a zero balance.
	// Name and phone are both required.
	RegisterClient(ctx context.Context, req RegisterClientRequest) (*ClientResult, error)

	// DeleteClient removes the client record. Its ledger entries are kept.
	DeleteClient(ctx context.Context, clientID string) error

	// ListProducts returns the catalog, seeding the starter items on first use.
	ListProducts(ctx context.Context) (*ProductListResult, error)

	// SaveProduct creates or updates a catalog item. The price is typed text
	// ("12,50" or "12.50").
	SaveProduct(ctx context.Context, req SaveProductRequest) (*ProductResult, error)

	// DeleteProduct removes a catalog item. Past sales keep their snapshot name.
	DeleteProduct(ctx context.Context, productID string) error

	// RecordSale checks out a cart for a client: one ledger entry per line, all
	// sharing the same date and due date. When instant messages are enabled the
	// purchase receipt and its wa.me link are returned.
	RecordSale(ctx context.Context, req SaleRequest) (*SaleResult, error)

	// SettleDebt records a payment clearing the client's whole balance.
	// Settled is false when there was nothing to settle.
	SettleDebt(ctx context.Context, clientID string) (*SettlementResult, error)

	// BillClient renders the cycle-closing bill for the client's current balance.
	BillClient(ctx context.Context, clientID string) (*NotificationResult, error)

	// ListTransactions returns the ledger in chronological order. A non-empty
	// clientID restricts it to that client's entries.
	ListTransactions(ctx context.Context, clientID string) (*TransactionListResult, error)

	// GetSummary returns the dashboard figures for the current month.
	GetSummary(ctx context.Context) (*core.Summary, error)

	// GetSettings returns the owner's settings, defaults on first use.
	GetSettings(ctx context.Context) (*core.Settings, error)

	// SaveSettings replaces the owner's settings.
	SaveSettings(ctx context.Context, settings core.Settings) (*core.Settings, error)

	// ComputeDueDate returns the due date for a YYYY-MM-DD date, or for today
	// when date is empty.
	ComputeDueDate(ctx context.Context, date string) (*DueDateResult, error)
}
