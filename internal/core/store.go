package core

import "context"

// LedgerState holds the two collections the balance invariant spans.
type LedgerState struct {
	Clients      []Client
	Transactions []Transaction

	// ClientsFound is false when the clients key was absent from the store.
	ClientsFound bool
}

// Store is the persistence contract of the ledger. Each collection is read and
// written whole. The found flag distinguishes an absent collection from an
// empty one so the ledger can materialize defaults on first access.
type Store interface {
	GetClients(ctx context.Context) ([]Client, bool, error)
	PutClients(ctx context.Context, clients []Client) error

	GetTransactions(ctx context.Context) ([]Transaction, bool, error)

	// UpdateLedger loads clients and transactions, hands them to fn and, when fn
	// reports commit=true, writes both collections back as one atomic unit.
	// Nothing is written when fn fails or declines to commit.
	UpdateLedger(ctx context.Context, fn func(state *LedgerState) (commit bool, err error)) error

	GetProducts(ctx context.Context) ([]Product, bool, error)
	PutProducts(ctx context.Context, products []Product) error
	// UpdateProducts is the atomic read-modify-write counterpart of PutProducts.
	UpdateProducts(ctx context.Context, fn func(products []Product, found bool) ([]Product, error)) error

	GetSettings(ctx context.Context) (Settings, bool, error)
	PutSettings(ctx context.Context, settings Settings) error
	// UpdateSettings is the atomic read-modify-write counterpart of PutSettings.
	UpdateSettings(ctx context.Context, fn func(settings Settings, found bool) (Settings, error)) error
}
