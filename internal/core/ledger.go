package core

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LedgerService owns clients, transactions, products and settings and keeps
// every client balance equal to the sum of that client's transactions.
type LedgerService interface {
	ListClients(ctx context.Context) ([]Client, error)
	FindClient(ctx context.Context, id string) (*Client, bool, error)
	UpsertClient(ctx context.Context, client Client) error
	DeleteClient(ctx context.Context, id string) error

	// AddTransaction appends tx to the ledger and applies its amount to the
	// client's balance in the same commit. found is false when tx.ClientID no
	// longer resolves; the entry is still recorded.
	AddTransaction(ctx context.Context, tx Transaction) (balance decimal.Decimal, found bool, err error)
	// AddTransactions appends several entries in one commit, applying each
	// amount in order. balance and found describe the last entry's client.
	AddTransactions(ctx context.Context, txs []Transaction) (balance decimal.Decimal, found bool, err error)
	// ApplyBalanceDelta moves a client's balance without recording an entry.
	// Unknown clients are a no-op returning zero and found=false.
	ApplyBalanceDelta(ctx context.Context, clientID string, amount decimal.Decimal) (balance decimal.Decimal, found bool, err error)
	// SettleDebt records a payment clearing the client's whole balance. It returns
	// nil when there is nothing to settle (unknown client or balance <= 0).
	SettleDebt(ctx context.Context, clientID string) (*Transaction, error)
	ListTransactions(ctx context.Context) ([]Transaction, error)

	ListProducts(ctx context.Context) ([]Product, error)
	SaveProduct(ctx context.Context, product Product) error
	DeleteProduct(ctx context.Context, id string) error

	GetSettings(ctx context.Context) (Settings, error)
	SaveSettings(ctx context.Context, settings Settings) error
}

// Ledger implements LedgerService on top of a Store.
type Ledger struct {
	store Store
	now   func() time.Time
	newID func() string
}

// Option customizes a Ledger.
type Option func(*Ledger)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// WithIDGenerator replaces uuid.NewString for synthesized transactions.
func WithIDGenerator(newID func() string) Option {
	return func(l *Ledger) { l.newID = newID }
}

func NewLedger(store Store, opts ...Option) *Ledger {
	l := &Ledger{store: store, now: time.Now, newID: uuid.NewString}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Now returns the ledger clock's current time.
func (l *Ledger) Now() time.Time {
	return l.now()
}

// NewID returns a fresh identity from the ledger's id generator.
func (l *Ledger) NewID() string {
	return l.newID()
}

// ── Clients ──────────────────────────────────────────────────────────────────

// ListClients returns clients in insertion order. An absent collection is
// initialized and persisted as empty.
func (l *Ledger) ListClients(ctx context.Context) ([]Client, error) {
	clients, found, err := l.store.GetClients(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load clients: %w", err)
	}
	if found {
		return clients, nil
	}

	// Another writer may have created the collection since the read above, so
	// the empty default is only committed while the key is still absent.
	err = l.store.UpdateLedger(ctx, func(state *LedgerState) (bool, error) {
		clients = state.Clients
		return !state.ClientsFound, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize clients: %w", err)
	}
	return clients, nil
}

func (l *Ledger) FindClient(ctx context.Context, id string) (*Client, bool, error) {
	clients, err := l.ListClients(ctx)
	if err != nil {
		return nil, false, err
	}
	if i := clientIndex(clients, id); i >= 0 {
		c := clients[i]
		return &c, true, nil
	}
	return nil, false, nil
}

// UpsertClient inserts client when its id is unseen, otherwise replaces the
// stored record in place. Last write wins.
func (l *Ledger) UpsertClient(ctx context.Context, client Client) error {
	err := l.store.UpdateLedger(ctx, func(state *LedgerState) (bool, error) {
		if i := clientIndex(state.Clients, client.ID); i >= 0 {
			state.Clients[i] = client
		} else {
			state.Clients = append(state.Clients, client)
		}
		return true, nil
	})
	if err != nil {
		return fmt.Errorf("failed to save client %s: %w", client.ID, err)
	}
	return nil
}

// DeleteClient removes the client record only. Its transactions stay in the
// ledger as history.
func (l *Ledger) DeleteClient(ctx context.Context, id string) error {
	err := l.store.UpdateLedger(ctx, func(state *LedgerState) (bool, error) {
		i := clientIndex(state.Clients, id)
		if i < 0 {
			return false, nil
		}
		state.Clients = append(state.Clients[:i], state.Clients[i+1:]...)
		return true, nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete client %s: %w", id, err)
	}
	return nil
}

// ── Ledger ───────────────────────────────────────────────────────────────────

func (l *Ledger) AddTransaction(ctx context.Context, tx Transaction) (decimal.Decimal, bool, error) {
	return l.AddTransactions(ctx, []Transaction{tx})
}

func (l *Ledger) AddTransactions(ctx context.Context, txs []Transaction) (decimal.Decimal, bool, error) {
	if len(txs) == 0 {
		return decimal.Zero, false, nil
	}
	var (
		balance decimal.Decimal
		found   bool
	)
	err := l.store.UpdateLedger(ctx, func(state *LedgerState) (bool, error) {
		now := l.now()
		for _, tx := range txs {
			state.Transactions = append(state.Transactions, tx)
			balance, found = applyDelta(state, tx.ClientID, tx.Amount, now)
		}
		return true, nil
	})
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("failed to add %d transactions: %w", len(txs), err)
	}
	return balance, found, nil
}

func (l *Ledger) ApplyBalanceDelta(ctx context.Context, clientID string, amount decimal.Decimal) (decimal.Decimal, bool, error) {
	var (
		balance decimal.Decimal
		found   bool
	)
	err := l.store.UpdateLedger(ctx, func(state *LedgerState) (bool, error) {
		balance, found = applyDelta(state, clientID, amount, l.now())
		return found, nil
	})
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("failed to update balance of client %s: %w", clientID, err)
	}
	return balance, found, nil
}

func (l *Ledger) SettleDebt(ctx context.Context, clientID string) (*Transaction, error) {
	var settlement *Transaction
	err := l.store.UpdateLedger(ctx, func(state *LedgerState) (bool, error) {
		i := clientIndex(state.Clients, clientID)
		if i < 0 {
			return false, nil
		}
		client := state.Clients[i]
		if !client.Balance.IsPositive() {
			return false, nil
		}

		now := l.now()
		tx := Transaction{
			ID:          l.newID(),
			ClientID:    client.ID,
			ClientName:  client.Name,
			ProductID:   PaymentProductID,
			ProductName: PaymentProductName,
			Amount:      client.Balance.Neg(),
			Date:        now,
			DueDate:     now,
			IsPaid:      true,
		}
		state.Transactions = append(state.Transactions, tx)
		applyDelta(state, tx.ClientID, tx.Amount, now)
		settlement = &tx
		return true, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to settle debt of client %s: %w", clientID, err)
	}
	return settlement, nil
}

// ListTransactions returns the ledger in append (chronological) order.
func (l *Ledger) ListTransactions(ctx context.Context) ([]Transaction, error) {
	txs, found, err := l.store.GetTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}
	if !found {
		return []Transaction{}, nil
	}
	return txs, nil
}

// applyDelta adds amount to the client's balance and stamps the last purchase.
func applyDelta(state *LedgerState, clientID string, amount decimal.Decimal, now time.Time) (decimal.Decimal, bool) {
	i := clientIndex(state.Clients, clientID)
	if i < 0 {
		return decimal.Zero, false
	}
	c := &state.Clients[i]
	c.Balance = c.Balance.Add(amount)
	stamp := now
	c.LastPurchase = &stamp
	return c.Balance, true
}

func clientIndex(clients []Client, id string) int {
	for i := range clients {
		if clients[i].ID == id {
			return i
		}
	}
	return -1
}

// ── Catalog ──────────────────────────────────────────────────────────────────

// ListProducts returns the catalog. The starter catalog is persisted on first access.
func (l *Ledger) ListProducts(ctx context.Context) ([]Product, error) {
	products, found, err := l.store.GetProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}
	if found {
		return products, nil
	}

	err = l.store.UpdateProducts(ctx, func(current []Product, found bool) ([]Product, error) {
		if !found {
			current = DefaultProducts()
		}
		products = current
		return current, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize products: %w", err)
	}
	return products, nil
}

func (l *Ledger) SaveProduct(ctx context.Context, product Product) error {
	err := l.store.UpdateProducts(ctx, func(products []Product, found bool) ([]Product, error) {
		if !found {
			products = DefaultProducts()
		}
		if i := productIndex(products, product.ID); i >= 0 {
			products[i] = product
		} else {
			products = append(products, product)
		}
		return products, nil
	})
	if err != nil {
		return fmt.Errorf("failed to save product %s: %w", product.ID, err)
	}
	return nil
}

func (l *Ledger) DeleteProduct(ctx context.Context, id string) error {
	err := l.store.UpdateProducts(ctx, func(products []Product, found bool) ([]Product, error) {
		if !found {
			products = DefaultProducts()
		}
		kept := products[:0]
		for _, p := range products {
			if p.ID != id {
				kept = append(kept, p)
			}
		}
		return kept, nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete product %s: %w", id, err)
	}
	return nil
}

// RestoreDefaultProducts puts back any starter catalog item whose id is
// missing. Custom products and edited starter items are left alone.
func (l *Ledger) RestoreDefaultProducts(ctx context.Context) ([]Product, error) {
	var restored []Product
	err := l.store.UpdateProducts(ctx, func(products []Product, found bool) ([]Product, error) {
		restored = restored[:0]
		for _, p := range DefaultProducts() {
			if productIndex(products, p.ID) < 0 {
				products = append(products, p)
				restored = append(restored, p)
			}
		}
		return products, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to restore starter products: %w", err)
	}
	return restored, nil
}

func productIndex(products []Product, id string) int {
	for i := range products {
		if products[i].ID == id {
			return i
		}
	}
	return -1
}

// ── Settings ─────────────────────────────────────────────────────────────────

// GetSettings returns the saved settings, persisting the defaults on first read.
func (l *Ledger) GetSettings(ctx context.Context) (Settings, error) {
	settings, found, err := l.store.GetSettings(ctx)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to load settings: %w", err)
	}
	if found {
		return settings, nil
	}

	err = l.store.UpdateSettings(ctx, func(current Settings, found bool) (Settings, error) {
		if !found {
			current = DefaultSettings()
		}
		settings = current
		return current, nil
	})
	if err != nil {
		return Settings{}, fmt.Errorf("failed to initialize settings: %w", err)
	}
	return settings, nil
}

func (l *Ledger) SaveSettings(ctx context.Context, settings Settings) error {
	if err := l.store.PutSettings(ctx, settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}
