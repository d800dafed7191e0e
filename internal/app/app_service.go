package app

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"bomboniere/internal/core"
	"bomboniere/internal/metrics"

	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

type appService struct {
	ledger   *core.Ledger
	recorder *metrics.Recorder
	loc      *time.Location
}

// NewAppService constructs an appService that satisfies ApplicationService.
// Dates are computed in loc (time.Local when nil). A nil recorder counts into
// unregistered collectors.
func NewAppService(ledger *core.Ledger, recorder *metrics.Recorder, loc *time.Location) ApplicationService {
	if recorder == nil {
		recorder = metrics.New(nil)
	}
	if loc == nil {
		loc = time.Local
	}
	return &appService{
		ledger:   ledger,
		recorder: recorder,
		loc:      loc,
	}
}

func (s *appService) now() time.Time {
	return s.ledger.Now().In(s.loc)
}

// ── Clients ──────────────────────────────────────────────────────────────────

// ListClients returns clients in registration order, narrowed by filter.
func (s *appService) ListClients(ctx context.Context, filter ClientFilter) (*ClientListResult, error) {
	clients, err := s.ledger.ListClients(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	search := strings.ToLower(strings.TrimSpace(filter.Search))
	rows := make([]ClientRow, 0, len(clients))
	for _, c := range clients {
		if search != "" && !strings.Contains(strings.ToLower(c.Name), search) {
			continue
		}
		if filter.DebtOnly && !c.Balance.IsPositive() {
			continue
		}

		row := ClientRow{Client: c, DueDateLabel: "-"}
		if c.LastPurchase != nil {
			due := core.ComputeDueDate(c.LastPurchase.In(s.loc))
			row.DueDate = &due
			row.DueDateLabel = core.FormatDate(due)
			row.Overdue = c.Balance.IsPositive() && core.IsOverdue(c.LastPurchase, now)
		}
		rows = append(rows, row)
	}
	return &ClientListResult{Clients: rows}, nil
}

// RegisterClient creates a new client with a zero balance.
func (s *appService) RegisterClient(ctx context.Context, req RegisterClientRequest) (*ClientResult, error) {
	name := strings.TrimSpace(req.Name)
	phone := strings.TrimSpace(req.Phone)
	if name == "" || phone == "" {
		return nil, fmt.Errorf("%w: client name and phone are required", core.ErrInvalidInput)
	}

	client := core.Client{
		ID:      s.ledger.NewID(),
		Name:    name,
		Phone:   phone,
		Balance: decimal.Zero,
	}
	if err := s.ledger.UpsertClient(ctx, client); err != nil {
		return nil, err
	}
	return &ClientResult{Client: client}, nil
}

// DeleteClient removes a client record; deleting an unknown id is a no-op.
func (s *appService) DeleteClient(ctx context.Context, clientID string) error {
	if strings.TrimSpace(clientID) == "" {
		return fmt.Errorf("%w: client id is required", core.ErrInvalidInput)
	}
	return s.ledger.DeleteClient(ctx, clientID)
}

// ── Catalog ──────────────────────────────────────────────────────────────────

// ListProducts returns the catalog.
func (s *appService) ListProducts(ctx context.Context) (*ProductListResult, error) {
	products, err := s.ledger.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	return &ProductListResult{Products: products}, nil
}

// SaveProduct validates and upserts a catalog item.
func (s *appService) SaveProduct(ctx context.Context, req SaveProductRequest) (*ProductResult, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: product name is required", core.ErrInvalidInput)
	}
	price, err := core.ParseAmount(req.Price)
	if err != nil {
		return nil, err
	}

	icon := strings.TrimSpace(req.Icon)
	if !slices.Contains(core.ProductIcons, icon) {
		icon = core.DefaultProductIcon
	}
	id := strings.TrimSpace(req.ID)
	if id == "" {
		id = s.ledger.NewID()
	}

	product := core.Product{ID: id, Name: name, Price: price, Icon: icon}
	if err := s.ledger.SaveProduct(ctx, product); err != nil {
		return nil, err
	}
	return &ProductResult{Product: product}, nil
}

// DeleteProduct removes a catalog item.
func (s *appService) DeleteProduct(ctx context.Context, productID string) error {
	if strings.TrimSpace(productID) == "" {
		return fmt.Errorf("%w: product id is required", core.ErrInvalidInput)
	}
	return s.ledger.DeleteProduct(ctx, productID)
}

// ── Sales ────────────────────────────────────────────────────────────────────

type saleLine struct {
	product core.Product
	qty     int
}

// RecordSale checks out a cart. All lines commit together.
func (s *appService) RecordSale(ctx context.Context, req SaleRequest) (*SaleResult, error) {
	if len(req.Items) == 0 {
		return nil, core.ErrEmptyCart
	}

	products, err := s.ledger.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	lines, err := mergeCart(req.Items, products)
	if err != nil {
		return nil, err
	}

	client, found, err := s.ledger.FindClient(ctx, req.ClientID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: %s", core.ErrClientNotFound, req.ClientID)
	}

	now := s.now()
	dueDate := core.ComputeDueDate(now)
	total := decimal.Zero
	txs := make([]core.Transaction, 0, len(lines))
	items := make([]core.CartItem, 0, len(lines))
	for _, line := range lines {
		item := core.CartItem{Name: line.product.Name, Qty: line.qty, Price: line.product.Price}
		items = append(items, item)

		name := line.product.Name
		if line.qty > 1 {
			name = fmt.Sprintf("%s (%dx)", name, line.qty)
		}
		txs = append(txs, core.Transaction{
			ID:          s.ledger.NewID(),
			ClientID:    client.ID,
			ClientName:  client.Name,
			ProductID:   line.product.ID,
			ProductName: name,
			Amount:      item.LineTotal(),
			Date:        now,
			DueDate:     dueDate,
			IsPaid:      false,
		})
		total = total.Add(item.LineTotal())
	}

	balance, found, err := s.ledger.AddTransactions(ctx, txs)
	if err != nil {
		return nil, err
	}
	balanceBefore := client.Balance
	if found {
		balanceBefore = balance.Sub(total)
	} else {
		// Client was deleted between lookup and commit; entries are kept as history.
		s.recorder.OrphanTransactions.Add(float64(len(txs)))
	}
	s.recorder.ObserveSale(len(txs), total)

	result := &SaleResult{
		Transactions: txs,
		Total:        total,
		Balance:      balance,
		DueDate:      dueDate,
	}

	settings, err := s.ledger.GetSettings(ctx)
	if err != nil {
		return nil, err
	}
	if settings.InstantMessage {
		msg := core.RenderSaleMessage(core.SaleNotice{
			ClientName:        client.Name,
			Items:             items,
			SaleTotal:         total,
			DueDate:           dueDate,
			BalanceBeforeSale: balanceBefore,
			PixKey:            settings.PixKey,
			Greeting:          settings.CustomGreeting,
		})
		result.Notification = s.notification(client, msg, metrics.MessageSale)
	}
	return result, nil
}

// mergeCart resolves cart lines against the catalog, summing quantities of
// repeated products and keeping first-seen order.
func mergeCart(items []SaleItemInput, products []core.Product) ([]saleLine, error) {
	var lines []saleLine
	index := make(map[string]int)
	for _, item := range items {
		if item.Qty < 1 {
			return nil, fmt.Errorf("%w: quantity of %s must be at least 1", core.ErrInvalidInput, item.ProductID)
		}
		if i, ok := index[item.ProductID]; ok {
			lines[i].qty += item.Qty
			continue
		}
		i := slices.IndexFunc(products, func(p core.Product) bool { return p.ID == item.ProductID })
		if i < 0 {
			return nil, fmt.Errorf("%w: %s", core.ErrProductNotFound, item.ProductID)
		}
		index[item.ProductID] = len(lines)
		lines = append(lines, saleLine{product: products[i], qty: item.Qty})
	}
	return lines, nil
}

// SettleDebt clears the client's balance with a single payment entry.
func (s *appService) SettleDebt(ctx context.Context, clientID string) (*SettlementResult, error) {
	if _, found, err := s.ledger.FindClient(ctx, clientID); err != nil {
		return nil, err
	} else if !found {
		return nil, fmt.Errorf("%w: %s", core.ErrClientNotFound, clientID)
	}

	tx, err := s.ledger.SettleDebt(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if tx == nil {
		return &SettlementResult{Settled: false, Amount: decimal.Zero}, nil
	}
	s.recorder.ObserveSettlement(tx.Amount)
	return &SettlementResult{Settled: true, Amount: tx.Amount.Neg(), Transaction: tx}, nil
}

// BillClient renders the cycle-closing bill due on the current cycle's date.
func (s *appService) BillClient(ctx context.Context, clientID string) (*NotificationResult, error) {
	client, found, err := s.ledger.FindClient(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: %s", core.ErrClientNotFound, clientID)
	}
	settings, err := s.ledger.GetSettings(ctx)
	if err != nil {
		return nil, err
	}

	msg := core.RenderBillingMessage(core.BillingNotice{
		ClientName:   client.Name,
		TotalBalance: client.Balance,
		DueDate:      core.ComputeDueDate(s.now()),
		PixKey:       settings.PixKey,
		Greeting:     settings.CustomGreeting,
	})
	return s.notification(client, msg, metrics.MessageBilling), nil
}

func (s *appService) notification(client *core.Client, msg, kind string) *NotificationResult {
	s.recorder.ObserveMessage(kind)
	return &NotificationResult{
		ClientID: client.ID,
		Phone:    core.PhoneDigits(client.Phone),
		Message:  msg,
		Link:     core.BuildDeepLink(client.Phone, msg),
	}
}

// ── Reporting ────────────────────────────────────────────────────────────────

// ListTransactions returns the whole ledger or one client's history.
func (s *appService) ListTransactions(ctx context.Context, clientID string) (*TransactionListResult, error) {
	txs, err := s.ledger.ListTransactions(ctx)
	if err != nil {
		return nil, err
	}
	if clientID == "" {
		return &TransactionListResult{Transactions: txs}, nil
	}
	balance := core.LedgerBalance(txs, clientID)
	return &TransactionListResult{
		Transactions: core.ClientHistory(txs, clientID),
		Balance:      &balance,
	}, nil
}

// GetSummary returns the dashboard figures.
func (s *appService) GetSummary(ctx context.Context) (*core.Summary, error) {
	clients, err := s.ledger.ListClients(ctx)
	if err != nil {
		return nil, err
	}
	txs, err := s.ledger.ListTransactions(ctx)
	if err != nil {
		return nil, err
	}
	summary := core.Summarize(clients, txs, s.now())
	return &summary, nil
}

// ── Settings ─────────────────────────────────────────────────────────────────

// GetSettings returns the owner's settings.
func (s *appService) GetSettings(ctx context.Context) (*core.Settings, error) {
	settings, err := s.ledger.GetSettings(ctx)
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

// SaveSettings stores the owner's settings with surrounding spaces trimmed.
func (s *appService) SaveSettings(ctx context.Context, settings core.Settings) (*core.Settings, error) {
	settings.PixKey = strings.TrimSpace(settings.PixKey)
	settings.OwnerName = strings.TrimSpace(settings.OwnerName)
	if err := s.ledger.SaveSettings(ctx, settings); err != nil {
		return nil, err
	}
	return &settings, nil
}

// ComputeDueDate resolves the billing due date of a calendar date.
func (s *appService) ComputeDueDate(_ context.Context, date string) (*DueDateResult, error) {
	day := s.now()
	if date = strings.TrimSpace(date); date != "" {
		parsed, err := time.ParseInLocation(dateLayout, date, s.loc)
		if err != nil {
			return nil, fmt.Errorf("%w: date must be YYYY-MM-DD, got %q", core.ErrInvalidInput, date)
		}
		day = parsed
	}
	due := core.ComputeDueDate(day)
	return &DueDateResult{
		Date:       day,
		DueDate:    due,
		Formatted:  core.FormatDate(due),
		CycleLabel: core.CycleLabel(day),
	}, nil
}
