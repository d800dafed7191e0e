package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentProductID is the sentinel product id carried by settlement transactions.
const PaymentProductID = "payment"

// PaymentProductName is the ledger label of a settlement transaction.
const PaymentProductName = "Pagamento de Fatura"

// Client is a customer buying on credit ("fiado").
// Balance is never edited directly: it moves only through the ledger path and
// always equals the sum of the client's transaction amounts.
type Client struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Phone        string          `json:"phone"`
	Balance      decimal.Decimal `json:"balance"`
	LastPurchase *time.Time      `json:"lastPurchase,omitempty"`
}

// Transaction is an append-only ledger entry. Sales carry a positive amount,
// settlements a negative one. ClientID is a weak reference: the client may have
// been deleted since the entry was recorded.
type Transaction struct {
	ID          string          `json:"id"`
	ClientID    string          `json:"clientId"`
	ClientName  string          `json:"clientName"` // snapshot at time of entry
	ProductID   string          `json:"productId"`  // product id or PaymentProductID
	ProductName string          `json:"productName"`
	Amount      decimal.Decimal `json:"amount"`
	Date        time.Time       `json:"date"`
	DueDate     time.Time       `json:"dueDate"` // fixed at creation, never recomputed
	IsPaid      bool            `json:"isPaid"`
}

// IsPayment reports whether the entry records a settlement.
func (t Transaction) IsPayment() bool {
	return t.ProductID == PaymentProductID
}

// Product is a catalog item offered at the point of sale.
type Product struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
	Icon  string          `json:"icon"`
}

// Settings is the per-store singleton configuration edited by the owner.
type Settings struct {
	PixKey         string `json:"pixKey"`
	OwnerName      string `json:"ownerName"`
	InstantMessage bool   `json:"instantMessage"` // true: message on every sale; false: bill at cycle close
	CustomGreeting string `json:"customGreeting"` // may contain the {client} placeholder
}

// DefaultSettings returns the values used when no settings were ever saved.
func DefaultSettings() Settings {
	return Settings{
		PixKey:         "",
		OwnerName:      "Admin",
		InstantMessage: true,
		CustomGreeting: "",
	}
}

// DefaultProducts is the starter catalog written on first access.
func DefaultProducts() []Product {
	return []Product{
		{ID: "p1", Name: "Chocolate Premium", Price: decimal.RequireFromString("12.50"), Icon: "candy"},
		{ID: "p2", Name: "Café Expresso", Price: decimal.RequireFromString("6.00"), Icon: "coffee"},
		{ID: "p3", Name: "Trufa Artesanal", Price: decimal.RequireFromString("8.00"), Icon: "cookie"},
		{ID: "p4", Name: "Gelato Italiano", Price: decimal.RequireFromString("18.00"), Icon: "ice-cream"},
		{ID: "p5", Name: "Sanduíche Natural", Price: decimal.RequireFromString("15.00"), Icon: "sandwich"},
		{ID: "p6", Name: "Refrigerante Lata", Price: decimal.RequireFromString("5.00"), Icon: "wine"},
	}
}

// ProductIcons lists the symbolic icon tags the point of sale can display.
var ProductIcons = []string{
	"candy", "coffee", "cookie", "ice-cream", "sandwich", "wine",
	"beer", "cake", "pizza", "utensils", "zap",
}

// DefaultProductIcon is used when a product is saved without a known icon.
const DefaultProductIcon = "coffee"

// CartItem is one line of a sale as shown in the sale notification.
type CartItem struct {
	Name  string          `json:"name"`
	Qty   int             `json:"qty"`
	Price decimal.Decimal `json:"price"`
}

// LineTotal returns Price × Qty.
func (c CartItem) LineTotal() decimal.Decimal {
	return c.Price.Mul(decimal.NewFromInt(int64(c.Qty)))
}
