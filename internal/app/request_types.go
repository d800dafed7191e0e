package app

// ClientFilter narrows ListClients.
type ClientFilter struct {
	Search   string // case-insensitive substring of the client name
	DebtOnly bool   // only clients with a positive balance
}

// RegisterClientRequest is the input for registering a new client.
type RegisterClientRequest struct {
	Name  string
	Phone string
}

// SaveProductRequest is the input for creating or updating a catalog item.
type SaveProductRequest struct {
	ID    string // empty means "new product"
	Name  string
	Price string // operator-typed amount, see core.ParseAmount
	Icon  string // empty or unknown means core.DefaultProductIcon
}

// SaleRequest is a point-of-sale checkout.
type SaleRequest struct {
	ClientID string
	Items    []SaleItemInput
}

// SaleItemInput is one cart line. Lines for the same product are merged.
type SaleItemInput struct {
	ProductID string
	Qty       int
}
