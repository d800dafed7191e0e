package core

import "errors"

var (
	// ErrInvalidAmount is returned by numeric parsing boundaries for malformed money text.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrInvalidInput marks a request rejected before reaching the ledger.
	ErrInvalidInput = errors.New("invalid input")

	ErrClientNotFound  = errors.New("client not found")
	ErrProductNotFound = errors.New("product not found")
	ErrEmptyCart       = errors.New("sale has no items")
)
