// Package payment is the fungible-token side of the marketplace: the narrow
// ledger contract the marketplace consumes, and a store-backed implementation
// of it.
package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/Eursukkul/ticket-marketplace/internal/models"
	"github.com/shopspring/decimal"
)

var (
	ErrInsufficientFunds     = errors.New("insufficient funds")
	ErrInsufficientBalance   = fmt.Errorf("%w: balance too low", ErrInsufficientFunds)
	ErrInsufficientAllowance = fmt.Errorf("%w: allowance too low", ErrInsufficientFunds)
	ErrInvalidAmount         = errors.New("amount must be a non-negative integer")
	ErrNullAccount           = errors.New("null account")
)

// Ledger is an account-based token ledger as seen by one operator account.
// Both transfers either move the whole amount or fail without effect.
type Ledger interface {
	// Transfer moves amount from the operator's own balance to to.
	Transfer(ctx context.Context, to models.Address, amount decimal.Decimal) error
	// TransferFrom moves amount from from to to, spending the allowance
	// from granted to the operator.
	TransferFrom(ctx context.Context, from, to models.Address, amount decimal.Decimal) error
	BalanceOf(ctx context.Context, account models.Address) (decimal.Decimal, error)
}

// Directory resolves the ledger of a token for an operator.
type Directory interface {
	Ledger(token string, operator models.Address) Ledger
}
