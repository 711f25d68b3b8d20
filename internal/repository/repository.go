package repository

import (
	"context"
	"errors"

	"github.com/Eursukkul/ticket-marketplace/internal/models"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound = errors.New("record not found")
	ErrConflict = errors.New("record conflicts with stored one")
)

// TxManager runs fn inside a transaction carried by the context. Calls made
// with a context that already carries a transaction join it.
type TxManager interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type CollectionRepository interface {
	Create(ctx context.Context, collection *models.Collection) error
	// Register stores a collection under its own ID. Registering an ID that
	// already exists succeeds only when the terms match, and then loads the
	// stored record into collection; otherwise it returns ErrConflict.
	Register(ctx context.Context, collection *models.Collection) error
	FindByID(ctx context.Context, id uint) (*models.Collection, error)
	FindByIDForUpdate(ctx context.Context, id uint) (*models.Collection, error)
	FindAll(ctx context.Context) ([]models.Collection, error)
	UpdateTicketsSold(ctx context.Context, id uint, sold uint64) error
}

type TicketRepository interface {
	Create(ctx context.Context, ticket *models.Ticket) error
	Find(ctx context.Context, collectionID uint, ticketID uint64) (*models.Ticket, error)
	FindForUpdate(ctx context.Context, collectionID uint, ticketID uint64) (*models.Ticket, error)
	Save(ctx context.Context, ticket *models.Ticket) error
	CountByOwner(ctx context.Context, collectionID uint, owner models.Address) (int64, error)
}

type ListingRepository interface {
	Create(ctx context.Context, listing *models.Listing) error
	Find(ctx context.Context, collectionID uint, ticketID uint64) (*models.Listing, error)
	FindForUpdate(ctx context.Context, collectionID uint, ticketID uint64) (*models.Listing, error)
	FindActiveByCollection(ctx context.Context, collectionID uint) ([]models.Listing, error)
	Delete(ctx context.Context, collectionID uint, ticketID uint64) error
}

type BidRepository interface {
	Find(ctx context.Context, collectionID uint, ticketID uint64) (*models.Bid, error)
	FindForUpdate(ctx context.Context, collectionID uint, ticketID uint64) (*models.Bid, error)
	Save(ctx context.Context, bid *models.Bid) error
	Delete(ctx context.Context, collectionID uint, ticketID uint64) error
}

// TokenRepository stores balances and allowances of the payment ledger.
// Debit and SpendAllowance report false, without changing anything, when the
// stored amount is below the requested one.
type TokenRepository interface {
	Balance(ctx context.Context, token string, account models.Address) (decimal.Decimal, error)
	Credit(ctx context.Context, token string, account models.Address, amount decimal.Decimal) error
	Debit(ctx context.Context, token string, account models.Address, amount decimal.Decimal) (bool, error)
	Allowance(ctx context.Context, token string, owner, spender models.Address) (decimal.Decimal, error)
	SetAllowance(ctx context.Context, token string, owner, spender models.Address, amount decimal.Decimal) error
	SpendAllowance(ctx context.Context, token string, owner, spender models.Address, amount decimal.Decimal) (bool, error)
}
