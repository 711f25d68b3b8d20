package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Eursukkul/ticket-marketplace/internal/models"
	"github.com/Eursukkul/ticket-marketplace/internal/payment"
	"github.com/Eursukkul/ticket-marketplace/internal/repository"
	"github.com/shopspring/decimal"
)

// escrow moves bid funds in and out of the custody account on the
// collection's payment ledger.
type escrow struct {
	payments payment.Directory
	custody  models.Address
}

func (e *escrow) hold(ctx context.Context, collection *models.Collection, from models.Address, amount decimal.Decimal) error {
	ledger := e.payments.Ledger(collection.PaymentToken, e.custody)
	if err := ledger.TransferFrom(ctx, from, e.custody, amount); err != nil {
		return fmt.Errorf("escrow %s from %s: %w", amount, from, err)
	}
	return nil
}

func (e *escrow) release(ctx context.Context, collection *models.Collection, to models.Address, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return nil
	}
	ledger := e.payments.Ledger(collection.PaymentToken, e.custody)
	if err := ledger.Transfer(ctx, to, amount); err != nil {
		return fmt.Errorf("release %s to %s: %w", amount, to, err)
	}
	return nil
}

func validAmount(amount decimal.Decimal) bool {
	return amount.IsPositive() && amount.IsInteger()
}

func findListing(ctx context.Context, repo repository.ListingRepository, collectionID uint, ticketID uint64, forUpdate bool) (*models.Listing, error) {
	var (
		listing *models.Listing
		err     error
	)
	if forUpdate {
		listing, err = repo.FindForUpdate(ctx, collectionID, ticketID)
	} else {
		listing, err = repo.Find(ctx, collectionID, ticketID)
	}
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find listing %d/%d: %w", collectionID, ticketID, err)
	}
	return listing, nil
}

func findBid(ctx context.Context, repo repository.BidRepository, collectionID uint, ticketID uint64, forUpdate bool) (*models.Bid, error) {
	var (
		bid *models.Bid
		err error
	)
	if forUpdate {
		bid, err = repo.FindForUpdate(ctx, collectionID, ticketID)
	} else {
		bid, err = repo.Find(ctx, collectionID, ticketID)
	}
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find bid %d/%d: %w", collectionID, ticketID, err)
	}
	return bid, nil
}
