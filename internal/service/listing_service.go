package service

import (
	"context"
	"fmt"

	"github.com/Eursukkul/ticket-marketplace/internal/access"
	"github.com/Eursukkul/ticket-marketplace/internal/events"
	"github.com/Eursukkul/ticket-marketplace/internal/models"
	"github.com/shopspring/decimal"
)

// ListingService tracks tickets held in marketplace custody for resale.
type ListingService interface {
	ListTicket(ctx context.Context, caller models.Address, collectionID uint, ticketID uint64, price decimal.Decimal) (*models.Listing, error)
	DelistTicket(ctx context.Context, caller models.Address, collectionID uint, ticketID uint64) error
	GetListing(ctx context.Context, collectionID uint, ticketID uint64) (*models.Listing, error)
	ListActive(ctx context.Context, collectionID uint) ([]models.Listing, error)
}

type listingService struct {
	*runner
	ledger    *ledgerService
	escrow    *escrow
	custodian access.Credential
}

func (s *listingService) ListTicket(ctx context.Context, caller models.Address, collectionID uint, ticketID uint64, price decimal.Decimal) (*models.Listing, error) {
	var result *models.Listing

	err := s.run(ctx, "ListTicket", ticketLockKey(collectionID, ticketID), func(ctx context.Context) error {
		if !validAmount(price) {
			return ErrInvalidPrice
		}
		ticket, err := s.ledger.ticket(ctx, collectionID, ticketID, true)
		if err != nil {
			return err
		}
		existing, err := findListing(ctx, s.ledger.repos.Listings, collectionID, ticketID, true)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrAlreadyListed
		}
		if caller.IsNull() || ticket.Owner != caller {
			return ErrNotOwner
		}
		now := s.ledger.clock.Now()
		if ticket.ExpiredOrUsed(now) {
			return ErrTicketInvalid
		}

		if err := s.ledger.custodyTransfer(ctx, s.custodian, collectionID, caller, s.escrow.custody, ticketID); err != nil {
			return fmt.Errorf("move ticket into custody: %w", err)
		}
		listing := &models.Listing{
			CollectionID: collectionID,
			TicketID:     ticketID,
			Seller:       caller,
			Price:        price,
			Active:       true,
			CreatedAt:    now,
		}
		if err := s.ledger.repos.Listings.Create(ctx, listing); err != nil {
			return fmt.Errorf("create listing: %w", err)
		}

		events.Emit(ctx, events.New(events.TypeListing, collectionID, ticketID, now,
			events.Listing{Seller: caller, Price: price}))
		result = listing
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// DelistTicket hands the ticket back to its seller and refunds any bid.
func (s *listingService) DelistTicket(ctx context.Context, caller models.Address, collectionID uint, ticketID uint64) error {
	return s.run(ctx, "DelistTicket", ticketLockKey(collectionID, ticketID), func(ctx context.Context) error {
		listing, err := findListing(ctx, s.ledger.repos.Listings, collectionID, ticketID, true)
		if err != nil {
			return err
		}
		if listing == nil {
			return ErrNotListed
		}
		if listing.Seller != caller {
			return ErrNotSeller
		}
		collection, err := s.ledger.collection(ctx, collectionID)
		if err != nil {
			return err
		}
		bid, err := findBid(ctx, s.ledger.repos.Bids, collectionID, ticketID, true)
		if err != nil {
			return err
		}

		custody := s.escrow.custody
		if err := s.ledger.custodyTransfer(ctx, s.custodian, collectionID, custody, listing.Seller, ticketID); err != nil {
			return fmt.Errorf("return ticket to seller: %w", err)
		}
		if err := s.ledger.repos.Listings.Delete(ctx, collectionID, ticketID); err != nil {
			return fmt.Errorf("delete listing: %w", err)
		}

		payload := events.Delisting{Token: collection.PaymentToken, Seller: listing.Seller, RefundedAmount: decimal.Zero}
		if bid != nil {
			if err := s.ledger.repos.Bids.Delete(ctx, collectionID, ticketID); err != nil {
				return fmt.Errorf("delete bid: %w", err)
			}
			if err := s.escrow.release(ctx, collection, bid.Bidder, bid.Amount); err != nil {
				return err
			}
			payload.RefundedBidder = bid.Bidder
			payload.RefundedAmount = bid.Amount
		}

		events.Emit(ctx, events.New(events.TypeDelisting, collectionID, ticketID, s.ledger.clock.Now(), payload))
		return nil
	})
}

func (s *listingService) GetListing(ctx context.Context, collectionID uint, ticketID uint64) (*models.Listing, error) {
	if _, err := s.ledger.collection(ctx, collectionID); err != nil {
		return nil, err
	}
	listing, err := findListing(ctx, s.ledger.repos.Listings, collectionID, ticketID, false)
	if err != nil {
		return nil, err
	}
	if listing == nil {
		return nil, ErrNotListed
	}
	return listing, nil
}

func (s *listingService) ListActive(ctx context.Context, collectionID uint) ([]models.Listing, error) {
	if _, err := s.ledger.collection(ctx, collectionID); err != nil {
		return nil, err
	}
	return s.ledger.repos.Listings.FindActiveByCollection(ctx, collectionID)
}
