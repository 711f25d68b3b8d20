package service

import (
	"context"
	"fmt"

	"github.com/Eursukkul/ticket-marketplace/internal/access"
	"github.com/Eursukkul/ticket-marketplace/internal/events"
	"github.com/Eursukkul/ticket-marketplace/internal/models"
	"github.com/shopspring/decimal"
)

// Settlement is the outcome of an accepted bid.
type Settlement struct {
	CollectionID uint
	TicketID     uint64
	Seller       models.Address
	Buyer        models.Address
	Creator      models.Address
	Amount       decimal.Decimal
	Fee          decimal.Decimal
	SellerAmount decimal.Decimal
	HolderName   string
}

// AuctionService keeps the highest escrowed bid per listed ticket and
// settles or refunds it.
type AuctionService interface {
	SubmitBid(ctx context.Context, bidder models.Address, collectionID uint, ticketID uint64, amount decimal.Decimal, holderName string) (*models.Bid, error)
	GetHighestBid(ctx context.Context, collectionID uint, ticketID uint64) (decimal.Decimal, error)
	GetHighestBidder(ctx context.Context, collectionID uint, ticketID uint64) (models.Address, error)
	EscrowOf(ctx context.Context, collectionID uint, ticketID uint64) (decimal.Decimal, error)
	AcceptBid(ctx context.Context, caller models.Address, collectionID uint, ticketID uint64) (*Settlement, error)
}

type auctionService struct {
	*runner
	ledger     *ledgerService
	escrow     *escrow
	custodian  access.Credential
	feePercent int64
}

func (s *auctionService) SubmitBid(ctx context.Context, bidder models.Address, collectionID uint, ticketID uint64, amount decimal.Decimal, holderName string) (*models.Bid, error) {
	var result *models.Bid

	err := s.run(ctx, "SubmitBid", ticketLockKey(collectionID, ticketID), func(ctx context.Context) error {
		if bidder.IsNull() {
			return ErrNullAddress
		}
		if !validAmount(amount) {
			return ErrInvalidAmount
		}
		listing, err := findListing(ctx, s.ledger.repos.Listings, collectionID, ticketID, true)
		if err != nil {
			return err
		}
		if listing == nil {
			return ErrNotForSale
		}
		collection, err := s.ledger.collection(ctx, collectionID)
		if err != nil {
			return err
		}
		ticket, err := s.ledger.ticket(ctx, collectionID, ticketID, true)
		if err != nil {
			return err
		}
		now := s.ledger.clock.Now()
		if ticket.ExpiredOrUsed(now) {
			return ErrTicketInvalid
		}
		if bidder == listing.Seller || bidder == ticket.Owner {
			return ErrSelfBid
		}
		prior, err := findBid(ctx, s.ledger.repos.Bids, collectionID, ticketID, true)
		if err != nil {
			return err
		}
		highest := decimal.Zero
		if prior != nil {
			highest = prior.Amount
		}
		if !amount.GreaterThan(highest) {
			return ErrBidTooLow
		}

		// Pull the new bid before refunding the old one: if the bidder
		// cannot pay, nothing has moved.
		if err := s.escrow.hold(ctx, collection, bidder, amount); err != nil {
			return err
		}
		payload := events.BidSubmitted{
			Token:          collection.PaymentToken,
			Bidder:         bidder,
			Amount:         amount,
			HolderName:     holderName,
			RefundedAmount: decimal.Zero,
		}
		if prior != nil {
			if err := s.escrow.release(ctx, collection, prior.Bidder, prior.Amount); err != nil {
				return err
			}
			payload.RefundedBidder = prior.Bidder
			payload.RefundedAmount = prior.Amount
		}

		bid := &models.Bid{
			CollectionID: collectionID,
			TicketID:     ticketID,
			Bidder:       bidder,
			Amount:       amount,
			HolderName:   holderName,
			CreatedAt:    now,
		}
		if err := s.ledger.repos.Bids.Save(ctx, bid); err != nil {
			return fmt.Errorf("save bid: %w", err)
		}

		events.Emit(ctx, events.New(events.TypeBidSubmitted, collectionID, ticketID, now, payload))
		result = bid
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *auctionService) GetHighestBid(ctx context.Context, collectionID uint, ticketID uint64) (decimal.Decimal, error) {
	bid, err := findBid(ctx, s.ledger.repos.Bids, collectionID, ticketID, false)
	if err != nil || bid == nil {
		return decimal.Zero, err
	}
	return bid.Amount, nil
}

func (s *auctionService) GetHighestBidder(ctx context.Context, collectionID uint, ticketID uint64) (models.Address, error) {
	bid, err := findBid(ctx, s.ledger.repos.Bids, collectionID, ticketID, false)
	if err != nil || bid == nil {
		return models.NullAddress, err
	}
	return bid.Bidder, nil
}

// EscrowOf is the amount held for the ticket; it always equals the
// outstanding bid.
func (s *auctionService) EscrowOf(ctx context.Context, collectionID uint, ticketID uint64) (decimal.Decimal, error) {
	return s.GetHighestBid(ctx, collectionID, ticketID)
}

func (s *auctionService) AcceptBid(ctx context.Context, caller models.Address, collectionID uint, ticketID uint64) (*Settlement, error) {
	var result *Settlement

	err := s.run(ctx, "AcceptBid", ticketLockKey(collectionID, ticketID), func(ctx context.Context) error {
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
		bid, err := findBid(ctx, s.ledger.repos.Bids, collectionID, ticketID, true)
		if err != nil {
			return err
		}
		if bid == nil {
			return ErrNoBids
		}
		collection, err := s.ledger.collection(ctx, collectionID)
		if err != nil {
			return err
		}
		ticket, err := s.ledger.ticket(ctx, collectionID, ticketID, true)
		if err != nil {
			return err
		}
		if ticket.ExpiredOrUsed(s.ledger.clock.Now()) {
			return ErrTicketInvalid
		}

		settlement := s.settle(collection, listing, bid)
		custody := s.escrow.custody

		if err := s.ledger.custodyHolderName(ctx, s.custodian, collectionID, ticketID, bid.HolderName); err != nil {
			return fmt.Errorf("set holder name: %w", err)
		}
		if err := s.ledger.custodyTransfer(ctx, s.custodian, collectionID, custody, bid.Bidder, ticketID); err != nil {
			return fmt.Errorf("deliver ticket: %w", err)
		}
		if err := s.ledger.repos.Listings.Delete(ctx, collectionID, ticketID); err != nil {
			return fmt.Errorf("delete listing: %w", err)
		}
		if err := s.ledger.repos.Bids.Delete(ctx, collectionID, ticketID); err != nil {
			return fmt.Errorf("delete bid: %w", err)
		}
		if err := s.escrow.release(ctx, collection, settlement.Seller, settlement.SellerAmount); err != nil {
			return fmt.Errorf("pay seller: %w", err)
		}
		if err := s.escrow.release(ctx, collection, settlement.Creator, settlement.Fee); err != nil {
			return fmt.Errorf("pay fee: %w", err)
		}

		events.Emit(ctx, events.New(events.TypeBidAccepted, collectionID, ticketID, s.ledger.clock.Now(), events.BidAccepted{
			Token:        collection.PaymentToken,
			Seller:       settlement.Seller,
			Buyer:        settlement.Buyer,
			Creator:      settlement.Creator,
			Amount:       settlement.Amount,
			Fee:          settlement.Fee,
			SellerAmount: settlement.SellerAmount,
			HolderName:   settlement.HolderName,
		}))
		result = settlement
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// settle splits the bid: fee = floor(amount * feePercent / 100), the rest
// goes to the seller.
func (s *auctionService) settle(collection *models.Collection, listing *models.Listing, bid *models.Bid) *Settlement {
	fee := Fee(bid.Amount, s.feePercent)
	return &Settlement{
		CollectionID: collection.ID,
		TicketID:     listing.TicketID,
		Seller:       listing.Seller,
		Buyer:        bid.Bidder,
		Creator:      collection.Creator,
		Amount:       bid.Amount,
		Fee:          fee,
		SellerAmount: bid.Amount.Sub(fee),
		HolderName:   bid.HolderName,
	}
}

func Fee(amount decimal.Decimal, percent int64) decimal.Decimal {
	return amount.Mul(decimal.NewFromInt(percent)).Div(decimal.NewFromInt(100)).Floor()
}
