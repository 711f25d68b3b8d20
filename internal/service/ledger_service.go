package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Eursukkul/ticket-marketplace/internal/access"
	"github.com/Eursukkul/ticket-marketplace/internal/clock"
	"github.com/Eursukkul/ticket-marketplace/internal/events"
	"github.com/Eursukkul/ticket-marketplace/internal/models"
	"github.com/Eursukkul/ticket-marketplace/internal/repository"
)

// LedgerService owns ticket identity, holders, approvals and validity.
type LedgerService interface {
	Mint(ctx context.Context, minter access.Credential, collectionID uint, holder models.Address, holderName string) (uint64, error)
	HolderOf(ctx context.Context, collectionID uint, ticketID uint64) (models.Address, error)
	BalanceOf(ctx context.Context, collectionID uint, owner models.Address) (int64, error)
	TransferFrom(ctx context.Context, caller models.Address, collectionID uint, from, to models.Address, ticketID uint64) error
	Approve(ctx context.Context, caller models.Address, collectionID uint, to models.Address, ticketID uint64) error
	GetApproved(ctx context.Context, collectionID uint, ticketID uint64) (models.Address, error)
	UpdateHolderName(ctx context.Context, caller models.Address, collectionID uint, ticketID uint64, name string) error
	SetUsed(ctx context.Context, caller models.Address, collectionID uint, ticketID uint64) error
	IsExpiredOrUsed(ctx context.Context, collectionID uint, ticketID uint64) (bool, error)
	GetTicket(ctx context.Context, collectionID uint, ticketID uint64) (*models.Ticket, error)
}

// Repositories groups the stores the services work on. Every repository must
// honour the transaction carried by the context of Tx.
type Repositories struct {
	Tx          repository.TxManager
	Collections repository.CollectionRepository
	Tickets     repository.TicketRepository
	Listings    repository.ListingRepository
	Bids        repository.BidRepository
}

type ledgerService struct {
	*runner
	repos   Repositories
	clock   clock.Clock
	custody models.Address
}

func newLedgerService(repos Repositories, clk clock.Clock, r *runner, custody models.Address) *ledgerService {
	return &ledgerService{runner: r, repos: repos, clock: clk, custody: custody}
}

// NewLedgerService returns a ledger without a marketplace custody account.
func NewLedgerService(repos Repositories, clk clock.Clock, opts ...Option) LedgerService {
	return newLedgerService(repos, clk, newRunner(repos.Tx, buildOptions(opts)), models.NullAddress)
}

func (s *ledgerService) Mint(ctx context.Context, minter access.Credential, collectionID uint, holder models.Address, holderName string) (uint64, error) {
	var ticketID uint64

	err := s.run(ctx, "Mint", collectionLockKey(collectionID), func(ctx context.Context) error {
		collection, err := s.collectionForUpdate(ctx, collectionID)
		if err != nil {
			return err
		}
		if err := minter.Present(access.CollectionPolicy(collection), access.RoleMinter); err != nil {
			return fmt.Errorf("%w: %v", ErrNotMinter, err)
		}
		if holder.IsNull() {
			return ErrNullAddress
		}
		if collection.SoldOut() {
			return ErrSoldOut
		}

		now := s.clock.Now()
		window := collection.ValidityWindow
		if window <= 0 {
			window = models.DefaultValidityWindow
		}
		ticket := &models.Ticket{
			CollectionID: collectionID,
			TicketID:     collection.TicketsSold + 1,
			Owner:        holder,
			HolderName:   holderName,
			ValidUntil:   now.Add(window),
			MintedAt:     now,
		}
		if err := s.repos.Tickets.Create(ctx, ticket); err != nil {
			return fmt.Errorf("create ticket: %w", err)
		}
		if err := s.repos.Collections.UpdateTicketsSold(ctx, collectionID, ticket.TicketID); err != nil {
			return fmt.Errorf("update tickets sold: %w", err)
		}

		events.Emit(ctx, events.New(events.TypeTransfer, collectionID, ticket.TicketID, now,
			events.Transfer{From: models.NullAddress, To: holder}))
		ticketID = ticket.TicketID
		return nil
	})
	if err != nil {
		return 0, err
	}
	return ticketID, nil
}

func (s *ledgerService) HolderOf(ctx context.Context, collectionID uint, ticketID uint64) (models.Address, error) {
	ticket, err := s.ticket(ctx, collectionID, ticketID, false)
	if err != nil {
		return models.NullAddress, err
	}
	return ticket.Owner, nil
}

func (s *ledgerService) BalanceOf(ctx context.Context, collectionID uint, owner models.Address) (int64, error) {
	if owner.IsNull() {
		return 0, ErrNullAddress
	}
	if _, err := s.collection(ctx, collectionID); err != nil {
		return 0, err
	}
	return s.repos.Tickets.CountByOwner(ctx, collectionID, owner)
}

func (s *ledgerService) TransferFrom(ctx context.Context, caller models.Address, collectionID uint, from, to models.Address, ticketID uint64) error {
	return s.run(ctx, "TransferFrom", ticketLockKey(collectionID, ticketID), func(ctx context.Context) error {
		if from.IsNull() || to.IsNull() {
			return ErrNullAddress
		}
		if s.isCustody(caller) || s.isCustody(from) || s.isCustody(to) {
			return ErrCustodyHeld
		}
		ticket, err := s.ticket(ctx, collectionID, ticketID, true)
		if err != nil {
			return err
		}
		if ticket.Owner != from {
			return ErrNotOwner
		}
		if caller != from && (ticket.Approved.IsNull() || caller != ticket.Approved) {
			return ErrNotApproved
		}
		return s.transfer(ctx, ticket, from, to)
	})
}

// custodyTransfer moves a ticket into or out of marketplace custody. Only
// the listing book and the auction engine hold a custodian credential.
func (s *ledgerService) custodyTransfer(ctx context.Context, custodian access.Credential, collectionID uint, from, to models.Address, ticketID uint64) error {
	return s.run(ctx, "CustodyTransfer", ticketLockKey(collectionID, ticketID), func(ctx context.Context) error {
		if err := s.presentCustodian(custodian); err != nil {
			return err
		}
		if from.IsNull() || to.IsNull() {
			return ErrNullAddress
		}
		if from != s.custody && to != s.custody {
			return ErrNotCustodian
		}
		ticket, err := s.ticket(ctx, collectionID, ticketID, true)
		if err != nil {
			return err
		}
		if ticket.Owner != from {
			return ErrNotOwner
		}
		return s.transfer(ctx, ticket, from, to)
	})
}

func (s *ledgerService) transfer(ctx context.Context, ticket *models.Ticket, from, to models.Address) error {
	ticket.Owner = to
	ticket.Approved = models.NullAddress
	if err := s.repos.Tickets.Save(ctx, ticket); err != nil {
		return fmt.Errorf("save ticket: %w", err)
	}

	now := s.clock.Now()
	events.Emit(ctx, events.New(events.TypeTransfer, ticket.CollectionID, ticket.TicketID, now,
		events.Transfer{From: from, To: to}))
	events.Emit(ctx, events.New(events.TypeApproval, ticket.CollectionID, ticket.TicketID, now,
		events.Approval{Owner: from, Approved: models.NullAddress}))
	return nil
}

func (s *ledgerService) Approve(ctx context.Context, caller models.Address, collectionID uint, to models.Address, ticketID uint64) error {
	return s.run(ctx, "Approve", ticketLockKey(collectionID, ticketID), func(ctx context.Context) error {
		if s.isCustody(caller) || s.isCustody(to) {
			return ErrCustodyHeld
		}
		ticket, err := s.ticket(ctx, collectionID, ticketID, true)
		if err != nil {
			return err
		}
		if caller.IsNull() || ticket.Owner != caller {
			return ErrNotOwner
		}
		if to == ticket.Owner {
			return ErrSelfApproval
		}

		ticket.Approved = to
		if err := s.repos.Tickets.Save(ctx, ticket); err != nil {
			return fmt.Errorf("save ticket: %w", err)
		}
		events.Emit(ctx, events.New(events.TypeApproval, collectionID, ticketID, s.clock.Now(),
			events.Approval{Owner: caller, Approved: to}))
		return nil
	})
}

func (s *ledgerService) GetApproved(ctx context.Context, collectionID uint, ticketID uint64) (models.Address, error) {
	ticket, err := s.ticket(ctx, collectionID, ticketID, false)
	if err != nil {
		return models.NullAddress, err
	}
	return ticket.Approved, nil
}

func (s *ledgerService) UpdateHolderName(ctx context.Context, caller models.Address, collectionID uint, ticketID uint64, name string) error {
	return s.run(ctx, "UpdateHolderName", ticketLockKey(collectionID, ticketID), func(ctx context.Context) error {
		if s.isCustody(caller) {
			return ErrCustodyHeld
		}
		return s.setHolderName(ctx, caller, collectionID, ticketID, name)
	})
}

// custodyHolderName renames the holder of a ticket sitting in custody, ahead
// of delivering it to a winning bidder.
func (s *ledgerService) custodyHolderName(ctx context.Context, custodian access.Credential, collectionID uint, ticketID uint64, name string) error {
	return s.run(ctx, "CustodyHolderName", ticketLockKey(collectionID, ticketID), func(ctx context.Context) error {
		if err := s.presentCustodian(custodian); err != nil {
			return err
		}
		return s.setHolderName(ctx, s.custody, collectionID, ticketID, name)
	})
}

func (s *ledgerService) setHolderName(ctx context.Context, holder models.Address, collectionID uint, ticketID uint64, name string) error {
	ticket, err := s.ticket(ctx, collectionID, ticketID, true)
	if err != nil {
		return err
	}
	if holder.IsNull() || ticket.Owner != holder {
		return ErrNotOwner
	}

	ticket.HolderName = name
	if err := s.repos.Tickets.Save(ctx, ticket); err != nil {
		return fmt.Errorf("save ticket: %w", err)
	}
	events.Emit(ctx, events.New(events.TypeHolderName, collectionID, ticketID, s.clock.Now(),
		events.HolderName{Holder: holder, Name: name}))
	return nil
}

func (s *ledgerService) SetUsed(ctx context.Context, caller models.Address, collectionID uint, ticketID uint64) error {
	return s.run(ctx, "SetUsed", ticketLockKey(collectionID, ticketID), func(ctx context.Context) error {
		collection, err := s.collection(ctx, collectionID)
		if err != nil {
			return err
		}
		if err := access.CollectionPolicy(collection).Require(access.RoleAdmin, caller); err != nil {
			return ErrNotAdmin
		}
		ticket, err := s.ticket(ctx, collectionID, ticketID, true)
		if err != nil {
			return err
		}

		now := s.clock.Now()
		if ticket.Used {
			return ErrAlreadyUsed
		}
		if now.After(ticket.ValidUntil) {
			return ErrExpired
		}

		ticket.Used = true
		if err := s.repos.Tickets.Save(ctx, ticket); err != nil {
			return fmt.Errorf("save ticket: %w", err)
		}
		events.Emit(ctx, events.New(events.TypeUsed, collectionID, ticketID, now,
			events.Used{Admin: caller}))
		return nil
	})
}

func (s *ledgerService) IsExpiredOrUsed(ctx context.Context, collectionID uint, ticketID uint64) (bool, error) {
	ticket, err := s.ticket(ctx, collectionID, ticketID, false)
	if err != nil {
		return false, err
	}
	return ticket.ExpiredOrUsed(s.clock.Now()), nil
}

func (s *ledgerService) GetTicket(ctx context.Context, collectionID uint, ticketID uint64) (*models.Ticket, error) {
	return s.ticket(ctx, collectionID, ticketID, false)
}

func (s *ledgerService) isCustody(addr models.Address) bool {
	return !s.custody.IsNull() && addr == s.custody
}

func (s *ledgerService) presentCustodian(custodian access.Credential) error {
	if err := custodian.Present(access.CustodyPolicy(s.custody), access.RoleCustody); err != nil {
		return fmt.Errorf("%w: %v", ErrNotCustodian, err)
	}
	return nil
}

func (s *ledgerService) collection(ctx context.Context, collectionID uint) (*models.Collection, error) {
	collection, err := s.repos.Collections.FindByID(ctx, collectionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCollectionNotFound
		}
		return nil, fmt.Errorf("find collection %d: %w", collectionID, err)
	}
	return collection, nil
}

func (s *ledgerService) collectionForUpdate(ctx context.Context, collectionID uint) (*models.Collection, error) {
	collection, err := s.repos.Collections.FindByIDForUpdate(ctx, collectionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCollectionNotFound
		}
		return nil, fmt.Errorf("lock collection %d: %w", collectionID, err)
	}
	return collection, nil
}

// ticket loads a minted ticket. IDs outside 1..MaxTickets are NotFound even
// before they are looked up.
func (s *ledgerService) ticket(ctx context.Context, collectionID uint, ticketID uint64, forUpdate bool) (*models.Ticket, error) {
	collection, err := s.collection(ctx, collectionID)
	if err != nil {
		return nil, err
	}
	if !collection.InRange(ticketID) {
		return nil, ErrTicketNotFound
	}

	var ticket *models.Ticket
	if forUpdate {
		ticket, err = s.repos.Tickets.FindForUpdate(ctx, collectionID, ticketID)
	} else {
		ticket, err = s.repos.Tickets.Find(ctx, collectionID, ticketID)
	}
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTicketNotFound
		}
		return nil, fmt.Errorf("find ticket %d/%d: %w", collectionID, ticketID, err)
	}
	return ticket, nil
}
