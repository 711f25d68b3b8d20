// Package memory is a process-local implementation of the repository
// interfaces. A single writer lock serializes transactions; each transaction
// works on live state and restores a snapshot if fn fails.
package memory

import (
	"context"
	"maps"
	"sync"

	"github.com/Eursukkul/ticket-marketplace/internal/models"
	"github.com/shopspring/decimal"
)

type ticketKey struct {
	collectionID uint
	ticketID     uint64
}

type balanceKey struct {
	token   string
	account models.Address
}

type allowanceKey struct {
	token   string
	owner   models.Address
	spender models.Address
}

type state struct {
	nextCollectionID uint
	collections      map[uint]models.Collection
	tickets          map[ticketKey]models.Ticket
	listings         map[ticketKey]models.Listing
	bids             map[ticketKey]models.Bid
	balances         map[balanceKey]decimal.Decimal
	allowances       map[allowanceKey]decimal.Decimal
}

func (s *state) clone() *state {
	return &state{
		nextCollectionID: s.nextCollectionID,
		collections:      maps.Clone(s.collections),
		tickets:          maps.Clone(s.tickets),
		listings:         maps.Clone(s.listings),
		bids:             maps.Clone(s.bids),
		balances:         maps.Clone(s.balances),
		allowances:       maps.Clone(s.allowances),
	}
}

type Store struct {
	mu   sync.Mutex
	data *state
}

func NewStore() *Store {
	return &Store{data: &state{
		nextCollectionID: 1,
		collections:      make(map[uint]models.Collection),
		tickets:          make(map[ticketKey]models.Ticket),
		listings:         make(map[ticketKey]models.Listing),
		bids:             make(map[ticketKey]models.Bid),
		balances:         make(map[balanceKey]decimal.Decimal),
		allowances:       make(map[allowanceKey]decimal.Decimal),
	}}
}

type txKey struct{}

func inTx(ctx context.Context) bool {
	held, _ := ctx.Value(txKey{}).(bool)
	return held
}

// WithTx holds the writer lock for the whole of fn.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if inTx(ctx) {
		return fn(ctx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.data.clone()
	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		s.data = snapshot
		return err
	}
	return nil
}

// view runs fn against the current state, taking the lock unless the caller
// already holds it through a transaction.
func (s *Store) view(ctx context.Context, fn func(d *state) error) error {
	if inTx(ctx) {
		return fn(s.data)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.data)
}

func (s *Store) Collections() *CollectionRepository { return &CollectionRepository{store: s} }
func (s *Store) Tickets() *TicketRepository         { return &TicketRepository{store: s} }
func (s *Store) Listings() *ListingRepository       { return &ListingRepository{store: s} }
func (s *Store) Bids() *BidRepository               { return &BidRepository{store: s} }
func (s *Store) Tokens() *TokenRepository           { return &TokenRepository{store: s} }
