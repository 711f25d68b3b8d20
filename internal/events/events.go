// Package events defines the observable marketplace events and buffers them
// until the transaction that produced them commits.
package events

import (
	"context"
	"sync"
	"time"

	"github.com/Eursukkul/ticket-marketplace/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	TypeTransfer          = "ticket.transfer"
	TypeApproval          = "ticket.approval"
	TypeUsed              = "ticket.used"
	TypeHolderName        = "ticket.holder_name"
	TypeListing           = "market.listing"
	TypeDelisting         = "market.delisting"
	TypeBidSubmitted      = "market.bid_submitted"
	TypeBidAccepted       = "market.bid_accepted"
	TypeCollectionCreated = "collection.created"
)

// Event is the envelope published for every state change.
type Event struct {
	ID           string    `json:"id"`
	Type         string    `json:"type"`
	CollectionID uint      `json:"collection_id"`
	TicketID     uint64    `json:"ticket_id,omitempty"`
	OccurredAt   time.Time `json:"occurred_at"`
	Payload      any       `json:"payload"`
}

type Transfer struct {
	From models.Address `json:"from"`
	To   models.Address `json:"to"`
}

type Approval struct {
	Owner    models.Address `json:"owner"`
	Approved models.Address `json:"approved"`
}

type Used struct {
	Admin models.Address `json:"admin"`
}

type HolderName struct {
	Holder models.Address `json:"holder"`
	Name   string         `json:"name"`
}

type Listing struct {
	Seller models.Address  `json:"seller"`
	Price  decimal.Decimal `json:"price"`
}

type Delisting struct {
	Token          string          `json:"token"`
	Seller         models.Address  `json:"seller"`
	RefundedBidder models.Address  `json:"refunded_bidder,omitempty"`
	RefundedAmount decimal.Decimal `json:"refunded_amount"`
}

type BidSubmitted struct {
	Token          string          `json:"token"`
	Bidder         models.Address  `json:"bidder"`
	Amount         decimal.Decimal `json:"amount"`
	HolderName     string          `json:"holder_name"`
	RefundedBidder models.Address  `json:"refunded_bidder,omitempty"`
	RefundedAmount decimal.Decimal `json:"refunded_amount"`
}

type BidAccepted struct {
	Token        string          `json:"token"`
	Seller       models.Address  `json:"seller"`
	Buyer        models.Address  `json:"buyer"`
	Creator      models.Address  `json:"creator"`
	Amount       decimal.Decimal `json:"amount"`
	Fee          decimal.Decimal `json:"fee"`
	SellerAmount decimal.Decimal `json:"seller_amount"`
	HolderName   string          `json:"holder_name"`
}

type CollectionCreated struct {
	Name       string          `json:"name"`
	Creator    models.Address  `json:"creator"`
	MaxTickets uint64          `json:"max_tickets"`
	Price      decimal.Decimal `json:"price"`
	Token      string          `json:"payment_token"`
}

func New(typ string, collectionID uint, ticketID uint64, at time.Time, payload any) Event {
	return Event{
		ID:           uuid.NewString(),
		Type:         typ,
		CollectionID: collectionID,
		TicketID:     ticketID,
		OccurredAt:   at,
		Payload:      payload,
	}
}

// Batch collects the events of one in-flight operation.
type Batch struct {
	mu     sync.Mutex
	events []Event
}

func (b *Batch) Add(e Event) {
	b.mu.Lock()
	b.events = append(b.events, e)
	b.mu.Unlock()
}

func (b *Batch) Events() []Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Event, len(b.events))
	copy(out, b.events)
	return out
}

type batchKey struct{}

// WithBatch attaches a new batch to ctx.
func WithBatch(ctx context.Context) (context.Context, *Batch) {
	b := &Batch{}
	return context.WithValue(ctx, batchKey{}, b), b
}

// FromContext returns the batch of the operation running in ctx, if any.
func FromContext(ctx context.Context) *Batch {
	b, _ := ctx.Value(batchKey{}).(*Batch)
	return b
}

// Emit records e on the batch in ctx. Without a batch the event is dropped.
func Emit(ctx context.Context, e Event) {
	if b := FromContext(ctx); b != nil {
		b.Add(e)
	}
}
