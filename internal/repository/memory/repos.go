package memory

import (
	"context"
	"slices"
	"time"

	"github.com/Eursukkul/ticket-marketplace/internal/models"
	"github.com/Eursukkul/ticket-marketplace/internal/repository"
	"github.com/shopspring/decimal"
)

type CollectionRepository struct{ store *Store }

func (r *CollectionRepository) Create(ctx context.Context, collection *models.Collection) error {
	return r.store.view(ctx, func(d *state) error {
		if collection.ID == 0 {
			collection.ID = d.nextCollectionID
		}
		if collection.ID >= d.nextCollectionID {
			d.nextCollectionID = collection.ID + 1
		}
		now := time.Now()
		collection.CreatedAt, collection.UpdatedAt = now, now
		d.collections[collection.ID] = *collection
		return nil
	})
}

func (r *CollectionRepository) Register(ctx context.Context, collection *models.Collection) error {
	return r.store.view(ctx, func(d *state) error {
		if existing, ok := d.collections[collection.ID]; ok {
			if !existing.SameTerms(collection) {
				return repository.ErrConflict
			}
			*collection = existing
			return nil
		}
		if collection.ID >= d.nextCollectionID {
			d.nextCollectionID = collection.ID + 1
		}
		now := time.Now()
		collection.CreatedAt, collection.UpdatedAt = now, now
		d.collections[collection.ID] = *collection
		return nil
	})
}

func (r *CollectionRepository) FindByID(ctx context.Context, id uint) (*models.Collection, error) {
	var out models.Collection
	err := r.store.view(ctx, func(d *state) error {
		c, ok := d.collections[id]
		if !ok {
			return repository.ErrNotFound
		}
		out = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *CollectionRepository) FindByIDForUpdate(ctx context.Context, id uint) (*models.Collection, error) {
	return r.FindByID(ctx, id)
}

func (r *CollectionRepository) FindAll(ctx context.Context) ([]models.Collection, error) {
	var out []models.Collection
	err := r.store.view(ctx, func(d *state) error {
		for _, c := range d.collections {
			out = append(out, c)
		}
		return nil
	})
	slices.SortFunc(out, func(a, b models.Collection) int { return int(a.ID) - int(b.ID) })
	return out, err
}

func (r *CollectionRepository) UpdateTicketsSold(ctx context.Context, id uint, sold uint64) error {
	return r.store.view(ctx, func(d *state) error {
		c, ok := d.collections[id]
		if !ok {
			return repository.ErrNotFound
		}
		c.TicketsSold = sold
		c.UpdatedAt = time.Now()
		d.collections[id] = c
		return nil
	})
}

type TicketRepository struct{ store *Store }

func (r *TicketRepository) Create(ctx context.Context, ticket *models.Ticket) error {
	return r.store.view(ctx, func(d *state) error {
		ticket.UpdatedAt = time.Now()
		d.tickets[ticketKey{ticket.CollectionID, ticket.TicketID}] = *ticket
		return nil
	})
}

func (r *TicketRepository) Find(ctx context.Context, collectionID uint, ticketID uint64) (*models.Ticket, error) {
	var out models.Ticket
	err := r.store.view(ctx, func(d *state) error {
		t, ok := d.tickets[ticketKey{collectionID, ticketID}]
		if !ok {
			return repository.ErrNotFound
		}
		out = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *TicketRepository) FindForUpdate(ctx context.Context, collectionID uint, ticketID uint64) (*models.Ticket, error) {
	return r.Find(ctx, collectionID, ticketID)
}

func (r *TicketRepository) Save(ctx context.Context, ticket *models.Ticket) error {
	return r.store.view(ctx, func(d *state) error {
		key := ticketKey{ticket.CollectionID, ticket.TicketID}
		if _, ok := d.tickets[key]; !ok {
			return repository.ErrNotFound
		}
		ticket.UpdatedAt = time.Now()
		d.tickets[key] = *ticket
		return nil
	})
}

func (r *TicketRepository) CountByOwner(ctx context.Context, collectionID uint, owner models.Address) (int64, error) {
	var count int64
	err := r.store.view(ctx, func(d *state) error {
		for key, t := range d.tickets {
			if key.collectionID == collectionID && t.Owner == owner {
				count++
			}
		}
		return nil
	})
	return count, err
}

type ListingRepository struct{ store *Store }

func (r *ListingRepository) Create(ctx context.Context, listing *models.Listing) error {
	return r.store.view(ctx, func(d *state) error {
		d.listings[ticketKey{listing.CollectionID, listing.TicketID}] = *listing
		return nil
	})
}

func (r *ListingRepository) Find(ctx context.Context, collectionID uint, ticketID uint64) (*models.Listing, error) {
	var out models.Listing
	err := r.store.view(ctx, func(d *state) error {
		l, ok := d.listings[ticketKey{collectionID, ticketID}]
		if !ok || !l.Active {
			return repository.ErrNotFound
		}
		out = l
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *ListingRepository) FindForUpdate(ctx context.Context, collectionID uint, ticketID uint64) (*models.Listing, error) {
	return r.Find(ctx, collectionID, ticketID)
}

func (r *ListingRepository) FindActiveByCollection(ctx context.Context, collectionID uint) ([]models.Listing, error) {
	var out []models.Listing
	err := r.store.view(ctx, func(d *state) error {
		for key, l := range d.listings {
			if key.collectionID == collectionID && l.Active {
				out = append(out, l)
			}
		}
		return nil
	})
	slices.SortFunc(out, func(a, b models.Listing) int {
		switch {
		case a.TicketID < b.TicketID:
			return -1
		case a.TicketID > b.TicketID:
			return 1
		}
		return 0
	})
	return out, err
}

func (r *ListingRepository) Delete(ctx context.Context, collectionID uint, ticketID uint64) error {
	return r.store.view(ctx, func(d *state) error {
		delete(d.listings, ticketKey{collectionID, ticketID})
		return nil
	})
}

type BidRepository struct{ store *Store }

func (r *BidRepository) Find(ctx context.Context, collectionID uint, ticketID uint64) (*models.Bid, error) {
	var out models.Bid
	err := r.store.view(ctx, func(d *state) error {
		b, ok := d.bids[ticketKey{collectionID, ticketID}]
		if !ok {
			return repository.ErrNotFound
		}
		out = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *BidRepository) FindForUpdate(ctx context.Context, collectionID uint, ticketID uint64) (*models.Bid, error) {
	return r.Find(ctx, collectionID, ticketID)
}

func (r *BidRepository) Save(ctx context.Context, bid *models.Bid) error {
	return r.store.view(ctx, func(d *state) error {
		d.bids[ticketKey{bid.CollectionID, bid.TicketID}] = *bid
		return nil
	})
}

func (r *BidRepository) Delete(ctx context.Context, collectionID uint, ticketID uint64) error {
	return r.store.view(ctx, func(d *state) error {
		delete(d.bids, ticketKey{collectionID, ticketID})
		return nil
	})
}

type TokenRepository struct{ store *Store }

func (r *TokenRepository) Balance(ctx context.Context, token string, account models.Address) (decimal.Decimal, error) {
	var out decimal.Decimal
	err := r.store.view(ctx, func(d *state) error {
		out = d.balances[balanceKey{token, account}]
		return nil
	})
	return out, err
}

func (r *TokenRepository) Credit(ctx context.Context, token string, account models.Address, amount decimal.Decimal) error {
	return r.store.view(ctx, func(d *state) error {
		key := balanceKey{token, account}
		d.balances[key] = d.balances[key].Add(amount)
		return nil
	})
}

func (r *TokenRepository) Debit(ctx context.Context, token string, account models.Address, amount decimal.Decimal) (bool, error) {
	ok := false
	err := r.store.view(ctx, func(d *state) error {
		key := balanceKey{token, account}
		if d.balances[key].LessThan(amount) {
			return nil
		}
		d.balances[key] = d.balances[key].Sub(amount)
		ok = true
		return nil
	})
	return ok, err
}

func (r *TokenRepository) Allowance(ctx context.Context, token string, owner, spender models.Address) (decimal.Decimal, error) {
	var out decimal.Decimal
	err := r.store.view(ctx, func(d *state) error {
		out = d.allowances[allowanceKey{token, owner, spender}]
		return nil
	})
	return out, err
}

func (r *TokenRepository) SetAllowance(ctx context.Context, token string, owner, spender models.Address, amount decimal.Decimal) error {
	return r.store.view(ctx, func(d *state) error {
		d.allowances[allowanceKey{token, owner, spender}] = amount
		return nil
	})
}

func (r *TokenRepository) SpendAllowance(ctx context.Context, token string, owner, spender models.Address, amount decimal.Decimal) (bool, error) {
	ok := false
	err := r.store.view(ctx, func(d *state) error {
		key := allowanceKey{token, owner, spender}
		if d.allowances[key].LessThan(amount) {
			return nil
		}
		d.allowances[key] = d.allowances[key].Sub(amount)
		ok = true
		return nil
	})
	return ok, err
}

var (
	_ repository.TxManager            = (*Store)(nil)
	_ repository.CollectionRepository = (*CollectionRepository)(nil)
	_ repository.TicketRepository     = (*TicketRepository)(nil)
	_ repository.ListingRepository    = (*ListingRepository)(nil)
	_ repository.BidRepository        = (*BidRepository)(nil)
	_ repository.TokenRepository      = (*TokenRepository)(nil)
)
