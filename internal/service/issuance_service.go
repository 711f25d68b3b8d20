package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Eursukkul/ticket-marketplace/internal/access"
	"github.com/Eursukkul/ticket-marketplace/internal/events"
	"github.com/Eursukkul/ticket-marketplace/internal/models"
	"github.com/Eursukkul/ticket-marketplace/internal/payment"
	"github.com/Eursukkul/ticket-marketplace/internal/repository"
	"github.com/shopspring/decimal"
)

type CreateCollectionInput struct {
	Name           string
	MaxTickets     uint64
	Price          decimal.Decimal
	PaymentToken   string
	Admin          models.Address
	ValidityWindow time.Duration
}

// IssuanceService sells primary tickets: it charges the collection price to
// the buyer and mints with the gateway's minter credential.
type IssuanceService interface {
	CreateCollection(ctx context.Context, creator models.Address, input CreateCollectionInput) (*models.Collection, error)
	BuyTicket(ctx context.Context, buyer models.Address, collectionID uint, holderName string) (uint64, error)
	GetCollection(ctx context.Context, collectionID uint) (*models.Collection, error)
	ListCollections(ctx context.Context) ([]models.Collection, error)
}

type issuanceService struct {
	*runner
	ledger   *ledgerService
	payments payment.Directory
	minter   access.Credential
	validity time.Duration
}

func (s *issuanceService) CreateCollection(ctx context.Context, creator models.Address, input CreateCollectionInput) (*models.Collection, error) {
	var result *models.Collection

	err := s.run(ctx, "CreateCollection", "", func(ctx context.Context) error {
		if creator.IsNull() {
			return ErrNullAddress
		}
		if input.MaxTickets == 0 || strings.TrimSpace(input.PaymentToken) == "" {
			return ErrInvalidCollection
		}
		if input.Price.IsNegative() || !input.Price.IsInteger() {
			return ErrInvalidPrice
		}
		admin := input.Admin
		if admin.IsNull() {
			admin = creator
		}
		window := input.ValidityWindow
		if window <= 0 {
			window = s.validity
		}

		collection := &models.Collection{
			Name:           input.Name,
			MaxTickets:     input.MaxTickets,
			Price:          input.Price,
			Creator:        creator,
			Admin:          admin,
			Minter:         s.minter.Address(),
			PaymentToken:   input.PaymentToken,
			ValidityWindow: window,
		}
		if err := s.ledger.repos.Collections.Create(ctx, collection); err != nil {
			return fmt.Errorf("create collection: %w", err)
		}

		events.Emit(ctx, events.New(events.TypeCollectionCreated, collection.ID, 0, s.ledger.clock.Now(), events.CollectionCreated{
			Name:       collection.Name,
			Creator:    creator,
			MaxTickets: collection.MaxTickets,
			Price:      collection.Price,
			Token:      collection.PaymentToken,
		}))
		result = collection
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *issuanceService) BuyTicket(ctx context.Context, buyer models.Address, collectionID uint, holderName string) (uint64, error) {
	var ticketID uint64

	err := s.run(ctx, "BuyTicket", collectionLockKey(collectionID), func(ctx context.Context) error {
		if buyer.IsNull() {
			return ErrNullAddress
		}
		collection, err := s.ledger.collectionForUpdate(ctx, collectionID)
		if err != nil {
			return err
		}
		if collection.SoldOut() {
			return ErrSoldOut
		}

		ledger := s.payments.Ledger(collection.PaymentToken, s.minter.Address())
		if err := ledger.TransferFrom(ctx, buyer, collection.Creator, collection.Price); err != nil {
			return fmt.Errorf("charge %s: %w", buyer, err)
		}
		id, err := s.ledger.Mint(ctx, s.minter, collectionID, buyer, holderName)
		if err != nil {
			return err
		}
		ticketID = id
		return nil
	})
	if err != nil {
		return 0, err
	}
	return ticketID, nil
}

func (s *issuanceService) GetCollection(ctx context.Context, collectionID uint) (*models.Collection, error) {
	return s.ledger.collection(ctx, collectionID)
}

func (s *issuanceService) ListCollections(ctx context.Context) ([]models.Collection, error) {
	collections, err := s.ledger.repos.Collections.FindAll(ctx)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	return collections, nil
}
