package repository

import (
	"context"

	"github.com/Eursukkul/ticket-marketplace/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type listingRepository struct {
	db *gorm.DB
}

func NewListingRepository(db *gorm.DB) ListingRepository {
	return &listingRepository{db: db}
}

func (r *listingRepository) Create(ctx context.Context, listing *models.Listing) error {
	return conn(ctx, r.db).Create(listing).Error
}

func (r *listingRepository) Find(ctx context.Context, collectionID uint, ticketID uint64) (*models.Listing, error) {
	var listing models.Listing
	err := conn(ctx, r.db).
		Where("collection_id = ? AND ticket_id = ? AND active = ?", collectionID, ticketID, true).
		First(&listing).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &listing, nil
}

func (r *listingRepository) FindForUpdate(ctx context.Context, collectionID uint, ticketID uint64) (*models.Listing, error) {
	var listing models.Listing
	err := conn(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("collection_id = ? AND ticket_id = ? AND active = ?", collectionID, ticketID, true).
		First(&listing).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &listing, nil
}

func (r *listingRepository) FindActiveByCollection(ctx context.Context, collectionID uint) ([]models.Listing, error) {
	var listings []models.Listing
	err := conn(ctx, r.db).
		Where("collection_id = ? AND active = ?", collectionID, true).
		Order("ticket_id ASC").
		Find(&listings).Error
	if err != nil {
		return nil, err
	}
	return listings, nil
}

func (r *listingRepository) Delete(ctx context.Context, collectionID uint, ticketID uint64) error {
	return conn(ctx, r.db).
		Where("collection_id = ? AND ticket_id = ?", collectionID, ticketID).
		Delete(&models.Listing{}).Error
}
