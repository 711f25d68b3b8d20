package repository

import (
	"context"

	"github.com/Eursukkul/ticket-marketplace/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type bidRepository struct {
	db *gorm.DB
}

func NewBidRepository(db *gorm.DB) BidRepository {
	return &bidRepository{db: db}
}

func (r *bidRepository) Find(ctx context.Context, collectionID uint, ticketID uint64) (*models.Bid, error) {
	var bid models.Bid
	err := conn(ctx, r.db).
		Where("collection_id = ? AND ticket_id = ?", collectionID, ticketID).
		First(&bid).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &bid, nil
}

func (r *bidRepository) FindForUpdate(ctx context.Context, collectionID uint, ticketID uint64) (*models.Bid, error) {
	var bid models.Bid
	err := conn(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("collection_id = ? AND ticket_id = ?", collectionID, ticketID).
		First(&bid).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &bid, nil
}

// Save replaces the outstanding bid wholesale.
func (r *bidRepository) Save(ctx context.Context, bid *models.Bid) error {
	return conn(ctx, r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "collection_id"}, {Name: "ticket_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"bidder", "amount", "holder_name", "created_at"}),
	}).Create(bid).Error
}

func (r *bidRepository) Delete(ctx context.Context, collectionID uint, ticketID uint64) error {
	return conn(ctx, r.db).
		Where("collection_id = ? AND ticket_id = ?", collectionID, ticketID).
		Delete(&models.Bid{}).Error
}
