package repository

import (
	"context"

	"github.com/Eursukkul/ticket-marketplace/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ticketRepository struct {
	db *gorm.DB
}

func NewTicketRepository(db *gorm.DB) TicketRepository {
	return &ticketRepository{db: db}
}

func (r *ticketRepository) Create(ctx context.Context, ticket *models.Ticket) error {
	return conn(ctx, r.db).Create(ticket).Error
}

func (r *ticketRepository) Find(ctx context.Context, collectionID uint, ticketID uint64) (*models.Ticket, error) {
	var ticket models.Ticket
	err := conn(ctx, r.db).
		Where("collection_id = ? AND ticket_id = ?", collectionID, ticketID).
		First(&ticket).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &ticket, nil
}

func (r *ticketRepository) FindForUpdate(ctx context.Context, collectionID uint, ticketID uint64) (*models.Ticket, error) {
	var ticket models.Ticket
	err := conn(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("collection_id = ? AND ticket_id = ?", collectionID, ticketID).
		First(&ticket).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &ticket, nil
}

func (r *ticketRepository) Save(ctx context.Context, ticket *models.Ticket) error {
	return conn(ctx, r.db).Save(ticket).Error
}

func (r *ticketRepository) CountByOwner(ctx context.Context, collectionID uint, owner models.Address) (int64, error) {
	var count int64
	err := conn(ctx, r.db).
		Model(&models.Ticket{}).
		Where("collection_id = ? AND owner = ?", collectionID, owner).
		Count(&count).Error
	return count, err
}
