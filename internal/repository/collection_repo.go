package repository

import (
	"context"

	"github.com/Eursukkul/ticket-marketplace/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type collectionRepository struct {
	db *gorm.DB
}

func NewCollectionRepository(db *gorm.DB) CollectionRepository {
	return &collectionRepository{db: db}
}

func (r *collectionRepository) Create(ctx context.Context, collection *models.Collection) error {
	return conn(ctx, r.db).Create(collection).Error
}

func (r *collectionRepository) Register(ctx context.Context, collection *models.Collection) error {
	db := conn(ctx, r.db)
	result := db.Clauses(clause.OnConflict{DoNothing: true}).Create(collection)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 1 {
		// Explicit IDs leave the serial sequence behind.
		return db.Exec(`SELECT setval(pg_get_serial_sequence('collections', 'id'), (SELECT MAX(id) FROM collections))`).Error
	}

	var existing models.Collection
	if err := db.First(&existing, collection.ID).Error; err != nil {
		return notFound(err)
	}
	if !existing.SameTerms(collection) {
		return ErrConflict
	}
	*collection = existing
	return nil
}

func (r *collectionRepository) FindByID(ctx context.Context, id uint) (*models.Collection, error) {
	var collection models.Collection
	if err := conn(ctx, r.db).First(&collection, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &collection, nil
}

// FindByIDForUpdate locks the collection row; minting serializes on it.
func (r *collectionRepository) FindByIDForUpdate(ctx context.Context, id uint) (*models.Collection, error) {
	var collection models.Collection
	if err := conn(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&collection, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &collection, nil
}

func (r *collectionRepository) FindAll(ctx context.Context) ([]models.Collection, error) {
	var collections []models.Collection
	if err := conn(ctx, r.db).Order("id ASC").Find(&collections).Error; err != nil {
		return nil, err
	}
	return collections, nil
}

func (r *collectionRepository) UpdateTicketsSold(ctx context.Context, id uint, sold uint64) error {
	return conn(ctx, r.db).
		Model(&models.Collection{}).
		Where("id = ?", id).
		Update("tickets_sold", sold).Error
}
