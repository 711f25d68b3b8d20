package database

import (
	"log"

	"github.com/Eursukkul/ticket-marketplace/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewPostgresDB(dsn string) *gorm.DB {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := Migrate(db); err != nil {
		log.Fatalf("failed to auto-migrate: %v", err)
	}
	return db
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Collection{},
		&models.Ticket{},
		&models.Listing{},
		&models.Bid{},
		&models.TokenBalance{},
		&models.TokenAllowance{},
	); err != nil {
		return err
	}

	// BalanceOf counts tickets per holder
	return db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_ticket_owner
		ON tickets (collection_id, owner)
	`).Error
}
