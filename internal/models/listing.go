package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Listing exists only while its ticket sits in marketplace custody.
type Listing struct {
	CollectionID uint            `gorm:"primaryKey;autoIncrement:false" json:"collection_id"`
	TicketID     uint64          `gorm:"primaryKey;autoIncrement:false" json:"ticket_id"`
	Seller       Address         `gorm:"type:varchar(128);not null;index" json:"seller"`
	Price        decimal.Decimal `gorm:"type:numeric(38,0);not null" json:"price"`
	Active       bool            `gorm:"not null;default:true" json:"active"`
	CreatedAt    time.Time       `json:"created_at"`
}

// Bid is the single outstanding escrowed offer on a listed ticket.
type Bid struct {
	CollectionID uint            `gorm:"primaryKey;autoIncrement:false" json:"collection_id"`
	TicketID     uint64          `gorm:"primaryKey;autoIncrement:false" json:"ticket_id"`
	Bidder       Address         `gorm:"type:varchar(128);not null" json:"bidder"`
	Amount       decimal.Decimal `gorm:"type:numeric(38,0);not null" json:"amount"`
	HolderName   string          `gorm:"type:varchar(255)" json:"holder_name"`
	CreatedAt    time.Time       `json:"created_at"`
}
