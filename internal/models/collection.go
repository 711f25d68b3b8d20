package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultValidityWindow is how long a freshly minted ticket stays valid.
const DefaultValidityWindow = 10 * 24 * time.Hour

// Collection is the ticket supply of one event.
type Collection struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	Name           string          `gorm:"not null" json:"name"`
	MaxTickets     uint64          `gorm:"not null" json:"max_tickets"`
	Price          decimal.Decimal `gorm:"type:numeric(38,0);not null" json:"price"`
	Creator        Address         `gorm:"type:varchar(128);not null" json:"creator"`
	Admin          Address         `gorm:"type:varchar(128);not null" json:"admin"`
	Minter         Address         `gorm:"type:varchar(128);not null" json:"minter"`
	PaymentToken   string          `gorm:"type:varchar(32);not null" json:"payment_token"`
	ValidityWindow time.Duration   `gorm:"not null" json:"validity_window"`
	TicketsSold    uint64          `gorm:"not null;default:0" json:"tickets_sold"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// InRange reports whether id can name a ticket of this collection.
func (c *Collection) InRange(id uint64) bool {
	return id >= 1 && id <= c.MaxTickets
}

func (c *Collection) SoldOut() bool {
	return c.TicketsSold >= c.MaxTickets
}

// SameTerms reports whether other describes the same collection. Only the
// minted count may differ.
func (c *Collection) SameTerms(other *Collection) bool {
	return c.ID == other.ID &&
		c.Name == other.Name &&
		c.MaxTickets == other.MaxTickets &&
		c.Price.Equal(other.Price) &&
		c.Creator == other.Creator &&
		c.Admin == other.Admin &&
		c.Minter == other.Minter &&
		c.PaymentToken == other.PaymentToken &&
		c.ValidityWindow == other.ValidityWindow
}
