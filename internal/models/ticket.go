package models

import "time"

type Ticket struct {
	CollectionID uint      `gorm:"primaryKey;autoIncrement:false" json:"collection_id"`
	TicketID     uint64    `gorm:"primaryKey;autoIncrement:false" json:"ticket_id"`
	Owner        Address   `gorm:"type:varchar(128);not null;index" json:"owner"`
	HolderName   string    `gorm:"type:varchar(255)" json:"holder_name"`
	Approved     Address   `gorm:"type:varchar(128)" json:"approved"`
	ValidUntil   time.Time `gorm:"not null" json:"valid_until"`
	Used         bool      `gorm:"not null;default:false" json:"used"`
	MintedAt     time.Time `gorm:"not null" json:"minted_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ExpiredOrUsed is true once the ticket was used or its validity deadline passed.
func (t *Ticket) ExpiredOrUsed(now time.Time) bool {
	return t.Used || now.After(t.ValidUntil)
}
