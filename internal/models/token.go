package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type TokenBalance struct {
	Token     string          `gorm:"primaryKey;type:varchar(32)" json:"token"`
	Account   Address         `gorm:"primaryKey;type:varchar(128)" json:"account"`
	Amount    decimal.Decimal `gorm:"type:numeric(38,0);not null" json:"amount"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type TokenAllowance struct {
	Token     string          `gorm:"primaryKey;type:varchar(32)" json:"token"`
	Owner     Address         `gorm:"primaryKey;type:varchar(128)" json:"owner"`
	Spender   Address         `gorm:"primaryKey;type:varchar(128)" json:"spender"`
	Amount    decimal.Decimal `gorm:"type:numeric(38,0);not null" json:"amount"`
	UpdatedAt time.Time       `json:"updated_at"`
}
