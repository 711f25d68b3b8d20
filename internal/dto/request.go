package dto

import (
	"github.com/Eursukkul/ticket-marketplace/internal/models"
	"github.com/shopspring/decimal"
)

type CreateCollectionRequest struct {
	Name         string          `json:"name"`
	MaxTickets   uint64          `json:"max_tickets"`
	Price        decimal.Decimal `json:"price"`
	PaymentToken string          `json:"payment_token"`
	Admin        models.Address  `json:"admin"`
	// ValidityWindow is a Go duration string, e.g. "240h".
	ValidityWindow string `json:"validity_window"`
}

type PurchaseRequest struct {
	HolderName string `json:"holder_name"`
}

type TransferRequest struct {
	From models.Address `json:"from"`
	To   models.Address `json:"to"`
}

type ApproveRequest struct {
	To models.Address `json:"to"`
}

type HolderNameRequest struct {
	Name string `json:"name"`
}

type ListTicketRequest struct {
	Price decimal.Decimal `json:"price"`
}

type BidRequest struct {
	Amount     decimal.Decimal `json:"amount"`
	HolderName string          `json:"holder_name"`
}

type TokenApproveRequest struct {
	Spender models.Address  `json:"spender"`
	Amount  decimal.Decimal `json:"amount"`
}

type FaucetRequest struct {
	Amount decimal.Decimal `json:"amount"`
}
