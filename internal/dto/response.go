package dto

import (
	"time"

	"github.com/Eursukkul/ticket-marketplace/internal/models"
	"github.com/Eursukkul/ticket-marketplace/internal/service"
	"github.com/shopspring/decimal"
)

type CollectionResponse struct {
	ID               uint            `json:"id"`
	Name             string          `json:"name"`
	MaxTickets       uint64          `json:"max_tickets"`
	Price            decimal.Decimal `json:"price"`
	Creator          models.Address  `json:"creator"`
	Admin            models.Address  `json:"admin"`
	PaymentToken     string          `json:"payment_token"`
	ValidityWindow   string          `json:"validity_window"`
	TicketsSold      uint64          `json:"tickets_sold"`
	TicketsAvailable uint64          `json:"tickets_available"`
	CreatedAt        time.Time       `json:"created_at"`
}

type TicketResponse struct {
	CollectionID  uint           `json:"collection_id"`
	TicketID      uint64         `json:"ticket_id"`
	Holder        models.Address `json:"holder"`
	HolderName    string         `json:"holder_name"`
	Approved      models.Address `json:"approved,omitempty"`
	ValidUntil    time.Time      `json:"valid_until"`
	Used          bool           `json:"used"`
	ExpiredOrUsed bool           `json:"expired_or_used"`
}

type PurchaseResponse struct {
	CollectionID uint   `json:"collection_id"`
	TicketID     uint64 `json:"ticket_id"`
}

type BalanceResponse struct {
	Account models.Address `json:"account"`
	Balance string         `json:"balance"`
}

type ListingResponse struct {
	CollectionID uint            `json:"collection_id"`
	TicketID     uint64          `json:"ticket_id"`
	Seller       models.Address  `json:"seller"`
	Price        decimal.Decimal `json:"price"`
	CreatedAt    time.Time       `json:"created_at"`
}

type BidResponse struct {
	CollectionID uint            `json:"collection_id"`
	TicketID     uint64          `json:"ticket_id"`
	Bidder       models.Address  `json:"bidder,omitempty"`
	Amount       decimal.Decimal `json:"amount"`
}

type SettlementResponse struct {
	CollectionID uint            `json:"collection_id"`
	TicketID     uint64          `json:"ticket_id"`
	Seller       models.Address  `json:"seller"`
	Buyer        models.Address  `json:"buyer"`
	Creator      models.Address  `json:"creator"`
	Amount       decimal.Decimal `json:"amount"`
	Fee          decimal.Decimal `json:"fee"`
	SellerAmount decimal.Decimal `json:"seller_amount"`
	HolderName   string          `json:"holder_name"`
}

type ErrorResponse struct {
	Message string `json:"message"`
}

func ToCollectionResponse(c *models.Collection) CollectionResponse {
	return CollectionResponse{
		ID:               c.ID,
		Name:             c.Name,
		MaxTickets:       c.MaxTickets,
		Price:            c.Price,
		Creator:          c.Creator,
		Admin:            c.Admin,
		PaymentToken:     c.PaymentToken,
		ValidityWindow:   c.ValidityWindow.String(),
		TicketsSold:      c.TicketsSold,
		TicketsAvailable: c.MaxTickets - min(c.TicketsSold, c.MaxTickets),
		CreatedAt:        c.CreatedAt,
	}
}

func ToTicketResponse(t *models.Ticket, now time.Time) TicketResponse {
	return TicketResponse{
		CollectionID:  t.CollectionID,
		TicketID:      t.TicketID,
		Holder:        t.Owner,
		HolderName:    t.HolderName,
		Approved:      t.Approved,
		ValidUntil:    t.ValidUntil,
		Used:          t.Used,
		ExpiredOrUsed: t.ExpiredOrUsed(now),
	}
}

func ToListingResponse(l *models.Listing) ListingResponse {
	return ListingResponse{
		CollectionID: l.CollectionID,
		TicketID:     l.TicketID,
		Seller:       l.Seller,
		Price:        l.Price,
		CreatedAt:    l.CreatedAt,
	}
}

func ToSettlementResponse(s *service.Settlement) SettlementResponse {
	return SettlementResponse{
		CollectionID: s.CollectionID,
		TicketID:     s.TicketID,
		Seller:       s.Seller,
		Buyer:        s.Buyer,
		Creator:      s.Creator,
		Amount:       s.Amount,
		Fee:          s.Fee,
		SellerAmount: s.SellerAmount,
		HolderName:   s.HolderName,
	}
}
