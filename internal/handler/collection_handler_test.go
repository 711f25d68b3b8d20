package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/Eursukkul/ticket-marketplace/internal/dto"
	"github.com/Eursukkul/ticket-marketplace/internal/models"
	"github.com/Eursukkul/ticket-marketplace/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCollection_Handler_Success(t *testing.T) {
	issuance := &mockIssuance{
		createFn: func(ctx context.Context, creator models.Address, in service.CreateCollectionInput) (*models.Collection, error) {
			assert.Equal(t, 48*time.Hour, in.ValidityWindow)
			return &models.Collection{
				ID:             1,
				Name:           in.Name,
				MaxTickets:     in.MaxTickets,
				Price:          in.Price,
				Creator:        creator,
				Admin:          creator,
				PaymentToken:   in.PaymentToken,
				ValidityWindow: in.ValidityWindow,
			}, nil
		},
	}

	body := `{"name":"Golang Workshop Bangkok","max_tickets":50,"price":"2500","payment_token":"THB","validity_window":"48h"}`
	c, rec := newContext(http.MethodPost, "/api/v1/collections", body, "organizer")
	h := NewCollectionHandler(issuance, nil)

	require.NoError(t, h.CreateCollection(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp dto.CollectionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, models.Address("organizer"), resp.Creator)
	assert.Equal(t, uint64(50), resp.TicketsAvailable)
	assert.True(t, resp.Price.Equal(decimal.NewFromInt(2500)))
}

func TestCreateCollection_Handler_BadValidity(t *testing.T) {
	c, _ := newContext(http.MethodPost, "/api/v1/collections", `{"name":"x","max_tickets":1,"validity_window":"soon"}`, "organizer")
	h := NewCollectionHandler(nil, nil)

	he, ok := h.CreateCollection(c).(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, he.Code)
}

func TestPurchase_Handler_SoldOut(t *testing.T) {
	issuance := &mockIssuance{
		buyFn: func(ctx context.Context, buyer models.Address, cid uint, name string) (uint64, error) {
			return 0, service.ErrSoldOut
		},
	}

	c, _ := newContext(http.MethodPost, "/api/v1/collections/1/purchase", `{"holder_name":"Alice"}`, "alice", "cid", "1")
	h := NewCollectionHandler(issuance, nil)

	assert.ErrorIs(t, h.Purchase(c), service.ErrInvalidState)
}

func TestPurchase_Handler_Success(t *testing.T) {
	issuance := &mockIssuance{
		buyFn: func(ctx context.Context, buyer models.Address, cid uint, name string) (uint64, error) {
			return 7, nil
		},
	}

	c, rec := newContext(http.MethodPost, "/api/v1/collections/1/purchase", `{"holder_name":"Alice"}`, "alice", "cid", "1")
	h := NewCollectionHandler(issuance, nil)

	require.NoError(t, h.Purchase(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp dto.PurchaseResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, uint64(7), resp.TicketID)
}

func TestGetCollection_Handler_InvalidID(t *testing.T) {
	c, _ := newContext(http.MethodGet, "/api/v1/collections/0", "", "", "cid", "0")
	h := NewCollectionHandler(nil, nil)

	he, ok := h.GetCollection(c).(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, he.Code)
}

func TestBalanceOf_Handler(t *testing.T) {
	ledger := &mockLedger{
		balanceOfFn: func(ctx context.Context, cid uint, owner models.Address) (int64, error) {
			return 2, nil
		},
	}

	c, rec := newContext(http.MethodGet, "/api/v1/collections/1/balances/alice", "", "", "cid", "1", "addr", "alice")
	h := NewCollectionHandler(nil, ledger)

	require.NoError(t, h.BalanceOf(c))
	assert.JSONEq(t, `{"collection_id":1,"owner":"alice","tickets":2}`, rec.Body.String())
}
