package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/Eursukkul/ticket-marketplace/internal/clock"
	"github.com/Eursukkul/ticket-marketplace/internal/dto"
	"github.com/Eursukkul/ticket-marketplace/internal/models"
	"github.com/Eursukkul/ticket-marketplace/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var handlerNow = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func sampleTicket(owner models.Address) *models.Ticket {
	return &models.Ticket{
		CollectionID: 1,
		TicketID:     1,
		Owner:        owner,
		HolderName:   "Alice",
		ValidUntil:   handlerNow.Add(24 * time.Hour),
	}
}

func TestGetTicket_Handler(t *testing.T) {
	ledger := &mockLedger{
		getTicketFn: func(ctx context.Context, cid uint, tid uint64) (*models.Ticket, error) {
			return sampleTicket("alice"), nil
		},
	}

	c, rec := newContext(http.MethodGet, "/api/v1/collections/1/tickets/1", "", "", "cid", "1", "tid", "1")
	h := NewTicketHandler(ledger, clock.NewFake(handlerNow))

	require.NoError(t, h.GetTicket(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp dto.TicketResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, models.Address("alice"), resp.Holder)
	assert.False(t, resp.ExpiredOrUsed)
}

func TestGetTicket_Handler_Expired(t *testing.T) {
	ledger := &mockLedger{
		getTicketFn: func(ctx context.Context, cid uint, tid uint64) (*models.Ticket, error) {
			return sampleTicket("alice"), nil
		},
	}

	c, rec := newContext(http.MethodGet, "/api/v1/collections/1/tickets/1", "", "", "cid", "1", "tid", "1")
	h := NewTicketHandler(ledger, clock.NewFake(handlerNow.Add(48*time.Hour)))

	require.NoError(t, h.GetTicket(c))

	var resp dto.TicketResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.ExpiredOrUsed)
}

func TestGetTicket_Handler_NotFound(t *testing.T) {
	ledger := &mockLedger{
		getTicketFn: func(ctx context.Context, cid uint, tid uint64) (*models.Ticket, error) {
			return nil, service.ErrTicketNotFound
		},
	}

	c, _ := newContext(http.MethodGet, "/api/v1/collections/1/tickets/9", "", "", "cid", "1", "tid", "9")
	h := NewTicketHandler(ledger, clock.NewFake(handlerNow))

	assert.ErrorIs(t, h.GetTicket(c), service.ErrNotFound)
}

func TestTransfer_Handler_DefaultsFromToCaller(t *testing.T) {
	owner := models.Address("alice")
	ledger := &mockLedger{
		transferFn: func(ctx context.Context, caller models.Address, cid uint, from, to models.Address, tid uint64) error {
			assert.Equal(t, models.Address("alice"), caller)
			assert.Equal(t, models.Address("alice"), from)
			owner = to
			return nil
		},
		getTicketFn: func(ctx context.Context, cid uint, tid uint64) (*models.Ticket, error) {
			return sampleTicket(owner), nil
		},
	}

	c, rec := newContext(http.MethodPost, "/api/v1/collections/1/tickets/1/transfer", `{"to":"bob"}`, "alice", "cid", "1", "tid", "1")
	h := NewTicketHandler(ledger, clock.NewFake(handlerNow))

	require.NoError(t, h.Transfer(c))

	var resp dto.TicketResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, models.Address("bob"), resp.Holder)
}

func TestSetUsed_Handler_NotAdmin(t *testing.T) {
	ledger := &mockLedger{
		setUsedFn: func(ctx context.Context, caller models.Address, cid uint, tid uint64) error {
			return service.ErrNotAdmin
		},
	}

	c, _ := newContext(http.MethodPost, "/api/v1/collections/1/tickets/1/use", "", "bob", "cid", "1", "tid", "1")
	h := NewTicketHandler(ledger, clock.NewFake(handlerNow))

	assert.ErrorIs(t, h.SetUsed(c), service.ErrUnauthorized)
}

func TestUpdateHolderName_Handler(t *testing.T) {
	var name string
	ledger := &mockLedger{
		holderNameFn: func(ctx context.Context, caller models.Address, cid uint, tid uint64, n string) error {
			name = n
			return nil
		},
		getTicketFn: func(ctx context.Context, cid uint, tid uint64) (*models.Ticket, error) {
			ticket := sampleTicket("alice")
			ticket.HolderName = name
			return ticket, nil
		},
	}

	c, rec := newContext(http.MethodPut, "/api/v1/collections/1/tickets/1/holder-name", `{"name":"Alice Smith"}`, "alice", "cid", "1", "tid", "1")
	h := NewTicketHandler(ledger, clock.NewFake(handlerNow))

	require.NoError(t, h.UpdateHolderName(c))

	var resp dto.TicketResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Alice Smith", resp.HolderName)
}
