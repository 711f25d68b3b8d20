package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Eursukkul/ticket-marketplace/internal/access"
	"github.com/Eursukkul/ticket-marketplace/internal/clock"
	"github.com/Eursukkul/ticket-marketplace/internal/middleware"
	"github.com/Eursukkul/ticket-marketplace/internal/payment"
	"github.com/Eursukkul/ticket-marketplace/internal/repository/memory"
	"github.com/Eursukkul/ticket-marketplace/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *echo.Echo {
	t.Helper()
	store := memory.NewStore()
	tokens := payment.NewTokenLedger(store.Tokens(), store)
	repos := service.Repositories{
		Tx:          store,
		Collections: store.Collections(),
		Tickets:     store.Tickets(),
		Listings:    store.Listings(),
		Bids:        store.Bids(),
	}
	clk := clock.NewFake(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	market := service.NewMarketplace(repos, tokens, clk, access.NewCustodian("marketplace"), access.NewMinter("issuance-gateway"))
	return newServer(market, tokens, clk, true)
}

func call(t *testing.T, e *echo.Echo, method, path, caller string, body any) (int, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if caller != "" {
		req.Header.Set(middleware.HeaderAccount, caller)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	out := map[string]any{}
	if rec.Body.Len() > 0 && rec.Body.Bytes()[0] == '{' {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec.Code, out
}

func TestAPI_FullFlow(t *testing.T) {
	e := newTestServer(t)

	// Step 1: organizer creates a collection of 2 tickets at 100
	code, resp := call(t, e, http.MethodPost, "/api/v1/collections", "organizer", map[string]any{
		"name": "Golang Workshop Bangkok", "max_tickets": 2, "price": "100", "payment_token": "THB",
	})
	require.Equal(t, http.StatusCreated, code, resp)
	assert.Equal(t, float64(1), resp["id"])

	// Step 2: alice funds herself and buys ticket 1
	code, _ = call(t, e, http.MethodPost, "/api/v1/tokens/THB/faucet", "alice", map[string]any{"amount": "1000"})
	require.Equal(t, http.StatusOK, code)
	code, _ = call(t, e, http.MethodPost, "/api/v1/tokens/THB/approve", "alice", map[string]any{"spender": "issuance-gateway", "amount": "100"})
	require.Equal(t, http.StatusNoContent, code)
	code, resp = call(t, e, http.MethodPost, "/api/v1/collections/1/purchase", "alice", map[string]any{"holder_name": "Alice"})
	require.Equal(t, http.StatusCreated, code, resp)
	assert.Equal(t, float64(1), resp["ticket_id"])

	// Step 3: alice lists it
	code, resp = call(t, e, http.MethodPost, "/api/v1/collections/1/tickets/1/listing", "alice", map[string]any{"price": "50"})
	require.Equal(t, http.StatusCreated, code, resp)

	code, resp = call(t, e, http.MethodPost, "/api/v1/collections/1/tickets/1/listing", "alice", map[string]any{"price": "50"})
	assert.Equal(t, http.StatusConflict, code, resp)

	// Step 4: bob bids 80
	call(t, e, http.MethodPost, "/api/v1/tokens/THB/faucet", "bob", map[string]any{"amount": "200"})
	call(t, e, http.MethodPost, "/api/v1/tokens/THB/approve", "bob", map[string]any{"spender": "marketplace", "amount": "200"})
	code, resp = call(t, e, http.MethodPost, "/api/v1/collections/1/tickets/1/bids", "bob", map[string]any{"amount": "80", "holder_name": "Bob"})
	require.Equal(t, http.StatusCreated, code, resp)

	// carol has no allowance
	call(t, e, http.MethodPost, "/api/v1/tokens/THB/faucet", "carol", map[string]any{"amount": "200"})
	code, _ = call(t, e, http.MethodPost, "/api/v1/collections/1/tickets/1/bids", "carol", map[string]any{"amount": "90"})
	assert.Equal(t, http.StatusPaymentRequired, code)

	// Step 5: only the seller may accept
	code, _ = call(t, e, http.MethodPost, "/api/v1/collections/1/tickets/1/bids/accept", "bob", nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, resp = call(t, e, http.MethodPost, "/api/v1/collections/1/tickets/1/bids/accept", "alice", nil)
	require.Equal(t, http.StatusOK, code, resp)
	assert.Equal(t, "4", resp["fee"])
	assert.Equal(t, "76", resp["seller_amount"])

	// Step 6: bob holds the ticket under his name
	code, resp = call(t, e, http.MethodGet, "/api/v1/collections/1/tickets/1", "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "bob", resp["holder"])
	assert.Equal(t, "Bob", resp["holder_name"])

	_, resp = call(t, e, http.MethodGet, "/api/v1/tokens/THB/balances/organizer", "", nil)
	assert.Equal(t, "104", resp["balance"])
	_, resp = call(t, e, http.MethodGet, "/api/v1/tokens/THB/balances/alice", "", nil)
	assert.Equal(t, "976", resp["balance"])

	code, _ = call(t, e, http.MethodGet, "/api/v1/collections/1/tickets/1/listing", "", nil)
	assert.Equal(t, http.StatusConflict, code)
}

func TestAPI_CustodyAccountCannotMoveListedTicket(t *testing.T) {
	e := newTestServer(t)

	call(t, e, http.MethodPost, "/api/v1/collections", "organizer", map[string]any{
		"name": "Golang Workshop Bangkok", "max_tickets": 1, "price": "100", "payment_token": "THB",
	})
	call(t, e, http.MethodPost, "/api/v1/tokens/THB/faucet", "alice", map[string]any{"amount": "100"})
	call(t, e, http.MethodPost, "/api/v1/tokens/THB/approve", "alice", map[string]any{"spender": "issuance-gateway", "amount": "100"})
	call(t, e, http.MethodPost, "/api/v1/collections/1/purchase", "alice", map[string]any{"holder_name": "Alice"})
	code, resp := call(t, e, http.MethodPost, "/api/v1/collections/1/tickets/1/listing", "alice", map[string]any{"price": "50"})
	require.Equal(t, http.StatusCreated, code, resp)

	code, _ = call(t, e, http.MethodPost, "/api/v1/collections/1/tickets/1/transfer", "marketplace", map[string]any{"from": "marketplace", "to": "mallory"})
	assert.Equal(t, http.StatusForbidden, code)

	_, resp = call(t, e, http.MethodGet, "/api/v1/collections/1/tickets/1", "", nil)
	assert.Equal(t, "marketplace", resp["holder"])

	code, _ = call(t, e, http.MethodDelete, "/api/v1/collections/1/tickets/1/listing", "alice", nil)
	assert.Equal(t, http.StatusNoContent, code)
}

func TestAPI_MissingCaller(t *testing.T) {
	e := newTestServer(t)

	code, resp := call(t, e, http.MethodPost, "/api/v1/collections", "", map[string]any{"name": "x"})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Contains(t, resp["message"], middleware.HeaderAccount)
}

func TestAPI_NotFound(t *testing.T) {
	e := newTestServer(t)

	code, _ := call(t, e, http.MethodGet, "/api/v1/collections/42", "", nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = call(t, e, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, code)
}
