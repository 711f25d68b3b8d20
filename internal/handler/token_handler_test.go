package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/Eursukkul/ticket-marketplace/internal/dto"
	"github.com/Eursukkul/ticket-marketplace/internal/payment"
	"github.com/Eursukkul/ticket-marketplace/internal/repository/memory"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTokenLedger() *payment.TokenLedger {
	store := memory.NewStore()
	return payment.NewTokenLedger(store.Tokens(), store)
}

func TestTokenApprove_Handler(t *testing.T) {
	tokens := newTokenLedger()

	c, rec := newContext(http.MethodPost, "/api/v1/tokens/THB/approve", `{"spender":"marketplace","amount":"500"}`, "alice", "token", "THB")
	h := NewTokenHandler(tokens, false)

	require.NoError(t, h.Approve(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	allowance, err := tokens.Allowance(context.Background(), "THB", "alice", "marketplace")
	require.NoError(t, err)
	assert.True(t, allowance.Equal(decimal.NewFromInt(500)))
}

func TestTokenApprove_Handler_InvalidAmount(t *testing.T) {
	c, _ := newContext(http.MethodPost, "/api/v1/tokens/THB/approve", `{"spender":"marketplace","amount":"-1"}`, "alice", "token", "THB")
	h := NewTokenHandler(newTokenLedger(), false)

	he, ok := h.Approve(c).(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, he.Code)
}

func TestFaucet_Handler(t *testing.T) {
	c, rec := newContext(http.MethodPost, "/api/v1/tokens/THB/faucet", `{"amount":"1000"}`, "alice", "token", "THB")
	h := NewTokenHandler(newTokenLedger(), true)

	require.NoError(t, h.Faucet(c))

	var resp dto.BalanceResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "1000", resp.Balance)
}

func TestFaucet_DisabledRouteNotRegistered(t *testing.T) {
	e := echo.New()
	NewTokenHandler(newTokenLedger(), false).RegisterRoutes(e.Group("/api/v1"))

	for _, r := range e.Routes() {
		assert.NotContains(t, r.Path, "faucet")
	}
}
