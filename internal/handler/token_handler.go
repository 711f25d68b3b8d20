package handler

import (
	"context"
	"net/http"

	"github.com/Eursukkul/ticket-marketplace/internal/dto"
	"github.com/Eursukkul/ticket-marketplace/internal/middleware"
	"github.com/Eursukkul/ticket-marketplace/internal/models"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// TokenService is the account-facing side of the payment token ledger.
type TokenService interface {
	Approve(ctx context.Context, token string, owner, spender models.Address, amount decimal.Decimal) error
	BalanceOf(ctx context.Context, token string, account models.Address) (decimal.Decimal, error)
	Mint(ctx context.Context, token string, to models.Address, amount decimal.Decimal) error
}

type TokenHandler struct {
	tokens TokenService
	faucet bool
}

func NewTokenHandler(tokens TokenService, faucet bool) *TokenHandler {
	return &TokenHandler{tokens: tokens, faucet: faucet}
}

func (h *TokenHandler) RegisterRoutes(g *echo.Group) {
	tokens := g.Group("/tokens/:token")
	tokens.GET("/balances/:addr", h.BalanceOf)
	tokens.POST("/approve", h.Approve, middleware.RequireCaller)
	if h.faucet {
		tokens.POST("/faucet", h.Faucet, middleware.RequireCaller)
	}
}

func (h *TokenHandler) BalanceOf(c echo.Context) error {
	account := models.Address(c.Param("addr"))
	balance, err := h.tokens.BalanceOf(c.Request().Context(), c.Param("token"), account)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dto.BalanceResponse{Account: account, Balance: balance.String()})
}

func (h *TokenHandler) Approve(c echo.Context) error {
	var req dto.TokenApproveRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := h.tokens.Approve(c.Request().Context(), c.Param("token"), middleware.Caller(c), req.Spender, req.Amount); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *TokenHandler) Faucet(c echo.Context) error {
	var req dto.FaucetRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	caller := middleware.Caller(c)
	if err := h.tokens.Mint(c.Request().Context(), c.Param("token"), caller, req.Amount); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	balance, err := h.tokens.BalanceOf(c.Request().Context(), c.Param("token"), caller)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dto.BalanceResponse{Account: caller, Balance: balance.String()})
}
