package handler

import (
	"net/http"

	"github.com/Eursukkul/ticket-marketplace/internal/clock"
	"github.com/Eursukkul/ticket-marketplace/internal/dto"
	"github.com/Eursukkul/ticket-marketplace/internal/middleware"
	"github.com/Eursukkul/ticket-marketplace/internal/service"
	"github.com/labstack/echo/v4"
)

type TicketHandler struct {
	ledger service.LedgerService
	clock  clock.Clock
}

func NewTicketHandler(ledger service.LedgerService, clk clock.Clock) *TicketHandler {
	return &TicketHandler{ledger: ledger, clock: clk}
}

func (h *TicketHandler) RegisterRoutes(g *echo.Group) {
	tickets := g.Group("/collections/:cid/tickets/:tid")
	tickets.GET("", h.GetTicket)
	tickets.POST("/transfer", h.Transfer, middleware.RequireCaller)
	tickets.POST("/approve", h.Approve, middleware.RequireCaller)
	tickets.PUT("/holder-name", h.UpdateHolderName, middleware.RequireCaller)
	tickets.POST("/use", h.SetUsed, middleware.RequireCaller)
}

func (h *TicketHandler) GetTicket(c echo.Context) error {
	cid, tid, err := ticketRef(c)
	if err != nil {
		return err
	}

	ticket, err := h.ledger.GetTicket(c.Request().Context(), cid, tid)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.ToTicketResponse(ticket, h.clock.Now()))
}

func (h *TicketHandler) Transfer(c echo.Context) error {
	cid, tid, err := ticketRef(c)
	if err != nil {
		return err
	}

	var req dto.TransferRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	caller := middleware.Caller(c)
	if req.From.IsNull() {
		req.From = caller
	}

	if err := h.ledger.TransferFrom(c.Request().Context(), caller, cid, req.From, req.To, tid); err != nil {
		return err
	}
	return h.GetTicket(c)
}

func (h *TicketHandler) Approve(c echo.Context) error {
	cid, tid, err := ticketRef(c)
	if err != nil {
		return err
	}

	var req dto.ApproveRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := h.ledger.Approve(c.Request().Context(), middleware.Caller(c), cid, req.To, tid); err != nil {
		return err
	}
	return h.GetTicket(c)
}

func (h *TicketHandler) UpdateHolderName(c echo.Context) error {
	cid, tid, err := ticketRef(c)
	if err != nil {
		return err
	}

	var req dto.HolderNameRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := h.ledger.UpdateHolderName(c.Request().Context(), middleware.Caller(c), cid, tid, req.Name); err != nil {
		return err
	}
	return h.GetTicket(c)
}

func (h *TicketHandler) SetUsed(c echo.Context) error {
	cid, tid, err := ticketRef(c)
	if err != nil {
		return err
	}

	if err := h.ledger.SetUsed(c.Request().Context(), middleware.Caller(c), cid, tid); err != nil {
		return err
	}
	return h.GetTicket(c)
}
