package handler

import (
	"net/http"
	"time"

	"github.com/Eursukkul/ticket-marketplace/internal/dto"
	"github.com/Eursukkul/ticket-marketplace/internal/middleware"
	"github.com/Eursukkul/ticket-marketplace/internal/models"
	"github.com/Eursukkul/ticket-marketplace/internal/service"
	"github.com/labstack/echo/v4"
)

type CollectionHandler struct {
	issuance service.IssuanceService
	ledger   service.LedgerService
}

func NewCollectionHandler(issuance service.IssuanceService, ledger service.LedgerService) *CollectionHandler {
	return &CollectionHandler{issuance: issuance, ledger: ledger}
}

func (h *CollectionHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/collections", h.ListCollections)
	g.POST("/collections", h.CreateCollection, middleware.RequireCaller)
	g.GET("/collections/:cid", h.GetCollection)
	g.POST("/collections/:cid/purchase", h.Purchase, middleware.RequireCaller)
	g.GET("/collections/:cid/balances/:addr", h.BalanceOf)
}

func (h *CollectionHandler) CreateCollection(c echo.Context) error {
	var req dto.CreateCollectionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	var window time.Duration
	if req.ValidityWindow != "" {
		d, err := time.ParseDuration(req.ValidityWindow)
		if err != nil || d <= 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid validity_window")
		}
		window = d
	}

	collection, err := h.issuance.CreateCollection(c.Request().Context(), middleware.Caller(c), service.CreateCollectionInput{
		Name:           req.Name,
		MaxTickets:     req.MaxTickets,
		Price:          req.Price,
		PaymentToken:   req.PaymentToken,
		Admin:          req.Admin,
		ValidityWindow: window,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, dto.ToCollectionResponse(collection))
}

func (h *CollectionHandler) GetCollection(c echo.Context) error {
	cid, err := collectionID(c)
	if err != nil {
		return err
	}

	collection, err := h.issuance.GetCollection(c.Request().Context(), cid)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.ToCollectionResponse(collection))
}

func (h *CollectionHandler) ListCollections(c echo.Context) error {
	collections, err := h.issuance.ListCollections(c.Request().Context())
	if err != nil {
		return err
	}

	resp := make([]dto.CollectionResponse, len(collections))
	for i := range collections {
		resp[i] = dto.ToCollectionResponse(&collections[i])
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *CollectionHandler) Purchase(c echo.Context) error {
	cid, err := collectionID(c)
	if err != nil {
		return err
	}

	var req dto.PurchaseRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	tid, err := h.issuance.BuyTicket(c.Request().Context(), middleware.Caller(c), cid, req.HolderName)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, dto.PurchaseResponse{CollectionID: cid, TicketID: tid})
}

func (h *CollectionHandler) BalanceOf(c echo.Context) error {
	cid, err := collectionID(c)
	if err != nil {
		return err
	}
	owner := models.Address(c.Param("addr"))

	n, err := h.ledger.BalanceOf(c.Request().Context(), cid, owner)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]any{"collection_id": cid, "owner": owner, "tickets": n})
}
