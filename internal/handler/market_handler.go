package handler

import (
	"net/http"

	"github.com/Eursukkul/ticket-marketplace/internal/dto"
	"github.com/Eursukkul/ticket-marketplace/internal/middleware"
	"github.com/Eursukkul/ticket-marketplace/internal/service"
	"github.com/labstack/echo/v4"
)

type MarketHandler struct {
	listings service.ListingService
	auctions service.AuctionService
}

func NewMarketHandler(listings service.ListingService, auctions service.AuctionService) *MarketHandler {
	return &MarketHandler{listings: listings, auctions: auctions}
}

func (h *MarketHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/collections/:cid/listings", h.ListActive)

	tickets := g.Group("/collections/:cid/tickets/:tid")
	tickets.GET("/listing", h.GetListing)
	tickets.POST("/listing", h.ListTicket, middleware.RequireCaller)
	tickets.DELETE("/listing", h.DelistTicket, middleware.RequireCaller)
	tickets.GET("/bid", h.GetBid)
	tickets.POST("/bids", h.SubmitBid, middleware.RequireCaller)
	tickets.POST("/bids/accept", h.AcceptBid, middleware.RequireCaller)
}

func (h *MarketHandler) ListActive(c echo.Context) error {
	cid, err := collectionID(c)
	if err != nil {
		return err
	}

	listings, err := h.listings.ListActive(c.Request().Context(), cid)
	if err != nil {
		return err
	}

	resp := make([]dto.ListingResponse, len(listings))
	for i := range listings {
		resp[i] = dto.ToListingResponse(&listings[i])
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *MarketHandler) GetListing(c echo.Context) error {
	cid, tid, err := ticketRef(c)
	if err != nil {
		return err
	}

	listing, err := h.listings.GetListing(c.Request().Context(), cid, tid)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dto.ToListingResponse(listing))
}

func (h *MarketHandler) ListTicket(c echo.Context) error {
	cid, tid, err := ticketRef(c)
	if err != nil {
		return err
	}

	var req dto.ListTicketRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	listing, err := h.listings.ListTicket(c.Request().Context(), middleware.Caller(c), cid, tid, req.Price)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, dto.ToListingResponse(listing))
}

func (h *MarketHandler) DelistTicket(c echo.Context) error {
	cid, tid, err := ticketRef(c)
	if err != nil {
		return err
	}

	if err := h.listings.DelistTicket(c.Request().Context(), middleware.Caller(c), cid, tid); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *MarketHandler) GetBid(c echo.Context) error {
	cid, tid, err := ticketRef(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	amount, err := h.auctions.GetHighestBid(ctx, cid, tid)
	if err != nil {
		return err
	}
	bidder, err := h.auctions.GetHighestBidder(ctx, cid, tid)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.BidResponse{CollectionID: cid, TicketID: tid, Bidder: bidder, Amount: amount})
}

func (h *MarketHandler) SubmitBid(c echo.Context) error {
	cid, tid, err := ticketRef(c)
	if err != nil {
		return err
	}

	var req dto.BidRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	bid, err := h.auctions.SubmitBid(c.Request().Context(), middleware.Caller(c), cid, tid, req.Amount, req.HolderName)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, dto.BidResponse{
		CollectionID: bid.CollectionID,
		TicketID:     bid.TicketID,
		Bidder:       bid.Bidder,
		Amount:       bid.Amount,
	})
}

func (h *MarketHandler) AcceptBid(c echo.Context) error {
	cid, tid, err := ticketRef(c)
	if err != nil {
		return err
	}

	settlement, err := h.auctions.AcceptBid(c.Request().Context(), middleware.Caller(c), cid, tid)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dto.ToSettlementResponse(settlement))
}
