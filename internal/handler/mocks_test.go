package handler

import (
	"context"
	"net/http/httptest"
	"strings"

	"github.com/Eursukkul/ticket-marketplace/internal/access"
	"github.com/Eursukkul/ticket-marketplace/internal/middleware"
	"github.com/Eursukkul/ticket-marketplace/internal/models"
	"github.com/Eursukkul/ticket-marketplace/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// --- Mock LedgerService ---

type mockLedger struct {
	balanceOfFn  func(ctx context.Context, cid uint, owner models.Address) (int64, error)
	transferFn   func(ctx context.Context, caller models.Address, cid uint, from, to models.Address, tid uint64) error
	approveFn    func(ctx context.Context, caller models.Address, cid uint, to models.Address, tid uint64) error
	holderNameFn func(ctx context.Context, caller models.Address, cid uint, tid uint64, name string) error
	setUsedFn    func(ctx context.Context, caller models.Address, cid uint, tid uint64) error
	getTicketFn  func(ctx context.Context, cid uint, tid uint64) (*models.Ticket, error)
}

func (m *mockLedger) Mint(ctx context.Context, minter access.Credential, cid uint, holder models.Address, name string) (uint64, error) {
	return 0, nil
}
func (m *mockLedger) HolderOf(ctx context.Context, cid uint, tid uint64) (models.Address, error) {
	t, err := m.getTicketFn(ctx, cid, tid)
	if err != nil {
		return "", err
	}
	return t.Owner, nil
}
func (m *mockLedger) BalanceOf(ctx context.Context, cid uint, owner models.Address) (int64, error) {
	return m.balanceOfFn(ctx, cid, owner)
}
func (m *mockLedger) TransferFrom(ctx context.Context, caller models.Address, cid uint, from, to models.Address, tid uint64) error {
	return m.transferFn(ctx, caller, cid, from, to, tid)
}
func (m *mockLedger) Approve(ctx context.Context, caller models.Address, cid uint, to models.Address, tid uint64) error {
	return m.approveFn(ctx, caller, cid, to, tid)
}
func (m *mockLedger) GetApproved(ctx context.Context, cid uint, tid uint64) (models.Address, error) {
	return "", nil
}
func (m *mockLedger) UpdateHolderName(ctx context.Context, caller models.Address, cid uint, tid uint64, name string) error {
	return m.holderNameFn(ctx, caller, cid, tid, name)
}
func (m *mockLedger) SetUsed(ctx context.Context, caller models.Address, cid uint, tid uint64) error {
	return m.setUsedFn(ctx, caller, cid, tid)
}
func (m *mockLedger) IsExpiredOrUsed(ctx context.Context, cid uint, tid uint64) (bool, error) {
	return false, nil
}
func (m *mockLedger) GetTicket(ctx context.Context, cid uint, tid uint64) (*models.Ticket, error) {
	return m.getTicketFn(ctx, cid, tid)
}

// --- Mock ListingService ---

type mockListings struct {
	listFn       func(ctx context.Context, caller models.Address, cid uint, tid uint64, price decimal.Decimal) (*models.Listing, error)
	delistFn     func(ctx context.Context, caller models.Address, cid uint, tid uint64) error
	getFn        func(ctx context.Context, cid uint, tid uint64) (*models.Listing, error)
	listActiveFn func(ctx context.Context, cid uint) ([]models.Listing, error)
}

func (m *mockListings) ListTicket(ctx context.Context, caller models.Address, cid uint, tid uint64, price decimal.Decimal) (*models.Listing, error) {
	return m.listFn(ctx, caller, cid, tid, price)
}
func (m *mockListings) DelistTicket(ctx context.Context, caller models.Address, cid uint, tid uint64) error {
	return m.delistFn(ctx, caller, cid, tid)
}
func (m *mockListings) GetListing(ctx context.Context, cid uint, tid uint64) (*models.Listing, error) {
	return m.getFn(ctx, cid, tid)
}
func (m *mockListings) ListActive(ctx context.Context, cid uint) ([]models.Listing, error) {
	return m.listActiveFn(ctx, cid)
}

// --- Mock AuctionService ---

type mockAuctions struct {
	submitFn func(ctx context.Context, bidder models.Address, cid uint, tid uint64, amount decimal.Decimal, name string) (*models.Bid, error)
	acceptFn func(ctx context.Context, caller models.Address, cid uint, tid uint64) (*service.Settlement, error)
	highest  *models.Bid
}

func (m *mockAuctions) SubmitBid(ctx context.Context, bidder models.Address, cid uint, tid uint64, amount decimal.Decimal, name string) (*models.Bid, error) {
	return m.submitFn(ctx, bidder, cid, tid, amount, name)
}
func (m *mockAuctions) GetHighestBid(ctx context.Context, cid uint, tid uint64) (decimal.Decimal, error) {
	if m.highest == nil {
		return decimal.Zero, nil
	}
	return m.highest.Amount, nil
}
func (m *mockAuctions) GetHighestBidder(ctx context.Context, cid uint, tid uint64) (models.Address, error) {
	if m.highest == nil {
		return models.NullAddress, nil
	}
	return m.highest.Bidder, nil
}
func (m *mockAuctions) EscrowOf(ctx context.Context, cid uint, tid uint64) (decimal.Decimal, error) {
	return m.GetHighestBid(ctx, cid, tid)
}
func (m *mockAuctions) AcceptBid(ctx context.Context, caller models.Address, cid uint, tid uint64) (*service.Settlement, error) {
	return m.acceptFn(ctx, caller, cid, tid)
}

// --- Mock IssuanceService ---

type mockIssuance struct {
	createFn func(ctx context.Context, creator models.Address, in service.CreateCollectionInput) (*models.Collection, error)
	buyFn    func(ctx context.Context, buyer models.Address, cid uint, name string) (uint64, error)
	getFn    func(ctx context.Context, cid uint) (*models.Collection, error)
	listFn   func(ctx context.Context) ([]models.Collection, error)
}

func (m *mockIssuance) CreateCollection(ctx context.Context, creator models.Address, in service.CreateCollectionInput) (*models.Collection, error) {
	return m.createFn(ctx, creator, in)
}
func (m *mockIssuance) BuyTicket(ctx context.Context, buyer models.Address, cid uint, name string) (uint64, error) {
	return m.buyFn(ctx, buyer, cid, name)
}
func (m *mockIssuance) GetCollection(ctx context.Context, cid uint) (*models.Collection, error) {
	return m.getFn(ctx, cid)
}
func (m *mockIssuance) ListCollections(ctx context.Context) ([]models.Collection, error) {
	return m.listFn(ctx)
}

// newContext builds an echo context for a handler call. params alternates
// names and values.
func newContext(method, target, body string, caller models.Address, params ...string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if caller != "" {
		req.Header.Set(middleware.HeaderAccount, string(caller))
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var names, values []string
	for i := 0; i+1 < len(params); i += 2 {
		names = append(names, params[i])
		values = append(values, params[i+1])
	}
	c.SetParamNames(names...)
	c.SetParamValues(values...)
	return c, rec
}
