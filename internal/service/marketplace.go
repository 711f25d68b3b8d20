package service

import (
	"github.com/Eursukkul/ticket-marketplace/internal/access"
	"github.com/Eursukkul/ticket-marketplace/internal/clock"
	"github.com/Eursukkul/ticket-marketplace/internal/models"
	"github.com/Eursukkul/ticket-marketplace/internal/payment"
)

// Marketplace bundles the services that share one store, lock and event
// publisher.
type Marketplace struct {
	Ledger   LedgerService
	Listings ListingService
	Auctions AuctionService
	Issuance IssuanceService
	Custody  models.Address
}

// NewMarketplace wires the services. custodian names the account that holds
// listed tickets and escrowed bids; only the listing book and the auction
// engine move tickets through it. gateway is the minter credential used for
// primary sales.
func NewMarketplace(repos Repositories, payments payment.Directory, clk clock.Clock, custodian, gateway access.Credential, opts ...Option) *Marketplace {
	o := buildOptions(opts)
	r := newRunner(repos.Tx, o)
	custody := custodian.Address()
	ledger := newLedgerService(repos, clk, r, custody)
	esc := &escrow{payments: payments, custody: custody}

	return &Marketplace{
		Ledger:   ledger,
		Listings: &listingService{runner: r, ledger: ledger, escrow: esc, custodian: custodian},
		Auctions: &auctionService{runner: r, ledger: ledger, escrow: esc, custodian: custodian, feePercent: o.feePercent},
		Issuance: &issuanceService{runner: r, ledger: ledger, payments: payments, minter: gateway, validity: o.validity},
		Custody:  custody,
	}
}
