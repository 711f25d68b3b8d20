package service

import (
	"errors"

	"github.com/Eursukkul/ticket-marketplace/internal/payment"
)

// Error kinds. Every error returned by the services wraps exactly one of them.
var (
	ErrNotFound          = errors.New("not found")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrInvalidState      = errors.New("invalid state")
	ErrInsufficientFunds = payment.ErrInsufficientFunds
	ErrInvalidArgument   = errors.New("invalid argument")
)

var (
	ErrCollectionNotFound = kindError(ErrNotFound, "collection not found")
	ErrTicketNotFound     = kindError(ErrNotFound, "ticket not found")

	ErrNotOwner     = kindError(ErrUnauthorized, "caller does not hold the ticket")
	ErrNotApproved  = kindError(ErrUnauthorized, "caller is neither the holder nor approved for the ticket")
	ErrNotSeller    = kindError(ErrUnauthorized, "caller is not the seller of the listing")
	ErrNotAdmin     = kindError(ErrUnauthorized, "caller is not the collection admin")
	ErrNotMinter    = kindError(ErrUnauthorized, "credential may not mint into the collection")
	ErrNotCustodian = kindError(ErrUnauthorized, "credential may not move tickets held in custody")
	ErrCustodyHeld  = kindError(ErrUnauthorized, "custody account can only be used by the marketplace")

	ErrSoldOut       = kindError(ErrInvalidState, "collection is sold out")
	ErrTicketInvalid = kindError(ErrInvalidState, "ticket is expired or used")
	ErrAlreadyUsed   = kindError(ErrInvalidState, "ticket is already used")
	ErrExpired       = kindError(ErrInvalidState, "ticket is expired")
	ErrAlreadyListed = kindError(ErrInvalidState, "ticket is already listed")
	ErrNotListed     = kindError(ErrInvalidState, "ticket is not listed")
	ErrNotForSale    = kindError(ErrInvalidState, "ticket is not for sale")
	ErrNoBids        = kindError(ErrInvalidState, "ticket has no bids")

	ErrNullAddress       = kindError(ErrInvalidArgument, "null address")
	ErrSelfApproval      = kindError(ErrInvalidArgument, "holder cannot approve itself")
	ErrBidTooLow         = kindError(ErrInvalidArgument, "bid must exceed the highest bid")
	ErrSelfBid           = kindError(ErrInvalidArgument, "seller or holder cannot bid on the ticket")
	ErrInvalidPrice      = kindError(ErrInvalidArgument, "price must be a positive integer amount")
	ErrInvalidAmount     = kindError(ErrInvalidArgument, "amount must be a positive integer")
	ErrInvalidCollection = kindError(ErrInvalidArgument, "invalid collection parameters")
)

type serviceError struct {
	kind error
	msg  string
}

func kindError(kind error, msg string) error {
	return &serviceError{kind: kind, msg: msg}
}

func (e *serviceError) Error() string { return e.msg }
func (e *serviceError) Unwrap() error { return e.kind }
