package bids

import "errors"

// Bid placement errors. Every one of them leaves auction and ledger state untouched.
var (
	ErrNotFound           = errors.New("auction not found")
	ErrInvalidState       = errors.New("auction is not accepting bids")
	ErrBidTooLow          = errors.New("bid amount is below the minimum next bid")
	ErrInvalidAmount      = errors.New("bid amount is not a valid price")
	ErrConcurrencyTimeout = errors.New("timed out waiting for the auction lock")
)

// Ledger query errors
var (
	ErrBidNotFound  = errors.New("bid not found")
	ErrInvalidQuery = errors.New("invalid bid query")
)
