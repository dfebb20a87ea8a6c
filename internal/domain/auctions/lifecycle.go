package auctions

import (
	"errors"
	"fmt"
)

// Lifecycle errors
var (
	ErrNotAcceptingBids  = errors.New("auction status does not accept bids")
	ErrInvalidTransition = errors.New("invalid auction status transition")
)

// transitions lists the legal moves driven by the scheduler.
// Terminal states have no entry.
var transitions = map[Status][]Status{
	StatusDraft:   {StatusPending, StatusCancelled},
	StatusPending: {StatusActive, StatusCancelled},
	StatusActive:  {StatusStarted, StatusCompleted, StatusExpired, StatusCancelled, StatusFailed},
	StatusStarted: {StatusCompleted, StatusExpired, StatusCancelled, StatusFailed},
}

// IsValid checks if the status is one of the known values
func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusPending, StatusActive, StatusStarted,
		StatusCompleted, StatusCancelled, StatusExpired, StatusFailed:
		return true
	default:
		return false
	}
}

// AcceptsBids reports whether an auction in this status may take bids
func (s Status) AcceptsBids() bool {
	return s == StatusActive || s == StatusStarted
}

// IsTerminal reports whether no further transition is possible
func (s Status) IsTerminal() bool {
	return s.IsValid() && len(transitions[s]) == 0
}

// String returns the string representation of the status
func (s Status) String() string {
	return string(s)
}

// CanTransition reports whether moving from one status to another is legal
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ValidateTransition returns ErrInvalidTransition when from -> to is not legal
func ValidateTransition(from, to Status) error {
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return nil
}

// CheckBiddable returns ErrNotAcceptingBids unless the status takes bids.
// Only the status decides: StartAt and EndAt are the scheduler's business, and a
// late bid on a live auction is handled by ExtendDeadline.
func (a *Auction) CheckBiddable() error {
	if !a.Status.AcceptsBids() {
		return fmt.Errorf("%w: %s", ErrNotAcceptingBids, a.Status)
	}
	return nil
}
