package auctions

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the read side of auction persistence
type Repository interface {
	// GetAuctionByID retrieves an auction without locking it
	GetAuctionByID(ctx context.Context, auctionID uuid.UUID) (*Auction, error)
}
