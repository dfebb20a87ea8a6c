package auctions

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrNotFound is returned by repositories when no auction has the requested id
var ErrNotFound = errors.New("auction not found")

// Service serves auction reads
type Service struct {
	repo Repository
}

// NewService creates a new auction service
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// GetAuction retrieves an auction by ID
func (s *Service) GetAuction(ctx context.Context, auctionID uuid.UUID) (*Auction, error) {
	auction, err := s.repo.GetAuctionByID(ctx, auctionID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get auction: %w", err)
	}
	return auction, nil
}
