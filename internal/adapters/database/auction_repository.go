package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/floroz/hammer/internal/domain/auctions"
	pkgdb "github.com/floroz/hammer/pkg/database"
)

// PostgresAuctionRepository implements bids.AuctionRepository and auctions.Repository
type PostgresAuctionRepository struct {
	pool *pgxpool.Pool // Keep pool for non-transactional reads
}

// NewPostgresAuctionRepository creates a new PostgreSQL auction repository
func NewPostgresAuctionRepository(pool *pgxpool.Pool) *PostgresAuctionRepository {
	return &PostgresAuctionRepository{pool: pool}
}

// GetAuctionByID retrieves an auction by its ID (non-transactional read)
func (r *PostgresAuctionRepository) GetAuctionByID(ctx context.Context, auctionID uuid.UUID) (*auctions.Auction, error) {
	return r.getAuctionByID(ctx, r.pool, auctionID, false)
}

// GetAuctionByIDForUpdate locks the auction row until tx ends.
// The wait is bounded by the lock_timeout set by the transaction manager.
func (r *PostgresAuctionRepository) GetAuctionByIDForUpdate(ctx context.Context, tx pgx.Tx, auctionID uuid.UUID) (*auctions.Auction, error) {
	return r.getAuctionByID(ctx, tx, auctionID, true)
}

func (r *PostgresAuctionRepository) getAuctionByID(ctx context.Context, db pkgdb.DBTX, auctionID uuid.UUID, forUpdate bool) (*auctions.Auction, error) {
	query := `
		SELECT id, creator_id, title, description, status::text, start_at, end_at,
		       current_highest_bid, reserve_price, bid_increment, created_at, updated_at
		FROM auctions
		WHERE id = $1
	`
	if forUpdate {
		query += " FOR UPDATE"
	}

	var a auctions.Auction
	err := db.QueryRow(ctx, query, auctionID).Scan(
		&a.ID,
		&a.CreatorID,
		&a.Title,
		&a.Description,
		&a.Status,
		&a.StartAt,
		&a.EndAt,
		&a.CurrentHighestBid,
		&a.ReservePrice,
		&a.BidIncrement,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, auctions.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get auction: %w", err)
	}
	return &a, nil
}

// SaveAuction writes the fields the bid path owns
func (r *PostgresAuctionRepository) SaveAuction(ctx context.Context, tx pgx.Tx, auction *auctions.Auction) error {
	query := `
		UPDATE auctions
		SET current_highest_bid = $1, end_at = $2, updated_at = $3
		WHERE id = $4
	`
	result, err := tx.Exec(ctx, query,
		auction.CurrentHighestBid,
		auction.EndAt,
		auction.UpdatedAt,
		auction.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update auction: %w", err)
	}

	if result.RowsAffected() == 0 {
		return auctions.ErrNotFound
	}

	return nil
}
