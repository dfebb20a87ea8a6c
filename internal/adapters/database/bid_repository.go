package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/floroz/hammer/internal/domain/bids"
)

const bidColumns = "id, auction_id, bidder_id, amount, bid_time"

// PostgresBidRepository implements bids.BidRepository using pgx.
// The bids table rejects UPDATE and DELETE through a trigger.
type PostgresBidRepository struct {
	pool *pgxpool.Pool // Keep pool for read-only operations
}

// NewPostgresBidRepository creates a new PostgreSQL bid repository
func NewPostgresBidRepository(pool *pgxpool.Pool) *PostgresBidRepository {
	return &PostgresBidRepository{pool: pool}
}

// AppendBid inserts a bid within a transaction
func (r *PostgresBidRepository) AppendBid(ctx context.Context, tx pgx.Tx, bid *bids.Bid) error {
	query := `
		INSERT INTO bids (id, auction_id, bidder_id, amount, bid_time)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := tx.Exec(ctx, query,
		bid.ID,
		bid.AuctionID,
		bid.BidderID,
		bid.Amount,
		bid.BidTime,
	)
	if err != nil {
		return fmt.Errorf("failed to insert bid: %w", err)
	}
	return nil
}

// FindTopBid reads the highest bid through tx so it sees the locked auction's latest state
func (r *PostgresBidRepository) FindTopBid(ctx context.Context, tx pgx.Tx, auctionID uuid.UUID) (*bids.Bid, error) {
	query := `
		SELECT ` + bidColumns + `
		FROM bids
		WHERE auction_id = $1
		ORDER BY amount DESC, bid_time ASC
		LIMIT 1
	`
	bid, err := scanBid(tx.QueryRow(ctx, query, auctionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get top bid: %w", err)
	}
	return bid, nil
}

// GetBidByID retrieves a bid by its ID
func (r *PostgresBidRepository) GetBidByID(ctx context.Context, bidID uuid.UUID) (*bids.Bid, error) {
	query := `SELECT ` + bidColumns + ` FROM bids WHERE id = $1`
	bid, err := scanBid(r.pool.QueryRow(ctx, query, bidID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, bids.ErrBidNotFound
		}
		return nil, fmt.Errorf("failed to get bid: %w", err)
	}
	return bid, nil
}

// ListBids runs a filtered, paginated ledger query
func (r *PostgresBidRepository) ListBids(ctx context.Context, q bids.ListBidsQuery) ([]*bids.Bid, error) {
	query, args := buildListBidsQuery(q)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bids: %w", err)
	}
	defer rows.Close()

	result := make([]*bids.Bid, 0)
	for rows.Next() {
		bid, err := scanBid(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bid: %w", err)
		}
		result = append(result, bid)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating bids: %w", err)
	}

	return result, nil
}

func buildListBidsQuery(q bids.ListBidsQuery) (string, []any) {
	var (
		where []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}

	if q.AuctionID != uuid.Nil {
		add("auction_id = $%d", q.AuctionID)
	}
	if q.BidderID != uuid.Nil {
		add("bidder_id = $%d", q.BidderID)
	}
	if !q.From.IsZero() {
		add("bid_time >= $%d", q.From)
	}
	if !q.To.IsZero() {
		add("bid_time <= $%d", q.To)
	}
	if q.MinAmount.Valid {
		add("amount >= $%d", q.MinAmount.Decimal)
	}
	if q.MaxAmount.Valid {
		add("amount <= $%d", q.MaxAmount.Decimal)
	}

	dir := "DESC"
	if q.Ascending {
		dir = "ASC"
	}
	order := "bid_time " + dir + ", id " + dir
	if q.SortBy == bids.SortByAmount {
		order = "amount " + dir + ", bid_time " + dir + ", id " + dir
	}

	var sb strings.Builder
	sb.WriteString("SELECT " + bidColumns + " FROM bids")
	if len(where) > 0 {
		sb.WriteString(" WHERE " + strings.Join(where, " AND "))
	}
	sb.WriteString(" ORDER BY " + order)

	args = append(args, q.Limit)
	fmt.Fprintf(&sb, " LIMIT $%d", len(args))
	args = append(args, q.Offset)
	fmt.Fprintf(&sb, " OFFSET $%d", len(args))

	return sb.String(), args
}

func scanBid(row pgx.Row) (*bids.Bid, error) {
	var bid bids.Bid
	if err := row.Scan(
		&bid.ID,
		&bid.AuctionID,
		&bid.BidderID,
		&bid.Amount,
		&bid.BidTime,
	); err != nil {
		return nil, err
	}
	return &bid, nil
}
