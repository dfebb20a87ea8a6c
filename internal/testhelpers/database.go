package testhelpers

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/floroz/hammer/internal/domain/auctions"
	"github.com/floroz/hammer/migrations"
	pkgdb "github.com/floroz/hammer/pkg/database"
)

// TestDatabase represents a test database with connection pool and cleanup function
type TestDatabase struct {
	Pool    *pgxpool.Pool
	cleanup func()
}

// Close cleans up the test database and terminates the container
func (db *TestDatabase) Close() {
	if db.cleanup != nil {
		db.cleanup()
	}
}

// NewTestDatabase starts a PostgreSQL container and applies the embedded migrations
func NewTestDatabase(t *testing.T) *TestDatabase {
	t.Helper()

	ctx := context.Background()

	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	require.NoError(t, err, "Failed to start postgres container")

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "Failed to get connection string")

	pool, err := pkgdb.Connect(ctx, connStr)
	require.NoError(t, err, "Failed to create connection pool")

	require.NoError(t, pkgdb.Migrate(pool, migrations.FS), "Failed to run migrations")

	cleanup := func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	}

	return &TestDatabase{
		Pool:    pool,
		cleanup: cleanup,
	}
}

// CleanDatabase truncates all tables to reset state between tests.
// TRUNCATE does not fire the append-only row trigger on bids.
func CleanDatabase(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	_, err := pool.Exec(context.Background(),
		"TRUNCATE TABLE bids, auctions, outbox_events, notifications, processed_events CASCADE")
	require.NoError(t, err, "Failed to truncate tables")
}

// SeedAuction inserts a as-is
func SeedAuction(t *testing.T, pool *pgxpool.Pool, a *auctions.Auction) {
	t.Helper()

	query := `
		INSERT INTO auctions (id, creator_id, title, description, status, start_at, end_at,
		                      current_highest_bid, reserve_price, bid_increment, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5::auction_status, $6, $7, $8, $9, $10, $11, $12)
	`
	now := time.Now()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	if a.UpdatedAt.IsZero() {
		a.UpdatedAt = now
	}
	_, err := pool.Exec(context.Background(), query,
		a.ID,
		a.CreatorID,
		a.Title,
		a.Description,
		string(a.Status),
		a.StartAt,
		a.EndAt,
		a.CurrentHighestBid,
		a.ReservePrice,
		a.BidIncrement,
		a.CreatedAt,
		a.UpdatedAt,
	)
	require.NoError(t, err, "Failed to seed auction")
}
