package bids

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListBidsQuery_Normalize(t *testing.T) {
	auctionID := uuid.New()
	t0 := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		query   ListBidsQuery
		wantErr bool
		check   func(t *testing.T, q ListBidsQuery)
	}{
		{
			name:    "requires auction or bidder",
			query:   ListBidsQuery{},
			wantErr: true,
		},
		{
			name:  "defaults",
			query: ListBidsQuery{AuctionID: auctionID},
			check: func(t *testing.T, q ListBidsQuery) {
				assert.Equal(t, SortByTime, q.SortBy)
				assert.Equal(t, defaultListLimit, q.Limit)
			},
		},
		{
			name:  "limit is capped",
			query: ListBidsQuery{BidderID: uuid.New(), Limit: 5000},
			check: func(t *testing.T, q ListBidsQuery) {
				assert.Equal(t, maxListLimit, q.Limit)
			},
		},
		{
			name:    "unknown sort field",
			query:   ListBidsQuery{AuctionID: auctionID, SortBy: "bidder_id"},
			wantErr: true,
		},
		{
			name:    "inverted time range",
			query:   ListBidsQuery{AuctionID: auctionID, From: t0, To: t0.Add(-time.Hour)},
			wantErr: true,
		},
		{
			name: "inverted amount range",
			query: ListBidsQuery{
				AuctionID: auctionID,
				MinAmount: decimal.NewNullDecimal(decimal.NewFromInt(10)),
				MaxAmount: decimal.NewNullDecimal(decimal.NewFromInt(5)),
			},
			wantErr: true,
		},
		{
			name:    "negative offset",
			query:   ListBidsQuery{AuctionID: auctionID, Offset: -1},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := tt.query
			err := q.Normalize()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidQuery)
				return
			}
			require.NoError(t, err)
			if tt.check != nil {
				tt.check(t, q)
			}
		})
	}
}

func TestListBidsQuery_Matches(t *testing.T) {
	auctionID, bidderID := uuid.New(), uuid.New()
	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	bid := &Bid{
		ID:        uuid.New(),
		AuctionID: auctionID,
		BidderID:  bidderID,
		Amount:    decimal.NewFromInt(100),
		BidTime:   t0,
	}

	tests := []struct {
		name  string
		query ListBidsQuery
		want  bool
	}{
		{"auction match", ListBidsQuery{AuctionID: auctionID}, true},
		{"other auction", ListBidsQuery{AuctionID: uuid.New()}, false},
		{"bidder match", ListBidsQuery{BidderID: bidderID}, true},
		{"other bidder", ListBidsQuery{AuctionID: auctionID, BidderID: uuid.New()}, false},
		{"inside time range", ListBidsQuery{AuctionID: auctionID, From: t0.Add(-time.Minute), To: t0}, true},
		{"before range", ListBidsQuery{AuctionID: auctionID, From: t0.Add(time.Second)}, false},
		{"after range", ListBidsQuery{AuctionID: auctionID, To: t0.Add(-time.Second)}, false},
		{"min amount inclusive", ListBidsQuery{AuctionID: auctionID, MinAmount: decimal.NewNullDecimal(decimal.NewFromInt(100))}, true},
		{"below min", ListBidsQuery{AuctionID: auctionID, MinAmount: decimal.NewNullDecimal(decimal.NewFromInt(101))}, false},
		{"above max", ListBidsQuery{AuctionID: auctionID, MaxAmount: decimal.NewNullDecimal(decimal.NewFromInt(99))}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.query.Matches(bid))
		})
	}
}
