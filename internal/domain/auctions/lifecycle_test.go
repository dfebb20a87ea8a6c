package auctions

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var allStatuses = []Status{
	StatusDraft, StatusPending, StatusActive, StatusStarted,
	StatusCompleted, StatusCancelled, StatusExpired, StatusFailed,
}

func TestStatus_AcceptsBids(t *testing.T) {
	for _, s := range allStatuses {
		t.Run(s.String(), func(t *testing.T) {
			want := s == StatusActive || s == StatusStarted
			assert.Equal(t, want, s.AcceptsBids())
		})
	}

	assert.False(t, Status("DELETED").AcceptsBids())
}

func TestStatus_IsValid(t *testing.T) {
	for _, s := range allStatuses {
		assert.True(t, s.IsValid(), s)
	}
	assert.False(t, Status("").IsValid())
	assert.False(t, Status("active").IsValid(), "statuses are upper case")
}

func TestStatus_IsTerminal(t *testing.T) {
	terminal := map[Status]bool{
		StatusCompleted: true,
		StatusCancelled: true,
		StatusExpired:   true,
		StatusFailed:    true,
	}
	for _, s := range allStatuses {
		assert.Equal(t, terminal[s], s.IsTerminal(), s)
	}
	assert.False(t, Status("bogus").IsTerminal())
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from Status
		to   Status
		want bool
	}{
		{StatusDraft, StatusPending, true},
		{StatusDraft, StatusActive, false},
		{StatusPending, StatusActive, true},
		{StatusPending, StatusStarted, false},
		{StatusPending, StatusCancelled, true},
		{StatusActive, StatusStarted, true},
		{StatusActive, StatusCompleted, true},
		{StatusActive, StatusExpired, true},
		{StatusActive, StatusFailed, true},
		{StatusActive, StatusPending, false},
		{StatusStarted, StatusActive, false},
		{StatusStarted, StatusCompleted, true},
		{StatusCompleted, StatusActive, false},
		{StatusCancelled, StatusPending, false},
		{StatusExpired, StatusCompleted, false},
		{StatusActive, StatusActive, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.to))

			err := ValidateTransition(tt.from, tt.to)
			if tt.want {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidTransition)
			}
		})
	}
}

func TestCanTransition_TerminalStatesHaveNoExit(t *testing.T) {
	for _, from := range allStatuses {
		if !from.IsTerminal() {
			continue
		}
		for _, to := range allStatuses {
			assert.False(t, CanTransition(from, to), "%s -> %s", from, to)
		}
	}
}

func TestAuction_CheckBiddable(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		auction Auction
		wantErr error
	}{
		{
			name:    "active inside window",
			auction: Auction{Status: StatusActive, StartAt: now.Add(-time.Hour), EndAt: now.Add(time.Hour)},
		},
		{
			name:    "started inside window",
			auction: Auction{Status: StatusStarted, StartAt: now.Add(-time.Hour), EndAt: now.Add(time.Minute)},
		},
		{
			name:    "active before start",
			auction: Auction{Status: StatusActive, StartAt: now.Add(time.Minute), EndAt: now.Add(time.Hour)},
		},
		{
			name:    "active after deadline",
			auction: Auction{Status: StatusActive, StartAt: now.Add(-time.Hour), EndAt: now.Add(-time.Minute)},
		},
		{
			name:    "pending",
			auction: Auction{Status: StatusPending, StartAt: now.Add(-time.Hour), EndAt: now.Add(time.Hour)},
			wantErr: ErrNotAcceptingBids,
		},
		{
			name:    "completed",
			auction: Auction{Status: StatusCompleted, StartAt: now.Add(-time.Hour), EndAt: now.Add(time.Hour)},
			wantErr: ErrNotAcceptingBids,
		},
		{
			name:    "expired",
			auction: Auction{Status: StatusExpired, StartAt: now.Add(-time.Hour), EndAt: now.Add(-time.Hour)},
			wantErr: ErrNotAcceptingBids,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.auction.CheckBiddable()
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}
