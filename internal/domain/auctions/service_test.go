package auctions

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockRepository is a mock implementation of Repository for testing
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) GetAuctionByID(ctx context.Context, auctionID uuid.UUID) (*Auction, error) {
	args := m.Called(ctx, auctionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Auction), args.Error(1)
}

func TestService_GetAuction(t *testing.T) {
	auctionID := uuid.New()

	tests := []struct {
		name      string
		setupMock func(*MockRepository)
		wantErr   error
		wantAny   bool
	}{
		{
			name: "found",
			setupMock: func(repo *MockRepository) {
				repo.On("GetAuctionByID", mock.Anything, auctionID).
					Return(&Auction{ID: auctionID, Status: StatusActive}, nil)
			},
		},
		{
			name: "not found",
			setupMock: func(repo *MockRepository) {
				repo.On("GetAuctionByID", mock.Anything, auctionID).
					Return(nil, ErrNotFound)
			},
			wantErr: ErrNotFound,
		},
		{
			name: "repository failure is wrapped",
			setupMock: func(repo *MockRepository) {
				repo.On("GetAuctionByID", mock.Anything, auctionID).
					Return(nil, errors.New("connection reset"))
			},
			wantAny: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepository)
			tt.setupMock(repo)
			svc := NewService(repo)

			auction, err := svc.GetAuction(context.Background(), auctionID)

			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, auction)
			case tt.wantAny:
				require.Error(t, err)
				assert.NotErrorIs(t, err, ErrNotFound)
				assert.Contains(t, err.Error(), "connection reset")
			default:
				require.NoError(t, err)
				assert.Equal(t, auctionID, auction.ID)
			}
			repo.AssertExpectations(t)
		})
	}
}
