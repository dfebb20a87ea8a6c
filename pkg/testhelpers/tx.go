package testhelpers

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"
)

// MockTx is a pgx.Tx whose Commit and Rollback are recorded by testify.
// Any other pgx.Tx method panics; repositories are mocked alongside it.
type MockTx struct {
	pgx.Tx
	mock.Mock
}

func (m *MockTx) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockTx) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockTxManager hands out a fixed MockTx
type MockTxManager struct {
	mock.Mock
}

func (m *MockTxManager) BeginTx(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pgx.Tx), args.Error(1)
}

// NewMockTx returns a MockTx and a manager that begins it once.
// Rollback is allowed any number of times since callers defer it after Commit.
func NewMockTx() (*MockTx, *MockTxManager) {
	tx := new(MockTx)
	tx.On("Rollback", mock.Anything).Return(nil).Maybe()

	txManager := new(MockTxManager)
	txManager.On("BeginTx", mock.Anything).Return(tx, nil)
	return tx, txManager
}
