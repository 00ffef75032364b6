package components

import (
	"context"

	"github.com/bank-reconciliation-engine/internal/domain/banktxn"
	"github.com/bank-reconciliation-engine/internal/domain/candidate"
	"github.com/bank-reconciliation-engine/internal/domain/outbox"
	"github.com/bank-reconciliation-engine/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockTxExecutor runs fn with a nil transaction; repositories are mocked anyway
type MockTxExecutor struct {
	mock.Mock
}

func (m *MockTxExecutor) ExecuteTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	args := m.Called(ctx)
	if err := args.Error(0); err != nil {
		return err
	}
	return fn(nil)
}

type MockTransactionRepo struct {
	mock.Mock
}

func (m *MockTransactionRepo) ListTransactions(ctx context.Context, bankAccount string, dateRange banktxn.DateRange) ([]*banktxn.Transaction, error) {
	args := m.Called(ctx, bankAccount, dateRange)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*banktxn.Transaction), args.Error(1)
}

func (m *MockTransactionRepo) GetByID(ctx context.Context, id uuid.UUID) (*banktxn.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*banktxn.Transaction), args.Error(1)
}

func (m *MockTransactionRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status shared.ReconciliationStatus, voucher *banktxn.Voucher) error {
	args := m.Called(ctx, id, status, voucher)
	return args.Error(0)
}

func (m *MockTransactionRepo) UpdateCategorization(ctx context.Context, id uuid.UUID, categorization *banktxn.Categorization) error {
	args := m.Called(ctx, id, categorization)
	return args.Error(0)
}

func (m *MockTransactionRepo) WithTx(tx pgx.Tx) banktxn.Repository {
	return m
}

type MockCandidateRepo struct {
	mock.Mock
}

func (m *MockCandidateRepo) ListOutstanding(ctx context.Context, direction shared.TransactionType, amountRange candidate.AmountRange) ([]*candidate.Document, error) {
	args := m.Called(ctx, direction, amountRange)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*candidate.Document), args.Error(1)
}

func (m *MockCandidateRepo) ReduceOutstanding(ctx context.Context, documentID string, amount decimal.Decimal) error {
	args := m.Called(ctx, documentID, amount)
	return args.Error(0)
}

func (m *MockCandidateRepo) WithTx(tx pgx.Tx) candidate.Repository {
	return m
}

type MockOutboxRepo struct {
	mock.Mock
}

func (m *MockOutboxRepo) Create(ctx context.Context, message *outbox.Message) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}

func (m *MockOutboxRepo) GetPending(ctx context.Context, limit int) ([]*outbox.Message, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*outbox.Message), args.Error(1)
}

func (m *MockOutboxRepo) UpdateStatus(ctx context.Context, id int64, status shared.OutboxStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockOutboxRepo) IncrementAttempts(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockOutboxRepo) WithTx(tx pgx.Tx) outbox.Repository {
	return m
}
