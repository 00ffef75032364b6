package service

import (
	"context"

	"github.com/bank-reconciliation-engine/internal/domain/banktxn"
	"github.com/bank-reconciliation-engine/internal/domain/reconciliation"
	"github.com/bank-reconciliation-engine/internal/domain/rule"
	"github.com/bank-reconciliation-engine/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type MockPassRepository struct {
	mock.Mock
}

func (m *MockPassRepository) Create(ctx context.Context, pass *reconciliation.Pass) error {
	args := m.Called(ctx, pass)
	return args.Error(0)
}

func (m *MockPassRepository) GetByID(ctx context.Context, id uuid.UUID) (*reconciliation.Pass, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reconciliation.Pass), args.Error(1)
}

func (m *MockPassRepository) Update(ctx context.Context, pass *reconciliation.Pass) error {
	args := m.Called(ctx, pass)
	return args.Error(0)
}

func (m *MockPassRepository) ListByBankAccount(ctx context.Context, bankAccount string, limit, offset int) ([]*reconciliation.Pass, error) {
	args := m.Called(ctx, bankAccount, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*reconciliation.Pass), args.Error(1)
}

type MockPassRequestPublisher struct {
	mock.Mock
}

func (m *MockPassRequestPublisher) PublishPassRequest(ctx context.Context, request *shared.PassRequest) error {
	args := m.Called(ctx, request)
	return args.Error(0)
}

func (m *MockPassRequestPublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}

type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) ListTransactions(ctx context.Context, bankAccount string, dateRange banktxn.DateRange) ([]*banktxn.Transaction, error) {
	args := m.Called(ctx, bankAccount, dateRange)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*banktxn.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) GetByID(ctx context.Context, id uuid.UUID) (*banktxn.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*banktxn.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status shared.ReconciliationStatus, voucher *banktxn.Voucher) error {
	args := m.Called(ctx, id, status, voucher)
	return args.Error(0)
}

func (m *MockTransactionRepository) UpdateCategorization(ctx context.Context, id uuid.UUID, categorization *banktxn.Categorization) error {
	args := m.Called(ctx, id, categorization)
	return args.Error(0)
}

func (m *MockTransactionRepository) WithTx(tx pgx.Tx) banktxn.Repository {
	return m
}

type MockProposalRepository struct {
	mock.Mock
}

func (m *MockProposalRepository) Replace(ctx context.Context, set *reconciliation.ProposalSet) error {
	args := m.Called(ctx, set)
	return args.Error(0)
}

func (m *MockProposalRepository) GetByTransactionID(ctx context.Context, transactionID uuid.UUID) (*reconciliation.ProposalSet, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reconciliation.ProposalSet), args.Error(1)
}

func (m *MockProposalRepository) Clear(ctx context.Context, transactionID uuid.UUID) error {
	args := m.Called(ctx, transactionID)
	return args.Error(0)
}

type MockRuleRepository struct {
	mock.Mock
}

func (m *MockRuleRepository) ListRules(ctx context.Context) ([]*rule.Rule, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*rule.Rule), args.Error(1)
}

func (m *MockRuleRepository) Create(ctx context.Context, r *rule.Rule) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockRuleRepository) GetByID(ctx context.Context, id uuid.UUID) (*rule.Rule, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rule.Rule), args.Error(1)
}

func (m *MockRuleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRuleRepository) RecordMatch(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error {
	args := m.Called(ctx, id, amount)
	return args.Error(0)
}

type MockStatusWriter struct {
	mock.Mock
}

func (m *MockStatusWriter) WriteStatus(ctx context.Context, change *banktxn.StatusChange) error {
	args := m.Called(ctx, change)
	return args.Error(0)
}
