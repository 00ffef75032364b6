package service

import (
	"context"

	"github.com/bank-reconciliation-engine/internal/domain/banktxn"
	"github.com/bank-reconciliation-engine/internal/domain/candidate"
	"github.com/bank-reconciliation-engine/internal/domain/reconciliation"
	"github.com/bank-reconciliation-engine/internal/domain/rule"
	"github.com/bank-reconciliation-engine/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type MockStatusWriter struct {
	mock.Mock
}

func (m *MockStatusWriter) WriteStatus(ctx context.Context, change *banktxn.StatusChange) error {
	args := m.Called(ctx, change)
	return args.Error(0)
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

type MockRuleStatsRecorder struct {
	mock.Mock
}

func (m *MockRuleStatsRecorder) RecordMatch(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error {
	args := m.Called(ctx, id, amount)
	return args.Error(0)
}

type MockPoolProvider struct {
	mock.Mock
}

func (m *MockPoolProvider) Pool(ctx context.Context, direction shared.TransactionType) ([]*candidate.Document, error) {
	args := m.Called(ctx, direction)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*candidate.Document), args.Error(1)
}

type MockMatcher struct {
	mock.Mock
}

func (m *MockMatcher) FindCandidates(txn *banktxn.Transaction, pool []*candidate.Document) ([]reconciliation.MatchProposal, error) {
	args := m.Called(txn, pool)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]reconciliation.MatchProposal), args.Error(1)
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

type MockPoolProviderFactory struct {
	mock.Mock
}

func (m *MockPoolProviderFactory) NewProvider(ctx context.Context, txns []*banktxn.Transaction) CandidatePoolProvider {
	args := m.Called(ctx, txns)
	return args.Get(0).(CandidatePoolProvider)
}

type MockPassService struct {
	mock.Mock
}

func (m *MockPassService) RunPass(ctx context.Context, request *shared.PassRequest) error {
	args := m.Called(ctx, request)
	return args.Error(0)
}
