package service

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/bank-reconciliation-engine/internal/domain/banktxn"
	"github.com/bank-reconciliation-engine/internal/domain/candidate"
	"github.com/bank-reconciliation-engine/internal/domain/reconciliation"
	"github.com/bank-reconciliation-engine/internal/domain/rule"
	"github.com/bank-reconciliation-engine/internal/domain/shared"
	"github.com/bank-reconciliation-engine/internal/reconciliation_processor/engine"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type transactionServiceMocks struct {
	transactions *MockTransactionRepository
	proposals    *MockProposalRepository
	rules        *MockRuleRepository
	writer       *MockStatusWriter
}

func newTransactionServiceForTest() (TransactionService, transactionServiceMocks) {
	m := transactionServiceMocks{
		transactions: &MockTransactionRepository{},
		proposals:    &MockProposalRepository{},
		rules:        &MockRuleRepository{},
		writer:       &MockStatusWriter{},
	}
	svc := NewTransactionService(slog.Default(), m.transactions, m.proposals, m.rules, m.writer, engine.NewCategorizer(1))
	return svc, m
}

func suggestedTransaction() *banktxn.Transaction {
	return &banktxn.Transaction{
		ID:          uuid.New(),
		BankAccount: "DE-MAIN",
		Date:        time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Description: "ACME payment",
		Deposit:     decimal.NewFromInt(100),
		Status:      shared.StatusSuggested,
	}
}

func TestTransactionService_GetTransaction(t *testing.T) {
	ctx := context.Background()
	svc, m := newTransactionServiceForTest()
	id := uuid.New()

	m.transactions.On("GetByID", ctx, id).Return(nil, banktxn.ErrTransactionNotFound{TransactionID: id}).Once()

	txn, err := svc.GetTransaction(ctx, id)
	assert.NoError(t, err)
	assert.Nil(t, txn)
}

func TestTransactionService_GetProposals(t *testing.T) {
	ctx := context.Background()
	svc, m := newTransactionServiceForTest()
	id := uuid.New()

	m.proposals.On("GetByTransactionID", ctx, id).Return(nil, reconciliation.ErrProposalsNotFound{TransactionID: id}).Once()

	set, err := svc.GetProposals(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, set.TransactionID)
	assert.Empty(t, set.Proposals)
	assert.NotNil(t, set.Proposals)
}

func TestTransactionService_AcceptProposal(t *testing.T) {
	ctx := context.Background()

	t.Run("ReconcilesAgainstProposedDocument", func(t *testing.T) {
		svc, m := newTransactionServiceForTest()
		txn := suggestedTransaction()
		set := &reconciliation.ProposalSet{
			TransactionID: txn.ID,
			Proposals: []reconciliation.MatchProposal{
				{DocumentID: "INV-1", DocumentType: shared.DocumentTypeReceivable, Outstanding: decimal.NewFromInt(100), Rank: 1},
				{DocumentID: "INV-2", DocumentType: shared.DocumentTypeReceivable, Outstanding: decimal.NewFromInt(95), Rank: 2},
			},
		}

		m.transactions.On("GetByID", ctx, txn.ID).Return(txn, nil).Once()
		m.proposals.On("GetByTransactionID", ctx, txn.ID).Return(set, nil).Once()
		m.writer.On("WriteStatus", ctx, mock.MatchedBy(func(c *banktxn.StatusChange) bool {
			return c.Status == shared.StatusReconciled &&
				c.Voucher.ID == "INV-2" &&
				c.Voucher.Type == "RECEIVABLE" &&
				c.Voucher.Amount.Equal(decimal.NewFromInt(95))
		})).Return(nil).Once()
		m.proposals.On("Clear", ctx, txn.ID).Return(nil).Once()

		got, err := svc.AcceptProposal(ctx, txn.ID, "INV-2")
		require.NoError(t, err)
		assert.Equal(t, shared.StatusReconciled, got.Status)
		require.NotNil(t, got.Voucher)
		assert.Equal(t, "INV-2", got.Voucher.ID)
		m.writer.AssertExpectations(t)
		m.proposals.AssertExpectations(t)
	})

	t.Run("NotSuggested", func(t *testing.T) {
		svc, m := newTransactionServiceForTest()
		txn := suggestedTransaction()
		txn.Status = shared.StatusUnreconciled
		m.transactions.On("GetByID", ctx, txn.ID).Return(txn, nil).Once()

		_, err := svc.AcceptProposal(ctx, txn.ID, "INV-1")
		assert.ErrorIs(t, err, ErrProposalConflict{})
		m.writer.AssertNotCalled(t, "WriteStatus", mock.Anything, mock.Anything)
	})

	t.Run("DocumentNotProposed", func(t *testing.T) {
		svc, m := newTransactionServiceForTest()
		txn := suggestedTransaction()
		m.transactions.On("GetByID", ctx, txn.ID).Return(txn, nil).Once()
		m.proposals.On("GetByTransactionID", ctx, txn.ID).Return(&reconciliation.ProposalSet{TransactionID: txn.ID}, nil).Once()

		_, err := svc.AcceptProposal(ctx, txn.ID, "INV-9")
		assert.ErrorIs(t, err, ErrProposalConflict{TransactionID: txn.ID})
		assert.Contains(t, err.Error(), "INV-9 was not proposed")
	})

	t.Run("NoStoredProposals", func(t *testing.T) {
		svc, m := newTransactionServiceForTest()
		txn := suggestedTransaction()
		m.transactions.On("GetByID", ctx, txn.ID).Return(txn, nil).Once()
		m.proposals.On("GetByTransactionID", ctx, txn.ID).Return(nil, reconciliation.ErrProposalsNotFound{TransactionID: txn.ID}).Once()

		_, err := svc.AcceptProposal(ctx, txn.ID, "INV-1")
		assert.ErrorIs(t, err, ErrProposalConflict{})
	})

	t.Run("WriteFailureLeavesTransactionSuggested", func(t *testing.T) {
		svc, m := newTransactionServiceForTest()
		txn := suggestedTransaction()
		set := &reconciliation.ProposalSet{
			TransactionID: txn.ID,
			Proposals:     []reconciliation.MatchProposal{{DocumentID: "INV-1", DocumentType: shared.DocumentTypeReceivable, Outstanding: decimal.NewFromInt(100)}},
		}
		writeErr := errors.New("serialization failure")

		m.transactions.On("GetByID", ctx, txn.ID).Return(txn, nil).Once()
		m.proposals.On("GetByTransactionID", ctx, txn.ID).Return(set, nil).Once()
		m.writer.On("WriteStatus", ctx, mock.Anything).Return(writeErr).Once()

		_, err := svc.AcceptProposal(ctx, txn.ID, "INV-1")
		assert.ErrorIs(t, err, writeErr)
		assert.Equal(t, shared.StatusSuggested, txn.Status)
		m.proposals.AssertNotCalled(t, "Clear", mock.Anything, mock.Anything)
	})

	t.Run("DocumentSettledSinceProposal", func(t *testing.T) {
		svc, m := newTransactionServiceForTest()
		txn := suggestedTransaction()
		txn.Deposit = decimal.Zero
		txn.Withdrawal = decimal.NewFromInt(96)
		set := &reconciliation.ProposalSet{
			TransactionID: txn.ID,
			Proposals: []reconciliation.MatchProposal{
				{DocumentID: "PINV-X", DocumentType: shared.DocumentTypePayable, Outstanding: decimal.NewFromInt(100), Rank: 1},
				{DocumentID: "PINV-Y", DocumentType: shared.DocumentTypePayable, Outstanding: decimal.NewFromInt(92), Rank: 2},
			},
		}

		m.transactions.On("GetByID", ctx, txn.ID).Return(txn, nil).Once()
		m.proposals.On("GetByTransactionID", ctx, txn.ID).Return(set, nil).Once()
		m.writer.On("WriteStatus", ctx, mock.MatchedBy(func(c *banktxn.StatusChange) bool {
			return c.Voucher.ID == "PINV-X" && c.Voucher.Amount.Equal(decimal.NewFromInt(96))
		})).Return(candidate.ErrInsufficientOutstanding{DocumentID: "PINV-X", Requested: decimal.NewFromInt(96)}).Once()

		got, err := svc.AcceptProposal(ctx, txn.ID, "PINV-X")
		assert.Nil(t, got)
		assert.ErrorIs(t, err, ErrProposalConflict{TransactionID: txn.ID})
		assert.Contains(t, err.Error(), "PINV-X no longer has enough outstanding")
		assert.Equal(t, shared.StatusSuggested, txn.Status)
		assert.Nil(t, txn.Voucher)
		m.proposals.AssertNotCalled(t, "Clear", mock.Anything, mock.Anything)
	})
}

func TestTransactionService_PreviewCategorization(t *testing.T) {
	ctx := context.Background()
	svc, m := newTransactionServiceForTest()

	txn := &banktxn.Transaction{
		ID:          uuid.New(),
		Description: "UBER *TRIP 1234",
		Withdrawal:  decimal.RequireFromString("23.40"),
		Status:      shared.StatusUnreconciled,
	}
	travel, err := rule.NewRule(rule.Params{
		Pattern:       "uber",
		TargetAccount: "Travel Expenses",
		AutoReconcile: true,
		Active:        true,
	})
	require.NoError(t, err)

	m.transactions.On("GetByID", ctx, txn.ID).Return(txn, nil).Once()
	m.rules.On("ListRules", ctx).Return([]*rule.Rule{travel}, nil).Once()

	result, err := svc.PreviewCategorization(ctx, txn.ID)
	require.NoError(t, err)
	assert.True(t, result.Matched())
	assert.Equal(t, "Travel Expenses", result.ProposedAccount)
	assert.True(t, result.ShouldAutoReconcile)
	assert.Equal(t, shared.StatusUnreconciled, txn.Status)
	m.writer.AssertNotCalled(t, "WriteStatus", mock.Anything, mock.Anything)
}
