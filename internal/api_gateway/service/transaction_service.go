package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bank-reconciliation-engine/internal/domain/banktxn"
	"github.com/bank-reconciliation-engine/internal/domain/candidate"
	"github.com/bank-reconciliation-engine/internal/domain/reconciliation"
	"github.com/bank-reconciliation-engine/internal/domain/rule"
	"github.com/bank-reconciliation-engine/internal/domain/shared"
	"github.com/bank-reconciliation-engine/internal/reconciliation_processor/engine"
	processor "github.com/bank-reconciliation-engine/internal/reconciliation_processor/service"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionServiceImpl implements the TransactionService interface
type TransactionServiceImpl struct {
	transactions banktxn.Repository
	proposals    reconciliation.ProposalRepository
	rules        rule.Repository
	writer       processor.StatusWriter
	categorizer  Categorizer
	logger       *slog.Logger
}

func NewTransactionService(
	logger *slog.Logger,
	transactions banktxn.Repository,
	proposals reconciliation.ProposalRepository,
	rules rule.Repository,
	writer processor.StatusWriter,
	categorizer Categorizer,
) TransactionService {
	return &TransactionServiceImpl{
		transactions: transactions,
		proposals:    proposals,
		rules:        rules,
		writer:       writer,
		categorizer:  categorizer,
		logger:       logger,
	}
}

func (s *TransactionServiceImpl) ListTransactions(ctx context.Context, bankAccount string, dateRange banktxn.DateRange) ([]*banktxn.Transaction, error) {
	return s.transactions.ListTransactions(ctx, bankAccount, dateRange)
}

// GetTransaction returns nil if not found
func (s *TransactionServiceImpl) GetTransaction(ctx context.Context, id uuid.UUID) (*banktxn.Transaction, error) {
	txn, err := s.transactions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, banktxn.ErrTransactionNotFound{}) {
			s.logger.Info("Transaction not found", "transaction_id", id.String())
			return nil, nil
		}
		s.logger.Error("Failed to get transaction", "transaction_id", id.String(), "error", err)
		return nil, err
	}
	return txn, nil
}

func (s *TransactionServiceImpl) GetProposals(ctx context.Context, id uuid.UUID) (*reconciliation.ProposalSet, error) {
	set, err := s.proposals.GetByTransactionID(ctx, id)
	if err != nil {
		if errors.Is(err, reconciliation.ErrProposalsNotFound{}) {
			return &reconciliation.ProposalSet{TransactionID: id, Proposals: []reconciliation.MatchProposal{}}, nil
		}
		s.logger.Error("Failed to get proposals", "transaction_id", id.String(), "error", err)
		return nil, err
	}
	return set, nil
}

func (s *TransactionServiceImpl) AcceptProposal(ctx context.Context, id uuid.UUID, documentID string) (*banktxn.Transaction, error) {
	logger := s.logger.With("transaction_id", id.String(), "document_id", documentID)

	txn, err := s.transactions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if txn.Status != shared.StatusSuggested {
		return nil, ErrProposalConflict{TransactionID: id, Reason: "transaction is " + string(txn.Status)}
	}

	set, err := s.proposals.GetByTransactionID(ctx, id)
	if err != nil {
		if errors.Is(err, reconciliation.ErrProposalsNotFound{}) {
			return nil, ErrProposalConflict{TransactionID: id, Reason: "no proposals are stored"}
		}
		return nil, err
	}
	proposal, ok := set.Find(documentID)
	if !ok {
		return nil, ErrProposalConflict{TransactionID: id, Reason: "document " + documentID + " was not proposed"}
	}

	change := &banktxn.StatusChange{
		Transaction: txn,
		Status:      shared.StatusReconciled,
		Voucher: &banktxn.Voucher{
			Type:   string(proposal.DocumentType),
			ID:     proposal.DocumentID,
			Amount: decimal.Min(txn.Amount(), proposal.Outstanding),
		},
	}
	if err := s.writer.WriteStatus(ctx, change); err != nil {
		if errors.Is(err, candidate.ErrInsufficientOutstanding{}) {
			return nil, ErrProposalConflict{TransactionID: id, Reason: "document " + documentID + " no longer has enough outstanding"}
		}
		logger.Error("Failed to reconcile transaction against proposal", "error", err)
		return nil, fmt.Errorf("failed to reconcile transaction %s: %w", id, err)
	}
	change.Apply()

	if err := s.proposals.Clear(ctx, id); err != nil {
		logger.Warn("Failed to clear proposals of reconciled transaction", "error", err)
	}

	logger.Info("Proposal accepted")
	return txn, nil
}

func (s *TransactionServiceImpl) PreviewCategorization(ctx context.Context, id uuid.UUID) (*engine.CategorizationResult, error) {
	txn, err := s.transactions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	rules, err := s.rules.ListRules(ctx)
	if err != nil {
		s.logger.Error("Failed to list rules for categorization preview", "transaction_id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to list rules: %w", err)
	}

	result := s.categorizer.Categorize(txn, rules)
	return &result, nil
}
