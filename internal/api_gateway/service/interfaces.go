package service

import (
	"context"
	"fmt"

	"github.com/bank-reconciliation-engine/internal/domain/banktxn"
	"github.com/bank-reconciliation-engine/internal/domain/reconciliation"
	"github.com/bank-reconciliation-engine/internal/domain/rule"
	"github.com/bank-reconciliation-engine/internal/domain/shared"
	"github.com/bank-reconciliation-engine/internal/reconciliation_processor/engine"
	"github.com/google/uuid"
)

// PassService defines the interface for bulk pass operations
type PassService interface {
	// RequestPass records a PENDING pass and hands it to the reconciliation processor
	RequestPass(ctx context.Context, request *shared.PassRequest) (*reconciliation.Pass, error)

	// GetPass returns nil if the pass doesn't exist
	GetPass(ctx context.Context, id uuid.UUID) (*reconciliation.Pass, error)

	ListPasses(ctx context.Context, bankAccount string, page, perPage int) ([]*reconciliation.Pass, error)
}

// TransactionService defines the interface for bank transaction operations
type TransactionService interface {
	ListTransactions(ctx context.Context, bankAccount string, dateRange banktxn.DateRange) ([]*banktxn.Transaction, error)

	// GetTransaction returns nil if the transaction doesn't exist
	GetTransaction(ctx context.Context, id uuid.UUID) (*banktxn.Transaction, error)

	// GetProposals returns the stored proposals of a Suggested transaction, or an empty set
	GetProposals(ctx context.Context, id uuid.UUID) (*reconciliation.ProposalSet, error)

	// AcceptProposal reconciles a Suggested transaction against one of its stored proposals.
	// Returns ErrProposalConflict when the transaction is not Suggested or documentID was not proposed.
	AcceptProposal(ctx context.Context, id uuid.UUID, documentID string) (*banktxn.Transaction, error)

	// PreviewCategorization runs the current rules against a transaction without persisting anything
	PreviewCategorization(ctx context.Context, id uuid.UUID) (*engine.CategorizationResult, error)
}

// RuleService defines the interface for bank rule maintenance
type RuleService interface {
	CreateRule(ctx context.Context, params rule.Params) (*rule.Rule, error)
	ListRules(ctx context.Context) ([]*rule.Rule, error)
	// GetRule returns nil if the rule doesn't exist
	GetRule(ctx context.Context, id uuid.UUID) (*rule.Rule, error)
	DeleteRule(ctx context.Context, id uuid.UUID) error
	SuggestRule(ctx context.Context, transactionID uuid.UUID) (rule.Params, error)
}

// Categorizer previews bank rules against one transaction
type Categorizer interface {
	Categorize(txn *banktxn.Transaction, rules []*rule.Rule) engine.CategorizationResult
}

// ErrProposalConflict indicates a manual reconciliation that contradicts the stored state
type ErrProposalConflict struct {
	TransactionID uuid.UUID
	Reason        string
}

func (e ErrProposalConflict) Error() string {
	return fmt.Sprintf("cannot accept proposal for transaction %s: %s", e.TransactionID, e.Reason)
}

// Is matches any ErrProposalConflict when the target has no TransactionID
func (e ErrProposalConflict) Is(target error) bool {
	t, ok := target.(ErrProposalConflict)
	if !ok {
		return false
	}
	if t.TransactionID == uuid.Nil {
		return true
	}
	return e.TransactionID == t.TransactionID
}
