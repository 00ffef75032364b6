package service

import (
	"context"

	"github.com/bank-reconciliation-engine/internal/domain/banktxn"
	"github.com/bank-reconciliation-engine/internal/domain/candidate"
	"github.com/bank-reconciliation-engine/internal/domain/reconciliation"
	"github.com/bank-reconciliation-engine/internal/domain/rule"
	"github.com/bank-reconciliation-engine/internal/domain/shared"
	"github.com/bank-reconciliation-engine/internal/reconciliation_processor/engine"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PassService runs bulk reconciliation passes requested over Kafka.
type PassService interface {
	RunPass(ctx context.Context, request *shared.PassRequest) error
}

// Matcher proposes candidate documents for one transaction
type Matcher interface {
	FindCandidates(txn *banktxn.Transaction, pool []*candidate.Document) ([]reconciliation.MatchProposal, error)
}

// Categorizer applies bank rules to transactions
type Categorizer interface {
	Categorize(txn *banktxn.Transaction, rules []*rule.Rule) engine.CategorizationResult
	CategorizeAll(ctx context.Context, txns []*banktxn.Transaction, rules []*rule.Rule) ([]engine.CategorizationResult, error)
}

// CandidatePoolProvider supplies the outstanding documents for a transaction direction.
// Implementations decide how to cache within a pass.
type CandidatePoolProvider interface {
	Pool(ctx context.Context, direction shared.TransactionType) ([]*candidate.Document, error)
}

// StatusWriter persists a status change together with its side effects
type StatusWriter interface {
	WriteStatus(ctx context.Context, change *banktxn.StatusChange) error
}

// RuleStatsRecorder records bank rule usage
type RuleStatsRecorder interface {
	RecordMatch(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error
}

// PoolProviderFactory builds a fresh provider for the transactions of one pass
type PoolProviderFactory interface {
	NewProvider(ctx context.Context, txns []*banktxn.Transaction) CandidatePoolProvider
}

// TransactionLister reads the transactions a pass works on
type TransactionLister interface {
	ListTransactions(ctx context.Context, bankAccount string, dateRange banktxn.DateRange) ([]*banktxn.Transaction, error)
}

// RuleLister reads the bank rules in store order
type RuleLister interface {
	ListRules(ctx context.Context) ([]*rule.Rule, error)
}
