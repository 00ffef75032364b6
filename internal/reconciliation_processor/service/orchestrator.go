package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/bank-reconciliation-engine/internal/domain/banktxn"
	"github.com/bank-reconciliation-engine/internal/domain/candidate"
	"github.com/bank-reconciliation-engine/internal/domain/reconciliation"
	"github.com/bank-reconciliation-engine/internal/domain/rule"
	"github.com/bank-reconciliation-engine/internal/domain/shared"
	"github.com/bank-reconciliation-engine/internal/platform/metrics"
	"github.com/bank-reconciliation-engine/internal/platform/resilience"
	"github.com/bank-reconciliation-engine/internal/reconciliation_processor/engine"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	collaboratorTransactionStore = "transaction_store"
	collaboratorCandidateLookup  = "candidate_lookup"
	collaboratorProposalStore    = "proposal_store"
)

// Orchestrator drives bulk reconciliation passes. It holds no per-pass state and may
// serve concurrent passes for different bank accounts.
type Orchestrator struct {
	matcher     Matcher
	categorizer Categorizer
	writer      StatusWriter
	proposals   reconciliation.ProposalRepository
	ruleStats   RuleStatsRecorder

	storeGuard    *resilience.Guard
	lookupGuard   *resilience.Guard
	proposalGuard *resilience.Guard

	metrics *metrics.Metrics
	logger  *slog.Logger
}

func NewOrchestrator(
	matcher Matcher,
	categorizer Categorizer,
	writer StatusWriter,
	proposals reconciliation.ProposalRepository,
	ruleStats RuleStatsRecorder,
	retry resilience.Config,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Orchestrator {
	return &Orchestrator{
		matcher:       matcher,
		categorizer:   categorizer,
		writer:        writer,
		proposals:     proposals,
		ruleStats:     ruleStats,
		storeGuard:    resilience.NewGuard(collaboratorTransactionStore, retry, logger, isPermanentStoreError),
		lookupGuard:   resilience.NewGuard(collaboratorCandidateLookup, retry, logger, nil),
		proposalGuard: resilience.NewGuard(collaboratorProposalStore, retry, logger, nil),
		metrics:       m,
		logger:        logger,
	}
}

// RunBulkPass reconciles txns in the order given. It never fails as a whole: per-transaction
// failures are collected in the result, and a cancelled ctx stops the pass between
// transactions with Cancelled set. Successfully persisted changes are applied to txns.
func (o *Orchestrator) RunBulkPass(
	ctx context.Context,
	passID uuid.UUID,
	txns []*banktxn.Transaction,
	provider CandidatePoolProvider,
	rules []*rule.Rule,
) *reconciliation.BulkResult {
	result := &reconciliation.BulkResult{}
	ledger := newClaimLedger()
	logger := o.logger.With("pass_id", passID.String())

	pending := make([]*banktxn.Transaction, 0, len(txns))
	for _, txn := range txns {
		if !txn.IsReconciled() {
			pending = append(pending, txn)
		}
	}

	decisions, err := o.categorizer.CategorizeAll(ctx, pending, rules)
	if err != nil && ctx.Err() == nil {
		logger.Warn("Concurrent categorization failed, categorizing sequentially", "error", err)
	}

	next := 0
	for _, txn := range txns {
		if ctx.Err() != nil {
			result.Cancelled = true
			logger.Warn("Reconciliation pass cancelled", "processed", result.Processed)
			break
		}

		if txn.IsReconciled() {
			result.Skipped++
			continue
		}

		var decision engine.CategorizationResult
		if decisions != nil {
			decision = decisions[next]
		} else {
			decision = o.categorizer.Categorize(txn, rules)
		}
		next++

		result.Processed++
		if err := o.reconcile(ctx, passID, txn, decision, provider, ledger, result); err != nil {
			reason := failureReason(err)
			logger.Error("Failed to reconcile bank transaction",
				"transaction_id", txn.ID.String(),
				"reason", string(reason),
				"error", err,
			)
			result.RecordFailure(txn.ID, reason, err)
		}
	}

	result.Finalize()
	return result
}

func (o *Orchestrator) reconcile(
	ctx context.Context,
	passID uuid.UUID,
	txn *banktxn.Transaction,
	decision engine.CategorizationResult,
	provider CandidatePoolProvider,
	ledger *claimLedger,
	result *reconciliation.BulkResult,
) error {
	direction, err := txn.Direction()
	if err != nil {
		return err
	}
	if direction == shared.TransactionTypeDeposit {
		result.Deposits++
	} else {
		result.Withdrawals++
	}

	amount := txn.Amount()
	categorization := decision.Categorization()
	newlyCategorized := categorization != nil && !sameCategorization(txn.Categorization, categorization)
	if decision.Matched() {
		result.Categorized++
	}

	if decision.Matched() && decision.ShouldAutoReconcile {
		previous := txn.Status
		change := &banktxn.StatusChange{
			Transaction: txn,
			Status:      shared.StatusReconciled,
			Voucher: &banktxn.Voucher{
				Type:   shared.VoucherTypeBankRule,
				ID:     decision.MatchedRule.TargetAccount,
				Amount: amount,
			},
			Categorization: categorization,
		}
		if err := o.write(ctx, change); err != nil {
			return err
		}
		o.afterReconciled(ctx, txn, previous)
		if newlyCategorized {
			o.recordRuleMatch(ctx, decision.MatchedRule, amount)
		}
		result.Reconciled++
		return nil
	}

	var pool []*candidate.Document
	err = o.lookupGuard.Do(ctx, "list_outstanding", func(ctx context.Context) error {
		var err error
		pool, err = provider.Pool(ctx, direction)
		return err
	})
	if err != nil {
		o.metrics.IncrCollaboratorError(collaboratorCandidateLookup)
		return err
	}

	proposals, err := o.matcher.FindCandidates(txn, ledger.adjust(pool))
	if err != nil {
		return err
	}

	if !newlyCategorized {
		categorization = nil
	}

	switch {
	case len(proposals) == 1 && proposals[0].IsExact():
		top := proposals[0]
		previous := txn.Status
		change := &banktxn.StatusChange{
			Transaction: txn,
			Status:      shared.StatusReconciled,
			Voucher: &banktxn.Voucher{
				Type:   string(top.DocumentType),
				ID:     top.DocumentID,
				Amount: amount,
			},
			Categorization: categorization,
		}
		if err := o.write(ctx, change); err != nil {
			return err
		}
		ledger.claim(top.DocumentType, top.DocumentID, top.Outstanding, amount)
		o.afterReconciled(ctx, txn, previous)
		result.Reconciled++

	case len(proposals) > 0:
		set := &reconciliation.ProposalSet{
			TransactionID: txn.ID,
			BankAccount:   txn.BankAccount,
			PassID:        passID,
			Proposals:     proposals,
			CreatedAt:     time.Now(),
		}
		err := o.proposalGuard.Do(ctx, "replace", func(ctx context.Context) error {
			return o.proposals.Replace(ctx, set)
		})
		if err != nil {
			o.metrics.IncrCollaboratorError(collaboratorProposalStore)
			return err
		}
		if txn.Status != shared.StatusSuggested || categorization != nil {
			if err := o.write(ctx, &banktxn.StatusChange{Transaction: txn, Status: shared.StatusSuggested, Categorization: categorization}); err != nil {
				return err
			}
		}
		result.Suggested++

	default:
		if txn.Status != shared.StatusUnreconciled || categorization != nil {
			previous := txn.Status
			if err := o.write(ctx, &banktxn.StatusChange{Transaction: txn, Status: shared.StatusUnreconciled, Categorization: categorization}); err != nil {
				return err
			}
			if previous == shared.StatusSuggested {
				if err := o.clearProposals(ctx, txn.ID); err != nil {
					return err
				}
			}
		}
		result.Unreconciled++
	}

	if newlyCategorized {
		o.recordRuleMatch(ctx, decision.MatchedRule, amount)
	}
	return nil
}

func (o *Orchestrator) write(ctx context.Context, change *banktxn.StatusChange) error {
	err := o.storeGuard.Do(ctx, "update_status", func(ctx context.Context) error {
		return o.writer.WriteStatus(ctx, change)
	})
	if err != nil {
		if errors.Is(err, shared.CollaboratorUnavailableError{}) {
			o.metrics.IncrCollaboratorError(collaboratorTransactionStore)
		}
		return err
	}
	change.Apply()
	return nil
}

// afterReconciled drops the proposals a previously Suggested transaction no longer needs
func (o *Orchestrator) afterReconciled(ctx context.Context, txn *banktxn.Transaction, previous shared.ReconciliationStatus) {
	if previous != shared.StatusSuggested {
		return
	}
	if err := o.clearProposals(ctx, txn.ID); err != nil {
		o.logger.Warn("Failed to clear proposals of reconciled transaction",
			"transaction_id", txn.ID.String(),
			"error", err,
		)
	}
}

func (o *Orchestrator) clearProposals(ctx context.Context, transactionID uuid.UUID) error {
	err := o.proposalGuard.Do(ctx, "clear", func(ctx context.Context) error {
		return o.proposals.Clear(ctx, transactionID)
	})
	if err != nil {
		o.metrics.IncrCollaboratorError(collaboratorProposalStore)
	}
	return err
}

func (o *Orchestrator) recordRuleMatch(ctx context.Context, r *rule.Rule, amount decimal.Decimal) {
	if err := o.ruleStats.RecordMatch(ctx, r.ID, amount); err != nil {
		o.logger.Warn("Failed to record bank rule statistics", "rule_id", r.ID.String(), "error", err)
	}
}

func sameCategorization(current, proposed *banktxn.Categorization) bool {
	if current == nil || proposed == nil {
		return current == proposed
	}
	if current.Account != proposed.Account || current.PartyType != proposed.PartyType || current.Party != proposed.Party {
		return false
	}
	if current.RuleID == nil || proposed.RuleID == nil {
		return current.RuleID == proposed.RuleID
	}
	return *current.RuleID == *proposed.RuleID
}

func failureReason(err error) shared.FailureReason {
	switch {
	case errors.Is(err, shared.InvalidTransactionError{}):
		return shared.FailureReasonInvalidAmounts
	case errors.Is(err, shared.CollaboratorUnavailableError{}):
		return shared.FailureReasonCollaboratorUnavailable
	case errors.Is(err, candidate.ErrInsufficientOutstanding{}):
		return shared.FailureReasonDocumentSettled
	default:
		return shared.FailureReasonUnknownError
	}
}

func isPermanentStoreError(err error) bool {
	var missingVoucher banktxn.ErrMissingVoucher
	return errors.Is(err, banktxn.ErrTransactionNotFound{}) ||
		errors.Is(err, candidate.ErrDocumentNotFound{}) ||
		errors.Is(err, candidate.ErrInsufficientOutstanding{}) ||
		errors.As(err, &missingVoucher)
}
