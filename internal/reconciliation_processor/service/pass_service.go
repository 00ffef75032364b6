package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bank-reconciliation-engine/internal/domain/banktxn"
	"github.com/bank-reconciliation-engine/internal/domain/reconciliation"
	"github.com/bank-reconciliation-engine/internal/domain/rule"
	"github.com/bank-reconciliation-engine/internal/domain/shared"
	"github.com/bank-reconciliation-engine/internal/platform/metrics"
	"github.com/google/uuid"
)

const passRecordTimeout = 5 * time.Second

// BulkPassRunner runs one reconciliation pass over a transaction set
type BulkPassRunner interface {
	RunBulkPass(ctx context.Context, passID uuid.UUID, txns []*banktxn.Transaction, provider CandidatePoolProvider, rules []*rule.Rule) *reconciliation.BulkResult
}

type PassServiceImpl struct {
	passes       reconciliation.PassRepository
	transactions TransactionLister
	rules        RuleLister
	providers    PoolProviderFactory
	runner       BulkPassRunner
	metrics      *metrics.Metrics
	logger       *slog.Logger
}

func NewPassService(
	passes reconciliation.PassRepository,
	transactions TransactionLister,
	rules RuleLister,
	providers PoolProviderFactory,
	runner BulkPassRunner,
	m *metrics.Metrics,
	logger *slog.Logger,
) PassService {
	return &PassServiceImpl{
		passes:       passes,
		transactions: transactions,
		rules:        rules,
		providers:    providers,
		runner:       runner,
		metrics:      m,
		logger:       logger,
	}
}

// RunPass executes the pass described by request. Finished passes are skipped, so a redelivered
// request never reconciles twice. Errors are returned only when the request should be retried.
func (s *PassServiceImpl) RunPass(ctx context.Context, request *shared.PassRequest) error {
	logger := s.logger.With("pass_id", request.PassID.String(), "bank_account", request.BankAccount)
	if request.CorrelationID != "" {
		logger = logger.With("correlation_id", request.CorrelationID)
	}

	pass, skip, err := s.startPass(ctx, request)
	if err != nil {
		logger.Error("Failed to start reconciliation pass", "error", err)
		return err
	}
	if skip {
		logger.Info("Reconciliation pass already finished, skipping")
		return nil
	}

	logger.Info("Running reconciliation pass", "from", request.From, "to", request.To)
	started := time.Now()

	txns, err := s.transactions.ListTransactions(ctx, request.BankAccount, banktxn.DateRange{From: request.From, To: request.To})
	if err != nil {
		s.markFailed(ctx, logger, pass, started, fmt.Errorf("failed to list bank transactions: %w", err))
		return shared.CollaboratorUnavailableError{Collaborator: collaboratorTransactionStore, Operation: "list_transactions", Err: err}
	}

	rules, err := s.rules.ListRules(ctx)
	if err != nil {
		s.markFailed(ctx, logger, pass, started, fmt.Errorf("failed to list bank rules: %w", err))
		return shared.CollaboratorUnavailableError{Collaborator: "rule_store", Operation: "list_rules", Err: err}
	}

	provider := s.providers.NewProvider(ctx, txns)
	result := s.runner.RunBulkPass(ctx, pass.ID, txns, provider, rules)

	completed := time.Now()
	pass.Result = result
	pass.CompletedAt = &completed
	pass.Status = shared.PassStatusCompleted
	if result.Cancelled {
		pass.Status = shared.PassStatusCancelled
	}

	s.metrics.RecordPass(string(pass.Status), completed.Sub(started), result)

	if err := s.savePass(ctx, pass); err != nil {
		logger.Error("Failed to store reconciliation pass result", "error", err)
		return err
	}

	logger.Info("Reconciliation pass finished",
		"status", string(pass.Status),
		"processed", result.Processed,
		"reconciled", result.Reconciled,
		"suggested", result.Suggested,
		"unreconciled", result.Unreconciled,
		"failed", result.Failed,
		"skipped", result.Skipped,
		"duration", completed.Sub(started).String(),
	)
	return nil
}

// startPass loads or creates the pass record and reports whether the request must be skipped
func (s *PassServiceImpl) startPass(ctx context.Context, request *shared.PassRequest) (*reconciliation.Pass, bool, error) {
	existing, err := s.passes.GetByID(ctx, request.PassID)
	switch {
	case err == nil:
		if existing.IsFinished() {
			return existing, true, nil
		}
		now := time.Now()
		existing.Status = shared.PassStatusRunning
		existing.Error = ""
		existing.StartedAt = &now
		if err := s.passes.Update(ctx, existing); err != nil {
			return nil, false, err
		}
		return existing, false, nil

	case errors.Is(err, reconciliation.ErrPassNotFound{}):
		pass := reconciliation.NewPass(request)
		if err := s.passes.Create(ctx, pass); err != nil {
			if errors.Is(err, reconciliation.ErrPassAlreadyExists) {
				return pass, true, nil
			}
			return nil, false, err
		}
		return pass, false, nil

	default:
		return nil, false, err
	}
}

func (s *PassServiceImpl) markFailed(ctx context.Context, logger *slog.Logger, pass *reconciliation.Pass, started time.Time, cause error) {
	logger.Error("Reconciliation pass failed", "error", cause)

	completed := time.Now()
	pass.Status = shared.PassStatusFailed
	pass.Error = cause.Error()
	pass.CompletedAt = &completed
	s.metrics.RecordPass(string(pass.Status), completed.Sub(started), nil)

	if err := s.savePass(ctx, pass); err != nil {
		logger.Error("Failed to mark reconciliation pass as failed", "error", err)
	}
}

// savePass stores the pass record even when ctx has been cancelled
func (s *PassServiceImpl) savePass(ctx context.Context, pass *reconciliation.Pass) error {
	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), passRecordTimeout)
	defer cancel()
	return s.passes.Update(saveCtx, pass)
}
