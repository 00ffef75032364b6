package components

import (
	"log/slog"

	"github.com/bank-reconciliation-engine/internal/config"
	"github.com/bank-reconciliation-engine/internal/domain/banktxn"
	"github.com/bank-reconciliation-engine/internal/domain/candidate"
	"github.com/bank-reconciliation-engine/internal/domain/outbox"
	"github.com/bank-reconciliation-engine/internal/domain/reconciliation"
	"github.com/bank-reconciliation-engine/internal/domain/rule"
	"github.com/bank-reconciliation-engine/internal/platform/metrics"
	"github.com/bank-reconciliation-engine/internal/platform/persistence"
	"github.com/bank-reconciliation-engine/internal/platform/resilience"
	"github.com/bank-reconciliation-engine/internal/reconciliation_processor/engine"
	"github.com/bank-reconciliation-engine/internal/reconciliation_processor/service"
)

// Repositories groups the stores a reconciliation processor works with
type Repositories struct {
	Transactions banktxn.Repository
	Candidates   candidate.Repository
	Rules        rule.Repository
	Outbox       outbox.Repository
	Proposals    reconciliation.ProposalRepository
	Passes       reconciliation.PassRepository
}

// CreatePassService wires the engine, the orchestrator and the pass service, decorated with
// a worker pool when one can be created.
func CreatePassService(
	db persistence.TxExecutor,
	repos Repositories,
	m *metrics.Metrics,
	logger *slog.Logger,
	cfg *config.Config,
) service.PassService {
	matcher := engine.NewMatcher(cfg.Reconciliation.AmountTolerance)
	categorizer := engine.NewCategorizer(cfg.Reconciliation.CategorizationWorkers)
	writer := NewStatusWriter(db, repos.Transactions, repos.Candidates, repos.Outbox, logger.With("component", "status_writer"))

	orchestrator := service.NewOrchestrator(
		matcher,
		categorizer,
		writer,
		repos.Proposals,
		repos.Rules,
		resilience.Config{
			MaxRetries:     cfg.Reconciliation.CollaboratorMaxRetries,
			InitialBackoff: cfg.Reconciliation.CollaboratorBackoff,
		},
		m,
		logger.With("component", "orchestrator"),
	)

	baseService := service.NewPassService(
		repos.Passes,
		repos.Transactions,
		repos.Rules,
		NewPoolProviderFactory(repos.Candidates, matcher, logger.With("component", "candidate_pool")),
		orchestrator,
		m,
		logger,
	)

	workerPoolService, err := service.NewWorkerPoolPassService(
		baseService,
		service.WorkerPoolConfig{Size: cfg.WorkerPool.Size},
		logger.With("component", "worker_pool"),
	)
	if err != nil {
		logger.Error("Failed to create worker pool service, falling back to base service", "error", err)
		return baseService
	}

	logger.Info("Created worker pool pass service", "pool_size", cfg.WorkerPool.Size)
	return workerPoolService
}
