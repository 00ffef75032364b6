package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bank-reconciliation-engine/internal/domain/shared"
	"github.com/panjf2000/ants/v2"
)

// WorkerPoolPassService runs passes on a bounded ants pool so passes for
// different bank accounts proceed concurrently.
type WorkerPoolPassService struct {
	baseService PassService
	pool        *ants.Pool
	logger      *slog.Logger
}

type WorkerPoolConfig struct {
	Size int
}

func NewWorkerPoolPassService(
	baseService PassService,
	config WorkerPoolConfig,
	logger *slog.Logger,
) (*WorkerPoolPassService, error) {
	pool, err := ants.NewPool(config.Size)
	if err != nil {
		return nil, err
	}

	return &WorkerPoolPassService{
		baseService: baseService,
		pool:        pool,
		logger:      logger,
	}, nil
}

// RunPass submits the pass to the pool and waits for it to finish.
func (s *WorkerPoolPassService) RunPass(ctx context.Context, request *shared.PassRequest) error {
	logger := s.logger
	if request.CorrelationID != "" {
		logger = s.logger.With("correlation_id", request.CorrelationID)
	}

	logger.Info("Submitting reconciliation pass to worker pool",
		"pass_id", request.PassID.String(),
		"bank_account", request.BankAccount,
	)

	resultChan := make(chan error, 1)
	requestCopy := *request

	err := s.pool.Submit(func() {
		defer func() {
			if p := recover(); p != nil {
				logger.Error("Recovered panic in reconciliation worker", "pass_id", requestCopy.PassID.String(), "panic", p)
				resultChan <- fmt.Errorf("reconciliation pass %s panicked: %v", requestCopy.PassID, p)
			}
		}()
		resultChan <- s.baseService.RunPass(ctx, &requestCopy)
	})
	if err != nil {
		logger.Error("Failed to submit reconciliation pass to worker pool",
			"pass_id", request.PassID.String(),
			"error", err,
		)
		return err
	}

	return <-resultChan
}

// Shutdown releases the pool once running passes have returned.
func (s *WorkerPoolPassService) Shutdown() {
	s.logger.Info("Shutting down worker pool", "running_workers", s.pool.Running())
	s.pool.Release()
}

func (s *WorkerPoolPassService) Running() int {
	return s.pool.Running()
}

func (s *WorkerPoolPassService) Capacity() int {
	return s.pool.Cap()
}
