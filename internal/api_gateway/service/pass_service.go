package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bank-reconciliation-engine/internal/domain/reconciliation"
	"github.com/bank-reconciliation-engine/internal/domain/shared"
	"github.com/bank-reconciliation-engine/internal/platform/messaging/producers"
	"github.com/google/uuid"
)

// PassServiceImpl implements the PassService interface
type PassServiceImpl struct {
	passRepo reconciliation.PassRepository
	producer producers.PassRequestPublisher
	logger   *slog.Logger
}

func NewPassService(logger *slog.Logger, passRepo reconciliation.PassRepository, producer producers.PassRequestPublisher) PassService {
	return &PassServiceImpl{
		passRepo: passRepo,
		producer: producer,
		logger:   logger,
	}
}

// RequestPass stores the pass as PENDING before publishing, so a client polling the pass never
// sees a 404 for an accepted request. A publish failure marks the record FAILED.
func (s *PassServiceImpl) RequestPass(ctx context.Context, request *shared.PassRequest) (*reconciliation.Pass, error) {
	if err := request.Validate(); err != nil {
		return nil, err
	}

	logger := s.logger.With("pass_id", request.PassID.String(), "bank_account", request.BankAccount)

	pass := reconciliation.NewPass(request)
	pass.Status = shared.PassStatusPending
	pass.StartedAt = nil
	if err := s.passRepo.Create(ctx, pass); err != nil {
		logger.Error("Failed to record pass request", "error", err)
		return nil, fmt.Errorf("failed to record pass request: %w", err)
	}

	if err := s.producer.PublishPassRequest(ctx, request); err != nil {
		logger.Error("Failed to publish pass request", "error", err)

		now := time.Now()
		pass.Status = shared.PassStatusFailed
		pass.Error = err.Error()
		pass.CompletedAt = &now
		if updateErr := s.passRepo.Update(context.WithoutCancel(ctx), pass); updateErr != nil {
			logger.Error("Failed to mark unpublished pass as FAILED", "error", updateErr)
		}
		return nil, fmt.Errorf("failed to publish pass request: %w", err)
	}

	logger.Info("Pass request published")
	return pass, nil
}

// GetPass returns nil if not found
func (s *PassServiceImpl) GetPass(ctx context.Context, id uuid.UUID) (*reconciliation.Pass, error) {
	pass, err := s.passRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, reconciliation.ErrPassNotFound{}) {
			return nil, nil
		}
		s.logger.Error("Failed to get pass", "pass_id", id.String(), "error", err)
		return nil, err
	}
	return pass, nil
}

func (s *PassServiceImpl) ListPasses(ctx context.Context, bankAccount string, page, perPage int) ([]*reconciliation.Pass, error) {
	offset := (page - 1) * perPage
	passes, err := s.passRepo.ListByBankAccount(ctx, bankAccount, perPage, offset)
	if err != nil {
		s.logger.Error("Failed to list passes", "bank_account", bankAccount, "error", err)
		return nil, err
	}
	return passes, nil
}
