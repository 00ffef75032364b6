package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/bank-reconciliation-engine/internal/domain/banktxn"
	"github.com/bank-reconciliation-engine/internal/domain/rule"
	"github.com/google/uuid"
)

// RuleServiceImpl implements the RuleService interface
type RuleServiceImpl struct {
	rules        rule.Repository
	transactions banktxn.Repository
	logger       *slog.Logger
}

func NewRuleService(logger *slog.Logger, rules rule.Repository, transactions banktxn.Repository) RuleService {
	return &RuleServiceImpl{
		rules:        rules,
		transactions: transactions,
		logger:       logger,
	}
}

// CreateRule validates params and stores the rule. Returns rule.RuleConflictError for invalid params.
func (s *RuleServiceImpl) CreateRule(ctx context.Context, params rule.Params) (*rule.Rule, error) {
	r, err := rule.NewRule(params)
	if err != nil {
		return nil, err
	}
	if err := s.rules.Create(ctx, r); err != nil {
		s.logger.Error("Failed to create rule", "name", r.Name, "error", err)
		return nil, err
	}

	s.logger.Info("Bank rule created", "rule_id", r.ID.String(), "pattern", r.Pattern, "match_type", string(r.MatchType))
	return r, nil
}

func (s *RuleServiceImpl) ListRules(ctx context.Context) ([]*rule.Rule, error) {
	return s.rules.ListRules(ctx)
}

// GetRule returns nil if not found
func (s *RuleServiceImpl) GetRule(ctx context.Context, id uuid.UUID) (*rule.Rule, error) {
	r, err := s.rules.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, rule.ErrRuleNotFound{}) {
			return nil, nil
		}
		s.logger.Error("Failed to get rule", "rule_id", id.String(), "error", err)
		return nil, err
	}
	return r, nil
}

func (s *RuleServiceImpl) DeleteRule(ctx context.Context, id uuid.UUID) error {
	if err := s.rules.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Bank rule deleted", "rule_id", id.String())
	return nil
}

func (s *RuleServiceImpl) SuggestRule(ctx context.Context, transactionID uuid.UUID) (rule.Params, error) {
	txn, err := s.transactions.GetByID(ctx, transactionID)
	if err != nil {
		return rule.Params{}, err
	}
	return rule.Suggest(txn)
}
