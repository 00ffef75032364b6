package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bank-reconciliation-engine/internal/domain/rule"
	"github.com/bank-reconciliation-engine/internal/platform/persistence"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const ruleColumns = `id, seq, name, pattern, match_field, match_type, direction, bank_account, min_amount, max_amount,
		target_account, target_party_type, target_party, auto_reconcile, active,
		times_matched, last_matched_at, total_amount_matched, created_at`

// RuleRepository implements the rule.Repository interface for PostgreSQL
type RuleRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewRuleRepository creates a new PostgreSQL bank rule repository
func NewRuleRepository(logger *slog.Logger, db *persistence.PostgresDB) rule.Repository {
	return &RuleRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// ListRules returns every rule in insertion order
func (r *RuleRepository) ListRules(ctx context.Context) ([]*rule.Rule, error) {
	query := `
		SELECT ` + ruleColumns + `
		FROM bank_rules
		ORDER BY seq ASC
	`

	rows, err := r.querier.Query(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list bank rules", "error", err)
		return nil, fmt.Errorf("failed to list bank rules: %w", err)
	}
	defer rows.Close()

	var rules []*rule.Rule
	for rows.Next() {
		rl, err := r.scanRule(rows)
		if err != nil {
			r.logger.Error("Failed to scan bank rule", "error", err)
			return nil, fmt.Errorf("failed to scan bank rule: %w", err)
		}
		rules = append(rules, rl)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating over bank rules", "error", err)
		return nil, fmt.Errorf("error iterating over bank rules: %w", err)
	}

	return rules, nil
}

// Create stores a validated rule and assigns its insertion sequence
func (r *RuleRepository) Create(ctx context.Context, rl *rule.Rule) error {
	query := `
		INSERT INTO bank_rules (id, name, pattern, match_field, match_type, direction, bank_account, min_amount, max_amount,
			target_account, target_party_type, target_party, auto_reconcile, active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING seq
	`

	err := r.querier.QueryRow(ctx, query,
		rl.ID,
		rl.Name,
		rl.Pattern,
		rl.MatchField,
		rl.MatchType,
		rl.Direction,
		rl.BankAccount,
		rl.MinAmount,
		rl.MaxAmount,
		rl.TargetAccount,
		rl.TargetPartyType,
		rl.TargetParty,
		rl.AutoReconcile,
		rl.Active,
		rl.CreatedAt,
	).Scan(&rl.Sequence)
	if err != nil {
		r.logger.Error("Failed to create bank rule", "rule_id", rl.ID.String(), "error", err)
		return fmt.Errorf("failed to create bank rule: %w", err)
	}

	return nil
}

// GetByID retrieves one rule
func (r *RuleRepository) GetByID(ctx context.Context, id uuid.UUID) (*rule.Rule, error) {
	query := `
		SELECT ` + ruleColumns + `
		FROM bank_rules
		WHERE id = $1
	`

	rl, err := r.scanRule(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, rule.ErrRuleNotFound{RuleID: id}
		}
		r.logger.Error("Failed to get bank rule", "rule_id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get bank rule: %w", err)
	}

	return rl, nil
}

// Delete removes a rule
func (r *RuleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.querier.Exec(ctx, `DELETE FROM bank_rules WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Failed to delete bank rule", "rule_id", id.String(), "error", err)
		return fmt.Errorf("failed to delete bank rule: %w", err)
	}

	if result.RowsAffected() == 0 {
		return rule.ErrRuleNotFound{RuleID: id}
	}

	return nil
}

// RecordMatch increments usage statistics of a rule
func (r *RuleRepository) RecordMatch(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error {
	query := `
		UPDATE bank_rules
		SET times_matched = times_matched + 1, last_matched_at = $1, total_amount_matched = total_amount_matched + $2
		WHERE id = $3
	`

	result, err := r.querier.Exec(ctx, query, time.Now(), amount, id)
	if err != nil {
		r.logger.Error("Failed to record bank rule match", "rule_id", id.String(), "error", err)
		return fmt.Errorf("failed to record bank rule match: %w", err)
	}

	if result.RowsAffected() == 0 {
		return rule.ErrRuleNotFound{RuleID: id}
	}

	return nil
}

func (r *RuleRepository) scanRule(row pgx.Row) (*rule.Rule, error) {
	var rl rule.Rule
	err := row.Scan(
		&rl.ID,
		&rl.Sequence,
		&rl.Name,
		&rl.Pattern,
		&rl.MatchField,
		&rl.MatchType,
		&rl.Direction,
		&rl.BankAccount,
		&rl.MinAmount,
		&rl.MaxAmount,
		&rl.TargetAccount,
		&rl.TargetPartyType,
		&rl.TargetParty,
		&rl.AutoReconcile,
		&rl.Active,
		&rl.TimesMatched,
		&rl.LastMatchedAt,
		&rl.TotalAmountMatched,
		&rl.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := rl.Prepare(); err != nil {
		r.logger.Warn("Stored bank rule has an invalid pattern and will never match",
			"rule_id", rl.ID.String(),
			"error", err,
		)
	}

	return &rl, nil
}
