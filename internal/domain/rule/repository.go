package rule

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Repository is the Rule Store collaborator
type Repository interface {
	// ListRules returns all rules in insertion order
	ListRules(ctx context.Context) ([]*Rule, error)
	Create(ctx context.Context, rule *Rule) error
	GetByID(ctx context.Context, id uuid.UUID) (*Rule, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// RecordMatch bumps the rule's usage statistics
	RecordMatch(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error
}

// RuleConflictError indicates a rule that fails validation at creation time
type RuleConflictError struct {
	Field  string
	Reason string
}

func (e RuleConflictError) Error() string {
	return fmt.Sprintf("invalid bank rule %s: %s", e.Field, e.Reason)
}

// Is matches any RuleConflictError when the target has no Field
func (e RuleConflictError) Is(target error) bool {
	t, ok := target.(RuleConflictError)
	if !ok {
		return false
	}
	if t.Field == "" {
		return true
	}
	return e.Field == t.Field
}

// ErrRuleNotFound indicates a missing bank rule
type ErrRuleNotFound struct {
	RuleID uuid.UUID
}

func (e ErrRuleNotFound) Error() string {
	return "bank rule not found: " + e.RuleID.String()
}

// Is implements the errors.Is interface for ErrRuleNotFound
func (e ErrRuleNotFound) Is(target error) bool {
	t, ok := target.(ErrRuleNotFound)
	if !ok {
		return false
	}
	if t.RuleID == uuid.Nil {
		return true
	}
	return e.RuleID == t.RuleID
}
