// Package rule models bank rules: human-maintained pattern to account categorizations.
package rule

import (
	"regexp"
	"strings"
	"time"

	"github.com/bank-reconciliation-engine/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MatchField selects which transaction text a rule pattern is tested against
type MatchField string

const (
	MatchFieldDescription     MatchField = "DESCRIPTION"
	MatchFieldReferenceNumber MatchField = "REFERENCE_NUMBER"
	MatchFieldParty           MatchField = "PARTY"
)

// MatchType selects how a rule pattern is compared
type MatchType string

const (
	MatchTypeContains   MatchType = "CONTAINS"
	MatchTypeStartsWith MatchType = "STARTS_WITH"
	MatchTypeEndsWith   MatchType = "ENDS_WITH"
	MatchTypeExact      MatchType = "EXACT"
	MatchTypeRegex      MatchType = "REGEX"
)

// Rule maps a text pattern to a target account and optional party
type Rule struct {
	ID                 uuid.UUID              `json:"id"`
	Sequence           int64                  `json:"sequence"` // insertion order, assigned by the store
	Name               string                 `json:"name"`
	Pattern            string                 `json:"pattern"`
	MatchField         MatchField             `json:"match_field"`
	MatchType          MatchType              `json:"match_type"`
	Direction          shared.TransactionType `json:"direction,omitempty"`
	BankAccount        string                 `json:"bank_account,omitempty"` // empty applies to every account
	MinAmount          decimal.NullDecimal    `json:"min_amount"`
	MaxAmount          decimal.NullDecimal    `json:"max_amount"`
	TargetAccount      string                 `json:"target_account"`
	TargetPartyType    string                 `json:"target_party_type,omitempty"`
	TargetParty        string                 `json:"target_party,omitempty"`
	AutoReconcile      bool                   `json:"auto_reconcile"`
	Active             bool                   `json:"active"`
	TimesMatched       int64                  `json:"times_matched"`
	LastMatchedAt      *time.Time             `json:"last_matched_at,omitempty"`
	TotalAmountMatched decimal.Decimal        `json:"total_amount_matched"`
	CreatedAt          time.Time              `json:"created_at"`

	compiled *regexp.Regexp
}

// Params carries the human-editable fields of a rule
type Params struct {
	Name            string
	Pattern         string
	MatchField      MatchField
	MatchType       MatchType
	Direction       shared.TransactionType
	BankAccount     string
	MinAmount       decimal.NullDecimal
	MaxAmount       decimal.NullDecimal
	TargetAccount   string
	TargetPartyType string
	TargetParty     string
	AutoReconcile   bool
	Active          bool
}

// NewRule validates params and builds an active-or-inactive rule ready to be stored
func NewRule(p Params) (*Rule, error) {
	if p.MatchField == "" {
		p.MatchField = MatchFieldDescription
	}
	if p.MatchType == "" {
		p.MatchType = MatchTypeContains
	}

	r := &Rule{
		ID:                 uuid.New(),
		Name:               strings.TrimSpace(p.Name),
		Pattern:            strings.TrimSpace(p.Pattern),
		MatchField:         p.MatchField,
		MatchType:          p.MatchType,
		Direction:          p.Direction,
		BankAccount:        strings.TrimSpace(p.BankAccount),
		MinAmount:          p.MinAmount,
		MaxAmount:          p.MaxAmount,
		TargetAccount:      strings.TrimSpace(p.TargetAccount),
		TargetPartyType:    p.TargetPartyType,
		TargetParty:        p.TargetParty,
		AutoReconcile:      p.AutoReconcile,
		Active:             p.Active,
		TotalAmountMatched: decimal.Zero,
		CreatedAt:          time.Now(),
	}
	if r.Name == "" {
		r.Name = "Rule for " + r.Pattern
	}

	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// Validate checks rule constraints and compiles regex patterns
func (r *Rule) Validate() error {
	if r.Pattern == "" {
		return RuleConflictError{Field: "pattern", Reason: "must not be empty"}
	}
	if r.TargetAccount == "" {
		return RuleConflictError{Field: "target_account", Reason: "must not be empty"}
	}

	switch r.MatchField {
	case MatchFieldDescription, MatchFieldReferenceNumber, MatchFieldParty:
	default:
		return RuleConflictError{Field: "match_field", Reason: "unsupported value " + string(r.MatchField)}
	}

	switch r.MatchType {
	case MatchTypeContains, MatchTypeStartsWith, MatchTypeEndsWith, MatchTypeExact:
	case MatchTypeRegex:
		if err := r.Prepare(); err != nil {
			return RuleConflictError{Field: "pattern", Reason: "invalid regular expression: " + err.Error()}
		}
	default:
		return RuleConflictError{Field: "match_type", Reason: "unsupported value " + string(r.MatchType)}
	}

	if r.Direction != "" && !r.Direction.Valid() {
		return RuleConflictError{Field: "direction", Reason: "unsupported value " + string(r.Direction)}
	}
	if r.MinAmount.Valid && r.MinAmount.Decimal.IsNegative() {
		return RuleConflictError{Field: "min_amount", Reason: "must not be negative"}
	}
	if r.MinAmount.Valid && r.MaxAmount.Valid && r.MinAmount.Decimal.GreaterThan(r.MaxAmount.Decimal) {
		return RuleConflictError{Field: "max_amount", Reason: "must not be less than min_amount"}
	}
	return nil
}

// Prepare compiles a regex pattern once; it is a no-op for other match types
func (r *Rule) Prepare() error {
	if r.MatchType != MatchTypeRegex || r.compiled != nil {
		return nil
	}
	re, err := regexp.Compile("(?i)" + r.Pattern)
	if err != nil {
		return err
	}
	r.compiled = re
	return nil
}

// Applies reports whether the rule's direction and amount filters admit a transaction
func (r *Rule) Applies(direction shared.TransactionType, amount decimal.Decimal) bool {
	if r.Direction != "" && r.Direction != direction {
		return false
	}
	if r.MinAmount.Valid && amount.LessThan(r.MinAmount.Decimal) {
		return false
	}
	if r.MaxAmount.Valid && amount.GreaterThan(r.MaxAmount.Decimal) {
		return false
	}
	return true
}

// CoversAccount reports whether the rule is scoped to bankAccount
func (r *Rule) CoversAccount(bankAccount string) bool {
	return r.BankAccount == "" || r.BankAccount == bankAccount
}

// MatchesText tests the pattern against a raw field value. Regex patterns see the
// value as stored; the other match types compare normalized text.
func (r *Rule) MatchesText(value string) bool {
	if strings.TrimSpace(value) == "" {
		return false
	}

	if r.MatchType == MatchTypeRegex {
		re := r.compiled
		if re == nil {
			var err error
			if re, err = regexp.Compile("(?i)" + r.Pattern); err != nil {
				return false
			}
		}
		return re.MatchString(value)
	}

	normalized := Normalize(value)
	switch r.MatchType {
	case MatchTypeStartsWith:
		return strings.HasPrefix(normalized, Normalize(r.Pattern))
	case MatchTypeEndsWith:
		return strings.HasSuffix(normalized, Normalize(r.Pattern))
	case MatchTypeExact:
		return normalized == Normalize(r.Pattern)
	default:
		return strings.Contains(normalized, Normalize(r.Pattern))
	}
}

// Normalize upper-cases text and collapses runs of whitespace
func Normalize(s string) string {
	return strings.ToUpper(strings.Join(strings.Fields(s), " "))
}
