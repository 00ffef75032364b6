package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/bank-reconciliation-engine/internal/domain/banktxn"
	"github.com/bank-reconciliation-engine/internal/domain/rule"
	"github.com/panjf2000/ants/v2"
)

// CategorizationResult is the decision of the categorizer for one transaction
type CategorizationResult struct {
	MatchedRule         *rule.Rule
	ProposedAccount     string
	ProposedPartyType   string
	ProposedParty       string
	ShouldAutoReconcile bool
}

// Matched reports whether a rule applied
func (r CategorizationResult) Matched() bool {
	return r.MatchedRule != nil
}

// Categorization converts the decision to the form stored on the transaction
func (r CategorizationResult) Categorization() *banktxn.Categorization {
	if r.MatchedRule == nil {
		return nil
	}
	id := r.MatchedRule.ID
	return &banktxn.Categorization{
		Account:   r.ProposedAccount,
		PartyType: r.ProposedPartyType,
		Party:     r.ProposedParty,
		RuleID:    &id,
	}
}

// Categorizer applies bank rules to transactions. It never mutates its inputs.
type Categorizer struct {
	workers int
}

// NewCategorizer creates a categorizer fanning out over at most workers goroutines
func NewCategorizer(workers int) *Categorizer {
	if workers < 1 {
		workers = 1
	}
	return &Categorizer{workers: workers}
}

// Categorize returns the first rule, in store order, that matches the transaction.
// Transactions with malformed amounts match nothing.
func (c *Categorizer) Categorize(txn *banktxn.Transaction, rules []*rule.Rule) CategorizationResult {
	direction, err := txn.Direction()
	if err != nil {
		return CategorizationResult{}
	}
	amount := txn.Amount()

	for _, r := range rules {
		if r == nil || !r.Active || !r.CoversAccount(txn.BankAccount) || !r.Applies(direction, amount) {
			continue
		}
		if !r.MatchesText(fieldValue(txn, r.MatchField)) {
			continue
		}
		return CategorizationResult{
			MatchedRule:         r,
			ProposedAccount:     r.TargetAccount,
			ProposedPartyType:   r.TargetPartyType,
			ProposedParty:       r.TargetParty,
			ShouldAutoReconcile: r.AutoReconcile,
		}
	}
	return CategorizationResult{}
}

// CategorizeAll categorizes txns concurrently. Results are index-aligned with txns.
func (c *Categorizer) CategorizeAll(ctx context.Context, txns []*banktxn.Transaction, rules []*rule.Rule) ([]CategorizationResult, error) {
	results := make([]CategorizationResult, len(txns))
	if len(txns) == 0 || len(rules) == 0 {
		return results, nil
	}

	var wg sync.WaitGroup
	pool, err := ants.NewPoolWithFunc(c.workers, func(arg interface{}) {
		defer wg.Done()
		i := arg.(int)
		results[i] = c.Categorize(txns[i], rules)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create categorization pool: %w", err)
	}
	defer pool.Release()

	for i := range txns {
		if err := ctx.Err(); err != nil {
			wg.Wait()
			return nil, err
		}
		wg.Add(1)
		if err := pool.Invoke(i); err != nil {
			wg.Done()
			wg.Wait()
			return nil, fmt.Errorf("failed to submit categorization: %w", err)
		}
	}
	wg.Wait()

	return results, nil
}

func fieldValue(txn *banktxn.Transaction, field rule.MatchField) string {
	switch field {
	case rule.MatchFieldReferenceNumber:
		return txn.ReferenceNumber
	case rule.MatchFieldParty:
		return txn.PartyID
	default:
		return txn.Description
	}
}
