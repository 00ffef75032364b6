// Package engine holds the pure matching and categorization logic of a reconciliation pass.
package engine

import (
	"sort"
	"strings"

	"github.com/bank-reconciliation-engine/internal/domain/banktxn"
	"github.com/bank-reconciliation-engine/internal/domain/candidate"
	"github.com/bank-reconciliation-engine/internal/domain/reconciliation"
	"github.com/bank-reconciliation-engine/internal/domain/rule"
	"github.com/bank-reconciliation-engine/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/texttheater/golang-levenshtein/levenshtein"
)

// DefaultAmountTolerance is the relative amount difference admitted when no tolerance is configured
const DefaultAmountTolerance = 0.05

// Matcher proposes candidate documents for a bank transaction by amount closeness
type Matcher struct {
	tolerance decimal.Decimal
}

// NewMatcher creates a matcher. A negative tolerance falls back to DefaultAmountTolerance.
func NewMatcher(tolerance float64) *Matcher {
	if tolerance < 0 {
		tolerance = DefaultAmountTolerance
	}
	return &Matcher{tolerance: decimal.NewFromFloat(tolerance)}
}

// Tolerance returns the relative amount tolerance in use
func (m *Matcher) Tolerance() decimal.Decimal {
	return m.tolerance
}

// AmountRange returns the outstanding amounts within tolerance of amount
func (m *Matcher) AmountRange(amount decimal.Decimal) candidate.AmountRange {
	slack := amount.Mul(m.tolerance)
	return candidate.AmountRange{Min: amount.Sub(slack), Max: amount.Add(slack)}
}

// FindCandidates returns the documents of pool within tolerance of the transaction amount,
// closest amount first, then oldest posting date, then document id.
// An empty result is not an error.
func (m *Matcher) FindCandidates(txn *banktxn.Transaction, pool []*candidate.Document) ([]reconciliation.MatchProposal, error) {
	direction, err := txn.Direction()
	if err != nil {
		return nil, err
	}

	amount := txn.Amount()
	docType := shared.DocumentTypeFor(direction)
	window := m.AmountRange(amount)

	proposals := make([]reconciliation.MatchProposal, 0)
	for _, doc := range pool {
		if doc == nil || doc.Type != docType || !doc.Eligible() || !window.Contains(doc.Outstanding) {
			continue
		}

		diff := doc.Outstanding.Sub(amount).Abs()
		proposals = append(proposals, reconciliation.MatchProposal{
			TransactionID:  txn.ID,
			DocumentID:     doc.ID,
			DocumentType:   doc.Type,
			Outstanding:    doc.Outstanding,
			Difference:     diff,
			Confidence:     confidence(diff, amount),
			TextSimilarity: TextSimilarity(txn.Description, doc.PartyName),
			PostingDate:    doc.PostingDate,
		})
	}

	sort.SliceStable(proposals, func(i, j int) bool {
		a, b := proposals[i], proposals[j]
		if c := a.Difference.Cmp(b.Difference); c != 0 {
			return c < 0
		}
		if !a.PostingDate.Equal(b.PostingDate) {
			return a.PostingDate.Before(b.PostingDate)
		}
		return a.DocumentID < b.DocumentID
	})

	for i := range proposals {
		proposals[i].Rank = i + 1
	}
	return proposals, nil
}

func confidence(diff, amount decimal.Decimal) float64 {
	if amount.IsZero() {
		return 0
	}
	score, _ := decimal.NewFromInt(1).Sub(diff.Div(amount)).Round(4).Float64()
	if score < 0 {
		return 0
	}
	return score
}

// TextSimilarity scores how alike a bank description and a party name are, in [0, 1].
// Containment scores 1; otherwise the Levenshtein ratio of the normalized strings is used.
func TextSimilarity(description, partyName string) float64 {
	a, b := rule.Normalize(description), rule.Normalize(partyName)
	if a == "" || b == "" {
		return 0
	}
	if strings.Contains(a, b) || strings.Contains(b, a) {
		return 1
	}

	ratio := levenshtein.RatioForStrings([]rune(a), []rune(b), levenshtein.DefaultOptions)
	rounded, _ := decimal.NewFromFloat(ratio).Round(4).Float64()
	return rounded
}
