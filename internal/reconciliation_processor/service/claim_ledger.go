package service

import (
	"github.com/bank-reconciliation-engine/internal/domain/candidate"
	"github.com/bank-reconciliation-engine/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// claimLedger tracks how much of each document a pass has already allocated.
// One ledger belongs to exactly one RunBulkPass call.
type claimLedger struct {
	remaining map[string]decimal.Decimal
}

func newClaimLedger() *claimLedger {
	return &claimLedger{remaining: make(map[string]decimal.Decimal)}
}

// claim allocates amount of a document whose outstanding balance was outstanding
func (l *claimLedger) claim(docType shared.DocumentType, documentID string, outstanding, amount decimal.Decimal) {
	left := outstanding.Sub(amount)
	if left.IsNegative() {
		left = decimal.Zero
	}
	l.remaining[claimKey(docType, documentID)] = left
}

// adjust returns pool with claimed documents replaced by copies carrying their remaining balance.
// The provider's cached documents are never modified.
func (l *claimLedger) adjust(pool []*candidate.Document) []*candidate.Document {
	if len(l.remaining) == 0 {
		return pool
	}

	adjusted := make([]*candidate.Document, 0, len(pool))
	for _, doc := range pool {
		if doc == nil {
			continue
		}
		left, claimed := l.remaining[claimKey(doc.Type, doc.ID)]
		if !claimed {
			adjusted = append(adjusted, doc)
			continue
		}
		if !left.IsPositive() {
			continue
		}
		copied := *doc
		copied.Outstanding = left
		adjusted = append(adjusted, &copied)
	}
	return adjusted
}

func claimKey(docType shared.DocumentType, documentID string) string {
	return string(docType) + "/" + documentID
}
