// Package reconciliation holds the outcomes of matching bank transactions against candidate documents.
package reconciliation

import (
	"time"

	"github.com/bank-reconciliation-engine/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MatchProposal is one ranked candidate document for a bank transaction
type MatchProposal struct {
	TransactionID  uuid.UUID           `json:"transaction_id"`
	DocumentID     string              `json:"document_id"`
	DocumentType   shared.DocumentType `json:"document_type"`
	Outstanding    decimal.Decimal     `json:"outstanding"`
	Difference     decimal.Decimal     `json:"difference"`
	Confidence     float64             `json:"confidence"`      // amount closeness in [0, 1]
	TextSimilarity float64             `json:"text_similarity"` // informational only
	PostingDate    time.Time           `json:"posting_date"`
	Rank           int                 `json:"rank"`
}

// IsExact reports whether the proposal settles the transaction amount exactly
func (p MatchProposal) IsExact() bool {
	return p.Difference.IsZero()
}

// ProposalSet is the ordered list of proposals stored for a Suggested transaction
type ProposalSet struct {
	TransactionID uuid.UUID       `json:"transaction_id"`
	BankAccount   string          `json:"bank_account"`
	PassID        uuid.UUID       `json:"pass_id"`
	Proposals     []MatchProposal `json:"proposals"`
	CreatedAt     time.Time       `json:"created_at"`
}

// Find returns the proposal for documentID, if offered
func (s *ProposalSet) Find(documentID string) (MatchProposal, bool) {
	for _, p := range s.Proposals {
		if p.DocumentID == documentID {
			return p, true
		}
	}
	return MatchProposal{}, false
}
