// Package candidate models outstanding receivable and payable documents a bank transaction can settle.
package candidate

import (
	"time"

	"github.com/bank-reconciliation-engine/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Document is an invoice or voucher with an unpaid remainder
type Document struct {
	ID          string              `json:"id"`
	Type        shared.DocumentType `json:"type"`
	Total       decimal.Decimal     `json:"total"`
	Outstanding decimal.Decimal     `json:"outstanding"`
	PartyType   string              `json:"party_type,omitempty"`
	PartyID     string              `json:"party_id,omitempty"`
	PartyName   string              `json:"party_name,omitempty"`
	PostingDate time.Time           `json:"posting_date"`
}

// Eligible reports whether the document still has something left to settle
func (d *Document) Eligible() bool {
	return d.Outstanding.IsPositive()
}
