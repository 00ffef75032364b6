package candidate

import (
	"context"

	"github.com/bank-reconciliation-engine/internal/domain/shared"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// AmountRange bounds outstanding amounts; both ends inclusive
type AmountRange struct {
	Min decimal.Decimal
	Max decimal.Decimal
}

// Contains reports whether amount lies in the range
func (r AmountRange) Contains(amount decimal.Decimal) bool {
	return amount.GreaterThanOrEqual(r.Min) && amount.LessThanOrEqual(r.Max)
}

// Repository is the Candidate Lookup collaborator
type Repository interface {
	// ListOutstanding returns documents of the kind matching direction whose outstanding amount is positive and within amountRange
	ListOutstanding(ctx context.Context, direction shared.TransactionType, amountRange AmountRange) ([]*Document, error)
	// ReduceOutstanding decrements a document's outstanding amount. It fails with
	// ErrInsufficientOutstanding, changing nothing, when less than amount is left.
	ReduceOutstanding(ctx context.Context, documentID string, amount decimal.Decimal) error
	WithTx(tx pgx.Tx) Repository
}

// ErrDocumentNotFound indicates a missing candidate document
type ErrDocumentNotFound struct {
	DocumentID string
}

func (e ErrDocumentNotFound) Error() string {
	return "candidate document not found: " + e.DocumentID
}

// Is implements the errors.Is interface for ErrDocumentNotFound
func (e ErrDocumentNotFound) Is(target error) bool {
	t, ok := target.(ErrDocumentNotFound)
	if !ok {
		return false
	}
	if t.DocumentID == "" {
		return true
	}
	return e.DocumentID == t.DocumentID
}

// ErrInsufficientOutstanding indicates a document has already been settled, fully or in part,
// by another transaction
type ErrInsufficientOutstanding struct {
	DocumentID string
	Requested  decimal.Decimal
}

func (e ErrInsufficientOutstanding) Error() string {
	return "candidate document " + e.DocumentID + " has less than " + e.Requested.StringFixed(2) + " outstanding"
}

// Is implements the errors.Is interface for ErrInsufficientOutstanding
func (e ErrInsufficientOutstanding) Is(target error) bool {
	t, ok := target.(ErrInsufficientOutstanding)
	if !ok {
		return false
	}
	if t.DocumentID == "" {
		return true
	}
	return e.DocumentID == t.DocumentID
}
