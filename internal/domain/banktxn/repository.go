package banktxn

import (
	"context"
	"time"

	"github.com/bank-reconciliation-engine/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// DateRange bounds a transaction listing; both ends are inclusive and a zero value is open
type DateRange struct {
	From time.Time
	To   time.Time
}

// Repository is the Transaction Store collaborator
type Repository interface {
	// ListTransactions returns transactions of the account ordered by date descending
	ListTransactions(ctx context.Context, bankAccount string, dateRange DateRange) ([]*Transaction, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Transaction, error)
	// UpdateStatus sets the reconciliation status; voucher must be non-nil for RECONCILED and is cleared otherwise
	UpdateStatus(ctx context.Context, id uuid.UUID, status shared.ReconciliationStatus, voucher *Voucher) error
	UpdateCategorization(ctx context.Context, id uuid.UUID, categorization *Categorization) error
	WithTx(tx pgx.Tx) Repository
}

// ErrTransactionNotFound indicates a missing bank transaction
type ErrTransactionNotFound struct {
	TransactionID uuid.UUID
}

func (e ErrTransactionNotFound) Error() string {
	return "bank transaction not found: " + e.TransactionID.String()
}

// Is implements the errors.Is interface for ErrTransactionNotFound
func (e ErrTransactionNotFound) Is(target error) bool {
	t, ok := target.(ErrTransactionNotFound)
	if !ok {
		return false
	}
	if t.TransactionID == uuid.Nil {
		return true
	}
	return e.TransactionID == t.TransactionID
}

// ErrMissingVoucher indicates an attempt to reconcile without a linked voucher
type ErrMissingVoucher struct {
	TransactionID uuid.UUID
}

func (e ErrMissingVoucher) Error() string {
	return "reconciled transaction requires a linked voucher: " + e.TransactionID.String()
}
