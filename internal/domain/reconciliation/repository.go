package reconciliation

import (
	"context"

	"github.com/google/uuid"
)

// ProposalRepository keeps the latest proposal list of Suggested transactions
type ProposalRepository interface {
	Replace(ctx context.Context, set *ProposalSet) error
	GetByTransactionID(ctx context.Context, transactionID uuid.UUID) (*ProposalSet, error)
	Clear(ctx context.Context, transactionID uuid.UUID) error
}

// PassRepository persists bulk pass records
type PassRepository interface {
	Create(ctx context.Context, pass *Pass) error
	GetByID(ctx context.Context, id uuid.UUID) (*Pass, error)
	Update(ctx context.Context, pass *Pass) error
	ListByBankAccount(ctx context.Context, bankAccount string, limit, offset int) ([]*Pass, error)
}

// ErrProposalsNotFound indicates no stored proposals for a transaction
type ErrProposalsNotFound struct {
	TransactionID uuid.UUID
}

func (e ErrProposalsNotFound) Error() string {
	return "no match proposals stored for transaction: " + e.TransactionID.String()
}

// Is implements the errors.Is interface for ErrProposalsNotFound
func (e ErrProposalsNotFound) Is(target error) bool {
	t, ok := target.(ErrProposalsNotFound)
	if !ok {
		return false
	}
	if t.TransactionID == uuid.Nil {
		return true
	}
	return e.TransactionID == t.TransactionID
}
