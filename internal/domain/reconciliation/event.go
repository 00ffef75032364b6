package reconciliation

import (
	"time"

	"github.com/bank-reconciliation-engine/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event announces a reconciliation status change of a bank transaction
type Event struct {
	TransactionID uuid.UUID                   `json:"transaction_id"`
	BankAccount   string                      `json:"bank_account"`
	Status        shared.ReconciliationStatus `json:"status"`
	VoucherType   string                      `json:"voucher_type,omitempty"`
	VoucherID     string                      `json:"voucher_id,omitempty"`
	Amount        decimal.Decimal             `json:"amount"`
	RuleID        *uuid.UUID                  `json:"rule_id,omitempty"`
	OccurredAt    time.Time                   `json:"occurred_at"`
}
