// Package banktxn models bank-feed transactions subject to reconciliation.
package banktxn

import (
	"time"

	"github.com/bank-reconciliation-engine/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Voucher is the document a reconciled transaction is linked to
type Voucher struct {
	Type   string          `json:"type"`
	ID     string          `json:"id"`
	Amount decimal.Decimal `json:"amount"`
}

// Categorization holds the account and party assigned by a bank rule
type Categorization struct {
	Account   string     `json:"account"`
	PartyType string     `json:"party_type,omitempty"`
	Party     string     `json:"party,omitempty"`
	RuleID    *uuid.UUID `json:"rule_id,omitempty"`
}

// Transaction represents an imported bank-feed line
type Transaction struct {
	ID              uuid.UUID                   `json:"id"`
	BankAccount     string                      `json:"bank_account"`
	Date            time.Time                   `json:"date"`
	Description     string                      `json:"description"`
	Deposit         decimal.Decimal             `json:"deposit"`
	Withdrawal      decimal.Decimal             `json:"withdrawal"`
	PartyType       string                      `json:"party_type,omitempty"`
	PartyID         string                      `json:"party_id,omitempty"`
	ReferenceNumber string                      `json:"reference_number,omitempty"`
	Status          shared.ReconciliationStatus `json:"status"`
	Voucher         *Voucher                    `json:"voucher,omitempty"`
	Categorization  *Categorization             `json:"categorization,omitempty"`
	CreatedAt       time.Time                   `json:"created_at"`
	UpdatedAt       time.Time                   `json:"updated_at"`
}

// Direction reports whether the transaction is a deposit or a withdrawal.
// Exactly one of the two amounts must be nonzero and neither may be negative.
func (t *Transaction) Direction() (shared.TransactionType, error) {
	if t.Deposit.IsNegative() || t.Withdrawal.IsNegative() {
		return "", shared.InvalidTransactionError{TransactionID: t.ID, Reason: "amounts must not be negative"}
	}

	depositSet := !t.Deposit.IsZero()
	withdrawalSet := !t.Withdrawal.IsZero()

	switch {
	case depositSet && withdrawalSet:
		return "", shared.InvalidTransactionError{TransactionID: t.ID, Reason: "both deposit and withdrawal are nonzero"}
	case depositSet:
		return shared.TransactionTypeDeposit, nil
	case withdrawalSet:
		return shared.TransactionTypeWithdrawal, nil
	default:
		return "", shared.InvalidTransactionError{TransactionID: t.ID, Reason: "both deposit and withdrawal are zero"}
	}
}

// Amount returns the nonzero side of the transaction
func (t *Transaction) Amount() decimal.Decimal {
	if !t.Deposit.IsZero() {
		return t.Deposit
	}
	return t.Withdrawal
}

// IsReconciled reports whether the transaction is already settled
func (t *Transaction) IsReconciled() bool {
	return t.Status == shared.StatusReconciled
}

// StatusChange is one reconciliation status transition to persist atomically
type StatusChange struct {
	Transaction    *Transaction
	Status         shared.ReconciliationStatus
	Voucher        *Voucher
	Categorization *Categorization
}

// Apply copies the persisted change onto the in-memory transaction
func (c *StatusChange) Apply() {
	c.Transaction.Status = c.Status
	c.Transaction.Voucher = c.Voucher
	if c.Categorization != nil {
		c.Transaction.Categorization = c.Categorization
	}
}
