package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bank-reconciliation-engine/internal/domain/banktxn"
	"github.com/bank-reconciliation-engine/internal/domain/shared"
	"github.com/bank-reconciliation-engine/internal/platform/persistence"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const bankTransactionColumns = `id, bank_account, date, description, deposit, withdrawal, party_type, party_id,
		reference_number, status, voucher_type, voucher_id, voucher_amount,
		category_account, category_party_type, category_party, category_rule_id, created_at, updated_at`

// BankTransactionRepository implements the banktxn.Repository interface for PostgreSQL
type BankTransactionRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewBankTransactionRepository creates a new PostgreSQL bank transaction repository
func NewBankTransactionRepository(logger *slog.Logger, db *persistence.PostgresDB) banktxn.Repository {
	return &BankTransactionRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx returns a repository bound to tx so status updates commit with candidate and outbox writes
func (r *BankTransactionRepository) WithTx(tx pgx.Tx) banktxn.Repository {
	return &BankTransactionRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// ListTransactions returns the account's transactions newest first
func (r *BankTransactionRepository) ListTransactions(ctx context.Context, bankAccount string, dateRange banktxn.DateRange) ([]*banktxn.Transaction, error) {
	query := `
		SELECT ` + bankTransactionColumns + `
		FROM bank_transactions
		WHERE bank_account = $1
		  AND ($2::date IS NULL OR date >= $2)
		  AND ($3::date IS NULL OR date <= $3)
		ORDER BY date DESC, created_at DESC, id ASC
	`

	rows, err := r.querier.Query(ctx, query, bankAccount, nullableTime(dateRange.From), nullableTime(dateRange.To))
	if err != nil {
		r.logger.Error("Failed to list bank transactions", "bank_account", bankAccount, "error", err)
		return nil, fmt.Errorf("failed to list bank transactions: %w", err)
	}
	defer rows.Close()

	var transactions []*banktxn.Transaction
	for rows.Next() {
		txn, err := scanBankTransaction(rows)
		if err != nil {
			r.logger.Error("Failed to scan bank transaction", "error", err)
			return nil, fmt.Errorf("failed to scan bank transaction: %w", err)
		}
		transactions = append(transactions, txn)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating over bank transactions", "error", err)
		return nil, fmt.Errorf("error iterating over bank transactions: %w", err)
	}

	return transactions, nil
}

// GetByID retrieves one bank transaction
func (r *BankTransactionRepository) GetByID(ctx context.Context, id uuid.UUID) (*banktxn.Transaction, error) {
	query := `
		SELECT ` + bankTransactionColumns + `
		FROM bank_transactions
		WHERE id = $1
	`

	txn, err := scanBankTransaction(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, banktxn.ErrTransactionNotFound{TransactionID: id}
		}
		r.logger.Error("Failed to get bank transaction", "transaction_id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get bank transaction: %w", err)
	}

	return txn, nil
}

// UpdateStatus writes the reconciliation status and linked voucher.
// Statuses other than RECONCILED clear any previous voucher.
func (r *BankTransactionRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status shared.ReconciliationStatus, voucher *banktxn.Voucher) error {
	if status == shared.StatusReconciled && voucher == nil {
		return banktxn.ErrMissingVoucher{TransactionID: id}
	}

	var voucherType, voucherID, voucherAmount interface{}
	if status == shared.StatusReconciled {
		voucherType, voucherID, voucherAmount = voucher.Type, voucher.ID, voucher.Amount
	}

	query := `
		UPDATE bank_transactions
		SET status = $1, voucher_type = $2, voucher_id = $3, voucher_amount = $4, updated_at = $5
		WHERE id = $6
	`

	result, err := r.querier.Exec(ctx, query, status, voucherType, voucherID, voucherAmount, time.Now(), id)
	if err != nil {
		r.logger.Error("Failed to update bank transaction status",
			"transaction_id", id.String(),
			"status", string(status),
			"error", err,
		)
		return fmt.Errorf("failed to update bank transaction status: %w", err)
	}

	if result.RowsAffected() == 0 {
		return banktxn.ErrTransactionNotFound{TransactionID: id}
	}

	return nil
}

// UpdateCategorization stores the account and party assigned by a bank rule
func (r *BankTransactionRepository) UpdateCategorization(ctx context.Context, id uuid.UUID, categorization *banktxn.Categorization) error {
	if categorization == nil {
		return errors.New("categorization cannot be nil")
	}

	query := `
		UPDATE bank_transactions
		SET category_account = $1, category_party_type = $2, category_party = $3, category_rule_id = $4, updated_at = $5
		WHERE id = $6
	`

	result, err := r.querier.Exec(ctx, query,
		categorization.Account,
		categorization.PartyType,
		categorization.Party,
		categorization.RuleID,
		time.Now(),
		id,
	)
	if err != nil {
		r.logger.Error("Failed to update bank transaction categorization", "transaction_id", id.String(), "error", err)
		return fmt.Errorf("failed to update bank transaction categorization: %w", err)
	}

	if result.RowsAffected() == 0 {
		return banktxn.ErrTransactionNotFound{TransactionID: id}
	}

	return nil
}

func scanBankTransaction(row pgx.Row) (*banktxn.Transaction, error) {
	var (
		txn               banktxn.Transaction
		voucherType       *string
		voucherID         *string
		voucherAmount     decimal.NullDecimal
		categoryAccount   *string
		categoryPartyType *string
		categoryParty     *string
		categoryRuleID    *uuid.UUID
	)

	err := row.Scan(
		&txn.ID,
		&txn.BankAccount,
		&txn.Date,
		&txn.Description,
		&txn.Deposit,
		&txn.Withdrawal,
		&txn.PartyType,
		&txn.PartyID,
		&txn.ReferenceNumber,
		&txn.Status,
		&voucherType,
		&voucherID,
		&voucherAmount,
		&categoryAccount,
		&categoryPartyType,
		&categoryParty,
		&categoryRuleID,
		&txn.CreatedAt,
		&txn.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if voucherID != nil {
		txn.Voucher = &banktxn.Voucher{ID: *voucherID, Amount: voucherAmount.Decimal}
		if voucherType != nil {
			txn.Voucher.Type = *voucherType
		}
	}
	if categoryAccount != nil {
		txn.Categorization = &banktxn.Categorization{Account: *categoryAccount, RuleID: categoryRuleID}
		if categoryPartyType != nil {
			txn.Categorization.PartyType = *categoryPartyType
		}
		if categoryParty != nil {
			txn.Categorization.Party = *categoryParty
		}
	}

	return &txn, nil
}

func nullableTime(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t
}
