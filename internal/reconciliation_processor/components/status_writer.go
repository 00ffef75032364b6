package components

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bank-reconciliation-engine/internal/domain/banktxn"
	"github.com/bank-reconciliation-engine/internal/domain/candidate"
	"github.com/bank-reconciliation-engine/internal/domain/outbox"
	"github.com/bank-reconciliation-engine/internal/domain/reconciliation"
	"github.com/bank-reconciliation-engine/internal/domain/shared"
	"github.com/bank-reconciliation-engine/internal/platform/persistence"
	"github.com/bank-reconciliation-engine/internal/reconciliation_processor/service"
	"github.com/jackc/pgx/v5"
)

// StatusWriterImpl persists a status change, its categorization, the candidate allocation
// and the outbox event in a single PostgreSQL transaction.
type StatusWriterImpl struct {
	db           persistence.TxExecutor
	transactions banktxn.Repository
	candidates   candidate.Repository
	outboxRepo   outbox.Repository
	logger       *slog.Logger
}

func NewStatusWriter(
	db persistence.TxExecutor,
	transactions banktxn.Repository,
	candidates candidate.Repository,
	outboxRepo outbox.Repository,
	logger *slog.Logger,
) service.StatusWriter {
	return &StatusWriterImpl{
		db:           db,
		transactions: transactions,
		candidates:   candidates,
		outboxRepo:   outboxRepo,
		logger:       logger,
	}
}

// WriteStatus applies change atomically
func (w *StatusWriterImpl) WriteStatus(ctx context.Context, change *banktxn.StatusChange) error {
	txn := change.Transaction
	if change.Status == shared.StatusReconciled && change.Voucher == nil {
		return banktxn.ErrMissingVoucher{TransactionID: txn.ID}
	}

	event := &reconciliation.Event{
		TransactionID: txn.ID,
		BankAccount:   txn.BankAccount,
		Status:        change.Status,
		Amount:        txn.Amount(),
		OccurredAt:    time.Now(),
	}
	if change.Voucher != nil {
		event.VoucherType = change.Voucher.Type
		event.VoucherID = change.Voucher.ID
	}
	if change.Categorization != nil {
		event.RuleID = change.Categorization.RuleID
	}

	message, err := outbox.NewMessage(event)
	if err != nil {
		return fmt.Errorf("failed to create outbox message payload for transaction %s: %w", txn.ID, err)
	}

	err = w.db.ExecuteTx(ctx, func(tx pgx.Tx) error {
		if err := w.transactions.WithTx(tx).UpdateStatus(ctx, txn.ID, change.Status, change.Voucher); err != nil {
			return err
		}

		if change.Categorization != nil {
			if err := w.transactions.WithTx(tx).UpdateCategorization(ctx, txn.ID, change.Categorization); err != nil {
				return err
			}
		}

		if change.Voucher != nil && change.Voucher.Type != shared.VoucherTypeBankRule {
			if err := w.candidates.WithTx(tx).ReduceOutstanding(ctx, change.Voucher.ID, change.Voucher.Amount); err != nil {
				return err
			}
		}

		return w.outboxRepo.WithTx(tx).Create(ctx, message)
	})
	if err != nil {
		w.logger.Error("Failed to write reconciliation status",
			"transaction_id", txn.ID.String(),
			"status", string(change.Status),
			"error", err,
		)
		return err
	}

	w.logger.Debug("Reconciliation status written",
		"transaction_id", txn.ID.String(),
		"status", string(change.Status),
		"outbox_id", message.ID,
	)
	return nil
}
