package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bank-reconciliation-engine/internal/domain/candidate"
	"github.com/bank-reconciliation-engine/internal/domain/shared"
	"github.com/bank-reconciliation-engine/internal/platform/persistence"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// CandidateRepository implements the candidate.Repository interface for PostgreSQL
type CandidateRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewCandidateRepository creates a new PostgreSQL candidate document repository
func NewCandidateRepository(logger *slog.Logger, db *persistence.PostgresDB) candidate.Repository {
	return &CandidateRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx returns a repository bound to tx
func (r *CandidateRepository) WithTx(tx pgx.Tx) candidate.Repository {
	return &CandidateRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// ListOutstanding returns open documents of the kind that settles direction, oldest first
func (r *CandidateRepository) ListOutstanding(ctx context.Context, direction shared.TransactionType, amountRange candidate.AmountRange) ([]*candidate.Document, error) {
	query := `
		SELECT id, doc_type, total, outstanding, party_type, party_id, party_name, posting_date
		FROM candidate_documents
		WHERE doc_type = $1 AND outstanding > 0 AND outstanding BETWEEN $2 AND $3
		ORDER BY posting_date ASC, id ASC
	`

	docType := shared.DocumentTypeFor(direction)
	rows, err := r.querier.Query(ctx, query, docType, amountRange.Min, amountRange.Max)
	if err != nil {
		r.logger.Error("Failed to list outstanding documents", "document_type", string(docType), "error", err)
		return nil, fmt.Errorf("failed to list outstanding documents: %w", err)
	}
	defer rows.Close()

	var documents []*candidate.Document
	for rows.Next() {
		var doc candidate.Document
		err := rows.Scan(
			&doc.ID,
			&doc.Type,
			&doc.Total,
			&doc.Outstanding,
			&doc.PartyType,
			&doc.PartyID,
			&doc.PartyName,
			&doc.PostingDate,
		)
		if err != nil {
			r.logger.Error("Failed to scan candidate document", "error", err)
			return nil, fmt.Errorf("failed to scan candidate document: %w", err)
		}
		documents = append(documents, &doc)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating over candidate documents", "error", err)
		return nil, fmt.Errorf("error iterating over candidate documents: %w", err)
	}

	return documents, nil
}

// ReduceOutstanding settles amount against a document. The update only applies while enough is
// outstanding, so concurrent settlements of one document cannot overdraw it.
func (r *CandidateRepository) ReduceOutstanding(ctx context.Context, documentID string, amount decimal.Decimal) error {
	query := `
		UPDATE candidate_documents
		SET outstanding = outstanding - $1
		WHERE id = $2 AND outstanding >= $1
	`

	result, err := r.querier.Exec(ctx, query, amount, documentID)
	if err != nil {
		r.logger.Error("Failed to reduce outstanding amount",
			"document_id", documentID,
			"amount", amount.String(),
			"error", err,
		)
		return fmt.Errorf("failed to reduce outstanding amount: %w", err)
	}

	if result.RowsAffected() == 0 {
		return r.missingOutstanding(ctx, documentID, amount)
	}

	return nil
}

// missingOutstanding tells an unknown document from one without enough left to settle
func (r *CandidateRepository) missingOutstanding(ctx context.Context, documentID string, amount decimal.Decimal) error {
	var exists bool
	err := r.querier.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM candidate_documents WHERE id = $1)`, documentID).Scan(&exists)
	if err != nil {
		r.logger.Error("Failed to check candidate document", "document_id", documentID, "error", err)
		return fmt.Errorf("failed to check candidate document: %w", err)
	}
	if !exists {
		return candidate.ErrDocumentNotFound{DocumentID: documentID}
	}

	r.logger.Warn("Candidate document has insufficient outstanding amount",
		"document_id", documentID,
		"amount", amount.String(),
	)
	return candidate.ErrInsufficientOutstanding{DocumentID: documentID, Requested: amount}
}
