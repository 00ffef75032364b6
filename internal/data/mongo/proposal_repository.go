package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bank-reconciliation-engine/internal/domain/reconciliation"
	"github.com/bank-reconciliation-engine/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	// ProposalCollectionName is the name of the match proposal collection in MongoDB
	ProposalCollectionName = "match_proposals"
)

type proposalDocument struct {
	DocumentID     string               `bson:"document_id"`
	DocumentType   string               `bson:"document_type"`
	Outstanding    primitive.Decimal128 `bson:"outstanding"`
	Difference     primitive.Decimal128 `bson:"difference"`
	Confidence     float64              `bson:"confidence"`
	TextSimilarity float64              `bson:"text_similarity"`
	PostingDate    time.Time            `bson:"posting_date"`
	Rank           int                  `bson:"rank"`
}

type proposalSetDocument struct {
	TransactionID string             `bson:"_id"`
	BankAccount   string             `bson:"bank_account"`
	PassID        string             `bson:"pass_id,omitempty"`
	Proposals     []proposalDocument `bson:"proposals"`
	CreatedAt     time.Time          `bson:"created_at"`
}

// ProposalRepository implements the reconciliation.ProposalRepository interface for MongoDB
type ProposalRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewProposalRepository creates a new MongoDB match proposal repository
func NewProposalRepository(logger *slog.Logger, db *mongo.Database) reconciliation.ProposalRepository {
	return &ProposalRepository{
		db:     db,
		logger: logger,
	}
}

// Replace stores set as the only proposal list of its transaction
func (r *ProposalRepository) Replace(ctx context.Context, set *reconciliation.ProposalSet) error {
	doc, err := toProposalSetDocument(set)
	if err != nil {
		return fmt.Errorf("failed to encode match proposals: %w", err)
	}

	collection := r.db.Collection(ProposalCollectionName)
	filter := bson.M{"_id": doc.TransactionID}
	_, err = collection.ReplaceOne(ctx, filter, doc, options.Replace().SetUpsert(true))
	if err != nil {
		r.logger.Error("Failed to store match proposals",
			"transaction_id", doc.TransactionID,
			"error", err)
		return fmt.Errorf("failed to store match proposals: %w", err)
	}

	return nil
}

// GetByTransactionID returns the stored proposals of a Suggested transaction
func (r *ProposalRepository) GetByTransactionID(ctx context.Context, transactionID uuid.UUID) (*reconciliation.ProposalSet, error) {
	collection := r.db.Collection(ProposalCollectionName)

	var doc proposalSetDocument
	err := collection.FindOne(ctx, bson.M{"_id": transactionID.String()}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, reconciliation.ErrProposalsNotFound{TransactionID: transactionID}
		}
		r.logger.Error("Failed to get match proposals",
			"transaction_id", transactionID.String(),
			"error", err)
		return nil, fmt.Errorf("failed to get match proposals: %w", err)
	}

	return fromProposalSetDocument(&doc)
}

// Clear removes stored proposals; clearing an absent list is not an error
func (r *ProposalRepository) Clear(ctx context.Context, transactionID uuid.UUID) error {
	collection := r.db.Collection(ProposalCollectionName)

	_, err := collection.DeleteOne(ctx, bson.M{"_id": transactionID.String()})
	if err != nil {
		r.logger.Error("Failed to clear match proposals",
			"transaction_id", transactionID.String(),
			"error", err)
		return fmt.Errorf("failed to clear match proposals: %w", err)
	}

	return nil
}

func toProposalSetDocument(set *reconciliation.ProposalSet) (*proposalSetDocument, error) {
	doc := &proposalSetDocument{
		TransactionID: set.TransactionID.String(),
		BankAccount:   set.BankAccount,
		Proposals:     make([]proposalDocument, 0, len(set.Proposals)),
		CreatedAt:     set.CreatedAt,
	}
	if set.PassID != uuid.Nil {
		doc.PassID = set.PassID.String()
	}

	for _, p := range set.Proposals {
		outstanding, err := toDecimal128(p.Outstanding)
		if err != nil {
			return nil, err
		}
		difference, err := toDecimal128(p.Difference)
		if err != nil {
			return nil, err
		}
		doc.Proposals = append(doc.Proposals, proposalDocument{
			DocumentID:     p.DocumentID,
			DocumentType:   string(p.DocumentType),
			Outstanding:    outstanding,
			Difference:     difference,
			Confidence:     p.Confidence,
			TextSimilarity: p.TextSimilarity,
			PostingDate:    p.PostingDate,
			Rank:           p.Rank,
		})
	}

	return doc, nil
}

func fromProposalSetDocument(doc *proposalSetDocument) (*reconciliation.ProposalSet, error) {
	transactionID, err := uuid.Parse(doc.TransactionID)
	if err != nil {
		return nil, fmt.Errorf("invalid stored transaction id %q: %w", doc.TransactionID, err)
	}

	set := &reconciliation.ProposalSet{
		TransactionID: transactionID,
		BankAccount:   doc.BankAccount,
		Proposals:     make([]reconciliation.MatchProposal, 0, len(doc.Proposals)),
		CreatedAt:     doc.CreatedAt,
	}
	if doc.PassID != "" {
		if set.PassID, err = uuid.Parse(doc.PassID); err != nil {
			return nil, fmt.Errorf("invalid stored pass id %q: %w", doc.PassID, err)
		}
	}

	for _, p := range doc.Proposals {
		outstanding, err := fromDecimal128(p.Outstanding)
		if err != nil {
			return nil, err
		}
		difference, err := fromDecimal128(p.Difference)
		if err != nil {
			return nil, err
		}
		set.Proposals = append(set.Proposals, reconciliation.MatchProposal{
			TransactionID:  transactionID,
			DocumentID:     p.DocumentID,
			DocumentType:   shared.DocumentType(p.DocumentType),
			Outstanding:    outstanding,
			Difference:     difference,
			Confidence:     p.Confidence,
			TextSimilarity: p.TextSimilarity,
			PostingDate:    p.PostingDate,
			Rank:           p.Rank,
		})
	}

	return set, nil
}

func toDecimal128(d decimal.Decimal) (primitive.Decimal128, error) {
	return primitive.ParseDecimal128(d.String())
}

func fromDecimal128(d primitive.Decimal128) (decimal.Decimal, error) {
	return decimal.NewFromString(d.String())
}
