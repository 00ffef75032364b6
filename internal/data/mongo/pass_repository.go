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
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	// PassCollectionName is the name of the reconciliation pass collection in MongoDB
	PassCollectionName = "reconciliation_passes"
)

type passDocument struct {
	ID            string                     `bson:"_id"`
	BankAccount   string                     `bson:"bank_account"`
	From          time.Time                  `bson:"from"`
	To            time.Time                  `bson:"to"`
	Status        string                     `bson:"status"`
	CorrelationID string                     `bson:"correlation_id,omitempty"`
	Result        *reconciliation.BulkResult `bson:"result,omitempty"`
	Error         string                     `bson:"error,omitempty"`
	RequestedAt   time.Time                  `bson:"requested_at"`
	StartedAt     *time.Time                 `bson:"started_at,omitempty"`
	CompletedAt   *time.Time                 `bson:"completed_at,omitempty"`
}

// PassRepository implements the reconciliation.PassRepository interface for MongoDB
type PassRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewPassRepository creates a new MongoDB reconciliation pass repository
func NewPassRepository(logger *slog.Logger, db *mongo.Database) reconciliation.PassRepository {
	return &PassRepository{
		db:     db,
		logger: logger,
	}
}

// Create stores a new pass record. Returns ErrPassAlreadyExists on a duplicate pass ID.
func (r *PassRepository) Create(ctx context.Context, pass *reconciliation.Pass) error {
	collection := r.db.Collection(PassCollectionName)

	_, err := collection.InsertOne(ctx, toPassDocument(pass))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return reconciliation.ErrPassAlreadyExists
		}
		r.logger.Error("Failed to create reconciliation pass",
			"pass_id", pass.ID.String(),
			"error", err)
		return fmt.Errorf("failed to create reconciliation pass: %w", err)
	}

	return nil
}

// GetByID retrieves a pass record
func (r *PassRepository) GetByID(ctx context.Context, id uuid.UUID) (*reconciliation.Pass, error) {
	collection := r.db.Collection(PassCollectionName)

	var doc passDocument
	err := collection.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, reconciliation.ErrPassNotFound{PassID: id}
		}
		r.logger.Error("Failed to get reconciliation pass",
			"pass_id", id.String(),
			"error", err)
		return nil, fmt.Errorf("failed to get reconciliation pass: %w", err)
	}

	return fromPassDocument(&doc)
}

// Update overwrites a pass record
func (r *PassRepository) Update(ctx context.Context, pass *reconciliation.Pass) error {
	collection := r.db.Collection(PassCollectionName)

	doc := toPassDocument(pass)
	result, err := collection.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc)
	if err != nil {
		r.logger.Error("Failed to update reconciliation pass",
			"pass_id", doc.ID,
			"status", doc.Status,
			"error", err)
		return fmt.Errorf("failed to update reconciliation pass: %w", err)
	}

	if result.MatchedCount == 0 {
		return reconciliation.ErrPassNotFound{PassID: pass.ID}
	}

	return nil
}

// ListByBankAccount returns passes of an account, most recently requested first
func (r *PassRepository) ListByBankAccount(ctx context.Context, bankAccount string, limit, offset int) ([]*reconciliation.Pass, error) {
	collection := r.db.Collection(PassCollectionName)

	opts := options.Find().
		SetSort(bson.D{{Key: "requested_at", Value: -1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := collection.Find(ctx, bson.M{"bank_account": bankAccount}, opts)
	if err != nil {
		r.logger.Error("Failed to list reconciliation passes",
			"bank_account", bankAccount,
			"error", err)
		return nil, fmt.Errorf("failed to list reconciliation passes: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []passDocument
	if err := cursor.All(ctx, &docs); err != nil {
		r.logger.Error("Failed to decode reconciliation passes",
			"bank_account", bankAccount,
			"error", err)
		return nil, fmt.Errorf("failed to decode reconciliation passes: %w", err)
	}

	passes := make([]*reconciliation.Pass, 0, len(docs))
	for i := range docs {
		pass, err := fromPassDocument(&docs[i])
		if err != nil {
			return nil, err
		}
		passes = append(passes, pass)
	}

	return passes, nil
}

func toPassDocument(pass *reconciliation.Pass) *passDocument {
	return &passDocument{
		ID:            pass.ID.String(),
		BankAccount:   pass.BankAccount,
		From:          pass.From,
		To:            pass.To,
		Status:        string(pass.Status),
		CorrelationID: pass.CorrelationID,
		Result:        pass.Result,
		Error:         pass.Error,
		RequestedAt:   pass.RequestedAt,
		StartedAt:     pass.StartedAt,
		CompletedAt:   pass.CompletedAt,
	}
}

func fromPassDocument(doc *passDocument) (*reconciliation.Pass, error) {
	id, err := uuid.Parse(doc.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid stored pass id %q: %w", doc.ID, err)
	}

	return &reconciliation.Pass{
		ID:            id,
		BankAccount:   doc.BankAccount,
		From:          doc.From,
		To:            doc.To,
		Status:        shared.PassStatus(doc.Status),
		CorrelationID: doc.CorrelationID,
		Result:        doc.Result,
		Error:         doc.Error,
		RequestedAt:   doc.RequestedAt,
		StartedAt:     doc.StartedAt,
		CompletedAt:   doc.CompletedAt,
	}, nil
}
