package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// EnsureIndexes creates the secondary indexes used by the proposal and pass lookups
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(ProposalCollectionName).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "bank_account", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create match proposal index: %w", err)
	}

	_, err = db.Collection(PassCollectionName).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "bank_account", Value: 1}, {Key: "requested_at", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create reconciliation pass index: %w", err)
	}

	return nil
}
