package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the unique indexes the settlement invariants depend
// on. Called once at startup; index creation is idempotent.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		"subscribers": {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		"subscriptions": {
			{Keys: bson.D{{Key: "subscriberId", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		"draws": {
			{Keys: bson.D{{Key: "label", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		"entries": {
			{Keys: bson.D{{Key: "drawId", Value: 1}, {Key: "subscriberId", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		"winners": {
			{Keys: bson.D{{Key: "drawId", Value: 1}, {Key: "subscriberId", Value: 1}, {Key: "tier", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "status", Value: 1}}},
		},
		"rollovers": {
			{Keys: bson.D{{Key: "destinationLabel", Value: 1}, {Key: "applied", Value: 1}}},
		},
		"ledger": {
			{Keys: bson.D{{Key: "winnerId", Value: 1}}},
			{Keys: bson.D{{Key: "drawId", Value: 1}}},
		},
		"admin_users": {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		"system_config": {
			{Keys: bson.D{{Key: "key", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
	}

	for collection, models := range indexes {
		if _, err := db.Collection(collection).Indexes().CreateMany(ctx, models); err != nil {
			return err
		}
	}
	return nil
}
