package mongodb

import (
	"context"
	"time"

	"github.com/luckygiving/lottery-backend/internal/models"
	"github.com/luckygiving/lottery-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// RolloverRepository implements repositories.RolloverRepository
type RolloverRepository struct {
	collection *mongo.Collection
}

// NewRolloverRepository creates a new RolloverRepository
func NewRolloverRepository(db *mongo.Database) repositories.RolloverRepository {
	return &RolloverRepository{
		collection: db.Collection("rollovers"),
	}
}

// Create creates a new rollover row
func (r *RolloverRepository) Create(ctx context.Context, rollover *models.Rollover) error {
	rollover.CreatedAt = time.Now()
	res, err := r.collection.InsertOne(ctx, rollover)
	if err != nil {
		return err
	}
	rollover.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// FindPendingByDestination finds unapplied rollovers destined for a draw label
func (r *RolloverRepository) FindPendingByDestination(ctx context.Context, destinationLabel string) ([]*models.Rollover, error) {
	filter := bson.M{"destinationLabel": destinationLabel, "applied": false}
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.M{"_id": 1}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rollovers []*models.Rollover
	if err := cursor.All(ctx, &rollovers); err != nil {
		return nil, err
	}
	return rollovers, nil
}

// MarkApplied marks a rollover as consumed by a scheduled draw
func (r *RolloverRepository) MarkApplied(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"applied": true}})
	return err
}
