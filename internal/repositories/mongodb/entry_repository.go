package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/luckygiving/lottery-backend/internal/errs"
	"github.com/luckygiving/lottery-backend/internal/models"
	"github.com/luckygiving/lottery-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EntryRepository implements repositories.EntryRepository. A unique index
// on (drawId, subscriberId) enforces one entry per subscriber per draw.
type EntryRepository struct {
	collection *mongo.Collection
}

// NewEntryRepository creates a new EntryRepository
func NewEntryRepository(db *mongo.Database) repositories.EntryRepository {
	return &EntryRepository{
		collection: db.Collection("entries"),
	}
}

// Create creates a new entry
func (r *EntryRepository) Create(ctx context.Context, entry *models.Entry) error {
	entry.CreatedAt = time.Now()
	res, err := r.collection.InsertOne(ctx, entry)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("entry for subscriber %s in draw %s already exists: %w",
				entry.SubscriberID.Hex(), entry.DrawID.Hex(), errs.ErrPersistenceConflict)
		}
		return err
	}
	entry.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// FindByDrawID finds all entries of a draw in entry-id order. The order is
// load-bearing: remainder units of an uneven tier split go to the earliest
// entry ids.
func (r *EntryRepository) FindByDrawID(ctx context.Context, drawID primitive.ObjectID) ([]*models.Entry, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"drawId": drawID}, options.Find().SetSort(bson.M{"_id": 1}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var entries []*models.Entry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// FindByDrawAndSubscriber finds the entry a subscriber submitted for a draw
func (r *EntryRepository) FindByDrawAndSubscriber(ctx context.Context, drawID, subscriberID primitive.ObjectID) (*models.Entry, error) {
	var entry models.Entry
	err := r.collection.FindOne(ctx, bson.M{"drawId": drawID, "subscriberId": subscriberID}).Decode(&entry)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("entry for subscriber %s in draw %s: %w", subscriberID.Hex(), drawID.Hex(), errs.ErrNotFound)
		}
		return nil, err
	}
	return &entry, nil
}

// CountByDrawID counts the entries of a draw
func (r *EntryRepository) CountByDrawID(ctx context.Context, drawID primitive.ObjectID) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"drawId": drawID})
}
