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

// DrawRepository implements repositories.DrawRepository
type DrawRepository struct {
	collection *mongo.Collection
}

// NewDrawRepository creates a new DrawRepository
func NewDrawRepository(db *mongo.Database) repositories.DrawRepository {
	return &DrawRepository{
		collection: db.Collection("draws"),
	}
}

// Create creates a new draw. The unique index on label rejects a second
// draw for the same month.
func (r *DrawRepository) Create(ctx context.Context, draw *models.Draw) error {
	draw.CreatedAt = time.Now()
	draw.UpdatedAt = time.Now()
	res, err := r.collection.InsertOne(ctx, draw)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("draw %s already exists: %w", draw.Label, errs.ErrPersistenceConflict)
		}
		return err
	}
	draw.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// FindByID finds a draw by ID
func (r *DrawRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Draw, error) {
	var draw models.Draw
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&draw)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("draw %s: %w", id.Hex(), errs.ErrNotFound)
		}
		return nil, err
	}
	return &draw, nil
}

// FindByLabel finds a draw by its month label
func (r *DrawRepository) FindByLabel(ctx context.Context, label string) (*models.Draw, error) {
	var draw models.Draw
	err := r.collection.FindOne(ctx, bson.M{"label": label}).Decode(&draw)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("draw %s: %w", label, errs.ErrNotFound)
		}
		return nil, err
	}
	return &draw, nil
}

// FindByStatus finds draws by status
func (r *DrawRepository) FindByStatus(ctx context.Context, status models.DrawStatus) ([]*models.Draw, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"status": status}, options.Find().SetSort(bson.M{"label": -1}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var draws []*models.Draw
	if err := cursor.All(ctx, &draws); err != nil {
		return nil, err
	}
	return draws, nil
}

// FindAll finds draws with pagination, newest label first
func (r *DrawRepository) FindAll(ctx context.Context, page, limit int) ([]*models.Draw, error) {
	opts := options.Find().
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit)).
		SetSort(bson.M{"label": -1})

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var draws []*models.Draw
	if err := cursor.All(ctx, &draws); err != nil {
		return nil, err
	}
	return draws, nil
}

// UpdateStatus replaces the draw only if it is currently in the expected
// status. Returns false when the condition did not match, so concurrent
// transitions resolve to exactly one winner.
func (r *DrawRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, from models.DrawStatus, draw *models.Draw) (bool, error) {
	draw.UpdatedAt = time.Now()
	res, err := r.collection.ReplaceOne(ctx, bson.M{"_id": id, "status": from}, draw)
	if err != nil {
		return false, err
	}
	return res.MatchedCount == 1, nil
}
