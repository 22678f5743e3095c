package mongodb

import (
	"context"
	"errors"
	"fmt"

	"github.com/luckygiving/lottery-backend/internal/errs"
	"github.com/luckygiving/lottery-backend/internal/models"
	"github.com/luckygiving/lottery-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CharityRepository implements repositories.CharityRepository
type CharityRepository struct {
	collection *mongo.Collection
}

// NewCharityRepository creates a new CharityRepository
func NewCharityRepository(db *mongo.Database) repositories.CharityRepository {
	return &CharityRepository{
		collection: db.Collection("charities"),
	}
}

// FindByID finds a charity by ID
func (r *CharityRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Charity, error) {
	var charity models.Charity
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&charity)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("charity %s: %w", id.Hex(), errs.ErrNotFound)
		}
		return nil, err
	}
	return &charity, nil
}

// FindActive finds all active charities sorted by name
func (r *CharityRepository) FindActive(ctx context.Context) ([]*models.Charity, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"active": true}, options.Find().SetSort(bson.M{"name": 1}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var charities []*models.Charity
	if err := cursor.All(ctx, &charities); err != nil {
		return nil, err
	}
	return charities, nil
}
