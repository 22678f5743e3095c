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
)

// SubscriberRepository implements repositories.SubscriberRepository
type SubscriberRepository struct {
	collection *mongo.Collection
}

// NewSubscriberRepository creates a new SubscriberRepository
func NewSubscriberRepository(db *mongo.Database) repositories.SubscriberRepository {
	return &SubscriberRepository{
		collection: db.Collection("subscribers"),
	}
}

// Create creates a new subscriber
func (r *SubscriberRepository) Create(ctx context.Context, subscriber *models.Subscriber) error {
	subscriber.CreatedAt = time.Now()
	subscriber.UpdatedAt = time.Now()
	if subscriber.SubscriptionStatus == "" {
		subscriber.SubscriptionStatus = models.SubscriptionStatusNone
	}
	if subscriber.Plan == "" {
		subscriber.Plan = models.PlanNone
	}
	res, err := r.collection.InsertOne(ctx, subscriber)
	if err != nil {
		return err
	}
	subscriber.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// FindByID finds a subscriber by ID
func (r *SubscriberRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Subscriber, error) {
	var subscriber models.Subscriber
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&subscriber)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("subscriber %s: %w", id.Hex(), errs.ErrNotFound)
		}
		return nil, err
	}
	return &subscriber, nil
}

// FindByEmail finds a subscriber by email
func (r *SubscriberRepository) FindByEmail(ctx context.Context, email string) (*models.Subscriber, error) {
	var subscriber models.Subscriber
	err := r.collection.FindOne(ctx, bson.M{"email": email}).Decode(&subscriber)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("subscriber %s: %w", email, errs.ErrNotFound)
		}
		return nil, err
	}
	return &subscriber, nil
}

// Update updates a subscriber
func (r *SubscriberRepository) Update(ctx context.Context, subscriber *models.Subscriber) error {
	subscriber.UpdatedAt = time.Now()
	res, err := r.collection.ReplaceOne(ctx, bson.M{"_id": subscriber.ID}, subscriber)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("subscriber %s: %w", subscriber.ID.Hex(), errs.ErrNotFound)
	}
	return nil
}
