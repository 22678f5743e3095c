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

// SubscriptionRepository implements repositories.SubscriptionRepository.
// The collection carries a unique index on subscriberId: the snapshot is
// keyed by subscriber and each write replaces the previous one whole.
type SubscriptionRepository struct {
	collection *mongo.Collection
}

// NewSubscriptionRepository creates a new SubscriptionRepository
func NewSubscriptionRepository(db *mongo.Database) repositories.SubscriptionRepository {
	return &SubscriptionRepository{
		collection: db.Collection("subscriptions"),
	}
}

// FindBySubscriberID finds the cached subscription snapshot for a subscriber
func (r *SubscriptionRepository) FindBySubscriberID(ctx context.Context, subscriberID primitive.ObjectID) (*models.Subscription, error) {
	var subscription models.Subscription
	err := r.collection.FindOne(ctx, bson.M{"subscriberId": subscriberID}).Decode(&subscription)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("subscription for subscriber %s: %w", subscriberID.Hex(), errs.ErrNotFound)
		}
		return nil, err
	}
	return &subscription, nil
}

// Upsert replaces the snapshot for the subscription's subscriber, creating
// it when absent. Duplicate-key races with a concurrent upsert surface as
// errs.ErrPersistenceConflict so the caller can retry.
func (r *SubscriptionRepository) Upsert(ctx context.Context, subscription *models.Subscription) error {
	filter := bson.M{"subscriberId": subscription.SubscriberID}
	update := bson.M{"$set": bson.M{
		"subscriberId":      subscription.SubscriberID,
		"providerSubId":     subscription.ProviderSubID,
		"status":            subscription.Status,
		"plan":              subscription.Plan,
		"periodStart":       subscription.PeriodStart,
		"periodEnd":         subscription.PeriodEnd,
		"cancelAtPeriodEnd": subscription.CancelAtPeriodEnd,
		"syncedAt":          subscription.SyncedAt,
	}}
	_, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("concurrent snapshot write for subscriber %s: %w", subscription.SubscriberID.Hex(), errs.ErrPersistenceConflict)
		}
		return err
	}
	return nil
}

// DeleteBySubscriberID removes the cached snapshot. Deleting an absent
// snapshot is not an error.
func (r *SubscriptionRepository) DeleteBySubscriberID(ctx context.Context, subscriberID primitive.ObjectID) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"subscriberId": subscriberID})
	return err
}
