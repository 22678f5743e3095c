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

// WinnerRepository implements repositories.WinnerRepository. The collection
// carries a unique index on (drawId, subscriberId, tier) so a subscriber
// cannot double-win the same tier in the same draw.
type WinnerRepository struct {
	collection *mongo.Collection
}

// NewWinnerRepository creates a new WinnerRepository
func NewWinnerRepository(db *mongo.Database) repositories.WinnerRepository {
	return &WinnerRepository{
		collection: db.Collection("winners"),
	}
}

// CreateMany inserts a batch of winner records
func (r *WinnerRepository) CreateMany(ctx context.Context, winners []*models.Winner) error {
	if len(winners) == 0 {
		return nil
	}
	now := time.Now()
	docs := make([]interface{}, 0, len(winners))
	for _, w := range winners {
		w.CreatedAt = now
		w.UpdatedAt = now
		docs = append(docs, w)
	}
	res, err := r.collection.InsertMany(ctx, docs)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("winner records already exist: %w", errs.ErrPersistenceConflict)
		}
		return err
	}
	for i, id := range res.InsertedIDs {
		winners[i].ID = id.(primitive.ObjectID)
	}
	return nil
}

// FindByID finds a winner by ID
func (r *WinnerRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Winner, error) {
	var winner models.Winner
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&winner)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("winner %s: %w", id.Hex(), errs.ErrNotFound)
		}
		return nil, err
	}
	return &winner, nil
}

// FindByDrawID finds all winners of a draw, entry-id order
func (r *WinnerRepository) FindByDrawID(ctx context.Context, drawID primitive.ObjectID) ([]*models.Winner, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"drawId": drawID}, options.Find().SetSort(bson.M{"entryId": 1}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var winners []*models.Winner
	if err := cursor.All(ctx, &winners); err != nil {
		return nil, err
	}
	return winners, nil
}

// FindByStatus finds winners by verification status with pagination
func (r *WinnerRepository) FindByStatus(ctx context.Context, status models.VerificationStatus, page, limit int) ([]*models.Winner, error) {
	opts := options.Find().
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit)).
		SetSort(bson.M{"createdAt": -1})

	cursor, err := r.collection.Find(ctx, bson.M{"status": status}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var winners []*models.Winner
	if err := cursor.All(ctx, &winners); err != nil {
		return nil, err
	}
	return winners, nil
}

// TransitionVerification moves a PENDING winner to VERIFIED or REJECTED.
// The filter includes the current status, so of two concurrent calls
// exactly one matches; (nil, nil) means the record was not PENDING or does
// not exist, and the caller disambiguates.
func (r *WinnerRepository) TransitionVerification(ctx context.Context, id primitive.ObjectID, to models.VerificationStatus, adminID string) (*models.Winner, error) {
	now := time.Now()
	filter := bson.M{"_id": id, "status": models.VerificationPending}
	update := bson.M{"$set": bson.M{
		"status":     to,
		"verifiedBy": adminID,
		"verifiedAt": now,
		"updatedAt":  now,
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var winner models.Winner
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&winner)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &winner, nil
}

// MarkPaid settles a VERIFIED, unpaid winner. Same conditional-update
// contract as TransitionVerification.
func (r *WinnerRepository) MarkPaid(ctx context.Context, id primitive.ObjectID, payoutRef string) (*models.Winner, error) {
	now := time.Now()
	filter := bson.M{"_id": id, "status": models.VerificationVerified, "isPaid": false}
	update := bson.M{"$set": bson.M{
		"isPaid":    true,
		"payoutRef": payoutRef,
		"settledAt": now,
		"updatedAt": now,
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var winner models.Winner
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&winner)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &winner, nil
}
