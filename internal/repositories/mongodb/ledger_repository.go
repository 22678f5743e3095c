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

// LedgerRepository implements repositories.LedgerRepository. Rows are
// append-only; there are no update or delete operations on purpose.
type LedgerRepository struct {
	collection *mongo.Collection
}

// NewLedgerRepository creates a new LedgerRepository
func NewLedgerRepository(db *mongo.Database) repositories.LedgerRepository {
	return &LedgerRepository{
		collection: db.Collection("ledger"),
	}
}

// Create appends a ledger row
func (r *LedgerRepository) Create(ctx context.Context, entry *models.LedgerEntry) error {
	entry.CreatedAt = time.Now()
	res, err := r.collection.InsertOne(ctx, entry)
	if err != nil {
		return err
	}
	entry.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// FindByWinnerID finds the ledger rows of a winner record in event order
func (r *LedgerRepository) FindByWinnerID(ctx context.Context, winnerID primitive.ObjectID) ([]*models.LedgerEntry, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"winnerId": winnerID}, options.Find().SetSort(bson.M{"_id": 1}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var entries []*models.LedgerEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// FindByDrawID finds all ledger rows of a draw in event order
func (r *LedgerRepository) FindByDrawID(ctx context.Context, drawID primitive.ObjectID) ([]*models.LedgerEntry, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"drawId": drawID}, options.Find().SetSort(bson.M{"_id": 1}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var entries []*models.LedgerEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
