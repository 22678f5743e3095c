package repositories

import (
	"context"

	"github.com/luckygiving/lottery-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SubscriberRepository defines the interface for subscriber data operations
type SubscriberRepository interface {
	Create(ctx context.Context, subscriber *models.Subscriber) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Subscriber, error)
	FindByEmail(ctx context.Context, email string) (*models.Subscriber, error)
	Update(ctx context.Context, subscriber *models.Subscriber) error
}

// SubscriptionRepository defines the interface for the cached billing
// snapshot. Upsert replaces the whole snapshot for the subscriber
// (last-write-wins); DeleteBySubscriberID is a no-op when nothing is cached.
type SubscriptionRepository interface {
	FindBySubscriberID(ctx context.Context, subscriberID primitive.ObjectID) (*models.Subscription, error)
	Upsert(ctx context.Context, subscription *models.Subscription) error
	DeleteBySubscriberID(ctx context.Context, subscriberID primitive.ObjectID) error
}

// DrawRepository defines the interface for draw data operations.
// UpdateStatus performs a conditional transition: it succeeds only when the
// draw is currently in the expected status, and reports whether a document
// was transitioned.
type DrawRepository interface {
	Create(ctx context.Context, draw *models.Draw) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Draw, error)
	FindByLabel(ctx context.Context, label string) (*models.Draw, error)
	FindByStatus(ctx context.Context, status models.DrawStatus) ([]*models.Draw, error)
	FindAll(ctx context.Context, page, limit int) ([]*models.Draw, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, from models.DrawStatus, draw *models.Draw) (bool, error)
}

// EntryRepository defines the interface for entry data operations
type EntryRepository interface {
	Create(ctx context.Context, entry *models.Entry) error
	FindByDrawID(ctx context.Context, drawID primitive.ObjectID) ([]*models.Entry, error)
	FindByDrawAndSubscriber(ctx context.Context, drawID, subscriberID primitive.ObjectID) (*models.Entry, error)
	CountByDrawID(ctx context.Context, drawID primitive.ObjectID) (int64, error)
}

// WinnerRepository defines the interface for winner data operations. The
// two transition methods are conditional updates against the current state
// so that concurrent callers produce exactly one winning transition; both
// return the updated record, or errs-mapped failures from the caller's
// perspective (nil, nil means the condition did not match).
type WinnerRepository interface {
	CreateMany(ctx context.Context, winners []*models.Winner) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Winner, error)
	FindByDrawID(ctx context.Context, drawID primitive.ObjectID) ([]*models.Winner, error)
	FindByStatus(ctx context.Context, status models.VerificationStatus, page, limit int) ([]*models.Winner, error)
	TransitionVerification(ctx context.Context, id primitive.ObjectID, to models.VerificationStatus, adminID string) (*models.Winner, error)
	MarkPaid(ctx context.Context, id primitive.ObjectID, payoutRef string) (*models.Winner, error)
}

// RolloverRepository defines the interface for rollover rows
type RolloverRepository interface {
	Create(ctx context.Context, rollover *models.Rollover) error
	FindPendingByDestination(ctx context.Context, destinationLabel string) ([]*models.Rollover, error)
	MarkApplied(ctx context.Context, id primitive.ObjectID) error
}

// LedgerRepository defines the interface for append-only audit rows
type LedgerRepository interface {
	Create(ctx context.Context, entry *models.LedgerEntry) error
	FindByWinnerID(ctx context.Context, winnerID primitive.ObjectID) ([]*models.LedgerEntry, error)
	FindByDrawID(ctx context.Context, drawID primitive.ObjectID) ([]*models.LedgerEntry, error)
}

// CharityRepository defines the interface for charity reference data
type CharityRepository interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Charity, error)
	FindActive(ctx context.Context) ([]*models.Charity, error)
}

// AdminUserRepository defines the interface for admin user data operations
type AdminUserRepository interface {
	Create(ctx context.Context, adminUser *models.AdminUser) error
	FindByEmail(ctx context.Context, email string) (*models.AdminUser, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.AdminUser, error)
}

// SystemConfigRepository defines the interface for system configuration
type SystemConfigRepository interface {
	FindByKey(ctx context.Context, key string) (*models.SystemConfig, error)
	UpsertByKey(ctx context.Context, key string, value interface{}, description string) error
}
