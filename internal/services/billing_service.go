package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/luckygiving/lottery-backend/internal/errs"
	"github.com/luckygiving/lottery-backend/internal/models"
	"github.com/luckygiving/lottery-backend/internal/repositories"
	"github.com/luckygiving/lottery-backend/pkg/billing"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/exp/slog"
	"golang.org/x/sync/singleflight"
)

// upsertRetries bounds the internal retry loop on snapshot write conflicts.
const upsertRetries = 3

// ReconcileResult is the outcome of a reconciliation. A nil Subscription
// means the subscriber has never billed (or the provider reports zero
// subscriptions). Synced is false when the snapshot could not be persisted;
// the returned data still reflects the external system of record.
type ReconcileResult struct {
	Subscription *models.Subscription `json:"subscription"`
	Synced       bool                 `json:"synced"`
}

// Compile-time check to ensure BillingServiceImpl implements BillingService
var _ BillingService = (*BillingServiceImpl)(nil)

// BillingService reconciles locally cached subscription state against the
// external billing system of record.
type BillingService interface {
	Reconcile(ctx context.Context, subscriberID primitive.ObjectID, force bool) (*ReconcileResult, error)
	GetSubscriber(ctx context.Context, subscriberID primitive.ObjectID) (*models.Subscriber, error)
}

// BillingServiceImpl implements BillingService
type BillingServiceImpl struct {
	subscriberRepo   repositories.SubscriberRepository
	subscriptionRepo repositories.SubscriptionRepository
	gateway          billing.Gateway
	group            singleflight.Group
}

// NewBillingService creates a new BillingServiceImpl
func NewBillingService(
	subscriberRepo repositories.SubscriberRepository,
	subscriptionRepo repositories.SubscriptionRepository,
	gateway billing.Gateway,
) *BillingServiceImpl {
	return &BillingServiceImpl{
		subscriberRepo:   subscriberRepo,
		subscriptionRepo: subscriptionRepo,
		gateway:          gateway,
	}
}

// GetSubscriber returns a subscriber with its cached billing summary.
func (s *BillingServiceImpl) GetSubscriber(ctx context.Context, subscriberID primitive.ObjectID) (*models.Subscriber, error) {
	return s.subscriberRepo.FindByID(ctx, subscriberID)
}

// Reconcile determines the authoritative subscription status for a
// subscriber. With force=false an existing cached snapshot is returned
// as-is with no external call; the cache is only guaranteed fresh
// immediately after a force=true call or on first creation. The external
// fetch is singleflighted per subscriber, so concurrent reconciliations of
// one subscriber share one provider call.
func (s *BillingServiceImpl) Reconcile(ctx context.Context, subscriberID primitive.ObjectID, force bool) (*ReconcileResult, error) {
	subscriber, err := s.subscriberRepo.FindByID(ctx, subscriberID)
	if err != nil {
		return nil, err
	}

	if !force {
		cached, err := s.subscriptionRepo.FindBySubscriberID(ctx, subscriberID)
		if err == nil {
			return &ReconcileResult{Subscription: cached, Synced: true}, nil
		}
		if !errors.Is(err, errs.ErrNotFound) {
			return nil, err
		}
		// No cached snapshot: first creation falls through to a fetch.
	}

	result, err, _ := s.group.Do(subscriberID.Hex(), func() (interface{}, error) {
		return s.fetchAndStore(ctx, subscriber, force)
	})
	if err != nil {
		return nil, err
	}
	return result.(*ReconcileResult), nil
}

// fetchAndStore pulls the latest subscription from the provider and updates
// the local cache and the subscriber's summary fields.
func (s *BillingServiceImpl) fetchAndStore(ctx context.Context, subscriber *models.Subscriber, force bool) (*ReconcileResult, error) {
	if subscriber.BillingCustomerRef == "" {
		// Never billed. A forced reconcile clears any stale snapshot so the
		// cache cannot keep reporting a subscription the provider does not
		// have.
		if force {
			if err := s.clearSubscription(ctx, subscriber); err != nil {
				slog.Error("Failed to clear stale subscription", "error", err, "subscriberId", subscriber.ID)
				return &ReconcileResult{Synced: false}, nil
			}
		}
		return &ReconcileResult{Synced: true}, nil
	}

	snapshot, err := s.gateway.LatestSubscription(ctx, subscriber.BillingCustomerRef)
	if err != nil {
		if errors.Is(err, billing.ErrMissingAPIKey) || errors.Is(err, billing.ErrBadCredentials) {
			return nil, fmt.Errorf("billing gateway misconfigured: %w", errs.ErrConfiguration)
		}
		slog.Warn("Billing fetch failed", "error", err, "subscriberId", subscriber.ID)
		return nil, fmt.Errorf("fetching subscription for %s: %w", subscriber.ID.Hex(), errs.ErrSyncUnavailable)
	}

	now := time.Now()

	if snapshot == nil {
		// The billing system reports zero subscriptions: delete stale local
		// state rather than leaving it dangling.
		if err := s.clearSubscription(ctx, subscriber); err != nil {
			slog.Error("Failed to clear subscription after empty provider response", "error", err, "subscriberId", subscriber.ID)
			return &ReconcileResult{Synced: false}, nil
		}
		slog.Info("Reconciled subscriber with no provider subscriptions", "subscriberId", subscriber.ID)
		return &ReconcileResult{Synced: true}, nil
	}

	// Status is stored verbatim; only the plan collapses provider interval
	// information into the internal monthly/annual vocabulary.
	subscription := &models.Subscription{
		SubscriberID:      subscriber.ID,
		ProviderSubID:     snapshot.ProviderSubID,
		Status:            snapshot.Status,
		Plan:              mapInterval(snapshot.Interval),
		PeriodStart:       snapshot.PeriodStart,
		PeriodEnd:         snapshot.PeriodEnd,
		CancelAtPeriodEnd: snapshot.CancelAtPeriodEnd,
		SyncedAt:          now,
	}

	isActive := snapshot.Status == models.SubscriptionStatusActive || snapshot.Status == models.SubscriptionStatusTrialing
	subscriber.SubscriptionStatus = snapshot.Status
	if isActive {
		subscriber.Plan = subscription.Plan
	} else {
		subscriber.Plan = models.PlanNone
	}
	subscriber.LastReconciledAt = now

	// The external system is already the source of truth: a persistence
	// failure downgrades the response to best-effort instead of raising.
	synced := true
	if err := s.persistSnapshot(ctx, subscriber, subscription); err != nil {
		slog.Error("Failed to persist billing snapshot", "error", err, "subscriberId", subscriber.ID)
		synced = false
	}

	slog.Info("Reconciled subscriber against billing provider",
		"subscriberId", subscriber.ID, "status", snapshot.Status, "plan", subscriber.Plan, "synced", synced)
	return &ReconcileResult{Subscription: subscription, Synced: synced}, nil
}

// persistSnapshot upserts the snapshot and subscriber summary, retrying a
// bounded number of times on write conflicts (last-write-wins on the
// external snapshot fields).
func (s *BillingServiceImpl) persistSnapshot(ctx context.Context, subscriber *models.Subscriber, subscription *models.Subscription) error {
	var err error
	for attempt := 0; attempt < upsertRetries; attempt++ {
		if err = s.subscriptionRepo.Upsert(ctx, subscription); err == nil {
			break
		}
		if !errors.Is(err, errs.ErrPersistenceConflict) {
			return err
		}
		slog.Warn("Snapshot upsert conflict, retrying", "subscriberId", subscriber.ID, "attempt", attempt+1)
	}
	if err != nil {
		return fmt.Errorf("snapshot upsert: %w", err)
	}
	return s.subscriberRepo.Update(ctx, subscriber)
}

// clearSubscription removes the cached snapshot and resets the subscriber's
// billing summary.
func (s *BillingServiceImpl) clearSubscription(ctx context.Context, subscriber *models.Subscriber) error {
	if err := s.subscriptionRepo.DeleteBySubscriberID(ctx, subscriber.ID); err != nil {
		return err
	}
	subscriber.SubscriptionStatus = models.SubscriptionStatusNone
	subscriber.Plan = models.PlanNone
	subscriber.LastReconciledAt = time.Now()
	return s.subscriberRepo.Update(ctx, subscriber)
}

// mapInterval collapses the provider's billing interval into the internal
// plan vocabulary.
func mapInterval(interval string) string {
	switch interval {
	case "month":
		return models.PlanMonthly
	case "year":
		return models.PlanAnnual
	default:
		return models.PlanNone
	}
}
