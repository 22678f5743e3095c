package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/luckygiving/lottery-backend/internal/errs"
	"github.com/luckygiving/lottery-backend/internal/models"
	"github.com/luckygiving/lottery-backend/pkg/billing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func activeSnapshot() *billing.Snapshot {
	return &billing.Snapshot{
		ProviderSubID:     "sub_123",
		Status:            "active",
		Interval:          "month",
		PeriodStart:       time.Now().AddDate(0, 0, -10),
		PeriodEnd:         time.Now().AddDate(0, 0, 20),
		CancelAtPeriodEnd: false,
	}
}

func newBillingFixture(t *testing.T, gateway billing.Gateway) (*BillingServiceImpl, *fakeSubscriberRepo, *fakeSubscriptionRepo, primitive.ObjectID) {
	t.Helper()
	subscriberRepo := newFakeSubscriberRepo()
	subscriptionRepo := newFakeSubscriptionRepo()
	svc := NewBillingService(subscriberRepo, subscriptionRepo, gateway)

	subscriber := &models.Subscriber{
		Name:               "Ada",
		Email:              "ada@example.com",
		BillingCustomerRef: "cus_123",
		SubscriptionStatus: models.SubscriptionStatusNone,
		Plan:               models.PlanNone,
	}
	require.NoError(t, subscriberRepo.Create(context.Background(), subscriber))
	return svc, subscriberRepo, subscriptionRepo, subscriber.ID
}

func TestReconcileCacheHitMakesNoExternalCall(t *testing.T) {
	gateway := &fakeGateway{snapshot: activeSnapshot()}
	svc, _, subscriptionRepo, subscriberID := newBillingFixture(t, gateway)
	ctx := context.Background()

	cached := &models.Subscription{
		SubscriberID:  subscriberID,
		ProviderSubID: "sub_cached",
		Status:        "active",
		Plan:          models.PlanMonthly,
		SyncedAt:      time.Now().Add(-time.Hour),
	}
	require.NoError(t, subscriptionRepo.Upsert(ctx, cached))

	result, err := svc.Reconcile(ctx, subscriberID, false)
	require.NoError(t, err)
	assert.True(t, result.Synced)
	require.NotNil(t, result.Subscription)
	assert.Equal(t, "sub_cached", result.Subscription.ProviderSubID)
	assert.Equal(t, 0, gateway.callCount())
}

func TestReconcileFirstTimeFetchesAndStores(t *testing.T) {
	gateway := &fakeGateway{snapshot: activeSnapshot()}
	svc, subscriberRepo, subscriptionRepo, subscriberID := newBillingFixture(t, gateway)
	ctx := context.Background()

	result, err := svc.Reconcile(ctx, subscriberID, false)
	require.NoError(t, err)
	assert.True(t, result.Synced)
	require.NotNil(t, result.Subscription)
	assert.Equal(t, "active", result.Subscription.Status)
	assert.Equal(t, models.PlanMonthly, result.Subscription.Plan)
	assert.Equal(t, 1, gateway.callCount())

	stored, err := subscriptionRepo.FindBySubscriberID(ctx, subscriberID)
	require.NoError(t, err)
	assert.Equal(t, "sub_123", stored.ProviderSubID)

	subscriber, err := subscriberRepo.FindByID(ctx, subscriberID)
	require.NoError(t, err)
	assert.Equal(t, "active", subscriber.SubscriptionStatus)
	assert.Equal(t, models.PlanMonthly, subscriber.Plan)
	assert.False(t, subscriber.LastReconciledAt.IsZero())
}

func TestReconcileForceBypassesCache(t *testing.T) {
	gateway := &fakeGateway{snapshot: activeSnapshot()}
	svc, _, subscriptionRepo, subscriberID := newBillingFixture(t, gateway)
	ctx := context.Background()

	require.NoError(t, subscriptionRepo.Upsert(ctx, &models.Subscription{
		SubscriberID:  subscriberID,
		ProviderSubID: "sub_stale",
		Status:        "canceled",
		Plan:          models.PlanMonthly,
	}))

	result, err := svc.Reconcile(ctx, subscriberID, true)
	require.NoError(t, err)
	assert.Equal(t, 1, gateway.callCount())
	assert.Equal(t, "sub_123", result.Subscription.ProviderSubID)
}

func TestReconcileAnnualInterval(t *testing.T) {
	snapshot := activeSnapshot()
	snapshot.Interval = "year"
	gateway := &fakeGateway{snapshot: snapshot}
	svc, subscriberRepo, _, subscriberID := newBillingFixture(t, gateway)
	ctx := context.Background()

	result, err := svc.Reconcile(ctx, subscriberID, true)
	require.NoError(t, err)
	assert.Equal(t, models.PlanAnnual, result.Subscription.Plan)

	subscriber, err := subscriberRepo.FindByID(ctx, subscriberID)
	require.NoError(t, err)
	assert.Equal(t, models.PlanAnnual, subscriber.Plan)
}

func TestReconcileInactiveStatusStoredVerbatimButPlanNone(t *testing.T) {
	snapshot := activeSnapshot()
	snapshot.Status = "past_due"
	gateway := &fakeGateway{snapshot: snapshot}
	svc, subscriberRepo, _, subscriberID := newBillingFixture(t, gateway)
	ctx := context.Background()

	result, err := svc.Reconcile(ctx, subscriberID, true)
	require.NoError(t, err)
	// The snapshot keeps the provider's words; only the summary plan is
	// collapsed for eligibility.
	assert.Equal(t, "past_due", result.Subscription.Status)
	assert.Equal(t, models.PlanMonthly, result.Subscription.Plan)

	subscriber, err := subscriberRepo.FindByID(ctx, subscriberID)
	require.NoError(t, err)
	assert.Equal(t, "past_due", subscriber.SubscriptionStatus)
	assert.Equal(t, models.PlanNone, subscriber.Plan)
}

func TestReconcileClearsWhenProviderReportsNone(t *testing.T) {
	gateway := &fakeGateway{snapshot: nil}
	svc, subscriberRepo, subscriptionRepo, subscriberID := newBillingFixture(t, gateway)
	ctx := context.Background()

	require.NoError(t, subscriptionRepo.Upsert(ctx, &models.Subscription{
		SubscriberID:  subscriberID,
		ProviderSubID: "sub_stale",
		Status:        "active",
		Plan:          models.PlanMonthly,
	}))

	result, err := svc.Reconcile(ctx, subscriberID, true)
	require.NoError(t, err)
	assert.True(t, result.Synced)
	assert.Nil(t, result.Subscription)

	_, err = subscriptionRepo.FindBySubscriberID(ctx, subscriberID)
	assert.ErrorIs(t, err, errs.ErrNotFound)

	subscriber, err := subscriberRepo.FindByID(ctx, subscriberID)
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionStatusNone, subscriber.SubscriptionStatus)
	assert.Equal(t, models.PlanNone, subscriber.Plan)
}

func TestReconcileNeverBilledSubscriber(t *testing.T) {
	gateway := &fakeGateway{snapshot: activeSnapshot()}
	svc, subscriberRepo, _, _ := newBillingFixture(t, gateway)
	ctx := context.Background()

	unbilled := &models.Subscriber{
		Name:               "Grace",
		Email:              "grace@example.com",
		SubscriptionStatus: models.SubscriptionStatusNone,
		Plan:               models.PlanNone,
	}
	require.NoError(t, subscriberRepo.Create(ctx, unbilled))

	result, err := svc.Reconcile(ctx, unbilled.ID, true)
	require.NoError(t, err)
	assert.True(t, result.Synced)
	assert.Nil(t, result.Subscription)
	assert.Equal(t, 0, gateway.callCount())
}

func TestReconcileProviderDown(t *testing.T) {
	gateway := &fakeGateway{err: billing.ErrUnavailable}
	svc, _, _, subscriberID := newBillingFixture(t, gateway)

	_, err := svc.Reconcile(context.Background(), subscriberID, true)
	assert.ErrorIs(t, err, errs.ErrSyncUnavailable)
}

func TestReconcileBadCredentialsIsConfigurationError(t *testing.T) {
	gateway := &fakeGateway{err: billing.ErrBadCredentials}
	svc, _, _, subscriberID := newBillingFixture(t, gateway)

	_, err := svc.Reconcile(context.Background(), subscriberID, true)
	assert.ErrorIs(t, err, errs.ErrConfiguration)
}

func TestReconcileUnknownSubscriber(t *testing.T) {
	gateway := &fakeGateway{snapshot: activeSnapshot()}
	svc, _, _, _ := newBillingFixture(t, gateway)

	_, err := svc.Reconcile(context.Background(), primitive.NewObjectID(), true)
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestReconcilePersistenceFailureIsBestEffort(t *testing.T) {
	gateway := &fakeGateway{snapshot: activeSnapshot()}
	svc, _, subscriptionRepo, subscriberID := newBillingFixture(t, gateway)
	subscriptionRepo.failUpsert = errStorageDown

	result, err := svc.Reconcile(context.Background(), subscriberID, true)
	require.NoError(t, err)
	assert.False(t, result.Synced)
	// The provider data still comes back even though the cache write failed.
	require.NotNil(t, result.Subscription)
	assert.Equal(t, "sub_123", result.Subscription.ProviderSubID)
}

func TestReconcileRetriesSnapshotConflicts(t *testing.T) {
	gateway := &fakeGateway{snapshot: activeSnapshot()}
	svc, _, subscriptionRepo, subscriberID := newBillingFixture(t, gateway)
	subscriptionRepo.failUpsert = errs.ErrPersistenceConflict

	result, err := svc.Reconcile(context.Background(), subscriberID, true)
	require.NoError(t, err)
	assert.False(t, result.Synced)
	assert.Equal(t, upsertRetries, subscriptionRepo.upsertCalls)
}

func TestReconcileConcurrentForceSharesOneFetch(t *testing.T) {
	gateway := &fakeGateway{snapshot: activeSnapshot(), delay: 100 * time.Millisecond}
	svc, _, _, subscriberID := newBillingFixture(t, gateway)
	ctx := context.Background()

	const concurrency = 8
	var wg sync.WaitGroup
	results := make([]*ReconcileResult, concurrency)
	errors := make([]error, concurrency)
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errors[i] = svc.Reconcile(ctx, subscriberID, true)
		}(i)
	}
	wg.Wait()

	for i := 0; i < concurrency; i++ {
		require.NoError(t, errors[i])
		require.NotNil(t, results[i].Subscription)
		assert.Equal(t, "sub_123", results[i].Subscription.ProviderSubID)
	}
	assert.Equal(t, 1, gateway.callCount())
}
