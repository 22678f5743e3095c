package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/luckygiving/lottery-backend/internal/errs"
	"github.com/luckygiving/lottery-backend/internal/models"
	"github.com/luckygiving/lottery-backend/pkg/billing"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory repository fakes. They mirror the mongodb implementations'
// contracts: ErrNotFound for missing documents, ErrPersistenceConflict for
// unique index violations, (nil, nil) for failed conditional updates.

type fakeSubscriberRepo struct {
	mu          sync.Mutex
	subscribers map[primitive.ObjectID]*models.Subscriber
}

func newFakeSubscriberRepo() *fakeSubscriberRepo {
	return &fakeSubscriberRepo{subscribers: make(map[primitive.ObjectID]*models.Subscriber)}
}

func (r *fakeSubscriberRepo) Create(ctx context.Context, s *models.Subscriber) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s.ID.IsZero() {
		s.ID = primitive.NewObjectID()
	}
	cp := *s
	r.subscribers[s.ID] = &cp
	return nil
}

func (r *fakeSubscriberRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Subscriber, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.subscribers[id]
	if !ok {
		return nil, fmt.Errorf("subscriber %s: %w", id.Hex(), errs.ErrNotFound)
	}
	cp := *s
	return &cp, nil
}

func (r *fakeSubscriberRepo) FindByEmail(ctx context.Context, email string) (*models.Subscriber, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.subscribers {
		if s.Email == email {
			cp := *s
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("subscriber %s: %w", email, errs.ErrNotFound)
}

func (r *fakeSubscriberRepo) Update(ctx context.Context, s *models.Subscriber) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.subscribers[s.ID]; !ok {
		return fmt.Errorf("subscriber %s: %w", s.ID.Hex(), errs.ErrNotFound)
	}
	cp := *s
	r.subscribers[s.ID] = &cp
	return nil
}

type fakeSubscriptionRepo struct {
	mu          sync.Mutex
	snapshots   map[primitive.ObjectID]*models.Subscription
	failUpsert  error
	upsertCalls int
	deleteCalls int
}

func newFakeSubscriptionRepo() *fakeSubscriptionRepo {
	return &fakeSubscriptionRepo{snapshots: make(map[primitive.ObjectID]*models.Subscription)}
}

func (r *fakeSubscriptionRepo) FindBySubscriberID(ctx context.Context, subscriberID primitive.ObjectID) (*models.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.snapshots[subscriberID]
	if !ok {
		return nil, fmt.Errorf("subscription for %s: %w", subscriberID.Hex(), errs.ErrNotFound)
	}
	cp := *s
	return &cp, nil
}

func (r *fakeSubscriptionRepo) Upsert(ctx context.Context, s *models.Subscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.upsertCalls++
	if r.failUpsert != nil {
		return r.failUpsert
	}
	cp := *s
	r.snapshots[s.SubscriberID] = &cp
	return nil
}

func (r *fakeSubscriptionRepo) DeleteBySubscriberID(ctx context.Context, subscriberID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deleteCalls++
	delete(r.snapshots, subscriberID)
	return nil
}

type fakeDrawRepo struct {
	mu    sync.Mutex
	draws map[primitive.ObjectID]*models.Draw
}

func newFakeDrawRepo() *fakeDrawRepo {
	return &fakeDrawRepo{draws: make(map[primitive.ObjectID]*models.Draw)}
}

func (r *fakeDrawRepo) Create(ctx context.Context, d *models.Draw) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.draws {
		if existing.Label == d.Label {
			return fmt.Errorf("draw %s: %w", d.Label, errs.ErrPersistenceConflict)
		}
	}
	if d.ID.IsZero() {
		d.ID = primitive.NewObjectID()
	}
	d.CreatedAt = time.Now()
	cp := *d
	r.draws[d.ID] = &cp
	return nil
}

func (r *fakeDrawRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Draw, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.draws[id]
	if !ok {
		return nil, fmt.Errorf("draw %s: %w", id.Hex(), errs.ErrNotFound)
	}
	cp := *d
	return &cp, nil
}

func (r *fakeDrawRepo) FindByLabel(ctx context.Context, label string) (*models.Draw, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range r.draws {
		if d.Label == label {
			cp := *d
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("draw %s: %w", label, errs.ErrNotFound)
}

func (r *fakeDrawRepo) FindByStatus(ctx context.Context, status models.DrawStatus) ([]*models.Draw, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Draw
	for _, d := range r.draws {
		if d.Status == status {
			cp := *d
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeDrawRepo) FindAll(ctx context.Context, page, limit int) ([]*models.Draw, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Draw
	for _, d := range r.draws {
		cp := *d
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label > out[j].Label })
	return out, nil
}

func (r *fakeDrawRepo) UpdateStatus(ctx context.Context, id primitive.ObjectID, from models.DrawStatus, draw *models.Draw) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.draws[id]
	if !ok || current.Status != from {
		return false, nil
	}
	draw.UpdatedAt = time.Now()
	cp := *draw
	r.draws[id] = &cp
	return true, nil
}

type fakeEntryRepo struct {
	mu      sync.Mutex
	entries []*models.Entry
}

func newFakeEntryRepo() *fakeEntryRepo {
	return &fakeEntryRepo{}
}

func (r *fakeEntryRepo) Create(ctx context.Context, e *models.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.entries {
		if existing.DrawID == e.DrawID && existing.SubscriberID == e.SubscriberID {
			return fmt.Errorf("entry exists for draw: %w", errs.ErrPersistenceConflict)
		}
	}
	if e.ID.IsZero() {
		e.ID = primitive.NewObjectID()
	}
	e.CreatedAt = time.Now()
	cp := *e
	r.entries = append(r.entries, &cp)
	return nil
}

func (r *fakeEntryRepo) FindByDrawID(ctx context.Context, drawID primitive.ObjectID) ([]*models.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Entry
	for _, e := range r.entries {
		if e.DrawID == drawID {
			cp := *e
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.Hex() < out[j].ID.Hex() })
	return out, nil
}

func (r *fakeEntryRepo) FindByDrawAndSubscriber(ctx context.Context, drawID, subscriberID primitive.ObjectID) (*models.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entries {
		if e.DrawID == drawID && e.SubscriberID == subscriberID {
			cp := *e
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("entry: %w", errs.ErrNotFound)
}

func (r *fakeEntryRepo) CountByDrawID(ctx context.Context, drawID primitive.ObjectID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, e := range r.entries {
		if e.DrawID == drawID {
			count++
		}
	}
	return count, nil
}

type fakeWinnerRepo struct {
	mu      sync.Mutex
	winners map[primitive.ObjectID]*models.Winner
}

func newFakeWinnerRepo() *fakeWinnerRepo {
	return &fakeWinnerRepo{winners: make(map[primitive.ObjectID]*models.Winner)}
}

func (r *fakeWinnerRepo) CreateMany(ctx context.Context, winners []*models.Winner) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, w := range winners {
		for _, existing := range r.winners {
			if existing.DrawID == w.DrawID && existing.SubscriberID == w.SubscriberID && existing.Tier == w.Tier {
				return fmt.Errorf("winner records already exist: %w", errs.ErrPersistenceConflict)
			}
		}
	}
	now := time.Now()
	for _, w := range winners {
		if w.ID.IsZero() {
			w.ID = primitive.NewObjectID()
		}
		w.CreatedAt = now
		w.UpdatedAt = now
		cp := *w
		r.winners[w.ID] = &cp
	}
	return nil
}

func (r *fakeWinnerRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Winner, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.winners[id]
	if !ok {
		return nil, fmt.Errorf("winner %s: %w", id.Hex(), errs.ErrNotFound)
	}
	cp := *w
	return &cp, nil
}

func (r *fakeWinnerRepo) FindByDrawID(ctx context.Context, drawID primitive.ObjectID) ([]*models.Winner, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Winner
	for _, w := range r.winners {
		if w.DrawID == drawID {
			cp := *w
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.Hex() < out[j].ID.Hex() })
	return out, nil
}

func (r *fakeWinnerRepo) FindByStatus(ctx context.Context, status models.VerificationStatus, page, limit int) ([]*models.Winner, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Winner
	for _, w := range r.winners {
		if w.Status == status {
			cp := *w
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeWinnerRepo) TransitionVerification(ctx context.Context, id primitive.ObjectID, to models.VerificationStatus, adminID string) (*models.Winner, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.winners[id]
	if !ok || w.Status != models.VerificationPending {
		return nil, nil
	}
	w.Status = to
	w.VerifiedBy = adminID
	w.VerifiedAt = time.Now()
	w.UpdatedAt = time.Now()
	cp := *w
	return &cp, nil
}

func (r *fakeWinnerRepo) MarkPaid(ctx context.Context, id primitive.ObjectID, payoutRef string) (*models.Winner, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.winners[id]
	if !ok || w.Status != models.VerificationVerified || w.IsPaid {
		return nil, nil
	}
	w.IsPaid = true
	w.PayoutRef = payoutRef
	w.SettledAt = time.Now()
	w.UpdatedAt = time.Now()
	cp := *w
	return &cp, nil
}

type fakeRolloverRepo struct {
	mu        sync.Mutex
	rollovers []*models.Rollover
}

func newFakeRolloverRepo() *fakeRolloverRepo {
	return &fakeRolloverRepo{}
}

func (r *fakeRolloverRepo) Create(ctx context.Context, ro *models.Rollover) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ro.ID.IsZero() {
		ro.ID = primitive.NewObjectID()
	}
	ro.CreatedAt = time.Now()
	cp := *ro
	r.rollovers = append(r.rollovers, &cp)
	return nil
}

func (r *fakeRolloverRepo) FindPendingByDestination(ctx context.Context, destinationLabel string) ([]*models.Rollover, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Rollover
	for _, ro := range r.rollovers {
		if ro.DestinationLabel == destinationLabel && !ro.Applied {
			cp := *ro
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeRolloverRepo) MarkApplied(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ro := range r.rollovers {
		if ro.ID == id {
			ro.Applied = true
			return nil
		}
	}
	return fmt.Errorf("rollover %s: %w", id.Hex(), errs.ErrNotFound)
}

type fakeLedgerRepo struct {
	mu      sync.Mutex
	entries []*models.LedgerEntry
}

func newFakeLedgerRepo() *fakeLedgerRepo {
	return &fakeLedgerRepo{}
}

func (r *fakeLedgerRepo) Create(ctx context.Context, e *models.LedgerEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e.ID.IsZero() {
		e.ID = primitive.NewObjectID()
	}
	e.CreatedAt = time.Now()
	cp := *e
	r.entries = append(r.entries, &cp)
	return nil
}

func (r *fakeLedgerRepo) FindByWinnerID(ctx context.Context, winnerID primitive.ObjectID) ([]*models.LedgerEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.LedgerEntry
	for _, e := range r.entries {
		if e.WinnerID == winnerID {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeLedgerRepo) FindByDrawID(ctx context.Context, drawID primitive.ObjectID) ([]*models.LedgerEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.LedgerEntry
	for _, e := range r.entries {
		if e.DrawID == drawID {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

type fakeSystemConfigRepo struct {
	mu      sync.Mutex
	configs map[string]*models.SystemConfig
}

func newFakeSystemConfigRepo() *fakeSystemConfigRepo {
	return &fakeSystemConfigRepo{configs: make(map[string]*models.SystemConfig)}
}

func (r *fakeSystemConfigRepo) FindByKey(ctx context.Context, key string) (*models.SystemConfig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.configs[key]
	if !ok {
		return nil, fmt.Errorf("config %s: %w", key, errs.ErrNotFound)
	}
	cp := *c
	return &cp, nil
}

func (r *fakeSystemConfigRepo) UpsertByKey(ctx context.Context, key string, value interface{}, description string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.configs[key] = &models.SystemConfig{Key: key, Value: value, Description: description}
	return nil
}

// fakeGateway implements billing.Gateway with a programmable response and a
// call counter for asserting on external traffic.
type fakeGateway struct {
	mu       sync.Mutex
	snapshot *billing.Snapshot
	err      error
	delay    time.Duration
	calls    int
}

func (g *fakeGateway) LatestSubscription(ctx context.Context, customerRef string) (*billing.Snapshot, error) {
	g.mu.Lock()
	g.calls++
	snapshot, err, delay := g.snapshot, g.err, g.delay
	g.mu.Unlock()
	if delay > 0 {
		time.Sleep(delay)
	}
	if err != nil {
		return nil, err
	}
	if snapshot == nil {
		return nil, nil
	}
	cp := *snapshot
	return &cp, nil
}

func (g *fakeGateway) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

var errStorageDown = errors.New("storage down")
