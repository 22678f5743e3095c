package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"sort"
	"time"

	"github.com/luckygiving/lottery-backend/internal/config"
	"github.com/luckygiving/lottery-backend/internal/errs"
	"github.com/luckygiving/lottery-backend/internal/models"
	"github.com/luckygiving/lottery-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/exp/slog"
)

// Compile-time check to ensure DrawServiceImpl implements DrawService
var _ DrawService = (*DrawServiceImpl)(nil)

// DrawService manages the draw lifecycle and entry submission
type DrawService interface {
	ScheduleDraw(ctx context.Context, label string, prizePool int64, tiers []models.PrizeTier, charitySplitBps int32) (*models.Draw, error)
	ExecuteDraw(ctx context.Context, drawID primitive.ObjectID) (*models.Draw, error)
	PublishDraw(ctx context.Context, drawID primitive.ObjectID) (*models.Draw, error)
	SubmitEntry(ctx context.Context, drawID, subscriberID primitive.ObjectID, numbers []int) (*models.Entry, error)
	GetDrawByID(ctx context.Context, drawID primitive.ObjectID) (*models.Draw, error)
	GetDrawByLabel(ctx context.Context, label string) (*models.Draw, error)
	GetDraws(ctx context.Context, page, limit int) ([]*models.Draw, error)
}

// DrawServiceImpl implements DrawService
type DrawServiceImpl struct {
	drawRepo         repositories.DrawRepository
	entryRepo        repositories.EntryRepository
	subscriberRepo   repositories.SubscriberRepository
	rolloverRepo     repositories.RolloverRepository
	systemConfigRepo repositories.SystemConfigRepository
	defaults         config.DrawConfig
}

// NewDrawService creates a new DrawServiceImpl
func NewDrawService(
	drawRepo repositories.DrawRepository,
	entryRepo repositories.EntryRepository,
	subscriberRepo repositories.SubscriberRepository,
	rolloverRepo repositories.RolloverRepository,
	systemConfigRepo repositories.SystemConfigRepository,
	defaults config.DrawConfig,
) *DrawServiceImpl {
	return &DrawServiceImpl{
		drawRepo:         drawRepo,
		entryRepo:        entryRepo,
		subscriberRepo:   subscriberRepo,
		rolloverRepo:     rolloverRepo,
		systemConfigRepo: systemConfigRepo,
		defaults:         defaults,
	}
}

// ScheduleDraw opens a draw cycle for a month label. Pending rollovers
// destined for the label are folded into the prize pool here; the
// settlement engine only records them. Tier shares must not exceed the
// prize pool.
func (s *DrawServiceImpl) ScheduleDraw(ctx context.Context, label string, prizePool int64, tiers []models.PrizeTier, charitySplitBps int32) (*models.Draw, error) {
	if _, err := time.Parse("2006-01", label); err != nil {
		return nil, fmt.Errorf("invalid draw label %q, want YYYY-MM", label)
	}
	if prizePool < 0 {
		return nil, fmt.Errorf("negative prize pool %d", prizePool)
	}

	existing, err := s.drawRepo.FindByLabel(ctx, label)
	if err == nil && existing != nil {
		slog.Warn("Attempted to schedule draw for existing label", "label", label)
		return nil, fmt.Errorf("draw %s already scheduled: %w", label, errs.ErrPersistenceConflict)
	}
	if err != nil && !errors.Is(err, errs.ErrNotFound) {
		return nil, fmt.Errorf("checking for existing draw: %w", err)
	}

	if len(tiers) == 0 {
		tiers, err = s.defaultTiers(ctx)
		if err != nil {
			return nil, err
		}
	}
	if prizePool == 0 {
		if v, ok := s.configInt64(ctx, models.ConfigKeyDefaultPrizePool); ok {
			prizePool = v
		}
	}
	if charitySplitBps == 0 {
		charitySplitBps = s.defaults.CharitySplitBps
		if v, ok := s.configInt64(ctx, models.ConfigKeyDefaultSplitBps); ok {
			charitySplitBps = int32(v)
		}
	}
	numberCount := s.defaults.NumberCount
	if v, ok := s.configInt64(ctx, models.ConfigKeyDefaultNumberCount); ok {
		numberCount = int(v)
	}
	maxNumber := s.defaults.MaxNumber
	if v, ok := s.configInt64(ctx, models.ConfigKeyDefaultMaxNumber); ok {
		maxNumber = int(v)
	}

	// Fold pending rollovers into this draw's pool.
	var rolloverIn int64
	rollovers, err := s.rolloverRepo.FindPendingByDestination(ctx, label)
	if err != nil {
		return nil, fmt.Errorf("fetching rollovers for %s: %w", label, err)
	}
	for _, r := range rollovers {
		rolloverIn += r.Amount
	}

	var tierTotal int64
	for _, t := range tiers {
		if t.Share < 0 {
			return nil, fmt.Errorf("tier %d has negative share %d", t.Tier, t.Share)
		}
		tierTotal += t.Share
	}
	if tierTotal > prizePool+rolloverIn {
		return nil, fmt.Errorf("tier shares %d exceed prize pool %d", tierTotal, prizePool+rolloverIn)
	}

	draw := &models.Draw{
		Label:           label,
		Status:          models.DrawStatusScheduled,
		NumberCount:     numberCount,
		MaxNumber:       maxNumber,
		PrizePool:       prizePool + rolloverIn,
		RolloverIn:      rolloverIn,
		Tiers:           tiers,
		CharitySplitBps: charitySplitBps,
	}
	if err := s.drawRepo.Create(ctx, draw); err != nil {
		return nil, fmt.Errorf("saving scheduled draw: %w", err)
	}

	for _, r := range rollovers {
		if err := s.rolloverRepo.MarkApplied(ctx, r.ID); err != nil {
			slog.Error("Failed to mark rollover applied", "error", err, "rolloverId", r.ID)
		}
	}

	slog.Info("Draw scheduled", "drawId", draw.ID, "label", label, "prizePool", draw.PrizePool, "rolloverIn", rolloverIn)
	return draw, nil
}

// ExecuteDraw generates winning numbers and moves the draw SCHEDULED →
// DRAWN. The transition is conditional on the current status, so a
// concurrent second execution fails instead of producing divergent numbers.
func (s *DrawServiceImpl) ExecuteDraw(ctx context.Context, drawID primitive.ObjectID) (*models.Draw, error) {
	draw, err := s.drawRepo.FindByID(ctx, drawID)
	if err != nil {
		return nil, err
	}
	if draw.Status != models.DrawStatusScheduled {
		return nil, fmt.Errorf("draw %s is %s, not SCHEDULED: %w", draw.Label, draw.Status, errs.ErrInvalidStateTransition)
	}

	numbers, err := drawNumbers(draw.NumberCount, draw.MaxNumber)
	if err != nil {
		return nil, fmt.Errorf("generating winning numbers: %w", err)
	}

	draw.WinningNumbers = numbers
	draw.Status = models.DrawStatusDrawn
	draw.DrawnAt = time.Now()

	ok, err := s.drawRepo.UpdateStatus(ctx, drawID, models.DrawStatusScheduled, draw)
	if err != nil {
		return nil, fmt.Errorf("marking draw as drawn: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("draw %s was executed concurrently: %w", draw.Label, errs.ErrInvalidStateTransition)
	}

	slog.Info("Draw executed", "drawId", drawID, "label", draw.Label, "winningNumbers", numbers)
	return draw, nil
}

// PublishDraw moves a draw DRAWN → PUBLISHED, after which it is immutable.
func (s *DrawServiceImpl) PublishDraw(ctx context.Context, drawID primitive.ObjectID) (*models.Draw, error) {
	draw, err := s.drawRepo.FindByID(ctx, drawID)
	if err != nil {
		return nil, err
	}
	if draw.Status != models.DrawStatusDrawn {
		return nil, fmt.Errorf("draw %s is %s, not DRAWN: %w", draw.Label, draw.Status, errs.ErrInvalidStateTransition)
	}

	draw.Status = models.DrawStatusPublished
	draw.PublishedAt = time.Now()

	ok, err := s.drawRepo.UpdateStatus(ctx, drawID, models.DrawStatusDrawn, draw)
	if err != nil {
		return nil, fmt.Errorf("publishing draw: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("draw %s was published concurrently: %w", draw.Label, errs.ErrInvalidStateTransition)
	}

	slog.Info("Draw published", "drawId", drawID, "label", draw.Label)
	return draw, nil
}

// SubmitEntry records a subscriber's numbers for a scheduled draw. The
// subscriber's summary plan gates eligibility, and their chosen charity is
// snapshotted onto the entry.
func (s *DrawServiceImpl) SubmitEntry(ctx context.Context, drawID, subscriberID primitive.ObjectID, numbers []int) (*models.Entry, error) {
	draw, err := s.drawRepo.FindByID(ctx, drawID)
	if err != nil {
		return nil, err
	}
	if draw.Status != models.DrawStatusScheduled {
		return nil, fmt.Errorf("draw %s is %s, entries are closed: %w", draw.Label, draw.Status, errs.ErrInvalidStateTransition)
	}

	subscriber, err := s.subscriberRepo.FindByID(ctx, subscriberID)
	if err != nil {
		return nil, err
	}
	if subscriber.Plan == models.PlanNone {
		return nil, fmt.Errorf("subscriber %s has no active plan", subscriberID.Hex())
	}

	if err := validateNumbers(numbers, draw.NumberCount, draw.MaxNumber); err != nil {
		return nil, err
	}

	entry := &models.Entry{
		DrawID:       drawID,
		SubscriberID: subscriberID,
		Numbers:      numbers,
		CharityID:    subscriber.CharityID,
	}
	if err := s.entryRepo.Create(ctx, entry); err != nil {
		return nil, err
	}

	slog.Info("Entry submitted", "drawId", drawID, "subscriberId", subscriberID)
	return entry, nil
}

// GetDrawByID retrieves a draw by id.
func (s *DrawServiceImpl) GetDrawByID(ctx context.Context, drawID primitive.ObjectID) (*models.Draw, error) {
	return s.drawRepo.FindByID(ctx, drawID)
}

// GetDrawByLabel retrieves a draw by month label.
func (s *DrawServiceImpl) GetDrawByLabel(ctx context.Context, label string) (*models.Draw, error) {
	return s.drawRepo.FindByLabel(ctx, label)
}

// GetDraws lists draws, newest first.
func (s *DrawServiceImpl) GetDraws(ctx context.Context, page, limit int) ([]*models.Draw, error) {
	return s.drawRepo.FindAll(ctx, page, limit)
}

// defaultTiers reads the default prize tier table from system config.
func (s *DrawServiceImpl) defaultTiers(ctx context.Context) ([]models.PrizeTier, error) {
	cfg, err := s.systemConfigRepo.FindByKey(ctx, models.ConfigKeyDefaultTiers)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, fmt.Errorf("no tiers given and %s is unset: %w", models.ConfigKeyDefaultTiers, errs.ErrConfiguration)
		}
		return nil, err
	}

	raw, ok := cfg.Value.(primitive.A)
	if !ok {
		return nil, fmt.Errorf("config %s is %T, want array: %w", models.ConfigKeyDefaultTiers, cfg.Value, errs.ErrConfiguration)
	}

	var tiers []models.PrizeTier
	for _, item := range raw {
		doc, ok := item.(primitive.M)
		if !ok {
			continue
		}
		tier, tierOK := asInt(doc["tier"])
		match, matchOK := asInt(doc["matchCount"])
		share, shareOK := asInt64(doc["share"])
		if !tierOK || !matchOK || !shareOK {
			slog.Warn("Skipping malformed tier config entry", "entry", doc)
			continue
		}
		tiers = append(tiers, models.PrizeTier{Tier: tier, MatchCount: match, Share: share})
	}
	if len(tiers) == 0 {
		return nil, fmt.Errorf("config %s has no valid tiers: %w", models.ConfigKeyDefaultTiers, errs.ErrConfiguration)
	}
	return tiers, nil
}

// configInt64 reads an optional numeric override from system config.
func (s *DrawServiceImpl) configInt64(ctx context.Context, key string) (int64, bool) {
	cfg, err := s.systemConfigRepo.FindByKey(ctx, key)
	if err != nil {
		return 0, false
	}
	v, ok := asInt64(cfg.Value)
	return v, ok
}

// drawNumbers picks count distinct numbers from [1, max] using crypto/rand
// and returns them sorted ascending.
func drawNumbers(count, max int) ([]int, error) {
	if count <= 0 || max < count {
		return nil, fmt.Errorf("cannot draw %d numbers from [1, %d]", count, max)
	}
	picked := make(map[int]struct{}, count)
	numbers := make([]int, 0, count)
	for len(numbers) < count {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(max)))
		if err != nil {
			return nil, err
		}
		candidate := int(n.Int64()) + 1
		if _, dup := picked[candidate]; dup {
			continue
		}
		picked[candidate] = struct{}{}
		numbers = append(numbers, candidate)
	}
	sort.Ints(numbers)
	return numbers, nil
}

// validateNumbers checks an entry's numbers against the draw's format.
func validateNumbers(numbers []int, count, max int) error {
	if len(numbers) != count {
		return fmt.Errorf("entry must have exactly %d numbers, got %d", count, len(numbers))
	}
	seen := make(map[int]struct{}, len(numbers))
	for _, n := range numbers {
		if n < 1 || n > max {
			return fmt.Errorf("number %d out of range [1, %d]", n, max)
		}
		if _, dup := seen[n]; dup {
			return fmt.Errorf("duplicate number %d", n)
		}
		seen[n] = struct{}{}
	}
	return nil
}

// asInt converts the numeric types BSON may decode into.
func asInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case int:
		return n, true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}

// asInt64 converts the numeric types BSON may decode into.
func asInt64(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case int:
		return int64(n), true
	case float64:
		return int64(n), true
	default:
		return 0, false
	}
}
