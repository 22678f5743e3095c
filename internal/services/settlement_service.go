package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/luckygiving/lottery-backend/internal/errs"
	"github.com/luckygiving/lottery-backend/internal/models"
	"github.com/luckygiving/lottery-backend/internal/money"
	"github.com/luckygiving/lottery-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/exp/slog"
)

// Compile-time check to ensure SettlementServiceImpl implements SettlementService
var _ SettlementService = (*SettlementServiceImpl)(nil)

// SettlementService transforms a draw's winning numbers and entries into
// winner records with exact monetary splits, and drives each record through
// verification and payout.
type SettlementService interface {
	ComputeWinners(ctx context.Context, drawID primitive.ObjectID) ([]*models.Winner, error)
	Verify(ctx context.Context, winnerID primitive.ObjectID, decision string, adminID string) (*models.Winner, error)
	Settle(ctx context.Context, winnerID primitive.ObjectID, paymentReference string) (*models.Winner, error)
	GetWinnersByDrawID(ctx context.Context, drawID primitive.ObjectID) ([]*models.Winner, error)
	GetWinnersByStatus(ctx context.Context, status models.VerificationStatus, page, limit int) ([]*models.Winner, error)
	GetLedgerByWinnerID(ctx context.Context, winnerID primitive.ObjectID) ([]*models.LedgerEntry, error)
}

// SettlementServiceImpl implements SettlementService
type SettlementServiceImpl struct {
	drawRepo     repositories.DrawRepository
	entryRepo    repositories.EntryRepository
	winnerRepo   repositories.WinnerRepository
	rolloverRepo repositories.RolloverRepository
	ledgerRepo   repositories.LedgerRepository
}

// NewSettlementService creates a new SettlementServiceImpl
func NewSettlementService(
	drawRepo repositories.DrawRepository,
	entryRepo repositories.EntryRepository,
	winnerRepo repositories.WinnerRepository,
	rolloverRepo repositories.RolloverRepository,
	ledgerRepo repositories.LedgerRepository,
) *SettlementServiceImpl {
	return &SettlementServiceImpl{
		drawRepo:     drawRepo,
		entryRepo:    entryRepo,
		winnerRepo:   winnerRepo,
		rolloverRepo: rolloverRepo,
		ledgerRepo:   ledgerRepo,
	}
}

// BuildWinners computes winner records for a draw from its entries. Pure:
// no I/O, no clock, deterministic for a given input. Returns the records in
// entry order plus the tiers whose share went undistributed because no
// entry qualified.
func BuildWinners(draw *models.Draw, entries []*models.Entry) ([]*models.Winner, []models.PrizeTier, error) {
	if draw.PrizePool < 0 {
		return nil, nil, fmt.Errorf("draw %s has negative prize pool %d", draw.Label, draw.PrizePool)
	}
	var tierTotal int64
	for _, t := range draw.Tiers {
		if t.Share < 0 {
			return nil, nil, fmt.Errorf("draw %s tier %d has negative share %d", draw.Label, t.Tier, t.Share)
		}
		tierTotal += t.Share
	}
	if tierTotal > draw.PrizePool {
		return nil, nil, fmt.Errorf("draw %s tier shares %d exceed prize pool %d", draw.Label, tierTotal, draw.PrizePool)
	}

	// Group qualifying entries per tier, preserving entry-id order so the
	// remainder distribution of an uneven split stays deterministic.
	sorted := make([]*models.Entry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].ID.Hex() < sorted[j].ID.Hex()
	})

	qualifiers := make(map[int][]*models.Entry)
	matches := make(map[primitive.ObjectID]int)
	for _, entry := range sorted {
		match := matchCount(entry.Numbers, draw.WinningNumbers)
		matches[entry.ID] = match
		if tier, ok := draw.TierFor(match); ok {
			qualifiers[tier.Tier] = append(qualifiers[tier.Tier], entry)
		}
	}

	var winners []*models.Winner
	var undistributed []models.PrizeTier
	for _, tier := range draw.Tiers {
		entries := qualifiers[tier.Tier]
		if len(entries) == 0 {
			if tier.Share > 0 {
				undistributed = append(undistributed, tier)
			}
			continue
		}

		// The tier share splits evenly across qualifiers; the gross prizes
		// sum to the share exactly, never losing or inventing units.
		grossPrizes, err := money.SplitEven(tier.Share, len(entries))
		if err != nil {
			return nil, nil, err
		}

		for i, entry := range entries {
			gross := grossPrizes[i]
			// Charity first, net by subtraction: gross = charity + net holds
			// by construction.
			charity, err := money.Share(gross, draw.CharitySplitBps)
			if err != nil {
				return nil, nil, err
			}
			winners = append(winners, &models.Winner{
				DrawID:        draw.ID,
				SubscriberID:  entry.SubscriberID,
				EntryID:       entry.ID,
				Tier:          tier.Tier,
				MatchCount:    matches[entry.ID],
				GrossPrize:    gross,
				CharityAmount: charity,
				NetPayout:     gross - charity,
				CharityID:     entry.CharityID,
				Status:        models.VerificationPending,
			})
		}
	}
	return winners, undistributed, nil
}

// matchCount returns the set-intersection cardinality of an entry's numbers
// and the winning numbers. Duplicates within the entry never double-count.
func matchCount(entryNumbers, winningNumbers []int) int {
	winning := make(map[int]struct{}, len(winningNumbers))
	for _, n := range winningNumbers {
		winning[n] = struct{}{}
	}
	seen := make(map[int]struct{}, len(entryNumbers))
	count := 0
	for _, n := range entryNumbers {
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		if _, ok := winning[n]; ok {
			count++
		}
	}
	return count
}

// ComputeWinners computes and persists winner records for a drawn draw. The
// operation is an idempotent replay: when records already exist for the
// draw they are returned unchanged. No money moves here; records are
// created PENDING.
func (s *SettlementServiceImpl) ComputeWinners(ctx context.Context, drawID primitive.ObjectID) ([]*models.Winner, error) {
	draw, err := s.drawRepo.FindByID(ctx, drawID)
	if err != nil {
		return nil, err
	}
	if draw.Status != models.DrawStatusDrawn && draw.Status != models.DrawStatusPublished {
		return nil, fmt.Errorf("draw %s is %s, winners can only be computed once drawn: %w",
			draw.Label, draw.Status, errs.ErrInvalidStateTransition)
	}

	existing, err := s.winnerRepo.FindByDrawID(ctx, drawID)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		slog.Info("Winners already computed for draw, replaying", "drawId", drawID, "label", draw.Label, "count", len(existing))
		return existing, nil
	}

	entries, err := s.entryRepo.FindByDrawID(ctx, drawID)
	if err != nil {
		return nil, err
	}

	winners, undistributed, err := BuildWinners(draw, entries)
	if err != nil {
		return nil, err
	}

	if err := s.winnerRepo.CreateMany(ctx, winners); err != nil {
		if errors.Is(err, errs.ErrPersistenceConflict) {
			// A concurrent computation won the insert race; its records are
			// the authoritative set.
			slog.Warn("Concurrent winner computation detected, replaying", "drawId", drawID)
			return s.winnerRepo.FindByDrawID(ctx, drawID)
		}
		return nil, err
	}

	for _, w := range winners {
		s.appendLedger(ctx, w, models.LedgerEventComputed, "", "")
	}

	// Undistributed tier shares become rollover rows for the next draw;
	// applying them is the scheduling side's concern.
	for _, tier := range undistributed {
		rollover := &models.Rollover{
			SourceDrawID:     draw.ID,
			SourceLabel:      draw.Label,
			Tier:             tier.Tier,
			Amount:           tier.Share,
			DestinationLabel: nextLabel(draw.Label),
		}
		if err := s.rolloverRepo.Create(ctx, rollover); err != nil {
			slog.Error("Failed to record rollover", "error", err, "drawId", draw.ID, "tier", tier.Tier)
		}
	}

	slog.Info("Computed winners for draw", "drawId", drawID, "label", draw.Label,
		"entries", len(entries), "winners", len(winners), "undistributedTiers", len(undistributed))
	return winners, nil
}

// Verify moves a PENDING winner record to VERIFIED or REJECTED, attributed
// to the deciding admin. Any other starting state fails with
// ErrInvalidStateTransition and mutates nothing.
func (s *SettlementServiceImpl) Verify(ctx context.Context, winnerID primitive.ObjectID, decision string, adminID string) (*models.Winner, error) {
	var to models.VerificationStatus
	switch decision {
	case models.DecisionAccept:
		to = models.VerificationVerified
	case models.DecisionReject:
		to = models.VerificationRejected
	default:
		return nil, fmt.Errorf("unknown verify decision %q", decision)
	}

	winner, err := s.winnerRepo.TransitionVerification(ctx, winnerID, to, adminID)
	if err != nil {
		return nil, err
	}
	if winner == nil {
		// The conditional update did not match: either the record does not
		// exist or it already left PENDING.
		current, err := s.winnerRepo.FindByID(ctx, winnerID)
		if err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("winner %s is %s, not PENDING: %w", winnerID.Hex(), current.Status, errs.ErrInvalidStateTransition)
	}

	event := models.LedgerEventVerified
	if to == models.VerificationRejected {
		event = models.LedgerEventRejected
	}
	s.appendLedger(ctx, winner, event, adminID, "")

	slog.Info("Winner verification decided", "winnerId", winnerID, "decision", decision, "adminId", adminID)
	return winner, nil
}

// Settle marks a VERIFIED winner as paid against an external payment
// reference. Idempotent on (winnerID, paymentReference): replaying the same
// settlement is a no-op success, while a different reference on a settled
// record fails. This is the only operation that ever sets IsPaid.
func (s *SettlementServiceImpl) Settle(ctx context.Context, winnerID primitive.ObjectID, paymentReference string) (*models.Winner, error) {
	if paymentReference == "" {
		return nil, errors.New("payment reference is required")
	}

	winner, err := s.winnerRepo.MarkPaid(ctx, winnerID, paymentReference)
	if err != nil {
		return nil, err
	}
	if winner == nil {
		current, err := s.winnerRepo.FindByID(ctx, winnerID)
		if err != nil {
			return nil, err
		}
		if current.IsPaid && current.PayoutRef == paymentReference {
			// Replay of a completed settlement.
			return current, nil
		}
		return nil, fmt.Errorf("winner %s is %s (paid=%t), not settleable: %w",
			winnerID.Hex(), current.Status, current.IsPaid, errs.ErrInvalidStateTransition)
	}

	s.appendLedger(ctx, winner, models.LedgerEventSettled, "", paymentReference)

	slog.Info("Winner settled", "winnerId", winnerID, "payoutRef", paymentReference, "netPayout", winner.NetPayout)
	return winner, nil
}

// GetWinnersByDrawID retrieves all winners for a specific draw.
func (s *SettlementServiceImpl) GetWinnersByDrawID(ctx context.Context, drawID primitive.ObjectID) ([]*models.Winner, error) {
	return s.winnerRepo.FindByDrawID(ctx, drawID)
}

// GetWinnersByStatus retrieves winners by verification status.
func (s *SettlementServiceImpl) GetWinnersByStatus(ctx context.Context, status models.VerificationStatus, page, limit int) ([]*models.Winner, error) {
	return s.winnerRepo.FindByStatus(ctx, status, page, limit)
}

// GetLedgerByWinnerID retrieves the audit rows of a winner record.
func (s *SettlementServiceImpl) GetLedgerByWinnerID(ctx context.Context, winnerID primitive.ObjectID) ([]*models.LedgerEntry, error) {
	return s.ledgerRepo.FindByWinnerID(ctx, winnerID)
}

// appendLedger writes an audit row. Ledger failures are logged, not
// propagated: the transition already happened and the winner record itself
// remains consistent.
func (s *SettlementServiceImpl) appendLedger(ctx context.Context, w *models.Winner, event models.LedgerEvent, actor, reference string) {
	entry := &models.LedgerEntry{
		WinnerID:      w.ID,
		DrawID:        w.DrawID,
		SubscriberID:  w.SubscriberID,
		Event:         event,
		GrossPrize:    w.GrossPrize,
		CharityAmount: w.CharityAmount,
		NetPayout:     w.NetPayout,
		Actor:         actor,
		Reference:     reference,
	}
	if err := s.ledgerRepo.Create(ctx, entry); err != nil {
		slog.Error("Failed to append ledger row", "error", err, "winnerId", w.ID, "event", event)
	}
}

// nextLabel returns the month label following a YYYY-MM label.
func nextLabel(label string) string {
	t, err := time.Parse("2006-01", label)
	if err != nil {
		return label
	}
	return t.AddDate(0, 1, 0).Format("2006-01")
}
