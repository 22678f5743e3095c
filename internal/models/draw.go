package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DrawStatus represents the lifecycle status of a draw
type DrawStatus string

const (
	DrawStatusScheduled DrawStatus = "SCHEDULED"
	DrawStatusDrawn     DrawStatus = "DRAWN"
	DrawStatusPublished DrawStatus = "PUBLISHED"
)

// PrizeTier defines one prize tier of a draw: entries matching exactly
// MatchCount winning numbers share the tier's slice of the prize pool.
// Share is in minor currency units.
type PrizeTier struct {
	Tier       int   `bson:"tier" json:"tier"`
	MatchCount int   `bson:"matchCount" json:"matchCount"`
	Share      int64 `bson:"share" json:"share"`
}

// Draw represents one monthly draw cycle. All amounts are minor currency
// units; CharitySplitBps is the charity share of each gross prize in basis
// points (1000 = 10%). A draw is immutable once PUBLISHED.
type Draw struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Label           string             `bson:"label" json:"label"` // YYYY-MM
	Status          DrawStatus         `bson:"status" json:"status"`
	WinningNumbers  []int              `bson:"winningNumbers,omitempty" json:"winningNumbers,omitempty"`
	NumberCount     int                `bson:"numberCount" json:"numberCount"`
	MaxNumber       int                `bson:"maxNumber" json:"maxNumber"`
	PrizePool       int64              `bson:"prizePool" json:"prizePool"`
	RolloverIn      int64              `bson:"rolloverIn" json:"rolloverIn"`
	Tiers           []PrizeTier        `bson:"tiers" json:"tiers"`
	CharitySplitBps int32              `bson:"charitySplitBps" json:"charitySplitBps"`
	DrawnAt         time.Time          `bson:"drawnAt,omitempty" json:"drawnAt,omitempty"`
	PublishedAt     time.Time          `bson:"publishedAt,omitempty" json:"publishedAt,omitempty"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// TierFor returns the prize tier for a match count, or false when the match
// count wins nothing.
func (d *Draw) TierFor(matchCount int) (PrizeTier, bool) {
	for _, t := range d.Tiers {
		if t.MatchCount == matchCount {
			return t, true
		}
	}
	return PrizeTier{}, false
}
