package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// System config keys consulted when scheduling a draw without explicit
// overrides.
const (
	ConfigKeyDefaultTiers       = "default_prize_tiers"
	ConfigKeyDefaultSplitBps    = "default_charity_split_bps"
	ConfigKeyDefaultPrizePool   = "default_prize_pool"
	ConfigKeyDefaultNumberCount = "default_number_count"
	ConfigKeyDefaultMaxNumber   = "default_max_number"
)

// SystemConfig is a key/value configuration row
type SystemConfig struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Key         string             `bson:"key" json:"key"`
	Value       interface{}        `bson:"value" json:"value"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}
