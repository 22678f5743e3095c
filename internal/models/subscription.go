package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Subscription is the locally cached snapshot of a subscriber's most recent
// subscription in the external billing system. There is at most one per
// subscriber; each reconciliation fully replaces the previous snapshot
// (last-write-wins keyed by subscriber id, no merge).
type Subscription struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	SubscriberID      primitive.ObjectID `bson:"subscriberId" json:"subscriberId"`
	ProviderSubID     string             `bson:"providerSubId" json:"providerSubId"`
	Status            string             `bson:"status" json:"status"`
	Plan              string             `bson:"plan" json:"plan"`
	PeriodStart       time.Time          `bson:"periodStart,omitempty" json:"periodStart,omitempty"`
	PeriodEnd         time.Time          `bson:"periodEnd,omitempty" json:"periodEnd,omitempty"`
	CancelAtPeriodEnd bool               `bson:"cancelAtPeriodEnd" json:"cancelAtPeriodEnd"`
	SyncedAt          time.Time          `bson:"syncedAt" json:"syncedAt"`
}
