package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Entry is a subscriber's numbers submitted for a specific draw. At most one
// entry exists per (subscriber, draw); entries are read-only once the draw
// leaves SCHEDULED. CharityID snapshots the subscriber's chosen charity at
// submission time.
type Entry struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	DrawID       primitive.ObjectID `bson:"drawId" json:"drawId"`
	SubscriberID primitive.ObjectID `bson:"subscriberId" json:"subscriberId"`
	Numbers      []int              `bson:"numbers" json:"numbers"`
	CharityID    primitive.ObjectID `bson:"charityId" json:"charityId"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
}
