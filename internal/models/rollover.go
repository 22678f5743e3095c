package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Rollover records a tier share that went undistributed because no entry
// qualified for the tier. The settlement engine only records it; the amount
// is folded into the prize pool when the destination draw is scheduled.
type Rollover struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	SourceDrawID     primitive.ObjectID `bson:"sourceDrawId" json:"sourceDrawId"`
	SourceLabel      string             `bson:"sourceLabel" json:"sourceLabel"`
	Tier             int                `bson:"tier" json:"tier"`
	Amount           int64              `bson:"amount" json:"amount"`
	DestinationLabel string             `bson:"destinationLabel" json:"destinationLabel"`
	Applied          bool               `bson:"applied" json:"applied"`
	CreatedAt        time.Time          `bson:"createdAt" json:"createdAt"`
}
