package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LedgerEvent classifies an audit ledger row
type LedgerEvent string

const (
	LedgerEventComputed LedgerEvent = "COMPUTED"
	LedgerEventVerified LedgerEvent = "VERIFIED"
	LedgerEventRejected LedgerEvent = "REJECTED"
	LedgerEventSettled  LedgerEvent = "SETTLED"
)

// LedgerEntry is an append-only audit row written for every winner record
// event. Reporting and export read these rows; nothing in this system
// updates or deletes them.
type LedgerEntry struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	WinnerID      primitive.ObjectID `bson:"winnerId" json:"winnerId"`
	DrawID        primitive.ObjectID `bson:"drawId" json:"drawId"`
	SubscriberID  primitive.ObjectID `bson:"subscriberId" json:"subscriberId"`
	Event         LedgerEvent        `bson:"event" json:"event"`
	GrossPrize    int64              `bson:"grossPrize" json:"grossPrize"`
	CharityAmount int64              `bson:"charityAmount" json:"charityAmount"`
	NetPayout     int64              `bson:"netPayout" json:"netPayout"`
	Actor         string             `bson:"actor,omitempty" json:"actor,omitempty"`
	Reference     string             `bson:"reference,omitempty" json:"reference,omitempty"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
}
