package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// VerificationStatus represents the verification state of a winner record
type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "PENDING"
	VerificationVerified VerificationStatus = "VERIFIED"
	VerificationRejected VerificationStatus = "REJECTED"
)

// Verify decisions accepted by the settlement engine.
const (
	DecisionAccept = "accept"
	DecisionReject = "reject"
)

// Winner is one winning entry of a draw with its computed monetary split.
// GrossPrize = CharityAmount + NetPayout holds exactly, in minor currency
// units. The split is computed once and never edited; the only mutations
// are the verification and settlement transitions:
//
//	PENDING --accept--> VERIFIED --settle--> settled (IsPaid=true)
//	PENDING --reject--> REJECTED (terminal)
type Winner struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	DrawID        primitive.ObjectID `bson:"drawId" json:"drawId"`
	SubscriberID  primitive.ObjectID `bson:"subscriberId" json:"subscriberId"`
	EntryID       primitive.ObjectID `bson:"entryId" json:"entryId"`
	Tier          int                `bson:"tier" json:"tier"`
	MatchCount    int                `bson:"matchCount" json:"matchCount"`
	GrossPrize    int64              `bson:"grossPrize" json:"grossPrize"`
	CharityAmount int64              `bson:"charityAmount" json:"charityAmount"`
	NetPayout     int64              `bson:"netPayout" json:"netPayout"`
	CharityID     primitive.ObjectID `bson:"charityId" json:"charityId"`
	Status        VerificationStatus `bson:"status" json:"status"`
	VerifiedBy    string             `bson:"verifiedBy,omitempty" json:"verifiedBy,omitempty"`
	VerifiedAt    time.Time          `bson:"verifiedAt,omitempty" json:"verifiedAt,omitempty"`
	IsPaid        bool               `bson:"isPaid" json:"isPaid"`
	PayoutRef     string             `bson:"payoutRef,omitempty" json:"payoutRef,omitempty"`
	SettledAt     time.Time          `bson:"settledAt,omitempty" json:"settledAt,omitempty"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}
