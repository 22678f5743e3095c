package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Subscription status values mirrored from the billing provider. The cached
// status is stored verbatim; these constants only name the values the engine
// itself inspects.
const (
	SubscriptionStatusNone     = "none"
	SubscriptionStatusTrialing = "trialing"
	SubscriptionStatusActive   = "active"
	SubscriptionStatusPastDue  = "past_due"
	SubscriptionStatusCanceled = "canceled"
)

// Plan is the internal summary plan derived from the provider's billing
// interval. Draw eligibility checks read this field only.
const (
	PlanMonthly = "monthly"
	PlanAnnual  = "annual"
	PlanNone    = "none"
)

// Subscriber represents a lottery member. Billing fields are a cache of the
// external billing system and are mutated only through reconciliation.
type Subscriber struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name               string             `bson:"name" json:"name"`
	Email              string             `bson:"email" json:"email"`
	CharityID          primitive.ObjectID `bson:"charityId,omitempty" json:"charityId,omitempty"`
	BillingCustomerRef string             `bson:"billingCustomerRef,omitempty" json:"billingCustomerRef,omitempty"`
	SubscriptionStatus string             `bson:"subscriptionStatus" json:"subscriptionStatus"`
	Plan               string             `bson:"plan" json:"plan"`
	LastReconciledAt   time.Time          `bson:"lastReconciledAt,omitempty" json:"lastReconciledAt,omitempty"`
	CreatedAt          time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt          time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// IsActive reports whether the cached status entitles the subscriber to
// enter draws.
func (s *Subscriber) IsActive() bool {
	return s.SubscriptionStatus == SubscriptionStatusActive || s.SubscriptionStatus == SubscriptionStatusTrialing
}
