// Package billing wraps the Stripe API behind the one read the
// reconciliation engine needs: the most recent subscription of a customer.
// The rest of the provider's object model is invisible to internal code;
// provider payloads are mapped into Snapshot at this boundary and never
// inspected again.
package billing

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/subscription"
)

var (
	// ErrMissingAPIKey indicates the gateway was constructed without
	// credentials. Fatal configuration problem, not retryable.
	ErrMissingAPIKey = errors.New("billing: missing API key")

	// ErrBadCredentials indicates the provider rejected the credentials.
	ErrBadCredentials = errors.New("billing: credentials rejected")

	// ErrUnavailable indicates the provider could not be reached or timed
	// out. Callers must treat this as "sync unavailable", never as a
	// subscription status.
	ErrUnavailable = errors.New("billing: provider unavailable")
)

// Snapshot is the point-in-time view of a customer's most recent
// subscription. Status and Interval carry the provider's strings verbatim.
type Snapshot struct {
	ProviderSubID     string
	Status            string
	Interval          string // provider billing interval: "month" or "year"
	PeriodStart       time.Time
	PeriodEnd         time.Time
	CancelAtPeriodEnd bool
}

// Gateway is the read-only contract against the external billing system.
type Gateway interface {
	// LatestSubscription returns the customer's single most recent
	// subscription regardless of status (canceled and past_due are valid,
	// informative results), or (nil, nil) when the customer has none.
	LatestSubscription(ctx context.Context, customerRef string) (*Snapshot, error)
}

// StripeGateway implements Gateway against the Stripe API
type StripeGateway struct {
	mock bool
}

// NewStripeGateway creates a new StripeGateway. An empty API key is only
// acceptable in mock mode.
func NewStripeGateway(apiKey string, timeout time.Duration, mock bool) (*StripeGateway, error) {
	if mock {
		return &StripeGateway{mock: true}, nil
	}
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	stripe.Key = apiKey
	stripe.SetBackend(stripe.APIBackend, stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		HTTPClient: &http.Client{Timeout: timeout},
	}))
	return &StripeGateway{}, nil
}

// LatestSubscription fetches the customer's most recent subscription.
func (g *StripeGateway) LatestSubscription(ctx context.Context, customerRef string) (*Snapshot, error) {
	if g.mock {
		return g.mockLatestSubscription(customerRef)
	}

	params := &stripe.SubscriptionListParams{
		Customer: stripe.String(customerRef),
		Status:   stripe.String("all"),
	}
	params.Context = ctx
	params.Limit = stripe.Int64(1)

	iter := subscription.List(params)
	for iter.Next() {
		sub := iter.Subscription()
		snapshot := &Snapshot{
			ProviderSubID:     sub.ID,
			Status:            string(sub.Status),
			PeriodStart:       time.Unix(sub.CurrentPeriodStart, 0),
			PeriodEnd:         time.Unix(sub.CurrentPeriodEnd, 0),
			CancelAtPeriodEnd: sub.CancelAtPeriodEnd,
		}
		if len(sub.Items.Data) > 0 && sub.Items.Data[0].Price != nil && sub.Items.Data[0].Price.Recurring != nil {
			snapshot.Interval = string(sub.Items.Data[0].Price.Recurring.Interval)
		}
		return snapshot, nil
	}
	if err := iter.Err(); err != nil {
		var stripeErr *stripe.Error
		// stripe-go v81 no longer exports ErrorTypeAuthentication; compare
		// against its literal value "authentication_error" instead.
		if errors.As(err, &stripeErr) && stripeErr.Type == stripe.ErrorType("authentication_error") {
			return nil, ErrBadCredentials
		}
		return nil, errors.Join(ErrUnavailable, err)
	}
	return nil, nil
}

// mockLatestSubscription returns a deterministic active monthly
// subscription for local development without Stripe credentials.
func (g *StripeGateway) mockLatestSubscription(customerRef string) (*Snapshot, error) {
	if customerRef == "" {
		return nil, nil
	}
	now := time.Now()
	return &Snapshot{
		ProviderSubID:     "sub_mock_" + customerRef,
		Status:            "active",
		Interval:          "month",
		PeriodStart:       now.AddDate(0, 0, -14),
		PeriodEnd:         now.AddDate(0, 0, 16),
		CancelAtPeriodEnd: false,
	}, nil
}
