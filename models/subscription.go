package models

import "time"

const (
	PlanFree    = "free"
	PlanPremium = "premium"
)

// Products that can be bought through checkout.
const (
	ProductPremium      = "premium"
	ProductVerification = "verification"
)

// Subscription mirrors the Stripe subscription state for a user.
type Subscription struct {
	Plan                 string    `bson:"plan" json:"plan"`
	Status               string    `bson:"status,omitempty" json:"status,omitempty"`
	StripeCustomerID     string    `bson:"stripeCustomerId,omitempty" json:"-"`
	StripeSubscriptionID string    `bson:"stripeSubscriptionId,omitempty" json:"-"`
	CurrentPeriodEnd     time.Time `bson:"currentPeriodEnd,omitempty" json:"currentPeriodEnd,omitempty"`
	CancelAtPeriodEnd    bool      `bson:"cancelAtPeriodEnd" json:"cancelAtPeriodEnd"`

	// Verification badge add-on, billed as its own Stripe subscription.
	VerificationAddon          bool      `bson:"verificationAddon" json:"verificationAddon"`
	VerificationStatus         string    `bson:"verificationStatus,omitempty" json:"verificationStatus,omitempty"`
	VerificationSubscriptionID string    `bson:"verificationSubscriptionId,omitempty" json:"-"`
	VerificationPeriodEnd      time.Time `bson:"verificationPeriodEnd,omitempty" json:"verificationPeriodEnd,omitempty"`
}

// SubscriptionStatusResponse is returned by GET /api/subscription.
type SubscriptionStatusResponse struct {
	Plan              string    `json:"plan"`
	Status            string    `json:"status,omitempty"`
	Premium           bool      `json:"premium"`
	Verified          bool      `json:"verified"`
	CurrentPeriodEnd  time.Time `json:"currentPeriodEnd,omitempty"`
	CancelAtPeriodEnd bool      `json:"cancelAtPeriodEnd"`
	ProposalsUsed     int       `json:"proposalsUsed"`
	ProposalsLimit    int       `json:"proposalsLimit"`
}

type CheckoutRequest struct {
	Product string `json:"product" binding:"required"`
}
