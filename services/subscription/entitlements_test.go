package subscription

import (
	"testing"
	"time"

	"servswap/models"

	"github.com/stretchr/testify/assert"
	"github.com/stripe/stripe-go/v76"
)

func TestIsActive(t *testing.T) {
	end := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

	assert.True(t, IsActive(StatusActive, time.Time{}, end))
	assert.True(t, IsActive(StatusTrialing, end, end.AddDate(1, 0, 0)))
	assert.False(t, IsActive(StatusCanceled, end, end.Add(-time.Hour)))
	assert.False(t, IsActive("", end, end.Add(-time.Hour)))

	// past_due keeps access for the grace period only.
	assert.True(t, IsActive(StatusPastDue, end, end.AddDate(0, 0, DefaultGraceDays-1)))
	assert.False(t, IsActive(StatusPastDue, end, end.AddDate(0, 0, DefaultGraceDays)))
	assert.False(t, IsActive(StatusPastDue, time.Time{}, end))
}

func TestIsPremiumAndBadge(t *testing.T) {
	now := time.Now()
	assert.False(t, IsPremium(nil, now))
	assert.False(t, IsPremium(&models.User{}, now))
	assert.False(t, IsPremium(&models.User{Subscription: models.Subscription{Plan: models.PlanFree, Status: StatusActive}}, now))
	assert.True(t, IsPremium(&models.User{Subscription: models.Subscription{Plan: models.PlanPremium, Status: StatusActive}}, now))

	u := &models.User{Subscription: models.Subscription{VerificationAddon: true, VerificationStatus: StatusActive}}
	assert.True(t, HasVerificationBadge(u, now))
	u.Subscription.VerificationStatus = StatusCanceled
	assert.False(t, HasVerificationBadge(u, now))
}

func TestMonthStart(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*3600)
	got := MonthStart(time.Date(2025, 3, 1, 1, 0, 0, 0, loc))
	// 01:00 at UTC+3 on March 1st is still February in UTC.
	assert.Equal(t, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), got)
}

func TestDefaultsWithoutConfig(t *testing.T) {
	assert.Equal(t, DefaultGraceDays, GraceDays())
	assert.Equal(t, DefaultFreeSwapProposalsPerMonth, FreeSwapProposalsPerMonth())
	assert.Equal(t, DefaultFreeActiveListings, FreeActiveListings())
}

func TestApplyStripeSubscription(t *testing.T) {
	end := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	sub := &stripe.Subscription{ID: "sub_1", Status: stripe.SubscriptionStatusActive, CurrentPeriodEnd: end.Unix(), CancelAtPeriodEnd: true}

	got := ApplyStripeSubscription(models.Subscription{}, models.ProductPremium, sub, false)
	assert.Equal(t, models.PlanPremium, got.Plan)
	assert.Equal(t, "sub_1", got.StripeSubscriptionID)
	assert.Equal(t, StatusActive, got.Status)
	assert.True(t, got.CurrentPeriodEnd.Equal(end))
	assert.True(t, got.CancelAtPeriodEnd)

	got = ApplyStripeSubscription(got, models.ProductPremium, sub, true)
	assert.Equal(t, models.PlanFree, got.Plan)
	assert.Equal(t, StatusCanceled, got.Status)

	badge := ApplyStripeSubscription(models.Subscription{}, models.ProductVerification, &stripe.Subscription{ID: "sub_v", Status: stripe.SubscriptionStatusActive}, false)
	assert.True(t, badge.VerificationAddon)
	assert.Equal(t, "sub_v", badge.VerificationSubscriptionID)
	assert.Equal(t, models.PlanFree, badge.Plan)
}

func TestRenewalReminderDue(t *testing.T) {
	now := time.Date(2025, 5, 28, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	u := &models.User{Subscription: models.Subscription{Plan: models.PlanPremium, Status: StatusActive, CurrentPeriodEnd: end}}
	p := models.ReminderPayload{Data: map[string]string{"periodEnd": end.Format(time.RFC3339)}}

	assert.True(t, RenewalReminderDue(u, p, now))

	u.Subscription.CancelAtPeriodEnd = true
	assert.False(t, RenewalReminderDue(u, p, now))
	u.Subscription.CancelAtPeriodEnd = false

	u.Subscription.CurrentPeriodEnd = end.AddDate(0, 1, 0)
	assert.False(t, RenewalReminderDue(u, p, now), "a renewed period gets its own reminder")

	assert.False(t, RenewalReminderDue(u, models.ReminderPayload{}, now))
}
