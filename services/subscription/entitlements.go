package subscription

import (
	"time"

	"servswap/config"
	"servswap/models"
)

const (
	DefaultGraceDays                 = 7
	DefaultFreeSwapProposalsPerMonth = 3
	DefaultFreeActiveListings        = 3
	// FreeMatchLimit caps swap match suggestions for members without premium.
	FreeMatchLimit = 3
	// Unlimited is reported as the allowance for premium members.
	Unlimited = -1
)

// Stripe subscription statuses the entitlement rules look at.
const (
	StatusActive   = "active"
	StatusTrialing = "trialing"
	StatusPastDue  = "past_due"
	StatusCanceled = "canceled"
)

func GraceDays() int {
	if d := config.AppConfig.SubscriptionGraceDays; d > 0 {
		return d
	}
	return DefaultGraceDays
}

func FreeSwapProposalsPerMonth() int {
	if n := config.AppConfig.FreeSwapProposalsPerMonth; n > 0 {
		return n
	}
	return DefaultFreeSwapProposalsPerMonth
}

func FreeActiveListings() int {
	if n := config.AppConfig.FreeActiveListings; n > 0 {
		return n
	}
	return DefaultFreeActiveListings
}

// IsActive reports whether a subscription in status grants its entitlement at now.
// past_due keeps access until the grace period after periodEnd runs out.
func IsActive(status string, periodEnd, now time.Time) bool {
	switch status {
	case StatusActive, StatusTrialing:
		return true
	case StatusPastDue:
		if periodEnd.IsZero() {
			return false
		}
		return now.Before(periodEnd.AddDate(0, 0, GraceDays()))
	default:
		return false
	}
}

func IsPremium(u *models.User, now time.Time) bool {
	if u == nil {
		return false
	}
	s := u.Subscription
	return s.Plan == models.PlanPremium && IsActive(s.Status, s.CurrentPeriodEnd, now)
}

func HasVerificationBadge(u *models.User, now time.Time) bool {
	if u == nil {
		return false
	}
	s := u.Subscription
	return s.VerificationAddon && IsActive(s.VerificationStatus, s.VerificationPeriodEnd, now)
}

// MonthStart returns the first instant of now's calendar month in UTC.
func MonthStart(now time.Time) time.Time {
	now = now.UTC()
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
}
