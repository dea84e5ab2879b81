package subscription

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"servswap/database"
	"servswap/models"
	"servswap/services/apperr"
	"servswap/services/tasks"
	"servswap/utils"

	"github.com/hibiken/asynq"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"
	"go.uber.org/zap"
)

// RenewalReminderLead is how long before the period end the renewal reminder fires.
const RenewalReminderLead = 3 * 24 * time.Hour

// HandleWebhook verifies and applies one Stripe event. Unknown event types are ignored.
func (s *DefaultSubscriptionService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := webhook.ConstructEventWithOptions(payload, signature, s.WebhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return apperr.Invalid("invalid webhook signature")
	}

	logger := utils.GetLogger()
	logger.Info("stripe event received", zap.String("type", string(event.Type)), zap.String("id", event.ID))

	switch event.Type {
	case "checkout.session.completed":
		var cs stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &cs); err != nil {
			return apperr.Invalid("malformed checkout session")
		}
		return s.onCheckoutCompleted(ctx, &cs)

	case "customer.subscription.created", "customer.subscription.updated":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return apperr.Invalid("malformed subscription")
		}
		return s.onSubscriptionChanged(ctx, &sub, false)

	case "customer.subscription.deleted":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return apperr.Invalid("malformed subscription")
		}
		return s.onSubscriptionChanged(ctx, &sub, true)

	case "invoice.payment_failed":
		var inv stripe.Invoice
		if err := json.Unmarshal(event.Data.Raw, &inv); err != nil {
			return apperr.Invalid("malformed invoice")
		}
		return s.onPaymentFailed(ctx, &inv)
	}
	return nil
}

func customerID(c *stripe.Customer) string {
	if c == nil {
		return ""
	}
	return c.ID
}

func (s *DefaultSubscriptionService) userForCustomer(ctx context.Context, custID, fallbackUserID string) (*models.User, error) {
	if custID != "" {
		u, err := s.Users.GetByStripeCustomerID(ctx, custID)
		if err == nil {
			return u, nil
		}
		if !errors.Is(err, database.ErrNotFound) {
			return nil, apperr.Internal("failed to resolve customer", err)
		}
	}
	if fallbackUserID != "" {
		return s.loadUser(ctx, fallbackUserID)
	}
	return nil, apperr.NotFound("no member for customer %s", custID)
}

func (s *DefaultSubscriptionService) onCheckoutCompleted(ctx context.Context, cs *stripe.CheckoutSession) error {
	u, err := s.userForCustomer(ctx, customerID(cs.Customer), cs.ClientReferenceID)
	if err != nil {
		return err
	}

	fields := map[string]any{}
	if id := customerID(cs.Customer); id != "" && u.Subscription.StripeCustomerID == "" {
		fields["subscription.stripeCustomerId"] = id
	}
	if cs.Subscription != nil && cs.Subscription.ID != "" {
		switch cs.Metadata["product"] {
		case models.ProductPremium:
			fields["subscription.stripeSubscriptionId"] = cs.Subscription.ID
		case models.ProductVerification:
			fields["subscription.verificationSubscriptionId"] = cs.Subscription.ID
		}
	}
	if len(fields) == 0 {
		return nil
	}
	if err := s.Users.UpdateFields(ctx, u.ID, fields); err != nil {
		return apperr.Internal("failed to record checkout", err)
	}
	return nil
}

// subscriptionProduct works out which product a Stripe subscription sells.
func (s *DefaultSubscriptionService) subscriptionProduct(sub *stripe.Subscription) string {
	if sub.Items != nil {
		for _, item := range sub.Items.Data {
			if item == nil || item.Price == nil {
				continue
			}
			if p := s.productFor(item.Price.ID); p != "" {
				return p
			}
		}
	}
	return sub.Metadata["product"]
}

// ApplyStripeSubscription folds a Stripe subscription for product into cur and
// returns the result. deleted marks the subscription as ended.
func ApplyStripeSubscription(cur models.Subscription, product string, sub *stripe.Subscription, deleted bool) models.Subscription {
	status := string(sub.Status)
	if deleted {
		status = StatusCanceled
	}
	periodEnd := time.Time{}
	if sub.CurrentPeriodEnd > 0 {
		periodEnd = time.Unix(sub.CurrentPeriodEnd, 0).UTC()
	}
	live := status != StatusCanceled && status != "incomplete_expired" && status != "unpaid"

	switch product {
	case models.ProductPremium:
		cur.StripeSubscriptionID = sub.ID
		cur.Status = status
		cur.CurrentPeriodEnd = periodEnd
		cur.CancelAtPeriodEnd = sub.CancelAtPeriodEnd
		if live {
			cur.Plan = models.PlanPremium
		} else {
			cur.Plan = models.PlanFree
		}
	case models.ProductVerification:
		cur.VerificationSubscriptionID = sub.ID
		cur.VerificationStatus = status
		cur.VerificationPeriodEnd = periodEnd
		cur.VerificationAddon = live
	}
	if cur.Plan == "" {
		cur.Plan = models.PlanFree
	}
	return cur
}

func (s *DefaultSubscriptionService) onSubscriptionChanged(ctx context.Context, sub *stripe.Subscription, deleted bool) error {
	product := s.subscriptionProduct(sub)
	if product == "" {
		utils.GetLogger().Warn("ignoring subscription for unknown price", zap.String("subscription", sub.ID))
		return nil
	}
	u, err := s.userForCustomer(ctx, customerID(sub.Customer), sub.Metadata["userId"])
	if err != nil {
		return err
	}

	now := s.now()
	wasVerified := u.Verified
	wasPremium := IsPremium(u, now)

	updated := *u
	updated.Subscription = ApplyStripeSubscription(u.Subscription, product, sub, deleted)
	if customerID(sub.Customer) != "" {
		updated.Subscription.StripeCustomerID = customerID(sub.Customer)
	}
	verified := HasVerificationBadge(&updated, now)
	premium := IsPremium(&updated, now)

	if err := s.Users.UpdateFields(ctx, u.ID, map[string]any{
		"subscription": updated.Subscription,
		"verified":     verified,
	}); err != nil {
		return apperr.Internal("failed to update subscription", err)
	}

	s.notifyChange(ctx, u.ID, product, premium, wasPremium, verified, wasVerified)

	if product == models.ProductPremium && premium && !updated.Subscription.CancelAtPeriodEnd {
		s.scheduleRenewalReminder(u.ID, updated.Subscription.CurrentPeriodEnd, now)
	}
	return nil
}

func (s *DefaultSubscriptionService) notifyChange(ctx context.Context, userID, product string, premium, wasPremium, verified, wasVerified bool) {
	if s.Notifier == nil {
		return
	}
	logger := utils.GetLogger()
	data := map[string]string{"product": product}

	if verified && !wasVerified {
		if err := s.Notifier.Notify(ctx, userID, models.NotifyVerificationGranted,
			"You're verified", "Your verification badge is now visible on your profile.", data); err != nil {
			logger.Warn("verification notification failed", zap.String("userID", userID), zap.Error(err))
		}
		return
	}

	var body string
	switch {
	case product == models.ProductPremium && premium && !wasPremium:
		body = "Premium is active. Enjoy unlimited swaps and listings."
	case product == models.ProductPremium && !premium && wasPremium:
		body = "Your premium plan has ended."
	case product == models.ProductVerification && !verified && wasVerified:
		body = "Your verification badge has been removed."
	default:
		body = "Your subscription was updated."
	}
	if err := s.Notifier.Notify(ctx, userID, models.NotifySubscriptionUpdated, "Subscription updated", body, data); err != nil {
		logger.Warn("subscription notification failed", zap.String("userID", userID), zap.Error(err))
	}
}

// scheduleRenewalReminder enqueues the reminder three days before periodEnd.
// Nothing is scheduled when that moment has already passed.
func (s *DefaultSubscriptionService) scheduleRenewalReminder(userID string, periodEnd, now time.Time) {
	if s.Queue == nil || periodEnd.IsZero() {
		return
	}
	fireAt := periodEnd.Add(-RenewalReminderLead)
	if !fireAt.After(now) {
		return
	}

	payload := models.ReminderPayload{
		UserID: userID,
		Type:   models.NotifySubscriptionRenewal,
		Title:  "Premium renews soon",
		Body:   fmt.Sprintf("Your premium plan renews on %s.", periodEnd.Format("Jan 2, 2006")),
		Data: map[string]string{
			"periodEnd": periodEnd.UTC().Format(time.RFC3339),
		},
		FireDate: fireAt,
	}
	task, opts, err := tasks.NewReminderTask(payload, fireAt, tasks.RenewalReminderID(userID, periodEnd))
	if err != nil {
		utils.GetLogger().Error("failed to build renewal reminder", zap.Error(err))
		return
	}
	if _, err := s.Queue.Enqueue(task, opts...); err != nil && !errors.Is(err, asynq.ErrTaskIDConflict) {
		utils.GetLogger().Error("failed to schedule renewal reminder", zap.String("userID", userID), zap.Error(err))
	}
}

func (s *DefaultSubscriptionService) onPaymentFailed(ctx context.Context, inv *stripe.Invoice) error {
	u, err := s.userForCustomer(ctx, customerID(inv.Customer), "")
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil
		}
		return err
	}
	if s.Notifier == nil {
		return nil
	}
	body := fmt.Sprintf("We couldn't process your payment. Update your card within %d days to keep premium.", GraceDays())
	if err := s.Notifier.Notify(ctx, u.ID, models.NotifySubscriptionUpdated, "Payment failed", body,
		map[string]string{"reason": "payment_failed"}); err != nil {
		utils.GetLogger().Warn("payment failure notification failed", zap.String("userID", u.ID), zap.Error(err))
	}
	return nil
}

// RenewalReminderDue reports whether a scheduled renewal reminder still applies to u:
// premium must still be active, not set to cancel, and on the same billing period.
func RenewalReminderDue(u *models.User, p models.ReminderPayload, now time.Time) bool {
	if !IsPremium(u, now) || u.Subscription.CancelAtPeriodEnd {
		return false
	}
	want, err := time.Parse(time.RFC3339, p.Data["periodEnd"])
	if err != nil {
		return false
	}
	return u.Subscription.CurrentPeriodEnd.Unix() == want.Unix()
}
