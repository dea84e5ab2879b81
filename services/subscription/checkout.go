package subscription

import (
	"context"
	"errors"
	"strings"

	"servswap/database"
	"servswap/models"
	"servswap/services/apperr"
	"servswap/utils"

	"go.uber.org/zap"
)

func (s *DefaultSubscriptionService) loadUser(ctx context.Context, userID string) (*models.User, error) {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, apperr.Internal("failed to load user", err)
	}
	return u, nil
}

func (s *DefaultSubscriptionService) priceFor(product string) (string, error) {
	var price string
	switch product {
	case models.ProductPremium:
		price = s.PremiumPriceID
	case models.ProductVerification:
		price = s.VerificationPriceID
	default:
		return "", apperr.Invalid("unknown product %q", product)
	}
	if price == "" {
		return "", apperr.Internal("billing is not configured", errors.New("missing price id for "+product))
	}
	return price, nil
}

// productFor maps a Stripe price id back to the product it sells.
func (s *DefaultSubscriptionService) productFor(priceID string) string {
	switch {
	case priceID == "":
		return ""
	case priceID == s.PremiumPriceID:
		return models.ProductPremium
	case priceID == s.VerificationPriceID:
		return models.ProductVerification
	}
	return ""
}

// ensureCustomer returns the member's Stripe customer id, creating the customer on first use.
func (s *DefaultSubscriptionService) ensureCustomer(ctx context.Context, u *models.User) (string, error) {
	if id := u.Subscription.StripeCustomerID; id != "" {
		return id, nil
	}
	id, err := s.Gateway.CreateCustomer(ctx, u.Email, u.DisplayName, u.ID)
	if err != nil {
		return "", apperr.Internal("failed to start checkout", err)
	}
	if err := s.Users.UpdateFields(ctx, u.ID, map[string]any{"subscription.stripeCustomerId": id}); err != nil {
		return "", apperr.Internal("failed to start checkout", err)
	}
	u.Subscription.StripeCustomerID = id
	return id, nil
}

func (s *DefaultSubscriptionService) CreateCheckout(ctx context.Context, userID, product string) (string, error) {
	product = strings.ToLower(strings.TrimSpace(product))
	price, err := s.priceFor(product)
	if err != nil {
		return "", err
	}
	u, err := s.loadUser(ctx, userID)
	if err != nil {
		return "", err
	}

	now := s.now()
	switch product {
	case models.ProductPremium:
		if IsPremium(u, now) {
			return "", apperr.Conflict("premium is already active")
		}
	case models.ProductVerification:
		if HasVerificationBadge(u, now) {
			return "", apperr.Conflict("verification badge is already active")
		}
	}

	customerID, err := s.ensureCustomer(ctx, u)
	if err != nil {
		return "", err
	}

	base := strings.TrimRight(s.BaseURL, "/")
	url, err := s.Gateway.CreateCheckoutSession(ctx, CheckoutSessionRequest{
		CustomerID: customerID,
		PriceID:    price,
		UserID:     u.ID,
		Product:    product,
		SuccessURL: base + "/subscription/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:  base + "/subscription/cancelled",
	})
	if err != nil {
		return "", apperr.Internal("failed to start checkout", err)
	}

	utils.GetLogger().Info("checkout session created", zap.String("userID", u.ID), zap.String("product", product))
	return url, nil
}

func (s *DefaultSubscriptionService) CreatePortal(ctx context.Context, userID string) (string, error) {
	u, err := s.loadUser(ctx, userID)
	if err != nil {
		return "", err
	}
	if u.Subscription.StripeCustomerID == "" {
		return "", apperr.Invalid("no billing account yet")
	}
	url, err := s.Gateway.CreatePortalSession(ctx, u.Subscription.StripeCustomerID, strings.TrimRight(s.BaseURL, "/")+"/subscription")
	if err != nil {
		return "", apperr.Internal("failed to open billing portal", err)
	}
	return url, nil
}

func (s *DefaultSubscriptionService) Cancel(ctx context.Context, userID string) error {
	u, err := s.loadUser(ctx, userID)
	if err != nil {
		return err
	}
	sub := u.Subscription
	if sub.StripeSubscriptionID == "" || !IsPremium(u, s.now()) {
		return apperr.Invalid("no active premium subscription")
	}
	if sub.CancelAtPeriodEnd {
		return nil
	}
	if err := s.Gateway.CancelAtPeriodEnd(ctx, sub.StripeSubscriptionID); err != nil {
		return apperr.Internal("failed to cancel subscription", err)
	}
	// The webhook confirms this too; set it now so the member sees it immediately.
	if err := s.Users.UpdateFields(ctx, u.ID, map[string]any{"subscription.cancelAtPeriodEnd": true}); err != nil {
		return apperr.Internal("failed to cancel subscription", err)
	}
	return nil
}

func (s *DefaultSubscriptionService) Status(ctx context.Context, userID string) (*models.SubscriptionStatusResponse, error) {
	u, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	premium := IsPremium(u, now)

	resp := &models.SubscriptionStatusResponse{
		Plan:              models.PlanFree,
		Status:            u.Subscription.Status,
		Premium:           premium,
		Verified:          HasVerificationBadge(u, now),
		CurrentPeriodEnd:  u.Subscription.CurrentPeriodEnd,
		CancelAtPeriodEnd: u.Subscription.CancelAtPeriodEnd,
		ProposalsLimit:    Unlimited,
	}
	if premium {
		resp.Plan = models.PlanPremium
	} else {
		resp.ProposalsLimit = FreeSwapProposalsPerMonth()
	}

	used, err := s.Swaps.CountByProposerSince(ctx, u.ID, MonthStart(now))
	if err != nil {
		return nil, apperr.Internal("failed to load subscription", err)
	}
	resp.ProposalsUsed = int(used)
	return resp, nil
}

func (s *DefaultSubscriptionService) CancelAll(ctx context.Context, u *models.User) error {
	sub := u.Subscription
	live := map[string]string{
		sub.StripeSubscriptionID:       sub.Status,
		sub.VerificationSubscriptionID: sub.VerificationStatus,
	}
	for id, status := range live {
		if id == "" || status == StatusCanceled {
			continue
		}
		if err := s.Gateway.CancelNow(ctx, id); err != nil {
			return apperr.Internal("failed to cancel billing", err)
		}
	}
	return nil
}
