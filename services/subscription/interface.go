package subscription

import (
	"context"
	"time"

	swapRepo "servswap/database/repository/swap"
	userRepo "servswap/database/repository/user"
	"servswap/models"
	"servswap/services/notification"
	"servswap/services/tasks"
)

type SubscriptionService interface {
	// CreateCheckout returns the Stripe Checkout URL for buying product.
	CreateCheckout(ctx context.Context, userID, product string) (string, error)
	CreatePortal(ctx context.Context, userID string) (string, error)
	// Cancel stops the premium plan at the end of the current period.
	Cancel(ctx context.Context, userID string) error
	Status(ctx context.Context, userID string) (*models.SubscriptionStatusResponse, error)
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
	// CancelAll ends every paid subscription of u immediately. Used on account deletion.
	CancelAll(ctx context.Context, u *models.User) error
}

// Gateway is the billing provider surface; StripeGateway is the real one.
type Gateway interface {
	CreateCustomer(ctx context.Context, email, name, userID string) (string, error)
	CreateCheckoutSession(ctx context.Context, req CheckoutSessionRequest) (string, error)
	CreatePortalSession(ctx context.Context, customerID, returnURL string) (string, error)
	CancelAtPeriodEnd(ctx context.Context, subscriptionID string) error
	CancelNow(ctx context.Context, subscriptionID string) error
}

type CheckoutSessionRequest struct {
	CustomerID string
	PriceID    string
	UserID     string
	Product    string
	SuccessURL string
	CancelURL  string
}

// DefaultSubscriptionService is the production implementation.
type DefaultSubscriptionService struct {
	Users    userRepo.UserRepository
	Swaps    swapRepo.SwapRepository
	Gateway  Gateway
	Notifier notification.Notifier
	// Queue schedules renewal reminders; nil disables them.
	Queue tasks.Enqueuer

	WebhookSecret       string
	PremiumPriceID      string
	VerificationPriceID string
	BaseURL             string

	Now func() time.Time
}

func (s *DefaultSubscriptionService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
