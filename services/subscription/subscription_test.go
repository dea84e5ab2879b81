package subscription

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"servswap/database/repository/memrepo"
	"servswap/models"
	"servswap/services/apperr"
	"servswap/services/tasks"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76/webhook"
)

type fakeGateway struct {
	customers   int
	sessions    []CheckoutSessionRequest
	cancelledAt []string
	cancelled   []string
}

func (g *fakeGateway) CreateCustomer(_ context.Context, _, _, userID string) (string, error) {
	g.customers++
	return "cus_" + userID, nil
}

func (g *fakeGateway) CreateCheckoutSession(_ context.Context, req CheckoutSessionRequest) (string, error) {
	g.sessions = append(g.sessions, req)
	return "https://checkout.test/" + req.Product, nil
}

func (g *fakeGateway) CreatePortalSession(_ context.Context, customerID, _ string) (string, error) {
	return "https://portal.test/" + customerID, nil
}

func (g *fakeGateway) CancelAtPeriodEnd(_ context.Context, id string) error {
	g.cancelledAt = append(g.cancelledAt, id)
	return nil
}

func (g *fakeGateway) CancelNow(_ context.Context, id string) error {
	g.cancelled = append(g.cancelled, id)
	return nil
}

type fakeQueue struct {
	mu    sync.Mutex
	tasks []*asynq.Task
}

func (q *fakeQueue) Enqueue(task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.tasks = append(q.tasks, task)
	return &asynq.TaskInfo{}, nil
}

const testSecret = "whsec_test"

func newService(users ...models.User) (*DefaultSubscriptionService, *fakeGateway, *fakeQueue, *memrepo.Notifier) {
	gw, q, n := &fakeGateway{}, &fakeQueue{}, &memrepo.Notifier{}
	return &DefaultSubscriptionService{
		Users:               memrepo.NewUsers(users...),
		Swaps:               memrepo.NewSwaps(),
		Gateway:             gw,
		Notifier:            n,
		Queue:               q,
		WebhookSecret:       testSecret,
		PremiumPriceID:      "price_premium",
		VerificationPriceID: "price_badge",
		BaseURL:             "https://app.test/",
	}, gw, q, n
}

func TestCreateCheckout(t *testing.T) {
	svc, gw, _, _ := newService(models.User{ID: "u1", Email: "u1@test"})
	ctx := context.Background()

	_, err := svc.CreateCheckout(ctx, "u1", "gold")
	assert.True(t, apperr.Is(err, apperr.KindInvalid))

	url, err := svc.CreateCheckout(ctx, "u1", " Premium ")
	require.NoError(t, err)
	assert.Equal(t, "https://checkout.test/premium", url)
	require.Len(t, gw.sessions, 1)
	assert.Equal(t, "price_premium", gw.sessions[0].PriceID)
	assert.Equal(t, "cus_u1", gw.sessions[0].CustomerID)
	assert.Equal(t, "https://app.test/subscription/cancelled", gw.sessions[0].CancelURL)

	_, err = svc.CreateCheckout(ctx, "u1", "verification")
	require.NoError(t, err)
	assert.Equal(t, 1, gw.customers, "the customer is reused")

	u, err := svc.Users.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "cus_u1", u.Subscription.StripeCustomerID)
}

func TestCreateCheckoutWhenAlreadyPremium(t *testing.T) {
	svc, _, _, _ := newService(models.User{ID: "u1", Subscription: models.Subscription{Plan: models.PlanPremium, Status: StatusActive}})
	_, err := svc.CreateCheckout(context.Background(), "u1", models.ProductPremium)
	assert.True(t, apperr.Is(err, apperr.KindConflict))
}

func TestCancelAtPeriodEnd(t *testing.T) {
	svc, gw, _, _ := newService(
		models.User{ID: "free"},
		models.User{ID: "paid", Subscription: models.Subscription{Plan: models.PlanPremium, Status: StatusActive, StripeSubscriptionID: "sub_1"}},
	)
	ctx := context.Background()

	assert.True(t, apperr.Is(svc.Cancel(ctx, "free"), apperr.KindInvalid))

	require.NoError(t, svc.Cancel(ctx, "paid"))
	require.NoError(t, svc.Cancel(ctx, "paid"))
	assert.Equal(t, []string{"sub_1"}, gw.cancelledAt)

	st, err := svc.Status(ctx, "paid")
	require.NoError(t, err)
	assert.True(t, st.Premium)
	assert.True(t, st.CancelAtPeriodEnd)
	assert.Equal(t, Unlimited, st.ProposalsLimit)
}

func TestStatusForFreeMember(t *testing.T) {
	svc, _, _, _ := newService(models.User{ID: "u1"})
	ctx := context.Background()
	require.NoError(t, svc.Swaps.Create(ctx, &models.Swap{ID: "s1", ProposerID: "u1", Status: models.SwapPending}))

	st, err := svc.Status(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, models.PlanFree, st.Plan)
	assert.False(t, st.Premium)
	assert.Equal(t, 1, st.ProposalsUsed)
	assert.Equal(t, DefaultFreeSwapProposalsPerMonth, st.ProposalsLimit)
}

func TestCancelAllSkipsEndedSubscriptions(t *testing.T) {
	svc, gw, _, _ := newService()
	err := svc.CancelAll(context.Background(), &models.User{Subscription: models.Subscription{
		StripeSubscriptionID: "sub_1", Status: StatusActive,
		VerificationSubscriptionID: "sub_v", VerificationStatus: StatusCanceled,
	}})
	require.NoError(t, err)
	assert.Equal(t, []string{"sub_1"}, gw.cancelled)
}

func signedEvent(t *testing.T, eventType, object string) ([]byte, string) {
	t.Helper()
	payload := []byte(fmt.Sprintf(`{"id":"evt_1","object":"event","type":%q,"data":{"object":%s}}`, eventType, object))
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    testSecret,
		Timestamp: time.Now(),
	})
	return signed.Payload, signed.Header
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	svc, _, _, _ := newService()
	payload, _ := signedEvent(t, "customer.subscription.updated", `{"id":"sub_1"}`)
	err := svc.HandleWebhook(context.Background(), payload, "t=1,v1=deadbeef")
	assert.True(t, apperr.Is(err, apperr.KindInvalid))
}

func TestWebhookActivatesPremium(t *testing.T) {
	svc, _, q, n := newService(models.User{ID: "u1", Subscription: models.Subscription{Plan: models.PlanFree, StripeCustomerID: "cus_1"}})
	ctx := context.Background()
	end := time.Now().Add(30 * 24 * time.Hour).Truncate(time.Second)

	obj := fmt.Sprintf(`{"id":"sub_1","object":"subscription","customer":"cus_1","status":"active",
		"current_period_end":%d,"cancel_at_period_end":false,
		"items":{"object":"list","data":[{"id":"si_1","price":{"id":"price_premium"}}]}}`, end.Unix())
	payload, header := signedEvent(t, "customer.subscription.updated", obj)
	require.NoError(t, svc.HandleWebhook(ctx, payload, header))

	u, err := svc.Users.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, models.PlanPremium, u.Subscription.Plan)
	assert.Equal(t, "sub_1", u.Subscription.StripeSubscriptionID)
	assert.True(t, IsPremium(u, time.Now()))
	assert.Equal(t, []models.NotificationType{models.NotifySubscriptionUpdated}, n.To("u1"))

	require.Len(t, q.tasks, 1)
	assert.Equal(t, tasks.TypeSendReminder, q.tasks[0].Type())
	var p models.ReminderPayload
	require.NoError(t, json.Unmarshal(q.tasks[0].Payload(), &p))
	assert.Equal(t, models.NotifySubscriptionRenewal, p.Type)
	assert.True(t, RenewalReminderDue(u, p, time.Now()))
}

func TestWebhookVerificationBadge(t *testing.T) {
	svc, _, q, n := newService(models.User{ID: "u1"})
	ctx := context.Background()

	obj := `{"id":"sub_v","object":"subscription","status":"active","metadata":{"userId":"u1"},
		"items":{"object":"list","data":[{"id":"si_1","price":{"id":"price_badge"}}]}}`
	payload, header := signedEvent(t, "customer.subscription.created", obj)
	require.NoError(t, svc.HandleWebhook(ctx, payload, header))

	u, err := svc.Users.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, u.Verified)
	assert.Equal(t, []models.NotificationType{models.NotifyVerificationGranted}, n.To("u1"))
	assert.Empty(t, q.tasks)
}

func TestWebhookIgnoresUnknownEvents(t *testing.T) {
	svc, _, _, n := newService()
	payload, header := signedEvent(t, "charge.refunded", `{"id":"ch_1"}`)
	require.NoError(t, svc.HandleWebhook(context.Background(), payload, header))
	assert.Empty(t, n.All())
}

func TestWebhookSubscriptionDeletedEndsPremium(t *testing.T) {
	end := time.Now().Add(10 * 24 * time.Hour)
	svc, _, q, n := newService(models.User{ID: "u1", Subscription: models.Subscription{
		Plan: models.PlanPremium, Status: StatusActive, StripeCustomerID: "cus_1",
		StripeSubscriptionID: "sub_1", CurrentPeriodEnd: end,
	}})
	ctx := context.Background()

	obj := `{"id":"sub_1","object":"subscription","customer":"cus_1","status":"canceled",
		"items":{"object":"list","data":[{"id":"si_1","price":{"id":"price_premium"}}]}}`
	payload, header := signedEvent(t, "customer.subscription.deleted", obj)
	require.NoError(t, svc.HandleWebhook(ctx, payload, header))

	u, err := svc.Users.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, models.PlanFree, u.Subscription.Plan)
	assert.Equal(t, StatusCanceled, u.Subscription.Status)
	assert.False(t, IsPremium(u, time.Now()))
	assert.Empty(t, q.tasks, "no renewal reminder for an ended plan")

	sent := n.All()
	require.Len(t, sent, 1)
	assert.Equal(t, "Your premium plan has ended.", sent[0].Body)
}

func TestWebhookBadgeDeletionClearsVerified(t *testing.T) {
	svc, _, _, n := newService(models.User{ID: "u1", Verified: true, Subscription: models.Subscription{
		Plan: models.PlanFree, StripeCustomerID: "cus_1",
		VerificationSubscriptionID: "sub_v", VerificationStatus: StatusActive, VerificationAddon: true,
	}})
	ctx := context.Background()

	obj := `{"id":"sub_v","object":"subscription","customer":"cus_1","status":"canceled",
		"items":{"object":"list","data":[{"id":"si_1","price":{"id":"price_badge"}}]}}`
	payload, header := signedEvent(t, "customer.subscription.deleted", obj)
	require.NoError(t, svc.HandleWebhook(ctx, payload, header))

	u, err := svc.Users.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, u.Verified)
	assert.False(t, u.Subscription.VerificationAddon)
	assert.Equal(t, models.PlanFree, u.Subscription.Plan)

	sent := n.All()
	require.Len(t, sent, 1)
	assert.Equal(t, models.NotifySubscriptionUpdated, sent[0].Type)
	assert.Equal(t, "Your verification badge has been removed.", sent[0].Body)
}

func TestWebhookPaymentFailedKeepsGraceAccess(t *testing.T) {
	lapsed := time.Now().Add(-48 * time.Hour).Truncate(time.Second)
	svc, _, q, n := newService(models.User{ID: "u1", Subscription: models.Subscription{
		Plan: models.PlanPremium, Status: StatusActive, StripeCustomerID: "cus_1", StripeSubscriptionID: "sub_1",
	}})
	ctx := context.Background()

	inv := `{"id":"in_1","object":"invoice","customer":"cus_1","subscription":"sub_1"}`
	payload, header := signedEvent(t, "invoice.payment_failed", inv)
	require.NoError(t, svc.HandleWebhook(ctx, payload, header))

	sent := n.All()
	require.Len(t, sent, 1)
	assert.Equal(t, "Payment failed", sent[0].Title)
	assert.Equal(t, "payment_failed", sent[0].Data["reason"])
	assert.Contains(t, sent[0].Body, fmt.Sprintf("%d days", GraceDays()))

	obj := fmt.Sprintf(`{"id":"sub_1","object":"subscription","customer":"cus_1","status":"past_due",
		"current_period_end":%d,
		"items":{"object":"list","data":[{"id":"si_1","price":{"id":"price_premium"}}]}}`, lapsed.Unix())
	payload, header = signedEvent(t, "customer.subscription.updated", obj)
	require.NoError(t, svc.HandleWebhook(ctx, payload, header))

	u, err := svc.Users.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, StatusPastDue, u.Subscription.Status)
	assert.True(t, IsPremium(u, time.Now()), "past_due keeps premium inside the grace window")
	assert.False(t, IsPremium(u, lapsed.AddDate(0, 0, GraceDays()).Add(time.Second)))
	assert.Empty(t, q.tasks, "a lapsed period has no future renewal reminder")
}

func TestWebhookPaymentFailedForUnknownCustomer(t *testing.T) {
	svc, _, _, n := newService()
	payload, header := signedEvent(t, "invoice.payment_failed", `{"id":"in_1","object":"invoice","customer":"cus_missing"}`)
	require.NoError(t, svc.HandleWebhook(context.Background(), payload, header))
	assert.Empty(t, n.All())
}
