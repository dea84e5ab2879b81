package swap

import (
	"context"
	"errors"
	"testing"
	"time"

	"servswap/database/repository/memrepo"
	"servswap/models"
	"servswap/services/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)

type fixture struct {
	svc      *DefaultSwapService
	swaps    *memrepo.Swaps
	services *memrepo.Services
	users    *memrepo.Users
	notifier *memrepo.Notifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		swaps: memrepo.NewSwaps(),
		services: memrepo.NewServices(
			models.Service{ID: "alice-tutoring", OwnerID: "alice", Title: "Math tutoring", Category: "tutoring", Active: true},
			models.Service{ID: "alice-music", OwnerID: "alice", Title: "Guitar", Category: "music", Active: true},
			models.Service{ID: "bob-design", OwnerID: "bob", Title: "Logo design", Category: "design", Active: true},
			models.Service{ID: "bob-old", OwnerID: "bob", Title: "Old listing", Category: "design", Active: false},
			models.Service{ID: "carol-cooking", OwnerID: "carol", Title: "Cooking", Category: "cooking", Active: true},
		),
		users: memrepo.NewUsers(
			models.User{ID: "alice", DisplayName: "Alice"},
			models.User{ID: "bob", DisplayName: "Bob"},
			models.User{ID: "carol", DisplayName: "Carol", Suspended: true},
		),
		notifier: &memrepo.Notifier{},
	}
	f.svc = &DefaultSwapService{
		Swaps:    f.swaps,
		Services: f.services,
		Users:    f.users,
		Notifier: f.notifier,
		Now:      func() time.Time { return fixedNow },
	}
	return f
}

func (f *fixture) propose(t *testing.T, offered, requested string) *models.Swap {
	t.Helper()
	s, err := f.svc.Propose(context.Background(), "alice", models.ProposeSwapRequest{
		OfferedServiceID: offered, RequestedServiceID: requested, Message: " hi ",
	})
	require.NoError(t, err)
	return s
}

func TestProposeCreatesPendingSwap(t *testing.T) {
	f := newFixture(t)
	s := f.propose(t, "alice-tutoring", "bob-design")

	assert.Equal(t, models.SwapPending, s.Status)
	assert.Equal(t, "alice", s.ProposerID)
	assert.Equal(t, "bob", s.RecipientID)
	assert.Equal(t, "hi", s.Message)
	assert.Equal(t, []models.NotificationType{models.NotifySwapProposed}, f.notifier.To("bob"))
}

func TestProposeRejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := []struct {
		name     string
		proposer string
		req      models.ProposeSwapRequest
		kind     apperr.Kind
	}{
		{"offer someone else's service", "alice", models.ProposeSwapRequest{OfferedServiceID: "bob-design", RequestedServiceID: "bob-design"}, apperr.KindForbidden},
		{"request own service", "alice", models.ProposeSwapRequest{OfferedServiceID: "alice-tutoring", RequestedServiceID: "alice-music"}, apperr.KindInvalid},
		{"inactive requested service", "alice", models.ProposeSwapRequest{OfferedServiceID: "alice-tutoring", RequestedServiceID: "bob-old"}, apperr.KindInvalid},
		{"unknown service", "alice", models.ProposeSwapRequest{OfferedServiceID: "alice-tutoring", RequestedServiceID: "nope"}, apperr.KindNotFound},
		{"suspended recipient", "alice", models.ProposeSwapRequest{OfferedServiceID: "alice-tutoring", RequestedServiceID: "carol-cooking"}, apperr.KindInvalid},
		{"suspended proposer", "carol", models.ProposeSwapRequest{OfferedServiceID: "carol-cooking", RequestedServiceID: "bob-design"}, apperr.KindForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Propose(ctx, tc.proposer, tc.req)
			assert.True(t, apperr.Is(err, tc.kind), "got %v", err)
		})
	}
}

func TestProposeDuplicateOpenPair(t *testing.T) {
	f := newFixture(t)
	f.propose(t, "alice-tutoring", "bob-design")

	_, err := f.svc.Propose(context.Background(), "alice", models.ProposeSwapRequest{
		OfferedServiceID: "alice-tutoring", RequestedServiceID: "bob-design",
	})
	assert.True(t, apperr.Is(err, apperr.KindConflict))
}

func TestFreeProposalAllowance(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Proposals from last month do not count.
	require.NoError(t, f.swaps.Create(ctx, &models.Swap{ID: "old", ProposerID: "alice", Status: models.SwapDeclined,
		CreatedAt: fixedNow.AddDate(0, -1, 0)}))
	for i := 0; i < 3; i++ {
		require.NoError(t, f.swaps.Create(ctx, &models.Swap{ID: string(rune('a' + i)), ProposerID: "alice",
			Status: models.SwapDeclined, CreatedAt: fixedNow.Add(-time.Hour)}))
	}

	_, err := f.svc.Propose(ctx, "alice", models.ProposeSwapRequest{
		OfferedServiceID: "alice-tutoring", RequestedServiceID: "bob-design",
	})
	assert.True(t, apperr.Is(err, apperr.KindLimitReached), "got %v", err)

	require.NoError(t, f.users.UpdateFields(ctx, "alice", map[string]any{
		"subscription.plan":             models.PlanPremium,
		"subscription.status":           "active",
		"subscription.currentPeriodEnd": fixedNow.Add(24 * time.Hour),
	}))
	_, err = f.svc.Propose(ctx, "alice", models.ProposeSwapRequest{
		OfferedServiceID: "alice-tutoring", RequestedServiceID: "bob-design",
	})
	assert.NoError(t, err)
}

func TestAcceptOnlyByRecipient(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.propose(t, "alice-tutoring", "bob-design")

	_, err := f.svc.Accept(ctx, "alice", s.ID)
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	_, err = f.svc.Accept(ctx, "dave", s.ID)
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	accepted, err := f.svc.Accept(ctx, "bob", s.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SwapAccepted, accepted.Status)
	require.NotNil(t, accepted.RespondedAt)
	assert.Contains(t, f.notifier.To("alice"), models.NotifySwapAccepted)

	_, err = f.svc.Decline(ctx, "bob", s.ID)
	assert.True(t, apperr.Is(err, apperr.KindConflict))
}

func TestCancelRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	pending := f.propose(t, "alice-tutoring", "bob-design")
	_, err := f.svc.Cancel(ctx, "bob", pending.ID)
	assert.True(t, apperr.Is(err, apperr.KindForbidden))
	cancelled, err := f.svc.Cancel(ctx, "alice", pending.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SwapCancelled, cancelled.Status)

	_, err = f.svc.Cancel(ctx, "alice", pending.ID)
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	accepted := f.propose(t, "alice-music", "bob-design")
	_, err = f.svc.Accept(ctx, "bob", accepted.ID)
	require.NoError(t, err)
	cancelled, err = f.svc.Cancel(ctx, "bob", accepted.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SwapCancelled, cancelled.Status)
	assert.Contains(t, f.notifier.To("alice"), models.NotifySwapCancelled)
}

func TestCompletionNeedsBothSides(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.propose(t, "alice-tutoring", "bob-design")

	_, err := f.svc.MarkComplete(ctx, "alice", s.ID)
	assert.True(t, apperr.Is(err, apperr.KindConflict), "pending swaps cannot complete")

	_, err = f.svc.Accept(ctx, "bob", s.ID)
	require.NoError(t, err)

	half, err := f.svc.MarkComplete(ctx, "alice", s.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SwapAccepted, half.Status)
	assert.True(t, half.ProposerCompleted)
	assert.False(t, half.RecipientCompleted)

	done, err := f.svc.MarkComplete(ctx, "bob", s.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SwapCompleted, done.Status)
	require.NotNil(t, done.CompletedAt)

	for _, id := range []string{"alice", "bob"} {
		u, err := f.users.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, 1, u.CompletedSwaps)
		assert.Contains(t, f.notifier.To(id), models.NotifySwapCompleted)
	}
}

func completedSwap(t *testing.T, f *fixture) *models.Swap {
	t.Helper()
	ctx := context.Background()
	s := f.propose(t, "alice-tutoring", "bob-design")
	_, err := f.svc.Accept(ctx, "bob", s.ID)
	require.NoError(t, err)
	_, err = f.svc.MarkComplete(ctx, "alice", s.ID)
	require.NoError(t, err)
	done, err := f.svc.MarkComplete(ctx, "bob", s.ID)
	require.NoError(t, err)
	return done
}

func TestReviewOncePerParticipant(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := completedSwap(t, f)

	_, err := f.svc.Review(ctx, "alice", s.ID, models.ReviewRequest{Rating: 6})
	assert.True(t, apperr.Is(err, apperr.KindInvalid))

	r, err := f.svc.Review(ctx, "alice", s.ID, models.ReviewRequest{Rating: 4, Comment: " great "})
	require.NoError(t, err)
	assert.Equal(t, "bob", r.RevieweeID)
	assert.Equal(t, "great", r.Comment)

	_, err = f.svc.Review(ctx, "alice", s.ID, models.ReviewRequest{Rating: 5})
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	_, err = f.svc.Review(ctx, "bob", s.ID, models.ReviewRequest{Rating: 2})
	require.NoError(t, err)

	bob, err := f.users.GetByID(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, 1, bob.RatingCount)
	assert.InDelta(t, 4.0, bob.Rating, 0.001)
	assert.Contains(t, f.notifier.To("bob"), models.NotifyReviewReceived)

	reviews, err := f.svc.ListReviews(ctx, "alice", models.Page{})
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	assert.Equal(t, 2, reviews[0].Rating)
}

func TestReviewCanBeRetriedAfterFailedSave(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := completedSwap(t, f)

	f.swaps.FailNextReview = errors.New("mongo timeout")
	_, err := f.svc.Review(ctx, "alice", s.ID, models.ReviewRequest{Rating: 5})
	assert.True(t, apperr.Is(err, apperr.KindInternal))

	r, err := f.svc.Review(ctx, "alice", s.ID, models.ReviewRequest{Rating: 5})
	require.NoError(t, err)
	assert.Equal(t, "bob", r.RevieweeID)

	got, err := f.swaps.GetByID(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, got.ReviewedBy)

	_, err = f.svc.Review(ctx, "alice", s.ID, models.ReviewRequest{Rating: 1})
	assert.True(t, apperr.Is(err, apperr.KindConflict))
}

func TestReviewRequiresCompletedSwap(t *testing.T) {
	f := newFixture(t)
	s := f.propose(t, "alice-tutoring", "bob-design")
	_, err := f.svc.Review(context.Background(), "alice", s.ID, models.ReviewRequest{Rating: 5})
	assert.True(t, apperr.Is(err, apperr.KindConflict))
}

func TestListSwapsFilters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.propose(t, "alice-tutoring", "bob-design")

	sent, err := f.svc.ListSwaps(ctx, "alice", models.SwapListFilter{Role: "sent"}, models.Page{})
	require.NoError(t, err)
	assert.Len(t, sent, 1)

	received, err := f.svc.ListSwaps(ctx, "alice", models.SwapListFilter{Role: "received"}, models.Page{})
	require.NoError(t, err)
	assert.Empty(t, received)

	_, err = f.svc.ListSwaps(ctx, "alice", models.SwapListFilter{Role: "mine"}, models.Page{})
	assert.True(t, apperr.Is(err, apperr.KindInvalid))
	_, err = f.svc.ListSwaps(ctx, "alice", models.SwapListFilter{Status: "lost"}, models.Page{})
	assert.True(t, apperr.Is(err, apperr.KindInvalid))
}

func TestPurgeUserCancelsOpenSwaps(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.propose(t, "alice-tutoring", "bob-design")

	require.NoError(t, f.svc.PurgeUser(ctx, "bob"))
	got, err := f.swaps.GetByID(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SwapCancelled, got.Status)
}
