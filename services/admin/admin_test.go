package admin

import (
	"context"
	"testing"

	"servswap/database/repository/memrepo"
	"servswap/models"
	"servswap/services/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRevoker struct{ revoked []string }

func (f *fakeRevoker) RevokeAllDevices(_ context.Context, userID string) error {
	f.revoked = append(f.revoked, userID)
	return nil
}

type fakeRemover struct{ removed []string }

func (f *fakeRemover) TakeDown(_ context.Context, serviceID string) error {
	f.removed = append(f.removed, serviceID)
	return nil
}

func newService() (*DefaultAdminService, *fakeRevoker, *fakeRemover) {
	rev, rem := &fakeRevoker{}, &fakeRemover{}
	return &DefaultAdminService{
		Users: memrepo.NewUsers(
			models.User{ID: "u1", Verified: true, Subscription: models.Subscription{Plan: models.PlanPremium, Status: "active"}},
			models.User{ID: "u2", Subscription: models.Subscription{Plan: models.PlanPremium, Status: "canceled"}},
			models.User{ID: "u3"},
		),
		Services: memrepo.NewServices(
			models.Service{ID: "s1", OwnerID: "u3", Active: true},
			models.Service{ID: "s2", OwnerID: "u1", Active: true},
			models.Service{ID: "s3", OwnerID: "u3", Active: false},
		),
		Swaps: memrepo.NewSwaps(
			models.Swap{ID: "w1", Status: models.SwapPending},
			models.Swap{ID: "w2", Status: models.SwapPending},
			models.Swap{ID: "w3", Status: models.SwapCompleted},
		),
		Posts:    memrepo.NewFeed(),
		Sessions: rev,
		Listings: rem,
	}, rev, rem
}

func TestStats(t *testing.T) {
	svc, _, _ := newService()
	ctx := context.Background()
	require.NoError(t, svc.Posts.CreatePost(ctx, &models.Post{ID: "p1", AuthorID: "u1"}))

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, stats.Users)
	assert.EqualValues(t, 1, stats.PremiumUsers)
	assert.EqualValues(t, 1, stats.VerifiedUsers)
	assert.EqualValues(t, 3, stats.Services)
	assert.EqualValues(t, 1, stats.Posts)
	assert.Equal(t, map[string]int64{"pending": 2, "completed": 1}, stats.Swaps)
}

func TestSuspendUser(t *testing.T) {
	svc, rev, _ := newService()
	ctx := context.Background()

	require.NoError(t, svc.SuspendUser(ctx, "u3"))
	u, err := svc.Users.GetByID(ctx, "u3")
	require.NoError(t, err)
	assert.True(t, u.Suspended)
	assert.Equal(t, []string{"u3"}, rev.revoked)

	s1, err := svc.Services.GetByID(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, s1.Active)
	s2, err := svc.Services.GetByID(ctx, "s2")
	require.NoError(t, err)
	assert.True(t, s2.Active)

	require.NoError(t, svc.UnsuspendUser(ctx, "u3"))
	u, err = svc.Users.GetByID(ctx, "u3")
	require.NoError(t, err)
	assert.False(t, u.Suspended)

	s1, err = svc.Services.GetByID(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, s1.Active, "listing hidden by the suspension comes back")
	s3, err := svc.Services.GetByID(ctx, "s3")
	require.NoError(t, err)
	assert.False(t, s3.Active, "listing the member had switched off stays off")

	assert.True(t, apperr.Is(svc.SuspendUser(ctx, "ghost"), apperr.KindNotFound))
	assert.Len(t, rev.revoked, 1)
}

func TestListUsersAndTakeDown(t *testing.T) {
	svc, _, rem := newService()
	ctx := context.Background()

	list, err := svc.ListUsers(ctx, models.Page{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, list.Users, 2)
	assert.EqualValues(t, 3, list.Total)

	require.NoError(t, svc.TakeDownService(ctx, "s1"))
	assert.Equal(t, []string{"s1"}, rem.removed)
}

func TestLegalSections(t *testing.T) {
	svc, _, _ := newService()
	ids := []string{}
	for _, s := range svc.LegalSections() {
		ids = append(ids, s.ID)
		assert.NotEmpty(t, s.Content)
	}
	assert.Equal(t, []string{"tos", "privacy", "conduct", "billing"}, ids)
}
