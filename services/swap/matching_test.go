package swap

import (
	"context"
	"testing"
	"time"

	"servswap/database/repository/memrepo"
	"servswap/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreMatches(t *testing.T) {
	me := &models.User{ID: "me", SkillsWanted: []string{"design", "logo", "music"}, SkillsOffered: []string{"tutoring"}}
	t0 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	owners := map[string]*models.User{
		"ann":  {ID: "ann", Rating: 4.0, SkillsWanted: []string{"tutoring"}},
		"ben":  {ID: "ben", Rating: 5.0},
		"cat":  {ID: "cat", Suspended: true},
		"me":   me,
		"dora": {ID: "dora", Rating: 3.0},
	}
	candidates := []models.Service{
		{ID: "ben-logo", OwnerID: "ben", Category: "design", Tags: []string{"logo"}, Active: true, CreatedAt: t0},
		{ID: "ann-design", OwnerID: "ann", Category: "design", Active: true, CreatedAt: t0},
		{ID: "cat-design", OwnerID: "cat", Category: "design", Active: true},
		{ID: "my-music", OwnerID: "me", Category: "music", Active: true},
		{ID: "dora-music", OwnerID: "dora", Category: "music", Active: true, CreatedAt: t0},
		{ID: "dora-new", OwnerID: "dora", Category: "music", Active: true, CreatedAt: t0.Add(time.Hour)},
		{ID: "dora-cooking", OwnerID: "dora", Category: "cooking", Active: true},
		{ID: "ghost", OwnerID: "nobody", Category: "design", Active: true},
		{ID: "ben-off", OwnerID: "ben", Category: "design", Active: false},
	}

	matches := ScoreMatches(me, candidates, owners)

	ids := make([]string, len(matches))
	for i, m := range matches {
		ids[i] = m.Service.ID
	}
	// ann: 1 overlap + 2 mutual; ben: design+logo; dora ties broken by recency.
	assert.Equal(t, []string{"ann-design", "ben-logo", "dora-new", "dora-music"}, ids)
	assert.Equal(t, 3, matches[0].Score)
	assert.True(t, matches[0].Mutual)
	assert.Equal(t, 2, matches[1].Score)
	assert.False(t, matches[1].Mutual)
	assert.Equal(t, "ben", matches[1].Owner.ID)
}

func TestScoreMatchesRatingBreaksTies(t *testing.T) {
	me := &models.User{ID: "me", SkillsWanted: []string{"music"}}
	owners := map[string]*models.User{
		"low":  {ID: "low", Rating: 2},
		"high": {ID: "high", Rating: 4.5},
	}
	matches := ScoreMatches(me, []models.Service{
		{ID: "a", OwnerID: "low", Category: "music", Active: true},
		{ID: "b", OwnerID: "high", Category: "music", Active: true},
	}, owners)
	require.Len(t, matches, 2)
	assert.Equal(t, "b", matches[0].Service.ID)
}

func TestMatchesFreeCap(t *testing.T) {
	var seed []models.Service
	for _, id := range []string{"s1", "s2", "s3", "s4", "s5"} {
		seed = append(seed, models.Service{ID: id, OwnerID: "bob", Category: "design", Active: true})
	}
	users := memrepo.NewUsers(
		models.User{ID: "alice", SkillsWanted: []string{"design"}},
		models.User{ID: "bob"},
		models.User{ID: "nobody-wants"},
	)
	svc := &DefaultSwapService{
		Swaps:    memrepo.NewSwaps(),
		Services: memrepo.NewServices(seed...),
		Users:    users,
		Now:      func() time.Time { return fixedNow },
	}
	ctx := context.Background()

	matches, err := svc.Matches(ctx, "alice", 20)
	require.NoError(t, err)
	assert.Len(t, matches, 3)

	require.NoError(t, users.UpdateFields(ctx, "alice", map[string]any{
		"subscription.plan":   models.PlanPremium,
		"subscription.status": "active",
	}))
	matches, err = svc.Matches(ctx, "alice", 20)
	require.NoError(t, err)
	assert.Len(t, matches, 5)

	matches, err = svc.Matches(ctx, "nobody-wants", 0)
	require.NoError(t, err)
	assert.Empty(t, matches)
}
