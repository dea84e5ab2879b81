package feed

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
)

type memCache struct {
	mu          sync.Mutex
	pages       map[int][]models.Post
	hits        int
	invalidated int
}

func newMemCache() *memCache { return &memCache{pages: map[int][]models.Post{}} }

func (c *memCache) Get(_ context.Context, limit int) ([]models.Post, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.pages[limit]
	if ok {
		c.hits++
	}
	return p, ok, nil
}

func (c *memCache) Set(_ context.Context, limit int, posts []models.Post, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pages[limit] = posts
	return nil
}

func (c *memCache) Invalidate(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pages = map[int][]models.Post{}
	c.invalidated++
	return nil
}

type fakeQueue struct {
	tasks []*asynq.Task
}

func (q *fakeQueue) Enqueue(task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	q.tasks = append(q.tasks, task)
	return &asynq.TaskInfo{}, nil
}

type fixture struct {
	svc      *DefaultFeedService
	cache    *memCache
	queue    *fakeQueue
	notifier *memrepo.Notifier
}

func newFixture() *fixture {
	f := &fixture{cache: newMemCache(), queue: &fakeQueue{}, notifier: &memrepo.Notifier{}}
	f.svc = &DefaultFeedService{
		Posts: memrepo.NewFeed(),
		Users: memrepo.NewUsers(
			models.User{ID: "ann", DisplayName: "Ann"},
			models.User{ID: "ben", DisplayName: "Ben"},
			models.User{ID: "cal", DisplayName: "Cal"},
			models.User{ID: "sus", Suspended: true},
		),
		Services: memrepo.NewServices(
			models.Service{ID: "ann-svc", OwnerID: "ann", Title: "Bread baking", Active: true},
		),
		Connections: memrepo.NewConnections(
			models.Connection{ID: "c1", RequesterID: "ann", AddresseeID: "ben", Status: models.ConnectionAccepted},
		),
		Notifier: f.notifier,
		Queue:    f.queue,
		Cache:    f.cache,
	}
	return f
}

func (f *fixture) post(t *testing.T, author, text string) *models.PostView {
	t.Helper()
	p, err := f.svc.CreatePost(context.Background(), author, models.CreatePostRequest{Text: text})
	require.NoError(t, err)
	return p
}

func TestCreatePost(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	p, err := f.svc.CreatePost(ctx, "ann", models.CreatePostRequest{
		Text: "  fresh loaves  ", ImageURL: "https://img.test/a.jpg", ServiceID: "ann-svc",
	})
	require.NoError(t, err)
	assert.Equal(t, "fresh loaves", p.Text)
	assert.Equal(t, "Ann", p.Author.DisplayName)
	assert.Equal(t, "Bread baking", p.ServiceName)
	assert.Equal(t, 1, f.cache.invalidated)

	require.Len(t, f.queue.tasks, 1)
	assert.Equal(t, tasks.TypeFanOut, f.queue.tasks[0].Type())
	var payload models.FanOutPayload
	require.NoError(t, json.Unmarshal(f.queue.tasks[0].Payload(), &payload))
	assert.Equal(t, "ann", payload.AuthorID)
	assert.Equal(t, p.ID, payload.Data["postId"])
}

func TestCreatePostRejections(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	cases := []struct {
		name   string
		author string
		req    models.CreatePostRequest
		kind   apperr.Kind
	}{
		{"blank", "ann", models.CreatePostRequest{Text: "   "}, apperr.KindInvalid},
		{"bad image url", "ann", models.CreatePostRequest{Text: "hi", ImageURL: "ftp://x/y"}, apperr.KindInvalid},
		{"someone else's service", "ben", models.CreatePostRequest{Text: "hi", ServiceID: "ann-svc"}, apperr.KindForbidden},
		{"unknown service", "ann", models.CreatePostRequest{Text: "hi", ServiceID: "nope"}, apperr.KindNotFound},
		{"suspended", "sus", models.CreatePostRequest{Text: "hi"}, apperr.KindForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.CreatePost(ctx, tc.author, tc.req)
			assert.True(t, apperr.Is(err, tc.kind), "got %v", err)
		})
	}
	assert.Empty(t, f.queue.tasks)
}

func TestLikeIsIdempotent(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	p := f.post(t, "ann", "hello")

	v, err := f.svc.Like(ctx, "ben", p.ID)
	require.NoError(t, err)
	assert.True(t, v.LikedByMe)
	assert.Equal(t, 1, v.LikeCount)

	v, err = f.svc.Like(ctx, "ben", p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, v.LikeCount)
	assert.Equal(t, []models.NotificationType{models.NotifyPostLiked}, f.notifier.To("ann"))

	_, err = f.svc.Like(ctx, "ann", p.ID)
	require.NoError(t, err)
	assert.Len(t, f.notifier.To("ann"), 1, "liking your own post does not notify")

	v, err = f.svc.Unlike(ctx, "ben", p.ID)
	require.NoError(t, err)
	assert.False(t, v.LikedByMe)
	assert.Equal(t, 1, v.LikeCount)

	_, err = f.svc.Like(ctx, "ben", "missing")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestCommentsAndDelete(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	p := f.post(t, "ann", "hello")

	c, err := f.svc.Comment(ctx, "ben", p.ID, " nice ")
	require.NoError(t, err)
	assert.Equal(t, "nice", c.Text)
	assert.Contains(t, f.notifier.To("ann"), models.NotifyPostCommented)

	comments, err := f.svc.ListComments(ctx, p.ID, models.Page{})
	require.NoError(t, err)
	assert.Len(t, comments, 1)

	assert.True(t, apperr.Is(f.svc.DeletePost(ctx, "ben", p.ID), apperr.KindForbidden))
	require.NoError(t, f.svc.DeletePost(ctx, "ann", p.ID))
	_, err = f.svc.ListComments(ctx, p.ID, models.Page{})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestHomeFeedShowsConnections(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.post(t, "ann", "from ann")
	f.post(t, "ben", "from ben")
	f.post(t, "cal", "from cal")

	page, err := f.svc.HomeFeed(ctx, "ann", "", 10)
	require.NoError(t, err)
	var texts []string
	for _, p := range page.Posts {
		texts = append(texts, p.Text)
	}
	assert.Equal(t, []string{"from ben", "from ann"}, texts)
	assert.Empty(t, page.NextBefore)

	_, err = f.svc.HomeFeed(ctx, "ann", "not-a-time", 10)
	assert.True(t, apperr.Is(err, apperr.KindInvalid))
}

func TestExploreFeedPagingAndCache(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		f.post(t, "cal", fmt.Sprintf("post %d", i))
	}

	first, err := f.svc.ExploreFeed(ctx, "ann", "", 2)
	require.NoError(t, err)
	require.Len(t, first.Posts, 2)
	assert.Equal(t, "post 4", first.Posts[0].Text)
	require.NotEmpty(t, first.NextBefore)

	again, err := f.svc.ExploreFeed(ctx, "ann", "", 2)
	require.NoError(t, err)
	assert.Equal(t, 1, f.cache.hits)
	assert.Equal(t, first.Posts[0].ID, again.Posts[0].ID)

	second, err := f.svc.ExploreFeed(ctx, "ann", first.NextBefore, 2)
	require.NoError(t, err)
	require.Len(t, second.Posts, 2)
	assert.Equal(t, "post 2", second.Posts[0].Text)

	last, err := f.svc.ExploreFeed(ctx, "ann", second.NextBefore, 2)
	require.NoError(t, err)
	require.Len(t, last.Posts, 1)
	assert.Empty(t, last.NextBefore)

	f.post(t, "ben", "newest")
	fresh, err := f.svc.ExploreFeed(ctx, "ann", "", 2)
	require.NoError(t, err)
	assert.Equal(t, "newest", fresh.Posts[0].Text)
}

func TestHomeFeedPagesPostsSharingATimestamp(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	same := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	f.svc.Posts.(*memrepo.Feed).SetClock(func() time.Time { return same })

	want := map[string]bool{}
	for i := 0; i < 5; i++ {
		want[f.post(t, "ann", fmt.Sprintf("post %d", i)).ID] = true
	}

	seen := map[string]bool{}
	before, pages := "", 0
	for {
		page, err := f.svc.HomeFeed(ctx, "ann", before, 2)
		require.NoError(t, err)
		pages++
		for _, p := range page.Posts {
			assert.False(t, seen[p.ID], "post %s served twice", p.ID)
			seen[p.ID] = true
		}
		if page.NextBefore == "" {
			break
		}
		before = page.NextBefore
		require.Less(t, pages, 10)
	}
	assert.Equal(t, want, seen)
	assert.Equal(t, 3, pages)
}
