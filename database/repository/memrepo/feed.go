package memrepo

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"servswap/database"
	feedRepo "servswap/database/repository/feed"
	"servswap/models"
)

type Feed struct {
	mu       sync.Mutex
	posts    map[string]models.Post
	comments []models.Comment
	// clock lets tests create posts with strictly increasing timestamps.
	clock func() time.Time
}

var _ feedRepo.FeedRepository = (*Feed)(nil)

func NewFeed() *Feed {
	var tick time.Duration
	base := time.Now()
	return &Feed{
		posts: map[string]models.Post{},
		clock: func() time.Time {
			tick += time.Millisecond
			return base.Add(tick)
		},
	}
}

// SetClock replaces the timestamp source for posts and comments.
func (r *Feed) SetClock(clock func() time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clock = clock
}

func (r *Feed) CreatePost(_ context.Context, post *models.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	post.CreatedAt = r.clock()
	if post.LikedBy == nil {
		post.LikedBy = []string{}
	}
	r.posts[post.ID] = *post
	return nil
}

func (r *Feed) GetPost(_ context.Context, id string) (*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[id]
	if !ok {
		return nil, fmt.Errorf("post %s: %w", id, database.ErrNotFound)
	}
	return &p, nil
}

func (r *Feed) DeletePost(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.posts[id]; !ok {
		return fmt.Errorf("post %s: %w", id, database.ErrNotFound)
	}
	delete(r.posts, id)
	return nil
}

func (r *Feed) list(match func(models.Post) bool, before models.Cursor, limit int) []models.Post {
	r.mu.Lock()
	out := []models.Post{}
	for _, p := range r.posts {
		if match(p) && before.Includes(p.CreatedAt, p.ID) {
			out = append(out, p)
		}
	}
	r.mu.Unlock()
	sort.Slice(out, func(i, j int) bool {
		return models.NewestFirst(out[i].CreatedAt, out[i].ID, out[j].CreatedAt, out[j].ID)
	})
	return paginate(out, 0, limit)
}

func (r *Feed) ListByAuthors(_ context.Context, authorIDs []string, before models.Cursor, limit int) ([]models.Post, error) {
	return r.list(func(p models.Post) bool { return contains(authorIDs, p.AuthorID) }, before, limit), nil
}

func (r *Feed) ListRecent(_ context.Context, before models.Cursor, limit int) ([]models.Post, error) {
	return r.list(func(models.Post) bool { return true }, before, limit), nil
}

func (r *Feed) Like(_ context.Context, postID, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[postID]
	if !ok {
		return false, fmt.Errorf("post %s: %w", postID, database.ErrNotFound)
	}
	if contains(p.LikedBy, userID) {
		return false, nil
	}
	p.LikedBy = append(p.LikedBy, userID)
	p.LikeCount++
	r.posts[postID] = p
	return true, nil
}

func (r *Feed) Unlike(_ context.Context, postID, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[postID]
	if !ok {
		return false, fmt.Errorf("post %s: %w", postID, database.ErrNotFound)
	}
	if !contains(p.LikedBy, userID) {
		return false, nil
	}
	kept := []string{}
	for _, id := range p.LikedBy {
		if id != userID {
			kept = append(kept, id)
		}
	}
	p.LikedBy = kept
	p.LikeCount--
	r.posts[postID] = p
	return true, nil
}

func (r *Feed) CountPosts(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.posts)), nil
}

func (r *Feed) CreateComment(_ context.Context, c *models.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[c.PostID]
	if !ok {
		return fmt.Errorf("post %s: %w", c.PostID, database.ErrNotFound)
	}
	p.CommentCount++
	r.posts[c.PostID] = p
	c.CreatedAt = r.clock()
	r.comments = append(r.comments, *c)
	return nil
}

func (r *Feed) ListComments(_ context.Context, postID string, page models.Page) ([]models.Comment, error) {
	r.mu.Lock()
	out := []models.Comment{}
	for _, c := range r.comments {
		if c.PostID == postID {
			out = append(out, c)
		}
	}
	r.mu.Unlock()
	p := page.Normalize()
	return paginate(out, p.Skip(), p.Limit), nil
}

func (r *Feed) DeleteCommentsForPost(_ context.Context, postID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.comments[:0]
	for _, c := range r.comments {
		if c.PostID != postID {
			kept = append(kept, c)
		}
	}
	r.comments = kept
	return nil
}
