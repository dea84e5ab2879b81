package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"servswap/models"

	"github.com/go-redis/redis/v8"
)

// ExploreCache keeps recent explore pages. Cached posts are requester-independent.
type ExploreCache interface {
	Get(ctx context.Context, limit int) ([]models.Post, bool, error)
	Set(ctx context.Context, limit int, posts []models.Post, ttl time.Duration) error
	Invalidate(ctx context.Context) error
}

type RedisExploreCache struct {
	client *redis.Client
}

func NewRedisExploreCache(client *redis.Client) ExploreCache {
	return &RedisExploreCache{client: client}
}

const exploreKeyPrefix = "feed:explore:"

// cachedPost keeps likedBy, which the post's JSON form hides from clients.
type cachedPost struct {
	models.Post
	LikedBy []string `json:"likedBy"`
}

func exploreKey(limit int) string {
	return fmt.Sprintf("%s%d", exploreKeyPrefix, limit)
}

func (c *RedisExploreCache) Get(ctx context.Context, limit int) ([]models.Post, bool, error) {
	val, err := c.client.Get(ctx, exploreKey(limit)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var cached []cachedPost
	if err := json.Unmarshal(val, &cached); err != nil {
		return nil, false, err
	}
	posts := make([]models.Post, 0, len(cached))
	for _, cp := range cached {
		p := cp.Post
		p.LikedBy = cp.LikedBy
		posts = append(posts, p)
	}
	return posts, true, nil
}

func (c *RedisExploreCache) Set(ctx context.Context, limit int, posts []models.Post, ttl time.Duration) error {
	cached := make([]cachedPost, 0, len(posts))
	for _, p := range posts {
		cached = append(cached, cachedPost{Post: p, LikedBy: p.LikedBy})
	}
	data, err := json.Marshal(cached)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, exploreKey(limit), data, ttl).Err()
}

// Invalidate drops every cached explore page.
func (c *RedisExploreCache) Invalidate(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, exploreKeyPrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}
