package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"servswap/models"

	"github.com/go-redis/redis/v8"
)

const (
	contextPrefix = "assistant:ctx:"
	ContextTTL    = 30 * time.Minute
)

type RedisContextStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisContextStore(client *redis.Client, ttl time.Duration) *RedisContextStore {
	return &RedisContextStore{client: client, ttl: ttl}
}

func (s *RedisContextStore) Get(ctx context.Context, userID string) (*models.AssistantContext, error) {
	data, err := s.client.Get(ctx, contextPrefix+userID).Bytes()
	if errors.Is(err, redis.Nil) {
		return &models.AssistantContext{}, nil
	}
	if err != nil {
		return nil, err
	}
	var c models.AssistantContext
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *RedisContextStore) Set(ctx context.Context, userID string, c *models.AssistantContext) error {
	b, err := json.Marshal(c)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, contextPrefix+userID, b, s.ttl).Err()
}
