// File: utils/cache.go
package utils

import (
	"context"
	"log"
	"time"

	"servswap/config"

	"github.com/go-redis/redis/v8"
)

var (
	// CacheClient is the generic cache client (explore feed, listings).
	CacheClient *redis.Client
	// AuthCacheClient is the dedicated client for authorization caching.
	AuthCacheClient *redis.Client
	// AssistantCacheClient holds assistant conversation context.
	AssistantCacheClient *redis.Client
)

func newRedisClient(db int, name string) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       db,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect to Redis (%s): %v", name, err)
	}
	return client
}

// InitRedis connects every redis client used by the application.
func InitRedis() {
	GetCacheClient()
	GetAuthCacheClient()
	GetAssistantCacheClient()
}

// GetCacheClient returns the generic cache client.
func GetCacheClient() *redis.Client {
	if CacheClient == nil {
		CacheClient = newRedisClient(config.AppConfig.RedisCacheDB, "Cache")
	}
	return CacheClient
}

// GetAuthCacheClient returns the Redis client for authorization caching.
func GetAuthCacheClient() *redis.Client {
	if AuthCacheClient == nil {
		AuthCacheClient = newRedisClient(config.AppConfig.RedisAuthDB, "Auth Cache")
	}
	return AuthCacheClient
}

// GetAssistantCacheClient returns the Redis client for assistant context.
func GetAssistantCacheClient() *redis.Client {
	if AssistantCacheClient == nil {
		AssistantCacheClient = newRedisClient(config.AppConfig.RedisAssistantDB, "Assistant Cache")
	}
	return AssistantCacheClient
}

// RedisClients returns the initialised clients, used by the health monitor.
func RedisClients() []*redis.Client {
	var clients []*redis.Client
	for _, c := range []*redis.Client{CacheClient, AuthCacheClient, AssistantCacheClient} {
		if c != nil {
			clients = append(clients, c)
		}
	}
	return clients
}
