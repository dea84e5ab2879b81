package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"servswap/models"
	"servswap/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// UserLookup loads the member a session token belongs to.
type UserLookup interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

func unauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": msg})
}

// JWTAuthUserMiddleware validates the bearer session token against the device
// set by DeviceDetailsMiddleware. Token hashes are cached in authCache; a nil
// cache always falls back to the user document.
func JWTAuthUserMiddleware(users UserLookup, authCache *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := utils.GetLogger()
		ctx := c.Request.Context()

		authHeader := c.GetHeader("Authorization")
		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if !strings.HasPrefix(authHeader, "Bearer ") || tokenString == "" {
			unauthorized(c, "Insufficient authorization")
			return
		}

		userID, tokenDeviceID, err := utils.ExtractIDsFromToken(tokenString)
		if err != nil {
			unauthorized(c, "Insufficient authorization")
			return
		}

		// The token is bound to the device it was issued for.
		if c.GetString(CtxDeviceID) != tokenDeviceID {
			unauthorized(c, "Insufficient authorization")
			return
		}

		computedHash := utils.HashToken(tokenString)
		cacheKey := utils.AuthCacheKey(userID, tokenDeviceID)

		if authCache != nil {
			cachedHash, err := authCache.Get(ctx, cacheKey).Result()
			switch {
			case err == nil && cachedHash == computedHash:
				_ = authCache.Expire(ctx, cacheKey, utils.AuthCacheTTL).Err()
				c.Set(CtxUserID, userID)
				c.Next()
				return
			case err == nil:
				unauthorized(c, "Token mismatch")
				return
			case !errors.Is(err, redis.Nil):
				logger.Warn("Auth cache read failed, falling back to database", zap.Error(err))
			}
		}

		usr, err := users.GetByID(ctx, userID)
		if err != nil || usr == nil {
			unauthorized(c, "Authentication error")
			return
		}
		if usr.Suspended {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "account is suspended"})
			return
		}

		var deviceTokenHash string
		for _, d := range usr.Devices {
			if d.DeviceID == tokenDeviceID {
				deviceTokenHash = d.TokenHash
				break
			}
		}
		if deviceTokenHash == "" || deviceTokenHash != computedHash {
			unauthorized(c, "Token mismatch")
			return
		}

		if authCache != nil {
			if err := authCache.Set(ctx, cacheKey, computedHash, utils.AuthCacheTTL).Err(); err != nil {
				logger.Warn("Auth cache write failed", zap.Error(err))
			}
		}

		c.Set(CtxUserID, userID)
		c.Next()
	}
}
