// File: utils/constants.go
package utils

import "time"

// AuthCachePrefix is the prefix used for Redis authorization cache keys.
const AuthCachePrefix = "auth:"

// AuthCacheTTL is the time-to-live for authorization cache entries.
const AuthCacheTTL = time.Hour

// AuthCacheKey builds the composite auth cache key for a user's device.
func AuthCacheKey(userID, deviceID string) string {
	return AuthCachePrefix + userID + ":" + deviceID
}
