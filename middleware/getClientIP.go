package middleware

import (
	"github.com/gin-gonic/gin"
)

// TrustProxies limits which peers may report the client address through
// X-Forwarded-For or X-Real-IP. With no proxies listed the socket address is
// always used, so a direct caller cannot pick its own rate-limit bucket.
func TrustProxies(r *gin.Engine, proxies []string) error {
	r.ForwardedByClientIP = true
	r.RemoteIPHeaders = []string{"X-Forwarded-For", "X-Real-IP"}
	if len(proxies) == 0 {
		return r.SetTrustedProxies(nil)
	}
	return r.SetTrustedProxies(proxies)
}

// getClientIP returns the first untrusted hop, reading forwarding headers
// only when the request arrived from a trusted proxy.
func getClientIP(c *gin.Context) string {
	return c.ClientIP()
}
