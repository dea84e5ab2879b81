package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Context keys set by the middleware in this package.
const (
	CtxUserID     = "userID"
	CtxDeviceID   = "deviceID"
	CtxDeviceName = "deviceName"
	CtxDeviceIP   = "deviceIP"
)

// DeviceDetailsMiddleware reads the calling device from the request headers.
// X-Device-ID is required; X-Device-Name falls back to the user agent.
func DeviceDetailsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		deviceID := strings.TrimSpace(c.GetHeader("X-Device-ID"))
		if deviceID == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"message": "Missing required device details: X-Device-ID",
			})
			return
		}
		deviceName := strings.TrimSpace(c.GetHeader("X-Device-Name"))
		if deviceName == "" {
			deviceName = c.Request.UserAgent()
		}
		if len(deviceName) > 100 {
			deviceName = deviceName[:100]
		}

		c.Set(CtxDeviceID, deviceID)
		c.Set(CtxDeviceName, deviceName)
		c.Set(CtxDeviceIP, getClientIP(c))
		c.Next()
	}
}
