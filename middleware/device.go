package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

// DeviceKeyHeader carries the shared secret of the fingerprint device
const DeviceKeyHeader = "X-Device-Key"

// RequireDeviceKey authenticates the attendance device. An empty key disables
// the endpoint altogether.
func RequireDeviceKey(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if key == "" {
			abortWithError(c, http.StatusServiceUnavailable, "DEVICE_DISABLED", "Device ingestion is not configured")
			return
		}

		given := c.GetHeader(DeviceKeyHeader)
		if subtle.ConstantTimeCompare([]byte(given), []byte(key)) != 1 {
			abortWithError(c, http.StatusUnauthorized, "INVALID_DEVICE_KEY", "Device key is missing or invalid")
			return
		}

		c.Next()
	}
}
