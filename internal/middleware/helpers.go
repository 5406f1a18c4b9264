// internal/middleware/helpers.go
package middleware

import "github.com/gin-gonic/gin"

// GetRequestID returns the id LoggingMiddleware assigned, or "".
func GetRequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}
