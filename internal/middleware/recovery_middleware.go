// internal/middleware/recovery_middleware.go
package middleware

import (
	"fmt"

	"tusafishe-service/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RecoveryMiddleware turns a panic into a 500 carrying the panic text, so a
// bad message never takes the process down.
func RecoveryMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error("panic recovered",
					zap.Any("error", err),
					zap.String("path", c.Request.URL.Path),
					zap.String("request_id", GetRequestID(c)),
					zap.Stack("stack"),
				)
				response.ServerError(c, fmt.Sprint(err))
			}
		}()
		c.Next()
	}
}
