// internal/app/router.go
package app

import (
	webhookHandler "tusafishe-service/internal/handlers/webhook"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handlers struct {
	WebhookHandler *webhookHandler.WebhookHandler
}

func SetupRouter(r *gin.Engine, logger *zap.Logger, h *Handlers) {
	// ==================== Webhook ====================
	// Africa's Talking and operators both post to the root path.
	r.GET("/", h.WebhookHandler.Status)
	r.POST("/", h.WebhookHandler.Receive)
	r.HandleMethodNotAllowed = true
	r.NoMethod(h.WebhookHandler.NoMethod)

	// ==================== Health Check ====================
	api := r.Group("/api/v1")
	api.GET("/health", h.WebhookHandler.Health)

	logger.Debug("routes registered", zap.Int("count", len(r.Routes())))
}
