// internal/handlers/webhook/webhook_handler.go
package webhook

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"tusafishe-service/internal/domain/sms"
	"tusafishe-service/internal/pkg/response"
	"tusafishe-service/internal/service/conversation"
	"tusafishe-service/internal/service/diagnostics"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	actionTestDatabase = "test_database"
	actionTestSMS      = "test_sms"
	actionSimulateSMS  = "simulate_sms"

	defaultSimulatedFrom = "+254700000000"
	defaultSimulatedText = "REGISTER"

	maxBodyBytes = 1 << 20
)

type WebhookHandler struct {
	conversationService *conversation.ConversationService
	diagnosticsService  *diagnostics.DiagnosticsService
	version             string
	logger              *zap.Logger
}

func NewWebhookHandler(conversationService *conversation.ConversationService, diagnosticsService *diagnostics.DiagnosticsService, version string, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{
		conversationService: conversationService,
		diagnosticsService:  diagnosticsService,
		version:             version,
		logger:              logger,
	}
}

// Status describes the service and the requests it accepts.
func (h *WebhookHandler) Status(c *gin.Context) {
	response.JSON(c, http.StatusOK, gin.H{
		"status":    "Water Kiosk SMS System Active",
		"version":   h.version,
		"timestamp": response.Timestamp(time.Now()),
		"endpoints": gin.H{
			"status":        "GET / - This status page",
			"test_database": `POST {"action": "test_database"}`,
			"test_sms":      `POST {"action": "test_sms", "phone": "+254700000000"}`,
			"simulate_sms":  `POST {"action": "simulate_sms", "from": "+254700000000", "text": "REGISTER"}`,
			"webhook":       "POST with SMS data from Africa's Talking",
		},
	})
}

// Health is a plain liveness probe.
func (h *WebhookHandler) Health(c *gin.Context) {
	response.JSON(c, http.StatusOK, gin.H{"status": "ok", "version": h.version})
}

// Receive dispatches an inbound POST: operator actions first, then carrier
// deliveries carrying from and text.
func (h *WebhookHandler) Receive(c *gin.Context) {
	body := h.parseBody(c)
	ctx := c.Request.Context()

	action, _ := field(body, "action")
	switch action {
	case actionTestDatabase:
		response.JSON(c, http.StatusOK, h.diagnosticsService.TestDatabase(ctx))
		return

	case actionTestSMS:
		phone, _ := field(body, "phone")
		response.JSON(c, http.StatusOK, h.diagnosticsService.TestSMS(ctx, phone))
		return

	case actionSimulateSMS:
		from, ok := field(body, "from")
		if !ok {
			from = defaultSimulatedFrom
		}
		text, ok := field(body, "text")
		if !ok {
			text = defaultSimulatedText
		}
		response.JSON(c, http.StatusOK, h.conversationService.HandleSMS(ctx, sms.InboundSMS{
			From: from,
			Text: text,
		}))
		return
	}

	from, hasFrom := field(body, "from")
	text, hasText := field(body, "text")
	if !hasFrom || !hasText {
		response.BadRequest(c, "Invalid request", body, `Send SMS data with "from" and "text" fields`)
		return
	}

	// Africa's Talking sends its delivery id as "id".
	messageID, _ := field(body, "id")

	response.JSON(c, http.StatusOK, h.conversationService.HandleSMS(ctx, sms.InboundSMS{
		From:      from,
		Text:      strings.TrimSpace(text),
		MessageID: messageID,
		IsReal:    true,
	}))
}

// NoMethod answers any method the routes do not handle.
func (h *WebhookHandler) NoMethod(c *gin.Context) {
	response.Error(c, http.StatusMethodNotAllowed, fmt.Sprintf("Method %s not allowed", c.Request.Method))
}

// parseBody never fails: anything it cannot read becomes an empty map.
func (h *WebhookHandler) parseBody(c *gin.Context) map[string]interface{} {
	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes))
	if err != nil {
		h.logger.Warn("failed to read request body", zap.Error(err))
		return map[string]interface{}{}
	}

	body := ParseBody(c.ContentType(), raw)
	h.logger.Debug("webhook request",
		zap.String("method", c.Request.Method),
		zap.String("content_type", c.ContentType()),
		zap.ByteString("raw_body", raw),
		zap.Any("parsed_body", body),
	)
	return body
}

// ParseBody accepts a JSON object, a JSON string that itself encodes an
// object, or a form-encoded body.
func ParseBody(contentType string, raw []byte) map[string]interface{} {
	if contentType == "application/x-www-form-urlencoded" {
		values, err := url.ParseQuery(string(raw))
		if err != nil {
			return map[string]interface{}{}
		}
		body := make(map[string]interface{}, len(values))
		for k, v := range values {
			if len(v) > 0 {
				body[k] = v[0]
			}
		}
		return body
	}

	var decoded interface{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return map[string]interface{}{}
	}

	switch v := decoded.(type) {
	case map[string]interface{}:
		return v
	case string:
		var inner map[string]interface{}
		if err := json.Unmarshal([]byte(v), &inner); err != nil || inner == nil {
			return map[string]interface{}{}
		}
		return inner
	}
	return map[string]interface{}{}
}

// field reads key from body as text. The second result reports whether the
// key was present at all; null reads as "".
func field(body map[string]interface{}, key string) (string, bool) {
	v, ok := body[key]
	if !ok {
		return "", false
	}
	switch t := v.(type) {
	case nil:
		return "", true
	case string:
		return t, true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	default:
		return fmt.Sprint(t), true
	}
}
