// internal/service/gateway/africastalking.go
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"tusafishe-service/internal/config"
	"tusafishe-service/internal/domain/sms"
	"tusafishe-service/internal/pkg/phone"

	"go.uber.org/zap"
)

const (
	liveMessagingURL    = "https://api.africastalking.com/version1/messaging"
	sandboxMessagingURL = "https://api.sandbox.africastalking.com/version1/messaging"
)

// AfricasTalkingSender delivers outbound SMS through the Africa's Talking
// messaging API. Without an API key it runs in test mode and only logs.
type AfricasTalkingSender struct {
	apiKey      string
	username    string
	senderID    string
	url         string
	countryCode string
	httpClient  *http.Client
	logger      *zap.Logger
}

func NewAfricasTalkingSender(cfg config.SMSConfig, logger *zap.Logger) *AfricasTalkingSender {
	endpoint := cfg.BaseURL
	if endpoint == "" {
		endpoint = liveMessagingURL
		if cfg.Username == "sandbox" {
			endpoint = sandboxMessagingURL
		}
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &AfricasTalkingSender{
		apiKey:      cfg.APIKey,
		username:    cfg.Username,
		senderID:    cfg.SenderID,
		url:         endpoint,
		countryCode: cfg.CountryCode,
		httpClient:  &http.Client{Timeout: timeout},
		logger:      logger,
	}
}

// TestMode reports whether messages are only logged.
func (s *AfricasTalkingSender) TestMode() bool {
	return s.apiKey == ""
}

// Send delivers message to the given number. Failures are logged and
// reported in the result; Send never returns an error to the caller.
func (s *AfricasTalkingSender) Send(ctx context.Context, to, message string) *sms.SendResult {
	if s.TestMode() {
		s.logger.Info("TEST MODE: sms not sent",
			zap.String("to", to),
			zap.String("message", message),
		)
		return &sms.SendResult{
			Success:  true,
			Message:  "SMS logged in test mode",
			TestMode: true,
		}
	}

	recipient := phone.Normalize(to, s.countryCode)

	result, err := s.send(ctx, recipient, message)
	if err != nil {
		s.logger.Error("sms failed", zap.String("to", recipient), zap.Error(err))
		return &sms.SendResult{Success: false, Error: err.Error()}
	}

	s.logger.Info("sms sent", zap.String("to", recipient))
	return &sms.SendResult{
		Success:   true,
		TestMode:  false,
		SMSResult: result,
	}
}

func (s *AfricasTalkingSender) send(ctx context.Context, to, message string) (*sms.GatewayResponse, error) {
	form := url.Values{}
	form.Set("username", s.username)
	form.Set("to", to)
	form.Set("message", message)
	if s.senderID != "" {
		form.Set("from", s.senderID)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("apiKey", s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http post: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("africa's talking returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var out sms.GatewayResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	// 100 Processed, 101 Sent, 102 Queued; anything else is a rejection.
	for _, r := range out.SMSMessageData.Recipients {
		if r.StatusCode < 100 || r.StatusCode > 102 {
			return &out, fmt.Errorf("recipient %s rejected: %s", r.Number, r.Status)
		}
	}

	return &out, nil
}
