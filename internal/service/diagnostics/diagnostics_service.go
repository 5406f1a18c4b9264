// internal/service/diagnostics/diagnostics_service.go
package diagnostics

import (
	"context"

	"tusafishe-service/internal/config"
	"tusafishe-service/internal/domain/diagnostics"
	"tusafishe-service/internal/domain/sms"

	"go.uber.org/zap"
)

const (
	DefaultTestPhone = "+254700000001"
	testMessage      = "Test SMS from Tusafishe Water Kiosk! 💧"
)

type CollectionLister interface {
	ListCollections(ctx context.Context) (*diagnostics.CollectionSummary, error)
}

type Sender interface {
	Send(ctx context.Context, to, message string) *sms.SendResult
}

// DiagnosticsService answers the operator actions test_database and test_sms.
type DiagnosticsService struct {
	cfg    config.AppConfig
	store  CollectionLister
	sender Sender
	logger *zap.Logger
}

// NewDiagnosticsService accepts a nil store when the store could not be
// built; TestDatabase then reports the missing configuration.
func NewDiagnosticsService(cfg config.AppConfig, store CollectionLister, sender Sender, logger *zap.Logger) *DiagnosticsService {
	return &DiagnosticsService{
		cfg:    cfg,
		store:  store,
		sender: sender,
		logger: logger,
	}
}

func (s *DiagnosticsService) TestDatabase(ctx context.Context) *diagnostics.DatabaseCheck {
	if missing := s.cfg.MissingStoreConfig(); len(missing) > 0 || s.store == nil {
		s.logger.Warn("database test skipped: missing configuration", zap.Strings("missing", missing))
		return &diagnostics.DatabaseCheck{
			Success:  false,
			Error:    "Missing environment variables",
			Required: s.cfg.RequiredStoreConfig(),
		}
	}

	summary, err := s.store.ListCollections(ctx)
	if err != nil {
		s.logger.Error("database test failed", zap.Error(err))
		return &diagnostics.DatabaseCheck{Success: false, Error: err.Error()}
	}

	s.logger.Info("database connected", zap.Int("collections", summary.Total))

	total := summary.Total
	names := summary.Names
	if names == nil {
		names = []string{}
	}
	return &diagnostics.DatabaseCheck{
		Success:         true,
		Message:         "Database connection working!",
		Collections:     &total,
		CollectionNames: names,
	}
}

// TestSMS sends the fixed test message to phone, or to DefaultTestPhone.
func (s *DiagnosticsService) TestSMS(ctx context.Context, phone string) *sms.SendResult {
	if phone == "" {
		phone = DefaultTestPhone
	}
	return s.sender.Send(ctx, phone, testMessage)
}
