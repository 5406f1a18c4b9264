// internal/app/server.go
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"tusafishe-service/internal/config"
	"tusafishe-service/internal/db"
	webhookHandler "tusafishe-service/internal/handlers/webhook"
	"tusafishe-service/internal/middleware"
	xerrors "tusafishe-service/internal/pkg/errors"
	"tusafishe-service/internal/pkg/guard"
	"tusafishe-service/internal/repository/appwrite"
	"tusafishe-service/internal/repository/postgres"
	"tusafishe-service/internal/service/conversation"
	"tusafishe-service/internal/service/diagnostics"
	"tusafishe-service/internal/service/gateway"
	"tusafishe-service/internal/service/registration"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	cfg        config.AppConfig
	engine     *gin.Engine
	httpServer *http.Server
	logger     *zap.Logger

	pg    *postgres.DB
	redis redis.UniversalClient
}

// NewServer wires every dependency. Nothing listens until Start.
func NewServer(cfg config.AppConfig) (*Server, error) {
	ctx := context.Background()

	// ----- Logger -----
	logger, err := zap.NewProduction()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	s := &Server{cfg: cfg, logger: logger}

	// ----- Customer store -----
	store, lister, err := s.buildStore(ctx)
	if err != nil {
		return nil, err
	}

	// ----- Redis (optional) -----
	turnGuard := s.buildGuard()

	// ----- Services -----
	sender := gateway.NewAfricasTalkingSender(cfg.SMS, logger)
	if sender.TestMode() {
		log.Println("[SMS] ⚠️ AFRICAS_TALKING_API_KEY not set, replies are logged only")
	}

	processor := registration.NewProcessor(cfg.AccountPrefix)
	conversationService := conversation.NewConversationService(store, sender, turnGuard, processor, logger)
	diagnosticsService := diagnostics.NewDiagnosticsService(cfg, lister, sender, logger)

	// ----- Handlers -----
	webhookHandlerInst := webhookHandler.NewWebhookHandler(conversationService, diagnosticsService, cfg.Version, logger)

	// ----- Middlewares -----
	gin.SetMode(gin.ReleaseMode)
	s.engine = gin.New()
	s.engine.Use(
		middleware.RecoveryMiddleware(logger),
		middleware.LoggingMiddleware(logger),
		middleware.CORSMiddleware(),
	)

	// ----- Router -----
	SetupRouter(s.engine, logger, &Handlers{
		WebhookHandler: webhookHandlerInst,
	})

	s.httpServer = &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s, nil
}

func (s *Server) buildStore(ctx context.Context) (conversation.CustomerStore, diagnostics.CollectionLister, error) {
	if missing := s.cfg.MissingStoreConfig(); len(missing) > 0 {
		s.logger.Warn("customer store is missing configuration", zap.Strings("missing", missing))
	}

	switch s.cfg.StoreDriver {
	case config.StoreDriverPostgres:
		if s.cfg.DatabaseURL == "" {
			return nil, nil, xerrors.Wrap(xerrors.ErrMissingConfig, "STORE_DRIVER=postgres requires DATABASE_URL")
		}
		pg, err := postgres.ConnectDB(ctx, s.cfg.DatabaseURL, s.cfg.StoreTimeout)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
		}
		s.pg = pg

		repo := postgres.NewCustomerRepository(pg, s.cfg.Appwrite.CustomersCollectionID)
		if err := repo.EnsureSchema(ctx); err != nil {
			return nil, nil, err
		}
		log.Println("[POSTGRES] ✅ Connected successfully")
		return repo, repo, nil

	case config.StoreDriverAppwrite:
		client := appwrite.NewClient(s.cfg.Appwrite, s.cfg.StoreTimeout)
		repo := appwrite.NewCustomerRepository(client, s.cfg.Appwrite.CustomersCollectionID)
		log.Printf("[APPWRITE] using %s", s.cfg.Appwrite.Endpoint)
		return repo, client, nil
	}

	return nil, nil, xerrors.Wrap(xerrors.ErrInvalidInput, fmt.Sprintf("unknown STORE_DRIVER %q", s.cfg.StoreDriver))
}

// buildGuard falls back to a no-op guard when Redis is not configured or
// not reachable.
func (s *Server) buildGuard() guard.Guard {
	addrs := db.ParseRedisAddrs(s.cfg.RedisAddr)
	if len(addrs) == 0 {
		if s.cfg.TurnLockEnabled {
			s.logger.Warn("TURN_LOCK_ENABLED is set but REDIS_ADDR is empty; turns are not locked")
		}
		return guard.Noop{}
	}

	client, err := db.NewRedisClient(db.RedisConfig{
		Addresses: addrs,
		Password:  s.cfg.RedisPass,
		PoolSize:  10,
	})
	if err != nil {
		log.Printf("[REDIS] ❌ Failed to connect to Redis: %v", err)
		return guard.Noop{}
	}
	log.Println("[REDIS] ✅ Connected successfully")
	s.redis = client

	return guard.NewRedisGuard(client, s.cfg.DedupeTTL, s.cfg.TurnLockTTL, s.cfg.TurnLockEnabled)
}

// Start blocks serving HTTP until Shutdown is called.
func (s *Server) Start() error {
	log.Printf("🚀 Server running on %s", s.cfg.HTTPAddr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests, then closes the pools.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.httpServer.Shutdown(ctx)

	if s.pg != nil {
		s.pg.Close()
	}
	if s.redis != nil {
		if cerr := s.redis.Close(); cerr != nil {
			s.logger.Warn("failed to close redis", zap.Error(cerr))
		}
	}
	_ = s.logger.Sync()

	return err
}
