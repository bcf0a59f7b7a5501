package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"

	appsync "github.com/syncbridge/backend/internal/application/sync"
	"github.com/syncbridge/backend/internal/domain/sync"
	"github.com/syncbridge/backend/internal/infrastructure/auth"
	"github.com/syncbridge/backend/internal/infrastructure/bigcommerce"
	"github.com/syncbridge/backend/internal/infrastructure/cache"
	"github.com/syncbridge/backend/internal/infrastructure/config"
	"github.com/syncbridge/backend/internal/infrastructure/hubspot"
	"github.com/syncbridge/backend/internal/infrastructure/logger"
	"github.com/syncbridge/backend/internal/infrastructure/persistence"
	"github.com/syncbridge/backend/internal/infrastructure/retry"
	"github.com/syncbridge/backend/internal/interfaces/http/handler"
	"github.com/syncbridge/backend/internal/interfaces/http/middleware"
	"github.com/syncbridge/backend/internal/interfaces/http/router"
)

// version is injected at build time via -ldflags
var version = "dev"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load config: " + err.Error())
	}

	// Initialize logger
	zapLogger, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() { _ = zapLogger.Sync() }()

	zapLogger.Info("starting syncbridge",
		zap.String("version", version),
		zap.String("env", cfg.App.Env),
	)

	// Connect to database
	gormLogger := logger.NewGormLogger(zapLogger, gormlogger.Warn)
	db, err := persistence.Open(&cfg.Database, gormLogger)
	if err != nil {
		zapLogger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer func() { _ = db.Close() }()

	// Repositories
	logRepo := persistence.NewGormSyncLogRepository(db.DB)
	configRepo := persistence.NewGormConfigRepository(db.DB)

	// Platform adapters
	executor := retry.NewExecutor(retry.Config{
		MaxAttempts:  cfg.Retry.MaxAttempts,
		InitialDelay: cfg.Retry.InitialDelay,
	}, zapLogger)

	commerceAdapter, err := bigcommerce.NewAdapter(&bigcommerce.Config{
		StoreHash:      cfg.BigCommerce.StoreHash,
		AccessToken:    cfg.BigCommerce.AccessToken,
		ClientID:       cfg.BigCommerce.ClientID,
		APIBaseURL:     cfg.BigCommerce.APIBaseURL,
		WebhookSecret:  cfg.Webhook.Secret,
		TimeoutSeconds: int(cfg.BigCommerce.Timeout.Seconds()),
	}, executor, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed to initialize commerce adapter", zap.Error(err))
	}

	crmAdapter, err := hubspot.NewAdapter(&hubspot.Config{
		AccessToken:    cfg.HubSpot.AccessToken,
		APIBaseURL:     cfg.HubSpot.APIBaseURL,
		TimeoutSeconds: int(cfg.HubSpot.Timeout.Seconds()),
	}, executor, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed to initialize CRM adapter", zap.Error(err))
	}

	// Application services
	audit := appsync.NewAuditService(logRepo, zapLogger)
	stageMap := appsync.NewStageMappingService(configRepo, zapLogger)
	forward := appsync.NewForwardService(commerceAdapter, crmAdapter, audit, zapLogger,
		appsync.WithDealStages(cfg.Sync.OrderDealStage, cfg.Sync.CartDealStage))
	reverse := appsync.NewReverseService(commerceAdapter, crmAdapter, stageMap, audit, zapLogger)

	// Persisted stage mapping overrides, if any
	loadCtx, cancelLoad := context.WithTimeout(context.Background(), 10*time.Second)
	stageMap.Load(loadCtx)
	cancelLoad()

	dispatcherOpts := []appsync.DispatcherOption{}
	if cfg.Sync.GuardEnabled {
		guard := buildGuard(cfg, zapLogger)
		dispatcherOpts = append(dispatcherOpts, appsync.WithInFlightGuard(guard, cfg.Sync.GuardTTL))
	}
	dispatcher := appsync.NewDispatcher(forward, reverse, audit, zapLogger, dispatcherOpts...)

	jwtService := auth.NewJWTService(cfg.JWT)

	// HTTP engine
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			zapLogger.Fatal("invalid trusted proxies", zap.Error(err))
		}
	}

	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestID())
	engine.Use(logger.GinMiddleware(zapLogger))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORS())
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	engine.Use(middleware.RateLimit(middleware.NewRateLimiter(cfg.HTTP.RateLimit, cfg.HTTP.RateLimitWindow)))
	engine.Use(middleware.JWTAuthMiddleware(jwtService))

	r := router.NewRouter(engine)
	r.Register(handler.NewHealthHandler(db, version))
	r.Register(handler.NewWebhookHandler(dispatcher, commerceAdapter, zapLogger))
	r.Register(handler.NewSyncLogHandler(audit, dispatcher))
	r.Register(handler.NewStageMappingHandler(stageMap))
	r.Setup()

	server := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		zapLogger.Info("http server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("http server failed", zap.Error(err))
		}
	}()

	// Graceful shutdown: stop accepting requests, then let in-flight
	// syncs finish before the process exits
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zapLogger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		zapLogger.Error("http server shutdown failed", zap.Error(err))
	}
	if err := dispatcher.Shutdown(ctx); err != nil {
		zapLogger.Error("dispatcher shutdown timed out", zap.Error(err))
	}

	zapLogger.Info("stopped")
}

func buildGuard(cfg *config.Config, zapLogger *zap.Logger) sync.InFlightGuard {
	factory := cache.NewGuardFactory(cfg.Redis, cache.WithLogger(zapLogger))
	guard, err := factory.CreateGuard(cfg.Sync.GuardBackend)
	if err != nil {
		zapLogger.Fatal("failed to create in-flight guard", zap.Error(err))
	}
	return guard
}
