package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	aggregationapp "github.com/freshsupply/backend/internal/application/aggregation"
	cutoffapp "github.com/freshsupply/backend/internal/application/cutoff"
	notificationapp "github.com/freshsupply/backend/internal/application/notification"
	orderingapp "github.com/freshsupply/backend/internal/application/ordering"
	purchasingapp "github.com/freshsupply/backend/internal/application/purchasing"
	"github.com/freshsupply/backend/internal/infrastructure/cache"
	"github.com/freshsupply/backend/internal/infrastructure/config"
	"github.com/freshsupply/backend/internal/infrastructure/logger"
	"github.com/freshsupply/backend/internal/infrastructure/persistence"
	"github.com/freshsupply/backend/internal/infrastructure/sms"
	"github.com/freshsupply/backend/internal/infrastructure/telemetry"
	"github.com/freshsupply/backend/internal/interfaces/http/handler"
	"github.com/freshsupply/backend/internal/interfaces/http/middleware"
	"github.com/freshsupply/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting FreshSupply Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("category", cfg.Cycle.Category),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Initialize repositories
	saleOrderRepo := persistence.NewGormSaleOrderRepository(db.DB)
	purchaseOrderRepo := persistence.NewGormPurchaseOrderRepository(db.DB)
	ledgerRepo := persistence.NewGormPurchaseLedgerRepository(db.DB)
	accountRepo := persistence.NewGormSupplierAccountRepository(db.DB)
	supplierRepo := persistence.NewGormSupplierRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	windowRepo := persistence.NewGormWindowRepository(db.DB)
	cycleRepo := persistence.NewGormCycleRepository(db.DB)
	sequenceGen := persistence.NewGormSequenceGenerator(db.DB)
	unitOfWork := persistence.NewGormUnitOfWork(db.DB)

	// Operation lock store (Redis when enabled, in-memory otherwise)
	lockStore, err := cache.NewLockStoreFactory(cfg.Redis, cache.WithLogger(log)).CreateStore()
	if err != nil {
		log.Fatal("Failed to create operation lock store", zap.Error(err))
	}
	defer func() {
		if err := lockStore.Close(); err != nil {
			log.Error("Error closing lock store", zap.Error(err))
		}
	}()

	// SMS provider
	smsProvider, err := sms.NewProvider(cfg.Sms, log)
	if err != nil {
		log.Fatal("Failed to create SMS provider", zap.Error(err))
	}
	log.Info("SMS provider initialized", zap.String("provider", smsProvider.Name()))

	// Application services
	engine := aggregationapp.NewEngine(saleOrderRepo, productRepo, supplierRepo, log)
	generator := purchasingapp.NewGenerator(purchaseOrderRepo, supplierRepo, cycleRepo, sequenceGen, log)
	dispatcher := notificationapp.NewDispatcher(purchaseOrderRepo, supplierRepo, smsProvider, cfg.Sms.RecipientDelay, log)
	inboundService := purchasingapp.NewInboundService(purchaseOrderRepo, accountRepo, supplierRepo, unitOfWork, sequenceGen, log)
	windowService := cutoffapp.NewWindowService(windowRepo, purchaseOrderRepo, engine, generator, dispatcher, lockStore, cfg.Cycle.Category, log)
	cycleService := cutoffapp.NewCycleService(cycleRepo, saleOrderRepo, engine, generator, lockStore, cfg.Cycle.Category, log)
	saleOrderService := orderingapp.NewSaleOrderService(saleOrderRepo, productRepo, windowRepo, cycleService, sequenceGen, log)

	// Telemetry
	meterProvider, err := telemetry.NewMeterProvider(telemetry.MetricsConfig{
		Enabled:     cfg.Telemetry.Enabled,
		ServiceName: cfg.Telemetry.ServiceName,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := meterProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down meter provider", zap.Error(err))
		}
	}()
	if cfg.Telemetry.Enabled {
		businessMetrics, err := telemetry.NewBusinessMetrics(meterProvider.Meter("freshsupply.business"), log)
		if err != nil {
			log.Fatal("Failed to create business metrics", zap.Error(err))
		}
		saleOrderService.SetBusinessMetrics(businessMetrics)
		generator.SetBusinessMetrics(businessMetrics)
		dispatcher.SetBusinessMetrics(businessMetrics)
		inboundService.SetBusinessMetrics(businessMetrics)
	}

	// HTTP handlers
	cutoffHandler := handler.NewCutoffHandler(windowService)
	cycleHandler := handler.NewCycleHandler(cycleService)
	saleOrderHandler := handler.NewSaleOrderHandler(saleOrderService)
	purchaseOrderHandler := handler.NewPurchaseOrderHandler(purchaseOrderRepo, ledgerRepo, inboundService, dispatcher)
	supplierAccountHandler := handler.NewSupplierAccountHandler(inboundService)
	healthHandler := handler.NewHealthHandler(db)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	middleware.SetupValidator()

	ginEngine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := ginEngine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	ginEngine.Use(middleware.RequestID())
	ginEngine.Use(logger.Recovery(log))
	ginEngine.Use(logger.GinMiddleware(log))

	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	ginEngine.Use(middleware.CORSWithConfig(corsConfig))
	ginEngine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	router.NewRouter(ginEngine).
		Register(cutoffHandler).
		Register(cycleHandler).
		Register(saleOrderHandler).
		Register(purchaseOrderHandler).
		Register(supplierAccountHandler).
		Register(healthHandler).
		Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        ginEngine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Background auto-reset loop: after the 17:00 boundary the daily
	// cycle is rolled over even if nobody calls the API.
	resetCtx, stopReset := context.WithCancel(context.Background())
	defer stopReset()
	go runAutoResetLoop(resetCtx, cycleService, cfg.Cycle.AutoResetCheckInterval, log)

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")
	stopReset()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// runAutoResetLoop periodically checks whether the daily cycle is due
// for its automatic reset.
func runAutoResetLoop(ctx context.Context, cycles *cutoffapp.CycleService, interval time.Duration, log *zap.Logger) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := cycles.RunAutoReset(ctx); err != nil {
				log.Error("Cycle auto-reset check failed", zap.Error(err))
			}
		}
	}
}
