package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	appaccount "github.com/storefront/backend/internal/application/account"
	catalogapp "github.com/storefront/backend/internal/application/catalog"
	checkoutapp "github.com/storefront/backend/internal/application/checkout"
	orderapp "github.com/storefront/backend/internal/application/order"
	"github.com/storefront/backend/internal/domain/checkout"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
	"github.com/storefront/backend/internal/infrastructure/auth"
	"github.com/storefront/backend/internal/infrastructure/cache"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/event"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/infrastructure/persistence"
	"github.com/storefront/backend/internal/infrastructure/telemetry"
	"github.com/storefront/backend/internal/interfaces/http/handler"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
	"github.com/storefront/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

// version is overridden at build time with -ldflags "-X main.version=..."
var version = "dev"

//	@title			Storefront API
//	@version		1.0
//	@description	Catalog, cart, checkout and order placement for the bookstore
//	@BasePath		/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

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

	log.Info("Starting storefront",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	tp, err := telemetry.NewTracerProvider(context.Background(), telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.App.Name,
		ServiceVersion:    version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer func() {
		_ = tp.Shutdown(context.Background())
	}()

	var dbOpts []persistence.DatabaseOption
	if tp.IsEnabled() {
		dbOpts = append(dbOpts, persistence.WithTracing(tp.Provider(), cfg.Telemetry.DBLogFullSQL))
	}
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Log.SlowQueryThreshold))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog, dbOpts...)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 10*time.Second)
	stores, err := cache.NewStoreFactory(cfg.Redis, cfg.Checkout, cache.WithLogger(log)).CreateStores(startupCtx)
	cancelStartup()
	if err != nil {
		log.Fatal("Failed to create checkout stores", zap.Error(err))
	}
	defer func() {
		if err := stores.Close(); err != nil {
			log.Error("Error closing checkout stores", zap.Error(err))
		}
	}()

	currency, err := valueobject.ParseCurrency(cfg.Checkout.Currency)
	if err != nil {
		log.Fatal("Invalid checkout currency", zap.Error(err))
	}
	policy := checkout.LookupFailurePolicy(cfg.Checkout.AddressLookupPolicy)

	// Repositories
	productRepo := persistence.NewGormProductRepository(db.DB)
	addressRepo := persistence.NewGormAddressRepository(db.DB)
	methodRepo := persistence.NewGormPaymentMethodRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)

	// Events are delivered in-process; the notifier is deduplicated on event id
	eventBus := event.NewInMemoryEventBus(log)
	eventBus.Subscribe(event.NewIdempotentHandler(event.NewOrderNotifier(log), stores.Idempotency, log, event.DefaultEventDedupTTL))
	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		_ = eventBus.Stop(context.Background())
	}()

	// Services
	productService := catalogapp.NewProductService(productRepo, string(currency), log)
	productService.SetEventPublisher(eventBus)

	sessions := checkoutapp.NewSessionManager(stores.Sessions, policy, cfg.Checkout.PendingTimeout, log)
	cartService := checkoutapp.NewCartService(sessions, productRepo, string(currency))

	submitter := orderapp.NewSubmissionService(orderRepo, productRepo, addressRepo, stores.Idempotency, currency, log,
		orderapp.WithIdempotencyTTL(cfg.Checkout.IdempotencyTTL),
		orderapp.WithPaymentMethods(methodRepo),
		orderapp.WithEventPublisher(eventBus),
	)
	// The session claim is held well past the point where a pending submission counts as stale
	checkoutService := checkoutapp.NewService(sessions, addressRepo, submitter, stores.Idempotency,
		3*cfg.Checkout.PendingTimeout, string(currency), log)

	orderService := orderapp.NewOrderService(orderRepo, log)
	orderService.SetEventPublisher(eventBus)

	jwtService := auth.NewJWTService(cfg.JWT)

	healthChecks := map[string]handler.HealthCheck{
		"database": func(ctx context.Context) error { return db.Ping() },
	}
	if stores.UsesRedis() {
		healthChecks["redis"] = stores.Ping
	}

	handlers := handler.Handlers{
		Products: handler.NewProductHandler(productService),
		Cart:     handler.NewCartHandler(cartService),
		Checkout: handler.NewCheckoutHandler(checkoutService),
		Account: handler.NewAccountHandler(
			appaccount.NewAddressService(addressRepo),
			appaccount.NewPaymentMethodService(methodRepo),
		),
		Orders: handler.NewOrderHandler(orderService),
		System: handler.NewSystemHandler("Storefront API", version, healthChecks),
	}

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Order matters: the request id and span must exist before the logger and recovery see the request
	engine.Use(middleware.RequestID())
	engine.Use(middleware.Tracing(middleware.TracingConfig{
		ServiceName:    cfg.App.Name,
		Enabled:        tp.IsEnabled(),
		TracerProvider: tp.Provider(),
	}))
	engine.Use(middleware.SpanAttributes())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodyBytes))

	stopSweep := func() {}
	if cfg.HTTP.RateLimitRPS > 0 {
		limiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRPS, cfg.HTTP.RateLimitBurst, 10*time.Minute)
		engine.Use(middleware.RateLimit(limiter, middleware.ClientKey))
		stopSweep = sweepEvery(limiter, time.Minute, log)
		log.Info("Rate limiting enabled",
			zap.Float64("rps", cfg.HTTP.RateLimitRPS),
			zap.Int("burst", cfg.HTTP.RateLimitBurst),
		)
	}
	defer stopSweep()

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	handler.Register(engine, r, handlers, handler.AuthMiddleware{
		Optional: middleware.OptionalAuth(jwtService),
		Required: middleware.RequireAuth(jwtService, log),
		Admin:    middleware.RequireAdmin(),
	})
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
		return
	}

	log.Info("Server exited gracefully")
}

// sweepEvery drops idle rate limit buckets until the returned stop func is called
func sweepEvery(limiter *middleware.RateLimiter, interval time.Duration, log *zap.Logger) func() {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-ticker.C:
				if n := limiter.Sweep(); n > 0 {
					log.Debug("Swept idle rate limit buckets", zap.Int("count", n))
				}
			case <-done:
				return
			}
		}
	}()
	return func() {
		ticker.Stop()
		close(done)
	}
}
