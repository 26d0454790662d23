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
	"github.com/lexdesk/backend/internal/infrastructure/cache"
	"github.com/lexdesk/backend/internal/infrastructure/config"
	"github.com/lexdesk/backend/internal/infrastructure/logger"
	"github.com/lexdesk/backend/internal/infrastructure/persistence"
	"github.com/lexdesk/backend/internal/infrastructure/telemetry"
	"github.com/lexdesk/backend/internal/interfaces/http/middleware"
	"github.com/lexdesk/backend/internal/interfaces/http/router"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	_ "github.com/lexdesk/backend/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// version is overridden at build time with -ldflags "-X main.version=..."
var version = "dev"

//	@title			LexDesk API
//	@version		1.0
//	@description	Back office for law firms: clients, cases, time tracking, calendar, documents, invoicing, client communications and the firm subscription.

//	@contact.name	LexDesk Support
//	@contact.email	support@lexdesk.app

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

//	@securityDefinitions.apikey	AdminKey
//	@in							header
//	@name						X-Admin-Key
//	@description				Back-office key for firm lifecycle operations

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: logger.DefaultTimeFormat,
		Service:    cfg.App.Name,
		Env:        cfg.App.Env,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("Server stopped with error", zap.Error(err))
		_ = logger.Sync(log)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	providers, err := telemetry.Setup(ctx, cfg.Telemetry, version, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := providers.Shutdown(context.Background()); err != nil {
			log.Warn("Telemetry shutdown incomplete", zap.Error(err))
		}
	}()
	log = providers.BridgeLogger(log, zapcore.InfoLevel)

	profiler, err := telemetry.StartProfiler(cfg.Telemetry.ProfilingEnabled, cfg.Telemetry.PyroscopeAddress, cfg.Telemetry.ServiceName, log)
	if err != nil {
		return err
	}
	defer func() {
		_ = profiler.Stop()
	}()
	if cfg.Telemetry.ProfilingEnabled {
		providers.EnableSpanProfiles()
	}

	log.Info("Starting LexDesk",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("version", version),
		zap.String("port", cfg.App.Port))

	gormLog := logger.NewSQLLogger(log, logger.SQLLogConfig{
		Level:         logger.ParseSQLLevel(cfg.Log.Level),
		SlowThreshold: cfg.Telemetry.DBSlowQueryThresh,
	})
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if err := telemetry.InstrumentGorm(db.DB, cfg.Telemetry, log); err != nil {
		return err
	}
	log.Info("Database connected successfully")

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		defer func() {
			_ = redisClient.Close()
		}()
		log.Info("Redis connected", zap.String("addr", cfg.Redis.Addr()))
	}

	a, err := newApp(ctx, cfg, db, redisClient, providers, log)
	if err != nil {
		return err
	}
	defer a.close(log)

	if err := a.bus.Start(ctx); err != nil {
		return err
	}
	defer func() {
		_ = a.bus.Stop(context.Background())
	}()

	if cfg.Scheduler.Enabled {
		if err := a.sweeper.Start(ctx); err != nil {
			return err
		}
		defer func() {
			_ = a.sweeper.Stop(context.Background())
		}()
	}

	engine := newEngine(cfg, a, redisClient, providers, log)

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info("Server exited gracefully")
	return nil
}

// newEngine builds the gin engine: global middleware, swagger, the
// versioned API and the root health probe
func newEngine(cfg *config.Config, a *app, redisClient *redis.Client, providers *telemetry.Providers, log *zap.Logger) *gin.Engine {
	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Invalid trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.SecurityHeaders(cfg.HTTP.HSTSMaxAge))

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	engine.Use(middleware.CORS(corsConfig))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	tracingConfig := middleware.DefaultTracingConfig()
	tracingConfig.ServiceName = cfg.Telemetry.ServiceName
	tracingConfig.Enabled = cfg.Telemetry.Enabled
	engine.Use(middleware.TracingWithConfig(tracingConfig))
	engine.Use(middleware.SpanErrorMarker())
	if cfg.Telemetry.MetricsEnabled {
		engine.Use(middleware.HTTPMetrics(providers.Meter("lexdesk/http"), log))
	}
	engine.Use(middleware.Profiling(cfg.Telemetry.ProfilingEnabled, tracingConfig.SkipPaths))

	if cfg.HTTP.RateLimitEnabled {
		engine.Use(middleware.RateLimit(newLimiter(redisClient, "ratelimit:api:", cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow), log))
	}

	jwtConfig := middleware.DefaultJWTConfig(a.jwt)
	jwtConfig.TokenBlacklist = a.blacklist
	jwtConfig.Logger = log
	jwtAuth := middleware.JWTAuthMiddlewareWithConfig(jwtConfig)

	if cfg.Swagger.Enabled {
		engine.GET("/swagger/*any",
			middleware.SwaggerProtection(cfg.Swagger, jwtAuth),
			ginSwagger.WrapHandler(swaggerFiles.Handler))
	}
	engine.GET("/health", a.handlers.System.Health)

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Use(
		jwtAuth,
		middleware.TracingAttributeInjector(),
		middleware.GlobalAccessGuard(middleware.AccessGuardConfig{
			Evaluator: a.subscriptions,
			Logger:    log,
		}),
	)

	guards := router.Guards{
		Subscription: middleware.NewSubscriptionGuard(a.subscriptions, log),
		Admin:        middleware.AdminKey(cfg.App.AdminAPIKey, log),
	}
	if cfg.HTTP.AuthRateLimitEnabled {
		limiter := newLimiter(redisClient, "ratelimit:auth:", cfg.HTTP.AuthRateLimitRequests, cfg.HTTP.AuthRateLimitWindow)
		guards.AuthRateLimit = middleware.RateLimitByKey(limiter, middleware.ClientIPKey, log)
	}

	router.Mount(r, a.handlers, guards)
	r.Setup()
	return engine
}

// newLimiter shares counters through Redis when it is available
func newLimiter(client *redis.Client, prefix string, limit int, window time.Duration) middleware.Limiter {
	if client == nil {
		return middleware.NewRateLimiter(limit, window)
	}
	return middleware.NewRedisRateLimiter(client, prefix, limit, window)
}
