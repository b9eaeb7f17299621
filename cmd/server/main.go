package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	contentapp "github.com/comfund/backend/internal/application/content"
	fundapp "github.com/comfund/backend/internal/application/fund"
	identityapp "github.com/comfund/backend/internal/application/identity"
	membershipapp "github.com/comfund/backend/internal/application/membership"
	"github.com/comfund/backend/internal/application/notify"
	"github.com/comfund/backend/internal/infrastructure/auth"
	"github.com/comfund/backend/internal/infrastructure/cache"
	"github.com/comfund/backend/internal/infrastructure/config"
	"github.com/comfund/backend/internal/infrastructure/event"
	"github.com/comfund/backend/internal/infrastructure/logger"
	"github.com/comfund/backend/internal/infrastructure/migration"
	"github.com/comfund/backend/internal/infrastructure/persistence"
	"github.com/comfund/backend/internal/infrastructure/storage"
	"github.com/comfund/backend/internal/infrastructure/telemetry"
	"github.com/comfund/backend/internal/interfaces/http/handler"
	"github.com/comfund/backend/internal/interfaces/http/middleware"
	"github.com/comfund/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	_ "github.com/comfund/backend/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

const streamPath = "/api/v1/stream"

//	@title			Comfund Backend API
//	@version		1.0
//	@description	Membership, donation and fund ledger API for a community fund

//	@contact.name	API Support
//	@contact.email	support@comfund.example.com

//	@license.name	Apache 2.0
//	@license.url	http://www.apache.org/licenses/LICENSE-2.0.html

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	baseLog, err := logger.New(logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: logger.DefaultTimeFormat,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer logger.Sync(baseLog)

	ctx := context.Background()

	// Telemetry: traces, metrics, log export and profiling
	otelCfg := telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		Insecure:          cfg.Telemetry.Insecure,
		MetricsInterval:   cfg.Telemetry.MetricsInterval,
	}
	logsCfg := otelCfg
	logsCfg.Enabled = cfg.Telemetry.Enabled && cfg.Telemetry.LogsEnabled
	logProvider, err := telemetry.NewLoggerProvider(ctx, logsCfg, baseLog)
	if err != nil {
		baseLog.Fatal("Failed to initialize log export", zap.Error(err))
	}
	log := logProvider.Bridge(baseLog, logger.ParseLevel(cfg.Log.Level))

	log.Info("Starting Comfund backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	tracerProvider, err := telemetry.NewTracerProvider(ctx, otelCfg, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	metricsCfg := otelCfg
	metricsCfg.Enabled = cfg.Telemetry.Enabled && cfg.Telemetry.MetricsEnabled
	meterProvider, err := telemetry.NewMeterProvider(ctx, metricsCfg, log)
	if err != nil {
		log.Fatal("Failed to initialize metrics", zap.Error(err))
	}
	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:         cfg.Telemetry.ProfilingEnabled,
		ServerAddress:   cfg.Telemetry.PyroscopeAddress,
		ApplicationName: cfg.Telemetry.ServiceName,
	}, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	if profiler.IsEnabled() {
		tracerProvider.EnableSpanProfiles()
	}
	defer shutdownTelemetry(log, tracerProvider, meterProvider, logProvider, profiler)

	var meter = meterProvider.Meter("comfund")
	if !metricsCfg.Enabled {
		meter = nil
	}
	var fundMetrics *telemetry.FundMetrics
	if meter != nil {
		if fundMetrics, err = telemetry.NewFundMetrics(meter); err != nil {
			log.Warn("Failed to create fund metrics, continuing without them", zap.Error(err))
		}
	}

	// Schema
	if cfg.Database.AutoMigrate {
		if err := migration.UpDSN(cfg.Database.DSN(), migration.Embedded(), log); err != nil {
			log.Fatal("Failed to apply migrations", zap.Error(err))
		}
	}

	// Database
	gormLog := logger.NewGormLogger(log, logger.GormLevel(cfg.Log.Level), cfg.Telemetry.DBSlowQueryThresh)
	db, err := persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if err := telemetry.RegisterDBTracing(db.DB, telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
		SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
	}, log); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}
	log.Info("Database connected successfully")

	// Shared state: Redis when configured, process-local otherwise
	shared := newSharedState(ctx, cfg, log)
	defer shared.close()

	// Repositories
	memberRepo := persistence.NewGormMemberRepository(db.DB)
	donationRepo := persistence.NewGormDonationRepository(db.DB)
	ledgerRepo := persistence.NewGormLedgerEntryRepository(db.DB)
	noticeRepo := persistence.NewGormNoticeRepository(db.DB)
	activityRepo := persistence.NewGormActivityRepository(db.DB)

	media, err := storage.New(ctx, cfg.Storage, log)
	if err != nil {
		log.Fatal("Failed to initialize media storage", zap.Error(err))
	}

	eventBus := event.NewInMemoryEventBus(log)
	jwtService := auth.NewJWTService(cfg.JWT)
	loc := cfg.Fund.Location()

	// Services
	stats := fundapp.NewReconciliationService(memberRepo, donationRepo, ledgerRepo, shared.stats, metricsOrNil(fundMetrics),
		fundapp.NewReconciliationConfig(cfg.Fund, cfg.Org), log)

	hub := notify.NewHub(cfg.Stream.ClientBuffer, cfg.Stream.MaxClients, log)
	defer hub.Close()
	notifier := notify.NewChangeNotifier(stats, hub, shared.broadcaster, log)
	eventBus.Subscribe(notifier)

	authService := identityapp.NewAuthService(memberRepo, jwtService, shared.blacklist, eventBus,
		identityapp.AuthServiceConfig{DefaultMonthlyAmount: decimal.NewFromInt(cfg.Fund.DefaultMonthlyAmount)}, log)
	memberService := membershipapp.NewMemberService(memberRepo, eventBus, shared.blacklist, decisionsOrNil(fundMetrics),
		membershipapp.MemberServiceConfig{
			CommitteePositions: cfg.Org.CommitteePositions,
			RevocationTTL:      cfg.JWT.RefreshTokenExpiration,
		}, log)
	donationService := fundapp.NewDonationService(donationRepo, memberRepo, media, eventBus, metricsOrNil(fundMetrics), log)
	ledgerService := fundapp.NewLedgerService(ledgerRepo, donationRepo, stats, eventBus, shared.locker,
		fundapp.LedgerServiceConfig{OrgName: cfg.Org.Name, Location: loc}, log)
	dashboardService := fundapp.NewDashboardService(memberRepo, donationRepo, activityRepo, stats)
	noticeService := contentapp.NewNoticeService(noticeRepo, eventBus, loc, log)
	activityService := contentapp.NewActivityService(activityRepo, media, eventBus,
		contentapp.ActivityServiceConfig{Location: loc, MaxImageSize: cfg.Storage.MaxSize}, log)

	// Seed data
	if created, err := authService.EnsureBootstrapAdmin(ctx, identityapp.BootstrapAdmin{
		Name:     cfg.Bootstrap.AdminName,
		Email:    cfg.Bootstrap.AdminEmail,
		Password: cfg.Bootstrap.AdminPassword,
	}); err != nil {
		log.Fatal("Failed to create bootstrap admin", zap.Error(err))
	} else if created {
		log.Warn("Bootstrap admin created; change its password", zap.String("email", cfg.Bootstrap.AdminEmail))
	}
	if cfg.Fund.SeedFounderEntry {
		founderDate, _ := time.ParseInLocation(time.DateOnly, cfg.Fund.FounderDate, loc)
		if _, err := ledgerService.SeedFounderEntry(ctx, fundapp.FounderSeed{
			Amount:      decimal.NewFromInt(cfg.Fund.FounderAmount),
			Category:    cfg.Fund.FounderCategory,
			Description: cfg.Fund.FounderDescription,
			Date:        founderDate,
		}); err != nil {
			log.Fatal("Failed to seed founder entry", zap.Error(err))
		}
	}

	// Remote changes from other instances
	remoteCtx, stopRemote := context.WithCancel(ctx)
	defer stopRemote()
	go func() {
		if err := notifier.RunRemote(remoteCtx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("Change subscription stopped", zap.Error(err))
		}
	}()

	// HTTP engine
	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()
	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Invalid trusted proxies", zap.Error(err))
	}

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsCfg.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsCfg.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}

	engine.Use(
		middleware.RequestID(),
		logger.Recovery(log),
		middleware.TracingWithConfig(middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     tracerProvider.IsEnabled(),
		}),
		middleware.SpanErrorMarker(),
		logger.GinMiddleware(log),
		middleware.HTTPMetrics(meter, log),
		middleware.ProfilingWithConfig(middleware.ProfilingConfig{
			Enabled:   profiler.IsEnabled(),
			SkipPaths: []string{"/health", "/ready", streamPath},
		}),
		middleware.Secure(),
		middleware.CORSWithConfig(corsCfg),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
		middleware.Timeout(cfg.HTTP.RequestTimeout, streamPath),
	)

	var limiters []*middleware.RateLimiter
	if cfg.HTTP.RateLimitEnabled {
		global := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		limiters = append(limiters, global)
		engine.Use(middleware.RateLimit(global))
	}
	var authLimiter *middleware.RateLimiter
	if cfg.HTTP.RateLimitEnabled && cfg.HTTP.AuthRateLimitRequests > 0 {
		authLimiter = middleware.NewRateLimiter(cfg.HTTP.AuthRateLimitRequests, cfg.HTTP.AuthRateLimitWindow)
		limiters = append(limiters, authLimiter)
	}
	defer func() {
		for _, l := range limiters {
			l.Stop()
		}
	}()

	jwt := middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
		JWTService:      jwtService,
		Revocation:      authService,
		QueryTokenPaths: []string{streamPath},
		Logger:          log,
	})

	r := router.NewRouter(engine)
	for _, g := range router.Groups(router.Handlers{
		Auth:     handler.NewAuthHandler(authService),
		Member:   handler.NewMemberHandler(memberService),
		Donation: handler.NewDonationHandler(donationService, cfg.Storage.MaxSize),
		Ledger:   handler.NewLedgerHandler(ledgerService),
		Fund:     handler.NewFundHandler(stats, dashboardService),
		Notice:   handler.NewNoticeHandler(noticeService),
		Activity: handler.NewActivityHandler(activityService, cfg.Storage.MaxSize),
		Stream:   handler.NewStreamHandler(hub, cfg.Stream.HeartbeatInterval, log),
	}, router.Guards{
		JWT:         jwt,
		Principals:  authService,
		AuthLimiter: authLimiter,
		Logger:      log,
	}) {
		r.Register(g)
	}
	r.Setup()

	var docs, docsGuard gin.HandlerFunc
	if cfg.Swagger.Enabled {
		docs = ginSwagger.WrapHandler(swaggerFiles.Handler)
		docsGuard = middleware.SwaggerProtection(middleware.SwaggerConfig{
			Enabled:     true,
			RequireAuth: cfg.Swagger.RequireAuth,
			AllowedIPs:  cfg.Swagger.AllowedIPs,
		}, jwt)
	}
	router.SystemRoutes(engine, handler.NewSystemHandler(db, cfg.App.Name, version), docs, docsGuard)

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	// open change streams never finish on their own
	hub.Close()
	stopRemote()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// sharedState holds the pieces every instance must agree on
type sharedState struct {
	client      *redis.Client
	stats       cache.StatsCache
	locker      cache.Locker
	blacklist   auth.TokenBlacklist
	broadcaster cache.ChangeBroadcaster
	log         *zap.Logger
}

func newSharedState(ctx context.Context, cfg *config.Config, log *zap.Logger) *sharedState {
	s := &sharedState{log: log}
	if cfg.Redis.Enabled {
		client, err := cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.String("addr", cfg.Redis.Addr()), zap.Error(err))
		}
		s.client = client
		s.stats = cache.NewRedisStatsCache(client)
		s.locker = cache.NewRedisLocker(client)
		s.blacklist = auth.NewRedisTokenBlacklist(client)
		s.broadcaster = cache.NewRedisChangeBroadcaster(client, cfg.Stream.RedisChannel, log)
		log.Info("Redis connected", zap.String("addr", cfg.Redis.Addr()))
		return s
	}

	if cfg.App.IsProduction() {
		log.Warn("Redis disabled; caches, token revocation and change notifications stay local to this instance")
	}
	s.stats = cache.NewInMemoryStatsCache()
	s.locker = cache.NewLocalLocker()
	s.blacklist = auth.NewInMemoryTokenBlacklist()
	return s
}

func (s *sharedState) close() {
	if s.client == nil {
		return
	}
	if err := s.client.Close(); err != nil {
		s.log.Error("Error closing Redis client", zap.Error(err))
	}
}

// metricsOrNil keeps a nil *FundMetrics from becoming a non-nil interface
func metricsOrNil(m *telemetry.FundMetrics) fundapp.Metrics {
	if m == nil {
		return nil
	}
	return m
}

func decisionsOrNil(m *telemetry.FundMetrics) membershipapp.DecisionRecorder {
	if m == nil {
		return nil
	}
	return m
}

type shutdowner interface {
	Shutdown(ctx context.Context) error
}

func shutdownTelemetry(log *zap.Logger, tp, mp, lp shutdowner, profiler *telemetry.Profiler) {
	ctx := context.Background()
	for name, s := range map[string]shutdowner{"traces": tp, "metrics": mp, "logs": lp} {
		if err := s.Shutdown(ctx); err != nil {
			log.Error("Telemetry shutdown failed", zap.String("signal", name), zap.Error(err))
		}
	}
	if err := profiler.Stop(); err != nil {
		log.Error("Profiler shutdown failed", zap.Error(err))
	}
}
