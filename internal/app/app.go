package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/gnezdo/gnezdo/internal/config"
	"github.com/gnezdo/gnezdo/internal/httpserver"
	"github.com/gnezdo/gnezdo/internal/httpserver/deps"
	"github.com/gnezdo/gnezdo/internal/logger"
	"github.com/gnezdo/gnezdo/internal/metrics"
	"github.com/gnezdo/gnezdo/internal/policy"
	"github.com/gnezdo/gnezdo/internal/redis"
	"github.com/gnezdo/gnezdo/internal/scheduler"
	"github.com/gnezdo/gnezdo/internal/store/postgres"
	redisstore "github.com/gnezdo/gnezdo/internal/store/redis"
	"github.com/gnezdo/gnezdo/internal/version"
	"github.com/gnezdo/gnezdo/internal/webhook"
)

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	server      *httpserver.Server
	redisClient *goredis.Client
	reloader    *scheduler.PolicyReloader
	notifier    *webhook.Notifier
}

func New() *App {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	metrics.Register()

	// Postgres carries the bookings and the overlap constraint - fail fast
	// if it is unreachable.
	store, err := postgres.Open(cfg.DatabaseDSN)
	if err != nil {
		loggerClient.Errorf("Failed to open postgres: %v", err)
		os.Exit(1)
	}
	loggerClient.Info("Postgres initialized successfully")

	redisClient, err := redis.New(redis.ConnectOptions{
		Addr:         cfg.RedisAddr,
		Password:     cfg.RedisPassword,
		RedisDB:      cfg.RedisDB,
		DialTimeout:  cfg.RedisDT,
		ReadTimeout:  cfg.RedisRT,
		WriteTimeout: cfg.RedisWT,
	}, loggerClient)
	if err != nil {
		loggerClient.Errorf("Failed to connect to Redis: %v", err)
		os.Exit(1)
	}

	cache := redisstore.NewCache(redisClient, cfg.CacheTTL)

	// Policy starts at built-in defaults; the reloader replaces it from the
	// yaml file on startup and on every tick or manual trigger.
	holder := policy.NewHolder(policy.Default())
	policyReloadTrigger := make(chan struct{}, 1)
	reloader := scheduler.NewPolicyReloader(
		cfg.PolicyFile,
		holder,
		loggerClient,
		cfg.PolicyReloadInterval,
		policyReloadTrigger,
	)

	notifier := webhook.NewNotifier(cfg.WebhookURL, cfg.WebhookTimeout, cfg.WebhookQueueSize, loggerClient)
	if notifier.Enabled() {
		loggerClient.Info("webhook notifier enabled", logger.String("url", cfg.WebhookURL))
	} else {
		loggerClient.Info("webhook notifier disabled, no url configured")
	}

	d := deps.Deps{
		Logger:    loggerClient,
		StartTime: time.Now(),
		Version:   version.Version,
		Commit:    version.Commit,
		BuildDate: version.BuildDate,
		GoVersion: version.GoVersion,
		TimeNow:   time.Now,

		Bookings:   store,
		Properties: store,
		Cache:      cache,
		Notifier:   notifier,
		Policy:     holder,

		DBPinger:    store,
		CachePinger: cache,

		AuthTokens:          cfg.AuthTokens,
		TrustProxy:          cfg.TrustProxy,
		PolicyReloadTrigger: policyReloadTrigger,

		RateBurst:         cfg.RateBurst,
		RateRefillPerMin:  cfg.RateRefillPerMin,
		RateLimitDisabled: cfg.RateLimitDisabled,
	}

	server := httpserver.New(cfg, loggerClient, d)

	return &App{
		cfg:         cfg,
		logger:      loggerClient,
		server:      server,
		redisClient: redisClient,
		reloader:    reloader,
		notifier:    notifier,
	}
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting Gnezdo v%s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Infof("Gnezdo %s (commit=%s, built=%s, go=%s)",
		version.Version, version.Commit, version.BuildDate, version.GoVersion)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.reloader.Start(ctx); err != nil {
		return fmt.Errorf("failed to start policy reloader: %w", err)
	}
	a.logger.Info("policy reloader started",
		logger.Duration("interval", a.cfg.PolicyReloadInterval))

	a.notifier.Start(ctx)

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case err := <-errCh:
		return err
	}

	a.reloader.Stop()
	a.notifier.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warnf("failed to close redis: %v", err)
		} else {
			a.logger.Info("✅ Redis closed cleanly")
		}
	}

	a.logger.Info("✅ Gnezdo stopped cleanly")
	return nil
}
