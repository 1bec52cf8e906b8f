package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/MrSnakeDoc/appshelf/internal/config"
	"github.com/MrSnakeDoc/appshelf/internal/domain"
	"github.com/MrSnakeDoc/appshelf/internal/httpserver"
	"github.com/MrSnakeDoc/appshelf/internal/httpserver/deps"
	"github.com/MrSnakeDoc/appshelf/internal/index"
	"github.com/MrSnakeDoc/appshelf/internal/localstate"
	"github.com/MrSnakeDoc/appshelf/internal/logger"
	"github.com/MrSnakeDoc/appshelf/internal/redis"
	"github.com/MrSnakeDoc/appshelf/internal/scheduler"
	"github.com/MrSnakeDoc/appshelf/internal/sources/sheet"
	"github.com/MrSnakeDoc/appshelf/internal/stats"
	redisstore "github.com/MrSnakeDoc/appshelf/internal/store/redis"
	"github.com/MrSnakeDoc/appshelf/internal/version"
)

var (
	_ localstate.Provider          = (*redisstore.Store)(nil)
	_ stats.Recorder               = (*redisstore.Store)(nil)
	_ scheduler.CatalogSaver       = (*redisstore.Store)(nil)
	_ scheduler.CatalogSnapshotter = (*redisstore.Store)(nil)
	_ scheduler.SessionStore       = (*redisstore.Store)(nil)
	_ scheduler.FeedLoader         = (*sheet.Loader)(nil)
)

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	server      *httpserver.Server
	redisClient *goredis.Client
	memIndex    *index.MemoryIndex
	reloader    *scheduler.CatalogReloader
	gc          *scheduler.SessionCollector
}

// New wires every component from cfg. It fails when redis cannot be
// reached within the configured connect timeout.
func New(ctx context.Context, cfg *config.Config, loggerClient logger.Logger) (*App, error) {
	// Initialize Redis early - fail fast if unavailable
	loggerClient.Infof("Connecting to Redis at %s", cfg.RedisAddr)
	redisClient, err := redis.Connect(ctx, redis.ConnectOptions{
		Addr:           cfg.RedisAddr,
		User:           cfg.RedisUser,
		Password:       cfg.RedisPassword,
		DB:             cfg.RedisDB,
		DialTimeout:    cfg.RedisDT,
		ReadTimeout:    cfg.RedisRT,
		WriteTimeout:   cfg.RedisWT,
		PoolSize:       cfg.RedisPoolSize,
		ConnectTimeout: cfg.RedisConnectTimeout,
		RetryInterval:  cfg.RedisRetryInterval,
		MaxWait:        cfg.RedisMaxWait,
		PingTimeout:    cfg.RedisPingTimeout,
		WarnThreshold:  cfg.RedisWarnThreshold,
	}, loggerClient)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	loggerClient.Info("Redis initialized successfully")

	memIndex := index.NewMemoryIndex()
	store := redisstore.NewStore(redisClient, cfg.StateTTL)

	// Serve the last known catalog while the feed is fetched
	syncer := scheduler.NewRedisSyncer(store, memIndex, loggerClient)
	if err := syncer.Sync(ctx); err != nil {
		loggerClient.Warn("failed to sync from redis on startup, will load from feed",
			logger.Error(err))
	}

	// Create manual reload trigger channel
	reloadTrigger := make(chan struct{}, 1)

	loader := sheet.NewLoader(cfg.FeedURL, &http.Client{Timeout: cfg.FeedTimeout})
	reloader := scheduler.NewCatalogReloader(
		loader,
		store,
		memIndex,
		loggerClient.Named("catalog"),
		cfg.ReloadInterval,
		reloadTrigger,
	)

	gc := scheduler.NewSessionCollector(
		store,
		loggerClient.Named("gc"),
		cfg.GCInterval,
		cfg.SessionIdle,
	)

	d := deps.Deps{
		Logger:          loggerClient,
		StartTime:       time.Now(),
		Version:         version.Version,
		Commit:          version.Commit,
		BuildDate:       version.BuildDate,
		GoVersion:       version.GoVersion,
		TimeNow:         time.Now,
		AllowedHosts:    cfg.AllowedHosts,
		AllowedCIDRS:    cfg.AllowedCIDRS,
		TrustProxy:      cfg.TrustProxy,
		CORSOrigins:     cfg.CORSOrigins,
		PublicBaseURL:   cfg.PublicBaseURL,
		DefaultPageSize: domain.PageSize(cfg.DefaultPageSize),
		CookieName:      cfg.CookieName,
		CookieSecure:    cfg.CookieSecure,
		RateLimitBurst:  cfg.RateLimitBurst,
		RateLimitRefill: cfg.RateLimitRefill,
		MemoryIndex:     memIndex,
		Visitors:        store,
		Stats:           stats.NewService(store, cfg.PingWindow, loggerClient.Named("stats")),
		RedisClient:     redisClient,
		ReloadTrigger:   reloadTrigger,
	}

	return &App{
		cfg:         cfg,
		logger:      loggerClient,
		server:      httpserver.New(cfg, loggerClient, d),
		redisClient: redisClient,
		memIndex:    memIndex,
		reloader:    reloader,
		gc:          gc,
	}, nil
}

// Run serves HTTP and runs the schedulers until SIGINT/SIGTERM or the
// first fatal error, then shuts everything down.
func (a *App) Run() error {
	a.logger.Infof("🚀 Starting AppShelf %s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Infof("AppShelf %s", version.String())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	// Loads the feed immediately, then refreshes periodically
	g.Go(func() error {
		a.logger.Info("catalog reloader started",
			logger.Duration("interval", a.cfg.ReloadInterval))
		return a.reloader.Run(gctx)
	})

	g.Go(func() error {
		a.logger.Info("session collector started",
			logger.Duration("interval", a.cfg.GCInterval),
			logger.Duration("idle", a.cfg.SessionIdle))
		return a.gc.Run(gctx)
	})

	g.Go(func() error {
		if err := a.server.Start(); err != nil {
			return fmt.Errorf("http server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info("⏳ Shutting down gracefully...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
		defer cancel()
		if err := a.server.Stop(shutdownCtx); err != nil {
			return fmt.Errorf("failed to stop server: %w", err)
		}
		return nil
	})

	err := g.Wait()

	if a.redisClient != nil {
		if cerr := a.redisClient.Close(); cerr != nil {
			a.logger.Warnf("failed to close redis: %v", cerr)
		} else {
			a.logger.Info("✅ Redis closed cleanly")
		}
	}

	if err != nil {
		return err
	}
	a.logger.Info("✅ AppShelf stopped cleanly")
	return nil
}
