package app

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/snote/internal/config"
	"github.com/MrSnakeDoc/snote/internal/domain"
	"github.com/MrSnakeDoc/snote/internal/events"
	"github.com/MrSnakeDoc/snote/internal/httpserver"
	"github.com/MrSnakeDoc/snote/internal/httpserver/deps"
	"github.com/MrSnakeDoc/snote/internal/httpserver/mw"
	"github.com/MrSnakeDoc/snote/internal/logger"
	"github.com/MrSnakeDoc/snote/internal/redis"
	"github.com/MrSnakeDoc/snote/internal/scheduler"
	"github.com/MrSnakeDoc/snote/internal/service"
	"github.com/MrSnakeDoc/snote/internal/sources/seed"
	"github.com/MrSnakeDoc/snote/internal/store"
	"github.com/MrSnakeDoc/snote/internal/store/memory"
	"github.com/MrSnakeDoc/snote/internal/store/postgres"
	redisstore "github.com/MrSnakeDoc/snote/internal/store/redis"
	"github.com/MrSnakeDoc/snote/internal/version"
)

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	server      *httpserver.Server
	db          *sql.DB // nil with the memory store
	redisClient *goredis.Client
	warmer      *scheduler.CacheWarmer
	unsubscribe func()
}

// New loads the configuration and wires the store, the optional Redis
// cache, the entry service and the HTTP server.
func New(ctx context.Context) (*App, error) {
	cfg := config.Load()
	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	repo, db, err := openStore(ctx, cfg, loggerClient)
	if err != nil {
		return nil, err
	}

	a := &App{cfg: cfg, logger: loggerClient, db: db, unsubscribe: func() {}}

	bus := events.NewBus[domain.EntryEvent]()
	opts := []service.Option{service.WithBus(bus)}

	var reloadTrigger chan struct{}
	if cfg.CacheEnabled() {
		redisClient, err := redis.New(ctx, redis.ConnectOptions{
			Addr:           cfg.RedisAddr,
			User:           cfg.RedisUser,
			Password:       cfg.RedisPassword,
			RedisDB:        cfg.RedisDB,
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
			a.closeStore()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		a.redisClient = redisClient

		cache := redisstore.NewCache(redisClient, cfg.CacheTTL)
		opts = append(opts, service.WithCache(cache))
		a.unsubscribe = bus.Subscribe(cache.Invalidator(loggerClient))

		reloadTrigger = make(chan struct{}, 1)
		a.warmer = scheduler.NewCacheWarmer(repo, cache, loggerClient, cfg.CacheWarmInterval, reloadTrigger)
	} else {
		loggerClient.Info("redis not configured, entry cache disabled")
	}

	opts = append(opts, service.WithLocation(cfg.TitleLocation))
	entries := service.NewEntryService(repo, loggerClient, opts...)

	if cfg.SeedFile != "" {
		if _, err := seed.Import(ctx, cfg.SeedFile, entries, loggerClient); err != nil {
			a.close()
			return nil, fmt.Errorf("seed import failed: %w", err)
		}
	}

	d := deps.Deps{
		Logger:        loggerClient,
		StartTime:     time.Now(),
		Version:       version.Version,
		Commit:        version.Commit,
		BuildDate:     version.BuildDate,
		GoVersion:     version.GoVersion,
		TimeNow:       time.Now,
		AllowedHosts:  cfg.AllowedHosts,
		AllowedCIDRS:  cfg.AllowedCIDRS,
		TrustProxy:    cfg.TrustProxy,
		StoreDriver:   cfg.StoreDriver,
		Entries:       entries,
		Store:         repo,
		RedisClient:   a.redisClient,
		ReloadTrigger: reloadTrigger,
		WriteLimit: mw.RateLimitConfig{
			Burst:             cfg.RateLimitBurst,
			RefillPerIPPerMin: cfg.RateLimitRefillPerMin,
			MaxEntries:        10_000,
		},
		MaxBodyBytes: cfg.MaxBodyBytes,
	}
	if a.warmer != nil {
		d.Warmer = a.warmer
	}

	a.server = httpserver.New(cfg, loggerClient, d)
	return a, nil
}

func openStore(ctx context.Context, cfg *config.Config, log logger.Logger) (store.Repository, *sql.DB, error) {
	switch cfg.StoreDriver {
	case config.StoreMemory:
		log.Warn("using in-memory store, entries are lost on restart")
		return memory.NewStore(), nil, nil
	default:
		db, err := postgres.Open(ctx, postgres.OpenOptions{
			DSN:             cfg.DatabaseURL,
			MaxOpenConns:    cfg.DBMaxOpenConns,
			MaxIdleConns:    cfg.DBMaxIdleConns,
			ConnMaxLifetime: cfg.DBConnMaxLifetime,
			PingTimeout:     cfg.DBPingTimeout,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open postgres: %w", err)
		}
		log.Info("postgres store ready")
		return postgres.NewRepository(db), db, nil
	}
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting %s on %s", version.String(), a.cfg.ListenPort)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if a.warmer != nil {
		a.warmer.Start(ctx)
		a.logger.Info("cache warmer started",
			logger.Duration("interval", a.cfg.CacheWarmInterval))
	}

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case runErr = <-errCh:
	}

	if a.warmer != nil {
		a.warmer.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil && runErr == nil {
		runErr = fmt.Errorf("failed to stop server: %w", err)
	}

	a.close()
	if runErr != nil {
		return runErr
	}
	a.logger.Info("✅ snote stopped cleanly")
	return nil
}

// close releases the cache subscription and the backing connections.
func (a *App) close() {
	a.unsubscribe()
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warnf("failed to close redis: %v", err)
		} else {
			a.logger.Info("✅ Redis closed cleanly")
		}
	}
	a.closeStore()
	_ = a.logger.Sync()
}

func (a *App) closeStore() {
	if a.db == nil {
		return
	}
	if err := a.db.Close(); err != nil {
		a.logger.Warnf("failed to close database: %v", err)
	}
}
