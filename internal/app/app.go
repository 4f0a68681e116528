package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/sekawan-grup/raya/internal/config"
	"github.com/sekawan-grup/raya/internal/httpserver"
	"github.com/sekawan-grup/raya/internal/httpserver/deps"
	"github.com/sekawan-grup/raya/internal/index"
	"github.com/sekawan-grup/raya/internal/logger"
	"github.com/sekawan-grup/raya/internal/media"
	"github.com/sekawan-grup/raya/internal/redis"
	"github.com/sekawan-grup/raya/internal/scheduler"
	"github.com/sekawan-grup/raya/internal/seed"
	"github.com/sekawan-grup/raya/internal/service"
	redisstore "github.com/sekawan-grup/raya/internal/store/redis"
	"github.com/sekawan-grup/raya/internal/store/sqlstore"
	"github.com/sekawan-grup/raya/internal/token"
	"github.com/sekawan-grup/raya/internal/version"
)

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	server      *httpserver.Server
	db          *gorm.DB
	redisClient *goredis.Client
	memIndex    *index.MemoryIndex
	warmer      *scheduler.CatalogWarmer
	sweeper     *scheduler.RevocationSweeper // nil when Redis holds revocations
}

// New connects the database and Redis, seeds an empty database and builds the
// HTTP server. Redis is optional: without an address the memory index serves
// as catalog cache and revocation list.
func New(ctx context.Context) (*App, error) {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	db, err := sqlstore.Open(ctx, sqlstore.Options{
		DSN:           cfg.DatabaseURL,
		MaxOpenConns:  cfg.DBMaxOpenConns,
		MaxIdleConns:  cfg.DBMaxIdleConns,
		ConnMaxLife:   cfg.DBConnMaxLife,
		SlowThreshold: cfg.DBLogSlowQuery,
		AutoMigrate:   cfg.AutoMigrate,
	}, loggerClient)
	if err != nil {
		return nil, err
	}

	admins := sqlstore.NewAdminsRepository(db)
	categories := sqlstore.NewCategoriesRepository(db)
	links := sqlstore.NewLinksRepository(db)

	if err := seed.EnsureAdmin(ctx, admins, cfg.AdminUsername, cfg.AdminPassword, cfg.AdminPwdDefault, loggerClient); err != nil {
		_ = sqlstore.Close(db)
		return nil, err
	}
	if cfg.SeedFile != "" {
		if _, err := seed.ImportCatalog(ctx, cfg.SeedFile, categories, links, loggerClient); err != nil {
			_ = sqlstore.Close(db)
			return nil, fmt.Errorf("failed to import seed catalog: %w", err)
		}
	}

	memIndex := index.NewMemoryIndex()

	var (
		cache       service.CatalogCache   = memIndex
		revocations service.RevocationList = memIndex
		redisPinger deps.Pinger
		sweeper     *scheduler.RevocationSweeper
	)

	// A configured Redis must be reachable - fail fast if unavailable
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
	switch {
	case errors.Is(err, redis.ErrDisabled):
		loggerClient.Info("redis not configured, using in-memory catalog cache and revocation list")
		sweeper = scheduler.NewRevocationSweeper(memIndex, loggerClient, scheduler.DefaultSweepInterval)
	case err != nil:
		_ = sqlstore.Close(db)
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	default:
		loggerClient.Info("Redis initialized successfully")
		store := redisstore.NewStore(redisClient)
		cache, revocations, redisPinger = store, store, store
	}

	uploader, err := media.NewCloudinary(cfg.CloudinaryURL, cfg.CloudinaryFolder, loggerClient)
	if err != nil {
		loggerClient.Warn("cloudinary disabled, image uploads will be refused", logger.Error(err))
		uploader = media.Disabled{}
	}

	issuer := token.NewIssuer(cfg.JWTSecret, cfg.TokenTTL)
	auth := service.NewAuth(admins, issuer, revocations, loggerClient)

	// Mutations and POST /reload both signal the warmer through this channel.
	warmTrigger := make(chan struct{}, 1)
	catalog := service.NewCatalog(categories, links, cache, cfg.CatalogCacheTTL, warmTrigger, loggerClient)
	warmer := scheduler.NewCatalogWarmer(catalog, loggerClient, cfg.CatalogRefreshInterval, warmTrigger)

	d := deps.Deps{
		Logger:            loggerClient,
		StartTime:         time.Now(),
		Version:           version.Version,
		Commit:            version.Commit,
		BuildDate:         version.BuildDate,
		GoVersion:         version.GoVersion,
		TimeNow:           time.Now,
		AllowedOrigins:    cfg.AllowedOrigins,
		AllowedCIDRS:      cfg.AllowedCIDRS,
		TrustProxy:        cfg.TrustProxy,
		MobileOnly:        cfg.MobileOnly,
		LoginBurst:        cfg.LoginBurst,
		LoginRefillPerMin: cfg.LoginRefillPerMin,
		Auth:              auth,
		Catalog:           catalog,
		Uploader:          uploader,
		Database: deps.PingFunc(func(ctx context.Context) error {
			return sqlstore.Ping(ctx, db)
		}),
		Redis:       redisPinger,
		MemoryIndex: memIndex,
		WarmTrigger: warmTrigger,
	}

	server := httpserver.New(cfg, loggerClient, d)

	return &App{
		cfg:         cfg,
		logger:      loggerClient,
		server:      server,
		db:          db,
		redisClient: redisClient,
		memIndex:    memIndex,
		warmer:      warmer,
		sweeper:     sweeper,
	}, nil
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting Raya v%s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Infof("Raya %s (commit=%s, built=%s, go=%s)",
		version.Version, version.Commit, version.BuildDate, version.GoVersion)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Fill the public catalog cache before serving traffic
	if err := a.warmer.Start(ctx); err != nil {
		return fmt.Errorf("failed to start catalog warmer: %w", err)
	}
	a.logger.Info("catalog warmer started",
		logger.Duration("interval", a.cfg.CatalogRefreshInterval))

	if a.sweeper != nil {
		a.sweeper.Start(ctx)
		a.logger.Info("revocation sweeper started")
	}

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
		a.close()
		return err
	}

	a.warmer.Stop()
	if a.sweeper != nil {
		a.sweeper.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	a.close()
	a.logger.Info("✅ Raya stopped cleanly")
	_ = a.logger.Sync()
	return nil
}

// close releases Redis and the database pool.
func (a *App) close() {
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warnf("failed to close redis: %v", err)
		} else {
			a.logger.Info("✅ Redis closed cleanly")
		}
	}

	if err := sqlstore.Close(a.db); err != nil {
		a.logger.Warnf("failed to close database: %v", err)
	} else {
		a.logger.Info("✅ Database closed cleanly")
	}
}
