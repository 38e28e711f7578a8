package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	goredis "github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/mapmarks/internal/bookmarks"
	"github.com/MrSnakeDoc/mapmarks/internal/config"
	"github.com/MrSnakeDoc/mapmarks/internal/engine"
	"github.com/MrSnakeDoc/mapmarks/internal/httpserver"
	"github.com/MrSnakeDoc/mapmarks/internal/httpserver/deps"
	"github.com/MrSnakeDoc/mapmarks/internal/i18n"
	"github.com/MrSnakeDoc/mapmarks/internal/icons"
	"github.com/MrSnakeDoc/mapmarks/internal/logger"
	"github.com/MrSnakeDoc/mapmarks/internal/redis"
	"github.com/MrSnakeDoc/mapmarks/internal/scheduler"
	"github.com/MrSnakeDoc/mapmarks/internal/sources/importer"
	redisstore "github.com/MrSnakeDoc/mapmarks/internal/store/redis"
	sqlitestore "github.com/MrSnakeDoc/mapmarks/internal/store/sqlite"
	"github.com/MrSnakeDoc/mapmarks/internal/utils"
	"github.com/MrSnakeDoc/mapmarks/internal/version"
)

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	server      *httpserver.Server
	redisClient *goredis.Client
	sqlite      *sqlitestore.Store
	engine      *engine.Memory
	mu          *sync.Mutex
	loader      *scheduler.StartupLoader
	flusher     *scheduler.Flusher
	reloader    *scheduler.ImportReloader
}

func New() *App {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	a := &App{
		cfg:    cfg,
		logger: loggerClient,
		mu:     &sync.Mutex{},
	}

	// Open storage backends in priority order - fail fast if one is unavailable
	loggerClient.Info("opening storage", logger.Strings("backends", cfg.Storage))
	persisters, pingers, err := a.openStorage()
	if err != nil {
		loggerClient.Errorf("Failed to open storage: %v", err)
		os.Exit(1)
	}

	a.engine = engine.NewMemory(engine.Options{
		HitRadius:  cfg.HitRadius,
		POIs:       loadPOIs(cfg.POIFile, loggerClient),
		Persisters: persisters,
	})

	labels := i18n.New(cfg.Language)
	manager := bookmarks.NewManager(a.engine, icons.MustLoad(), labels, loggerClient)
	loggerClient.Info("bookmark manager initialized",
		logger.String("language", labels.Tag().String()),
		logger.Float64("hit_radius_m", cfg.HitRadius))

	a.loader = scheduler.NewStartupLoader(a.engine, loggerClient.With(logger.String("component", "startup")))

	flushTrigger := make(chan struct{}, 1)
	a.flusher = scheduler.NewFlusher(a.engine, loggerClient.With(logger.String("component", "flusher")), cfg.FlushInterval, flushTrigger)

	// Initialize import reloader (if an import file is configured)
	var reloadTrigger chan struct{}
	if cfg.ImportFile != "" {
		loggerClient.Info("import file configured, initializing import reloader",
			logger.String("file", cfg.ImportFile))
		reloadTrigger = make(chan struct{}, 1)
		a.reloader = scheduler.NewImportReloader(
			cfg.ImportFile,
			a.engine,
			a.mu,
			loggerClient.With(logger.String("component", "import")),
			cfg.ReloadInterval,
			reloadTrigger,
		)
	} else {
		loggerClient.Info("import file not configured, imports disabled")
	}

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
		RateLimitBurst:  cfg.RateLimitBurst,
		RateLimitRefill: cfg.RateLimitRefill,
		Manager:         manager,
		Engine:          a.engine,
		Mu:              a.mu,
		Validate:        validator.New(validator.WithRequiredStructEnabled()),
		Storage:         pingers,
		ImportFile:      cfg.ImportFile,
		ReloadTrigger:   reloadTrigger,
		FlushTrigger:    flushTrigger,
	}

	a.server = httpserver.New(cfg, loggerClient, d)
	loggerClient.Debug("application wired", logger.Time("started_at", d.StartTime))
	return a
}

// openStorage returns the configured backends in the order of cfg.Storage.
func (a *App) openStorage() ([]engine.Persister, []deps.Pinger, error) {
	var (
		persisters []engine.Persister
		pingers    []deps.Pinger
	)

	for _, kind := range a.cfg.Storage {
		switch kind {
		case config.StorageRedis:
			a.logger.Infof("Connecting to Redis at %s", a.cfg.RedisAddr)
			client, err := redis.Dial(context.Background(), redis.ConnectOptions{
				Addr:           a.cfg.RedisAddr,
				User:           a.cfg.RedisUser,
				Password:       a.cfg.RedisPassword,
				DB:             a.cfg.RedisDB,
				DialTimeout:    a.cfg.RedisDT,
				ReadTimeout:    a.cfg.RedisRT,
				WriteTimeout:   a.cfg.RedisWT,
				PoolSize:       a.cfg.RedisPoolSize,
				ConnectTimeout: a.cfg.RedisConnectTimeout,
				RetryInterval:  a.cfg.RedisRetryInterval,
				MaxWait:        a.cfg.RedisMaxWait,
				PingTimeout:    a.cfg.RedisPingTimeout,
				WarnThreshold:  a.cfg.RedisWarnThreshold,
			}, a.logger)
			if err != nil {
				return nil, nil, fmt.Errorf("redis: %w", err)
			}
			a.redisClient = client
			store := redisstore.NewStore(client)
			persisters = append(persisters, store)
			pingers = append(pingers, store)
			a.logger.Info("Redis initialized successfully")

		case config.StorageSQLite:
			store, err := sqlitestore.Open(a.cfg.SQLitePath)
			if err != nil {
				return nil, nil, fmt.Errorf("sqlite: %w", err)
			}
			a.sqlite = store
			persisters = append(persisters, store)
			pingers = append(pingers, store)
			a.logger.Info("SQLite initialized successfully",
				logger.String("path", a.cfg.SQLitePath))
		}
	}
	return persisters, pingers, nil
}

// loadPOIs reads the POI dataset. A missing or broken file only disables
// POI lookups.
func loadPOIs(path string, log logger.Logger) []engine.POI {
	if path == "" {
		log.Info("POI file not configured, POI lookups disabled")
		return nil
	}

	f, err := importer.NewLoader(path).LoadPOIs()
	if err != nil {
		log.Warn("failed to read POI file, POI lookups disabled",
			logger.String("file", path),
			logger.Error(err))
		return nil
	}

	pois, err := importer.NewMapper().MapPOIs(f)
	if err != nil {
		log.Warn("POI file has no usable entries",
			logger.String("file", path),
			logger.Error(err))
		return nil
	}

	log.Info("POI dataset loaded",
		logger.String("file", path),
		logger.Int("count", len(pois)))
	return pois
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting Mapmarks v%s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Info(version.String())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Restore the last snapshot before anything can write
	if err := a.loader.Load(ctx); err != nil {
		a.logger.Warn("failed to restore bookmarks, starting empty",
			logger.Error(err))
	}

	// Start import reloader (merges the file and starts periodic refresh)
	if a.reloader != nil {
		if err := a.reloader.Start(ctx); err != nil {
			return fmt.Errorf("failed to start import reloader: %w", err)
		}
		a.logger.Info("import reloader started",
			logger.Duration("interval", a.cfg.ReloadInterval))
	}

	a.flusher.Start(ctx)
	a.logger.Info("flusher started",
		logger.Duration("interval", a.cfg.FlushInterval))

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
		a.shutdownStorage()
		return err
	}

	if a.reloader != nil {
		a.reloader.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	a.shutdownStorage()
	a.logger.Info("✅ Mapmarks stopped cleanly")
	return nil
}

// shutdownStorage writes pending changes one last time and closes backends.
func (a *App) shutdownStorage() {
	a.flusher.Stop()

	if a.sqlite != nil {
		utils.MustClose(a.sqlite, "sqlite", a.logger)
	}
	if a.redisClient != nil {
		utils.MustClose(a.redisClient, "redis", a.logger)
	}
	a.logger.Info("✅ Storage closed cleanly")
}
