package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MrSnakeDoc/coursemark/internal/config"
	"github.com/MrSnakeDoc/coursemark/internal/domain"
	"github.com/MrSnakeDoc/coursemark/internal/httpserver"
	"github.com/MrSnakeDoc/coursemark/internal/httpserver/deps"
	"github.com/MrSnakeDoc/coursemark/internal/index"
	"github.com/MrSnakeDoc/coursemark/internal/logger"
	"github.com/MrSnakeDoc/coursemark/internal/scheduler"
	"github.com/MrSnakeDoc/coursemark/internal/store"
	"github.com/MrSnakeDoc/coursemark/internal/version"
)

type App struct {
	cfg      *config.Config
	logger   logger.Logger
	server   *httpserver.Server
	store    domain.Store
	tree     *index.MemoryTree
	reloader *scheduler.OutlineReloader
}

// New connects the store and wires the HTTP server. The store connection
// is retried until COURSEMARK_CONNECT_TIMEOUT; failing it is fatal.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	// Initialize the store early - fail fast if unavailable
	loggerClient.Infof("Opening %s store", cfg.StoreDriver)
	bookmarkStore, err := store.Open(ctx, cfg, loggerClient)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.StoreDriver, err)
	}
	loggerClient.Info("store initialized successfully",
		logger.String("driver", cfg.StoreDriver))

	// Initialize content tree
	tree := index.NewMemoryTree()

	// Create manual reload trigger channel
	reloadTrigger := make(chan struct{}, 1)

	// Initialize outline reloader
	reloader := scheduler.NewOutlineReloader(
		cfg.OutlineDir,
		tree,
		loggerClient,
		cfg.ReloadInterval,
		reloadTrigger,
	)

	pathOpts := cfg.PathOptions()
	loggerClient.Info("breadcrumb settings",
		logger.Int("depth", pathOpts.Depth),
		logger.String("anchor", string(pathOpts.Anchor)))

	// Dependencies passed to routes (extend as needed).
	d := deps.Deps{
		Logger:             loggerClient,
		StartTime:          time.Now(),
		Version:            version.Version,
		Commit:             version.Commit,
		BuildDate:          version.BuildDate,
		GoVersion:          version.GoVersion,
		TimeNow:            time.Now,
		AllowedHosts:       cfg.AllowedHosts,
		AllowedCIDRS:       cfg.AllowedCIDRS,
		TrustProxy:         cfg.TrustProxy,
		UserHeader:         cfg.UserHeader,
		RateLimitBurst:     cfg.RateLimitBurst,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		StoreDriver:        cfg.StoreDriver,
		Store:              bookmarkStore,
		Bookmarks:          domain.NewBookmarkService(bookmarkStore, tree, pathOpts),
		Tree:               tree,
		ReloadTrigger:      reloadTrigger,
	}

	server := httpserver.New(cfg, loggerClient, d)

	return &App{
		cfg:      cfg,
		logger:   loggerClient,
		server:   server,
		store:    bookmarkStore,
		tree:     tree,
		reloader: reloader,
	}, nil
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting coursemark v%s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Info(version.String())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start outline reloader (loads outlines and starts periodic refresh)
	if err := a.reloader.Start(ctx); err != nil {
		a.closeStore()
		return fmt.Errorf("failed to start outline reloader: %w", err)
	}
	a.logger.Info("outline reloader started",
		logger.String("dir", a.cfg.OutlineDir),
		logger.Duration("interval", a.cfg.ReloadInterval))

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
		a.reloader.Stop()
		a.closeStore()
		return err
	}

	// Stop reloader
	a.reloader.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	a.closeStore()

	a.logger.Info("✅ coursemark stopped cleanly")
	_ = a.logger.Sync()
	return nil
}

func (a *App) closeStore() {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	if err := a.store.Close(ctx); err != nil {
		a.logger.Warnf("failed to close %s store: %v", a.cfg.StoreDriver, err)
	} else {
		a.logger.Infof("✅ %s store closed cleanly", a.cfg.StoreDriver)
	}
}

// Migrate prepares the configured store (tables for SQL, indexes for
// Mongo) and exits.
func Migrate(ctx context.Context, cfg *config.Config) error {
	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	s, err := store.Open(ctx, cfg, loggerClient)
	if err != nil {
		return fmt.Errorf("failed to migrate %s store: %w", cfg.StoreDriver, err)
	}
	defer func() { _ = s.Close(ctx) }()

	loggerClient.Info("store schema is up to date",
		logger.String("driver", cfg.StoreDriver))
	return nil
}
