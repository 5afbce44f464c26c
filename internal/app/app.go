// Package app assembles the Discipulus API: stores, services, HTTP routes
// and background jobs.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/noah-isme/discipulus-api/internal/handler"
	"github.com/noah-isme/discipulus-api/internal/repository"
	"github.com/noah-isme/discipulus-api/internal/service"
	"github.com/noah-isme/discipulus-api/migrations"
	"github.com/noah-isme/discipulus-api/pkg/cache"
	"github.com/noah-isme/discipulus-api/pkg/config"
	"github.com/noah-isme/discipulus-api/pkg/database"
	"github.com/noah-isme/discipulus-api/pkg/jobs"
	"github.com/noah-isme/discipulus-api/pkg/storage"
)

// Services holds every domain service the routes and jobs use.
type Services struct {
	Metrics       *service.MetricsService
	Catalog       *service.CatalogService
	Booking       *service.BookingService
	Chat          *service.ChatService
	Schedule      *service.ScheduleService
	Profiles      *service.ProfileService
	Wallets       *service.WalletService
	Auth          *service.AuthService
	Navigation    *service.NavigationService
	Notifications *service.NotificationService
	Statements    *service.StatementLinks
}

// App owns the HTTP engine and the lifecycle of background workers.
type App struct {
	cfg      *config.Config
	logger   *zap.Logger
	loc      *time.Location
	stores   *Stores
	services *Services
	checks   map[string]handler.ReadinessCheck
	queue    *jobs.Queue
	cron     *cron.Cron
	engine   *gin.Engine
	closers  []func() error
}

// New connects the configured store and builds the application. The
// returned App must be closed with Shutdown or Close.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", cfg.Timezone, err)
	}

	a := &App{
		cfg:    cfg,
		logger: logger,
		loc:    loc,
		checks: make(map[string]handler.ReadinessCheck),
	}

	if err := a.openStores(ctx); err != nil {
		a.Close()
		return nil, err
	}

	var cacheRepo service.CacheRepository
	if cfg.Redis.Enabled {
		client, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		a.closers = append(a.closers, client.Close)
		a.checks["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
		cacheRepo = repository.NewCacheRepository(client, logger)
		a.stores.UseRedisDrafts(client)
		logger.Info("redis enabled", zap.String("host", cfg.Redis.Host))
	}

	if err := a.buildServices(cacheRepo); err != nil {
		a.Close()
		return nil, err
	}
	if err := a.buildScheduler(); err != nil {
		a.Close()
		return nil, err
	}
	a.engine = a.routes()
	return a, nil
}

// NewWithStores builds the application on top of existing stores without
// connecting to external services.
func NewWithStores(cfg *config.Config, stores *Stores, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", cfg.Timezone, err)
	}
	a := &App{
		cfg:    cfg,
		logger: logger,
		loc:    loc,
		stores: stores,
		checks: make(map[string]handler.ReadinessCheck),
	}
	if err := a.buildServices(nil); err != nil {
		return nil, err
	}
	if err := a.buildScheduler(); err != nil {
		return nil, err
	}
	a.engine = a.routes()
	return a, nil
}

func (a *App) openStores(ctx context.Context) error {
	switch a.cfg.StoreDriver {
	case config.StoreMemory, "":
		stores, err := MemoryStores(time.Now(), a.loc)
		if err != nil {
			return fmt.Errorf("seed memory store: %w", err)
		}
		a.stores = stores
		a.logger.Info("using in-memory store")
		return nil
	case config.StorePostgres:
		db, err := database.NewPostgres(a.cfg.Database)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		a.closers = append(a.closers, db.Close)
		a.checks["postgres"] = db.PingContext
		if a.cfg.Database.AutoMigrate {
			migrator, err := database.NewMigrator(db, migrations.FS, ".", a.logger)
			if err != nil {
				return err
			}
			if err := migrator.Up(ctx); err != nil {
				return err
			}
		}
		a.stores = PostgresStores(db)
		a.logger.Info("using postgres store", zap.String("host", a.cfg.Database.Host), zap.String("database", a.cfg.Database.Name))
		return nil
	default:
		return fmt.Errorf("unknown store driver %q", a.cfg.StoreDriver)
	}
}

func (a *App) buildServices(cacheRepo service.CacheRepository) error {
	cfg := a.cfg
	logger := a.logger
	stores := a.stores
	validate := validator.New()

	metrics := service.NewMetricsService()
	notifications := service.NewNotificationService(metrics, logger)
	a.queue = jobs.NewQueue("notifications", notifications.Handle, jobs.QueueConfig{
		Workers:    cfg.Jobs.NotificationWorkers,
		MaxRetries: cfg.Jobs.NotificationRetries,
		RetryDelay: 2 * time.Second,
		Observer:   notifications.Observe,
		Logger:     logger,
	})

	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Catalog.CacheTTL, logger, cacheRepo != nil)
	catalog := service.NewCatalogService(stores.Teachers, stores.Subjects, cacheSvc, cfg.Catalog.CacheTTL, logger)

	wallets := service.NewWalletService(stores.Wallets, validate, metrics, cfg.Wallet.SettlementDelay, a.loc, logger)

	disk, err := storage.NewDisk(cfg.Storage.Dir)
	if err != nil {
		return fmt.Errorf("open storage dir: %w", err)
	}
	signer := storage.NewLinkSigner(cfg.Storage.LinkSecret, cfg.Storage.LinkTTL)

	a.services = &Services{
		Metrics: metrics,
		Catalog: catalog,
		Booking: service.NewBookingService(stores.Teachers, stores.Classes, stores.Drafts, a.queue, metrics, service.BookingOptions{
			WindowDays:     cfg.Booking.WindowDays,
			DraftTTL:       cfg.Booking.DraftTTL,
			MeetingBaseURL: cfg.Booking.MeetingBaseURL,
			Location:       a.loc,
		}, logger),
		Chat: service.NewChatService(stores.Teachers, stores.Conversations, service.NewChatHub(), metrics, service.ChatOptions{
			ReplyDelay: cfg.Chat.ReplyDelay,
			ReplyText:  cfg.Chat.ReplyText,
		}, logger),
		Schedule: service.NewScheduleService(stores.Classes, stores.Teachers, stores.Wallets, validate, service.ScheduleOptions{
			FeeWindow:  cfg.Schedule.CancellationFeeWindow,
			WindowDays: cfg.Booking.WindowDays,
			Location:   a.loc,
		}, logger),
		Profiles: service.NewProfileService(stores.Teachers, stores.Subjects, catalog, validate, logger),
		Wallets:  wallets,
		Auth: service.NewAuthService(stores.Users, stores.Sessions, stores.Teachers, stores.Wallets, catalog, validate, logger, service.AuthConfig{
			AccessTokenSecret: cfg.JWT.Secret,
			AccessTokenExpiry: cfg.JWT.Expiration,
			Issuer:            cfg.JWT.Issuer,
		}),
		Navigation:    service.NewNavigationService(),
		Notifications: notifications,
		Statements:    service.NewStatementLinks(wallets, disk, signer, cfg.APIPrefix, logger),
	}
	return nil
}

// Handler exposes the HTTP engine.
func (a *App) Handler() http.Handler {
	return a.engine
}

// Services exposes the domain services.
func (a *App) Services() *Services {
	return a.services
}

// Run serves HTTP and runs background work until ctx is cancelled, then
// shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	a.Start(ctx)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", a.cfg.Port),
		Handler:           a.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		a.logger.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", a.cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			a.Shutdown(context.Background())
			return fmt.Errorf("serve http: %w", err)
		}
	case <-ctx.Done():
	}

	a.logger.Info("shutting down", zap.Duration("timeout", a.cfg.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	a.Shutdown(shutdownCtx)
	if err != nil {
		return fmt.Errorf("shutdown http: %w", err)
	}
	return nil
}

// Start launches the notification workers and, when enabled, the cron scheduler.
func (a *App) Start(ctx context.Context) {
	a.queue.Start(ctx)
	if a.cron != nil {
		a.cron.Start()
	}
}

// Shutdown stops background work and releases connections.
func (a *App) Shutdown(ctx context.Context) {
	if a.cron != nil {
		stopped := a.cron.Stop()
		select {
		case <-stopped.Done():
		case <-ctx.Done():
			a.logger.Warn("cron jobs still running at shutdown")
		}
	}
	if a.services != nil {
		a.services.Chat.Close()
	}
	if a.queue != nil {
		a.queue.Stop()
	}
	a.Close()
}

// Close releases external connections.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("close resource", zap.Error(err))
		}
	}
	a.closers = nil
}
