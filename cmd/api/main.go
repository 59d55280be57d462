// @title Events API
// @version 1.0
// @description CRUD service for scheduled events with soft delete and optional pagination.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"eventsapi/config"
	"eventsapi/internal/adapters/auth"
	"eventsapi/internal/adapters/cache"
	"eventsapi/internal/adapters/email"
	"eventsapi/internal/adapters/messaging"
	deliveryhttp "eventsapi/internal/delivery/http"
	"eventsapi/internal/delivery/http/controllers"
	"eventsapi/internal/domain"
	"eventsapi/internal/repository/postgres"
	"eventsapi/internal/services"
)

const (
	dbPingTimeout   = 3 * time.Second
	shutdownTimeout = 10 * time.Second
)

// App holds the wired server and the resources it must release on shutdown.
type App struct {
	Config  *config.Config
	Logger  *slog.Logger
	Server  *http.Server
	DB      *sql.DB
	closers []io.Closer
}

// openDB is replaced in tests.
var openDB = sql.Open

func main() {
	os.Exit(run())
}

// run returns the process exit code so deferred cleanup completes before main exits.
func run() int {
	cfg, err := config.Load()
	if err != nil {
		log.Printf("config: %v", err)
		return 1
	}
	logger := config.NewLogger(cfg.Environment, cfg.LogLevel)
	slog.SetDefault(logger)

	db, err := openDB("postgres", cfg.DBUrl)
	if err != nil {
		logger.Error("db open failed", "err", err)
		return 1
	}
	defer db.Close()

	{
		ctx, cancel := context.WithTimeout(context.Background(), dbPingTimeout)
		err := db.PingContext(ctx)
		cancel()
		if err != nil {
			logger.Error("db ping failed", "err", err)
			return 1
		}
	}

	if cfg.DBAutoMigrate {
		if err := postgres.Migrate(context.Background(), db); err != nil {
			logger.Error("db migrate failed", "err", err)
			return 1
		}
		logger.Info("db schema ready")
	}

	app, err := NewApp(context.Background(), cfg, logger, db)
	if err != nil {
		logger.Error("app init failed", "err", err)
		return 1
	}
	defer app.Close()

	if err := app.Run(); err != nil {
		logger.Error("server crashed", "err", err)
		return 1
	}
	return 0
}

// NewApp wires repositories, adapters, services and transport.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger, db *sql.DB) (*App, error) {
	app := &App{Config: cfg, Logger: logger, DB: db}

	// 1) Infrastructure
	repo := postgres.NewEventRepository(db)

	var eventCache domain.EventCache
	if cfg.RedisURL != "" {
		rc, err := cache.NewRedis(ctx, cfg.RedisURL, cfg.CacheTTL)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("redis cache: %w", err)
		}
		app.closers = append(app.closers, rc)
		eventCache = rc
		logger.Info("redis cache ready", "ttl", cfg.CacheTTL)
	} else {
		logger.Warn("REDIS_URL empty: event lookups are not cached")
	}

	var notifiers []domain.EventNotifier
	if cfg.RabbitURL != "" {
		pub, err := messaging.NewPublisher(cfg.RabbitURL, cfg.RabbitExchange)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("rabbit publisher: %w", err)
		}
		app.closers = append(app.closers, pub)
		notifiers = append(notifiers, pub)
		logger.Info("rabbit publisher ready", "exchange", cfg.RabbitExchange)
	} else {
		logger.Warn("RABBIT_URL empty: event changes will not be published")
	}

	if len(cfg.Mail.NotifyTo) > 0 {
		mailer, err := email.NewMailer(email.MailerConfig{
			Provider:    cfg.Mail.Provider,
			FromAddress: cfg.Mail.FromAddress,
			FromName:    cfg.Mail.FromName,
			SES: email.SESConfig{
				Region:             cfg.Mail.AWSRegion,
				AccessKeyID:        cfg.Mail.AWSAccessKeyID,
				SecretAccessKey:    cfg.Mail.AWSSecretAccessKey,
				InsecureSkipVerify: cfg.Mail.InsecureSkipVerify,
			},
		}, logger)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("mailer: %w", err)
		}
		notifiers = append(notifiers, services.NewEmailNotifier(mailer, email.NewTemplateRenderer(), cfg.Mail.NotifyTo))
		logger.Info("email notifications enabled", "provider", cfg.Mail.Provider, "recipients", len(cfg.Mail.NotifyTo))
	}

	// 2) Application
	svc := services.NewEventService(repo, eventCache, services.NewMultiNotifier(notifiers...), logger, cfg.ServiceTimeout)

	// 3) Transport
	routerCfg := deliveryhttp.RouterConfig{
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	}
	if cfg.RateLimitEnabled() {
		routerCfg.RateLimitRequests = cfg.RateLimitRequests
		routerCfg.RateLimitWindow = cfg.RateLimitWindow
	}
	if cfg.AuthJWTSecret != "" {
		routerCfg.TokenVerifier = auth.NewJWTVerifier(cfg.AuthJWTSecret)
	} else {
		logger.Warn("AUTH_JWT_SECRET empty: write routes are open")
	}
	handler := deliveryhttp.NewRouter(logger,
		controllers.NewEventController(logger, svc),
		controllers.NewHealthController(logger, db),
		routerCfg,
	)

	// 4) Server
	app.Server = &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}
	return app, nil
}

// Run serves until SIGINT or SIGTERM, then shuts down gracefully.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info("listening", "addr", a.Server.Addr, "env", a.Config.Environment)
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.Logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// Close releases cache and broker connections. The database is closed by main.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			a.Logger.Warn("close failed", "err", err)
		}
	}
	a.closers = nil
}
