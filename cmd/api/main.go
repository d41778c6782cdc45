package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/thiloilg/page-for-artists.com/internal/api/http"
	"github.com/thiloilg/page-for-artists.com/internal/api/http/handlers"
	"github.com/thiloilg/page-for-artists.com/internal/auth"
	"github.com/thiloilg/page-for-artists.com/internal/config"
	"github.com/thiloilg/page-for-artists.com/internal/directory"
	"github.com/thiloilg/page-for-artists.com/internal/events"
	"github.com/thiloilg/page-for-artists.com/internal/observability"
	"github.com/thiloilg/page-for-artists.com/internal/paypal"
	"github.com/thiloilg/page-for-artists.com/internal/persistence"
	"github.com/thiloilg/page-for-artists.com/internal/repository"
	"github.com/thiloilg/page-for-artists.com/internal/service"
	"github.com/thiloilg/page-for-artists.com/internal/worker"
	"github.com/thiloilg/page-for-artists.com/migrations"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), migrations.FS, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	var tokenCache paypal.TokenCache
	if redis.Enabled() {
		tokenCache = paypal.NewRedisTokenCache(redis.Client)
	}

	outbound := &http.Client{Timeout: cfg.App.OutboundTimeout()}
	paypalClient := paypal.NewClient(cfg.PayPal, outbound, tokenCache, logger)
	directoryClient := directory.NewClient(cfg.Strapi, outbound, logger)

	dispatcher := events.NewInMemoryDispatcher()
	var orphans service.OrphanRecorder
	var orphanLister worker.OrphanLister
	if pg.Enabled() {
		orphanRepo := repository.NewOrphanRepository(pg.PoolHandle())
		orphans = orphanRepo
		orphanLister = orphanRepo
	}
	worker.Start(ctx, worker.Config{
		Notifications:  service.NewNotificationService(dispatcher, orphans, logger),
		Orphans:        orphanLister,
		ReportInterval: cfg.Postgres.OrphanReportInterval(),
	}, logger)

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL(), cfg.Auth.RefreshTokenTTL())
	authService := service.NewAuthService(directoryClient, tokens, logger)
	subscriptionService := service.NewSubscriptionService(paypalClient, directoryClient, dispatcher, service.SubscriptionConfig{
		PlanID:    cfg.PayPal.PlanID,
		ReturnURL: cfg.App.PublicOrigin + cfg.App.RoutePrefix + "/handle-subscription-success",
		CancelURL: cfg.App.PublicOrigin + "/checkout",
	}, logger)
	dashboardService := service.NewDashboardService(directoryClient)

	metrics := observability.NewMetrics()
	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ErrorHandler: httptransport.ErrorHandler(logger),
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Prefix: cfg.App.RoutePrefix,
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, metrics, map[string]handlers.Dependency{
			"postgres": pg,
			"redis":    redis,
		}, logger),
		Auth:           handlers.NewAuthHandler(authService, cfg.Auth.RefreshCookieName, tokens.RefreshTTL()),
		Subscriptions:  handlers.NewSubscriptionHandler(subscriptionService, logger),
		Dashboard:      handlers.NewDashboardHandler(dashboardService),
		AuthMiddleware: auth.NewAuthMiddleware(authService.TokenManager()),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.Shutdown(); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
