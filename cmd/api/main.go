package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"

	"github.com/Tag-Take/tagandtake-backend-sub000/api/routes"
	"github.com/Tag-Take/tagandtake-backend-sub000/internal/items"
	"github.com/Tag-Take/tagandtake-backend-sub000/internal/listings"
	"github.com/Tag-Take/tagandtake-backend-sub000/internal/notifications"
	"github.com/Tag-Take/tagandtake-backend-sub000/internal/stores"
	"github.com/Tag-Take/tagandtake-backend-sub000/internal/supplies"
	"github.com/Tag-Take/tagandtake-backend-sub000/internal/transfers"
	stripewebhook "github.com/Tag-Take/tagandtake-backend-sub000/internal/webhooks/stripe"
	"github.com/Tag-Take/tagandtake-backend-sub000/pkg/config"
	"github.com/Tag-Take/tagandtake-backend-sub000/pkg/db"
	"github.com/Tag-Take/tagandtake-backend-sub000/pkg/logger"
	"github.com/Tag-Take/tagandtake-backend-sub000/pkg/migrate"
	"github.com/Tag-Take/tagandtake-backend-sub000/pkg/pricing"
	"github.com/Tag-Take/tagandtake-backend-sub000/pkg/redis"
	pkgstripe "github.com/Tag-Take/tagandtake-backend-sub000/pkg/stripe"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	stripeClient, err := pkgstripe.NewClient(context.Background(), cfg.Stripe, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap stripe client", err)
		os.Exit(1)
	}

	pricer, err := pricing.NewEngine(pricing.Config{
		PlatformCommissionRate: cfg.Pricing.PlatformCommissionRate,
		PlatformFlatFee:        cfg.Pricing.PlatformFlatFee,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create pricing engine", err)
		os.Exit(1)
	}

	notifier, err := notifications.NewLogNotifier(logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create notifier", err)
		os.Exit(1)
	}

	gdb := dbClient.DB()
	itemsRepo := items.NewRepository(gdb)
	listingsRepo := listings.NewRepository(gdb)
	storesRepo := stores.NewRepository(gdb)
	suppliesRepo := supplies.NewRepository(gdb)
	transfersRepo := transfers.NewRepository(gdb)

	itemsService, err := items.NewService(items.ServiceParams{Repo: itemsRepo})
	if err != nil {
		logg.Error(context.Background(), "failed to create items service", err)
		os.Exit(1)
	}

	listingsService, err := listings.NewService(listings.ServiceParams{
		Tx:        dbClient,
		Repo:      listingsRepo,
		Items:     itemsRepo,
		Stores:    storesRepo,
		Deadlines: stores.NewDeadlineCalculator(cfg.Recall),
		Pricer:    pricer,
		Notifier:  notifier,
		Logger:    logg,
		RecallCfg: cfg.Recall,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create listings service", err)
		os.Exit(1)
	}

	suppliesService, err := supplies.NewService(supplies.ServiceParams{
		Repo:   suppliesRepo,
		Stores: storesRepo,
		Logger: logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create supplies service", err)
		os.Exit(1)
	}

	transfersService, err := transfers.NewService(transfers.ServiceParams{
		Repo:     transfersRepo,
		Payments: transfers.NewPaymentClient(stripeClient),
		Logger:   logg,
		Cfg:      cfg.Cron,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create transfers service", err)
		os.Exit(1)
	}

	webhookService, err := stripewebhook.NewService(stripewebhook.ServiceParams{
		Tx:           dbClient,
		Repo:         stripewebhook.NewRepository(gdb),
		ListingsRepo: listingsRepo,
		Listings:     listingsService,
		Supplies:     suppliesService,
		Stores:       storesRepo,
		Transfers:    transfersService,
		Pricer:       pricer,
		Notifier:     notifier,
		Logger:       logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create webhook service", err)
		os.Exit(1)
	}

	webhookGuard, err := stripewebhook.NewIdempotencyGuard(redisClient, cfg.Stripe.WebhookEventTTL, "stripe-webhook")
	if err != nil {
		logg.Error(context.Background(), "failed to create webhook idempotency guard", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			itemsService,
			listingsService,
			suppliesService,
			stripeClient,
			webhookService,
			webhookGuard,
		),
	}

	shutdownCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-shutdownCtx.Done():
		logg.Info(ctx, "shutdown signal received, draining connections")
		drainCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(drainCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
			os.Exit(1)
		}
	}

	logg.Info(ctx, "api server shut down gracefully")
}
