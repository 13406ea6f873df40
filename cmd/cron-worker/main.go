package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Tag-Take/tagandtake-backend-sub000/internal/cron"
	"github.com/Tag-Take/tagandtake-backend-sub000/internal/items"
	"github.com/Tag-Take/tagandtake-backend-sub000/internal/listings"
	"github.com/Tag-Take/tagandtake-backend-sub000/internal/notifications"
	"github.com/Tag-Take/tagandtake-backend-sub000/internal/stores"
	"github.com/Tag-Take/tagandtake-backend-sub000/internal/transfers"
	"github.com/Tag-Take/tagandtake-backend-sub000/pkg/config"
	"github.com/Tag-Take/tagandtake-backend-sub000/pkg/db"
	"github.com/Tag-Take/tagandtake-backend-sub000/pkg/logger"
	"github.com/Tag-Take/tagandtake-backend-sub000/pkg/metrics"
	"github.com/Tag-Take/tagandtake-backend-sub000/pkg/migrate"
	"github.com/Tag-Take/tagandtake-backend-sub000/pkg/pricing"
	"github.com/Tag-Take/tagandtake-backend-sub000/pkg/redis"
	pkgstripe "github.com/Tag-Take/tagandtake-backend-sub000/pkg/stripe"
)

const lockKeyFormat = "tt:cron-worker:lock:%s"

func main() {
	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "cron-worker"

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
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
	listingsRepo := listings.NewRepository(gdb)

	listingsService, err := listings.NewService(listings.ServiceParams{
		Tx:        dbClient,
		Repo:      listingsRepo,
		Items:     items.NewRepository(gdb),
		Stores:    stores.NewRepository(gdb),
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

	transfersService, err := transfers.NewService(transfers.ServiceParams{
		Repo:     transfers.NewRepository(gdb),
		Payments: transfers.NewPaymentClient(stripeClient),
		Logger:   logg,
		Cfg:      cfg.Cron,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create transfers service", err)
		os.Exit(1)
	}

	storageFeeJob, err := cron.NewStorageFeeJob(cron.StorageFeeJobParams{
		Logger:    logg,
		Repo:      listingsRepo,
		Lifecycle: listingsService,
		Notifier:  notifier,
		Cfg:       cfg.Recall,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create storage fee job", err)
		os.Exit(1)
	}

	transferRetryJob, err := cron.NewTransferRetryJob(cron.TransferRetryJobParams{
		Logger:    logg,
		Transfers: transfersService,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create transfer retry job", err)
		os.Exit(1)
	}

	metricsCollector := metrics.NewCronJobMetrics(prometheus.DefaultRegisterer)
	lock, err := cron.NewRedisLock(redisClient, lockKey(cfg.App.Env), 0)
	if err != nil {
		logg.Error(context.Background(), "failed to create cron lock", err)
		os.Exit(1)
	}

	registry := cron.NewRegistry(storageFeeJob, transferRetryJob)
	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: registry,
		Lock:     lock,
		Metrics:  metricsCollector,
		Interval: cfg.Cron.Interval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cron service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
	})
	logg.Info(ctx, "starting cron worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "cron worker shutting down gracefully")
}

func lockKey(env string) string {
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf(lockKeyFormat, env)
}
