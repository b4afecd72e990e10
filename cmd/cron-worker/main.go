package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/shipfee-backend/internal/cron"
	"github.com/angelmondragon/shipfee-backend/internal/orders"
	"github.com/angelmondragon/shipfee-backend/internal/products"
	"github.com/angelmondragon/shipfee-backend/internal/reconcile"
	"github.com/angelmondragon/shipfee-backend/internal/shipping"
	"github.com/angelmondragon/shipfee-backend/internal/vendors"
	"github.com/angelmondragon/shipfee-backend/internal/zones"
	"github.com/angelmondragon/shipfee-backend/pkg/config"
	"github.com/angelmondragon/shipfee-backend/pkg/db"
	"github.com/angelmondragon/shipfee-backend/pkg/instance"
	"github.com/angelmondragon/shipfee-backend/pkg/logger"
	"github.com/angelmondragon/shipfee-backend/pkg/metrics"
	"github.com/angelmondragon/shipfee-backend/pkg/migrate"
	"github.com/angelmondragon/shipfee-backend/pkg/outbox"
	"github.com/angelmondragon/shipfee-backend/pkg/redis"
)

func main() {
	once := flag.Bool("once", false, "run a single cycle and exit")
	jobsFlag := flag.String("jobs", "", "comma separated job names for -once (default: all)")
	flag.Parse()

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

	shippingMetrics := metrics.NewShippingMetrics(prometheus.DefaultRegisterer)
	jobMetrics := metrics.NewCronJobMetrics(prometheus.DefaultRegisterer)

	registry, err := buildRegistry(cfg, logg, dbClient, shippingMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to build cron jobs", err)
		os.Exit(1)
	}

	env := cfg.App.Env
	if env == "" {
		env = "local"
	}
	lock, err := cron.NewRedisLock(redisClient, redisClient.LockKey("cron-worker", env), 0)
	if err != nil {
		logg.Error(context.Background(), "failed to create cron lock", err)
		os.Exit(1)
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: registry,
		Lock:     lock,
		Metrics:  jobMetrics,
		Interval: cfg.Reconcile.Interval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cron service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
		"instance":    instance.ID(),
	})

	if *once {
		logg.Info(ctx, "running single cron cycle")
		if err := service.RunOnce(ctx, splitJobs(*jobsFlag)...); err != nil {
			logg.Error(ctx, "cron cycle failed", err)
			os.Exit(1)
		}
		return
	}

	logg.Info(ctx, "starting cron worker")
	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "cron worker shutting down gracefully")
}

func buildRegistry(cfg *config.Config, logg *logger.Logger, dbClient *db.Client, shippingMetrics *metrics.ShippingMetrics) (*cron.Registry, error) {
	conn := dbClient.DB()
	emitter := outbox.NewService(outbox.NewRepository(conn), logg)
	zoneRepo := zones.NewRepository(conn)
	vendorRepo := vendors.NewRepository(conn)
	ordersRepo := orders.NewRepository(conn)

	finder, err := zones.NewFinder(zoneRepo)
	if err != nil {
		return nil, err
	}
	calculator, err := shipping.NewCalculator(finder, vendorRepo, products.NewRepository(conn), cfg.Shipping, shippingMetrics, logg)
	if err != nil {
		return nil, err
	}
	reconciler, err := reconcile.NewService(ordersRepo, calculator, dbClient, emitter, cfg.Shipping.Tolerance(), shippingMetrics, logg)
	if err != nil {
		return nil, err
	}
	zoneService, err := zones.NewService(zoneRepo, vendorRepo, dbClient, emitter, logg)
	if err != nil {
		return nil, err
	}

	reconcileJob, err := cron.NewShippingReconcileJob(cron.ShippingReconcileJobParams{
		Logger:     logg,
		Orders:     ordersRepo,
		Reconciler: reconciler,
		Lookback:   cfg.Reconcile.Lookback,
		BatchSize:  cfg.Reconcile.BatchSize,
		AutoFix:    cfg.Reconcile.AutoFix,
	})
	if err != nil {
		return nil, err
	}
	healJob, err := cron.NewZoneRegionHealJob(cron.ZoneRegionHealJobParams{
		Logger: logg,
		Zones:  zoneRepo,
		Healer: zoneService,
	})
	if err != nil {
		return nil, err
	}
	retentionJob, err := cron.NewOutboxRetentionJob(cron.OutboxRetentionJobParams{
		Logger:     logg,
		DB:         dbClient,
		Repository: outbox.NewRepository(conn),
	})
	if err != nil {
		return nil, err
	}

	return cron.NewRegistry(reconcileJob, healJob, retentionJob)
}

func splitJobs(raw string) []string {
	var names []string
	for _, part := range strings.Split(raw, ",") {
		if name := strings.TrimSpace(part); name != "" {
			names = append(names, name)
		}
	}
	return names
}
