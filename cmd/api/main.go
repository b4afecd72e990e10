package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/shipfee-backend/api/routes"
	"github.com/angelmondragon/shipfee-backend/internal/checkout"
	"github.com/angelmondragon/shipfee-backend/internal/orders"
	"github.com/angelmondragon/shipfee-backend/internal/products"
	"github.com/angelmondragon/shipfee-backend/internal/reconcile"
	"github.com/angelmondragon/shipfee-backend/internal/shipping"
	"github.com/angelmondragon/shipfee-backend/internal/vendors"
	"github.com/angelmondragon/shipfee-backend/internal/zones"
	"github.com/angelmondragon/shipfee-backend/pkg/config"
	"github.com/angelmondragon/shipfee-backend/pkg/db"
	"github.com/angelmondragon/shipfee-backend/pkg/logger"
	"github.com/angelmondragon/shipfee-backend/pkg/metrics"
	"github.com/angelmondragon/shipfee-backend/pkg/migrate"
	"github.com/angelmondragon/shipfee-backend/pkg/outbox"
	"github.com/angelmondragon/shipfee-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

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

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	shippingMetrics := metrics.NewShippingMetrics(registry)

	conn := dbClient.DB()
	emitter := outbox.NewService(outbox.NewRepository(conn), logg)
	zoneRepo := zones.NewRepository(conn)
	vendorRepo := vendors.NewRepository(conn)
	ordersRepo := orders.NewRepository(conn)

	finder, err := zones.NewFinder(zoneRepo)
	requireResource(logg, "zone finder", err)
	calculator, err := shipping.NewCalculator(finder, vendorRepo, products.NewRepository(conn), cfg.Shipping, shippingMetrics, logg)
	requireResource(logg, "shipping calculator", err)
	zoneService, err := zones.NewService(zoneRepo, vendorRepo, dbClient, emitter, logg)
	requireResource(logg, "zone service", err)
	vendorService, err := vendors.NewService(vendorRepo, zoneService, logg)
	requireResource(logg, "vendor service", err)
	reconcileService, err := reconcile.NewService(ordersRepo, calculator, dbClient, emitter, cfg.Shipping.Tolerance(), shippingMetrics, logg)
	requireResource(logg, "reconcile service", err)
	checkoutService, err := checkout.NewService(dbClient, ordersRepo, calculator, emitter, logg)
	requireResource(logg, "checkout service", err)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	id := os.Getenv("DYNO")
	if id == "" {
		id = "local"
	}
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": id,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			metrics.NewHTTPMetrics(registry),
			promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
			calculator,
			zoneService,
			vendorService,
			reconcileService,
			checkoutService,
		),
		ReadHeaderTimeout: 10 * time.Second,
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
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
	case <-sigCtx.Done():
		logg.Info(ctx, "api server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "api server shutdown failed", err)
		}
	}
}

func requireResource(logg *logger.Logger, name string, err error) {
	if err == nil {
		return
	}
	logg.Error(logg.WithField(context.Background(), "resource", name), "failed to build "+name, err)
	os.Exit(1)
}
