package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/shipfee-backend/api/controllers"
	"github.com/angelmondragon/shipfee-backend/api/middleware"
	checkoutsvc "github.com/angelmondragon/shipfee-backend/internal/checkout"
	"github.com/angelmondragon/shipfee-backend/internal/reconcile"
	"github.com/angelmondragon/shipfee-backend/internal/shipping"
	"github.com/angelmondragon/shipfee-backend/internal/vendors"
	"github.com/angelmondragon/shipfee-backend/internal/zones"
	"github.com/angelmondragon/shipfee-backend/pkg/config"
	"github.com/angelmondragon/shipfee-backend/pkg/db"
	"github.com/angelmondragon/shipfee-backend/pkg/enums"
	"github.com/angelmondragon/shipfee-backend/pkg/logger"
	"github.com/angelmondragon/shipfee-backend/pkg/metrics"
	"github.com/angelmondragon/shipfee-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	httpMetrics *metrics.HTTPMetrics,
	metricsHandler http.Handler,
	calculator *shipping.Calculator,
	zoneService zones.Service,
	vendorService vendors.Service,
	reconcileService reconcile.Service,
	checkoutService checkoutsvc.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.CORS(cfg.HTTP.CORSOrigins),
		httpMetrics.Middleware,
		middleware.Logging(logg),
	)

	calculatePolicy := middleware.NewRateLimitPolicy(
		"calculate",
		cfg.HTTP.CalculateRateWindow,
		cfg.HTTP.CalculateRateLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})
	if metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", metricsHandler)
	}

	// Idempotency is attached inline so it sees the fully matched route pattern.
	idempotent := middleware.Idempotency(redisClient, cfg.Redis.IdempotencyTTL, logg)

	r.Route("/api/v1", func(r chi.Router) {
		r.With(middleware.RateLimit(calculatePolicy, redisClient, logg)).Post("/shipping/calculate", controllers.CalculateShipping(calculator, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))

			r.With(idempotent).Post("/checkout", controllers.Checkout(checkoutService, logg))

			r.Route("/vendor", func(r chi.Router) {
				r.Use(middleware.RequireRole(logg, enums.RoleVendor))
				r.Route("/shipping-zones", func(r chi.Router) {
					r.Get("/", controllers.VendorListZones(zoneService, logg))
					r.Post("/", controllers.VendorCreateZone(zoneService, logg))
					r.Get("/{zoneId}", controllers.VendorGetZone(zoneService, logg))
					r.Put("/{zoneId}", controllers.VendorUpdateZone(zoneService, logg))
					r.Delete("/{zoneId}", controllers.VendorDeleteZone(zoneService, logg))
				})
				r.Get("/shipping-preferences", controllers.VendorShippingPreferences(vendorService, logg))
				r.Put("/shipping-preferences", controllers.VendorUpdateShippingPreferences(vendorService, logg))
			})
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireRole(logg, enums.RoleAdmin))
		r.Route("/shipping", func(r chi.Router) {
			r.Get("/diagnose/{orderId}", controllers.AdminDiagnoseShipping(reconcileService, logg))
			r.With(idempotent).Post("/fix/{orderId}", controllers.AdminFixShipping(reconcileService, logg))
		})
	})

	return r
}
