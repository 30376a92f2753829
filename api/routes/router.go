package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/garmentz-backend/api/controllers"
	ordercontrollers "github.com/angelmondragon/garmentz-backend/api/controllers/orders"
	quotecontrollers "github.com/angelmondragon/garmentz-backend/api/controllers/quotes"
	suppliercontrollers "github.com/angelmondragon/garmentz-backend/api/controllers/suppliers"
	"github.com/angelmondragon/garmentz-backend/api/middleware"
	"github.com/angelmondragon/garmentz-backend/internal/assignments"
	"github.com/angelmondragon/garmentz-backend/internal/orders"
	"github.com/angelmondragon/garmentz-backend/internal/quotes"
	"github.com/angelmondragon/garmentz-backend/internal/suppliers"
	"github.com/angelmondragon/garmentz-backend/pkg/config"
	"github.com/angelmondragon/garmentz-backend/pkg/db"
	"github.com/angelmondragon/garmentz-backend/pkg/enums"
	"github.com/angelmondragon/garmentz-backend/pkg/logger"
	"github.com/angelmondragon/garmentz-backend/pkg/metrics"
	"github.com/angelmondragon/garmentz-backend/pkg/redis"
)

// Services groups the domain services mounted on the admin API.
type Services struct {
	Quotes      quotes.Service
	Suppliers   suppliers.Service
	Assignments assignments.Service
	Orders      orders.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	gatherer prometheus.Gatherer,
	httpMetrics *metrics.HTTPMetrics,
	svc Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(httpMetrics),
	)

	ready := map[string]controllers.Pinger{}
	if dbP != nil {
		ready["db"] = dbP
	}
	if redisClient != nil {
		ready["redis"] = redisClient
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, ready))
	})
	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	writeLimit := func(next http.Handler) http.Handler { return next }
	if redisClient != nil {
		policy := middleware.NewRateLimitPolicy("admin-writes", cfg.Limits.Window, cfg.Limits.AdminWrites)
		writeLimit = middleware.RateLimit(policy, redisClient, logg)
	}

	topK := cfg.Matching.TopK

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireRole(string(enums.ProfileRoleAdmin), logg))

		r.Route("/quotes", func(r chi.Router) {
			r.Get("/", quotecontrollers.List(svc.Quotes, svc.Suppliers, logg))
			r.With(writeLimit).Post("/auto-assign", quotecontrollers.AutoAssign(svc.Assignments, logg))
			r.Route("/{quoteId}", func(r chi.Router) {
				r.Get("/matches", quotecontrollers.Matches(svc.Quotes, svc.Suppliers, topK, logg))
				r.With(writeLimit).Post("/assign", quotecontrollers.Assign(svc.Assignments, logg))
				r.With(writeLimit).Post("/quick-assign", quotecontrollers.QuickAssign(svc.Assignments, logg))
			})
		})
		r.Get("/suppliers", suppliercontrollers.List(svc.Suppliers, logg))
		r.With(writeLimit).Post("/orders/{orderId}/status", ordercontrollers.UpdateStatus(svc.Orders, logg))
	})

	return r
}
