package handler

import (
	"net/http"
	"time"

	"github.com/cleanslate/cleanslate-api-go/internal/domain"
	"github.com/cleanslate/cleanslate-api-go/internal/infra/observability"
	"github.com/cleanslate/cleanslate-api-go/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

// Services bundles everything the router needs.
type Services struct {
	Declutter *service.DeclutterService
	Analytics *service.Analytics
	Assistant *service.Assistant
	Detector  *service.Detector
	Auth      *service.AuthService
}

// NewRouter creates the HTTP router with all routes and middleware.
// Routes follow the API contract defined for the CleanSlate frontend.
func NewRouter(svcs Services, metrics *observability.Metrics, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.MetricsMiddleware(metrics))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler(svcs.Declutter))
	r.Get("/readyz", readyzHandler())
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {

		// Subscriptions
		r.Get("/subscriptions", listSubscriptionsHandler(svcs.Declutter, logger))
		r.Get("/subscriptions/priority", prioritySubscriptionsHandler(svcs.Declutter, logger))
		r.Post("/subscriptions/import", importSubscriptionsHandler(svcs.Declutter, logger))
		r.Post("/subscriptions/detect", detectSubscriptionsHandler(svcs.Detector, logger))
		r.Post("/subscriptions/{subscriptionId}/cancel", cancelSubscriptionHandler(svcs.Declutter, logger))
		r.Post("/subscriptions/{subscriptionId}/pause", pauseSubscriptionHandler(svcs.Declutter, logger))
		r.Post("/subscriptions/{subscriptionId}/activate", activateSubscriptionHandler(svcs.Declutter, logger))

		// Emails
		r.Get("/emails", listEmailsHandler(svcs.Declutter, logger))
		r.Post("/emails/{emailId}/unsubscribe", unsubscribeEmailHandler(svcs.Declutter, logger))
		r.Post("/emails/{emailId}/resubscribe", resubscribeEmailHandler(svcs.Declutter, logger))
		r.Delete("/emails/{emailId}", archiveEmailHandler(svcs.Declutter, logger))

		// Analytics
		r.Get("/analytics/summary", analyticsSummaryHandler(svcs.Analytics, logger))
		r.Get("/analytics/insights", analyticsInsightsHandler(svcs.Analytics, logger))
		r.Get("/analytics/trends", analyticsTrendsHandler(svcs.Analytics, logger))

		// Assistant
		r.Post("/assistant", assistantHandler(svcs.Assistant, logger))

		// User & UI
		r.Get("/user", getUserHandler(svcs.Declutter, logger))
		r.Put("/ui", updateUIHandler(svcs.Declutter, logger))
		r.Post("/pwa/installable", pwaInstallableHandler(svcs.Declutter, logger))
		r.Post("/pwa/installed", pwaInstalledHandler(svcs.Declutter, logger))

		// Metrics snapshot
		r.Get("/metrics/engine", engineMetricsHandler(metrics))

		// Auth
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authRegisterHandler(svcs.Auth, logger))
			r.Post("/login", authLoginHandler(svcs.Auth, logger))
		})

		// Profile mutations require a valid token.
		r.Group(func(r chi.Router) {
			r.Use(JWTAuthMiddleware(svcs.Auth, logger))
			r.Post("/user/savings", addSavingsHandler(svcs.Declutter, logger))
			r.Put("/user/goal", setSavingsGoalHandler(svcs.Declutter, logger))
		})
	})

	return r
}

// ============================================================
// Operational
// ============================================================

func healthzHandler(svc *service.DeclutterService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		now := time.Now().Format(time.RFC3339)

		start := time.Now()
		state := svc.State(r.Context())
		latency := time.Since(start).Milliseconds()

		status := "healthy"
		if len(state.Subscriptions) == 0 && len(state.Emails) == 0 {
			status = "degraded"
		}

		services := []domain.ServiceHealth{
			{Name: "cleanslate-api", Status: "healthy", LatencyMs: 0, LastChecked: now},
			{Name: "state-store", Status: status, LatencyMs: latency, LastChecked: now},
		}

		overall := "healthy"
		for _, s := range services {
			if s.Status == "degraded" {
				overall = "degraded"
			}
		}

		writeJSON(w, http.StatusOK, domain.HealthStatus{
			Status:   overall,
			Services: services,
		})
	}
}

func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func engineMetricsHandler(metrics *observability.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, metrics.GetEngineSnapshot())
	}
}
