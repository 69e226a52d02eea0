package handler

import (
	"net/http"

	"github.com/cleanslate/cleanslate-api-go/internal/service"

	"go.uber.org/zap"
)

// ============================================================
// Analytics — /v1/analytics
// ============================================================

func analyticsSummaryHandler(svc *service.Analytics, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/analytics/summary")
		defer span.End()

		writeJSON(w, http.StatusOK, svc.Summary(ctx))
	}
}

func analyticsInsightsHandler(svc *service.Analytics, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/analytics/insights")
		defer span.End()

		insights := svc.Insights(ctx)
		writeJSON(w, http.StatusOK, map[string]any{"insights": insights})
	}
}

func analyticsTrendsHandler(svc *service.Analytics, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/analytics/trends")
		defer span.End()

		summary := svc.Summary(ctx)
		writeJSON(w, http.StatusOK, summary.Trends)
	}
}
