package handler

import (
	"encoding/json"
	"net/http"

	"github.com/cleanslate/cleanslate-api-go/internal/domain"
	"github.com/cleanslate/cleanslate-api-go/internal/service"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Subscriptions — /v1/subscriptions
// ============================================================

func listSubscriptionsHandler(svc *service.DeclutterService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/subscriptions")
		defer span.End()

		q := service.SubscriptionQuery{
			Search: r.URL.Query().Get("search"),
			Status: r.URL.Query().Get("status"),
			SortBy: r.URL.Query().Get("sort"),
		}

		subs := svc.ListSubscriptions(ctx, q)
		writeJSON(w, http.StatusOK, map[string]any{"subscriptions": subs})
	}
}

func prioritySubscriptionsHandler(svc *service.DeclutterService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/subscriptions/priority")
		defer span.End()

		subs := svc.PrioritySubscriptions(ctx)
		writeJSON(w, http.StatusOK, map[string]any{"subscriptions": subs})
	}
}

func cancelSubscriptionHandler(svc *service.DeclutterService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/subscriptions/{subscriptionId}/cancel")
		defer span.End()

		id := chi.URLParam(r, "subscriptionId")
		span.SetAttributes(attribute.String("subscription.id", id))

		sub, err := svc.CancelSubscription(ctx, id)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, sub)
	}
}

func pauseSubscriptionHandler(svc *service.DeclutterService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/subscriptions/{subscriptionId}/pause")
		defer span.End()

		id := chi.URLParam(r, "subscriptionId")
		span.SetAttributes(attribute.String("subscription.id", id))

		sub, err := svc.PauseSubscription(ctx, id)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, sub)
	}
}

func activateSubscriptionHandler(svc *service.DeclutterService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/subscriptions/{subscriptionId}/activate")
		defer span.End()

		id := chi.URLParam(r, "subscriptionId")
		span.SetAttributes(attribute.String("subscription.id", id))

		sub, err := svc.ActivateSubscription(ctx, id)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, sub)
	}
}

func importSubscriptionsHandler(svc *service.DeclutterService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/subscriptions/import")
		defer span.End()

		var req struct {
			Subscriptions []domain.ImportedSubscription `json:"subscriptions"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if len(req.Subscriptions) == 0 {
			writeError(w, http.StatusBadRequest, "subscriptions is required")
			return
		}

		added, skipped, err := svc.ImportSubscriptions(ctx, req.Subscriptions)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"added":   added,
			"skipped": skipped,
		})
	}
}

func detectSubscriptionsHandler(det *service.Detector, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/subscriptions/detect")
		defer span.End()

		var req struct {
			Transactions []domain.BankTransaction `json:"transactions"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if len(req.Transactions) == 0 {
			writeError(w, http.StatusBadRequest, "transactions is required")
			return
		}

		candidates := det.Detect(ctx, req.Transactions)
		writeJSON(w, http.StatusOK, map[string]any{"candidates": candidates})
	}
}
