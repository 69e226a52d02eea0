package handler

import (
	"encoding/json"
	"net/http"

	"github.com/cleanslate/cleanslate-api-go/internal/domain"
	"github.com/cleanslate/cleanslate-api-go/internal/service"

	"go.uber.org/zap"
)

// ============================================================
// User, UI and PWA state — /v1/user, /v1/ui, /v1/pwa
// ============================================================

func getUserHandler(svc *service.DeclutterService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/user")
		defer span.End()

		writeJSON(w, http.StatusOK, svc.User(ctx))
	}
}

func addSavingsHandler(svc *service.DeclutterService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/user/savings")
		defer span.End()

		var req struct {
			Amount float64 `json:"amount"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		user, err := svc.AddSavings(ctx, req.Amount)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		logger.Info("savings recorded",
			zap.Float64("amount", req.Amount),
			zap.String("account", UserEmailFromContext(ctx)),
		)
		writeJSON(w, http.StatusOK, user)
	}
}

func setSavingsGoalHandler(svc *service.DeclutterService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /v1/user/goal")
		defer span.End()

		var req struct {
			Goal float64 `json:"goal"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		user, err := svc.SetSavingsGoal(ctx, req.Goal)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		logger.Info("savings goal updated",
			zap.Float64("goal", req.Goal),
			zap.String("account", UserEmailFromContext(ctx)),
		)
		writeJSON(w, http.StatusOK, user)
	}
}

func updateUIHandler(svc *service.DeclutterService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /v1/ui")
		defer span.End()

		var patch domain.UIState
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		writeJSON(w, http.StatusOK, svc.UpdateUI(ctx, patch))
	}
}

func pwaInstallableHandler(svc *service.DeclutterService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/pwa/installable")
		defer span.End()

		var req struct {
			Installable bool `json:"installable"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		writeJSON(w, http.StatusOK, svc.SetPWAInstallable(ctx, req.Installable))
	}
}

func pwaInstalledHandler(svc *service.DeclutterService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/pwa/installed")
		defer span.End()

		var req struct {
			Installed bool `json:"installed"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		writeJSON(w, http.StatusOK, svc.SetPWAInstalled(ctx, req.Installed))
	}
}
