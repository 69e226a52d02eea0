package handler

import (
	"net/http"

	"github.com/cleanslate/cleanslate-api-go/internal/service"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Email sources — /v1/emails
// ============================================================

func listEmailsHandler(svc *service.DeclutterService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/emails")
		defer span.End()

		emails := svc.ListEmails(ctx)
		writeJSON(w, http.StatusOK, map[string]any{"emails": emails})
	}
}

func unsubscribeEmailHandler(svc *service.DeclutterService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/emails/{emailId}/unsubscribe")
		defer span.End()

		id := chi.URLParam(r, "emailId")
		span.SetAttributes(attribute.String("email.id", id))

		email, err := svc.UnsubscribeEmail(ctx, id)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, email)
	}
}

func resubscribeEmailHandler(svc *service.DeclutterService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/emails/{emailId}/resubscribe")
		defer span.End()

		id := chi.URLParam(r, "emailId")
		span.SetAttributes(attribute.String("email.id", id))

		email, err := svc.ResubscribeEmail(ctx, id)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, email)
	}
}

func archiveEmailHandler(svc *service.DeclutterService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/emails/{emailId}")
		defer span.End()

		id := chi.URLParam(r, "emailId")
		span.SetAttributes(attribute.String("email.id", id))

		if err := svc.ArchiveEmail(ctx, id); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
