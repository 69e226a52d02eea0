package handler

import (
	"encoding/json"
	"net/http"

	"github.com/cleanslate/cleanslate-api-go/internal/domain"
	"github.com/cleanslate/cleanslate-api-go/internal/service"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Assistant — POST /v1/assistant
// ============================================================

func assistantHandler(svc *service.Assistant, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/assistant")
		defer span.End()

		// An empty message is valid: it opens the conversation and gets
		// the welcome reply.
		var req domain.ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		span.SetAttributes(attribute.Int("message.length", len(req.Message)))

		resp := svc.Respond(ctx, req)
		writeJSON(w, http.StatusOK, resp)
	}
}
