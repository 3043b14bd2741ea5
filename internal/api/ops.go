package api

import (
	"context"
	"net/http"
	"time"

	"zidoyvelg-be/internal/logger"
	"zidoyvelg-be/internal/utils"

	"go.uber.org/zap"
)

func (h *Handler) metricsSnapshot(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, h.metrics.Snapshot())
}

// Health answers OK while the database answers a ping.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.PingContext(ctx); err != nil {
			logger.FromCtx(r.Context()).Error("health check failed", zap.Error(err))
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}
