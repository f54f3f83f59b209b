package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"time"
)

type HealthHandler struct {
	// Optional; when set, an unreachable address cache reports degraded.
	DB *sql.DB
}

// Health provides a liveness check endpoint.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}

	res := map[string]string{"status": "ok"}
	if h.DB != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.DB.PingContext(ctx); err != nil {
			res["status"] = "degraded"
			res["cache"] = err.Error()
		}
	}
	writeJSON(w, r, http.StatusOK, res)
}
