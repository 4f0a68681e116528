package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/sekawan-grup/raya/internal/httpserver/deps"
	"github.com/sekawan-grup/raya/internal/httpserver/respond"
	"github.com/sekawan-grup/raya/internal/logger"
)

const pingTimeout = 2 * time.Second

type readyzResponse struct {
	Ready bool   `json:"ready"`
	Error string `json:"error,omitempty"`
}

// Readyz is ready once the database answers. Redis is optional and only
// reported by Infra.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")

		ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
		defer cancel()

		if d.Database == nil {
			respond.JSON(w, http.StatusServiceUnavailable, readyzResponse{Error: "database not initialized"})
			return
		}
		if err := d.Database.Ping(ctx); err != nil {
			d.Logger.Warn("readiness check failed", logger.Error(err))
			respond.JSON(w, http.StatusServiceUnavailable, readyzResponse{Error: "database unreachable"})
			return
		}
		respond.JSON(w, http.StatusOK, readyzResponse{Ready: true})
	}
}
