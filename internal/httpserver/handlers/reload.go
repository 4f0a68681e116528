package handlers

import (
	"net/http"

	"github.com/sekawan-grup/raya/internal/httpserver/deps"
	"github.com/sekawan-grup/raya/internal/httpserver/respond"
	"github.com/sekawan-grup/raya/internal/logger"
)

// Reload asks the catalog warmer to rebuild the public catalog cache now.
func Reload(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if d.WarmTrigger == nil {
			respond.Error(w, http.StatusServiceUnavailable, "catalog warmer not running")
			return
		}

		select {
		case d.WarmTrigger <- struct{}{}:
			d.Logger.Info("manual catalog reload triggered via endpoint",
				logger.String("remote_ip", r.RemoteAddr))
			respond.JSON(w, http.StatusAccepted, respond.Message{Message: "Reload triggered successfully"})
		default:
			d.Logger.Warn("catalog reload already pending",
				logger.String("remote_ip", r.RemoteAddr))
			respond.Error(w, http.StatusTooManyRequests, "Reload already in progress, please wait")
		}
	}
}
