package handlers

import (
	"context"
	"net/http"

	"github.com/sekawan-grup/raya/internal/httpserver/deps"
	"github.com/sekawan-grup/raya/internal/httpserver/respond"
	"github.com/sekawan-grup/raya/internal/media"
)

type componentStatus struct {
	OK            bool   `json:"ok"`
	CachedEntries *int   `json:"cached_categories,omitempty"`
	RevokedTokens *int   `json:"revoked_tokens,omitempty"`
	LastReload    string `json:"last_reload,omitempty"`
	Mode          string `json:"mode,omitempty"`
	Impact        string `json:"impact,omitempty"`
	Error         string `json:"error,omitempty"`
}

type infraResponse struct {
	ServingMode string                     `json:"serving_mode"`
	Components  map[string]componentStatus `json:"components"`
}

func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		components := map[string]componentStatus{
			"database": checkPinger(r.Context(), d.Database, "catalog-unavailable"),
			"redis":    checkRedis(r.Context(), d),
			"memory":   memoryStatus(d),
			"uploads":  uploadStatus(d),
		}

		respond.JSON(w, http.StatusOK, infraResponse{
			ServingMode: determineServingMode(components),
			Components:  components,
		})
	}
}

func determineServingMode(components map[string]componentStatus) string {
	if db, exists := components["database"]; exists && !db.OK {
		return "critical" // no database = no catalog, no logins
	}

	// Redis down = degraded (per-instance cache and revocations)
	if redis, exists := components["redis"]; exists && !redis.OK {
		return "degraded"
	}

	return "optimal"
}

func checkPinger(ctx context.Context, p deps.Pinger, impact string) componentStatus {
	if p == nil {
		return componentStatus{OK: false, Impact: impact, Error: "client not initialized"}
	}

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := p.Ping(ctx); err != nil {
		return componentStatus{OK: false, Impact: impact, Error: err.Error()}
	}
	return componentStatus{OK: true}
}

func checkRedis(ctx context.Context, d deps.Deps) componentStatus {
	if d.Redis == nil {
		return componentStatus{
			OK:     false,
			Mode:   "in-memory",
			Impact: "cache-and-revocations-per-instance",
			Error:  "not configured",
		}
	}

	status := checkPinger(ctx, d.Redis, "cache-and-revocations-unavailable")
	if status.OK {
		status.Mode = "shared"
	} else {
		status.Mode = "degraded"
	}
	return status
}

func memoryStatus(d deps.Deps) componentStatus {
	if d.MemoryIndex == nil {
		return componentStatus{OK: true, Mode: "unused"}
	}

	cached := d.MemoryIndex.Count()
	revoked := d.MemoryIndex.RevokedCount()
	lastReload := "never"
	if t := d.MemoryIndex.GetLastReload(); !t.IsZero() {
		lastReload = t.Format("2006-01-02 15:04:05")
	}
	return componentStatus{
		OK:            true,
		Mode:          "fallback",
		CachedEntries: &cached,
		RevokedTokens: &revoked,
		LastReload:    lastReload,
	}
}

func uploadStatus(d deps.Deps) componentStatus {
	if d.Uploader == nil {
		return componentStatus{OK: false, Mode: "disabled", Impact: "image-uploads-unavailable"}
	}
	if _, disabled := d.Uploader.(media.Disabled); disabled {
		return componentStatus{OK: false, Mode: "disabled", Impact: "image-uploads-unavailable"}
	}
	return componentStatus{OK: true, Mode: "cloudinary"}
}
