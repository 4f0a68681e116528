package mw

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sekawan-grup/raya/internal/logger"
)

var (
	corsMethods = "GET, POST, PUT, PATCH, DELETE, OPTIONS"
	corsHeaders = "Origin, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, Accept"
	corsExpose  = "Content-Length, Authorization"
	corsMaxAge  = strconv.Itoa(int((12 * time.Hour).Seconds()))
)

// CORS lets the listed browser origins call the API with credentials.
// Patterns support "*.example.com" (any scheme) and "https://*.example.com".
// Requests without an Origin header pass through untouched. Requests from
// other origins get 403.
func CORS(allowedOrigins []string, log logger.Logger) func(http.Handler) http.Handler {
	log.Debugf("CORS: initialized with origins=%v", allowedOrigins)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" {
				next.ServeHTTP(w, r)
				return
			}

			h := w.Header()
			h.Add("Vary", "Origin")

			if !originAllowed(origin, allowedOrigins) {
				log.Debugf("CORS: origin %s REJECTED", origin)
				w.WriteHeader(http.StatusForbidden)
				return
			}

			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Credentials", "true")

			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				h.Add("Vary", "Access-Control-Request-Method")
				h.Add("Vary", "Access-Control-Request-Headers")
				h.Set("Access-Control-Allow-Methods", corsMethods)
				h.Set("Access-Control-Allow-Headers", corsHeaders)
				h.Set("Access-Control-Max-Age", corsMaxAge)
				w.WriteHeader(http.StatusNoContent)
				return
			}

			h.Set("Access-Control-Expose-Headers", corsExpose)
			next.ServeHTTP(w, r)
		})
	}
}

func originAllowed(origin string, allowed []string) bool {
	for _, pattern := range allowed {
		if matchOrigin(origin, pattern) {
			return true
		}
	}
	return false
}

// matchOrigin checks if origin matches pattern (supports wildcard *.example.com)
func matchOrigin(origin, pattern string) bool {
	if pattern == "*" || origin == pattern {
		return true
	}

	i := strings.Index(pattern, "*.")
	if i < 0 {
		return false
	}
	prefix, suffix := pattern[:i], pattern[i+1:] // suffix keeps the leading dot

	if prefix == "" {
		if j := strings.Index(origin, "://"); j >= 0 {
			origin = origin[j+3:]
		}
	} else {
		if !strings.HasPrefix(origin, prefix) {
			return false
		}
		origin = origin[len(prefix):]
	}

	return len(origin) > len(suffix) && strings.HasSuffix(origin, suffix)
}
