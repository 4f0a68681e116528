package mw

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/sekawan-grup/raya/internal/httpserver/respond"
	"github.com/sekawan-grup/raya/internal/logger"
	"github.com/sekawan-grup/raya/internal/service"
	"github.com/sekawan-grup/raya/internal/token"
)

type Authenticator interface {
	Authenticate(ctx context.Context, bearer string) (token.Claims, error)
}

type claimsKey struct{}

// ClaimsFrom returns the session claims stored by RequireAuth.
func ClaimsFrom(ctx context.Context) (token.Claims, bool) {
	c, ok := ctx.Value(claimsKey{}).(token.Claims)
	return c, ok
}

// WithClaims stores claims in ctx the way RequireAuth does.
func WithClaims(ctx context.Context, c token.Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, c)
}

// RequireAuth rejects requests without a valid "Authorization: Bearer <token>".
func RequireAuth(auth Authenticator, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				respond.Error(w, http.StatusUnauthorized, "Authorization header required")
				return
			}

			scheme, bearer, ok := strings.Cut(header, " ")
			if !ok || scheme != "Bearer" || bearer == "" || strings.Contains(bearer, " ") {
				respond.Error(w, http.StatusUnauthorized, "Invalid authorization format")
				return
			}

			claims, err := auth.Authenticate(r.Context(), bearer)
			if err != nil {
				if errors.Is(err, service.ErrUnauthorized) {
					log.Debug("bearer rejected", logger.Error(err))
					respond.Error(w, http.StatusUnauthorized, "token tidak valid")
					return
				}
				log.Error("bearer check failed", logger.Error(err))
				respond.Error(w, http.StatusInternalServerError, "Internal server error")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// RequireMobile rejects user agents that are not Android or iOS devices.
// When enabled is false it is a passthrough.
func RequireMobile(enabled bool, log logger.Logger) func(http.Handler) http.Handler {
	if !enabled {
		return func(next http.Handler) http.Handler { return next }
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !IsMobileUserAgent(r.UserAgent()) {
				log.Debugf("RequireMobile: user agent %q REJECTED", r.UserAgent())
				respond.Error(w, http.StatusForbidden, "Akses hanya diperbolehkan dari perangkat mobile (Android/iOS)")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func IsMobileUserAgent(ua string) bool {
	return strings.Contains(ua, "Android") || strings.Contains(ua, "iPhone") || strings.Contains(ua, "iPad")
}
