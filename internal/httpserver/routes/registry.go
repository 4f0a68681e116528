package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sekawan-grup/raya/internal/httpserver/deps"
	"github.com/sekawan-grup/raya/internal/httpserver/mw"
)

type (
	Registrar  func(r chi.Router, d deps.Deps)
	Middleware = func(http.Handler) http.Handler
)

type entry struct {
	reg Registrar
	mws []Middleware
}

var registry []entry

// Register a registrar with optional per-route middlewares.
func Register(reg Registrar, mws ...Middleware) {
	registry = append(registry, entry{reg: reg, mws: mws})
}

// Called once from httpserver.NewRouter()
func RegisterAll(r chi.Router, d deps.Deps) {
	for _, e := range registry {
		if len(e.mws) == 0 {
			e.reg(r, d)
			continue
		}
		sub := r.With(e.mws...) // apply per-route middlewares
		e.reg(sub, d)
	}
}

// api scopes r to the public /api surface.
func api(r chi.Router, d deps.Deps) chi.Router {
	return r.With(mw.RequireMobile(d.MobileOnly, d.Logger))
}

// admin scopes r to /api endpoints that need a bearer token.
func admin(r chi.Router, d deps.Deps) chi.Router {
	return api(r, d).With(mw.RequireAuth(d.Auth, d.Logger))
}

// ops scopes r to the operational endpoints.
func ops(r chi.Router, d deps.Deps) chi.Router {
	return r.With(mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger))
}
