package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/sekawan-grup/raya/internal/httpserver/deps"
	"github.com/sekawan-grup/raya/internal/httpserver/handlers"
)

func init() { Register(registerOps) }

func registerOps(r chi.Router, d deps.Deps) {
	o := ops(r, d)
	o.Get("/healthz", handlers.Healthz(d))
	o.Get("/readyz", handlers.Readyz(d))
	o.Get("/infra", handlers.Infra(d))
}
