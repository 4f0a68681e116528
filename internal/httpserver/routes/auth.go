package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/sekawan-grup/raya/internal/httpserver/deps"
	"github.com/sekawan-grup/raya/internal/httpserver/handlers"
	"github.com/sekawan-grup/raya/internal/httpserver/mw"
)

func init() { Register(registerAuth) }

func registerAuth(r chi.Router, d deps.Deps) {
	limited := api(r, d).With(mw.RateLimit(mw.RateLimitConfig{
		Name:              "login",
		Burst:             d.LoginBurst,
		RefillPerIPPerMin: d.LoginRefillPerMin,
		MaxEntries:        10000,
		TrustProxy:        d.TrustProxy,
		Message:           "Terlalu banyak percobaan login, coba lagi nanti",
	}, d.Logger))
	limited.Post("/api/login", handlers.Login(d))

	a := admin(r, d)
	a.Post("/api/logout", handlers.Logout(d))
	a.Post("/api/change-password", handlers.ChangePassword(d))
	a.Patch("/api/change-password", handlers.ChangePassword(d))
}
