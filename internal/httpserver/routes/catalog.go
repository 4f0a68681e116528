package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/sekawan-grup/raya/internal/httpserver/deps"
	"github.com/sekawan-grup/raya/internal/httpserver/handlers"
)

func init() { Register(registerCatalog) }

// The public product page reads this endpoint without a token.
func registerCatalog(r chi.Router, d deps.Deps) {
	api(r, d).Get("/api/categories-with-links", handlers.CategoriesWithLinks(d))
}
