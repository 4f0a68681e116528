package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/sekawan-grup/raya/internal/httpserver/deps"
	"github.com/sekawan-grup/raya/internal/httpserver/handlers"
)

func init() { Register(registerLinks) }

func registerLinks(r chi.Router, d deps.Deps) {
	a := admin(r, d)
	a.Get("/api/links/all", handlers.GetAllLinks(d))
	a.Get("/api/links", handlers.GetLinks(d))
	a.Get("/api/links/{id}", handlers.GetLink(d))

	a.Get("/api/categories/{categoryID}/links", handlers.GetCategoryLinks(d))
	a.Post("/api/categories/{categoryID}/links", handlers.CreateLink(d))
	a.Patch("/api/categories/{categoryID}/links/{linkID}", handlers.UpdateLink(d))
	a.Delete("/api/categories/{categoryID}/links/{linkID}", handlers.DeleteLink(d))
}
