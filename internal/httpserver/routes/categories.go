package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/sekawan-grup/raya/internal/httpserver/deps"
	"github.com/sekawan-grup/raya/internal/httpserver/handlers"
)

func init() { Register(registerCategories) }

func registerCategories(r chi.Router, d deps.Deps) {
	a := admin(r, d)
	a.Get("/api/categories", handlers.GetCategories(d))
	a.Get("/api/category/{id}", handlers.GetCategory(d))
	a.Post("/api/category", handlers.CreateCategory(d))
	a.Patch("/api/category/{id}", handlers.UpdateCategory(d))
	a.Delete("/api/category/{id}", handlers.DeleteCategory(d))
}
