package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/sekawan-grup/raya/internal/httpserver/deps"
	"github.com/sekawan-grup/raya/internal/httpserver/handlers"
)

func init() { Register(registerUploads) }

func registerUploads(r chi.Router, d deps.Deps) {
	admin(r, d).Post("/api/uploads/image", handlers.UploadImage(d))
}
