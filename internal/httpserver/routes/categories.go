package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/mapmarks/internal/httpserver/deps"
	"github.com/MrSnakeDoc/mapmarks/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/mapmarks/internal/httpserver/mw"
)

func init() { Register("categories", registerCategories) }

func registerCategories(r chi.Router, d deps.Deps) {
	api := r.With(mw.EnforceHost(d.AllowedHosts, d.Logger))
	api.Get("/api/categories", handlers.ListCategories(d))
	api.Get("/api/categories/{category}", handlers.GetCategory(d))

	writes := api.With(d.MutationLimit)
	writes.Post("/api/categories", handlers.CreateCategory(d))
	writes.Delete("/api/categories/{category}", handlers.DeleteCategory(d))
}
