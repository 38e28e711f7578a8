package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/mapmarks/internal/httpserver/deps"
	"github.com/MrSnakeDoc/mapmarks/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/mapmarks/internal/httpserver/mw"
)

func init() { Register("lookups", registerLookups) }

func registerLookups(r chi.Router, d deps.Deps) {
	api := r.With(mw.EnforceHost(d.AllowedHosts, d.Logger))
	api.Get("/api/poi", handlers.POI(d))
	api.Get("/api/icons", handlers.ListIcons(d))
	api.Get("/api/icons/{name}", handlers.GetIcon(d))
	api.With(d.MutationLimit).Post("/api/records/decode", handlers.DecodeRecord(d))
}
