package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/mapmarks/internal/httpserver/deps"
	"github.com/MrSnakeDoc/mapmarks/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/mapmarks/internal/httpserver/mw"
)

func init() { Register("bookmarks", registerBookmarks) }

func registerBookmarks(r chi.Router, d deps.Deps) {
	api := r.With(mw.EnforceHost(d.AllowedHosts, d.Logger))
	api.Get("/api/bookmarks/at", handlers.BookmarkAt(d))
	api.Get("/api/bookmarks/preview", handlers.PreviewBookmark(d))
	api.Get("/api/categories/{category}/bookmarks/{bookmark}", handlers.GetBookmark(d))
	api.Get("/api/categories/{category}/bookmarks/{bookmark}/record", handlers.GetBookmarkRecord(d))

	writes := api.With(d.MutationLimit)
	writes.Post("/api/categories/{category}/bookmarks", handlers.AddBookmark(d))
	writes.Delete("/api/categories/{category}/bookmarks/{bookmark}", handlers.DeleteBookmark(d))
	writes.Post("/api/categories/{category}/bookmarks/{bookmark}/show", handlers.ShowBookmark(d))
}
