package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/mapmarks/internal/apperr"
	"github.com/MrSnakeDoc/mapmarks/internal/domain"
	"github.com/MrSnakeDoc/mapmarks/internal/httpserver/deps"
)

type iconListResponse struct {
	Count int           `json:"count"`
	Icons []domain.Icon `json:"icons"`
}

func ListIcons(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		all := d.Manager.Icons()
		writeJSON(w, http.StatusOK, iconListResponse{Count: len(all), Icons: all})
	}
}

type iconResponse struct {
	domain.Icon
	Fallback bool `json:"fallback"`
}

// GetIcon resolves unknown names to the default icon and flags them as a
// fallback, unless the strict query parameter is set.
func GetIcon(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "name")
		icon := d.Manager.IconByName(name)
		fallback := icon.Name != name
		if fallback && r.URL.Query().Has("strict") {
			apperr.Write(w, apperr.ErrIconNotFound.WithDetails(map[string]any{"name": name}))
			return
		}
		writeJSON(w, http.StatusOK, iconResponse{Icon: icon, Fallback: fallback})
	}
}
