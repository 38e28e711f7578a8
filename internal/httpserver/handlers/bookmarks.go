package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/mapmarks/internal/apperr"
	"github.com/MrSnakeDoc/mapmarks/internal/codec"
	"github.com/MrSnakeDoc/mapmarks/internal/domain"
	"github.com/MrSnakeDoc/mapmarks/internal/httpserver/deps"
	"github.com/MrSnakeDoc/mapmarks/internal/logger"
)

func bookmarkSlot(r *http.Request) (int, int, error) {
	cat, err := pathIndex(r, "category")
	if err != nil {
		return 0, 0, err
	}
	idx, err := pathIndex(r, "bookmark")
	if err != nil {
		return 0, 0, err
	}
	return cat, idx, nil
}

func GetBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cat, idx, err := bookmarkSlot(r)
		if err != nil {
			apperr.Write(w, err)
			return
		}

		d.Mu.Lock()
		bm := d.Manager.FindBookmark(cat, idx)
		d.Mu.Unlock()

		if bm == nil {
			apperr.Write(w, apperr.ErrBookmarkNotFound)
			return
		}
		writeJSON(w, http.StatusOK, newObjectResponse(bm))
	}
}

// GetBookmarkRecord returns the binary record of a stored bookmark.
func GetBookmarkRecord(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cat, idx, err := bookmarkSlot(r)
		if err != nil {
			apperr.Write(w, err)
			return
		}

		d.Mu.Lock()
		bm := d.Manager.FindBookmark(cat, idx)
		d.Mu.Unlock()

		if bm == nil {
			apperr.Write(w, apperr.ErrBookmarkNotFound)
			return
		}

		data, err := codec.Encode(bm)
		if err != nil {
			d.Logger.Error("failed to encode bookmark record",
				logger.Int("category", cat),
				logger.Int("bookmark", idx),
				logger.Error(err))
			apperr.Write(w, apperr.ErrInternal)
			return
		}

		w.Header().Set("Content-Type", codec.ContentType)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}

type addBookmarkRequest struct {
	Name string   `json:"name" validate:"max=256"`
	Icon string   `json:"icon"`
	Lat  *float64 `json:"lat" validate:"required,latitude"`
	Lon  *float64 `json:"lon" validate:"required,longitude"`
}

// AddBookmark stores a new bookmark in the category from the URL. An empty
// name off any visible POI is replaced by the place label; on a POI the
// engine names it.
func AddBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cat, err := pathIndex(r, "category")
		if err != nil {
			apperr.Write(w, err)
			return
		}
		var req addBookmarkRequest
		if err := decodeJSON(w, r, d, &req); err != nil {
			apperr.Write(w, err)
			return
		}
		p := domain.Point{Lat: *req.Lat, Lon: *req.Lon}

		d.Mu.Lock()
		defer d.Mu.Unlock()

		if d.Manager.CategoryByID(cat) == nil {
			apperr.Write(w, apperr.ErrCategoryNotFound)
			return
		}
		name := req.Name
		if name == "" && !d.Manager.FindVisiblePOI(p) {
			name = d.Manager.NameForPOI(p)
		}

		bm := d.Manager.AddBookmark(p, cat, name, req.Icon)
		if bm == nil {
			apperr.Write(w, apperr.ErrRejected)
			return
		}
		writeJSON(w, http.StatusCreated, newObjectResponse(bm))
	}
}

func DeleteBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cat, idx, err := bookmarkSlot(r)
		if err != nil {
			apperr.Write(w, err)
			return
		}

		d.Mu.Lock()
		defer d.Mu.Unlock()

		if d.Manager.FindBookmark(cat, idx) == nil {
			apperr.Write(w, apperr.ErrBookmarkNotFound)
			return
		}
		d.Manager.DeleteBookmark(cat, idx)
		w.WriteHeader(http.StatusNoContent)
	}
}

func ShowBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cat, idx, err := bookmarkSlot(r)
		if err != nil {
			apperr.Write(w, err)
			return
		}

		d.Mu.Lock()
		d.Manager.ShowBookmarkOnMap(cat, idx)
		d.Mu.Unlock()

		w.WriteHeader(http.StatusNoContent)
	}
}

// BookmarkAt resolves a point to the bookmark under it, or to the unsaved
// bookmark that would be created there.
func BookmarkAt(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := queryPoint(r, d)
		if err != nil {
			apperr.Write(w, err)
			return
		}

		d.Mu.Lock()
		bm := d.Manager.BookmarkAt(p)
		d.Mu.Unlock()

		writeJSON(w, http.StatusOK, newObjectResponse(bm))
	}
}

func PreviewBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := queryPoint(r, d)
		if err != nil {
			apperr.Write(w, err)
			return
		}

		d.Mu.Lock()
		name := r.URL.Query().Get("name")
		if name == "" {
			name = d.Manager.NameForPOI(p)
		}
		bm := d.Manager.PreviewBookmark(p, name)
		d.Mu.Unlock()

		writeJSON(w, http.StatusOK, newObjectResponse(bm))
	}
}
