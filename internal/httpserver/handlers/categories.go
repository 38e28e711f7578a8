package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/mapmarks/internal/apperr"
	"github.com/MrSnakeDoc/mapmarks/internal/domain"
	"github.com/MrSnakeDoc/mapmarks/internal/httpserver/deps"
	"github.com/MrSnakeDoc/mapmarks/internal/logger"
)

type categoryListResponse struct {
	Count      int                `json:"count"`
	Categories []categoryResponse `json:"categories"`
}

func ListCategories(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d.Mu.Lock()
		cats := d.Manager.Categories()
		out := make([]categoryResponse, 0, len(cats))
		for _, c := range cats {
			out = append(out, newCategoryResponse(c))
		}
		d.Mu.Unlock()

		writeJSON(w, http.StatusOK, categoryListResponse{Count: len(out), Categories: out})
	}
}

func GetCategory(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathIndex(r, "category")
		if err != nil {
			apperr.Write(w, err)
			return
		}

		d.Mu.Lock()
		defer d.Mu.Unlock()

		c := d.Manager.CategoryByID(id)
		if c == nil {
			apperr.Write(w, apperr.ErrCategoryNotFound)
			return
		}
		writeJSON(w, http.StatusOK, newCategoryResponse(c))
	}
}

type createCategoryRequest struct {
	Name string   `json:"name" validate:"required,max=128"`
	Lat  *float64 `json:"lat" validate:"required_with=Lon,omitnil,latitude"`
	Lon  *float64 `json:"lon" validate:"required_with=Lat,omitnil,longitude"`
}

type createCategoryResponse struct {
	Category categoryResponse `json:"category"`
	Bookmark *objectResponse  `json:"bookmark,omitempty"`
}

// CreateCategory creates a uniquely named category. When a point is given,
// the bookmark under it (or a new one) is moved into the category.
func CreateCategory(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createCategoryRequest
		if err := decodeJSON(w, r, d, &req); err != nil {
			apperr.Write(w, err)
			return
		}

		d.Mu.Lock()
		defer d.Mu.Unlock()

		var bm *domain.Bookmark
		if req.Lat != nil && req.Lon != nil {
			bm = d.Manager.BookmarkAt(domain.Point{Lat: *req.Lat, Lon: *req.Lon})
			if bm.Title() == "" {
				bm.SetTitle(d.Manager.NameForPOI(bm.Point()))
			}
		}

		c := d.Manager.CreateCategory(bm, req.Name)
		res := createCategoryResponse{Category: newCategoryResponse(c)}
		if bm != nil {
			obj := newObjectResponse(bm)
			res.Bookmark = &obj
		}

		d.Logger.Info("category created via API",
			logger.String("name", c.Name()),
			logger.Int("index", c.Index()))
		writeJSON(w, http.StatusCreated, res)
	}
}

func DeleteCategory(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathIndex(r, "category")
		if err != nil {
			apperr.Write(w, err)
			return
		}

		d.Mu.Lock()
		ok := d.Manager.DeleteCategory(id)
		d.Mu.Unlock()

		if !ok {
			apperr.Write(w, apperr.ErrCategoryNotFound)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
