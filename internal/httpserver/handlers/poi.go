package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/mapmarks/internal/apperr"
	"github.com/MrSnakeDoc/mapmarks/internal/domain"
	"github.com/MrSnakeDoc/mapmarks/internal/httpserver/deps"
)

type poiResponse struct {
	Name     string       `json:"name"`
	Visible  bool         `json:"visible"`
	Position domain.Point `json:"position"`
}

func POI(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := queryPoint(r, d)
		if err != nil {
			apperr.Write(w, err)
			return
		}

		d.Mu.Lock()
		res := poiResponse{
			Name:     d.Manager.NameForPOI(p),
			Visible:  d.Manager.FindVisiblePOI(p),
			Position: d.Manager.BmkPositionForPOI(p),
		}
		d.Mu.Unlock()

		writeJSON(w, http.StatusOK, res)
	}
}
