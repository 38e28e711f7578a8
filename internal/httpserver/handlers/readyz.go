package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/mapmarks/internal/httpserver/deps"
)

type readyzResponse struct {
	Ready bool `json:"ready"`
}

// Readyz reports ready when no storage is configured or at least one
// backend answers.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		ready := len(d.Storage) == 0
		for _, s := range d.Storage {
			if s.Ping(ctx) == nil {
				ready = true
				break
			}
		}

		status := http.StatusOK
		if !ready {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, readyzResponse{Ready: ready})
	}
}
