package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/mapmarks/internal/httpserver/deps"
)

type componentStatus struct {
	OK         bool   `json:"ok"`
	Categories *int   `json:"categories,omitempty"`
	Bookmarks  *int   `json:"bookmarks,omitempty"`
	Loaded     *int   `json:"loaded,omitempty"`
	Dirty      *bool  `json:"dirty,omitempty"`
	LastLoad   string `json:"last_load,omitempty"`
	LastFlush  string `json:"last_flush,omitempty"`
	Path       string `json:"path,omitempty"`
	Impact     string `json:"impact,omitempty"`
	Error      string `json:"error,omitempty"`
}

type infraResponse struct {
	Mode       string                     `json:"mode"`
	Components map[string]componentStatus `json:"components"`
}

func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		components := map[string]componentStatus{
			"engine": engineStatus(d),
			"pois":   poiStatus(d),
		}
		if d.ImportFile != "" {
			components["import"] = componentStatus{OK: true, Path: d.ImportFile}
		}

		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		for _, s := range d.Storage {
			components["storage:"+s.Name()] = storageStatus(ctx, s)
		}

		writeJSON(w, http.StatusOK, infraResponse{
			Mode:       determineMode(d, components),
			Components: components,
		})
	}
}

func engineStatus(d deps.Deps) componentStatus {
	d.Mu.Lock()
	categories := d.Engine.CategoriesCount()
	total := 0
	for i := 0; i < categories; i++ {
		total += d.Engine.CategorySize(i)
	}
	d.Mu.Unlock()

	dirty := d.Engine.Dirty()
	return componentStatus{
		OK:         true,
		Categories: &categories,
		Bookmarks:  &total,
		Dirty:      &dirty,
		LastLoad:   formatTime(d.Engine.GetLastLoad()),
		LastFlush:  formatTime(d.Engine.GetLastFlush()),
	}
}

func poiStatus(d deps.Deps) componentStatus {
	n := d.Engine.POICount()
	st := componentStatus{OK: n > 0, Loaded: &n}
	if n == 0 {
		st.Impact = "bookmark names fall back to the dropped pin label"
	}
	return st
}

func storageStatus(ctx context.Context, s deps.Pinger) componentStatus {
	if err := s.Ping(ctx); err != nil {
		return componentStatus{
			OK:     false,
			Impact: "changes are kept in memory only",
			Error:  err.Error(),
		}
	}
	return componentStatus{OK: true}
}

// determineMode is "nominal" when every storage backend answers, "degraded"
// when some do and "critical" when none do.
func determineMode(d deps.Deps, components map[string]componentStatus) string {
	if len(d.Storage) == 0 {
		return "memory-only"
	}
	up := 0
	for _, s := range d.Storage {
		if components["storage:"+s.Name()].OK {
			up++
		}
	}
	switch up {
	case len(d.Storage):
		return "nominal"
	case 0:
		return "critical"
	default:
		return "degraded"
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return t.Format(time.RFC3339)
}
