package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/mapmarks/internal/apperr"
	"github.com/MrSnakeDoc/mapmarks/internal/httpserver/deps"
	"github.com/MrSnakeDoc/mapmarks/internal/logger"
)

type reloadResponse struct {
	Import bool `json:"import"`
	Flush  bool `json:"flush"`
}

// Reload triggers an import reload (when enabled) and an immediate flush
func Reload(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res := reloadResponse{
			Import: trigger(d, d.ReloadTrigger, "import reload", r),
			Flush:  trigger(d, d.FlushTrigger, "flush", r),
		}

		if !res.Import && !res.Flush {
			apperr.Write(w, apperr.ErrReloadInProgress)
			return
		}
		writeJSON(w, http.StatusAccepted, res)
	}
}

func trigger(d deps.Deps, ch chan struct{}, what string, r *http.Request) bool {
	if ch == nil {
		return false
	}
	select {
	case ch <- struct{}{}:
		d.Logger.Info("manual "+what+" triggered via endpoint",
			logger.String("remote_ip", r.RemoteAddr))
		return true
	default:
		d.Logger.Warn(what+" already pending",
			logger.String("remote_ip", r.RemoteAddr))
		return false
	}
}
