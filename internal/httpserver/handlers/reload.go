package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/snote/internal/httpserver/deps"
	"github.com/MrSnakeDoc/snote/internal/logger"
)

// Reload asks the cache warmer to rebuild the read cache from the store.
func Reload(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if d.ReloadTrigger == nil {
			writeText(w, d, http.StatusServiceUnavailable, "cache disabled, nothing to reload\n")
			return
		}

		select {
		case d.ReloadTrigger <- struct{}{}:
			d.Logger.Info("manual cache warm triggered", logger.String("remote_ip", r.RemoteAddr))
			writeText(w, d, http.StatusAccepted, "✅ Cache rebuild triggered\n")
		default:
			d.Logger.Warn("cache warm already pending", logger.String("remote_ip", r.RemoteAddr))
			writeText(w, d, http.StatusTooManyRequests, "⏳ Cache rebuild already pending, please wait\n")
		}
	}
}

func writeText(w http.ResponseWriter, d deps.Deps, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write([]byte(body)); err != nil {
		d.Logger.Debug("failed to write response", logger.Error(err))
	}
}
