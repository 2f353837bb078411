package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/snote/internal/httpserver/deps"
)

type componentStatus struct {
	OK            bool   `json:"ok"`
	Driver        string `json:"driver,omitempty"`
	EntriesStored *int   `json:"entries_stored,omitempty"`
	LastWarm      string `json:"last_warm,omitempty"`
	Mode          string `json:"mode,omitempty"`
	Impact        string `json:"impact,omitempty"`
	Error         string `json:"error,omitempty"`
}

type infraResponse struct {
	Status     string                     `json:"status"`
	Components map[string]componentStatus `json:"components"`
}

// Infra reports the store and read-cache state for operators.
func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), probeTimeout)
		defer cancel()

		components := map[string]componentStatus{
			"store": checkStore(ctx, d),
			"cache": checkCache(ctx, d),
		}
		writeJSON(w, http.StatusOK, infraResponse{
			Status:     overallStatus(components),
			Components: components,
		})
	}
}

// overallStatus is "critical" without a store, "degraded" when only the
// cache is down and "ok" otherwise.
func overallStatus(components map[string]componentStatus) string {
	if s, ok := components["store"]; ok && !s.OK {
		return "critical"
	}
	if c, ok := components["cache"]; ok && !c.OK && c.Mode != "disabled" {
		return "degraded"
	}
	return "ok"
}

func checkStore(ctx context.Context, d deps.Deps) componentStatus {
	st := componentStatus{Driver: d.StoreDriver}
	if err := d.Store.Ping(ctx); err != nil {
		st.Error = "unreachable"
		return st
	}
	n, err := d.Store.Count(ctx)
	if err != nil {
		st.Error = "count failed"
		return st
	}
	st.OK = true
	st.EntriesStored = &n
	return st
}

func checkCache(ctx context.Context, d deps.Deps) componentStatus {
	if d.RedisClient == nil {
		return componentStatus{
			Mode:   "disabled",
			Impact: "reads-hit-store",
		}
	}

	lastWarm := "never"
	if d.Warmer != nil {
		if t := d.Warmer.LastRun(); !t.IsZero() {
			lastWarm = t.UTC().Format(time.RFC3339)
		}
	}

	if err := d.RedisClient.Ping(ctx).Err(); err != nil {
		return componentStatus{
			Mode:     "degraded",
			Impact:   "reads-hit-store",
			LastWarm: lastWarm,
			Error:    "unreachable",
		}
	}
	return componentStatus{
		OK:       true,
		Mode:     "read-through",
		LastWarm: lastWarm,
	}
}
