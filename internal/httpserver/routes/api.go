package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/snote/internal/httpserver/deps"
	"github.com/MrSnakeDoc/snote/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/snote/internal/httpserver/mw"
)

func init() { Register(registerAPI) }

// registerAPI mounts the entries REST resource, the procedure endpoint and
// the read-only helpers. Mutations share one rate limiter.
func registerAPI(r chi.Router, d deps.Deps) {
	write := writeLimit(d)

	r.Route("/api", func(r chi.Router) {
		r.Use(mw.EnforceHost(d.AllowedHosts, d.Logger))

		r.Route("/entries", func(r chi.Router) {
			r.Get("/", handlers.ListEntries(d))
			r.With(write...).Post("/", handlers.CreateEntry(d))
			r.Get("/{id}", handlers.GetEntry(d))
			r.With(write...).Patch("/{id}", handlers.UpdateEntry(d))
			r.With(write...).Delete("/{id}", handlers.DeleteEntry(d))
			r.With(write...).Post("/{id}/copy", handlers.CopyEntry(d))
		})

		rpc := handlers.RPC(d)
		r.Get("/rpc/{procedure}", rpc)
		r.With(write...).Post("/rpc/{procedure}", rpc)

		r.Get("/icons", handlers.Icons(d))
		r.Get("/editor/commands", handlers.EditorCommands())
	})
}

func writeLimit(d deps.Deps) []Middleware {
	if !d.WriteLimit.Enabled() {
		return nil
	}
	cfg := d.WriteLimit
	cfg.TrustProxy = d.TrustProxy
	return []Middleware{mw.RateLimit(cfg)}
}
