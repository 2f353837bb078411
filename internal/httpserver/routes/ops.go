package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/snote/internal/httpserver/deps"
	"github.com/MrSnakeDoc/snote/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/snote/internal/httpserver/mw"
)

func init() {
	Register(registerHealthz)
	Register(registerOps)
}

func registerHealthz(r chi.Router, d deps.Deps) {
	r.Get("/healthz", handlers.Healthz(d))
}

// registerOps mounts the operator endpoints behind the CIDR allow-list.
func registerOps(r chi.Router, d deps.Deps) {
	ops := r.With(mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger))
	ops.Get("/readyz", handlers.Readyz(d))
	ops.Get("/infra", handlers.Infra(d))
	ops.With(mw.EnforceHost(d.AllowedHosts, d.Logger)).Post("/reload", handlers.Reload(d))
}
