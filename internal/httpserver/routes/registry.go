package routes

import (
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/coursemark/internal/httpserver/deps"
	"github.com/MrSnakeDoc/coursemark/internal/logger"
)

type (
	Registrar  func(r chi.Router, d deps.Deps)
	Middleware = func(http.Handler) http.Handler
)

type entry struct {
	name string
	reg  Registrar
	mws  []Middleware
}

var registry []entry

// Register a named route group with optional per-group middlewares.
// Names must be unique; a duplicate panics at init.
func Register(name string, reg Registrar, mws ...Middleware) {
	for _, e := range registry {
		if e.name == name {
			panic("routes: duplicate route group " + name)
		}
	}
	registry = append(registry, entry{name: name, reg: reg, mws: mws})
}

// Names lists the registered route groups, sorted
func Names() []string {
	out := make([]string, 0, len(registry))
	for _, e := range registry {
		out = append(out, e.name)
	}
	sort.Strings(out)
	return out
}

// Called once from server.New()
func RegisterAll(r chi.Router, d deps.Deps) {
	for _, e := range registry {
		if len(e.mws) == 0 {
			e.reg(r, d)
		} else {
			e.reg(r.With(e.mws...), d) // apply per-group middlewares
		}
		if d.Logger != nil {
			d.Logger.Debug("route group mounted", logger.String("group", e.name))
		}
	}
}
