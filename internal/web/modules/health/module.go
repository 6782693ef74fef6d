// Package health exposes a liveness probe backed by the store.
package health

import (
	"context"
	"net/http"

	"github.com/pockettcg/tracker/internal/web/module"
	"github.com/pockettcg/tracker/internal/web/platform/httpx"
)

// Pinger checks that the backing store answers queries.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Option configures a health module.
type Option func(*Module)

// WithPinger sets the store probe.
func WithPinger(p Pinger) Option {
	return func(m *Module) { m.pinger = p }
}

// Module provides the health probe route.
type Module struct {
	pinger Pinger
}

// New returns a health module configured by the given options.
func New(opts ...Option) Module {
	var m Module
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// ID returns a stable module identifier.
func (Module) ID() string { return "health" }

// Mount wires the health route handler.
func (m Module) Mount() (module.Mount, error) {
	mux := http.NewServeMux()
	mux.HandleFunc(http.MethodGet+" /health", m.handleHealth)
	return module.Mount{Prefixes: []string{"/health"}, Handler: mux}, nil
}

func (m Module) handleHealth(w http.ResponseWriter, r *http.Request) {
	if m.pinger == nil {
		_ = httpx.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
		return
	}
	if err := m.pinger.Ping(r.Context()); err != nil {
		_ = httpx.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
		return
	}
	_ = httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
