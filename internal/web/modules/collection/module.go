// Package collection serves the set overview, set detail, and card
// collection toggling routes.
package collection

import (
	"net/http"

	"github.com/pockettcg/tracker/internal/web/module"
	"github.com/pockettcg/tracker/internal/web/platform/modulehandler"
	"github.com/pockettcg/tracker/internal/web/platform/requestmeta"
)

// Option configures a collection module.
type Option func(*Module)

// WithStore sets the backing store.
func WithStore(s Store) Option {
	return func(m *Module) { m.store = s }
}

// WithBase sets the handler base.
func WithBase(b modulehandler.Base) Option {
	return func(m *Module) { m.base = b }
}

// WithSchemePolicy sets the request scheme policy for cookie handling.
func WithSchemePolicy(p requestmeta.SchemePolicy) Option {
	return func(m *Module) { m.schemePolicy = p }
}

// Module provides the collection routes.
type Module struct {
	store        Store
	base         modulehandler.Base
	schemePolicy requestmeta.SchemePolicy
}

// New returns a collection module configured by the given options.
func New(opts ...Option) Module {
	var m Module
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// ID returns a stable module identifier.
func (Module) ID() string { return "collection" }

// Mount wires collection route handlers.
func (m Module) Mount() (module.Mount, error) {
	mux := http.NewServeMux()
	h := newHandlers(newService(m.store), m.base, m.schemePolicy)
	registerRoutes(mux, h)
	return module.Mount{Prefixes: []string{"/"}, Handler: mux}, nil
}
