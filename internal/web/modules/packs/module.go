// Package packs serves the pack odds page: which openable pack gives the
// best chance of a new card.
package packs

import (
	"net/http"

	"github.com/pockettcg/tracker/internal/web/module"
	"github.com/pockettcg/tracker/internal/web/platform/modulehandler"
)

// Option configures a packs module.
type Option func(*Module)

// WithStore sets the backing store.
func WithStore(s Store) Option {
	return func(m *Module) { m.store = s }
}

// WithBase sets the handler base.
func WithBase(b modulehandler.Base) Option {
	return func(m *Module) { m.base = b }
}

// Module provides the pack odds routes.
type Module struct {
	store Store
	base  modulehandler.Base
}

// New returns a packs module configured by the given options.
func New(opts ...Option) Module {
	var m Module
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// ID returns a stable module identifier.
func (Module) ID() string { return "packs" }

// Mount wires pack odds route handlers.
func (m Module) Mount() (module.Mount, error) {
	mux := http.NewServeMux()
	h := newHandlers(newService(m.store), m.base)
	mux.HandleFunc(http.MethodGet+" /packs", h.handlePacks)
	return module.Mount{Prefixes: []string{"/packs"}, Handler: mux}, nil
}
