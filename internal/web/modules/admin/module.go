// Package admin serves pack type management for operators.
package admin

import (
	"net/http"

	"github.com/pockettcg/tracker/internal/web/module"
	"github.com/pockettcg/tracker/internal/web/platform/modulehandler"
)

// Option configures an admin module.
type Option func(*Module)

// WithStore sets the backing store.
func WithStore(s Store) Option {
	return func(m *Module) { m.store = s }
}

// WithBase sets the handler base.
func WithBase(b modulehandler.Base) Option {
	return func(m *Module) { m.base = b }
}

// Module provides the pack type management routes.
type Module struct {
	store Store
	base  modulehandler.Base
}

// New returns an admin module configured by the given options.
func New(opts ...Option) Module {
	var m Module
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// ID returns a stable module identifier.
func (Module) ID() string { return "admin" }

// Mount wires pack type management route handlers.
func (m Module) Mount() (module.Mount, error) {
	mux := http.NewServeMux()
	h := newHandlers(newService(m.store), m.base)
	mux.HandleFunc(http.MethodGet+" /admin/packtypes", h.handlePackTypesPage)
	mux.HandleFunc(http.MethodPost+" /admin/packtypes", h.handlePackTypeCreate)
	return module.Mount{Prefixes: []string{"/admin/"}, Handler: mux}, nil
}
