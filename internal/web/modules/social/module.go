// Package social serves account, profile, and friend routes: registration,
// sign in, profile visibility, user search, and friend requests.
package social

import (
	"net/http"

	"github.com/pockettcg/tracker/internal/web/module"
	"github.com/pockettcg/tracker/internal/web/platform/modulehandler"
	"github.com/pockettcg/tracker/internal/web/platform/requestmeta"
	"github.com/pockettcg/tracker/internal/web/session"
)

// Option configures a social module.
type Option func(*Module)

// WithStore sets the backing store.
func WithStore(s Store) Option {
	return func(m *Module) { m.store = s }
}

// WithBase sets the handler base.
func WithBase(b modulehandler.Base) Option {
	return func(m *Module) { m.base = b }
}

// WithSessions sets the session token manager.
func WithSessions(sessions *session.Manager) Option {
	return func(m *Module) { m.sessions = sessions }
}

// WithSchemePolicy sets the request scheme policy for cookie handling.
func WithSchemePolicy(p requestmeta.SchemePolicy) Option {
	return func(m *Module) { m.schemePolicy = p }
}

// Module provides the account, profile, and friend routes.
type Module struct {
	store        Store
	base         modulehandler.Base
	sessions     *session.Manager
	schemePolicy requestmeta.SchemePolicy
}

// New returns a social module configured by the given options.
func New(opts ...Option) Module {
	var m Module
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// ID returns a stable module identifier.
func (Module) ID() string { return "social" }

// Mount wires account, profile, and friend route handlers.
func (m Module) Mount() (module.Mount, error) {
	mux := http.NewServeMux()
	h := newHandlers(newService(m.store), m.base, m.sessions, m.schemePolicy)
	registerRoutes(mux, h)
	prefixes := []string{
		"/register", "/login", "/logout",
		"/account", "/account/",
		"/profile", "/profile/",
		"/users/", "/friends", "/friends/",
	}
	return module.Mount{Prefixes: prefixes, Handler: mux}, nil
}
