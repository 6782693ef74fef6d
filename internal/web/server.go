// Package web assembles the tracker HTTP server from feature modules.
package web

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	module "github.com/pockettcg/tracker/internal/web/module"
	"github.com/pockettcg/tracker/internal/web/modules/admin"
	"github.com/pockettcg/tracker/internal/web/modules/collection"
	"github.com/pockettcg/tracker/internal/web/modules/health"
	"github.com/pockettcg/tracker/internal/web/modules/packs"
	"github.com/pockettcg/tracker/internal/web/modules/social"
	"github.com/pockettcg/tracker/internal/web/platform/httpx"
	"github.com/pockettcg/tracker/internal/web/platform/modulehandler"
	"github.com/pockettcg/tracker/internal/web/platform/requestmeta"
	"github.com/pockettcg/tracker/internal/web/platform/sessioncookie"
	"github.com/pockettcg/tracker/internal/web/session"
	"github.com/pockettcg/tracker/internal/web/static"

	webi18n "github.com/pockettcg/tracker/internal/web/i18n"
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 15 * time.Second
)

// Config defines the inputs for the tracker web server.
type Config struct {
	HTTPAddr      string
	SessionSecret string
	// SessionTTL bounds session token lifetime. Zero uses the default.
	SessionTTL time.Duration
	// TrustForwardedProto enables X-Forwarded-Proto scheme detection when the
	// server runs behind a TLS-terminating proxy.
	TrustForwardedProto bool
}

// Store is the combined persistence surface the web modules depend on.
type Store interface {
	collection.Store
	packs.Store
	social.Store
	admin.Store
	health.Pinger
}

// Server hosts the tracker HTTP server.
type Server struct {
	httpAddr   string
	httpServer *http.Server
}

// NewHandler assembles the HTTP handler from the feature modules.
func NewHandler(config Config, store Store) (http.Handler, error) {
	if store == nil {
		return nil, errors.New("store is required")
	}
	sessions, err := session.NewManager([]byte(config.SessionSecret), config.SessionTTL)
	if err != nil {
		return nil, fmt.Errorf("session manager: %w", err)
	}

	resolveUserID := func(r *http.Request) int64 {
		claims, ok := requestClaims(r, sessions)
		if !ok {
			return 0
		}
		return claims.UserID
	}
	resolveLanguage := func(r *http.Request) string {
		tag, _ := webi18n.ResolveTag(r)
		return tag.String()
	}
	resolveViewer := func(r *http.Request) module.Viewer {
		claims, ok := requestClaims(r, sessions)
		if !ok {
			return module.Viewer{}
		}
		return module.Viewer{Username: claims.Username, SignedIn: true}
	}
	base := modulehandler.NewBase(resolveUserID, resolveLanguage, resolveViewer)
	schemePolicy := requestmeta.SchemePolicy{TrustForwardedProto: config.TrustForwardedProto}

	modules := []module.Module{
		collection.New(
			collection.WithStore(store),
			collection.WithBase(base),
			collection.WithSchemePolicy(schemePolicy),
		),
		packs.New(
			packs.WithStore(store),
			packs.WithBase(base),
		),
		social.New(
			social.WithStore(store),
			social.WithBase(base),
			social.WithSessions(sessions),
			social.WithSchemePolicy(schemePolicy),
		),
		admin.New(
			admin.WithStore(store),
			admin.WithBase(base),
		),
		health.New(health.WithPinger(store)),
	}

	mux := http.NewServeMux()
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.FS(static.FS))))
	for _, mod := range modules {
		mount, err := mod.Mount()
		if err != nil {
			return nil, fmt.Errorf("mount %s module: %w", mod.ID(), err)
		}
		for _, prefix := range mount.Prefixes {
			mux.Handle(prefix, mount.Handler)
		}
	}

	return httpx.Chain(mux, httpx.RequestID(), httpx.RecoverPanic()), nil
}

// requestClaims resolves verified session claims from the request cookie.
func requestClaims(r *http.Request, sessions *session.Manager) (session.Claims, bool) {
	token, ok := sessioncookie.Read(r)
	if !ok {
		return session.Claims{}, false
	}
	claims, err := sessions.Parse(token)
	if err != nil {
		return session.Claims{}, false
	}
	return claims, true
}

// NewServer builds a configured web server.
func NewServer(config Config, store Store) (*Server, error) {
	httpAddr := strings.TrimSpace(config.HTTPAddr)
	if httpAddr == "" {
		return nil, errors.New("http address is required")
	}
	handler, err := NewHandler(config, store)
	if err != nil {
		return nil, fmt.Errorf("build handler: %w", err)
	}
	httpServer := &http.Server{
		Addr:              httpAddr,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
	}
	return &Server{httpAddr: httpAddr, httpServer: httpServer}, nil
}

// ListenAndServe runs the HTTP server until the context ends.
//
// On cancellation, it performs a bounded shutdown so in-flight requests
// are drained before hard close.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if s == nil {
		return errors.New("web server is nil")
	}
	if ctx == nil {
		return errors.New("context is required")
	}

	serveErr := make(chan error, 1)
	log.Printf("tracker web listening on %s", s.httpAddr)
	go func() {
		serveErr <- s.httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		err := s.httpServer.Shutdown(shutdownCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	}
}
