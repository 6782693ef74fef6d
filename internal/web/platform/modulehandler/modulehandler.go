// Package modulehandler provides a composable base for web module handlers.
//
// Feature modules share common handler infrastructure for user resolution,
// localization, page rendering, and error handling. This package extracts
// that shared scaffold so modules embed it rather than duplicating it.
package modulehandler

import (
	"net/http"

	"github.com/a-h/templ"

	webi18n "github.com/pockettcg/tracker/internal/web/i18n"
	module "github.com/pockettcg/tracker/internal/web/module"
	"github.com/pockettcg/tracker/internal/web/platform/pagerender"
	"github.com/pockettcg/tracker/internal/web/platform/weberror"
	webtemplates "github.com/pockettcg/tracker/internal/web/templates"
)

// Base carries the shared request-scoped resolvers used by module handlers.
// Embed this in module handler structs to get standard user resolution,
// localization, page rendering, and error writing without boilerplate.
type Base struct {
	resolveUserID   module.ResolveUserID
	resolveLanguage module.ResolveLanguage
	resolveViewer   module.ResolveViewer
}

// NewBase builds a handler base from explicit resolver functions.
func NewBase(resolveUserID module.ResolveUserID, resolveLanguage module.ResolveLanguage, resolveViewer module.ResolveViewer) Base {
	return Base{
		resolveUserID:   resolveUserID,
		resolveLanguage: resolveLanguage,
		resolveViewer:   resolveViewer,
	}
}

// NewTestBase builds a handler base with no-op resolvers suitable for tests
// that do not exercise user resolution or viewer state.
func NewTestBase() Base {
	return Base{
		resolveUserID:   func(*http.Request) int64 { return 0 },
		resolveLanguage: func(*http.Request) string { return "" },
		resolveViewer:   func(*http.Request) module.Viewer { return module.Viewer{} },
	}
}

// ResolveRequestViewer resolves chrome viewer state for a request.
func (b Base) ResolveRequestViewer(r *http.Request) module.Viewer {
	if b.resolveViewer == nil {
		return module.Viewer{}
	}
	return b.resolveViewer(r)
}

// RequestUserID extracts the authenticated user ID from the request.
// Zero means anonymous.
func (b Base) RequestUserID(r *http.Request) int64 {
	if r == nil || b.resolveUserID == nil {
		return 0
	}
	return b.resolveUserID(r)
}

// PageLocalizer resolves a localizer and language tag from the request.
func (b Base) PageLocalizer(w http.ResponseWriter, r *http.Request) (webtemplates.Localizer, string) {
	return webi18n.ResolveLocalizer(w, r)
}

// WriteError renders a localized module error response.
func (b Base) WriteError(w http.ResponseWriter, r *http.Request, err error) {
	weberror.WriteModuleError(w, r, err, &b)
}

// WriteNotFound renders a 404 error page within the app shell.
func (b Base) WriteNotFound(w http.ResponseWriter, r *http.Request) {
	weberror.WriteAppError(w, r, http.StatusNotFound, &b)
}

// WritePage renders a full module page with the given title and body.
func (b Base) WritePage(w http.ResponseWriter, r *http.Request, title string, statusCode int, scripts []string, body templ.Component) {
	if err := pagerender.WritePage(w, r, &b, pagerender.Page{
		Title:      title,
		StatusCode: statusCode,
		Scripts:    scripts,
		Body:       body,
	}); err != nil {
		b.WriteError(w, r, err)
	}
}
