// Package pagerender centralizes module page rendering behavior.
package pagerender

import (
	"bytes"
	"net/http"
	"strings"

	"github.com/a-h/templ"

	webi18n "github.com/pockettcg/tracker/internal/web/i18n"
	module "github.com/pockettcg/tracker/internal/web/module"
	flashnotice "github.com/pockettcg/tracker/internal/web/platform/flash"
	"github.com/pockettcg/tracker/internal/web/platform/httpx"
	webtemplates "github.com/pockettcg/tracker/internal/web/templates"
)

// RequestResolver resolves viewer state from a request.
// This decouples platform rendering from the module-layer handler base.
type RequestResolver interface {
	ResolveRequestViewer(r *http.Request) module.Viewer
}

// Page describes a full module page response.
type Page struct {
	Title      string
	StatusCode int
	Scripts    []string
	Body       templ.Component
}

// WritePage writes a full page using the shared app layout.
func WritePage(w http.ResponseWriter, r *http.Request, resolver RequestResolver, page Page) error {
	if w == nil {
		return nil
	}
	statusCode := page.StatusCode
	if statusCode <= 0 {
		statusCode = http.StatusOK
	}
	body := page.Body
	if body == nil {
		body = webtemplates.Empty()
	}

	loc, lang := webi18n.ResolveLocalizer(w, r)
	viewer := module.Viewer{}
	if resolver != nil {
		viewer = resolver.ResolveRequestViewer(r)
	}
	pageCtx := webtemplates.PageContext{
		Lang:    lang,
		Loc:     loc,
		Viewer:  viewer,
		Toast:   resolveFlashToast(w, r, loc),
		Scripts: page.Scripts,
	}
	if r != nil && r.URL != nil {
		pageCtx.CurrentPath = r.URL.Path
		pageCtx.CurrentQuery = r.URL.RawQuery
	}

	var buf bytes.Buffer
	if err := webtemplates.AppLayout(page.Title, pageCtx, body).Render(httpx.RequestContext(r), &buf); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(statusCode)
	_, _ = w.Write(buf.Bytes())
	return nil
}

// WriteFragment writes a bare component without the app layout, for
// asynchronous partial updates.
func WriteFragment(w http.ResponseWriter, r *http.Request, statusCode int, fragment templ.Component) error {
	if w == nil {
		return nil
	}
	if statusCode <= 0 {
		statusCode = http.StatusOK
	}
	if fragment == nil {
		fragment = webtemplates.Empty()
	}
	var buf bytes.Buffer
	if err := fragment.Render(httpx.RequestContext(r), &buf); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(statusCode)
	_, _ = w.Write(buf.Bytes())
	return nil
}

func resolveFlashToast(w http.ResponseWriter, r *http.Request, loc webtemplates.Localizer) *webtemplates.Toast {
	notice, ok := flashnotice.ReadAndClear(w, r)
	if !ok {
		return nil
	}
	message := strings.TrimSpace(loc.Sprintf(notice.Key))
	if message == "" {
		message = strings.TrimSpace(notice.Key)
	}
	if message == "" {
		return nil
	}
	return &webtemplates.Toast{
		Kind:    string(notice.Kind),
		Message: message,
	}
}
