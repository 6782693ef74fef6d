// Package templates renders the web UI as templ components.
package templates

import (
	"context"
	"fmt"
	"html"
	"io"

	"github.com/a-h/templ"

	webi18n "github.com/pockettcg/tracker/internal/web/i18n"
	module "github.com/pockettcg/tracker/internal/web/module"
)

// AppName is the branded application title.
const AppName = "Pocket Tracker"

// Toast carries a one-time notice rendered at the top of a page.
type Toast struct {
	Kind    string
	Message string
}

// PageContext provides shared layout context for pages.
type PageContext struct {
	Lang         string
	Loc          Localizer
	CurrentPath  string
	CurrentQuery string
	Viewer       module.Viewer
	Toast        *Toast
	Scripts      []string
}

// ComposePageTitle appends the brand suffix to a page title.
func ComposePageTitle(title string) string {
	if title == "" {
		return AppName
	}
	return title + " | " + AppName
}

// LanguageOptions returns supported language options with active selection.
func LanguageOptions(page PageContext) []webi18n.LanguageOption {
	return webi18n.BuildLanguageOptions(page.Lang)
}

// LanguageURL returns the current URL with the language param updated.
func LanguageURL(page PageContext, tag string) string {
	return webi18n.LanguageURL(page.CurrentPath, page.CurrentQuery, tag)
}

func esc(value string) string {
	return html.EscapeString(value)
}

type emptyComponent struct{}

func (emptyComponent) Render(context.Context, io.Writer) error {
	return nil
}

// Empty returns a component that renders nothing.
func Empty() templ.Component {
	return emptyComponent{}
}

// AppLayout renders the full page shell around a body component.
func AppLayout(title string, page PageContext, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		lang := page.Lang
		if lang == "" {
			lang = "en-US"
		}
		if _, err := fmt.Fprintf(w, "<!DOCTYPE html>\n<html lang=%q data-theme=\"auto\">\n<head>\n<meta charset=\"utf-8\">\n<meta name=\"viewport\" content=\"width=device-width, initial-scale=1\">\n<title>%s</title>\n<link rel=\"stylesheet\" href=\"/static/styles.css\">\n</head>\n<body>\n", esc(lang), esc(ComposePageTitle(title))); err != nil {
			return err
		}
		if err := renderNav(w, page); err != nil {
			return err
		}
		if err := renderToast(w, page.Toast); err != nil {
			return err
		}
		if _, err := io.WriteString(w, "<main class=\"container\">\n"); err != nil {
			return err
		}
		if body != nil {
			if err := body.Render(ctx, w); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, "</main>\n<script src=\"/static/theme.js\"></script>\n"); err != nil {
			return err
		}
		for _, src := range page.Scripts {
			if _, err := fmt.Fprintf(w, "<script src=%q></script>\n", esc(src)); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, "</body>\n</html>\n")
		return err
	})
}

func renderNav(w io.Writer, page PageContext) error {
	if _, err := fmt.Fprintf(w, "<header class=\"site-header\">\n<nav class=\"site-nav\">\n<a class=\"brand\" href=\"/\">%s</a>\n<ul class=\"nav-links\">\n", esc(AppName)); err != nil {
		return err
	}
	links := []struct {
		href string
		key  string
	}{
		{"/", "web.nav.home"},
		{"/packs", "web.nav.packs"},
	}
	if page.Viewer.SignedIn {
		links = append(links,
			struct{ href, key string }{"/friends", "web.nav.friends"},
			struct{ href, key string }{"/users/search", "web.nav.search"},
			struct{ href, key string }{"/account", "web.nav.account"},
		)
	} else {
		links = append(links,
			struct{ href, key string }{"/login", "web.nav.login"},
			struct{ href, key string }{"/register", "web.nav.register"},
		)
	}
	for _, link := range links {
		current := ""
		if link.href == page.CurrentPath {
			current = " aria-current=\"page\""
		}
		if _, err := fmt.Fprintf(w, "<li><a href=%q%s>%s</a></li>\n", esc(link.href), current, esc(T(page.Loc, link.key))); err != nil {
			return err
		}
	}
	if page.Viewer.SignedIn {
		if _, err := fmt.Fprintf(w, "<li><form method=\"post\" action=\"/logout\"><button type=\"submit\" class=\"link-button\">%s</button></form></li>\n", esc(T(page.Loc, "web.nav.logout"))); err != nil {
			return err
		}
	}
	if _, err := io.WriteString(w, "</ul>\n<div class=\"nav-tools\">\n"); err != nil {
		return err
	}
	for _, option := range LanguageOptions(page) {
		class := "lang-link"
		if option.Active {
			class = "lang-link active"
		}
		if _, err := fmt.Fprintf(w, "<a class=%q href=%q>%s</a>\n", class, esc(LanguageURL(page, option.Tag)), esc(option.Label)); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "<button type=\"button\" id=\"theme-toggle\" aria-label=%q>◐</button>\n", esc(T(page.Loc, "web.theme.toggle"))); err != nil {
		return err
	}
	_, err := io.WriteString(w, "</div>\n</nav>\n</header>\n")
	return err
}

func renderToast(w io.Writer, toast *Toast) error {
	if toast == nil || toast.Message == "" {
		return nil
	}
	_, err := fmt.Fprintf(w, "<div class=\"toast toast-%s\" role=\"status\">%s</div>\n", esc(toast.Kind), esc(toast.Message))
	return err
}
