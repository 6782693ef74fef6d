package templates

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/a-h/templ"
)

// RarityGroupProgress summarises collection progress for rarities sharing an
// icon. Rarity names the group's lowest-order member; Rarities lists every
// member tag.
type RarityGroupProgress struct {
	Rarity    string
	Label     string
	IconName  string
	Rarities  []string
	Collected int
	Total     int
}

// SetProgress summarises a set with the viewer's collection progress.
type SetProgress struct {
	Code        string
	Name        string
	ReleaseDate time.Time
	Collected   int
	Total       int
	Groups      []RarityGroupProgress
}

// CardSearchRow is one card match on the home page search.
type CardSearchRow struct {
	Name    string
	Number  string
	Rarity  string
	SetCode string
	SetName string
}

func percent(collected, total int) int {
	if total <= 0 {
		return 0
	}
	return collected * 100 / total
}

// HomePage renders the set overview with per-set progress and, when a query
// is present, card search results above it.
func HomePage(page PageContext, sets []SetProgress, query string, results []CardSearchRow) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, "<h1>%s</h1>\n", esc(T(page.Loc, "web.home.title"))); err != nil {
			return err
		}
		if !page.Viewer.SignedIn {
			if _, err := fmt.Fprintf(w, "<p class=\"hint\">%s</p>\n", esc(T(page.Loc, "web.home.signin_hint"))); err != nil {
				return err
			}
		}
		if err := renderCardSearch(w, page, query, results); err != nil {
			return err
		}
		if len(sets) == 0 {
			_, err := fmt.Fprintf(w, "<p class=\"empty\">%s</p>\n", esc(T(page.Loc, "web.home.empty")))
			return err
		}
		if _, err := io.WriteString(w, "<ul class=\"set-list\">\n"); err != nil {
			return err
		}
		for _, set := range sets {
			if err := renderSetCard(w, page, set); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, "</ul>\n")
		return err
	})
}

func renderCardSearch(w io.Writer, page PageContext, query string, results []CardSearchRow) error {
	if _, err := fmt.Fprintf(w, "<form class=\"search-form\" method=\"get\" action=\"/\">\n<input type=\"search\" name=\"q\" value=%q placeholder=%q>\n<button type=\"submit\">%s</button>\n</form>\n",
		esc(query),
		esc(T(page.Loc, "web.home.search_placeholder")),
		esc(T(page.Loc, "web.home.search_submit"))); err != nil {
		return err
	}
	if query == "" {
		return nil
	}
	if _, err := fmt.Fprintf(w, "<h2>%s</h2>\n", esc(T(page.Loc, "web.home.search_heading"))); err != nil {
		return err
	}
	if len(results) == 0 {
		_, err := fmt.Fprintf(w, "<p class=\"empty\">%s</p>\n", esc(T(page.Loc, "web.home.search_empty")))
		return err
	}
	if _, err := io.WriteString(w, "<ul class=\"search-results\">\n"); err != nil {
		return err
	}
	for _, result := range results {
		if _, err := fmt.Fprintf(w, "<li><a href=\"/set/%s\">%s</a> <span class=\"card-number\">#%s</span> <span class=\"card-set\">%s</span></li>\n",
			esc(result.SetCode), esc(result.Name), esc(result.Number), esc(result.SetName)); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "</ul>\n")
	return err
}

func renderSetCard(w io.Writer, page PageContext, set SetProgress) error {
	if _, err := fmt.Fprintf(w, "<li class=\"set-card\">\n<a class=\"set-link\" href=\"/set/%s\">\n<span class=\"set-name\">%s</span>\n<span class=\"set-code\">%s</span>\n</a>\n", esc(set.Code), esc(set.Name), esc(set.Code)); err != nil {
		return err
	}
	if page.Viewer.SignedIn {
		if err := renderProgressBar(w, set.Collected, set.Total); err != nil {
			return err
		}
		if _, err := io.WriteString(w, "<div class=\"rarity-chips\">\n"); err != nil {
			return err
		}
		for _, group := range set.Groups {
			if group.Total == 0 {
				continue
			}
			if _, err := fmt.Fprintf(w, "<span class=\"rarity-chip rarity-%s\" title=%q>%d/%d</span>\n", esc(group.Rarity), esc(group.Label), group.Collected, group.Total); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, "</div>\n"); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "</li>\n")
	return err
}

func renderProgressBar(w io.Writer, collected, total int) error {
	pct := percent(collected, total)
	_, err := fmt.Fprintf(w, "<div class=\"progress\" role=\"progressbar\" aria-valuenow=\"%d\" aria-valuemin=\"0\" aria-valuemax=\"100\">\n<div class=\"progress-fill\" style=\"width: %d%%\"></div>\n<span class=\"progress-label\">%d / %d</span>\n</div>\n", pct, pct, collected, total)
	return err
}
