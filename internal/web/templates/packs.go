package templates

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
)

// PackOdds carries the computed odds of one openable pack.
type PackOdds struct {
	SetCode  string
	SetName  string
	PackName string
	Chance   float64
	GodPack  bool
	Best     bool
	// MissingBase marks packs from sets where base rarities are incomplete.
	MissingBase bool
}

// PacksPage renders pack odds sorted by the caller, best pack highlighted.
func PacksPage(page PageContext, packs []PackOdds, godPacks []PackOdds) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, "<h1>%s</h1>\n", esc(T(page.Loc, "web.packs.title"))); err != nil {
			return err
		}
		if !page.Viewer.SignedIn {
			_, err := fmt.Fprintf(w, "<p class=\"hint\">%s</p>\n", esc(T(page.Loc, "web.packs.signin_hint")))
			return err
		}
		if len(packs) == 0 {
			if _, err := fmt.Fprintf(w, "<p class=\"empty\">%s</p>\n", esc(T(page.Loc, "web.packs.empty"))); err != nil {
				return err
			}
		} else {
			if err := renderOddsTable(w, page, "web.packs.regular_heading", packs); err != nil {
				return err
			}
		}
		if len(godPacks) > 0 {
			if err := renderOddsTable(w, page, "web.packs.god_heading", godPacks); err != nil {
				return err
			}
		}
		return nil
	})
}

func renderOddsTable(w io.Writer, page PageContext, headingKey string, packs []PackOdds) error {
	if _, err := fmt.Fprintf(w, "<h2>%s</h2>\n<table class=\"odds-table\">\n<thead>\n<tr>\n<th>%s</th>\n<th>%s</th>\n<th>%s</th>\n</tr>\n</thead>\n<tbody>\n",
		esc(T(page.Loc, headingKey)),
		esc(T(page.Loc, "web.packs.column_set")),
		esc(T(page.Loc, "web.packs.column_pack")),
		esc(T(page.Loc, "web.packs.column_chance"))); err != nil {
		return err
	}
	for _, pack := range packs {
		rowClass := ""
		badges := ""
		if pack.Best {
			rowClass = " class=\"best-pack\""
			badges = fmt.Sprintf(" <span class=\"badge\">%s</span>", esc(T(page.Loc, "web.packs.best_badge")))
		}
		if pack.MissingBase {
			badges += fmt.Sprintf(" <span class=\"badge badge-muted\">%s</span>", esc(T(page.Loc, "web.packs.missing_base")))
		}
		if _, err := fmt.Fprintf(w, "<tr%s>\n<td><a href=\"/set/%s\">%s</a></td>\n<td>%s%s</td>\n<td>%.2f%%</td>\n</tr>\n",
			rowClass, esc(pack.SetCode), esc(pack.SetName), esc(pack.PackName), badges, pack.Chance*100); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "</tbody>\n</table>\n")
	return err
}
