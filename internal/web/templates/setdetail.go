package templates

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"
)

// CardRow is one card within the set detail table.
type CardRow struct {
	ID          int64
	Number      string
	Name        string
	Rarity      string
	RarityTag   string
	RarityOrder int
	Packs       string
	Collected   bool
}

// SetDetail carries everything the set detail page renders.
type SetDetail struct {
	Code      string
	Name      string
	Collected int
	Total     int
	Groups    []RarityGroupProgress
	Cards     []CardRow
}

// RarityProgress renders the per-rarity progress section. The section id is
// stable so asynchronous collection updates can replace it in place.
func RarityProgress(loc Localizer, detail SetDetail, signedIn bool) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, "<section id=\"rarity-progress\" class=\"rarity-progress\">\n"); err != nil {
			return err
		}
		if signedIn {
			if err := renderProgressBar(w, detail.Collected, detail.Total); err != nil {
				return err
			}
			if _, err := io.WriteString(w, "<div class=\"rarity-chips\">\n"); err != nil {
				return err
			}
			for _, group := range detail.Groups {
				if group.Total == 0 {
					continue
				}
				if _, err := fmt.Fprintf(w, "<button type=\"button\" class=\"rarity-chip rarity-%s\" data-rarities=%q title=%q>%s %d/%d</button>\n", esc(group.Rarity), esc(strings.Join(group.Rarities, " ")), esc(group.Label), esc(group.Label), group.Collected, group.Total); err != nil {
					return err
				}
			}
			if _, err := io.WriteString(w, "</div>\n"); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, "</section>\n")
		return err
	})
}

// SetDetailPage renders a set's card table with sort, filter and collection
// toggling.
func SetDetailPage(page PageContext, detail SetDetail) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, "<h1>%s <small class=\"set-code\">%s</small></h1>\n", esc(detail.Name), esc(detail.Code)); err != nil {
			return err
		}
		if err := RarityProgress(page.Loc, detail, page.Viewer.SignedIn).Render(ctx, w); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "<div class=\"table-tools\">\n<input type=\"search\" id=\"card-filter\" placeholder=%q>\n", esc(T(page.Loc, "web.set.filter_placeholder"))); err != nil {
			return err
		}
		if page.Viewer.SignedIn {
			if _, err := fmt.Fprintf(w, "<details class=\"bulk-rarities\">\n<summary>%s</summary>\n", esc(T(page.Loc, "web.set.bulk_rarities"))); err != nil {
				return err
			}
			for _, group := range detail.Groups {
				if group.Total == 0 {
					continue
				}
				if _, err := fmt.Fprintf(w, "<label><input type=\"checkbox\" name=\"bulk-rarity\" value=%q> %s</label>\n", esc(strings.Join(group.Rarities, " ")), esc(group.Label)); err != nil {
					return err
				}
			}
			if _, err := io.WriteString(w, "</details>\n"); err != nil {
				return err
			}
			if _, err := fmt.Fprintf(w, "<button type=\"button\" id=\"bulk-collect\" class=\"secondary\">%s</button>\n", esc(T(page.Loc, "web.set.collect_visible"))); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, "</div>\n"); err != nil {
			return err
		}
		if err := renderCardTable(w, page, detail); err != nil {
			return err
		}
		_, err := io.WriteString(w, "<div class=\"float-buttons\" hidden>\n<button type=\"button\" id=\"scroll-top\" aria-label=\"top\">↑</button>\n<button type=\"button\" id=\"scroll-bottom\" aria-label=\"bottom\">↓</button>\n</div>\n")
		return err
	})
}

func renderCardTable(w io.Writer, page PageContext, detail SetDetail) error {
	signedIn := ""
	if page.Viewer.SignedIn {
		signedIn = fmt.Sprintf(" data-editable=\"true\" data-confirm-uncollect=%q data-confirm-bulk=%q",
			esc(T(page.Loc, "web.set.confirm_uncollect")),
			esc(T(page.Loc, "web.set.confirm_bulk")))
	}
	if _, err := fmt.Fprintf(w, "<table id=\"card-table\" data-set=%q%s>\n<thead>\n<tr>\n", esc(detail.Code), signedIn); err != nil {
		return err
	}
	headers := []struct {
		sortKey string
		key     string
	}{
		{"number", "web.set.column_number"},
		{"name", "web.set.column_name"},
		{"rarity", "web.set.column_rarity"},
		{"pack", "web.set.column_pack"},
		{"collected", "web.set.column_collected"},
	}
	for _, header := range headers {
		if _, err := fmt.Fprintf(w, "<th data-sort=%q><button type=\"button\" class=\"sort-button\">%s</button></th>\n", header.sortKey, esc(T(page.Loc, header.key))); err != nil {
			return err
		}
	}
	if _, err := io.WriteString(w, "</tr>\n</thead>\n<tbody>\n"); err != nil {
		return err
	}
	for _, card := range detail.Cards {
		rowClass := ""
		collectedMark := ""
		if card.Collected {
			rowClass = " class=\"collected\""
			collectedMark = "✓"
		}
		if _, err := fmt.Fprintf(w,
			"<tr data-card-id=\"%d\" data-collected=\"%t\" data-rarity=%q data-rarity-order=\"%d\"%s>\n<td>%s</td>\n<td>%s</td>\n<td><span class=\"rarity rarity-%s\">%s</span></td>\n<td>%s</td>\n<td class=\"collected-cell\">%s</td>\n</tr>\n",
			card.ID, card.Collected, esc(card.RarityTag), card.RarityOrder, rowClass, esc(card.Number), esc(card.Name), esc(card.RarityTag), esc(card.Rarity), esc(card.Packs), collectedMark); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "</tbody>\n</table>\n")
	return err
}
