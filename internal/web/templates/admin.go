package templates

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"

	"github.com/pockettcg/tracker/internal/tracker/domain"
)

// PackTypeAdminView carries the pack type management page data.
type PackTypeAdminView struct {
	Generations []domain.Generation
	PackTypes   []domain.PackType
	ErrorKey    string
}

// PackTypeAdminPage renders the pack type listing and creation form.
func PackTypeAdminPage(page PageContext, view PackTypeAdminView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, "<h1>%s</h1>\n", esc(T(page.Loc, "web.admin.packtypes_title"))); err != nil {
			return err
		}
		if err := renderFormError(w, page, view.ErrorKey); err != nil {
			return err
		}
		if err := renderPackTypeTable(w, page, view.PackTypes); err != nil {
			return err
		}
		return renderPackTypeForm(w, page, view.Generations)
	})
}

func renderPackTypeTable(w io.Writer, page PageContext, packTypes []domain.PackType) error {
	if len(packTypes) == 0 {
		_, err := fmt.Fprintf(w, "<p class=\"empty\">%s</p>\n", esc(T(page.Loc, "web.admin.packtypes_empty")))
		return err
	}
	if _, err := fmt.Fprintf(w, "<table class=\"admin-table\">\n<thead>\n<tr>\n<th>%s</th>\n<th>%s</th>\n<th>%s</th>\n<th>%s</th>\n</tr>\n</thead>\n<tbody>\n",
		esc(T(page.Loc, "web.admin.column_generation")),
		esc(T(page.Loc, "web.admin.column_name")),
		esc(T(page.Loc, "web.admin.column_slots")),
		esc(T(page.Loc, "web.admin.column_occurrence"))); err != nil {
		return err
	}
	for _, packType := range packTypes {
		if _, err := fmt.Fprintf(w, "<tr>\n<td>%s</td>\n<td>%s</td>\n<td>%d</td>\n<td>%.4f</td>\n</tr>\n",
			esc(packType.Generation), esc(packType.DisplayName), packType.SlotCount, packType.OccurrenceProbability); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "</tbody>\n</table>\n")
	return err
}

func renderPackTypeForm(w io.Writer, page PageContext, generations []domain.Generation) error {
	if _, err := fmt.Fprintf(w, "<h2>%s</h2>\n<form method=\"post\" action=\"/admin/packtypes\" class=\"admin-form\" id=\"packtype-form\">\n<label>%s<select name=\"generation\" required>\n",
		esc(T(page.Loc, "web.admin.packtypes_create")),
		esc(T(page.Loc, "web.admin.column_generation"))); err != nil {
		return err
	}
	for _, gen := range generations {
		if _, err := fmt.Fprintf(w, "<option value=%q>%s</option>\n", esc(gen.Name), esc(gen.DisplayName)); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w,
		"</select></label>\n"+
			"<label>%s<input type=\"text\" name=\"name\" required></label>\n"+
			"<label>%s<input type=\"text\" name=\"display_name\"></label>\n"+
			"<label>%s<input type=\"number\" name=\"slot_count\" id=\"slot-count\" min=\"1\" max=\"%d\" value=\"5\" required></label>\n"+
			"<label>%s<input type=\"number\" name=\"occurrence_probability\" step=\"0.0001\" min=\"0\" max=\"1\" value=\"1\" required></label>\n",
		esc(T(page.Loc, "web.admin.column_name")),
		esc(T(page.Loc, "web.admin.display_name")),
		esc(T(page.Loc, "web.admin.column_slots")), domain.MaxSlots,
		esc(T(page.Loc, "web.admin.column_occurrence"))); err != nil {
		return err
	}
	for slot := 1; slot <= domain.MaxSlots; slot++ {
		if _, err := fmt.Fprintf(w,
			"<div class=\"slot-row\" data-slot=\"%d\">\n<label>%s<input type=\"text\" name=\"slot_%d_rarities\" placeholder=\"common=1.0\"></label>\n</div>\n",
			slot, esc(T(page.Loc, "web.admin.slot_label", slot)), slot); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "<button type=\"submit\">%s</button>\n</form>\n", esc(T(page.Loc, "web.account.save")))
	return err
}
