package templates

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
)

// AccountView carries account page data for the signed-in user.
type AccountView struct {
	Username   string
	Email      string
	FriendCode string
	Public     bool
	ErrorKey   string
}

// AccountPage renders profile settings and the password change form.
func AccountPage(page PageContext, account AccountView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, "<h1>%s</h1>\n", esc(T(page.Loc, "web.account.title"))); err != nil {
			return err
		}
		if err := renderFormError(w, page, account.ErrorKey); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "<p class=\"account-username\">%s</p>\n", esc(account.Username)); err != nil {
			return err
		}

		publicChecked := ""
		if account.Public {
			publicChecked = " checked"
		}
		if _, err := fmt.Fprintf(w,
			"<form method=\"post\" action=\"/profile\" class=\"account-form\">\n"+
				"<label>%s<input type=\"text\" name=\"friend_code\" value=%q placeholder=\"0000-0000-0000-0000\"></label>\n"+
				"<label class=\"checkbox\"><input type=\"checkbox\" name=\"public\"%s>%s</label>\n"+
				"<button type=\"submit\">%s</button>\n"+
				"</form>\n",
			esc(T(page.Loc, "web.account.friend_code")), esc(account.FriendCode),
			publicChecked, esc(T(page.Loc, "web.account.public_profile")),
			esc(T(page.Loc, "web.account.save"))); err != nil {
			return err
		}

		if _, err := fmt.Fprintf(w,
			"<h2>%s</h2>\n<form method=\"post\" action=\"/account/password\" class=\"account-form\">\n"+
				"<label>%s<input type=\"password\" name=\"current_password\" required></label>\n"+
				"<label>%s<input type=\"password\" name=\"new_password\" required></label>\n"+
				"<label>%s<input type=\"password\" name=\"new_password_confirm\" required></label>\n"+
				"<button type=\"submit\">%s</button>\n"+
				"</form>\n",
			esc(T(page.Loc, "web.account.password_title")),
			esc(T(page.Loc, "web.account.current_password")),
			esc(T(page.Loc, "web.account.new_password")),
			esc(T(page.Loc, "web.auth.password_confirm")),
			esc(T(page.Loc, "web.account.password_submit"))); err != nil {
			return err
		}

		_, err := fmt.Fprintf(w,
			"<h2>%s</h2>\n<p class=\"hint\">%s</p>\n"+
				"<form method=\"post\" action=\"/account/delete\" class=\"account-form\">\n"+
				"<button type=\"submit\" class=\"danger\">%s</button>\n"+
				"</form>\n",
			esc(T(page.Loc, "web.account.delete_title")),
			esc(T(page.Loc, "web.account.delete_hint")),
			esc(T(page.Loc, "web.account.delete")))
		return err
	})
}
