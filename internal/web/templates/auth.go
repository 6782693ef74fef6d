package templates

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
)

// AuthForm carries repopulated values and an error for login and register.
type AuthForm struct {
	Username string
	Email    string
	ErrorKey string
}

// LoginPage renders the sign-in form.
func LoginPage(page PageContext, form AuthForm) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, "<h1>%s</h1>\n", esc(T(page.Loc, "web.auth.login_title"))); err != nil {
			return err
		}
		if err := renderFormError(w, page, form.ErrorKey); err != nil {
			return err
		}
		_, err := fmt.Fprintf(w,
			"<form method=\"post\" action=\"/login\" class=\"auth-form\">\n"+
				"<label>%s<input type=\"text\" name=\"username\" value=%q required autofocus></label>\n"+
				"<label>%s<input type=\"password\" name=\"password\" required></label>\n"+
				"<button type=\"submit\">%s</button>\n"+
				"</form>\n<p><a href=\"/register\">%s</a></p>\n",
			esc(T(page.Loc, "web.auth.username")), esc(form.Username),
			esc(T(page.Loc, "web.auth.password")),
			esc(T(page.Loc, "web.auth.login_submit")),
			esc(T(page.Loc, "web.auth.register_link")))
		return err
	})
}

// RegisterPage renders the account creation form.
func RegisterPage(page PageContext, form AuthForm) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, "<h1>%s</h1>\n", esc(T(page.Loc, "web.auth.register_title"))); err != nil {
			return err
		}
		if err := renderFormError(w, page, form.ErrorKey); err != nil {
			return err
		}
		_, err := fmt.Fprintf(w,
			"<form method=\"post\" action=\"/register\" class=\"auth-form\">\n"+
				"<label>%s<input type=\"text\" name=\"username\" value=%q required autofocus></label>\n"+
				"<label>%s<input type=\"email\" name=\"email\" value=%q></label>\n"+
				"<label>%s<input type=\"password\" name=\"password\" required></label>\n"+
				"<label>%s<input type=\"password\" name=\"password_confirm\" required></label>\n"+
				"<button type=\"submit\">%s</button>\n"+
				"</form>\n<p><a href=\"/login\">%s</a></p>\n",
			esc(T(page.Loc, "web.auth.username")), esc(form.Username),
			esc(T(page.Loc, "web.auth.email")), esc(form.Email),
			esc(T(page.Loc, "web.auth.password")),
			esc(T(page.Loc, "web.auth.password_confirm")),
			esc(T(page.Loc, "web.auth.register_submit")),
			esc(T(page.Loc, "web.auth.login_link")))
		return err
	})
}

func renderFormError(w io.Writer, page PageContext, errorKey string) error {
	if errorKey == "" {
		return nil
	}
	_, err := fmt.Fprintf(w, "<p class=\"form-error\" role=\"alert\">%s</p>\n", esc(T(page.Loc, errorKey)))
	return err
}
