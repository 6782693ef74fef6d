package templates

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/a-h/templ"
)

const (
	errorPageTitleNotFoundKey  = "web.error.page_title_not_found"
	errorPageTitleServerErrKey = "web.error.page_title_server_error"
	errorHeadingNotFoundKey    = "web.error.title_not_found"
	errorHeadingServerErrKey   = "web.error.title_server_error"
	errorMessageNotFoundKey    = "web.error.message_not_found"
	errorMessageServerErrKey   = "web.error.message_server_error"
	errorBackHomeKey           = "web.error.action_back_home"
)

// ErrorPageTitle returns the browser page title for error pages.
func ErrorPageTitle(statusCode int, loc Localizer) string {
	if normalizeErrorStatus(statusCode) == http.StatusNotFound {
		return T(loc, errorPageTitleNotFoundKey)
	}
	return T(loc, errorPageTitleServerErrKey)
}

// ErrorState renders the error page body.
func ErrorState(statusCode int, loc Localizer) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		heading := T(loc, errorHeadingServerErrKey)
		message := T(loc, errorMessageServerErrKey)
		if normalizeErrorStatus(statusCode) == http.StatusNotFound {
			heading = T(loc, errorHeadingNotFoundKey)
			message = T(loc, errorMessageNotFoundKey)
		}
		_, err := fmt.Fprintf(w,
			"<section class=\"error-state\">\n<h1>%s</h1>\n<p>%s</p>\n<a href=\"/\">%s</a>\n</section>\n",
			esc(heading), esc(message), esc(T(loc, errorBackHomeKey)))
		return err
	})
}

func normalizeErrorStatus(statusCode int) int {
	if statusCode == http.StatusNotFound {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}
