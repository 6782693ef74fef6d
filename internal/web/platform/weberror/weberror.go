// Package weberror renders shared error responses for web modules.
package weberror

import (
	"net/http"
	"strings"

	apperrors "github.com/pockettcg/tracker/internal/platform/errors"
	webi18n "github.com/pockettcg/tracker/internal/web/i18n"
	module "github.com/pockettcg/tracker/internal/web/module"
	"github.com/pockettcg/tracker/internal/web/platform/httpx"
	"github.com/pockettcg/tracker/internal/web/platform/requestmeta"
	webtemplates "github.com/pockettcg/tracker/internal/web/templates"
)

// localizationKeys maps error codes to user-facing message keys.
var localizationKeys = map[apperrors.Code]string{
	apperrors.CodeUserCredentials:         "web.error.invalid_credentials",
	apperrors.CodeUserUsernameEmpty:       "web.error.username_required",
	apperrors.CodeUserEmailInvalid:        "web.error.email_invalid",
	apperrors.CodeUserUsernameTaken:       "web.error.username_taken",
	apperrors.CodeUserPasswordTooShort:    "web.error.password_too_short",
	apperrors.CodeUserPasswordMismatch:    "web.error.password_mismatch",
	apperrors.CodeSessionInvalid:          "web.error.session_invalid",
	apperrors.CodeFriendSelfRequest:       "web.error.friend_self_request",
	apperrors.CodeFriendProfilePrivate:    "web.error.profile_private",
	apperrors.CodeFriendRequestUnknown:    "web.error.friend_request_unknown",
	apperrors.CodeCollectionInvalidAction: "web.error.invalid_action",
	apperrors.CodePackNameEmpty:           "web.error.pack_name_required",
	apperrors.CodePackTypeSlotCount:       "web.error.slot_count_invalid",
	apperrors.CodeProbabilityRange:        "web.error.probability_invalid",
	apperrors.CodeProbabilitySlotSums:     "web.error.slot_sums_invalid",
	apperrors.CodeRarityUnknown:           "web.error.rarity_unknown",
}

// LocalizationKey resolves a user-safe message key for an error, if any.
func LocalizationKey(err error) string {
	return localizationKeys[apperrors.CodeOf(err)]
}

// ShouldRenderAppError reports whether status should use the error-page UX.
func ShouldRenderAppError(statusCode int) bool {
	return statusCode == http.StatusNotFound || statusCode >= http.StatusInternalServerError
}

// PublicMessage resolves a user-safe localized error message.
func PublicMessage(loc webtemplates.Localizer, err error) string {
	if err == nil {
		return ""
	}
	if loc != nil {
		if key := LocalizationKey(err); key != "" {
			if localized := strings.TrimSpace(loc.Sprintf(key)); localized != "" && localized != key {
				return localized
			}
		}
	}
	statusCode := apperrors.HTTPStatus(err)
	if statusCode < http.StatusBadRequest {
		statusCode = http.StatusInternalServerError
	}
	if text := strings.TrimSpace(http.StatusText(statusCode)); text != "" {
		return text
	}
	return http.StatusText(http.StatusInternalServerError)
}

// ViewerResolver resolves viewer state for error pages.
type ViewerResolver interface {
	ResolveRequestViewer(r *http.Request) module.Viewer
}

// WriteAppError writes a localized full-page error response.
func WriteAppError(w http.ResponseWriter, r *http.Request, statusCode int, resolver ViewerResolver) {
	if w == nil {
		return
	}
	if !ShouldRenderAppError(statusCode) {
		statusCode = http.StatusInternalServerError
	}

	loc, lang := webi18n.ResolveLocalizer(w, r)
	viewer := module.Viewer{}
	if resolver != nil {
		viewer = resolver.ResolveRequestViewer(r)
	}
	pageCtx := webtemplates.PageContext{Lang: lang, Loc: loc, Viewer: viewer}
	if r != nil && r.URL != nil {
		pageCtx.CurrentPath = r.URL.Path
		pageCtx.CurrentQuery = r.URL.RawQuery
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(statusCode)
	title := webtemplates.ErrorPageTitle(statusCode, loc)
	layout := webtemplates.AppLayout(title, pageCtx, webtemplates.ErrorState(statusCode, loc))
	if err := layout.Render(httpx.RequestContext(r), w); err != nil {
		http.Error(w, PublicMessage(loc, err), statusCode)
	}
}

// WriteModuleError writes a module-safe localized error response.
// Asynchronous requests get JSON, full-page requests get HTML.
func WriteModuleError(w http.ResponseWriter, r *http.Request, err error, resolver ViewerResolver) {
	if w == nil {
		return
	}
	statusCode := apperrors.HTTPStatus(err)
	loc, _ := webi18n.ResolveLocalizer(w, r)
	if requestmeta.IsXHR(r) {
		httpx.WriteJSONError(w, statusCode, PublicMessage(loc, err))
		return
	}
	if ShouldRenderAppError(statusCode) {
		WriteAppError(w, r, statusCode, resolver)
		return
	}
	http.Error(w, PublicMessage(loc, err), statusCode)
}
