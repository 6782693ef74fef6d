// Package sessioncookie owns the browser cookie carrying the signed session
// token. Writing and clearing share one shape so attributes never drift.
package sessioncookie

import (
	"net/http"
	"strings"

	"github.com/pockettcg/tracker/internal/web/platform/requestmeta"
)

// Name is the canonical web session cookie name.
const Name = "tcg_session"

// Read returns the session token carried by the request, if any.
func Read(r *http.Request) (string, bool) {
	if r == nil {
		return "", false
	}
	cookie, err := r.Cookie(Name)
	if err != nil {
		return "", false
	}
	token := strings.TrimSpace(cookie.Value)
	return token, token != ""
}

// WriteWithPolicy stores the session token. The cookie is http-only and lax;
// it is marked secure when the request arrived over HTTPS under the policy,
// so local plain-HTTP development keeps working.
func WriteWithPolicy(w http.ResponseWriter, r *http.Request, token string, policy requestmeta.SchemePolicy) {
	set(w, r, strings.TrimSpace(token), 0, policy)
}

// ClearWithPolicy expires the session cookie. The token itself stays valid
// until its TTL runs out; clearing only removes it from the browser.
func ClearWithPolicy(w http.ResponseWriter, r *http.Request, policy requestmeta.SchemePolicy) {
	set(w, r, "", -1, policy)
}

func set(w http.ResponseWriter, r *http.Request, value string, maxAge int, policy requestmeta.SchemePolicy) {
	if w == nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     Name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   requestmeta.IsHTTPSWithPolicy(r, policy),
		SameSite: http.SameSiteLaxMode,
	})
}
