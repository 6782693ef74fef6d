package sessioncookie

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pockettcg/tracker/internal/web/platform/requestmeta"
)

func TestReadMissingCookie(t *testing.T) {
	t.Parallel()

	if _, ok := Read(httptest.NewRequest(http.MethodGet, "/", nil)); ok {
		t.Fatal("expected no cookie")
	}
}

func TestWriteAndRead(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	WriteWithPolicy(rec, httptest.NewRequest(http.MethodGet, "/", nil), " token-1 ", requestmeta.SchemePolicy{})

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("cookies = %v", cookies)
	}
	cookie := cookies[0]
	if cookie.Name != Name || cookie.Value != "token-1" {
		t.Fatalf("cookie = %+v", cookie)
	}
	if !cookie.HttpOnly {
		t.Fatal("session cookie must be http-only")
	}
	if cookie.SameSite != http.SameSiteLaxMode {
		t.Fatalf("same-site = %v", cookie.SameSite)
	}
	if cookie.Secure {
		t.Fatal("plain http request must not mark the cookie secure")
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	value, ok := Read(req)
	if !ok || value != "token-1" {
		t.Fatalf("Read = %q, %t", value, ok)
	}
}

func TestWriteMarksSecureOverHTTPS(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "https://tracker.example/", nil)
	WriteWithPolicy(rec, req, "token-1", requestmeta.SchemePolicy{})

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || !cookies[0].Secure {
		t.Fatalf("cookies = %v", cookies)
	}
}

func TestClearExpiresCookie(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	ClearWithPolicy(rec, httptest.NewRequest(http.MethodGet, "/", nil), requestmeta.SchemePolicy{})
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].MaxAge != -1 {
		t.Fatalf("cookies = %v", cookies)
	}
}
