package social_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/pockettcg/tracker/internal/storage/sqlite"
	"github.com/pockettcg/tracker/internal/tracker/domain"
	module "github.com/pockettcg/tracker/internal/web/module"
	"github.com/pockettcg/tracker/internal/web/modules/social"
	"github.com/pockettcg/tracker/internal/web/platform/modulehandler"
	"github.com/pockettcg/tracker/internal/web/platform/sessioncookie"
	"github.com/pockettcg/tracker/internal/web/session"
)

type fixture struct {
	store    *sqlite.Store
	handler  http.Handler
	sessions *session.Manager
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	store, err := sqlite.OpenInMemory()
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	sessions, err := session.NewManager([]byte("test-secret"), time.Hour)
	if err != nil {
		t.Fatalf("session manager: %v", err)
	}

	resolveUserID := func(r *http.Request) int64 {
		token, ok := sessioncookie.Read(r)
		if !ok {
			return 0
		}
		claims, err := sessions.Parse(token)
		if err != nil {
			return 0
		}
		return claims.UserID
	}
	base := modulehandler.NewBase(
		resolveUserID,
		func(*http.Request) string { return "en-US" },
		func(r *http.Request) module.Viewer {
			if resolveUserID(r) > 0 {
				return module.Viewer{SignedIn: true}
			}
			return module.Viewer{}
		},
	)
	mount, err := social.New(
		social.WithStore(store),
		social.WithBase(base),
		social.WithSessions(sessions),
	).Mount()
	if err != nil {
		t.Fatalf("mount: %v", err)
	}
	return fixture{store: store, handler: mount.Handler, sessions: sessions}
}

func (fix fixture) createUser(t *testing.T, username, password string) domain.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	user, err := fix.store.CreateUser(context.Background(), username, "", string(hash))
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func (fix fixture) sessionCookie(t *testing.T, user domain.User) *http.Cookie {
	t.Helper()
	token, err := fix.sessions.Issue(user.ID, user.Username)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	return &http.Cookie{Name: sessioncookie.Name, Value: token}
}

func postForm(handler http.Handler, path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestRegisterCreatesAccountAndSignsIn(t *testing.T) {
	fix := newFixture(t)

	form := url.Values{}
	form.Set("username", "ash")
	form.Set("password", "pikachu-123")
	form.Set("password_confirm", "pikachu-123")
	rec := postForm(fix.handler, "/register", form)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}

	var sessionValue string
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == sessioncookie.Name {
			sessionValue = cookie.Value
		}
	}
	if sessionValue == "" {
		t.Fatal("session cookie not set")
	}
	claims, err := fix.sessions.Parse(sessionValue)
	if err != nil {
		t.Fatalf("parse session: %v", err)
	}
	if claims.Username != "ash" {
		t.Fatalf("claims = %+v", claims)
	}
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	fix := newFixture(t)

	form := url.Values{}
	form.Set("username", "ash")
	form.Set("password", "short")
	form.Set("password_confirm", "short")
	rec := postForm(fix.handler, "/register", form)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `class="form-error"`) {
		t.Fatalf("form error missing:\n%s", rec.Body.String())
	}
}

func TestRegisterRejectsDuplicateUsername(t *testing.T) {
	fix := newFixture(t)
	fix.createUser(t, "ash", "pikachu-123")

	form := url.Values{}
	form.Set("username", "ash")
	form.Set("password", "pikachu-123")
	form.Set("password_confirm", "pikachu-123")
	rec := postForm(fix.handler, "/register", form)
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	fix := newFixture(t)
	fix.createUser(t, "ash", "pikachu-123")

	form := url.Values{}
	form.Set("username", "ash")
	form.Set("password", "wrong-password")
	rec := postForm(fix.handler, "/login", form)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestLoginIssuesSession(t *testing.T) {
	fix := newFixture(t)
	fix.createUser(t, "ash", "pikachu-123")

	form := url.Values{}
	form.Set("username", "ash")
	form.Set("password", "pikachu-123")
	rec := postForm(fix.handler, "/login", form)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestAccountRequiresSignIn(t *testing.T) {
	fix := newFixture(t)

	rec := httptest.NewRecorder()
	fix.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/account", nil))
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := rec.Header().Get("Location"); got != "/login" {
		t.Fatalf("location = %q", got)
	}
}

func TestAccountDeleteRemovesUserAndClearsSession(t *testing.T) {
	fix := newFixture(t)
	user := fix.createUser(t, "ash", "pikachu-123")

	rec := postForm(fix.handler, "/account/delete", url.Values{}, fix.sessionCookie(t, user))
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Location"); got != "/" {
		t.Fatalf("location = %q", got)
	}

	var cleared bool
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == sessioncookie.Name && cookie.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Fatal("session cookie not cleared")
	}

	_, found, err := fix.store.UserByUsername(context.Background(), "ash")
	if err != nil {
		t.Fatalf("user by username: %v", err)
	}
	if found {
		t.Fatal("expected account to be gone")
	}
}

func TestProfileUpdateAndVisibility(t *testing.T) {
	fix := newFixture(t)
	owner := fix.createUser(t, "ash", "pikachu-123")
	stranger := fix.createUser(t, "gary", "eevee-4567")

	// Profiles start private: strangers get a 404.
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/profile/ash", nil)
	req.AddCookie(fix.sessionCookie(t, stranger))
	fix.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("private profile status = %d", rec.Code)
	}

	// The owner always sees their own profile.
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/profile/ash", nil)
	req.AddCookie(fix.sessionCookie(t, owner))
	fix.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("own profile status = %d", rec.Code)
	}

	form := url.Values{}
	form.Set("friend_code", "1234-5678-9012-3456")
	form.Set("public", "on")
	rec = postForm(fix.handler, "/profile", form, fix.sessionCookie(t, owner))
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("update status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/profile/ash", nil)
	req.AddCookie(fix.sessionCookie(t, stranger))
	fix.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("public profile status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "1234-5678-9012-3456") {
		t.Fatalf("friend code missing:\n%s", rec.Body.String())
	}
}

func TestFriendRequestLifecycle(t *testing.T) {
	fix := newFixture(t)
	sender := fix.createUser(t, "ash", "pikachu-123")
	receiver := fix.createUser(t, "misty", "starmie-789")

	rec := postForm(fix.handler, fmt.Sprintf("/friends/send/%d", receiver.ID), url.Values{}, fix.sessionCookie(t, sender))
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("send status = %d", rec.Code)
	}

	// Sending to yourself is forbidden.
	rec = postForm(fix.handler, fmt.Sprintf("/friends/send/%d", sender.ID), url.Values{}, fix.sessionCookie(t, sender))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("self request status = %d", rec.Code)
	}

	getFriends := func(user domain.User) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/friends", nil)
		req.AddCookie(fix.sessionCookie(t, user))
		fix.handler.ServeHTTP(rec, req)
		return rec
	}

	rec = getFriends(receiver)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "/friends/accept/") {
		t.Fatalf("pending request missing: status=%d\n%s", rec.Code, rec.Body.String())
	}

	pending, err := fix.store.PendingRequests(context.Background(), receiver.ID)
	if err != nil || len(pending) != 1 {
		t.Fatalf("pending = %v err = %v", pending, err)
	}
	rec = postForm(fix.handler, fmt.Sprintf("/friends/accept/%d", pending[0].RequestID), url.Values{}, fix.sessionCookie(t, receiver))
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("accept status = %d", rec.Code)
	}

	rec = getFriends(sender)
	if !strings.Contains(rec.Body.String(), "misty") {
		t.Fatalf("friend missing:\n%s", rec.Body.String())
	}
}
