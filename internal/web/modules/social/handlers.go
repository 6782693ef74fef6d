package social

import (
	"net/http"
	"strconv"
	"strings"

	apperrors "github.com/pockettcg/tracker/internal/platform/errors"
	"github.com/pockettcg/tracker/internal/tracker/domain"
	webi18n "github.com/pockettcg/tracker/internal/web/i18n"
	"github.com/pockettcg/tracker/internal/web/platform/flash"
	"github.com/pockettcg/tracker/internal/web/platform/modulehandler"
	"github.com/pockettcg/tracker/internal/web/platform/requestmeta"
	"github.com/pockettcg/tracker/internal/web/platform/sessioncookie"
	"github.com/pockettcg/tracker/internal/web/platform/weberror"
	"github.com/pockettcg/tracker/internal/web/session"
	webtemplates "github.com/pockettcg/tracker/internal/web/templates"
)

type handlers struct {
	service      service
	base         modulehandler.Base
	sessions     *session.Manager
	schemePolicy requestmeta.SchemePolicy
}

func newHandlers(s service, base modulehandler.Base, sessions *session.Manager, schemePolicy requestmeta.SchemePolicy) handlers {
	return handlers{service: s, base: base, sessions: sessions, schemePolicy: schemePolicy}
}

func (h handlers) pageContext(w http.ResponseWriter, r *http.Request) webtemplates.PageContext {
	loc, lang := h.base.PageLocalizer(w, r)
	return webtemplates.PageContext{Lang: lang, Loc: loc, Viewer: h.base.ResolveRequestViewer(r)}
}

func (h handlers) signIn(w http.ResponseWriter, r *http.Request, user domain.User) error {
	token, err := h.sessions.Issue(user.ID, user.Username)
	if err != nil {
		return err
	}
	sessioncookie.WriteWithPolicy(w, r, token, h.schemePolicy)
	return nil
}

// formErrorKey maps an error to a form-safe localization key.
func formErrorKey(err error) string {
	if key := weberror.LocalizationKey(err); key != "" {
		return key
	}
	return "web.error.generic"
}

func (h handlers) handleRegisterPage(w http.ResponseWriter, r *http.Request) {
	if h.base.RequestUserID(r) > 0 {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	page := h.pageContext(w, r)
	h.base.WritePage(w, r, webtemplates.T(page.Loc, "web.auth.register_title"), http.StatusOK, nil,
		webtemplates.RegisterPage(page, webtemplates.AuthForm{}))
}

func (h handlers) handleRegister(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.base.WriteError(w, r, err)
		return
	}
	username := r.PostFormValue("username")
	email := r.PostFormValue("email")
	user, err := h.service.register(r.Context(), username, email,
		r.PostFormValue("password"), r.PostFormValue("password_confirm"))
	if err != nil {
		page := h.pageContext(w, r)
		form := webtemplates.AuthForm{Username: username, Email: email, ErrorKey: formErrorKey(err)}
		h.base.WritePage(w, r, webtemplates.T(page.Loc, "web.auth.register_title"),
			apperrors.HTTPStatus(err), nil, webtemplates.RegisterPage(page, form))
		return
	}
	if err := h.signIn(w, r, user); err != nil {
		h.base.WriteError(w, r, err)
		return
	}
	flash.Write(w, r, flash.NoticeSuccess("web.auth.registered"))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h handlers) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if h.base.RequestUserID(r) > 0 {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	page := h.pageContext(w, r)
	h.base.WritePage(w, r, webtemplates.T(page.Loc, "web.auth.login_title"), http.StatusOK, nil,
		webtemplates.LoginPage(page, webtemplates.AuthForm{}))
}

func (h handlers) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.base.WriteError(w, r, err)
		return
	}
	username := r.PostFormValue("username")
	user, err := h.service.authenticate(r.Context(), username, r.PostFormValue("password"))
	if err != nil {
		page := h.pageContext(w, r)
		form := webtemplates.AuthForm{Username: username, ErrorKey: formErrorKey(err)}
		h.base.WritePage(w, r, webtemplates.T(page.Loc, "web.auth.login_title"),
			apperrors.HTTPStatus(err), nil, webtemplates.LoginPage(page, form))
		return
	}
	if err := h.signIn(w, r, user); err != nil {
		h.base.WriteError(w, r, err)
		return
	}
	flash.Write(w, r, flash.NoticeSuccess("web.auth.signed_in"))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h handlers) handleLogout(w http.ResponseWriter, r *http.Request) {
	sessioncookie.ClearWithPolicy(w, r, h.schemePolicy)
	flash.Write(w, r, flash.NoticeSuccess("web.auth.signed_out"))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// requireUser resolves the signed-in user id or redirects to the login page.
func (h handlers) requireUser(w http.ResponseWriter, r *http.Request) (int64, bool) {
	userID := h.base.RequestUserID(r)
	if userID <= 0 {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return 0, false
	}
	return userID, true
}

func (h handlers) handleAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	account, err := h.service.account(r.Context(), userID)
	if err != nil {
		h.base.WriteError(w, r, err)
		return
	}
	page := h.pageContext(w, r)
	h.base.WritePage(w, r, webtemplates.T(page.Loc, "web.account.title"), http.StatusOK, nil,
		webtemplates.AccountPage(page, account))
}

func (h handlers) handleProfileUpdate(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		h.base.WriteError(w, r, err)
		return
	}
	public := r.PostFormValue("public") != ""
	if err := h.service.updateProfile(r.Context(), userID, r.PostFormValue("friend_code"), public); err != nil {
		h.base.WriteError(w, r, err)
		return
	}
	flash.Write(w, r, flash.NoticeSuccess("web.account.saved"))
	http.Redirect(w, r, "/account", http.StatusSeeOther)
}

func (h handlers) handlePasswordChange(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		h.base.WriteError(w, r, err)
		return
	}
	err := h.service.changePassword(r.Context(), userID,
		r.PostFormValue("current_password"),
		r.PostFormValue("new_password"),
		r.PostFormValue("new_password_confirm"))
	if err != nil {
		account, loadErr := h.service.account(r.Context(), userID)
		if loadErr != nil {
			h.base.WriteError(w, r, loadErr)
			return
		}
		account.ErrorKey = formErrorKey(err)
		page := h.pageContext(w, r)
		h.base.WritePage(w, r, webtemplates.T(page.Loc, "web.account.title"),
			apperrors.HTTPStatus(err), nil, webtemplates.AccountPage(page, account))
		return
	}
	flash.Write(w, r, flash.NoticeSuccess("web.account.password_changed"))
	http.Redirect(w, r, "/account", http.StatusSeeOther)
}

func (h handlers) handleAccountDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	if err := h.service.deleteAccount(r.Context(), userID); err != nil {
		h.base.WriteError(w, r, err)
		return
	}
	sessioncookie.ClearWithPolicy(w, r, h.schemePolicy)
	flash.Write(w, r, flash.NoticeSuccess("web.account.deleted"))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h handlers) handlePublicProfile(w http.ResponseWriter, r *http.Request) {
	username := strings.TrimSpace(r.PathValue("username"))
	loc, lang := h.base.PageLocalizer(w, r)
	view, found, err := h.service.publicProfile(r.Context(), username,
		h.base.RequestUserID(r), webi18n.TranslationLanguage(lang))
	if err != nil {
		h.base.WriteError(w, r, err)
		return
	}
	if !found {
		h.base.WriteNotFound(w, r)
		return
	}
	page := webtemplates.PageContext{Lang: lang, Loc: loc, Viewer: h.base.ResolveRequestViewer(r)}
	h.base.WritePage(w, r, view.Username, http.StatusOK, nil,
		webtemplates.PublicProfilePage(page, view))
}

func (h handlers) handleUserSearch(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	view := webtemplates.SearchView{Query: query}
	if query != "" {
		results, err := h.service.searchProfiles(r.Context(), query, h.base.RequestUserID(r))
		if err != nil {
			h.base.WriteError(w, r, err)
			return
		}
		view.Results = results
	}
	page := h.pageContext(w, r)
	h.base.WritePage(w, r, webtemplates.T(page.Loc, "web.search.title"), http.StatusOK, nil,
		webtemplates.UserSearchPage(page, view))
}

func (h handlers) handleFriends(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	view, err := h.service.friends(r.Context(), userID)
	if err != nil {
		h.base.WriteError(w, r, err)
		return
	}
	page := h.pageContext(w, r)
	h.base.WritePage(w, r, webtemplates.T(page.Loc, "web.friends.title"), http.StatusOK, nil,
		webtemplates.FriendsPage(page, view))
}

func (h handlers) handleFriendSend(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	toUserID, err := strconv.ParseInt(strings.TrimSpace(r.PathValue("id")), 10, 64)
	if err != nil || toUserID <= 0 {
		h.base.WriteError(w, r, apperrors.New(apperrors.CodeNotFound, "user id is invalid"))
		return
	}
	if err := h.service.store.CreateFriendRequest(r.Context(), userID, toUserID); err != nil {
		h.base.WriteError(w, r, err)
		return
	}
	flash.Write(w, r, flash.NoticeSuccess("web.friends.request_sent"))
	http.Redirect(w, r, "/users/search", http.StatusSeeOther)
}

func (h handlers) handleFriendAccept(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	requestID, err := strconv.ParseInt(strings.TrimSpace(r.PathValue("id")), 10, 64)
	if err != nil || requestID <= 0 {
		h.base.WriteError(w, r, apperrors.New(apperrors.CodeFriendRequestUnknown, "request id is invalid"))
		return
	}
	if err := h.service.store.AcceptFriendRequest(r.Context(), requestID, userID); err != nil {
		h.base.WriteError(w, r, err)
		return
	}
	flash.Write(w, r, flash.NoticeSuccess("web.friends.request_accepted"))
	http.Redirect(w, r, "/friends", http.StatusSeeOther)
}
