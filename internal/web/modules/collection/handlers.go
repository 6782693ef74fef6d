package collection

import (
	"net/http"
	"strconv"
	"strings"

	webi18n "github.com/pockettcg/tracker/internal/web/i18n"
	"github.com/pockettcg/tracker/internal/web/platform/flash"
	"github.com/pockettcg/tracker/internal/web/platform/httpx"
	"github.com/pockettcg/tracker/internal/web/platform/modulehandler"
	"github.com/pockettcg/tracker/internal/web/platform/pagerender"
	"github.com/pockettcg/tracker/internal/web/platform/requestmeta"
	webtemplates "github.com/pockettcg/tracker/internal/web/templates"
)

type handlers struct {
	service      service
	base         modulehandler.Base
	schemePolicy requestmeta.SchemePolicy
}

func newHandlers(s service, base modulehandler.Base, schemePolicy requestmeta.SchemePolicy) handlers {
	return handlers{service: s, base: base, schemePolicy: schemePolicy}
}

func (h handlers) handleHome(w http.ResponseWriter, r *http.Request) {
	loc, lang := h.base.PageLocalizer(w, r)
	userID := h.base.RequestUserID(r)
	translationLang := webi18n.TranslationLanguage(lang)
	sets, err := h.service.setOverview(r.Context(), userID, translationLang)
	if err != nil {
		h.base.WriteError(w, r, err)
		return
	}
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	var results []webtemplates.CardSearchRow
	if query != "" {
		results, err = h.service.searchCards(r.Context(), query, translationLang)
		if err != nil {
			h.base.WriteError(w, r, err)
			return
		}
	}
	page := webtemplates.PageContext{Lang: lang, Loc: loc, Viewer: h.base.ResolveRequestViewer(r)}
	h.base.WritePage(w, r, webtemplates.T(loc, "web.home.title"), http.StatusOK, nil,
		webtemplates.HomePage(page, sets, query, results))
}

func (h handlers) handleSetDetail(w http.ResponseWriter, r *http.Request) {
	code := strings.TrimSpace(r.PathValue("code"))
	loc, lang := h.base.PageLocalizer(w, r)
	userID := h.base.RequestUserID(r)
	detail, found, err := h.service.setDetail(r.Context(), code, userID, webi18n.TranslationLanguage(lang))
	if err != nil {
		h.base.WriteError(w, r, err)
		return
	}
	if !found {
		h.base.WriteNotFound(w, r)
		return
	}

	signedIn := userID > 0
	if r.URL.Query().Get("fragment") == "rarity_progress" {
		fragment := webtemplates.RarityProgress(loc, detail, signedIn)
		if err := pagerender.WriteFragment(w, r, http.StatusOK, fragment); err != nil {
			h.base.WriteError(w, r, err)
		}
		return
	}

	page := webtemplates.PageContext{Lang: lang, Loc: loc, Viewer: h.base.ResolveRequestViewer(r)}
	h.base.WritePage(w, r, detail.Name, http.StatusOK, []string{"/static/cardtable.js"},
		webtemplates.SetDetailPage(page, detail))
}

func (h handlers) handleNotFound(w http.ResponseWriter, r *http.Request) {
	h.base.WriteNotFound(w, r)
}

func (h handlers) handleCollect(w http.ResponseWriter, r *http.Request) {
	code := strings.TrimSpace(r.PathValue("code"))
	if err := r.ParseForm(); err != nil {
		h.base.WriteError(w, r, err)
		return
	}
	cardID, _ := strconv.ParseInt(strings.TrimSpace(r.PostFormValue("card_id")), 10, 64)
	action := strings.TrimSpace(r.PostFormValue("action"))

	collected, err := h.service.toggle(r.Context(), h.base.RequestUserID(r), cardID, action)
	if err != nil {
		h.base.WriteError(w, r, err)
		return
	}

	if requestmeta.IsXHR(r) {
		_ = httpx.WriteJSON(w, http.StatusOK, map[string]any{
			"status":    "success",
			"collected": collected,
		})
		return
	}
	noticeKey := "web.collection.card_collected"
	if !collected {
		noticeKey = "web.collection.card_uncollected"
	}
	flash.Write(w, r, flash.NoticeSuccess(noticeKey))
	http.Redirect(w, r, "/set/"+code, http.StatusSeeOther)
}
