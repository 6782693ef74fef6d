package packs

import (
	"net/http"

	webi18n "github.com/pockettcg/tracker/internal/web/i18n"
	"github.com/pockettcg/tracker/internal/web/platform/modulehandler"
	webtemplates "github.com/pockettcg/tracker/internal/web/templates"
)

type handlers struct {
	service service
	base    modulehandler.Base
}

func newHandlers(s service, base modulehandler.Base) handlers {
	return handlers{service: s, base: base}
}

func (h handlers) handlePacks(w http.ResponseWriter, r *http.Request) {
	loc, lang := h.base.PageLocalizer(w, r)
	userID := h.base.RequestUserID(r)

	var regular, god []webtemplates.PackOdds
	if userID > 0 {
		var err error
		regular, god, err = h.service.packOdds(r.Context(), userID, webi18n.TranslationLanguage(lang))
		if err != nil {
			h.base.WriteError(w, r, err)
			return
		}
	}

	page := webtemplates.PageContext{Lang: lang, Loc: loc, Viewer: h.base.ResolveRequestViewer(r)}
	h.base.WritePage(w, r, webtemplates.T(loc, "web.packs.title"), http.StatusOK, nil,
		webtemplates.PacksPage(page, regular, god))
}
