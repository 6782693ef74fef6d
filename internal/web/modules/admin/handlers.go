package admin

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/pockettcg/tracker/internal/tracker/domain"
	"github.com/pockettcg/tracker/internal/web/platform/flash"
	"github.com/pockettcg/tracker/internal/web/platform/modulehandler"
	"github.com/pockettcg/tracker/internal/web/platform/weberror"
	webtemplates "github.com/pockettcg/tracker/internal/web/templates"

	apperrors "github.com/pockettcg/tracker/internal/platform/errors"
)

type handlers struct {
	service service
	base    modulehandler.Base
}

func newHandlers(s service, base modulehandler.Base) handlers {
	return handlers{service: s, base: base}
}

func (h handlers) handlePackTypesPage(w http.ResponseWriter, r *http.Request) {
	if h.base.RequestUserID(r) <= 0 {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	h.writePackTypesPage(w, r, http.StatusOK, "")
}

func (h handlers) handlePackTypeCreate(w http.ResponseWriter, r *http.Request) {
	if h.base.RequestUserID(r) <= 0 {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	if err := r.ParseForm(); err != nil {
		h.base.WriteError(w, r, err)
		return
	}

	slotCount, _ := strconv.Atoi(strings.TrimSpace(r.PostFormValue("slot_count")))
	occurrence, _ := strconv.ParseFloat(strings.TrimSpace(r.PostFormValue("occurrence_probability")), 64)
	input := packTypeInput{
		Generation:            r.PostFormValue("generation"),
		Name:                  r.PostFormValue("name"),
		DisplayName:           r.PostFormValue("display_name"),
		SlotCount:             slotCount,
		OccurrenceProbability: occurrence,
	}
	for slot := 1; slot <= domain.MaxSlots; slot++ {
		input.SlotRarities = append(input.SlotRarities, r.PostFormValue(fmt.Sprintf("slot_%d_rarities", slot)))
	}

	if err := h.service.createPackType(r.Context(), input); err != nil {
		h.writePackTypesPage(w, r, apperrors.HTTPStatus(err), formErrorKey(err))
		return
	}
	flash.Write(w, r, flash.NoticeSuccess("web.admin.packtype_created"))
	http.Redirect(w, r, "/admin/packtypes", http.StatusSeeOther)
}

func (h handlers) writePackTypesPage(w http.ResponseWriter, r *http.Request, statusCode int, errorKey string) {
	loc, lang := h.base.PageLocalizer(w, r)
	generations, packTypes, err := h.service.listing(r.Context())
	if err != nil {
		h.base.WriteError(w, r, err)
		return
	}
	page := webtemplates.PageContext{Lang: lang, Loc: loc, Viewer: h.base.ResolveRequestViewer(r)}
	view := webtemplates.PackTypeAdminView{Generations: generations, PackTypes: packTypes, ErrorKey: errorKey}
	h.base.WritePage(w, r, webtemplates.T(loc, "web.admin.packtypes_title"), statusCode,
		[]string{"/static/packtype-admin.js"}, webtemplates.PackTypeAdminPage(page, view))
}

func formErrorKey(err error) string {
	if key := weberror.LocalizationKey(err); key != "" {
		return key
	}
	return "web.error.generic"
}
