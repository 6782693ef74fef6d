package admin_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/pockettcg/tracker/internal/storage/sqlite"
	"github.com/pockettcg/tracker/internal/tracker/domain"
	module "github.com/pockettcg/tracker/internal/web/module"
	"github.com/pockettcg/tracker/internal/web/modules/admin"
	"github.com/pockettcg/tracker/internal/web/platform/modulehandler"
)

type fixture struct {
	store   *sqlite.Store
	handler http.Handler
}

func newFixture(t *testing.T, userID int64) fixture {
	t.Helper()
	ctx := context.Background()
	store, err := sqlite.OpenInMemory()
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	if err := store.UpsertGeneration(ctx, domain.Generation{Name: "G1", DisplayName: "Generation 1"}); err != nil {
		t.Fatalf("seed generation: %v", err)
	}
	if err := store.UpsertRarity(ctx, domain.Rarity{Name: "common", DisplayName: "Common", Order: 1, RepeatCount: 1}); err != nil {
		t.Fatalf("seed rarity: %v", err)
	}
	if err := store.UpsertRarity(ctx, domain.Rarity{Name: "rare", DisplayName: "Rare", Order: 2, RepeatCount: 1}); err != nil {
		t.Fatalf("seed rarity: %v", err)
	}

	base := modulehandler.NewBase(
		func(*http.Request) int64 { return userID },
		func(*http.Request) string { return "en-US" },
		func(*http.Request) module.Viewer {
			if userID > 0 {
				return module.Viewer{Username: "ash", SignedIn: true}
			}
			return module.Viewer{}
		},
	)
	mount, err := admin.New(admin.WithStore(store), admin.WithBase(base)).Mount()
	if err != nil {
		t.Fatalf("mount: %v", err)
	}
	return fixture{store: store, handler: mount.Handler}
}

func postPackType(fix fixture, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/admin/packtypes", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	fix.handler.ServeHTTP(rec, req)
	return rec
}

func validForm() url.Values {
	form := url.Values{}
	form.Set("generation", "G1")
	form.Set("name", "regular")
	form.Set("display_name", "Regular")
	form.Set("slot_count", "3")
	form.Set("occurrence_probability", "1")
	form.Set("slot_1_rarities", "common=1.0")
	form.Set("slot_2_rarities", "common=1.0")
	form.Set("slot_3_rarities", "common=0.8,rare=0.2")
	return form
}

func TestPackTypesPageRequiresSignIn(t *testing.T) {
	fix := newFixture(t, 0)

	rec := httptest.NewRecorder()
	fix.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/packtypes", nil))
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := rec.Header().Get("Location"); got != "/login" {
		t.Fatalf("location = %q", got)
	}
}

func TestPackTypesPageListsGenerations(t *testing.T) {
	fix := newFixture(t, 7)

	rec := httptest.NewRecorder()
	fix.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/packtypes", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `id="packtype-form"`) || !strings.Contains(body, "Generation 1") {
		t.Fatalf("form missing:\n%s", body)
	}
	if !strings.Contains(body, "/static/packtype-admin.js") {
		t.Fatal("slot script missing")
	}
}

func TestPackTypeCreatePersistsProbabilities(t *testing.T) {
	fix := newFixture(t, 7)

	rec := postPackType(fix, validForm())
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Location"); got != "/admin/packtypes" {
		t.Fatalf("location = %q", got)
	}

	ctx := context.Background()
	packTypes, err := fix.store.PackTypesForGeneration(ctx, "G1")
	if err != nil || len(packTypes) != 1 {
		t.Fatalf("pack types = %v err = %v", packTypes, err)
	}
	if packTypes[0].SlotCount != 3 || packTypes[0].DisplayName != "Regular" {
		t.Fatalf("pack type = %+v", packTypes[0])
	}
	rows, err := fix.store.ProbabilityRows(ctx, packTypes[0].ID)
	if err != nil || len(rows) != 2 {
		t.Fatalf("rows = %v err = %v", rows, err)
	}
	byRarity := make(map[string]domain.RarityProbability, len(rows))
	for _, row := range rows {
		byRarity[row.Rarity] = row
	}
	if got := byRarity["rare"].Slots[2]; got != 0.2 {
		t.Fatalf("rare slot 3 = %g", got)
	}
}

func TestPackTypeCreateRejectsBadSlotSums(t *testing.T) {
	fix := newFixture(t, 7)

	form := validForm()
	form.Set("slot_3_rarities", "common=0.5,rare=0.2")
	rec := postPackType(fix, form)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `class="form-error"`) {
		t.Fatalf("form error missing:\n%s", rec.Body.String())
	}
}

func TestPackTypeCreateRejectsUnknownRarity(t *testing.T) {
	fix := newFixture(t, 7)

	form := validForm()
	form.Set("slot_1_rarities", "mythic=1.0")
	rec := postPackType(fix, form)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestGodPackCreateSkipsProbabilities(t *testing.T) {
	fix := newFixture(t, 7)

	form := url.Values{}
	form.Set("generation", "G1")
	form.Set("name", "god pack")
	form.Set("slot_count", "5")
	form.Set("occurrence_probability", "0.0005")
	rec := postPackType(fix, form)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}

	packTypes, err := fix.store.PackTypesForGeneration(context.Background(), "G1")
	if err != nil || len(packTypes) != 1 {
		t.Fatalf("pack types = %v err = %v", packTypes, err)
	}
	if !packTypes[0].IsGodPack() {
		t.Fatalf("pack type = %+v", packTypes[0])
	}
}
