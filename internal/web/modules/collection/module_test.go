package collection_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/pockettcg/tracker/internal/storage/sqlite"
	"github.com/pockettcg/tracker/internal/tracker/domain"
	module "github.com/pockettcg/tracker/internal/web/module"
	"github.com/pockettcg/tracker/internal/web/modules/collection"
	"github.com/pockettcg/tracker/internal/web/platform/modulehandler"
)

type fixture struct {
	store   *sqlite.Store
	handler http.Handler
	cardID  int64
	setCode string
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
	setID, err := store.UpsertSet(ctx, domain.Set{Code: "A1", Name: "Genetic Apex", ReleaseDate: time.Now(), Generation: "G1"})
	if err != nil {
		t.Fatalf("seed set: %v", err)
	}
	packID, err := store.UpsertPack(ctx, domain.Pack{SetID: setID, Name: "Mewtwo", Generation: "G1"})
	if err != nil {
		t.Fatalf("seed pack: %v", err)
	}
	cardID, err := store.UpsertCard(ctx, domain.Card{SetID: setID, Number: "001", Name: "Bulbasaur", Rarity: "common"})
	if err != nil {
		t.Fatalf("seed card: %v", err)
	}
	if err := store.LinkCardPack(ctx, cardID, packID); err != nil {
		t.Fatalf("link card: %v", err)
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
	mod := collection.New(collection.WithStore(store), collection.WithBase(base))
	mount, err := mod.Mount()
	if err != nil {
		t.Fatalf("mount: %v", err)
	}
	return fixture{store: store, handler: mount.Handler, cardID: cardID, setCode: "A1"}
}

func TestHomeListsSets(t *testing.T) {
	fix := newFixture(t, 0)

	rec := httptest.NewRecorder()
	fix.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Genetic Apex") {
		t.Fatalf("set missing from body:\n%s", rec.Body.String())
	}
}

func TestHomeSearchFindsCards(t *testing.T) {
	fix := newFixture(t, 0)

	rec := httptest.NewRecorder()
	fix.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/?q=Bulba", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Bulbasaur") {
		t.Fatalf("match missing from body:\n%s", body)
	}
	if !strings.Contains(body, `href="/set/A1"`) {
		t.Fatalf("result must link to its set:\n%s", body)
	}
}

func TestHomeSearchReportsNoMatches(t *testing.T) {
	fix := newFixture(t, 0)

	rec := httptest.NewRecorder()
	fix.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/?q=Zapdos", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "No cards match.") {
		t.Fatalf("empty notice missing:\n%s", rec.Body.String())
	}
}

func TestSetDetailRendersCards(t *testing.T) {
	fix := newFixture(t, 0)

	rec := httptest.NewRecorder()
	fix.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/set/A1", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Bulbasaur") || !strings.Contains(body, "Mewtwo") {
		t.Fatalf("card or pack missing:\n%s", body)
	}
}

func TestSetDetailUnknownSetIs404(t *testing.T) {
	fix := newFixture(t, 0)

	rec := httptest.NewRecorder()
	fix.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/set/ZZ", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
}

func collectRequest(fix fixture, action string, xhr bool) *http.Request {
	form := url.Values{}
	form.Set("card_id", strconv.FormatInt(fix.cardID, 10))
	form.Set("action", action)
	req := httptest.NewRequest(http.MethodPost, "/set/"+fix.setCode, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if xhr {
		req.Header.Set("X-Requested-With", "XMLHttpRequest")
	}
	return req
}

func TestCollectToggleReturnsJSONForXHR(t *testing.T) {
	fix := newFixture(t, 7)

	rec := httptest.NewRecorder()
	fix.handler.ServeHTTP(rec, collectRequest(fix, "collect", true))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}
	var payload struct {
		Status    string `json:"status"`
		Collected bool   `json:"collected"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.Status != "success" || !payload.Collected {
		t.Fatalf("payload = %+v", payload)
	}

	rec = httptest.NewRecorder()
	fix.handler.ServeHTTP(rec, collectRequest(fix, "uncollect", true))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.Collected {
		t.Fatalf("payload = %+v", payload)
	}
}

func TestCollectRedirectsWithoutXHR(t *testing.T) {
	fix := newFixture(t, 7)

	rec := httptest.NewRecorder()
	fix.handler.ServeHTTP(rec, collectRequest(fix, "collect", false))
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := rec.Header().Get("Location"); got != "/set/A1" {
		t.Fatalf("location = %q", got)
	}
}

func TestCollectRejectsInvalidAction(t *testing.T) {
	fix := newFixture(t, 7)

	rec := httptest.NewRecorder()
	fix.handler.ServeHTTP(rec, collectRequest(fix, "steal", true))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestCollectRequiresSignIn(t *testing.T) {
	fix := newFixture(t, 0)

	rec := httptest.NewRecorder()
	fix.handler.ServeHTTP(rec, collectRequest(fix, "collect", true))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestSetDetailEmitsTableMetadata(t *testing.T) {
	fix := newFixture(t, 7)

	rec := httptest.NewRecorder()
	fix.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/set/A1", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		`data-rarity="common"`,
		`data-rarity-order="1"`,
		`data-confirm-uncollect=`,
		`data-confirm-bulk=`,
		`name="bulk-rarity"`,
		`<button type="button" class="rarity-chip`,
		`data-rarities="common"`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("%s missing:\n%s", want, body)
		}
	}
}

func TestRarityProgressMergesIconGroups(t *testing.T) {
	fix := newFixture(t, 7)
	ctx := context.Background()

	for _, rarity := range []domain.Rarity{
		{Name: "shiny_rare", DisplayName: "Shiny Rare", Order: 5, IconName: "shiny", RepeatCount: 1},
		{Name: "double_shiny_rare", DisplayName: "Double Shiny Rare", Order: 6, IconName: "shiny", RepeatCount: 1},
	} {
		if err := fix.store.UpsertRarity(ctx, rarity); err != nil {
			t.Fatalf("seed rarity: %v", err)
		}
	}
	set, found, err := fix.store.SetByCode(ctx, "A1")
	if err != nil || !found {
		t.Fatalf("set = %v found = %t err = %v", set, found, err)
	}
	for _, card := range []domain.Card{
		{SetID: set.ID, Number: "100", Name: "Shining Gyarados", Rarity: "shiny_rare"},
		{SetID: set.ID, Number: "101", Name: "Shining Magikarp", Rarity: "double_shiny_rare"},
	} {
		if _, err := fix.store.UpsertCard(ctx, card); err != nil {
			t.Fatalf("seed card: %v", err)
		}
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/set/A1?fragment=rarity_progress", nil)
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	fix.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()

	// One chip for the commons and one merged chip for the shared icon.
	if got := strings.Count(body, `class="rarity-chip rarity-`); got != 2 {
		t.Fatalf("chips = %d, want 2:\n%s", got, body)
	}
	if !strings.Contains(body, `data-rarities="shiny_rare double_shiny_rare"`) {
		t.Fatalf("merged group missing:\n%s", body)
	}
	if !strings.Contains(body, "Shiny Rare 0/2") {
		t.Fatalf("merged totals missing:\n%s", body)
	}
}

func TestRarityProgressFragment(t *testing.T) {
	fix := newFixture(t, 7)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/set/A1?fragment=rarity_progress", nil)
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	fix.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `id="rarity-progress"`) {
		t.Fatalf("missing fragment:\n%s", body)
	}
	if strings.Contains(body, "<html") {
		t.Fatal("fragment must not include the full layout")
	}
}
