package tcgdex_test

import (
	"context"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pockettcg/tracker/internal/storage/sqlite"
	"github.com/pockettcg/tracker/internal/tcgdex"
	"github.com/pockettcg/tracker/internal/tracker/domain"
)

func newAPIServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/series/tcgp", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{
			"id": "tcgp",
			"name": "Pokemon TCG Pocket",
			"sets": [
				{"id": "A1", "name": "Genetic Apex", "cardCount": {"total": 2, "official": 2}},
				{"id": "P-A", "name": "Promo-A", "cardCount": {"total": 5, "official": 5}}
			]
		}`)
	})
	mux.HandleFunc("/sets/A1", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{
			"id": "A1",
			"name": "Genetic Apex",
			"releaseDate": "2024-10-30",
			"cardCount": {"total": 2, "official": 2},
			"boosters": [{"id": "mewtwo", "name": "Mewtwo"}, {"id": "pikachu", "name": "Pikachu"}],
			"cards": [
				{"id": "A1-001", "localId": "001", "name": "Bulbasaur"},
				{"id": "A1-285", "localId": "285", "name": "Pikachu ex"}
			]
		}`)
	})
	mux.HandleFunc("/cards/A1-001", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{
			"id": "A1-001", "localId": "001", "name": "Bulbasaur", "rarity": "One Diamond",
			"set": {"id": "A1", "name": "Genetic Apex"},
			"boosters": [{"id": "mewtwo", "name": "Mewtwo"}]
		}`)
	})
	mux.HandleFunc("/cards/A1-285", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{
			"id": "A1-285", "localId": "285", "name": "Pikachu ex", "rarity": "Crown",
			"set": {"id": "A1", "name": "Genetic Apex"}
		}`)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func newSyncStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.OpenInMemory()
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	ctx := context.Background()
	if err := store.UpsertGeneration(ctx, domain.Generation{Name: "G1"}); err != nil {
		t.Fatalf("upsert generation: %v", err)
	}
	for _, rarity := range []domain.Rarity{
		{Name: "common", Order: 1, RepeatCount: 1},
		{Name: "crown_rare", Order: 10, RepeatCount: 1},
	} {
		if err := store.UpsertRarity(ctx, rarity); err != nil {
			t.Fatalf("upsert rarity: %v", err)
		}
	}
	return store
}

func quietLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func TestSyncImportsNewSets(t *testing.T) {
	server := newAPIServer(t)
	store := newSyncStore(t)
	ctx := context.Background()

	syncer := tcgdex.NewSyncer(tcgdex.NewClient(server.URL), store, quietLogger())
	if err := syncer.Sync(ctx); err != nil {
		t.Fatalf("sync: %v", err)
	}

	set, found, err := store.SetByCode(ctx, "A1")
	if err != nil {
		t.Fatalf("set by code: %v", err)
	}
	if !found {
		t.Fatal("expected set A1")
	}
	if set.ReleaseDate.Format("2006-01-02") != "2024-10-30" {
		t.Fatalf("release date = %v", set.ReleaseDate)
	}

	// The promo serie member must be skipped.
	if _, found, _ := store.SetByCode(ctx, "P-A"); found {
		t.Fatal("P-A must not be imported")
	}

	cards, err := store.CardsBySet(ctx, set.ID)
	if err != nil {
		t.Fatalf("cards by set: %v", err)
	}
	if len(cards) != 2 {
		t.Fatalf("cards = %v", cards)
	}
	byNumber := make(map[string]domain.Card)
	for _, card := range cards {
		byNumber[card.Number] = card
	}
	if byNumber["001"].Rarity != "common" || byNumber["285"].Rarity != "crown_rare" {
		t.Fatalf("rarities = %v", byNumber)
	}

	packs, err := store.ListPacksForSet(ctx, set.ID)
	if err != nil {
		t.Fatalf("packs: %v", err)
	}
	if len(packs) != 2 {
		t.Fatalf("packs = %v", packs)
	}
	for _, pack := range packs {
		if pack.Generation != "G1" {
			t.Fatalf("pack generation = %q", pack.Generation)
		}
	}
}

func TestSyncBackfillsMissingCards(t *testing.T) {
	server := newAPIServer(t)
	store := newSyncStore(t)
	ctx := context.Background()

	setID, err := store.UpsertSet(ctx, domain.Set{Code: "A1", Name: "Genetic Apex", Generation: "G1"})
	if err != nil {
		t.Fatalf("upsert set: %v", err)
	}
	if _, err := store.UpsertPack(ctx, domain.Pack{SetID: setID, Name: "Mewtwo", Generation: "G1"}); err != nil {
		t.Fatalf("upsert pack: %v", err)
	}
	if _, err := store.UpsertCard(ctx, domain.Card{SetID: setID, Number: "001", Name: "Bulbasaur", Rarity: "common"}); err != nil {
		t.Fatalf("upsert card: %v", err)
	}

	syncer := tcgdex.NewSyncer(tcgdex.NewClient(server.URL), store, quietLogger())
	if err := syncer.Sync(ctx); err != nil {
		t.Fatalf("sync: %v", err)
	}

	cards, err := store.CardsBySet(ctx, setID)
	if err != nil {
		t.Fatalf("cards by set: %v", err)
	}
	if len(cards) != 2 {
		t.Fatalf("cards = %v, want backfilled crown card", cards)
	}
}

func TestSyncIsIdempotent(t *testing.T) {
	server := newAPIServer(t)
	store := newSyncStore(t)
	ctx := context.Background()

	syncer := tcgdex.NewSyncer(tcgdex.NewClient(server.URL), store, quietLogger())
	if err := syncer.Sync(ctx); err != nil {
		t.Fatalf("first sync: %v", err)
	}
	if err := syncer.Sync(ctx); err != nil {
		t.Fatalf("second sync: %v", err)
	}

	set, _, err := store.SetByCode(ctx, "A1")
	if err != nil {
		t.Fatalf("set by code: %v", err)
	}
	cards, err := store.CardsBySet(ctx, set.ID)
	if err != nil {
		t.Fatalf("cards by set: %v", err)
	}
	if len(cards) != 2 {
		t.Fatalf("cards = %v, want no duplicates", cards)
	}
}
