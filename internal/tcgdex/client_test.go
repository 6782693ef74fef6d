package tcgdex

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	apperrors "github.com/pockettcg/tracker/internal/platform/errors"
)

func TestSerieDecodesSets(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/series/tcgp" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "tcgp",
			"name": "Pokemon TCG Pocket",
			"sets": [
				{"id": "A1", "name": "Genetic Apex", "cardCount": {"total": 286, "official": 226}},
				{"id": "P-A", "name": "Promo-A", "cardCount": {"total": 10, "official": 10}}
			]
		}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	serie, err := client.Serie(context.Background(), "tcgp")
	if err != nil {
		t.Fatalf("serie: %v", err)
	}
	if serie.ID != "tcgp" || len(serie.Sets) != 2 {
		t.Fatalf("serie = %+v", serie)
	}
	if serie.Sets[0].CardCount.Total != 286 {
		t.Fatalf("card count = %d", serie.Sets[0].CardCount.Total)
	}
}

func TestCardDecodesBoosters(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/cards/A1-001" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "A1-001",
			"localId": "001",
			"name": "Bulbasaur",
			"rarity": "One Diamond",
			"set": {"id": "A1", "name": "Genetic Apex"},
			"boosters": [{"id": "mewtwo", "name": "Mewtwo"}]
		}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	card, err := client.Card(context.Background(), "A1-001")
	if err != nil {
		t.Fatalf("card: %v", err)
	}
	if card.LocalID != "001" || card.Rarity != "One Diamond" {
		t.Fatalf("card = %+v", card)
	}
	if len(card.Boosters) != 1 || card.Boosters[0].Name != "Mewtwo" {
		t.Fatalf("boosters = %+v", card.Boosters)
	}
}

func TestGetJSONRejectsUpstreamErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.Set(context.Background(), "A1")
	if !errors.Is(err, apperrors.New(apperrors.CodeSyncUpstream, "")) {
		t.Fatalf("err = %v, want upstream error", err)
	}
}

func TestMapRarity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		label string
		want  string
	}{
		{"One Diamond", "common"},
		{"Four Diamond", "double_rare"},
		{"Two Star", "special_art"},
		{"Crown", "crown_rare"},
	}
	for _, tc := range tests {
		got, err := MapRarity(tc.label)
		if err != nil {
			t.Fatalf("MapRarity(%q) error = %v", tc.label, err)
		}
		if got != tc.want {
			t.Fatalf("MapRarity(%q) = %q, want %q", tc.label, got, tc.want)
		}
	}

	_, err := MapRarity("Five Moon")
	if !errors.Is(err, apperrors.New(apperrors.CodeSyncRarityUnknown, "")) {
		t.Fatalf("unknown rarity = %v, want unknown-rarity error", err)
	}
}
