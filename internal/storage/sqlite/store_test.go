package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	apperrors "github.com/pockettcg/tracker/internal/platform/errors"
	"github.com/pockettcg/tracker/internal/tracker/domain"
	_ "modernc.org/sqlite"
)

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open("")
	if err == nil {
		t.Fatalf("expected error")
	}
}

func TestOpenRunsMigrations(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tracker.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("close: %v", err)
		}
	})

	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer func() {
		_ = sqlDB.Close()
	}()

	assertTableExists(t, sqlDB, "sets")
	assertTableExists(t, sqlDB, "cards")
	assertTableExists(t, sqlDB, "user_cards")
	assertTableExists(t, sqlDB, "friend_requests")
}

func assertTableExists(t *testing.T, sqlDB *sql.DB, table string) {
	t.Helper()
	var name string
	err := sqlDB.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
	if err != nil {
		t.Fatalf("table %s: %v", table, err)
	}
}

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := OpenInMemory()
	if err != nil {
		t.Fatalf("open in-memory store: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

func seedCatalog(t *testing.T, store *Store) (setID int64, cardIDs []int64) {
	t.Helper()
	ctx := context.Background()

	if err := store.UpsertGeneration(ctx, domain.Generation{Name: "G1", DisplayName: "Generation 1"}); err != nil {
		t.Fatalf("upsert generation: %v", err)
	}
	for _, rarity := range []domain.Rarity{
		{Name: "common", DisplayName: "Common", Order: 1, IconName: "diamond", RepeatCount: 1},
		{Name: "crown_rare", DisplayName: "Crown Rare", Order: 10, IconName: "crown", RepeatCount: 1},
	} {
		if err := store.UpsertRarity(ctx, rarity); err != nil {
			t.Fatalf("upsert rarity: %v", err)
		}
	}
	setID, err := store.UpsertSet(ctx, domain.Set{
		Code:        "A1",
		Name:        "Genetic Apex",
		ReleaseDate: time.Date(2024, 10, 30, 0, 0, 0, 0, time.UTC),
		Generation:  "G1",
	})
	if err != nil {
		t.Fatalf("upsert set: %v", err)
	}
	for _, card := range []domain.Card{
		{SetID: setID, Number: "001", Name: "Bulbasaur", Rarity: "common"},
		{SetID: setID, Number: "002", Name: "Ivysaur", Rarity: "common"},
		{SetID: setID, Number: "285", Name: "Pikachu ex", Rarity: "crown_rare"},
	} {
		cardID, err := store.UpsertCard(ctx, card)
		if err != nil {
			t.Fatalf("upsert card: %v", err)
		}
		cardIDs = append(cardIDs, cardID)
	}
	return setID, cardIDs
}

func TestUpsertSetIsIdempotent(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	first, err := store.UpsertSet(ctx, domain.Set{Code: "A1", Name: "Genetic Apex"})
	if err != nil {
		t.Fatalf("upsert set: %v", err)
	}
	second, err := store.UpsertSet(ctx, domain.Set{Code: "A1", Name: "Genetic Apex (renamed)"})
	if err != nil {
		t.Fatalf("upsert set again: %v", err)
	}
	if first != second {
		t.Fatalf("set id changed on upsert: %d != %d", first, second)
	}

	set, found, err := store.SetByCode(ctx, "A1")
	if err != nil {
		t.Fatalf("set by code: %v", err)
	}
	if !found {
		t.Fatal("expected set")
	}
	if set.Name != "Genetic Apex (renamed)" {
		t.Fatalf("set name = %q", set.Name)
	}
}

func TestSetByCodeMissing(t *testing.T) {
	store := openTestStore(t)

	_, found, err := store.SetByCode(context.Background(), "ZZ")
	if err != nil {
		t.Fatalf("set by code: %v", err)
	}
	if found {
		t.Fatal("expected no set")
	}
}

func TestCollectAndUncollectCard(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	setID, cardIDs := seedCatalog(t, store)

	user, err := store.CreateUser(ctx, "ash", "ash@example.com", "hash")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	if err := store.CollectCard(ctx, user.ID, cardIDs[0]); err != nil {
		t.Fatalf("collect card: %v", err)
	}
	// Collecting twice must not fail or duplicate.
	if err := store.CollectCard(ctx, user.ID, cardIDs[0]); err != nil {
		t.Fatalf("collect card again: %v", err)
	}

	quantities, err := store.OwnedCardIDsBySet(ctx, user.ID, setID)
	if err != nil {
		t.Fatalf("owned cards by set: %v", err)
	}
	if len(quantities) != 1 || quantities[cardIDs[0]] != 1 {
		t.Fatalf("quantities = %v", quantities)
	}

	if err := store.UncollectCard(ctx, user.ID, cardIDs[0]); err != nil {
		t.Fatalf("uncollect card: %v", err)
	}
	owned, err := store.OwnedCardIDs(ctx, user.ID)
	if err != nil {
		t.Fatalf("owned cards: %v", err)
	}
	if len(owned) != 0 {
		t.Fatalf("owned = %v, want empty", owned)
	}
}

func TestCollectionCounts(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	setID, cardIDs := seedCatalog(t, store)

	user, err := store.CreateUser(ctx, "misty", "", "hash")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if err := store.CollectCard(ctx, user.ID, cardIDs[0]); err != nil {
		t.Fatalf("collect card: %v", err)
	}
	if err := store.CollectCard(ctx, user.ID, cardIDs[2]); err != nil {
		t.Fatalf("collect card: %v", err)
	}

	totals, err := store.CardCountsBySet(ctx)
	if err != nil {
		t.Fatalf("card counts: %v", err)
	}
	if len(totals) != 1 || totals[0].SetID != setID || totals[0].Count != 3 {
		t.Fatalf("totals = %v", totals)
	}

	collected, err := store.CollectedCountsBySet(ctx, user.ID)
	if err != nil {
		t.Fatalf("collected counts: %v", err)
	}
	if len(collected) != 1 || collected[0].Count != 2 {
		t.Fatalf("collected = %v", collected)
	}

	rarityCollected, err := store.CollectedRarityCounts(ctx, user.ID)
	if err != nil {
		t.Fatalf("collected rarity counts: %v", err)
	}
	byRarity := make(map[string]int)
	for _, count := range rarityCollected {
		byRarity[count.Rarity] = count.Count
	}
	if byRarity["common"] != 1 || byRarity["crown_rare"] != 1 {
		t.Fatalf("rarity counts = %v", byRarity)
	}
}

func TestRarityPoolsForPack(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	setID, cardIDs := seedCatalog(t, store)

	packID, err := store.UpsertPack(ctx, domain.Pack{SetID: setID, Name: "Charizard", Generation: "G1"})
	if err != nil {
		t.Fatalf("upsert pack: %v", err)
	}
	for _, cardID := range cardIDs {
		if err := store.LinkCardPack(ctx, cardID, packID); err != nil {
			t.Fatalf("link card: %v", err)
		}
	}
	user, err := store.CreateUser(ctx, "brock", "", "hash")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if err := store.CollectCard(ctx, user.ID, cardIDs[0]); err != nil {
		t.Fatalf("collect card: %v", err)
	}

	pools, err := store.RarityPoolsForPack(ctx, packID, user.ID)
	if err != nil {
		t.Fatalf("rarity pools: %v", err)
	}
	byRarity := make(map[string][2]int)
	for _, pool := range pools {
		byRarity[pool.Rarity] = [2]int{pool.Total, pool.Owned}
	}
	if byRarity["common"] != [2]int{2, 1} {
		t.Fatalf("common pool = %v", byRarity["common"])
	}
	if byRarity["crown_rare"] != [2]int{1, 0} {
		t.Fatalf("crown pool = %v", byRarity["crown_rare"])
	}
}

func TestProbabilityRowsRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	seedCatalog(t, store)

	packTypeID, err := store.UpsertPackType(ctx, domain.PackType{
		Generation:            "G1",
		Name:                  "normal",
		SlotCount:             5,
		OccurrenceProbability: 0.9995,
	})
	if err != nil {
		t.Fatalf("upsert pack type: %v", err)
	}
	rp := domain.RarityProbability{
		Generation: "G1",
		PackTypeID: packTypeID,
		Rarity:     "common",
		Slots:      [domain.MaxSlots]float64{1, 1, 1, 0.9, 0.6, 0},
	}
	if err := store.UpsertRarityProbability(ctx, rp); err != nil {
		t.Fatalf("upsert probability: %v", err)
	}

	rows, err := store.ProbabilityRows(ctx, packTypeID)
	if err != nil {
		t.Fatalf("probability rows: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows = %v", rows)
	}
	if rows[0].Slots != rp.Slots {
		t.Fatalf("slots = %v, want %v", rows[0].Slots, rp.Slots)
	}
}

func TestListAvailablePacksFiltersExpiredSets(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	setID, _ := seedCatalog(t, store)

	until := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	expiredSetID, err := store.UpsertSet(ctx, domain.Set{
		Code:           "PROMO",
		Name:           "Promo",
		ReleaseDate:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		AvailableUntil: &until,
	})
	if err != nil {
		t.Fatalf("upsert set: %v", err)
	}
	if _, err := store.UpsertPack(ctx, domain.Pack{SetID: setID, Name: "Mewtwo", Generation: "G1"}); err != nil {
		t.Fatalf("upsert pack: %v", err)
	}
	if _, err := store.UpsertPack(ctx, domain.Pack{SetID: expiredSetID, Name: "Promo"}); err != nil {
		t.Fatalf("upsert pack: %v", err)
	}

	packs, err := store.ListAvailablePacks(ctx, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("list packs: %v", err)
	}
	if len(packs) != 1 {
		t.Fatalf("packs = %v, want only the open set's pack", packs)
	}
	if packs[0].SetCode != "A1" {
		t.Fatalf("pack set = %q", packs[0].SetCode)
	}
}

func TestSearchCardsUsesTranslations(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	_, cardIDs := seedCatalog(t, store)

	tr := domain.Translation{LanguageCode: "de", LocalizedName: "Bisasam"}
	if err := store.UpsertTranslation(ctx, "card", cardIDs[0], tr); err != nil {
		t.Fatalf("upsert translation: %v", err)
	}

	results, err := store.SearchCards(ctx, "Bisa", "de", 10)
	if err != nil {
		t.Fatalf("search cards: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("results = %v", results)
	}
	if results[0].LocalizedName != "Bisasam" {
		t.Fatalf("localized name = %q", results[0].LocalizedName)
	}

	// English names still match regardless of language.
	results, err = store.SearchCards(ctx, "Pikachu", "de", 10)
	if err != nil {
		t.Fatalf("search cards: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("results = %v", results)
	}
}

func TestCreateUserRejectsDuplicateUsername(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if _, err := store.CreateUser(ctx, "ash", "", "hash"); err != nil {
		t.Fatalf("create user: %v", err)
	}
	_, err := store.CreateUser(ctx, "Ash", "", "hash")
	if !errors.Is(err, apperrors.New(apperrors.CodeUserUsernameTaken, "")) {
		t.Fatalf("duplicate username = %v, want taken error", err)
	}
}

func TestDeleteUserCascades(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	_, cardIDs := seedCatalog(t, store)

	user, err := store.CreateUser(ctx, "gary", "", "hash")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if err := store.CollectCard(ctx, user.ID, cardIDs[0]); err != nil {
		t.Fatalf("collect card: %v", err)
	}
	if err := store.DeleteUser(ctx, user.ID); err != nil {
		t.Fatalf("delete user: %v", err)
	}

	_, found, err := store.UserByUsername(ctx, "gary")
	if err != nil {
		t.Fatalf("user by username: %v", err)
	}
	if found {
		t.Fatal("expected user to be gone")
	}
	owned, err := store.OwnedCardIDs(ctx, user.ID)
	if err != nil {
		t.Fatalf("owned cards: %v", err)
	}
	if len(owned) != 0 {
		t.Fatalf("owned = %v, want cascade delete", owned)
	}
}

func TestFriendRequestLifecycle(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	ash, err := store.CreateUser(ctx, "ash", "", "hash")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	misty, err := store.CreateUser(ctx, "misty", "", "hash")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	if err := store.CreateFriendRequest(ctx, ash.ID, ash.ID); !errors.Is(err, apperrors.New(apperrors.CodeFriendSelfRequest, "")) {
		t.Fatalf("self request = %v, want self-request error", err)
	}
	if err := store.CreateFriendRequest(ctx, ash.ID, misty.ID); err != nil {
		t.Fatalf("create friend request: %v", err)
	}
	if err := store.CreateFriendRequest(ctx, ash.ID, misty.ID); err != nil {
		t.Fatalf("duplicate friend request: %v", err)
	}

	pending, err := store.PendingRequests(ctx, misty.ID)
	if err != nil {
		t.Fatalf("pending requests: %v", err)
	}
	if len(pending) != 1 || pending[0].FromUsername != "ash" {
		t.Fatalf("pending = %v", pending)
	}

	sent, err := store.SentPendingUserIDs(ctx, ash.ID)
	if err != nil {
		t.Fatalf("sent requests: %v", err)
	}
	if !sent[misty.ID] {
		t.Fatalf("sent = %v", sent)
	}

	// Only the addressee may accept.
	if err := store.AcceptFriendRequest(ctx, pending[0].RequestID, ash.ID); !errors.Is(err, apperrors.New(apperrors.CodeFriendRequestUnknown, "")) {
		t.Fatalf("accept by sender = %v, want unknown-request error", err)
	}
	if err := store.AcceptFriendRequest(ctx, pending[0].RequestID, misty.ID); err != nil {
		t.Fatalf("accept friend request: %v", err)
	}

	for _, userID := range []int64{ash.ID, misty.ID} {
		friends, err := store.Friends(ctx, userID)
		if err != nil {
			t.Fatalf("friends: %v", err)
		}
		if len(friends) != 1 {
			t.Fatalf("friends of %d = %v", userID, friends)
		}
	}
}

func TestProfileVisibilityAndSearch(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	ash, err := store.CreateUser(ctx, "ash", "", "hash")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	misty, err := store.CreateUser(ctx, "misty", "", "hash")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	profile, err := store.GetProfile(ctx, misty.ID)
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if profile.Public {
		t.Fatal("profiles must default to private")
	}

	// Private profiles are invisible to search.
	results, err := store.SearchPublicProfiles(ctx, "mis", ash.ID, 10)
	if err != nil {
		t.Fatalf("search profiles: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("results = %v, want none", results)
	}

	profile.Public = true
	profile.FriendCode = "1234-5678-9012-3456"
	if err := store.UpdateProfile(ctx, profile); err != nil {
		t.Fatalf("update profile: %v", err)
	}

	results, err = store.SearchPublicProfiles(ctx, "mis", ash.ID, 10)
	if err != nil {
		t.Fatalf("search profiles: %v", err)
	}
	if len(results) != 1 || results[0].Username != "misty" {
		t.Fatalf("results = %v", results)
	}

	// The searching user never sees themselves.
	results, err = store.SearchPublicProfiles(ctx, "ash", ash.ID, 10)
	if err != nil {
		t.Fatalf("search profiles: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("results = %v, want none", results)
	}
}
