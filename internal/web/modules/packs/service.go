package packs

import (
	"context"
	"sort"
	"time"

	"github.com/pockettcg/tracker/internal/storage"
	"github.com/pockettcg/tracker/internal/tracker/domain"
	"github.com/pockettcg/tracker/internal/tracker/pulls"
	webtemplates "github.com/pockettcg/tracker/internal/web/templates"
)

// Store is the persistence surface the packs module depends on.
type Store interface {
	ListAvailablePacks(ctx context.Context, day time.Time) ([]storage.PackWithSet, error)
	ListGenerations(ctx context.Context) ([]domain.Generation, error)
	PackTypesForGeneration(ctx context.Context, generation string) ([]domain.PackType, error)
	ProbabilityRows(ctx context.Context, packTypeID int64) ([]domain.RarityProbability, error)
	RarityPoolsForPack(ctx context.Context, packID, userID int64) ([]storage.RarityPoolRow, error)
	RarityCountsForSet(ctx context.Context, setID int64) (map[string]int, error)
	CollectedRarityCounts(ctx context.Context, userID int64) ([]storage.RarityCount, error)
	LocalizedNames(ctx context.Context, entity, languageCode string) (map[int64]string, error)
}

type service struct {
	store Store
	now   func() time.Time
}

func newService(store Store) service {
	return service{store: store, now: time.Now}
}

// packOdds computes the chance of pulling a new card for every pack still
// openable today, plus separate god pack odds. The best regular pack is
// marked.
func (s service) packOdds(ctx context.Context, userID int64, translationLang string) (regular, god []webtemplates.PackOdds, err error) {
	packs, err := s.store.ListAvailablePacks(ctx, s.now())
	if err != nil {
		return nil, nil, err
	}
	generations, err := s.store.ListGenerations(ctx)
	if err != nil {
		return nil, nil, err
	}
	generationByName := make(map[string]domain.Generation, len(generations))
	for _, gen := range generations {
		generationByName[gen.Name] = gen
	}
	setNames, err := s.store.LocalizedNames(ctx, storage.EntitySet, translationLang)
	if err != nil {
		return nil, nil, err
	}
	packNames, err := s.store.LocalizedNames(ctx, storage.EntityPack, translationLang)
	if err != nil {
		return nil, nil, err
	}

	packTypeCache := make(map[string][]domain.PackType)
	tableCache := make(map[int64]pulls.SlotTable)
	rarityCountCache := make(map[int64]map[string]int)

	collectedRarity := make(map[setRarity]int)
	if userID > 0 {
		counts, err := s.store.CollectedRarityCounts(ctx, userID)
		if err != nil {
			return nil, nil, err
		}
		for _, count := range counts {
			collectedRarity[setRarity{count.SetID, count.Rarity}] = count.Count
		}
	}

	for _, pack := range packs {
		pools, err := s.ownershipForPack(ctx, pack.Pack.ID, userID)
		if err != nil {
			return nil, nil, err
		}
		packTypes, ok := packTypeCache[pack.Pack.Generation]
		if !ok {
			packTypes, err = s.store.PackTypesForGeneration(ctx, pack.Pack.Generation)
			if err != nil {
				return nil, nil, err
			}
			packTypeCache[pack.Pack.Generation] = packTypes
		}

		setName := pack.SetName
		if localized, ok := setNames[pack.SetID]; ok && localized != "" {
			setName = localized
		}
		packName := pack.Pack.Name
		if localized, ok := packNames[pack.Pack.ID]; ok && localized != "" {
			packName = localized
		}
		rarityCounts, err := s.setRarityCounts(ctx, rarityCountCache, pack.SetID)
		if err != nil {
			return nil, nil, err
		}
		odds := webtemplates.PackOdds{
			SetCode:     pack.SetCode,
			SetName:     setName,
			PackName:    packName,
			MissingBase: missingBase(pack.SetID, rarityCounts, collectedRarity),
		}

		regularTypes := make([]domain.PackType, 0, len(packTypes))
		for _, packType := range packTypes {
			if packType.IsGodPack() {
				godOdds := s.godPackOdds(pack, packType, generationByName[pack.Pack.Generation], rarityCounts, collectedRarity)
				if godOdds != nil {
					godEntry := odds
					godEntry.Chance = *godOdds
					godEntry.GodPack = true
					god = append(god, godEntry)
				}
				continue
			}
			regularTypes = append(regularTypes, packType)
		}

		odds.Chance = pulls.WeightedNewCardChance(regularTypes, func(packType domain.PackType) pulls.SlotTable {
			table, ok := tableCache[packType.ID]
			if !ok {
				rows, rowsErr := s.store.ProbabilityRows(ctx, packType.ID)
				if rowsErr != nil {
					return nil
				}
				table = pulls.TableFromRows(rows)
				tableCache[packType.ID] = table
			}
			return table
		}, pools)
		regular = append(regular, odds)
	}

	// Packs from sets with incomplete base rarities sort first, then by
	// chance, then by name.
	sort.SliceStable(regular, func(i, j int) bool {
		if regular[i].MissingBase != regular[j].MissingBase {
			return regular[i].MissingBase
		}
		if regular[i].Chance != regular[j].Chance {
			return regular[i].Chance > regular[j].Chance
		}
		return regular[i].PackName < regular[j].PackName
	})
	sort.SliceStable(god, func(i, j int) bool { return god[i].Chance > god[j].Chance })
	best := -1
	for i := range regular {
		if regular[i].Chance > 0 && (best < 0 || regular[i].Chance > regular[best].Chance) {
			best = i
		}
	}
	if best >= 0 {
		regular[best].Best = true
	}
	return regular, god, nil
}

func (s service) ownershipForPack(ctx context.Context, packID, userID int64) (pulls.Ownership, error) {
	rows, err := s.store.RarityPoolsForPack(ctx, packID, userID)
	if err != nil {
		return nil, err
	}
	pools := make(pulls.Ownership, len(rows))
	for _, row := range rows {
		pools[row.Rarity] = pulls.RarityPool{Total: row.Total, Owned: row.Owned}
	}
	return pools, nil
}

type setRarity struct {
	setID  int64
	rarity string
}

func (s service) setRarityCounts(ctx context.Context, cache map[int64]map[string]int, setID int64) (map[string]int, error) {
	counts, ok := cache[setID]
	if ok {
		return counts, nil
	}
	counts, err := s.store.RarityCountsForSet(ctx, setID)
	if err != nil {
		return nil, err
	}
	cache[setID] = counts
	return counts, nil
}

// missingBase reports whether any base rarity of the set is incomplete.
func missingBase(setID int64, rarityCounts map[string]int, collectedRarity map[setRarity]int) bool {
	for rarity, total := range rarityCounts {
		if !domain.BaseRarities[rarity] {
			continue
		}
		if collectedRarity[setRarity{setID, rarity}] < total {
			return true
		}
	}
	return false
}

// godPackOdds derives the god pack table from the set's rare pool. Returns
// nil when the set has no eligible rare cards. Ownership is set-wide: a god
// pack draws every slot from the whole set's rare pool.
func (s service) godPackOdds(pack storage.PackWithSet, packType domain.PackType, gen domain.Generation, rarityCounts map[string]int, collectedRarity map[setRarity]int) *float64 {
	table := pulls.GodPackTable(gen, packType, rarityCounts)
	if table == nil {
		return nil
	}
	pools := make(pulls.Ownership, len(rarityCounts))
	for rarity, total := range rarityCounts {
		pools[rarity] = pulls.RarityPool{
			Total: total,
			Owned: collectedRarity[setRarity{pack.SetID, rarity}],
		}
	}
	chance := pulls.ChanceOfNewCard(table, pools, packType.SlotCount)
	return &chance
}
