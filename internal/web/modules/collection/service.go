package collection

import (
	"context"
	"fmt"
	"sort"
	"strings"

	apperrors "github.com/pockettcg/tracker/internal/platform/errors"
	"github.com/pockettcg/tracker/internal/storage"
	"github.com/pockettcg/tracker/internal/tracker/domain"
	webtemplates "github.com/pockettcg/tracker/internal/web/templates"
)

// Store is the persistence surface the collection module depends on.
type Store interface {
	ListSets(ctx context.Context) ([]domain.Set, error)
	SetByCode(ctx context.Context, code string) (domain.Set, bool, error)
	CardsBySet(ctx context.Context, setID int64) ([]domain.Card, error)
	CardByID(ctx context.Context, cardID int64) (domain.Card, bool, error)
	ListRarities(ctx context.Context) ([]domain.Rarity, error)
	ListPacksForSet(ctx context.Context, setID int64) ([]domain.Pack, error)
	CardsByPack(ctx context.Context, packID int64) ([]domain.Card, error)
	LocalizedNames(ctx context.Context, entity, languageCode string) (map[int64]string, error)
	SearchCards(ctx context.Context, query, languageCode string, limit int) ([]storage.CardSearchResult, error)
	CardCountsBySet(ctx context.Context) ([]storage.SetCount, error)
	CollectedCountsBySet(ctx context.Context, userID int64) ([]storage.SetCount, error)
	CardRarityCounts(ctx context.Context) ([]storage.RarityCount, error)
	CollectedRarityCounts(ctx context.Context, userID int64) ([]storage.RarityCount, error)
	OwnedCardIDsBySet(ctx context.Context, userID, setID int64) (map[int64]int, error)
	CollectCard(ctx context.Context, userID, cardID int64) error
	UncollectCard(ctx context.Context, userID, cardID int64) error
}

type service struct {
	store Store
}

func newService(store Store) service {
	return service{store: store}
}

// setOverview builds per-set progress for the home page, newest set first.
// Collection numbers are zero for anonymous viewers.
func (s service) setOverview(ctx context.Context, userID int64, translationLang string) ([]webtemplates.SetProgress, error) {
	sets, err := s.store.ListSets(ctx)
	if err != nil {
		return nil, err
	}
	setNames, err := s.store.LocalizedNames(ctx, storage.EntitySet, translationLang)
	if err != nil {
		return nil, err
	}
	totals, err := s.store.CardCountsBySet(ctx)
	if err != nil {
		return nil, err
	}
	totalBySet := make(map[int64]int, len(totals))
	for _, count := range totals {
		totalBySet[count.SetID] = count.Count
	}

	collectedBySet := map[int64]int{}
	var rarityGroups map[int64][]webtemplates.RarityGroupProgress
	if userID > 0 {
		collected, err := s.store.CollectedCountsBySet(ctx, userID)
		if err != nil {
			return nil, err
		}
		for _, count := range collected {
			collectedBySet[count.SetID] = count.Count
		}
		rarityGroups, err = s.rarityGroupsBySet(ctx, userID)
		if err != nil {
			return nil, err
		}
	}

	progress := make([]webtemplates.SetProgress, 0, len(sets))
	for _, set := range sets {
		name := set.Name
		if localized, ok := setNames[set.ID]; ok && localized != "" {
			name = localized
		}
		progress = append(progress, webtemplates.SetProgress{
			Code:        set.Code,
			Name:        name,
			ReleaseDate: set.ReleaseDate,
			Collected:   collectedBySet[set.ID],
			Total:       totalBySet[set.ID],
			Groups:      rarityGroups[set.ID],
		})
	}
	return progress, nil
}

const searchLimit = 50

// searchCards finds cards by English or localized name for the home page.
func (s service) searchCards(ctx context.Context, query, translationLang string) ([]webtemplates.CardSearchRow, error) {
	results, err := s.store.SearchCards(ctx, query, translationLang, searchLimit)
	if err != nil {
		return nil, err
	}
	rows := make([]webtemplates.CardSearchRow, 0, len(results))
	for _, result := range results {
		name := result.Card.Name
		if result.LocalizedName != "" {
			name = result.LocalizedName
		}
		rows = append(rows, webtemplates.CardSearchRow{
			Name:    name,
			Number:  result.Card.Number,
			Rarity:  result.Card.Rarity,
			SetCode: result.SetCode,
			SetName: result.SetName,
		})
	}
	return rows, nil
}

// rarityGroupsBySet builds per-set progress groups. Rarities sharing an icon
// merge into one group.
func (s service) rarityGroupsBySet(ctx context.Context, userID int64) (map[int64][]webtemplates.RarityGroupProgress, error) {
	rarities, err := s.store.ListRarities(ctx)
	if err != nil {
		return nil, err
	}
	totals, err := s.store.CardRarityCounts(ctx)
	if err != nil {
		return nil, err
	}
	collected, err := s.store.CollectedRarityCounts(ctx, userID)
	if err != nil {
		return nil, err
	}

	type key struct {
		setID  int64
		rarity string
	}
	collectedByKey := make(map[key]int, len(collected))
	for _, count := range collected {
		collectedByKey[key{count.SetID, count.Rarity}] = count.Count
	}
	totalsBySet := make(map[int64]map[string]int)
	for _, count := range totals {
		if totalsBySet[count.SetID] == nil {
			totalsBySet[count.SetID] = make(map[string]int)
		}
		totalsBySet[count.SetID][count.Rarity] = count.Count
	}

	groups := make(map[int64][]webtemplates.RarityGroupProgress, len(totalsBySet))
	for setID, rarityTotals := range totalsBySet {
		collectedForSet := make(map[string]int, len(rarityTotals))
		for rarity := range rarityTotals {
			collectedForSet[rarity] = collectedByKey[key{setID, rarity}]
		}
		groups[setID] = mergedRarityGroups(rarities, rarityTotals, collectedForSet)
	}
	return groups, nil
}

// mergedRarityGroups folds rarities sharing an icon into one progress group,
// summing counts. Rarities arrive in sort order, so the first member seen is
// the group's lowest-order one and group order follows it.
func mergedRarityGroups(rarities []domain.Rarity, totals, collected map[string]int) []webtemplates.RarityGroupProgress {
	indexByIcon := make(map[string]int, len(rarities))
	groups := make([]webtemplates.RarityGroupProgress, 0, len(rarities))
	for _, rarity := range rarities {
		total, ok := totals[rarity.Name]
		if !ok {
			continue
		}
		iconKey := rarity.IconName
		if iconKey == "" {
			iconKey = rarity.Name
		}
		index, ok := indexByIcon[iconKey]
		if !ok {
			index = len(groups)
			indexByIcon[iconKey] = index
			groups = append(groups, webtemplates.RarityGroupProgress{
				Rarity:   rarity.Name,
				Label:    rarityLabel(rarity),
				IconName: rarity.IconName,
			})
		}
		groups[index].Rarities = append(groups[index].Rarities, rarity.Name)
		groups[index].Collected += collected[rarity.Name]
		groups[index].Total += total
	}
	return groups
}

// setDetail builds the card table and progress for one set.
func (s service) setDetail(ctx context.Context, code string, userID int64, translationLang string) (webtemplates.SetDetail, bool, error) {
	set, found, err := s.store.SetByCode(ctx, code)
	if err != nil || !found {
		return webtemplates.SetDetail{}, found, err
	}
	cards, err := s.store.CardsBySet(ctx, set.ID)
	if err != nil {
		return webtemplates.SetDetail{}, true, err
	}
	cardNames, err := s.store.LocalizedNames(ctx, storage.EntityCard, translationLang)
	if err != nil {
		return webtemplates.SetDetail{}, true, err
	}
	setNames, err := s.store.LocalizedNames(ctx, storage.EntitySet, translationLang)
	if err != nil {
		return webtemplates.SetDetail{}, true, err
	}
	rarities, err := s.store.ListRarities(ctx)
	if err != nil {
		return webtemplates.SetDetail{}, true, err
	}
	rarityByName := make(map[string]domain.Rarity, len(rarities))
	for _, rarity := range rarities {
		rarityByName[rarity.Name] = rarity
	}
	packsByCard, err := s.packNamesByCard(ctx, set.ID, translationLang)
	if err != nil {
		return webtemplates.SetDetail{}, true, err
	}

	owned := map[int64]int{}
	if userID > 0 {
		owned, err = s.store.OwnedCardIDsBySet(ctx, userID, set.ID)
		if err != nil {
			return webtemplates.SetDetail{}, true, err
		}
	}

	detail := webtemplates.SetDetail{
		Code:  set.Code,
		Name:  set.Name,
		Total: len(cards),
	}
	if localized, ok := setNames[set.ID]; ok && localized != "" {
		detail.Name = localized
	}

	collectedByRarity := make(map[string]int)
	totalByRarity := make(map[string]int)
	for _, card := range cards {
		name := card.Name
		if localized, ok := cardNames[card.ID]; ok && localized != "" {
			name = localized
		}
		collected := owned[card.ID] > 0
		if collected {
			detail.Collected++
			collectedByRarity[card.Rarity]++
		}
		totalByRarity[card.Rarity]++
		rarity := rarityByName[card.Rarity]
		detail.Cards = append(detail.Cards, webtemplates.CardRow{
			ID:          card.ID,
			Number:      card.Number,
			Name:        name,
			Rarity:      rarityLabel(rarity),
			RarityTag:   card.Rarity,
			RarityOrder: rarity.Order,
			Packs:       strings.Join(packsByCard[card.ID], ", "),
			Collected:   collected,
		})
	}
	detail.Groups = mergedRarityGroups(rarities, totalByRarity, collectedByRarity)
	return detail, true, nil
}

// packNamesByCard maps card id to the sorted pack names that can contain it.
func (s service) packNamesByCard(ctx context.Context, setID int64, translationLang string) (map[int64][]string, error) {
	packs, err := s.store.ListPacksForSet(ctx, setID)
	if err != nil {
		return nil, err
	}
	packNames, err := s.store.LocalizedNames(ctx, storage.EntityPack, translationLang)
	if err != nil {
		return nil, err
	}
	byCard := make(map[int64][]string)
	for _, pack := range packs {
		name := pack.Name
		if localized, ok := packNames[pack.ID]; ok && localized != "" {
			name = localized
		}
		cards, err := s.store.CardsByPack(ctx, pack.ID)
		if err != nil {
			return nil, err
		}
		for _, card := range cards {
			byCard[card.ID] = append(byCard[card.ID], name)
		}
	}
	for _, names := range byCard {
		sort.Strings(names)
	}
	return byCard, nil
}

// toggle applies a collect or uncollect action and reports the new state.
func (s service) toggle(ctx context.Context, userID, cardID int64, action string) (bool, error) {
	if userID <= 0 {
		return false, apperrors.New(apperrors.CodeSessionInvalid, "sign in to track cards")
	}
	if cardID <= 0 {
		return false, apperrors.New(apperrors.CodeCollectionInvalidCardID, "card id is invalid")
	}
	if _, found, err := s.store.CardByID(ctx, cardID); err != nil {
		return false, err
	} else if !found {
		return false, apperrors.New(apperrors.CodeCollectionInvalidCardID, fmt.Sprintf("card %d does not exist", cardID))
	}

	switch action {
	case "collect":
		return true, s.store.CollectCard(ctx, userID, cardID)
	case "uncollect":
		return false, s.store.UncollectCard(ctx, userID, cardID)
	default:
		return false, apperrors.WithMetadata(apperrors.CodeCollectionInvalidAction,
			fmt.Sprintf("action %q is not supported", action),
			map[string]string{"action": action})
	}
}

func rarityLabel(rarity domain.Rarity) string {
	if rarity.DisplayName != "" {
		return rarity.DisplayName
	}
	return rarity.Name
}
