package admin

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	apperrors "github.com/pockettcg/tracker/internal/platform/errors"
	"github.com/pockettcg/tracker/internal/tracker/domain"
	"github.com/pockettcg/tracker/internal/tracker/pulls"
)

// Store is the persistence surface the admin module depends on.
type Store interface {
	ListGenerations(ctx context.Context) ([]domain.Generation, error)
	PackTypesForGeneration(ctx context.Context, generation string) ([]domain.PackType, error)
	ListRarities(ctx context.Context) ([]domain.Rarity, error)
	UpsertPackType(ctx context.Context, packType domain.PackType) (int64, error)
	UpsertRarityProbability(ctx context.Context, rp domain.RarityProbability) error
}

type service struct {
	store Store
}

func newService(store Store) service {
	return service{store: store}
}

// packTypeInput is the parsed pack type creation form.
type packTypeInput struct {
	Generation            string
	Name                  string
	DisplayName           string
	SlotCount             int
	OccurrenceProbability float64
	// SlotRarities holds one "rarity=prob,rarity=prob" spec per slot.
	SlotRarities []string
}

// listing loads generations and all their pack types.
func (s service) listing(ctx context.Context) ([]domain.Generation, []domain.PackType, error) {
	generations, err := s.store.ListGenerations(ctx)
	if err != nil {
		return nil, nil, err
	}
	var packTypes []domain.PackType
	for _, gen := range generations {
		genTypes, err := s.store.PackTypesForGeneration(ctx, gen.Name)
		if err != nil {
			return nil, nil, err
		}
		packTypes = append(packTypes, genTypes...)
	}
	return generations, packTypes, nil
}

// createPackType validates and stores a pack type with its slot
// probabilities. Slot sums must reach 1.0 on every active slot; god packs
// carry no stored probabilities.
func (s service) createPackType(ctx context.Context, input packTypeInput) error {
	packType := domain.PackType{
		Generation:            strings.TrimSpace(input.Generation),
		Name:                  strings.TrimSpace(input.Name),
		DisplayName:           strings.TrimSpace(input.DisplayName),
		SlotCount:             input.SlotCount,
		OccurrenceProbability: input.OccurrenceProbability,
	}
	if packType.DisplayName == "" {
		packType.DisplayName = packType.Name
	}
	if err := packType.Validate(); err != nil {
		return err
	}

	var rows []domain.RarityProbability
	if !packType.IsGodPack() {
		known, err := s.knownRarities(ctx)
		if err != nil {
			return err
		}
		rows, err = parseSlotRarities(input.SlotRarities, packType, known)
		if err != nil {
			return err
		}
		if err := pulls.ValidateSlotSums(packType, rows); err != nil {
			return err
		}
	}

	packTypeID, err := s.store.UpsertPackType(ctx, packType)
	if err != nil {
		return err
	}
	for _, row := range rows {
		row.Generation = packType.Generation
		row.PackTypeID = packTypeID
		if err := s.store.UpsertRarityProbability(ctx, row); err != nil {
			return err
		}
	}
	return nil
}

func (s service) knownRarities(ctx context.Context) (map[string]bool, error) {
	rarities, err := s.store.ListRarities(ctx)
	if err != nil {
		return nil, err
	}
	known := make(map[string]bool, len(rarities))
	for _, rarity := range rarities {
		known[rarity.Name] = true
	}
	return known, nil
}

// parseSlotRarities turns per-slot "rarity=prob,rarity=prob" specs into
// probability rows keyed by rarity.
func parseSlotRarities(slotSpecs []string, packType domain.PackType, knownRarities map[string]bool) ([]domain.RarityProbability, error) {
	byRarity := make(map[string]*domain.RarityProbability)
	for slotIndex, spec := range slotSpecs {
		if slotIndex >= packType.SlotCount {
			break
		}
		spec = strings.TrimSpace(spec)
		if spec == "" {
			continue
		}
		for _, entry := range strings.Split(spec, ",") {
			entry = strings.TrimSpace(entry)
			if entry == "" {
				continue
			}
			name, value, found := strings.Cut(entry, "=")
			if !found {
				return nil, apperrors.New(apperrors.CodeProbabilityRange,
					fmt.Sprintf("slot %d entry %q is not rarity=probability", slotIndex+1, entry))
			}
			name = strings.TrimSpace(name)
			if !knownRarities[name] {
				return nil, apperrors.WithMetadata(apperrors.CodeRarityUnknown,
					fmt.Sprintf("rarity %q is not defined", name),
					map[string]string{"rarity": name})
			}
			prob, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
			if err != nil {
				return nil, apperrors.Wrap(apperrors.CodeProbabilityRange,
					fmt.Sprintf("slot %d rarity %s probability", slotIndex+1, name), err)
			}
			row, ok := byRarity[name]
			if !ok {
				row = &domain.RarityProbability{Rarity: name}
				byRarity[name] = row
			}
			row.Slots[slotIndex] = prob
		}
	}

	rows := make([]domain.RarityProbability, 0, len(byRarity))
	for _, row := range byRarity {
		if err := row.Validate(); err != nil {
			return nil, err
		}
		rows = append(rows, *row)
	}
	return rows, nil
}
