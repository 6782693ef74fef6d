package tcgdex

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/pockettcg/tracker/internal/tracker/domain"
)

// SerieID is the TCGdex serie holding the Pocket card catalog.
const SerieID = "tcgp"

// skippedSets are serie members that never enter the catalog.
var skippedSets = map[string]bool{
	"P-A": true,
}

// Store is the catalog persistence the syncer needs.
type Store interface {
	ListGenerations(ctx context.Context) ([]domain.Generation, error)
	ListSets(ctx context.Context) ([]domain.Set, error)
	UpsertSet(ctx context.Context, set domain.Set) (int64, error)
	UpsertPack(ctx context.Context, pack domain.Pack) (int64, error)
	ListPacksForSet(ctx context.Context, setID int64) ([]domain.Pack, error)
	CardsBySet(ctx context.Context, setID int64) ([]domain.Card, error)
	UpsertCard(ctx context.Context, card domain.Card) (int64, error)
	LinkCardPack(ctx context.Context, cardID, packID int64) error
}

// Syncer imports new sets and missing cards from TCGdex.
type Syncer struct {
	client *Client
	store  Store
	logger *log.Logger
}

// NewSyncer wires a syncer to its API client and store.
func NewSyncer(client *Client, store Store, logger *log.Logger) *Syncer {
	if logger == nil {
		logger = log.Default()
	}
	return &Syncer{client: client, store: store, logger: logger}
}

// Sync fetches the serie, imports sets missing locally and backfills cards
// for sets whose local count trails the API.
func (s *Syncer) Sync(ctx context.Context) error {
	serie, err := s.client.Serie(ctx, SerieID)
	if err != nil {
		return fmt.Errorf("fetch serie %s: %w", SerieID, err)
	}

	generation, err := s.latestGeneration(ctx)
	if err != nil {
		return err
	}

	localSets, err := s.store.ListSets(ctx)
	if err != nil {
		return fmt.Errorf("list local sets: %w", err)
	}
	localByCode := make(map[string]domain.Set, len(localSets))
	for _, set := range localSets {
		localByCode[set.Code] = set
	}

	for _, brief := range serie.Sets {
		if skippedSets[brief.ID] {
			continue
		}
		if _, exists := localByCode[brief.ID]; !exists {
			s.logger.Printf("importing new set %s (%s)", brief.ID, brief.Name)
			if err := s.importSet(ctx, brief.ID, generation); err != nil {
				return err
			}
			continue
		}

		localSet := localByCode[brief.ID]
		localCards, err := s.store.CardsBySet(ctx, localSet.ID)
		if err != nil {
			return fmt.Errorf("list cards of set %s: %w", brief.ID, err)
		}
		s.logger.Printf("set %s: api=%d local=%d", brief.ID, brief.CardCount.Total, len(localCards))
		if brief.CardCount.Total == len(localCards) {
			continue
		}

		s.logger.Printf("card count mismatch for set %s, importing missing cards", brief.ID)
		if err := s.backfillSet(ctx, localSet, localCards); err != nil {
			return err
		}
	}
	return nil
}

// latestGeneration picks the newest generation for imported sets and packs.
func (s *Syncer) latestGeneration(ctx context.Context) (string, error) {
	generations, err := s.store.ListGenerations(ctx)
	if err != nil {
		return "", fmt.Errorf("list generations: %w", err)
	}
	if len(generations) == 0 {
		return "", nil
	}
	return generations[len(generations)-1].Name, nil
}

func (s *Syncer) importSet(ctx context.Context, setCode, generation string) error {
	apiSet, err := s.client.Set(ctx, setCode)
	if err != nil {
		return fmt.Errorf("fetch set %s: %w", setCode, err)
	}

	setID, err := s.store.UpsertSet(ctx, domain.Set{
		Code:        apiSet.ID,
		Name:        apiSet.Name,
		ReleaseDate: parseReleaseDate(apiSet.ReleaseDate),
		Generation:  generation,
	})
	if err != nil {
		return fmt.Errorf("store set %s: %w", setCode, err)
	}

	for _, booster := range apiSet.Boosters {
		s.logger.Printf("  pack %s (%s)", booster.ID, booster.Name)
		if _, err := s.store.UpsertPack(ctx, domain.Pack{
			SetID:      setID,
			Name:       booster.Name,
			Generation: generation,
		}); err != nil {
			return fmt.Errorf("store pack %s: %w", booster.Name, err)
		}
	}

	for _, brief := range apiSet.Cards {
		if err := s.importCard(ctx, setID, apiSet.Name, brief.ID); err != nil {
			return err
		}
	}
	return nil
}

func (s *Syncer) backfillSet(ctx context.Context, localSet domain.Set, localCards []domain.Card) error {
	apiSet, err := s.client.Set(ctx, localSet.Code)
	if err != nil {
		return fmt.Errorf("fetch set %s: %w", localSet.Code, err)
	}
	present := make(map[string]bool, len(localCards))
	for _, card := range localCards {
		present[card.Number] = true
	}
	for _, brief := range apiSet.Cards {
		if present[brief.LocalID] {
			continue
		}
		if err := s.importCard(ctx, localSet.ID, apiSet.Name, brief.ID); err != nil {
			return err
		}
	}
	return nil
}

func (s *Syncer) importCard(ctx context.Context, setID int64, setName, cardID string) error {
	apiCard, err := s.client.Card(ctx, cardID)
	if err != nil {
		return fmt.Errorf("fetch card %s: %w", cardID, err)
	}
	rarity, err := MapRarity(apiCard.Rarity)
	if err != nil {
		return fmt.Errorf("card %s: %w", cardID, err)
	}

	// Cards without booster links belong to the set's single default pack.
	boosterNames := make(map[string]bool)
	for _, booster := range apiCard.Boosters {
		boosterNames[booster.Name] = true
	}
	if len(boosterNames) == 0 {
		boosterNames[setName] = true
	}

	s.logger.Printf("  card %s %s (%s, %s)", apiCard.Set.ID, apiCard.LocalID, apiCard.Name, rarity)
	storedID, err := s.store.UpsertCard(ctx, domain.Card{
		SetID:  setID,
		Number: apiCard.LocalID,
		Name:   apiCard.Name,
		Rarity: rarity,
	})
	if err != nil {
		return fmt.Errorf("store card %s: %w", cardID, err)
	}

	packs, err := s.store.ListPacksForSet(ctx, setID)
	if err != nil {
		return fmt.Errorf("list packs of set %d: %w", setID, err)
	}
	for _, pack := range packs {
		if !boosterNames[pack.Name] {
			continue
		}
		if err := s.store.LinkCardPack(ctx, storedID, pack.ID); err != nil {
			return fmt.Errorf("link card %s to pack %s: %w", cardID, pack.Name, err)
		}
	}
	return nil
}

func parseReleaseDate(value string) time.Time {
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}
	}
	return parsed
}
