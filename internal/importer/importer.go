// Package importer loads the card catalog from CSV files.
package importer

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/pockettcg/tracker/internal/platform/errors"
	"github.com/pockettcg/tracker/internal/tracker/domain"
)

// translationLanguage is the language code of the shipped translation files.
const translationLanguage = "de"

// Store is the catalog persistence the importer needs.
type Store interface {
	UpsertGeneration(ctx context.Context, gen domain.Generation) error
	ListGenerations(ctx context.Context) ([]domain.Generation, error)
	UpsertRarity(ctx context.Context, rarity domain.Rarity) error
	UpsertPackType(ctx context.Context, packType domain.PackType) (int64, error)
	PackTypesForGeneration(ctx context.Context, generation string) ([]domain.PackType, error)
	UpsertRarityProbability(ctx context.Context, rp domain.RarityProbability) error
	UpsertSet(ctx context.Context, set domain.Set) (int64, error)
	SetByCode(ctx context.Context, code string) (domain.Set, bool, error)
	ListSets(ctx context.Context) ([]domain.Set, error)
	UpsertPack(ctx context.Context, pack domain.Pack) (int64, error)
	ListPacksForSet(ctx context.Context, setID int64) ([]domain.Pack, error)
	UpsertCard(ctx context.Context, card domain.Card) (int64, error)
	CardsByName(ctx context.Context, name string) ([]domain.Card, error)
	LinkCardPack(ctx context.Context, cardID, packID int64) error
	UpsertTranslation(ctx context.Context, entity string, entityID int64, tr domain.Translation) error
}

// Importer reads CSV files and upserts their rows into the catalog.
type Importer struct {
	store  Store
	logger *log.Logger
}

// New wires an importer to its store.
func New(store Store, logger *log.Logger) *Importer {
	if logger == nil {
		logger = log.Default()
	}
	return &Importer{store: store, logger: logger}
}

// record is one CSV row keyed by header name.
type record map[string]string

func readRecords(r io.Reader) ([]record, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	if len(header) > 0 {
		// Spreadsheet exports prepend a UTF-8 BOM.
		header[0] = strings.TrimPrefix(header[0], "\uFEFF")
	}

	var records []record
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}
		rec := make(record, len(header))
		for i, name := range header {
			if i < len(row) {
				rec[strings.TrimSpace(name)] = strings.TrimSpace(row[i])
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

func (rec record) float(key string) (float64, error) {
	value := rec[key]
	if value == "" {
		return 0, nil
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, apperrors.Wrap(apperrors.CodeImportBadRecord, "bad numeric field "+key, err)
	}
	return parsed, nil
}

func (rec record) int(key string, fallback int) (int, error) {
	value := rec[key]
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, apperrors.Wrap(apperrors.CodeImportBadRecord, "bad integer field "+key, err)
	}
	return parsed, nil
}

// ImportGenerations loads generations from CSV with columns
// name, display_name, description.
func (imp *Importer) ImportGenerations(ctx context.Context, r io.Reader) error {
	records, err := readRecords(r)
	if err != nil {
		return err
	}
	for _, rec := range records {
		gen := domain.Generation{
			Name:        rec["name"],
			DisplayName: rec["display_name"],
			Description: rec["description"],
		}
		if err := imp.store.UpsertGeneration(ctx, gen); err != nil {
			return fmt.Errorf("import generation %s: %w", gen.Name, err)
		}
		imp.logger.Printf("generation %s (%s)", gen.Name, gen.DisplayName)
	}
	return nil
}

// ImportRarities loads rarities from CSV with columns
// name, display_name, order and optional icon_name, repeat_count.
func (imp *Importer) ImportRarities(ctx context.Context, r io.Reader) error {
	records, err := readRecords(r)
	if err != nil {
		return err
	}
	for _, rec := range records {
		order, err := rec.int("order", 0)
		if err != nil {
			return err
		}
		repeatCount, err := rec.int("repeat_count", 1)
		if err != nil {
			return err
		}
		rarity := domain.Rarity{
			Name:        rec["name"],
			DisplayName: rec["display_name"],
			Order:       order,
			IconName:    rec["icon_name"],
			RepeatCount: repeatCount,
		}
		if err := imp.store.UpsertRarity(ctx, rarity); err != nil {
			return fmt.Errorf("import rarity %s: %w", rarity.Name, err)
		}
		imp.logger.Printf("rarity %s", rarity.Name)
	}
	return nil
}

// ImportPackTypes loads pack types from CSV with columns generation,
// pack_type, display_name, slot_count, occurrence_probability, description.
// Rows naming an unknown generation are skipped.
func (imp *Importer) ImportPackTypes(ctx context.Context, r io.Reader) error {
	records, err := readRecords(r)
	if err != nil {
		return err
	}
	known, err := imp.generationNames(ctx)
	if err != nil {
		return err
	}
	for _, rec := range records {
		if !known[rec["generation"]] {
			imp.logger.Printf("skipping pack type %s: unknown generation %s", rec["pack_type"], rec["generation"])
			continue
		}
		slotCount, err := rec.int("slot_count", 5)
		if err != nil {
			return err
		}
		occurrence, err := rec.float("occurrence_probability")
		if err != nil {
			return err
		}
		packType := domain.PackType{
			Generation:            rec["generation"],
			Name:                  rec["pack_type"],
			DisplayName:           rec["display_name"],
			SlotCount:             slotCount,
			OccurrenceProbability: occurrence,
			Description:           rec["description"],
		}
		if _, err := imp.store.UpsertPackType(ctx, packType); err != nil {
			return fmt.Errorf("import pack type %s: %w", packType.Name, err)
		}
		imp.logger.Printf("pack type %s/%s", packType.Generation, packType.Name)
	}
	return nil
}

// ImportRarityProbabilities loads probability rows from CSV with columns
// generation, pack_type, rarity, probability_slot1..probability_slot6.
// God pack rows are skipped since their odds derive from the card pool.
func (imp *Importer) ImportRarityProbabilities(ctx context.Context, r io.Reader) error {
	records, err := readRecords(r)
	if err != nil {
		return err
	}
	packTypeIDs := make(map[string]domain.PackType)
	for _, rec := range records {
		key := rec["generation"] + "/" + rec["pack_type"]
		packType, cached := packTypeIDs[key]
		if !cached {
			packTypes, err := imp.store.PackTypesForGeneration(ctx, rec["generation"])
			if err != nil {
				return fmt.Errorf("resolve pack types for %s: %w", rec["generation"], err)
			}
			found := false
			for _, pt := range packTypes {
				packTypeIDs[rec["generation"]+"/"+pt.Name] = pt
				if pt.Name == rec["pack_type"] {
					packType = pt
					found = true
				}
			}
			if !found {
				imp.logger.Printf("skipping probability for %s: unknown pack type", key)
				continue
			}
		}
		if packType.IsGodPack() {
			imp.logger.Printf("skipping god pack probability %s/%s", key, rec["rarity"])
			continue
		}

		rp := domain.RarityProbability{
			Generation: rec["generation"],
			PackTypeID: packType.ID,
			Rarity:     rec["rarity"],
		}
		for slot := 0; slot < domain.MaxSlots; slot++ {
			value, err := rec.float(fmt.Sprintf("probability_slot%d", slot+1))
			if err != nil {
				return err
			}
			rp.Slots[slot] = value
		}
		if err := imp.store.UpsertRarityProbability(ctx, rp); err != nil {
			return fmt.Errorf("import probability %s/%s: %w", key, rp.Rarity, err)
		}
		imp.logger.Printf("probability %s/%s", key, rp.Rarity)
	}
	return nil
}

// ImportSets loads sets from CSV with columns number, name, release_date
// and optional generation, available_until. Rows naming an unknown
// generation are skipped.
func (imp *Importer) ImportSets(ctx context.Context, r io.Reader) error {
	records, err := readRecords(r)
	if err != nil {
		return err
	}
	known, err := imp.generationNames(ctx)
	if err != nil {
		return err
	}
	for _, rec := range records {
		if gen := rec["generation"]; gen != "" && !known[gen] {
			imp.logger.Printf("skipping set %s: unknown generation %s", rec["number"], gen)
			continue
		}
		set := domain.Set{
			Code:        rec["number"],
			Name:        rec["name"],
			ReleaseDate: parseDate(rec["release_date"]),
			Generation:  rec["generation"],
		}
		if until := parseDate(rec["available_until"]); !until.IsZero() {
			set.AvailableUntil = &until
		}
		if _, err := imp.store.UpsertSet(ctx, set); err != nil {
			return fmt.Errorf("import set %s: %w", set.Code, err)
		}
		imp.logger.Printf("set %s (%s)", set.Code, set.Name)
	}
	return nil
}

// ImportCards loads cards from CSV with columns set_number, number, card,
// rarity and an optional pipe-separated pack column. Unknown packs are
// created on the fly with the newest generation.
func (imp *Importer) ImportCards(ctx context.Context, r io.Reader) error {
	records, err := readRecords(r)
	if err != nil {
		return err
	}
	for _, rec := range records {
		set, found, err := imp.store.SetByCode(ctx, rec["set_number"])
		if err != nil {
			return fmt.Errorf("resolve set %s: %w", rec["set_number"], err)
		}
		if !found {
			imp.logger.Printf("skipping card %s: unknown set %s", rec["card"], rec["set_number"])
			continue
		}

		card := domain.Card{
			SetID:  set.ID,
			Number: rec["number"],
			Name:   rec["card"],
			Rarity: rec["rarity"],
		}
		cardID, err := imp.store.UpsertCard(ctx, card)
		if err != nil {
			return fmt.Errorf("import card %s: %w", card.Name, err)
		}
		imp.logger.Printf("card %s %s (%s)", set.Code, card.Number, card.Name)

		if err := imp.assignPacks(ctx, set, cardID, rec["pack"]); err != nil {
			return err
		}
	}
	return nil
}

func (imp *Importer) assignPacks(ctx context.Context, set domain.Set, cardID int64, packColumn string) error {
	if strings.TrimSpace(packColumn) == "" {
		return nil
	}
	packs, err := imp.store.ListPacksForSet(ctx, set.ID)
	if err != nil {
		return fmt.Errorf("list packs of set %s: %w", set.Code, err)
	}
	byName := make(map[string]int64, len(packs))
	for _, pack := range packs {
		byName[pack.Name] = pack.ID
	}

	for _, packName := range strings.Split(packColumn, "|") {
		packName = strings.TrimSpace(packName)
		if packName == "" {
			continue
		}
		packID, exists := byName[packName]
		if !exists {
			generation, err := imp.latestGeneration(ctx)
			if err != nil {
				return err
			}
			packID, err = imp.store.UpsertPack(ctx, domain.Pack{
				SetID:      set.ID,
				Name:       packName,
				Generation: generation,
			})
			if err != nil {
				return fmt.Errorf("create pack %s: %w", packName, err)
			}
			byName[packName] = packID
			imp.logger.Printf("created pack %s in set %s", packName, set.Code)
		}
		if err := imp.store.LinkCardPack(ctx, cardID, packID); err != nil {
			return fmt.Errorf("link card to pack %s: %w", packName, err)
		}
	}
	return nil
}

// ImportSetTranslations loads German set names from CSV with columns
// english_name, german_name.
func (imp *Importer) ImportSetTranslations(ctx context.Context, r io.Reader) error {
	records, err := readRecords(r)
	if err != nil {
		return err
	}
	sets, err := imp.store.ListSets(ctx)
	if err != nil {
		return fmt.Errorf("list sets: %w", err)
	}
	byName := make(map[string]int64, len(sets))
	for _, set := range sets {
		byName[set.Name] = set.ID
	}
	for _, rec := range records {
		setID, found := byName[rec["english_name"]]
		if !found {
			imp.logger.Printf("skipping set translation: unknown set %s", rec["english_name"])
			continue
		}
		tr := domain.Translation{LanguageCode: translationLanguage, LocalizedName: rec["german_name"]}
		if err := imp.store.UpsertTranslation(ctx, "set", setID, tr); err != nil {
			return fmt.Errorf("import set translation %s: %w", rec["english_name"], err)
		}
	}
	return nil
}

// ImportPackTranslations loads German pack names from CSV with columns
// set_english_name, pack_english_name, pack_german_name.
func (imp *Importer) ImportPackTranslations(ctx context.Context, r io.Reader) error {
	records, err := readRecords(r)
	if err != nil {
		return err
	}
	sets, err := imp.store.ListSets(ctx)
	if err != nil {
		return fmt.Errorf("list sets: %w", err)
	}
	setsByName := make(map[string]domain.Set, len(sets))
	for _, set := range sets {
		setsByName[set.Name] = set
	}
	for _, rec := range records {
		set, found := setsByName[rec["set_english_name"]]
		if !found {
			imp.logger.Printf("skipping pack translation: unknown set %s", rec["set_english_name"])
			continue
		}
		packs, err := imp.store.ListPacksForSet(ctx, set.ID)
		if err != nil {
			return fmt.Errorf("list packs of set %s: %w", set.Code, err)
		}
		var packID int64
		for _, pack := range packs {
			if pack.Name == rec["pack_english_name"] {
				packID = pack.ID
				break
			}
		}
		if packID == 0 {
			imp.logger.Printf("skipping pack translation: unknown pack %s in set %s", rec["pack_english_name"], set.Code)
			continue
		}
		tr := domain.Translation{LanguageCode: translationLanguage, LocalizedName: rec["pack_german_name"]}
		if err := imp.store.UpsertTranslation(ctx, "pack", packID, tr); err != nil {
			return fmt.Errorf("import pack translation %s: %w", rec["pack_english_name"], err)
		}
	}
	return nil
}

// ImportCardTranslations loads German card names from CSV with columns
// card_english_name, card_german_name. Reprints share the translation.
func (imp *Importer) ImportCardTranslations(ctx context.Context, r io.Reader) error {
	records, err := readRecords(r)
	if err != nil {
		return err
	}
	for _, rec := range records {
		english := rec["card_english_name"]
		german := rec["card_german_name"]
		if english == "" || german == "" {
			continue
		}
		cards, err := imp.store.CardsByName(ctx, english)
		if err != nil {
			return fmt.Errorf("resolve cards named %s: %w", english, err)
		}
		if len(cards) == 0 {
			imp.logger.Printf("skipping card translation: unknown card %s", english)
			continue
		}
		tr := domain.Translation{LanguageCode: translationLanguage, LocalizedName: german}
		for _, card := range cards {
			if err := imp.store.UpsertTranslation(ctx, "card", card.ID, tr); err != nil {
				return fmt.Errorf("import card translation %s: %w", english, err)
			}
		}
	}
	return nil
}

func (imp *Importer) generationNames(ctx context.Context) (map[string]bool, error) {
	generations, err := imp.store.ListGenerations(ctx)
	if err != nil {
		return nil, fmt.Errorf("list generations: %w", err)
	}
	names := make(map[string]bool, len(generations))
	for _, gen := range generations {
		names[gen.Name] = true
	}
	return names, nil
}

func (imp *Importer) latestGeneration(ctx context.Context) (string, error) {
	generations, err := imp.store.ListGenerations(ctx)
	if err != nil {
		return "", fmt.Errorf("list generations: %w", err)
	}
	if len(generations) == 0 {
		return "", apperrors.New(apperrors.CodeImportBadRecord, "no generations imported yet")
	}
	return generations[len(generations)-1].Name, nil
}

func parseDate(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}
	}
	return parsed
}
