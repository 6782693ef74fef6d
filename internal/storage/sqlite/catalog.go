package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pockettcg/tracker/internal/storage"
	"github.com/pockettcg/tracker/internal/tracker/domain"
)

// UpsertGeneration inserts or updates a generation by name.
func (s *Store) UpsertGeneration(ctx context.Context, gen domain.Generation) error {
	if err := gen.Validate(); err != nil {
		return err
	}
	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO generations (name, display_name, description)
		 VALUES (?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET
		   display_name = excluded.display_name,
		   description = excluded.description`,
		gen.Name,
		gen.DisplayName,
		gen.Description,
	)
	if err != nil {
		return fmt.Errorf("upsert generation: %w", err)
	}
	return nil
}

// ListGenerations returns all generations ordered by name.
func (s *Store) ListGenerations(ctx context.Context) ([]domain.Generation, error) {
	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT name, display_name, description FROM generations ORDER BY name`,
	)
	if err != nil {
		return nil, fmt.Errorf("list generations: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	generations := make([]domain.Generation, 0)
	for rows.Next() {
		var gen domain.Generation
		if err := rows.Scan(&gen.Name, &gen.DisplayName, &gen.Description); err != nil {
			return nil, fmt.Errorf("scan generation: %w", err)
		}
		generations = append(generations, gen)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate generations: %w", err)
	}
	return generations, nil
}

// UpsertPackType inserts or updates a pack type by (generation, name) and
// returns its id.
func (s *Store) UpsertPackType(ctx context.Context, packType domain.PackType) (int64, error) {
	if err := packType.Validate(); err != nil {
		return 0, err
	}
	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO pack_types (generation, name, display_name, slot_count, occurrence_probability, description)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(generation, name) DO UPDATE SET
		   display_name = excluded.display_name,
		   slot_count = excluded.slot_count,
		   occurrence_probability = excluded.occurrence_probability,
		   description = excluded.description`,
		packType.Generation,
		packType.Name,
		packType.DisplayName,
		packType.SlotCount,
		packType.OccurrenceProbability,
		packType.Description,
	)
	if err != nil {
		return 0, fmt.Errorf("upsert pack type: %w", err)
	}
	var id int64
	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT id FROM pack_types WHERE generation = ? AND name = ?`,
		packType.Generation,
		packType.Name,
	)
	if err := row.Scan(&id); err != nil {
		return 0, fmt.Errorf("resolve pack type id: %w", err)
	}
	return id, nil
}

// PackTypesForGeneration returns a generation's pack types ordered by name.
func (s *Store) PackTypesForGeneration(ctx context.Context, generation string) ([]domain.PackType, error) {
	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT id, generation, name, display_name, slot_count, occurrence_probability, description
		 FROM pack_types
		 WHERE generation = ?
		 ORDER BY name`,
		generation,
	)
	if err != nil {
		return nil, fmt.Errorf("list pack types: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	packTypes := make([]domain.PackType, 0)
	for rows.Next() {
		var pt domain.PackType
		if err := rows.Scan(&pt.ID, &pt.Generation, &pt.Name, &pt.DisplayName, &pt.SlotCount, &pt.OccurrenceProbability, &pt.Description); err != nil {
			return nil, fmt.Errorf("scan pack type: %w", err)
		}
		packTypes = append(packTypes, pt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pack types: %w", err)
	}
	return packTypes, nil
}

// UpsertRarity inserts or updates a rarity by name.
func (s *Store) UpsertRarity(ctx context.Context, rarity domain.Rarity) error {
	if err := rarity.Validate(); err != nil {
		return err
	}
	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO rarities (name, display_name, sort_order, icon_name, repeat_count)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET
		   display_name = excluded.display_name,
		   sort_order = excluded.sort_order,
		   icon_name = excluded.icon_name,
		   repeat_count = excluded.repeat_count`,
		rarity.Name,
		rarity.DisplayName,
		rarity.Order,
		rarity.IconName,
		rarity.RepeatCount,
	)
	if err != nil {
		return fmt.Errorf("upsert rarity: %w", err)
	}
	return nil
}

// ListRarities returns all rarities in display order.
func (s *Store) ListRarities(ctx context.Context) ([]domain.Rarity, error) {
	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT name, display_name, sort_order, icon_name, repeat_count
		 FROM rarities
		 ORDER BY sort_order, name`,
	)
	if err != nil {
		return nil, fmt.Errorf("list rarities: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	rarities := make([]domain.Rarity, 0)
	for rows.Next() {
		var rarity domain.Rarity
		if err := rows.Scan(&rarity.Name, &rarity.DisplayName, &rarity.Order, &rarity.IconName, &rarity.RepeatCount); err != nil {
			return nil, fmt.Errorf("scan rarity: %w", err)
		}
		rarities = append(rarities, rarity)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rarities: %w", err)
	}
	return rarities, nil
}

// UpsertSet inserts or updates a set by code and returns its id.
func (s *Store) UpsertSet(ctx context.Context, set domain.Set) (int64, error) {
	if err := set.Validate(); err != nil {
		return 0, err
	}
	var availableUntil any
	if set.AvailableUntil != nil {
		availableUntil = timeToUnixMillis(*set.AvailableUntil)
	}
	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO sets (code, name, release_date, available_until, generation)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(code) DO UPDATE SET
		   name = excluded.name,
		   release_date = excluded.release_date,
		   available_until = excluded.available_until,
		   generation = excluded.generation`,
		set.Code,
		set.Name,
		timeToUnixMillis(set.ReleaseDate),
		availableUntil,
		set.Generation,
	)
	if err != nil {
		return 0, fmt.Errorf("upsert set: %w", err)
	}
	var id int64
	if err := s.sqlDB.QueryRowContext(ctx, `SELECT id FROM sets WHERE code = ?`, set.Code).Scan(&id); err != nil {
		return 0, fmt.Errorf("resolve set id: %w", err)
	}
	return id, nil
}

// ListSets returns all sets, newest release first.
func (s *Store) ListSets(ctx context.Context) ([]domain.Set, error) {
	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT id, code, name, release_date, available_until, generation
		 FROM sets
		 ORDER BY release_date DESC, code DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list sets: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	sets := make([]domain.Set, 0)
	for rows.Next() {
		set, err := scanSet(rows)
		if err != nil {
			return nil, err
		}
		sets = append(sets, set)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sets: %w", err)
	}
	return sets, nil
}

// SetByCode loads one set by its code.
func (s *Store) SetByCode(ctx context.Context, code string) (domain.Set, bool, error) {
	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT id, code, name, release_date, available_until, generation
		 FROM sets
		 WHERE code = ?`,
		strings.TrimSpace(code),
	)
	set, err := scanSet(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Set{}, false, nil
		}
		return domain.Set{}, false, err
	}
	return set, true, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSet(row rowScanner) (domain.Set, error) {
	var set domain.Set
	var releaseDate int64
	var availableUntil sql.NullInt64
	if err := row.Scan(&set.ID, &set.Code, &set.Name, &releaseDate, &availableUntil, &set.Generation); err != nil {
		return domain.Set{}, fmt.Errorf("scan set: %w", err)
	}
	set.ReleaseDate = unixMillisToTime(releaseDate)
	if availableUntil.Valid {
		until := unixMillisToTime(availableUntil.Int64)
		set.AvailableUntil = &until
	}
	return set, nil
}

// UpsertPack inserts or updates a pack by (set, name) and returns its id.
func (s *Store) UpsertPack(ctx context.Context, pack domain.Pack) (int64, error) {
	if err := pack.Validate(); err != nil {
		return 0, err
	}
	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO packs (set_id, name, generation)
		 VALUES (?, ?, ?)
		 ON CONFLICT(set_id, name) DO UPDATE SET
		   generation = excluded.generation`,
		pack.SetID,
		pack.Name,
		pack.Generation,
	)
	if err != nil {
		return 0, fmt.Errorf("upsert pack: %w", err)
	}
	var id int64
	if err := s.sqlDB.QueryRowContext(ctx, `SELECT id FROM packs WHERE set_id = ? AND name = ?`, pack.SetID, pack.Name).Scan(&id); err != nil {
		return 0, fmt.Errorf("resolve pack id: %w", err)
	}
	return id, nil
}

// ListAvailablePacks returns packs of sets still available on day, newest
// set first.
func (s *Store) ListAvailablePacks(ctx context.Context, day time.Time) ([]storage.PackWithSet, error) {
	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT p.id, p.set_id, p.name, p.generation, s.code, s.name, s.generation
		 FROM packs p
		 JOIN sets s ON s.id = p.set_id
		 WHERE s.available_until IS NULL OR s.available_until >= ?
		 ORDER BY s.release_date DESC, p.name`,
		timeToUnixMillis(day),
	)
	if err != nil {
		return nil, fmt.Errorf("list available packs: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	packs := make([]storage.PackWithSet, 0)
	for rows.Next() {
		var pws storage.PackWithSet
		if err := rows.Scan(&pws.Pack.ID, &pws.Pack.SetID, &pws.Pack.Name, &pws.Pack.Generation, &pws.SetCode, &pws.SetName, &pws.SetGeneration); err != nil {
			return nil, fmt.Errorf("scan pack: %w", err)
		}
		pws.SetID = pws.Pack.SetID
		packs = append(packs, pws)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate packs: %w", err)
	}
	return packs, nil
}

// ListPacksForSet returns one set's packs ordered by name.
func (s *Store) ListPacksForSet(ctx context.Context, setID int64) ([]domain.Pack, error) {
	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT id, set_id, name, generation FROM packs WHERE set_id = ? ORDER BY name`,
		setID,
	)
	if err != nil {
		return nil, fmt.Errorf("list set packs: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	packs := make([]domain.Pack, 0)
	for rows.Next() {
		var pack domain.Pack
		if err := rows.Scan(&pack.ID, &pack.SetID, &pack.Name, &pack.Generation); err != nil {
			return nil, fmt.Errorf("scan pack: %w", err)
		}
		packs = append(packs, pack)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate packs: %w", err)
	}
	return packs, nil
}

// UpsertCard inserts or updates a card by (set, number) and returns its id.
func (s *Store) UpsertCard(ctx context.Context, card domain.Card) (int64, error) {
	if err := card.Validate(); err != nil {
		return 0, err
	}
	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO cards (set_id, number, name, rarity)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(set_id, number) DO UPDATE SET
		   name = excluded.name,
		   rarity = excluded.rarity`,
		card.SetID,
		card.Number,
		card.Name,
		card.Rarity,
	)
	if err != nil {
		return 0, fmt.Errorf("upsert card: %w", err)
	}
	var id int64
	if err := s.sqlDB.QueryRowContext(ctx, `SELECT id FROM cards WHERE set_id = ? AND number = ?`, card.SetID, card.Number).Scan(&id); err != nil {
		return 0, fmt.Errorf("resolve card id: %w", err)
	}
	return id, nil
}

// CardByID loads one card.
func (s *Store) CardByID(ctx context.Context, cardID int64) (domain.Card, bool, error) {
	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT id, set_id, number, name, rarity FROM cards WHERE id = ?`,
		cardID,
	)
	var card domain.Card
	if err := row.Scan(&card.ID, &card.SetID, &card.Number, &card.Name, &card.Rarity); err != nil {
		if err == sql.ErrNoRows {
			return domain.Card{}, false, nil
		}
		return domain.Card{}, false, fmt.Errorf("get card: %w", err)
	}
	return card, true, nil
}

// CardsBySet returns a set's cards ordered by collector number.
func (s *Store) CardsBySet(ctx context.Context, setID int64) ([]domain.Card, error) {
	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT id, set_id, number, name, rarity
		 FROM cards
		 WHERE set_id = ?
		 ORDER BY number`,
		setID,
	)
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}
	return collectCards(rows)
}

// CardsByName returns every card with the given English name. Reprints
// share a name across sets.
func (s *Store) CardsByName(ctx context.Context, name string) ([]domain.Card, error) {
	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT id, set_id, number, name, rarity FROM cards WHERE name = ? ORDER BY set_id, number`,
		name,
	)
	if err != nil {
		return nil, fmt.Errorf("list cards by name: %w", err)
	}
	return collectCards(rows)
}

// CardsByPack returns the cards linked to one pack ordered by number.
func (s *Store) CardsByPack(ctx context.Context, packID int64) ([]domain.Card, error) {
	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT c.id, c.set_id, c.number, c.name, c.rarity
		 FROM card_packs cp
		 JOIN cards c ON c.id = cp.card_id
		 WHERE cp.pack_id = ?
		 ORDER BY c.number`,
		packID,
	)
	if err != nil {
		return nil, fmt.Errorf("list pack cards: %w", err)
	}
	return collectCards(rows)
}

func collectCards(rows *sql.Rows) ([]domain.Card, error) {
	defer func() {
		_ = rows.Close()
	}()
	cards := make([]domain.Card, 0)
	for rows.Next() {
		var card domain.Card
		if err := rows.Scan(&card.ID, &card.SetID, &card.Number, &card.Name, &card.Rarity); err != nil {
			return nil, fmt.Errorf("scan card: %w", err)
		}
		cards = append(cards, card)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cards: %w", err)
	}
	return cards, nil
}

// LinkCardPack records that a card can be pulled from a pack.
func (s *Store) LinkCardPack(ctx context.Context, cardID, packID int64) error {
	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT OR IGNORE INTO card_packs (card_id, pack_id) VALUES (?, ?)`,
		cardID,
		packID,
	)
	if err != nil {
		return fmt.Errorf("link card to pack: %w", err)
	}
	return nil
}

// UpsertRarityProbability inserts or updates one probability row by
// (pack type, rarity).
func (s *Store) UpsertRarityProbability(ctx context.Context, rp domain.RarityProbability) error {
	if err := rp.Validate(); err != nil {
		return err
	}
	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO rarity_probabilities (generation, pack_type_id, rarity, slot_1, slot_2, slot_3, slot_4, slot_5, slot_6)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(pack_type_id, rarity) DO UPDATE SET
		   generation = excluded.generation,
		   slot_1 = excluded.slot_1,
		   slot_2 = excluded.slot_2,
		   slot_3 = excluded.slot_3,
		   slot_4 = excluded.slot_4,
		   slot_5 = excluded.slot_5,
		   slot_6 = excluded.slot_6`,
		rp.Generation,
		rp.PackTypeID,
		rp.Rarity,
		rp.Slots[0], rp.Slots[1], rp.Slots[2], rp.Slots[3], rp.Slots[4], rp.Slots[5],
	)
	if err != nil {
		return fmt.Errorf("upsert rarity probability: %w", err)
	}
	return nil
}

// ProbabilityRows returns the probability rows for one pack type.
func (s *Store) ProbabilityRows(ctx context.Context, packTypeID int64) ([]domain.RarityProbability, error) {
	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT id, generation, pack_type_id, rarity, slot_1, slot_2, slot_3, slot_4, slot_5, slot_6
		 FROM rarity_probabilities
		 WHERE pack_type_id = ?
		 ORDER BY rarity`,
		packTypeID,
	)
	if err != nil {
		return nil, fmt.Errorf("list rarity probabilities: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	probabilities := make([]domain.RarityProbability, 0)
	for rows.Next() {
		var rp domain.RarityProbability
		if err := rows.Scan(&rp.ID, &rp.Generation, &rp.PackTypeID, &rp.Rarity,
			&rp.Slots[0], &rp.Slots[1], &rp.Slots[2], &rp.Slots[3], &rp.Slots[4], &rp.Slots[5]); err != nil {
			return nil, fmt.Errorf("scan rarity probability: %w", err)
		}
		probabilities = append(probabilities, rp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rarity probabilities: %w", err)
	}
	return probabilities, nil
}

// UpsertTranslation stores a localized display name for a set, pack or card.
func (s *Store) UpsertTranslation(ctx context.Context, entity string, entityID int64, tr domain.Translation) error {
	entity = strings.TrimSpace(entity)
	if entity != storage.EntitySet && entity != storage.EntityPack && entity != storage.EntityCard {
		return fmt.Errorf("unknown translation entity %q", entity)
	}
	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO name_translations (entity, entity_id, language_code, localized_name)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(entity, entity_id, language_code) DO UPDATE SET
		   localized_name = excluded.localized_name`,
		entity,
		entityID,
		tr.LanguageCode,
		tr.LocalizedName,
	)
	if err != nil {
		return fmt.Errorf("upsert translation: %w", err)
	}
	return nil
}

// LocalizedNames returns entity id to localized name for one entity kind and
// language. Entities without a translation are absent from the map.
func (s *Store) LocalizedNames(ctx context.Context, entity, languageCode string) (map[int64]string, error) {
	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT entity_id, localized_name
		 FROM name_translations
		 WHERE entity = ? AND language_code = ?`,
		entity,
		languageCode,
	)
	if err != nil {
		return nil, fmt.Errorf("list translations: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	names := make(map[int64]string)
	for rows.Next() {
		var entityID int64
		var name string
		if err := rows.Scan(&entityID, &name); err != nil {
			return nil, fmt.Errorf("scan translation: %w", err)
		}
		names[entityID] = name
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate translations: %w", err)
	}
	return names, nil
}
