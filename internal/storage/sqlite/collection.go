package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/pockettcg/tracker/internal/storage"
)

// CollectCard records that a user owns a card. Collecting an already owned
// card is a no-op.
func (s *Store) CollectCard(ctx context.Context, userID, cardID int64) error {
	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT OR IGNORE INTO user_cards (user_id, card_id, quantity) VALUES (?, ?, 1)`,
		userID,
		cardID,
	)
	if err != nil {
		return fmt.Errorf("collect card: %w", err)
	}
	return nil
}

// UncollectCard removes a card from a user's collection. Removing a card
// that was never collected is a no-op.
func (s *Store) UncollectCard(ctx context.Context, userID, cardID int64) error {
	_, err := s.sqlDB.ExecContext(
		ctx,
		`DELETE FROM user_cards WHERE user_id = ? AND card_id = ?`,
		userID,
		cardID,
	)
	if err != nil {
		return fmt.Errorf("uncollect card: %w", err)
	}
	return nil
}

// OwnedCardIDs returns the ids of every card the user owns.
func (s *Store) OwnedCardIDs(ctx context.Context, userID int64) (map[int64]bool, error) {
	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT card_id FROM user_cards WHERE user_id = ?`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list owned cards: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	owned := make(map[int64]bool)
	for rows.Next() {
		var cardID int64
		if err := rows.Scan(&cardID); err != nil {
			return nil, fmt.Errorf("scan owned card: %w", err)
		}
		owned[cardID] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate owned cards: %w", err)
	}
	return owned, nil
}

// OwnedCardIDsBySet returns card id to quantity for one user and set.
func (s *Store) OwnedCardIDsBySet(ctx context.Context, userID, setID int64) (map[int64]int, error) {
	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT uc.card_id, uc.quantity
		 FROM user_cards uc
		 JOIN cards c ON c.id = uc.card_id
		 WHERE uc.user_id = ? AND c.set_id = ?`,
		userID,
		setID,
	)
	if err != nil {
		return nil, fmt.Errorf("list owned set cards: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	quantities := make(map[int64]int)
	for rows.Next() {
		var cardID int64
		var quantity int
		if err := rows.Scan(&cardID, &quantity); err != nil {
			return nil, fmt.Errorf("scan owned set card: %w", err)
		}
		quantities[cardID] = quantity
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate owned set cards: %w", err)
	}
	return quantities, nil
}

// CardCountsBySet returns the total card count of every set.
func (s *Store) CardCountsBySet(ctx context.Context) ([]storage.SetCount, error) {
	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT set_id, COUNT(*) FROM cards GROUP BY set_id`,
	)
	if err != nil {
		return nil, fmt.Errorf("count cards by set: %w", err)
	}
	return collectSetCounts(rows)
}

// CollectedCountsBySet returns the user's owned card count per set.
func (s *Store) CollectedCountsBySet(ctx context.Context, userID int64) ([]storage.SetCount, error) {
	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT c.set_id, COUNT(*)
		 FROM user_cards uc
		 JOIN cards c ON c.id = uc.card_id
		 WHERE uc.user_id = ?
		 GROUP BY c.set_id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("count collected cards by set: %w", err)
	}
	return collectSetCounts(rows)
}

func collectSetCounts(rows *sql.Rows) ([]storage.SetCount, error) {
	defer func() {
		_ = rows.Close()
	}()
	counts := make([]storage.SetCount, 0)
	for rows.Next() {
		var count storage.SetCount
		if err := rows.Scan(&count.SetID, &count.Count); err != nil {
			return nil, fmt.Errorf("scan set count: %w", err)
		}
		counts = append(counts, count)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate set counts: %w", err)
	}
	return counts, nil
}

// CardRarityCounts returns the per-set card count of every rarity.
func (s *Store) CardRarityCounts(ctx context.Context) ([]storage.RarityCount, error) {
	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT set_id, rarity, COUNT(*) FROM cards GROUP BY set_id, rarity`,
	)
	if err != nil {
		return nil, fmt.Errorf("count cards by rarity: %w", err)
	}
	return collectRarityCounts(rows)
}

// CollectedRarityCounts returns the user's per-set owned count of every rarity.
func (s *Store) CollectedRarityCounts(ctx context.Context, userID int64) ([]storage.RarityCount, error) {
	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT c.set_id, c.rarity, COUNT(*)
		 FROM user_cards uc
		 JOIN cards c ON c.id = uc.card_id
		 WHERE uc.user_id = ?
		 GROUP BY c.set_id, c.rarity`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("count collected cards by rarity: %w", err)
	}
	return collectRarityCounts(rows)
}

func collectRarityCounts(rows *sql.Rows) ([]storage.RarityCount, error) {
	defer func() {
		_ = rows.Close()
	}()
	counts := make([]storage.RarityCount, 0)
	for rows.Next() {
		var count storage.RarityCount
		if err := rows.Scan(&count.SetID, &count.Rarity, &count.Count); err != nil {
			return nil, fmt.Errorf("scan rarity count: %w", err)
		}
		counts = append(counts, count)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rarity counts: %w", err)
	}
	return counts, nil
}

// RarityPoolsForPack returns, per rarity, how many cards a pack contains and
// how many of them the user owns.
func (s *Store) RarityPoolsForPack(ctx context.Context, packID, userID int64) ([]storage.RarityPoolRow, error) {
	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT c.rarity,
		        COUNT(*),
		        COALESCE(SUM(CASE WHEN uc.user_id IS NOT NULL THEN 1 ELSE 0 END), 0)
		 FROM card_packs cp
		 JOIN cards c ON c.id = cp.card_id
		 LEFT JOIN user_cards uc ON uc.card_id = c.id AND uc.user_id = ?
		 WHERE cp.pack_id = ?
		 GROUP BY c.rarity`,
		userID,
		packID,
	)
	if err != nil {
		return nil, fmt.Errorf("list pack rarity pools: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	pools := make([]storage.RarityPoolRow, 0)
	for rows.Next() {
		var pool storage.RarityPoolRow
		if err := rows.Scan(&pool.Rarity, &pool.Total, &pool.Owned); err != nil {
			return nil, fmt.Errorf("scan pack rarity pool: %w", err)
		}
		pools = append(pools, pool)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pack rarity pools: %w", err)
	}
	return pools, nil
}

// RarityCountsForSet returns rarity name to card count for one set.
func (s *Store) RarityCountsForSet(ctx context.Context, setID int64) (map[string]int, error) {
	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT rarity, COUNT(*) FROM cards WHERE set_id = ? GROUP BY rarity`,
		setID,
	)
	if err != nil {
		return nil, fmt.Errorf("count set rarities: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	counts := make(map[string]int)
	for rows.Next() {
		var rarity string
		var count int
		if err := rows.Scan(&rarity, &count); err != nil {
			return nil, fmt.Errorf("scan set rarity count: %w", err)
		}
		counts[rarity] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate set rarity counts: %w", err)
	}
	return counts, nil
}

// SearchCards finds cards whose English or localized name contains the query,
// newest set first. The localized name column reflects languageCode when a
// translation exists.
func (s *Store) SearchCards(ctx context.Context, query, languageCode string, limit int) ([]storage.CardSearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []storage.CardSearchResult{}, nil
	}
	if limit < 1 {
		limit = 50
	}
	pattern := "%" + query + "%"
	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT c.id, c.set_id, c.number, c.name, c.rarity,
		        COALESCE(nt.localized_name, c.name),
		        s.code, s.name
		 FROM cards c
		 JOIN sets s ON s.id = c.set_id
		 LEFT JOIN name_translations nt
		   ON nt.entity = 'card' AND nt.entity_id = c.id AND nt.language_code = ?
		 WHERE c.name LIKE ? OR nt.localized_name LIKE ?
		 ORDER BY s.release_date DESC, c.number
		 LIMIT ?`,
		languageCode,
		pattern,
		pattern,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("search cards: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	results := make([]storage.CardSearchResult, 0)
	for rows.Next() {
		var result storage.CardSearchResult
		if err := rows.Scan(
			&result.Card.ID,
			&result.Card.SetID,
			&result.Card.Number,
			&result.Card.Name,
			&result.Card.Rarity,
			&result.LocalizedName,
			&result.SetCode,
			&result.SetName,
		); err != nil {
			return nil, fmt.Errorf("scan card search result: %w", err)
		}
		result.SetID = result.Card.SetID
		results = append(results, result)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate card search results: %w", err)
	}
	return results, nil
}
