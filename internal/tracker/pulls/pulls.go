// Package pulls computes pack-opening odds from rarity slot probabilities.
package pulls

import (
	"fmt"
	"math"
	"sort"

	apperrors "github.com/pockettcg/tracker/internal/platform/errors"
	"github.com/pockettcg/tracker/internal/tracker/domain"
)

// SlotTable maps a rarity name to its per-slot draw probabilities.
type SlotTable map[string][domain.MaxSlots]float64

// RarityPool summarises one rarity within a pack: how many cards exist and
// how many the user already owns.
type RarityPool struct {
	Total int
	Owned int
}

// Ownership maps rarity name to the user's pool within one pack.
type Ownership map[string]RarityPool

// TableFromRows builds a slot table from stored probability rows.
func TableFromRows(rows []domain.RarityProbability) SlotTable {
	table := make(SlotTable, len(rows))
	for _, row := range rows {
		table[row.Rarity] = row.Slots
	}
	return table
}

// ChanceOfNewCard returns the probability that opening one pack yields at
// least one card the user does not own yet, rounded to 4 decimals.
//
// Per slot, the chance of drawing an owned card is the sum over rarities of
// the slot probability times the owned fraction of that rarity's pool. The
// per-slot terms multiply; the result is one minus that product.
func ChanceOfNewCard(table SlotTable, pools Ownership, slotCount int) float64 {
	if slotCount < 1 {
		return 0
	}
	if slotCount > domain.MaxSlots {
		slotCount = domain.MaxSlots
	}
	probNoNew := 1.0
	for slot := 0; slot < slotCount; slot++ {
		slotProbNoNew := 0.0
		for rarity, slots := range table {
			pool := pools[rarity]
			if pool.Total == 0 {
				continue
			}
			slotProbNoNew += slots[slot] * (float64(pool.Owned) / float64(pool.Total))
		}
		probNoNew *= slotProbNoNew
	}
	return Round4(1.0 - probNoNew)
}

// WeightedNewCardChance computes the expected new-card chance across all
// pack types of a generation, weighted by occurrence probability.
func WeightedNewCardChance(packTypes []domain.PackType, tableFor func(domain.PackType) SlotTable, pools Ownership) float64 {
	expected := 0.0
	for _, packType := range packTypes {
		table := tableFor(packType)
		if table == nil {
			continue
		}
		expected += ChanceOfNewCard(table, pools, packType.SlotCount) * packType.OccurrenceProbability
	}
	return Round4(expected)
}

// GodPackTable derives a slot table for a god pack. Stored probabilities do
// not apply: every slot draws from the set's eligible rare pool, with each
// rarity weighted by its card count share.
func GodPackTable(gen domain.Generation, packType domain.PackType, rarityCounts map[string]int) SlotTable {
	if !packType.IsGodPack() {
		return nil
	}
	eligible := gen.GodPackEligibleRarities()
	totalRare := 0
	for _, rarity := range eligible {
		totalRare += rarityCounts[rarity]
	}
	if totalRare == 0 {
		return nil
	}
	slotCount := packType.SlotCount
	if slotCount > domain.MaxSlots {
		slotCount = domain.MaxSlots
	}
	table := make(SlotTable)
	for _, rarity := range eligible {
		count := rarityCounts[rarity]
		if count == 0 {
			continue
		}
		share := float64(count) / float64(totalRare)
		var slots [domain.MaxSlots]float64
		for slot := 0; slot < slotCount; slot++ {
			slots[slot] = share
		}
		table[rarity] = slots
	}
	return table
}

// slotSumTolerance bounds the accepted drift of a slot sum from 1.0.
const slotSumTolerance = 1e-5

// ValidateSlotSums checks that rarity probabilities for one pack type sum to
// 1.0 on every active slot (1..slot count).
func ValidateSlotSums(packType domain.PackType, rows []domain.RarityProbability) error {
	slotCount := packType.SlotCount
	if slotCount > domain.MaxSlots {
		slotCount = domain.MaxSlots
	}
	for slot := 0; slot < slotCount; slot++ {
		total := 0.0
		for _, row := range rows {
			total += row.Slots[slot]
		}
		if math.Abs(total-1.0) > slotSumTolerance {
			return apperrors.WithMetadata(apperrors.CodeProbabilitySlotSums,
				fmt.Sprintf("pack type %s slot %d sums to %.6f", packType.Name, slot+1, total),
				map[string]string{
					"pack_type": packType.Name,
					"slot":      fmt.Sprintf("%d", slot+1),
					"sum":       fmt.Sprintf("%.6f", total),
				})
		}
	}
	return nil
}

// Round4 rounds to four decimal places, the precision odds are reported in.
func Round4(x float64) float64 {
	return math.Round(x*10000) / 10000
}

// SortedRarities returns the table's rarity names in lexical order.
// Deterministic iteration keeps derived output stable for rendering.
func (t SlotTable) SortedRarities() []string {
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
