// Package domain holds the card catalog and collection entities.
package domain

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/pockettcg/tracker/internal/platform/errors"
)

// MaxSlots is the largest number of card slots any pack type can have.
// Shiny packs draw a sixth card, so probability rows carry six slots even
// when the pack type uses fewer.
const MaxSlots = 6

// BaseRarities are the rarities that make up the regular card pool of a set.
var BaseRarities = map[string]bool{
	"common":      true,
	"uncommon":    true,
	"rare":        true,
	"double_rare": true,
}

// Generation groups pack types and rarity probabilities that share one
// distribution scheme, e.g. "G1".
type Generation struct {
	Name        string
	DisplayName string
	Description string
}

// Validate checks generation fields.
func (g Generation) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return apperrors.New(apperrors.CodeSetNameEmpty, "generation name is required")
	}
	return nil
}

// GodPackEligibleRarities returns rarities eligible for god packs in this
// generation. G2 and G3 include shinies.
func (g Generation) GodPackEligibleRarities() []string {
	rarities := []string{
		"illustration_rare",
		"special_art",
		"immersive_rare",
		"crown_rare",
	}
	if g.Name == "G2" || g.Name == "G3" {
		rarities = append(rarities, "shiny_rare", "double_shiny_rare")
	}
	return rarities
}

// PackType describes one booster variant within a generation.
type PackType struct {
	ID                    int64
	Generation            string
	Name                  string
	DisplayName           string
	SlotCount             int
	OccurrenceProbability float64
	Description           string
}

// IsGodPack reports whether this pack type is a god pack.
func (p PackType) IsGodPack() bool {
	return strings.Contains(strings.ToLower(p.Name), "god")
}

// Validate checks pack type fields.
func (p PackType) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return apperrors.New(apperrors.CodePackNameEmpty, "pack type name is required")
	}
	if p.SlotCount < 1 || p.SlotCount > MaxSlots {
		return apperrors.WithMetadata(apperrors.CodePackTypeSlotCount,
			fmt.Sprintf("slot count %d outside 1..%d", p.SlotCount, MaxSlots),
			map[string]string{"slot_count": fmt.Sprintf("%d", p.SlotCount)})
	}
	if p.OccurrenceProbability < 0 || p.OccurrenceProbability > 1 {
		return apperrors.New(apperrors.CodeProbabilityRange, "occurrence probability outside [0,1]")
	}
	return nil
}

// Set is a released collection of cards.
type Set struct {
	ID             int64
	Code           string
	Name           string
	ReleaseDate    time.Time
	AvailableUntil *time.Time
	Generation     string
}

// Validate checks set fields.
func (s Set) Validate() error {
	if strings.TrimSpace(s.Code) == "" {
		return apperrors.New(apperrors.CodeSetCodeEmpty, "set code is required")
	}
	if strings.TrimSpace(s.Name) == "" {
		return apperrors.New(apperrors.CodeSetNameEmpty, "set name is required")
	}
	return nil
}

// AvailableOn reports whether packs of this set can still be opened on day.
func (s Set) AvailableOn(day time.Time) bool {
	if s.AvailableUntil == nil {
		return true
	}
	return !day.After(*s.AvailableUntil)
}

// Rarity classifies cards and drives sort order and progress grouping.
type Rarity struct {
	Name        string
	DisplayName string
	Order       int
	IconName    string
	RepeatCount int
}

// Validate checks rarity fields.
func (r Rarity) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return apperrors.New(apperrors.CodeRarityNameEmpty, "rarity name is required")
	}
	if r.RepeatCount < 1 {
		return apperrors.New(apperrors.CodeProbabilityRange, "rarity repeat count must be >= 1")
	}
	return nil
}

// RarityProbability holds the per-slot draw probabilities for one rarity
// within a (generation, pack type) pair.
type RarityProbability struct {
	ID         int64
	Generation string
	PackTypeID int64
	Rarity     string
	Slots      [MaxSlots]float64
}

// Validate checks that every slot probability is within [0,1].
func (rp RarityProbability) Validate() error {
	if strings.TrimSpace(rp.Rarity) == "" {
		return apperrors.New(apperrors.CodeRarityNameEmpty, "probability rarity is required")
	}
	for i, p := range rp.Slots {
		if p < 0 || p > 1 {
			return apperrors.WithMetadata(apperrors.CodeProbabilityRange,
				fmt.Sprintf("slot %d probability %g outside [0,1]", i+1, p),
				map[string]string{"slot": fmt.Sprintf("%d", i+1)})
		}
	}
	return nil
}

// Pack is a booster within a set. Cards link to packs many-to-many.
type Pack struct {
	ID         int64
	SetID      int64
	Name       string
	Generation string
}

// Validate checks pack fields.
func (p Pack) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return apperrors.New(apperrors.CodePackNameEmpty, "pack name is required")
	}
	return nil
}

// Card is a single collectible card within a set.
type Card struct {
	ID     int64
	SetID  int64
	Number string
	Name   string
	Rarity string
}

// Validate checks card fields.
func (c Card) Validate() error {
	if strings.TrimSpace(c.Number) == "" {
		return apperrors.New(apperrors.CodeCardNumberEmpty, "card number is required")
	}
	if strings.TrimSpace(c.Name) == "" {
		return apperrors.New(apperrors.CodeCardNameEmpty, "card name is required")
	}
	if strings.TrimSpace(c.Rarity) == "" {
		return apperrors.New(apperrors.CodeRarityNameEmpty, "card rarity is required")
	}
	return nil
}

// Translation is a localized display name for a set, pack or card.
type Translation struct {
	LanguageCode  string
	LocalizedName string
}

// LocalizedName picks the translation for lang, falling back to fallback.
func LocalizedName(translations []Translation, lang string, fallback string) string {
	lang = strings.TrimSpace(lang)
	for _, tr := range translations {
		if tr.LanguageCode == lang && strings.TrimSpace(tr.LocalizedName) != "" {
			return tr.LocalizedName
		}
	}
	return fallback
}
