package tcgdex

import apperrors "github.com/pockettcg/tracker/internal/platform/errors"

// rarityNames maps TCGdex rarity labels to catalog rarity names.
var rarityNames = map[string]string{
	"One Diamond":   "common",
	"Two Diamond":   "uncommon",
	"Three Diamond": "rare",
	"Four Diamond":  "double_rare",
	"One Star":      "illustration_rare",
	"Two Star":      "special_art",
	"Three Star":    "immersive_rare",
	"One Shiny":     "shiny_rare",
	"Two Shiny":     "double_shiny_rare",
	"Crown":         "crown_rare",
}

// MapRarity translates a TCGdex rarity label to a catalog rarity name.
func MapRarity(label string) (string, error) {
	name, ok := rarityNames[label]
	if !ok {
		return "", apperrors.WithMetadata(apperrors.CodeSyncRarityUnknown,
			"unknown rarity label "+label,
			map[string]string{"rarity": label})
	}
	return name, nil
}
