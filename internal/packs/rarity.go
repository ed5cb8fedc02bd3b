// Package packs generates booster packs from the card catalog: rarity pools,
// per-product composition rules, chase-rarity odds and print-sheet collation.
package packs

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Category is the normalized rarity bucket used for pools and collation keys.
type Category string

const (
	CategoryUnknown  Category = ""
	CategoryCommon   Category = "common"
	CategoryUncommon Category = "uncommon"
	CategoryRare     Category = "rare"
	CategoryRarePlus Category = "rare-plus"
	CategoryUltra    Category = "ultra"
	CategoryStarter  Category = "starter"
	CategoryFoil     Category = "foil"
	CategoryPromo    Category = "promo"
)

// AllCategories returns the categories in pack display order.
func AllCategories() []Category {
	return []Category{
		CategoryCommon,
		CategoryUncommon,
		CategoryRare,
		CategoryRarePlus,
		CategoryUltra,
		CategoryStarter,
		CategoryFoil,
		CategoryPromo,
	}
}

var titleCaser = cases.Title(language.English)

// DisplayName returns a human-readable label for the category.
func (c Category) DisplayName() string {
	if c == CategoryUnknown {
		return "Unknown"
	}
	return titleCaser.String(strings.ReplaceAll(string(c), "-", " "))
}

// virtualCodePattern matches rarity codes printed on virtual cards.
var virtualCodePattern = regexp.MustCompile(`^(CV|UV|RV|URV|R\+V|UR)$`)

// normalizeRarity lower-cases and trims a rarity label.
func normalizeRarity(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// virtualCategory handles the virtual-rarity shorthands, which must be checked
// before the keyword rules ("uv" would otherwise never match anything).
func virtualCategory(r string) (Category, bool) {
	switch {
	case strings.Contains(r, "urv"), strings.Contains(r, "ultra"), strings.Contains(r, "u.r.v"):
		return CategoryUltra, true
	case strings.Contains(r, "r+v"), strings.Contains(r, "rare plus"), strings.Contains(r, "rare+"):
		return CategoryRarePlus, true
	case r == "rv", r == "r/v", r == "r v", r == "rarev":
		return CategoryRare, true
	case r == "uv", r == "u/v", r == "u v", strings.Contains(r, "uncommonv"):
		return CategoryUncommon, true
	case r == "cv", r == "c/v", r == "c v", strings.Contains(r, "commonv"):
		return CategoryCommon, true
	}
	return CategoryUnknown, false
}

// Classify maps a raw rarity label to its category. Empty labels yield
// CategoryUnknown; any other unrecognized label is treated as common so that
// packs can always be assembled.
func Classify(raw string) Category {
	r := normalizeRarity(raw)
	if r == "" {
		return CategoryUnknown
	}
	if c, ok := virtualCategory(r); ok {
		return c
	}

	switch {
	case r == "rare":
		return CategoryRare
	case strings.Contains(r, "uncommon"):
		return CategoryUncommon
	case strings.Contains(r, "common"):
		return CategoryCommon
	case strings.Contains(r, "starter"):
		return CategoryStarter
	case strings.Contains(r, "foil"):
		return CategoryFoil
	case strings.Contains(r, "promo"):
		return CategoryPromo
	default:
		return CategoryCommon
	}
}

// RarityCode returns the short display code for a raw rarity label.
func RarityCode(raw string) string {
	up := strings.ToUpper(strings.TrimSpace(raw))
	if up == "" {
		return ""
	}

	if compact := strings.Join(strings.Fields(up), ""); virtualCodePattern.MatchString(compact) {
		return compact
	}

	switch {
	case strings.Contains(up, "URV"), strings.Contains(up, "ULTRA"), strings.Contains(up, "U.R.V"):
		return "UR"
	case strings.Contains(up, "R+V"), strings.Contains(up, "RARE PLUS"), strings.Contains(up, "RARE+"):
		return "R+"
	case strings.Contains(up, "RARE"):
		return "R"
	case strings.Contains(up, "UNCOMMON"):
		return "U"
	case strings.Contains(up, "COMMON"):
		return "C"
	case strings.Contains(up, "PROMO"):
		return "P"
	}

	runes := []rune(up)
	if len(runes) > 3 {
		runes = runes[:3]
	}
	return string(runes)
}
