package catalog

import (
	"fmt"
	"strconv"
	"strings"
)

// RawRecord is a single row of a catalog file before normalization.
// Spreadsheet exports spell the same column several ways, so every lookup goes
// through the alias lists below and nothing downstream sees the raw keys.
type RawRecord map[string]any

var (
	cardIDKeys      = []string{"ID", "Id", "id"}
	cardNameKeys    = []string{"Name", "name"}
	cardRarityKeys  = []string{"Rarity", "rarity"}
	cardSetCodeKeys = []string{"Set Code", "Set_Code", "SetCode", "set_code"}
	cardSetNameKeys = []string{"Set Name", "Set_Name", "SetName", "set_name"}
	cardImageKeys   = []string{"File Name", "FileName", "file_name", "File", "image_file"}
	cardTribbleKeys = []string{"Has Tribble", "has_tribble"}

	metaShortCodeKeys = []string{"short_code", "shortCode", "short"}
	metaSetCodeKeys   = []string{"set_code", "setCode"}
	metaSetNameKeys   = []string{"set_name", "setName"}
	metaPackArtKeys   = []string{"pack_art", "packArt"}
	metaFoilKeys      = []string{"has_foils", "hasFoils"}
	metaTribbleKeys   = []string{"has_tribbles", "hasTribbles"}
	metaAltImageKeys  = []string{"has_alt_images", "hasAltImages"}
)

// NormalizeCard converts a raw catalog row into a Card.
// Returns false when the row has no set code, since such rows cannot belong to any pack.
func NormalizeCard(raw RawRecord) (*Card, bool) {
	card := &Card{
		ID:         raw.str(cardIDKeys...),
		Name:       raw.str(cardNameKeys...),
		Rarity:     raw.str(cardRarityKeys...),
		SetCode:    raw.str(cardSetCodeKeys...),
		SetName:    raw.str(cardSetNameKeys...),
		ImageFile:  raw.str(cardImageKeys...),
		HasTribble: raw.flag(cardTribbleKeys...),
	}
	if card.SetCode == "" {
		return nil, false
	}
	return card, true
}

// NormalizeSetMeta converts a raw set registry row into SetMeta.
func NormalizeSetMeta(raw RawRecord) SetMeta {
	return SetMeta{
		ShortCode:    raw.str(metaShortCodeKeys...),
		SetCode:      raw.str(metaSetCodeKeys...),
		Name:         raw.str(metaSetNameKeys...),
		PackArt:      raw.str(metaPackArtKeys...),
		HasFoils:     raw.flag(metaFoilKeys...),
		HasTribbles:  raw.flag(metaTribbleKeys...),
		HasAltImages: raw.flag(metaAltImageKeys...),
	}
}

// str returns the first non-empty value under any of the keys, trimmed.
func (r RawRecord) str(keys ...string) string {
	for _, key := range keys {
		v, ok := r[key]
		if !ok || v == nil {
			continue
		}
		var s string
		switch val := v.(type) {
		case string:
			s = val
		case float64:
			s = strconv.FormatFloat(val, 'f', -1, 64)
		case bool:
			s = strconv.FormatBool(val)
		default:
			s = fmt.Sprint(val)
		}
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
	}
	return ""
}

// flag reports whether any of the keys holds a true bool or the string "true".
func (r RawRecord) flag(keys ...string) bool {
	for _, key := range keys {
		switch val := r[key].(type) {
		case bool:
			if val {
				return true
			}
		case string:
			if strings.EqualFold(strings.TrimSpace(val), "true") {
				return true
			}
		}
	}
	return false
}
