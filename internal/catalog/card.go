// Package catalog holds the card and set catalog the pack engine draws from.
package catalog

// Card represents a single card record from the catalog.
// Cards are immutable once ingested; pools and packs only hold pointers to them.
type Card struct {
	// Unique card identifier (e.g. "PRE-334")
	ID string `json:"id"`

	// Basic card information
	Name   string `json:"name"`
	Rarity string `json:"rarity"` // free-form label: "Common", "Rare Plus", "UV", "Starter", ...

	// Owning set
	SetCode string `json:"set_code"`
	SetName string `json:"set_name"`

	// Imagery
	ImageFile string `json:"image_file,omitempty"`

	// HasTribble marks tribble cards in the Tribbles starter product.
	HasTribble bool `json:"has_tribble,omitempty"`
}

// SetMeta contains optional per-set metadata from the set registry file.
type SetMeta struct {
	ShortCode    string `json:"short_code"`
	SetCode      string `json:"set_code"`
	Name         string `json:"set_name"`
	PackArt      string `json:"pack_art,omitempty"`
	HasFoils     bool   `json:"has_foils"`
	HasTribbles  bool   `json:"has_tribbles"`
	HasAltImages bool   `json:"has_alt_images"`
}

// Set is a set in the active registry. Synthetic sets are assembled at startup
// from several catalog sets and replace them in the registry.
type Set struct {
	Code  string
	Name  string
	Cards []*Card
	Meta  SetMeta

	// Synthetic sets record the catalog sets they were merged from.
	Synthetic    bool
	Contributors []string

	// Family is assigned once when the registry is tagged and drives pack composition.
	Family Family
}

// ShortCode returns the metadata short code, falling back to the set code.
func (s *Set) ShortCode() string {
	if s.Meta.ShortCode != "" {
		return s.Meta.ShortCode
	}
	return s.Code
}
