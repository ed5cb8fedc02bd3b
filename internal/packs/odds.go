package packs

import "fmt"

// Odds holds the probability constants for one set. The defaults emulate the
// historical print runs: one ultra rare per 121 packs and one rare plus per 90
// in 15-card packs.
type Odds struct {
	// UltraRate and RarePlusRate are the chase-slot rates for 15-card packs.
	UltraRate    float64
	RarePlusRate float64

	// VirtualScale scales the chase rates for 11-card virtual packs.
	VirtualScale float64

	// ReplacementRate is the chance a common slot is replaced by a foil or rare plus.
	ReplacementRate float64

	// FoilSlotRate is the chance the chase slot becomes a foil in foil-slot sets.
	FoilSlotRate float64
}

// DefaultOdds returns the baseline odds.
func DefaultOdds() Odds {
	return Odds{
		UltraRate:       1.0 / 121,
		RarePlusRate:    1.0 / 90,
		VirtualScale:    11.0 / 15,
		ReplacementRate: 1.0 / 5,
		FoilSlotRate:    0.10,
	}
}

// Validate checks that every probability lies in [0, 1].
func (o Odds) Validate() error {
	for name, p := range map[string]float64{
		"ultra_rate":       o.UltraRate,
		"rare_plus_rate":   o.RarePlusRate,
		"virtual_scale":    o.VirtualScale,
		"replacement_rate": o.ReplacementRate,
		"foil_slot_rate":   o.FoilSlotRate,
	} {
		if p < 0 || p > 1 {
			return fmt.Errorf("invalid %s %v; must be 0..1", name, p)
		}
	}
	if o.UltraRate+o.RarePlusRate > 1 {
		return fmt.Errorf("ultra_rate + rare_plus_rate must not exceed 1, got %v", o.UltraRate+o.RarePlusRate)
	}
	return nil
}

// OddsTable resolves odds per set, falling back to Default.
type OddsTable struct {
	Default Odds
	Sets    map[string]Odds
}

// DefaultOddsTable returns a table with DefaultOdds and no overrides.
func DefaultOddsTable() OddsTable {
	return OddsTable{Default: DefaultOdds()}
}

// For returns the odds for setCode.
func (t OddsTable) For(setCode string) Odds {
	if o, ok := t.Sets[setCode]; ok {
		return o
	}
	return t.Default
}
