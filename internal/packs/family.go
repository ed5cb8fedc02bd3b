package packs

import (
	"log/slog"
	"slices"
	"strings"

	"github.com/ramonehamilton/stccg-pack-opener/internal/catalog"
)

// ComposerConfig configures the pack composer.
type ComposerConfig struct {
	Pools     PoolRules
	Collation CollationTable
	Odds      OddsTable

	// Cross-set promo product: commons come from PhysicalSets (or the
	// contributor sets when empty), promos from the contributors' promo pool.
	CrossSetPromoCode string
	CrossSetPromoSets []string
	PhysicalSets      []string

	// Virtual promo product: commons come from VirtualSets minus VirtualPromoSets
	// (every active set when VirtualSets is empty).
	VirtualPromoCode string
	VirtualPromoSets []string

	// VirtualSets are opened as 11-card virtual packs.
	VirtualSets []string

	// FoilSlotSets may replace the chase slot with a foil and skip the
	// common replacement pass.
	FoilSlotSets []string

	// Random defaults to DefaultRandomSource.
	Random RandomSource

	// Tracker is shared when set; otherwise the composer creates its own.
	Tracker *CollationTracker

	Logger *slog.Logger
}

// DefaultComposerConfig returns the configuration for the shipped catalog.
func DefaultComposerConfig() ComposerConfig {
	combined := catalog.DefaultCombineRules()
	return ComposerConfig{
		Pools:             DefaultPoolRules(),
		Collation:         DefaultCollationTable(),
		Odds:              DefaultOddsTable(),
		CrossSetPromoCode: combined.CrossSetPromoCode,
		CrossSetPromoSets: combined.CrossSetPromoSets,
		VirtualPromoCode:  combined.VirtualPromoCode,
		VirtualPromoSets:  combined.VirtualPromoSets,
		FoilSlotSets:      []string{"BOG"},
	}
}

// ClassifyFamily decides once which composition rules a set uses.
func (cfg ComposerConfig) ClassifyFamily(s *catalog.Set) catalog.Family {
	switch s.Code {
	case cfg.CrossSetPromoCode:
		return catalog.FamilyCrossSetPromo
	case cfg.VirtualPromoCode:
		return catalog.FamilyVirtualPromo
	case cfg.Pools.TribbleStarterSet:
		return catalog.FamilyTribbleStarter
	}

	raw := BuildPools(s.Cards, s.Code, cfg.Pools)
	if len(raw.Promo) > 0 && len(raw.Common) == 0 {
		return catalog.FamilyPromoOnly
	}

	if raw.HasStarters {
		p := raw.withFallbacks()
		if len(p.Common) == 0 && len(p.Uncommon) == 0 && len(p.Rare) > 0 {
			return catalog.FamilyStarterPure
		}
		return catalog.FamilyStarterMixed
	}

	if cfg.isVirtual(s) {
		return catalog.FamilyVirtual
	}
	return catalog.FamilyStandard
}

// isVirtual matches the set code or its metadata short code against VirtualSets.
func (cfg ComposerConfig) isVirtual(s *catalog.Set) bool {
	short := strings.ToUpper(s.ShortCode())
	code := strings.ToUpper(s.Code)
	return slices.ContainsFunc(cfg.VirtualSets, func(v string) bool {
		v = strings.ToUpper(strings.TrimSpace(v))
		return v == short || v == code
	})
}

// hasFoilSlot reports whether the set's chase slot may become a foil.
func (cfg ComposerConfig) hasFoilSlot(setCode string) bool {
	return slices.Contains(cfg.FoilSlotSets, setCode)
}
