package catalog

// CombineRules configures the synthetic sets assembled at registry build time.
type CombineRules struct {
	// Physical promo sets merged into one cross-set promo product.
	CrossSetPromoCode string
	CrossSetPromoName string
	CrossSetPromoSets []string

	// Virtual promo sets merged into one virtual promo product.
	VirtualPromoCode string
	VirtualPromoName string
	VirtualPromoSets []string
}

// DefaultCombineRules returns the combined products shipped with the catalog.
func DefaultCombineRules() CombineRules {
	return CombineRules{
		CrossSetPromoCode: "WNOHGB",
		CrossSetPromoName: "Where No One Has Gone Before",
		CrossSetPromoSets: []string{"AGT", "ARM", "ATP", "EFC", "EPR", "ENT", "FAJ", "FAN", "ITG", "OTD", "SAN", "STD"},
		VirtualPromoCode:  "VPROMO",
		VirtualPromoName:  "Virtual Promos",
		VirtualPromoSets:  []string{"RIF", "WPE", "WPH", "TAC", "T50", "PWP", "COA", "GIF", "EQU", "WHO", "TNE", "PAR", "SOL", "LFS", "TWI", "DRP"},
	}
}

// combine merges the contributor sets into a new synthetic set and removes the
// contributors from the registry. Contributors missing from the catalog are skipped;
// the synthetic set is created even if none of them exist.
func combine(sets map[string]*Set, order *[]string, code, name string, contributors []string) {
	if code == "" {
		return
	}

	combined := &Set{
		Code:         code,
		Name:         name,
		Synthetic:    true,
		Contributors: append([]string(nil), contributors...),
	}
	for _, c := range contributors {
		if s, ok := sets[c]; ok {
			combined.Cards = append(combined.Cards, s.Cards...)
		}
	}

	for _, c := range contributors {
		delete(sets, c)
	}
	if _, exists := sets[code]; !exists {
		*order = append(*order, code)
	}
	sets[code] = combined

	kept := (*order)[:0]
	for _, c := range *order {
		if _, ok := sets[c]; ok {
			kept = append(kept, c)
		}
	}
	*order = kept
}
