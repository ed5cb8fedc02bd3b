package packs

import (
	"slices"
	"strings"

	"github.com/ramonehamilton/stccg-pack-opener/internal/catalog"
)

// Pools partitions a set's cards by rarity. Pools are rebuilt for every pack;
// they hold pointers into the catalog and never copy cards.
type Pools struct {
	Common   []*catalog.Card
	Uncommon []*catalog.Card
	Rare     []*catalog.Card
	RarePlus []*catalog.Card
	Ultra    []*catalog.Card
	Tribble  []*catalog.Card
	Foil     []*catalog.Card
	Promo    []*catalog.Card

	// HasStarters is set when starter-labeled cards were routed into another pool.
	HasStarters bool
}

// PoolRules carries the set-specific routing of starter cards.
type PoolRules struct {
	// TribbleStarterSet splits its starters into tribble and non-tribble pools.
	TribbleStarterSet string

	// StarterUncommonSets route starters to the uncommon pool; all other sets
	// route them to the rare pool.
	StarterUncommonSets []string
}

// DefaultPoolRules returns the routing used by the shipped catalog.
func DefaultPoolRules() PoolRules {
	return PoolRules{
		TribbleStarterSet:   "TSD",
		StarterUncommonSets: []string{"DS9", "VOY"},
	}
}

// BuildPools partitions cards into rarity pools for setCode.
// No fallback promotion happens here; see Pools.withFallbacks.
func BuildPools(cards []*catalog.Card, setCode string, rules PoolRules) Pools {
	var p Pools
	for _, c := range cards {
		r := normalizeRarity(c.Rarity)

		if _, virtual := virtualCategory(r); !virtual &&
			setCode == rules.TribbleStarterSet && strings.Contains(r, "starter") {
			if c.HasTribble {
				p.Tribble = append(p.Tribble, c)
			} else {
				p.Common = append(p.Common, c)
			}
			p.HasStarters = true
			continue
		}

		switch Classify(c.Rarity) {
		case CategoryUltra:
			p.Ultra = append(p.Ultra, c)
		case CategoryRarePlus:
			p.RarePlus = append(p.RarePlus, c)
		case CategoryRare:
			p.Rare = append(p.Rare, c)
		case CategoryUncommon:
			p.Uncommon = append(p.Uncommon, c)
		case CategoryStarter:
			if slices.Contains(rules.StarterUncommonSets, setCode) {
				p.Uncommon = append(p.Uncommon, c)
			} else {
				p.Rare = append(p.Rare, c)
			}
			p.HasStarters = true
		case CategoryFoil:
			p.Foil = append(p.Foil, c)
		case CategoryPromo:
			p.Promo = append(p.Promo, c)
		default:
			p.Common = append(p.Common, c)
		}
	}
	return p
}

// withFallbacks promotes cards between pools so every slot can be filled in
// sparse sets: promos stand in for missing commons, commons for missing
// uncommons, and uncommons+commons for a missing chase-rarity tier.
func (p Pools) withFallbacks() Pools {
	if len(p.Common) == 0 {
		p.Common = slices.Clone(p.Promo)
	}
	if len(p.Uncommon) == 0 {
		p.Uncommon = slices.Clone(p.Common)
	}
	if len(p.Ultra)+len(p.RarePlus)+len(p.Rare) == 0 {
		p.Rare = concat(p.Uncommon, p.Common)
	}
	return p
}

// sizes returns pool sizes for debug logging.
func (p Pools) sizes() []any {
	return []any{
		"common", len(p.Common),
		"uncommon", len(p.Uncommon),
		"rare", len(p.Rare),
		"rarePlus", len(p.RarePlus),
		"ultra", len(p.Ultra),
		"tribble", len(p.Tribble),
		"foil", len(p.Foil),
		"promo", len(p.Promo),
	}
}

func concat(pools ...[]*catalog.Card) []*catalog.Card {
	n := 0
	for _, p := range pools {
		n += len(p)
	}
	out := make([]*catalog.Card, 0, n)
	for _, p := range pools {
		out = append(out, p...)
	}
	return out
}
