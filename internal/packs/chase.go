package packs

import "github.com/ramonehamilton/stccg-pack-opener/internal/catalog"

// chaseSlot resolves the single high-value slot of a pack. One roll decides the
// tier: ultra below UltraRate, rare plus below UltraRate+RarePlusRate (both
// multiplied by scale), regular rare otherwise. Missing tiers fall back
// rare → rare plus → ultra → uncommon/common. The drawn card is recorded
// under the rare collation window.
func (c *Composer) chaseSlot(setCode string, p Pools, odds Odds, scale float64) *catalog.Card {
	ultra := odds.UltraRate * scale
	rarePlus := odds.RarePlusRate * scale

	var card *catalog.Card
	roll := c.sampler.Float64()
	switch {
	case len(p.Ultra) > 0 && roll < ultra:
		card = c.pickCollated(setCode, p.Ultra)
	case len(p.RarePlus) > 0 && roll < ultra+rarePlus:
		card = c.pickCollated(setCode, p.RarePlus)
	case len(p.Rare) > 0:
		card = c.pickCollated(setCode, p.Rare)
	case len(p.RarePlus) > 0:
		card = c.pickCollated(setCode, p.RarePlus)
	case len(p.Ultra) > 0:
		card = c.pickCollated(setCode, p.Ultra)
	default:
		if fallback := c.sampler.WithoutReplacement(concat(p.Uncommon, p.Common), 1); len(fallback) > 0 {
			card = fallback[0]
		}
	}

	if card != nil {
		c.tracker.Record(setCode, CategoryRare, card.ID)
	}
	return card
}

// pickCollated draws one card from pool after removing recent rare-slot pulls.
func (c *Composer) pickCollated(setCode string, pool []*catalog.Card) *catalog.Card {
	return c.sampler.Pick(c.tracker.FilterRecent(setCode, pool, CategoryRare))
}
