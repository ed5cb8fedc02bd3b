package packs

import "github.com/ramonehamilton/stccg-pack-opener/internal/catalog"

// OrderPack arranges a pack for presentation: commons, uncommons, rares, then
// extras (ultra, rare plus, promo, starter, foil, unlabeled), keeping draw order
// within each group. Ordering an ordered pack returns it unchanged.
func OrderPack(pack []*catalog.Card) []*catalog.Card {
	if len(pack) == 0 {
		return pack
	}

	var commons, uncommons, rares, extras []*catalog.Card
	for _, card := range pack {
		switch Classify(card.Rarity) {
		case CategoryCommon:
			commons = append(commons, card)
		case CategoryUncommon:
			uncommons = append(uncommons, card)
		case CategoryRare:
			rares = append(rares, card)
		default:
			extras = append(extras, card)
		}
	}

	return concat(commons, uncommons, rares, extras)
}
