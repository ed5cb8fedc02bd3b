package packs

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/ramonehamilton/stccg-pack-opener/internal/catalog"
)

// Slot counts per product.
const (
	standardCommons   = 11
	standardUncommons = 3
	virtualCommons    = 8
	virtualUncommons  = 2
	starterPackSize   = 15
	combinedCommons   = 7
	combinedPromos    = 3
	tribbleCommons    = 4
	tribbleTribbles   = 1
)

// Composer opens packs for the sets of a registry.
// GeneratePack is safe for concurrent use; calls on one composer are serialized.
// Use Fork to open packs in parallel against a shared collation tracker.
type Composer struct {
	mu sync.Mutex

	cfg      ComposerConfig
	registry *catalog.Registry
	tracker  *CollationTracker
	sampler  *Sampler
	logger   *slog.Logger

	// globalPromo is every promo-labeled card in the catalog.
	globalPromo []*catalog.Card
}

// NewComposer creates a composer and tags every registry set with its family.
func NewComposer(reg *catalog.Registry, cfg ComposerConfig) *Composer {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	tracker := cfg.Tracker
	if tracker == nil {
		tracker = NewCollationTracker(cfg.Collation)
	}

	c := &Composer{
		cfg:     cfg,
		tracker: tracker,
		sampler: NewSampler(cfg.Random),
		logger:  cfg.Logger,
	}
	c.setRegistry(reg)
	return c
}

// SetRegistry swaps in a reloaded registry. Collation state is kept.
func (c *Composer) SetRegistry(reg *catalog.Registry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setRegistry(reg)
}

func (c *Composer) setRegistry(reg *catalog.Registry) {
	reg.Tag(c.cfg.ClassifyFamily)
	c.registry = reg
	c.globalPromo = nil
	for _, card := range reg.Cards() {
		if strings.Contains(normalizeRarity(card.Rarity), "promo") {
			c.globalPromo = append(c.globalPromo, card)
		}
	}
}

// Fork returns a composer sharing this composer's registry and collation
// tracker but drawing from its own random source.
func (c *Composer) Fork(rng RandomSource) *Composer {
	c.mu.Lock()
	defer c.mu.Unlock()

	return &Composer{
		cfg:         c.cfg,
		registry:    c.registry,
		tracker:     c.tracker,
		sampler:     NewSampler(rng),
		logger:      c.logger,
		globalPromo: c.globalPromo,
	}
}

// Registry returns the registry packs are drawn from.
func (c *Composer) Registry() *catalog.Registry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.registry
}

// Tracker returns the collation tracker.
func (c *Composer) Tracker() *CollationTracker {
	return c.tracker
}

// ResetCollation clears all collation state.
func (c *Composer) ResetCollation() {
	c.tracker.Reset()
}

// GeneratePack opens one pack of setCode and returns its cards ordered commons,
// uncommons, rares, then extras. An unknown set yields an empty pack; sparse
// sets yield short packs. It never fails.
func (c *Composer) GeneratePack(setCode string) []*catalog.Card {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.registry.Set(setCode)
	if !ok {
		c.logger.Warn("Set not found", "set", setCode)
		return nil
	}

	family := s.Family
	if family == catalog.FamilyUnknown {
		family = c.cfg.ClassifyFamily(s)
	}

	raw := BuildPools(s.Cards, setCode, c.cfg.Pools)
	pools := raw.withFallbacks()
	odds := c.cfg.Odds.For(setCode)

	if c.logger.Enabled(context.Background(), slog.LevelDebug) {
		args := []any{"set", setCode, "name", s.Name, "family", family.String(), "totalCards", len(s.Cards)}
		c.logger.Debug("Generating pack", append(args, raw.sizes()...)...)
	}

	var pack []*catalog.Card
	switch family {
	case catalog.FamilyCrossSetPromo:
		pack = c.crossSetPromoPack(s)
	case catalog.FamilyVirtualPromo:
		pack = c.virtualPromoPack(s)
	case catalog.FamilyTribbleStarter:
		pack = c.tribblePack(pools)
	case catalog.FamilyPromoOnly:
		pack = c.promoOnlyPack(setCode, raw)
	case catalog.FamilyStarterPure:
		pack = c.sampler.Fill(pools.Rare, starterPackSize)
		c.replaceCommon(setCode, pack, pools, odds)
	case catalog.FamilyStarterMixed:
		pack = c.starterMixedPack(setCode, pools, odds)
		c.replaceCommon(setCode, pack, pools, odds)
	case catalog.FamilyVirtual:
		pack = c.collatedPack(setCode, pools, virtualCommons, virtualUncommons)
		if card := c.chaseSlot(setCode, pools, odds, odds.VirtualScale); card != nil {
			pack = append(pack, card)
		}
		c.replaceCommon(setCode, pack, pools, odds)
	default:
		pack = c.standardPack(setCode, pools, odds)
		c.replaceCommon(setCode, pack, pools, odds)
	}

	return OrderPack(pack)
}

// crossSetPromoPack draws commons from the physical sets and promos from the
// contributor promo pool, falling back to every promo in the catalog.
func (c *Composer) crossSetPromoPack(s *catalog.Set) []*catalog.Card {
	codes := c.cfg.PhysicalSets
	if len(codes) == 0 {
		codes = c.cfg.CrossSetPromoSets
	}
	sub := BuildPools(c.registry.CardsInSets(codes), s.Code, c.cfg.Pools)

	promoPool := sub.Promo
	if len(promoPool) == 0 {
		promoPool = c.globalPromo
	}

	pack := c.sampler.Fill(sub.Common, combinedCommons)
	return append(pack, c.sampler.Fill(promoPool, combinedPromos)...)
}

// virtualPromoPack draws commons from the non-promo virtual sets and promos
// from the virtual promo cards.
func (c *Composer) virtualPromoPack(s *catalog.Set) []*catalog.Card {
	codes := c.cfg.VirtualSets
	if len(codes) == 0 {
		codes = c.registry.Codes()
	}
	nonPromo := slices.DeleteFunc(slices.Clone(codes), func(code string) bool {
		return slices.Contains(c.cfg.VirtualPromoSets, code)
	})
	sub := BuildPools(c.registry.CardsInSets(nonPromo), s.Code, c.cfg.Pools)

	var promoPool []*catalog.Card
	for _, card := range s.Cards {
		r := normalizeRarity(card.Rarity)
		if strings.Contains(r, "pv") || strings.Contains(r, "promo") {
			promoPool = append(promoPool, card)
		}
	}
	if len(promoPool) == 0 {
		promoPool = c.globalPromo
	}

	pack := c.sampler.Fill(sub.Common, combinedCommons)
	return append(pack, c.sampler.Fill(promoPool, combinedPromos)...)
}

// tribblePack is four non-tribble starters and one tribble, without collation.
func (c *Composer) tribblePack(p Pools) []*catalog.Card {
	pack := c.sampler.Fill(p.Common, tribbleCommons)
	return append(pack, c.sampler.Fill(p.Tribble, tribbleTribbles)...)
}

// promoOnlyPack fills the common and uncommon slots from the whole catalog,
// since the set has none of its own, and the last slot from the set's promos.
func (c *Composer) promoOnlyPack(setCode string, raw Pools) []*catalog.Card {
	global := BuildPools(c.registry.Cards(), setCode, c.cfg.Pools)

	pack := c.sampler.Fill(global.Common, standardCommons)
	pack = append(pack, c.sampler.Fill(global.Uncommon, standardUncommons)...)

	last := c.sampler.WithoutReplacement(raw.Promo, 1)
	if len(last) == 0 {
		last = c.sampler.WithoutReplacement(global.Rare, 1)
	}
	return append(pack, last...)
}

// starterMixedPack is 11 commons, 3 uncommons and a chase slot. Starter sets
// without commons or uncommons borrow them from the whole catalog.
func (c *Composer) starterMixedPack(setCode string, p Pools, odds Odds) []*catalog.Card {
	var global *Pools
	globalPools := func() Pools {
		if global == nil {
			g := BuildPools(c.registry.Cards(), setCode, c.cfg.Pools)
			global = &g
		}
		return *global
	}

	commonPool := p.Common
	if len(commonPool) == 0 {
		commonPool = globalPools().Common
	}
	filteredCommons := c.tracker.FilterRecent(setCode, commonPool, CategoryCommon)
	pack := c.drawCollated(setCode, filteredCommons, commonPool, CategoryCommon, standardCommons)

	uncommonPool := p.Uncommon
	if len(uncommonPool) == 0 {
		uncommonPool = globalPools().Uncommon
		if len(uncommonPool) == 0 {
			uncommonPool = filteredCommons
		}
	}
	pack = append(pack, c.collatedSlot(setCode, uncommonPool, CategoryUncommon, standardUncommons)...)

	if card := c.chaseSlot(setCode, p, odds, 1); card != nil {
		pack = append(pack, card)
	}
	return pack
}

// standardPack is 11 commons, 3 uncommons and a chase slot, which foil-slot
// sets may turn into a foil.
func (c *Composer) standardPack(setCode string, p Pools, odds Odds) []*catalog.Card {
	pack := c.collatedPack(setCode, p, standardCommons, standardUncommons)

	var card *catalog.Card
	if c.cfg.hasFoilSlot(setCode) && len(p.Foil) > 0 && c.sampler.Float64() < odds.FoilSlotRate {
		card = c.sampler.Pick(p.Foil)
		c.tracker.Record(setCode, CategoryRare, card.ID)
	} else {
		card = c.chaseSlot(setCode, p, odds, 1)
	}
	if card != nil {
		pack = append(pack, card)
	}
	return pack
}

// collatedPack draws the common and uncommon slots with collation.
func (c *Composer) collatedPack(setCode string, p Pools, commons, uncommons int) []*catalog.Card {
	pack := c.collatedSlot(setCode, p.Common, CategoryCommon, commons)
	return append(pack, c.collatedSlot(setCode, p.Uncommon, CategoryUncommon, uncommons)...)
}

// collatedSlot filters pool against recent pulls, draws n cards and records them.
func (c *Composer) collatedSlot(setCode string, pool []*catalog.Card, category Category, n int) []*catalog.Card {
	filtered := c.tracker.FilterRecent(setCode, pool, category)
	return c.drawCollated(setCode, filtered, pool, category, n)
}

// drawCollated draws n distinct cards from filtered, then tops up with distinct
// cards from the full pool, and only repeats cards when the pool itself is
// smaller than n. Every drawn card is recorded.
func (c *Composer) drawCollated(setCode string, filtered, pool []*catalog.Card, category Category, n int) []*catalog.Card {
	drawn := c.sampler.WithoutReplacement(filtered, n)
	if len(drawn) < n {
		rest := slices.DeleteFunc(slices.Clone(pool), func(card *catalog.Card) bool {
			return slices.Contains(drawn, card)
		})
		drawn = append(drawn, c.sampler.WithoutReplacement(rest, n-len(drawn))...)
	}
	if len(drawn) < n {
		drawn = append(drawn, c.sampler.WithReplacement(pool, n-len(drawn))...)
	}

	for _, card := range drawn {
		c.tracker.Record(setCode, category, card.ID)
	}
	return drawn
}

// replaceCommon occasionally overwrites one common or starter slot with a foil
// or rare plus. Foil-slot sets are skipped.
func (c *Composer) replaceCommon(setCode string, pack []*catalog.Card, p Pools, odds Odds) {
	if c.cfg.hasFoilSlot(setCode) {
		return
	}

	pool := concat(p.Foil, p.RarePlus)
	if len(pool) == 0 || c.sampler.Float64() >= odds.ReplacementRate {
		return
	}

	var slots []int
	for i, card := range pack {
		if Classify(card.Rarity) == CategoryCommon || strings.Contains(normalizeRarity(card.Rarity), "starter") {
			slots = append(slots, i)
		}
	}
	if len(slots) == 0 {
		return
	}

	at := slots[c.sampler.Index(len(slots))]
	pack[at] = c.sampler.Pick(pool)
}
