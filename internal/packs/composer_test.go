package packs

import (
	"slices"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramonehamilton/stccg-pack-opener/internal/catalog"
)

// standardSet is 20 commons, 5 uncommons and 3 rares.
func standardSet(code string) []*catalog.Card {
	return join(
		makeCards(code, "Common", 20),
		makeCards(code, "Uncommon", 5),
		makeCards(code, "Rare", 3),
	)
}

func TestGeneratePack_Standard(t *testing.T) {
	c := newTestComposer(NewRandomSource(1), standardSet("X"))

	for i := range 50 {
		pack := c.GeneratePack("X")
		require.Len(t, pack, 15, "pack %d", i)

		counts := countByCategory(pack)
		assert.Equal(t, 11, counts[CategoryCommon], "pack %d commons", i)
		assert.Equal(t, 3, counts[CategoryUncommon], "pack %d uncommons", i)
		assert.Equal(t, 1, counts[CategoryRare], "pack %d rares", i)

		assert.True(t, distinct(pack[:11]), "pack %d repeats a common: %v", i, idsOf(pack[:11]))
		assert.True(t, distinct(pack[11:14]), "pack %d repeats an uncommon", i)
	}
}

func TestGeneratePack_Virtual(t *testing.T) {
	c := newTestComposer(NewRandomSource(2), standardSet("V"), func(cfg *ComposerConfig) {
		cfg.VirtualSets = []string{"V"}
	})

	pack := c.GeneratePack("V")
	require.Len(t, pack, 11)

	counts := countByCategory(pack)
	assert.Equal(t, 8, counts[CategoryCommon])
	assert.Equal(t, 2, counts[CategoryUncommon])
	assert.Equal(t, 1, counts[CategoryRare])
}

func TestGeneratePack_UnknownSet(t *testing.T) {
	c := newTestComposer(NewRandomSource(3), standardSet("X"))

	assert.Empty(t, c.GeneratePack("NOPE"))
	assert.Zero(t, c.Tracker().Stats().Records)
}

func TestGeneratePack_TribbleStarter(t *testing.T) {
	cards := makeCards("TSD", "Starter", 8)
	for _, card := range cards[6:] {
		card.HasTribble = true
	}
	c := newTestComposer(NewRandomSource(4), cards)

	for range 10 {
		pack := c.GeneratePack("TSD")
		require.Len(t, pack, 5)

		tribbles := 0
		for _, card := range pack {
			if card.HasTribble {
				tribbles++
			}
		}
		assert.Equal(t, 1, tribbles)
		assert.True(t, pack[4].HasTribble, "tribble should be the last card")
	}
	assert.Zero(t, c.Tracker().Stats().Records, "tribble packs are not collated")
}

func TestGeneratePack_PromoOnly(t *testing.T) {
	cards := join(standardSet("X"), makeCards("Y", "Promo", 4))
	c := newTestComposer(NewRandomSource(5), cards)

	pack := c.GeneratePack("Y")
	require.Len(t, pack, 15)

	for _, card := range pack[:14] {
		assert.Equal(t, "X", card.SetCode, "commons and uncommons come from the catalog")
	}
	assert.Equal(t, "Y", pack[14].SetCode)
	assert.Equal(t, CategoryPromo, Classify(pack[14].Rarity))
}

func TestGeneratePack_StarterPure(t *testing.T) {
	c := newTestComposer(NewRandomSource(6), makeCards("2PG", "Starter", 10))

	pack := c.GeneratePack("2PG")
	require.Len(t, pack, 15)
	for _, card := range pack {
		assert.Equal(t, "2PG", card.SetCode)
	}
}

func TestGeneratePack_StarterMixedBorrowsGlobalCommons(t *testing.T) {
	cards := join(
		makeCards("X", "Common", 20),
		makeCards("DS9", "Starter", 5),
		makeCards("DS9", "Rare", 3),
	)
	c := newTestComposer(NewRandomSource(7), cards)

	pack := c.GeneratePack("DS9")
	require.Len(t, pack, 15)

	fromX := 0
	for _, card := range pack {
		if card.SetCode == "X" {
			fromX++
		}
	}
	assert.Equal(t, 11, fromX)

	counts := countByCategory(pack)
	assert.Equal(t, 3, counts[CategoryStarter])
	assert.Equal(t, 1, counts[CategoryRare])
}

func TestGeneratePack_CrossSetPromo(t *testing.T) {
	cards := join(
		makeCards("AGT", "Common", 5),
		makeCards("AGT", "Promo", 2),
		makeCards("ARM", "Common", 4),
		makeCards("ARM", "Promo", 1),
		standardSet("X"),
	)
	rules := catalog.CombineRules{
		CrossSetPromoCode: "WNOHGB",
		CrossSetPromoName: "Where No One Has Gone Before",
		CrossSetPromoSets: []string{"AGT", "ARM"},
	}

	cfg := DefaultComposerConfig()
	cfg.Random = NewRandomSource(8)
	cfg.Logger = discardLogger()
	c := NewComposer(catalog.NewRegistry(cards, nil, rules), cfg)

	s, ok := c.Registry().Set("WNOHGB")
	require.True(t, ok)
	assert.Equal(t, catalog.FamilyCrossSetPromo, s.Family)

	pack := c.GeneratePack("WNOHGB")
	require.Len(t, pack, 10)

	counts := countByCategory(pack)
	assert.Equal(t, 7, counts[CategoryCommon])
	assert.Equal(t, 3, counts[CategoryPromo])
	for _, card := range pack {
		assert.Contains(t, []string{"AGT", "ARM"}, card.SetCode)
	}
}

func TestGeneratePack_VirtualPromo(t *testing.T) {
	cards := join(
		makeCards("V1", "CV", 10),
		makeCards("RIF", "PV", 3),
		makeCards("WPE", "Promo", 2),
	)
	rules := catalog.CombineRules{
		VirtualPromoCode: "VPROMO",
		VirtualPromoName: "Virtual Promos",
		VirtualPromoSets: []string{"RIF", "WPE"},
	}

	cfg := DefaultComposerConfig()
	cfg.Random = NewRandomSource(9)
	cfg.Logger = discardLogger()
	cfg.VirtualPromoSets = rules.VirtualPromoSets
	cfg.VirtualSets = []string{"V1", "RIF", "WPE"}
	c := NewComposer(catalog.NewRegistry(cards, nil, rules), cfg)

	pack := c.GeneratePack("VPROMO")
	require.Len(t, pack, 10)

	for _, card := range pack[:7] {
		assert.Equal(t, "V1", card.SetCode)
	}
	for _, card := range pack[7:] {
		assert.Contains(t, []string{"RIF", "WPE"}, card.SetCode)
	}
}

func TestGeneratePack_SparseSetRepeatsCards(t *testing.T) {
	c := newTestComposer(NewRandomSource(10), makeCards("X", "Common", 5))

	pack := c.GeneratePack("X")
	require.Len(t, pack, 15)
	assert.True(t, distinct(pack[:5]), "the pool is used once before repeating")
}

func TestGeneratePack_ChaseSlot(t *testing.T) {
	chaseSet := join(
		standardSet("X"),
		makeCards("X", "Rare Plus", 2),
		makeCards("X", "Ultra Rare", 1),
	)

	tests := []struct {
		name    string
		floats  []float64
		virtual bool
		want    Category
	}{
		{"ultra roll", []float64{0.001}, false, CategoryUltra},
		{"rare plus roll", []float64{0.01}, false, CategoryRarePlus},
		{"rare roll", []float64{0.5}, false, CategoryRare},
		{"virtual scaled rare plus", []float64{0.007}, true, CategoryRarePlus},
		{"virtual scaled rare", []float64{0.015}, true, CategoryRare},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rng := &scriptedSource{floats: tt.floats}
			c := newTestComposer(rng, chaseSet, func(cfg *ComposerConfig) {
				if tt.virtual {
					cfg.VirtualSets = []string{"X"}
				}
			})

			pack := c.GeneratePack("X")
			last := pack[len(pack)-1]
			if tt.want == CategoryRare {
				assert.Equal(t, 1, countByCategory(pack)[CategoryRare])
				return
			}
			assert.Equal(t, tt.want, Classify(last.Rarity))
			assert.Contains(t, c.Tracker().Recent("X", CategoryRare), last.ID)
		})
	}
}

func TestGeneratePack_FoilSlot(t *testing.T) {
	cards := join(standardSet("BOG"), makeCards("BOG", "Foil", 4))

	t.Run("foil roll hits", func(t *testing.T) {
		c := newTestComposer(&scriptedSource{floats: []float64{0.05}}, cards)

		pack := c.GeneratePack("BOG")
		require.Len(t, pack, 15)

		counts := countByCategory(pack)
		assert.Equal(t, 1, counts[CategoryFoil])
		assert.Zero(t, counts[CategoryRare])
		assert.Contains(t, c.Tracker().Recent("BOG", CategoryRare), pack[14].ID)
	})

	t.Run("foil roll misses", func(t *testing.T) {
		c := newTestComposer(&scriptedSource{floats: []float64{0.5, 0.01}}, cards)

		counts := countByCategory(c.GeneratePack("BOG"))
		assert.Zero(t, counts[CategoryFoil])
		assert.Equal(t, 1, counts[CategoryRare])
		assert.Equal(t, 11, counts[CategoryCommon], "foil-slot sets skip common replacement")
	})
}

func TestGeneratePack_CommonReplacement(t *testing.T) {
	cards := join(standardSet("X"), makeCards("X", "Rare Plus", 2))

	t.Run("replacement roll hits", func(t *testing.T) {
		c := newTestComposer(&scriptedSource{floats: []float64{0.5, 0.1}}, cards)

		pack := c.GeneratePack("X")
		require.Len(t, pack, 15)

		counts := countByCategory(pack)
		assert.Equal(t, 10, counts[CategoryCommon])
		assert.Equal(t, 1, counts[CategoryRarePlus])
		assert.Equal(t, 1, counts[CategoryRare])
	})

	t.Run("replacement roll misses", func(t *testing.T) {
		c := newTestComposer(&scriptedSource{floats: []float64{0.5, 0.9}}, cards)

		counts := countByCategory(c.GeneratePack("X"))
		assert.Equal(t, 11, counts[CategoryCommon])
		assert.Zero(t, counts[CategoryRarePlus])
	})
}

func TestGeneratePack_CollationAvoidsRecentCommons(t *testing.T) {
	cards := join(makeCards("X", "Common", 30), makeCards("X", "Uncommon", 10), makeCards("X", "Rare", 10))
	c := newTestComposer(NewRandomSource(11), cards)

	for range 20 {
		recent := c.Tracker().Recent("X", CategoryCommon)
		pack := c.GeneratePack("X")
		for _, card := range pack[:11] {
			assert.False(t, slices.Contains(recent, card.ID), "common %s was issued within the last window", card.ID)
		}
	}
}

func TestGeneratePack_WindowsStayBounded(t *testing.T) {
	c := newTestComposer(NewRandomSource(12), standardSet("PRE"))
	table := DefaultCollationTable()

	for range 100 {
		c.GeneratePack("PRE")
	}

	for _, cat := range []Category{CategoryCommon, CategoryUncommon, CategoryRare} {
		assert.LessOrEqual(t, len(c.Tracker().Recent("PRE", cat)), table.Capacity("PRE", cat), cat)
	}
}

func TestGeneratePack_IsOrdered(t *testing.T) {
	cards := join(
		standardSet("X"),
		makeCards("X", "Rare Plus", 2),
		makeCards("X", "Foil", 2),
		makeCards("Y", "Promo", 3),
		makeCards("2PG", "Starter", 6),
		makeCards("V", "CV", 10),
		makeCards("V", "UV", 4),
		makeCards("V", "RV", 2),
	)
	c := newTestComposer(NewRandomSource(13), cards, func(cfg *ComposerConfig) {
		cfg.VirtualSets = []string{"V"}
	})

	for _, code := range []string{"X", "Y", "2PG", "V"} {
		for range 20 {
			pack := c.GeneratePack(code)
			assert.Equal(t, idsOf(OrderPack(pack)), idsOf(pack), code)
		}
	}
}

func TestComposer_ForkSharesTracker(t *testing.T) {
	c := newTestComposer(NewRandomSource(14), standardSet("X"))
	fork := c.Fork(NewRandomSource(15))

	fork.GeneratePack("X")

	assert.Same(t, c.Tracker(), fork.Tracker())
	assert.Len(t, c.Tracker().Recent("X", CategoryCommon), 10)
}

func TestComposer_ParallelForks(t *testing.T) {
	c := newTestComposer(NewRandomSource(16), standardSet("PRE"))
	table := DefaultCollationTable()

	var wg sync.WaitGroup
	for w := range 4 {
		fork := c.Fork(NewRandomSource(uint64(100 + w)))
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 50 {
				if pack := fork.GeneratePack("PRE"); len(pack) != 15 {
					t.Errorf("pack size = %d", len(pack))
				}
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(4*50*15), c.Tracker().Stats().Records)
	assert.LessOrEqual(t, len(c.Tracker().Recent("PRE", CategoryCommon)), table.Capacity("PRE", CategoryCommon))
}

func TestComposer_SetRegistryKeepsCollation(t *testing.T) {
	c := newTestComposer(NewRandomSource(17), standardSet("X"))
	c.GeneratePack("X")
	before := c.Tracker().Stats().Records

	c.SetRegistry(catalog.NewRegistry(join(standardSet("X"), standardSet("Z")), nil, catalog.CombineRules{}))

	assert.Len(t, c.GeneratePack("Z"), 15)
	assert.Equal(t, before+15, c.Tracker().Stats().Records)

	c.ResetCollation()
	assert.Zero(t, c.Tracker().Stats().Records)
}
