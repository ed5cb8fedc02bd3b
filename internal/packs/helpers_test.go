package packs

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/ramonehamilton/stccg-pack-opener/internal/catalog"
)

// makeCards builds n cards of one rarity for a set. IDs look like "X-RARE-PLUS-03".
func makeCards(setCode, rarity string, n int) []*catalog.Card {
	prefix := strings.ToUpper(strings.ReplaceAll(rarity, " ", "-"))
	cards := make([]*catalog.Card, n)
	for i := range cards {
		cards[i] = &catalog.Card{
			ID:      fmt.Sprintf("%s-%s-%02d", setCode, prefix, i),
			Name:    fmt.Sprintf("%s %s %d", setCode, rarity, i),
			Rarity:  rarity,
			SetCode: setCode,
			SetName: "Set " + setCode,
		}
	}
	return cards
}

func join(groups ...[]*catalog.Card) []*catalog.Card {
	var out []*catalog.Card
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

// scriptedSource replays fixed values, then returns 0.5 for Float64 and 0 for IntN.
type scriptedSource struct {
	floats []float64
	ints   []int
}

func (s *scriptedSource) Float64() float64 {
	if len(s.floats) == 0 {
		return 0.5
	}
	v := s.floats[0]
	s.floats = s.floats[1:]
	return v
}

func (s *scriptedSource) IntN(n int) int {
	if len(s.ints) == 0 {
		return 0
	}
	v := s.ints[0]
	s.ints = s.ints[1:]
	return v % n
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestComposer builds a composer over cards without combined sets.
func newTestComposer(rng RandomSource, cards []*catalog.Card, configure ...func(*ComposerConfig)) *Composer {
	cfg := DefaultComposerConfig()
	cfg.Random = rng
	cfg.Logger = discardLogger()
	for _, fn := range configure {
		fn(&cfg)
	}
	reg := catalog.NewRegistry(cards, nil, catalog.CombineRules{})
	return NewComposer(reg, cfg)
}

func countByCategory(pack []*catalog.Card) map[Category]int {
	counts := make(map[Category]int)
	for _, c := range pack {
		counts[Classify(c.Rarity)]++
	}
	return counts
}

func idsOf(cards []*catalog.Card) []string {
	ids := make([]string, len(cards))
	for i, c := range cards {
		ids[i] = c.ID
	}
	return ids
}
