package packs

import "github.com/ramonehamilton/stccg-pack-opener/internal/catalog"

// PullStats tallies opened packs by rarity category. It is not safe for
// concurrent use; give each worker its own and Merge them.
type PullStats struct {
	SetCode string
	Packs   int
	Cards   int

	// Counts is the number of cards pulled per category.
	Counts map[Category]int

	// PacksWith is the number of packs holding at least one card of a category.
	PacksWith map[Category]int
}

// NewPullStats creates an empty tally for a set.
func NewPullStats(setCode string) *PullStats {
	return &PullStats{
		SetCode:   setCode,
		Counts:    make(map[Category]int),
		PacksWith: make(map[Category]int),
	}
}

// Add tallies one pack.
func (s *PullStats) Add(pack []*catalog.Card) {
	s.Packs++
	s.Cards += len(pack)

	seen := make(map[Category]bool, 4)
	for _, card := range pack {
		cat := Classify(card.Rarity)
		s.Counts[cat]++
		if !seen[cat] {
			seen[cat] = true
			s.PacksWith[cat]++
		}
	}
}

// Merge adds other's tallies into s.
func (s *PullStats) Merge(other *PullStats) {
	if other == nil {
		return
	}
	s.Packs += other.Packs
	s.Cards += other.Cards
	for cat, n := range other.Counts {
		s.Counts[cat] += n
	}
	for cat, n := range other.PacksWith {
		s.PacksWith[cat] += n
	}
}

// PerPack returns the average number of cards of a category per pack.
func (s *PullStats) PerPack(cat Category) float64 {
	if s.Packs == 0 {
		return 0
	}
	return float64(s.Counts[cat]) / float64(s.Packs)
}

// HitRate returns the share of packs holding at least one card of a category.
func (s *PullStats) HitRate(cat Category) float64 {
	if s.Packs == 0 {
		return 0
	}
	return float64(s.PacksWith[cat]) / float64(s.Packs)
}

// Categories returns the pulled categories in display order, unknown last.
func (s *PullStats) Categories() []Category {
	var out []Category
	for _, cat := range AllCategories() {
		if s.Counts[cat] > 0 {
			out = append(out, cat)
		}
	}
	if s.Counts[CategoryUnknown] > 0 {
		out = append(out, CategoryUnknown)
	}
	return out
}
