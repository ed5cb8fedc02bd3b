package packs

import (
	"slices"
	"sync"

	"github.com/ramonehamilton/stccg-pack-opener/internal/catalog"
)

// CollationLimits is how many recent pulls per rarity a print sheet keeps apart.
type CollationLimits struct {
	Common   int
	Uncommon int
	Rare     int
}

// CollationTable holds the per-set collation windows.
type CollationTable struct {
	Default CollationLimits
	Sets    map[string]CollationLimits
}

// lockedSetLimits is the tight window used for the original Decipher print runs.
var lockedSetLimits = CollationLimits{Common: 20, Uncommon: 15, Rare: 10}

// DefaultCollationTable returns the windows for the shipped catalog.
func DefaultCollationTable() CollationTable {
	sets := make(map[string]CollationLimits)
	for _, code := range []string{"PRE", "QCM", "FCO", "DS9", "BOG", "ROA", "VOY"} {
		sets[code] = lockedSetLimits
	}
	return CollationTable{
		Default: CollationLimits{Common: 10, Uncommon: 7, Rare: 5},
		Sets:    sets,
	}
}

// Capacity returns the window size for a set and rarity. Categories other than
// common and uncommon share the rare window, since every chase tier is
// recorded under rare.
func (t CollationTable) Capacity(setCode string, category Category) int {
	limits, ok := t.Sets[setCode]
	if !ok {
		limits = t.Default
	}
	switch category {
	case CategoryCommon:
		return limits.Common
	case CategoryUncommon:
		return limits.Uncommon
	default:
		return limits.Rare
	}
}

// CollationStats tracks tracker activity.
type CollationStats struct {
	Records   int64
	Evictions int64
	Filtered  int64 // cards removed from pools by FilterRecent
	Starved   int64 // filters that would have emptied the pool
	Keys      int
}

type collationKey struct {
	setCode  string
	category Category
}

// CollationTracker keeps, per set and rarity, a bounded list of recently issued
// card IDs (most recent first) so the same card does not reappear within a
// print-sheet span. It is safe for concurrent use.
type CollationTracker struct {
	mu     sync.Mutex
	table  CollationTable
	recent map[collationKey][]string
	stats  CollationStats
}

// NewCollationTracker creates an empty tracker.
func NewCollationTracker(table CollationTable) *CollationTracker {
	return &CollationTracker{
		table:  table,
		recent: make(map[collationKey][]string),
	}
}

// Record pushes cardID to the front of the (setCode, category) window and
// evicts the oldest entry once the window exceeds its capacity.
// Empty IDs are ignored.
func (t *CollationTracker) Record(setCode string, category Category, cardID string) {
	if cardID == "" {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	key := collationKey{setCode: setCode, category: category}
	capacity := t.table.Capacity(setCode, category)

	fifo := append([]string{cardID}, t.recent[key]...)
	if over := len(fifo) - max(capacity, 0); over > 0 {
		fifo = fifo[:len(fifo)-over]
		t.stats.Evictions += int64(over)
	}
	t.recent[key] = fifo
	t.stats.Records++
}

// FilterRecent returns pool without the cards recently recorded for
// (setCode, category). When every card would be removed the original pool is
// returned, so collation never blocks pack generation.
func (t *CollationTracker) FilterRecent(setCode string, pool []*catalog.Card, category Category) []*catalog.Card {
	t.mu.Lock()
	defer t.mu.Unlock()

	fifo := t.recent[collationKey{setCode: setCode, category: category}]
	if len(fifo) == 0 || len(pool) == 0 {
		return pool
	}

	filtered := make([]*catalog.Card, 0, len(pool))
	for _, c := range pool {
		if !slices.Contains(fifo, c.ID) {
			filtered = append(filtered, c)
		}
	}

	if len(filtered) == 0 {
		t.stats.Starved++
		return pool
	}
	t.stats.Filtered += int64(len(pool) - len(filtered))
	return filtered
}

// Recent returns a copy of the window for (setCode, category), most recent first.
func (t *CollationTracker) Recent(setCode string, category Category) []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.recent[collationKey{setCode: setCode, category: category}])
}

// Reset clears every window.
func (t *CollationTracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.recent = make(map[collationKey][]string)
	t.stats = CollationStats{}
}

// Stats returns current tracker statistics.
func (t *CollationTracker) Stats() CollationStats {
	t.mu.Lock()
	defer t.mu.Unlock()

	stats := t.stats
	stats.Keys = len(t.recent)
	return stats
}
