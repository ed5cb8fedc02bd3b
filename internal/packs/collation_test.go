package packs

import (
	"fmt"
	"sync"
	"testing"
)

func TestCollationTable_Capacity(t *testing.T) {
	table := DefaultCollationTable()

	tests := []struct {
		set      string
		category Category
		want     int
	}{
		{"PRE", CategoryCommon, 20},
		{"VOY", CategoryUncommon, 15},
		{"BOG", CategoryRare, 10},
		{"BOG", CategoryUltra, 10},
		{"2PG", CategoryCommon, 10},
		{"2PG", CategoryUncommon, 7},
		{"2PG", CategoryRare, 5},
		{"2PG", CategoryFoil, 5},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s/%s", tt.set, tt.category), func(t *testing.T) {
			if got := table.Capacity(tt.set, tt.category); got != tt.want {
				t.Errorf("Capacity = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCollationTracker_RecordBounded(t *testing.T) {
	tracker := NewCollationTracker(DefaultCollationTable())

	for i := range 8 {
		tracker.Record("2PG", CategoryRare, fmt.Sprintf("r%d", i))
	}

	got := tracker.Recent("2PG", CategoryRare)
	want := []string{"r7", "r6", "r5", "r4", "r3"}
	if len(got) != len(want) {
		t.Fatalf("Recent = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Recent[%d] = %s, want %s", i, got[i], want[i])
		}
	}

	stats := tracker.Stats()
	if stats.Records != 8 || stats.Evictions != 3 || stats.Keys != 1 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestCollationTracker_RecordIgnoresEmptyID(t *testing.T) {
	tracker := NewCollationTracker(DefaultCollationTable())
	tracker.Record("PRE", CategoryCommon, "")

	if got := tracker.Recent("PRE", CategoryCommon); len(got) != 0 {
		t.Errorf("Recent = %v, want empty", got)
	}
	if tracker.Stats().Records != 0 {
		t.Error("empty ID should not count as a record")
	}
}

func TestCollationTracker_KeysAreIndependent(t *testing.T) {
	tracker := NewCollationTracker(DefaultCollationTable())
	tracker.Record("PRE", CategoryCommon, "a")
	tracker.Record("PRE", CategoryUncommon, "b")
	tracker.Record("QCM", CategoryCommon, "c")

	if got := tracker.Recent("PRE", CategoryCommon); len(got) != 1 || got[0] != "a" {
		t.Errorf("PRE common = %v", got)
	}
	if got := tracker.Stats().Keys; got != 3 {
		t.Errorf("Keys = %d, want 3", got)
	}
}

func TestCollationTracker_FilterRecent(t *testing.T) {
	pool := makeCards("X", "Common", 4)

	t.Run("removes recent cards", func(t *testing.T) {
		tracker := NewCollationTracker(DefaultCollationTable())
		tracker.Record("X", CategoryCommon, pool[0].ID)
		tracker.Record("X", CategoryCommon, pool[2].ID)

		got := tracker.FilterRecent("X", pool, CategoryCommon)
		if len(got) != 2 || got[0] != pool[1] || got[1] != pool[3] {
			t.Errorf("FilterRecent = %v", idsOf(got))
		}
		if tracker.Stats().Filtered != 2 {
			t.Errorf("Filtered = %d, want 2", tracker.Stats().Filtered)
		}
	})

	t.Run("returns original pool instead of emptying it", func(t *testing.T) {
		tracker := NewCollationTracker(DefaultCollationTable())
		for _, c := range pool {
			tracker.Record("X", CategoryCommon, c.ID)
		}

		got := tracker.FilterRecent("X", pool, CategoryCommon)
		if len(got) != len(pool) {
			t.Errorf("len = %d, want %d", len(got), len(pool))
		}
		if tracker.Stats().Starved != 1 {
			t.Errorf("Starved = %d, want 1", tracker.Stats().Starved)
		}
	})

	t.Run("other category is unaffected", func(t *testing.T) {
		tracker := NewCollationTracker(DefaultCollationTable())
		tracker.Record("X", CategoryUncommon, pool[0].ID)

		if got := tracker.FilterRecent("X", pool, CategoryCommon); len(got) != 4 {
			t.Errorf("len = %d, want 4", len(got))
		}
	})
}

func TestCollationTracker_Reset(t *testing.T) {
	tracker := NewCollationTracker(DefaultCollationTable())
	tracker.Record("PRE", CategoryCommon, "a")
	tracker.Reset()

	if got := tracker.Recent("PRE", CategoryCommon); len(got) != 0 {
		t.Errorf("Recent after Reset = %v", got)
	}
	if stats := tracker.Stats(); stats != (CollationStats{}) {
		t.Errorf("Stats after Reset = %+v", stats)
	}
}

func TestCollationTracker_ConcurrentRecord(t *testing.T) {
	tracker := NewCollationTracker(DefaultCollationTable())

	var wg sync.WaitGroup
	for w := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 100 {
				tracker.Record("PRE", CategoryCommon, fmt.Sprintf("w%d-%d", w, i))
				tracker.FilterRecent("PRE", makeCards("PRE", "Common", 3), CategoryCommon)
			}
		}()
	}
	wg.Wait()

	if got := len(tracker.Recent("PRE", CategoryCommon)); got != 20 {
		t.Errorf("window length = %d, want 20", got)
	}
	if got := tracker.Stats().Records; got != 800 {
		t.Errorf("Records = %d, want 800", got)
	}
}
