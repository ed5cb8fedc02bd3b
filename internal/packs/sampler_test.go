package packs

import (
	"testing"

	"github.com/ramonehamilton/stccg-pack-opener/internal/catalog"
)

func distinct(cards []*catalog.Card) bool {
	seen := make(map[string]bool, len(cards))
	for _, c := range cards {
		if seen[c.ID] {
			return false
		}
		seen[c.ID] = true
	}
	return true
}

func TestSampler_WithoutReplacement(t *testing.T) {
	s := NewSampler(NewRandomSource(1))
	pool := makeCards("X", "Common", 10)

	tests := []struct {
		name    string
		pool    []*catalog.Card
		n       int
		wantLen int
	}{
		{"fewer than pool", pool, 4, 4},
		{"whole pool", pool, 10, 10},
		{"more than pool", pool, 15, 10},
		{"zero", pool, 0, 0},
		{"empty pool", nil, 3, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.WithoutReplacement(tt.pool, tt.n)
			if len(got) != tt.wantLen {
				t.Fatalf("len = %d, want %d", len(got), tt.wantLen)
			}
			if !distinct(got) {
				t.Errorf("draw contains duplicates: %v", idsOf(got))
			}
		})
	}
}

func TestSampler_WithoutReplacementLeavesPoolIntact(t *testing.T) {
	s := NewSampler(NewRandomSource(2))
	pool := makeCards("X", "Common", 5)
	before := idsOf(pool)

	s.WithoutReplacement(pool, 3)

	for i, id := range idsOf(pool) {
		if id != before[i] {
			t.Fatalf("pool modified at %d: %s != %s", i, id, before[i])
		}
	}
}

func TestSampler_WithReplacement(t *testing.T) {
	s := NewSampler(NewRandomSource(3))

	if got := s.WithReplacement(nil, 5); got != nil {
		t.Errorf("empty pool: got %d cards, want nil", len(got))
	}

	got := s.WithReplacement(makeCards("X", "Common", 2), 9)
	if len(got) != 9 {
		t.Errorf("len = %d, want 9", len(got))
	}
}

func TestSampler_Fill(t *testing.T) {
	s := NewSampler(NewRandomSource(4))

	t.Run("large pool is distinct", func(t *testing.T) {
		got := s.Fill(makeCards("X", "Common", 20), 11)
		if len(got) != 11 || !distinct(got) {
			t.Errorf("got %d cards, distinct=%v", len(got), distinct(got))
		}
	})

	t.Run("small pool is topped up", func(t *testing.T) {
		pool := makeCards("X", "Common", 3)
		got := s.Fill(pool, 7)
		if len(got) != 7 {
			t.Fatalf("len = %d, want 7", len(got))
		}
		if !distinct(got[:3]) {
			t.Errorf("first draws should cover the pool once: %v", idsOf(got[:3]))
		}
	})

	t.Run("empty pool", func(t *testing.T) {
		if got := s.Fill(nil, 4); len(got) != 0 {
			t.Errorf("len = %d, want 0", len(got))
		}
	})
}

func TestSampler_Pick(t *testing.T) {
	s := NewSampler(NewRandomSource(5))

	if s.Pick(nil) != nil {
		t.Error("Pick(nil) should return nil")
	}

	pool := makeCards("X", "Rare", 1)
	if got := s.Pick(pool); got != pool[0] {
		t.Errorf("Pick = %v, want %v", got, pool[0])
	}
}

func TestSampler_ShuffleIsPermutation(t *testing.T) {
	s := NewSampler(NewRandomSource(6))
	pool := makeCards("X", "Common", 12)
	want := make(map[string]bool)
	for _, c := range pool {
		want[c.ID] = true
	}

	got := s.Shuffle(pool)

	if len(got) != 12 || !distinct(got) {
		t.Fatalf("shuffle lost or duplicated cards: %v", idsOf(got))
	}
	for _, c := range got {
		if !want[c.ID] {
			t.Errorf("unexpected card %s", c.ID)
		}
	}
}

func TestSampler_RoughlyUniform(t *testing.T) {
	s := NewSampler(NewRandomSource(7))
	pool := makeCards("X", "Common", 4)
	counts := make(map[string]int)

	const draws = 8000
	for range draws {
		counts[s.Pick(pool).ID]++
	}

	for id, n := range counts {
		if n < draws/4-400 || n > draws/4+400 {
			t.Errorf("%s drawn %d times, expected about %d", id, n, draws/4)
		}
	}
}

func TestNewRandomSource_Reproducible(t *testing.T) {
	a := NewRandomSource(42)
	b := NewRandomSource(42)
	for i := range 10 {
		if x, y := a.IntN(1000), b.IntN(1000); x != y {
			t.Fatalf("draw %d differs: %d != %d", i, x, y)
		}
	}
}
