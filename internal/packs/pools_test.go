package packs

import (
	"testing"

	"github.com/ramonehamilton/stccg-pack-opener/internal/catalog"
)

func TestBuildPools_Categories(t *testing.T) {
	cards := join(
		makeCards("X", "Common", 3),
		makeCards("X", "Uncommon", 2),
		makeCards("X", "Rare", 2),
		makeCards("X", "Rare Plus", 1),
		makeCards("X", "Ultra Rare", 1),
		makeCards("X", "Foil", 2),
		makeCards("X", "Promo", 1),
		makeCards("X", "", 1),
		makeCards("X", "Mystery", 1),
	)

	p := BuildPools(cards, "X", DefaultPoolRules())

	tests := []struct {
		name string
		got  int
		want int
	}{
		{"common", len(p.Common), 5},
		{"uncommon", len(p.Uncommon), 2},
		{"rare", len(p.Rare), 2},
		{"rarePlus", len(p.RarePlus), 1},
		{"ultra", len(p.Ultra), 1},
		{"foil", len(p.Foil), 2},
		{"promo", len(p.Promo), 1},
		{"tribble", len(p.Tribble), 0},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s pool size = %d, want %d", tt.name, tt.got, tt.want)
		}
	}
	if p.HasStarters {
		t.Error("HasStarters = true, want false")
	}
}

func TestBuildPools_Starters(t *testing.T) {
	rules := DefaultPoolRules()

	tests := []struct {
		name         string
		setCode      string
		wantUncommon int
		wantRare     int
	}{
		{"DS9 starters are uncommons", "DS9", 4, 0},
		{"VOY starters are uncommons", "VOY", 4, 0},
		{"other starters are rares", "2PG", 0, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := BuildPools(makeCards(tt.setCode, "Starter", 4), tt.setCode, rules)
			if len(p.Uncommon) != tt.wantUncommon {
				t.Errorf("uncommon = %d, want %d", len(p.Uncommon), tt.wantUncommon)
			}
			if len(p.Rare) != tt.wantRare {
				t.Errorf("rare = %d, want %d", len(p.Rare), tt.wantRare)
			}
			if !p.HasStarters {
				t.Error("HasStarters = false, want true")
			}
		})
	}
}

func TestBuildPools_TribbleStarter(t *testing.T) {
	cards := makeCards("TSD", "Starter", 6)
	cards[0].HasTribble = true
	cards[3].HasTribble = true
	cards = append(cards, makeCards("TSD", "CV", 2)...)

	p := BuildPools(cards, "TSD", DefaultPoolRules())

	if len(p.Tribble) != 2 {
		t.Errorf("tribble = %d, want 2", len(p.Tribble))
	}
	if len(p.Common) != 6 {
		t.Errorf("common = %d, want 6 (4 non-tribble starters + 2 CV)", len(p.Common))
	}
	if len(p.Rare) != 0 {
		t.Errorf("rare = %d, want 0", len(p.Rare))
	}
	if !p.HasStarters {
		t.Error("HasStarters = false, want true")
	}
}

func TestPools_WithFallbacks(t *testing.T) {
	tests := []struct {
		name         string
		cards        []*catalog.Card
		wantCommon   int
		wantUncommon int
		wantRare     int
	}{
		{
			name:         "complete set unchanged",
			cards:        join(makeCards("X", "Common", 4), makeCards("X", "Uncommon", 2), makeCards("X", "Rare", 1)),
			wantCommon:   4,
			wantUncommon: 2,
			wantRare:     1,
		},
		{
			name:         "promos stand in for commons and uncommons and rares",
			cards:        makeCards("X", "Promo", 3),
			wantCommon:   3,
			wantUncommon: 3,
			wantRare:     6,
		},
		{
			name:         "commons stand in for uncommons",
			cards:        join(makeCards("X", "Common", 5), makeCards("X", "Rare", 1)),
			wantCommon:   5,
			wantUncommon: 5,
			wantRare:     1,
		},
		{
			name:         "ultra alone keeps the rare pool empty",
			cards:        join(makeCards("X", "Common", 2), makeCards("X", "Uncommon", 1), makeCards("X", "Ultra Rare", 1)),
			wantCommon:   2,
			wantUncommon: 1,
			wantRare:     0,
		},
		{
			name: "empty set stays empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := BuildPools(tt.cards, "X", DefaultPoolRules())
			p := raw.withFallbacks()

			if len(p.Common) != tt.wantCommon {
				t.Errorf("common = %d, want %d", len(p.Common), tt.wantCommon)
			}
			if len(p.Uncommon) != tt.wantUncommon {
				t.Errorf("uncommon = %d, want %d", len(p.Uncommon), tt.wantUncommon)
			}
			if len(p.Rare) != tt.wantRare {
				t.Errorf("rare = %d, want %d", len(p.Rare), tt.wantRare)
			}
		})
	}
}

func TestPools_WithFallbacksDoesNotAliasRawPools(t *testing.T) {
	raw := BuildPools(makeCards("X", "Promo", 2), "X", DefaultPoolRules())
	p := raw.withFallbacks()

	p.Common[0] = nil
	if raw.Promo[0] == nil {
		t.Error("fallback common pool aliases the promo pool")
	}
}
