package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/ramonehamilton/stccg-pack-opener/internal/catalog"
	"github.com/ramonehamilton/stccg-pack-opener/internal/metrics"
	"github.com/ramonehamilton/stccg-pack-opener/internal/packs"
	"github.com/ramonehamilton/stccg-pack-opener/internal/storage/models"
)

// printPack prints one opened pack. Cards in newCards are starred.
func printPack(w io.Writer, set *catalog.Set, n int, pack []*catalog.Card, newCards map[string]bool) {
	fmt.Fprintf(w, "\n%s - %s, pack %d (%d cards)\n", set.Code, set.Name, n, len(pack))
	fmt.Fprintln(w, strings.Repeat("-", 60))

	for i, card := range pack {
		marker := " "
		if newCards[card.ID] {
			marker = "*"
		}
		name := card.Name
		if name == "" {
			name = card.ID
		}
		extra := ""
		if card.HasTribble {
			extra = " [tribble]"
		}
		if card.SetCode != set.Code {
			extra += " (" + card.SetCode + ")"
		}
		fmt.Fprintf(w, "%s %2d. %-4s %-40s %s%s\n", marker, i+1, packs.RarityCode(card.Rarity), name, card.ID, extra)
	}
}

// printSets lists the sets in display order.
func printSets(w io.Writer, sets []*catalog.Set) {
	fmt.Fprintln(w, "\nSets")
	fmt.Fprintln(w, "====")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%-8s %-40s %-16s %6s  %s\n", "Code", "Name", "Product", "Cards", "Pack art")

	for _, s := range sets {
		art := catalog.PackArtCandidates(s)[0]
		fmt.Fprintf(w, "%-8s %-40s %-16s %6d  %s\n", s.Code, s.Name, s.Family, len(s.Cards), art)
	}
	fmt.Fprintln(w)
}

// printSimulation prints pull rates and timing for a simulation run.
func printSimulation(w io.Writer, stats *packs.PullStats, summary metrics.Summary) {
	fmt.Fprintf(w, "\nSimulated %d packs of %s\n", stats.Packs, stats.SetCode)
	fmt.Fprintln(w, strings.Repeat("=", 60))
	fmt.Fprintf(w, "%-12s %10s %12s %12s\n", "Rarity", "Pulled", "Per pack", "Hit rate")

	for _, cat := range stats.Categories() {
		fmt.Fprintf(w, "%-12s %10d %12.3f %11.2f%%\n",
			cat.DisplayName(),
			stats.Counts[cat],
			stats.PerPack(cat),
			stats.HitRate(cat)*100)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, summary.String())
}

// collectionView is what the collection command prints.
type collectionView struct {
	Progress    []*models.SetProgress
	Opens       []*models.SetOpenCount
	Completions []*models.RarityCompletion
}

// printCollection prints per-set progress against the catalog.
func printCollection(w io.Writer, reg *catalog.Registry, view collectionView) {
	if len(view.Progress) == 0 && len(view.Opens) == 0 {
		fmt.Fprintln(w, "No packs opened yet. Run 'pack-opener open <SET>' to start.")
		return
	}

	opens := make(map[string]*models.SetOpenCount, len(view.Opens))
	for _, o := range view.Opens {
		opens[o.SetCode] = o
	}

	// Owned cards are stored under their printed set; synthetic sets count
	// their contributors' cards.
	totals := make(map[string]int)
	for _, card := range reg.Cards() {
		totals[card.SetCode]++
	}

	fmt.Fprintln(w, "\nCollection")
	fmt.Fprintln(w, "==========")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%-8s %10s %10s %10s\n", "Set", "Unique", "Pulled", "Complete")
	for _, p := range view.Progress {
		complete := "-"
		if total := totals[p.SetCode]; total > 0 {
			complete = fmt.Sprintf("%.1f%%", float64(p.UniqueOwned)/float64(total)*100)
		}
		fmt.Fprintf(w, "%-8s %10d %10d %10s\n", p.SetCode, p.UniqueOwned, p.TotalPulled, complete)
	}

	if len(view.Opens) > 0 {
		fmt.Fprintln(w, "\nPacks opened")
		for _, o := range view.Opens {
			fmt.Fprintf(w, "  %-8s %6d  last %s\n", o.SetCode, o.Opens, o.LastOpenedAt.Local().Format("2006-01-02 15:04"))
		}
	}

	if len(view.Completions) > 0 {
		fmt.Fprintln(w, "\nCompleted rarities")
		for _, c := range view.Completions {
			fmt.Fprintf(w, "  %s %s (%d cards) on %s\n",
				c.SetName, packs.Category(c.Category).DisplayName(), c.CardCount,
				c.CompletedAt.Local().Format("2006-01-02"))
		}
	}
	fmt.Fprintln(w)
}

// printOwned lists owned cards with their pull counts.
func printOwned(w io.Writer, cards []*models.CollectionCard) {
	if len(cards) == 0 {
		fmt.Fprintln(w, "No cards owned yet.")
		return
	}

	fmt.Fprintf(w, "\nOwned cards (%d)\n", len(cards))
	fmt.Fprintln(w, strings.Repeat("-", 60))
	for _, c := range cards {
		fmt.Fprintf(w, "  %-6s %-4s %-40s x%d\n", c.SetCode, packs.RarityCode(c.Rarity), c.Name, c.Count)
	}
	fmt.Fprintln(w)
}

// printRecent lists opened packs, newest first.
func printRecent(w io.Writer, reg *catalog.Registry, opened []*models.PackOpen) {
	if len(opened) == 0 {
		fmt.Fprintln(w, "No packs opened yet.")
		return
	}

	fmt.Fprintln(w, "\nRecent packs")
	for _, p := range opened {
		name := p.SetCode
		if s, ok := reg.Set(p.SetCode); ok {
			name = s.Name
		}
		fmt.Fprintf(w, "  %s  %-6s %-36s %2d cards\n",
			p.OpenedAt.Local().Format("2006-01-02 15:04"), p.SetCode, name, len(p.CardIDs))
	}
	fmt.Fprintln(w)
}

// printCompletion announces a newly completed rarity.
func printCompletion(w io.Writer, setName, category string, cards int) {
	fmt.Fprintf(w, "\n*** Completed all %d %s cards of %s! ***\n", cards, packs.Category(category).DisplayName(), setName)
}
