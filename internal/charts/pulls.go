package charts

import (
	"fmt"
	"io"

	"github.com/ramonehamilton/stccg-pack-opener/internal/packs"
)

// PullSeries turns simulated pack stats into two series over the pulled
// categories: cards per pack and the share of packs with at least one hit.
func PullSeries(stats *packs.PullStats) []SeriesData {
	perPack := SeriesData{Name: "Cards per pack"}
	hitRate := SeriesData{Name: "Packs with one or more (%)"}

	for _, cat := range stats.Categories() {
		label := cat.DisplayName()
		perPack.Points = append(perPack.Points, DataPoint{Label: label, Value: round2(stats.PerPack(cat))})
		hitRate.Points = append(hitRate.Points, DataPoint{Label: label, Value: round2(stats.HitRate(cat) * 100)})
	}

	return []SeriesData{perPack, hitRate}
}

// PullConfig returns the chart configuration for a pull-rate report.
func PullConfig(stats *packs.PullStats) ChartConfig {
	config := DefaultChartConfig()
	config.Title = fmt.Sprintf("%s pull rates", stats.SetCode)
	config.Subtitle = fmt.Sprintf("%d packs, %d cards", stats.Packs, stats.Cards)
	config.ShowLabels = true
	return config
}

// WritePullReport renders the pull-rate chart for stats to w.
func WritePullReport(w io.Writer, stats *packs.PullStats) error {
	if stats.Packs == 0 {
		return fmt.Errorf("no packs opened for %s", stats.SetCode)
	}
	return WriteBarChart(w, PullSeries(stats), PullConfig(stats))
}

// RenderPullReport writes the pull-rate chart for stats to outputPath.
func RenderPullReport(stats *packs.PullStats, outputPath string) error {
	if stats.Packs == 0 {
		return fmt.Errorf("no packs opened for %s", stats.SetCode)
	}
	return RenderBarChart(PullSeries(stats), PullConfig(stats), outputPath)
}

func round2(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}
