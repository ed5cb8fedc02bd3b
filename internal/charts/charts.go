// Package charts renders simulation and collection reports as interactive
// HTML charts.
package charts

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// ChartConfig holds configuration for charts.
type ChartConfig struct {
	Title      string   // Chart title
	Subtitle   string   // Chart subtitle
	Width      string   // Chart width (e.g., "900px")
	Height     string   // Chart height (e.g., "500px")
	Theme      string   // Chart theme
	ShowLegend bool     // Show legend
	ShowLabels bool     // Print values on the bars
	Colors     []string // Series colors, cycled
}

// DefaultChartConfig returns default chart configuration.
func DefaultChartConfig() ChartConfig {
	return ChartConfig{
		Width:      "900px",
		Height:     "500px",
		Theme:      "light",
		ShowLegend: true,
		Colors:     []string{"#5470C6", "#91CC75", "#FAC858", "#EE6666", "#73C0DE", "#3BA272", "#FC8452", "#9A60B4", "#EA7CCC"},
	}
}

// DataPoint represents a single data point in a chart.
type DataPoint struct {
	Label string
	Value float64
}

// SeriesData represents a data series for multi-series charts.
type SeriesData struct {
	Name   string
	Points []DataPoint
}

// newBar builds a grouped bar chart. The x axis comes from the first series;
// later series are matched to it by label.
func newBar(series []SeriesData, config ChartConfig) (*charts.Bar, error) {
	if len(series) == 0 {
		return nil, fmt.Errorf("no data series")
	}

	bar := charts.NewBar()

	colors := opts.Colors{}
	for i := range series {
		if len(config.Colors) > 0 {
			colors = append(colors, config.Colors[i%len(config.Colors)])
		}
	}

	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Width:  config.Width,
			Height: config.Height,
			Theme:  config.Theme,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    config.Title,
			Subtitle: config.Subtitle,
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "axis",
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(config.ShowLegend),
		}),
		charts.WithColorsOpts(colors),
	)

	labels := make([]string, len(series[0].Points))
	for i, point := range series[0].Points {
		labels[i] = point.Label
	}
	bar.SetXAxis(labels)

	for _, s := range series {
		values := make(map[string]float64, len(s.Points))
		for _, point := range s.Points {
			values[point.Label] = point.Value
		}

		data := make([]opts.BarData, len(labels))
		for i, label := range labels {
			data[i] = opts.BarData{Value: values[label]}
		}
		bar.AddSeries(s.Name, data)
	}

	bar.SetSeriesOptions(
		charts.WithLabelOpts(opts.Label{
			Show: opts.Bool(config.ShowLabels),
		}),
	)

	return bar, nil
}

// WriteBarChart renders a grouped bar chart as HTML to w.
func WriteBarChart(w io.Writer, series []SeriesData, config ChartConfig) error {
	bar, err := newBar(series, config)
	if err != nil {
		return err
	}
	if err := bar.Render(w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}

// RenderBarChart creates an interactive grouped bar chart HTML file.
func RenderBarChart(series []SeriesData, config ChartConfig, outputPath string) error {
	bar, err := newBar(series, config)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(outputPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create chart directory: %w", err)
		}
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create chart file: %w", err)
	}
	defer f.Close()

	if err := bar.Render(f); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}

// OpenInBrowser opens the chart file in the default browser.
func OpenInBrowser(filePath string) error {
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path: %w", err)
	}

	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", absPath)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", absPath)
	case "linux":
		cmd = exec.Command("xdg-open", absPath)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	return cmd.Start()
}
