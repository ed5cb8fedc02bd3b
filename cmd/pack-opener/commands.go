package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"runtime"

	"github.com/ramonehamilton/stccg-pack-opener/internal/charts"
	"github.com/ramonehamilton/stccg-pack-opener/internal/config"
)

func runSetsCommand(cfg *config.Config, logger *slog.Logger, args []string) error {
	setsFlags := flag.NewFlagSet("sets", flag.ExitOnError)
	virtualOnly := setsFlags.Bool("virtual", false, "List only virtual products")
	physicalOnly := setsFlags.Bool("physical", false, "List only physical products (products.physical_sets)")
	if err := setsFlags.Parse(args); err != nil {
		return err
	}

	a := mustApp(cfg, logger, false)
	defer closeApp(a)

	sets := a.listSets(*virtualOnly, *physicalOnly)
	if len(sets) == 0 {
		fmt.Printf("No sets found in %s\n", cfg.Catalog.CardsFile)
		return nil
	}
	printSets(os.Stdout, sets)
	return nil
}

func runOpenCommand(ctx context.Context, cfg *config.Config, logger *slog.Logger, args []string) error {
	if len(args) == 0 {
		fmt.Println("Usage: pack-opener open <SET> [-count N]")
		os.Exit(1)
	}

	openFlags := flag.NewFlagSet("open", flag.ExitOnError)
	count := openFlags.Int("count", 1, "Number of packs to open")
	if err := openFlags.Parse(args[1:]); err != nil {
		return err
	}
	if *count < 1 {
		return fmt.Errorf("pack count must be at least 1, got %d", *count)
	}

	a := mustApp(cfg, logger, !*noRecord)
	defer closeApp(a)

	if err := a.openPacks(ctx, args[0], *count); err != nil {
		return fmt.Errorf("opening packs: %w", err)
	}
	return nil
}

func runSimulateCommand(ctx context.Context, cfg *config.Config, logger *slog.Logger, args []string) error {
	if len(args) == 0 {
		fmt.Println("Usage: pack-opener simulate <SET> [-packs N] [-workers W] [-chart out.html] [-open]")
		os.Exit(1)
	}

	simFlags := flag.NewFlagSet("simulate", flag.ExitOnError)
	packCount := simFlags.Int("packs", 1000, "Number of packs to open")
	workers := simFlags.Int("workers", runtime.GOMAXPROCS(0), "Parallel workers sharing one collation tracker")
	chartPath := simFlags.String("chart", "", "Write an HTML pull-rate chart to this file")
	openChart := simFlags.Bool("open", false, "Open the chart in a browser")
	if err := simFlags.Parse(args[1:]); err != nil {
		return err
	}

	a := mustApp(cfg, logger, false)
	defer closeApp(a)

	result, err := a.simulate(ctx, args[0], *packCount, *workers)
	if err != nil {
		return fmt.Errorf("simulating packs: %w", err)
	}
	printSimulation(os.Stdout, result.Stats, result.Summary)

	if *chartPath == "" {
		return nil
	}
	if err := charts.RenderPullReport(result.Stats, *chartPath); err != nil {
		return fmt.Errorf("rendering chart: %w", err)
	}
	fmt.Printf("Chart written to %s\n", *chartPath)
	if *openChart {
		if err := charts.OpenInBrowser(*chartPath); err != nil {
			log.Printf("Error opening chart: %v", err)
		}
	}
	return nil
}

func runCollectionCommand(ctx context.Context, cfg *config.Config, logger *slog.Logger, args []string) error {
	collFlags := flag.NewFlagSet("collection", flag.ExitOnError)
	chartPath := collFlags.String("chart", "", "Write an HTML chart of packs opened per set to this file")
	setArg := collFlags.String("set", "", "List the owned cards of one set")
	recentCount := collFlags.Int("recent", 0, "List the last N opened packs")
	if err := collFlags.Parse(args); err != nil {
		return err
	}

	a := mustApp(cfg, logger, true)
	defer closeApp(a)

	if *setArg != "" {
		cards, err := a.owned(ctx, *setArg)
		if err != nil {
			return fmt.Errorf("reading collection: %w", err)
		}
		printOwned(os.Stdout, cards)
		return nil
	}

	view, err := a.collection(ctx)
	if err != nil {
		return fmt.Errorf("reading collection: %w", err)
	}
	printCollection(os.Stdout, a.composer.Registry(), view)

	if *recentCount > 0 {
		opened, err := a.recent(ctx, *recentCount)
		if err != nil {
			return fmt.Errorf("reading recent packs: %w", err)
		}
		printRecent(os.Stdout, a.composer.Registry(), opened)
	}

	if *chartPath == "" {
		return nil
	}
	if err := charts.RenderBarChart(collectionSeries(view), collectionChartConfig(), *chartPath); err != nil {
		return fmt.Errorf("rendering chart: %w", err)
	}
	fmt.Printf("Chart written to %s\n", *chartPath)
	return nil
}

// collection reads everything the collection command shows.
func (a *app) collection(ctx context.Context) (collectionView, error) {
	var view collectionView
	if a.service == nil {
		return view, errNoCollection
	}

	var err error
	if view.Progress, err = a.service.Progress(ctx); err != nil {
		return view, err
	}
	if view.Opens, err = a.service.PackOpenCounts(ctx); err != nil {
		return view, err
	}
	if view.Completions, err = a.service.Completions(ctx); err != nil {
		return view, err
	}
	return view, nil
}

func collectionSeries(view collectionView) []charts.SeriesData {
	opens := charts.SeriesData{Name: "Packs opened"}
	for _, o := range view.Opens {
		opens.Points = append(opens.Points, charts.DataPoint{Label: o.SetCode, Value: float64(o.Opens)})
	}
	unique := charts.SeriesData{Name: "Unique cards"}
	for _, p := range view.Progress {
		unique.Points = append(unique.Points, charts.DataPoint{Label: p.SetCode, Value: float64(p.UniqueOwned)})
	}
	return []charts.SeriesData{opens, unique}
}

func collectionChartConfig() charts.ChartConfig {
	config := charts.DefaultChartConfig()
	config.Title = "Collection"
	config.Subtitle = "Packs opened and unique cards per set"
	return config
}
