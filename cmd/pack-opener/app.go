package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ramonehamilton/stccg-pack-opener/internal/catalog"
	"github.com/ramonehamilton/stccg-pack-opener/internal/config"
	"github.com/ramonehamilton/stccg-pack-opener/internal/events"
	"github.com/ramonehamilton/stccg-pack-opener/internal/metrics"
	"github.com/ramonehamilton/stccg-pack-opener/internal/packs"
	"github.com/ramonehamilton/stccg-pack-opener/internal/storage"
	"github.com/ramonehamilton/stccg-pack-opener/internal/storage/models"
)

// app wires the catalog, the pack composer and the collection database.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	loader   *catalog.Loader
	composer *packs.Composer
	events   *events.Dispatcher

	// db and service are nil when packs are not recorded.
	db      *storage.DB
	service *storage.Service

	seed uint64
	out  io.Writer
}

type appOptions struct {
	seed   uint64 // 0 seeds randomly
	record bool
	logger *slog.Logger
	out    io.Writer
}

// newApp loads the catalog and, when recording, opens the collection database.
func newApp(cfg *config.Config, opts appOptions) (*app, error) {
	logger := opts.logger
	if logger == nil {
		logger = slog.Default()
	}

	loader := catalog.NewLoader(cfg.Catalog.CardsFile, cfg.CombineRules(), cfg.Catalog.SetMetaFiles()...)
	reg, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	composerCfg := cfg.ComposerConfig()
	composerCfg.Logger = logger
	if opts.seed != 0 {
		composerCfg.Random = packs.NewRandomSource(opts.seed)
	}

	a := &app{
		cfg:      cfg,
		logger:   logger,
		loader:   loader,
		composer: packs.NewComposer(reg, composerCfg),
		events:   events.NewDispatcher(logger),
		seed:     opts.seed,
		out:      opts.out,
	}
	a.events.Register(events.NewLoggingObserver(logger))

	logger.Debug("catalog loaded", "sets", len(reg.Sets()), "cards", len(reg.Cards()))

	if opts.record {
		if err := a.openDB(); err != nil {
			return nil, err
		}
	}
	return a, nil
}

func (a *app) openDB() error {
	path, err := a.cfg.DBPath()
	if err != nil {
		return fmt.Errorf("failed to resolve database path: %w", err)
	}

	dbConfig := storage.DefaultConfig(path)
	dbConfig.AutoMigrate = a.cfg.Storage.AutoMigrate
	db, err := storage.Open(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to open collection database: %w", err)
	}

	a.db = db
	a.service = storage.NewService(db)
	a.logger.Debug("collection database opened", "path", path)
	return nil
}

// Close releases the database, if open.
func (a *app) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

// defaultVirtualCode is always part of the virtual-only listing.
const defaultVirtualCode = "COC"

var errNoCollection = errors.New("collection database is not open")

// listSets returns the listed sets in display order, narrowed to virtual or
// physical products when asked. An empty physical list does not filter.
func (a *app) listSets(virtualOnly, physicalOnly bool) []*catalog.Set {
	products := a.cfg.Products
	sets := a.composer.Registry().Ordered(products.PackOrder, products.HiddenSets)
	if virtualOnly {
		codes := append([]string{defaultVirtualCode}, products.VirtualSets...)
		sets = catalog.Filter(sets, codes)
	}
	if physicalOnly && len(products.PhysicalSets) > 0 {
		sets = catalog.Filter(sets, products.PhysicalSets)
	}
	return sets
}

// owned returns the owned cards of setArg, or of every set when setArg is empty.
func (a *app) owned(ctx context.Context, setArg string) ([]*models.CollectionCard, error) {
	if a.service == nil {
		return nil, errNoCollection
	}
	if setArg == "" {
		return a.service.Collection(ctx)
	}
	set, err := a.resolveSet(setArg)
	if err != nil {
		return nil, err
	}
	return a.service.SetCollection(ctx, set.Code)
}

// recent returns the last n opened packs, newest first.
func (a *app) recent(ctx context.Context, n int) ([]*models.PackOpen, error) {
	if a.service == nil {
		return nil, errNoCollection
	}
	return a.service.RecentPacks(ctx, n)
}

// resolveSet finds a set by code, short code or name, ignoring case.
func (a *app) resolveSet(arg string) (*catalog.Set, error) {
	reg := a.composer.Registry()
	arg = strings.TrimSpace(arg)

	if s, err := reg.Lookup(arg); err == nil {
		return s, nil
	}
	if s, err := reg.Lookup(strings.ToUpper(arg)); err == nil {
		return s, nil
	}
	if found := catalog.Filter(reg.Sets(), []string{arg}); len(found) > 0 {
		return found[0], nil
	}
	for _, s := range reg.Sets() {
		if strings.EqualFold(s.Name, arg) {
			return s, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", catalog.ErrSetNotFound, arg)
}

// openPacks opens count packs of setArg, prints them and records them when a
// database is open.
func (a *app) openPacks(ctx context.Context, setArg string, count int) error {
	set, err := a.resolveSet(setArg)
	if err != nil {
		return err
	}

	for i := range count {
		if err := ctx.Err(); err != nil {
			return err
		}

		pack := a.composer.GeneratePack(set.Code)
		if len(pack) == 0 {
			return fmt.Errorf("set %s has no cards to open", set.Code)
		}

		opened := events.PackOpenedEvent{SetCode: set.Code, Cards: len(pack)}
		var newCards map[string]bool
		var completions []*models.RarityCompletion
		if a.service != nil {
			record, err := a.service.RecordPack(ctx, set, pack)
			if err != nil {
				return err
			}
			opened.PackID = record.PackID
			opened.NewCards = len(record.NewCards)

			newCards = make(map[string]bool, len(record.NewCards))
			for _, id := range record.NewCards {
				newCards[id] = true
			}
			completions = record.Completions
		}

		printPack(a.out, set, i+1, pack, newCards)
		a.events.Dispatch(events.NewTypedEvent(ctx, events.TypePackOpened, opened))
		a.announceCompletions(ctx, completions)
	}
	return nil
}

func (a *app) announceCompletions(ctx context.Context, completions []*models.RarityCompletion) {
	for _, c := range completions {
		a.events.Dispatch(events.NewTypedEvent(ctx, events.TypeRarityCompleted, events.RarityCompletedEvent{
			SetCode:   c.SetCode,
			SetName:   c.SetName,
			Category:  c.Category,
			CardCount: c.CardCount,
		}))
	}
}

// simulateResult is the outcome of a simulation run.
type simulateResult struct {
	Stats   *packs.PullStats
	Summary metrics.Summary
}

// simulate opens n packs of setArg across workers goroutines without recording
// them. Workers share the collation tracker, so multi-worker runs are only
// reproducible in aggregate.
func (a *app) simulate(ctx context.Context, setArg string, n, workers int) (*simulateResult, error) {
	set, err := a.resolveSet(setArg)
	if err != nil {
		return nil, err
	}
	if n <= 0 {
		return nil, fmt.Errorf("pack count must be positive, got %d", n)
	}
	workers = max(1, min(workers, n))

	m := metrics.NewSimulationMetrics()
	results := make([]*packs.PullStats, workers)
	g, ctx := errgroup.WithContext(ctx)

	for w := range workers {
		share := n / workers
		if w < n%workers {
			share++
		}

		rng := packs.DefaultRandomSource()
		if a.seed != 0 {
			rng = packs.NewRandomSource(a.seed + uint64(w) + 1)
		}
		fork := a.composer.Fork(rng)
		stats := packs.NewPullStats(set.Code)
		results[w] = stats

		g.Go(func() error {
			for range share {
				if err := ctx.Err(); err != nil {
					return err
				}
				start := time.Now()
				pack := fork.GeneratePack(set.Code)
				m.ObservePack(len(pack), time.Since(start))
				stats.Add(pack)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("simulation of %s stopped: %w", set.Code, err)
	}

	total := packs.NewPullStats(set.Code)
	for _, r := range results {
		total.Merge(r)
	}
	return &simulateResult{Stats: total, Summary: m.Summary()}, nil
}

// reload swaps in a freshly loaded catalog, keeping collation state.
func (a *app) reload(reg *catalog.Registry) {
	a.composer.SetRegistry(reg)
	a.events.Dispatch(events.NewTypedEvent(context.Background(), events.TypeCatalogReloaded, events.CatalogReloadedEvent{
		Sets:  len(reg.Sets()),
		Cards: len(reg.Cards()),
	}))
}
