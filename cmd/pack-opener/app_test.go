package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramonehamilton/stccg-pack-opener/internal/catalog"
	"github.com/ramonehamilton/stccg-pack-opener/internal/config"
	"github.com/ramonehamilton/stccg-pack-opener/internal/events"
	"github.com/ramonehamilton/stccg-pack-opener/internal/packs"
)

// writeCatalog writes a Premiere-like set large enough for full packs.
func writeCatalog(t *testing.T, dir string) string {
	t.Helper()

	var rows []map[string]any
	add := func(rarity string, n int) {
		for i := range n {
			rows = append(rows, map[string]any{
				"id":       fmt.Sprintf("PRE-%s-%02d", strings.ToUpper(rarity[:1]), i),
				"name":     fmt.Sprintf("%s %d", rarity, i),
				"rarity":   rarity,
				"set_code": "PRE",
				"set_name": "Premiere",
			})
		}
	}
	add("Common", 30)
	add("Uncommon", 10)
	add("Rare", 6)

	data, err := json.Marshal(rows)
	require.NoError(t, err)

	path := filepath.Join(dir, "cards.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func newTestApp(t *testing.T, record bool) (*app, *bytes.Buffer) {
	t.Helper()
	dir := t.TempDir()

	cfg := config.DefaultConfig()
	cfg.Catalog.CardsFile = writeCatalog(t, dir)
	cfg.Catalog.SetsFile = ""
	cfg.Storage.DBPath = filepath.Join(dir, "collection.db")

	var out bytes.Buffer
	a, err := newApp(cfg, appOptions{
		seed:   7,
		record: record,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		out:    &out,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a, &out
}

func TestApp_ResolveSet(t *testing.T) {
	a, _ := newTestApp(t, false)

	for _, arg := range []string{"PRE", "pre", " Premiere "} {
		s, err := a.resolveSet(arg)
		require.NoError(t, err, arg)
		assert.Equal(t, "PRE", s.Code)
	}

	_, err := a.resolveSet("XYZ")
	assert.True(t, errors.Is(err, catalog.ErrSetNotFound))
}

func TestApp_OpenPacksRecords(t *testing.T) {
	a, out := newTestApp(t, true)
	ctx := context.Background()

	var opened []events.PackOpenedEvent
	a.events.Register(events.NewFuncObserver("test", func(e events.Event) error {
		if p, ok := events.GetTypedData[events.PackOpenedEvent](e); ok {
			opened = append(opened, p)
		}
		return nil
	}, events.TypePackOpened))

	require.NoError(t, a.openPacks(ctx, "pre", 2))

	assert.Contains(t, out.String(), "PRE - Premiere, pack 1 (15 cards)")
	assert.Contains(t, out.String(), "PRE - Premiere, pack 2 (15 cards)")

	require.Len(t, opened, 2)
	assert.NotEmpty(t, opened[0].PackID)
	assert.Equal(t, 15, opened[0].NewCards, "every card of the first pack is new")

	view, err := a.collection(ctx)
	require.NoError(t, err)
	require.Len(t, view.Opens, 1)
	assert.Equal(t, 2, view.Opens[0].Opens)
	require.Len(t, view.Progress, 1)
	assert.Equal(t, 30, view.Progress[0].TotalPulled)
}

func TestApp_OpenWithoutRecording(t *testing.T) {
	a, out := newTestApp(t, false)

	require.NoError(t, a.openPacks(context.Background(), "PRE", 1))
	assert.Contains(t, out.String(), "pack 1")

	_, err := a.collection(context.Background())
	assert.Error(t, err)
}

func TestApp_OpenUnknownSet(t *testing.T) {
	a, _ := newTestApp(t, false)
	err := a.openPacks(context.Background(), "NOPE", 1)
	assert.True(t, errors.Is(err, catalog.ErrSetNotFound))
}

func TestApp_Simulate(t *testing.T) {
	a, _ := newTestApp(t, false)

	result, err := a.simulate(context.Background(), "PRE", 203, 4)
	require.NoError(t, err)

	assert.Equal(t, 203, result.Stats.Packs)
	assert.Equal(t, 203*15, result.Stats.Cards)
	assert.Equal(t, int64(203), result.Summary.Packs)
	assert.Equal(t, 203, result.Stats.PacksWith[packs.CategoryCommon])
	assert.Equal(t, int64(203*15), a.composer.Tracker().Stats().Records)
}

func TestApp_SimulateRejectsZeroPacks(t *testing.T) {
	a, _ := newTestApp(t, false)
	_, err := a.simulate(context.Background(), "PRE", 0, 2)
	assert.Error(t, err)
}

func TestApp_Shell(t *testing.T) {
	a, out := newTestApp(t, true)

	input := strings.Join([]string{
		"help",
		"open pre 2",
		"open pre zero",
		"collation",
		"collection",
		"reset",
		"reload",
		"bogus",
		"quit",
		"open pre 1",
	}, "\n")
	require.NoError(t, a.runShell(context.Background(), strings.NewReader(input)))

	text := out.String()
	assert.Contains(t, text, "pack 2 (15 cards)")
	assert.Contains(t, text, `invalid pack count "zero"`)
	assert.Contains(t, text, "Collation windows:")
	assert.Contains(t, text, "Collection")
	assert.Contains(t, text, "Collation history cleared")
	assert.Contains(t, text, `unknown command "bogus"`)

	view, err := a.collection(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, view.Opens[0].Opens, "commands after quit are not run")
}

func TestApp_ReloadKeepsCollation(t *testing.T) {
	a, _ := newTestApp(t, false)

	var reloaded int
	a.events.Register(events.NewFuncObserver("test", func(events.Event) error {
		reloaded++
		return nil
	}, events.TypeCatalogReloaded))

	require.NoError(t, a.openPacks(context.Background(), "PRE", 1))
	before := a.composer.Tracker().Stats().Records

	reg, err := a.loader.Load()
	require.NoError(t, err)
	a.reload(reg)

	assert.Equal(t, 1, reloaded)
	assert.Equal(t, before, a.composer.Tracker().Stats().Records)
	assert.Same(t, reg, a.composer.Registry())
}

func TestPrintSets(t *testing.T) {
	a, _ := newTestApp(t, false)

	var buf bytes.Buffer
	printSets(&buf, a.composer.Registry().Ordered(nil, nil))

	assert.Contains(t, buf.String(), "Premiere")
	assert.Contains(t, buf.String(), "standard")
	assert.Contains(t, buf.String(), "pack-art/PRE.png")
}

func TestApp_ListSets(t *testing.T) {
	a, _ := newTestApp(t, false)

	codes := func(sets []*catalog.Set) []string {
		var out []string
		for _, s := range sets {
			out = append(out, s.Code)
		}
		return out
	}

	tests := []struct {
		name     string
		virtual  []string
		physical []string
		virtOnly bool
		physOnly bool
		want     []string
	}{
		{"no filter", nil, nil, false, false, []string{"PRE"}},
		{"virtual keeps only the default virtual code", nil, nil, true, false, nil},
		{"virtual by configured code", []string{"pre"}, nil, true, false, []string{"PRE"}},
		{"empty physical list does not filter", nil, nil, false, true, []string{"PRE"}},
		{"physical excludes other sets", nil, []string{"QCM"}, false, true, nil},
		{"physical by code", nil, []string{"PRE"}, false, true, []string{"PRE"}},
		{"both filters intersect", []string{"PRE"}, []string{"QCM"}, true, true, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a.cfg.Products.VirtualSets = tt.virtual
			a.cfg.Products.PhysicalSets = tt.physical
			assert.Equal(t, tt.want, codes(a.listSets(tt.virtOnly, tt.physOnly)))
		})
	}
}

func TestApp_OwnedAndRecent(t *testing.T) {
	a, _ := newTestApp(t, true)
	ctx := context.Background()

	_, err := a.owned(ctx, "")
	require.NoError(t, err)

	require.NoError(t, a.openPacks(ctx, "PRE", 3))

	all, err := a.owned(ctx, "")
	require.NoError(t, err)
	bySet, err := a.owned(ctx, "premiere")
	require.NoError(t, err)
	assert.NotEmpty(t, all)
	assert.Equal(t, len(all), len(bySet))

	total := 0
	for _, c := range bySet {
		assert.Equal(t, "PRE", c.SetCode)
		total += c.Count
	}
	assert.Equal(t, 45, total)

	_, err = a.owned(ctx, "NOPE")
	assert.True(t, errors.Is(err, catalog.ErrSetNotFound))

	opened, err := a.recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, opened, 2)
	assert.Equal(t, "PRE", opened[0].SetCode)
	assert.Len(t, opened[0].CardIDs, 15)

	var buf bytes.Buffer
	printRecent(&buf, a.composer.Registry(), opened)
	assert.Contains(t, buf.String(), "Premiere")
	buf.Reset()
	printOwned(&buf, bySet)
	assert.Contains(t, buf.String(), "Owned cards")
}

func TestApp_OwnedWithoutDatabase(t *testing.T) {
	a, _ := newTestApp(t, false)

	_, err := a.owned(context.Background(), "PRE")
	assert.ErrorIs(t, err, errNoCollection)
	_, err = a.recent(context.Background(), 1)
	assert.ErrorIs(t, err, errNoCollection)
}

// endlessLines yields "open pre\n" forever.
type endlessLines struct{}

func (endlessLines) Read(p []byte) (int, error) {
	line := "open pre\n"
	n := 0
	for n+len(line) <= len(p) {
		n += copy(p[n:], line)
	}
	if n == 0 {
		n = copy(p, line)
	}
	return n, nil
}

func TestReadLines_StopsWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	lines := readLines(ctx, endlessLines{})

	assert.Equal(t, "open pre", <-lines)
	cancel()

	deadline := time.After(5 * time.Second)
	for {
		select {
		case _, ok := <-lines:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("line reader kept running after cancellation")
		}
	}
}

func TestApp_ShellSetsAndHistory(t *testing.T) {
	a, out := newTestApp(t, true)

	input := strings.Join([]string{
		"open pre 2",
		"sets physical",
		"sets bogus",
		"owned pre",
		"recent 1",
		"recent 0",
		"quit",
	}, "\n")
	require.NoError(t, a.runShell(context.Background(), strings.NewReader(input)))

	text := out.String()
	assert.Contains(t, text, "pack-art/PRE.png")
	assert.Contains(t, text, "usage: sets [virtual] [physical]")
	assert.Contains(t, text, "Owned cards")
	assert.Contains(t, text, "Recent packs")
	assert.Contains(t, text, `invalid pack count "0"`)
}

func TestRunOpenCommand_ReturnsErrors(t *testing.T) {
	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.Catalog.CardsFile = writeCatalog(t, dir)
	cfg.Catalog.SetsFile = ""
	cfg.Storage.DBPath = filepath.Join(dir, "collection.db")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := context.Background()

	err := runOpenCommand(ctx, cfg, logger, []string{"PRE", "-count", "0"})
	assert.ErrorContains(t, err, "at least 1")

	err = runOpenCommand(ctx, cfg, logger, []string{"NOPE"})
	assert.ErrorIs(t, err, catalog.ErrSetNotFound)

	// The database opened by the failed command was closed and stays usable.
	a, err := newApp(cfg, appOptions{record: true, logger: logger, out: io.Discard})
	require.NoError(t, err)
	_, err = a.collection(ctx)
	assert.NoError(t, err)
	require.NoError(t, a.Close())
}
