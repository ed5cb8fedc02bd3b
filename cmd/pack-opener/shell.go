package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/ramonehamilton/stccg-pack-opener/internal/catalog"
	"github.com/ramonehamilton/stccg-pack-opener/internal/config"
	"github.com/ramonehamilton/stccg-pack-opener/internal/events"
)

func runShellCommand(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	a := mustApp(cfg, logger, !*noRecord)
	defer closeApp(a)

	a.events.Register(events.NewFuncObserver("shell-reload", func(e events.Event) error {
		if r, ok := events.GetTypedData[events.CatalogReloadedEvent](e); ok {
			fmt.Printf("\nCatalog reloaded: %d sets, %d cards\n> ", r.Sets, r.Cards)
		}
		return nil
	}, events.TypeCatalogReloaded))

	if cfg.Catalog.Watch {
		watcher := catalog.NewWatcher(a.loader, a.reload, logger)
		go func() {
			if err := watcher.Run(ctx); err != nil {
				logger.Error("catalog watcher stopped", "error", err)
			}
		}()
	}

	fmt.Println("STCCG Pack Opener - type 'help' for commands")
	return a.runShell(ctx, os.Stdin)
}

// runShell reads commands from in until quit, EOF or cancellation.
// Command errors are printed and do not end the session.
func (a *app) runShell(ctx context.Context, in io.Reader) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := readLines(ctx, in)

	for {
		fmt.Fprint(a.out, "> ")
		select {
		case <-ctx.Done():
			fmt.Fprintln(a.out)
			return nil
		case line, ok := <-lines:
			if !ok {
				fmt.Fprintln(a.out)
				return nil
			}
			quit, err := a.shellCommand(ctx, strings.Fields(line))
			if err != nil {
				fmt.Fprintf(a.out, "Error: %v\n", err)
			}
			if quit {
				return nil
			}
		}
	}
}

// readLines sends the lines of in until EOF or ctx is done, then closes the
// channel.
func readLines(ctx context.Context, in io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()
	return lines
}

func (a *app) shellCommand(ctx context.Context, fields []string) (quit bool, err error) {
	if len(fields) == 0 {
		return false, nil
	}

	switch strings.ToLower(fields[0]) {
	case "quit", "exit", "q":
		return true, nil

	case "help", "?":
		fmt.Fprintln(a.out, "Commands:")
		fmt.Fprintln(a.out, "  open <SET> [N]   Open N packs (default 1)")
		fmt.Fprintln(a.out, "  sets             List sets")
		fmt.Fprintln(a.out, "  collection       Show collection progress")
		fmt.Fprintln(a.out, "  collation        Show collation tracker state")
		fmt.Fprintln(a.out, "  reset            Clear collation history")
		fmt.Fprintln(a.out, "  reload           Reload the catalog files")
		fmt.Fprintln(a.out, "  quit             Leave the shell")

	case "open", "o":
		if len(fields) < 2 {
			return false, fmt.Errorf("usage: open <SET> [N]")
		}
		count := 1
		if len(fields) > 2 {
			if count, err = strconv.Atoi(fields[2]); err != nil || count < 1 {
				return false, fmt.Errorf("invalid pack count %q", fields[2])
			}
		}
		return false, a.openPacks(ctx, fields[1], count)

	case "sets":
		var virtualOnly, physicalOnly bool
		for _, f := range fields[1:] {
			switch strings.ToLower(f) {
			case "virtual":
				virtualOnly = true
			case "physical":
				physicalOnly = true
			default:
				return false, fmt.Errorf("usage: sets [virtual] [physical]")
			}
		}
		printSets(a.out, a.listSets(virtualOnly, physicalOnly))

	case "owned":
		setArg := ""
		if len(fields) > 1 {
			setArg = strings.Join(fields[1:], " ")
		}
		cards, err := a.owned(ctx, setArg)
		if err != nil {
			return false, err
		}
		printOwned(a.out, cards)

	case "recent":
		n := 5
		if len(fields) > 1 {
			if n, err = strconv.Atoi(fields[1]); err != nil || n < 1 {
				return false, fmt.Errorf("invalid pack count %q", fields[1])
			}
		}
		opened, err := a.recent(ctx, n)
		if err != nil {
			return false, err
		}
		printRecent(a.out, a.composer.Registry(), opened)

	case "collection":
		view, err := a.collection(ctx)
		if err != nil {
			return false, err
		}
		printCollection(a.out, a.composer.Registry(), view)

	case "collation":
		stats := a.composer.Tracker().Stats()
		fmt.Fprintf(a.out, "Collation windows: %d, records: %d, evictions: %d, filtered: %d, starved: %d\n",
			stats.Keys, stats.Records, stats.Evictions, stats.Filtered, stats.Starved)

	case "reset":
		a.composer.ResetCollation()
		fmt.Fprintln(a.out, "Collation history cleared")

	case "reload":
		reg, err := a.loader.Load()
		if err != nil {
			return false, err
		}
		a.reload(reg)

	default:
		return false, fmt.Errorf("unknown command %q, type 'help'", fields[0])
	}
	return false, nil
}
