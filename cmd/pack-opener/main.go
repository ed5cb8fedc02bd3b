package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ramonehamilton/stccg-pack-opener/internal/config"
	"github.com/ramonehamilton/stccg-pack-opener/internal/events"
	"github.com/ramonehamilton/stccg-pack-opener/internal/version"
)

var (
	// Application mode flags
	debugMode      = flag.Bool("debug-mode", false, "Enable verbose debug logging")
	debugModeShort = flag.Bool("d", false, "Enable debug logging (shorthand for -debug-mode)")

	// Configuration flags
	configPath = flag.String("config", "", "Path to config.toml (default: ~/.stccg-pack-opener/config.toml)")
	cardsFile  = flag.String("cards", "", "Card catalog JSON file (overrides config)")
	setsFile   = flag.String("sets", "", "Set metadata JSON file (overrides config)")
	dbPath     = flag.String("db-path", "", "Collection database path (overrides config)")

	// Pack generation flags
	seed     = flag.Uint64("seed", 0, "Random seed for reproducible packs (0 = random)")
	noRecord = flag.Bool("no-record", false, "Open packs without adding them to the collection")
)

func main() {
	flag.Usage = printUsage
	flag.Parse()

	if *debugModeShort {
		*debugMode = true
	}

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}
	if cfg.App.DebugMode {
		*debugMode = true
	}
	logger := setupLogging(*debugMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Commands that hold the database return their error so it is closed
	// before the process exits.
	var cmdErr error
	switch args[0] {
	case "sets":
		cmdErr = runSetsCommand(cfg, logger, args[1:])
	case "open":
		cmdErr = runOpenCommand(ctx, cfg, logger, args[1:])
	case "simulate", "sim":
		cmdErr = runSimulateCommand(ctx, cfg, logger, args[1:])
	case "collection":
		cmdErr = runCollectionCommand(ctx, cfg, logger, args[1:])
	case "shell":
		cmdErr = runShellCommand(ctx, cfg, logger)
	case "migrate":
		runMigrationCommand(cfg, args[1:])
	case "backup":
		runBackupCommand(ctx, cfg, args[1:])
	case "version":
		fmt.Println("pack-opener", version.String())
	default:
		fmt.Printf("Unknown command: %s\n\n", args[0])
		printUsage()
		os.Exit(1)
	}

	if cmdErr != nil {
		stop()
		log.Fatalf("Error: %v", cmdErr)
	}
}

func printUsage() {
	fmt.Println("STCCG Pack Opener")
	fmt.Println("=================")
	fmt.Println()
	fmt.Println("Usage: pack-opener [flags] <command> [options]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  sets [-virtual] [-physical]")
	fmt.Println("                          - List openable sets in display order")
	fmt.Println("  open <SET> [-count N]   - Open packs and add them to the collection")
	fmt.Println("  simulate <SET>          - Open many packs and report pull rates")
	fmt.Println("  collection [-set S] [-recent N] [-chart F]")
	fmt.Println("                          - Show collection progress, owned cards or recent packs")
	fmt.Println("  shell                   - Interactive pack opening (reloads the catalog on change)")
	fmt.Println("  migrate <up|down|version|force N>")
	fmt.Println("                          - Manage the collection database schema")
	fmt.Println("  backup [create|list|restore <file>]")
	fmt.Println("                          - Back up or restore the collection database")
	fmt.Println("  version                 - Print the version")
	fmt.Println()
	fmt.Println("Flags:")
	flag.PrintDefaults()
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  pack-opener sets")
	fmt.Println("  pack-opener open PRE -count 3")
	fmt.Println("  pack-opener -seed 42 simulate QCM -packs 10000 -workers 4 -chart qcm.html")
	fmt.Println("  pack-opener backup create")
	fmt.Println()
}

// loadConfig reads the config file and applies flag overrides.
func loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if *configPath != "" {
		cfg, err = config.LoadFrom(*configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	if *cardsFile != "" {
		cfg.Catalog.CardsFile = *cardsFile
	}
	if *setsFile != "" {
		cfg.Catalog.SetsFile = *setsFile
	}
	if *dbPath != "" {
		cfg.Storage.DBPath = *dbPath
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setupLogging installs a text slog handler on stderr.
func setupLogging(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}

// mustApp builds the app or exits.
func mustApp(cfg *config.Config, logger *slog.Logger, record bool) *app {
	a, err := newApp(cfg, appOptions{
		seed:   *seed,
		record: record,
		logger: logger,
		out:    os.Stdout,
	})
	if err != nil {
		log.Fatalf("Error: %v", err)
	}

	a.events.Register(events.NewFuncObserver("console", func(e events.Event) error {
		c, ok := events.GetTypedData[events.RarityCompletedEvent](e)
		if !ok {
			return errors.New("unexpected completion payload")
		}
		printCompletion(os.Stdout, c.SetName, c.Category, c.CardCount)
		return nil
	}, events.TypeRarityCompleted))

	return a
}

func closeApp(a *app) {
	if err := a.Close(); err != nil {
		log.Printf("Error closing database: %v", err)
	}
}
