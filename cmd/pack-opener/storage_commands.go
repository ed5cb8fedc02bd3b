package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/ramonehamilton/stccg-pack-opener/internal/config"
	"github.com/ramonehamilton/stccg-pack-opener/internal/storage"
)

func resolveDBPath(cfg *config.Config) string {
	path, err := cfg.DBPath()
	if err != nil {
		log.Fatalf("Error resolving database path: %v", err)
	}
	return path
}

func runMigrationCommand(cfg *config.Config, args []string) {
	if len(args) == 0 {
		printMigrationUsage()
		os.Exit(1)
	}

	path := resolveDBPath(cfg)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		log.Fatalf("Error creating database directory: %v", err)
	}

	mgr, err := storage.NewMigrationManager(path)
	if err != nil {
		log.Fatalf("Error creating migration manager: %v", err)
	}
	defer func() {
		if err := mgr.Close(); err != nil {
			log.Printf("Error closing migration manager: %v", err)
		}
	}()

	switch args[0] {
	case "up":
		fmt.Println("Applying all pending migrations...")
		if err := mgr.Up(); err != nil {
			log.Fatalf("Error applying migrations: %v", err)
		}
		printMigrationVersion(mgr)
		fmt.Println("All migrations applied successfully!")

	case "down":
		fmt.Println("Rolling back last migration...")
		if err := mgr.Down(); err != nil {
			log.Fatalf("Error rolling back migration: %v", err)
		}
		printMigrationVersion(mgr)
		fmt.Println("Migration rolled back successfully!")

	case "status", "version":
		printMigrationVersion(mgr)

	case "force":
		if len(args) < 2 {
			fmt.Println("Error: force command requires a version number")
			fmt.Println("Usage: pack-opener migrate force <version>")
			os.Exit(1)
		}
		version, err := strconv.Atoi(args[1])
		if err != nil {
			log.Fatalf("Invalid version number: %v", err)
		}
		fmt.Printf("Forcing migration version to %d...\n", version)
		fmt.Println("WARNING: This does not run migrations, only sets the version.")
		if err := mgr.Force(version); err != nil {
			log.Fatalf("Error forcing version: %v", err)
		}
		fmt.Println("Version forced successfully!")

	default:
		fmt.Printf("Unknown migration command: %s\n\n", args[0])
		printMigrationUsage()
		os.Exit(1)
	}
}

func printMigrationVersion(mgr *storage.MigrationManager) {
	version, dirty, err := mgr.Version()
	if err != nil {
		log.Fatalf("Error getting version: %v", err)
	}
	if dirty {
		fmt.Printf("Current version: %d (dirty - migration failed or interrupted)\n", version)
		fmt.Println("Use 'migrate force <version>' to recover")
		return
	}
	fmt.Printf("Current version: %d\n", version)
}

func printMigrationUsage() {
	fmt.Println("Usage:")
	fmt.Println("  pack-opener migrate <command> [args]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  up                Apply all pending migrations")
	fmt.Println("  down              Roll back the last migration")
	fmt.Println("  status            Show current migration version")
	fmt.Println("  version           Alias for status")
	fmt.Println("  force <version>   Force set migration version (use with caution)")
}

// runBackupCommand handles backup and restore commands.
func runBackupCommand(ctx context.Context, cfg *config.Config, args []string) {
	path := resolveDBPath(cfg)

	command := "create"
	if len(args) > 0 {
		command = args[0]
		args = args[1:]
	}

	switch command {
	case "create":
		backupFlags := flag.NewFlagSet("create", flag.ExitOnError)
		dir := backupFlags.String("dir", "", "Backup directory (default: backups/ next to the database)")
		if err := backupFlags.Parse(args); err != nil {
			log.Fatalf("Error parsing flags: %v", err)
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			log.Fatalf("Database file does not exist: %s", path)
		}

		db, err := storage.Open(storage.DefaultConfig(path))
		if err != nil {
			log.Fatalf("Error opening database: %v", err)
		}
		defer func() {
			if err := db.Close(); err != nil {
				log.Printf("Error closing database: %v", err)
			}
		}()

		fmt.Println("Creating backup...")
		backupPath, err := db.Backup(ctx, *dir)
		if err != nil {
			log.Fatalf("Error creating backup: %v", err)
		}
		fmt.Printf("Backup created: %s\n", backupPath)

	case "list", "ls":
		backupFlags := flag.NewFlagSet("list", flag.ExitOnError)
		dir := backupFlags.String("dir", "", "Backup directory (default: backups/ next to the database)")
		if err := backupFlags.Parse(args); err != nil {
			log.Fatalf("Error parsing flags: %v", err)
		}
		if *dir == "" {
			*dir = storage.DefaultBackupDir(path)
		}

		backups, err := storage.ListBackups(*dir)
		if err != nil {
			log.Fatalf("Error listing backups: %v", err)
		}
		if len(backups) == 0 {
			fmt.Printf("No backups found in %s\n", *dir)
			return
		}

		fmt.Printf("Backups in %s:\n\n", *dir)
		for _, b := range backups {
			fmt.Printf("  %s\n", b.Name)
			fmt.Printf("    Created:  %s\n", b.ModTime.Format("2006-01-02 15:04:05"))
			fmt.Printf("    Size:     %d bytes\n", b.Size)
			fmt.Printf("    Checksum: %s\n", b.Checksum)
		}

	case "restore":
		if len(args) == 0 {
			fmt.Println("Error: restore requires a backup file")
			fmt.Println("Usage: pack-opener backup restore <file>")
			os.Exit(1)
		}

		fmt.Printf("Restoring %s to %s...\n", args[0], path)
		if err := storage.RestoreBackup(args[0], path); err != nil {
			log.Fatalf("Error restoring backup: %v", err)
		}
		fmt.Println("Backup restored successfully!")

	default:
		fmt.Printf("Unknown backup command: %s\n\n", command)
		fmt.Println("Usage: pack-opener backup [create [-dir D] | list [-dir D] | restore <file>]")
		os.Exit(1)
	}
}
