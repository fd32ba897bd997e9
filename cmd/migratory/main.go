// Package main implements the migratory CLI.
// It accepts a connection URL via the -conn flag or the DATABASE_URL
// environment variable, dispatches the migration commands, and writes a
// schema snapshot after every successful mutating command.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	_ "github.com/mattn/go-sqlite3"    // SQLite driver

	"github.com/migratory/migratory"
)

const version = "1.0.0"

// usage prints the help text.
func usage() {
	header := `Usage:
  migratory [command] [arguments] [options]

Commands:
  show          Print the current database version.
  up            Apply the next migration.
  down          Roll back the most recent migration.
  last          Apply every migration newer than the current version.
  to <N>        Migrate (or roll back) to version N.
  new <desc>    Scaffold the next migration file with the provided description.

Options:`
	fmt.Fprintln(os.Stderr, header)
	flag.PrintDefaults()
}

func main() {
	connStr := flag.String("conn", "", "Database connection URL. Overrides DATABASE_URL.")
	root := flag.String("root", ".", "Project root scanned for migrations directories")
	ledgerTable := flag.String("ledger-table", "", "Name of the applied-migrations table (default: \"migrations\")")
	snapshotPath := flag.String("snapshot", "", "Path of the schema snapshot file (default: \"schema.sql\")")
	noSnapshot := flag.Bool("no-snapshot", false, "Skip writing the schema snapshot after mutating commands")
	helpFlag := flag.Bool("help", false, "Show help message")
	versionFlag := flag.Bool("version", false, "Show version")

	flag.Usage = usage
	flag.Parse()

	if *helpFlag {
		usage()
		os.Exit(0)
	}
	if *versionFlag {
		fmt.Println("migratory version:", version)
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) < 1 {
		usage()
		os.Exit(0)
	}
	command := args[0]

	cfg := migratory.Config{
		Root:         *root,
		LedgerTable:  *ledgerTable,
		SnapshotPath: *snapshotPath,
	}

	switch command {
	case "show":
		withDB(cfg, *connStr, func(ctx context.Context, eng *migratory.Engine) {
			number, name, err := eng.Version(ctx)
			if err != nil {
				fail(err)
			}
			if number == 0 {
				fmt.Println("No migrations applied yet.")
			} else {
				fmt.Printf("Current version: %d (%s)\n", number, name)
			}
			entries, err := eng.History(ctx)
			if err != nil {
				fail(err)
			}
			for _, entry := range entries {
				if entry.Number == 0 {
					continue
				}
				fmt.Printf("  - Version %d: %s (applied %s)\n", entry.Number, entry.Name, entry.AppliedAt)
			}
		})
	case "up":
		runMutation(cfg, *connStr, *noSnapshot, "Applying next migration", func(ctx context.Context, eng *migratory.Engine) ([]migratory.Migration, error) {
			return eng.Up(ctx)
		})
	case "down":
		runMutation(cfg, *connStr, *noSnapshot, "Rolling back most recent migration", func(ctx context.Context, eng *migratory.Engine) ([]migratory.Migration, error) {
			return eng.Down(ctx)
		})
	case "last":
		runMutation(cfg, *connStr, *noSnapshot, "Migrating to the latest version", func(ctx context.Context, eng *migratory.Engine) ([]migratory.Migration, error) {
			return eng.ToLast(ctx)
		})
	case "to":
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, "Error: the to command requires a target version.")
			usage()
			os.Exit(0)
		}
		target, err := strconv.Atoi(args[1])
		if err != nil || target < 0 {
			fmt.Fprintf(os.Stderr, "Invalid target version: %s\n", args[1])
			usage()
			os.Exit(0)
		}
		runMutation(cfg, *connStr, *noSnapshot, fmt.Sprintf("Migrating to version %d", target), func(ctx context.Context, eng *migratory.Engine) ([]migratory.Migration, error) {
			return eng.To(ctx, target)
		})
	case "new":
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, "Error: a description is required for the new command.")
			usage()
			os.Exit(0)
		}
		path, err := migratory.CreateMigration(migratory.Config{Root: *root}, args[1])
		if err != nil {
			fail(err)
		}
		fmt.Printf("[%s] Created %s\n", time.Now().Format(time.Kitchen), path)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		usage()
		os.Exit(0)
	}
}

// runMutation runs a mutating command, reports the migrations it moved
// through, and refreshes the schema snapshot on success.
func runMutation(cfg migratory.Config, flagConn string, noSnapshot bool, banner string, op func(context.Context, *migratory.Engine) ([]migratory.Migration, error)) {
	withDB(cfg, flagConn, func(ctx context.Context, eng *migratory.Engine) {
		fmt.Printf("[%s] %s...\n", time.Now().Format(time.Kitchen), banner)
		moved, err := op(ctx, eng)
		if err != nil {
			// Migrations committed before the failure stay committed.
			for _, m := range moved {
				fmt.Printf("  - Version %d: %s (%s)\n", m.Number, m.Name, m.Path)
			}
			fail(err)
		}
		fmt.Printf("[%s] Ran %d migration(s):\n", time.Now().Format(time.Kitchen), len(moved))
		for _, m := range moved {
			fmt.Printf("  - Version %d: %s (%s)\n", m.Number, m.Name, m.Path)
		}
		if !noSnapshot {
			if err := eng.WriteSnapshot(ctx, snapshotTarget(cfg)); err != nil {
				fail(err)
			}
			fmt.Printf("[%s] Schema snapshot written to %s\n", time.Now().Format(time.Kitchen), snapshotTarget(cfg))
		}
	})
}

// withDB resolves configuration, opens the database connection, and
// calls f with an initialized engine.
func withDB(cfg migratory.Config, flagConn string, f func(ctx context.Context, eng *migratory.Engine)) {
	// Precedence: flag > env.
	cfg.DatabaseURL = firstNonEmpty(flagConn, os.Getenv("DATABASE_URL"))
	if cfg.DatabaseURL == "" {
		fmt.Fprintln(os.Stderr, "Error: connection URL must be provided via -conn flag or DATABASE_URL env var")
		usage()
		os.Exit(1)
	}
	cfg, err := cfg.Resolve()
	if err != nil {
		fail(err)
	}

	db, err := sql.Open(cfg.DriverName(), cfg.DSN())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	eng, err := migratory.NewEngine(cfg, db)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing migratory: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	f(ctx, eng)
}

// snapshotTarget applies the snapshot path default.
func snapshotTarget(cfg migratory.Config) string {
	if cfg.SnapshotPath != "" {
		return cfg.SnapshotPath
	}
	return migratory.DefaultConfig.SnapshotPath
}

// fail renders the error and exits non-zero.
func fail(err error) {
	fmt.Fprintln(os.Stderr, migratory.Render(err))
	os.Exit(1)
}

// firstNonEmpty returns the first non-empty string in the provided list.
func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
