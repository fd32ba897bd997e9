// SPDX-License-Identifier: MIT

// Package migratory applies and reverses versioned SQL schema changes,
// tracking applied state in a ledger table owned by the target
// database.  Migrations live in files named <number>-<name>.sql inside
// any directory called "migrations" under the project root; each file
// holds an up block and an optional down block separated by a "-- down"
// marker line.
//
// A thin dialect layer (currently PostgreSQL and SQLite) supplies SQL
// differences.  The companion CLI lives under cmd/migratory; the core
// logic is here.
//
// # Quick start
//
//	import (
//	    "context"
//	    "database/sql"
//
//	    _ "github.com/jackc/pgx/v5/stdlib" // or mattn/go-sqlite3
//	    "github.com/migratory/migratory"
//	)
//
//	func main() {
//	    cfg, _ := migratory.ConfigFromEnv() // reads DATABASE_URL
//	    db, _ := sql.Open(cfg.DriverName(), cfg.DSN())
//
//	    eng, _ := migratory.NewEngine(cfg, db)
//	    eng.ToLast(context.Background())
//	}
//
// # Migration files
//
//	migrations/1-create-users.sql:
//
//	    CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT);
//	    -- down
//	    DROP TABLE users;
//
// Numbers form an unbroken chain 1, 2, 3, …; gaps are an error.  Number
// 0 is the built-in bootstrap migration that creates the ledger table
// itself and is applied at the start of every run, so no separate
// initialize step exists.
//
// # Programmatic API
//
//	NewEngine(cfg, db)          → *Engine
//	(*Engine).Up(ctx)           → []Migration, error
//	(*Engine).Down(ctx)         → []Migration, error
//	(*Engine).To(ctx, n)        → []Migration, error
//	(*Engine).ToLast(ctx)       → []Migration, error
//	(*Engine).Version(ctx)      → int, string, error
//	(*Engine).WriteSnapshot(ctx, path) → error
//
// Every migration runs in its own transaction together with its ledger
// mutation; a multi-migration run stops at the first failure and never
// compensates migrations that already committed.  The ledger then
// reflects exactly the migrations that committed, which is the recovery
// point for a retried run.
//
// # Errors
//
// All failures are *Error values from a closed kind set.  Match kinds
// with errors.Is against the exported sentinels (ErrNotFound,
// ErrNothingToApply, …); render one diagnostic line with Render.
// Compound errors from a directory scan render as a bracketed list.
package migratory
