package migratory

import (
	"context"
	"database/sql"
)

// Engine is the migration executor. It discovers migration files,
// reads the ledger's current version, computes which migrations to run
// in which direction, and drives each through its own transaction.
//
// Runs are strictly sequential: one connection, one transaction per
// migration, stop at the first failure. Already-committed migrations
// stay committed; the ledger is the recovery point for a retried run.
type Engine struct {
	cfg        Config
	db         *sql.DB
	client     Client
	ledger     *Ledger
	migrations []Migration
}

// NewEngine creates an Engine over an open database connection.
func NewEngine(cfg Config, db *sql.DB) (*Engine, error) {
	if cfg.LedgerTable == "" {
		cfg.LedgerTable = DefaultConfig.LedgerTable
	}
	if cfg.Root == "" {
		cfg.Root = DefaultConfig.Root
	}
	client, err := NewClient(cfg)
	if err != nil {
		return nil, err
	}
	return &Engine{
		cfg:    cfg,
		db:     db,
		client: client,
		ledger: NewLedger(db, client),
	}, nil
}

// Migrations returns the discovered migration set, scanning the
// configured root on first use.
func (e *Engine) Migrations() ([]Migration, error) {
	if e.migrations == nil {
		migs, err := Discover(e.cfg.Root)
		if err != nil {
			return nil, err
		}
		e.migrations = migs
	}
	return e.migrations, nil
}

// bootstrap applies migration 0: create the ledger table if missing and
// record row 0. Both statements are idempotent and run in one
// transaction, so every entry point can call this unconditionally.
func (e *Engine) bootstrap(ctx context.Context) error {
	return e.inTransaction(ctx, func(tx *sql.Tx) error {
		for _, stmt := range []string{e.client.CreateLedgerSQL(), e.client.BootstrapInsertSQL()} {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return queryError(err)
			}
		}
		return nil
	})
}

// Version bootstraps and returns the current version number and name.
func (e *Engine) Version(ctx context.Context) (int, string, error) {
	if err := e.bootstrap(ctx); err != nil {
		return 0, "", err
	}
	return e.ledger.LastApplied(ctx)
}

// History bootstraps and returns every ledger entry, including the
// bootstrap row, oldest first.
func (e *Engine) History(ctx context.Context) ([]LedgerEntry, error) {
	if err := e.bootstrap(ctx); err != nil {
		return nil, err
	}
	return e.ledger.Entries(ctx)
}

// Up applies the single next migration. If the chain has no migration
// past the current version, the run fails with nothing-to-apply.
func (e *Engine) Up(ctx context.Context) ([]Migration, error) {
	current, migs, err := e.prepare(ctx)
	if err != nil {
		return nil, err
	}
	next, err := Find(migs, current+1)
	if err != nil {
		return nil, nothingToApplyError()
	}
	if err := e.apply(ctx, next); err != nil {
		return nil, err
	}
	return []Migration{next}, nil
}

// Down rolls back the single most recent migration, returning the
// database to the previous version. Rolling back past the bootstrap is
// a not-found error for migration 0.
func (e *Engine) Down(ctx context.Context) ([]Migration, error) {
	current, migs, err := e.prepare(ctx)
	if err != nil {
		return nil, err
	}
	if current == 0 {
		return nil, notFoundError(0)
	}
	target, err := Find(migs, current)
	if err != nil {
		return nil, err
	}
	if err := e.rollback(ctx, target); err != nil {
		return nil, err
	}
	return []Migration{target}, nil
}

// To moves the database to version n, applying ascending when n is
// ahead of the current version and rolling back descending when it is
// behind. n equal to the current version is a no-op: zero transactions.
func (e *Engine) To(ctx context.Context, n int) ([]Migration, error) {
	current, migs, err := e.prepare(ctx)
	if err != nil {
		return nil, err
	}
	return e.traverse(ctx, migs, current, n)
}

// ToLast moves the database to the highest discovered migration. When
// nothing newer than the current version exists, the run fails with
// nothing-to-apply and performs no mutations.
func (e *Engine) ToLast(ctx context.Context) ([]Migration, error) {
	current, migs, err := e.prepare(ctx)
	if err != nil {
		return nil, err
	}
	last := MaxNumber(migs)
	if last <= current {
		return nil, nothingToApplyError()
	}
	return e.traverse(ctx, migs, current, last)
}

// prepare is the shared entry sequence: bootstrap, load the migration
// set, read the current version.
func (e *Engine) prepare(ctx context.Context) (int, []Migration, error) {
	if err := e.bootstrap(ctx); err != nil {
		return 0, nil, err
	}
	migs, err := e.Migrations()
	if err != nil {
		return 0, nil, err
	}
	current, _, err := e.ledger.LastApplied(ctx)
	if err != nil {
		return 0, nil, err
	}
	return current, migs, nil
}

// traverse runs the migrations between from and to, already ordered for
// the direction of travel. Execution stops at the first failure; the
// migrations committed so far are returned alongside the error.
func (e *Engine) traverse(ctx context.Context, migs []Migration, from, to int) ([]Migration, error) {
	plan, err := Between(migs, from, to)
	if err != nil {
		return nil, err
	}
	var done []Migration
	for _, m := range plan {
		if to > from {
			err = e.apply(ctx, m)
		} else {
			err = e.rollback(ctx, m)
		}
		if err != nil {
			return done, err
		}
		done = append(done, m)
	}
	return done, nil
}

// apply runs one migration's up statements plus its ledger insert as a
// single transaction.
func (e *Engine) apply(ctx context.Context, m Migration) error {
	return e.inTransaction(ctx, func(tx *sql.Tx) error {
		for _, stmt := range m.UpStatements {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return queryError(err)
			}
		}
		return e.ledger.Record(ctx, tx, m.Number, m.Name)
	})
}

// rollback runs one migration's down statements plus its ledger delete
// as a single transaction. A migration with no down block degrades to
// deleting only the ledger row.
func (e *Engine) rollback(ctx context.Context, m Migration) error {
	return e.inTransaction(ctx, func(tx *sql.Tx) error {
		for _, stmt := range m.DownStatements {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return queryError(err)
			}
		}
		return e.ledger.Erase(ctx, tx, m.Number)
	})
}

// inTransaction runs fn inside a transaction, rolling back on any error
// and committing only on full success.
func (e *Engine) inTransaction(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return transactionError(err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return transactionError(err)
	}
	return nil
}
