package migratory

import (
	"context"
	"database/sql"
	"errors"
)

// BootstrapName is the recorded name of the built-in migration 0, which
// creates the ledger table itself.
const BootstrapName = "CreateMigrationsTable"

// LedgerEntry is one row of the applied-migrations table: the migration
// number, its name, and when it was applied.
type LedgerEntry struct {
	Number    int
	Name      string
	AppliedAt string
}

// Ledger reads and mutates the applied-migrations table. Reads run on
// the shared connection; mutations run inside the transaction of the
// migration they belong to.
type Ledger struct {
	db     *sql.DB
	client Client
}

// NewLedger creates a Ledger over an open connection.
func NewLedger(db *sql.DB, client Client) *Ledger {
	return &Ledger{db: db, client: client}
}

// LastApplied returns the number and name of the current version: the
// ledger row with the highest migration number. An empty table is a
// no-result error; callers bootstrap before reading, so row 0 always
// exists in normal operation.
func (l *Ledger) LastApplied(ctx context.Context) (int, string, error) {
	var number int
	var name string
	err := l.db.QueryRowContext(ctx, l.client.LastAppliedSQL()).Scan(&number, &name)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, "", noResultError()
	}
	if err != nil {
		return 0, "", queryError(err)
	}
	return number, name, nil
}

// Entries returns every ledger row, oldest migration first.
func (l *Ledger) Entries(ctx context.Context) ([]LedgerEntry, error) {
	rows, err := l.db.QueryContext(ctx, l.client.EntriesSQL())
	if err != nil {
		return nil, queryError(err)
	}
	defer rows.Close()

	var entries []LedgerEntry
	for rows.Next() {
		var e LedgerEntry
		if err := rows.Scan(&e.Number, &e.Name, &e.AppliedAt); err != nil {
			return nil, queryError(err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, queryError(err)
	}
	return entries, nil
}

// Record inserts the ledger row for an applied migration within tx.
func (l *Ledger) Record(ctx context.Context, tx *sql.Tx, number int, name string) error {
	if _, err := tx.ExecContext(ctx, l.client.RecordSQL(), number, name); err != nil {
		return queryError(err)
	}
	return nil
}

// Erase deletes the ledger row for a rolled-back migration within tx.
func (l *Ledger) Erase(ctx context.Context, tx *sql.Tx, number int) error {
	if _, err := tx.ExecContext(ctx, l.client.EraseSQL(), number); err != nil {
		return queryError(err)
	}
	return nil
}
