package migratory

import (
	"fmt"
	"strings"
)

// Client supplies the SQL dialect differences between supported
// databases: ledger DDL, ledger queries, and the schema description
// query used for snapshots. Execution is owned by Ledger and Engine.
type Client interface {
	// CreateLedgerSQL creates the ledger table if it does not exist.
	CreateLedgerSQL() string

	// BootstrapInsertSQL idempotently inserts the row for migration 0.
	BootstrapInsertSQL() string

	// LastAppliedSQL selects (id, name) of the current version.
	LastAppliedSQL() string

	// RecordSQL inserts a ledger row; placeholders take (id, name).
	RecordSQL() string

	// EraseSQL deletes a ledger row; the placeholder takes id.
	EraseSQL() string

	// EntriesSQL selects (id, name, appliedAt) for every applied
	// migration, ascending.
	EntriesSQL() string

	// SchemaSQL describes the database's current schema.
	SchemaSQL() string
}

// NewClient creates a Client for the configured driver.
func NewClient(cfg Config) (Client, error) {
	switch strings.ToLower(cfg.Driver) {
	case "pg":
		return NewPostgresClient(cfg), nil
	case "sqlite3":
		return NewSqlite3Client(cfg), nil
	default:
		return nil, fmt.Errorf("db driver '%s' not supported. Must be one of: sqlite3 or pg", cfg.Driver)
	}
}

// baseClient provides the pieces shared by both dialects.
type baseClient struct {
	cfg Config
}

// quotedLedgerTable returns the ledger table name as provided. Dialects
// override this when identifiers need quoting.
func (c *baseClient) quotedLedgerTable() string {
	return c.cfg.LedgerTable
}
