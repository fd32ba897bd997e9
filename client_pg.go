package migratory

import (
	"fmt"
	"strings"
)

// PostgresClient implements Client for PostgreSQL.
type PostgresClient struct {
	baseClient
}

// NewPostgresClient creates a new PostgresClient.
func NewPostgresClient(cfg Config) *PostgresClient {
	return &PostgresClient{baseClient: baseClient{cfg: cfg}}
}

// quotedLedgerTable quotes each dotted part of the table name so a
// schema-qualified ledger works.
func (c *PostgresClient) quotedLedgerTable() string {
	parts := strings.Split(c.cfg.LedgerTable, ".")
	for i, part := range parts {
		parts[i] = fmt.Sprintf(`"%s"`, part)
	}
	return strings.Join(parts, ".")
}

// CreateLedgerSQL creates the ledger table. The appliedAt column is
// quoted to keep the mixed-case name exact.
func (c *PostgresClient) CreateLedgerSQL() string {
	return fmt.Sprintf(`
      CREATE TABLE IF NOT EXISTS %s (
        id BIGINT PRIMARY KEY,
        name TEXT NOT NULL,
        "appliedAt" TIMESTAMPTZ NOT NULL DEFAULT NOW()
      );`, c.quotedLedgerTable())
}

// BootstrapInsertSQL records migration 0, tolerating reruns.
func (c *PostgresClient) BootstrapInsertSQL() string {
	return fmt.Sprintf(`
      INSERT INTO %s (id, name)
      VALUES (0, '%s')
      ON CONFLICT (id) DO NOTHING;`, c.quotedLedgerTable(), BootstrapName)
}

// LastAppliedSQL selects the current version row.
func (c *PostgresClient) LastAppliedSQL() string {
	return fmt.Sprintf(`
      SELECT id, name
      FROM %s
      ORDER BY id DESC
      LIMIT 1;`, c.quotedLedgerTable())
}

// RecordSQL inserts a ledger row for an applied migration.
func (c *PostgresClient) RecordSQL() string {
	return fmt.Sprintf(`INSERT INTO %s (id, name) VALUES ($1, $2);`, c.quotedLedgerTable())
}

// EraseSQL deletes the ledger row for a rolled-back migration.
func (c *PostgresClient) EraseSQL() string {
	return fmt.Sprintf(`DELETE FROM %s WHERE id = $1;`, c.quotedLedgerTable())
}

// EntriesSQL lists the full ledger, oldest migration first.
func (c *PostgresClient) EntriesSQL() string {
	return fmt.Sprintf(`
      SELECT id, name, "appliedAt"::TEXT
      FROM %s
      ORDER BY id ASC;`, c.quotedLedgerTable())
}

// SchemaSQL lists every public column with its type, in a stable order.
func (c *PostgresClient) SchemaSQL() string {
	return `
      SELECT table_name, column_name, data_type
      FROM information_schema.columns
      WHERE table_schema = 'public'
      ORDER BY table_name, ordinal_position;`
}
