package migratory

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
)

// Snapshot writes a plain-text description of the database's current
// schema to w, one line per row of the dialect's schema query.
func (e *Engine) Snapshot(ctx context.Context, w io.Writer) error {
	rows, err := e.db.QueryContext(ctx, e.client.SchemaSQL())
	if err != nil {
		return schemaQueryError(err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return schemaQueryError(err)
	}
	values := make([]any, len(cols))
	for i := range values {
		values[i] = new(string)
	}
	for rows.Next() {
		if err := rows.Scan(values...); err != nil {
			return schemaQueryError(err)
		}
		fields := make([]string, len(values))
		for i, v := range values {
			fields[i] = *(v.(*string))
		}
		if _, err := fmt.Fprintln(w, strings.Join(fields, "\t")); err != nil {
			return schemaQueryError(err)
		}
	}
	if err := rows.Err(); err != nil {
		return schemaQueryError(err)
	}
	return nil
}

// WriteSnapshot overwrites path with the current schema description.
// The CLI calls this after every successful mutating command.
func (e *Engine) WriteSnapshot(ctx context.Context, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fileError(path, err)
	}
	if err := e.Snapshot(ctx, f); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fileError(path, err)
	}
	return nil
}
