package migratory

import (
	"errors"
	"fmt"
	"strings"
)

// Kind identifies one failure class in the closed migration error set.
type Kind int

const (
	// KindEnvVar means the connection environment variable was not set.
	KindEnvVar Kind = iota
	// KindURL means the connection URL could not be parsed.
	KindURL
	// KindFile means a migration file could not be read.
	KindFile
	// KindFileName means a file in a migrations directory did not match
	// the <number>-<name>.sql pattern.
	KindFileName
	// KindContent means a migration file's body could not be parsed.
	KindContent
	// KindQuery wraps a driver-level query failure.
	KindQuery
	// KindTransaction wraps a driver-level transaction failure.
	KindTransaction
	// KindNotFound means a migration number has no matching file.
	KindNotFound
	// KindNoResult means the ledger table was unexpectedly empty.
	KindNoResult
	// KindSchemaQuery means the schema snapshot query failed.
	KindSchemaQuery
	// KindNothingToApply means the database is already at the requested
	// version.
	KindNothingToApply
	// KindCompound aggregates several errors from one scan.
	KindCompound
)

// Error is the single error type returned by every operation in this
// package. Kind selects the variant; the remaining fields are populated
// per kind. Compound errors carry their children in Errs.
type Error struct {
	Kind   Kind
	Path   string
	Number int
	Detail string
	Err    error
	Errs   []error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindEnvVar:
		return fmt.Sprintf("environment variable %s is not set", e.Detail)
	case KindURL:
		return fmt.Sprintf("malformed database URL: %s", e.Detail)
	case KindFile:
		return fmt.Sprintf("cannot read migration file %s: %v", e.Path, e.Err)
	case KindFileName:
		return fmt.Sprintf("migration file %s does not match <number>-<name>.sql", e.Path)
	case KindContent:
		return fmt.Sprintf("malformed migration file %s: %s", e.Path, e.Detail)
	case KindQuery:
		return fmt.Sprintf("query failed: %v", e.Err)
	case KindTransaction:
		return fmt.Sprintf("transaction failed: %v", e.Err)
	case KindNotFound:
		if e.Number == 0 {
			return "migration 0 is the built-in bootstrap and cannot be targeted"
		}
		return fmt.Sprintf("no migration numbered %d", e.Number)
	case KindNoResult:
		return "migration ledger is empty"
	case KindSchemaQuery:
		return fmt.Sprintf("schema snapshot query failed: %v", e.Err)
	case KindNothingToApply:
		return "no migration to apply: already up to date"
	case KindCompound:
		parts := make([]string, len(e.Errs))
		for i, child := range e.Errs {
			parts[i] = child.Error()
		}
		return "[" + strings.Join(parts, "; ") + "]"
	}
	return "unknown migration error"
}

// Unwrap exposes the wrapped driver error, if any.
func (e *Error) Unwrap() error { return e.Err }

// Is reports kind equality so callers can match with errors.Is against
// the exported sentinel values below.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// Sentinels for errors.Is kind matching. They carry no context of their
// own; concrete errors are always built with the constructors.
var (
	ErrEnvVar         = &Error{Kind: KindEnvVar}
	ErrURL            = &Error{Kind: KindURL}
	ErrFile           = &Error{Kind: KindFile}
	ErrFileName       = &Error{Kind: KindFileName}
	ErrContent        = &Error{Kind: KindContent}
	ErrQuery          = &Error{Kind: KindQuery}
	ErrTransaction    = &Error{Kind: KindTransaction}
	ErrNotFound       = &Error{Kind: KindNotFound}
	ErrNoResult       = &Error{Kind: KindNoResult}
	ErrSchemaQuery    = &Error{Kind: KindSchemaQuery}
	ErrNothingToApply = &Error{Kind: KindNothingToApply}
	ErrCompound       = &Error{Kind: KindCompound}
)

func envVarError(name string) *Error { return &Error{Kind: KindEnvVar, Detail: name} }
func urlError(detail string) *Error { return &Error{Kind: KindURL, Detail: detail} }
func fileError(path string, err error) *Error {
	return &Error{Kind: KindFile, Path: path, Err: err}
}
func fileNameError(path string) *Error { return &Error{Kind: KindFileName, Path: path} }
func contentError(path, detail string) *Error {
	return &Error{Kind: KindContent, Path: path, Detail: detail}
}
func queryError(err error) *Error { return &Error{Kind: KindQuery, Err: err} }
func transactionError(err error) *Error { return &Error{Kind: KindTransaction, Err: err} }
func notFoundError(number int) *Error { return &Error{Kind: KindNotFound, Number: number} }
func noResultError() *Error { return &Error{Kind: KindNoResult} }
func schemaQueryError(err error) *Error { return &Error{Kind: KindSchemaQuery, Err: err} }
func nothingToApplyError() *Error { return &Error{Kind: KindNothingToApply} }
func compoundError(errs []error) *Error { return &Error{Kind: KindCompound, Errs: errs} }

// Render writes err as a single human-readable diagnostic line. It is a
// presentation boundary only and makes no control-flow decisions.
func Render(err error) string {
	var me *Error
	if errors.As(err, &me) {
		return me.Error()
	}
	return err.Error()
}
