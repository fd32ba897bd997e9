package migratory

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Migration represents a single parsed migration file. Values are built
// once per run by Discover and never mutated afterwards.
type Migration struct {
	// Path is the file the migration was read from. Empty for the
	// built-in bootstrap migration.
	Path string

	// Number orders the migration in the linear chain. Number 0 is
	// reserved for the bootstrap migration and never read from disk.
	Number int

	// Name is the descriptive part of the filename.
	Name string

	// UpStatements apply the migration, in order.
	UpStatements []string

	// DownStatements reverse the migration. May be empty, in which
	// case rolling back only removes the ledger row.
	DownStatements []string
}

// fileNamePattern matches <number>-<name>.sql.
var fileNamePattern = regexp.MustCompile(`^(\d+)-(.+)\.sql$`)

// downMarker separates the up block from the optional down block. It
// must appear on a line of its own; case and surrounding whitespace are
// ignored.
const downMarker = "-- down"

// parseFileName extracts the number and name from a migration filename.
func parseFileName(base string) (number int, name string, ok bool) {
	m := fileNamePattern.FindStringSubmatch(base)
	if m == nil {
		return 0, "", false
	}
	number, err := strconv.Atoi(m[1])
	if err != nil {
		// Digit runs longer than an int are treated the same as a
		// non-numeric prefix.
		return 0, "", false
	}
	return number, m[2], true
}

// parseContent splits a migration body into up and down statement
// sequences. Everything above the first down marker is the up block;
// everything below it is the down block. A second marker is malformed.
func parseContent(path, content string) (up, down []string, err *Error) {
	var upLines, downLines []string
	seenMarker := false
	for _, line := range strings.Split(content, "\n") {
		if strings.EqualFold(strings.TrimSpace(line), downMarker) {
			if seenMarker {
				return nil, nil, contentError(path, "more than one down marker")
			}
			seenMarker = true
			continue
		}
		if seenMarker {
			downLines = append(downLines, line)
		} else {
			upLines = append(upLines, line)
		}
	}
	up = splitStatements(strings.Join(upLines, "\n"))
	down = splitStatements(strings.Join(downLines, "\n"))
	if len(up) == 0 {
		return nil, nil, contentError(path, "no up statements")
	}
	return up, down, nil
}

// splitStatements breaks a block on the ; terminator, dropping blanks.
func splitStatements(block string) []string {
	var stmts []string
	for _, raw := range strings.Split(block, ";") {
		stmt := strings.TrimSpace(raw)
		if stmt == "" {
			continue
		}
		stmts = append(stmts, stmt)
	}
	return stmts
}

// sortMigrationsAsc sorts migrations in ascending number order.
func sortMigrationsAsc(migs []Migration) {
	sort.Slice(migs, func(i, j int) bool {
		return migs[i].Number < migs[j].Number
	})
}

// sortMigrationsDesc sorts migrations in descending number order.
func sortMigrationsDesc(migs []Migration) {
	sort.Slice(migs, func(i, j int) bool {
		return migs[i].Number > migs[j].Number
	})
}

// MaxNumber returns the highest migration number in the set, or 0 for
// an empty set.
func MaxNumber(migs []Migration) int {
	max := 0
	for _, m := range migs {
		if m.Number > max {
			max = m.Number
		}
	}
	return max
}
