package migratory

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Discover walks root for directories named "migrations" and parses
// every .sql file inside them into a Migration, sorted ascending by
// number. Bad files do not short-circuit the scan; all failures from
// one pass are aggregated into a single compound error so the user sees
// every problem at once.
func Discover(root string) ([]Migration, error) {
	var migrations []Migration
	var bad []error
	seen := make(map[int]string)

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			bad = append(bad, fileError(path, walkErr))
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if !d.IsDir() || d.Name() != "migrations" {
			return nil
		}
		entries, readErr := os.ReadDir(path)
		if readErr != nil {
			bad = append(bad, fileError(path, readErr))
			return fs.SkipDir
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			file := filepath.Join(path, entry.Name())
			mig, perr := loadMigration(file, entry.Name())
			if perr != nil {
				bad = append(bad, perr)
				continue
			}
			if prev, dup := seen[mig.Number]; dup {
				bad = append(bad, contentError(file, fmt.Sprintf("duplicate migration number %d, already used by %s", mig.Number, prev)))
				continue
			}
			seen[mig.Number] = file
			migrations = append(migrations, mig)
		}
		return fs.SkipDir
	})
	if err != nil {
		return nil, fileError(root, err)
	}
	if len(bad) > 0 {
		return nil, compoundError(bad)
	}
	sortMigrationsAsc(migrations)
	return migrations, nil
}

// loadMigration parses one migration file.
func loadMigration(path, base string) (Migration, *Error) {
	number, name, ok := parseFileName(base)
	if !ok {
		return Migration{}, fileNameError(path)
	}
	if number == 0 {
		return Migration{}, contentError(path, "migration number 0 is reserved for the bootstrap migration")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Migration{}, fileError(path, err)
	}
	up, down, perr := parseContent(path, string(data))
	if perr != nil {
		return Migration{}, perr
	}
	return Migration{
		Path:           path,
		Number:         number,
		Name:           name,
		UpStatements:   up,
		DownStatements: down,
	}, nil
}

// Find returns the migration with the exact number, or a not-found
// error when the set has no such migration.
func Find(migs []Migration, number int) (Migration, error) {
	for _, m := range migs {
		if m.Number == number {
			return m, nil
		}
	}
	return Migration{}, notFoundError(number)
}

// Between returns the migrations to traverse from version from to
// version to: ascending over (from, to] when to > from, descending over
// (to, from] when to < from, and empty when the versions are equal. The
// chain is assumed contiguous; any missing number inside the range is a
// not-found error for that number.
func Between(migs []Migration, from, to int) ([]Migration, error) {
	if from == to {
		return nil, nil
	}
	var ordered []Migration
	if to > from {
		for n := from + 1; n <= to; n++ {
			m, err := Find(migs, n)
			if err != nil {
				return nil, err
			}
			ordered = append(ordered, m)
		}
		return ordered, nil
	}
	for n := from; n > to; n-- {
		m, err := Find(migs, n)
		if err != nil {
			return nil, err
		}
		ordered = append(ordered, m)
	}
	return ordered, nil
}
