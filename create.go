package migratory

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// CreateMigration scaffolds the next migration file under
// <root>/migrations, numbering it one past the highest existing number
// and kebab-casing the description for the filename. The template
// carries the down marker so the rollback block is ready to fill in.
func CreateMigration(cfg Config, description string) (string, error) {
	dir := filepath.Join(cfg.Root, "migrations")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fileError(dir, err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fileError(dir, err)
	}
	max := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		number, _, ok := parseFileName(entry.Name())
		if !ok {
			continue
		}
		if number > max {
			max = number
		}
	}

	name := kebabCase(description)
	if name == "" {
		return "", fmt.Errorf("description %q yields an empty migration name", description)
	}
	path := filepath.Join(dir, fmt.Sprintf("%d-%s.sql", max+1, name))
	template := "-- Write your migration SQL here\n\n" + downMarker + "\n-- Write your rollback SQL here\n"
	if err := os.WriteFile(path, []byte(template), 0o644); err != nil {
		return "", fileError(path, err)
	}
	return path, nil
}

// kebabCase converts a string to kebab-case.
func kebabCase(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	re := regexp.MustCompile("[^a-z0-9]+")
	s = re.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
