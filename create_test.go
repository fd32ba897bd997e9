package migratory

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestCreateMigration_FirstFile verifies numbering starts at 1 in an
// empty migrations directory.
func TestCreateMigration_FirstFile(t *testing.T) {
	root := t.TempDir()
	path, err := CreateMigration(Config{Root: root}, "Create Users!")
	if err != nil {
		t.Fatalf("CreateMigration failed: %v", err)
	}
	if filepath.Base(path) != "1-create-users.sql" {
		t.Errorf("expected 1-create-users.sql, got %s", filepath.Base(path))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading scaffold: %v", err)
	}
	if !strings.Contains(string(data), downMarker) {
		t.Errorf("expected scaffold to contain the down marker, got %q", string(data))
	}
}

// TestCreateMigration_NextNumber verifies numbering continues past the
// highest existing migration.
func TestCreateMigration_NextNumber(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "migrations")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	for _, base := range []string{"1-a.sql", "7-b.sql", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, base), []byte("SELECT 1;"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	path, err := CreateMigration(Config{Root: root}, "add email")
	if err != nil {
		t.Fatalf("CreateMigration failed: %v", err)
	}
	if filepath.Base(path) != "8-add-email.sql" {
		t.Errorf("expected 8-add-email.sql, got %s", filepath.Base(path))
	}
}

// TestCreateMigration_EmptyDescription verifies a description with no
// usable characters is rejected.
func TestCreateMigration_EmptyDescription(t *testing.T) {
	if _, err := CreateMigration(Config{Root: t.TempDir()}, "!!!"); err == nil {
		t.Fatal("expected an error for an unusable description")
	}
}

// TestKebabCase verifies description normalization.
func TestKebabCase(t *testing.T) {
	cases := map[string]string{
		"Create Users":    "create-users",
		"  add   email  ": "add-email",
		"v2/cleanup":      "v2-cleanup",
	}
	for in, want := range cases {
		if got := kebabCase(in); got != want {
			t.Errorf("kebabCase(%q): expected %q, got %q", in, want, got)
		}
	}
}
