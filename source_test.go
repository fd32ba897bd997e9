package migratory

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// writeMigration drops a migration file into dir.
func writeMigration(t *testing.T, dir, base, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, base), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", base, err)
	}
}

// migrationsDir creates root/<sub>/migrations and returns it.
func migrationsDir(t *testing.T, root string, sub ...string) string {
	t.Helper()
	dir := filepath.Join(append(append([]string{root}, sub...), "migrations")...)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
	return dir
}

func TestDiscover(t *testing.T) {
	t.Run("finds nested migrations directories", func(t *testing.T) {
		root := t.TempDir()
		writeMigration(t, migrationsDir(t, root), "1-create_users.sql", "CREATE TABLE users (id INTEGER);\n-- down\nDROP TABLE users;")
		writeMigration(t, migrationsDir(t, root, "svc", "billing"), "2-add_email.sql", "ALTER TABLE users ADD COLUMN email TEXT;")

		migs, err := Discover(root)
		if err != nil {
			t.Fatalf("Discover failed: %v", err)
		}
		if len(migs) != 2 {
			t.Fatalf("expected 2 migrations, got %d", len(migs))
		}
		if migs[0].Number != 1 || migs[1].Number != 2 {
			t.Errorf("expected ascending numbers 1,2, got %d,%d", migs[0].Number, migs[1].Number)
		}
		if migs[0].Name != "create_users" {
			t.Errorf("expected name create_users, got %q", migs[0].Name)
		}
	})

	t.Run("aggregates all bad files into one compound error", func(t *testing.T) {
		root := t.TempDir()
		dir := migrationsDir(t, root)
		writeMigration(t, dir, "abc.sql", "SELECT 1;")
		writeMigration(t, dir, "2-double_marker.sql", "A;\n-- down\nB;\n-- down\nC;")
		writeMigration(t, dir, "1-ok.sql", "CREATE TABLE t (id INTEGER);")

		_, err := Discover(root)
		if !errors.Is(err, ErrCompound) {
			t.Fatalf("expected compound error, got %v", err)
		}
		var me *Error
		if !errors.As(err, &me) {
			t.Fatalf("expected *Error, got %T", err)
		}
		if len(me.Errs) != 2 {
			t.Fatalf("expected 2 aggregated errors, got %d: %v", len(me.Errs), me)
		}
		kinds := map[Kind]bool{}
		for _, child := range me.Errs {
			var ce *Error
			if errors.As(child, &ce) {
				kinds[ce.Kind] = true
			}
		}
		if !kinds[KindFileName] || !kinds[KindContent] {
			t.Errorf("expected file-name and content kinds, got %v", me)
		}
	})

	t.Run("rejects reserved number zero", func(t *testing.T) {
		root := t.TempDir()
		writeMigration(t, migrationsDir(t, root), "0-bootstrap.sql", "SELECT 1;")
		_, err := Discover(root)
		if !errors.Is(err, ErrCompound) {
			t.Fatalf("expected compound error, got %v", err)
		}
	})

	t.Run("rejects duplicate numbers", func(t *testing.T) {
		root := t.TempDir()
		dir := migrationsDir(t, root)
		writeMigration(t, dir, "1-a.sql", "SELECT 1;")
		writeMigration(t, dir, "1-b.sql", "SELECT 2;")
		_, err := Discover(root)
		if !errors.Is(err, ErrCompound) {
			t.Fatalf("expected compound error, got %v", err)
		}
	})

	t.Run("empty tree yields empty set", func(t *testing.T) {
		migs, err := Discover(t.TempDir())
		if err != nil {
			t.Fatalf("Discover failed: %v", err)
		}
		if len(migs) != 0 {
			t.Fatalf("expected no migrations, got %d", len(migs))
		}
	})
}

func TestFind(t *testing.T) {
	migs := []Migration{{Number: 1, Name: "a"}, {Number: 2, Name: "b"}}

	m, err := Find(migs, 2)
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if m.Name != "b" {
		t.Errorf("expected b, got %q", m.Name)
	}

	_, err = Find(migs, 5)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not-found error, got %v", err)
	}
	var me *Error
	if errors.As(err, &me) && me.Number != 5 {
		t.Errorf("expected number 5 in error, got %d", me.Number)
	}
}

func TestBetween(t *testing.T) {
	migs := []Migration{{Number: 1}, {Number: 2}, {Number: 3}, {Number: 4}}

	t.Run("ascending apply direction", func(t *testing.T) {
		plan, err := Between(migs, 1, 3)
		if err != nil {
			t.Fatalf("Between failed: %v", err)
		}
		want := []int{2, 3}
		for i, m := range plan {
			if m.Number != want[i] {
				t.Fatalf("expected plan %v, got %v", want, plan)
			}
		}
	})

	t.Run("descending rollback direction", func(t *testing.T) {
		plan, err := Between(migs, 4, 1)
		if err != nil {
			t.Fatalf("Between failed: %v", err)
		}
		want := []int{4, 3, 2}
		if len(plan) != len(want) {
			t.Fatalf("expected %d migrations, got %d", len(want), len(plan))
		}
		for i, m := range plan {
			if m.Number != want[i] {
				t.Fatalf("expected plan %v, got %v", want, plan)
			}
		}
	})

	t.Run("equal endpoints are a no-op", func(t *testing.T) {
		plan, err := Between(migs, 2, 2)
		if err != nil {
			t.Fatalf("Between failed: %v", err)
		}
		if len(plan) != 0 {
			t.Fatalf("expected empty plan, got %v", plan)
		}
	})

	t.Run("gap in the chain", func(t *testing.T) {
		gappy := []Migration{{Number: 1}, {Number: 3}}
		_, err := Between(gappy, 0, 3)
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected not-found error, got %v", err)
		}
		var me *Error
		if errors.As(err, &me) && me.Number != 2 {
			t.Errorf("expected missing number 2, got %d", me.Number)
		}
	})
}
