package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/uptrace/bun"
)

func TestApplyEmbeddedMigrations(t *testing.T) {
	db, err := OpenDB(filepath.Join(t.TempDir(), "embedded.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})

	if err := ApplyMigrations(context.Background(), db, ""); err != nil {
		t.Fatalf("apply embedded migrations: %v", err)
	}

	if got := tableCount(t, db, "render_audits"); got != 1 {
		t.Fatalf("expected render_audits table after embedded migrations, got %d", got)
	}
}

func TestApplyMigrationsFromDirRunsInLexicalOrder(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"0002_seed.sql":  `INSERT INTO widgets (name) VALUES ('first');`,
		"0001_table.sql": `CREATE TABLE widgets (id INTEGER PRIMARY KEY AUTOINCREMENT, name TEXT NOT NULL);`,
		"README.md":      `not a migration`,
	}
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	db, err := OpenDB(filepath.Join(t.TempDir(), "dir.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})

	if err := ApplyMigrations(context.Background(), db, dir); err != nil {
		t.Fatalf("apply dir migrations: %v", err)
	}

	var count int64
	err = db.WithReadTx(context.Background(), func(ctx context.Context, tx bun.Tx) error {
		return tx.NewRaw(`SELECT COUNT(*) FROM widgets`).Scan(ctx, &count)
	})
	if err != nil {
		t.Fatalf("count widgets: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 seeded widget, got %d", count)
	}
}

func TestApplyMigrationsMissingDir(t *testing.T) {
	db := openTestDB(t)

	err := ApplyMigrations(context.Background(), db, filepath.Join(t.TempDir(), "missing"))
	if err == nil {
		t.Fatalf("expected error for missing migrations dir")
	}
}

func tableCount(t *testing.T, db *DB, table string) int64 {
	t.Helper()
	var count int64
	err := db.WithReadTx(context.Background(), func(ctx context.Context, tx bun.Tx) error {
		return tx.NewRaw(
			`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, table,
		).Scan(ctx, &count)
	})
	if err != nil {
		t.Fatalf("query sqlite_master: %v", err)
	}
	return count
}
