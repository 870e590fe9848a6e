// Package repotest opens migrated throwaway databases for repository tests.
package repotest

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/kinogate/internal/server/migrations"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

// OpenSQLite creates a SQLite file under t.TempDir() and applies every
// embedded SQLite migration to it.
func OpenSQLite(t testing.TB) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	goose.SetLogger(goose.NopLogger())
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		t.Fatalf("goose dialect: %v", err)
	}
	if err := goose.Up(db, migrations.SQLiteDir); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	return db
}
