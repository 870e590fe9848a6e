package repomanager

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/kinogate/internal/dbx"
	"github.com/dmitrijs2005/kinogate/internal/filex"
	"github.com/dmitrijs2005/kinogate/internal/server/repositories/content"
	"github.com/dmitrijs2005/kinogate/internal/server/repositories/groups"
	"github.com/dmitrijs2005/kinogate/internal/server/repositories/operators"
	"github.com/dmitrijs2005/kinogate/internal/server/repositories/users"
	"github.com/pressly/goose/v3"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Content(db dbx.DBTX) content.Repository
	Groups(db dbx.DBTX) groups.Repository
	Operators(db dbx.DBTX) operators.Repository
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// sqlOpen is a seam for testing sql.Open.
var sqlOpen = sql.Open

// IsPostgresDSN reports whether dsn addresses a PostgreSQL server rather than
// a SQLite file.
func IsPostgresDSN(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

// Open connects to the database addressed by dsn, picks the matching
// repository manager and applies pending migrations.
func Open(ctx context.Context, dsn string) (*sql.DB, RepositoryManager, error) {
	var (
		driver string
		m      RepositoryManager
	)
	if IsPostgresDSN(dsn) {
		driver, m = "pgx", &PostgresRepositoryManager{}
	} else {
		driver, m = "sqlite", &SQLiteRepositoryManager{}
		if !strings.HasPrefix(dsn, "file:") && dsn != ":memory:" {
			if err := filex.EnsureParentDir(dsn); err != nil {
				return nil, nil, err
			}
		}
	}

	db, err := sqlOpen(driver, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if driver == "sqlite" {
		// a single writer avoids SQLITE_BUSY under concurrent handlers
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("ping %s: %w", driver, err)
	}

	if err := m.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("migrate: %w", err)
	}

	return db, m, nil
}
