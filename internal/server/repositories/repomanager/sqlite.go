package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/kinogate/internal/dbx"
	"github.com/dmitrijs2005/kinogate/internal/server/migrations"
	"github.com/dmitrijs2005/kinogate/internal/server/repositories/content"
	"github.com/dmitrijs2005/kinogate/internal/server/repositories/groups"
	"github.com/dmitrijs2005/kinogate/internal/server/repositories/operators"
	"github.com/dmitrijs2005/kinogate/internal/server/repositories/users"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

// SQLiteRepositoryManager vends SQLite-backed repository implementations.
type SQLiteRepositoryManager struct{}

func (m *SQLiteRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewSQLiteRepository(db)
}

func (m *SQLiteRepositoryManager) Content(db dbx.DBTX) content.Repository {
	return content.NewSQLiteRepository(db)
}

func (m *SQLiteRepositoryManager) Groups(db dbx.DBTX) groups.Repository {
	return groups.NewSQLiteRepository(db)
}

func (m *SQLiteRepositoryManager) Operators(db dbx.DBTX) operators.Repository {
	return operators.NewSQLiteRepository(db)
}

// RunMigrations applies the embedded SQLite migrations.
func (m *SQLiteRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}
	return gooseUpContext(ctx, db, migrations.SQLiteDir)
}
