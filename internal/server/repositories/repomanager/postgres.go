// Package repomanager vends dialect-specific repository implementations and
// runs the embedded goose migrations for them.
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
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// PostgresRepositoryManager vends PostgreSQL-backed repository implementations.
type PostgresRepositoryManager struct{}

func (m *PostgresRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Content(db dbx.DBTX) content.Repository {
	return content.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Groups(db dbx.DBTX) groups.Repository {
	return groups.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Operators(db dbx.DBTX) operators.Repository {
	return operators.NewPostgresRepository(db)
}

// RunMigrations applies the embedded PostgreSQL migrations.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return gooseUpContext(ctx, db, migrations.PostgresDir)
}
