package groups

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/kinogate/internal/common"
	"github.com/dmitrijs2005/kinogate/internal/dbx"
	"github.com/dmitrijs2005/kinogate/internal/server/models"
)

// SQLRepository implements Repository for one SQL dialect.
type SQLRepository struct {
	db dbx.DBTX
	q  queries
}

func NewPostgresRepository(db dbx.DBTX) *SQLRepository {
	return &SQLRepository{db: db, q: postgresQueries}
}

func NewSQLiteRepository(db dbx.DBTX) *SQLRepository {
	return &SQLRepository{db: db, q: sqliteQueries}
}

func (r *SQLRepository) List(ctx context.Context) ([]models.Group, error) {
	rows, err := r.db.QueryContext(ctx, r.q.list)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]models.Group, 0)
	for rows.Next() {
		var g models.Group
		if err := rows.Scan(&g.ID, &g.ChatID, &g.Handle, &g.AddedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *SQLRepository) Add(ctx context.Context, g *models.Group) error {
	g.AddedAt = g.AddedAt.UTC().Truncate(time.Second)

	err := r.db.QueryRowContext(ctx, r.q.add, g.ChatID, g.Handle, g.AddedAt).Scan(&g.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return common.ErrorAlreadyExists
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *SQLRepository) Get(ctx context.Context, id int64) (*models.Group, error) {
	g := &models.Group{}
	err := r.db.QueryRowContext(ctx, r.q.get, id).Scan(&g.ID, &g.ChatID, &g.Handle, &g.AddedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return g, nil
}

func (r *SQLRepository) Remove(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, r.q.remove, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *SQLRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, r.q.count).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}
