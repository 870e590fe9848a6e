package operators

import (
	"context"
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

func (r *SQLRepository) List(ctx context.Context) ([]models.Operator, error) {
	rows, err := r.db.QueryContext(ctx, r.q.list)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]models.Operator, 0)
	for rows.Next() {
		var op models.Operator
		if err := rows.Scan(&op.UserID, &op.UserName, &op.GrantedBy, &op.GrantedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, op)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *SQLRepository) Add(ctx context.Context, op *models.Operator) error {
	op.GrantedAt = op.GrantedAt.UTC().Truncate(time.Second)

	res, err := r.db.ExecContext(ctx, r.q.add, op.UserID, op.UserName, op.GrantedBy, op.GrantedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorAlreadyExists
	}
	return nil
}

func (r *SQLRepository) Remove(ctx context.Context, userID int64) error {
	res, err := r.db.ExecContext(ctx, r.q.remove, userID)
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

func (r *SQLRepository) Exists(ctx context.Context, userID int64) (bool, error) {
	var ok bool
	if err := r.db.QueryRowContext(ctx, r.q.exists, userID).Scan(&ok); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return ok, nil
}
