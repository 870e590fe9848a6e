package content

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

func (r *SQLRepository) Create(ctx context.Context, rec *models.ContentRecord) error {
	rec.Code = models.NormalizeCode(rec.Code)
	if rec.Kind == "" {
		rec.Kind = models.MediaVideo
	}
	rec.AddedAt = rec.AddedAt.UTC().Truncate(time.Second)

	err := r.db.QueryRowContext(ctx, r.q.create,
		rec.Code, rec.FileID, string(rec.Kind), rec.Title, rec.Description, rec.AddedBy, rec.AddedAt).Scan(&rec.ID)
	if err != nil {
		// DO NOTHING returns no row on a code conflict
		if errors.Is(err, sql.ErrNoRows) {
			return common.ErrorAlreadyExists
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *SQLRepository) GetByCode(ctx context.Context, code string) (*models.ContentRecord, error) {
	rec := &models.ContentRecord{}
	var kind string
	err := r.db.QueryRowContext(ctx, r.q.getByCode, models.NormalizeCode(code)).Scan(
		&rec.ID, &rec.Code, &rec.FileID, &kind, &rec.Title, &rec.Description, &rec.AddedBy, &rec.AddedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	rec.Kind = models.MediaKind(kind)
	return rec, nil
}

func (r *SQLRepository) Delete(ctx context.Context, code string) error {
	res, err := r.db.ExecContext(ctx, r.q.delete, models.NormalizeCode(code))
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

func (r *SQLRepository) List(ctx context.Context) ([]models.ContentRecord, error) {
	rows, err := r.db.QueryContext(ctx, r.q.list)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]models.ContentRecord, 0)
	for rows.Next() {
		var (
			rec  models.ContentRecord
			kind string
		)
		if err := rows.Scan(&rec.ID, &rec.Code, &rec.FileID, &kind, &rec.Title, &rec.Description, &rec.AddedBy, &rec.AddedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		rec.Kind = models.MediaKind(kind)
		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}
