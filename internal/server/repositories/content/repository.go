// Package content stores catalog entries addressed by their code.
package content

import (
	"context"

	"github.com/dmitrijs2005/kinogate/internal/server/models"
)

type Repository interface {
	// Create inserts the record and fills its ID. A taken code yields
	// common.ErrorAlreadyExists and leaves the stored record untouched.
	Create(ctx context.Context, rec *models.ContentRecord) error
	GetByCode(ctx context.Context, code string) (*models.ContentRecord, error)
	Delete(ctx context.Context, code string) error
	Count(ctx context.Context) (int64, error)
	List(ctx context.Context) ([]models.ContentRecord, error)
}
