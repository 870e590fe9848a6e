// Package operators stores dynamically granted operator roles.
package operators

import (
	"context"

	"github.com/dmitrijs2005/kinogate/internal/server/models"
)

type Repository interface {
	List(ctx context.Context) ([]models.Operator, error)
	// Add grants the role. An existing grant yields common.ErrorAlreadyExists.
	Add(ctx context.Context, op *models.Operator) error
	Remove(ctx context.Context, userID int64) error
	Exists(ctx context.Context, userID int64) (bool, error)
}
