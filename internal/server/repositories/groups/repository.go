// Package groups stores the mandatory-membership access policy.
package groups

import (
	"context"

	"github.com/dmitrijs2005/kinogate/internal/server/models"
)

type Repository interface {
	// List returns groups in registration order.
	List(ctx context.Context) ([]models.Group, error)
	// Add stores the group and fills its ID. A known chat id yields
	// common.ErrorAlreadyExists.
	Add(ctx context.Context, g *models.Group) error
	Get(ctx context.Context, id int64) (*models.Group, error)
	Remove(ctx context.Context, id int64) error
	Count(ctx context.Context) (int64, error)
}
