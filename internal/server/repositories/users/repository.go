// Package users stores everyone who has interacted with the bot.
package users

import (
	"context"
	"time"

	"github.com/dmitrijs2005/kinogate/internal/server/models"
)

type Repository interface {
	// Touch registers the user on first sight and refreshes the profile and
	// last-activity timestamp afterwards.
	Touch(ctx context.Context, user *models.User, at time.Time) error
	Get(ctx context.Context, id int64) (*models.User, error)
	GetByUserName(ctx context.Context, userName string) (*models.User, error)
	// List returns users in registration order. A limit <= 0 returns everyone.
	List(ctx context.Context, limit int) ([]models.User, error)
	ListIDs(ctx context.Context) ([]int64, error)
	Count(ctx context.Context) (int64, error)
	CountActiveSince(ctx context.Context, since time.Time) (int64, error)
}
