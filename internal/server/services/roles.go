package services

import (
	"context"
	"database/sql"
	"slices"

	"github.com/dmitrijs2005/kinogate/internal/logging"
	"github.com/dmitrijs2005/kinogate/internal/server/repositories/repomanager"
)

// RoleChecker merges the configured root operators with the operators
// granted at runtime.
type RoleChecker struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	roots       []int64
	logger      logging.Logger
}

func NewRoleChecker(db *sql.DB, m repomanager.RepositoryManager, roots []int64, l logging.Logger) *RoleChecker {
	return &RoleChecker{
		db:          db,
		repomanager: m,
		roots:       slices.Clone(roots),
		logger:      l.With("module", "roles"),
	}
}

// IsRoot reports whether id is a configured root operator.
func (r *RoleChecker) IsRoot(id int64) bool {
	return slices.Contains(r.roots, id)
}

// Roots returns a copy of the configured root operator ids.
func (r *RoleChecker) Roots() []int64 {
	return slices.Clone(r.roots)
}

// IsOperator reports whether id holds the operator role. Store failures deny.
func (r *RoleChecker) IsOperator(ctx context.Context, id int64) bool {
	if r.IsRoot(id) {
		return true
	}
	ok, err := r.repomanager.Operators(r.db).Exists(ctx, id)
	if err != nil {
		r.logger.Error(ctx, "operator lookup failed", "user_id", id, "error", err)
		return false
	}
	return ok
}
