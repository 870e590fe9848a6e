package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/dmitrijs2005/kinogate/internal/common"
	"github.com/dmitrijs2005/kinogate/internal/dbx"
	"github.com/dmitrijs2005/kinogate/internal/logging"
	"github.com/dmitrijs2005/kinogate/internal/server/models"
	"github.com/dmitrijs2005/kinogate/internal/server/repositories/repomanager"
)

// Stats is the operator dashboard summary.
type Stats struct {
	Users       int64
	ActiveUsers int64
	Content     int64
	Groups      int64
}

// AdminService covers user registration, the group registry and operator
// management.
type AdminService struct {
	db           *sql.DB
	repomanager  repomanager.RepositoryManager
	roles        *RoleChecker
	activeWindow time.Duration
	logger       logging.Logger
}

func NewAdminService(db *sql.DB, m repomanager.RepositoryManager, roles *RoleChecker, activeWindow time.Duration, l logging.Logger) *AdminService {
	return &AdminService{
		db:           db,
		repomanager:  m,
		roles:        roles,
		activeWindow: activeWindow,
		logger:       l.With("module", "admin"),
	}
}

// TouchUser registers u or refreshes its profile and activity timestamp.
func (s *AdminService) TouchUser(ctx context.Context, u models.User) error {
	return s.repomanager.Users(s.db).Touch(ctx, &u, timeNow())
}

func (s *AdminService) GetUser(ctx context.Context, id int64) (*models.User, error) {
	return s.repomanager.Users(s.db).Get(ctx, id)
}

func (s *AdminService) FindUserByName(ctx context.Context, userName string) (*models.User, error) {
	return s.repomanager.Users(s.db).GetByUserName(ctx, userName)
}

func (s *AdminService) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	var err error

	usersRepo := s.repomanager.Users(s.db)
	if st.Users, err = usersRepo.Count(ctx); err != nil {
		return Stats{}, err
	}
	if st.ActiveUsers, err = usersRepo.CountActiveSince(ctx, timeNow().Add(-s.activeWindow)); err != nil {
		return Stats{}, err
	}
	if st.Content, err = s.repomanager.Content(s.db).Count(ctx); err != nil {
		return Stats{}, err
	}
	if st.Groups, err = s.repomanager.Groups(s.db).Count(ctx); err != nil {
		return Stats{}, err
	}
	return st, nil
}

// RecentUsers returns the first limit registered users and the total count.
func (s *AdminService) RecentUsers(ctx context.Context, limit int) ([]models.User, int64, error) {
	repo := s.repomanager.Users(s.db)
	total, err := repo.Count(ctx)
	if err != nil {
		return nil, 0, err
	}
	list, err := repo.List(ctx, limit)
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (s *AdminService) Groups(ctx context.Context) ([]models.Group, error) {
	return s.repomanager.Groups(s.db).List(ctx)
}

// AddGroup registers a mandatory group. A known chat id yields
// common.ErrorAlreadyExists.
func (s *AdminService) AddGroup(ctx context.Context, chatID, handle string) (*models.Group, error) {
	g := &models.Group{ChatID: chatID, Handle: handle, AddedAt: timeNow()}
	if err := s.repomanager.Groups(s.db).Add(ctx, g); err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "group added", "chat_id", chatID, "handle", handle)
	return g, nil
}

// SeedGroup registers chatID unless it is already known and reports whether
// it was added.
func (s *AdminService) SeedGroup(ctx context.Context, chatID string) (bool, error) {
	var handle string
	if strings.HasPrefix(chatID, "@") {
		handle = chatID
	}
	_, err := s.AddGroup(ctx, chatID, handle)
	if errors.Is(err, common.ErrorAlreadyExists) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// RemoveGroup deletes a group by row id and returns what was removed.
func (s *AdminService) RemoveGroup(ctx context.Context, id int64) (*models.Group, error) {
	var removed *models.Group
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Groups(tx)
		g, err := repo.Get(ctx, id)
		if err != nil {
			return err
		}
		if err := repo.Remove(ctx, id); err != nil {
			return err
		}
		removed = g
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "group removed", "chat_id", removed.ChatID)
	return removed, nil
}

func (s *AdminService) Operators(ctx context.Context) ([]models.Operator, error) {
	return s.repomanager.Operators(s.db).List(ctx)
}

// GrantOperator gives userID the operator role. Users that already hold it,
// including root operators, yield common.ErrorAlreadyExists.
func (s *AdminService) GrantOperator(ctx context.Context, userID int64, name string, grantedBy int64) error {
	if s.roles.IsRoot(userID) {
		return common.ErrorAlreadyExists
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Operators(tx)
		exists, err := repo.Exists(ctx, userID)
		if err != nil {
			return err
		}
		if exists {
			return common.ErrorAlreadyExists
		}
		return repo.Add(ctx, &models.Operator{
			UserID:    userID,
			UserName:  name,
			GrantedBy: grantedBy,
			GrantedAt: timeNow(),
		})
	})
	if err != nil {
		return err
	}

	s.logger.Info(ctx, "operator granted", "user_id", userID, "granted_by", grantedBy)
	return nil
}

// RevokeOperator removes a stored operator. Root operators and the actor
// themselves cannot be revoked (common.ErrorForbidden).
func (s *AdminService) RevokeOperator(ctx context.Context, actor, target int64) error {
	if s.roles.IsRoot(target) || actor == target {
		return common.ErrorForbidden
	}
	if err := s.repomanager.Operators(s.db).Remove(ctx, target); err != nil {
		return err
	}
	s.logger.Info(ctx, "operator revoked", "user_id", target, "revoked_by", actor)
	return nil
}
