package services

import (
	"context"
	"database/sql"
	"time"

	"github.com/dmitrijs2005/kinogate/internal/logging"
	"github.com/dmitrijs2005/kinogate/internal/server/metrics"
	"github.com/dmitrijs2005/kinogate/internal/server/models"
	"github.com/dmitrijs2005/kinogate/internal/server/repositories/repomanager"
	"golang.org/x/sync/errgroup"
)

// Decision is the access gate's verdict for one user. Blocking keeps the
// registry order.
type Decision struct {
	Allowed  bool
	Blocking []models.Group
}

// AccessGate checks a user's membership across every mandatory group.
// Anything other than a positive answer, including transport failures and
// timeouts, counts as not being a member.
type AccessGate struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	checker     MembershipChecker
	timeout     time.Duration
	parallelism int
	logger      logging.Logger
}

func NewAccessGate(db *sql.DB, m repomanager.RepositoryManager, checker MembershipChecker, timeout time.Duration, l logging.Logger) *AccessGate {
	return &AccessGate{
		db:          db,
		repomanager: m,
		checker:     checker,
		timeout:     timeout,
		parallelism: 8,
		logger:      l.With("module", "access_gate"),
	}
}

// Evaluate fetches the group registry and checks every group concurrently.
// A store failure is returned as an error and must be treated as a denial.
func (g *AccessGate) Evaluate(ctx context.Context, userID int64) (Decision, error) {
	groups, err := g.repomanager.Groups(g.db).List(ctx)
	if err != nil {
		return Decision{}, err
	}

	if len(groups) == 0 {
		metrics.GateDecisions.WithLabelValues("allowed").Inc()
		return Decision{Allowed: true}, nil
	}

	blocked := make([]bool, len(groups))

	var eg errgroup.Group
	eg.SetLimit(g.parallelism)
	for i, group := range groups {
		eg.Go(func() error {
			blocked[i] = !g.isMember(ctx, group, userID)
			return nil
		})
	}
	_ = eg.Wait()

	d := Decision{Blocking: make([]models.Group, 0)}
	for i, group := range groups {
		if blocked[i] {
			d.Blocking = append(d.Blocking, group)
		}
	}
	d.Allowed = len(d.Blocking) == 0

	if d.Allowed {
		metrics.GateDecisions.WithLabelValues("allowed").Inc()
	} else {
		metrics.GateDecisions.WithLabelValues("blocked").Inc()
	}

	return d, nil
}

func (g *AccessGate) isMember(ctx context.Context, group models.Group, userID int64) bool {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	status, err := g.checker.CheckMembership(ctx, group.ChatID, userID)
	if err != nil {
		metrics.MembershipCheckFailures.Inc()
		g.logger.Warn(ctx, "membership check failed", "chat_id", group.ChatID, "user_id", userID, "error", err)
		return false
	}

	g.logger.Debug(ctx, "membership checked", "chat_id", group.ChatID, "user_id", userID, "status", status.String())
	return status == MembershipMember
}
