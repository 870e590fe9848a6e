package services

import (
	"context"
	"database/sql"
	"time"

	"github.com/dmitrijs2005/kinogate/internal/logging"
	"github.com/dmitrijs2005/kinogate/internal/server/metrics"
	"github.com/dmitrijs2005/kinogate/internal/server/repositories/repomanager"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// Report summarizes one fan-out run. Cancelled is set when the run stopped
// early because its context ended; the counters then cover only the
// recipients reached so far.
type Report struct {
	RunID     string
	Total     int
	Success   int
	Failed    int
	Cancelled bool
}

// Broadcaster delivers a payload to every registered user, one at a time,
// never faster than one delivery per interval.
type Broadcaster struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	deliverer   Deliverer
	interval    time.Duration
	timeout     time.Duration
	logger      logging.Logger
}

func NewBroadcaster(db *sql.DB, m repomanager.RepositoryManager, d Deliverer, interval, timeout time.Duration, l logging.Logger) *Broadcaster {
	return &Broadcaster{
		db:          db,
		repomanager: m,
		deliverer:   d,
		interval:    interval,
		timeout:     timeout,
		logger:      l.With("module", "broadcast"),
	}
}

// Run snapshots the user registry and delivers p to each user in registry
// order. Individual failures are counted and never abort the run.
func (b *Broadcaster) Run(ctx context.Context, p BroadcastPayload) (Report, error) {
	report := Report{RunID: uuid.NewString()}
	log := b.logger.With("run_id", report.RunID)

	recipients, err := b.repomanager.Users(b.db).ListIDs(ctx)
	if err != nil {
		return report, err
	}
	report.Total = len(recipients)

	log.Info(ctx, "broadcast started", "recipients", report.Total)

	limiter := rate.NewLimiter(rate.Every(b.interval), 1)

	for _, userID := range recipients {
		if err := limiter.Wait(ctx); err != nil {
			report.Cancelled = true
			break
		}

		if err := b.deliver(ctx, userID, p); err != nil {
			report.Failed++
			metrics.BroadcastDeliveries.WithLabelValues("failed").Inc()
			log.Debug(ctx, "delivery failed", "user_id", userID, "error", err)
			continue
		}
		report.Success++
		metrics.BroadcastDeliveries.WithLabelValues("success").Inc()
	}

	if report.Cancelled {
		log.Warn(ctx, "broadcast cancelled", "success", report.Success, "failed", report.Failed, "total", report.Total)
	} else {
		log.Info(ctx, "broadcast finished", "success", report.Success, "failed", report.Failed)
	}

	return report, nil
}

func (b *Broadcaster) deliver(ctx context.Context, userID int64, p BroadcastPayload) error {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()
	return b.deliverer.Deliver(ctx, userID, p)
}
