package telegram

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/kinogate/internal/logging"
)

// UpdateSource is the long-poll half of the Bot API.
type UpdateSource interface {
	GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]Update, error)
}

// Poller feeds updates fetched with getUpdates into a Pool.
type Poller struct {
	source     UpdateSource
	pool       *Pool
	timeout    time.Duration
	retryDelay time.Duration
	logger     logging.Logger
}

func NewPoller(src UpdateSource, pool *Pool, timeout time.Duration, l logging.Logger) *Poller {
	return &Poller{
		source:     src,
		pool:       pool,
		timeout:    timeout,
		retryDelay: 3 * time.Second,
		logger:     l.With("module", "poller"),
	}
}

// Run polls until ctx is cancelled. Failed polls are retried after a pause;
// an update is acknowledged once it has been queued or dropped.
func (p *Poller) Run(ctx context.Context) error {
	p.logger.Info(ctx, "Starting long polling", "timeout", p.timeout.String())

	var offset int64
	for {
		if ctx.Err() != nil {
			p.logger.Info(ctx, "Stopping long polling...")
			return nil
		}

		updates, err := p.source.GetUpdates(ctx, offset, p.timeout)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			p.logger.Warn(ctx, "getUpdates failed", "error", err)
			select {
			case <-ctx.Done():
			case <-time.After(p.retryDelay):
			}
			continue
		}

		for _, u := range updates {
			offset = u.UpdateID + 1
			ev, ok := u.Event()
			if !ok {
				p.logger.Debug(ctx, "update skipped", "update_id", u.UpdateID)
				continue
			}
			if err := p.pool.Submit(ctx, ev); err != nil {
				if errors.Is(err, ErrPoolStopped) {
					return nil
				}
				p.logger.Warn(ctx, "update dropped", "update_id", u.UpdateID, "user_id", ev.UserID, "error", err)
			}
		}
	}
}
