package telegram

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dmitrijs2005/kinogate/internal/logging"
	"github.com/dmitrijs2005/kinogate/internal/server/chat"
	"golang.org/x/sync/semaphore"
)

var (
	ErrPoolStopped = errors.New("worker pool stopped")
	ErrBacklogFull = errors.New("user backlog full")
)

// Handler processes one event to completion.
type Handler interface {
	Handle(ctx context.Context, ev chat.Event, out chat.Responder) error
}

// Pool handles events of different users concurrently, at most workers at a
// time. Each user has a FIFO backlog drained by a single goroutine, so one
// user's events run in arrival order and a slow handler only delays that
// user.
type Pool struct {
	handler Handler
	out     chat.Responder
	sem     *semaphore.Weighted
	backlog int
	logger  logging.Logger

	mu       sync.Mutex
	queues   map[int64][]chat.Event
	ctx      context.Context
	drainCtx context.Context
	stopped  bool
	wg       sync.WaitGroup
}

// NewPool creates a Pool running up to workers handlers at once. Each user may
// have up to backlog events waiting behind the one being handled.
func NewPool(h Handler, out chat.Responder, workers, backlog int, l logging.Logger) *Pool {
	if workers < 1 {
		workers = 1
	}
	if backlog < 1 {
		backlog = 1
	}
	return &Pool{
		handler: h,
		out:     out,
		sem:     semaphore.NewWeighted(int64(workers)),
		backlog: backlog,
		logger:  l.With("module", "worker_pool"),
		queues:  make(map[int64][]chat.Event),
		ctx:     context.Background(),
	}
}

// Start sets the context handlers receive until Stop.
func (p *Pool) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ctx = ctx
}

// Submit appends ev to its user's backlog without waiting for other users'
// work. It fails when the pool is stopped or the user's backlog is full.
func (p *Pool) Submit(_ context.Context, ev chat.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopped {
		return ErrPoolStopped
	}
	q, running := p.queues[ev.UserID]
	if len(q) >= p.backlog {
		return ErrBacklogFull
	}
	p.queues[ev.UserID] = append(q, ev)
	if !running {
		p.wg.Add(1)
		go p.drain(ev.UserID)
	}
	return nil
}

// drain handles the user's backlog until it is empty. The map entry stays
// present while the goroutine runs.
func (p *Pool) drain(userID int64) {
	defer p.wg.Done()

	_ = p.sem.Acquire(context.Background(), 1)
	defer p.sem.Release(1)

	for {
		p.mu.Lock()
		q := p.queues[userID]
		if len(q) == 0 {
			delete(p.queues, userID)
			p.mu.Unlock()
			return
		}
		ev := q[0]
		p.queues[userID] = q[1:]
		ctx := p.handlerContext()
		p.mu.Unlock()

		if err := p.handler.Handle(ctx, ev, p.out); err != nil {
			p.logger.Warn(ctx, "event handling failed", "user_id", ev.UserID, "kind", ev.Kind.String(), "error", err)
		}
	}
}

// handlerContext must be called with mu held.
func (p *Pool) handlerContext() context.Context {
	if p.drainCtx != nil {
		return p.drainCtx
	}
	return p.ctx
}

// Stop rejects further events and waits for queued ones to finish. Events
// picked up after Stop run on a context detached from the Start context and
// bounded by timeout.
func (p *Pool) Stop(timeout time.Duration) {
	p.mu.Lock()
	p.stopped = true
	ctx, cancel := context.WithTimeout(context.WithoutCancel(p.ctx), timeout)
	defer cancel()
	p.drainCtx = ctx
	p.mu.Unlock()

	p.wg.Wait()
}
