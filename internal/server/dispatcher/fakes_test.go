package dispatcher

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/dmitrijs2005/kinogate/internal/common"
	"github.com/dmitrijs2005/kinogate/internal/server/chat"
	"github.com/dmitrijs2005/kinogate/internal/server/models"
	"github.com/dmitrijs2005/kinogate/internal/server/services"
	"github.com/dmitrijs2005/kinogate/internal/server/wizard"
)

type fakeGate struct {
	decision services.Decision
	err      error
	panicMsg string
	calls    int
}

func (f *fakeGate) Evaluate(_ context.Context, _ int64) (services.Decision, error) {
	f.calls++
	if f.panicMsg != "" {
		panic(f.panicMsg)
	}
	return f.decision, f.err
}

type fakeRoles struct {
	roots []int64
	ops   map[int64]bool
}

func (f *fakeRoles) IsOperator(_ context.Context, id int64) bool {
	return f.IsRoot(id) || f.ops[id]
}

func (f *fakeRoles) IsRoot(id int64) bool { return slices.Contains(f.roots, id) }

func (f *fakeRoles) Roots() []int64 { return f.roots }

type fakeCatalog struct {
	records       map[string]models.ContentRecord
	err           error
	exportEnabled bool
	exportResult  *services.ExportResult
	exportErr     error
}

func (f *fakeCatalog) Lookup(_ context.Context, code string) (*models.ContentRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	rec, ok := f.records[models.NormalizeCode(code)]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &rec, nil
}

func (f *fakeCatalog) ExportEnabled() bool { return f.exportEnabled }

func (f *fakeCatalog) Export(context.Context) (*services.ExportResult, error) {
	return f.exportResult, f.exportErr
}

type fakeAdmin struct {
	mu      sync.Mutex
	touched []int64
	stats   services.Stats
	users   []models.User
	groups  []models.Group
	ops     []models.Operator
	roots   []int64
}

func (f *fakeAdmin) TouchUser(_ context.Context, u models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.touched = append(f.touched, u.ID)
	return nil
}

func (f *fakeAdmin) Stats(context.Context) (services.Stats, error) { return f.stats, nil }

func (f *fakeAdmin) RecentUsers(_ context.Context, limit int) ([]models.User, int64, error) {
	n := min(limit, len(f.users))
	return f.users[:n], int64(len(f.users)), nil
}

func (f *fakeAdmin) Groups(context.Context) ([]models.Group, error) { return f.groups, nil }

func (f *fakeAdmin) RemoveGroup(_ context.Context, id int64) (*models.Group, error) {
	for i, g := range f.groups {
		if g.ID == id {
			f.groups = append(f.groups[:i], f.groups[i+1:]...)
			return &g, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeAdmin) Operators(context.Context) ([]models.Operator, error) { return f.ops, nil }

func (f *fakeAdmin) RevokeOperator(_ context.Context, actor, target int64) error {
	if slices.Contains(f.roots, target) || actor == target {
		return common.ErrorForbidden
	}
	for i, op := range f.ops {
		if op.UserID == target {
			f.ops = append(f.ops[:i], f.ops[i+1:]...)
			return nil
		}
	}
	return common.ErrorNotFound
}

type fakeWizards struct {
	active  map[int64]bool
	started []wizard.Wizard
	steps   []chat.Event
}

func (f *fakeWizards) Active(userID int64) bool { return f.active[userID] }

func (f *fakeWizards) Start(_ context.Context, ev chat.Event, w wizard.Wizard, _ chat.Responder) error {
	f.active[ev.UserID] = true
	f.started = append(f.started, w)
	return nil
}

func (f *fakeWizards) Step(_ context.Context, ev chat.Event, _ chat.Responder) error {
	if !f.active[ev.UserID] {
		return wizard.ErrNoConversation
	}
	f.steps = append(f.steps, ev)
	return nil
}

func (f *fakeWizards) Cancel(userID int64) bool {
	was := f.active[userID]
	delete(f.active, userID)
	return was
}

type recorder struct {
	mu      sync.Mutex
	actions []chat.Action
	failOn  chat.ActionKind
	fail    bool
}

func (r *recorder) Send(_ context.Context, a chat.Action) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail && a.Kind == r.failOn {
		return errors.New("Forbidden: bot was blocked by the user")
	}
	r.actions = append(r.actions, a)
	return nil
}

func (r *recorder) kinds() []chat.ActionKind {
	out := make([]chat.ActionKind, 0, len(r.actions))
	for _, a := range r.actions {
		out = append(out, a.Kind)
	}
	return out
}

func (r *recorder) last() chat.Action {
	if len(r.actions) == 0 {
		return chat.Action{}
	}
	return r.actions[len(r.actions)-1]
}
