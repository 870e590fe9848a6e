package wizard

import (
	"context"
	"errors"
	"sync"

	"github.com/dmitrijs2005/kinogate/internal/common"
	"github.com/dmitrijs2005/kinogate/internal/server/chat"
	"github.com/dmitrijs2005/kinogate/internal/server/models"
	"github.com/dmitrijs2005/kinogate/internal/server/services"
)

type fakeRoles struct {
	mu        sync.Mutex
	operators map[int64]bool
}

func (f *fakeRoles) IsOperator(_ context.Context, id int64) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.operators[id]
}

func (f *fakeRoles) set(id int64, ok bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.operators[id] = ok
}

type fakeCatalog struct {
	records map[string]models.ContentRecord
	err     error
}

func (f *fakeCatalog) Add(_ context.Context, rec *models.ContentRecord) error {
	if f.err != nil {
		return f.err
	}
	code := models.NormalizeCode(rec.Code)
	if _, ok := f.records[code]; ok {
		return common.ErrorAlreadyExists
	}
	rec.Code = code
	f.records[code] = *rec
	return nil
}

func (f *fakeCatalog) Delete(_ context.Context, code string) error {
	code = models.NormalizeCode(code)
	if _, ok := f.records[code]; !ok {
		return common.ErrorNotFound
	}
	delete(f.records, code)
	return nil
}

type grant struct {
	userID, by int64
	name       string
}

type fakeAdmin struct {
	groups  []models.Group
	grants  []grant
	users   map[int64]models.User
	ops     map[int64]bool
	failAdd bool
}

func (f *fakeAdmin) AddGroup(_ context.Context, chatID, handle string) (*models.Group, error) {
	if f.failAdd {
		return nil, errors.New("db down")
	}
	for _, g := range f.groups {
		if g.ChatID == chatID {
			return nil, common.ErrorAlreadyExists
		}
	}
	g := models.Group{ID: int64(len(f.groups) + 1), ChatID: chatID, Handle: handle}
	f.groups = append(f.groups, g)
	return &g, nil
}

func (f *fakeAdmin) GrantOperator(_ context.Context, userID int64, name string, grantedBy int64) error {
	if f.ops[userID] {
		return common.ErrorAlreadyExists
	}
	f.ops[userID] = true
	f.grants = append(f.grants, grant{userID: userID, by: grantedBy, name: name})
	return nil
}

func (f *fakeAdmin) GetUser(_ context.Context, id int64) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &u, nil
}

func (f *fakeAdmin) FindUserByName(_ context.Context, name string) (*models.User, error) {
	for _, u := range f.users {
		if u.UserName == name {
			return &u, nil
		}
	}
	return nil, common.ErrorNotFound
}

type fakeBroadcaster struct {
	payloads []services.BroadcastPayload
	report   services.Report
	err      error
}

func (f *fakeBroadcaster) Run(_ context.Context, p services.BroadcastPayload) (services.Report, error) {
	f.payloads = append(f.payloads, p)
	return f.report, f.err
}

type fakePlatform struct {
	reachable map[string]string
	names     map[int64]string
}

func (f *fakePlatform) ProbeChat(_ context.Context, chatID string) (string, error) {
	handle, ok := f.reachable[chatID]
	if !ok {
		return "", errors.New("Bad Request: chat not found")
	}
	return handle, nil
}

func (f *fakePlatform) UserName(_ context.Context, userID int64) (string, error) {
	name, ok := f.names[userID]
	if !ok {
		return "", errors.New("not found")
	}
	return name, nil
}

type recorder struct {
	actions []chat.Action
}

func (r *recorder) Send(_ context.Context, a chat.Action) error {
	r.actions = append(r.actions, a)
	return nil
}

func (r *recorder) last() chat.Action {
	if len(r.actions) == 0 {
		return chat.Action{}
	}
	return r.actions[len(r.actions)-1]
}

type harness struct {
	m           *Machine
	roles       *fakeRoles
	catalog     *fakeCatalog
	admin       *fakeAdmin
	broadcaster *fakeBroadcaster
	platform    *fakePlatform
	out         *recorder
}
