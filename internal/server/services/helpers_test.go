package services

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/kinogate/internal/server/models"
	"github.com/dmitrijs2005/kinogate/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/kinogate/internal/server/repositories/repotest"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) (*sql.DB, repomanager.RepositoryManager) {
	t.Helper()
	return repotest.OpenSQLite(t), &repomanager.SQLiteRepositoryManager{}
}

func addGroups(t *testing.T, db *sql.DB, m repomanager.RepositoryManager, chatIDs ...string) {
	t.Helper()
	for _, id := range chatIDs {
		require.NoError(t, m.Groups(db).Add(context.Background(), &models.Group{ChatID: id, AddedAt: time.Now()}))
	}
}

func addUsers(t *testing.T, db *sql.DB, m repomanager.RepositoryManager, ids ...int64) {
	t.Helper()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range ids {
		require.NoError(t, m.Users(db).Touch(context.Background(), &models.User{ID: id}, base.Add(time.Duration(i)*time.Second)))
	}
}

type fakeChecker struct {
	mu      sync.Mutex
	results map[string]Membership
	errs    map[string]error
	hang    map[string]bool
	calls   []string
}

func (f *fakeChecker) CheckMembership(ctx context.Context, chatID string, userID int64) (Membership, error) {
	f.mu.Lock()
	f.calls = append(f.calls, chatID)
	hang := f.hang[chatID]
	err := f.errs[chatID]
	res := f.results[chatID]
	f.mu.Unlock()

	if hang {
		<-ctx.Done()
		return MembershipUnknown, ctx.Err()
	}
	if err != nil {
		return MembershipUnknown, err
	}
	return res, nil
}

type fakeDeliverer struct {
	mu      sync.Mutex
	failFor map[int64]bool
	hang    bool
	calls   []int64
	times   []time.Time
	onCall  func(n int)
}

func (f *fakeDeliverer) Deliver(ctx context.Context, userID int64, p BroadcastPayload) error {
	f.mu.Lock()
	f.calls = append(f.calls, userID)
	f.times = append(f.times, time.Now())
	n := len(f.calls)
	fail := f.failFor[userID]
	hang := f.hang
	onCall := f.onCall
	f.mu.Unlock()

	if onCall != nil {
		onCall(n)
	}
	if hang {
		<-ctx.Done()
		return ctx.Err()
	}
	if fail {
		return errBlocked
	}
	return nil
}

type deliveryError string

func (e deliveryError) Error() string { return string(e) }

const errBlocked = deliveryError("bot was blocked by the user")
