package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/kinogate/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chatIDs(d Decision) []string {
	ids := make([]string, 0, len(d.Blocking))
	for _, g := range d.Blocking {
		ids = append(ids, g.ChatID)
	}
	return ids
}

func TestAccessGate_EmptyRegistryAllowsEveryone(t *testing.T) {
	db, m := newStore(t)
	checker := &fakeChecker{}
	gate := NewAccessGate(db, m, checker, time.Second, logging.Nop{})

	for _, userID := range []int64{1, 2, 999} {
		d, err := gate.Evaluate(context.Background(), userID)
		require.NoError(t, err)
		assert.True(t, d.Allowed)
		assert.Empty(t, d.Blocking)
	}
	assert.Empty(t, checker.calls)
}

func TestAccessGate_MemberOfFirstGroupOnly(t *testing.T) {
	db, m := newStore(t)
	addGroups(t, db, m, "G1", "G2")

	checker := &fakeChecker{results: map[string]Membership{
		"G1": MembershipMember,
		"G2": MembershipNotMember,
	}}
	gate := NewAccessGate(db, m, checker, time.Second, logging.Nop{})

	d, err := gate.Evaluate(context.Background(), 42)
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, []string{"G2"}, chatIDs(d))
}

func TestAccessGate_FailuresAndUnknownBlockInRegistryOrder(t *testing.T) {
	db, m := newStore(t)
	addGroups(t, db, m, "A", "B", "C", "D")

	checker := &fakeChecker{
		results: map[string]Membership{
			"A": MembershipUnknown,
			"B": MembershipMember,
			"D": MembershipNotMember,
		},
		errs: map[string]error{"C": errors.New("chat not found")},
	}
	gate := NewAccessGate(db, m, checker, time.Second, logging.Nop{})

	d, err := gate.Evaluate(context.Background(), 7)
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, []string{"A", "C", "D"}, chatIDs(d))
	assert.Len(t, checker.calls, 4)
}

func TestAccessGate_AllMembersAllowed(t *testing.T) {
	db, m := newStore(t)
	addGroups(t, db, m, "A", "B")

	checker := &fakeChecker{results: map[string]Membership{"A": MembershipMember, "B": MembershipMember}}
	gate := NewAccessGate(db, m, checker, time.Second, logging.Nop{})

	d, err := gate.Evaluate(context.Background(), 7)
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.Empty(t, d.Blocking)
}

func TestAccessGate_TimeoutIsFailClosed(t *testing.T) {
	db, m := newStore(t)
	addGroups(t, db, m, "slow", "fast")

	checker := &fakeChecker{
		results: map[string]Membership{"fast": MembershipMember},
		hang:    map[string]bool{"slow": true},
	}
	gate := NewAccessGate(db, m, checker, 20*time.Millisecond, logging.Nop{})

	start := time.Now()
	d, err := gate.Evaluate(context.Background(), 7)
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.False(t, d.Allowed)
	assert.Equal(t, []string{"slow"}, chatIDs(d))
}

func TestAccessGate_StoreErrorIsReturned(t *testing.T) {
	db, m := newStore(t)
	gate := NewAccessGate(db, m, &fakeChecker{}, time.Second, logging.Nop{})
	require.NoError(t, db.Close())

	_, err := gate.Evaluate(context.Background(), 7)
	require.Error(t, err)
}

func TestMembership_String(t *testing.T) {
	assert.Equal(t, "member", MembershipMember.String())
	assert.Equal(t, "not_member", MembershipNotMember.String())
	assert.Equal(t, "unknown", MembershipUnknown.String())
}
