package dispatcher

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/kinogate/internal/logging"
	"github.com/dmitrijs2005/kinogate/internal/server/chat"
	"github.com/dmitrijs2005/kinogate/internal/server/models"
	"github.com/dmitrijs2005/kinogate/internal/server/services"
	"github.com/dmitrijs2005/kinogate/internal/server/wizard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	rootID     int64 = 1
	operatorID int64 = 2
	plainID    int64 = 3
)

type fixture struct {
	gate    *fakeGate
	roles   *fakeRoles
	catalog *fakeCatalog
	admin   *fakeAdmin
	wizards *fakeWizards
	d       *Dispatcher
}

func newFixture() *fixture {
	f := &fixture{
		gate:  &fakeGate{decision: services.Decision{Allowed: true}},
		roles: &fakeRoles{roots: []int64{rootID}, ops: map[int64]bool{operatorID: true}},
		catalog: &fakeCatalog{records: map[string]models.ContentRecord{
			"A1": {ID: 1, Code: "A1", FileID: "file-a1", Kind: models.MediaVideo, Title: "Alpha", Description: "First film"},
		}},
		admin: &fakeAdmin{
			roots: []int64{rootID},
			groups: []models.Group{
				{ID: 1, ChatID: "@one", Handle: "@one"},
				{ID: 2, ChatID: "-100200", Handle: "@two"},
			},
			ops: []models.Operator{{UserID: operatorID, UserName: "op"}, {UserID: 7, UserName: "seven"}},
		},
		wizards: &fakeWizards{active: map[int64]bool{}},
	}
	f.d = New(Deps{
		Gate:    f.gate,
		Roles:   f.roles,
		Catalog: f.catalog,
		Admin:   f.admin,
		Wizards: f.wizards,
	}, 30*24*time.Hour, logging.Nop{})
	return f
}

func textEvent(userID int64, text string) chat.Event {
	return chat.Event{Kind: chat.EventText, UserID: userID, ChatID: userID, FirstName: "Ann", Text: text}
}

func commandEvent(userID int64, cmd string) chat.Event {
	return chat.Event{Kind: chat.EventCommand, UserID: userID, ChatID: userID, FirstName: "Ann", Command: cmd}
}

func callbackEvent(userID int64, data string) chat.Event {
	return chat.Event{
		Kind:              chat.EventCallback,
		UserID:            userID,
		ChatID:            userID,
		CallbackID:        "cb-1",
		CallbackData:      data,
		CallbackMessageID: 55,
	}
}

func TestHandle_LookupFound(t *testing.T) {
	f := newFixture()
	out := &recorder{}

	require.NoError(t, f.d.Handle(context.Background(), textEvent(plainID, " a1 "), out))

	require.Len(t, out.actions, 1)
	a := out.actions[0]
	assert.Equal(t, chat.ActionMedia, a.Kind)
	assert.Equal(t, "file-a1", a.Media.FileID)
	assert.Equal(t, models.MediaVideo, a.Media.Kind)
	assert.Contains(t, a.Text, "Alpha")
	assert.Contains(t, a.Text, "First film")
	assert.Contains(t, a.Text, "A1")
	assert.Equal(t, []int64{plainID}, f.admin.touched)
}

func TestHandle_LookupNotFound(t *testing.T) {
	f := newFixture()
	out := &recorder{}

	require.NoError(t, f.d.Handle(context.Background(), textEvent(plainID, "zz9"), out))

	require.Len(t, out.actions, 1)
	assert.Equal(t, chat.ActionText, out.actions[0].Kind)
	assert.Contains(t, out.actions[0].Text, "ZZ9")
}

func TestHandle_LookupStoreError(t *testing.T) {
	f := newFixture()
	f.catalog.err = errors.New("db down")
	out := &recorder{}

	require.NoError(t, f.d.Handle(context.Background(), textEvent(plainID, "A1"), out))
	assert.Equal(t, textInternalError, out.last().Text)
}

func TestHandle_DeliveryFailureFallsBackToText(t *testing.T) {
	f := newFixture()
	out := &recorder{fail: true, failOn: chat.ActionMedia}

	require.NoError(t, f.d.Handle(context.Background(), textEvent(plainID, "A1"), out))

	require.Len(t, out.actions, 1)
	assert.Equal(t, textDeliveryFailed, out.actions[0].Text)
}

func TestHandle_GateBlocksLookup(t *testing.T) {
	f := newFixture()
	f.gate.decision = services.Decision{Blocking: []models.Group{{ID: 2, ChatID: "-100200", Handle: "@two"}}}
	out := &recorder{}

	require.NoError(t, f.d.Handle(context.Background(), textEvent(plainID, "A1"), out))

	require.Len(t, out.actions, 1)
	a := out.actions[0]
	assert.Equal(t, textJoinRequired, a.Text)
	require.NotNil(t, a.Keyboard)
	require.Len(t, a.Keyboard.Rows, 2)
	assert.Equal(t, "https://t.me/two", a.Keyboard.Rows[0][0].URL)
	assert.Equal(t, chat.CallbackCheckSubscription, a.Keyboard.Rows[1][0].Data)
}

func TestHandle_GateErrorDenies(t *testing.T) {
	f := newFixture()
	f.gate.err = errors.New("store down")
	out := &recorder{}

	require.NoError(t, f.d.Handle(context.Background(), textEvent(plainID, "A1"), out))

	require.Len(t, out.actions, 1)
	assert.Equal(t, textInternalError, out.actions[0].Text)
}

func TestHandle_NonTextAfterGateAsksForCode(t *testing.T) {
	f := newFixture()
	out := &recorder{}
	ev := chat.Event{Kind: chat.EventMedia, UserID: plainID, ChatID: plainID, Media: &chat.Media{Kind: models.MediaVideo, FileID: "x"}}

	require.NoError(t, f.d.Handle(context.Background(), ev, out))
	assert.Equal(t, textSendCode, out.last().Text)
}

func TestHandle_ActiveWizardTakesPriorityOverGate(t *testing.T) {
	f := newFixture()
	f.gate.decision = services.Decision{Blocking: []models.Group{{ID: 1, ChatID: "@one"}}}
	f.wizards.active[operatorID] = true
	out := &recorder{}

	require.NoError(t, f.d.Handle(context.Background(), textEvent(operatorID, "A1"), out))

	assert.Len(t, f.wizards.steps, 1)
	assert.Zero(t, f.gate.calls)
	assert.Empty(t, out.actions)
}

func TestHandle_AdminButton(t *testing.T) {
	t.Run("operator gets panel", func(t *testing.T) {
		f := newFixture()
		out := &recorder{}

		require.NoError(t, f.d.Handle(context.Background(), textEvent(operatorID, AdminButton), out))

		require.Len(t, out.actions, 1)
		assert.Equal(t, textAdminPanel, out.actions[0].Text)
		assert.Zero(t, f.gate.calls)
	})

	t.Run("operator leaves open wizard", func(t *testing.T) {
		f := newFixture()
		f.wizards.active[operatorID] = true
		out := &recorder{}

		require.NoError(t, f.d.Handle(context.Background(), textEvent(operatorID, AdminButton), out))

		require.Len(t, out.actions, 1)
		assert.Equal(t, textAdminPanel, out.actions[0].Text)
		assert.Empty(t, f.wizards.steps)
		assert.False(t, f.wizards.Active(operatorID))
	})

	t.Run("plain user falls through to lookup", func(t *testing.T) {
		f := newFixture()
		out := &recorder{}

		require.NoError(t, f.d.Handle(context.Background(), textEvent(plainID, AdminButton), out))

		assert.Equal(t, 1, f.gate.calls)
		assert.True(t, strings.HasPrefix(out.last().Text, "❌"))
	})
}

func TestHandle_Start(t *testing.T) {
	t.Run("allowed plain user", func(t *testing.T) {
		f := newFixture()
		out := &recorder{}

		require.NoError(t, f.d.Handle(context.Background(), commandEvent(plainID, "start"), out))

		require.Len(t, out.actions, 1)
		assert.Contains(t, out.actions[0].Text, "Ann")
		assert.Nil(t, out.actions[0].Keyboard)
	})

	t.Run("operator gets reply keyboard", func(t *testing.T) {
		f := newFixture()
		out := &recorder{}

		require.NoError(t, f.d.Handle(context.Background(), commandEvent(rootID, "start"), out))

		require.NotNil(t, out.last().Keyboard)
		assert.True(t, out.last().Keyboard.Reply)
		assert.Equal(t, AdminButton, out.last().Keyboard.Rows[0][0].Text)
	})

	t.Run("blocked user gets join prompt", func(t *testing.T) {
		f := newFixture()
		f.gate.decision = services.Decision{Blocking: []models.Group{{ID: 1, ChatID: "@one", Handle: "@one"}}}
		out := &recorder{}

		require.NoError(t, f.d.Handle(context.Background(), commandEvent(plainID, "start"), out))
		assert.Equal(t, textJoinRequired, out.last().Text)
	})
}

func TestHandle_AdminCommand(t *testing.T) {
	f := newFixture()
	out := &recorder{}

	require.NoError(t, f.d.Handle(context.Background(), commandEvent(plainID, "admin"), out))
	assert.Equal(t, textAccessDenied, out.last().Text)

	f.wizards.active[operatorID] = true
	require.NoError(t, f.d.Handle(context.Background(), commandEvent(operatorID, "admin"), out))
	assert.Equal(t, textAdminPanel, out.last().Text)
	assert.False(t, f.wizards.Active(operatorID))
}

func TestHandle_CancelThenLookup(t *testing.T) {
	f := newFixture()
	f.wizards.active[operatorID] = true
	out := &recorder{}

	require.NoError(t, f.d.Handle(context.Background(), commandEvent(operatorID, "cancel"), out))
	assert.False(t, f.wizards.Active(operatorID))

	require.NoError(t, f.d.Handle(context.Background(), textEvent(operatorID, "A1"), out))
	assert.Equal(t, chat.ActionMedia, out.last().Kind)
	assert.Empty(t, f.wizards.steps)

	require.NoError(t, f.d.Handle(context.Background(), commandEvent(operatorID, "cancel"), out))
	assert.Equal(t, textNothingToCancel, out.last().Text)
}

func TestHandle_UnknownCommand(t *testing.T) {
	f := newFixture()
	out := &recorder{}

	require.NoError(t, f.d.Handle(context.Background(), commandEvent(plainID, "help"), out))
	assert.Equal(t, textUnknownCommand, out.last().Text)
}

func TestCallback_CheckSubscription(t *testing.T) {
	t.Run("still blocked", func(t *testing.T) {
		f := newFixture()
		f.gate.decision = services.Decision{Blocking: []models.Group{{ID: 1, ChatID: "@one", Handle: "@one"}}}
		out := &recorder{}

		require.NoError(t, f.d.Handle(context.Background(), callbackEvent(plainID, chat.CallbackCheckSubscription), out))

		require.Equal(t, []chat.ActionKind{chat.ActionAnswerCallback, chat.ActionEdit}, out.kinds())
		assert.True(t, out.actions[0].Alert)
		assert.Equal(t, int64(55), out.actions[1].MessageID)
		assert.Equal(t, textJoinRequired, out.actions[1].Text)
	})

	t.Run("now allowed", func(t *testing.T) {
		f := newFixture()
		out := &recorder{}

		require.NoError(t, f.d.Handle(context.Background(), callbackEvent(plainID, chat.CallbackCheckSubscription), out))

		require.Equal(t, []chat.ActionKind{chat.ActionAnswerCallback, chat.ActionEdit, chat.ActionText}, out.kinds())
		assert.Equal(t, textThanks, out.actions[1].Text)
	})
}

func TestCallback_AdminActionsRequireRole(t *testing.T) {
	for _, data := range []string{
		chat.CallbackAdminPanel,
		chat.CallbackAdminStats,
		chat.CallbackAddContent,
		chat.CallbackBroadcast,
		chat.CallbackDeleteChannelPrefix + "1",
		chat.CallbackDeleteAdminPrefix + "7",
	} {
		t.Run(data, func(t *testing.T) {
			f := newFixture()
			out := &recorder{}

			require.NoError(t, f.d.Handle(context.Background(), callbackEvent(plainID, data), out))

			require.Len(t, out.actions, 1)
			assert.Equal(t, chat.ActionAnswerCallback, out.actions[0].Kind)
			assert.True(t, out.actions[0].Alert)
			assert.Empty(t, f.wizards.started)
			assert.Len(t, f.admin.groups, 2)
			assert.Len(t, f.admin.ops, 2)
		})
	}
}

func TestCallback_StartsWizard(t *testing.T) {
	f := newFixture()
	out := &recorder{}

	require.NoError(t, f.d.Handle(context.Background(), callbackEvent(operatorID, chat.CallbackAddContent), out))

	assert.Equal(t, []wizard.Wizard{wizard.AddContent}, f.wizards.started)
	assert.True(t, f.wizards.Active(operatorID))
}

func TestCallback_CancelNeedsNoRole(t *testing.T) {
	f := newFixture()
	f.wizards.active[plainID] = true
	out := &recorder{}

	require.NoError(t, f.d.Handle(context.Background(), callbackEvent(plainID, chat.CallbackCancel), out))

	assert.False(t, f.wizards.Active(plainID))
	assert.Equal(t, textCancelled, out.last().Text)
}

func TestCallback_Stats(t *testing.T) {
	f := newFixture()
	f.admin.stats = services.Stats{Users: 10, ActiveUsers: 4, Content: 3, Groups: 2}
	out := &recorder{}

	require.NoError(t, f.d.Handle(context.Background(), callbackEvent(operatorID, chat.CallbackAdminStats), out))

	text := out.last().Text
	assert.Contains(t, text, "Users: 10")
	assert.Contains(t, text, "last 30 days: 4")
	assert.Contains(t, text, "Content: 3")
}

func TestCallback_DeleteChannel(t *testing.T) {
	f := newFixture()
	out := &recorder{}

	require.NoError(t, f.d.Handle(context.Background(), callbackEvent(rootID, chat.CallbackDeleteChannelPrefix+"1"), out))

	require.Len(t, f.admin.groups, 1)
	assert.Equal(t, int64(2), f.admin.groups[0].ID)
	require.Equal(t, []chat.ActionKind{chat.ActionAnswerCallback, chat.ActionEdit}, out.kinds())
	assert.Contains(t, out.actions[0].Text, "@one")

	out = &recorder{}
	require.NoError(t, f.d.Handle(context.Background(), callbackEvent(rootID, chat.CallbackDeleteChannelPrefix+"1"), out))
	assert.Equal(t, textChannelGone, out.actions[0].Text)
}

func TestCallback_DeleteAdmin(t *testing.T) {
	tests := []struct {
		name     string
		actor    int64
		target   string
		wantText string
		wantOps  int
	}{
		{name: "remove other", actor: rootID, target: "7", wantText: textAdminRemoved, wantOps: 1},
		{name: "self", actor: operatorID, target: "2", wantText: textCannotRevoke, wantOps: 2},
		{name: "root", actor: operatorID, target: "1", wantText: textCannotRevoke, wantOps: 2},
		{name: "missing", actor: rootID, target: "99", wantText: textAdminGone, wantOps: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			out := &recorder{}

			require.NoError(t, f.d.Handle(context.Background(), callbackEvent(tt.actor, chat.CallbackDeleteAdminPrefix+tt.target), out))

			assert.Equal(t, tt.wantText, out.actions[0].Text)
			assert.Len(t, f.admin.ops, tt.wantOps)
		})
	}
}

func TestCallback_ListAdminsHidesViewer(t *testing.T) {
	f := newFixture()
	out := &recorder{}

	require.NoError(t, f.d.Handle(context.Background(), callbackEvent(operatorID, chat.CallbackListAdmins), out))

	kb := out.last().Keyboard
	require.NotNil(t, kb)
	for _, row := range kb.Rows {
		for _, b := range row {
			assert.NotEqual(t, chat.CallbackDeleteAdminPrefix+"2", b.Data)
		}
	}
	assert.Contains(t, out.last().Text, "seven (7)")
}

func TestCallback_Export(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		f := newFixture()
		out := &recorder{}

		require.NoError(t, f.d.Handle(context.Background(), callbackEvent(rootID, chat.CallbackExport), out))
		assert.Equal(t, textExportDisabled, out.last().Text)
		assert.True(t, out.last().Alert)
	})

	t.Run("enabled", func(t *testing.T) {
		f := newFixture()
		f.catalog.exportEnabled = true
		f.catalog.exportResult = &services.ExportResult{Key: "exports/x.json", URL: "https://s3.local/x", Records: 4}
		out := &recorder{}

		require.NoError(t, f.d.Handle(context.Background(), callbackEvent(rootID, chat.CallbackExport), out))

		assert.Contains(t, out.last().Text, "https://s3.local/x")
		assert.Contains(t, out.last().Text, "4 records")
	})
}

func TestCallback_Close(t *testing.T) {
	f := newFixture()
	out := &recorder{}

	require.NoError(t, f.d.Handle(context.Background(), callbackEvent(rootID, chat.CallbackClose), out))

	assert.Equal(t, chat.ActionDelete, out.last().Kind)
	assert.Equal(t, int64(55), out.last().MessageID)
}

func TestHandle_RecoversPanic(t *testing.T) {
	f := newFixture()
	f.gate.panicMsg = "boom"
	out := &recorder{}

	err := f.d.Handle(context.Background(), textEvent(plainID, "A1"), out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")

	// the per-user lock was released
	f.gate.panicMsg = ""
	require.NoError(t, f.d.Handle(context.Background(), textEvent(plainID, "A1"), out))
}

func TestHandle_SerializesPerUser(t *testing.T) {
	f := newFixture()
	out := &recorder{}

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = f.d.Handle(context.Background(), textEvent(plainID, "A1"), out)
		}()
	}
	wg.Wait()

	assert.Equal(t, 20, f.gate.calls)
	assert.Len(t, out.actions, 20)
	assert.Zero(t, f.d.locks.size())
}
