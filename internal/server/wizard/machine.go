package wizard

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/dmitrijs2005/kinogate/internal/logging"
	"github.com/dmitrijs2005/kinogate/internal/server/chat"
	"github.com/dmitrijs2005/kinogate/internal/server/models"
	"github.com/dmitrijs2005/kinogate/internal/server/services"
	"github.com/patrickmn/go-cache"
)

// ErrNoConversation is returned by Step for users without an open wizard.
var ErrNoConversation = errors.New("no open conversation")

type Roles interface {
	IsOperator(ctx context.Context, id int64) bool
}

type Catalog interface {
	Add(ctx context.Context, rec *models.ContentRecord) error
	Delete(ctx context.Context, code string) error
}

type Admin interface {
	AddGroup(ctx context.Context, chatID, handle string) (*models.Group, error)
	GrantOperator(ctx context.Context, userID int64, name string, grantedBy int64) error
	GetUser(ctx context.Context, id int64) (*models.User, error)
	FindUserByName(ctx context.Context, userName string) (*models.User, error)
}

type Broadcaster interface {
	Run(ctx context.Context, p services.BroadcastPayload) (services.Report, error)
}

// Platform is the slice of the messaging API the wizards need.
type Platform interface {
	// ProbeChat verifies the bot can act in chatID and returns its public
	// handle when it has one.
	ProbeChat(ctx context.Context, chatID string) (string, error)
	// UserName returns a display name for a user id.
	UserName(ctx context.Context, userID int64) (string, error)
}

// Deps bundles the collaborators of a Machine.
type Deps struct {
	Roles       Roles
	Catalog     Catalog
	Admin       Admin
	Broadcaster Broadcaster
	Platform    Platform
}

// Machine owns every user's Conversation. Callers must serialize calls for
// the same user; different users may be handled concurrently.
type Machine struct {
	store  *cache.Cache
	deps   Deps
	logger logging.Logger
}

// New creates a Machine whose conversations expire after ttl without input.
func New(deps Deps, ttl time.Duration, l logging.Logger) *Machine {
	return &Machine{
		store:  cache.New(ttl, ttl),
		deps:   deps,
		logger: l.With("module", "wizard"),
	}
}

func key(userID int64) string {
	return strconv.FormatInt(userID, 10)
}

func (m *Machine) get(userID int64) (Conversation, bool) {
	v, ok := m.store.Get(key(userID))
	if !ok {
		return Conversation{}, false
	}
	return v.(Conversation), true
}

func (m *Machine) put(userID int64, c Conversation) {
	m.store.SetDefault(key(userID), c)
}

func (m *Machine) clear(userID int64) {
	m.store.Delete(key(userID))
}

// State returns the user's current step, Idle when nothing is open.
func (m *Machine) State(userID int64) State {
	c, ok := m.get(userID)
	if !ok {
		return Idle
	}
	return c.State
}

// Active reports whether the user is in the middle of a wizard.
func (m *Machine) Active(userID int64) bool {
	return m.State(userID) != Idle
}

// Cancel discards the user's conversation and reports whether one was open.
func (m *Machine) Cancel(userID int64) bool {
	active := m.Active(userID)
	m.clear(userID)
	return active
}

// Start opens wizard w for the event's sender, replacing any unfinished one,
// and sends the first prompt. The caller has already checked the role.
func (m *Machine) Start(ctx context.Context, ev chat.Event, w Wizard, out chat.Responder) error {
	state, ok := firstState[w]
	if !ok {
		return errors.New("unknown wizard " + string(w))
	}

	if prev, ok := m.get(ev.UserID); ok && prev.State != Idle {
		m.logger.Debug(ctx, "discarding unfinished wizard", "user_id", ev.UserID, "wizard", prev.Wizard)
	}
	m.put(ev.UserID, Conversation{Wizard: w, State: state})

	m.logger.Debug(ctx, "wizard started", "user_id", ev.UserID, "wizard", w)

	var prompt string
	switch w {
	case AddGroup:
		prompt = promptChannel
	case AddContent:
		prompt = promptContentCode
	case DeleteContent:
		prompt = promptDeletionCode
	case Broadcast:
		prompt = promptBroadcast
	case AddOperator:
		prompt = promptOperator
	}
	return m.prompt(ctx, out, ev.ChatID, prompt)
}

// Step feeds one event into the user's open wizard. The operator role is
// re-checked first; a user who lost it is silently returned to Idle and the
// event is dropped.
func (m *Machine) Step(ctx context.Context, ev chat.Event, out chat.Responder) error {
	conv, ok := m.get(ev.UserID)
	if !ok || conv.State == Idle {
		return ErrNoConversation
	}

	if !m.deps.Roles.IsOperator(ctx, ev.UserID) {
		m.clear(ev.UserID)
		m.logger.Warn(ctx, "role revoked mid-wizard, conversation dropped", "user_id", ev.UserID, "wizard", conv.Wizard)
		return nil
	}

	switch conv.State {
	case AwaitingChannelIdentifier:
		return m.stepChannel(ctx, ev, conv, out)
	case AwaitingContentCode:
		return m.stepContentCode(ctx, ev, conv, out)
	case AwaitingContentFile:
		return m.stepContentFile(ctx, ev, conv, out)
	case AwaitingContentTitle:
		return m.stepContentTitle(ctx, ev, conv, out)
	case AwaitingDeletionCode:
		return m.stepDeletionCode(ctx, ev, conv, out)
	case AwaitingBroadcastPayload:
		return m.stepBroadcast(ctx, ev, conv, out)
	case AwaitingOperatorIdentifier:
		return m.stepOperator(ctx, ev, conv, out)
	default:
		m.clear(ev.UserID)
		return ErrNoConversation
	}
}

// advance stores the next step and keeps the TTL fresh.
func (m *Machine) advance(userID int64, conv Conversation, next State) {
	conv.State = next
	m.put(userID, conv)
}

// stay refreshes the TTL without changing the step.
func (m *Machine) stay(userID int64, conv Conversation) {
	m.put(userID, conv)
}

func cancelKeyboard() *chat.Keyboard {
	return &chat.Keyboard{Rows: [][]chat.Button{
		chat.Row(chat.Button{Text: cancelButton, Data: chat.CallbackCancel}),
	}}
}

func backKeyboard() *chat.Keyboard {
	return &chat.Keyboard{Rows: [][]chat.Button{
		chat.Row(chat.Button{Text: "⬅️ Admin panel", Data: chat.CallbackAdminPanel}),
	}}
}

func (m *Machine) prompt(ctx context.Context, out chat.Responder, chatID int64, text string) error {
	return out.Send(ctx, chat.Action{Kind: chat.ActionText, ChatID: chatID, Text: text, Keyboard: cancelKeyboard()})
}

func (m *Machine) finish(ctx context.Context, out chat.Responder, chatID int64, text string) error {
	return out.Send(ctx, chat.Action{Kind: chat.ActionText, ChatID: chatID, Text: text, Keyboard: backKeyboard()})
}

// Cancelled sends the cancellation notice.
func Cancelled(ctx context.Context, out chat.Responder, chatID int64) error {
	return out.Send(ctx, chat.Action{Kind: chat.ActionText, ChatID: chatID, Text: cancelled, Keyboard: backKeyboard()})
}
