// Package dispatcher routes inbound events to the access gate, the operator
// wizards, admin actions or content lookup, in a fixed priority order.
package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/kinogate/internal/logging"
	"github.com/dmitrijs2005/kinogate/internal/server/chat"
	"github.com/dmitrijs2005/kinogate/internal/server/metrics"
	"github.com/dmitrijs2005/kinogate/internal/server/models"
	"github.com/dmitrijs2005/kinogate/internal/server/services"
	"github.com/dmitrijs2005/kinogate/internal/server/wizard"
)

type Gate interface {
	Evaluate(ctx context.Context, userID int64) (services.Decision, error)
}

type Roles interface {
	IsOperator(ctx context.Context, id int64) bool
	IsRoot(id int64) bool
	Roots() []int64
}

type Catalog interface {
	Lookup(ctx context.Context, code string) (*models.ContentRecord, error)
	ExportEnabled() bool
	Export(ctx context.Context) (*services.ExportResult, error)
}

type Admin interface {
	TouchUser(ctx context.Context, u models.User) error
	Stats(ctx context.Context) (services.Stats, error)
	RecentUsers(ctx context.Context, limit int) ([]models.User, int64, error)
	Groups(ctx context.Context) ([]models.Group, error)
	RemoveGroup(ctx context.Context, id int64) (*models.Group, error)
	Operators(ctx context.Context) ([]models.Operator, error)
	RevokeOperator(ctx context.Context, actor, target int64) error
}

type Wizards interface {
	Active(userID int64) bool
	Start(ctx context.Context, ev chat.Event, w wizard.Wizard, out chat.Responder) error
	Step(ctx context.Context, ev chat.Event, out chat.Responder) error
	Cancel(userID int64) bool
}

type Deps struct {
	Gate    Gate
	Roles   Roles
	Catalog Catalog
	Admin   Admin
	Wizards Wizards
}

// Dispatcher handles one event at a time per user. Events of different users
// are handled concurrently.
type Dispatcher struct {
	deps         Deps
	activeWindow time.Duration
	locks        *keyedMutex
	logger       logging.Logger
}

// New creates a Dispatcher. activeWindow is only used to label statistics.
func New(deps Deps, activeWindow time.Duration, l logging.Logger) *Dispatcher {
	return &Dispatcher{
		deps:         deps,
		activeWindow: activeWindow,
		locks:        newKeyedMutex(),
		logger:       l.With("module", "dispatcher"),
	}
}

// Handle processes ev to completion. Every domain outcome becomes a response;
// the returned error only reports failures to deliver those responses or a
// recovered panic.
func (d *Dispatcher) Handle(ctx context.Context, ev chat.Event, out chat.Responder) (err error) {
	unlock := d.locks.Lock(ev.UserID)
	defer unlock()

	defer func() {
		if p := recover(); p != nil {
			metrics.HandlerPanics.Inc()
			d.logger.Error(ctx, "panic while handling event", "user_id", ev.UserID, "kind", ev.Kind.String(), "panic", p)
			err = fmt.Errorf("panic: %v", p)
		}
	}()

	metrics.UpdatesTotal.WithLabelValues(ev.Kind.String()).Inc()

	if err := d.deps.Admin.TouchUser(ctx, ev.User()); err != nil {
		d.logger.Error(ctx, "user registration failed", "user_id", ev.UserID, "error", err)
	}

	return d.route(ctx, ev, out)
}

// route applies the priority chain: explicit commands and callbacks, then the
// operator panel button, then an open wizard, then the access gate and
// finally content lookup.
func (d *Dispatcher) route(ctx context.Context, ev chat.Event, out chat.Responder) error {
	switch ev.Kind {
	case chat.EventCallback:
		return d.handleCallback(ctx, ev, out)
	case chat.EventCommand:
		return d.handleCommand(ctx, ev, out)
	}

	// the panel button leaves any open wizard, like /admin
	if ev.Kind == chat.EventText && ev.Text == AdminButton && d.deps.Roles.IsOperator(ctx, ev.UserID) {
		d.deps.Wizards.Cancel(ev.UserID)
		return d.send(ctx, out, panelAction(ev.ChatID, d.deps.Catalog.ExportEnabled()))
	}

	if d.deps.Wizards.Active(ev.UserID) {
		err := d.deps.Wizards.Step(ctx, ev, out)
		if !errors.Is(err, wizard.ErrNoConversation) {
			return err
		}
	}

	allowed, err := d.checkGate(ctx, ev, out)
	if err != nil || !allowed {
		return err
	}

	if ev.Kind != chat.EventText {
		return d.reply(ctx, out, ev.ChatID, textSendCode)
	}
	return d.lookup(ctx, ev, out)
}

func (d *Dispatcher) handleCommand(ctx context.Context, ev chat.Event, out chat.Responder) error {
	switch ev.Command {
	case "start":
		return d.start(ctx, ev, out)
	case "admin":
		if !d.deps.Roles.IsOperator(ctx, ev.UserID) {
			return d.reply(ctx, out, ev.ChatID, textAccessDenied)
		}
		d.deps.Wizards.Cancel(ev.UserID)
		return d.send(ctx, out, panelAction(ev.ChatID, d.deps.Catalog.ExportEnabled()))
	case "cancel":
		if d.deps.Wizards.Cancel(ev.UserID) {
			return wizard.Cancelled(ctx, out, ev.ChatID)
		}
		return d.reply(ctx, out, ev.ChatID, textNothingToCancel)
	default:
		return d.reply(ctx, out, ev.ChatID, textUnknownCommand)
	}
}

// start registers the user (already done by Handle) and greets them, or
// shows the channels they still have to join.
func (d *Dispatcher) start(ctx context.Context, ev chat.Event, out chat.Responder) error {
	allowed, err := d.checkGate(ctx, ev, out)
	if err != nil || !allowed {
		return err
	}
	return d.welcome(ctx, ev, out)
}

func (d *Dispatcher) welcome(ctx context.Context, ev chat.Event, out chat.Responder) error {
	a := chat.Action{Kind: chat.ActionText, ChatID: ev.ChatID, Text: welcomeText(ev.User())}
	if d.deps.Roles.IsOperator(ctx, ev.UserID) {
		a.Keyboard = operatorReplyKeyboard()
	}
	return d.send(ctx, out, a)
}

// checkGate evaluates the access gate and, when blocked, sends the join
// prompt. Store failures deny access.
func (d *Dispatcher) checkGate(ctx context.Context, ev chat.Event, out chat.Responder) (bool, error) {
	decision, err := d.deps.Gate.Evaluate(ctx, ev.UserID)
	if err != nil {
		d.logger.Error(ctx, "access gate failed", "user_id", ev.UserID, "error", err)
		return false, d.reply(ctx, out, ev.ChatID, textInternalError)
	}
	if decision.Allowed {
		return true, nil
	}
	return false, d.send(ctx, out, chat.Action{
		Kind:     chat.ActionText,
		ChatID:   ev.ChatID,
		Text:     textJoinRequired,
		Keyboard: joinKeyboard(decision.Blocking),
	})
}

func (d *Dispatcher) reply(ctx context.Context, out chat.Responder, chatID int64, text string) error {
	return d.send(ctx, out, chat.Action{Kind: chat.ActionText, ChatID: chatID, Text: text})
}

func (d *Dispatcher) send(ctx context.Context, out chat.Responder, a chat.Action) error {
	if err := out.Send(ctx, a); err != nil {
		return fmt.Errorf("send to %d: %w", a.ChatID, err)
	}
	return nil
}
