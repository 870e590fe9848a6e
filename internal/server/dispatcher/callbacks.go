package dispatcher

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/kinogate/internal/common"
	"github.com/dmitrijs2005/kinogate/internal/server/chat"
	"github.com/dmitrijs2005/kinogate/internal/server/wizard"
)

var wizardCallbacks = map[string]wizard.Wizard{
	chat.CallbackAddChannel:    wizard.AddGroup,
	chat.CallbackAddContent:    wizard.AddContent,
	chat.CallbackDeleteContent: wizard.DeleteContent,
	chat.CallbackBroadcast:     wizard.Broadcast,
	chat.CallbackAddAdmin:      wizard.AddOperator,
}

func (d *Dispatcher) handleCallback(ctx context.Context, ev chat.Event, out chat.Responder) error {
	data := ev.CallbackData

	switch data {
	case chat.CallbackCheckSubscription:
		return d.recheckSubscription(ctx, ev, out)
	case chat.CallbackCancel:
		d.deps.Wizards.Cancel(ev.UserID)
		if err := d.answer(ctx, out, ev, "", false); err != nil {
			return err
		}
		return d.edit(ctx, out, ev, textCancelled, backKeyboard())
	}

	if !d.deps.Roles.IsOperator(ctx, ev.UserID) {
		return d.answer(ctx, out, ev, textAccessDenied, true)
	}

	if w, ok := wizardCallbacks[data]; ok {
		if err := d.answer(ctx, out, ev, "", false); err != nil {
			return err
		}
		return d.deps.Wizards.Start(ctx, ev, w, out)
	}

	switch {
	case data == chat.CallbackAdminPanel:
		d.deps.Wizards.Cancel(ev.UserID)
		if err := d.answer(ctx, out, ev, "", false); err != nil {
			return err
		}
		return d.edit(ctx, out, ev, textAdminPanel, panelKeyboard(d.deps.Catalog.ExportEnabled()))
	case data == chat.CallbackAdminStats:
		return d.showStats(ctx, ev, out)
	case data == chat.CallbackListChannels:
		return d.showChannels(ctx, ev, out, false)
	case data == chat.CallbackDeleteChannel:
		return d.showChannels(ctx, ev, out, true)
	case data == chat.CallbackUsers:
		return d.showUsers(ctx, ev, out)
	case data == chat.CallbackListAdmins:
		return d.showAdmins(ctx, ev, out)
	case data == chat.CallbackExport:
		return d.export(ctx, ev, out)
	case data == chat.CallbackClose:
		if err := d.answer(ctx, out, ev, "", false); err != nil {
			return err
		}
		return d.send(ctx, out, chat.Action{Kind: chat.ActionDelete, ChatID: ev.ChatID, MessageID: ev.CallbackMessageID})
	case strings.HasPrefix(data, chat.CallbackDeleteChannelPrefix):
		return d.deleteChannel(ctx, ev, out, strings.TrimPrefix(data, chat.CallbackDeleteChannelPrefix))
	case strings.HasPrefix(data, chat.CallbackDeleteAdminPrefix):
		return d.deleteAdmin(ctx, ev, out, strings.TrimPrefix(data, chat.CallbackDeleteAdminPrefix))
	default:
		d.logger.Debug(ctx, "unknown callback", "data", data, "user_id", ev.UserID)
		return d.answer(ctx, out, ev, "", false)
	}
}

func (d *Dispatcher) recheckSubscription(ctx context.Context, ev chat.Event, out chat.Responder) error {
	decision, err := d.deps.Gate.Evaluate(ctx, ev.UserID)
	if err != nil {
		d.logger.Error(ctx, "access gate failed", "user_id", ev.UserID, "error", err)
		return d.answer(ctx, out, ev, textInternalError, true)
	}

	if !decision.Allowed {
		if err := d.answer(ctx, out, ev, textStillBlocked, true); err != nil {
			return err
		}
		return d.edit(ctx, out, ev, textJoinRequired, joinKeyboard(decision.Blocking))
	}

	if err := d.answer(ctx, out, ev, "", false); err != nil {
		return err
	}
	if err := d.edit(ctx, out, ev, textThanks, nil); err != nil {
		return err
	}
	return d.welcome(ctx, ev, out)
}

func (d *Dispatcher) showStats(ctx context.Context, ev chat.Event, out chat.Responder) error {
	st, err := d.deps.Admin.Stats(ctx)
	if err != nil {
		d.logger.Error(ctx, "stats failed", "error", err)
		return d.answer(ctx, out, ev, textInternalError, true)
	}
	if err := d.answer(ctx, out, ev, "", false); err != nil {
		return err
	}
	return d.edit(ctx, out, ev, statsText(st, d.activeWindow), backKeyboard())
}

func (d *Dispatcher) showChannels(ctx context.Context, ev chat.Event, out chat.Responder, withDelete bool) error {
	groups, err := d.deps.Admin.Groups(ctx)
	if err != nil {
		d.logger.Error(ctx, "list groups failed", "error", err)
		return d.answer(ctx, out, ev, textInternalError, true)
	}
	if err := d.answer(ctx, out, ev, "", false); err != nil {
		return err
	}
	if withDelete {
		return d.edit(ctx, out, ev, channelsText(groups, true), deleteChannelsKeyboard(groups))
	}
	return d.edit(ctx, out, ev, channelsText(groups, false), backKeyboard())
}

func (d *Dispatcher) deleteChannel(ctx context.Context, ev chat.Event, out chat.Responder, raw string) error {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return d.answer(ctx, out, ev, "", false)
	}

	g, err := d.deps.Admin.RemoveGroup(ctx, id)
	switch {
	case errors.Is(err, common.ErrorNotFound):
		if err := d.answer(ctx, out, ev, textChannelGone, true); err != nil {
			return err
		}
	case err != nil:
		d.logger.Error(ctx, "remove group failed", "id", id, "error", err)
		return d.answer(ctx, out, ev, textInternalError, true)
	default:
		if err := d.answer(ctx, out, ev, channelRemovedText(g), false); err != nil {
			return err
		}
	}

	groups, err := d.deps.Admin.Groups(ctx)
	if err != nil {
		d.logger.Error(ctx, "list groups failed", "error", err)
		return nil
	}
	return d.edit(ctx, out, ev, channelsText(groups, true), deleteChannelsKeyboard(groups))
}

func (d *Dispatcher) showUsers(ctx context.Context, ev chat.Event, out chat.Responder) error {
	users, total, err := d.deps.Admin.RecentUsers(ctx, usersPageSize)
	if err != nil {
		d.logger.Error(ctx, "list users failed", "error", err)
		return d.answer(ctx, out, ev, textInternalError, true)
	}
	if err := d.answer(ctx, out, ev, "", false); err != nil {
		return err
	}
	return d.edit(ctx, out, ev, usersText(users, total), backKeyboard())
}

func (d *Dispatcher) showAdmins(ctx context.Context, ev chat.Event, out chat.Responder) error {
	ops, err := d.deps.Admin.Operators(ctx)
	if err != nil {
		d.logger.Error(ctx, "list operators failed", "error", err)
		return d.answer(ctx, out, ev, textInternalError, true)
	}
	if err := d.answer(ctx, out, ev, "", false); err != nil {
		return err
	}
	return d.edit(ctx, out, ev, adminsText(d.deps.Roles.Roots(), ops), adminsKeyboard(ops, ev.UserID))
}

func (d *Dispatcher) deleteAdmin(ctx context.Context, ev chat.Event, out chat.Responder, raw string) error {
	target, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return d.answer(ctx, out, ev, "", false)
	}

	err = d.deps.Admin.RevokeOperator(ctx, ev.UserID, target)
	switch {
	case errors.Is(err, common.ErrorForbidden):
		return d.answer(ctx, out, ev, textCannotRevoke, true)
	case errors.Is(err, common.ErrorNotFound):
		if err := d.answer(ctx, out, ev, textAdminGone, true); err != nil {
			return err
		}
	case err != nil:
		d.logger.Error(ctx, "revoke operator failed", "user_id", target, "error", err)
		return d.answer(ctx, out, ev, textInternalError, true)
	default:
		if err := d.answer(ctx, out, ev, textAdminRemoved, false); err != nil {
			return err
		}
	}

	return d.renderAdmins(ctx, ev, out)
}

func (d *Dispatcher) renderAdmins(ctx context.Context, ev chat.Event, out chat.Responder) error {
	ops, err := d.deps.Admin.Operators(ctx)
	if err != nil {
		d.logger.Error(ctx, "list operators failed", "error", err)
		return nil
	}
	return d.edit(ctx, out, ev, adminsText(d.deps.Roles.Roots(), ops), adminsKeyboard(ops, ev.UserID))
}

func (d *Dispatcher) export(ctx context.Context, ev chat.Event, out chat.Responder) error {
	if !d.deps.Catalog.ExportEnabled() {
		return d.answer(ctx, out, ev, textExportDisabled, true)
	}
	if err := d.answer(ctx, out, ev, textExportStarted, false); err != nil {
		return err
	}

	res, err := d.deps.Catalog.Export(ctx)
	if err != nil {
		d.logger.Error(ctx, "catalog export failed", "error", err)
		return d.reply(ctx, out, ev.ChatID, textInternalError)
	}
	return d.send(ctx, out, chat.Action{
		Kind:     chat.ActionText,
		ChatID:   ev.ChatID,
		Text:     exportText(res),
		Keyboard: backKeyboard(),
	})
}

func (d *Dispatcher) answer(ctx context.Context, out chat.Responder, ev chat.Event, text string, alert bool) error {
	return d.send(ctx, out, chat.Action{
		Kind:       chat.ActionAnswerCallback,
		ChatID:     ev.ChatID,
		CallbackID: ev.CallbackID,
		Text:       text,
		Alert:      alert,
	})
}

// edit rewrites the message the callback button belongs to.
func (d *Dispatcher) edit(ctx context.Context, out chat.Responder, ev chat.Event, text string, kb *chat.Keyboard) error {
	return d.send(ctx, out, chat.Action{
		Kind:      chat.ActionEdit,
		ChatID:    ev.ChatID,
		MessageID: ev.CallbackMessageID,
		Text:      text,
		Keyboard:  kb,
	})
}
