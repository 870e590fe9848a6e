package wizard

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/kinogate/internal/common"
	"github.com/dmitrijs2005/kinogate/internal/server/chat"
	"github.com/dmitrijs2005/kinogate/internal/server/metrics"
	"github.com/dmitrijs2005/kinogate/internal/server/models"
	"github.com/dmitrijs2005/kinogate/internal/server/services"
)

func (m *Machine) commit(w Wizard, outcome string) {
	metrics.WizardCommits.WithLabelValues(string(w), outcome).Inc()
}

func textOf(ev chat.Event) (string, bool) {
	if ev.Kind != chat.EventText {
		return "", false
	}
	return strings.TrimSpace(ev.Text), true
}

func (m *Machine) stepChannel(ctx context.Context, ev chat.Event, conv Conversation, out chat.Responder) error {
	text, _ := textOf(ev)
	id, err := ParseIdentifier(text)
	if err != nil {
		m.stay(ev.UserID, conv)
		return m.prompt(ctx, out, ev.ChatID, retryIdentifier)
	}

	m.clear(ev.UserID)
	chatID := id.ChatID()

	handle, err := m.deps.Platform.ProbeChat(ctx, chatID)
	if err != nil {
		m.logger.Warn(ctx, "channel probe failed", "chat_id", chatID, "error", err)
		m.commit(conv.Wizard, "unreachable")
		return m.finish(ctx, out, ev.ChatID, fmt.Sprintf(channelUnreachable, chatID))
	}
	if id.IsHandle() {
		handle = id.Handle
	}

	g, err := m.deps.Admin.AddGroup(ctx, chatID, handle)
	switch {
	case errors.Is(err, common.ErrorAlreadyExists):
		m.commit(conv.Wizard, "duplicate")
		return m.finish(ctx, out, ev.ChatID, fmt.Sprintf(channelDuplicate, chatID))
	case err != nil:
		m.logger.Error(ctx, "add group failed", "chat_id", chatID, "error", err)
		m.commit(conv.Wizard, "error")
		return m.finish(ctx, out, ev.ChatID, internalError)
	}

	m.commit(conv.Wizard, "ok")
	return m.finish(ctx, out, ev.ChatID, fmt.Sprintf(channelAdded, g.Label()))
}

func (m *Machine) stepContentCode(ctx context.Context, ev chat.Event, conv Conversation, out chat.Responder) error {
	text, _ := textOf(ev)
	code := models.NormalizeCode(text)
	if code == "" {
		m.stay(ev.UserID, conv)
		return m.prompt(ctx, out, ev.ChatID, retryCode)
	}

	conv.Acc.Code = code
	m.advance(ev.UserID, conv, AwaitingContentFile)
	return m.prompt(ctx, out, ev.ChatID, fmt.Sprintf(promptContentFile, code))
}

func acceptedMedia(media *chat.Media) bool {
	if media == nil || media.FileID == "" {
		return false
	}
	return media.Kind == models.MediaVideo || media.Kind == models.MediaDocument
}

func (m *Machine) stepContentFile(ctx context.Context, ev chat.Event, conv Conversation, out chat.Responder) error {
	if ev.Kind != chat.EventMedia || !acceptedMedia(ev.Media) {
		m.stay(ev.UserID, conv)
		return m.prompt(ctx, out, ev.ChatID, retryFile)
	}

	conv.Acc.FileID = ev.Media.FileID
	conv.Acc.Kind = ev.Media.Kind
	m.advance(ev.UserID, conv, AwaitingContentTitle)
	return m.prompt(ctx, out, ev.ChatID, promptContentTitle)
}

func (m *Machine) stepContentTitle(ctx context.Context, ev chat.Event, conv Conversation, out chat.Responder) error {
	text, _ := textOf(ev)
	title, description, _ := strings.Cut(text, "\n")
	title = strings.TrimSpace(title)
	if title == "" {
		m.stay(ev.UserID, conv)
		return m.prompt(ctx, out, ev.ChatID, retryTitle)
	}

	m.clear(ev.UserID)

	rec := &models.ContentRecord{
		Code:        conv.Acc.Code,
		FileID:      conv.Acc.FileID,
		Kind:        conv.Acc.Kind,
		Title:       title,
		Description: strings.TrimSpace(description),
		AddedBy:     ev.UserID,
	}

	err := m.deps.Catalog.Add(ctx, rec)
	switch {
	case errors.Is(err, common.ErrorAlreadyExists):
		m.commit(conv.Wizard, "duplicate")
		return m.finish(ctx, out, ev.ChatID, fmt.Sprintf(contentDuplicate, conv.Acc.Code))
	case err != nil:
		m.logger.Error(ctx, "add content failed", "code", conv.Acc.Code, "error", err)
		m.commit(conv.Wizard, "error")
		return m.finish(ctx, out, ev.ChatID, internalError)
	}

	m.commit(conv.Wizard, "ok")
	return m.finish(ctx, out, ev.ChatID, fmt.Sprintf(contentAdded, rec.Code, rec.Title))
}

func (m *Machine) stepDeletionCode(ctx context.Context, ev chat.Event, conv Conversation, out chat.Responder) error {
	text, _ := textOf(ev)
	code := models.NormalizeCode(text)
	if code == "" {
		m.stay(ev.UserID, conv)
		return m.prompt(ctx, out, ev.ChatID, retryCode)
	}

	m.clear(ev.UserID)

	err := m.deps.Catalog.Delete(ctx, code)
	switch {
	case errors.Is(err, common.ErrorNotFound):
		m.commit(conv.Wizard, "not_found")
		return m.finish(ctx, out, ev.ChatID, fmt.Sprintf(contentNotFound, code))
	case err != nil:
		m.logger.Error(ctx, "delete content failed", "code", code, "error", err)
		m.commit(conv.Wizard, "error")
		return m.finish(ctx, out, ev.ChatID, internalError)
	}

	m.commit(conv.Wizard, "ok")
	return m.finish(ctx, out, ev.ChatID, fmt.Sprintf(contentDeleted, code))
}

func (m *Machine) stepBroadcast(ctx context.Context, ev chat.Event, conv Conversation, out chat.Responder) error {
	if ev.Kind != chat.EventText && ev.Kind != chat.EventMedia {
		m.stay(ev.UserID, conv)
		return m.prompt(ctx, out, ev.ChatID, promptBroadcast)
	}

	m.clear(ev.UserID)

	if err := out.Send(ctx, chat.Action{Kind: chat.ActionText, ChatID: ev.ChatID, Text: broadcastStarted}); err != nil {
		m.logger.Warn(ctx, "broadcast notice failed", "error", err)
	}

	report, err := m.deps.Broadcaster.Run(ctx, services.BroadcastPayload{FromChatID: ev.ChatID, MessageID: ev.MessageID})
	if err != nil {
		m.logger.Error(ctx, "broadcast failed", "error", err)
		m.commit(conv.Wizard, "error")
		return m.finish(ctx, out, ev.ChatID, internalError)
	}

	if report.Cancelled {
		m.commit(conv.Wizard, "cancelled")
		notReached := report.Total - report.Success - report.Failed
		// the event context is gone, the summary still goes out
		return m.finish(context.WithoutCancel(ctx), out, ev.ChatID,
			fmt.Sprintf(broadcastInterrupted, report.Success, report.Failed, notReached))
	}

	m.commit(conv.Wizard, "ok")
	return m.finish(ctx, out, ev.ChatID, fmt.Sprintf(broadcastFinished, report.Success, report.Failed))
}

func (m *Machine) stepOperator(ctx context.Context, ev chat.Event, conv Conversation, out chat.Responder) error {
	text, _ := textOf(ev)
	id, err := ParseIdentifier(text)
	if err != nil {
		m.stay(ev.UserID, conv)
		return m.prompt(ctx, out, ev.ChatID, retryIdentifier)
	}

	userID := id.ID
	name := ""
	if id.IsHandle() {
		u, err := m.deps.Admin.FindUserByName(ctx, strings.TrimPrefix(id.Handle, "@"))
		if err != nil {
			if !errors.Is(err, common.ErrorNotFound) {
				m.logger.Error(ctx, "user lookup failed", "handle", id.Handle, "error", err)
			}
			m.stay(ev.UserID, conv)
			return m.prompt(ctx, out, ev.ChatID, fmt.Sprintf(retryUnknownUser, id.Handle))
		}
		userID = u.ID
		name = u.DisplayName()
	}

	m.clear(ev.UserID)

	if name == "" {
		name = m.resolveName(ctx, userID)
	}

	err = m.deps.Admin.GrantOperator(ctx, userID, name, ev.UserID)
	switch {
	case errors.Is(err, common.ErrorAlreadyExists):
		m.commit(conv.Wizard, "duplicate")
		return m.finish(ctx, out, ev.ChatID, fmt.Sprintf(operatorDuplicate, userID))
	case err != nil:
		m.logger.Error(ctx, "grant operator failed", "user_id", userID, "error", err)
		m.commit(conv.Wizard, "error")
		return m.finish(ctx, out, ev.ChatID, internalError)
	}

	m.commit(conv.Wizard, "ok")
	return m.finish(ctx, out, ev.ChatID, fmt.Sprintf(operatorAdded, name, userID))
}

// resolveName asks the platform first and falls back to the user registry.
func (m *Machine) resolveName(ctx context.Context, userID int64) string {
	if name, err := m.deps.Platform.UserName(ctx, userID); err == nil && name != "" {
		return name
	}
	if u, err := m.deps.Admin.GetUser(ctx, userID); err == nil {
		return u.DisplayName()
	}
	return "No name"
}
