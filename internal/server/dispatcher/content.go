package dispatcher

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/kinogate/internal/common"
	"github.com/dmitrijs2005/kinogate/internal/server/chat"
)

// lookup treats the message text as a content code.
func (d *Dispatcher) lookup(ctx context.Context, ev chat.Event, out chat.Responder) error {
	rec, err := d.deps.Catalog.Lookup(ctx, ev.Text)
	switch {
	case errors.Is(err, common.ErrorNotFound):
		return d.reply(ctx, out, ev.ChatID, notFoundText(ev.Text))
	case err != nil:
		d.logger.Error(ctx, "content lookup failed", "code", ev.Text, "error", err)
		return d.reply(ctx, out, ev.ChatID, textInternalError)
	}

	err = out.Send(ctx, chat.Action{
		Kind:   chat.ActionMedia,
		ChatID: ev.ChatID,
		Media:  &chat.Media{Kind: rec.Kind, FileID: rec.FileID},
		Text:   captionText(rec),
	})
	if err != nil {
		d.logger.Warn(ctx, "content delivery failed", "code", rec.Code, "user_id", ev.UserID, "error", err)
		return d.reply(ctx, out, ev.ChatID, textDeliveryFailed)
	}

	d.logger.Debug(ctx, "content delivered", "code", rec.Code, "user_id", ev.UserID)
	return nil
}
