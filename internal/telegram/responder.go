package telegram

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/kinogate/internal/server/chat"
	"github.com/dmitrijs2005/kinogate/internal/server/models"
)

const (
	maxTextLen    = 4096
	maxCaptionLen = 1024
)

type inlineButton struct {
	Text         string `json:"text"`
	CallbackData string `json:"callback_data,omitempty"`
	URL          string `json:"url,omitempty"`
}

type inlineMarkup struct {
	InlineKeyboard [][]inlineButton `json:"inline_keyboard"`
}

type replyButton struct {
	Text string `json:"text"`
}

type replyMarkup struct {
	Keyboard       [][]replyButton `json:"keyboard"`
	ResizeKeyboard bool            `json:"resize_keyboard"`
}

// Send executes a dispatcher action, making Client a chat.Responder.
func (c *Client) Send(ctx context.Context, a chat.Action) error {
	switch a.Kind {
	case chat.ActionText:
		params := map[string]any{
			"chat_id": a.ChatID,
			"text":    truncate(a.Text, maxTextLen),
		}
		setMarkup(params, a.Keyboard)
		_, err := c.call(ctx, "sendMessage", params)
		return err

	case chat.ActionMedia:
		return c.sendMedia(ctx, a)

	case chat.ActionEdit:
		params := map[string]any{
			"chat_id":    a.ChatID,
			"message_id": a.MessageID,
			"text":       truncate(a.Text, maxTextLen),
		}
		if a.Keyboard != nil && !a.Keyboard.Reply {
			setMarkup(params, a.Keyboard)
		}
		_, err := c.call(ctx, "editMessageText", params)
		if isNotModified(err) {
			return nil
		}
		return err

	case chat.ActionDelete:
		_, err := c.call(ctx, "deleteMessage", map[string]any{
			"chat_id":    a.ChatID,
			"message_id": a.MessageID,
		})
		return err

	case chat.ActionAnswerCallback:
		params := map[string]any{"callback_query_id": a.CallbackID}
		if a.Text != "" {
			params["text"] = truncate(a.Text, 200)
			params["show_alert"] = a.Alert
		}
		_, err := c.call(ctx, "answerCallbackQuery", params)
		return err

	default:
		return fmt.Errorf("unsupported action kind %d", a.Kind)
	}
}

func (c *Client) sendMedia(ctx context.Context, a chat.Action) error {
	if a.Media == nil {
		return fmt.Errorf("media action without media")
	}

	var method, field string
	switch a.Media.Kind {
	case models.MediaDocument:
		method, field = "sendDocument", "document"
	case models.MediaVideo:
		method, field = "sendVideo", "video"
	default:
		return fmt.Errorf("unsupported media kind %q", a.Media.Kind)
	}

	params := map[string]any{
		"chat_id": a.ChatID,
		field:     a.Media.FileID,
	}
	if a.Text != "" {
		params["caption"] = truncate(a.Text, maxCaptionLen)
	}
	setMarkup(params, a.Keyboard)

	_, err := c.call(ctx, method, params)
	return err
}

func setMarkup(params map[string]any, kb *chat.Keyboard) {
	if kb == nil || len(kb.Rows) == 0 {
		return
	}
	params["reply_markup"] = markup(kb)
}

func markup(kb *chat.Keyboard) any {
	if kb.Reply {
		rows := make([][]replyButton, 0, len(kb.Rows))
		for _, row := range kb.Rows {
			out := make([]replyButton, 0, len(row))
			for _, b := range row {
				out = append(out, replyButton{Text: b.Text})
			}
			rows = append(rows, out)
		}
		return replyMarkup{Keyboard: rows, ResizeKeyboard: true}
	}

	rows := make([][]inlineButton, 0, len(kb.Rows))
	for _, row := range kb.Rows {
		out := make([]inlineButton, 0, len(row))
		for _, b := range row {
			out = append(out, inlineButton{Text: b.Text, CallbackData: b.Data, URL: b.URL})
		}
		rows = append(rows, out)
	}
	return inlineMarkup{InlineKeyboard: rows}
}

func isNotModified(err error) bool {
	return IsAPIError(err, 400) && strings.Contains(err.Error(), "message is not modified")
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-1]) + "…"
}
