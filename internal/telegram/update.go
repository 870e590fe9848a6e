package telegram

import (
	"strings"

	"github.com/dmitrijs2005/kinogate/internal/server/chat"
	"github.com/dmitrijs2005/kinogate/internal/server/models"
)

// Update is the subset of a Bot API update the bot consumes.
type Update struct {
	UpdateID      int64          `json:"update_id"`
	Message       *Message       `json:"message,omitempty"`
	CallbackQuery *CallbackQuery `json:"callback_query,omitempty"`
}

type User struct {
	ID        int64  `json:"id"`
	IsBot     bool   `json:"is_bot"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name,omitempty"`
	UserName  string `json:"username,omitempty"`
}

type Chat struct {
	ID   int64  `json:"id"`
	Type string `json:"type"`
}

type FileRef struct {
	FileID string `json:"file_id"`
}

type Message struct {
	MessageID int64     `json:"message_id"`
	From      *User     `json:"from,omitempty"`
	Chat      Chat      `json:"chat"`
	Text      string    `json:"text,omitempty"`
	Caption   string    `json:"caption,omitempty"`
	Video     *FileRef  `json:"video,omitempty"`
	Document  *FileRef  `json:"document,omitempty"`
	Photo     []FileRef `json:"photo,omitempty"`
	Animation *FileRef  `json:"animation,omitempty"`
	Audio     *FileRef  `json:"audio,omitempty"`
	Voice     *FileRef  `json:"voice,omitempty"`
}

type CallbackQuery struct {
	ID      string   `json:"id"`
	From    User     `json:"from"`
	Message *Message `json:"message,omitempty"`
	Data    string   `json:"data,omitempty"`
}

// Event converts the update into a dispatcher event. Updates without a human
// sender, from non-private chats or of unsupported types report false.
func (u Update) Event() (chat.Event, bool) {
	switch {
	case u.CallbackQuery != nil:
		return callbackEvent(u.CallbackQuery)
	case u.Message != nil:
		return messageEvent(u.Message)
	default:
		return chat.Event{}, false
	}
}

func callbackEvent(q *CallbackQuery) (chat.Event, bool) {
	if q.From.IsBot {
		return chat.Event{}, false
	}
	ev := chat.Event{
		Kind:         chat.EventCallback,
		UserID:       q.From.ID,
		UserName:     q.From.UserName,
		FirstName:    q.From.FirstName,
		LastName:     q.From.LastName,
		ChatID:       q.From.ID,
		CallbackID:   q.ID,
		CallbackData: q.Data,
	}
	if q.Message != nil {
		ev.ChatID = q.Message.Chat.ID
		ev.CallbackMessageID = q.Message.MessageID
	}
	return ev, true
}

func messageEvent(m *Message) (chat.Event, bool) {
	if m.From == nil || m.From.IsBot || m.Chat.Type != "private" {
		return chat.Event{}, false
	}

	ev := chat.Event{
		UserID:    m.From.ID,
		UserName:  m.From.UserName,
		FirstName: m.From.FirstName,
		LastName:  m.From.LastName,
		ChatID:    m.Chat.ID,
		MessageID: m.MessageID,
	}

	if media := messageMedia(m); media != nil {
		ev.Kind = chat.EventMedia
		ev.Media = media
		ev.Text = m.Caption
		return ev, true
	}

	if m.Text == "" {
		return chat.Event{}, false
	}

	if cmd, args, ok := parseCommand(m.Text); ok {
		ev.Kind = chat.EventCommand
		ev.Command = cmd
		ev.Args = args
		ev.Text = m.Text
		return ev, true
	}

	ev.Kind = chat.EventText
	ev.Text = m.Text
	return ev, true
}

func messageMedia(m *Message) *chat.Media {
	switch {
	case m.Video != nil:
		return &chat.Media{Kind: models.MediaVideo, FileID: m.Video.FileID}
	case m.Document != nil:
		return &chat.Media{Kind: models.MediaDocument, FileID: m.Document.FileID}
	case len(m.Photo) > 0:
		// sizes are ordered smallest first
		return &chat.Media{Kind: models.MediaKind("photo"), FileID: m.Photo[len(m.Photo)-1].FileID}
	case m.Animation != nil:
		return &chat.Media{Kind: models.MediaKind("animation"), FileID: m.Animation.FileID}
	case m.Audio != nil:
		return &chat.Media{Kind: models.MediaKind("audio"), FileID: m.Audio.FileID}
	case m.Voice != nil:
		return &chat.Media{Kind: models.MediaKind("voice"), FileID: m.Voice.FileID}
	}
	return nil
}

// parseCommand splits "/name@bot rest" into "name" and "rest".
func parseCommand(text string) (string, string, bool) {
	if !strings.HasPrefix(text, "/") || len(text) < 2 {
		return "", "", false
	}
	head, rest, _ := strings.Cut(text[1:], " ")
	name, _, _ := strings.Cut(head, "@")
	if name == "" {
		return "", "", false
	}
	return strings.ToLower(name), strings.TrimSpace(rest), true
}
