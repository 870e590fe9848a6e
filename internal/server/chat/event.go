// Package chat holds the transport-neutral shapes exchanged between the
// messaging platform adapter and the dispatcher.
package chat

import "github.com/dmitrijs2005/kinogate/internal/server/models"

// EventKind classifies an inbound event.
type EventKind int

const (
	EventText EventKind = iota
	EventCommand
	EventMedia
	EventCallback
)

func (k EventKind) String() string {
	switch k {
	case EventText:
		return "text"
	case EventCommand:
		return "command"
	case EventMedia:
		return "media"
	case EventCallback:
		return "callback"
	default:
		return "unknown"
	}
}

// Media is a payload reference attached to a message.
type Media struct {
	Kind   models.MediaKind
	FileID string
}

// Event is one inbound interaction. Every event carries the sender's user id.
type Event struct {
	Kind EventKind

	UserID    int64
	UserName  string
	FirstName string
	LastName  string

	ChatID    int64
	MessageID int64

	// Command is the command name without the leading slash, Args the rest of the line.
	Command string
	Args    string

	// Text is the message text or the caption of a media message.
	Text  string
	Media *Media

	CallbackID        string
	CallbackData      string
	CallbackMessageID int64
}

// User returns the sender as a registry record.
func (e Event) User() models.User {
	return models.User{
		ID:        e.UserID,
		UserName:  e.UserName,
		FirstName: e.FirstName,
		LastName:  e.LastName,
	}
}
