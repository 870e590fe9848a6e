package chat

import "context"

// ActionKind classifies an outbound action.
type ActionKind int

const (
	ActionText ActionKind = iota
	ActionMedia
	ActionEdit
	ActionDelete
	ActionAnswerCallback
)

// Button is one keyboard button. Exactly one of Data or URL is set for inline
// keyboards; reply keyboards only use Text.
type Button struct {
	Text string
	Data string
	URL  string
}

// Keyboard is an inline keyboard under a message, or a persistent reply
// keyboard when Reply is set.
type Keyboard struct {
	Rows  [][]Button
	Reply bool
}

// Row is a convenience constructor for a single keyboard row.
func Row(buttons ...Button) []Button { return buttons }

// Action is one outbound effect produced by handling an event.
type Action struct {
	Kind ActionKind

	ChatID    int64
	MessageID int64

	Text     string
	Media    *Media
	Keyboard *Keyboard

	CallbackID string
	Alert      bool
}

// Responder executes actions against the messaging platform.
type Responder interface {
	Send(ctx context.Context, a Action) error
}

// ResponderFunc adapts a function to Responder.
type ResponderFunc func(ctx context.Context, a Action) error

func (f ResponderFunc) Send(ctx context.Context, a Action) error { return f(ctx, a) }
