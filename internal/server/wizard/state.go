// Package wizard implements the operator conversation state machine: one
// multi-step wizard per user, kept in a TTL store and re-authorized on every
// step.
package wizard

import "github.com/dmitrijs2005/kinogate/internal/server/models"

// State is the step a user's conversation is on.
type State int

const (
	Idle State = iota
	AwaitingChannelIdentifier
	AwaitingContentCode
	AwaitingContentFile
	AwaitingContentTitle
	AwaitingDeletionCode
	AwaitingBroadcastPayload
	AwaitingOperatorIdentifier
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case AwaitingChannelIdentifier:
		return "awaiting_channel_identifier"
	case AwaitingContentCode:
		return "awaiting_content_code"
	case AwaitingContentFile:
		return "awaiting_content_file"
	case AwaitingContentTitle:
		return "awaiting_content_title"
	case AwaitingDeletionCode:
		return "awaiting_deletion_code"
	case AwaitingBroadcastPayload:
		return "awaiting_broadcast_payload"
	case AwaitingOperatorIdentifier:
		return "awaiting_operator_identifier"
	default:
		return "unknown"
	}
}

// Wizard names one operator flow.
type Wizard string

const (
	AddGroup      Wizard = "add_group"
	AddContent    Wizard = "add_content"
	DeleteContent Wizard = "delete_content"
	Broadcast     Wizard = "broadcast"
	AddOperator   Wizard = "add_operator"
)

// firstState maps each wizard to its entry step.
var firstState = map[Wizard]State{
	AddGroup:      AwaitingChannelIdentifier,
	AddContent:    AwaitingContentCode,
	DeleteContent: AwaitingDeletionCode,
	Broadcast:     AwaitingBroadcastPayload,
	AddOperator:   AwaitingOperatorIdentifier,
}

// Accumulator holds the fields collected so far by the add-content wizard.
type Accumulator struct {
	Code   string
	FileID string
	Kind   models.MediaKind
}

// Conversation is one user's wizard progress.
type Conversation struct {
	Wizard Wizard
	State  State
	Acc    Accumulator
}
