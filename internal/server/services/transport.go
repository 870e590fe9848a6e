// Package services contains the bot's business logic: the access gate, the
// broadcast fan-out engine, operator role checks and catalog administration.
package services

import "context"

// Membership is the outcome of a single membership check.
type Membership int

const (
	MembershipUnknown Membership = iota
	MembershipMember
	MembershipNotMember
)

func (m Membership) String() string {
	switch m {
	case MembershipMember:
		return "member"
	case MembershipNotMember:
		return "not_member"
	default:
		return "unknown"
	}
}

// MembershipChecker asks the messaging platform whether a user belongs to a
// group. chatID is a numeric id or an @handle.
type MembershipChecker interface {
	CheckMembership(ctx context.Context, chatID string, userID int64) (Membership, error)
}

// BroadcastPayload references an existing message that is copied to every
// recipient.
type BroadcastPayload struct {
	FromChatID int64
	MessageID  int64
}

// Deliverer sends one broadcast payload to one recipient.
type Deliverer interface {
	Deliver(ctx context.Context, userID int64, p BroadcastPayload) error
}
