package models

import (
	"strings"
	"time"
)

// Group is one mandatory-membership requirement. ChatID is either a numeric
// chat id ("-1001234567890") or a public handle ("@channel").
type Group struct {
	ID      int64
	ChatID  string
	Handle  string
	AddedAt time.Time
}

// Label is what users see: the handle when known, the chat id otherwise.
func (g Group) Label() string {
	if g.Handle != "" {
		return g.Handle
	}
	return g.ChatID
}

// JoinURL builds a t.me link for the group.
func (g Group) JoinURL() string {
	return "https://t.me/" + strings.TrimPrefix(g.Label(), "@")
}
