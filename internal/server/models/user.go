// Package models defines the records persisted by the catalog store.
package models

import "time"

// User is anyone who has interacted with the bot. Users are registered on
// their first update and never deleted by normal operation.
type User struct {
	ID           int64
	UserName     string
	FirstName    string
	LastName     string
	JoinedAt     time.Time
	LastActiveAt time.Time
}

// DisplayName returns the best human-readable label for the user.
func (u User) DisplayName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	case u.UserName != "":
		return "@" + u.UserName
	default:
		return "No name"
	}
}
