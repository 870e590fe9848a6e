package models

import "time"

// Operator is a dynamically granted privileged user. Root operators come
// from configuration and are never stored.
type Operator struct {
	UserID    int64
	UserName  string
	GrantedBy int64
	GrantedAt time.Time
}
