package models

import (
	"strings"
	"time"
)

// MediaKind tells the delivery side which send method fits a payload reference.
type MediaKind string

const (
	MediaVideo    MediaKind = "video"
	MediaDocument MediaKind = "document"
)

// ContentRecord is one catalog entry addressed by a unique code.
type ContentRecord struct {
	ID int64
	// Code is stored upper-cased; see NormalizeCode.
	Code string
	// FileID is the opaque payload reference issued by the messaging platform.
	FileID      string
	Kind        MediaKind
	Title       string
	Description string
	AddedBy     int64
	AddedAt     time.Time
}

// NormalizeCode trims surrounding whitespace and upper-cases a content code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
