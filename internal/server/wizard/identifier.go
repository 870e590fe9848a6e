package wizard

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/kinogate/internal/common"
)

var handleRe = regexp.MustCompile(`^[a-z][a-z0-9_]{2,31}$`)

// Identifier is a chat or user reference typed by an operator: either a
// public @handle or a numeric id.
type Identifier struct {
	// Handle is lower-cased and keeps its leading '@'.
	Handle string
	ID     int64
}

func (i Identifier) IsHandle() bool { return i.Handle != "" }

// ChatID renders the identifier the way the Bot API accepts chat ids.
func (i Identifier) ChatID() string {
	if i.IsHandle() {
		return i.Handle
	}
	return strconv.FormatInt(i.ID, 10)
}

// ParseIdentifier accepts "@name" or an integer such as "-1001234567890".
// Anything else yields common.ErrorInvalidIdentifier.
func ParseIdentifier(s string) (Identifier, error) {
	s = strings.TrimSpace(s)

	if name, ok := strings.CutPrefix(s, "@"); ok {
		name = strings.ToLower(name)
		if !handleRe.MatchString(name) {
			return Identifier{}, common.ErrorInvalidIdentifier
		}
		return Identifier{Handle: "@" + name}, nil
	}

	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id == 0 {
		return Identifier{}, common.ErrorInvalidIdentifier
	}
	return Identifier{ID: id}, nil
}
