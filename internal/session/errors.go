package session

import (
	"errors"
	"fmt"
)

var (
	// ErrAtRoot is informational: back was requested with an empty history.
	ErrAtRoot    = errors.New("already at root")
	ErrNoForward = errors.New("nothing to go forward to")
	ErrNotMenu   = errors.New("current document is not a menu")
)

// IndexOutOfRangeError reports a selection outside the loaded menu.
type IndexOutOfRangeError struct {
	Index int
	Len   int
}

func (e *IndexOutOfRangeError) Error() string {
	if e.Len == 0 {
		return fmt.Sprintf("no entry %d: menu is empty", e.Index)
	}
	return fmt.Sprintf("no entry %d: choose 0-%d", e.Index, e.Len-1)
}
