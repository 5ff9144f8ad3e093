package session

import (
	"github.com/glabrego/gaufre-cli/internal/gopher"
)

// Session is the whole navigation state of one client run. Values are never
// shared: every transition returns a new Session and leaves its input intact.
type Session struct {
	History  []gopher.Address
	Forward  []gopher.Address
	Current  gopher.Address
	Document gopher.Document
	Cursor   int
	Loaded   bool
}

// New returns an Idle session pointed at start.
func New(start gopher.Address) Session {
	return Session{Current: start}
}

// Idle reports whether no document has been loaded yet.
func (s Session) Idle() bool {
	return !s.Loaded
}

// Entry returns the menu entry at index.
func (s Session) Entry(index int) (gopher.MenuEntry, error) {
	if s.Document.Kind != gopher.KindMenu {
		return gopher.MenuEntry{}, ErrNotMenu
	}
	if index < 0 || index >= len(s.Document.Entries) {
		return gopher.MenuEntry{}, &IndexOutOfRangeError{Index: index, Len: len(s.Document.Entries)}
	}
	return s.Document.Entries[index], nil
}

// CursorEntry returns the entry under the cursor, if a menu is loaded.
func (s Session) CursorEntry() (gopher.MenuEntry, bool) {
	e, err := s.Entry(s.Cursor)
	return e, err == nil
}

// MoveCursor steps the cursor by delta over navigable entries. Info and error
// lines are skipped when a navigable entry exists in that direction.
func (s Session) MoveCursor(delta int) Session {
	if s.Document.Kind != gopher.KindMenu || len(s.Document.Entries) == 0 || delta == 0 {
		return s
	}
	entries := s.Document.Entries
	target := clampCursor(s.Cursor+delta, len(entries))
	step := 1
	if delta < 0 {
		step = -1
	}
	for i := target; i >= 0 && i < len(entries); i += step {
		if entries[i].Navigable() {
			s.Cursor = i
			return s
		}
	}
	for i := target - step; i >= 0 && i < len(entries); i -= step {
		if entries[i].Navigable() {
			s.Cursor = i
			return s
		}
	}
	s.Cursor = target
	return s
}

// SetCursor places the cursor at index, clamped to the loaded menu.
func (s Session) SetCursor(index int) Session {
	if s.Document.Kind != gopher.KindMenu {
		return s
	}
	s.Cursor = clampCursor(index, len(s.Document.Entries))
	return s
}

// Title is a short label for the current location.
func (s Session) Title() string {
	if s.Current.Selector == "" {
		return s.Current.Host
	}
	return s.Current.Host + s.Current.Selector
}

func (s Session) clone() Session {
	s.History = append([]gopher.Address(nil), s.History...)
	s.Forward = append([]gopher.Address(nil), s.Forward...)
	return s
}

func clampCursor(cursor, size int) int {
	if size <= 0 {
		return 0
	}
	if cursor >= size {
		return size - 1
	}
	if cursor < 0 {
		return 0
	}
	return cursor
}
