package command

import (
	"fmt"

	"github.com/glabrego/gaufre-cli/internal/gopher"
)

type Kind int

const (
	NoOp Kind = iota
	Select
	Back
	Forward
	Reload
	Help
	JumpTo
	Quit
	Save
	Info
	Mark
	Bookmarks
	Unmark
	Search
)

var kindNames = [...]string{
	NoOp:      "noop",
	Select:    "select",
	Back:      "back",
	Forward:   "forward",
	Reload:    "reload",
	Help:      "help",
	JumpTo:    "jump",
	Quit:      "quit",
	Save:      "save",
	Info:      "info",
	Mark:      "mark",
	Bookmarks: "bookmarks",
	Unmark:    "unmark",
	Search:    "search",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

// Action is what one line of input resolved to. Only the fields relevant to
// Kind are set: Index for Select, Unmark and Search, Address for JumpTo, Path
// for Save, Query for Search. Message carries an informational note for
// NoOp results such as back at the root.
type Action struct {
	Kind    Kind
	Index   int
	Address gopher.Address
	Path    string
	Query   string
	Message string
}

func (a Action) String() string {
	switch a.Kind {
	case Select, Unmark:
		return fmt.Sprintf("%s %d", a.Kind, a.Index)
	case Search:
		return fmt.Sprintf("%s %d %q", a.Kind, a.Index, a.Query)
	case JumpTo:
		return fmt.Sprintf("%s %s", a.Kind, a.Address.URL())
	case Save:
		if a.Path != "" {
			return fmt.Sprintf("%s %s", a.Kind, a.Path)
		}
	}
	return a.Kind.String()
}
