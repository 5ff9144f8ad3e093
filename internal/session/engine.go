package session

import (
	"context"
	"strings"

	"github.com/glabrego/gaufre-cli/internal/gopher"
)

// Loader fetches and decodes one address.
type Loader interface {
	Load(ctx context.Context, addr gopher.Address) (gopher.Document, error)
}

// Outcome says what a selection did.
type Outcome int

const (
	// Navigated means a new document was fetched and committed.
	Navigated Outcome = iota
	// Inert means the entry is an info or error line; nothing changed.
	Inert
	// NeedsQuery means the entry is a search and SelectWithQuery must be used.
	NeedsQuery
	// External means the entry must be handed to an outside program.
	External
)

func (o Outcome) String() string {
	switch o {
	case Navigated:
		return "navigated"
	case Inert:
		return "inert"
	case NeedsQuery:
		return "needs-query"
	case External:
		return "external"
	}
	return "unknown"
}

// Result describes a selection.
type Result struct {
	Outcome Outcome
	Entry   gopher.MenuEntry
}

// Engine runs navigation transitions over Session values. A transition only
// produces a modified Session after the fetch it depends on has succeeded.
type Engine struct {
	loader Loader
}

func NewEngine(loader Loader) *Engine {
	return &Engine{loader: loader}
}

// Open fetches addr and makes it current, pushing the previous location onto
// the history.
func (e *Engine) Open(ctx context.Context, s Session, addr gopher.Address) (Session, error) {
	doc, err := e.loader.Load(ctx, addr)
	if err != nil {
		return s, err
	}
	next := s.clone()
	if s.Loaded && s.Current != addr {
		if n := len(next.History); n == 0 || next.History[n-1] != s.Current {
			next.History = append(next.History, s.Current)
		}
	}
	next.Forward = nil
	return commit(next, addr, doc), nil
}

// JumpTo opens a user-supplied address independent of the current menu.
func (e *Engine) JumpTo(ctx context.Context, s Session, addr gopher.Address) (Session, error) {
	return e.Open(ctx, s, addr)
}

// Select descends into the menu entry at index.
func (e *Engine) Select(ctx context.Context, s Session, index int) (Session, Result, error) {
	entry, err := s.Entry(index)
	if err != nil {
		return s, Result{}, err
	}
	res := Result{Entry: entry}
	switch {
	case !entry.Navigable():
		res.Outcome = Inert
		return s, res, nil
	case entry.Type == gopher.Search:
		res.Outcome = NeedsQuery
		return s, res, nil
	case isExternal(entry):
		res.Outcome = External
		return s, res, nil
	}
	next, err := e.Open(ctx, s, entry.Address)
	if err != nil {
		return s, res, err
	}
	res.Outcome = Navigated
	return next, res, nil
}

// SelectWithQuery submits query to the search entry at index.
func (e *Engine) SelectWithQuery(ctx context.Context, s Session, index int, query string) (Session, Result, error) {
	entry, err := s.Entry(index)
	if err != nil {
		return s, Result{}, err
	}
	if entry.Type != gopher.Search {
		return e.Select(ctx, s, index)
	}
	addr := SearchAddress(entry.Address, query)
	next, err := e.Open(ctx, s, addr)
	if err != nil {
		return s, Result{Entry: entry}, err
	}
	return next, Result{Outcome: Navigated, Entry: entry}, nil
}

// Back re-fetches the previous location. With an empty history it returns
// ErrAtRoot and the session untouched.
func (e *Engine) Back(ctx context.Context, s Session) (Session, error) {
	n := len(s.History)
	if n == 0 {
		return s, ErrAtRoot
	}
	prev := s.History[n-1]
	doc, err := e.loader.Load(ctx, prev)
	if err != nil {
		return s, err
	}
	next := s.clone()
	next.History = next.History[:n-1]
	if s.Loaded {
		next.Forward = append(next.Forward, s.Current)
	}
	return commit(next, prev, doc), nil
}

// Forward re-opens the location most recently left with Back.
func (e *Engine) Forward(ctx context.Context, s Session) (Session, error) {
	n := len(s.Forward)
	if n == 0 {
		return s, ErrNoForward
	}
	target := s.Forward[n-1]
	doc, err := e.loader.Load(ctx, target)
	if err != nil {
		return s, err
	}
	next := s.clone()
	next.Forward = next.Forward[:n-1]
	if s.Loaded && s.Current != target {
		next.History = append(next.History, s.Current)
	}
	return commit(next, target, doc), nil
}

// Reload re-fetches the current location without touching history.
func (e *Engine) Reload(ctx context.Context, s Session) (Session, error) {
	doc, err := e.loader.Load(ctx, s.Current)
	if err != nil {
		return s, err
	}
	return commit(s.clone(), s.Current, doc), nil
}

// SearchAddress builds the address a search entry is queried with.
func SearchAddress(addr gopher.Address, query string) gopher.Address {
	addr.Selector = addr.Selector + "\t" + query
	addr.Type = gopher.Search
	return addr
}

func isExternal(entry gopher.MenuEntry) bool {
	switch entry.Type {
	case gopher.Telnet, gopher.CCSO:
		return true
	case gopher.HTML:
		return strings.HasPrefix(entry.Address.Selector, "URL:")
	}
	return false
}

func commit(s Session, addr gopher.Address, doc gopher.Document) Session {
	s.Current = addr
	s.Document = doc
	s.Cursor = 0
	s.Loaded = true
	return s
}
