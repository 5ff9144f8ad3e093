package session

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/glabrego/gaufre-cli/internal/gopher"
)

type fakeLoader struct {
	docs  map[gopher.Address]gopher.Document
	errs  map[gopher.Address]error
	calls []gopher.Address
}

func newFakeLoader() *fakeLoader {
	return &fakeLoader{docs: map[gopher.Address]gopher.Document{}, errs: map[gopher.Address]error{}}
}

func (f *fakeLoader) Load(_ context.Context, addr gopher.Address) (gopher.Document, error) {
	f.calls = append(f.calls, addr)
	if err := f.errs[addr]; err != nil {
		return gopher.Document{}, err
	}
	if doc, ok := f.docs[addr]; ok {
		return doc, nil
	}
	return gopher.TextDocument([]string{addr.Selector}), nil
}

var (
	root  = gopher.Address{Host: "example.org", Port: 70, Type: gopher.Submenu}
	child = gopher.Address{Host: "example.org", Port: 70, Selector: "/home", Type: gopher.Submenu}
	file  = gopher.Address{Host: "example.org", Port: 70, Selector: "/about.txt", Type: gopher.Text}
)

func rootMenu() gopher.Document {
	return gopher.MenuDocument([]gopher.MenuEntry{
		{Type: gopher.Info, Display: "Welcome", Address: gopher.Address{Host: "example.org", Port: 70, Type: gopher.Info}},
		{Type: gopher.Submenu, Display: "Home", Address: child},
		{Type: gopher.Text, Display: "About", Address: file},
	})
}

func loadedSession(t *testing.T, loader *fakeLoader) (*Engine, Session) {
	t.Helper()
	loader.docs[root] = rootMenu()
	engine := NewEngine(loader)
	s, err := engine.Open(context.Background(), New(root), root)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	return engine, s
}

func TestOpen_FromIdleDoesNotPushHistory(t *testing.T) {
	_, s := loadedSession(t, newFakeLoader())
	if !s.Loaded || s.Current != root {
		t.Fatalf("unexpected session: %+v", s)
	}
	if len(s.History) != 0 {
		t.Fatalf("expected empty history, got %v", s.History)
	}
	if s.Document.Kind != gopher.KindMenu || s.Cursor != 0 {
		t.Fatalf("unexpected document/cursor: %v %d", s.Document.Kind, s.Cursor)
	}
}

func TestOpen_PushesPreviousAndResetsCursor(t *testing.T) {
	loader := newFakeLoader()
	engine, s := loadedSession(t, loader)
	s = s.SetCursor(2)

	next, err := engine.Open(context.Background(), s, child)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	if next.Current != child || next.Cursor != 0 {
		t.Fatalf("unexpected session: %+v", next)
	}
	if !reflect.DeepEqual(next.History, []gopher.Address{root}) {
		t.Fatalf("unexpected history: %v", next.History)
	}
	if s.Current != root || len(s.History) != 0 {
		t.Fatal("input session was mutated")
	}
}

func TestOpen_SameAddressDoesNotDuplicateHistory(t *testing.T) {
	loader := newFakeLoader()
	engine, s := loadedSession(t, loader)
	next, err := engine.Open(context.Background(), s, root)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	if len(next.History) != 0 {
		t.Fatalf("expected no history push, got %v", next.History)
	}
}

func TestOpen_FailureLeavesSessionUnchanged(t *testing.T) {
	loader := newFakeLoader()
	engine, s := loadedSession(t, loader)
	loader.errs[child] = &gopher.ConnectError{Addr: "example.org:70", Reason: "connection refused"}

	next, err := engine.Open(context.Background(), s, child)
	var connErr *gopher.ConnectError
	if !errors.As(err, &connErr) {
		t.Fatalf("expected ConnectError, got %v", err)
	}
	if !reflect.DeepEqual(next, s) {
		t.Fatalf("session changed on failure: %+v", next)
	}
}

func TestBack_EmptyHistoryIsNoOp(t *testing.T) {
	loader := newFakeLoader()
	engine, s := loadedSession(t, loader)
	calls := len(loader.calls)

	next, err := engine.Back(context.Background(), s)
	if !errors.Is(err, ErrAtRoot) {
		t.Fatalf("expected ErrAtRoot, got %v", err)
	}
	if !reflect.DeepEqual(next, s) {
		t.Fatal("session changed on back at root")
	}
	if len(loader.calls) != calls {
		t.Fatal("back at root must not fetch")
	}
}

func TestOpenThenBack_RefetchesPrevious(t *testing.T) {
	loader := newFakeLoader()
	engine, s := loadedSession(t, loader)

	s, err := engine.Open(context.Background(), s, child)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	s, err = engine.Back(context.Background(), s)
	if err != nil {
		t.Fatalf("Back returned error: %v", err)
	}
	if s.Current != root {
		t.Fatalf("expected root after back, got %+v", s.Current)
	}
	want := []gopher.Address{root, child, root}
	if !reflect.DeepEqual(loader.calls, want) {
		t.Fatalf("unexpected fetch sequence: %v", loader.calls)
	}
	if len(s.History) != 0 {
		t.Fatalf("expected empty history, got %v", s.History)
	}
	if !reflect.DeepEqual(s.Forward, []gopher.Address{child}) {
		t.Fatalf("unexpected forward stack: %v", s.Forward)
	}
}

func TestBack_FailureKeepsHistory(t *testing.T) {
	loader := newFakeLoader()
	engine, s := loadedSession(t, loader)
	s, _ = engine.Open(context.Background(), s, child)
	loader.errs[root] = &gopher.TruncatedResponseError{Addr: "example.org:70"}

	next, err := engine.Back(context.Background(), s)
	if err == nil {
		t.Fatal("expected error")
	}
	if !reflect.DeepEqual(next, s) {
		t.Fatal("session changed on failed back")
	}
}

func TestForward(t *testing.T) {
	loader := newFakeLoader()
	engine, s := loadedSession(t, loader)
	s, _ = engine.Open(context.Background(), s, child)
	s, _ = engine.Back(context.Background(), s)

	s, err := engine.Forward(context.Background(), s)
	if err != nil {
		t.Fatalf("Forward returned error: %v", err)
	}
	if s.Current != child || len(s.Forward) != 0 {
		t.Fatalf("unexpected session: %+v", s)
	}
	if !reflect.DeepEqual(s.History, []gopher.Address{root}) {
		t.Fatalf("unexpected history: %v", s.History)
	}
	if _, err := engine.Forward(context.Background(), s); !errors.Is(err, ErrNoForward) {
		t.Fatalf("expected ErrNoForward, got %v", err)
	}
}

func TestOpen_ClearsForward(t *testing.T) {
	loader := newFakeLoader()
	engine, s := loadedSession(t, loader)
	s, _ = engine.Open(context.Background(), s, child)
	s, _ = engine.Back(context.Background(), s)
	s, _ = engine.Open(context.Background(), s, file)
	if len(s.Forward) != 0 {
		t.Fatalf("expected forward stack cleared, got %v", s.Forward)
	}
}

func TestReload_KeepsHistory(t *testing.T) {
	loader := newFakeLoader()
	engine, s := loadedSession(t, loader)
	s, _ = engine.Open(context.Background(), s, child)

	next, err := engine.Reload(context.Background(), s)
	if err != nil {
		t.Fatalf("Reload returned error: %v", err)
	}
	if next.Current != child || !reflect.DeepEqual(next.History, s.History) {
		t.Fatalf("unexpected session after reload: %+v", next)
	}
	if last := loader.calls[len(loader.calls)-1]; last != child {
		t.Fatalf("expected reload to fetch current, fetched %+v", last)
	}
}

func TestSelect_OutOfRange(t *testing.T) {
	loader := newFakeLoader()
	engine, s := loadedSession(t, loader)

	next, _, err := engine.Select(context.Background(), s, 99)
	var rangeErr *IndexOutOfRangeError
	if !errors.As(err, &rangeErr) {
		t.Fatalf("expected IndexOutOfRangeError, got %v", err)
	}
	if rangeErr.Len != 3 {
		t.Fatalf("unexpected len in error: %d", rangeErr.Len)
	}
	if !reflect.DeepEqual(next, s) {
		t.Fatal("session changed on out-of-range select")
	}
}

func TestSelect_InfoIsInert(t *testing.T) {
	loader := newFakeLoader()
	engine, s := loadedSession(t, loader)
	calls := len(loader.calls)

	next, res, err := engine.Select(context.Background(), s, 0)
	if err != nil {
		t.Fatalf("Select returned error: %v", err)
	}
	if res.Outcome != Inert {
		t.Fatalf("expected inert outcome, got %v", res.Outcome)
	}
	if !reflect.DeepEqual(next, s) || len(loader.calls) != calls {
		t.Fatal("inert select must not change or fetch")
	}
}

func TestSelect_Navigates(t *testing.T) {
	loader := newFakeLoader()
	engine, s := loadedSession(t, loader)

	next, res, err := engine.Select(context.Background(), s, 2)
	if err != nil {
		t.Fatalf("Select returned error: %v", err)
	}
	if res.Outcome != Navigated || next.Current != file {
		t.Fatalf("unexpected result: %+v %+v", res, next.Current)
	}
	if next.Document.Kind != gopher.KindText {
		t.Fatalf("expected text document, got %v", next.Document.Kind)
	}
}

func TestSelect_OnTextDocument(t *testing.T) {
	loader := newFakeLoader()
	engine, s := loadedSession(t, loader)
	s, _ = engine.Open(context.Background(), s, file)

	if _, _, err := engine.Select(context.Background(), s, 0); !errors.Is(err, ErrNotMenu) {
		t.Fatalf("expected ErrNotMenu, got %v", err)
	}
}

func TestSelect_SearchAndExternal(t *testing.T) {
	search := gopher.Address{Host: "search.example", Port: 70, Selector: "/v2/vs", Type: gopher.Search}
	loader := newFakeLoader()
	loader.docs[root] = gopher.MenuDocument([]gopher.MenuEntry{
		{Type: gopher.Search, Display: "Veronica", Address: search},
		{Type: gopher.Telnet, Display: "BBS", Address: gopher.Address{Host: "bbs.example", Port: 23, Type: gopher.Telnet}},
		{Type: gopher.HTML, Display: "Web", Address: gopher.Address{Host: "h", Port: 70, Selector: "URL:https://example.com", Type: gopher.HTML}},
	})
	engine := NewEngine(loader)
	s, _ := engine.Open(context.Background(), New(root), root)

	_, res, err := engine.Select(context.Background(), s, 0)
	if err != nil || res.Outcome != NeedsQuery {
		t.Fatalf("expected NeedsQuery, got %v %v", res.Outcome, err)
	}
	for _, i := range []int{1, 2} {
		_, res, err = engine.Select(context.Background(), s, i)
		if err != nil || res.Outcome != External {
			t.Fatalf("entry %d: expected External, got %v %v", i, res.Outcome, err)
		}
	}

	next, res, err := engine.SelectWithQuery(context.Background(), s, 0, "gopher clients")
	if err != nil {
		t.Fatalf("SelectWithQuery returned error: %v", err)
	}
	want := gopher.Address{Host: "search.example", Port: 70, Selector: "/v2/vs\tgopher clients", Type: gopher.Search}
	if res.Outcome != Navigated || next.Current != want {
		t.Fatalf("unexpected search result: %+v %+v", res, next.Current)
	}
}

func TestMoveCursor_SkipsInfoLines(t *testing.T) {
	_, s := loadedSession(t, newFakeLoader())

	s = s.MoveCursor(1)
	if s.Cursor != 1 {
		t.Fatalf("expected cursor 1, got %d", s.Cursor)
	}
	s = s.MoveCursor(1)
	if s.Cursor != 2 {
		t.Fatalf("expected cursor 2, got %d", s.Cursor)
	}
	s = s.MoveCursor(5)
	if s.Cursor != 2 {
		t.Fatalf("expected cursor clamped at 2, got %d", s.Cursor)
	}
	s = s.MoveCursor(-10)
	if s.Cursor != 1 {
		t.Fatalf("expected cursor to land on first navigable entry, got %d", s.Cursor)
	}
}
