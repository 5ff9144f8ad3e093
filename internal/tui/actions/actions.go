package actions

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/glabrego/gaufre-cli/internal/command"
	"github.com/glabrego/gaufre-cli/internal/gopher"
	"github.com/glabrego/gaufre-cli/internal/session"
	"github.com/glabrego/gaufre-cli/internal/storage"
)

// Navigator is the subset of session.Engine the interface drives.
type Navigator interface {
	Open(ctx context.Context, s session.Session, addr gopher.Address) (session.Session, error)
	Select(ctx context.Context, s session.Session, index int) (session.Session, session.Result, error)
	SelectWithQuery(ctx context.Context, s session.Session, index int, query string) (session.Session, session.Result, error)
	Back(ctx context.Context, s session.Session) (session.Session, error)
	Forward(ctx context.Context, s session.Session) (session.Session, error)
	Reload(ctx context.Context, s session.Session) (session.Session, error)
}

type Bookmarker interface {
	Mark(ctx context.Context, s session.Session) (storage.Bookmark, error)
	Unmark(ctx context.Context, index int) (storage.Bookmark, error)
}

// NavigateSuccessMsg carries the session produced by a completed transition.
// Seq lets the model drop results of requests it has since abandoned.
type NavigateSuccessMsg struct {
	Seq      int
	Kind     command.Kind
	Session  session.Session
	Result   session.Result
	Duration time.Duration
}

type NavigateErrorMsg struct {
	Seq      int
	Kind     command.Kind
	Err      error
	Duration time.Duration
}

type StatusMsg struct {
	Status string
}

type ActionErrorMsg struct {
	Err error
}

type BookmarksChangedMsg struct {
	Status string
}

type ExternalDoneMsg struct {
	What string
	Err  error
}

func navigateCmd(ctx context.Context, seq int, kind command.Kind, run func(context.Context) (session.Session, session.Result, error)) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		next, res, err := run(ctx)
		if err != nil {
			return NavigateErrorMsg{Seq: seq, Kind: kind, Err: err, Duration: time.Since(start)}
		}
		return NavigateSuccessMsg{Seq: seq, Kind: kind, Session: next, Result: res, Duration: time.Since(start)}
	}
}

func OpenCmd(ctx context.Context, nav Navigator, seq int, s session.Session, addr gopher.Address) tea.Cmd {
	return navigateCmd(ctx, seq, command.JumpTo, func(ctx context.Context) (session.Session, session.Result, error) {
		next, err := nav.Open(ctx, s, addr)
		return next, session.Result{Outcome: session.Navigated}, err
	})
}

func SelectCmd(ctx context.Context, nav Navigator, seq int, s session.Session, index int) tea.Cmd {
	return navigateCmd(ctx, seq, command.Select, func(ctx context.Context) (session.Session, session.Result, error) {
		return nav.Select(ctx, s, index)
	})
}

func SearchCmd(ctx context.Context, nav Navigator, seq int, s session.Session, index int, query string) tea.Cmd {
	return navigateCmd(ctx, seq, command.Search, func(ctx context.Context) (session.Session, session.Result, error) {
		return nav.SelectWithQuery(ctx, s, index, query)
	})
}

func BackCmd(ctx context.Context, nav Navigator, seq int, s session.Session) tea.Cmd {
	return navigateCmd(ctx, seq, command.Back, func(ctx context.Context) (session.Session, session.Result, error) {
		next, err := nav.Back(ctx, s)
		return next, session.Result{Outcome: session.Navigated}, err
	})
}

func ForwardCmd(ctx context.Context, nav Navigator, seq int, s session.Session) tea.Cmd {
	return navigateCmd(ctx, seq, command.Forward, func(ctx context.Context) (session.Session, session.Result, error) {
		next, err := nav.Forward(ctx, s)
		return next, session.Result{Outcome: session.Navigated}, err
	})
}

func ReloadCmd(ctx context.Context, nav Navigator, seq int, s session.Session) tea.Cmd {
	return navigateCmd(ctx, seq, command.Reload, func(ctx context.Context) (session.Session, session.Result, error) {
		next, err := nav.Reload(ctx, s)
		return next, session.Result{Outcome: session.Navigated}, err
	})
}

func MarkCmd(b Bookmarker, s session.Session) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		bm, err := b.Mark(ctx, s)
		if err != nil {
			return ActionErrorMsg{Err: err}
		}
		return BookmarksChangedMsg{Status: fmt.Sprintf("Bookmarked %s", bm.Title)}
	}
}

func UnmarkCmd(b Bookmarker, index int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		bm, err := b.Unmark(ctx, index)
		if err != nil {
			return ActionErrorMsg{Err: err}
		}
		return BookmarksChangedMsg{Status: fmt.Sprintf("Removed bookmark %s", bm.Title)}
	}
}

func SaveCmd(saveFn func(gopher.Address, gopher.Document, string) (string, error), addr gopher.Address, doc gopher.Document, path string) tea.Cmd {
	return func() tea.Msg {
		written, err := saveFn(addr, doc, path)
		if err != nil {
			return ActionErrorMsg{Err: err}
		}
		return StatusMsg{Status: fmt.Sprintf("Saved %d bytes to %s", len(doc.Bytes()), written)}
	}
}

func ViewImageCmd(viewFn func(gopher.Address, []byte) (string, error), addr gopher.Address, data []byte) tea.Cmd {
	return func() tea.Msg {
		file, err := viewFn(addr, data)
		if err != nil {
			return ActionErrorMsg{Err: err}
		}
		return StatusMsg{Status: "Opened image " + file}
	}
}

func OpenURLCmd(url string, openFn, copyFn func(string) error) tea.Cmd {
	return func() tea.Msg {
		if openFn != nil {
			if err := openFn(url); err == nil {
				return StatusMsg{Status: "Opened " + url + " in browser"}
			}
		}
		if copyFn != nil {
			if err := copyFn(url); err == nil {
				return StatusMsg{Status: "Could not open browser, URL copied to clipboard"}
			}
		}
		return ActionErrorMsg{Err: fmt.Errorf("could not open %s or copy it to clipboard", url)}
	}
}

func CopyURLCmd(url string, copyFn func(string) error) tea.Cmd {
	return func() tea.Msg {
		if copyFn != nil {
			if err := copyFn(url); err == nil {
				return StatusMsg{Status: "URL copied to clipboard"}
			}
		}
		return ActionErrorMsg{Err: fmt.Errorf("could not copy URL to clipboard")}
	}
}

func PersistPreferencesCmd(saveFn func(storage.UIPreferences) error, prefs storage.UIPreferences) tea.Cmd {
	return func() tea.Msg {
		if saveFn == nil {
			return nil
		}
		if err := saveFn(prefs); err != nil {
			return ActionErrorMsg{Err: fmt.Errorf("save preferences: %w", err)}
		}
		return nil
	}
}
