package tui

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/glabrego/gaufre-cli/internal/command"
	"github.com/glabrego/gaufre-cli/internal/session"
	tuiactions "github.com/glabrego/gaufre-cli/internal/tui/actions"
)

func TestModelUpdate_HandlesAllActionMessageTypes(t *testing.T) {
	base, _ := loadedModel(t)

	tests := []struct {
		name    string
		msg     func(m Model) tea.Msg
		wantErr bool
	}{
		{
			name: "navigate success",
			msg: func(m Model) tea.Msg {
				return tuiactions.NavigateSuccessMsg{Seq: m.seq, Kind: command.Reload, Session: m.sess, Result: session.Result{Outcome: session.Navigated}, Duration: 12 * time.Millisecond}
			},
		},
		{
			name: "navigate error",
			msg: func(m Model) tea.Msg {
				return tuiactions.NavigateErrorMsg{Seq: m.seq, Kind: command.Reload, Err: errors.New("connect example.org:70: timed out")}
			},
			wantErr: true,
		},
		{
			name: "stale navigate error",
			msg: func(m Model) tea.Msg {
				return tuiactions.NavigateErrorMsg{Seq: m.seq - 1, Kind: command.Reload, Err: errors.New("old")}
			},
		},
		{
			name: "status",
			msg:  func(Model) tea.Msg { return tuiactions.StatusMsg{Status: "Saved"} },
		},
		{
			name:    "action error",
			msg:     func(Model) tea.Msg { return tuiactions.ActionErrorMsg{Err: errors.New("write failed")} },
			wantErr: true,
		},
		{
			name: "bookmarks changed",
			msg:  func(Model) tea.Msg { return tuiactions.BookmarksChangedMsg{Status: "Bookmarked example.org"} },
		},
		{
			name: "external done",
			msg:  func(Model) tea.Msg { return tuiactions.ExternalDoneMsg{What: "telnet"} },
		},
		{
			name:    "external failed",
			msg:     func(Model) tea.Msg { return tuiactions.ExternalDoneMsg{What: "pager", Err: errors.New("exit status 1")} },
			wantErr: true,
		},
		{
			name: "clear status",
			msg:  func(m Model) tea.Msg { return clearStatusMsg{id: m.statusID} },
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			next, _ := base.Update(tc.msg(base))
			m, ok := next.(Model)
			if !ok {
				t.Fatalf("Update returned %T", next)
			}
			if m.isErr != tc.wantErr {
				t.Fatalf("isErr = %v, want %v (status %q)", m.isErr, tc.wantErr, m.status)
			}
			if m.sess.Current != base.sess.Current {
				t.Fatalf("location changed: %+v", m.sess.Current)
			}
		})
	}
}

func TestModelUpdate_CancelledFetchIsNotAnError(t *testing.T) {
	m, _ := loadedModel(t)
	m.loading = true
	next, _ := m.Update(tuiactions.NavigateErrorMsg{Seq: m.seq, Kind: command.Select, Err: errors.Join(errors.New("connect"), context.Canceled)})
	got := next.(Model)
	if got.isErr || got.status != "Cancelled" || got.loading {
		t.Fatalf("unexpected state: err=%v status=%q loading=%v", got.isErr, got.status, got.loading)
	}
}
