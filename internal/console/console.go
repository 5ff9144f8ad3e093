// Package console is the line-oriented front end used when stdin is not a
// terminal, or when plain output is forced. It reads one command per line and
// prints each screen as plain text.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/glabrego/gaufre-cli/internal/app"
	"github.com/glabrego/gaufre-cli/internal/command"
	"github.com/glabrego/gaufre-cli/internal/gopher"
	"github.com/glabrego/gaufre-cli/internal/logging"
	"github.com/glabrego/gaufre-cli/internal/platform"
	"github.com/glabrego/gaufre-cli/internal/render"
	"github.com/glabrego/gaufre-cli/internal/session"
	"github.com/glabrego/gaufre-cli/internal/storage"
)

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

// Launcher is the part of *platform.Launcher the console can use without
// giving up the terminal.
type Launcher interface {
	OpenURL(link string) error
	Save(addr gopher.Address, doc gopher.Document, target string) (string, error)
}

type Runner struct {
	nav       Navigator
	bookmarks Bookmarker
	launcher  Launcher
	interp    *command.Interpreter
	in        *bufio.Reader
	out       io.Writer
	opts      render.Options
	prompt    string
}

func NewRunner(nav Navigator, bookmarks Bookmarker, interp *command.Interpreter, in io.Reader, out io.Writer) *Runner {
	return &Runner{
		nav:       nav,
		bookmarks: bookmarks,
		interp:    interp,
		in:        bufio.NewReader(in),
		out:       out,
		opts:      render.Options{Width: 80, ShowNumbers: true},
		prompt:    "> ",
	}
}

func (r *Runner) SetLauncher(l Launcher) {
	r.launcher = l
}

// SetWidth sets the wrap width. Values below 1 keep the default.
func (r *Runner) SetWidth(width int) {
	if width > 0 {
		r.opts.Width = width
	}
}

// result is what one command did to the screen.
type result struct {
	message string
	isErr   bool
	redraw  bool
	quit    bool
}

// Run opens start and then serves commands until quit, end of input or ctx
// cancellation. The first fetch failing does not end the loop.
func (r *Runner) Run(ctx context.Context, start gopher.Address) error {
	s := session.New(start)
	s, res := r.navigate(s, func() (session.Session, error) {
		return r.nav.Open(ctx, s, start)
	})
	r.show(s, res)

	for {
		if ctx.Err() != nil {
			return nil
		}
		line, eof, err := r.readLine(r.prompt)
		if err != nil {
			return err
		}
		if strings.TrimSpace(line) != "" {
			var res result
			s, res = r.handle(ctx, s, line)
			if res.quit {
				return nil
			}
			r.show(s, res)
		}
		if eof {
			return nil
		}
	}
}

func (r *Runner) readLine(prompt string) (string, bool, error) {
	fmt.Fprint(r.out, prompt)
	line, err := r.in.ReadString('\n')
	if errors.Is(err, io.EOF) {
		if line != "" {
			fmt.Fprintln(r.out)
		}
		return line, true, nil
	}
	if err != nil {
		return "", false, err
	}
	return line, false, nil
}

func (r *Runner) handle(ctx context.Context, s session.Session, line string) (session.Session, result) {
	action, err := r.interp.Interpret(s, line)
	if err != nil {
		logging.L().Debug().Err(err).Str("input", strings.TrimSpace(line)).Msg("command rejected")
		return s, result{message: err.Error(), isErr: true}
	}

	switch action.Kind {
	case command.NoOp:
		return s, result{message: action.Message}
	case command.Quit:
		return s, result{quit: true}
	case command.Help:
		for _, l := range command.HelpLines {
			fmt.Fprintln(r.out, l)
		}
		return s, result{}
	case command.Select:
		return r.selectEntry(ctx, s, action.Index)
	case command.Search:
		next, sel, err := r.nav.SelectWithQuery(ctx, s, action.Index, action.Query)
		return r.afterSelect(s, next, sel, err)
	case command.JumpTo:
		return r.navigate(s, func() (session.Session, error) { return r.nav.Open(ctx, s, action.Address) })
	case command.Bookmarks:
		return r.navigate(s, func() (session.Session, error) { return r.nav.Open(ctx, s, app.BookmarksAddress) })
	case command.Back:
		return r.navigate(s, func() (session.Session, error) { return r.nav.Back(ctx, s) })
	case command.Forward:
		return r.navigate(s, func() (session.Session, error) { return r.nav.Forward(ctx, s) })
	case command.Reload:
		return r.navigate(s, func() (session.Session, error) { return r.nav.Reload(ctx, s) })
	case command.Info:
		return s, result{message: s.Current.URL()}
	case command.Save:
		if r.launcher == nil {
			return s, result{message: "saving is not available", isErr: true}
		}
		written, err := r.launcher.Save(s.Current, s.Document, action.Path)
		if err != nil {
			return s, result{message: err.Error(), isErr: true}
		}
		return s, result{message: fmt.Sprintf("Saved %d bytes to %s", len(s.Document.Bytes()), written)}
	case command.Mark:
		bm, err := r.bookmarks.Mark(ctx, s)
		if err != nil {
			return s, result{message: err.Error(), isErr: true}
		}
		return s, result{message: "Bookmarked " + bm.Title}
	case command.Unmark:
		bm, err := r.bookmarks.Unmark(ctx, action.Index)
		if err != nil {
			return s, result{message: err.Error(), isErr: true}
		}
		if app.IsLocal(s.Current) {
			next, res := r.navigate(s, func() (session.Session, error) { return r.nav.Reload(ctx, s) })
			if !res.isErr {
				res.message = "Removed bookmark " + bm.Title
			}
			return next, res
		}
		return s, result{message: "Removed bookmark " + bm.Title}
	}
	return s, result{}
}

func (r *Runner) selectEntry(ctx context.Context, s session.Session, index int) (session.Session, result) {
	next, sel, err := r.nav.Select(ctx, s, index)
	if err == nil && sel.Outcome == session.NeedsQuery {
		query, _, rerr := r.readLine("query for " + sel.Entry.Display + ": ")
		if rerr != nil {
			return s, result{message: rerr.Error(), isErr: true}
		}
		query = strings.TrimSpace(query)
		if query == "" {
			return s, result{message: "Search cancelled"}
		}
		next, sel, err = r.nav.SelectWithQuery(ctx, s, index, query)
	}
	return r.afterSelect(s, next, sel, err)
}

func (r *Runner) afterSelect(prev, next session.Session, sel session.Result, err error) (session.Session, result) {
	if err != nil {
		return prev, result{message: err.Error(), isErr: true}
	}
	switch sel.Outcome {
	case session.Inert:
		return prev, result{}
	case session.External:
		return prev, r.external(sel.Entry)
	}
	return next, result{redraw: true}
}

func (r *Runner) external(entry gopher.MenuEntry) result {
	switch entry.Type {
	case gopher.HTML:
		link, err := platform.LinkURL(entry.Address.Selector)
		if err != nil {
			return result{message: err.Error(), isErr: true}
		}
		if r.launcher != nil {
			if err := r.launcher.OpenURL(link); err == nil {
				return result{message: "Opened " + link + " in browser"}
			}
		}
		return result{message: "Link: " + link}
	case gopher.Telnet:
		return result{message: "Telnet session at " + entry.Address.HostPort()}
	}
	return result{message: fmt.Sprintf("%s entries are not supported", strings.ToUpper(entry.Type.String()))}
}

func (r *Runner) navigate(s session.Session, run func() (session.Session, error)) (session.Session, result) {
	next, err := run()
	if err != nil {
		if errors.Is(err, session.ErrAtRoot) || errors.Is(err, session.ErrNoForward) {
			return s, result{message: err.Error()}
		}
		return s, result{message: err.Error(), isErr: true}
	}
	return next, result{redraw: true}
}

func (r *Runner) show(s session.Session, res result) {
	if res.redraw || !s.Loaded {
		for _, line := range render.Build(s, r.opts, res.message, res.isErr) {
			fmt.Fprintln(r.out, line.Text)
		}
		return
	}
	if res.message != "" {
		fmt.Fprintln(r.out, render.StatusLine(s, res.message, res.isErr).Text)
	}
}
