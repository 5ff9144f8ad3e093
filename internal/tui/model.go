package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/glabrego/gaufre-cli/internal/app"
	"github.com/glabrego/gaufre-cli/internal/command"
	"github.com/glabrego/gaufre-cli/internal/gopher"
	"github.com/glabrego/gaufre-cli/internal/logging"
	"github.com/glabrego/gaufre-cli/internal/platform"
	"github.com/glabrego/gaufre-cli/internal/render"
	"github.com/glabrego/gaufre-cli/internal/session"
	"github.com/glabrego/gaufre-cli/internal/storage"
	tuiactions "github.com/glabrego/gaufre-cli/internal/tui/actions"
	tuistate "github.com/glabrego/gaufre-cli/internal/tui/state"
	tuitheme "github.com/glabrego/gaufre-cli/internal/tui/theme"
	tuiview "github.com/glabrego/gaufre-cli/internal/tui/view"
)

// Launcher runs the outside programs that items the client cannot display
// are handed to. *platform.Launcher implements it.
type Launcher interface {
	OpenURL(link string) error
	CopyToClipboard(text string) error
	Save(addr gopher.Address, doc gopher.Document, target string) (string, error)
	ViewImage(addr gopher.Address, data []byte) (string, error)
	TelnetCommand(addr gopher.Address) (*exec.Cmd, error)
	PagerCommand(file string) (*exec.Cmd, bool)
	HasPager() bool
	HasImageViewer() bool
}

type clearStatusMsg struct {
	id int
}

const defaultWidth = 80

type Model struct {
	nav       tuiactions.Navigator
	bookmarks tuiactions.Bookmarker
	launcher  Launcher
	interp    *command.Interpreter
	theme     tuitheme.Theme

	input textinput.Model
	body  viewport.Model

	sess     session.Session
	seq      int
	cancel   context.CancelFunc
	loading  bool
	selected int

	// searchIndex is the search entry awaiting a query, or -1.
	searchIndex int

	status   string
	isErr    bool
	statusID int
	showHelp bool

	prefs             storage.UIPreferences
	savePreferencesFn func(storage.UIPreferences) error

	width  int
	height int
}

// NewModel builds the interface for a session that starts at start. The
// first fetch is issued by Init.
func NewModel(nav tuiactions.Navigator, bookmarks tuiactions.Bookmarker, interp *command.Interpreter, start gopher.Address) Model {
	input := textinput.New()
	input.Prompt = "> "
	input.Placeholder = "N, go HOST, back, help"
	input.Focus()

	m := Model{
		nav:         nav,
		bookmarks:   bookmarks,
		interp:      interp,
		theme:       tuitheme.Default(),
		input:       input,
		body:        viewport.New(defaultWidth, tuistate.BodyHeight(0, false)),
		sess:        session.New(start),
		loading:     nav != nil,
		searchIndex: -1,
	}
	if m.loading {
		m.status = "Connecting to " + start.HostPort() + "…"
	}
	m.input.PromptStyle = m.theme.Prompt
	m.refreshBody()
	return m
}

func (m Model) Init() tea.Cmd {
	if m.nav == nil {
		return nil
	}
	return tuiactions.OpenCmd(context.Background(), m.nav, m.seq, m.sess, m.sess.Current)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tuiactions.NavigateSuccessMsg:
		if msg.Seq != m.seq {
			return m, nil
		}
		m.finishFetch()
		return m.applyNavigation(msg)
	case tuiactions.NavigateErrorMsg:
		if msg.Seq != m.seq {
			return m, nil
		}
		m.finishFetch()
		if errors.Is(msg.Err, context.Canceled) {
			m.setStatus("Cancelled", false)
			return m, nil
		}
		logging.L().Warn().Err(msg.Err).Stringer("kind", msg.Kind).Dur("elapsed", msg.Duration).Msg("navigation failed")
		m.setStatus(msg.Err.Error(), true)
		m.refreshBody()
		return m, nil
	case tuiactions.StatusMsg:
		m.setStatus(msg.Status, false)
		return m, clearStatusCmd(m.statusID, 4*time.Second)
	case tuiactions.ActionErrorMsg:
		m.setStatus(msg.Err.Error(), true)
		return m, nil
	case tuiactions.BookmarksChangedMsg:
		m.setStatus(msg.Status, false)
		if m.sess.Loaded && app.IsLocal(m.sess.Current) {
			s := m.sess
			return m.startFetch(command.Reload, "", func(ctx context.Context, seq int) tea.Cmd {
				return tuiactions.ReloadCmd(ctx, m.nav, seq, s)
			})
		}
		return m, clearStatusCmd(m.statusID, 4*time.Second)
	case tuiactions.ExternalDoneMsg:
		if msg.Err != nil {
			m.setStatus(fmt.Sprintf("%s: %v", msg.What, msg.Err), true)
			return m, nil
		}
		m.setStatus("Back from "+msg.What, false)
		return m, clearStatusCmd(m.statusID, 3*time.Second)
	case clearStatusMsg:
		if msg.id == m.statusID && !m.isErr && !m.loading {
			m.status = ""
		}
		return m, nil
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.abandonFetch()
		return m, tea.Quit
	case "esc":
		switch {
		case m.loading:
			m.abandonFetch()
			m.setStatus("Cancelled", false)
		case m.searchIndex >= 0:
			m.endSearchPrompt()
			m.setStatus("Search cancelled", false)
		case m.showHelp:
			m.showHelp = false
		default:
			m.input.Reset()
		}
		return m, nil
	case "enter":
		return m.submit()
	case "up":
		m.move(-1)
		return m, nil
	case "down":
		m.move(1)
		return m, nil
	case "pgup":
		m.move(-tuistate.PageStep(m.body.Height))
		return m, nil
	case "pgdown":
		m.move(tuistate.PageStep(m.body.Height))
		return m, nil
	case "ctrl+n":
		m.prefs.ShowNumbers = !m.prefs.ShowNumbers
		m.refreshBody()
		if m.prefs.ShowNumbers {
			m.setStatus("Entry numbers shown", false)
		} else {
			m.setStatus("Entry numbers hidden", false)
		}
		m.statusID++
		return m, tea.Batch(
			tuiactions.PersistPreferencesCmd(m.savePreferencesFn, m.prefs),
			clearStatusCmd(m.statusID, 3*time.Second),
		)
	case "ctrl+y":
		if !m.sess.Loaded {
			m.setStatus(command.ErrNothingLoaded.Error(), true)
			return m, nil
		}
		if m.launcher == nil {
			m.setStatus(m.sess.Current.URL(), false)
			return m, nil
		}
		return m, tuiactions.CopyURLCmd(m.sess.Current.URL(), m.launcher.CopyToClipboard)
	case "backspace":
		if m.input.Value() == "" && m.searchIndex < 0 {
			return m.dispatch(command.Action{Kind: command.Back})
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	line := m.input.Value()
	m.input.Reset()

	if m.searchIndex >= 0 {
		index := m.searchIndex
		m.endSearchPrompt()
		query := strings.TrimSpace(line)
		if query == "" {
			m.setStatus("Search cancelled", false)
			return m, nil
		}
		return m.dispatch(command.Action{Kind: command.Search, Index: index, Query: query})
	}

	if strings.TrimSpace(line) == "" {
		if _, ok := m.sess.CursorEntry(); ok {
			return m.dispatch(command.Action{Kind: command.Select, Index: m.sess.Cursor})
		}
		return m, nil
	}

	action, err := m.interp.Interpret(m.sess, line)
	if err != nil {
		m.setStatus(err.Error(), true)
		return m, nil
	}
	return m.dispatch(action)
}

func (m Model) dispatch(action command.Action) (tea.Model, tea.Cmd) {
	s := m.sess
	switch action.Kind {
	case command.NoOp:
		if action.Message != "" {
			m.setStatus(action.Message, false)
		}
		return m, nil
	case command.Select:
		entry, err := s.Entry(action.Index)
		if err != nil {
			m.setStatus(err.Error(), true)
			return m, nil
		}
		m.selected = action.Index
		return m.startFetch(command.Select, entry.Address.URL(), func(ctx context.Context, seq int) tea.Cmd {
			return tuiactions.SelectCmd(ctx, m.nav, seq, s, action.Index)
		})
	case command.Search:
		entry, err := s.Entry(action.Index)
		if err != nil {
			m.setStatus(err.Error(), true)
			return m, nil
		}
		return m.startFetch(command.Search, entry.Address.URL(), func(ctx context.Context, seq int) tea.Cmd {
			return tuiactions.SearchCmd(ctx, m.nav, seq, s, action.Index, action.Query)
		})
	case command.JumpTo:
		return m.startFetch(command.JumpTo, action.Address.URL(), func(ctx context.Context, seq int) tea.Cmd {
			return tuiactions.OpenCmd(ctx, m.nav, seq, s, action.Address)
		})
	case command.Bookmarks:
		return m.startFetch(command.JumpTo, "bookmarks", func(ctx context.Context, seq int) tea.Cmd {
			return tuiactions.OpenCmd(ctx, m.nav, seq, s, app.BookmarksAddress)
		})
	case command.Back:
		if len(s.History) == 0 {
			m.setStatus(session.ErrAtRoot.Error(), false)
			return m, nil
		}
		return m.startFetch(command.Back, s.History[len(s.History)-1].URL(), func(ctx context.Context, seq int) tea.Cmd {
			return tuiactions.BackCmd(ctx, m.nav, seq, s)
		})
	case command.Forward:
		if len(s.Forward) == 0 {
			m.setStatus(session.ErrNoForward.Error(), false)
			return m, nil
		}
		return m.startFetch(command.Forward, s.Forward[len(s.Forward)-1].URL(), func(ctx context.Context, seq int) tea.Cmd {
			return tuiactions.ForwardCmd(ctx, m.nav, seq, s)
		})
	case command.Reload:
		return m.startFetch(command.Reload, s.Current.URL(), func(ctx context.Context, seq int) tea.Cmd {
			return tuiactions.ReloadCmd(ctx, m.nav, seq, s)
		})
	case command.Help:
		m.showHelp = !m.showHelp
		return m, nil
	case command.Quit:
		m.abandonFetch()
		return m, tea.Quit
	case command.Info:
		if !s.Loaded {
			m.setStatus(command.ErrNothingLoaded.Error(), true)
			return m, nil
		}
		m.setStatus(s.Current.URL(), false)
		return m, nil
	case command.Save:
		if !s.Loaded {
			m.setStatus(command.ErrNothingLoaded.Error(), true)
			return m, nil
		}
		if m.launcher == nil {
			m.setStatus("saving is not available", true)
			return m, nil
		}
		return m, tuiactions.SaveCmd(m.launcher.Save, s.Current, s.Document, action.Path)
	case command.Mark:
		if m.bookmarks == nil {
			m.setStatus("bookmarks are not available", true)
			return m, nil
		}
		return m, tuiactions.MarkCmd(m.bookmarks, s)
	case command.Unmark:
		if m.bookmarks == nil {
			m.setStatus("bookmarks are not available", true)
			return m, nil
		}
		return m, tuiactions.UnmarkCmd(m.bookmarks, action.Index)
	}
	return m, nil
}

// startFetch abandons any fetch in flight and issues a new one tagged with
// the next sequence number.
func (m Model) startFetch(kind command.Kind, target string, build func(ctx context.Context, seq int) tea.Cmd) (tea.Model, tea.Cmd) {
	if m.nav == nil {
		m.setStatus("not connected", true)
		return m, nil
	}
	m.abandonFetch()
	m.seq++
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.loading = true
	if target != "" {
		m.setStatus(fmt.Sprintf("%s %s…", fetchVerb(kind), target), false)
	} else {
		m.setStatus(fetchVerb(kind)+"…", false)
	}
	return m, build(ctx, m.seq)
}

// abandonFetch cancels the fetch in flight. Its result, if any still
// arrives, carries a stale sequence number and is dropped.
func (m *Model) abandonFetch() {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	if m.loading {
		m.seq++
		m.loading = false
	}
}

func (m *Model) finishFetch() {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	m.loading = false
}

func (m Model) applyNavigation(msg tuiactions.NavigateSuccessMsg) (tea.Model, tea.Cmd) {
	switch msg.Result.Outcome {
	case session.Inert:
		m.setStatus("", false)
		return m, nil
	case session.NeedsQuery:
		m.pointAtSelected()
		m.searchIndex = m.selected
		m.input.Placeholder = "query for " + msg.Result.Entry.Display
		m.setStatus("Enter a search query", false)
		return m, nil
	case session.External:
		if msg.Kind == command.Select {
			m.pointAtSelected()
		}
		m.setStatus("", false)
		return m.external(msg.Result.Entry)
	}

	m.sess = msg.Session
	if e, ok := m.sess.CursorEntry(); ok && !e.Navigable() {
		m.sess = m.sess.MoveCursor(1)
	}
	m.body.GotoTop()
	m.refreshBody()
	m.setStatus(fmt.Sprintf("Loaded %s in %dms", m.sess.Title(), msg.Duration.Milliseconds()), false)
	m.statusID++
	cmds := []tea.Cmd{clearStatusCmd(m.statusID, 3*time.Second)}
	switch msg.Kind {
	case command.Select, command.Search, command.JumpTo:
		if cmd := m.handOff(); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return m, tea.Batch(cmds...)
}

// pointAtSelected moves the cursor onto the entry that was just chosen. It
// runs only once the selection has succeeded.
func (m *Model) pointAtSelected() {
	m.sess = m.sess.SetCursor(m.selected)
	m.refreshBody()
}

// handOff passes a freshly opened image or text document to the configured
// viewer.
func (m Model) handOff() tea.Cmd {
	if m.launcher == nil {
		return nil
	}
	doc := m.sess.Document
	switch {
	case doc.Kind == gopher.KindBinary && isImage(m.sess.Current.Type) && m.launcher.HasImageViewer():
		return tuiactions.ViewImageCmd(m.launcher.ViewImage, m.sess.Current, doc.Data)
	case doc.Kind == gopher.KindText && m.launcher.HasPager():
		return pagerCmd(m.launcher, doc)
	}
	return nil
}

func (m Model) external(entry gopher.MenuEntry) (tea.Model, tea.Cmd) {
	switch entry.Type {
	case gopher.HTML:
		link, err := platform.LinkURL(entry.Address.Selector)
		if err != nil {
			m.setStatus(err.Error(), true)
			return m, nil
		}
		if m.launcher == nil {
			m.setStatus("Link: "+link, false)
			return m, nil
		}
		return m, tuiactions.OpenURLCmd(link, m.launcher.OpenURL, m.launcher.CopyToClipboard)
	case gopher.Telnet:
		target := entry.Address.HostPort()
		if m.launcher == nil {
			m.setStatus("Telnet session at "+target, false)
			return m, nil
		}
		cmd, err := m.launcher.TelnetCommand(entry.Address)
		if err != nil {
			m.setStatus(fmt.Sprintf("%v (telnet %s)", err, target), true)
			return m, nil
		}
		return m, tea.ExecProcess(cmd, func(err error) tea.Msg {
			return tuiactions.ExternalDoneMsg{What: "telnet", Err: err}
		})
	}
	m.setStatus(fmt.Sprintf("%s entries are not supported", strings.ToUpper(entry.Type.String())), false)
	return m, nil
}

func pagerCmd(l Launcher, doc gopher.Document) tea.Cmd {
	f, err := os.CreateTemp("", "gaufre-*.txt")
	if err != nil {
		return errorCmd(fmt.Errorf("create pager file: %w", err))
	}
	name := f.Name()
	_, err = f.Write(doc.Bytes())
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(name)
		return errorCmd(fmt.Errorf("write pager file: %w", err))
	}
	cmd, ok := l.PagerCommand(name)
	if !ok {
		os.Remove(name)
		return nil
	}
	return tea.ExecProcess(cmd, func(err error) tea.Msg {
		os.Remove(name)
		return tuiactions.ExternalDoneMsg{What: "pager", Err: err}
	})
}

func errorCmd(err error) tea.Cmd {
	return func() tea.Msg { return tuiactions.ActionErrorMsg{Err: err} }
}

func clearStatusCmd(id int, after time.Duration) tea.Cmd {
	return tea.Tick(after, func(time.Time) tea.Msg {
		return clearStatusMsg{id: id}
	})
}

func (m *Model) move(delta int) {
	if m.sess.Document.Kind == gopher.KindMenu {
		m.sess = m.sess.MoveCursor(delta)
		m.refreshBody()
		return
	}
	m.body.SetYOffset(m.body.YOffset + delta)
}

func (m *Model) endSearchPrompt() {
	m.searchIndex = -1
	m.input.Placeholder = "N, go HOST, back, help"
}

func (m *Model) setStatus(status string, isErr bool) {
	m.status = status
	m.isErr = isErr
}

func (m *Model) resize() {
	w := m.width
	if w <= 0 {
		w = defaultWidth
	}
	m.body.Width = w
	m.body.Height = tuistate.BodyHeight(m.height, false)
	m.input.Width = max(1, w-len(m.input.Prompt)-1)
	m.refreshBody()
}

func (m Model) contentWidth() int {
	w := m.width
	if w <= 0 {
		w = defaultWidth
	}
	if m.prefs.WrapWidth > 0 && m.prefs.WrapWidth < w {
		return m.prefs.WrapWidth
	}
	return w
}

// refreshBody re-renders the document into the viewport and scrolls just
// enough to keep the menu cursor visible.
func (m *Model) refreshBody() {
	lines := render.Body(m.sess, render.Options{Width: m.contentWidth(), ShowNumbers: m.prefs.ShowNumbers})
	rendered := make([]string, len(lines))
	cursorRow := -1
	for i, line := range lines {
		rendered[i] = m.theme.RenderLine(line)
		if line.Selected {
			cursorRow = i
		}
	}
	m.body.SetContent(strings.Join(rendered, "\n"))
	if cursorRow >= 0 {
		m.body.SetYOffset(tuistate.FollowCursor(m.body.YOffset, cursorRow, m.body.Height, len(lines)))
	}
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(tuiview.Header(m.sess.Current.URL(), m.sess.Document, len(m.sess.History), m.theme))
	b.WriteString("\n")
	if m.showHelp {
		b.WriteString(m.helpView())
	} else {
		b.WriteString(m.body.View())
	}
	b.WriteString("\n")
	b.WriteString(tuiview.Message(m.loading, m.isErr, m.status, m.theme))
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(tuiview.Toolbar(m.sess.Document.Kind, m.searchIndex >= 0))
	return b.String()
}

func (m Model) helpView() string {
	lines := command.HelpLines
	if h := m.body.Height; h > 0 && len(lines) > h {
		lines = lines[:h]
	}
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = render.Clip(l, m.contentWidth())
	}
	return strings.Join(out, "\n")
}

func fetchVerb(kind command.Kind) string {
	switch kind {
	case command.Back:
		return "Going back to"
	case command.Forward:
		return "Going forward to"
	case command.Reload:
		return "Reloading"
	case command.Search:
		return "Searching"
	}
	return "Fetching"
}

func isImage(t gopher.ItemType) bool {
	switch t {
	case gopher.GIF, gopher.Image, gopher.PNG, gopher.JPG:
		return true
	}
	return false
}

func (m *Model) SetLauncher(l Launcher) {
	m.launcher = l
}

func (m *Model) SetTheme(th tuitheme.Theme) {
	m.theme = th
	m.input.PromptStyle = th.Prompt
	m.refreshBody()
}

func (m *Model) ApplyPreferences(prefs storage.UIPreferences) {
	m.prefs = prefs
	m.refreshBody()
}

func (m *Model) SetPreferencesSaver(saveFn func(storage.UIPreferences) error) {
	m.savePreferencesFn = saveFn
}

// Session returns the committed navigation state.
func (m Model) Session() session.Session {
	return m.sess
}
