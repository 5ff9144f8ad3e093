package platform

import (
	"bytes"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"path"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/atotto/clipboard"

	"github.com/glabrego/gaufre-cli/internal/config"
	"github.com/glabrego/gaufre-cli/internal/gopher"
)

// Launcher hands items the client cannot show itself to outside programs.
type Launcher struct {
	commands    config.Commands
	downloadDir string
	goos        string
	lookPath    func(string) (string, error)
	run         func(*exec.Cmd) error
	clipboard   func(string) error
}

func New(commands config.Commands, downloadDir string) *Launcher {
	return &Launcher{
		commands:    commands,
		downloadDir: downloadDir,
		goos:        runtime.GOOS,
		lookPath:    exec.LookPath,
		run:         func(cmd *exec.Cmd) error { return cmd.Start() },
		clipboard:   clipboard.WriteAll,
	}
}

// LinkURL extracts the web URL from an HTML item selector of the form
// "URL:https://...".
func LinkURL(selector string) (string, error) {
	raw, ok := strings.CutPrefix(selector, "URL:")
	if !ok {
		raw, ok = strings.CutPrefix(selector, "/URL:")
	}
	if !ok {
		return "", fmt.Errorf("selector is not a URL link")
	}
	return ValidateURL(raw)
}

func ValidateURL(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", fmt.Errorf("link has no URL")
	}
	parsed, err := url.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("invalid URL format")
	}
	switch parsed.Scheme {
	case "http", "https", "gopher", "ftp", "mailto":
	default:
		return "", fmt.Errorf("unsupported URL scheme: %s", parsed.Scheme)
	}
	if parsed.Host == "" && parsed.Scheme != "mailto" {
		return "", fmt.Errorf("invalid URL host")
	}
	return trimmed, nil
}

// OpenURL opens link in the configured browser, or the platform default.
func (l *Launcher) OpenURL(link string) error {
	name, args := l.browserCommand(link)
	if err := l.run(exec.Command(name, args...)); err != nil {
		return fmt.Errorf("open %s: %w", link, err)
	}
	return nil
}

func (l *Launcher) browserCommand(link string) (string, []string) {
	if fields := strings.Fields(l.commands.Browser); len(fields) > 0 {
		return fields[0], append(fields[1:], link)
	}
	return browserCommand(l.goos, link)
}

func browserCommand(goos, link string) (string, []string) {
	switch goos {
	case "darwin":
		return "open", []string{link}
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", link}
	default:
		return "xdg-open", []string{link}
	}
}

// TelnetCommand builds the interactive session for a telnet item. The caller
// runs it attached to the terminal.
func (l *Launcher) TelnetCommand(addr gopher.Address) (*exec.Cmd, error) {
	fields := strings.Fields(l.commands.Telnet)
	if len(fields) == 0 {
		return nil, fmt.Errorf("no telnet command configured")
	}
	args := append(fields[1:], addr.Host)
	if addr.Port > 0 {
		args = append(args, strconv.Itoa(addr.Port))
	}
	return exec.Command(fields[0], args...), nil
}

func (l *Launcher) HasPager() bool {
	return strings.TrimSpace(l.commands.Text) != ""
}

func (l *Launcher) HasImageViewer() bool {
	return strings.TrimSpace(l.commands.Image) != ""
}

// PagerCommand returns the configured text viewer for file, if any.
func (l *Launcher) PagerCommand(file string) (*exec.Cmd, bool) {
	fields := strings.Fields(l.commands.Text)
	if len(fields) == 0 {
		return nil, false
	}
	return exec.Command(fields[0], append(fields[1:], file)...), true
}

// ViewImage writes data to the download directory and starts the image viewer.
func (l *Launcher) ViewImage(addr gopher.Address, data []byte) (string, error) {
	fields := strings.Fields(l.commands.Image)
	if len(fields) == 0 {
		return "", fmt.Errorf("no image viewer configured")
	}
	file, err := l.write(l.DefaultPath(addr), data)
	if err != nil {
		return "", err
	}
	if err := l.run(exec.Command(fields[0], append(fields[1:], file)...)); err != nil {
		return file, fmt.Errorf("start %s: %w", fields[0], err)
	}
	return file, nil
}

// Save writes doc to target, or to the download directory when target is
// empty. It returns the path written.
func (l *Launcher) Save(addr gopher.Address, doc gopher.Document, target string) (string, error) {
	if doc.Kind == gopher.KindNone {
		return "", fmt.Errorf("nothing to save")
	}
	if strings.TrimSpace(target) == "" {
		target = l.DefaultPath(addr)
	}
	return l.write(target, doc.Bytes())
}

// DefaultPath is where a download of addr lands when no path is given.
func (l *Launcher) DefaultPath(addr gopher.Address) string {
	name := path.Base(strings.ReplaceAll(addr.Selector, "\t", "_"))
	if name == "." || name == "/" || name == "" {
		name = addr.Host
		if addr.Type.IsMenu() {
			name += ".gph"
		} else {
			name += ".txt"
		}
	}
	name = strings.Map(func(r rune) rune {
		if r == filepath.Separator || r == 0 {
			return '_'
		}
		return r
	}, name)
	dir := l.downloadDir
	if dir == "" {
		dir = "."
	}
	return filepath.Join(dir, name)
}

func (l *Launcher) write(target string, data []byte) (string, error) {
	if dir := filepath.Dir(target); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("create download dir: %w", err)
		}
	}
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", target, err)
	}
	return target, nil
}

// CopyToClipboard puts text on the system clipboard. When the clipboard
// package cannot reach one, the first available clipboard tool is used.
func (l *Launcher) CopyToClipboard(text string) error {
	if l.clipboard != nil && l.clipboard(text) == nil {
		return nil
	}
	c, err := selectClipboardCommand(l.lookPath)
	if err != nil {
		return err
	}
	cmd := exec.Command(c[0], c[1:]...)
	cmd.Stdin = bytes.NewBufferString(text)
	return cmd.Run()
}

func selectClipboardCommand(lookPath func(string) (string, error)) ([]string, error) {
	commands := [][]string{
		{"pbcopy"},
		{"wl-copy"},
		{"xclip", "-selection", "clipboard"},
	}
	for _, c := range commands {
		if _, err := lookPath(c[0]); err == nil {
			return c, nil
		}
	}
	return nil, fmt.Errorf("no clipboard command available")
}
