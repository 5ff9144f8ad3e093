package platform

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/glabrego/gaufre-cli/internal/config"
	"github.com/glabrego/gaufre-cli/internal/gopher"
)

func TestLinkURL(t *testing.T) {
	got, err := LinkURL("URL:https://example.com/path")
	if err != nil {
		t.Fatalf("unexpected error for valid link: %v", err)
	}
	if got != "https://example.com/path" {
		t.Fatalf("unexpected URL: %q", got)
	}
	if got, err := LinkURL("/URL:http://example.com"); err != nil || got != "http://example.com" {
		t.Fatalf("unexpected result for slash-prefixed link: %q %v", got, err)
	}
	if _, err := LinkURL("/index.html"); err == nil {
		t.Fatal("expected error for non-link selector")
	}
}

func TestValidateURL(t *testing.T) {
	_, err := ValidateURL("javascript://example.com/path")
	if err == nil || !strings.Contains(err.Error(), "unsupported URL scheme") {
		t.Fatalf("expected unsupported scheme error, got %v", err)
	}
	_, err = ValidateURL("https://")
	if err == nil || !strings.Contains(err.Error(), "invalid URL host") {
		t.Fatalf("expected invalid host error, got %v", err)
	}
	if _, err := ValidateURL("mailto:someone@example.com"); err != nil {
		t.Fatalf("unexpected error for mailto: %v", err)
	}
}

func TestBrowserCommand(t *testing.T) {
	cases := []struct {
		goos string
		name string
		args []string
	}{
		{goos: "darwin", name: "open", args: []string{"https://example.com"}},
		{goos: "windows", name: "rundll32", args: []string{"url.dll,FileProtocolHandler", "https://example.com"}},
		{goos: "linux", name: "xdg-open", args: []string{"https://example.com"}},
	}
	for _, tc := range cases {
		gotName, gotArgs := browserCommand(tc.goos, "https://example.com")
		if gotName != tc.name || !reflect.DeepEqual(gotArgs, tc.args) {
			t.Fatalf("browserCommand(%q) = (%q, %v), want (%q, %v)", tc.goos, gotName, gotArgs, tc.name, tc.args)
		}
	}
}

func TestOpenURL_UsesConfiguredBrowser(t *testing.T) {
	l := New(config.Commands{Browser: "firefox --new-tab"}, t.TempDir())
	var ran []string
	l.run = func(cmd *exec.Cmd) error {
		ran = cmd.Args
		return nil
	}
	if err := l.OpenURL("https://example.com"); err != nil {
		t.Fatalf("OpenURL returned error: %v", err)
	}
	want := []string{"firefox", "--new-tab", "https://example.com"}
	if !reflect.DeepEqual(ran, want) {
		t.Fatalf("unexpected command: %v", ran)
	}
}

func TestTelnetCommand(t *testing.T) {
	l := New(config.Commands{Telnet: "telnet -E"}, "")
	cmd, err := l.TelnetCommand(gopher.Address{Host: "bbs.example", Port: 2323})
	if err != nil {
		t.Fatalf("TelnetCommand returned error: %v", err)
	}
	want := []string{"telnet", "-E", "bbs.example", "2323"}
	if !reflect.DeepEqual(cmd.Args, want) {
		t.Fatalf("unexpected args: %v", cmd.Args)
	}
	if _, err := New(config.Commands{}, "").TelnetCommand(gopher.Address{Host: "x"}); err == nil {
		t.Fatal("expected error without telnet command")
	}
}

func TestPagerCommand(t *testing.T) {
	if _, ok := New(config.Commands{}, "").PagerCommand("f"); ok {
		t.Fatal("expected no pager by default")
	}
	cmd, ok := New(config.Commands{Text: "less -R"}, "").PagerCommand("f.txt")
	if !ok || !reflect.DeepEqual(cmd.Args, []string{"less", "-R", "f.txt"}) {
		t.Fatalf("unexpected pager: %v %v", cmd, ok)
	}
	l := New(config.Commands{Text: "less", Image: " "}, "")
	if !l.HasPager() || l.HasImageViewer() {
		t.Fatalf("unexpected capabilities: pager=%v image=%v", l.HasPager(), l.HasImageViewer())
	}
}

func TestSave_DefaultPathAndExplicitPath(t *testing.T) {
	dir := t.TempDir()
	l := New(config.Commands{}, filepath.Join(dir, "downloads"))
	addr := gopher.Address{Host: "example.org", Port: 70, Selector: "/files/readme.txt", Type: gopher.Text}
	doc := gopher.TextDocument([]string{"hello", "world"})

	written, err := l.Save(addr, doc, "")
	if err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	if written != filepath.Join(dir, "downloads", "readme.txt") {
		t.Fatalf("unexpected path: %s", written)
	}
	data, err := os.ReadFile(written)
	if err != nil || string(data) != "hello\nworld\n" {
		t.Fatalf("unexpected file content: %q (%v)", data, err)
	}

	explicit := filepath.Join(dir, "out.bin")
	if _, err := l.Save(addr, gopher.BinaryDocument([]byte{1, 2, 3}), explicit); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	if data, _ := os.ReadFile(explicit); !reflect.DeepEqual(data, []byte{1, 2, 3}) {
		t.Fatalf("unexpected binary content: %v", data)
	}

	if _, err := l.Save(addr, gopher.Document{}, ""); err == nil {
		t.Fatal("expected error for empty document")
	}
}

func TestDefaultPath_RootMenu(t *testing.T) {
	l := New(config.Commands{}, "dl")
	got := l.DefaultPath(gopher.Address{Host: "example.org", Type: gopher.Submenu})
	if got != filepath.Join("dl", "example.org.gph") {
		t.Fatalf("unexpected path: %s", got)
	}
}

func TestViewImage(t *testing.T) {
	dir := t.TempDir()
	l := New(config.Commands{Image: "feh"}, dir)
	var ran []string
	l.run = func(cmd *exec.Cmd) error {
		ran = cmd.Args
		return nil
	}
	file, err := l.ViewImage(gopher.Address{Host: "h", Selector: "/cat.png", Type: gopher.PNG}, []byte("png"))
	if err != nil {
		t.Fatalf("ViewImage returned error: %v", err)
	}
	if !reflect.DeepEqual(ran, []string{"feh", file}) {
		t.Fatalf("unexpected command: %v", ran)
	}
}

func TestSelectClipboardCommand(t *testing.T) {
	lookup := func(bin string) (string, error) {
		if bin == "xclip" {
			return "/usr/bin/xclip", nil
		}
		return "", errors.New("not found")
	}
	got, err := selectClipboardCommand(lookup)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"xclip", "-selection", "clipboard"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected selected command: got=%v want=%v", got, want)
	}

	none := func(string) (string, error) { return "", errors.New("not found") }
	if _, err := selectClipboardCommand(none); err == nil {
		t.Fatal("expected error when no clipboard command is available")
	}
}

func TestCopyToClipboard_FallsBackToTool(t *testing.T) {
	l := New(config.Commands{}, "")
	l.clipboard = func(string) error { return errors.New("unavailable") }
	l.lookPath = func(string) (string, error) { return "", errors.New("not found") }
	if err := l.CopyToClipboard("gopher://example.org/"); err == nil {
		t.Fatal("expected error when neither clipboard path works")
	}

	var got string
	l.clipboard = func(s string) error { got = s; return nil }
	if err := l.CopyToClipboard("gopher://example.org/"); err != nil || got != "gopher://example.org/" {
		t.Fatalf("unexpected result: err=%v got=%q", err, got)
	}
}
