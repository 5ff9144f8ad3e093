package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/glabrego/gaufre-cli/internal/gopher"
	"github.com/glabrego/gaufre-cli/internal/session"
)

// Style tags one line of a render plan. Display adapters map tags to colours;
// nothing in this package emits escape sequences.
type Style int

const (
	Plain Style = iota
	Marker
	Error
	Info
	Status
)

var styleNames = [...]string{
	Plain:  "plain",
	Marker: "marker",
	Error:  "error",
	Info:   "info",
	Status: "status",
}

func (s Style) String() string {
	if s < 0 || int(s) >= len(styleNames) {
		return "plain"
	}
	return styleNames[s]
}

// ParseStyle maps a configuration key back to a Style.
func ParseStyle(name string) (Style, bool) {
	for i, n := range styleNames {
		if n == name {
			return Style(i), true
		}
	}
	return Plain, false
}

// Line is one (style, text) pair. Menu lines also carry the entry index and
// item type so adapters can colour markers per type and highlight the cursor.
type Line struct {
	Style    Style
	Text     string
	Item     gopher.ItemType
	Index    int
	Selected bool
}

// Options controls plan layout.
type Options struct {
	Width       int
	ShowNumbers bool
}

// Body builds the document part of a screen for s.
func Body(s session.Session, opts Options) []Line {
	if !s.Loaded {
		return []Line{{Style: Info, Text: "Connecting to " + s.Current.HostPort() + "…", Index: -1}}
	}
	switch s.Document.Kind {
	case gopher.KindMenu:
		return menuLines(s, opts)
	case gopher.KindText:
		return textLines(s, opts)
	case gopher.KindBinary:
		return []Line{
			{Style: Info, Text: fmt.Sprintf("Binary document (%s), %d bytes.", s.Current.Type, len(s.Document.Data)), Index: -1},
			{Style: Info, Text: "Use save [PATH] to write it to disk.", Index: -1},
		}
	}
	return nil
}

// Lines wraps plain strings, such as the help screen, as a plan.
func Lines(text []string, style Style) []Line {
	out := make([]Line, len(text))
	for i, t := range text {
		out[i] = Line{Style: style, Text: t, Index: -1}
	}
	return out
}

// StatusLine summarises the current location plus an optional message.
func StatusLine(s session.Session, message string, isErr bool) Line {
	parts := []string{s.Current.URL()}
	if s.Loaded {
		switch s.Document.Kind {
		case gopher.KindMenu:
			parts = append(parts, fmt.Sprintf("%d/%d", min(s.Cursor+1, len(s.Document.Entries)), len(s.Document.Entries)))
		case gopher.KindText:
			parts = append(parts, fmt.Sprintf("%d lines", len(s.Document.Lines)))
		}
	}
	if message != "" {
		parts = append(parts, message)
	}
	style := Status
	if isErr {
		style = Error
	}
	return Line{Style: style, Text: strings.Join(parts, " | "), Index: -1}
}

// Build is the full screen: body followed by the status line.
func Build(s session.Session, opts Options, message string, isErr bool) []Line {
	return append(Body(s, opts), StatusLine(s, message, isErr))
}

func menuLines(s session.Session, opts Options) []Line {
	entries := s.Document.Entries
	out := make([]Line, 0, len(entries))
	numWidth := len(strconv.Itoa(max(0, len(entries)-1)))
	for i, e := range entries {
		line := Line{Item: e.Type, Index: i, Selected: i == s.Cursor}
		var b strings.Builder
		if opts.ShowNumbers {
			fmt.Fprintf(&b, "%*d ", numWidth, i)
		}
		switch e.Type {
		case gopher.Info:
			line.Style = Info
			fmt.Fprintf(&b, "%-6s %s", "", e.Display)
		case gopher.Error:
			line.Style = Error
			fmt.Fprintf(&b, "%-6s %s", "ERR", e.Display)
		default:
			line.Style = Marker
			fmt.Fprintf(&b, "%-6s %s", TypeLabel(e), e.Display)
		}
		line.Text = strings.TrimRight(b.String(), " ")
		if opts.Width > 0 {
			line.Text = Clip(line.Text, opts.Width)
		}
		out = append(out, line)
	}
	return out
}

func textLines(s session.Session, opts Options) []Line {
	var raw []string
	if s.Current.Type == gopher.HTML {
		raw = HTMLLines(strings.Join(s.Document.Lines, "\n"), opts.Width)
	} else {
		for _, l := range s.Document.Lines {
			raw = append(raw, HardWrap(l, opts.Width)...)
		}
	}
	return Lines(raw, Plain)
}

// TypeLabel is the short tag shown before a menu entry.
func TypeLabel(e gopher.MenuEntry) string {
	switch e.Type {
	case gopher.Text:
		return "TXT"
	case gopher.Submenu, gopher.Mirror:
		return "DIR"
	case gopher.Search:
		return "SRCH"
	case gopher.Telnet:
		return "TEL"
	case gopher.CCSO:
		return "CCSO"
	case gopher.HTML:
		return "HTML"
	case gopher.GIF, gopher.Image, gopher.PNG, gopher.JPG:
		return "IMG"
	case gopher.BinHex, gopher.DOSBinary, gopher.UUEncoded, gopher.Binary:
		return "BIN"
	case gopher.Error:
		return "ERR"
	case gopher.Info:
		return ""
	}
	marker := e.Marker
	if marker == 0 {
		marker = e.Type.Char()
	}
	return "?" + string(marker)
}
