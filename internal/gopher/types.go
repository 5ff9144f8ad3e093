package gopher

import (
	"fmt"
	"net"
	"strconv"
	"strings"
)

const DefaultPort = 70

// ItemType is the closed set of menu item kinds the client understands.
// Unknown type characters map to Unsupported.
type ItemType int

const (
	Unsupported ItemType = iota
	Text
	Submenu
	CCSO
	Error
	BinHex
	DOSBinary
	UUEncoded
	Search
	Telnet
	Binary
	Mirror
	GIF
	Image
	PNG
	JPG
	HTML
	Info
)

var typeChars = [...]byte{
	Unsupported: '?',
	Text:        '0',
	Submenu:     '1',
	CCSO:        '2',
	Error:       '3',
	BinHex:      '4',
	DOSBinary:   '5',
	UUEncoded:   '6',
	Search:      '7',
	Telnet:      '8',
	Binary:      '9',
	Mirror:      '+',
	GIF:         'g',
	Image:       'I',
	PNG:         'p',
	JPG:         'j',
	HTML:        'h',
	Info:        'i',
}

var typeNames = [...]string{
	Unsupported: "unsupported",
	Text:        "text",
	Submenu:     "menu",
	CCSO:        "ccso",
	Error:       "error",
	BinHex:      "binhex",
	DOSBinary:   "dos",
	UUEncoded:   "uuencoded",
	Search:      "search",
	Telnet:      "telnet",
	Binary:      "binary",
	Mirror:      "mirror",
	GIF:         "gif",
	Image:       "image",
	PNG:         "png",
	JPG:         "jpg",
	HTML:        "html",
	Info:        "info",
}

// ParseItemType maps a wire type character to its ItemType.
func ParseItemType(c byte) ItemType {
	for t, tc := range typeChars {
		if ItemType(t) != Unsupported && tc == c {
			return ItemType(t)
		}
	}
	return Unsupported
}

func (t ItemType) Char() byte {
	if t < 0 || int(t) >= len(typeChars) {
		return typeChars[Unsupported]
	}
	return typeChars[t]
}

func (t ItemType) String() string {
	if t < 0 || int(t) >= len(typeNames) {
		return typeNames[Unsupported]
	}
	return typeNames[t]
}

// Navigable reports whether entries of this type point at a fetchable resource.
func (t ItemType) Navigable() bool {
	return t != Info && t != Error
}

// IsBinary reports whether replies for this type are raw bytes that must not be
// interpreted as lines.
func (t ItemType) IsBinary() bool {
	switch t {
	case BinHex, DOSBinary, UUEncoded, Binary, GIF, Image, PNG, JPG:
		return true
	}
	return false
}

// IsMenu reports whether replies for this type are expected to be menus.
func (t ItemType) IsMenu() bool {
	return t == Submenu || t == Mirror || t == Search
}

// Address identifies a fetchable resource. It is compared by value.
type Address struct {
	Host     string
	Port     int
	Selector string
	Type     ItemType
}

func (a Address) HostPort() string {
	return net.JoinHostPort(a.Host, strconv.Itoa(a.Port))
}

// URL renders the address as a gopher:// URL.
func (a Address) URL() string {
	port := ""
	if a.Port != DefaultPort {
		port = ":" + strconv.Itoa(a.Port)
	}
	host := a.Host
	if strings.Contains(host, ":") {
		host = "[" + host + "]"
	}
	return fmt.Sprintf("gopher://%s%s/%c%s", host, port, a.Type.Char(), a.Selector)
}

func (a Address) String() string {
	return a.URL()
}

// ParseAddress accepts either a gopher:// URL or the bare form
// HOST[:PORT][/SELECTOR]. Bare addresses are treated as menus.
func ParseAddress(raw string, defaultPort int) (Address, error) {
	raw = strings.TrimSpace(raw)
	if defaultPort <= 0 {
		defaultPort = DefaultPort
	}
	if raw == "" {
		return Address{}, fmt.Errorf("empty address")
	}

	typed := false
	if rest, ok := cutPrefixFold(raw, "gopher://"); ok {
		raw = rest
		typed = true
	}

	hostPart, path := raw, ""
	if i := strings.IndexByte(raw, '/'); i >= 0 {
		hostPart, path = raw[:i], raw[i:]
	}

	host, port, err := ParseHostPort(hostPart, defaultPort)
	if err != nil {
		return Address{}, err
	}

	addr := Address{Host: host, Port: port, Type: Submenu}
	if typed {
		// gopher://host/<type><selector>
		if len(path) > 1 {
			addr.Type = ParseItemType(path[1])
			addr.Selector = path[2:]
		}
		return addr, nil
	}
	if path != "/" {
		addr.Selector = path
	}
	return addr, nil
}

// ParseHostPort splits HOST[:PORT], applying defaultPort when the port is absent.
func ParseHostPort(raw string, defaultPort int) (string, int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", 0, fmt.Errorf("missing host")
	}
	if defaultPort <= 0 {
		defaultPort = DefaultPort
	}

	hasPort := false
	if strings.HasPrefix(raw, "[") {
		hasPort = strings.Contains(raw, "]:")
		if !hasPort {
			host := strings.TrimSuffix(strings.TrimPrefix(raw, "["), "]")
			if host == "" {
				return "", 0, fmt.Errorf("missing host in %q", raw)
			}
			return host, defaultPort, nil
		}
	} else {
		hasPort = strings.Count(raw, ":") == 1
		if strings.Count(raw, ":") > 1 {
			// bare IPv6 literal
			return raw, defaultPort, nil
		}
	}
	if !hasPort {
		return raw, defaultPort, nil
	}

	host, portStr, err := net.SplitHostPort(raw)
	if err != nil {
		return "", 0, fmt.Errorf("invalid address %q: %w", raw, err)
	}
	if host == "" {
		return "", 0, fmt.Errorf("missing host in %q", raw)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port < 1 || port > 65535 {
		return "", 0, fmt.Errorf("invalid port number: %s", portStr)
	}
	return host, port, nil
}

func cutPrefixFold(s, prefix string) (string, bool) {
	if len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix) {
		return s[len(prefix):], true
	}
	return s, false
}

// MenuEntry is one decoded line of a menu reply.
type MenuEntry struct {
	Type    ItemType
	Marker  byte
	Display string
	Address Address
}

func (e MenuEntry) Navigable() bool {
	return e.Type.Navigable()
}

// Format serializes the entry back into the tab-delimited menu grammar.
func (e MenuEntry) Format() string {
	marker := e.Marker
	if marker == 0 {
		marker = e.Type.Char()
	}
	return string(marker) + e.Display + "\t" + e.Address.Selector + "\t" + e.Address.Host + "\t" + strconv.Itoa(e.Address.Port)
}

type DocumentKind int

const (
	KindNone DocumentKind = iota
	KindMenu
	KindText
	KindBinary
)

func (k DocumentKind) String() string {
	switch k {
	case KindMenu:
		return "menu"
	case KindText:
		return "text"
	case KindBinary:
		return "binary"
	default:
		return "none"
	}
}

// Document holds exactly one populated variant selected by Kind.
type Document struct {
	Kind    DocumentKind
	Entries []MenuEntry
	Lines   []string
	Data    []byte
}

func MenuDocument(entries []MenuEntry) Document {
	return Document{Kind: KindMenu, Entries: entries}
}

func TextDocument(lines []string) Document {
	return Document{Kind: KindText, Lines: lines}
}

func BinaryDocument(data []byte) Document {
	return Document{Kind: KindBinary, Data: data}
}

// Len is the number of selectable rows: entries for menus, lines for text.
func (d Document) Len() int {
	switch d.Kind {
	case KindMenu:
		return len(d.Entries)
	case KindText:
		return len(d.Lines)
	}
	return 0
}

// Bytes returns the document body in a form suitable for saving to disk.
func (d Document) Bytes() []byte {
	switch d.Kind {
	case KindBinary:
		return d.Data
	case KindText:
		return []byte(strings.Join(d.Lines, "\n") + "\n")
	case KindMenu:
		var b strings.Builder
		for _, e := range d.Entries {
			b.WriteString(e.Format())
			b.WriteString("\r\n")
		}
		b.WriteString(".\r\n")
		return []byte(b.String())
	}
	return nil
}
