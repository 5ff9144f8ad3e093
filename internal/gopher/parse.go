package gopher

import (
	"strconv"
	"strings"
)

const terminator = "."

// ParseLine decodes one menu line of the form
// <type><display>TAB<selector>TAB<host>TAB<port>. Missing host and port fall
// back to origin; a missing or non-numeric port falls back to DefaultPort.
func ParseLine(raw string, origin Address) (MenuEntry, error) {
	line := strings.TrimRight(raw, "\r\n")
	if line == "" {
		return MenuEntry{}, &MalformedLineError{Line: raw, Reason: "empty line"}
	}
	if line == terminator {
		return MenuEntry{}, &MalformedLineError{Line: raw, Reason: "terminator line"}
	}

	marker := line[0]
	if marker == '\t' {
		return MenuEntry{}, &MalformedLineError{Line: raw, Reason: "missing item type"}
	}
	itemType := ParseItemType(marker)
	fields := strings.Split(line[1:], "\t")

	if len(fields) == 1 && itemType.Navigable() {
		return MenuEntry{}, &MalformedLineError{Line: raw, Reason: "missing selector field"}
	}

	entry := MenuEntry{
		Type:    itemType,
		Marker:  marker,
		Display: fields[0],
		Address: Address{Host: origin.Host, Port: origin.Port, Type: itemType},
	}
	if entry.Address.Port == 0 {
		entry.Address.Port = DefaultPort
	}
	if len(fields) > 1 {
		entry.Address.Selector = fields[1]
	}
	if len(fields) > 2 {
		entry.Address.Host = fields[2]
		entry.Address.Port = DefaultPort
		if len(fields) > 3 {
			entry.Address.Port = parsePort(fields[3])
		}
	}
	return entry, nil
}

func parsePort(raw string) int {
	port, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || port < 1 || port > 65535 {
		return DefaultPort
	}
	return port
}

// MenuParse is the outcome of decoding a whole reply as a menu.
type MenuParse struct {
	Entries   []MenuEntry
	Malformed []*MalformedLineError
	// TabLines counts lines containing at least one field delimiter.
	TabLines int
	// Violations counts lines that break the grammar outright: no field
	// delimiter and not an info or error line.
	Violations int
}

// Accepted reports whether the reply should be treated as a menu. A single
// line without a field delimiter rules the menu out; tabbed lines that fail
// to decode are tolerated and skipped.
func (p MenuParse) Accepted() bool {
	return p.TabLines > 0 && len(p.Entries) > 0 && p.Violations == 0
}

// ParseMenu decodes every line of body. Empty lines and the terminator are
// skipped; undecodable lines are collected rather than failing the parse.
func ParseMenu(body []byte, origin Address) MenuParse {
	var out MenuParse
	for _, line := range SplitLines(body) {
		if line == "" || line == terminator {
			continue
		}
		if strings.Contains(line, "\t") {
			out.TabLines++
		} else if line[0] != Info.Char() && line[0] != Error.Char() {
			out.Violations++
		}
		entry, err := ParseLine(line, origin)
		if err != nil {
			out.Malformed = append(out.Malformed, err.(*MalformedLineError))
			continue
		}
		out.Entries = append(out.Entries, entry)
	}
	return out
}

// SplitLines splits on LF, dropping CR before LF and the empty tail after a
// final newline.
func SplitLines(body []byte) []string {
	if len(body) == 0 {
		return nil
	}
	text := string(body)
	text = strings.TrimSuffix(text, "\n")
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}
