package gopher

import "strings"

// Classification is the decoded reply plus any menu lines skipped on the way.
type Classification struct {
	Document Document
	Skipped  []*MalformedLineError
}

// Classify turns a raw reply into a Document. Binary item types are never
// interpreted. Everything else is tried as a menu first and falls back to a
// text body when the menu grammar does not fit.
func Classify(origin Address, body []byte) Classification {
	if origin.Type.IsBinary() {
		return Classification{Document: BinaryDocument(body)}
	}

	if menu := ParseMenu(body, origin); menu.Accepted() {
		return Classification{Document: MenuDocument(menu.Entries), Skipped: menu.Malformed}
	}

	lines := textLines(body)
	if len(lines) == 1 && len(lines[0]) > 0 && lines[0][0] == Error.Char() {
		entry := MenuEntry{
			Type:    Error,
			Marker:  lines[0][0],
			Display: strings.SplitN(lines[0][1:], "\t", 2)[0],
			Address: Address{Host: origin.Host, Port: origin.Port, Type: Error},
		}
		return Classification{Document: MenuDocument([]MenuEntry{entry})}
	}
	return Classification{Document: TextDocument(lines)}
}

// textLines splits a text body, strips the trailing terminator and undoes
// dot-stuffing of lines that begin with "..".
func textLines(body []byte) []string {
	lines := SplitLines(body)
	if n := len(lines); n > 0 && lines[n-1] == terminator {
		lines = lines[:n-1]
	}
	for i, line := range lines {
		if strings.HasPrefix(line, "..") {
			lines[i] = line[1:]
		}
	}
	if lines == nil {
		lines = []string{}
	}
	return lines
}
