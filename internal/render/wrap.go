package render

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// WrapWords reflows text to width display columns, breaking on spaces.
// Words wider than width are split. Newlines start a new paragraph.
func WrapWords(text string, width int) []string {
	if width < 1 {
		return []string{text}
	}
	paragraphs := strings.Split(text, "\n")
	out := make([]string, 0, len(paragraphs))
	for _, p := range paragraphs {
		words := strings.Fields(p)
		if len(words) == 0 {
			out = append(out, "")
			continue
		}
		line, lineWidth := "", 0
		for _, word := range words {
			for runewidth.StringWidth(word) > width {
				if line != "" {
					out = append(out, line)
					line, lineWidth = "", 0
				}
				head := runewidth.Truncate(word, width, "")
				if head == "" {
					head = string([]rune(word)[:1])
				}
				out = append(out, head)
				word = word[len(head):]
			}
			w := runewidth.StringWidth(word)
			if line == "" {
				line, lineWidth = word, w
				continue
			}
			if lineWidth+1+w <= width {
				line += " " + word
				lineWidth += 1 + w
				continue
			}
			out = append(out, line)
			line, lineWidth = word, w
		}
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

// HardWrap cuts line into pieces of at most width columns without touching
// spacing, which keeps preformatted text and ASCII art aligned.
func HardWrap(line string, width int) []string {
	line = expandTabs(line)
	if width < 1 || runewidth.StringWidth(line) <= width {
		return []string{line}
	}
	var out []string
	for line != "" {
		head := runewidth.Truncate(line, width, "")
		if head == "" {
			head = string([]rune(line)[:1])
		}
		out = append(out, head)
		line = line[len(head):]
	}
	return out
}

// Clip shortens s to width columns, marking the cut with an ellipsis.
func Clip(s string, width int) string {
	if width < 1 {
		return ""
	}
	return runewidth.Truncate(s, width, "…")
}

// Width is the display width of s.
func Width(s string) int {
	return runewidth.StringWidth(s)
}

func expandTabs(s string) string {
	if !strings.Contains(s, "\t") {
		return s
	}
	var b strings.Builder
	col := 0
	for _, r := range s {
		if r == '\t' {
			n := 8 - col%8
			b.WriteString(strings.Repeat(" ", n))
			col += n
			continue
		}
		b.WriteRune(r)
		col += runewidth.RuneWidth(r)
	}
	return b.String()
}
