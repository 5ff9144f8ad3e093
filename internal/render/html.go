package render

import (
	"fmt"
	"html"
	"strings"

	nethtml "golang.org/x/net/html"
)

// HTMLLines converts an HTML document fetched from an 'h' item into plain
// text lines no wider than width. Links are kept inline as "text (href)".
func HTMLLines(raw string, width int) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	doc, err := nethtml.Parse(strings.NewReader(raw))
	if err != nil {
		return WrapWords(html.UnescapeString(raw), width)
	}
	body := findNode(doc, "body")
	if body == nil {
		body = doc
	}
	w := htmlWriter{width: width}
	lines := trimBlankLines(w.nodes(children(body), 0))
	if title := findNode(doc, "title"); title != nil {
		if text := normalizeInline(rawText(title)); text != "" {
			lines = append([]string{"# " + text, ""}, lines...)
		}
	}
	return lines
}

type htmlWriter struct {
	width int
}

func (w htmlWriter) nodes(nodes []*nethtml.Node, depth int) []string {
	var lines, inline []string
	flush := func() {
		text := normalizeInline(strings.Join(inline, " "))
		inline = inline[:0]
		if text == "" {
			return
		}
		lines = appendBlock(lines, w.wrap(text))
	}
	for _, node := range nodes {
		switch node.Type {
		case nethtml.TextNode:
			inline = append(inline, node.Data)
		case nethtml.ElementNode:
			if isBlock(node.Data) {
				flush()
				lines = appendBlock(lines, w.block(node, depth))
				continue
			}
			inline = append(inline, w.inline(node))
		}
	}
	flush()
	return trimBlankLines(lines)
}

func (w htmlWriter) block(node *nethtml.Node, depth int) []string {
	tag := strings.ToLower(node.Data)
	switch tag {
	case "script", "style", "noscript", "head", "title":
		return nil
	case "h1", "h2", "h3", "h4", "h5", "h6":
		prefix := strings.Repeat("#", int(tag[1]-'0')) + " "
		return prefixed(normalizeInline(w.inlineChildren(node)), w.width, prefix, strings.Repeat(" ", len(prefix)))
	case "blockquote":
		inner := w.nodes(children(node), depth)
		out := make([]string, len(inner))
		for i, line := range inner {
			out[i] = strings.TrimRight("> "+line, " ")
		}
		return out
	case "ul", "ol":
		return w.list(node, tag == "ol", depth+1)
	case "li":
		return prefixed(normalizeInline(w.inlineChildren(node)), w.width, "- ", "  ")
	case "pre":
		text := strings.ReplaceAll(rawText(node), "\r\n", "\n")
		out := strings.Split(strings.TrimRight(text, "\n"), "\n")
		for i := range out {
			out[i] = strings.TrimRight(out[i], " \t")
		}
		return out
	case "hr":
		return []string{strings.Repeat("-", min(max(w.width, 3), 24))}
	case "img":
		if alt := nodeAttr(node, "alt"); alt != "" {
			return []string{"[image: " + alt + "]"}
		}
		return nil
	}
	if hasBlockChild(node) {
		return w.nodes(children(node), depth)
	}
	return w.wrap(normalizeInline(w.inlineChildren(node)))
}

func (w htmlWriter) list(node *nethtml.Node, ordered bool, depth int) []string {
	indent := strings.Repeat("  ", max(0, depth-1))
	var lines []string
	n := 0
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		if child.Type != nethtml.ElementNode || strings.ToLower(child.Data) != "li" {
			continue
		}
		n++
		marker := "- "
		if ordered {
			marker = fmt.Sprintf("%d. ", n)
		}
		var parts []string
		var nested []*nethtml.Node
		for gc := child.FirstChild; gc != nil; gc = gc.NextSibling {
			if gc.Type == nethtml.ElementNode && (strings.EqualFold(gc.Data, "ul") || strings.EqualFold(gc.Data, "ol")) {
				nested = append(nested, gc)
				continue
			}
			parts = append(parts, w.inline(gc))
		}
		text := normalizeInline(strings.Join(parts, " "))
		if text != "" {
			lines = append(lines, prefixed(text, w.width, indent+marker, indent+strings.Repeat(" ", len(marker)))...)
		}
		for _, sub := range nested {
			lines = append(lines, w.list(sub, strings.EqualFold(sub.Data, "ol"), depth+1)...)
		}
	}
	return lines
}

func (w htmlWriter) inlineChildren(node *nethtml.Node) string {
	var parts []string
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		parts = append(parts, w.inline(child))
	}
	return strings.Join(parts, " ")
}

func (w htmlWriter) inline(node *nethtml.Node) string {
	if node.Type == nethtml.TextNode {
		return node.Data
	}
	if node.Type != nethtml.ElementNode {
		return ""
	}
	switch strings.ToLower(node.Data) {
	case "script", "style", "noscript", "img":
		return ""
	case "br":
		return "\n"
	case "a":
		text := normalizeInline(w.inlineChildren(node))
		href := nodeAttr(node, "href")
		switch {
		case href == "":
			return text
		case text == "" || strings.EqualFold(text, href):
			return href
		default:
			return text + " (" + href + ")"
		}
	case "code", "kbd", "samp":
		if text := normalizeInline(w.inlineChildren(node)); text != "" {
			return "`" + text + "`"
		}
		return ""
	}
	return w.inlineChildren(node)
}

func (w htmlWriter) wrap(text string) []string {
	if text == "" {
		return nil
	}
	return WrapWords(text, w.width)
}

func prefixed(text string, width int, first, rest string) []string {
	if text == "" {
		return nil
	}
	body := strings.Split(text, "\n")
	if width > 0 {
		body = WrapWords(text, max(1, width-len(first)))
	}
	for i := range body {
		if i == 0 {
			body[i] = first + body[i]
		} else {
			body[i] = rest + body[i]
		}
	}
	return body
}

func appendBlock(lines, block []string) []string {
	if len(block) == 0 {
		return lines
	}
	if len(lines) > 0 && lines[len(lines)-1] != "" {
		lines = append(lines, "")
	}
	return append(lines, block...)
}

func normalizeInline(s string) string {
	s = html.UnescapeString(s)
	parts := strings.Split(s, "\n")
	out := parts[:0]
	for _, part := range parts {
		if part = strings.Join(strings.Fields(part), " "); part != "" {
			out = append(out, part)
		}
	}
	return strings.NewReplacer(" .", ".", " ,", ",", " ;", ";", " :", ":", " !", "!", " ?", "?", " )", ")", "( ", "(").
		Replace(strings.Join(out, "\n"))
}

func trimBlankLines(lines []string) []string {
	start, end := 0, len(lines)
	for start < end && strings.TrimSpace(lines[start]) == "" {
		start++
	}
	for end > start && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}
	out := make([]string, 0, end-start)
	prevBlank := false
	for _, line := range lines[start:end] {
		blank := strings.TrimSpace(line) == ""
		if blank && prevBlank {
			continue
		}
		out = append(out, line)
		prevBlank = blank
	}
	return out
}

func isBlock(tag string) bool {
	switch strings.ToLower(tag) {
	case "h1", "h2", "h3", "h4", "h5", "h6",
		"p", "div", "section", "article", "main", "header", "footer", "aside", "nav",
		"blockquote", "ul", "ol", "li", "table", "thead", "tbody", "tfoot", "tr", "pre", "hr", "img", "figure",
		"script", "style", "noscript", "head", "title":
		return true
	}
	return false
}

func hasBlockChild(node *nethtml.Node) bool {
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == nethtml.ElementNode && isBlock(child.Data) {
			return true
		}
	}
	return false
}

func findNode(node *nethtml.Node, tag string) *nethtml.Node {
	if node.Type == nethtml.ElementNode && strings.EqualFold(node.Data, tag) {
		return node
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		if found := findNode(child, tag); found != nil {
			return found
		}
	}
	return nil
}

func children(node *nethtml.Node) []*nethtml.Node {
	var out []*nethtml.Node
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == nethtml.TextNode && strings.TrimSpace(child.Data) == "" {
			continue
		}
		out = append(out, child)
	}
	return out
}

func nodeAttr(node *nethtml.Node, name string) string {
	for _, attr := range node.Attr {
		if strings.EqualFold(attr.Key, name) {
			return strings.TrimSpace(attr.Val)
		}
	}
	return ""
}

func rawText(node *nethtml.Node) string {
	if node.Type == nethtml.TextNode {
		return node.Data
	}
	var b strings.Builder
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		b.WriteString(rawText(child))
	}
	return b.String()
}
