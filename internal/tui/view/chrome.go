package view

import (
	"fmt"
	"strings"

	"github.com/glabrego/gaufre-cli/internal/gopher"
	"github.com/glabrego/gaufre-cli/internal/render"
	tuitheme "github.com/glabrego/gaufre-cli/internal/tui/theme"
)

// Header is the title row: program name, current URL and a short location summary.
func Header(current string, doc gopher.Document, historyDepth int, th tuitheme.Theme) string {
	parts := []string{
		th.Title.Render("gaufre"),
		th.Address.Render(current),
	}
	switch doc.Kind {
	case gopher.KindMenu:
		parts = append(parts, th.MetaLabel.Render("items")+" "+th.MetaValue.Render(fmt.Sprintf("%d", len(doc.Entries))))
	case gopher.KindText:
		parts = append(parts, th.MetaLabel.Render("lines")+" "+th.MetaValue.Render(fmt.Sprintf("%d", len(doc.Lines))))
	case gopher.KindBinary:
		parts = append(parts, th.MetaLabel.Render("bytes")+" "+th.MetaValue.Render(fmt.Sprintf("%d", len(doc.Data))))
	}
	if historyDepth > 0 {
		parts = append(parts, th.MetaLabel.Render("depth")+" "+th.MetaValue.Render(fmt.Sprintf("%d", historyDepth)))
	}
	return strings.Join(parts, " • ")
}

func Toolbar(kind gopher.DocumentKind, searching bool) string {
	if searching {
		return "type a query, enter submit | esc cancel"
	}
	if kind == gopher.KindMenu {
		return "up/down move | enter open | N+enter select | back | go HOST | mark | help | ctrl+c quit"
	}
	return "up/down scroll | pgup/pgdown page | back | save | reload | help | ctrl+c quit"
}

// Message renders the status row: activity state plus the latest message.
func Message(loading, isErr bool, status string, th tuitheme.Theme) string {
	state := "idle"
	label := th.StateIdle.Render("state")
	switch {
	case loading:
		state = "loading"
		label = th.StateLoad.Render("state")
	case isErr:
		state = "error"
		label = th.StateWarn.Render("state")
	}
	main := "Ready"
	if status != "" {
		main = status
	}
	style := th.Tags[render.Status]
	if isErr {
		style = th.Tags[render.Error]
	}
	return fmt.Sprintf("%s: %s | %s", label, state, style.Render(main))
}
