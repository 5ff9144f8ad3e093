package theme

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/glabrego/gaufre-cli/internal/gopher"
	"github.com/glabrego/gaufre-cli/internal/render"
)

type Theme struct {
	Title      lipgloss.Style
	Address    lipgloss.Style
	ActiveLine lipgloss.Style
	MetaLabel  lipgloss.Style
	MetaValue  lipgloss.Style
	StateIdle  lipgloss.Style
	StateWarn  lipgloss.Style
	StateLoad  lipgloss.Style
	Prompt     lipgloss.Style

	Tags    map[render.Style]lipgloss.Style
	Markers map[gopher.ItemType]lipgloss.Style
}

func Default() Theme {
	cpMauve := lipgloss.Color("#cba6f7")
	cpRed := lipgloss.Color("#f38ba8")
	cpPeach := lipgloss.Color("#fab387")
	cpYellow := lipgloss.Color("#f9e2af")
	cpGreen := lipgloss.Color("#a6e3a1")
	cpTeal := lipgloss.Color("#94e2d5")
	cpBlue := lipgloss.Color("#89b4fa")
	cpLavender := lipgloss.Color("#b4befe")
	cpText := lipgloss.Color("#cdd6f4")
	cpSubtext0 := lipgloss.Color("#a6adc8")
	cpSubtext1 := lipgloss.Color("#bac2de")
	cpOverlay1 := lipgloss.Color("#7f849c")
	cpSurface0 := lipgloss.Color("#313244")

	return Theme{
		Title:      lipgloss.NewStyle().Bold(true).Foreground(cpMauve),
		Address:    lipgloss.NewStyle().Foreground(cpLavender).Background(cpSurface0).Padding(0, 1),
		ActiveLine: lipgloss.NewStyle().Background(cpSurface0).Foreground(cpText),
		MetaLabel:  lipgloss.NewStyle().Foreground(cpOverlay1),
		MetaValue:  lipgloss.NewStyle().Foreground(cpSubtext1),
		StateIdle:  lipgloss.NewStyle().Foreground(cpGreen),
		StateWarn:  lipgloss.NewStyle().Foreground(cpRed),
		StateLoad:  lipgloss.NewStyle().Foreground(cpPeach),
		Prompt:     lipgloss.NewStyle().Bold(true).Foreground(cpTeal),
		Tags: map[render.Style]lipgloss.Style{
			render.Plain:  lipgloss.NewStyle().Foreground(cpText),
			render.Marker: lipgloss.NewStyle().Foreground(cpBlue),
			render.Error:  lipgloss.NewStyle().Bold(true).Foreground(cpRed),
			render.Info:   lipgloss.NewStyle().Foreground(cpSubtext0),
			render.Status: lipgloss.NewStyle().Foreground(cpSubtext1),
		},
		Markers: map[gopher.ItemType]lipgloss.Style{
			gopher.Submenu: lipgloss.NewStyle().Bold(true).Foreground(cpBlue),
			gopher.Mirror:  lipgloss.NewStyle().Bold(true).Foreground(cpBlue),
			gopher.Text:    lipgloss.NewStyle().Foreground(cpText),
			gopher.Search:  lipgloss.NewStyle().Foreground(cpYellow),
			gopher.HTML:    lipgloss.NewStyle().Foreground(cpGreen),
			gopher.Telnet:  lipgloss.NewStyle().Foreground(cpPeach),
			gopher.GIF:     lipgloss.NewStyle().Foreground(cpMauve),
			gopher.Image:   lipgloss.NewStyle().Foreground(cpMauve),
			gopher.PNG:     lipgloss.NewStyle().Foreground(cpMauve),
			gopher.JPG:     lipgloss.NewStyle().Foreground(cpMauve),
		},
	}
}

// WithOverrides recolours tags and item types by name. Keys are render style
// names ("plain", "marker", "error", "info", "status"), item type names
// ("menu", "text", "search", ...), or "selected" for the cursor line.
// Values are validated by config.
func (t Theme) WithOverrides(colors map[string]string) Theme {
	if len(colors) == 0 {
		return t
	}
	tags := make(map[render.Style]lipgloss.Style, len(t.Tags))
	for k, v := range t.Tags {
		tags[k] = v
	}
	markers := make(map[gopher.ItemType]lipgloss.Style, len(t.Markers))
	for k, v := range t.Markers {
		markers[k] = v
	}
	for key, value := range colors {
		color := lipgloss.Color(value)
		if key == "selected" {
			t.ActiveLine = t.ActiveLine.Background(color)
			continue
		}
		if tag, ok := render.ParseStyle(key); ok {
			tags[tag] = tags[tag].Foreground(color)
			continue
		}
		if item, ok := itemTypeByName(key); ok {
			markers[item] = markers[item].Foreground(color)
		}
	}
	t.Tags = tags
	t.Markers = markers
	return t
}

func itemTypeByName(name string) (gopher.ItemType, bool) {
	for i := gopher.Unsupported; i <= gopher.Info; i++ {
		if i.String() == name {
			return i, true
		}
	}
	return gopher.Unsupported, false
}

// RenderLine styles one plan line. Menu markers use their item type colour
// when one is defined.
func (t Theme) RenderLine(line render.Line) string {
	style := t.Tags[line.Style]
	if line.Style == render.Marker {
		if marker, ok := t.Markers[line.Item]; ok {
			style = marker
		}
	}
	if line.Selected {
		return t.ActiveLine.Render(line.Text)
	}
	return style.Render(line.Text)
}
