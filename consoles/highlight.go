package consoles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/reusee/taistep/texts"
)

// Highlight renders the marked values of a rendered line with style and
// drops the markers.
func Highlight(line string, style lipgloss.Style) string {
	var b strings.Builder
	for _, span := range texts.Spans(line) {
		if span.Marked {
			b.WriteString(style.Render(span.Text))
		} else {
			b.WriteString(span.Text)
		}
	}
	return b.String()
}

type styles struct {
	value    lipgloss.Style
	number   lipgloss.Style
	settled  lipgloss.Style
	original lipgloss.Style
	failure  lipgloss.Style
}

func newStyles(renderer *lipgloss.Renderer, color bool) styles {
	if !color {
		plain := renderer.NewStyle()
		return styles{
			value:    plain,
			number:   plain,
			settled:  plain,
			original: plain,
			failure:  plain,
		}
	}
	return styles{
		value: renderer.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#A6E3A1")),
		number: renderer.NewStyle().
			Foreground(lipgloss.Color("#6C7086")),
		settled: renderer.NewStyle().
			Foreground(lipgloss.Color("#89B4FA")),
		original: renderer.NewStyle().
			Faint(true),
		failure: renderer.NewStyle().
			Foreground(lipgloss.Color("#F38BA8")),
	}
}
