package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/lawnchairsociety/landforge/internal/landmask"
)

var (
	glyphs = map[Class]string{
		Ocean:   "~",
		Lake:    "o",
		Pond:    ",",
		Land:    "#",
		Island:  "*",
		Barrier: "=",
	}

	styles = map[Class]lipgloss.Style{
		Ocean:   lipgloss.NewStyle().Foreground(lipgloss.Color("#1C3F6E")),
		Lake:    lipgloss.NewStyle().Foreground(lipgloss.Color("#408CC8")),
		Pond:    lipgloss.NewStyle().Foreground(lipgloss.Color("#60A0BE")),
		Land:    lipgloss.NewStyle().Foreground(lipgloss.Color("#4A803E")).Bold(true),
		Island:  lipgloss.NewStyle().Foreground(lipgloss.Color("#C4AA60")).Bold(true),
		Barrier: lipgloss.NewStyle().Foreground(lipgloss.Color("#444444")),
	}

	legendStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#AAAAAA"))
)

// Terminal renders m one glyph per tile, odd rows indented by one column
// so the hex offset stays visible. Colours follow the terminal profile
// lipgloss detects; plain glyphs remain when colour is unavailable.
func Terminal(m *landmask.Mask, classes []Class) string {
	if classes == nil {
		classes = Classify(m, nil, nil, nil)
	}

	var b strings.Builder
	for y := 0; y < m.Height; y++ {
		if y%2 == 1 {
			b.WriteByte(' ')
		}
		// Consecutive tiles of one class share a single styled run.
		start := 0
		for x := 1; x <= m.Width; x++ {
			if x < m.Width && classes[m.Index(x, y)] == classes[m.Index(start, y)] {
				continue
			}
			c := classes[m.Index(start, y)]
			b.WriteString(styles[c].Render(strings.Repeat(glyphs[c]+" ", x-start)))
			start = x
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// Legend lists the glyph of every class.
func Legend() string {
	names := []struct {
		c    Class
		name string
	}{
		{Land, "land"}, {Island, "island"}, {Ocean, "ocean"},
		{Lake, "lake"}, {Pond, "pond"}, {Barrier, "barrier"},
	}
	parts := make([]string, 0, len(names))
	for _, n := range names {
		parts = append(parts, styles[n.c].Render(glyphs[n.c])+legendStyle.Render(" "+n.name))
	}
	return strings.Join(parts, "  ")
}
