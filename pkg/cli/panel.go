package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/haivivi/ringbuf/pkg/ringbuf"
)

// Theme defines the color scheme for panels.
type Theme struct {
	Primary lipgloss.Color // Main accent color
	Dim     lipgloss.Color // Dimmed/help text color
	Warn    lipgloss.Color // Closed / full markers
}

// DefaultTheme is the default bright green theme.
var DefaultTheme = Theme{
	Primary: lipgloss.Color("#00ff9f"),
	Dim:     lipgloss.Color("#6e7681"),
	Warn:    lipgloss.Color("#ffb86c"),
}

// Styles holds all styles derived from a theme.
type Styles struct {
	Title  lipgloss.Style
	Label  lipgloss.Style
	Value  lipgloss.Style
	Border lipgloss.Style
	Warn   lipgloss.Style
	Dim    lipgloss.Style
}

// NewStyles creates styles from a theme.
func NewStyles(t Theme) Styles {
	return Styles{
		Title:  lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
		Label:  lipgloss.NewStyle().Foreground(t.Dim).Width(12),
		Value:  lipgloss.NewStyle().Bold(true),
		Border: lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(t.Primary).Padding(0, 1),
		Warn:   lipgloss.NewStyle().Bold(true).Foreground(t.Warn),
		Dim:    lipgloss.NewStyle().Foreground(t.Dim),
	}
}

// barWidth is the number of cells of the occupancy bar.
const barWidth = 24

// OccupancyBar draws len/cap as a fixed-width bar.
func OccupancyBar(n, capacity int) string {
	if capacity <= 0 {
		return strings.Repeat("░", barWidth)
	}
	filled := n * barWidth / capacity
	if n > 0 && filled == 0 {
		filled = 1
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
}

// RenderStats renders a ring snapshot as a bordered panel.
func RenderStats(title string, s ringbuf.Stats, st Styles) string {
	row := func(label, value string) string {
		return st.Label.Render(label) + " " + value
	}
	yesNo := func(b bool) string {
		if b {
			return st.Warn.Render("yes")
		}
		return st.Dim.Render("no")
	}

	state := st.Value.Render("open")
	switch {
	case s.Closed && s.Len == 0:
		state = st.Warn.Render("closed, drained")
	case s.Closed:
		state = st.Warn.Render("closed")
	case s.Len == s.Capacity:
		state = st.Warn.Render("full")
	}

	lines := []string{
		st.Title.Render(title),
		"",
		row("occupancy", OccupancyBar(s.Len, s.Capacity)),
		row("len", st.Value.Render(fmt.Sprintf("%d / %d", s.Len, s.Capacity))),
		row("remaining", st.Value.Render(fmt.Sprint(s.Remaining))),
		row("state", state),
		row("reader wait", yesNo(s.ReaderWaiting)),
		row("writer wait", yesNo(s.WriterWaiting)),
	}
	return st.Border.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
