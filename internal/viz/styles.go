package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Styles are the lipgloss styles derived from one theme.
type Styles struct {
	Title   lipgloss.Style
	Header  lipgloss.Style
	Cell    lipgloss.Style
	Value   lipgloss.Style
	Label   lipgloss.Style
	Subtle  lipgloss.Style
	Border  lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Bar     lipgloss.Style
}

func NewStyles(t Theme) Styles {
	return Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Secondary),
		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Text).
			Padding(0, 1),
		Cell: lipgloss.NewStyle().
			Foreground(t.Text).
			Padding(0, 1),
		Value: lipgloss.NewStyle().
			Foreground(t.Secondary).
			Bold(true),
		Label: lipgloss.NewStyle().
			Foreground(t.Muted),
		Subtle: lipgloss.NewStyle().
			Foreground(t.Muted),
		Border: lipgloss.NewStyle().
			Foreground(t.Border),
		Success: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Success),
		Warning: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Warning),
		Error: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Error),
		Bar: lipgloss.NewStyle().
			Foreground(t.Primary),
	}
}

// Current returns the styles of CurrentTheme.
func Current() Styles {
	return NewStyles(CurrentTheme)
}

// ProgressBar renders a fixed-width progress bar for percent in [0, 1].
func ProgressBar(st Styles, percent float64, width int) string {
	filled := int(percent * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)

	if percent >= 1 {
		return st.Success.Render(bar)
	} else if percent > 0.4 {
		return st.Warning.Render(bar)
	}
	return st.Bar.Render(bar)
}

// Separator draws a decorative horizontal rule.
func Separator(st Styles, width int) string {
	if width < 8 {
		width = 8
	}
	mid := width / 2
	left := strings.Repeat("─", mid-3)
	right := strings.Repeat("─", width-mid-3)
	return st.Subtle.Render(left + " ◆ " + right)
}

// KeyValue renders aligned label/value lines.
func KeyValue(st Styles, pairs ...string) string {
	width := 0
	for i := 0; i+1 < len(pairs); i += 2 {
		if len(pairs[i]) > width {
			width = len(pairs[i])
		}
	}

	var b strings.Builder
	for i := 0; i+1 < len(pairs); i += 2 {
		b.WriteString(st.Label.Render(pairs[i] + strings.Repeat(" ", width-len(pairs[i])) + "  "))
		b.WriteString(st.Value.Render(pairs[i+1]))
		b.WriteString("\n")
	}
	return b.String()
}
