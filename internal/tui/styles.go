package tui

import "github.com/charmbracelet/lipgloss"

// Color palette
var (
	ColorAccent = lipgloss.Color("#A8D8EA") // Cyan/Blueish for accents
	ColorDim    = lipgloss.Color("#596E79") // Muted Blue/Grey for secondary text
	ColorText   = lipgloss.Color("#E0E0E0") // Primary text
	ColorAlert  = lipgloss.Color("#FF6B6B") // Red for errors/deny rules
	ColorGood   = lipgloss.Color("#4ECDC4") // Green for success/allow rules
	ColorWarn   = lipgloss.Color("#FFE66D") // Yellow for warnings
	ColorMuted  = lipgloss.Color("#6c757d") // Muted text
)

// Styles
var (
	StyleTitle = lipgloss.NewStyle().
			Foreground(ColorAccent).
			Bold(true)

	StyleSubtitle = lipgloss.NewStyle().
			Foreground(ColorDim).
			Italic(true)

	StyleHeader = lipgloss.NewStyle().
			Foreground(ColorAccent).
			Bold(true).
			Border(lipgloss.NormalBorder(), false, false, true, false).
			BorderForeground(ColorDim).
			Padding(0, 1)

	StyleAllow = lipgloss.NewStyle().Foreground(ColorGood).Bold(true)
	StyleDeny  = lipgloss.NewStyle().Foreground(ColorAlert).Bold(true)
	StyleWarn  = lipgloss.NewStyle().Foreground(ColorWarn).Bold(true)

	StyleRuleIndex = lipgloss.NewStyle().
			Foreground(ColorMuted).
			Width(4).
			Align(lipgloss.Right)

	StyleRuleText = lipgloss.NewStyle().
			Foreground(ColorText).
			PaddingLeft(1)

	StyleDirective = lipgloss.NewStyle().
			Foreground(ColorDim).
			PaddingLeft(2)

	StyleCard = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorDim).
			Padding(0, 1)
)

// RenderOutcomeLine colors a result summary by success.
func RenderOutcomeLine(text string, ok bool) string {
	if ok {
		return StyleAllow.Render(text)
	}
	return StyleDeny.Render(text)
}
