package styles

import "github.com/charmbracelet/lipgloss"

var (
	// Colors - all colors meet WCAG AA contrast (4.5:1) on both black and dark surfaces
	PrimaryColor   = lipgloss.Color("#A78BFA") // Purple (violet-400)
	SecondaryColor = lipgloss.Color("#10B981") // Green
	WarningColor   = lipgloss.Color("#F59E0B") // Amber
	ErrorColor     = lipgloss.Color("#F87171") // Red (red-400)
	MutedColor     = lipgloss.Color("#9CA3AF") // Gray
	TextColor      = lipgloss.Color("#F9FAFB") // Light text
	BorderColor    = lipgloss.Color("#6B7280") // Gray (gray-500)

	// Convenience styles for colors
	Primary   = lipgloss.NewStyle().Foreground(PrimaryColor)
	Secondary = lipgloss.NewStyle().Foreground(SecondaryColor)
	Muted     = lipgloss.NewStyle().Foreground(MutedColor)

	// Base styles
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(PrimaryColor).
		MarginBottom(1)

	Subtitle = lipgloss.NewStyle().
			Foreground(MutedColor).
			Italic(true)

	// Header
	Header = lipgloss.NewStyle().
		Bold(true).
		Foreground(PrimaryColor).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(BorderColor).
		MarginBottom(1)

	// Task list
	TaskID = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextColor)

	CommitCount = lipgloss.NewStyle().
			Foreground(MutedColor)

	// Copy action
	CopyButton = lipgloss.NewStyle().
			Foreground(TextColor).
			Background(PrimaryColor).
			Padding(0, 1)

	CopyButtonDone = lipgloss.NewStyle().
			Foreground(TextColor).
			Background(SecondaryColor).
			Bold(true).
			Padding(0, 1)

	// Help bar
	HelpBar = lipgloss.NewStyle().
		Foreground(MutedColor).
		MarginTop(1)

	// Error message
	ErrorMsg = lipgloss.NewStyle().
			Foreground(ErrorColor).
			Bold(true)

	// Success message
	SuccessMsg = lipgloss.NewStyle().
			Foreground(SecondaryColor).
			Bold(true)

	// Warning message
	WarningMsg = lipgloss.NewStyle().
			Foreground(WarningColor).
			Bold(true)
)

// StateIcon returns the glyph shown next to a presenter state name.
func StateIcon(state string) string {
	switch state {
	case "loading":
		return "○"
	case "error":
		return "✗"
	case "empty":
		return "∅"
	case "populated":
		return "✓"
	default:
		return "●"
	}
}

// StateColor returns the color for a presenter state name.
func StateColor(state string) lipgloss.Color {
	switch state {
	case "loading":
		return MutedColor
	case "error":
		return ErrorColor
	case "empty":
		return WarningColor
	case "populated":
		return SecondaryColor
	default:
		return MutedColor
	}
}
