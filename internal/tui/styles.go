package tui

import "github.com/charmbracelet/lipgloss"

// Color palette for consistent styling
var (
	ColorPrimary = lipgloss.Color("#7D56F4")

	// Status colors
	ColorSuccess = lipgloss.Color("#50FA7B")
	ColorError   = lipgloss.Color("#FF5F87")
	ColorWarning = lipgloss.Color("#FFB86C")
	ColorInfo    = lipgloss.Color("#8BE9FD")

	// Neutral colors
	ColorMuted  = lipgloss.Color("#6C7086")
	ColorSubtle = lipgloss.Color("#45475A")
	ColorText   = lipgloss.Color("#CDD6F4")
)

// Reusable styles
var (
	// Title style for headers
	StyleTitle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(ColorPrimary).
			Padding(0, 1).
			Bold(true)

	StyleSuccess = lipgloss.NewStyle().
			Foreground(ColorSuccess).
			Bold(true)

	StyleError = lipgloss.NewStyle().
			Foreground(ColorError).
			Bold(true)

	StyleWarning = lipgloss.NewStyle().
			Foreground(ColorWarning)

	StyleInfo = lipgloss.NewStyle().
			Foreground(ColorInfo)

	// Muted/dimmed text
	StyleMuted = lipgloss.NewStyle().
			Foreground(ColorMuted)

	StyleHighlight = lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true)

	// Scenario name column in reports
	StyleScenarioName = lipgloss.NewStyle().
				Foreground(ColorText).
				Width(36)

	// Box style for report sections
	StyleBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorSubtle).
			Padding(0, 1)
)

// Icons for different states
const (
	IconPending = "○"
	IconRunning = "●"
	IconSuccess = "✓"
	IconError   = "✗"
	IconWarning = "!"
	IconArrow   = "→"
	IconBullet  = "•"
)
