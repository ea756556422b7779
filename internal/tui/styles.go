package tui

import "github.com/charmbracelet/lipgloss"

// Semantic color palette.
var (
	colorPrimary     = lipgloss.Color("#00BFFF") // Cyan: primary accent
	colorAccent      = lipgloss.Color("#FFD700") // Gold: filter badge
	colorDanger      = lipgloss.Color("#FF5252") // Red: errors
	colorMuted       = lipgloss.Color("#636363") // Gray: de-emphasized
	colorMutedLight  = lipgloss.Color("#8C8C8C") // Lighter gray: normal text
	colorBrightWhite = lipgloss.Color("#FFFFFF") // Pure white: selected row
	colorSurface     = lipgloss.Color("#1E1E2E") // Dark surface: status bar bg
	colorSurfaceDim  = lipgloss.Color("#181825") // Darkest surface: footer bg
)

// Selection indicator prepended to the active row.
const selectionIndicator = "▎"

var (
	styleStatusBar = lipgloss.NewStyle().
			Background(colorSurface).
			Foreground(colorBrightWhite).
			Bold(true).
			Padding(0, 1)

	styleFilterBadge = lipgloss.NewStyle().
				Foreground(colorAccent).
				Bold(true)

	styleRowSelected = lipgloss.NewStyle().
				Foreground(colorBrightWhite).
				Bold(true)

	styleRowNormal = lipgloss.NewStyle().
			Foreground(colorMutedLight)

	styleGroup = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true)

	styleMuted = lipgloss.NewStyle().
			Foreground(colorMuted)

	styleError = lipgloss.NewStyle().
			Foreground(colorDanger).
			Bold(true)

	styleFooter = lipgloss.NewStyle().
			Background(colorSurfaceDim).
			Foreground(colorMutedLight).
			Padding(0, 1)

	stylePane = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorMuted).
			Padding(0, 1)
)
