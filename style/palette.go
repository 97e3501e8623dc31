package style

import "github.com/charmbracelet/lipgloss"

// Surface palette.
var (
	Base    = lipgloss.Color("#1e1e2e")
	Text    = lipgloss.Color("#cdd6f4")
	Overlay = lipgloss.Color("#6c7086")

	Mauve    = lipgloss.Color("#cba6f7")
	Red      = lipgloss.Color("#f38ba8")
	Peach    = lipgloss.Color("#fab387")
	Yellow   = lipgloss.Color("#f9e2af")
	Green    = lipgloss.Color("#a6e3a1")
	Sapphire = lipgloss.Color("#74c7ec")

	AccentColor = Mauve
	HiRed       = Red
)

// Transport state colors used by the control surface.
var (
	PlayingColor = Green
	PausedColor  = Yellow
	LoadingColor = Sapphire
	FailedColor  = Red
	IdleColor    = Overlay
)
