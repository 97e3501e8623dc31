// Package color provides the ANSI colors used by command output.
package color

import "github.com/charmbracelet/lipgloss"

// New initializes a lipgloss.Color from a string value.
func New(value string) lipgloss.Color {
	return lipgloss.Color(value)
}

var (
	Red    = New("1")
	Green  = New("2")
	Yellow = New("3")
	Blue   = New("4")
	Purple = New("5")
	Cyan   = New("6")

	HiRed    = New("9")
	HiPurple = New("13")

	Orange = New("#ffb703")
)

// Gain picks the color of an equalizer band: boosts green, cuts red, flat neutral.
func Gain(db float64) lipgloss.Color {
	switch {
	case db > 0:
		return Green
	case db < 0:
		return Red
	default:
		return Cyan
	}
}
