package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/quickdeck/quickdeck/backend"
	"github.com/quickdeck/quickdeck/color"
	"github.com/quickdeck/quickdeck/engine"
	"github.com/quickdeck/quickdeck/icon"
	"github.com/quickdeck/quickdeck/style"
	"github.com/quickdeck/quickdeck/util"
)

// panelLines is the height of the playback panel, which is the wheel's player surface.
const panelLines = 7

var (
	listExtraPaddingStyle = lipgloss.NewStyle().Padding(1, 2, 1, 0)
	paddingStyle          = lipgloss.NewStyle().Padding(1, 2)
)

func (b *statefulBubble) View() string {
	var output string

	switch b.state {
	case openState:
		output = b.viewOpen()
	case historyState:
		output = b.viewHistory()
	default:
		output = b.viewPlayer()
	}

	return b.notifier.View(output)
}

func (b *statefulBubble) viewPlayer() string {
	return b.renderLines(true, b.panel())
}

// panel renders exactly panelLines lines.
func (b *statefulBubble) panel() []string {
	s := b.status
	truncate := style.Truncate(b.width)

	lines := []string{
		style.Title("QuickDeck"),
		"",
		truncate(b.itemLine()),
	}

	switch s.State {
	case engine.Viewing:
		lines = append(lines,
			b.stateLine(),
			"",
			truncate(b.imageLine()),
		)
	case engine.Idle:
		lines = append(lines,
			style.Faint("Nothing loaded. Press o to open a file or H for history."),
		)
	default:
		ratio := 0.0
		if s.Transport.Duration > 0 {
			ratio = util.Clamp(s.Transport.Position/s.Transport.Duration, 0, 1)
		}
		lines = append(lines,
			b.stateLine(),
			b.progressC.ViewAs(ratio),
			truncate(b.transportLine()),
		)
	}

	lines = append(lines, truncate(b.equalizerLine()))

	for len(lines) < panelLines {
		lines = append(lines, "")
	}
	return lines[:panelLines]
}

func (b *statefulBubble) itemLine() string {
	item := b.status.Item
	if item == nil {
		return style.Faint("-")
	}

	kind := icon.Get(icon.Audio)
	switch b.status.Profile {
	case backend.VideoProfile:
		kind = icon.Get(icon.Video)
	}
	if b.status.State == engine.Viewing {
		kind = icon.Get(icon.Image)
	}
	return fmt.Sprintf("%s %s", kind, style.Fg(color.Purple)(item.Name()))
}

func (b *statefulBubble) stateLine() string {
	s := b.status

	stateIcon, stateColor := icon.Get(icon.Stop), style.IdleColor
	switch s.State {
	case engine.Playing:
		stateIcon, stateColor = icon.Get(icon.Play), style.PlayingColor
	case engine.Paused:
		stateIcon, stateColor = icon.Get(icon.Pause), style.PausedColor
	case engine.Loading:
		stateIcon, stateColor = icon.Get(icon.Loading), style.LoadingColor
	case engine.Failed:
		stateIcon, stateColor = icon.Get(icon.Fail), style.FailedColor
	case engine.Viewing:
		stateIcon, stateColor = icon.Get(icon.Image), style.AccentColor
	}

	mode := icon.Get(icon.Embedded)
	if s.Mode == engine.PopOut {
		mode = icon.Get(icon.PopOut)
	}

	line := fmt.Sprintf("%s %s  %s %s", stateIcon, style.Fg(stateColor)(style.Bold(s.State.String())), mode, style.Faint(s.Mode.String()))
	if !s.Synced && s.State.Active() && s.State != engine.Viewing {
		line += " " + style.Faint("(syncing)")
	}
	return line
}

func (b *statefulBubble) transportLine() string {
	t := b.status.Transport

	volumeIcon := icon.Get(icon.Volume)
	volume := style.Fg(color.Green)(fmt.Sprintf("%d%%", t.Volume))
	if t.Muted {
		volumeIcon = icon.Get(icon.Mute)
		volume = style.Fg(color.Red)(fmt.Sprintf("%d%%", t.Volume))
	}

	return fmt.Sprintf("%s / %s  %s %s",
		util.Clock(t.Position),
		util.Clock(t.Duration),
		volumeIcon,
		volume,
	)
}

func (b *statefulBubble) imageLine() string {
	v := b.status.Image
	w, h := v.ScaledSize()
	fit := ""
	if v.Fitted {
		fit = style.Faint(" fitted")
	}
	return fmt.Sprintf("%dx%d  zoom %d%%%s  shown %dx%d  pan %d,%d",
		v.Width, v.Height, v.Zoom, fit, w, h, v.PanX, v.PanY)
}

func (b *statefulBubble) equalizerLine() string {
	eq := b.status.Equalizer
	if eq.Preset == "" {
		return style.Faint(icon.Get(icon.Equalizer) + " equalizer off")
	}
	return fmt.Sprintf("%s %s", icon.Get(icon.Equalizer), style.Fg(color.Yellow)(eq.Preset))
}

func (b *statefulBubble) viewOpen() string {
	return b.renderLines(true, []string{
		style.Title("Open"),
		"",
		b.inputC.View(),
	})
}

func (b *statefulBubble) viewHistory() string {
	return listExtraPaddingStyle.Render(b.historyC.View())
}

func (b *statefulBubble) renderLines(addHelp bool, lines []string) string {
	h := len(lines)
	l := strings.Join(lines, "\n")
	if addHelp {
		// one row stays free for the notifier
		if b.height > h+2 {
			l += strings.Repeat("\n", b.height-h-2)
		}
		l += "\n" + b.helpC.View(b.keymap)
	}

	return paddingStyle.Render(l)
}
