package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/quickdeck/quickdeck/internal/ui"
)

// refreshInterval is how often the view re-reads the controller snapshot.
const refreshInterval = time.Second

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Init starts the refresh tick and the notice relay, and loads the startup file if any.
func (b *statefulBubble) Init() tea.Cmd {
	cmds := []tea.Cmd{tick(), b.waitForNotice()}

	if b.startupWarning != "" {
		cmds = append(cmds, ui.Notify(ui.Warning, b.startupWarning))
	}
	if b.options.Path != "" {
		cmds = append(cmds, b.load(b.options.Path, b.options.Resume))
	}

	return tea.Batch(cmds...)
}
