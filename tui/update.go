package tui

import (
	"strings"

	bubblesKey "github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/quickdeck/quickdeck/engine"
	"github.com/quickdeck/quickdeck/equalizer"
	"github.com/quickdeck/quickdeck/history"
	"github.com/quickdeck/quickdeck/internal/ui"
	"github.com/quickdeck/quickdeck/volume"
)

func (b *statefulBubble) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	if uiCmd := b.notifier.Update(msg); uiCmd != nil {
		cmd = uiCmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		b.resize(msg.Width, msg.Height)
		return b, cmd
	case tickMsg:
		b.refresh()
		return b, tea.Batch(cmd, tick())
	case noticeMsg:
		b.refresh()
		return b, tea.Batch(cmd, ui.Notify(noticeLevel(msg.Level), msg.Message), b.waitForNotice())
	case actionMsg:
		b.refresh()
		switch {
		case msg.err != nil:
			return b, tea.Batch(cmd, ui.Notify(ui.Warning, msg.err.Error()))
		case msg.info != "":
			return b, tea.Batch(cmd, ui.Notify(ui.Info, msg.info))
		}
		return b, cmd
	case historyMsg:
		if msg.err != nil {
			b.setState(playerState)
			return b, tea.Batch(cmd, ui.Notify(ui.Warning, msg.err.Error()))
		}
		return b, tea.Batch(cmd, b.historyC.SetItems(historyItems(msg.entries)))
	case tea.MouseMsg:
		if b.state != playerState || msg.Action != tea.MouseActionPress {
			return b, cmd
		}
		switch msg.Button {
		case tea.MouseButtonWheelUp, tea.MouseButtonWheelDown:
			ev := volume.WheelEvent{X: msg.X, Y: msg.Y, Up: msg.Button == tea.MouseButtonWheelUp}
			return b, tea.Batch(cmd, b.wheel(ev))
		}
		return b, cmd
	case tea.KeyMsg:
		if bubblesKey.Matches(msg, b.keymap.forceQuit) {
			return b, tea.Quit
		}
	}

	var next tea.Cmd
	switch b.state {
	case openState:
		next = b.updateOpen(msg)
	case historyState:
		next = b.updateHistory(msg)
	default:
		next = b.updatePlayer(msg)
	}
	return b, tea.Batch(cmd, next)
}

func (b *statefulBubble) updatePlayer(msg tea.Msg) tea.Cmd {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}

	d := b.deck
	k := b.keymap

	switch {
	case bubblesKey.Matches(keyMsg, k.quit):
		return tea.Quit
	case bubblesKey.Matches(keyMsg, k.showHelp):
		b.helpC.ShowAll = !b.helpC.ShowAll
	case bubblesKey.Matches(keyMsg, k.dismiss):
		b.notifier.Dismiss()
	case bubblesKey.Matches(keyMsg, k.open):
		b.inputC.SetValue("")
		b.inputC.Focus()
		b.setState(openState)
	case bubblesKey.Matches(keyMsg, k.history):
		b.setState(historyState)
		return b.loadHistory()
	case bubblesKey.Matches(keyMsg, k.stop):
		return b.run(d.Stop)
	case bubblesKey.Matches(keyMsg, k.nextPreset):
		return b.run(func() error {
			_, err := d.CyclePreset()
			return err
		})
	case bubblesKey.Matches(keyMsg, k.flatPreset):
		return b.run(func() error {
			_, err := d.ApplyPreset(equalizer.Flat)
			return err
		})
	}

	if b.status.State == engine.Viewing {
		return b.updateImage(keyMsg)
	}

	switch {
	case bubblesKey.Matches(keyMsg, k.playPause):
		return b.run(d.TogglePause)
	case bubblesKey.Matches(keyMsg, k.skipBack):
		return b.run(func() error { return d.SkipBack(false) })
	case bubblesKey.Matches(keyMsg, k.skipForward):
		return b.run(func() error { return d.SkipForward(false) })
	case bubblesKey.Matches(keyMsg, k.skipBackMore):
		return b.run(func() error { return d.SkipBack(true) })
	case bubblesKey.Matches(keyMsg, k.skipForwardMore):
		return b.run(func() error { return d.SkipForward(true) })
	case bubblesKey.Matches(keyMsg, k.volumeUp):
		return b.run(func() error { return d.AdjustVolume(b.volumeStep()) })
	case bubblesKey.Matches(keyMsg, k.volumeDown):
		return b.run(func() error { return d.AdjustVolume(-b.volumeStep()) })
	case bubblesKey.Matches(keyMsg, k.mute):
		return b.run(d.ToggleMute)
	case bubblesKey.Matches(keyMsg, k.popOut):
		return b.handoff()
	}
	return nil
}

func (b *statefulBubble) updateImage(keyMsg tea.KeyMsg) tea.Cmd {
	d := b.deck
	k := b.keymap

	switch {
	case bubblesKey.Matches(keyMsg, k.zoomIn):
		return b.run(func() error { return d.Zoom(engine.ZoomStep) })
	case bubblesKey.Matches(keyMsg, k.zoomOut):
		return b.run(func() error { return d.Zoom(-engine.ZoomStep) })
	case bubblesKey.Matches(keyMsg, k.fit):
		return b.run(d.FitImage)
	case bubblesKey.Matches(keyMsg, k.actualSize):
		return b.run(d.ActualSize)
	case bubblesKey.Matches(keyMsg, k.panLeft):
		return b.run(func() error { return d.Pan(-engine.PanStep, 0) })
	case bubblesKey.Matches(keyMsg, k.panRight):
		return b.run(func() error { return d.Pan(engine.PanStep, 0) })
	case bubblesKey.Matches(keyMsg, k.panUp):
		return b.run(func() error { return d.Pan(0, -engine.PanStep) })
	case bubblesKey.Matches(keyMsg, k.panDown):
		return b.run(func() error { return d.Pan(0, engine.PanStep) })
	}
	return nil
}

func (b *statefulBubble) updateOpen(msg tea.Msg) tea.Cmd {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case bubblesKey.Matches(keyMsg, b.keymap.back):
			b.inputC.Blur()
			b.setState(playerState)
			return nil
		case bubblesKey.Matches(keyMsg, b.keymap.confirm):
			path := strings.TrimSpace(b.inputC.Value())
			b.inputC.Blur()
			b.setState(playerState)
			if path == "" {
				return nil
			}
			return b.load(path, false)
		}
	}

	var cmd tea.Cmd
	b.inputC, cmd = b.inputC.Update(msg)
	return cmd
}

func (b *statefulBubble) updateHistory(msg tea.Msg) tea.Cmd {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case bubblesKey.Matches(keyMsg, b.keymap.back):
			b.setState(playerState)
			return nil
		case bubblesKey.Matches(keyMsg, b.keymap.confirm):
			item, ok := b.historyC.SelectedItem().(*listItem)
			if !ok {
				return nil
			}
			b.setState(playerState)
			return b.load(item.entry.Path, true)
		case bubblesKey.Matches(keyMsg, b.keymap.remove):
			item, ok := b.historyC.SelectedItem().(*listItem)
			if !ok {
				return nil
			}
			if err := history.Remove(item.entry.Path); err != nil {
				return ui.Notify(ui.Warning, err.Error())
			}
			b.historyC.RemoveItem(b.historyC.Index())
			return nil
		}
	}

	var cmd tea.Cmd
	b.historyC, cmd = b.historyC.Update(msg)
	return cmd
}
