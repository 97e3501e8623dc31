package tui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/quickdeck/quickdeck/color"
	"github.com/quickdeck/quickdeck/style"
)

// statefulKeymap defines the keyboard interactions available within various application states.
type statefulKeymap struct {
	state   state
	viewing bool

	quit, forceQuit,
	playPause, stop,
	skipBack, skipForward, skipBackMore, skipForwardMore,
	volumeUp, volumeDown, mute,
	popOut,
	nextPreset, flatPreset,
	zoomIn, zoomOut, fit, actualSize,
	panLeft, panDown, panUp, panRight,
	dismiss,
	open, history,
	confirm, remove, back,
	up, down,
	showHelp key.Binding
}

// setState updates the active keymap configuration to match the specified application state.
func (k *statefulKeymap) setState(newState state) {
	k.state = newState
}

// setViewing switches the player bindings between transport and image controls.
func (k *statefulKeymap) setViewing(viewing bool) {
	k.viewing = viewing
}

func newStatefulKeymap() *statefulKeymap {
	return &statefulKeymap{
		quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		forceQuit: key.NewBinding(
			key.WithKeys("ctrl+c", "ctrl+d"),
			key.WithHelp("ctrl+c", "quit"),
		),
		playPause: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp(style.Fg(color.Orange)("space"), style.Fg(color.Orange)("play/pause")),
		),
		stop: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "stop"),
		),
		skipBack: key.NewBinding(
			key.WithKeys("left"),
			key.WithHelp("←", "back 15s"),
		),
		skipForward: key.NewBinding(
			key.WithKeys("right"),
			key.WithHelp("→", "forward 30s"),
		),
		skipBackMore: key.NewBinding(
			key.WithKeys("shift+left"),
			key.WithHelp("shift+←", "back 30s"),
		),
		skipForwardMore: key.NewBinding(
			key.WithKeys("shift+right"),
			key.WithHelp("shift+→", "forward 30s"),
		),
		volumeUp: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", "volume up"),
		),
		volumeDown: key.NewBinding(
			key.WithKeys("-", "_"),
			key.WithHelp("-", "volume down"),
		),
		mute: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "mute"),
		),
		popOut: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "pop out"),
		),
		nextPreset: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "next preset"),
		),
		flatPreset: key.NewBinding(
			key.WithKeys("E"),
			key.WithHelp("E", "flat"),
		),
		zoomIn: key.NewBinding(
			key.WithKeys("z"),
			key.WithHelp("z", "zoom in"),
		),
		zoomOut: key.NewBinding(
			key.WithKeys("Z"),
			key.WithHelp("Z", "zoom out"),
		),
		fit: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "fit"),
		),
		actualSize: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "100%"),
		),
		panLeft: key.NewBinding(
			key.WithKeys("h"),
			key.WithHelp("h", "pan left"),
		),
		panDown: key.NewBinding(
			key.WithKeys("j"),
			key.WithHelp("j", "pan down"),
		),
		panUp: key.NewBinding(
			key.WithKeys("k"),
			key.WithHelp("k", "pan up"),
		),
		panRight: key.NewBinding(
			key.WithKeys("l"),
			key.WithHelp("l", "pan right"),
		),
		dismiss: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "dismiss"),
		),
		open: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "open file"),
		),
		history: key.NewBinding(
			key.WithKeys("H"),
			key.WithHelp("H", "history"),
		),
		confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "play"),
		),
		remove: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "forget"),
		),
		back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑", "up"),
		),
		down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓", "down"),
		),
		showHelp: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
	}
}

func (k *statefulKeymap) help() ([]key.Binding, []key.Binding) {
	h := func(bindings ...key.Binding) []key.Binding {
		return bindings
	}

	to2 := func(a []key.Binding) ([]key.Binding, []key.Binding) {
		return a, a
	}

	switch k.state {
	case openState:
		return to2(h(withDescription(k.confirm, "open"), k.back))
	case historyState:
		return to2(h(k.confirm, k.remove, k.back))
	case playerState:
		if k.viewing {
			return h(k.zoomIn, k.zoomOut, k.fit, k.actualSize, k.stop, k.showHelp),
				h(k.zoomIn, k.zoomOut, k.fit, k.actualSize, k.panLeft, k.panDown, k.panUp, k.panRight, k.stop, k.open, k.history, k.dismiss, k.quit)
		}
		return h(k.playPause, k.skipBack, k.skipForward, k.volumeUp, k.volumeDown, k.showHelp),
			h(k.playPause, k.skipBack, k.skipForward, k.skipBackMore, k.skipForwardMore, k.volumeUp, k.volumeDown, k.mute, k.stop, k.popOut, k.nextPreset, k.flatPreset, k.open, k.history, k.dismiss, k.quit)
	default:
		return to2(h())
	}
}

func (k *statefulKeymap) ShortHelp() []key.Binding {
	short, _ := k.help()
	return short
}

func (k *statefulKeymap) FullHelp() [][]key.Binding {
	_, full := k.help()
	return [][]key.Binding{full}
}

func (k *statefulKeymap) forList() list.KeyMap {
	return list.KeyMap{
		CursorUp:             k.up,
		CursorDown:           k.down,
		ClearFilter:          k.back,
		CancelWhileFiltering: k.back,
		AcceptWhileFiltering: k.confirm,
		ShowFullHelp:         k.showHelp,
		CloseFullHelp:        k.showHelp,
		ForceQuit:            k.forceQuit,
	}
}

func withDescription(k key.Binding, description string) key.Binding {
	return key.NewBinding(
		key.WithKeys(k.Keys()...),
		key.WithHelp(k.Help().Key, description),
	)
}
