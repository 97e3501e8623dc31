package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/quickdeck/quickdeck/deck"
	"github.com/quickdeck/quickdeck/engine"
	"github.com/quickdeck/quickdeck/internal/ui"
	"github.com/quickdeck/quickdeck/volume"
	. "github.com/smartystreets/goconvey/convey"
)

type silentMixer struct{}

func (silentMixer) Get() (int, error)             { return 50, nil }
func (silentMixer) Adjust(delta int) (int, error) { return 50 + delta, nil }
func (silentMixer) Name() string                  { return "silent" }

func newTestBubble() *statefulBubble {
	d := deck.New(deck.Options{Mixer: silentMixer{}, Router: volume.NewRouter(0, 0)})
	b := newBubble(d, &Options{})
	b.resize(80, 24)
	return b
}

func press(b *statefulBubble, keys string) tea.Cmd {
	_, cmd := b.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(keys)})
	return cmd
}

func TestPanel(t *testing.T) {
	Convey("Given an idle control surface", t, func() {
		b := newTestBubble()
		defer b.deck.Close()

		Convey("The panel has a fixed height", func() {
			So(len(b.panel()), ShouldEqual, panelLines)
		})

		Convey("The wheel surface covers the panel and its padding", func() {
			r := surfaceRect(80)
			So(r.Height, ShouldEqual, panelLines+2)
			So(r.Width, ShouldEqual, 80)
			So(r.Contains(10, 3), ShouldBeTrue)
			So(r.Contains(10, panelLines+2), ShouldBeFalse)
		})

		Convey("The view shows the idle hint and the help", func() {
			So(b.View(), ShouldContainSubstring, "Nothing loaded")
			So(b.View(), ShouldContainSubstring, "play/pause")
		})

		Convey("Playback keys without a session report a notice", func() {
			_, cmd := b.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
			So(cmd, ShouldNotBeNil)
			msg := b.deck.TogglePause()
			So(msg, ShouldNotBeNil)
		})
	})
}

func TestStates(t *testing.T) {
	Convey("Given a control surface", t, func() {
		b := newTestBubble()
		defer b.deck.Close()

		Convey("o opens the path prompt and esc returns", func() {
			press(b, "o")
			So(b.state, ShouldEqual, openState)
			So(b.keymap.state, ShouldEqual, openState)

			b.Update(tea.KeyMsg{Type: tea.KeyEsc})
			So(b.state, ShouldEqual, playerState)
		})

		Convey("An empty path does nothing", func() {
			press(b, "o")
			_, cmd := b.Update(tea.KeyMsg{Type: tea.KeyEnter})
			So(b.state, ShouldEqual, playerState)
			So(cmd, ShouldBeNil)
		})

		Convey("x dismisses the notice", func() {
			b.Update(ui.NotifyMsg{Level: ui.Warning, Text: "engine exited"})
			So(b.View(), ShouldContainSubstring, "engine exited")
			press(b, "x")
			So(b.View(), ShouldNotContainSubstring, "engine exited")
		})

		Convey("Controller notices become notifications", func() {
			_, cmd := b.Update(noticeMsg(engine.Notice{Level: engine.Error, Message: "boom"}))
			So(cmd, ShouldNotBeNil)
		})

		Convey("Wheel input is routed", func() {
			_, cmd := b.Update(tea.MouseMsg{X: 1, Y: 30, Action: tea.MouseActionPress, Button: tea.MouseButtonWheelUp})
			So(cmd, ShouldNotBeNil)

			_, cmd = b.Update(tea.MouseMsg{X: 1, Y: 1, Action: tea.MouseActionMotion})
			So(cmd, ShouldBeNil)
		})

		Convey("Image keys switch the help", func() {
			b.keymap.setViewing(true)
			So(b.keymap.ShortHelp()[0].Help().Desc, ShouldEqual, "zoom in")
			b.keymap.setViewing(false)
			So(b.keymap.ShortHelp()[1].Help().Desc, ShouldEqual, "back 15s")
		})
	})
}
