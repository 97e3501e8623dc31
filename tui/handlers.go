package tui

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/quickdeck/quickdeck/engine"
	"github.com/quickdeck/quickdeck/history"
	"github.com/quickdeck/quickdeck/internal/ui"
	"github.com/quickdeck/quickdeck/key"
	"github.com/quickdeck/quickdeck/volume"
	"github.com/spf13/viper"
)

// handoffTimeout bounds a pop-out or embed, including the wait for the first poll.
const handoffTimeout = 10 * time.Second

// actionMsg reports the outcome of a controller call made off the update loop.
type actionMsg struct {
	info string
	err  error
}

type noticeMsg engine.Notice

type historyMsg struct {
	entries []*history.Entry
	err     error
}

// run calls f off the update loop and reports its error. A skip pressed before the first
// poll of an item is dropped silently.
func (b *statefulBubble) run(f func() error) tea.Cmd {
	return func() tea.Msg {
		err := f()
		if errors.Is(err, engine.ErrNotSynced) {
			err = nil
		}
		return actionMsg{err: err}
	}
}

// waitForNotice relays one controller notice; the handler re-arms it.
func (b *statefulBubble) waitForNotice() tea.Cmd {
	notices := b.deck.Notices()
	return func() tea.Msg {
		n, ok := <-notices
		if !ok {
			return nil
		}
		return noticeMsg(n)
	}
}

func (b *statefulBubble) load(path string, resume bool) tea.Cmd {
	return func() tea.Msg {
		abs, err := filepath.Abs(path)
		if err != nil {
			return actionMsg{err: err}
		}

		opts := engine.LoadOptions{Autoplay: viper.GetBool(key.PlayerAutoplay)}
		if resume {
			if at, ok := history.Resume(abs); ok {
				opts.StartAt = at
			}
		}

		err = b.deck.Load(context.Background(), abs, opts)
		if errors.Is(err, engine.ErrLoadCancelled) {
			err = nil
		}
		return actionMsg{err: err}
	}
}

func (b *statefulBubble) loadHistory() tea.Cmd {
	return func() tea.Msg {
		entries, err := history.Recent(100)
		return historyMsg{entries: entries, err: err}
	}
}

func (b *statefulBubble) handoff() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), handoffTimeout)
		defer cancel()

		report, err := b.deck.ToggleMode(ctx)
		if err != nil {
			return actionMsg{err: err}
		}
		if report.NoOp {
			return actionMsg{}
		}

		info := fmt.Sprintf("%s → %s", report.From, report.To)
		if report.Synced {
			drift, _ := report.Drift()
			info += fmt.Sprintf(", drift %.1fs", drift.Seconds())
		}
		return actionMsg{info: info}
	}
}

func (b *statefulBubble) wheel(ev volume.WheelEvent) tea.Cmd {
	return func() tea.Msg {
		_, err := b.deck.Wheel(ev)
		if errors.Is(err, engine.ErrNoSession) {
			err = nil
		}
		return actionMsg{err: err}
	}
}

func (b *statefulBubble) volumeStep() int {
	if step := viper.GetInt(key.VolumePlayerStep); step > 0 {
		return step
	}
	return volume.DefaultPlayerStep
}

func noticeLevel(l engine.Level) ui.Level {
	switch l {
	case engine.Warning:
		return ui.Warning
	case engine.Error:
		return ui.Error
	default:
		return ui.Info
	}
}
