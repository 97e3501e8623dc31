package tui

import (
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/bubbles/list"
	"github.com/quickdeck/quickdeck/history"
	"github.com/quickdeck/quickdeck/icon"
	"github.com/quickdeck/quickdeck/media"
	"github.com/quickdeck/quickdeck/style"
	"github.com/samber/lo"
)

// listItem implements the list.Item interface for history entries.
type listItem struct {
	entry *history.Entry
}

func (t *listItem) kindIcon() string {
	switch t.entry.Kind {
	case media.Audio.String():
		return icon.Get(icon.Audio)
	case media.Video.String():
		return icon.Get(icon.Video)
	case media.Image.String():
		return icon.Get(icon.Image)
	default:
		return ""
	}
}

// Title retrieves the primary display text for the list item.
func (t *listItem) Title() string {
	title := filepath.Base(t.entry.Path)
	if i := t.kindIcon(); i != "" {
		title = i + " " + title
	}
	if t.entry.Finished() {
		title += " " + style.Faint(icon.Get(icon.Success))
	}
	return title
}

// Description shows where playback stopped and when.
func (t *listItem) Description() string {
	return fmt.Sprintf("%s  %.0f%%  %s",
		t.entry.String(),
		t.entry.Progress(),
		t.entry.PlayedAt.Format("2006-01-02 15:04"),
	)
}

// FilterValue implements list.Item.
func (t *listItem) FilterValue() string {
	return t.entry.Path
}

func historyItems(entries []*history.Entry) []list.Item {
	return lo.Map(entries, func(e *history.Entry, _ int) list.Item {
		return &listItem{entry: e}
	})
}
