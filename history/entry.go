package history

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/quickdeck/quickdeck/media"
	"github.com/quickdeck/quickdeck/util"
)

// minResume is the shortest position worth resuming from, in seconds.
const minResume = 5

// Entry is the last known position of one item.
type Entry struct {
	Path     string    `json:"path"`
	Kind     string    `json:"kind"`
	Position float64   `json:"position"`
	Duration float64   `json:"duration"`
	PlayedAt time.Time `json:"played_at"`
}

func newEntry(item *media.Item, position float64) *Entry {
	return &Entry{
		Path:     item.Path,
		Kind:     item.Kind.String(),
		Position: position,
		Duration: item.Duration.OrElse(0),
		PlayedAt: now(),
	}
}

// Progress returns how much of the item was played, in percent.
func (e *Entry) Progress() float64 {
	if e.Duration <= 0 {
		return 0
	}
	return min(e.Position/e.Duration*100, 100)
}

// Finished reports whether playback reached the last couple of seconds.
func (e *Entry) Finished() bool {
	return e.Duration > 0 && e.Position >= e.Duration-2
}

func (e *Entry) String() string {
	return fmt.Sprintf("%s : %s / %s", filepath.Base(e.Path), util.Clock(e.Position), util.Clock(e.Duration))
}
