// Package mpris exposes the playback controller on the D-Bus session bus.
package mpris

import (
	"fmt"
	"hash/fnv"
	"net/url"
	"path/filepath"
	"time"

	"github.com/quickdeck/quickdeck/backend"
	"github.com/quickdeck/quickdeck/engine"
)

// Name is the bus name suffix: org.mpris.MediaPlayer2.<Name>.
const Name = "quickdeck"

// Player is the subset of the controller the bridge drives.
type Player interface {
	PlayInEngine(path string) error
	Play() error
	Pause() error
	TogglePause() error
	Stop() error
	Seek(target float64) error
	SeekRelative(delta float64) error
	SetVolume(percent int) error
	Snapshot() engine.Status
}

type status int

const (
	statusStopped status = iota
	statusPlaying
	statusPaused
)

func statusOf(s engine.State) status {
	switch s {
	case engine.Playing, engine.Viewing:
		return statusPlaying
	case engine.Paused, engine.Loading:
		return statusPaused
	default:
		return statusStopped
	}
}

// uriToPath accepts file:// URIs and bare paths.
func uriToPath(uri string) (string, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", fmt.Errorf("invalid uri %q: %w", uri, err)
	}

	switch u.Scheme {
	case "":
		return filepath.Clean(uri), nil
	case "file":
		if u.Path == "" {
			return "", fmt.Errorf("invalid uri %q: empty path", uri)
		}
		return filepath.FromSlash(u.Path), nil
	default:
		return "", fmt.Errorf("unsupported uri scheme %q", u.Scheme)
	}
}

func trackID(path string) string {
	h := fnv.New64a()
	_, _ = h.Write([]byte(path))
	return fmt.Sprintf("/org/mpris/MediaPlayer2/Track/%x", h.Sum64())
}

func micros(seconds float64) int64 {
	return time.Duration(seconds * float64(time.Second)).Microseconds()
}

func seconds(us int64) float64 {
	return (time.Duration(us) * time.Microsecond).Seconds()
}

// MPRIS volume is 0..1 where 1 is the engine's 100%.
func toMPRISVolume(percent int) float64 {
	return float64(percent) / 100
}

func fromMPRISVolume(v float64) int {
	if v < 0 {
		v = 0
	}
	percent := int(v*100 + 0.5)
	return min(percent, backend.MaxVolume)
}
