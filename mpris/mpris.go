//go:build linux

package mpris

import (
	"github.com/godbus/dbus/v5"
	"github.com/quarckster/go-mpris-server/pkg/server"
	"github.com/quarckster/go-mpris-server/pkg/types"

	"github.com/quickdeck/quickdeck/log"
)

// Adapter connects the controller to MPRIS over D-Bus.
type Adapter struct {
	server *server.Server
}

// New creates and starts the bridge in the background.
func New(player Player) (*Adapter, error) {
	a := &Adapter{
		server: server.NewServer(Name, &rootAdapter{}, &playerAdapter{player: player}),
	}

	go func() {
		if err := a.server.Listen(); err != nil {
			log.Warnf("mpris: %s", err)
		}
	}()

	return a, nil
}

// Close releases the bus name.
func (a *Adapter) Close() error {
	return a.server.Stop()
}

type rootAdapter struct{}

func (*rootAdapter) Raise() error            { return nil }
func (*rootAdapter) Quit() error             { return nil }
func (*rootAdapter) CanQuit() (bool, error)  { return false, nil }
func (*rootAdapter) CanRaise() (bool, error) { return false, nil }
func (*rootAdapter) HasTrackList() (bool, error) {
	return false, nil
}
func (*rootAdapter) Identity() (string, error) { return "QuickDeck", nil }

//nolint:revive // Method name required by interface.
func (*rootAdapter) SupportedUriSchemes() ([]string, error) {
	return []string{"file"}, nil
}

func (*rootAdapter) SupportedMimeTypes() ([]string, error) {
	return []string{"audio/mpeg", "audio/flac", "audio/ogg", "video/mp4", "video/x-matroska", "image/png", "image/jpeg"}, nil
}

type playerAdapter struct {
	player Player
}

// Next and Previous have no queue to walk.
func (*playerAdapter) Next() error     { return nil }
func (*playerAdapter) Previous() error { return nil }

func (p *playerAdapter) Pause() error     { return p.player.Pause() }
func (p *playerAdapter) PlayPause() error { return p.player.TogglePause() }
func (p *playerAdapter) Stop() error      { return p.player.Stop() }
func (p *playerAdapter) Play() error      { return p.player.Play() }

func (p *playerAdapter) Seek(offset types.Microseconds) error {
	return p.player.SeekRelative(seconds(int64(offset)))
}

func (p *playerAdapter) SetPosition(_ string, position types.Microseconds) error {
	return p.player.Seek(seconds(int64(position)))
}

//nolint:revive // Method name required by interface.
func (p *playerAdapter) OpenUri(uri string) error {
	path, err := uriToPath(uri)
	if err != nil {
		return err
	}
	return p.player.PlayInEngine(path)
}

func (p *playerAdapter) PlaybackStatus() (types.PlaybackStatus, error) {
	switch statusOf(p.player.Snapshot().State) {
	case statusPlaying:
		return types.PlaybackStatusPlaying, nil
	case statusPaused:
		return types.PlaybackStatusPaused, nil
	default:
		return types.PlaybackStatusStopped, nil
	}
}

func (*playerAdapter) Rate() (float64, error)        { return 1.0, nil }
func (*playerAdapter) SetRate(_ float64) error       { return nil }
func (*playerAdapter) MinimumRate() (float64, error) { return 1.0, nil }
func (*playerAdapter) MaximumRate() (float64, error) { return 1.0, nil }

func (p *playerAdapter) Metadata() (types.Metadata, error) {
	status := p.player.Snapshot()
	if status.Item == nil {
		return types.Metadata{}, nil
	}

	return types.Metadata{
		TrackId: dbus.ObjectPath(trackID(status.Item.Path)),
		Length:  types.Microseconds(micros(status.Transport.Duration)),
		Title:   status.Item.Name(),
	}, nil
}

func (p *playerAdapter) Volume() (float64, error) {
	return toMPRISVolume(p.player.Snapshot().Transport.Volume), nil
}

func (p *playerAdapter) SetVolume(v float64) error {
	return p.player.SetVolume(fromMPRISVolume(v))
}

func (p *playerAdapter) Position() (int64, error) {
	return micros(p.player.Snapshot().Transport.Position), nil
}

func (*playerAdapter) CanGoNext() (bool, error)     { return false, nil }
func (*playerAdapter) CanGoPrevious() (bool, error) { return false, nil }

func (p *playerAdapter) CanPlay() (bool, error) {
	return p.player.Snapshot().Item != nil, nil
}

func (*playerAdapter) CanPause() (bool, error)   { return true, nil }
func (*playerAdapter) CanSeek() (bool, error)    { return true, nil }
func (*playerAdapter) CanControl() (bool, error) { return true, nil }
