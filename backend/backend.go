// Package backend owns the external playback engine processes and the command/query channel to them.
//
// A Session is one running engine instance in either the audio profile (headless) or the video
// profile (rendering into an embeddable window surface). Sessions are never observed through
// pushed property notifications: callers issue commands with Send and read state with Query.
package backend

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Profile selects how an engine instance is started.
type Profile int

const (
	// AudioProfile runs the engine without any video output.
	AudioProfile Profile = iota + 1
	// VideoProfile attaches the engine's video output to a window surface.
	VideoProfile
)

func (p Profile) String() string {
	switch p {
	case AudioProfile:
		return "audio"
	case VideoProfile:
		return "video"
	default:
		return fmt.Sprintf("profile(%d)", int(p))
	}
}

// Surface is an opaque native window handle the video profile renders into. Zero means none.
type Surface uintptr

// MaxVolume is the upper bound of the player-local volume in percent.
const MaxVolume = 150

// TransportState is a point-in-time read of the engine's transport.
type TransportState struct {
	Position float64 `json:"position"`
	Duration float64 `json:"duration"`
	Paused   bool    `json:"paused"`
	Volume   int     `json:"volume"`
	Muted    bool    `json:"muted"`
	// Ended reports that the engine reached the end of the current item.
	Ended bool `json:"ended"`
	// Idle reports that no item is loaded.
	Idle bool `json:"idle"`
}

// Remaining returns the time left in the current item, or zero when the duration is unknown.
func (t TransportState) Remaining() time.Duration {
	if t.Duration <= 0 || t.Position >= t.Duration {
		return 0
	}
	return time.Duration((t.Duration - t.Position) * float64(time.Second))
}

var (
	// ErrBackendSpawn means the engine could not be located or did not start in time.
	ErrBackendSpawn = errors.New("playback engine failed to start")
	// ErrBackendCommandTimeout means a command or query exceeded its bound.
	ErrBackendCommandTimeout = errors.New("playback engine did not respond in time")
	// ErrBackendProcessExited means the engine process is gone.
	ErrBackendProcessExited = errors.New("playback engine exited unexpectedly")
	// ErrSessionClosed is returned for commands sent after Close.
	ErrSessionClosed = errors.New("playback session closed")
	// ErrCommandQueueFull is returned when the engine is not draining commands.
	ErrCommandQueueFull = errors.New("playback command queue full")
)

// IsFatal reports whether err means the session must be torn down.
func IsFatal(err error) bool {
	return errors.Is(err, ErrBackendCommandTimeout) ||
		errors.Is(err, ErrBackendProcessExited) ||
		errors.Is(err, ErrBackendSpawn)
}

// Session is the contract the playback controller relies on.
type Session interface {
	// Open loads path, starting the engine on first use. It returns once the engine
	// reports the item as loaded, or fails when the startup bound elapses.
	Open(ctx context.Context, path string, paused bool) error

	// Send enqueues a transport command without waiting for it to be applied.
	// Commands are applied in submission order.
	Send(cmd Command) error

	// Query reads the current transport state, bounded by the query timeout.
	Query(ctx context.Context) (TransportState, error)

	// Close shuts the engine down, forcibly after the grace period. Safe to call twice.
	Close() error

	// Exited is closed once the engine process is gone.
	Exited() <-chan struct{}

	Profile() Profile
	Surface() Surface
	PID() int
}

// Factory creates a session for a profile. The controller owns the returned session.
type Factory func(profile Profile, surface Surface) Session

// Options bounds and parameterizes engine instances.
type Options struct {
	Binary         string
	ExtraArgs      []string
	SocketDir      string
	StartupTimeout time.Duration
	ShutdownGrace  time.Duration
	QueryTimeout   time.Duration
	Volume         int
	QueueSize      int
}

// DefaultOptions returns the bounds used when configuration leaves them unset.
func DefaultOptions() Options {
	return Options{
		Binary:         "mpv",
		StartupTimeout: 5 * time.Second,
		ShutdownGrace:  3 * time.Second,
		QueryTimeout:   750 * time.Millisecond,
		Volume:         100,
		QueueSize:      64,
	}
}

// withDefaults fills zero fields from DefaultOptions.
func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Binary == "" {
		o.Binary = d.Binary
	}
	if o.StartupTimeout <= 0 {
		o.StartupTimeout = d.StartupTimeout
	}
	if o.ShutdownGrace <= 0 {
		o.ShutdownGrace = d.ShutdownGrace
	}
	if o.QueryTimeout <= 0 {
		o.QueryTimeout = d.QueryTimeout
	}
	if o.QueueSize <= 0 {
		o.QueueSize = d.QueueSize
	}
	if o.Volume < 0 || o.Volume > MaxVolume {
		o.Volume = d.Volume
	}
	return o
}

// MPVFactory returns a Factory producing mpv sessions with the given options.
func MPVFactory(opts Options) Factory {
	return func(profile Profile, surface Surface) Session {
		return NewMPV(profile, surface, opts)
	}
}
