// Package engine implements the playback controller: it owns at most one engine session,
// runs the Idle/Loading/Playing/Paused state machine on top of polled transport state,
// hands sessions over between presentations and applies equalizer profiles.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/quickdeck/quickdeck/backend"
	"github.com/quickdeck/quickdeck/equalizer"
	"github.com/quickdeck/quickdeck/log"
	"github.com/quickdeck/quickdeck/media"
	"github.com/quickdeck/quickdeck/poller"
)

// State is the controller's transport state.
type State int

const (
	Idle State = iota
	Loading
	Playing
	Paused
	// Viewing is the static image mode. It is outside the transport machine.
	Viewing
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	case Viewing:
		return "viewing"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Active reports whether s has a loaded item under transport control.
func (s State) Active() bool {
	return s == Playing || s == Paused
}

// Mode is the presentation the control surface currently drives.
type Mode int

const (
	Embedded Mode = iota
	PopOut
)

func (m Mode) String() string {
	if m == PopOut {
		return "pop-out"
	}
	return "embedded"
}

var (
	// ErrLoadCancelled means a newer load superseded this one. It is never shown to the user.
	ErrLoadCancelled = errors.New("load superseded by a newer request")
	// ErrNoSession means the operation needs a loaded audio or video item.
	ErrNoSession = errors.New("nothing is playing")
	// ErrHandoffInterrupted means the item was stopped or replaced while its output was being moved.
	ErrHandoffInterrupted = errors.New("item changed during handoff")
	// ErrNotSynced means no poll has reported the position of the current item yet.
	ErrNotSynced = errors.New("position not known yet")
	// ErrNotViewing means the operation needs a loaded image.
	ErrNotViewing = errors.New("no image is shown")
	// ErrEqualizerDisabled means no equalizer writer is configured.
	ErrEqualizerDisabled = errors.New("equalizer is disabled")
	// ErrClosed is returned by every operation after Close.
	ErrClosed = errors.New("playback controller closed")
)

// Presenter moves a video session's output between presentation contexts.
type Presenter interface {
	Reparent(session backend.Session, from, to backend.Surface) error
}

// Equalizer is the equalizer writer used by the controller.
type Equalizer interface {
	Write(p equalizer.Profile) error
	Current() equalizer.Profile
}

// History records where playback of an item stopped.
type History interface {
	Save(item *media.Item, position float64) error
}

// Options configures a Controller. Zero values fall back to defaults.
type Options struct {
	PollInterval time.Duration
	QueryTimeout time.Duration

	SkipBack         time.Duration
	SkipBackModified time.Duration
	SkipForward      time.Duration

	// Surfaces are the window handles video renders into in each mode.
	EmbeddedSurface backend.Surface
	PopOutSurface   backend.Surface

	// Viewport is the size images are fitted into.
	ViewportWidth  int
	ViewportHeight int

	NoticeBuffer int
	History      History

	// OnTransition is called with the controller lock held. It must not call back into the controller.
	OnTransition func(from, to State)
}

// DefaultOptions returns the skip distances and bounds used when Options leaves them unset.
func DefaultOptions() Options {
	return Options{
		PollInterval:     poller.DefaultInterval,
		QueryTimeout:     750 * time.Millisecond,
		SkipBack:         15 * time.Second,
		SkipBackModified: 30 * time.Second,
		SkipForward:      30 * time.Second,
		ViewportWidth:    800,
		ViewportHeight:   600,
		NoticeBuffer:     16,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.PollInterval <= 0 {
		o.PollInterval = d.PollInterval
	}
	if o.QueryTimeout <= 0 {
		o.QueryTimeout = d.QueryTimeout
	}
	if o.SkipBack <= 0 {
		o.SkipBack = d.SkipBack
	}
	if o.SkipBackModified <= 0 {
		o.SkipBackModified = d.SkipBackModified
	}
	if o.SkipForward <= 0 {
		o.SkipForward = d.SkipForward
	}
	if o.ViewportWidth <= 0 || o.ViewportHeight <= 0 {
		o.ViewportWidth, o.ViewportHeight = d.ViewportWidth, d.ViewportHeight
	}
	if o.NoticeBuffer <= 0 {
		o.NoticeBuffer = d.NoticeBuffer
	}
	return o
}

// Controller is the playback controller. All methods are safe for concurrent use.
type Controller struct {
	opts      Options
	factory   backend.Factory
	eq        Equalizer
	presenter Presenter
	poller    *poller.Poller

	// loadMu serializes session acquisition and Open across loads
	loadMu sync.Mutex
	// handoffMu serializes handoffs; the presenter runs outside mu
	handoffMu sync.Mutex

	mu         sync.Mutex
	state      State
	mode       Mode
	item       *media.Item
	session    backend.Session
	epoch      uint64
	generation uint64
	cancelLoad context.CancelFunc
	pending    bool
	polled     chan struct{}
	image      ImageView
	surfaces   map[Mode]backend.Surface
	closed     bool

	// eqMu is independent of mu so equalizer writes never wait on transport commands
	eqMu sync.Mutex

	notices chan Notice
}

// New creates an idle controller. eq and presenter may be nil.
func New(opts Options, factory backend.Factory, eq Equalizer, presenter Presenter) *Controller {
	opts = opts.withDefaults()
	if presenter == nil {
		presenter = LogPresenter{}
	}

	c := &Controller{
		opts:      opts,
		factory:   factory,
		eq:        eq,
		presenter: presenter,
		polled:    make(chan struct{}),
		surfaces: map[Mode]backend.Surface{
			Embedded: opts.EmbeddedSurface,
			PopOut:   opts.PopOutSurface,
		},
		notices: make(chan Notice, opts.NoticeBuffer),
	}
	c.poller = poller.New(opts.PollInterval, opts.QueryTimeout, c.onPollState, c.onPollFailure)

	return c
}

// Status is a consistent copy of the controller's observable state.
type Status struct {
	State     State
	Mode      Mode
	Item      *media.Item
	Transport backend.TransportState
	// Synced is false until the first poll of the current item.
	Synced    bool
	Profile   backend.Profile
	Sessions  int
	Equalizer equalizer.Profile
	Image     ImageView
}

// Snapshot returns the current status. The transport part is the poller's last published state.
func (c *Controller) Snapshot() Status {
	c.mu.Lock()
	status := Status{
		State: c.state,
		Mode:  c.mode,
		Image: c.image,
	}
	if c.item != nil {
		item := *c.item
		status.Item = &item
	}
	if c.session != nil {
		status.Sessions = 1
		status.Profile = c.session.Profile()
	}
	c.mu.Unlock()

	status.Transport, status.Synced = c.poller.Snapshot()
	if c.eq != nil {
		status.Equalizer = c.eq.Current()
	}
	return status
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// HasSession reports whether a session is loaded and under transport control.
func (c *Controller) HasSession() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session != nil && c.state.Active()
}

// Close stops playback, tears the session down and rejects further calls.
func (c *Controller) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.generation++
	if c.cancelLoad != nil {
		c.cancelLoad()
		c.cancelLoad = nil
	}
	c.saveHistoryLocked()
	sess := c.detachLocked()
	c.setStateLocked(Idle)
	c.mu.Unlock()

	if sess != nil {
		return sess.Close()
	}
	return nil
}

func (c *Controller) setStateLocked(s State) {
	if c.state == s {
		return
	}
	from := c.state
	c.state = s
	log.WithFields(log.Fields{"from": from.String(), "to": s.String()}).Debug("playback state")
	if c.opts.OnTransition != nil {
		c.opts.OnTransition(from, s)
	}
}

// detachLocked stops polling and releases the session to the caller, which must close it.
func (c *Controller) detachLocked() backend.Session {
	c.poller.Stop()
	c.epoch = 0
	c.pending = false
	c.item = nil
	sess := c.session
	c.session = nil
	return sess
}

func (c *Controller) saveHistoryLocked() {
	if c.opts.History == nil || c.item == nil || c.item.Kind == media.Image {
		return
	}
	ts, ok := c.poller.Snapshot()
	if !ok {
		return
	}
	if err := c.opts.History.Save(c.item.WithDuration(ts.Duration), ts.Position); err != nil {
		log.Warnf("history: %v", err)
	}
}

// surfaceLocked returns the surface video renders into in the current mode.
func (c *Controller) surfaceLocked() backend.Surface {
	return c.surfaces[c.mode]
}

// checkInvariantLocked verifies that the only session matches the loaded item.
func (c *Controller) checkInvariantLocked() {
	if c.session == nil || c.item == nil {
		return
	}
	want, ok := c.item.Kind.Profile()
	if !ok || c.session.Profile() != want {
		log.Errorf("session profile %s does not match %s item %s", c.session.Profile(), c.item.Kind, c.item.Path)
	}
}
