package engine

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/quickdeck/quickdeck/backend"
	"github.com/quickdeck/quickdeck/log"
	"github.com/quickdeck/quickdeck/media"
	"github.com/samber/lo"
)

// LoadOptions tune a single load.
type LoadOptions struct {
	// Autoplay starts playback once loaded; otherwise the item is left paused.
	Autoplay bool
	// StartAt is the position in seconds to seek to before playback starts.
	StartAt float64
}

// PlayInEngine loads path and starts playing it. A load superseded by a newer one is not an error.
func (c *Controller) PlayInEngine(path string) error {
	err := c.Load(context.Background(), path, LoadOptions{Autoplay: true})
	if errors.Is(err, ErrLoadCancelled) {
		return nil
	}
	return err
}

// Load classifies path and loads it into a session of the matching profile. A session of the
// other profile is closed first, so at most one session exists once Load returns.
func (c *Controller) Load(ctx context.Context, path string, opts LoadOptions) error {
	item, err := media.NewItem(path)
	if err != nil {
		return err
	}

	var view ImageView
	if item.Kind == media.Image {
		c.mu.Lock()
		width, height := c.opts.ViewportWidth, c.opts.ViewportHeight
		c.mu.Unlock()
		view = newImageView(item.Path, width, height)
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}

	c.generation++
	gen := c.generation
	if c.cancelLoad != nil {
		c.cancelLoad()
	}
	loadCtx, cancel := context.WithCancel(ctx)
	c.cancelLoad = cancel

	c.saveHistoryLocked()
	c.poller.Stop()
	c.epoch = 0
	c.pending = false

	if item.Kind == media.Image {
		stale := c.session
		c.session = nil
		c.item = item
		c.image = view
		c.cancelLoad = nil
		c.setStateLocked(Viewing)
		c.mu.Unlock()
		cancel()

		if stale != nil {
			_ = stale.Close()
		}
		return nil
	}

	profile, _ := item.Kind.Profile()
	var stale backend.Session
	if c.session != nil && c.session.Profile() != profile {
		stale = c.session
		c.session = nil
	}
	c.item = item
	c.image = ImageView{}
	c.setStateLocked(Loading)
	c.mu.Unlock()

	log.WithFields(log.Fields{
		"path":     item.Path,
		"kind":     item.Kind.String(),
		"autoplay": opts.Autoplay,
	}).Info("loading")

	c.loadMu.Lock()
	defer c.loadMu.Unlock()

	if stale != nil {
		// graceful quit, then kill after the grace period
		if err := stale.Close(); err != nil {
			log.Warnf("close %s session: %v", stale.Profile(), err)
		}
	}

	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		cancel()
		return ErrLoadCancelled
	}
	sess := c.session
	if sess == nil {
		var surface backend.Surface
		if profile == backend.VideoProfile {
			surface = c.surfaceLocked()
		}
		sess = c.factory(profile, surface)
		c.session = sess
	}
	c.mu.Unlock()

	// always open paused so a resume seek happens before any sound
	openErr := sess.Open(loadCtx, item.Path, true)

	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		cancel()
		return ErrLoadCancelled
	}
	c.cancelLoad = nil
	cancel()

	if openErr != nil {
		if errors.Is(openErr, context.Canceled) {
			// the caller gave up on this load
			c.item = nil
			c.setStateLocked(Idle)
			c.mu.Unlock()
			return ErrLoadCancelled
		}
		c.mu.Unlock()
		c.fail(gen, fmt.Errorf("load %s: %w", item.Name(), openErr))
		return openErr
	}

	if opts.StartAt > 0 {
		c.sendLocked(backend.SeekTo(opts.StartAt))
	}
	if opts.Autoplay {
		c.sendLocked(backend.Play())
		c.setStateLocked(Playing)
	} else {
		c.setStateLocked(Paused)
	}
	c.epoch = c.poller.Start(sess)
	c.checkInvariantLocked()
	c.mu.Unlock()

	return nil
}

// Play resumes a paused item. Playing already is a no-op.
func (c *Controller) Play() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.requireActiveLocked(); err != nil {
		return err
	}
	if c.state == Playing {
		return nil
	}
	if err := c.sendLocked(backend.Play()); err != nil {
		return err
	}
	c.setStateLocked(Playing)
	return nil
}

// Pause pauses a playing item. Paused already is a no-op.
func (c *Controller) Pause() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.requireActiveLocked(); err != nil {
		return err
	}
	if c.state == Paused {
		return nil
	}
	if err := c.sendLocked(backend.Pause()); err != nil {
		return err
	}
	c.setStateLocked(Paused)
	return nil
}

// TogglePause switches between Playing and Paused.
func (c *Controller) TogglePause() error {
	c.mu.Lock()
	state := c.state
	c.mu.Unlock()

	if state == Playing {
		return c.Pause()
	}
	return c.Play()
}

// Seek moves to target seconds, clamped to the item. A target at or past the end ends the item.
func (c *Controller) Seek(target float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seekLocked(target)
}

// SeekRelative moves delta seconds from the last polled position. Until the first poll
// of the current item it returns ErrNotSynced.
func (c *Controller) SeekRelative(delta float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.requireActiveLocked(); err != nil {
		return err
	}
	ts, ok := c.poller.Snapshot()
	if !ok {
		return ErrNotSynced
	}
	return c.seekLocked(ts.Position + delta)
}

// SkipBack jumps back 15 seconds, or 30 with the modifier held.
func (c *Controller) SkipBack(modifier bool) error {
	d := c.opts.SkipBack
	if modifier {
		d = c.opts.SkipBackModified
	}
	return c.SeekRelative(-d.Seconds())
}

// SkipForward jumps forward 30 seconds. The modifier does not change the distance.
func (c *Controller) SkipForward(modifier bool) error {
	return c.SeekRelative(c.opts.SkipForward.Seconds())
}

func (c *Controller) seekLocked(target float64) error {
	if err := c.requireActiveLocked(); err != nil {
		return err
	}

	duration := c.durationLocked()
	target = math.Max(target, 0)
	if duration > 0 && target >= duration {
		c.endOfMediaLocked()
		return nil
	}

	return c.sendLocked(backend.SeekTo(target))
}

// durationLocked returns the best known duration of the current item, or zero.
func (c *Controller) durationLocked() float64 {
	if ts, ok := c.poller.Snapshot(); ok && ts.Duration > 0 {
		return ts.Duration
	}
	if c.item != nil {
		return c.item.Duration.OrElse(0)
	}
	return 0
}

// SetVolume sets the player volume in percent, clamped to [0, 150].
func (c *Controller) SetVolume(percent int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.requireActiveLocked(); err != nil {
		return err
	}
	return c.sendLocked(backend.SetVolume(lo.Clamp(percent, 0, backend.MaxVolume)))
}

// AdjustVolume changes the player volume by delta points. The engine applies the change to its
// own current level, so rapid steps between polls accumulate.
func (c *Controller) AdjustVolume(delta int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.requireActiveLocked(); err != nil {
		return err
	}
	if delta == 0 {
		return nil
	}
	return c.sendLocked(backend.AddVolume(delta))
}

// ToggleMute flips the player mute flag.
func (c *Controller) ToggleMute() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.requireActiveLocked(); err != nil {
		return err
	}
	return c.sendLocked(backend.ToggleMute())
}

// Stop ends playback and destroys the session.
func (c *Controller) Stop() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	c.generation++
	if c.cancelLoad != nil {
		c.cancelLoad()
		c.cancelLoad = nil
	}
	c.saveHistoryLocked()
	sess := c.detachLocked()
	c.image = ImageView{}
	c.setStateLocked(Idle)
	c.mu.Unlock()

	if sess != nil {
		return sess.Close()
	}
	return nil
}

func (c *Controller) requireActiveLocked() error {
	if c.closed {
		return ErrClosed
	}
	if c.session == nil || !c.state.Active() {
		return ErrNoSession
	}
	return nil
}

// sendLocked enqueues cmd on the active session. Fatal send errors fail the session.
func (c *Controller) sendLocked(cmd backend.Command) error {
	err := c.session.Send(cmd)
	if err == nil {
		c.pending = true
		return nil
	}

	if backend.IsFatal(err) {
		epoch := c.epoch
		go c.onPollFailure(epoch, err)
	}
	return fmt.Errorf("%s: %w", cmd, err)
}

// endOfMediaLocked returns to Idle keeping the session for the next item.
func (c *Controller) endOfMediaLocked() {
	if c.item != nil {
		log.Infof("finished %s", c.item.Name())
	}
	c.saveHistoryLocked()
	c.poller.Stop()
	c.epoch = 0
	c.pending = false
	c.item = nil
	if c.session != nil {
		_ = c.session.Send(backend.Stop())
	}
	c.setStateLocked(Idle)
}

func (c *Controller) onPollState(epoch uint64, ts backend.TransportState) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if epoch != c.epoch || c.session == nil || !c.state.Active() {
		return
	}

	close(c.polled)
	c.polled = make(chan struct{})

	if c.item != nil && c.item.Duration.IsAbsent() && ts.Duration > 0 {
		c.item = c.item.WithDuration(ts.Duration)
	}

	atEnd := ts.Duration > 0 && ts.Position >= ts.Duration && ts.Paused
	if ts.Ended || ts.Idle || atEnd {
		c.endOfMediaLocked()
		return
	}

	// a command sent since the last poll may not be applied yet
	if c.pending {
		c.pending = false
		return
	}

	switch {
	case ts.Paused && c.state == Playing:
		c.setStateLocked(Paused)
	case !ts.Paused && c.state == Paused:
		c.setStateLocked(Playing)
	}
}

func (c *Controller) onPollFailure(epoch uint64, err error) {
	c.mu.Lock()
	if epoch == 0 || epoch != c.epoch {
		c.mu.Unlock()
		return
	}
	gen := c.generation
	c.mu.Unlock()

	c.fail(gen, err)
}

// fail moves to Failed, tears the session down and settles in Idle. No retry is attempted.
func (c *Controller) fail(gen uint64, err error) {
	c.mu.Lock()
	if gen != c.generation || c.closed {
		c.mu.Unlock()
		return
	}

	log.Errorf("playback failed: %v", err)
	c.setStateLocked(Failed)
	c.notify(Error, failureMessage(err), err)
	sess := c.detachLocked()
	c.mu.Unlock()

	if sess != nil {
		done := make(chan struct{})
		go func() {
			_ = sess.Close()
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(c.opts.QueryTimeout + 5*time.Second):
			log.Warnf("session close is taking too long, continuing")
		}
	}

	c.mu.Lock()
	if c.state == Failed {
		c.setStateLocked(Idle)
	}
	c.mu.Unlock()
}

func failureMessage(err error) string {
	switch {
	case errors.Is(err, backend.ErrBackendSpawn):
		return "The playback engine could not be started"
	case errors.Is(err, backend.ErrBackendCommandTimeout):
		return "The playback engine stopped responding"
	case errors.Is(err, backend.ErrBackendProcessExited):
		return "The playback engine exited unexpectedly"
	default:
		return "Playback failed"
	}
}
