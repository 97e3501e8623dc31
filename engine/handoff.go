package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/quickdeck/quickdeck/backend"
	"github.com/quickdeck/quickdeck/equalizer"
	"github.com/quickdeck/quickdeck/log"
)

// HandoffReport describes a presentation change. Before and After are poller snapshots taken
// around the change; After is taken on the first poll following it.
type HandoffReport struct {
	From, To  Mode
	NoOp      bool
	Sessions  int
	Before    backend.TransportState
	After     backend.TransportState
	Synced    bool
	Equalizer equalizer.Profile
}

// Drift returns the position and volume differences between the two snapshots.
func (r HandoffReport) Drift() (time.Duration, int) {
	position := time.Duration((r.After.Position - r.Before.Position) * float64(time.Second))
	if position < 0 {
		position = -position
	}
	volume := r.After.Volume - r.Before.Volume
	if volume < 0 {
		volume = -volume
	}
	return position, volume
}

// PopOut moves control to the pop-out presentation rendering into surface.
func (c *Controller) PopOut(ctx context.Context, surface backend.Surface) (HandoffReport, error) {
	return c.Handoff(ctx, PopOut, surface)
}

// Embed moves control back to the embedded presentation rendering into surface.
func (c *Controller) Embed(ctx context.Context, surface backend.Surface) (HandoffReport, error) {
	return c.Handoff(ctx, Embedded, surface)
}

// ToggleMode hands off to whichever mode is not current, using its configured surface.
func (c *Controller) ToggleMode(ctx context.Context) (HandoffReport, error) {
	c.mu.Lock()
	target := PopOut
	if c.mode == PopOut {
		target = Embedded
	}
	c.mu.Unlock()
	return c.Handoff(ctx, target, 0)
}

// Handoff moves the running session to another presentation without restarting it. A video
// session's output is reparented onto surface; an audio session is left untouched. No session
// is ever created here. A zero surface keeps the one configured for mode.
func (c *Controller) Handoff(ctx context.Context, mode Mode, surface backend.Surface) (HandoffReport, error) {
	c.handoffMu.Lock()
	defer c.handoffMu.Unlock()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return HandoffReport{}, ErrClosed
	}

	report := HandoffReport{From: c.mode, To: mode}
	report.Before, report.Synced = c.poller.Snapshot()
	if c.eq != nil {
		report.Equalizer = c.eq.Current()
	}

	if surface == 0 {
		surface = c.surfaces[mode]
	}

	sess := c.session
	if sess != nil {
		report.Sessions = 1
	}

	if mode == c.mode {
		report.NoOp = true
		report.After = report.Before
		c.mu.Unlock()
		return report, nil
	}
	from := c.surfaces[c.mode]
	c.mu.Unlock()

	// the window system may be slow; polling and transport commands keep running meanwhile
	if sess != nil && sess.Profile() == backend.VideoProfile {
		if err := c.presenter.Reparent(sess, from, surface); err != nil {
			return report, fmt.Errorf("reparent video output: %w", err)
		}
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return report, ErrClosed
	}
	if c.session != sess {
		c.mu.Unlock()
		return report, ErrHandoffInterrupted
	}
	c.surfaces[mode] = surface
	c.mode = mode
	polling := sess != nil && c.epoch != 0
	polled := c.polled
	c.mu.Unlock()

	log.WithFields(log.Fields{
		"from": report.From.String(),
		"to":   report.To.String(),
	}).Info("presentation handoff")

	if !polling {
		report.After = report.Before
		return report, nil
	}

	select {
	case <-polled:
	case <-ctx.Done():
	case <-time.After(2 * c.poller.Interval()):
	}
	report.After, report.Synced = c.poller.Snapshot()

	return report, nil
}

// Mode returns the current presentation.
func (c *Controller) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}
