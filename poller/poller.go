// Package poller keeps a published copy of the engine's transport state fresh by polling it.
//
// The poller is the only writer of the snapshot. Each polling run is identified by an epoch so
// that callbacks from a run that has since been stopped or replaced can be told apart.
package poller

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/quickdeck/quickdeck/backend"
	"github.com/quickdeck/quickdeck/log"
)

const (
	// MaxInterval is the slowest cadence the control surface tolerates.
	MaxInterval     = time.Second
	DefaultInterval = time.Second
)

// Source is what the poller reads from.
type Source interface {
	Query(ctx context.Context) (backend.TransportState, error)
	Exited() <-chan struct{}
}

// StateFunc receives every published snapshot.
type StateFunc func(epoch uint64, state backend.TransportState)

// FailureFunc receives the error that ended a run. It is called at most once per epoch.
type FailureFunc func(epoch uint64, err error)

type snapshot struct {
	epoch uint64
	state backend.TransportState
}

// Poller periodically queries one Source at a time.
type Poller struct {
	interval  time.Duration
	timeout   time.Duration
	onState   StateFunc
	onFailure FailureFunc

	mu     sync.Mutex
	epoch  uint64
	cancel context.CancelFunc
	done   chan struct{}

	current atomic.Pointer[snapshot]
}

// New creates a stopped poller. The interval is capped at MaxInterval and the per-tick
// timeout defaults to half the interval.
func New(interval, timeout time.Duration, onState StateFunc, onFailure FailureFunc) *Poller {
	if interval <= 0 || interval > MaxInterval {
		interval = DefaultInterval
	}
	if timeout <= 0 || timeout > interval {
		timeout = interval / 2
	}
	return &Poller{
		interval:  interval,
		timeout:   timeout,
		onState:   onState,
		onFailure: onFailure,
	}
}

// Interval returns the effective polling cadence.
func (p *Poller) Interval() time.Duration {
	return p.interval
}

// Start polls src from now on, replacing any previous source, and returns the new epoch.
// The first query happens immediately.
func (p *Poller) Start(src Source) uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopLocked()

	p.epoch++
	epoch := p.epoch

	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.done = make(chan struct{})

	go p.run(ctx, epoch, src, p.done)

	log.Debugf("poller: started epoch %d every %s", epoch, p.interval)
	return epoch
}

// Stop halts polling and invalidates the published snapshot. It does not wait for an
// in-flight query, so it is safe to call from the state and failure callbacks.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
}

func (p *Poller) stopLocked() {
	if p.cancel == nil {
		return
	}
	p.cancel()
	p.cancel = nil
	p.done = nil
	p.epoch++
	p.current.Store(nil)
}

// Wait blocks until the current run has finished or ctx is done.
func (p *Poller) Wait(ctx context.Context) error {
	p.mu.Lock()
	done := p.done
	p.mu.Unlock()
	if done == nil {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Running reports whether a source is being polled.
func (p *Poller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cancel != nil
}

// Epoch returns the identifier of the current run.
func (p *Poller) Epoch() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.epoch
}

// Snapshot returns the last published state of the current run.
func (p *Poller) Snapshot() (backend.TransportState, bool) {
	s := p.current.Load()
	if s == nil || s.epoch != p.Epoch() {
		return backend.TransportState{}, false
	}
	return s.state, true
}

func (p *Poller) isCurrent(epoch uint64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.epoch == epoch && p.cancel != nil
}

func (p *Poller) run(ctx context.Context, epoch uint64, src Source, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		if err := p.tick(ctx, epoch, src); err != nil {
			if ctx.Err() != nil {
				return
			}
			p.fail(epoch, err)
			return
		}

		// a slow query delays the next tick instead of queueing extra ones
		select {
		case <-ctx.Done():
			return
		case <-src.Exited():
			if ctx.Err() == nil {
				p.fail(epoch, backend.ErrBackendProcessExited)
			}
			return
		case <-ticker.C:
		}
	}
}

func (p *Poller) tick(ctx context.Context, epoch uint64, src Source) error {
	queryCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	state, err := src.Query(queryCtx)
	if err != nil {
		return err
	}

	p.mu.Lock()
	if p.epoch != epoch || p.cancel == nil {
		p.mu.Unlock()
		return nil
	}
	p.current.Store(&snapshot{epoch: epoch, state: state})
	p.mu.Unlock()

	if p.onState != nil {
		p.onState(epoch, state)
	}
	return nil
}

// fail ends the run for epoch and reports err from a separate goroutine so the
// callback may take locks held by callers of Stop.
func (p *Poller) fail(epoch uint64, err error) {
	p.mu.Lock()
	if p.epoch != epoch || p.cancel == nil {
		p.mu.Unlock()
		return
	}
	p.stopLocked()
	p.mu.Unlock()

	log.Warnf("poller: epoch %d failed: %v", epoch, err)

	if p.onFailure != nil {
		go p.onFailure(epoch, err)
	}
}
