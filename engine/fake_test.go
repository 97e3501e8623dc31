package engine

import (
	"context"
	"sync"
	"time"

	"github.com/quickdeck/quickdeck/backend"
	"github.com/quickdeck/quickdeck/equalizer"
	"github.com/quickdeck/quickdeck/media"
)

// fakeSession is an in-memory engine that applies commands to its transport state.
type fakeSession struct {
	profile backend.Profile
	surface backend.Surface

	mu        sync.Mutex
	state     backend.TransportState
	opened    []string
	commands  []backend.Command
	closed    bool
	exited    chan struct{}
	openErr   error
	openGate  chan struct{}
	hang      bool
	queryGate chan struct{}
	closeOnce sync.Once
}

func (s *fakeSession) Open(ctx context.Context, path string, paused bool) error {
	s.mu.Lock()
	gate, err := s.openGate, s.openErr
	s.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			s.mu.Lock()
			s.openGate = nil
			s.mu.Unlock()
			return ctx.Err()
		}
	}
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.opened = append(s.opened, path)
	s.state.Position = 0
	s.state.Duration = 100
	s.state.Paused = paused
	s.state.Ended = false
	s.state.Idle = false
	if s.state.Volume == 0 {
		s.state.Volume = 100
	}
	return nil
}

func (s *fakeSession) Send(cmd backend.Command) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return backend.ErrSessionClosed
	}
	s.commands = append(s.commands, cmd)

	switch cmd.Kind {
	case backend.CmdPlay:
		s.state.Paused = false
	case backend.CmdPause:
		s.state.Paused = true
	case backend.CmdTogglePause:
		s.state.Paused = !s.state.Paused
	case backend.CmdSeek:
		s.state.Position = cmd.Value
	case backend.CmdSetVolume:
		s.state.Volume = int(cmd.Value)
	case backend.CmdAddVolume:
		s.state.Volume = min(max(s.state.Volume+int(cmd.Value), 0), backend.MaxVolume)
	case backend.CmdToggleMute:
		s.state.Muted = !s.state.Muted
	case backend.CmdStop:
		s.state = backend.TransportState{Idle: true, Volume: s.state.Volume}
	}
	return nil
}

func (s *fakeSession) Query(ctx context.Context) (backend.TransportState, error) {
	s.mu.Lock()
	gate := s.queryGate
	s.mu.Unlock()
	if gate != nil {
		// held queries outlive their deadline, like a slow first poll
		<-gate
	}

	s.mu.Lock()
	hang, state := s.hang, s.state
	s.mu.Unlock()

	if hang {
		<-ctx.Done()
		return backend.TransportState{}, backend.ErrBackendCommandTimeout
	}
	return state, nil
}

func (s *fakeSession) Close() error {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()
		close(s.exited)
	})
	return nil
}

func (s *fakeSession) Exited() <-chan struct{}  { return s.exited }
func (s *fakeSession) Profile() backend.Profile { return s.profile }
func (s *fakeSession) Surface() backend.Surface { return s.surface }
func (s *fakeSession) PID() int                 { return 4242 }

func (s *fakeSession) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *fakeSession) kinds() []backend.CommandKind {
	s.mu.Lock()
	defer s.mu.Unlock()
	kinds := make([]backend.CommandKind, 0, len(s.commands))
	for _, c := range s.commands {
		kinds = append(kinds, c.Kind)
	}
	return kinds
}

func (s *fakeSession) set(update func(*backend.TransportState)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	update(&s.state)
}

// fakeFactory records every session it creates.
type fakeFactory struct {
	mu       sync.Mutex
	sessions []*fakeSession
	prepare  func(*fakeSession)
}

func (f *fakeFactory) create(profile backend.Profile, surface backend.Surface) backend.Session {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := &fakeSession{profile: profile, surface: surface, exited: make(chan struct{})}
	if f.prepare != nil {
		f.prepare(s)
	}
	f.sessions = append(f.sessions, s)
	return s
}

func (f *fakeFactory) created() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sessions)
}

func (f *fakeFactory) last() *fakeSession {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sessions[len(f.sessions)-1]
}

// live returns the sessions that have not been closed.
func (f *fakeFactory) live() []*fakeSession {
	f.mu.Lock()
	defer f.mu.Unlock()
	var live []*fakeSession
	for _, s := range f.sessions {
		if !s.isClosed() {
			live = append(live, s)
		}
	}
	return live
}

type fakePresenter struct {
	mu    sync.Mutex
	moves [][2]backend.Surface
	err   error

	// entered is signalled when Reparent starts; release holds it until closed
	entered chan struct{}
	release chan struct{}
}

func (p *fakePresenter) Reparent(_ backend.Session, from, to backend.Surface) error {
	p.mu.Lock()
	entered, release := p.entered, p.release
	p.mu.Unlock()
	if entered != nil {
		entered <- struct{}{}
	}
	if release != nil {
		<-release
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.moves = append(p.moves, [2]backend.Surface{from, to})
	return nil
}

type fakeEqualizer struct {
	mu      sync.Mutex
	current equalizer.Profile
	written []equalizer.Profile
	err     error
}

func (e *fakeEqualizer) Write(p equalizer.Profile) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.err != nil {
		return e.err
	}
	e.current = p
	e.written = append(e.written, p)
	return nil
}

func (e *fakeEqualizer) Current() equalizer.Profile {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current
}

type fakeHistory struct {
	mu      sync.Mutex
	entries map[string]float64
}

func (h *fakeHistory) Save(item *media.Item, position float64) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.entries == nil {
		h.entries = make(map[string]float64)
	}
	h.entries[item.Path] = position
	return nil
}

func (h *fakeHistory) get(path string) (float64, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	p, ok := h.entries[path]
	return p, ok
}

// transitions records state changes.
type transitions struct {
	mu    sync.Mutex
	steps []State
}

func (t *transitions) record(_, to State) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.steps = append(t.steps, to)
}

func (t *transitions) all() []State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]State(nil), t.steps...)
}

func eventually(check func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if check() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return check()
}
