package deck

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/quickdeck/quickdeck/backend"
	"github.com/quickdeck/quickdeck/engine"
	"github.com/quickdeck/quickdeck/equalizer"
	"github.com/quickdeck/quickdeck/filesystem"
	"github.com/quickdeck/quickdeck/listener"
	"github.com/quickdeck/quickdeck/volume"
	"github.com/samber/lo"
	. "github.com/smartystreets/goconvey/convey"
)

type stubSession struct {
	profile backend.Profile

	mu       sync.Mutex
	state    backend.TransportState
	commands []backend.Command
	exited   chan struct{}
	once     sync.Once
}

func (s *stubSession) Open(_ context.Context, _ string, paused bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = backend.TransportState{Duration: 60, Paused: paused, Volume: 100}
	return nil
}

func (s *stubSession) Send(cmd backend.Command) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commands = append(s.commands, cmd)
	switch cmd.Kind {
	case backend.CmdPlay:
		s.state.Paused = false
	case backend.CmdAddVolume:
		s.state.Volume += int(cmd.Value)
	}
	return nil
}

func (s *stubSession) Query(context.Context) (backend.TransportState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state, nil
}

func (s *stubSession) Close() error {
	s.once.Do(func() { close(s.exited) })
	return nil
}

func (s *stubSession) Exited() <-chan struct{}  { return s.exited }
func (s *stubSession) Profile() backend.Profile { return s.profile }
func (s *stubSession) Surface() backend.Surface { return 0 }
func (s *stubSession) PID() int                 { return 1 }

func (s *stubSession) volumeCommands() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	var deltas []int
	for _, c := range s.commands {
		if c.Kind == backend.CmdAddVolume {
			deltas = append(deltas, int(c.Value))
		}
	}
	return deltas
}

type stubMixer struct {
	mu     sync.Mutex
	deltas []int
}

func (m *stubMixer) Get() (int, error) { return 50, nil }
func (m *stubMixer) Name() string      { return "stub" }

func (m *stubMixer) Adjust(delta int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deltas = append(m.deltas, delta)
	return 50 + delta, nil
}

type stubFactory struct {
	mu       sync.Mutex
	sessions []*stubSession
}

func (f *stubFactory) create(profile backend.Profile, _ backend.Surface) backend.Session {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := &stubSession{profile: profile, exited: make(chan struct{})}
	f.sessions = append(f.sessions, s)
	return s
}

func (f *stubFactory) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sessions)
}

func newDeck(mutate func(*Options)) (*Deck, *stubFactory, *stubMixer) {
	filesystem.SetMemMapFs()
	lo.Must0(filesystem.API().MkdirAll("/library", 0o755))
	lo.Must0(filesystem.API().WriteFile("/library/a.mp3", []byte("media"), 0o644))

	factory := &stubFactory{}
	mixer := &stubMixer{}
	opts := Options{
		Engine: engine.Options{
			PollInterval: 20 * time.Millisecond,
			QueryTimeout: 10 * time.Millisecond,
		},
		Factory: factory.create,
		Router:  volume.NewRouter(0, 0),
		Mixer:   mixer,
	}
	if mutate != nil {
		mutate(&opts)
	}
	return New(opts), factory, mixer
}

func TestWheel(t *testing.T) {
	Convey("Given a deck with a playback surface", t, func() {
		d, factory, mixer := newDeck(nil)
		defer d.Close()
		d.SetSurface(volume.Rect{X: 0, Y: 0, Width: 10, Height: 10})

		Convey("Without a session the surface swallows the wheel", func() {
			decision, err := d.Wheel(volume.WheelEvent{X: 1, Y: 1, Up: true})
			So(err, ShouldBeNil)
			So(decision.Target, ShouldEqual, volume.None)
			So(mixer.deltas, ShouldBeEmpty)
		})

		Convey("Outside the surface the OS volume changes", func() {
			decision, err := d.Wheel(volume.WheelEvent{X: 20, Y: 1, Up: true})
			So(err, ShouldBeNil)
			So(decision.Target, ShouldEqual, volume.System)
			So(mixer.deltas, ShouldResemble, []int{2})
		})

		Convey("With a session the surface adjusts the player", func() {
			So(d.Load(context.Background(), "/library/a.mp3", engine.LoadOptions{Autoplay: true}), ShouldBeNil)
			So(factory.count(), ShouldEqual, 1)

			_, err := d.Wheel(volume.WheelEvent{X: 1, Y: 1, Up: true})
			So(err, ShouldBeNil)
			_, err = d.Wheel(volume.WheelEvent{X: 1, Y: 1})
			So(err, ShouldBeNil)

			So(factory.sessions[0].volumeCommands(), ShouldResemble, []int{5, -5})
			So(mixer.deltas, ShouldBeEmpty)
		})

		Convey("Step changes keep the surface", func() {
			d.SetSteps(10, 4)
			decision, _ := d.Wheel(volume.WheelEvent{X: 20, Y: 1})
			So(decision, ShouldResemble, volume.Decision{Target: volume.System, Delta: -4})

			decision, _ = d.Wheel(volume.WheelEvent{X: 1, Y: 1})
			So(decision.Target, ShouldEqual, volume.None)
		})
	})
}

func TestStart(t *testing.T) {
	Convey("Given a deck with the listener enabled", t, func() {
		d, factory, _ := newDeck(func(o *Options) {
			o.Listener = true
			o.ListenerAddress = "127.0.0.1:0"
		})
		defer d.Close()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		So(d.Start(ctx), ShouldBeNil)
		So(d.ListenerAddr(), ShouldNotBeEmpty)

		Convey("Opened paths are played", func() {
			So(listener.Send(ctx, d.ListenerAddr(), "/library/a.mp3"), ShouldBeNil)
			So(factory.count(), ShouldEqual, 1)
			So(d.State(), ShouldEqual, engine.Playing)
		})

		Convey("Unplayable paths are reported to the sender", func() {
			err := listener.Send(ctx, d.ListenerAddr(), "/library/missing.mp3")
			So(err, ShouldNotBeNil)
			So(factory.count(), ShouldEqual, 0)
		})
	})

	Convey("Given a deck with a non-loopback listener address", t, func() {
		d, _, _ := newDeck(func(o *Options) {
			o.Listener = true
			o.ListenerAddress = "0.0.0.0:0"
		})
		defer d.Close()

		So(d.Start(context.Background()), ShouldNotBeNil)
		So(d.ListenerAddr(), ShouldBeEmpty)
	})
}

func TestEqualizerRestore(t *testing.T) {
	Convey("Given a deck managing the driver file", t, func() {
		const path = "/eq/config.txt"

		Convey("A configured preset is written on start", func() {
			d, _, _ := newDeck(func(o *Options) {
				o.Equalizer = equalizer.NewWriter(path)
				o.Preset = "warm"
			})
			defer d.Close()

			So(d.Start(context.Background()), ShouldBeNil)
			data, err := filesystem.API().ReadFile(path)
			So(err, ShouldBeNil)
			So(strings.Contains(string(data), equalizer.Warm), ShouldBeTrue)
			So(d.Snapshot().Equalizer.Preset, ShouldEqual, equalizer.Warm)
		})

		Convey("Without a preset the file is read back", func() {
			d, _, _ := newDeck(func(o *Options) {
				o.Equalizer = equalizer.NewWriter(path)
			})
			defer d.Close()

			lo.Must0(filesystem.API().MkdirAll("/eq", 0o755))
			lo.Must0(filesystem.API().WriteFile(path, equalizer.Format(lo.Must(equalizer.Preset("vocal"))), 0o644))

			So(d.Start(context.Background()), ShouldBeNil)
			So(d.Snapshot().Equalizer.Preset, ShouldEqual, equalizer.Vocal)
		})

		Convey("A disabled equalizer refuses presets", func() {
			d, _, _ := newDeck(nil)
			defer d.Close()

			_, err := d.ApplyPreset("warm")
			So(errors.Is(err, engine.ErrEqualizerDisabled), ShouldBeTrue)
		})
	})
}
