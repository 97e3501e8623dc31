package backend

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

// fakeEngine speaks enough of the mpv IPC protocol for session tests.
type fakeEngine struct {
	socket string
	ln     net.Listener
	exited chan struct{}

	mu       sync.Mutex
	props    map[string]interface{}
	commands [][]interface{}
	hang     bool
	quitOnce sync.Once

	// noDuration makes loaded items report no duration.
	noDuration bool
	// loadLag is how many path reads after loadfile still see the previous item.
	loadLag     int
	pending     string
	pendingLeft int
}

func newFakeEngine(t *testing.T) *fakeEngine {
	dir, err := os.MkdirTemp("", "qd")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.RemoveAll(dir) })

	socket := filepath.Join(dir, "mpv.sock")
	ln, err := net.Listen("unix", socket)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = ln.Close() })

	f := &fakeEngine{
		socket: socket,
		ln:     ln,
		exited: make(chan struct{}),
		props: map[string]interface{}{
			"idle-active": true,
			"pause":       false,
			"volume":      100.0,
			"mute":        false,
			"eof-reached": false,
		},
	}
	go f.serve()
	return f
}

func (f *fakeEngine) serve() {
	for {
		conn, err := f.ln.Accept()
		if err != nil {
			return
		}
		go f.handle(conn)
	}
}

func (f *fakeEngine) handle(conn net.Conn) {
	defer conn.Close()
	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		var req ipcRequest
		if err := json.Unmarshal(scanner.Bytes(), &req); err != nil {
			continue
		}

		f.mu.Lock()
		hang := f.hang
		f.mu.Unlock()
		if hang {
			continue
		}

		data, errText := f.apply(req.Command)

		// unsolicited events are interleaved with replies
		_, _ = conn.Write([]byte(`{"event":"property-change","name":"time-pos"}` + "\n"))

		reply, _ := json.Marshal(ipcResponse{Data: data, Error: errText, RequestID: req.RequestID})
		if _, err := conn.Write(append(reply, '\n')); err != nil {
			return
		}
	}
}

func (f *fakeEngine) apply(command []interface{}) (interface{}, string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.commands = append(f.commands, command)
	name, _ := command[0].(string)

	switch name {
	case "get_property":
		if command[1] == "path" && f.pendingLeft > 0 {
			f.pendingLeft--
			if f.pendingLeft == 0 {
				f.props["path"] = f.pending
			}
		}
		v, ok := f.props[command[1].(string)]
		if !ok {
			return nil, "property unavailable"
		}
		return v, "success"
	case "set_property":
		f.props[command[1].(string)] = command[2]
	case "cycle":
		key := command[1].(string)
		b, _ := f.props[key].(bool)
		f.props[key] = !b
	case "add":
		v, _ := f.props["volume"].(float64)
		f.props["volume"] = v + command[2].(float64)
	case "seek":
		f.props["time-pos"] = command[1]
	case "loadfile":
		path, _ := command[1].(string)
		if f.loadLag > 0 {
			// the previous item keeps reporting until the replace lands
			f.pending, f.pendingLeft = path, f.loadLag+1
			return nil, "success"
		}
		f.props["path"] = path
		f.props["idle-active"] = false
		f.props["time-pos"] = 0.0
		if f.noDuration {
			delete(f.props, "duration")
		} else {
			f.props["duration"] = 120.0
		}
	case "quit":
		f.quitOnce.Do(func() { close(f.exited) })
	case "stop":
		f.props["idle-active"] = true
		delete(f.props, "path")
		delete(f.props, "duration")
		delete(f.props, "time-pos")
	}
	return nil, "success"
}

func (f *fakeEngine) set(key string, value interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.props[key] = value
}

func (f *fakeEngine) configure(apply func(f *fakeEngine)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	apply(f)
}

// pathReads counts get_property path requests received so far.
func (f *fakeEngine) pathReads() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int
	for _, c := range f.commands {
		if c[0] == "get_property" && c[1] == "path" {
			n++
		}
	}
	return n
}

func (f *fakeEngine) setHang(hang bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hang = hang
}

// sent returns the names of the non-query commands received so far.
func (f *fakeEngine) sent() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var names []string
	for _, c := range f.commands {
		if c[0] == "get_property" {
			continue
		}
		parts := make([]string, 0, len(c))
		for _, p := range c {
			b, _ := json.Marshal(p)
			parts = append(parts, strings.Trim(string(b), `"`))
		}
		names = append(names, strings.Join(parts, " "))
	}
	return names
}

// attach wires a session to a fake engine as if spawn had succeeded.
func attach(f *fakeEngine, profile Profile, opts Options) *MPV {
	m := NewMPV(profile, 0, opts)
	m.socketPath = f.socket
	m.exited = f.exited
	m.started.Store(true)
	go m.writeLoop()
	return m
}

func eventually(check func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if check() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return check()
}

func TestBuildArgs(t *testing.T) {
	Convey("Given engine options", t, func() {
		opts := DefaultOptions()
		opts.ExtraArgs = []string{"--cache=no"}

		Convey("The audio profile disables video output", func() {
			args := buildArgs(AudioProfile, 0, "/tmp/s.sock", opts)
			So(args, ShouldContain, "--vo=null")
			So(args, ShouldContain, "--no-video")
			So(args, ShouldContain, "--input-ipc-server=/tmp/s.sock")
			So(args, ShouldContain, "--audio-samplerate=48000")
			So(args, ShouldContain, "--volume-max=150")
			So(args[len(args)-1], ShouldEqual, "--cache=no")
		})

		Convey("The video profile renders into the surface", func() {
			args := buildArgs(VideoProfile, 42, "/tmp/s.sock", opts)
			So(args, ShouldContain, "--wid=42")
			So(args, ShouldNotContain, "--vo=null")
		})

		Convey("The video profile without a surface opens its own window", func() {
			args := buildArgs(VideoProfile, 0, "/tmp/s.sock", opts)
			for _, a := range args {
				So(strings.HasPrefix(a, "--wid="), ShouldBeFalse)
			}
		})
	})
}

func TestCommand(t *testing.T) {
	Convey("Given transport commands", t, func() {
		Convey("Seeks are absolute", func() {
			args, err := SeekTo(12.5).ipcArgs()
			So(err, ShouldBeNil)
			So(args, ShouldResemble, []interface{}{"seek", 12.5, "absolute"})
		})

		Convey("Volume is clamped to the player range", func() {
			args, err := SetVolume(400).ipcArgs()
			So(err, ShouldBeNil)
			So(args[2], ShouldEqual, float64(MaxVolume))

			args, err = SetVolume(-3).ipcArgs()
			So(err, ShouldBeNil)
			So(args[2], ShouldEqual, 0.0)
		})

		Convey("Load next appends to the playlist", func() {
			args, err := LoadNext("/music/b.flac").ipcArgs()
			So(err, ShouldBeNil)
			So(args, ShouldResemble, []interface{}{"loadfile", "/music/b.flac", "append-play"})
		})

		Convey("Unknown kinds are rejected", func() {
			_, err := Command{}.ipcArgs()
			So(err, ShouldNotBeNil)
		})
	})
}

func TestSanitizeMediaTarget(t *testing.T) {
	Convey("Given media targets", t, func() {
		Convey("Local paths are cleaned", func() {
			p, err := sanitizeMediaTarget("  /music/./a.flac ")
			So(err, ShouldBeNil)
			So(p, ShouldEqual, "/music/a.flac")
		})

		Convey("Flag-like and control-character paths are rejected", func() {
			_, err := sanitizeMediaTarget("--script=evil.lua")
			So(err, ShouldNotBeNil)
			_, err = sanitizeMediaTarget("/a\nb")
			So(err, ShouldNotBeNil)
			_, err = sanitizeMediaTarget("")
			So(err, ShouldNotBeNil)
		})

		Convey("Only known schemes are accepted", func() {
			_, err := sanitizeMediaTarget("file:///music/a.flac")
			So(err, ShouldBeNil)
			_, err = sanitizeMediaTarget("smb://host/a.flac")
			So(err, ShouldNotBeNil)
		})
	})
}

func TestMPVSession(t *testing.T) {
	Convey("Given a session attached to a running engine", t, func() {
		engine := newFakeEngine(t)
		opts := DefaultOptions()
		opts.QueryTimeout = 200 * time.Millisecond
		opts.ShutdownGrace = 200 * time.Millisecond
		m := attach(engine, AudioProfile, opts)
		defer m.Close()

		Convey("Query on an idle engine reports zeros for unavailable properties", func() {
			state, err := m.Query(context.Background())
			So(err, ShouldBeNil)
			So(state.Idle, ShouldBeTrue)
			So(state.Position, ShouldEqual, 0)
			So(state.Duration, ShouldEqual, 0)
			So(state.Volume, ShouldEqual, 100)
		})

		Convey("Open loads the item paused and waits until the engine reports it", func() {
			err := m.Open(context.Background(), "/music/a.flac", true)
			So(err, ShouldBeNil)

			state, err := m.Query(context.Background())
			So(err, ShouldBeNil)
			So(state.Idle, ShouldBeFalse)
			So(state.Paused, ShouldBeTrue)
			So(state.Duration, ShouldEqual, 120)

			So(engine.sent(), ShouldResemble, []string{
				"set_property pause true",
				"loadfile /music/a.flac replace",
			})
		})

		Convey("Open accepts an item whose duration is unknown", func() {
			engine.configure(func(f *fakeEngine) { f.noDuration = true })

			start := time.Now()
			err := m.Open(context.Background(), "/music/radio.ogg", false)
			So(err, ShouldBeNil)
			So(time.Since(start), ShouldBeLessThan, opts.StartupTimeout)

			state, err := m.Query(context.Background())
			So(err, ShouldBeNil)
			So(state.Idle, ShouldBeFalse)
			So(state.Duration, ShouldEqual, 0)
		})

		Convey("Open on a reused session waits for the new item, not the old duration", func() {
			So(m.Open(context.Background(), "/music/a.flac", false), ShouldBeNil)
			before := engine.pathReads()

			engine.configure(func(f *fakeEngine) { f.loadLag = 3 })
			So(m.Open(context.Background(), "/music/b.flac", false), ShouldBeNil)

			// the old item's duration was readable the whole time
			So(engine.pathReads()-before, ShouldBeGreaterThanOrEqualTo, 4)
			engine.mu.Lock()
			So(engine.props["path"], ShouldEqual, "/music/b.flac")
			engine.mu.Unlock()
		})

		Convey("Sent commands are applied in order", func() {
			So(m.Send(SeekTo(30)), ShouldBeNil)
			So(m.Send(TogglePause()), ShouldBeNil)
			So(m.Send(AddVolume(5)), ShouldBeNil)

			So(eventually(func() bool { return len(engine.sent()) == 3 }), ShouldBeTrue)
			So(engine.sent(), ShouldResemble, []string{
				"seek 30 absolute",
				"cycle pause",
				"add volume 5",
			})

			state, err := m.Query(context.Background())
			So(err, ShouldBeNil)
			So(state.Position, ShouldEqual, 30)
			So(state.Paused, ShouldBeTrue)
			So(state.Volume, ShouldEqual, 105)
		})

		Convey("A hung engine makes Query time out", func() {
			engine.setHang(true)
			_, err := m.Query(context.Background())
			So(errors.Is(err, ErrBackendCommandTimeout), ShouldBeTrue)
			So(IsFatal(err), ShouldBeTrue)
		})

		Convey("An exited engine is reported as such", func() {
			engine.quitOnce.Do(func() { close(engine.exited) })
			_, err := m.Query(context.Background())
			So(errors.Is(err, ErrBackendProcessExited), ShouldBeTrue)
			So(errors.Is(m.Send(Play()), ErrBackendProcessExited), ShouldBeTrue)
		})

		Convey("Close quits the engine and is idempotent", func() {
			So(m.Close(), ShouldBeNil)
			So(m.Close(), ShouldBeNil)

			select {
			case <-m.Exited():
			case <-time.After(time.Second):
				So("engine still running", ShouldBeEmpty)
			}

			So(errors.Is(m.Send(Play()), ErrSessionClosed), ShouldBeTrue)
			_, err := m.Query(context.Background())
			So(errors.Is(err, ErrSessionClosed), ShouldBeTrue)
		})
	})

	Convey("Given a session that was never opened", t, func() {
		m := NewMPV(VideoProfile, 7, Options{Binary: "quickdeck-missing-engine"})

		Convey("Send is refused", func() {
			So(errors.Is(m.Send(Play()), ErrSessionClosed), ShouldBeTrue)
		})

		Convey("Query reports an idle engine", func() {
			state, err := m.Query(context.Background())
			So(err, ShouldBeNil)
			So(state.Idle, ShouldBeTrue)
		})

		Convey("Open fails to spawn a missing binary", func() {
			err := m.Open(context.Background(), "/videos/a.mkv", false)
			So(errors.Is(err, ErrBackendSpawn), ShouldBeTrue)
			So(m.PID(), ShouldEqual, 0)
		})

		Convey("Close succeeds without a process", func() {
			So(m.Close(), ShouldBeNil)
			So(m.Surface(), ShouldEqual, Surface(7))
			So(m.Profile(), ShouldEqual, VideoProfile)
		})
	})
}

func TestTransportState(t *testing.T) {
	Convey("Remaining is bounded at zero", t, func() {
		So(TransportState{Position: 10, Duration: 40}.Remaining(), ShouldEqual, 30*time.Second)
		So(TransportState{Position: 50, Duration: 40}.Remaining(), ShouldEqual, 0)
		So(TransportState{}.Remaining(), ShouldEqual, 0)
	})
}
