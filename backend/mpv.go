package backend

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/quickdeck/quickdeck/log"
)

const (
	socketPollDelay = 50 * time.Millisecond
	loadPollDelay   = 50 * time.Millisecond
)

// MPV is a Session backed by an mpv process driven over its JSON IPC socket.
// The process is started lazily by the first Open and is never restarted.
type MPV struct {
	profile Profile
	surface Surface
	opts    Options

	mu         sync.Mutex // guards startup and shutdown
	socketPath string
	cmd        *exec.Cmd
	started    atomic.Bool
	exited     chan struct{}

	sendMu sync.RWMutex // guards closed against concurrent Send
	closed bool
	queue  chan Command
	done   chan struct{}
	writer chan struct{}
}

// NewMPV creates a session for profile. No process is started until Open.
func NewMPV(profile Profile, surface Surface, opts Options) *MPV {
	opts = opts.withDefaults()
	return &MPV{
		profile: profile,
		surface: surface,
		opts:    opts,
		exited:  make(chan struct{}),
		queue:   make(chan Command, opts.QueueSize),
		done:    make(chan struct{}),
		writer:  make(chan struct{}),
	}
}

func (m *MPV) Profile() Profile { return m.profile }
func (m *MPV) Surface() Surface { return m.surface }

// Exited returns a channel that is closed when the mpv process exits.
func (m *MPV) Exited() <-chan struct{} {
	return m.exited
}

// PID returns the process id, or zero before the process is started.
func (m *MPV) PID() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cmd == nil || m.cmd.Process == nil {
		return 0
	}
	return m.cmd.Process.Pid
}

// Socket returns the IPC socket path.
func (m *MPV) Socket() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.socketPath
}

// Open starts mpv if needed, then replaces the current item with path and waits
// until mpv reports path as the loaded item.
func (m *MPV) Open(ctx context.Context, path string, paused bool) error {
	target, err := sanitizeMediaTarget(path)
	if err != nil {
		return fmt.Errorf("invalid media target: %w", err)
	}

	if err := m.ensureStarted(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, m.opts.StartupTimeout)
	defer cancel()

	conn, err := dialIPC(ctx, m.socketPath)
	if err != nil {
		return m.classify(ctx, err)
	}
	defer conn.Close()

	// pause first so the item never produces sound before the caller wants it to
	if _, err := conn.call("set_property", "pause", paused); err != nil {
		return m.classify(ctx, err)
	}
	if _, err := conn.call("loadfile", target, "replace"); err != nil {
		return m.classify(ctx, err)
	}

	// loadfile replace is applied asynchronously: until path reports target, every other
	// property may still describe the previous item
	for {
		current, err := conn.text("path")
		if err != nil {
			return m.classify(ctx, err)
		}
		if current == target {
			// duration stays unknown for streams and items mpv cannot measure yet
			duration, _ := conn.float("duration")
			log.WithFields(log.Fields{
				"profile":  m.profile.String(),
				"path":     target,
				"duration": duration,
			}).Debug("item loaded")
			return nil
		}

		select {
		case <-ctx.Done():
			return m.classify(ctx, ctx.Err())
		case <-m.exited:
			return fmt.Errorf("%w: while loading %s", ErrBackendProcessExited, target)
		case <-time.After(loadPollDelay):
		}
	}
}

// Send enqueues cmd for the writer goroutine.
func (m *MPV) Send(cmd Command) error {
	m.sendMu.RLock()
	defer m.sendMu.RUnlock()

	if m.closed {
		return ErrSessionClosed
	}

	if !m.started.Load() {
		return fmt.Errorf("%w: not started", ErrSessionClosed)
	}

	select {
	case <-m.exited:
		return ErrBackendProcessExited
	default:
	}

	select {
	case m.queue <- cmd:
		return nil
	default:
		return ErrCommandQueueFull
	}
}

// Query reads the transport properties over a fresh connection.
func (m *MPV) Query(ctx context.Context) (TransportState, error) {
	var state TransportState

	m.sendMu.RLock()
	closed := m.closed
	m.sendMu.RUnlock()
	if closed {
		return state, ErrSessionClosed
	}

	select {
	case <-m.exited:
		return state, ErrBackendProcessExited
	default:
	}

	// socketPath is written before started is set and never changes afterwards
	if !m.started.Load() {
		state.Idle = true
		return state, nil
	}

	ctx, cancel := context.WithTimeout(ctx, m.opts.QueryTimeout)
	defer cancel()

	conn, err := dialIPC(ctx, m.socketPath)
	if err != nil {
		return state, m.classify(ctx, err)
	}
	defer conn.Close()

	read := func(name string, into interface{}) error {
		var err error
		switch v := into.(type) {
		case *float64:
			*v, err = conn.float(name)
		case *bool:
			*v, err = conn.bool(name)
		}
		if err != nil {
			return m.classify(ctx, fmt.Errorf("%s: %w", name, err))
		}
		return nil
	}

	var volume float64
	for _, p := range []struct {
		name string
		into interface{}
	}{
		{"idle-active", &state.Idle},
		{"time-pos", &state.Position},
		{"duration", &state.Duration},
		{"pause", &state.Paused},
		{"volume", &volume},
		{"mute", &state.Muted},
		{"eof-reached", &state.Ended},
	} {
		if err := read(p.name, p.into); err != nil {
			return TransportState{}, err
		}
	}
	state.Volume = int(clampVolume(volume) + 0.5)

	return state, nil
}

// Close asks mpv to quit and kills it if it is still alive after the grace period.
func (m *MPV) Close() error {
	m.sendMu.Lock()
	if m.closed {
		m.sendMu.Unlock()
		return nil
	}
	m.closed = true
	close(m.done)
	m.sendMu.Unlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.started.Load() {
		return nil
	}

	<-m.writer

	select {
	case <-m.exited:
	default:
		ctx, cancel := context.WithTimeout(context.Background(), m.opts.QueryTimeout)
		if conn, err := dialIPC(ctx, m.socketPath); err == nil {
			// mpv may close the socket before replying
			_, _ = conn.call("quit")
			_ = conn.Close()
		}
		cancel()

		select {
		case <-m.exited:
		case <-time.After(m.opts.ShutdownGrace):
			log.Warnf("mpv (%s) did not quit within %s, killing", m.profile, m.opts.ShutdownGrace)
			_ = killProcess(m.cmd)
		}
	}

	if err := os.Remove(m.socketPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Debugf("remove socket %s: %v", m.socketPath, err)
	}

	return nil
}

func (m *MPV) ensureStarted() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sendMu.RLock()
	closed := m.closed
	m.sendMu.RUnlock()
	if closed {
		return ErrSessionClosed
	}

	if m.started.Load() {
		select {
		case <-m.exited:
			return ErrBackendProcessExited
		default:
			return nil
		}
	}

	return m.spawn()
}

// spawn starts the process and waits for its socket. Callers hold m.mu.
func (m *MPV) spawn() error {
	binary, err := exec.LookPath(m.opts.Binary)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBackendSpawn, err)
	}

	randomBytes := make([]byte, 4)
	if _, err := rand.Read(randomBytes); err != nil {
		return fmt.Errorf("%w: generate socket name: %v", ErrBackendSpawn, err)
	}

	dir := m.opts.SocketDir
	if dir == "" {
		dir = os.TempDir()
	}
	m.socketPath = filepath.Join(dir, fmt.Sprintf("quickdeck-%s-%x.sock", m.profile, randomBytes))

	cmd := exec.Command(binary, buildArgs(m.profile, m.surface, m.socketPath, m.opts)...)
	cmd.SysProcAttr = sysProcAttr()
	cmd.Stdout = nil
	cmd.Stderr = nil
	cmd.Stdin = nil

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("%w: %v", ErrBackendSpawn, err)
	}
	m.cmd = cmd

	if m.profile == AudioProfile {
		if err := raisePriority(cmd.Process.Pid); err != nil {
			log.Debugf("raise mpv priority: %v", err)
		}
	}

	go func() {
		err := cmd.Wait()
		log.WithFields(log.Fields{
			"profile": m.profile.String(),
			"pid":     cmd.Process.Pid,
		}).Debugf("mpv exited: %v", err)
		close(m.exited)
	}()

	if err := m.waitForSocket(); err != nil {
		select {
		case <-m.exited:
		default:
			log.Warnf("killing mpv: socket never became ready")
			_ = killProcess(cmd)
		}
		return fmt.Errorf("%w: %v", ErrBackendSpawn, err)
	}

	m.started.Store(true)
	go m.writeLoop()

	log.WithFields(log.Fields{
		"profile": m.profile.String(),
		"pid":     cmd.Process.Pid,
		"socket":  m.socketPath,
	}).Info("mpv started")

	return nil
}

// waitForSocket polls until the socket accepts connections or the startup bound elapses.
func (m *MPV) waitForSocket() error {
	deadline := time.Now().Add(m.opts.StartupTimeout)
	for time.Now().Before(deadline) {
		select {
		case <-m.exited:
			return fmt.Errorf("mpv exited before socket was ready")
		case <-time.After(socketPollDelay):
		}

		ctx, cancel := context.WithTimeout(context.Background(), socketPollDelay)
		conn, err := dialIPC(ctx, m.socketPath)
		cancel()
		if err == nil {
			_ = conn.Close()
			return nil
		}
	}
	return fmt.Errorf("socket %s not ready after %s", m.socketPath, m.opts.StartupTimeout)
}

// writeLoop applies queued commands in order over one reused connection.
func (m *MPV) writeLoop() {
	defer close(m.writer)

	var conn *ipcConn
	defer func() {
		if conn != nil {
			_ = conn.Close()
		}
	}()

	for {
		var cmd Command
		select {
		case <-m.done:
			return
		case <-m.exited:
			return
		case cmd = <-m.queue:
		}

		args, err := cmd.ipcArgs()
		if err != nil {
			log.Warn(err)
			continue
		}

		if conn == nil {
			ctx, cancel := context.WithTimeout(context.Background(), m.opts.QueryTimeout)
			conn, err = dialIPC(ctx, m.socketPath)
			cancel()
			if err != nil {
				log.Warnf("mpv command %s dropped: %v", cmd, err)
				conn = nil
				continue
			}
		}

		_ = conn.conn.SetDeadline(time.Now().Add(m.opts.QueryTimeout))
		if _, err := conn.call(args...); err != nil {
			if isReplyError(err) {
				log.Debugf("mpv command %s: %v", cmd, err)
				continue
			}
			log.Warnf("mpv command %s failed: %v", cmd, err)
			_ = conn.Close()
			conn = nil
		}
	}
}

// classify maps a transport error onto the backend error taxonomy.
func (m *MPV) classify(ctx context.Context, err error) error {
	select {
	case <-m.exited:
		return fmt.Errorf("%w: %v", ErrBackendProcessExited, err)
	default:
	}

	if errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled) {
		return context.Canceled
	}
	if isTimeout(err) {
		return fmt.Errorf("%w: %v", ErrBackendCommandTimeout, err)
	}
	return err
}

// buildArgs returns the mpv command line for a profile.
func buildArgs(profile Profile, surface Surface, socket string, opts Options) []string {
	args := []string{
		"--idle=yes",
		"--keep-open=yes",
		"--no-terminal",
		"--really-quiet",
		"--input-ipc-server=" + socket,
		"--volume=" + strconv.Itoa(opts.Volume),
		"--volume-max=" + strconv.Itoa(MaxVolume),
		"--audio-samplerate=48000",
		"--audio-format=float",
		"--audio-channels=stereo",
		"--audio-exclusive=yes",
		"--audio-buffer=1.0",
		"--gapless-audio=yes",
		"--osd-level=0",
		"--input-default-bindings=no",
		"--input-vo-keyboard=no",
	}

	switch profile {
	case AudioProfile:
		args = append(args, "--vo=null", "--no-video", "--force-window=no")
	case VideoProfile:
		if surface != 0 {
			args = append(args, "--wid="+strconv.FormatUint(uint64(surface), 10))
		}
		args = append(args, "--hwdec=auto-safe", "--vo=gpu")
	}

	return append(args, opts.ExtraArgs...)
}

// sanitizeMediaTarget validates that a path is safe to hand to mpv.
func sanitizeMediaTarget(target string) (string, error) {
	t := strings.TrimSpace(target)
	if t == "" {
		return "", fmt.Errorf("empty path")
	}

	if strings.ContainsAny(t, "\x00\n\r") {
		return "", fmt.Errorf("invalid control characters in path")
	}

	// a leading dash would be parsed as an option by loadfile
	if strings.HasPrefix(t, "-") {
		return "", fmt.Errorf("path must not start with '-'")
	}

	if strings.Contains(t, "://") {
		u, err := url.Parse(t)
		if err != nil {
			return "", fmt.Errorf("invalid URL: %w", err)
		}
		switch strings.ToLower(u.Scheme) {
		case "file", "http", "https":
			return t, nil
		default:
			return "", fmt.Errorf("unsupported URL scheme: %s", u.Scheme)
		}
	}

	return filepath.Clean(t), nil
}
