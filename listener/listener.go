// Package listener accepts "open with" requests from other processes on a loopback port.
//
// The protocol is one line per connection: the client writes a file path terminated by a
// newline and the server answers "OK" or "ERR <message>" once the path has been handed over.
package listener

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/quickdeck/quickdeck/log"
	"golang.org/x/net/netutil"
)

const (
	DefaultAddress        = "127.0.0.1:47321"
	DefaultMaxConnections = 4

	readTimeout   = 5 * time.Second
	writeTimeout  = 5 * time.Second
	maxLineLength = 32 * 1024
)

var ErrNotLoopback = errors.New("listener address must be a loopback address")

// Handler receives each requested path.
type Handler func(path string) error

// Server is the loopback "open with" endpoint.
type Server struct {
	address  string
	maxConns int
	handler  Handler

	mu     sync.Mutex
	ln     net.Listener
	closed bool
	wg     sync.WaitGroup
}

// New validates address and returns a server that forwards paths to handler.
func New(address string, maxConns int, handler Handler) (*Server, error) {
	if address == "" {
		address = DefaultAddress
	}
	if err := ValidateAddress(address); err != nil {
		return nil, err
	}
	if maxConns <= 0 {
		maxConns = DefaultMaxConnections
	}
	return &Server{address: address, maxConns: maxConns, handler: handler}, nil
}

// ValidateAddress rejects addresses other processes on the network could reach.
func ValidateAddress(address string) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return fmt.Errorf("listener address %q: %w", address, err)
	}
	if host == "localhost" {
		return nil
	}
	ip := net.ParseIP(host)
	if ip == nil || !ip.IsLoopback() {
		return fmt.Errorf("%w: %s", ErrNotLoopback, address)
	}
	return nil
}

// Listen binds the port. Serve must be called afterwards.
func (s *Server) Listen() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ln, err := net.Listen("tcp", s.address)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.address, err)
	}
	s.ln = netutil.LimitListener(ln, s.maxConns)
	log.Infof("listener: accepting paths on %s", ln.Addr())
	return nil
}

// Addr returns the bound address, or nil before Listen.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// Serve accepts connections until ctx is done or Close is called.
func (s *Server) Serve(ctx context.Context) error {
	s.mu.Lock()
	ln := s.ln
	s.mu.Unlock()
	if ln == nil {
		return errors.New("listener: Serve called before Listen")
	}

	stop := context.AfterFunc(ctx, func() { _ = s.Close() })
	defer stop()

	for {
		conn, err := ln.Accept()
		if err != nil {
			s.mu.Lock()
			closed := s.closed
			s.mu.Unlock()
			if closed {
				s.wg.Wait()
				return nil
			}
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				continue
			}
			return fmt.Errorf("accept: %w", err)
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handle(conn)
		}()
	}
}

// Close stops accepting connections. In-flight requests finish.
func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.ln == nil {
		s.closed = true
		return nil
	}
	s.closed = true
	return s.ln.Close()
}

func (s *Server) handle(conn net.Conn) {
	defer conn.Close()

	_ = conn.SetReadDeadline(time.Now().Add(readTimeout))

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 4096), maxLineLength)

	var path string
	for scanner.Scan() {
		if path = unquote(strings.TrimSpace(scanner.Text())); path != "" {
			break
		}
	}

	if path == "" {
		if err := scanner.Err(); err != nil {
			log.Debugf("listener: read from %s: %v", conn.RemoteAddr(), err)
			reply(conn, fmt.Errorf("read: %w", err))
		}
		return
	}

	log.WithFields(log.Fields{"remote": conn.RemoteAddr().String(), "path": path}).Info("listener: open request")
	reply(conn, s.handler(path))
}

func reply(conn net.Conn, err error) {
	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))

	answer := "OK\n"
	if err != nil {
		answer = "ERR " + strings.ReplaceAll(err.Error(), "\n", " ") + "\n"
	}
	if _, werr := conn.Write([]byte(answer)); werr != nil {
		log.Debugf("listener: reply: %v", werr)
	}
}

// unquote strips one pair of surrounding quotes added by shells and file managers.
func unquote(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}

// Send asks the instance listening on address to open path.
func Send(ctx context.Context, address, path string) error {
	if address == "" {
		address = DefaultAddress
	}
	if strings.ContainsAny(path, "\r\n") {
		return errors.New("path must be a single line")
	}

	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return fmt.Errorf("no running instance on %s: %w", address, err)
	}
	defer conn.Close()

	deadline := time.Now().Add(readTimeout + writeTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = conn.SetDeadline(deadline)

	if _, err := fmt.Fprintf(conn, "%s\n", path); err != nil {
		return fmt.Errorf("send: %w", err)
	}

	line, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		return fmt.Errorf("read reply: %w", err)
	}

	line = strings.TrimSpace(line)
	switch {
	case line == "OK":
		return nil
	case strings.HasPrefix(line, "ERR "):
		return errors.New(strings.TrimPrefix(line, "ERR "))
	default:
		return fmt.Errorf("unexpected reply %q", line)
	}
}
