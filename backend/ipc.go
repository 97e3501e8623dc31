package backend

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"time"
)

// ipcRequest is the JSON structure sent to mpv's IPC socket.
type ipcRequest struct {
	Command   []interface{} `json:"command"`
	RequestID int64         `json:"request_id"`
}

// ipcResponse is a single line received from mpv's IPC socket. Lines carrying Event are
// broadcast notifications and are skipped: this client only ever reads replies.
type ipcResponse struct {
	Data      interface{} `json:"data"`
	Error     string      `json:"error"`
	RequestID int64       `json:"request_id"`
	Event     string      `json:"event"`
}

const (
	dialRetries = 3
	retryDelay  = 100 * time.Millisecond
)

var errPropertyUnavailable = errors.New("property unavailable")

// replyError is an error reported by the engine itself. The connection stays usable.
type replyError string

func (e replyError) Error() string {
	return "mpv error: " + string(e)
}

// ipcConn is one connection to the engine socket. Requests on a connection are strictly sequential.
type ipcConn struct {
	conn   net.Conn
	reader *bufio.Reader
	nextID int64
}

// dialIPC connects to socketPath, retrying transient failures. The context deadline, if any,
// becomes the connection deadline so every read and write is bounded.
func dialIPC(ctx context.Context, socketPath string) (*ipcConn, error) {
	var (
		dialer  net.Dialer
		lastErr error
	)

	for attempt := 0; attempt < dialRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(retryDelay):
			}
		}

		conn, err := dialer.DialContext(ctx, "unix", socketPath)
		if err != nil {
			lastErr = err
			continue
		}

		if deadline, ok := ctx.Deadline(); ok {
			if err := conn.SetDeadline(deadline); err != nil {
				conn.Close()
				return nil, fmt.Errorf("set deadline: %w", err)
			}
		}

		return &ipcConn{conn: conn, reader: bufio.NewReader(conn)}, nil
	}

	return nil, fmt.Errorf("connect after %d attempts: %w", dialRetries, lastErr)
}

// call sends one command and waits for its reply.
func (c *ipcConn) call(command ...interface{}) (interface{}, error) {
	c.nextID++
	id := c.nextID

	payload, err := json.Marshal(ipcRequest{Command: command, RequestID: id})
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}

	// mpv requires newline-delimited JSON
	if _, err := c.conn.Write(append(payload, '\n')); err != nil {
		return nil, fmt.Errorf("write: %w", err)
	}

	for {
		line, err := c.reader.ReadBytes('\n')
		if err != nil {
			return nil, fmt.Errorf("read: %w", err)
		}

		var resp ipcResponse
		if err := json.Unmarshal(line, &resp); err != nil {
			continue
		}

		if resp.Event != "" || resp.RequestID != id {
			continue
		}

		switch resp.Error {
		case "", "success":
			return resp.Data, nil
		case "property unavailable":
			return nil, errPropertyUnavailable
		default:
			return nil, replyError(resp.Error)
		}
	}
}

// property reads name, mapping "property unavailable" to a nil value.
func (c *ipcConn) property(name string) (interface{}, error) {
	data, err := c.call("get_property", name)
	if errors.Is(err, errPropertyUnavailable) {
		return nil, nil
	}
	return data, err
}

func (c *ipcConn) float(name string) (float64, error) {
	data, err := c.property(name)
	if err != nil || data == nil {
		return 0, err
	}
	val, ok := data.(float64)
	if !ok {
		return 0, fmt.Errorf("property %s: expected number, got %T", name, data)
	}
	return val, nil
}

func (c *ipcConn) text(name string) (string, error) {
	data, err := c.property(name)
	if err != nil || data == nil {
		return "", err
	}
	val, ok := data.(string)
	if !ok {
		return "", fmt.Errorf("property %s: expected string, got %T", name, data)
	}
	return val, nil
}

func (c *ipcConn) bool(name string) (bool, error) {
	data, err := c.property(name)
	if err != nil || data == nil {
		return false, err
	}
	val, ok := data.(bool)
	if !ok {
		return false, fmt.Errorf("property %s: expected bool, got %T", name, data)
	}
	return val, nil
}

func (c *ipcConn) Close() error {
	return c.conn.Close()
}

// isReplyError reports whether err was answered by the engine rather than caused by the transport.
func isReplyError(err error) bool {
	var re replyError
	return errors.As(err, &re) || errors.Is(err, errPropertyUnavailable)
}

// isTimeout reports whether err came from an elapsed deadline.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, ErrBackendCommandTimeout) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
