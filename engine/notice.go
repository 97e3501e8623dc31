package engine

import (
	"time"

	"github.com/quickdeck/quickdeck/backend"
	"github.com/quickdeck/quickdeck/log"
)

// Level is the severity of a Notice.
type Level int

const (
	Info Level = iota
	Warning
	Error
)

func (l Level) String() string {
	switch l {
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return "info"
	}
}

// Notice is a dismissible message for the user.
type Notice struct {
	Level   Level
	Message string
	Err     error
	At      time.Time
}

// Notices delivers notices for the control surface. Notices are dropped when nobody reads them.
func (c *Controller) Notices() <-chan Notice {
	return c.notices
}

func (c *Controller) notify(level Level, message string, err error) {
	n := Notice{Level: level, Message: message, Err: err, At: time.Now()}
	select {
	case c.notices <- n:
	default:
		log.Debugf("notice dropped: %s", message)
	}
}

// LogPresenter only logs reparent requests. It is used when no window system is attached.
type LogPresenter struct{}

func (LogPresenter) Reparent(session backend.Session, from, to backend.Surface) error {
	log.WithFields(log.Fields{
		"pid":  session.PID(),
		"from": uint64(from),
		"to":   uint64(to),
	}).Info("reparent video output")
	return nil
}
