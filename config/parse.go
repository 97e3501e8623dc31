package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"

	"github.com/quickdeck/quickdeck/backend"
	"github.com/quickdeck/quickdeck/icon"
	"github.com/quickdeck/quickdeck/key"
	"github.com/samber/lo"
)

// ErrInvalidValue is returned when a value cannot be parsed for its field or is out of range.
var ErrInvalidValue = errors.New("invalid config value")

type check func(v any) error

func between(low, high int) check {
	return func(v any) error {
		if n := v.(int); n < low || n > high {
			return fmt.Errorf("must be within [%d, %d]", low, high)
		}
		return nil
	}
}

func oneOf(allowed ...string) check {
	return func(v any) error {
		if !lo.Contains(allowed, v.(string)) {
			return fmt.Errorf("must be one of %v", allowed)
		}
		return nil
	}
}

// checks holds range constraints for the keys whose values feed the engine directly.
var checks = map[string]check{
	key.PlayerVolume:           between(0, backend.MaxVolume),
	key.PlayerPollInterval:     between(50, 1000),
	key.PlayerStartupTimeout:   between(100, 60_000),
	key.PlayerShutdownGrace:    between(0, 60_000),
	key.PlayerQueryTimeout:     between(50, 10_000),
	key.VolumePlayerStep:       between(1, 50),
	key.VolumeSystemStep:       between(1, 50),
	key.ListenerMaxConnections: between(1, 64),
	key.IconsVariant:           oneOf(icon.AvailableVariants()...),
	key.LogsLevel:              oneOf("panic", "fatal", "error", "warn", "warning", "info", "debug", "trace"),
	key.ListenerAddress: func(v any) error {
		_, _, err := net.SplitHostPort(v.(string))
		return err
	},
}

// Parse converts raw command line values into the type of the field's default and checks it.
func (f *Field) Parse(raw []string) (any, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: %s: no value", ErrInvalidValue, f.Key)
	}

	var (
		v   any
		err error
	)
	switch f.Value.(type) {
	case string:
		v = raw[0]
	case int:
		v, err = strconv.Atoi(raw[0])
	case bool:
		v, err = strconv.ParseBool(raw[0])
	case []string:
		v = raw
	default:
		err = fmt.Errorf("unsupported type %T", f.Value)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidValue, f.Key, err)
	}

	if c, ok := checks[f.Key]; ok {
		if err := c(v); err != nil {
			return nil, fmt.Errorf("%w: %s %v", ErrInvalidValue, f.Key, err)
		}
	}
	return v, nil
}
