package volume

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"
)

var ErrMixerUnsupported = errors.New("system volume control is not supported on this platform")

const mixerTimeout = 2 * time.Second

// Mixer controls the OS output device volume in percent.
type Mixer interface {
	Get() (int, error)
	// Adjust changes the volume by delta percentage points and returns the new level.
	Adjust(delta int) (int, error)
	Name() string
}

// runner executes a mixer helper and returns its trimmed standard output.
type runner func(name string, args ...string) (string, error)

func execRun(name string, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), mixerTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, name, args...)
	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("%s: %w: %s", name, err, msg)
		}
		return "", fmt.Errorf("%s: %w", name, err)
	}
	return strings.TrimSpace(out.String()), nil
}

func clampPercent(v int) int {
	return lo.Clamp(v, 0, 100)
}

// wpctlMixer drives PipeWire through WirePlumber.
type wpctlMixer struct{ run runner }

func (wpctlMixer) Name() string { return "wpctl" }

func (m wpctlMixer) Get() (int, error) {
	out, err := m.run("wpctl", "get-volume", "@DEFAULT_AUDIO_SINK@")
	if err != nil {
		return 0, err
	}
	return parseWpctl(out)
}

func (m wpctlMixer) Adjust(delta int) (int, error) {
	step := fmt.Sprintf("%d%%+", delta)
	if delta < 0 {
		step = fmt.Sprintf("%d%%-", -delta)
	}
	if _, err := m.run("wpctl", "set-volume", "-l", "1.0", "@DEFAULT_AUDIO_SINK@", step); err != nil {
		return 0, err
	}
	return m.Get()
}

// parseWpctl reads output such as "Volume: 0.45" or "Volume: 0.45 [MUTED]".
func parseWpctl(out string) (int, error) {
	fields := strings.Fields(out)
	if len(fields) < 2 || fields[0] != "Volume:" {
		return 0, fmt.Errorf("unexpected wpctl output %q", out)
	}
	level, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return 0, fmt.Errorf("wpctl volume %q: %w", fields[1], err)
	}
	return clampPercent(int(level*100 + 0.5)), nil
}

// pactlMixer drives PulseAudio, or PipeWire through its Pulse compatibility layer.
type pactlMixer struct{ run runner }

func (pactlMixer) Name() string { return "pactl" }

func (m pactlMixer) Get() (int, error) {
	out, err := m.run("pactl", "get-sink-volume", "@DEFAULT_SINK@")
	if err != nil {
		return 0, err
	}
	return parsePactl(out)
}

func (m pactlMixer) Adjust(delta int) (int, error) {
	current, err := m.Get()
	if err != nil {
		return 0, err
	}
	// pactl has no upper bound on relative changes
	target := clampPercent(current + delta)
	if _, err := m.run("pactl", "set-sink-volume", "@DEFAULT_SINK@", fmt.Sprintf("%d%%", target)); err != nil {
		return 0, err
	}
	return target, nil
}

var pactlPercent = regexp.MustCompile(`(\d+)%`)

// parsePactl reads the first channel percentage of "Volume: front-left: 29491 /  45% / ...".
func parsePactl(out string) (int, error) {
	match := pactlPercent.FindStringSubmatch(out)
	if match == nil {
		return 0, fmt.Errorf("unexpected pactl output %q", out)
	}
	level, err := strconv.Atoi(match[1])
	if err != nil {
		return 0, err
	}
	return clampPercent(level), nil
}

// osascriptMixer drives the macOS output volume through AppleScript.
type osascriptMixer struct{ run runner }

func (osascriptMixer) Name() string { return "osascript" }

func (m osascriptMixer) Get() (int, error) {
	out, err := m.run("osascript", "-e", "output volume of (get volume settings)")
	if err != nil {
		return 0, err
	}
	level, err := strconv.Atoi(strings.TrimSpace(out))
	if err != nil {
		return 0, fmt.Errorf("unexpected osascript output %q", out)
	}
	return clampPercent(level), nil
}

func (m osascriptMixer) Adjust(delta int) (int, error) {
	current, err := m.Get()
	if err != nil {
		return 0, err
	}
	target := clampPercent(current + delta)
	if _, err := m.run("osascript", "-e", fmt.Sprintf("set volume output volume %d", target)); err != nil {
		return 0, err
	}
	return target, nil
}

type unsupportedMixer struct{}

func (unsupportedMixer) Name() string            { return "none" }
func (unsupportedMixer) Get() (int, error)       { return 0, ErrMixerUnsupported }
func (unsupportedMixer) Adjust(int) (int, error) { return 0, ErrMixerUnsupported }
