//go:build linux

package volume

import "os/exec"

// NewMixer returns the first mixer helper found on PATH, preferring PipeWire's wpctl.
func NewMixer() Mixer {
	if _, err := exec.LookPath("wpctl"); err == nil {
		return wpctlMixer{run: execRun}
	}
	if _, err := exec.LookPath("pactl"); err == nil {
		return pactlMixer{run: execRun}
	}
	return unsupportedMixer{}
}
