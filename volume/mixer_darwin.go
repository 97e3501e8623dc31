//go:build darwin

package volume

// NewMixer returns a mixer backed by osascript.
func NewMixer() Mixer {
	return osascriptMixer{run: execRun}
}
