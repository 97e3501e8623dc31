//go:build !linux && !darwin

package volume

// NewMixer returns a mixer that reports ErrMixerUnsupported.
func NewMixer() Mixer {
	return unsupportedMixer{}
}
