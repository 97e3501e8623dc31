package engine

import (
	"github.com/quickdeck/quickdeck/equalizer"
)

// ApplyPreset writes the built-in preset matching name. It never waits on transport commands.
func (c *Controller) ApplyPreset(name string) (equalizer.Profile, error) {
	p, err := equalizer.Preset(name)
	if err != nil {
		return equalizer.Profile{}, err
	}
	return p, c.applyEqualizer(p)
}

// ApplyBands writes a Custom profile with the given gains.
func (c *Controller) ApplyBands(bands equalizer.Bands) (equalizer.Profile, error) {
	p := equalizer.NewCustom(bands)
	return p, c.applyEqualizer(p)
}

// CyclePreset writes the preset following the current one.
func (c *Controller) CyclePreset() (equalizer.Profile, error) {
	if c.eq == nil {
		return equalizer.Profile{}, ErrEqualizerDisabled
	}
	p := c.eq.Current().Next()
	return p, c.applyEqualizer(p)
}

func (c *Controller) applyEqualizer(p equalizer.Profile) error {
	if c.eq == nil {
		return ErrEqualizerDisabled
	}

	c.eqMu.Lock()
	defer c.eqMu.Unlock()

	if err := c.eq.Write(p); err != nil {
		// the driver applies the equalizer out of process, playback is unaffected
		c.notify(Warning, "Equalizer could not be applied", err)
		return err
	}
	return nil
}
