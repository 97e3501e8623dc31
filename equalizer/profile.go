// Package equalizer models 10-band equalizer profiles and commits them to the configuration
// file of an out-of-process audio-correction driver.
package equalizer

import (
	"errors"
	"fmt"
	"math"
	"strings"

	levenshtein "github.com/ka-weihe/fast-levenshtein"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/samber/lo"
)

const (
	BandCount = 10
	MinGain   = -20.0
	MaxGain   = 20.0
)

// Frequencies are the band centre frequencies in Hz.
var Frequencies = [BandCount]int{31, 62, 125, 250, 500, 1000, 2000, 4000, 8000, 16000}

const (
	Flat        = "Flat"
	Warm        = "Warm"
	BassBoost   = "Bass+"
	TrebleBoost = "Treble+"
	Vocal       = "Vocal"
	Custom      = "Custom"
)

var ErrUnknownPreset = errors.New("unknown equalizer preset")

// Bands holds one gain in dB per band, lowest frequency first.
type Bands [BandCount]float64

// Profile is a named set of band gains.
type Profile struct {
	Preset string `json:"preset" jsonschema:"enum=Flat,enum=Warm,enum=Bass+,enum=Treble+,enum=Vocal,enum=Custom"`
	Bands  Bands  `json:"bands" jsonschema:"minItems=10,maxItems=10,description=Gain in dB for 31 62 125 250 500 1k 2k 4k 8k 16k Hz"`
}

var presetOrder = []string{Flat, Warm, BassBoost, TrebleBoost, Vocal}

var presets = map[string]Bands{
	Flat:        {},
	Warm:        {3, 3, 2, 0, 0, 0, -1, -1, 0, 2},
	BassBoost:   {6, 5, 4, 2, 0, 0, 0, 0, 0, 0},
	TrebleBoost: {0, 0, 0, 0, 0, 0, 2, 4, 5, 6},
	Vocal:       {-2, -1, 0, 2, 4, 4, 3, 1, 0, -1},
}

// PresetNames returns the built-in preset names in display order.
func PresetNames() []string {
	return append([]string(nil), presetOrder...)
}

// Presets returns the built-in profiles in display order.
func Presets() []Profile {
	return lo.Map(presetOrder, func(name string, _ int) Profile {
		return Profile{Preset: name, Bands: presets[name]}
	})
}

// Preset looks a built-in preset up by name. Matching ignores case and falls back to the
// closest fuzzy match, so "bass" finds "Bass+".
func Preset(name string) (Profile, error) {
	query := strings.TrimSpace(name)
	if query == "" {
		return Profile{}, fmt.Errorf("%w: empty name", ErrUnknownPreset)
	}

	if exact, ok := lo.Find(presetOrder, func(p string) bool { return strings.EqualFold(p, query) }); ok {
		return Profile{Preset: exact, Bands: presets[exact]}, nil
	}

	candidates := lo.Filter(presetOrder, func(p string, _ int) bool {
		return fuzzy.MatchNormalizedFold(query, p)
	})
	if len(candidates) == 0 {
		return Profile{}, fmt.Errorf("%w: %q", ErrUnknownPreset, name)
	}

	lowered := strings.ToLower(query)
	best := lo.MinBy(candidates, func(a, b string) bool {
		return levenshtein.Distance(lowered, strings.ToLower(a)) < levenshtein.Distance(lowered, strings.ToLower(b))
	})
	return Profile{Preset: best, Bands: presets[best]}, nil
}

// NewCustom returns a Custom profile with gains clamped to the supported range.
func NewCustom(bands Bands) Profile {
	return Profile{Preset: Custom, Bands: bands.Clamp()}
}

// Clamp limits every gain to [MinGain, MaxGain] and rounds it to 0.1 dB.
func (b Bands) Clamp() Bands {
	for i, g := range b {
		b[i] = roundGain(lo.Clamp(g, MinGain, MaxGain))
	}
	return b
}

func roundGain(g float64) float64 {
	if math.IsNaN(g) {
		return 0
	}
	r := math.Round(g*10) / 10
	if r == 0 {
		// avoid printing -0.0
		return 0
	}
	return r
}

// Normalize clamps the bands and replaces an unknown preset name with Custom.
func (p Profile) Normalize() Profile {
	p.Bands = p.Bands.Clamp()
	if _, ok := presets[p.Preset]; !ok {
		p.Preset = Custom
	}
	return p
}

// Preamp is the negative of the highest positive gain, which keeps boosted bands from clipping.
func (p Profile) Preamp() float64 {
	return roundGain(-math.Max(0, lo.Max(p.Bands[:])))
}

// Next returns the built-in preset that follows p, wrapping around. Custom profiles advance to Flat.
func (p Profile) Next() Profile {
	idx := lo.IndexOf(presetOrder, p.Preset)
	next := presetOrder[(idx+1)%len(presetOrder)]
	return Profile{Preset: next, Bands: presets[next]}
}

func (p Profile) String() string {
	gains := lo.Map(p.Bands[:], func(g float64, _ int) string { return fmt.Sprintf("%+.1f", g) })
	return fmt.Sprintf("%s [%s]", p.Preset, strings.Join(gains, " "))
}

// matchPreset names a band vector after the built-in preset it equals, if any.
func matchPreset(b Bands) string {
	if name, ok := lo.Find(presetOrder, func(p string) bool { return presets[p] == b }); ok {
		return name
	}
	return Custom
}
