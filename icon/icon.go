// Package icon renders the playback and status glyphs used by the control surface and the CLI.
//
// Glyphs come in emoji, nerd-font, plain, kaomoji and squares variants, selected by the
// icons.variant setting.
package icon

import (
	"github.com/quickdeck/quickdeck/key"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

const (
	emoji   = "emoji"
	nerd    = "nerd"
	plain   = "plain"
	kaomoji = "kaomoji"
	squares = "squares"
)

// AvailableVariants returns the accepted values of icons.variant.
func AvailableVariants() []string {
	return []string{emoji, nerd, plain, kaomoji, squares}
}

// Variant returns the configured variant, or plain when the setting is not a known variant.
func Variant() string {
	v := viper.GetString(key.IconsVariant)
	if lo.Contains(AvailableVariants(), v) {
		return v
	}
	return plain
}

type iconDef struct {
	emoji   string
	nerd    string
	plain   string
	kaomoji string
	squares string
}

func (d *iconDef) variant(v string) string {
	switch v {
	case emoji:
		return d.emoji
	case nerd:
		return d.nerd
	case kaomoji:
		return d.kaomoji
	case squares:
		return d.squares
	default:
		return d.plain
	}
}

// Get renders i in the configured variant. Unregistered icons render empty.
func Get(i Icon) string {
	d, ok := icons[i]
	if !ok {
		return ""
	}
	return d.variant(Variant())
}
