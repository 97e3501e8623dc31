// Package config provides centralized management for application settings, defaults, and the Viper-based configuration engine.
package config

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"text/template"

	"github.com/quickdeck/quickdeck/color"
	"github.com/quickdeck/quickdeck/constant"
	"github.com/quickdeck/quickdeck/key"
	"github.com/quickdeck/quickdeck/style"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

// Field represents a configuration field definition.
type Field struct {
	Key         string
	Value       any
	Description string
}

// Pretty returns a colored string representation of the field for display.
func (f *Field) Pretty() string {
	var b strings.Builder
	lo.Must0(prettyTemplate.Execute(&b, f))
	return b.String()
}

// Env returns the environment variable name for this field.
func (f *Field) Env() string {
	env := strings.ToUpper(EnvKeyReplacer.Replace(f.Key))
	prefix := strings.ToUpper(constant.App + "_")
	if strings.HasPrefix(env, prefix) {
		return env
	}
	return prefix + env
}

// MarshalJSON customizes JSON output to include current and default values.
func (f *Field) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Key         string `json:"key"`
		Value       any    `json:"value"`
		Default     any    `json:"default"`
		Description string `json:"description"`
		Type        string `json:"type"`
	}{
		Key:         f.Key,
		Value:       viper.Get(f.Key),
		Default:     f.Value,
		Description: f.Description,
		Type:        f.typeName(),
	})
}

// typeName returns the string representation of the field's underlying value type.
func (f *Field) typeName() string {
	switch f.Value.(type) {
	case string:
		return "string"
	case int:
		return "int"
	case bool:
		return "bool"
	case []string:
		return "[]string"
	case []int:
		return "[]int"
	default:
		return "unknown"
	}
}

// Default holds the map of all configuration fields.
var Default = make(map[string]Field)

// EnvExposed holds keys that are bound to environment variables.
var EnvExposed []string

func init() {
	register := func(k string, v any, desc string) {
		if _, exists := Default[k]; exists {
			panic("Duplicate config key: " + k)
		}
		f := Field{Key: k, Value: v, Description: desc}
		Default[k] = f
		EnvExposed = append(EnvExposed, k)
	}

	register(key.PlayerBinary, constant.Engine, "Playback engine executable.\nA name looked up in PATH or an absolute path")
	register(key.PlayerArgs, []string{}, "Extra arguments passed to every engine instance")
	register(key.PlayerPollInterval, 500, "How often the transport state is read, in milliseconds.\nValues above 1000 are capped")
	register(key.PlayerStartupTimeout, 5000, "How long to wait for the engine to start, in milliseconds")
	register(key.PlayerShutdownGrace, 3000, "How long to wait for the engine to quit before killing it, in milliseconds")
	register(key.PlayerQueryTimeout, 750, "Bound on a single engine command or query, in milliseconds")
	register(key.PlayerAutoplay, true, "Start playback as soon as an item is loaded")
	register(key.PlayerVolume, 100, "Initial engine volume in percent (0-150)")
	register(key.EqualizerEnable, true, "Write equalizer presets to the audio-correction driver")
	register(key.EqualizerPath, "", "Driver configuration file the equalizer writes.\nEmpty means the platform default (see \"quickdeck where --equalizer\")")
	register(key.EqualizerPreset, "", "Preset applied on startup.\nEmpty keeps whatever the driver file holds")
	register(key.VolumePlayerStep, 5, "Player volume change per wheel step, in percent")
	register(key.VolumeSystemStep, 2, "System volume change per wheel step, in percent")
	register(key.ListenerEnable, true, "Accept files from \"quickdeck open\" while the TUI is running")
	register(key.ListenerAddress, "127.0.0.1:47321", "Loopback address the open-with listener binds")
	register(key.ListenerMaxConnections, 4, "Concurrent open-with connections accepted")
	register(key.MPRISEnable, true, "Expose playback controls over MPRIS (Linux only)")
	register(key.IconsVariant, "plain", "Icons variant.\nAvailable options are: emoji, kaomoji, plain, squares, nerd (nerd-font required)")
	register(key.LogsWrite, false, "Write logs")
	register(key.LogsLevel, "info", "Available options are: (from less to most verbose)\npanic, fatal, error, warn, info, debug, trace")
	register(key.LogsJson, false, "Use json format for logs")
	register(key.CliColored, true, "Enable colored CLI output")
}

var prettyTemplate = lo.Must(template.New("pretty").Funcs(template.FuncMap{
	"faint":    style.Faint,
	"bold":     style.Bold,
	"purple":   style.Fg(color.Purple),
	"blue":     style.Fg(color.Blue),
	"cyan":     style.Fg(color.Cyan),
	"value":    func(k string) any { return viper.Get(k) },
	"typename": func(v any) string { return reflect.TypeOf(v).String() },
	"hl": func(v any) string {
		switch value := v.(type) {
		case bool:
			b := strconv.FormatBool(value)
			if value {
				return style.Fg(color.Green)(b)
			}
			return style.Fg(color.Red)(b)
		case string:
			return style.Fg(color.Yellow)(value)
		default:
			return fmt.Sprint(value)
		}
	},
}).Parse(`{{ faint .Description }}
{{ blue "Key:" }}     {{ purple .Key }}
{{ blue "Env:" }}     {{ .Env }}
{{ blue "Value:" }}   {{ hl (value .Key) }}
{{ blue "Default:" }} {{ hl (.Value) }}
{{ blue "Type:" }}    {{ typename .Value }}`))
