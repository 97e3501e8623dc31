package config

import (
	"time"

	"github.com/quickdeck/quickdeck/backend"
	"github.com/quickdeck/quickdeck/engine"
	"github.com/quickdeck/quickdeck/key"
	"github.com/quickdeck/quickdeck/listener"
	"github.com/quickdeck/quickdeck/volume"
	"github.com/quickdeck/quickdeck/where"
	"github.com/spf13/viper"
)

func millis(k string) time.Duration {
	return time.Duration(viper.GetInt(k)) * time.Millisecond
}

// Backend builds engine process options from the current configuration.
func Backend() backend.Options {
	return backend.Options{
		Binary:         viper.GetString(key.PlayerBinary),
		ExtraArgs:      viper.GetStringSlice(key.PlayerArgs),
		SocketDir:      where.Temp(),
		StartupTimeout: millis(key.PlayerStartupTimeout),
		ShutdownGrace:  millis(key.PlayerShutdownGrace),
		QueryTimeout:   millis(key.PlayerQueryTimeout),
		Volume:         viper.GetInt(key.PlayerVolume),
	}
}

// Engine builds controller options from the current configuration.
// Surfaces, history and callbacks are left for the caller to fill in.
func Engine() engine.Options {
	opts := engine.DefaultOptions()
	opts.PollInterval = millis(key.PlayerPollInterval)
	opts.QueryTimeout = millis(key.PlayerQueryTimeout)
	return opts
}

// Router builds the wheel router from the configured step sizes.
func Router() volume.Router {
	return volume.NewRouter(viper.GetInt(key.VolumePlayerStep), viper.GetInt(key.VolumeSystemStep))
}

// EqualizerPath returns the configured driver file or the platform default.
func EqualizerPath() string {
	if p := viper.GetString(key.EqualizerPath); p != "" {
		return p
	}
	return where.EqualizerConfig()
}

// ListenerAddress returns the configured open-with address.
func ListenerAddress() string {
	if a := viper.GetString(key.ListenerAddress); a != "" {
		return a
	}
	return listener.DefaultAddress
}
