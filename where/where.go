// Package where implements a cross-platform resolver for application-specific filesystem paths.
package where

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/quickdeck/quickdeck/constant"
	"github.com/quickdeck/quickdeck/filesystem"
	"github.com/samber/lo"
)

// EnvConfigPath is the environment variable identifier used to override the default configuration directory.
const EnvConfigPath = "QUICKDECK_CONFIG_PATH"

// ensureDir guarantees the existence of a directory at the specified path, creating it if necessary.
func ensureDir(path string) string {
	lo.Must0(filesystem.API().MkdirAll(path, os.ModePerm))
	return path
}

// Config resolves the absolute path to the primary application configuration directory.
// The path can be explicitly specified via the QUICKDECK_CONFIG_PATH environment variable.
func Config() string {
	if custom, ok := os.LookupEnv(EnvConfigPath); ok {
		return ensureDir(custom)
	}

	base := lo.Must(os.UserConfigDir())
	return ensureDir(filepath.Join(base, constant.App))
}

// Cache resolves the absolute path to the application's persistent cache directory.
func Cache() string {
	base, err := os.UserCacheDir()
	if err != nil {
		base = filepath.Join(".", "cache")
	}
	return ensureDir(filepath.Join(base, constant.App))
}

// Logs resolves the absolute path to the directory used for application diagnostic logs.
func Logs() string {
	return ensureDir(filepath.Join(Config(), "logs"))
}

// History resolves the file holding the playback history.
func History() string {
	return filepath.Join(Cache(), "history.json")
}

// EqualizerConfig resolves the default location of the audio-correction driver's configuration file.
// Equalizer APO reads C:\Program Files\EqualizerAPO\config\config.txt on Windows; elsewhere the
// file lives in the application config directory and is picked up by whatever driver the user points at it.
func EqualizerConfig() string {
	if runtime.GOOS == constant.Windows {
		if pf, ok := os.LookupEnv("ProgramFiles"); ok {
			return filepath.Join(pf, "EqualizerAPO", "config", "config.txt")
		}
	}
	return filepath.Join(Config(), "equalizer", "config.txt")
}

// Temp resolves a volatile directory for transient artifacts such as engine IPC sockets.
func Temp() string {
	return ensureDir(filepath.Join(os.TempDir(), constant.App))
}
