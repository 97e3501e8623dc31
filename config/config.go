// Package config provides centralized management for application settings, defaults, and the Viper-based configuration engine.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	levenshtein "github.com/ka-weihe/fast-levenshtein"
	"github.com/quickdeck/quickdeck/constant"
	"github.com/quickdeck/quickdeck/filesystem"
	"github.com/quickdeck/quickdeck/log"
	"github.com/quickdeck/quickdeck/where"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

// EnvKeyReplacer is a strings.Replacer used to normalize configuration keys into environment variable naming conventions.
var EnvKeyReplacer = strings.NewReplacer(".", "_")

// ErrUnknownKey is returned for keys that are not registered in Default.
var ErrUnknownKey = errors.New("unknown config key")

// Setup initializes the global configuration state, including defaults, environment bindings, and localized file resolution.
func Setup() error {
	viper.SetConfigName(constant.App)
	viper.SetConfigType("toml")
	viper.SetFs(filesystem.API())
	viper.AddConfigPath(where.Config())

	viper.SetEnvPrefix(constant.App)
	viper.SetEnvKeyReplacer(EnvKeyReplacer)
	for _, env := range EnvExposed {
		viper.MustBindEnv(env)
	}

	viper.SetTypeByDefaultValue(true)
	for name, field := range Default {
		viper.SetDefault(name, field.Value)
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return err
	}

	return nil
}

// Path returns the location of the config file, whether or not it exists.
func Path() string {
	return filepath.Join(where.Config(), constant.App+".toml")
}

// Watch reloads the config file on change and calls onChange afterwards.
// Only the file-backed layer is reloaded; values set from flags keep precedence.
func Watch(onChange func()) {
	viper.OnConfigChange(func(e fsnotify.Event) {
		log.WithFields(log.Fields{"file": e.Name, "op": e.Op.String()}).Info("config reloaded")
		if onChange != nil {
			onChange()
		}
	})
	viper.WatchConfig()
}

// Lookup returns the registered field for k, or an error suggesting the closest known key.
func Lookup(k string) (Field, error) {
	if f, ok := Default[k]; ok {
		return f, nil
	}
	return Field{}, fmt.Errorf("%w %q, did you mean %q?", ErrUnknownKey, k, Closest(k))
}

// Closest returns the registered key with the smallest edit distance to k.
func Closest(k string) string {
	return lo.MinBy(lo.Keys(Default), func(a, b string) bool {
		da, db := levenshtein.Distance(k, a), levenshtein.Distance(k, b)
		if da == db {
			return a < b
		}
		return da < db
	})
}
