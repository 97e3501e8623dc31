package equalizer

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/quickdeck/quickdeck/filesystem"
	"github.com/quickdeck/quickdeck/log"
)

// ErrEqualizerWrite means the driver configuration could not be replaced. Playback is unaffected.
var ErrEqualizerWrite = errors.New("equalizer write failed")

// Writer commits profiles to the driver configuration file. The driver reloads the file when
// it is replaced, and the replacement is atomic so a reload never observes a partial file.
type Writer struct {
	path string

	mu      sync.Mutex
	current Profile
	loaded  bool
}

// NewWriter returns a writer for the configuration file at path.
func NewWriter(path string) *Writer {
	return &Writer{
		path:    path,
		current: Profile{Preset: Flat},
	}
}

// Path returns the configuration file the writer replaces.
func (w *Writer) Path() string {
	return w.path
}

// Write clamps p and replaces the configuration file with it.
func (w *Writer) Write(p Profile) error {
	p = p.Normalize()

	w.mu.Lock()
	defer w.mu.Unlock()

	if err := filesystem.WriteAtomic(filesystem.API().Fs, w.path, Format(p), 0o644); err != nil {
		log.Warnf("equalizer: %v", err)
		return fmt.Errorf("%w: %v", ErrEqualizerWrite, err)
	}

	w.current = p
	w.loaded = true

	log.WithFields(log.Fields{
		"preset": p.Preset,
		"path":   w.path,
	}).Info("equalizer applied")

	return nil
}

// Apply writes the built-in preset matching name.
func (w *Writer) Apply(name string) (Profile, error) {
	p, err := Preset(name)
	if err != nil {
		return Profile{}, err
	}
	return p, w.Write(p)
}

// Load reads the profile currently in the configuration file. A missing file reads as Flat.
func (w *Writer) Load() (Profile, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	data, err := filesystem.API().ReadFile(w.path)
	if errors.Is(err, os.ErrNotExist) {
		w.current = Profile{Preset: Flat}
		w.loaded = true
		return w.current, nil
	}
	if err != nil {
		return Profile{}, err
	}

	p, err := Parse(data)
	if err != nil {
		return Profile{}, fmt.Errorf("parse %s: %w", w.path, err)
	}

	w.current = p
	w.loaded = true
	return p, nil
}

// Current returns the last profile written or loaded, reading the file on first use.
func (w *Writer) Current() Profile {
	w.mu.Lock()
	loaded, current := w.loaded, w.current
	w.mu.Unlock()

	if loaded {
		return current
	}

	p, err := w.Load()
	if err != nil {
		log.Debugf("equalizer: %v", err)
		return current
	}
	return p
}
