// Package media classifies playable files and describes the item currently loaded.
package media

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/quickdeck/quickdeck/backend"
	"github.com/quickdeck/quickdeck/filesystem"
	"github.com/samber/mo"
)

// Kind is the broad category of a media file.
type Kind int

const (
	Video Kind = iota + 1
	Audio
	Image
)

var ErrUnsupportedMedia = errors.New("unsupported media type")

var extensions = map[Kind][]string{
	Video: {".mp4", ".avi", ".mkv", ".mov", ".wmv", ".webm", ".m4v", ".flv", ".mpg", ".mpeg"},
	Audio: {".mp3", ".wav", ".flac", ".ogg", ".m4a", ".aac", ".wma", ".opus"},
	Image: {".jpg", ".jpeg", ".png", ".gif", ".bmp", ".webp", ".ico", ".tiff", ".tif"},
}

var byExtension = func() map[string]Kind {
	index := make(map[string]Kind)
	for kind, exts := range extensions {
		for _, ext := range exts {
			index[ext] = kind
		}
	}
	return index
}()

func (k Kind) String() string {
	switch k {
	case Video:
		return "video"
	case Audio:
		return "audio"
	case Image:
		return "image"
	default:
		return "unknown"
	}
}

// Profile returns the engine profile that plays k. Images are not played by the engine.
func (k Kind) Profile() (backend.Profile, bool) {
	switch k {
	case Video:
		return backend.VideoProfile, true
	case Audio:
		return backend.AudioProfile, true
	default:
		return 0, false
	}
}

// Extensions returns the lowercase extensions recognized for k.
func Extensions(k Kind) []string {
	return slices.Clone(extensions[k])
}

// Classify determines the kind of path by its extension.
func Classify(path string) (Kind, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if kind, ok := byExtension[ext]; ok {
		return kind, nil
	}
	if ext == "" {
		return 0, fmt.Errorf("%w: %s has no extension", ErrUnsupportedMedia, filepath.Base(path))
	}
	return 0, fmt.Errorf("%w: %s", ErrUnsupportedMedia, ext)
}

// Item is a loaded media file. It is never mutated: WithDuration returns a copy.
type Item struct {
	Path     string
	Kind     Kind
	Duration mo.Option[float64]
}

// NewItem classifies path and checks that it names an existing regular file.
func NewItem(path string) (*Item, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("empty path")
	}
	if strings.HasPrefix(path, "-") {
		return nil, fmt.Errorf("path must not start with '-': %s", path)
	}

	kind, err := Classify(path)
	if err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	info, err := filesystem.API().Stat(abs)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", abs)
	}

	return &Item{
		Path:     abs,
		Kind:     kind,
		Duration: mo.None[float64](),
	}, nil
}

// WithDuration returns a copy of i with a known duration.
func (i Item) WithDuration(seconds float64) *Item {
	if seconds <= 0 {
		i.Duration = mo.None[float64]()
	} else {
		i.Duration = mo.Some(seconds)
	}
	return &i
}

// Name returns the file name shown to the user.
func (i Item) Name() string {
	return filepath.Base(i.Path)
}
