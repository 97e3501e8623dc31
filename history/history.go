// Package history persists where playback of each item stopped so it can be resumed.
package history

import (
	"errors"
	"sort"
	"time"

	"github.com/metafates/gache"
	"github.com/quickdeck/quickdeck/filesystem"
	"github.com/quickdeck/quickdeck/media"
	"github.com/quickdeck/quickdeck/where"
	"github.com/samber/lo"
)

// cacher provides an abstracted, disk-backed registry of playback positions keyed by path.
var cacher = gache.New[map[string]*Entry](
	&gache.Options{
		Path:       where.History(),
		FileSystem: &filesystem.GacheFs{},
	},
)

// Get returns every recorded entry keyed by path.
func Get() (map[string]*Entry, error) {
	cached, expired, err := cacher.Get()
	if err != nil {
		return nil, err
	}
	if expired || cached == nil {
		return make(map[string]*Entry), nil
	}
	return cached, nil
}

// Save records that playback of item stopped at position seconds.
func Save(item *media.Item, position float64) error {
	if item == nil {
		return errors.New("nil item")
	}

	saved, err := Get()
	if err != nil {
		return err
	}

	saved[item.Path] = newEntry(item, position)
	return cacher.Set(saved)
}

// Resume returns the position to continue path from. Finished items start over.
func Resume(path string) (float64, bool) {
	saved, err := Get()
	if err != nil {
		return 0, false
	}
	entry, ok := saved[path]
	if !ok || entry.Finished() || entry.Position < minResume {
		return 0, false
	}
	return entry.Position, true
}

// Recent returns up to n entries, most recently played first. n <= 0 returns all of them.
func Recent(n int) ([]*Entry, error) {
	saved, err := Get()
	if err != nil {
		return nil, err
	}

	entries := lo.Values(saved)
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].PlayedAt.After(entries[j].PlayedAt)
	})

	if n > 0 && len(entries) > n {
		entries = entries[:n]
	}
	return entries, nil
}

// Remove deletes the entry for path.
func Remove(path string) error {
	saved, err := Get()
	if err != nil {
		return err
	}

	delete(saved, path)
	return cacher.Set(saved)
}

// Store adapts the package to the playback controller.
type Store struct{}

func (Store) Save(item *media.Item, position float64) error {
	return Save(item, position)
}

// now is replaced in tests.
var now = time.Now
