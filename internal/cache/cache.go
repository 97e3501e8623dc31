// Package cache prunes transient files that outlived the process that created them,
// such as engine IPC sockets left behind after a crash.
package cache

import (
	"os"
	"path/filepath"
	"time"

	"github.com/quickdeck/quickdeck/filesystem"
	"github.com/quickdeck/quickdeck/log"
	"github.com/quickdeck/quickdeck/where"
)

const TTL = 7 * 24 * time.Hour

// socketPattern matches the sockets sessions create in the temp directory.
const socketPattern = "quickdeck-*.sock"

// CollectGarbage prunes stale engine sockets from the temp directory in the background.
func CollectGarbage() {
	go func() {
		if n := Prune(where.Temp(), TTL, time.Now()); n > 0 {
			log.Infof("pruned %d stale sockets", n)
		}
	}()
}

// Prune removes files in dir matching the socket pattern whose modification time is older
// than ttl relative to now. It returns the number of files removed.
func Prune(dir string, ttl time.Duration, now time.Time) int {
	fs := filesystem.API()

	var removed int
	_ = fs.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}
		if ok, _ := filepath.Match(socketPattern, info.Name()); !ok {
			return nil
		}
		if now.Sub(info.ModTime()) <= ttl {
			return nil
		}
		if err := fs.Remove(path); err != nil {
			log.Debugf("remove %s: %v", path, err)
			return nil
		}
		removed++
		return nil
	})
	return removed
}
