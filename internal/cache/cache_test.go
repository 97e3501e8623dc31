package cache

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/quickdeck/quickdeck/filesystem"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestPrune(t *testing.T) {
	Convey("Given a temp directory with old and fresh files", t, func() {
		fs := filesystem.API()
		dir := "/tmp/quickdeck"
		now := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)

		touch := func(name string, at time.Time) string {
			path := filepath.Join(dir, name)
			So(fs.WriteFile(path, nil, 0o600), ShouldBeNil)
			So(fs.Chtimes(path, at, at), ShouldBeNil)
			return path
		}

		stale := touch("quickdeck-embedded-0a1b.sock", now.Add(-TTL-time.Hour))
		fresh := touch("quickdeck-window-2c3d.sock", now.Add(-time.Hour))
		other := touch("notes.txt", now.Add(-TTL-time.Hour))

		Convey("Only stale sockets are removed", func() {
			So(Prune(dir, TTL, now), ShouldEqual, 1)

			exists, _ := fs.Exists(stale)
			So(exists, ShouldBeFalse)
			exists, _ = fs.Exists(fresh)
			So(exists, ShouldBeTrue)
			exists, _ = fs.Exists(other)
			So(exists, ShouldBeTrue)
		})

		Convey("A missing directory prunes nothing", func() {
			So(Prune("/does/not/exist", TTL, now), ShouldEqual, 0)
		})
	})
}
