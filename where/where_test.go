package where

import (
	"path/filepath"
	"testing"

	"github.com/quickdeck/quickdeck/filesystem"
	"github.com/samber/lo"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Use in-memory filesystem for tests to avoid creating real directories
	filesystem.SetMemMapFs()
}

func TestPaths(t *testing.T) {
	Convey("Path functions", t, func() {
		Convey("Config()", func() {
			path := Config()
			So(path, ShouldNotBeEmpty)
			So(lo.Must(filesystem.API().IsDir(path)), ShouldBeTrue)
		})

		Convey("Config() honours the override variable", func() {
			t.Setenv(EnvConfigPath, filepath.Join("/tmp", "quickdeck-test-config"))
			So(Config(), ShouldEqual, filepath.Join("/tmp", "quickdeck-test-config"))
		})

		Convey("Cache()", func() {
			path := Cache()
			So(path, ShouldNotBeEmpty)
			So(lo.Must(filesystem.API().IsDir(path)), ShouldBeTrue)
		})

		Convey("Logs()", func() {
			path := Logs()
			So(path, ShouldNotBeEmpty)
			So(lo.Must(filesystem.API().IsDir(path)), ShouldBeTrue)
		})

		Convey("History() lives in the cache dir", func() {
			So(filepath.Dir(History()), ShouldEqual, Cache())
		})

		Convey("EqualizerConfig()", func() {
			So(filepath.Base(EqualizerConfig()), ShouldEqual, "config.txt")
		})
	})
}
