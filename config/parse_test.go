package config

import (
	"errors"
	"testing"

	"github.com/quickdeck/quickdeck/key"
	. "github.com/smartystreets/goconvey/convey"
)

func TestParse(t *testing.T) {
	Convey("Given registered fields", t, func() {
		parse := func(k string, raw ...string) (any, error) {
			f, err := Lookup(k)
			So(err, ShouldBeNil)
			return f.Parse(raw)
		}

		Convey("Values take the type of the default", func() {
			v, err := parse(key.PlayerVolume, "120")
			So(err, ShouldBeNil)
			So(v, ShouldEqual, 120)

			v, err = parse(key.PlayerAutoplay, "false")
			So(err, ShouldBeNil)
			So(v, ShouldEqual, false)

			v, err = parse(key.PlayerArgs, "--loop", "--mute=yes")
			So(err, ShouldBeNil)
			So(v, ShouldResemble, []string{"--loop", "--mute=yes"})
		})

		Convey("Out of range values are rejected", func() {
			_, err := parse(key.PlayerVolume, "151")
			So(errors.Is(err, ErrInvalidValue), ShouldBeTrue)

			_, err = parse(key.PlayerPollInterval, "5000")
			So(errors.Is(err, ErrInvalidValue), ShouldBeTrue)

			_, err = parse(key.IconsVariant, "sparkles")
			So(errors.Is(err, ErrInvalidValue), ShouldBeTrue)

			_, err = parse(key.ListenerAddress, "localhost")
			So(errors.Is(err, ErrInvalidValue), ShouldBeTrue)
		})

		Convey("Malformed values are rejected", func() {
			_, err := parse(key.VolumePlayerStep, "five")
			So(errors.Is(err, ErrInvalidValue), ShouldBeTrue)

			_, err = parse(key.LogsWrite)
			So(errors.Is(err, ErrInvalidValue), ShouldBeTrue)
		})

		Convey("Every default passes its own check", func() {
			for _, f := range Default {
				if c, ok := checks[f.Key]; ok {
					So(c(f.Value), ShouldBeNil)
				}
			}
		})
	})
}
