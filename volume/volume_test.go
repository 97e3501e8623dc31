package volume

import (
	"errors"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestRouter(t *testing.T) {
	Convey("Given a router with a playback surface", t, func() {
		r := NewRouter(0, 0).WithSurface(Rect{X: 10, Y: 5, Width: 40, Height: 20})

		Convey("Defaults apply to non-positive steps", func() {
			So(r.PlayerStep, ShouldEqual, DefaultPlayerStep)
			So(r.SystemStep, ShouldEqual, DefaultSystemStep)
		})

		Convey("Wheel over the surface adjusts the player", func() {
			So(r.Route(WheelEvent{X: 10, Y: 5, Up: true}, true), ShouldResemble, Decision{Target: Player, Delta: 5})
			So(r.Route(WheelEvent{X: 49, Y: 24}, true), ShouldResemble, Decision{Target: Player, Delta: -5})
		})

		Convey("Wheel over the surface without a session does nothing", func() {
			So(r.Route(WheelEvent{X: 20, Y: 10, Up: true}, false).Target, ShouldEqual, None)
		})

		Convey("Wheel elsewhere adjusts the OS volume", func() {
			So(r.Route(WheelEvent{X: 50, Y: 10, Up: true}, true), ShouldResemble, Decision{Target: System, Delta: 2})
			So(r.Route(WheelEvent{X: 0, Y: 0}, false), ShouldResemble, Decision{Target: System, Delta: -2})
		})

		Convey("Surface input never reaches the OS and outside input never reaches the player", func() {
			for x := 0; x < 60; x += 3 {
				for y := 0; y < 30; y += 3 {
					for _, active := range []bool{true, false} {
						d := r.Route(WheelEvent{X: x, Y: y, Up: x%2 == 0}, active)
						if r.Surface.Contains(x, y) {
							So(d.Target, ShouldNotEqual, System)
						} else {
							So(d.Target, ShouldEqual, System)
						}
					}
				}
			}
		})
	})
}

type fakeRunner struct {
	outputs map[string]string
	calls   []string
}

func (f *fakeRunner) run(name string, args ...string) (string, error) {
	call := strings.Join(append([]string{name}, args...), " ")
	f.calls = append(f.calls, call)
	for prefix, out := range f.outputs {
		if strings.HasPrefix(call, prefix) {
			return out, nil
		}
	}
	return "", nil
}

func TestMixers(t *testing.T) {
	Convey("Given mixer helper output", t, func() {
		Convey("wpctl levels are fractions", func() {
			level, err := parseWpctl("Volume: 0.45")
			So(err, ShouldBeNil)
			So(level, ShouldEqual, 45)

			level, err = parseWpctl("Volume: 0.30 [MUTED]")
			So(err, ShouldBeNil)
			So(level, ShouldEqual, 30)

			_, err = parseWpctl("garbage")
			So(err, ShouldNotBeNil)
		})

		Convey("pactl levels are read from the first channel", func() {
			level, err := parsePactl("Volume: front-left: 29491 /  45% / -20.81 dB,   front-right: 29491 /  45% / -20.81 dB")
			So(err, ShouldBeNil)
			So(level, ShouldEqual, 45)

			_, err = parsePactl("No such entity")
			So(err, ShouldNotBeNil)
		})

		Convey("wpctl adjusts relatively", func() {
			f := &fakeRunner{outputs: map[string]string{"wpctl get-volume": "Volume: 0.52"}}
			level, err := wpctlMixer{run: f.run}.Adjust(-2)
			So(err, ShouldBeNil)
			So(level, ShouldEqual, 52)
			So(f.calls[0], ShouldEqual, "wpctl set-volume -l 1.0 @DEFAULT_AUDIO_SINK@ 2%-")
		})

		Convey("pactl and osascript set a clamped absolute level", func() {
			f := &fakeRunner{outputs: map[string]string{"pactl get-sink-volume": "Volume: mono: 65536 / 99% / 0.00 dB"}}
			level, err := pactlMixer{run: f.run}.Adjust(2)
			So(err, ShouldBeNil)
			So(level, ShouldEqual, 100)
			So(f.calls[1], ShouldEqual, "pactl set-sink-volume @DEFAULT_SINK@ 100%")

			f = &fakeRunner{outputs: map[string]string{"osascript -e output": "1"}}
			level, err = osascriptMixer{run: f.run}.Adjust(-2)
			So(err, ShouldBeNil)
			So(level, ShouldEqual, 0)
			So(f.calls[1], ShouldEqual, "osascript -e set volume output volume 0")
		})

		Convey("Unsupported platforms report so", func() {
			_, err := unsupportedMixer{}.Adjust(2)
			So(errors.Is(err, ErrMixerUnsupported), ShouldBeTrue)
		})
	})
}
