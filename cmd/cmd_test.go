package cmd

import (
	"testing"

	"github.com/quickdeck/quickdeck/backend"
	"github.com/quickdeck/quickdeck/engine"
	. "github.com/smartystreets/goconvey/convey"
)

func TestParseGain(t *testing.T) {
	Convey("Gains parse with or without a unit", t, func() {
		g, err := parseGain("+3.5")
		So(err, ShouldBeNil)
		So(g, ShouldEqual, 3.5)

		g, err = parseGain(" -6dB ")
		So(err, ShouldBeNil)
		So(g, ShouldEqual, -6)

		_, err = parseGain("loud")
		So(err, ShouldNotBeNil)

		_, err = parseGain("21")
		So(err, ShouldNotBeNil)
	})
}

func TestFrequencyLabel(t *testing.T) {
	Convey("Frequencies above 1 kHz are abbreviated", t, func() {
		So(frequencyLabel(62), ShouldEqual, "62")
		So(frequencyLabel(1000), ShouldEqual, "1k")
		So(frequencyLabel(16000), ShouldEqual, "16k")
	})
}

func TestStatusLine(t *testing.T) {
	Convey("The status line shows position and duration", t, func() {
		line := statusLine(engine.Status{
			State:     engine.Playing,
			Transport: backend.TransportState{Position: 65, Duration: 3600, Volume: 80},
		})
		So(line, ShouldContainSubstring, "1:05")
		So(line, ShouldContainSubstring, "1:00:00")
		So(line, ShouldContainSubstring, "vol 80%")
	})
}
