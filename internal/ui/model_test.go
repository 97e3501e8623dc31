package ui

import (
	"strings"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestNotifier(t *testing.T) {
	Convey("Given an empty notifier", t, func() {
		m := &Model{}

		Convey("The view is unchanged", func() {
			So(m.View("body"), ShouldEqual, "body")
		})

		Convey("A notification is shown below the content", func() {
			cmd := m.Update(NotifyMsg{Level: Warning, Text: "engine restarted"})
			So(cmd, ShouldNotBeNil)
			So(m.Current(), ShouldEqual, "engine restarted")
			So(m.View("body"), ShouldStartWith, "body\n")
			So(m.View("body"), ShouldContainSubstring, "engine restarted")
		})

		Convey("A stale clear leaves a newer notification alone", func() {
			m.Update(NotifyMsg{Text: "first"})
			first := m.notifiedAt
			time.Sleep(time.Millisecond)
			m.Update(NotifyMsg{Text: "second"})

			m.Update(ClearNotificationMsg{At: first})
			So(m.Current(), ShouldEqual, "second")

			m.Update(ClearNotificationMsg{At: m.notifiedAt})
			So(m.Current(), ShouldBeEmpty)
		})

		Convey("Dismiss hides the notification", func() {
			m.Update(NotifyMsg{Text: "x"})
			m.Dismiss()
			So(m.View("body"), ShouldEqual, "body")
		})

		Convey("Long notifications wrap to the width", func() {
			m.SetWidth(10)
			m.Update(NotifyMsg{Text: "aaaa bbbb cccc dddd"})
			So(strings.Count(m.View("body"), "\n"), ShouldBeGreaterThan, 1)
		})
	})
}
