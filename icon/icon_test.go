package icon

import (
	"testing"

	"github.com/quickdeck/quickdeck/key"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func TestGet(t *testing.T) {
	Convey("Given the registered icons", t, func() {
		Convey("Every icon renders in every variant", func() {
			for _, variant := range AvailableVariants() {
				viper.Set(key.IconsVariant, variant)
				for i := range icons {
					So(Get(i), ShouldNotBeEmpty)
				}
			}
		})

		Convey("An unknown variant falls back to plain", func() {
			viper.Set(key.IconsVariant, "plain")
			want := Get(Play)

			viper.Set(key.IconsVariant, "sparkles")
			So(Variant(), ShouldEqual, "plain")
			So(Get(Play), ShouldEqual, want)
		})

		Convey("An unregistered icon renders empty", func() {
			So(Get(Icon(-1)), ShouldBeEmpty)
		})
	})
}
