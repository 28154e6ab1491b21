package normalize_test

import (
	"testing"
	"time"

	"github.com/okian/eventmatch/internal/domain/normalize"
	. "github.com/smartystreets/goconvey/convey"
)

type dateLabel struct{ s string }

func (d dateLabel) String() string { return d.s }

func TestString(t *testing.T) {
	Convey("Given strings with mixed case and padding", t, func() {
		So(normalize.String("  Houston "), ShouldEqual, "houston")
		So(normalize.String("COOKING"), ShouldEqual, "cooking")
		So(normalize.String(""), ShouldEqual, "")
		So(normalize.String("\tSão Paulo\n"), ShouldEqual, "são paulo")
	})
}

func TestDate(t *testing.T) {
	Convey("Given date-like values", t, func() {
		Convey("When the value is missing", func() {
			var nilTime *time.Time
			var nilString *string
			So(normalize.Date(nil), ShouldEqual, "")
			So(normalize.Date(nilTime), ShouldEqual, "")
			So(normalize.Date(nilString), ShouldEqual, "")
			So(normalize.Date(time.Time{}), ShouldEqual, "")
			So(normalize.Date("   "), ShouldEqual, "")
		})

		Convey("When the value is a two-digit year", func() {
			So(normalize.Date("25-11-02"), ShouldEqual, "2025-11-02")
			So(normalize.Date("75-01-05"), ShouldEqual, "1975-01-05")
			So(normalize.Date("68-12-31"), ShouldEqual, "2068-12-31")
			So(normalize.Date("69-01-01"), ShouldEqual, "1969-01-01")
			So(normalize.Date("00-02-29"), ShouldEqual, "2000-02-29")
		})

		Convey("When the value is a parseable string", func() {
			So(normalize.Date("2025-11-02"), ShouldEqual, "2025-11-02")
			So(normalize.Date(" 2025-11-02 "), ShouldEqual, "2025-11-02")
			So(normalize.Date("2025-11-02T18:30:00Z"), ShouldEqual, "2025-11-02")
			So(normalize.Date("2025-11-02T23:30:00-05:00"), ShouldEqual, "2025-11-02")
			So(normalize.Date("2025-11-02T09:00:00"), ShouldEqual, "2025-11-02")
			So(normalize.Date("2025/11/02"), ShouldEqual, "2025-11-02")
			So(normalize.Date("11/2/2025"), ShouldEqual, "2025-11-02")
			So(normalize.Date("Nov 2, 2025"), ShouldEqual, "2025-11-02")
			So(normalize.Date("November 2, 2025"), ShouldEqual, "2025-11-02")
		})

		Convey("When the value is a time", func() {
			ts := time.Date(2025, time.November, 2, 15, 0, 0, 0, time.UTC)
			So(normalize.Date(ts), ShouldEqual, "2025-11-02")
			So(normalize.Date(&ts), ShouldEqual, "2025-11-02")

			late := time.Date(2025, time.November, 2, 23, 30, 0, 0, time.FixedZone("CDT", -5*60*60))
			So(normalize.Date(late), ShouldEqual, "2025-11-02")
			So(normalize.Date(late), ShouldEqual, normalize.Date("2025-11-02T23:30:00-05:00"))
		})

		Convey("When the value does not parse", func() {
			So(normalize.Date("next tuesday"), ShouldEqual, "next tuesday")
			So(normalize.Date("  2025-13-45 "), ShouldEqual, "2025-13-45")
			So(normalize.Date("25-13-45"), ShouldEqual, "25-13-45")
			So(normalize.Date("99-02-30"), ShouldEqual, "99-02-30")
		})

		Convey("When the value is some other type", func() {
			So(normalize.Date(dateLabel{"2025-11-02"}), ShouldEqual, "2025-11-02")
			So(normalize.Date(20251102), ShouldEqual, "20251102")
		})
	})
}

func TestExpandTwoDigitYear(t *testing.T) {
	Convey("Given two-digit year expansion", t, func() {
		So(normalize.ExpandTwoDigitYear("25-11-02"), ShouldEqual, "2025-11-02")
		So(normalize.ExpandTwoDigitYear("99-01-01"), ShouldEqual, "1999-01-01")
		So(normalize.ExpandTwoDigitYear("2025-11-02"), ShouldEqual, "2025-11-02")
		So(normalize.ExpandTwoDigitYear("1-2-3"), ShouldEqual, "1-2-3")
	})
}
