package history

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/mpvkit/mpvkit/filesystem"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestHistory(t *testing.T) {
	Convey("Given an empty history", t, func() {
		uri := "https://example.com/video.mkv"
		So(Remove(uri), ShouldBeNil)

		Convey("When saving a position", func() {
			So(Save(uri, 120, 600), ShouldBeNil)

			Convey("Then it can be looked up", func() {
				found, err := Lookup(uri)
				So(err, ShouldBeNil)
				p, ok := found.Get()
				So(ok, ShouldBeTrue)
				So(p.TimePos, ShouldEqual, 120)
				So(p.Progress(), ShouldAlmostEqual, 0.2, 1e-9)
				So(p.String(), ShouldEqual, uri+" : 2:00 / 10:00")
			})

			Convey("And playback resumes from it", func() {
				at, ok, err := ResumeAt(uri)
				So(err, ShouldBeNil)
				So(ok, ShouldBeTrue)
				So(at, ShouldEqual, 120)
			})

			Convey("And a later save replaces it", func() {
				So(Save(uri, 590, 600), ShouldBeNil)
				_, ok, err := ResumeAt(uri)
				So(err, ShouldBeNil)
				So(ok, ShouldBeFalse)
			})

			Convey("And removing it forgets it", func() {
				So(Remove(uri), ShouldBeNil)
				found, err := Lookup(uri)
				So(err, ShouldBeNil)
				So(found.IsAbsent(), ShouldBeTrue)
			})
		})

		Convey("Positions without a duration are not saved", func() {
			So(Save(uri, 30, 0), ShouldBeNil)
			found, err := Lookup(uri)
			So(err, ShouldBeNil)
			So(found.IsAbsent(), ShouldBeTrue)
		})

		Convey("Positions near the start do not resume", func() {
			So(Save(uri, 2, 600), ShouldBeNil)
			_, ok, err := ResumeAt(uri)
			So(err, ShouldBeNil)
			So(ok, ShouldBeFalse)
		})
	})
}

func TestPrune(t *testing.T) {
	Convey("Given an old and a recent position", t, func() {
		oldURI, newURI := "https://example.com/old.mkv", "https://example.com/new.mkv"
		So(Save(oldURI, 60, 600), ShouldBeNil)
		So(Save(newURI, 60, 600), ShouldBeNil)
		Reset(func() {
			_ = Remove(oldURI)
			_ = Remove(newURI)
		})

		saved, err := Get()
		So(err, ShouldBeNil)
		saved[Key(oldURI)].UpdatedAt = time.Now().Add(-2 * MaxAge)
		So(cacher.Set(saved), ShouldBeNil)

		Convey("Prune drops only the old one", func() {
			pruned, err := Prune(MaxAge)
			So(err, ShouldBeNil)
			So(pruned, ShouldEqual, 1)

			found, err := Lookup(oldURI)
			So(err, ShouldBeNil)
			So(found.IsAbsent(), ShouldBeTrue)

			found, err = Lookup(newURI)
			So(err, ShouldBeNil)
			So(found.IsPresent(), ShouldBeTrue)
		})
	})
}

func TestKey(t *testing.T) {
	Convey("Key", t, func() {
		So(Key("https://example.com/a.mkv"), ShouldEqual, "https://example.com/a.mkv")
		So(filepath.IsAbs(Key("relative/file.mkv")), ShouldBeTrue)
	})
}
