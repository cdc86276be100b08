package player

import (
	"path/filepath"
	"testing"

	"github.com/mpvkit/mpvkit/engine"
	"github.com/mpvkit/mpvkit/engine/enginetest"
	"github.com/mpvkit/mpvkit/filesystem"
	"github.com/mpvkit/mpvkit/history"
	"github.com/mpvkit/mpvkit/property"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	filesystem.SetMemMapFs()
}

func isClosed(ch <-chan struct{}) bool {
	select {
	case <-ch:
		return true
	default:
		return false
	}
}

func TestSession(t *testing.T) {
	Convey("Given a detached session over a fake engine", t, func() {
		client := enginetest.New()
		s := New(Options{
			Factory: enginetest.Factory(client),
			Volume:  0.4,
			Resume:  true,
			History: true,
		})
		So(s.Start(nil), ShouldBeNil)
		defer s.Close()

		Convey("Start attaches the model and applies the volume", func() {
			So(s.Model().Snapshot().Volume, ShouldAlmostEqual, 0.4)
			So(client.Count("set_property volume="), ShouldEqual, 1)
		})

		Convey("Play loads the validated target", func() {
			So(s.Play("https://example.com/a.mkv"), ShouldBeNil)
			So(client.Calls(), ShouldContain, "command loadfile https://example.com/a.mkv")
			So(s.Model().Snapshot().URI, ShouldEqual, "https://example.com/a.mkv")
			So(s.Model().Snapshot().Playing, ShouldBeTrue)
		})

		Convey("Play rejects flag-like targets", func() {
			So(s.Play("--script=evil.lua"), ShouldNotBeNil)
			So(client.Count("command loadfile"), ShouldEqual, 0)
		})

		Convey("A saved position sets the start option before loading", func() {
			uri := "https://example.com/resume.mkv"
			So(history.Save(uri, 90, 600), ShouldBeNil)
			defer history.Remove(uri)

			So(s.Play(uri), ShouldBeNil)
			start, ok := client.Option("start")
			So(ok, ShouldBeTrue)
			So(start, ShouldEqual, "90.000")
			So(client.Index("set_option start"), ShouldBeLessThan, client.Index("command loadfile"))
		})

		Convey("Close saves the reached position", func() {
			uri := "https://example.com/save.mkv"
			defer history.Remove(uri)

			So(s.Play(uri), ShouldBeNil)
			client.PushProperty(property.Duration, property.Double(600))
			client.PushProperty(property.TimePos, property.Double(42))
			s.Bridge().Pump().Drain()

			So(s.Close(), ShouldBeNil)
			So(client.Destroyed(), ShouldBeTrue)

			found, err := history.Lookup(uri)
			So(err, ShouldBeNil)
			p, ok := found.Get()
			So(ok, ShouldBeTrue)
			So(p.TimePos, ShouldEqual, 42)
			So(isClosed(s.Done()), ShouldBeTrue)
		})

		Convey("Done closes on engine shutdown", func() {
			So(isClosed(s.Done()), ShouldBeFalse)
			client.Push(engine.Event{ID: engine.EventShutdown})
			s.Bridge().Pump().Drain()
			So(isClosed(s.Done()), ShouldBeTrue)
		})

		Convey("Done closes when the engine goes idle after a file", func() {
			client.Push(engine.Event{ID: engine.EventIdle})
			s.Bridge().Pump().Drain()
			So(isClosed(s.Done()), ShouldBeFalse)

			client.Push(
				engine.Event{ID: engine.EventFileLoaded},
				engine.Event{ID: engine.EventEndFile},
				engine.Event{ID: engine.EventIdle},
			)
			s.Bridge().Pump().Drain()
			So(isClosed(s.Done()), ShouldBeTrue)
		})
	})

	Convey("A failing engine fails Start", t, func() {
		s := New(Options{Factory: enginetest.FailingFactory(engine.ErrNoMem)})
		So(s.Start(nil), ShouldNotBeNil)
		So(s.Close(), ShouldBeNil)
	})
}

func TestTarget(t *testing.T) {
	Convey("Target", t, func() {
		Convey("keeps supported urls", func() {
			target, err := Target("  https://example.com/v.mkv ")
			So(err, ShouldBeNil)
			So(target, ShouldEqual, "https://example.com/v.mkv")
		})

		Convey("makes local paths absolute", func() {
			target, err := Target("movie.mkv")
			So(err, ShouldBeNil)
			So(filepath.IsAbs(target), ShouldBeTrue)
		})

		Convey("rejects bad input", func() {
			for _, bad := range []string{"", "   ", "-v", "a\nb", "javascript://x"} {
				_, err := Target(bad)
				So(err, ShouldNotBeNil)
			}
		})
	})
}
