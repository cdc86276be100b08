package bridge

import (
	"errors"
	"sync"
	"testing"

	"github.com/mpvkit/mpvkit/dispatch"
	"github.com/mpvkit/mpvkit/engine"
	"github.com/mpvkit/mpvkit/engine/enginetest"
	"github.com/mpvkit/mpvkit/property"
	"github.com/mpvkit/mpvkit/render"
	"github.com/mpvkit/mpvkit/state"
	. "github.com/smartystreets/goconvey/convey"
)

type surface struct {
	swaps int
}

func (s *surface) MakeCurrent() error              { return nil }
func (s *surface) Size() (float64, float64)        { return 640, 360 }
func (s *surface) Scale() float64                  { return 2 }
func (s *surface) SetViewport(_, _, _, _ int)      {}
func (s *surface) SwapBuffers()                    { s.swaps++ }
func (s *surface) ProcAddress(name string) uintptr { return uintptr(len(name)) }

var _ render.Surface = (*surface)(nil)

func newBridge(client *enginetest.Client) *Bridge {
	return New(Config{
		Factory:    enginetest.Factory(client),
		Dispatcher: dispatch.Inline,
		FlipY:      render.DefaultFlipY,
	})
}

func TestInitialize(t *testing.T) {
	Convey("Given a bridge over a fake engine", t, func() {
		client := enginetest.New()
		b := newBridge(client)
		Reset(b.Shutdown)

		Convey("Initialize with a surface runs the full setup sequence", func() {
			So(b.Initialize(&surface{}), ShouldBeNil)

			calls := client.Calls()
			So(calls[0], ShouldEqual, "create")
			So(calls[1], ShouldEqual, "set_option vo=libmpv")
			So(calls, ShouldContain, "set_option force-window=immediate")
			So(calls, ShouldContain, "set_option demuxer-readahead-secs=5.0")

			So(calls, ShouldContain, "observe 0 time-pos double")
			So(calls, ShouldContain, "observe 0 duration double")
			So(calls, ShouldContain, "observe 0 pause flag")
			So(calls, ShouldContain, "observe 0 volume double")

			So(client.Index("set_option"), ShouldBeLessThan, client.Index("initialize"))
			So(client.Index("observe"), ShouldBeLessThan, client.Index("initialize"))
			So(client.Index("initialize"), ShouldBeLessThan, client.Index("render_context_create"))
			So(client.Index("render_context_create"), ShouldBeLessThan, client.Index("set_update_callback"))
			So(client.Index("set_update_callback"), ShouldBeLessThan, client.Index("set_wakeup_callback"))

			So(b.Client().IsPresent(), ShouldBeTrue)
			So(b.RenderContext().IsPresent(), ShouldBeTrue)
			So(b.Driver(), ShouldNotBeNil)
		})

		Convey("The proc resolver stays reachable through the render context", func() {
			So(b.Initialize(&surface{}), ShouldBeNil)
			So(client.RenderContext().ResolveProc("glViewport"), ShouldEqual, uintptr(len("glViewport")))
		})

		Convey("The update callback renders on the dispatcher", func() {
			s := &surface{}
			So(b.Initialize(s), ShouldBeNil)

			client.RenderContext().FireUpdate()
			So(len(client.RenderContext().Frames()), ShouldEqual, 1)
			So(client.RenderContext().Frames()[0].FBO.W, ShouldEqual, 1280)
			So(s.swaps, ShouldEqual, 1)
		})

		Convey("Initialize without a surface runs detached", func() {
			So(b.Initialize(nil), ShouldBeNil)

			_, hasVO := client.Option("vo")
			So(hasVO, ShouldBeFalse)
			So(client.Count("render_context_create"), ShouldEqual, 0)
			So(b.RenderContext().IsAbsent(), ShouldBeTrue)
			So(b.Driver(), ShouldBeNil)
		})

		Convey("A rejected option is not fatal", func() {
			client.Fail["option:icc-profile-auto"] = engine.ErrOptionNotFound
			So(b.Initialize(nil), ShouldBeNil)
			So(client.Count("initialize"), ShouldEqual, 1)
		})

		Convey("A second Initialize is refused", func() {
			So(b.Initialize(nil), ShouldBeNil)
			So(b.Initialize(nil), ShouldEqual, ErrAlreadyInitialized)
			So(client.Count("create"), ShouldEqual, 1)
		})

		Convey("Configured options follow the built-in ones", func() {
			b = New(Config{
				Factory: enginetest.Factory(client),
				Options: append(DefaultOptions(), Option{"hwdec", "no"}),
			})
			defer b.Shutdown()
			So(b.Initialize(nil), ShouldBeNil)

			value, _ := client.Option("hwdec")
			So(value, ShouldEqual, "no")
		})
	})
}

func TestSetupFailures(t *testing.T) {
	Convey("Fatal setup failures leave the bridge torn down", t, func() {
		Convey("Creation", func() {
			b := New(Config{Factory: enginetest.FailingFactory(engine.ErrNoMem)})
			err := b.Initialize(nil)

			So(errors.Is(err, ErrCreation), ShouldBeTrue)
			So(errors.Is(err, engine.ErrNoMem), ShouldBeTrue)
			So(b.Client().IsAbsent(), ShouldBeTrue)
		})

		Convey("Initialization", func() {
			client := enginetest.New()
			client.Fail["initialize"] = engine.ErrInvalidParameter
			b := newBridge(client)

			err := b.Initialize(&surface{})
			var setup *SetupError
			So(errors.As(err, &setup), ShouldBeTrue)
			So(setup.Stage, ShouldEqual, ErrInit)
			So(client.Destroyed(), ShouldBeTrue)
			So(client.Count("render_context_create"), ShouldEqual, 0)
			So(b.Client().IsAbsent(), ShouldBeTrue)
		})

		Convey("Render context creation", func() {
			client := enginetest.New()
			client.Fail["render_context_create"] = engine.ErrUnsupported
			b := newBridge(client)

			err := b.Initialize(&surface{})
			So(errors.Is(err, ErrRenderInit), ShouldBeTrue)
			So(errors.Is(err, engine.ErrUnsupported), ShouldBeTrue)
			So(client.Destroyed(), ShouldBeTrue)
			So(b.Client().IsAbsent(), ShouldBeTrue)
			So(b.RenderContext().IsAbsent(), ShouldBeTrue)
		})

		Convey("A failed bridge can be initialized again", func() {
			first := enginetest.New()
			first.Fail["initialize"] = engine.ErrGeneric
			second := enginetest.New()
			clients := []*enginetest.Client{first, second}

			b := New(Config{Factory: func() (engine.Client, error) {
				c := clients[0]
				clients = clients[1:]
				return c, nil
			}})
			defer b.Shutdown()

			So(b.Initialize(nil), ShouldNotBeNil)
			So(b.Initialize(nil), ShouldBeNil)
			So(b.Client().MustGet() == engine.Client(second), ShouldBeTrue)
		})
	})
}

func TestShutdown(t *testing.T) {
	Convey("Given an initialized bridge", t, func() {
		client := enginetest.New()
		b := newBridge(client)
		So(b.Initialize(&surface{}), ShouldBeNil)
		rctx := client.RenderContext()

		Convey("Shutdown frees the render context before destroying the engine", func() {
			b.Shutdown()

			So(rctx.Freed(), ShouldBeTrue)
			So(client.Destroyed(), ShouldBeTrue)
			So(client.Index("render_context_free"), ShouldBeLessThan, client.Index("terminate_destroy"))
			So(b.Client().IsAbsent(), ShouldBeTrue)
			So(b.RenderContext().IsAbsent(), ShouldBeTrue)
		})

		Convey("Shutdown twice frees and destroys once", func() {
			b.Shutdown()
			b.Shutdown()

			So(client.Count("render_context_free"), ShouldEqual, 1)
			So(client.Count("terminate_destroy"), ShouldEqual, 1)
		})

		Convey("Concurrent shutdowns serialize", func() {
			var wg sync.WaitGroup
			for range 8 {
				wg.Add(1)
				go func() {
					defer wg.Done()
					b.Shutdown()
				}()
			}
			wg.Wait()

			So(client.Count("render_context_free"), ShouldEqual, 1)
			So(client.Count("terminate_destroy"), ShouldEqual, 1)
		})

		Convey("Rendering after shutdown is a no-op", func() {
			driver := b.Driver()
			b.Shutdown()
			So(driver.RenderFrame, ShouldNotPanic)
			So(len(rctx.Frames()), ShouldEqual, 0)
		})

		Convey("Commands after shutdown reach nothing", func() {
			b.Shutdown()
			before := len(client.Calls())
			b.Load("file.mkv")
			b.SetPaused(true)
			So(len(client.Calls()), ShouldEqual, before)
		})
	})
}

func TestCommands(t *testing.T) {
	Convey("Given an initialized bridge", t, func() {
		client := enginetest.New()
		b := newBridge(client)
		So(b.Initialize(nil), ShouldBeNil)
		Reset(b.Shutdown)

		Convey("Load issues loadfile with the literal uri", func() {
			b.Load("https://example.com/a b.mkv")
			So(client.Calls(), ShouldContain, "command loadfile https://example.com/a b.mkv")
		})

		Convey("SetPaused writes yes/no strings", func() {
			b.SetPaused(true)
			b.SetPaused(false)
			So(client.Calls(), ShouldContain, "set_property_string pause=yes")
			So(client.Calls(), ShouldContain, "set_property_string pause=no")
		})

		Convey("Seek rounds to a whole percent", func() {
			b.Seek(0.37)
			b.Seek(0.999)
			b.Seek(2)
			So(client.Calls(), ShouldContain, "command seek 37 absolute-percent")
			So(client.Count("command seek 100 absolute-percent"), ShouldEqual, 2)
		})

		Convey("SeekSeconds and SetStart take seconds", func() {
			b.SeekSeconds(12.5)
			b.SetStart(90)
			So(client.Calls(), ShouldContain, "command seek 12.500 absolute")
			So(client.Calls(), ShouldContain, "set_option start=90.000")
		})

		Convey("SetVolume writes a double on the engine scale", func() {
			b.SetVolume(0.5)
			So(client.Calls(), ShouldContain, "set_property volume=50")
		})

		Convey("A failing command is swallowed", func() {
			client.Fail["command:stop"] = engine.ErrCommand
			So(b.Stop, ShouldNotPanic)
		})
	})
}

func TestRoundTrip(t *testing.T) {
	Convey("Given a model wired through the bridge to an echoing engine", t, func() {
		client := enginetest.New()
		client.Echo = true

		model := state.NewModel(dispatch.Inline)
		b := New(Config{
			Factory:    enginetest.Factory(client),
			Dispatcher: dispatch.Inline,
			OnProperty: model.HandlePropertyChange,
			OnEvent:    model.HandleEvent,
		})
		model.Attach(b)
		So(b.Initialize(nil), ShouldBeNil)
		Reset(b.Shutdown)

		Convey("Volume survives the engine's 0-100 scale", func() {
			for i := 0; i <= 20; i++ {
				f := float64(i) / 20
				model.SetVolume(f)
				b.Pump().Drain()
				So(model.Snapshot().Volume, ShouldAlmostEqual, f, 1e-9)
			}
		})

		Convey("The published volume comes from the engine echo", func() {
			previous := model.Snapshot().Volume
			for i := 0; i <= 20; i++ {
				f := float64(i) / 20

				// bypass the model so only the echo can publish f
				b.SetVolume(f)
				So(model.Snapshot().Volume, ShouldAlmostEqual, previous, 1e-9)

				So(b.Pump().Drain(), ShouldBeGreaterThanOrEqualTo, 1)
				So(model.Snapshot().Volume, ShouldAlmostEqual, f, 1e-9)
				previous = f
			}
		})

		Convey("Pause flips come back as playing state", func() {
			model.Pause()
			b.Pump().Drain()
			So(model.Snapshot().Playing, ShouldBeFalse)

			client.PushProperty(property.Pause, property.Flag(false))
			b.Pump().Drain()
			So(model.Snapshot().Playing, ShouldBeTrue)
		})

		Convey("Engine events reach the model", func() {
			client.PushProperty(property.Duration, property.Double(100))
			client.PushProperty(property.TimePos, property.Double(25))
			client.Push(engine.Event{ID: engine.EventFileLoaded})
			b.Pump().Drain()

			s := model.Snapshot()
			So(s.Progress, ShouldAlmostEqual, 0.25, 1e-9)
			So(s.Loaded, ShouldBeTrue)
		})
	})
}
