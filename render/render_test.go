package render

import (
	"errors"
	"testing"

	"github.com/mpvkit/mpvkit/dispatch"
	"github.com/mpvkit/mpvkit/engine"
	"github.com/mpvkit/mpvkit/engine/enginetest"
	"github.com/samber/mo"
	. "github.com/smartystreets/goconvey/convey"
)

type fakeSurface struct {
	width, height float64
	scale         float64
	current       int
	viewports     [][4]int
	swaps         int
	failCurrent   error
}

func (s *fakeSurface) MakeCurrent() error {
	s.current++
	return s.failCurrent
}
func (s *fakeSurface) Size() (float64, float64) { return s.width, s.height }
func (s *fakeSurface) Scale() float64           { return s.scale }
func (s *fakeSurface) SetViewport(x, y, w, h int) {
	s.viewports = append(s.viewports, [4]int{x, y, w, h})
}
func (s *fakeSurface) SwapBuffers() { s.swaps++ }
func (s *fakeSurface) ProcAddress(name string) uintptr {
	if name == "glViewport" {
		return 0xbeef
	}
	return 0
}

func (s *fakeSurface) glCalls() int {
	return s.current + len(s.viewports) + s.swaps
}

func newContext(t *testing.T, surface Surface) (*enginetest.Client, *enginetest.RenderContext) {
	client := enginetest.New()
	rctx, err := client.CreateRenderContext(InitParams(surface))
	if err != nil {
		t.Fatal(err)
	}
	return client, rctx.(*enginetest.RenderContext)
}

func TestViewport(t *testing.T) {
	Convey("Viewport scales logical size to pixels", t, func() {
		w, h := Viewport(&fakeSurface{width: 1280, height: 720, scale: 2})
		So(w, ShouldEqual, 2560)
		So(h, ShouldEqual, 1440)

		w, h = Viewport(&fakeSurface{width: 100.7, height: 50.2, scale: 1.5})
		So(w, ShouldEqual, 151)
		So(h, ShouldEqual, 75)

		w, h = Viewport(&fakeSurface{width: 640, height: 480})
		So(w, ShouldEqual, 640)
		So(h, ShouldEqual, 480)
	})
}

func TestRenderFrame(t *testing.T) {
	Convey("Given a surface and a render context", t, func() {
		surface := &fakeSurface{width: 800, height: 600, scale: 2}
		client, rctx := newContext(t, surface)
		live := mo.Some[engine.RenderContext](rctx)
		driver := NewDriver(surface, func() mo.Option[engine.RenderContext] { return live }, dispatch.Inline, DefaultFlipY)

		Convey("A frame binds, sets the viewport, renders and swaps", func() {
			driver.RenderFrame()

			So(surface.current, ShouldEqual, 1)
			So(surface.viewports, ShouldResemble, [][4]int{{0, 0, 1600, 1200}})
			So(surface.swaps, ShouldEqual, 1)

			frames := rctx.Frames()
			So(len(frames), ShouldEqual, 1)
			So(frames[0].FBO, ShouldResemble, engine.OpenGLFBO{FBO: 0, W: 1600, H: 1200, InternalFormat: 0})
			So(frames[0].FlipY, ShouldBeTrue)
		})

		Convey("Geometry is recomputed on every pass", func() {
			driver.RenderFrame()
			surface.width, surface.height = 400, 300
			driver.RenderFrame()

			So(client.Calls(), ShouldContain, "render 1600x1200")
			So(client.Calls(), ShouldContain, "render 800x600")
		})

		Convey("The proc resolver reaches the surface", func() {
			So(rctx.ResolveProc("glViewport"), ShouldEqual, uintptr(0xbeef))
		})

		Convey("A failed render does not present", func() {
			rctx.FailRender(engine.ErrGeneric)
			driver.RenderFrame()
			So(surface.swaps, ShouldEqual, 0)
		})

		Convey("A context that cannot be made current renders nothing", func() {
			surface.failCurrent = errors.New("no context")
			driver.RenderFrame()
			So(len(rctx.Frames()), ShouldEqual, 0)
			So(surface.swaps, ShouldEqual, 0)
		})

		Convey("Update re-dispatches onto the owning thread", func() {
			var posted []func()
			driver = NewDriver(surface, func() mo.Option[engine.RenderContext] { return live },
				dispatch.Func(func(fn func()) { posted = append(posted, fn) }), DefaultFlipY)

			rctx.SetUpdateCallback(driver.Update)
			rctx.FireUpdate()

			So(len(posted), ShouldEqual, 1)
			So(len(rctx.Frames()), ShouldEqual, 0)

			posted[0]()
			So(len(rctx.Frames()), ShouldEqual, 1)
		})
	})

	Convey("Rendering before setup is a silent no-op", t, func() {
		surface := &fakeSurface{width: 800, height: 600, scale: 1}

		Convey("without a render context", func() {
			driver := NewDriver(surface, func() mo.Option[engine.RenderContext] { return mo.None[engine.RenderContext]() }, dispatch.Inline, DefaultFlipY)
			So(driver.RenderFrame, ShouldNotPanic)
			So(surface.glCalls(), ShouldEqual, 0)
		})

		Convey("without a surface", func() {
			_, rctx := newContext(t, surface)
			driver := NewDriver(nil, func() mo.Option[engine.RenderContext] { return mo.Some[engine.RenderContext](rctx) }, dispatch.Inline, DefaultFlipY)
			So(driver.RenderFrame, ShouldNotPanic)
			So(len(rctx.Frames()), ShouldEqual, 0)
		})

		Convey("on a nil driver", func() {
			var driver *Driver
			So(driver.RenderFrame, ShouldNotPanic)
		})
	})
}
