// Package render paints engine frames into a GL surface.
package render

import (
	"math"

	"github.com/mpvkit/mpvkit/dispatch"
	"github.com/mpvkit/mpvkit/engine"
	"github.com/mpvkit/mpvkit/log"
	"github.com/samber/mo"
)

// Surface is a drawable with a GL context, owned by the UI thread.
type Surface interface {
	// MakeCurrent binds the surface's GL context to the calling thread.
	MakeCurrent() error

	// Size is the logical size in points.
	Size() (width, height float64)

	// Scale is the backing scale factor (physical pixels per point).
	Scale() float64

	// SetViewport sets the GL viewport in physical pixels.
	SetViewport(x, y, width, height int)

	// SwapBuffers presents the back buffer.
	SwapBuffers()

	// ProcAddress resolves a GL entry point, 0 if unknown.
	ProcAddress(name string) uintptr
}

// ContextSource returns the live render context, or None before setup and
// after teardown.
type ContextSource func() mo.Option[engine.RenderContext]

// DefaultFlipY is the orientation contract of the GL path: the engine
// renders top-down, the default framebuffer is bottom-up.
const DefaultFlipY = true

// Viewport computes the physical pixel size of a surface.
func Viewport(s Surface) (width, height int) {
	w, h := s.Size()
	scale := s.Scale()
	if scale <= 0 {
		scale = 1
	}
	return int(math.Floor(w * scale)), int(math.Floor(h * scale))
}

// InitParams builds the parameter list for creating a GL render context on s.
func InitParams(s Surface) []engine.RenderParam {
	return []engine.RenderParam{
		{Type: engine.ParamAPIType, Data: engine.APITypeOpenGL},
		{Type: engine.ParamOpenGLInitParams, Data: &engine.OpenGLInitParams{GetProcAddress: s.ProcAddress}},
		engine.Sentinel,
	}
}

// FrameParams builds the parameter list for rendering one frame into the
// default framebuffer.
func FrameParams(width, height int, flipY bool) []engine.RenderParam {
	return []engine.RenderParam{
		{Type: engine.ParamOpenGLFBO, Data: &engine.OpenGLFBO{FBO: 0, W: width, H: height, InternalFormat: 0}},
		{Type: engine.ParamFlipY, Data: flipY},
		engine.Sentinel,
	}
}

// Driver renders frames on demand.
type Driver struct {
	surface    Surface
	source     ContextSource
	dispatcher dispatch.Dispatcher
	flipY      bool
}

// NewDriver returns a driver painting into surface. Update re-dispatches
// onto dispatcher, which must run on the thread owning the surface.
func NewDriver(surface Surface, source ContextSource, dispatcher dispatch.Dispatcher, flipY bool) *Driver {
	return &Driver{
		surface:    surface,
		source:     source,
		dispatcher: dispatcher,
		flipY:      flipY,
	}
}

// RenderFrame draws one frame and presents it. Without a surface or a render
// context it does nothing; both happen legitimately around setup and teardown.
// Must run on the surface's thread.
func (d *Driver) RenderFrame() {
	if d == nil || d.surface == nil {
		return
	}

	rctx, ok := d.source().Get()
	if !ok {
		return
	}

	logger := log.With("render")

	if err := d.surface.MakeCurrent(); err != nil {
		logger.WithError(err).Debug("make current")
		return
	}

	width, height := Viewport(d.surface)
	d.surface.SetViewport(0, 0, width, height)

	if err := rctx.Render(FrameParams(width, height, d.flipY)); err != nil {
		logger.WithError(err).Debugf("frame %dx%d skipped", width, height)
		return
	}

	d.surface.SwapBuffers()
}

// Update is the engine's update callback. It is invoked off the UI thread and
// only schedules a RenderFrame there.
func (d *Driver) Update() {
	d.dispatcher.Post(d.RenderFrame)
}
