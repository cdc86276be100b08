//go:build sdl2

package window

import (
	"fmt"

	"github.com/ebitengine/purego"
	"github.com/veandco/go-sdl2/sdl"
)

type sdlWindow struct {
	window  *sdl.Window
	context sdl.GLContext

	glViewport func(x, y, width, height int32)
}

// Open creates a resizable high-DPI window with a current GL context.
func Open(cfg Config) (Window, error) {
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return nil, fmt.Errorf("init sdl: %w", err)
	}

	sdl.GLSetAttribute(sdl.GL_CONTEXT_PROFILE_MASK, sdl.GL_CONTEXT_PROFILE_CORE)
	sdl.GLSetAttribute(sdl.GL_CONTEXT_MAJOR_VERSION, 3)
	sdl.GLSetAttribute(sdl.GL_CONTEXT_MINOR_VERSION, 2)
	sdl.GLSetAttribute(sdl.GL_DOUBLEBUFFER, 1)

	window, err := sdl.CreateWindow(
		cfg.Title,
		sdl.WINDOWPOS_UNDEFINED,
		sdl.WINDOWPOS_UNDEFINED,
		int32(cfg.Width),
		int32(cfg.Height),
		sdl.WINDOW_OPENGL|sdl.WINDOW_RESIZABLE|sdl.WINDOW_ALLOW_HIGHDPI|sdl.WINDOW_SHOWN,
	)
	if err != nil {
		sdl.Quit()
		return nil, fmt.Errorf("create window: %w", err)
	}

	context, err := window.GLCreateContext()
	if err != nil {
		window.Destroy()
		sdl.Quit()
		return nil, fmt.Errorf("create gl context: %w", err)
	}

	w := &sdlWindow{window: window, context: context}

	viewport := sdl.GLGetProcAddress("glViewport")
	if viewport == nil {
		w.Close()
		return nil, fmt.Errorf("resolve glViewport")
	}
	purego.RegisterFunc(&w.glViewport, uintptr(viewport))

	return w, nil
}

func (w *sdlWindow) MakeCurrent() error {
	return w.window.GLMakeCurrent(w.context)
}

func (w *sdlWindow) Size() (width, height float64) {
	ww, wh := w.window.GetSize()
	return float64(ww), float64(wh)
}

// Scale is the drawable to window size ratio, above 1 on high-DPI displays.
func (w *sdlWindow) Scale() float64 {
	ww, _ := w.window.GetSize()
	dw, _ := w.window.GLGetDrawableSize()
	if ww == 0 {
		return 1
	}
	return float64(dw) / float64(ww)
}

func (w *sdlWindow) SetViewport(x, y, width, height int) {
	w.glViewport(int32(x), int32(y), int32(width), int32(height))
}

func (w *sdlWindow) SwapBuffers() {
	w.window.GLSwap()
}

func (w *sdlWindow) ProcAddress(name string) uintptr {
	return uintptr(sdl.GLGetProcAddress(name))
}

func (w *sdlWindow) Poll() []Event {
	var events []Event

	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch e := event.(type) {
		case *sdl.QuitEvent:
			events = append(events, EventQuit)
		case *sdl.WindowEvent:
			switch e.Event {
			case sdl.WINDOWEVENT_EXPOSED, sdl.WINDOWEVENT_SIZE_CHANGED:
				events = append(events, EventRedraw)
			}
		case *sdl.KeyboardEvent:
			if e.Type != sdl.KEYDOWN {
				continue
			}
			switch e.Keysym.Sym {
			case sdl.K_ESCAPE, sdl.K_q:
				events = append(events, EventQuit)
			case sdl.K_SPACE:
				events = append(events, EventTogglePause)
			case sdl.K_RIGHT:
				events = append(events, EventSeekForward)
			case sdl.K_LEFT:
				events = append(events, EventSeekBackward)
			case sdl.K_UP:
				events = append(events, EventVolumeUp)
			case sdl.K_DOWN:
				events = append(events, EventVolumeDown)
			}
		}
	}

	return events
}

func (w *sdlWindow) Close() {
	sdl.GLDeleteContext(w.context)
	w.window.Destroy()
	sdl.Quit()
}
