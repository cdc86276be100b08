//go:build libmpv && cgo

// Package libmpv implements engine.Client on top of libmpv's client and
// OpenGL render APIs.
//
// C callbacks receive a go-pointer registry handle instead of a Go pointer
// and resolve it back to the registered closure.
package libmpv

/*
#cgo pkg-config: mpv
#include <locale.h>
#include <stdint.h>
#include <stdlib.h>
#include <mpv/client.h>
#include <mpv/render_gl.h>

extern void mpvkitWakeup(void *ctx);
extern void mpvkitUpdate(void *ctx);
extern uintptr_t mpvkitProcAddress(void *ctx, char *name);

static mpv_handle *mpvkit_create(void) {
	setlocale(LC_NUMERIC, "C");
	return mpv_create();
}

static void mpvkit_set_wakeup(mpv_handle *h, void *ctx) {
	mpv_set_wakeup_callback(h, ctx ? mpvkitWakeup : NULL, ctx);
}

static void mpvkit_set_update(mpv_render_context *r, void *ctx) {
	mpv_render_context_set_update_callback(r, ctx ? mpvkitUpdate : NULL, ctx);
}

static void *mpvkit_get_proc_address(void *ctx, const char *name) {
	return (void *)mpvkitProcAddress(ctx, (char *)name);
}

static int mpvkit_render_context_create(mpv_render_context **res, mpv_handle *h, const char *api, void *proc_ctx) {
	mpv_opengl_init_params gl = {
		.get_proc_address = mpvkit_get_proc_address,
		.get_proc_address_ctx = proc_ctx,
	};
	mpv_render_param params[] = {
		{MPV_RENDER_PARAM_API_TYPE, (void *)api},
		{MPV_RENDER_PARAM_OPENGL_INIT_PARAMS, &gl},
		{MPV_RENDER_PARAM_INVALID, NULL},
	};
	return mpv_render_context_create(res, h, params);
}

static int mpvkit_render_gl(mpv_render_context *r, int fbo, int w, int h, int internal_format, int flip_y) {
	mpv_opengl_fbo target = {
		.fbo = fbo,
		.w = w,
		.h = h,
		.internal_format = internal_format,
	};
	int flip = flip_y;
	mpv_render_param params[] = {
		{MPV_RENDER_PARAM_OPENGL_FBO, &target},
		{MPV_RENDER_PARAM_FLIP_Y, &flip},
		{MPV_RENDER_PARAM_INVALID, NULL},
	};
	return mpv_render_context_render(r, params);
}

static mpv_event_property *mpvkit_event_property(mpv_event *ev) {
	return (mpv_event_property *)ev->data;
}

static char *mpvkit_string_payload(void *data) {
	return *(char **)data;
}
*/
import "C"

import (
	"sync"
	"time"
	"unsafe"

	"github.com/mattn/go-pointer"
	"github.com/mpvkit/mpvkit/engine"
	"github.com/mpvkit/mpvkit/property"
)

// Client owns one mpv_handle. Calls after TerminateDestroy return
// engine.ErrUninitialized; WaitEvent returns EventNone.
type Client struct {
	mu     sync.RWMutex
	handle *C.mpv_handle
	wakeup unsafe.Pointer
}

// New allocates an uninitialized handle.
func New() (*Client, error) {
	handle := C.mpvkit_create()
	if handle == nil {
		return nil, engine.ErrNoMem
	}
	return &Client{handle: handle}, nil
}

// Factory returns an engine.Factory allocating libmpv handles.
func Factory() engine.Factory {
	return func() (engine.Client, error) {
		return New()
	}
}

// with runs fn while holding the handle, so TerminateDestroy waits for it.
func (c *Client) with(fn func(h *C.mpv_handle) C.int) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.handle == nil {
		return engine.ErrUninitialized
	}
	return engine.Check(int(fn(c.handle)))
}

func (c *Client) SetOptionString(name, value string) error {
	cname, cvalue := C.CString(name), C.CString(value)
	defer C.free(unsafe.Pointer(cname))
	defer C.free(unsafe.Pointer(cvalue))

	return c.with(func(h *C.mpv_handle) C.int {
		return C.mpv_set_option_string(h, cname, cvalue)
	})
}

func (c *Client) ObserveProperty(replyID uint64, name string, format engine.Format) error {
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))

	return c.with(func(h *C.mpv_handle) C.int {
		return C.mpv_observe_property(h, C.uint64_t(replyID), cname, C.mpv_format(format))
	})
}

func (c *Client) Initialize() error {
	return c.with(func(h *C.mpv_handle) C.int {
		return C.mpv_initialize(h)
	})
}

func (c *Client) Command(args ...string) error {
	if len(args) == 0 {
		return engine.ErrInvalidParameter
	}

	cargs := make([]*C.char, len(args)+1)
	for i, arg := range args {
		cargs[i] = C.CString(arg)
	}
	defer func() {
		for _, arg := range cargs[:len(args)] {
			C.free(unsafe.Pointer(arg))
		}
	}()

	return c.with(func(h *C.mpv_handle) C.int {
		return C.mpv_command(h, &cargs[0])
	})
}

func (c *Client) SetPropertyString(name, value string) error {
	cname, cvalue := C.CString(name), C.CString(value)
	defer C.free(unsafe.Pointer(cname))
	defer C.free(unsafe.Pointer(cvalue))

	return c.with(func(h *C.mpv_handle) C.int {
		return C.mpv_set_property_string(h, cname, cvalue)
	})
}

func (c *Client) SetProperty(name string, format engine.Format, data []byte) error {
	if format == engine.FormatString {
		return c.SetPropertyString(name, property.DecodeString(data))
	}
	if _, err := property.Decode(format, data); err != nil {
		return engine.ErrPropertyFormat
	}

	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))

	return c.with(func(h *C.mpv_handle) C.int {
		return C.mpv_set_property(h, cname, C.mpv_format(format), unsafe.Pointer(&data[0]))
	})
}

func (c *Client) WaitEvent(timeout time.Duration) engine.Event {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.handle == nil {
		return engine.Event{ID: engine.EventNone}
	}

	ev := C.mpv_wait_event(c.handle, C.double(timeout.Seconds()))
	out := engine.Event{
		ID:            engine.EventID(ev.event_id),
		ReplyUserdata: uint64(ev.reply_userdata),
		Err:           engine.Check(int(ev.error)),
	}

	if out.ID == engine.EventPropertyChange && ev.data != nil {
		out.Property = convertProperty(C.mpvkit_event_property(ev))
	}
	return out
}

// convertProperty copies the payload out of mpv's event memory, which is
// only valid until the next wait.
func convertProperty(p *C.mpv_event_property) *engine.PropertyEvent {
	prop := &engine.PropertyEvent{
		Name:   C.GoString(p.name),
		Format: engine.Format(p.format),
	}
	if p.data == nil {
		prop.Format = engine.FormatNone
		return prop
	}

	switch prop.Format {
	case engine.FormatDouble:
		prop.Data = C.GoBytes(p.data, 8)
	case engine.FormatFlag:
		prop.Data = C.GoBytes(p.data, C.int(unsafe.Sizeof(C.int(0))))
	case engine.FormatString:
		prop.Data = property.EncodeString(C.GoString(C.mpvkit_string_payload(p.data)))
	default:
		prop.Format = engine.FormatNone
	}
	return prop
}

func (c *Client) SetWakeupCallback(cb func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.handle == nil {
		return
	}

	var ctx unsafe.Pointer
	if cb != nil {
		ctx = pointer.Save(cb)
	}
	C.mpvkit_set_wakeup(c.handle, ctx)

	if c.wakeup != nil {
		pointer.Unref(c.wakeup)
	}
	c.wakeup = ctx
}

func (c *Client) CreateRenderContext(params []engine.RenderParam) (engine.RenderContext, error) {
	if err := engine.ValidateParams(params); err != nil {
		return nil, err
	}
	api, _ := engine.Lookup[string](params, engine.ParamAPIType)
	if api != engine.APITypeOpenGL {
		return nil, engine.ErrNotImplemented
	}
	gl, ok := engine.Lookup[*engine.OpenGLInitParams](params, engine.ParamOpenGLInitParams)
	if !ok || gl == nil || gl.GetProcAddress == nil {
		return nil, engine.ErrInvalidParameter
	}

	capi := C.CString(api)
	defer C.free(unsafe.Pointer(capi))

	// The resolver stays registered until Free, as long as mpv may use it.
	proc := pointer.Save(gl.GetProcAddress)
	r := &RenderContext{proc: proc}

	err := c.with(func(h *C.mpv_handle) C.int {
		return C.mpvkit_render_context_create(&r.ctx, h, capi, proc)
	})
	if err != nil {
		pointer.Unref(proc)
		return nil, err
	}
	return r, nil
}

func (c *Client) TerminateDestroy() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.handle == nil {
		return
	}

	C.mpvkit_set_wakeup(c.handle, nil)
	C.mpv_terminate_destroy(c.handle)
	c.handle = nil

	if c.wakeup != nil {
		pointer.Unref(c.wakeup)
		c.wakeup = nil
	}
}

// RenderContext owns one mpv_render_context.
type RenderContext struct {
	mu     sync.RWMutex
	ctx    *C.mpv_render_context
	proc   unsafe.Pointer
	update unsafe.Pointer
}

func (r *RenderContext) SetUpdateCallback(cb func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ctx == nil {
		return
	}

	var ctx unsafe.Pointer
	if cb != nil {
		ctx = pointer.Save(cb)
	}
	C.mpvkit_set_update(r.ctx, ctx)

	if r.update != nil {
		pointer.Unref(r.update)
	}
	r.update = ctx
}

func (r *RenderContext) Render(params []engine.RenderParam) error {
	if err := engine.ValidateParams(params); err != nil {
		return err
	}
	fbo, ok := engine.Lookup[*engine.OpenGLFBO](params, engine.ParamOpenGLFBO)
	if !ok || fbo == nil {
		return engine.ErrInvalidParameter
	}
	flip, _ := engine.Lookup[bool](params, engine.ParamFlipY)

	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.ctx == nil {
		return engine.ErrUninitialized
	}

	flag := 0
	if flip {
		flag = 1
	}
	return engine.Check(int(C.mpvkit_render_gl(r.ctx, C.int(fbo.FBO), C.int(fbo.W), C.int(fbo.H), C.int(fbo.InternalFormat), C.int(flag))))
}

func (r *RenderContext) Free() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ctx == nil {
		return
	}

	C.mpvkit_set_update(r.ctx, nil)
	C.mpv_render_context_free(r.ctx)
	r.ctx = nil

	for _, p := range []unsafe.Pointer{r.update, r.proc} {
		if p != nil {
			pointer.Unref(p)
		}
	}
	r.update, r.proc = nil, nil
}
