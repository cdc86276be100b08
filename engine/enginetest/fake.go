// Package enginetest provides a scripted in-memory engine.Client that records
// every call made against it.
package enginetest

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/mpvkit/mpvkit/engine"
	"github.com/mpvkit/mpvkit/property"
)

// Journal is an ordered, concurrency-safe call log shared by a client and
// the render contexts it creates.
type Journal struct {
	mu    sync.Mutex
	calls []string
}

func (j *Journal) add(format string, args ...any) {
	j.mu.Lock()
	j.calls = append(j.calls, fmt.Sprintf(format, args...))
	j.mu.Unlock()
}

// Calls returns a copy of the recorded calls.
func (j *Journal) Calls() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]string(nil), j.calls...)
}

// Count returns how many recorded calls start with prefix.
func (j *Journal) Count(prefix string) int {
	n := 0
	for _, c := range j.Calls() {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

// Index returns the position of the first call starting with prefix, or -1.
func (j *Journal) Index(prefix string) int {
	for i, c := range j.Calls() {
		if strings.HasPrefix(c, prefix) {
			return i
		}
	}
	return -1
}

// Client is a fake engine.Client.
type Client struct {
	*Journal

	// Fail maps a call name ("initialize", "render_context_create",
	// "option:<name>", "command:<name>") to the error it returns.
	Fail map[string]error

	// Echo makes property writes come back as property-change events,
	// the way the real engine reports observed properties.
	Echo bool

	queue     *engine.Queue
	mu        sync.Mutex
	observed  map[string]engine.Format
	options   map[string]string
	waits     int
	destroyed bool
	rctx      *RenderContext
}

// New returns an empty fake client.
func New() *Client {
	return &Client{
		Journal:  &Journal{},
		Fail:     make(map[string]error),
		queue:    engine.NewQueue(),
		observed: make(map[string]engine.Format),
		options:  make(map[string]string),
	}
}

// Factory returns an engine.Factory handing out c.
func Factory(c *Client) engine.Factory {
	return func() (engine.Client, error) {
		c.add("create")
		return c, nil
	}
}

// FailingFactory returns an engine.Factory that always fails with err.
func FailingFactory(err error) engine.Factory {
	return func() (engine.Client, error) {
		return nil, err
	}
}

// Push queues events as if the engine had produced them.
func (c *Client) Push(events ...engine.Event) {
	c.queue.Push(events...)
}

// PushProperty queues a property-change event carrying v.
func (c *Client) PushProperty(name string, v property.Value) {
	c.Push(engine.Event{
		ID:       engine.EventPropertyChange,
		Property: &engine.PropertyEvent{Name: name, Format: v.Format(), Data: property.Encode(v)},
	})
}

// Pending reports the number of queued events.
func (c *Client) Pending() int { return c.queue.Len() }

// Waits reports how many times WaitEvent was called.
func (c *Client) Waits() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.waits
}

// Option returns an option value set through SetOptionString.
func (c *Client) Option(name string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.options[name]
	return v, ok
}

// Observed returns the format a property was observed with.
func (c *Client) Observed(name string) (engine.Format, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	f, ok := c.observed[name]
	return f, ok
}

// Destroyed reports whether TerminateDestroy ran.
func (c *Client) Destroyed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.destroyed
}

// RenderContext returns the last render context created, if any.
func (c *Client) RenderContext() *RenderContext {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rctx
}

// Wakeup fires the registered wakeup callback without queuing anything.
func (c *Client) Wakeup() {
	c.queue.Push()
}

func (c *Client) SetOptionString(name, value string) error {
	c.add("set_option %s=%s", name, value)
	if err := c.Fail["option:"+name]; err != nil {
		return err
	}
	c.mu.Lock()
	c.options[name] = value
	c.mu.Unlock()
	return nil
}

func (c *Client) ObserveProperty(replyID uint64, name string, format engine.Format) error {
	c.add("observe %d %s %s", replyID, name, format)
	c.mu.Lock()
	c.observed[name] = format
	c.mu.Unlock()
	return nil
}

func (c *Client) Initialize() error {
	c.add("initialize")
	return c.Fail["initialize"]
}

func (c *Client) Command(args ...string) error {
	c.add("command %s", strings.Join(args, " "))
	if len(args) > 0 {
		return c.Fail["command:"+args[0]]
	}
	return engine.ErrInvalidParameter
}

func (c *Client) SetPropertyString(name, value string) error {
	c.add("set_property_string %s=%s", name, value)
	if err := c.Fail["property:"+name]; err != nil {
		return err
	}

	if format, ok := c.Observed(name); ok && c.Echo && format == engine.FormatFlag {
		c.PushProperty(name, property.Flag(value == "yes"))
	}
	return nil
}

func (c *Client) SetProperty(name string, format engine.Format, data []byte) error {
	v, err := property.Decode(format, data)
	if err != nil {
		return engine.ErrPropertyFormat
	}
	c.add("set_property %s=%v", name, v.Interface())
	if err := c.Fail["property:"+name]; err != nil {
		return err
	}

	if _, ok := c.Observed(name); ok && c.Echo {
		c.PushProperty(name, v)
	}
	return nil
}

func (c *Client) WaitEvent(timeout time.Duration) engine.Event {
	c.mu.Lock()
	c.waits++
	c.mu.Unlock()
	return c.queue.Pop(timeout)
}

func (c *Client) SetWakeupCallback(cb func()) {
	c.add("set_wakeup_callback")
	c.queue.SetWakeup(cb)
}

func (c *Client) CreateRenderContext(params []engine.RenderParam) (engine.RenderContext, error) {
	c.add("render_context_create")
	if err := engine.ValidateParams(params); err != nil {
		return nil, err
	}
	if err := c.Fail["render_context_create"]; err != nil {
		return nil, err
	}

	api, _ := engine.Lookup[string](params, engine.ParamAPIType)
	if api != engine.APITypeOpenGL {
		return nil, engine.ErrNotImplemented
	}
	gl, _ := engine.Lookup[*engine.OpenGLInitParams](params, engine.ParamOpenGLInitParams)

	rctx := &RenderContext{journal: c.Journal, init: gl}
	c.mu.Lock()
	c.rctx = rctx
	c.mu.Unlock()
	return rctx, nil
}

func (c *Client) TerminateDestroy() {
	c.add("terminate_destroy")
	c.queue.Drop()
	c.mu.Lock()
	c.destroyed = true
	c.mu.Unlock()
}

// RenderContext is a fake engine.RenderContext.
type RenderContext struct {
	journal *Journal
	init    *engine.OpenGLInitParams

	mu     sync.Mutex
	update func()
	frames []Frame
	freed  bool
	err    error
}

// Frame is the parameter set of one Render call.
type Frame struct {
	FBO   engine.OpenGLFBO
	FlipY bool
}

// ResolveProc calls the proc-address resolver handed over at creation.
func (r *RenderContext) ResolveProc(name string) uintptr {
	return r.init.GetProcAddress(name)
}

// FireUpdate invokes the registered update callback, as the engine does
// from its own thread when a frame is ready.
func (r *RenderContext) FireUpdate() {
	r.mu.Lock()
	cb := r.update
	r.mu.Unlock()
	if cb != nil {
		cb()
	}
}

// FailRender makes subsequent Render calls return err.
func (r *RenderContext) FailRender(err error) {
	r.mu.Lock()
	r.err = err
	r.mu.Unlock()
}

// Frames returns the frames rendered so far.
func (r *RenderContext) Frames() []Frame {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Frame(nil), r.frames...)
}

// Freed reports whether Free ran.
func (r *RenderContext) Freed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.freed
}

func (r *RenderContext) SetUpdateCallback(cb func()) {
	r.journal.add("set_update_callback")
	r.mu.Lock()
	r.update = cb
	r.mu.Unlock()
}

func (r *RenderContext) Render(params []engine.RenderParam) error {
	if err := engine.ValidateParams(params); err != nil {
		return err
	}
	fbo, ok := engine.Lookup[*engine.OpenGLFBO](params, engine.ParamOpenGLFBO)
	if !ok {
		return engine.ErrInvalidParameter
	}
	flip, _ := engine.Lookup[bool](params, engine.ParamFlipY)

	r.journal.add("render %dx%d", fbo.W, fbo.H)

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.frames = append(r.frames, Frame{FBO: *fbo, FlipY: flip})
	return nil
}

func (r *RenderContext) Free() {
	r.journal.add("render_context_free")
	r.mu.Lock()
	r.freed = true
	r.update = nil
	r.mu.Unlock()
}
