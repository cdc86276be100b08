// Package bridge owns one engine instance: it sets the engine up, wires its
// callbacks to the event pump and the render driver, forwards commands and
// tears everything down in order.
package bridge

import (
	"context"
	"sync"

	"github.com/mpvkit/mpvkit/dispatch"
	"github.com/mpvkit/mpvkit/engine"
	"github.com/mpvkit/mpvkit/log"
	"github.com/mpvkit/mpvkit/property"
	"github.com/mpvkit/mpvkit/pump"
	"github.com/mpvkit/mpvkit/render"
	"github.com/samber/mo"
)

// Config describes how a bridge creates and tunes its engine.
type Config struct {
	// Factory allocates the engine handle.
	Factory engine.Factory

	// Options are applied in order after the vo option. Nil means DefaultOptions.
	Options []Option

	// Dispatcher runs render passes on the thread owning the GL surface.
	// Nil means dispatch.Inline.
	Dispatcher dispatch.Dispatcher

	// FlipY is the vertical flip flag of every render pass.
	FlipY bool

	// OnProperty receives decoded property changes from the pump goroutine.
	OnProperty pump.PropertyFunc

	// OnEvent receives lifecycle events from the pump goroutine.
	OnEvent pump.EventFunc
}

// Bridge is the command/property bridge to one engine instance.
type Bridge struct {
	config Config
	pump   *pump.Pump

	// lifecycle serializes Initialize and Shutdown.
	lifecycle sync.Mutex
	stopPump  context.CancelFunc

	handles sync.RWMutex
	client  mo.Option[engine.Client]
	rctx    mo.Option[engine.RenderContext]
	driver  *render.Driver
}

// New returns an uninitialized bridge.
func New(config Config) *Bridge {
	if config.Dispatcher == nil {
		config.Dispatcher = dispatch.Inline
	}
	if config.Options == nil {
		config.Options = DefaultOptions()
	}

	b := &Bridge{
		config: config,
		client: mo.None[engine.Client](),
		rctx:   mo.None[engine.RenderContext](),
	}
	b.pump = pump.New(b.Client, config.OnProperty)
	b.pump.OnEvent(config.OnEvent)
	return b
}

// Client returns the live engine handle.
func (b *Bridge) Client() mo.Option[engine.Client] {
	b.handles.RLock()
	defer b.handles.RUnlock()
	return b.client
}

// RenderContext returns the live render context.
func (b *Bridge) RenderContext() mo.Option[engine.RenderContext] {
	b.handles.RLock()
	defer b.handles.RUnlock()
	return b.rctx
}

// Pump returns the bridge's event pump.
func (b *Bridge) Pump() *pump.Pump {
	return b.pump
}

// Driver returns the render driver, nil until initialized with a surface.
func (b *Bridge) Driver() *render.Driver {
	b.handles.RLock()
	defer b.handles.RUnlock()
	return b.driver
}

// Initialize creates, configures and starts the engine. With a nil surface
// the engine runs detached: it opens its own video output and no render
// context is created.
//
// Every failure leaves the bridge torn down, so Initialize may be retried.
func (b *Bridge) Initialize(surface render.Surface) error {
	b.lifecycle.Lock()
	defer b.lifecycle.Unlock()

	if b.Client().IsPresent() {
		return ErrAlreadyInitialized
	}

	logger := log.With("bridge")

	client, err := b.config.Factory()
	if err == nil && client == nil {
		err = engine.ErrNoMem
	}
	if err != nil {
		logger.WithError(err).Error("create engine")
		return &SetupError{Stage: ErrCreation, Err: err}
	}

	embedded := surface != nil
	options := b.config.Options
	if embedded {
		options = append([]Option{{"vo", "libmpv"}}, options...)
	}

	for _, option := range options {
		if err := client.SetOptionString(option.Name, option.Value); err != nil {
			logger.WithError(&SetupError{Stage: ErrOptionSet, Err: err}).Warnf("option %s", option)
		}
	}

	for _, o := range property.Observed {
		if err := client.ObserveProperty(0, o.Name, o.Format); err != nil {
			logger.WithError(err).Warnf("observe %s", o.Name)
		}
	}

	if err := client.Initialize(); err != nil {
		logger.WithError(err).Error("initialize engine")
		client.TerminateDestroy()
		return &SetupError{Stage: ErrInit, Err: err}
	}

	rctx := mo.None[engine.RenderContext]()
	if embedded {
		created, err := client.CreateRenderContext(render.InitParams(surface))
		if err != nil {
			logger.WithError(err).Error("create render context")
			client.TerminateDestroy()
			return &SetupError{Stage: ErrRenderInit, Err: err}
		}
		rctx = mo.Some(created)
	}

	var driver *render.Driver
	if embedded {
		driver = render.NewDriver(surface, b.RenderContext, b.config.Dispatcher, b.config.FlipY)
	}

	b.handles.Lock()
	b.client = mo.Some(client)
	b.rctx = rctx
	b.driver = driver
	b.handles.Unlock()

	rctx.ForEach(func(r engine.RenderContext) {
		r.SetUpdateCallback(driver.Update)
	})
	client.SetWakeupCallback(b.pump.Wake)

	ctx, cancel := context.WithCancel(context.Background())
	b.stopPump = cancel
	go b.pump.Run(ctx)

	// events queued before the callback was registered
	b.pump.Wake()

	logger.WithField("embedded", embedded).Info("engine initialized")
	return nil
}

// Shutdown frees the render context, then destroys the engine handle.
// It is idempotent and safe to call concurrently.
func (b *Bridge) Shutdown() {
	b.lifecycle.Lock()
	defer b.lifecycle.Unlock()

	if b.stopPump != nil {
		b.stopPump()
		b.stopPump = nil
	}

	b.handles.Lock()
	rctx, client := b.rctx, b.client
	b.rctx = mo.None[engine.RenderContext]()
	b.client = mo.None[engine.Client]()
	b.driver = nil
	b.handles.Unlock()

	rctx.ForEach(func(r engine.RenderContext) {
		r.SetUpdateCallback(nil)
		r.Free()
	})

	client.ForEach(func(c engine.Client) {
		c.SetWakeupCallback(nil)
		c.TerminateDestroy()
		log.With("bridge").Info("engine destroyed")
	})
}
