// Package pump drains the engine's event queue and turns property-change
// events into typed callbacks.
package pump

import (
	"context"
	"sync"

	"github.com/mpvkit/mpvkit/engine"
	"github.com/mpvkit/mpvkit/log"
	"github.com/mpvkit/mpvkit/property"
	"github.com/samber/mo"
)

// Source returns the current engine handle, or None once it is gone.
// It is consulted before every wait call.
type Source func() mo.Option[engine.Client]

// PropertyFunc receives decoded property changes.
type PropertyFunc func(name string, value property.Value)

// EventFunc receives lifecycle events (file-loaded, end-file, idle, shutdown).
type EventFunc func(id engine.EventID)

// Pump drains events without blocking. Drain calls are serialized, so a
// wakeup arriving while a drain is in progress queues behind it.
type Pump struct {
	source     Source
	onProperty PropertyFunc
	onEvent    EventFunc

	drain sync.Mutex
	wake  chan struct{}
}

// New returns a pump reading from source and reporting to onProperty.
func New(source Source, onProperty PropertyFunc) *Pump {
	return &Pump{
		source:     source,
		onProperty: onProperty,
		wake:       make(chan struct{}, 1),
	}
}

// OnEvent registers a receiver for lifecycle events. Must be called before Run.
func (p *Pump) OnEvent(fn EventFunc) {
	p.onEvent = fn
}

// Wake schedules a drain. It never blocks and is safe to call from engine
// threads; wakeups coalesce while one is pending.
func (p *Pump) Wake() {
	select {
	case p.wake <- struct{}{}:
	default:
	}
}

// Run parks until woken, then drains, until ctx is cancelled.
func (p *Pump) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-p.wake:
			p.Drain()
		}
	}
}

// Drain processes every queued event and returns once the engine reports
// no event or the handle disappears. It returns the number of property
// callbacks made.
func (p *Pump) Drain() int {
	p.drain.Lock()
	defer p.drain.Unlock()

	logger := log.With("pump")
	delivered := 0

	for {
		client, ok := p.source().Get()
		if !ok {
			return delivered
		}

		ev := client.WaitEvent(0)
		switch ev.ID {
		case engine.EventNone:
			return delivered
		case engine.EventPropertyChange:
			if p.dispatchProperty(ev.Property) {
				delivered++
			}
		case engine.EventShutdown, engine.EventStartFile, engine.EventEndFile,
			engine.EventFileLoaded, engine.EventIdle:
			if ev.Err != nil {
				logger.WithError(ev.Err).Debugf("%s", ev.ID)
			}
			if p.onEvent != nil {
				p.onEvent(ev.ID)
			}
		default:
			logger.Tracef("ignoring %s", ev.ID)
		}
	}
}

func (p *Pump) dispatchProperty(prop *engine.PropertyEvent) bool {
	if prop == nil || prop.Format == engine.FormatNone {
		return false
	}

	// observed properties must arrive in the format they were observed with
	if expected, ok := property.FormatOf(prop.Name); ok && expected != prop.Format {
		log.With("pump").Warnf("dropping %s change: got %s, observed as %s", prop.Name, prop.Format, expected)
		return false
	}

	value, err := property.Decode(prop.Format, prop.Data)
	if err != nil {
		log.With("pump").WithError(err).Warnf("dropping %s change", prop.Name)
		return false
	}

	if p.onProperty != nil {
		p.onProperty(prop.Name, value)
	}
	return true
}
