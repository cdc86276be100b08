// Package player runs one playback session: a bridge to the engine, the
// state model the UI observes, and the resume history.
package player

import (
	"sync"
	"sync/atomic"

	"github.com/mpvkit/mpvkit/bridge"
	"github.com/mpvkit/mpvkit/dispatch"
	"github.com/mpvkit/mpvkit/engine"
	"github.com/mpvkit/mpvkit/history"
	"github.com/mpvkit/mpvkit/log"
	"github.com/mpvkit/mpvkit/property"
	"github.com/mpvkit/mpvkit/render"
	"github.com/mpvkit/mpvkit/state"
)

// Options configures a session.
type Options struct {
	// Factory allocates the engine handle.
	Factory engine.Factory

	// Engine options, nil means bridge.DefaultOptions.
	Engine []bridge.Option

	// Dispatcher owns the GL surface and the state model.
	// Nil means dispatch.Inline.
	Dispatcher dispatch.Dispatcher

	FlipY bool

	// Volume applied once the engine is up, in [0, 1].
	Volume float64

	// Resume starts files from their saved position.
	Resume bool

	// History saves the reached position on Close.
	History bool
}

// Session is a single engine instance with its observable state.
type Session struct {
	options Options
	bridge  *bridge.Bridge
	model   *state.Model

	// set once a file has loaded, so the idle event after it ends playback
	played   atomic.Bool
	done     chan struct{}
	doneOnce sync.Once
}

// New returns a session that is not started yet.
func New(options Options) *Session {
	if options.Dispatcher == nil {
		options.Dispatcher = dispatch.Inline
	}

	s := &Session{
		options: options,
		model:   state.NewModel(options.Dispatcher),
		done:    make(chan struct{}),
	}

	s.bridge = bridge.New(bridge.Config{
		Factory:    options.Factory,
		Options:    options.Engine,
		Dispatcher: options.Dispatcher,
		FlipY:      options.FlipY,
		OnProperty: func(name string, value property.Value) {
			s.model.HandlePropertyChange(name, value)
		},
		OnEvent: s.handleEvent,
	})
	return s
}

// Model returns the observable state of the session.
func (s *Session) Model() *state.Model {
	return s.model
}

// Bridge returns the engine bridge.
func (s *Session) Bridge() *bridge.Bridge {
	return s.bridge
}

// Done is closed when the engine shuts down, whoever asked for it, or goes
// idle after playing a file.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Start initializes the engine. A nil surface runs it detached.
func (s *Session) Start(surface render.Surface) error {
	if err := s.bridge.Initialize(surface); err != nil {
		return err
	}

	s.model.Attach(s.bridge)
	s.model.SetVolume(s.options.Volume)
	return nil
}

// Play validates uri and loads it, resuming from history if enabled.
func (s *Session) Play(uri string) error {
	target, err := Target(uri)
	if err != nil {
		return err
	}

	logger := log.With("player").WithField("uri", target)

	if s.options.Resume {
		at, ok, err := history.ResumeAt(target)
		switch {
		case err != nil:
			logger.WithError(err).Warn("read history")
		case ok:
			logger.WithField("start", at).Info("resuming")
			s.bridge.SetStart(at)
		}
	}

	s.model.Play(target)
	return nil
}

// Close saves the reached position and destroys the engine.
// It is safe to call more than once.
func (s *Session) Close() error {
	snapshot := s.model.Snapshot()

	s.model.Attach(nil)
	s.bridge.Shutdown()
	s.markDone()

	if !s.options.History || snapshot.URI == "" {
		return nil
	}
	return history.Save(snapshot.URI, snapshot.TimePos, snapshot.Duration)
}

func (s *Session) handleEvent(id engine.EventID) {
	s.model.HandleEvent(id)

	switch id {
	case engine.EventFileLoaded:
		s.played.Store(true)
	case engine.EventIdle:
		if s.played.Load() {
			s.markDone()
		}
	case engine.EventShutdown:
		s.markDone()
	}
}

func (s *Session) markDone() {
	s.doneOnce.Do(func() { close(s.done) })
}
