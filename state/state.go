// Package state holds the observable playback state published to the UI and
// routes user intent down to the engine.
package state

import (
	"sync"

	"github.com/mpvkit/mpvkit/dispatch"
	"github.com/mpvkit/mpvkit/engine"
	"github.com/mpvkit/mpvkit/property"
	"github.com/mpvkit/mpvkit/util"
	"github.com/samber/mo"
)

// Snapshot is a copy of the published playback fields.
type Snapshot struct {
	URI      string  `json:"uri" jsonschema:"description=URI handed to the engine"`
	Playing  bool    `json:"playing"`
	Progress float64 `json:"progress" jsonschema:"minimum=0,maximum=1"`
	Duration float64 `json:"duration" jsonschema:"minimum=0,description=Duration in seconds"`
	TimePos  float64 `json:"time_pos" jsonschema:"minimum=0,description=Playback position in seconds"`
	Volume   float64 `json:"volume" jsonschema:"minimum=0,maximum=1"`
	Loaded   bool    `json:"loaded" jsonschema:"description=A file is loaded and playable"`
	Idle     bool    `json:"idle" jsonschema:"description=The engine has nothing to play"`
}

// Commander is the engine side of user intents. Every call is
// fire-and-forget; outcomes come back as property changes.
type Commander interface {
	Load(uri string)
	SetPaused(paused bool)
	Seek(fraction float64)
	SeekSeconds(seconds float64)
	SetVolume(fraction float64)
}

// Model is the state sink. Published fields are only mutated on the
// dispatcher's thread; Snapshot may be read from anywhere.
type Model struct {
	dispatcher dispatch.Dispatcher

	mu          sync.RWMutex
	snapshot    Snapshot
	commander   mo.Option[Commander]
	subscribers []func(Snapshot)
}

// NewModel returns a model publishing on dispatcher, volume at full scale.
func NewModel(dispatcher dispatch.Dispatcher) *Model {
	return &Model{
		dispatcher: dispatcher,
		snapshot:   Snapshot{Volume: 1},
		commander:  mo.None[Commander](),
	}
}

// Attach sets the commander intents are sent to. The model does not own it;
// Attach(nil) detaches.
func (m *Model) Attach(c Commander) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c == nil {
		m.commander = mo.None[Commander]()
		return
	}
	m.commander = mo.Some(c)
}

// Subscribe registers fn to receive a snapshot after every mutation.
// fn runs on the dispatcher's thread.
func (m *Model) Subscribe(fn func(Snapshot)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subscribers = append(m.subscribers, fn)
}

// Snapshot returns the current published state.
func (m *Model) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot
}

// HandlePropertyChange applies one decoded property change. It may be called
// from any thread; the mutation itself runs on the dispatcher.
func (m *Model) HandlePropertyChange(name string, value property.Value) {
	m.dispatcher.Post(func() {
		m.update(func(s *Snapshot) bool {
			return apply(s, name, value)
		})
	})
}

// apply is the decode table. It reports whether s changed.
func apply(s *Snapshot, name string, value property.Value) bool {
	switch name {
	case property.TimePos:
		t, ok := value.Double()
		if !ok {
			return false
		}
		s.TimePos = t
		if s.Duration > 0 {
			s.Progress = t / s.Duration
		}
	case property.Duration:
		d, ok := value.Double()
		if !ok {
			return false
		}
		s.Duration = d
	case property.Pause:
		paused, ok := value.Flag()
		if !ok {
			return false
		}
		s.Playing = !paused
	case property.Volume:
		v, ok := value.Double()
		if !ok {
			return false
		}
		s.Volume = v / 100
	default:
		return false
	}
	return true
}

// HandleEvent applies a lifecycle event.
func (m *Model) HandleEvent(id engine.EventID) {
	m.dispatcher.Post(func() {
		m.update(func(s *Snapshot) bool {
			switch id {
			case engine.EventStartFile:
				s.Idle = false
			case engine.EventFileLoaded:
				s.Loaded = true
				s.Idle = false
			case engine.EventEndFile:
				s.Loaded = false
			case engine.EventIdle:
				s.Idle = true
				s.Playing = false
			case engine.EventShutdown:
				s.Loaded = false
				s.Playing = false
			default:
				return false
			}
			return true
		})
	})
}

// Play loads uri and marks playback as started.
func (m *Model) Play(uri string) {
	m.command(func(c Commander) { c.Load(uri) })
	m.publish(func(s *Snapshot) {
		s.URI = uri
		s.Playing = true
	})
}

// Resume unpauses playback.
func (m *Model) Resume() {
	m.command(func(c Commander) { c.SetPaused(false) })
	m.publish(func(s *Snapshot) { s.Playing = true })
}

// Pause pauses playback.
func (m *Model) Pause() {
	m.command(func(c Commander) { c.SetPaused(true) })
	m.publish(func(s *Snapshot) { s.Playing = false })
}

// TogglePlayPause pauses when playing and resumes otherwise. The decision
// is taken on the dispatcher, after every publish posted before it.
func (m *Model) TogglePlayPause() {
	m.dispatcher.Post(func() {
		var playing bool
		m.update(func(s *Snapshot) bool {
			s.Playing = !s.Playing
			playing = s.Playing
			return true
		})
		m.command(func(c Commander) { c.SetPaused(!playing) })
	})
}

// Seek jumps to fraction of the duration. Position updates arrive from the
// engine.
func (m *Model) Seek(fraction float64) {
	m.command(func(c Commander) { c.Seek(util.Clamp(fraction, 0, 1)) })
}

// SeekBy jumps seconds relative to the current position, clamped to the
// file's bounds.
func (m *Model) SeekBy(seconds float64) {
	s := m.Snapshot()
	target := s.TimePos + seconds
	if s.Duration > 0 {
		target = util.Clamp(target, 0, s.Duration)
	} else {
		target = util.Max(target, 0)
	}
	m.command(func(c Commander) { c.SeekSeconds(target) })
}

// SetVolume sets the volume, published immediately.
func (m *Model) SetVolume(fraction float64) {
	fraction = util.Clamp(fraction, 0, 1)
	m.command(func(c Commander) { c.SetVolume(fraction) })
	m.publish(func(s *Snapshot) { s.Volume = fraction })
}

func (m *Model) command(fn func(Commander)) {
	m.mu.RLock()
	c := m.commander
	m.mu.RUnlock()
	c.ForEach(fn)
}

func (m *Model) publish(fn func(*Snapshot)) {
	m.dispatcher.Post(func() {
		m.update(func(s *Snapshot) bool {
			fn(s)
			return true
		})
	})
}

func (m *Model) update(fn func(*Snapshot) bool) {
	m.mu.Lock()
	if !fn(&m.snapshot) {
		m.mu.Unlock()
		return
	}
	snapshot := m.snapshot
	subscribers := append([]func(Snapshot){}, m.subscribers...)
	m.mu.Unlock()

	for _, fn := range subscribers {
		fn(snapshot)
	}
}
