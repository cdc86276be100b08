// Package window provides the native GL window the embedded engine renders
// into, and maps its input to playback intents.
package window

import (
	"errors"

	"github.com/mpvkit/mpvkit/key"
	"github.com/mpvkit/mpvkit/render"
	"github.com/mpvkit/mpvkit/state"
	"github.com/spf13/viper"
)

// ErrUnavailable is returned by Open in builds without a windowing backend.
var ErrUnavailable = errors.New("no window backend compiled in, rebuild with -tags sdl2")

// Config is the initial window geometry and title.
type Config struct {
	Width, Height int
	Title         string
}

// ConfigFromViper reads the window.* keys.
func ConfigFromViper() Config {
	return Config{
		Width:  viper.GetInt(key.WindowWidth),
		Height: viper.GetInt(key.WindowHeight),
		Title:  viper.GetString(key.WindowTitle),
	}
}

// Event is a window or input event relevant to playback.
type Event int

const (
	EventQuit Event = iota
	EventRedraw
	EventTogglePause
	EventSeekForward
	EventSeekBackward
	EventVolumeUp
	EventVolumeDown
)

// Window is a GL surface with an event source. All methods must be called
// on the thread that opened it.
type Window interface {
	render.Surface

	// Poll drains pending events without blocking.
	Poll() []Event

	// Close destroys the GL context and the window.
	Close()
}

// Player is the part of the state model the window drives.
type Player interface {
	Snapshot() state.Snapshot
	TogglePlayPause()
	SeekBy(seconds float64)
	SetVolume(fraction float64)
}

const volumeStep = 0.05

// Apply routes events to p and redraw. It reports whether a quit was requested.
func Apply(events []Event, p Player, seekStep float64, redraw func()) (quit bool) {
	for _, ev := range events {
		switch ev {
		case EventQuit:
			quit = true
		case EventRedraw:
			redraw()
		case EventTogglePause:
			p.TogglePlayPause()
		case EventSeekForward:
			p.SeekBy(seekStep)
		case EventSeekBackward:
			p.SeekBy(-seekStep)
		case EventVolumeUp:
			p.SetVolume(p.Snapshot().Volume + volumeStep)
		case EventVolumeDown:
			p.SetVolume(p.Snapshot().Volume - volumeStep)
		}
	}
	return quit
}
