// Package tui provides the terminal control panel shown while the engine plays.
package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mpvkit/mpvkit/state"
)

// Controls is the part of the state model the panel drives.
type Controls interface {
	Snapshot() state.Snapshot
	TogglePlayPause()
	SeekBy(seconds float64)
	SetVolume(fraction float64)
}

// Options configures the panel.
type Options struct {
	// Title is shown above the progress bar, usually the URI.
	Title string

	// SeekStep is the seek distance of the arrow keys in seconds.
	SeekStep float64

	// Updates delivers published snapshots.
	Updates <-chan state.Snapshot

	// Done is closed when the engine goes away.
	Done <-chan struct{}

	// Notice is shown once at startup, if set.
	Notice string
}

// Run shows the panel until the user quits or Done is closed.
func Run(controls Controls, options Options) error {
	_, err := tea.NewProgram(newBubble(controls, options), tea.WithAltScreen()).Run()
	return err
}

// Forward returns a subscriber that feeds snapshots into a channel for
// Options.Updates. A slow reader only ever misses intermediate snapshots.
func Forward() (func(state.Snapshot), <-chan state.Snapshot) {
	ch := make(chan state.Snapshot, 1)
	return func(s state.Snapshot) {
		for {
			select {
			case ch <- s:
				return
			default:
			}
			select {
			case <-ch:
			default:
			}
		}
	}, ch
}
