package tui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/mpvkit/mpvkit/state"
	"github.com/mpvkit/mpvkit/style"
)

const (
	defaultSeekStep = 5.0
	volumeStep      = 0.05
)

type bubble struct {
	controls Controls
	options  Options
	snapshot state.Snapshot

	// volume to restore when unmuting
	unmuted float64

	width, height int
	closed        bool

	keymap   *keymap
	help     help.Model
	progress progress.Model
	notifier notifier
}

func newBubble(controls Controls, options Options) *bubble {
	if options.SeekStep <= 0 {
		options.SeekStep = defaultSeekStep
	}

	b := &bubble{
		controls: controls,
		options:  options,
		snapshot: controls.Snapshot(),
		keymap:   newKeymap(),
		help:     help.New(),
		progress: progress.New(
			progress.WithGradient(string(style.AccentColor), string(style.Blue)),
			progress.WithoutPercentage(),
		),
	}
	b.unmuted = b.snapshot.Volume
	return b
}

func (b *bubble) title() string {
	if b.options.Title != "" {
		return b.options.Title
	}
	return b.snapshot.URI
}
