package tui

import (
	"fmt"
	"math"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mpvkit/mpvkit/state"
	"github.com/mpvkit/mpvkit/util"
)

type snapshotMsg state.Snapshot

type closedMsg struct{}

func (b *bubble) Init() tea.Cmd {
	cmds := []tea.Cmd{b.waitForSnapshot(), b.waitForDone()}
	if b.options.Notice != "" {
		cmds = append(cmds, notify(b.options.Notice))
	}
	return tea.Batch(cmds...)
}

func (b *bubble) waitForSnapshot() tea.Cmd {
	if b.options.Updates == nil {
		return nil
	}

	return func() tea.Msg {
		s, ok := <-b.options.Updates
		if !ok {
			return closedMsg{}
		}
		return snapshotMsg(s)
	}
}

func (b *bubble) waitForDone() tea.Cmd {
	if b.options.Done == nil {
		return nil
	}

	return func() tea.Msg {
		<-b.options.Done
		return closedMsg{}
	}
}

func (b *bubble) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		b.resize(msg.Width, msg.Height)
		return b, nil
	case snapshotMsg:
		b.snapshot = state.Snapshot(msg)
		if b.snapshot.Volume > 0 {
			b.unmuted = b.snapshot.Volume
		}
		return b, b.waitForSnapshot()
	case closedMsg:
		b.closed = true
		return b, tea.Quit
	case tea.KeyMsg:
		return b, b.handleKey(msg)
	case notification, clearNotificationMsg:
		return b, b.notifier.Update(msg)
	}

	return b, nil
}

func (b *bubble) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, b.keymap.quit, b.keymap.forceQuit):
		return tea.Quit
	case key.Matches(msg, b.keymap.showHelp):
		b.help.ShowAll = !b.help.ShowAll
		return nil
	case key.Matches(msg, b.keymap.playPause):
		b.controls.TogglePlayPause()
		// the model publishes through its dispatcher, so mirror it locally
		b.snapshot.Playing = !b.snapshot.Playing
		if b.snapshot.Playing {
			return notify("Playing")
		}
		return notify("Paused")
	case key.Matches(msg, b.keymap.seekForward):
		b.controls.SeekBy(b.options.SeekStep)
		return notify(fmt.Sprintf("+%gs", b.options.SeekStep))
	case key.Matches(msg, b.keymap.seekBackward):
		b.controls.SeekBy(-b.options.SeekStep)
		return notify(fmt.Sprintf("-%gs", b.options.SeekStep))
	case key.Matches(msg, b.keymap.volumeUp):
		return b.setVolume(b.snapshot.Volume + volumeStep)
	case key.Matches(msg, b.keymap.volumeDown):
		return b.setVolume(b.snapshot.Volume - volumeStep)
	case key.Matches(msg, b.keymap.mute):
		if b.snapshot.Volume > 0 {
			b.unmuted = b.snapshot.Volume
			return b.setVolume(0)
		}
		return b.setVolume(b.unmuted)
	}

	return nil
}

func (b *bubble) setVolume(fraction float64) tea.Cmd {
	fraction = util.Clamp(fraction, 0, 1)
	b.controls.SetVolume(fraction)
	b.snapshot.Volume = fraction
	if b.snapshot.Volume > 0 {
		b.unmuted = b.snapshot.Volume
		return notify(fmt.Sprintf("Volume %d%%", int(math.Round(b.snapshot.Volume*100))))
	}
	return notify("Muted")
}

func (b *bubble) resize(width, height int) {
	b.width = width
	b.height = height
	b.help.Width = width
	b.progress.Width = util.Min(util.Max(width-paddingX*2, 10), maxProgressWidth)
}
