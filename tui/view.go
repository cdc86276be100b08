package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mpvkit/mpvkit/icon"
	"github.com/mpvkit/mpvkit/style"
	"github.com/mpvkit/mpvkit/util"
	"github.com/muesli/reflow/truncate"
)

const (
	paddingX = 2
	paddingY = 1

	maxProgressWidth = 80
)

var paddingStyle = style.New().Padding(paddingY, paddingX)

func (b *bubble) View() string {
	if b.closed {
		return ""
	}

	s := b.snapshot

	title := b.title()
	if b.width > 0 {
		title = truncate.StringWithTail(title, uint(util.Max(b.width-paddingX*2-2, 1)), "…")
	}

	var status string
	switch {
	case s.Idle && !s.Loaded:
		status = icon.Get(icon.Idle) + " Idle"
	case s.Playing:
		status = icon.Get(icon.Play) + " Playing"
	default:
		status = icon.Get(icon.Pause) + " Paused"
	}

	times := fmt.Sprintf("%s / %s", util.FormatDuration(s.TimePos), util.FormatDuration(s.Duration))

	volumeIcon := icon.Get(icon.Volume)
	if s.Volume <= 0 {
		volumeIcon = icon.Get(icon.Mute)
	}
	volume := fmt.Sprintf("%s %d%%", volumeIcon, int(math.Round(s.Volume*100)))

	lines := []string{
		style.Title(title),
		"",
		b.progress.ViewAs(s.Progress),
		lipgloss.JoinHorizontal(lipgloss.Top,
			style.Bold(status), "  ",
			style.Faint(times), "  ",
			volume,
		),
		"",
		b.notifier.View(b.help.View(b.keymap)),
	}

	return paddingStyle.Render(strings.Join(lines, "\n"))
}
