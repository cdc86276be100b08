package tui

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mpvkit/mpvkit/style"
)

const notificationLifetime = 2 * time.Second

// notification is shown next to the last line of the panel for a while.
type notification string

type clearNotificationMsg struct {
	at time.Time
}

type notifier struct {
	text       string
	notifiedAt time.Time
}

func notify(text string) tea.Cmd {
	return func() tea.Msg {
		return notification(text)
	}
}

func (n *notifier) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case notification:
		n.text = string(msg)
		n.notifiedAt = time.Now()
		at := n.notifiedAt
		return tea.Tick(notificationLifetime, func(time.Time) tea.Msg {
			return clearNotificationMsg{at: at}
		})
	case clearNotificationMsg:
		// a newer notification keeps its own timer
		if msg.at.Equal(n.notifiedAt) {
			n.text = ""
		}
	}
	return nil
}

func (n *notifier) View(content string) string {
	if n.text == "" {
		return content
	}

	lines := strings.Split(content, "\n")
	lines[len(lines)-1] += "  " + style.Faint(n.text)
	return strings.Join(lines, "\n")
}
