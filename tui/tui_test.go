package tui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mpvkit/mpvkit/state"
	. "github.com/smartystreets/goconvey/convey"
)

type controls struct {
	snapshot state.Snapshot
	toggles  int
	seeks    []float64
	volumes  []float64
}

func (c *controls) Snapshot() state.Snapshot { return c.snapshot }
func (c *controls) TogglePlayPause()         { c.toggles++ }
func (c *controls) SeekBy(seconds float64)   { c.seeks = append(c.seeks, seconds) }
func (c *controls) SetVolume(f float64)      { c.volumes = append(c.volumes, f) }

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestPanel(t *testing.T) {
	Convey("Given a panel over playing media", t, func() {
		c := &controls{snapshot: state.Snapshot{
			URI:      "/media/movie.mkv",
			Playing:  true,
			Loaded:   true,
			Duration: 120,
			TimePos:  30,
			Progress: 0.25,
			Volume:   0.5,
		}}
		b := newBubble(c, Options{SeekStep: 10})

		Convey("The view shows the title, position and volume", func() {
			view := b.View()
			So(view, ShouldContainSubstring, "movie.mkv")
			So(view, ShouldContainSubstring, "0:30 / 2:00")
			So(view, ShouldContainSubstring, "50%")
			So(view, ShouldContainSubstring, "Playing")
		})

		Convey("Space toggles playback", func() {
			_, cmd := b.Update(keyMsg(" "))
			So(c.toggles, ShouldEqual, 1)
			So(b.snapshot.Playing, ShouldBeFalse)
			So(cmd, ShouldNotBeNil)
			So(cmd(), ShouldEqual, notification("Paused"))
		})

		Convey("Arrows seek by the configured step", func() {
			b.Update(keyMsg("right"))
			b.Update(keyMsg("h"))
			So(c.seeks, ShouldResemble, []float64{10, -10})
		})

		Convey("Volume keys step and clamp", func() {
			b.Update(keyMsg("up"))
			So(c.volumes[0], ShouldAlmostEqual, 0.55)

			b.snapshot.Volume = 0.98
			b.Update(keyMsg("k"))
			So(c.volumes[1], ShouldEqual, 1)
		})

		Convey("Mute restores the previous volume", func() {
			_, cmd := b.Update(keyMsg("m"))
			So(c.volumes, ShouldResemble, []float64{0})
			So(cmd(), ShouldEqual, notification("Muted"))
			So(b.View(), ShouldContainSubstring, "0%")

			b.Update(keyMsg("m"))
			So(c.volumes, ShouldResemble, []float64{0, 0.5})
		})

		Convey("Snapshots replace the displayed state", func() {
			updates := make(chan state.Snapshot, 1)
			b.options.Updates = updates
			_, cmd := b.Update(snapshotMsg(state.Snapshot{URI: "/media/other.mkv", Duration: 60, TimePos: 60, Progress: 1}))
			So(cmd, ShouldNotBeNil)
			So(b.View(), ShouldContainSubstring, "1:00 / 1:00")
			So(b.View(), ShouldContainSubstring, "Paused")

			updates <- state.Snapshot{Idle: true}
			So(cmd(), ShouldResemble, snapshotMsg(state.Snapshot{Idle: true}))
		})

		Convey("q quits", func() {
			_, cmd := b.Update(keyMsg("q"))
			So(cmd(), ShouldHaveSameTypeAs, tea.QuitMsg{})
		})

		Convey("A closed engine quits and blanks the view", func() {
			done := make(chan struct{})
			close(done)
			b.options.Done = done
			msg := b.waitForDone()()
			_, cmd := b.Update(msg)
			So(cmd(), ShouldHaveSameTypeAs, tea.QuitMsg{})
			So(b.View(), ShouldBeEmpty)
		})

		Convey("A long title is truncated to the width", func() {
			b.options.Title = "a very long title that does not fit into a narrow terminal"
			b.Update(tea.WindowSizeMsg{Width: 20, Height: 10})
			So(b.View(), ShouldNotContainSubstring, "narrow terminal")
			So(b.View(), ShouldContainSubstring, "…")
		})
	})
}

func TestNotifier(t *testing.T) {
	Convey("Given a notifier", t, func() {
		var n notifier

		Convey("A notification is appended to the last line", func() {
			n.Update(notification("Volume 40%"))
			So(n.View("a\nb"), ShouldStartWith, "a\nb")
			So(n.View("a\nb"), ShouldContainSubstring, "Volume 40%")
		})

		Convey("Only the matching clear message removes it", func() {
			n.Update(notification("first"))
			stale := clearNotificationMsg{at: n.notifiedAt.Add(-time.Second)}
			n.Update(stale)
			So(n.text, ShouldEqual, "first")

			n.Update(clearNotificationMsg{at: n.notifiedAt})
			So(n.View("x"), ShouldEqual, "x")
		})
	})
}

func TestForward(t *testing.T) {
	Convey("Forward keeps only the latest snapshot for a slow reader", t, func() {
		send, ch := Forward()
		send(state.Snapshot{TimePos: 1})
		send(state.Snapshot{TimePos: 2})
		So((<-ch).TimePos, ShouldEqual, 2)
	})
}
