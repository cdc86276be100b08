package bridge

import (
	"math"
	"strconv"
	"strings"

	"github.com/mpvkit/mpvkit/engine"
	"github.com/mpvkit/mpvkit/log"
	"github.com/mpvkit/mpvkit/property"
	"github.com/mpvkit/mpvkit/util"
	"github.com/samber/lo"
)

// Load replaces the current file with uri. The uri is passed through as is.
func (b *Bridge) Load(uri string) {
	b.command("loadfile", uri)
}

// SetPaused pauses or resumes playback.
func (b *Bridge) SetPaused(paused bool) {
	b.setString(property.Pause, lo.Ternary(paused, "yes", "no"))
}

// Seek jumps to a fraction of the file, rounded to a whole percent.
func (b *Bridge) Seek(fraction float64) {
	percent := int(math.Round(util.Clamp(fraction, 0, 1) * 100))
	b.command("seek", strconv.Itoa(percent), "absolute-percent")
}

// SeekSeconds jumps to an absolute position in seconds.
func (b *Bridge) SeekSeconds(seconds float64) {
	b.command("seek", formatSeconds(seconds), "absolute")
}

// SetVolume sets the volume from a fraction in [0,1].
func (b *Bridge) SetVolume(fraction float64) {
	b.setProperty(property.Volume, property.Double(util.Clamp(fraction, 0, 1)*100))
}

// SetStart sets where the next loaded file starts playing.
func (b *Bridge) SetStart(seconds float64) {
	b.withClient("option start", func(c engine.Client) error {
		return c.SetOptionString("start", formatSeconds(seconds))
	})
}

// Stop stops playback and clears the playlist.
func (b *Bridge) Stop() {
	b.command("stop")
}

func formatSeconds(seconds float64) string {
	return strconv.FormatFloat(math.Max(seconds, 0), 'f', 3, 64)
}

func (b *Bridge) command(args ...string) {
	b.withClient(strings.Join(args, " "), func(c engine.Client) error {
		return c.Command(args...)
	})
}

func (b *Bridge) setString(name, value string) {
	b.withClient("set "+name, func(c engine.Client) error {
		return c.SetPropertyString(name, value)
	})
}

func (b *Bridge) setProperty(name string, value property.Value) {
	b.withClient("set "+name, func(c engine.Client) error {
		return c.SetProperty(name, value.Format(), property.Encode(value))
	})
}

// withClient runs fn against the live handle. Failures are logged and never
// returned: callers observe the outcome through property changes.
func (b *Bridge) withClient(what string, fn func(engine.Client) error) {
	client, ok := b.Client().Get()
	if !ok {
		log.With("bridge").Debugf("%s: engine not running", what)
		return
	}

	if err := fn(client); err != nil {
		log.With("bridge").WithError(err).Warn(what)
	}
}
