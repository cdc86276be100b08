package history

import (
	"fmt"
	"time"

	"github.com/mpvkit/mpvkit/util"
)

const (
	// positions closer than this to either end start from the beginning
	minResume      = 5.0
	finishedMargin = 0.95
)

// Position is the playback position reached in one URI.
type Position struct {
	URI       string    `json:"uri"`
	TimePos   float64   `json:"time_pos"`
	Duration  float64   `json:"duration"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Progress is the watched fraction.
func (p *Position) Progress() float64 {
	if p.Duration <= 0 {
		return 0
	}
	return util.Clamp(p.TimePos/p.Duration, 0, 1)
}

// Resumable reports whether playback should resume from this position.
func (p *Position) Resumable() bool {
	return p.TimePos >= minResume && p.Progress() < finishedMargin
}

func (p *Position) String() string {
	return fmt.Sprintf("%s : %s / %s", p.URI, util.FormatDuration(p.TimePos), util.FormatDuration(p.Duration))
}
