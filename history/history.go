// Package history persists the last playback position of every played URI
// so playback can resume where it stopped.
package history

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/metafates/gache"
	"github.com/mpvkit/mpvkit/filesystem"
	"github.com/mpvkit/mpvkit/where"
	"github.com/samber/mo"
)

// cacher is the disk-backed store of positions keyed by URI.
var cacher = gache.New[map[string]*Position](
	&gache.Options{
		Path:       where.History(),
		FileSystem: &filesystem.CacheFs{},
	},
)

// Get returns every stored position.
func Get() (map[string]*Position, error) {
	cached, expired, err := cacher.Get()
	if err != nil {
		return nil, err
	}
	if expired || cached == nil {
		return make(map[string]*Position), nil
	}
	return cached, nil
}

// Lookup returns the stored position of uri.
func Lookup(uri string) (mo.Option[*Position], error) {
	saved, err := Get()
	if err != nil {
		return mo.None[*Position](), err
	}

	if p, ok := saved[Key(uri)]; ok {
		return mo.Some(p), nil
	}
	return mo.None[*Position](), nil
}

// Save records the position reached in uri. Positions without a known
// duration are not worth resuming and are skipped.
func Save(uri string, timePos, duration float64) error {
	if duration <= 0 || timePos < 0 {
		return nil
	}

	saved, err := Get()
	if err != nil {
		return err
	}

	k := Key(uri)
	saved[k] = &Position{
		URI:       k,
		TimePos:   timePos,
		Duration:  duration,
		UpdatedAt: time.Now(),
	}

	return cacher.Set(saved)
}

// Remove deletes the position of uri.
func Remove(uri string) error {
	saved, err := Get()
	if err != nil {
		return err
	}

	delete(saved, Key(uri))
	return cacher.Set(saved)
}

// ResumeAt returns where uri should start, if anywhere.
func ResumeAt(uri string) (float64, bool, error) {
	found, err := Lookup(uri)
	if err != nil {
		return 0, false, err
	}

	p, ok := found.Get()
	if !ok || !p.Resumable() {
		return 0, false, nil
	}
	return p.TimePos, true, nil
}

// Key normalizes uri: local paths become absolute, anything with a scheme
// is kept verbatim.
func Key(uri string) string {
	if strings.Contains(uri, "://") {
		return uri
	}
	if abs, err := filepath.Abs(uri); err == nil {
		return abs
	}
	return uri
}
