package history

import "time"

// MaxAge is how long an untouched position is kept.
const MaxAge = 90 * 24 * time.Hour

// Prune forgets positions not updated within maxAge and returns how many
// were dropped.
func Prune(maxAge time.Duration) (int, error) {
	saved, err := Get()
	if err != nil {
		return 0, err
	}

	var pruned int
	for k, p := range saved {
		if p == nil || time.Since(p.UpdatedAt) > maxAge {
			delete(saved, k)
			pruned++
		}
	}

	if pruned == 0 {
		return 0, nil
	}
	return pruned, cacher.Set(saved)
}
