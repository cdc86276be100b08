//go:build !sdl2

package window

// Open always fails without the sdl2 build tag.
func Open(Config) (Window, error) {
	return nil, ErrUnavailable
}
