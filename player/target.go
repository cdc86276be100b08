package player

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/samber/lo"
)

var ErrEmptyTarget = errors.New("empty media target")

// schemes the engine is allowed to open.
var schemes = []string{"http", "https", "file", "rtsp", "rtmp", "udp", "ytdl"}

// Target validates a media target before it reaches the engine's loadfile
// command. Local paths become absolute.
func Target(link string) (string, error) {
	l := strings.TrimSpace(link)
	if l == "" {
		return "", ErrEmptyTarget
	}

	if strings.ContainsAny(l, "\x00\n\r") {
		return "", fmt.Errorf("invalid control characters in %q", l)
	}

	// loadfile would parse it as an option
	if strings.HasPrefix(l, "-") {
		return "", fmt.Errorf("target must not start with '-': %s", l)
	}

	if strings.Contains(l, "://") {
		u, err := url.Parse(l)
		if err != nil {
			return "", fmt.Errorf("invalid url: %w", err)
		}
		if !lo.Contains(schemes, strings.ToLower(u.Scheme)) {
			return "", fmt.Errorf("unsupported url scheme: %s", u.Scheme)
		}
		return l, nil
	}

	abs, err := filepath.Abs(l)
	if err != nil {
		return "", err
	}
	return abs, nil
}
