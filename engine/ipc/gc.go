package ipc

import (
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mpvkit/mpvkit/constant"
	"github.com/mpvkit/mpvkit/filesystem"
	"github.com/mpvkit/mpvkit/log"
	"github.com/spf13/afero"
)

// StaleAfter is the age after which an unanswered socket is removed.
const StaleAfter = 24 * time.Hour

// CollectSockets removes sockets in dir left behind by engine processes
// that did not exit cleanly. Sockets that still accept connections are
// kept regardless of age. It returns the number of removed sockets.
func CollectSockets(dir string, maxAge time.Duration) int {
	fs := filesystem.API()
	logger := log.With("ipc")

	var removed int
	_ = afero.Walk(fs, dir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}

		name := filepath.Base(path)
		if !strings.HasPrefix(name, constant.App+"-") || !strings.HasSuffix(name, ".sock") {
			return nil
		}

		if time.Since(info.ModTime()) < maxAge || listening(path) {
			return nil
		}

		if err := fs.Remove(path); err != nil {
			logger.WithError(err).WithField("socket", path).Warn("remove stale socket")
			return nil
		}
		removed++
		return nil
	})

	if removed > 0 {
		logger.WithField("count", removed).Debug("removed stale sockets")
	}
	return removed
}

func listening(path string) bool {
	conn, err := net.DialTimeout("unix", path, 100*time.Millisecond)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}
