// Package main is the entry point of mpvkit.
package main

import (
	"runtime"

	"github.com/mpvkit/mpvkit/cmd"
	"github.com/mpvkit/mpvkit/config"
	"github.com/mpvkit/mpvkit/engine/ipc"
	"github.com/mpvkit/mpvkit/history"
	"github.com/mpvkit/mpvkit/log"
	"github.com/mpvkit/mpvkit/where"
	"github.com/samber/lo"
)

func init() {
	// windowing systems require the GL context on the main thread, which
	// runs the render queue
	runtime.LockOSThread()
}

func main() {
	lo.Must0(config.Setup())
	lo.Must0(log.Setup())

	// leftovers of crashed sessions
	go ipc.CollectSockets(where.Sockets(), ipc.StaleAfter)
	go func() {
		if _, err := history.Prune(history.MaxAge); err != nil {
			log.With("history").WithError(err).Warn("prune")
		}
	}()

	cmd.Execute()
}
