// Package constant defines application-level identifiers.
package constant

const (
	// App is the canonical application identifier used for paths, env prefixes and CLI branding.
	App = "mpvkit"

	// Version is the current application semantic version string.
	Version = "0.3.0"
)

// Engine backends selectable through configuration.
const (
	BackendIPC    = "ipc"
	BackendLibmpv = "libmpv"
)
