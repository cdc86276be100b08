// Package engine describes the command/property interface of the external
// playback engine (mpv) as a set of Go interfaces.
//
// The shape follows libmpv's client API: a handle is created, configured with
// string options, initialized, driven with commands and property writes, and
// polled for events. Callbacks that libmpv invokes with an opaque context
// pointer are modelled as plain Go closures.
package engine

import "time"

// Client is a single engine instance, the equivalent of an mpv_handle.
type Client interface {
	// SetOptionString sets an option before (or after) initialization.
	SetOptionString(name, value string) error

	// ObserveProperty subscribes to changes of the named property.
	// Change notifications carry their payload encoded in format.
	ObserveProperty(replyID uint64, name string, format Format) error

	// Initialize starts the engine core.
	Initialize() error

	// Command runs a command synchronously. args[0] is the command name.
	Command(args ...string) error

	// SetPropertyString writes a property using its string representation.
	SetPropertyString(name, value string) error

	// SetProperty writes a property from a binary payload encoded in format.
	SetProperty(name string, format Format, data []byte) error

	// WaitEvent returns the next queued event. A zero timeout polls and
	// returns an event with ID EventNone when the queue is empty.
	WaitEvent(timeout time.Duration) Event

	// SetWakeupCallback registers cb to be invoked, from an arbitrary
	// goroutine or thread, whenever a new event is pending.
	SetWakeupCallback(cb func())

	// CreateRenderContext binds a render context to this client.
	// params must be terminated by a ParamInvalid sentinel.
	CreateRenderContext(params []RenderParam) (RenderContext, error)

	// TerminateDestroy shuts the core down and releases the handle.
	TerminateDestroy()
}

// RenderContext is a GPU rendering session bound to a Client.
type RenderContext interface {
	// SetUpdateCallback registers cb to be invoked, from an engine thread,
	// whenever a new frame is ready.
	SetUpdateCallback(cb func())

	// Render draws one frame. params must be terminated by ParamInvalid.
	Render(params []RenderParam) error

	// Free releases the context. It must run before the owning client's
	// TerminateDestroy.
	Free()
}

// Factory allocates a new, uninitialized Client.
type Factory func() (Client, error)
