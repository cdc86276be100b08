package engine

import "fmt"

// Format is the payload kind of a property value.
type Format int

// Values match mpv_format.
const (
	FormatNone   Format = 0
	FormatString Format = 1
	FormatFlag   Format = 3
	FormatInt64  Format = 4
	FormatDouble Format = 5
)

func (f Format) String() string {
	switch f {
	case FormatNone:
		return "none"
	case FormatString:
		return "string"
	case FormatFlag:
		return "flag"
	case FormatInt64:
		return "int64"
	case FormatDouble:
		return "double"
	default:
		return fmt.Sprintf("format(%d)", int(f))
	}
}

// EventID identifies the kind of an Event.
type EventID int

// Values match mpv_event_id.
const (
	EventNone           EventID = 0
	EventShutdown       EventID = 1
	EventLogMessage     EventID = 2
	EventStartFile      EventID = 6
	EventEndFile        EventID = 7
	EventFileLoaded     EventID = 8
	EventIdle           EventID = 11
	EventPropertyChange EventID = 22
)

var eventNames = map[EventID]string{
	EventNone:           "none",
	EventShutdown:       "shutdown",
	EventLogMessage:     "log-message",
	EventStartFile:      "start-file",
	EventEndFile:        "end-file",
	EventFileLoaded:     "file-loaded",
	EventIdle:           "idle",
	EventPropertyChange: "property-change",
}

func (id EventID) String() string {
	if name, ok := eventNames[id]; ok {
		return name
	}
	return fmt.Sprintf("event(%d)", int(id))
}

// EventByName resolves an event name as used by the JSON-IPC protocol.
func EventByName(name string) (EventID, bool) {
	for id, n := range eventNames {
		if n == name {
			return id, true
		}
	}
	return EventNone, false
}

// PropertyEvent is the payload of an EventPropertyChange.
// Data is nil when Format is FormatNone (property unavailable).
type PropertyEvent struct {
	Name   string
	Format Format
	Data   []byte
}

// Event is a single entry of the engine's event queue.
type Event struct {
	ID            EventID
	ReplyUserdata uint64
	Err           error
	Property      *PropertyEvent
}
