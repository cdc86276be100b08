package engine

import "fmt"

// Error is an engine status code. Values match mpv_error.
type Error int

const (
	ErrEventQueueFull      Error = -1
	ErrNoMem               Error = -2
	ErrUninitialized       Error = -3
	ErrInvalidParameter    Error = -4
	ErrOptionNotFound      Error = -5
	ErrOptionFormat        Error = -6
	ErrOptionError         Error = -7
	ErrPropertyNotFound    Error = -8
	ErrPropertyFormat      Error = -9
	ErrPropertyUnavailable Error = -10
	ErrPropertyError       Error = -11
	ErrCommand             Error = -12
	ErrLoadingFailed       Error = -13
	ErrAOInitFailed        Error = -14
	ErrVOInitFailed        Error = -15
	ErrNothingToPlay       Error = -16
	ErrUnknownFormat       Error = -17
	ErrUnsupported         Error = -18
	ErrNotImplemented      Error = -19
	ErrGeneric             Error = -20
)

var errorMessages = map[Error]string{
	ErrEventQueueFull:      "event queue full",
	ErrNoMem:               "memory allocation failed",
	ErrUninitialized:       "core not initialized",
	ErrInvalidParameter:    "invalid parameter",
	ErrOptionNotFound:      "option not found",
	ErrOptionFormat:        "unsupported format for accessing option",
	ErrOptionError:         "error setting option",
	ErrPropertyNotFound:    "property not found",
	ErrPropertyFormat:      "unsupported format for accessing property",
	ErrPropertyUnavailable: "property unavailable",
	ErrPropertyError:       "error accessing property",
	ErrCommand:             "error running command",
	ErrLoadingFailed:       "loading failed",
	ErrAOInitFailed:        "audio output initialization failed",
	ErrVOInitFailed:        "video output initialization failed",
	ErrNothingToPlay:       "no audio or video data played",
	ErrUnknownFormat:       "unrecognized file format",
	ErrUnsupported:         "not supported",
	ErrNotImplemented:      "operation not implemented",
	ErrGeneric:             "something happened",
}

func (e Error) Error() string {
	if msg, ok := errorMessages[e]; ok {
		return msg
	}
	return fmt.Sprintf("unknown error %d", int(e))
}

// Check converts a raw status code into an error. Non-negative codes are success.
func Check(code int) error {
	if code >= 0 {
		return nil
	}
	return Error(code)
}

// ErrorByMessage maps a JSON-IPC error string back to its code.
// Unknown messages map to ErrGeneric.
func ErrorByMessage(msg string) error {
	if msg == "" || msg == "success" {
		return nil
	}
	for code, m := range errorMessages {
		if m == msg {
			return code
		}
	}
	return fmt.Errorf("%w: %s", ErrGeneric, msg)
}
