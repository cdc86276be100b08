package bridge

import (
	"errors"
	"fmt"
)

// Setup stages. A fatal stage leaves the bridge fully torn down.
var (
	ErrCreation           = errors.New("engine creation failed")
	ErrOptionSet          = errors.New("engine option rejected")
	ErrInit               = errors.New("engine initialization failed")
	ErrRenderInit         = errors.New("render context creation failed")
	ErrAlreadyInitialized = errors.New("engine already initialized")
)

// SetupError reports the stage that failed and the engine's cause.
// errors.Is matches both.
type SetupError struct {
	Stage error
	Err   error
}

func (e *SetupError) Error() string {
	if e.Err == nil {
		return e.Stage.Error()
	}
	return fmt.Sprintf("%s: %s", e.Stage, e.Err)
}

func (e *SetupError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Stage}
	}
	return []error{e.Stage, e.Err}
}
