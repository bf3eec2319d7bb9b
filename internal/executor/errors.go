package executor

import (
	"errors"
	"fmt"
)

// ErrEmptyResponse is returned when a non-entry stage gets no text back from the backend.
var ErrEmptyResponse = errors.New("backend returned an empty response")

// BackendError is a failed stage invocation. It ends the run.
type BackendError struct {
	Stage string
	Err   error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}
