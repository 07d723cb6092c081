package publish

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadyRunning indicates Run was called on a publisher that is
	// running or stopped.
	ErrAlreadyRunning = errors.New("publish: publisher already started")

	// ErrSinkPanic indicates a sink panicked.
	ErrSinkPanic = errors.New("publish: sink panicked")
)

// SinkPublishError reports a failed delivery to one sink.
type SinkPublishError struct {
	Sink string
	Err  error
}

func (e *SinkPublishError) Error() string {
	return fmt.Sprintf("publish: sink %q: %v", e.Sink, e.Err)
}

func (e *SinkPublishError) Unwrap() error {
	return e.Err
}
