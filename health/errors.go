package health

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateName indicates a probe name is already registered.
	ErrDuplicateName = errors.New("health: duplicate probe name")

	// ErrRegistrySealed indicates registration was attempted after startup.
	ErrRegistrySealed = errors.New("health: registry is sealed")

	// ErrNilProbe indicates a nil probe was registered.
	ErrNilProbe = errors.New("health: probe is nil")

	// ErrEmptyName indicates a probe with a blank name was registered.
	ErrEmptyName = errors.New("health: probe name is required")

	// ErrProbeTimeout indicates a probe did not finish before the run deadline.
	ErrProbeTimeout = errors.New("health: probe timed out")

	// ErrProbePanic indicates a probe panicked.
	ErrProbePanic = errors.New("health: probe panicked")

	// ErrProbeExited indicates a probe ended its goroutine without returning.
	ErrProbeExited = errors.New("health: probe exited without returning")
)

// DuplicateNameError is returned by Registry.Register for a repeated name.
type DuplicateNameError struct {
	Name string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("health: probe %q is already registered", e.Name)
}

// Is matches ErrDuplicateName.
func (e *DuplicateNameError) Is(target error) bool {
	return target == ErrDuplicateName
}

// ProbeExecutionError reports a probe that terminated abnormally. Value is
// the recovered panic value, or nil when the probe called runtime.Goexit.
type ProbeExecutionError struct {
	Probe string
	Value any
}

func (e *ProbeExecutionError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("health: probe %q exited without returning", e.Probe)
	}
	return fmt.Sprintf("health: probe %q panicked: %v", e.Probe, e.Value)
}

// Unwrap returns the panic value when it is an error, ErrProbeExited for a
// Goexit, else ErrProbePanic.
func (e *ProbeExecutionError) Unwrap() error {
	if e.Value == nil {
		return ErrProbeExited
	}
	if err, ok := e.Value.(error); ok {
		return err
	}
	return ErrProbePanic
}
