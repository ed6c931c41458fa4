package dynamo

import "errors"

// Domain errors for simulation operations.
var (
	// ErrInvalidConfig indicates a configuration value outside its valid range.
	ErrInvalidConfig = errors.New("dynamo: invalid configuration")

	// ErrDuplicateBody indicates two bodies sharing one name.
	ErrDuplicateBody = errors.New("dynamo: duplicate body name")

	// ErrUnknownBody indicates a name that matches no body.
	ErrUnknownBody = errors.New("dynamo: unknown body")

	// ErrInvalidState indicates a position or velocity became NaN or Inf.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrRunning indicates a lifecycle call on a session that is already driven.
	ErrRunning = errors.New("dynamo: session already running")
)

// SimulationError wraps an error with simulation context.
type SimulationError struct {
	Step    int
	Time    float64
	Body    string
	Wrapped error
}

func (e *SimulationError) Error() string {
	if e.Body != "" {
		return e.Wrapped.Error() + ": body " + e.Body
	}
	return e.Wrapped.Error()
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
