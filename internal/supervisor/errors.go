package supervisor

import (
	"errors"
	"fmt"
)

var (
	ErrNilHandle      = errors.New("supervisor: nil handle")
	ErrNilConfig      = errors.New("supervisor: nil launch config")
	ErrEmptyPath      = errors.New("supervisor: empty executable path")
	ErrNotFound       = errors.New("supervisor: executable not found")
	ErrAlreadyRunning = errors.New("supervisor: already running")
	ErrClosed         = errors.New("supervisor: closed")
)

// LaunchError wraps a failure reported by the operating system while
// starting the child.
type LaunchError struct {
	Path string
	Err  error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("launch %s: %v", e.Path, e.Err)
}

func (e *LaunchError) Unwrap() error { return e.Err }

// failureReason maps an error to the reason label used by metrics.
func failureReason(err error) string {
	switch {
	case errors.Is(err, ErrNilConfig):
		return "nil_config"
	case errors.Is(err, ErrEmptyPath):
		return "empty_path"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrAlreadyRunning):
		return "already_running"
	case errors.Is(err, ErrClosed):
		return "closed"
	}
	var le *LaunchError
	if errors.As(err, &le) {
		return "start"
	}
	return "other"
}
