package process

import "time"

// Status is a point-in-time view of one started child.
type Status struct {
	Name        string    `json:"name"`
	PID         int       `json:"pid"`
	StartedAt   time.Time `json:"started_at"`
	OSStartedAt time.Time `json:"os_started_at,omitempty"` // as reported by the OS, second precision
	Exited      bool      `json:"exited"`
	ExitedAt    time.Time `json:"exited_at,omitempty"`
	ExitCode    int       `json:"exit_code"`
	ExitErr     error     `json:"-"`
	ExitError   string    `json:"exit_error,omitempty"`
}
