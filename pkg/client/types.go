package client

import "time"

// Arg is one named argument, sent in order.
type Arg struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// CreateRequest describes a launcher to create on the daemon.
type CreateRequest struct {
	Name    string `json:"name,omitempty"`
	Path    string `json:"path"`
	Args    []Arg  `json:"args,omitempty"`
	Verbose bool   `json:"verbose,omitempty"`
	Launch  bool   `json:"launch,omitempty"`
}

// LauncherStatus mirrors the daemon's view of one handle.
type LauncherStatus struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Path        string    `json:"path"`
	State       string    `json:"state"`
	PID         int       `json:"pid,omitempty"`
	Arguments   string    `json:"arguments"`
	StartedAt   time.Time `json:"started_at,omitempty"`
	OSStartedAt time.Time `json:"os_started_at,omitempty"`
	ExitedAt    time.Time `json:"exited_at,omitempty"`
	ExitCode    int       `json:"exit_code"`
	ExitError   string    `json:"exit_error,omitempty"`
	Launches    int       `json:"launches"`
}

// Running reports whether the daemon saw the child running.
func (s LauncherStatus) Running() bool { return s.State == "running" }

type EncodeResult struct {
	Arguments   string   `json:"arguments"`
	Diagnostics []string `json:"diagnostics,omitempty"`
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error string `json:"error"`
}
