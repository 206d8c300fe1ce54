// Package history exports run-state transitions of supervised children to
// external analytics systems. Sinks are append-only; nothing is read back.
package history

import (
	"context"
	"time"
)

// EventType defines the kind of lifecycle event.
type EventType string

const (
	EventStateChange  EventType = "state_change"
	EventLaunchFailed EventType = "launch_failed"
)

// Record is the payload of an event.
type Record struct {
	HandleID  string `json:"handle_id"`
	Name      string `json:"name"`
	Path      string `json:"path"`
	PID       int    `json:"pid"`
	From      string `json:"from,omitempty"`
	To        string `json:"to,omitempty"`
	Arguments string `json:"arguments"`
	ExitCode  int    `json:"exit_code"`
	ExitErr   string `json:"exit_error,omitempty"`
	Message   string `json:"message,omitempty"`
}

// Event represents a lifecycle event to be exported to external systems.
type Event struct {
	Type       EventType `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	Record     Record    `json:"record"`
}

// Sink is a destination for history events.
// Implementations must be safe for concurrent use.
type Sink interface {
	Send(ctx context.Context, e Event) error
}
