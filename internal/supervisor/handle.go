package supervisor

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/loykin/launchr/internal/process"
)

// Callbacks receive handle lifecycle notifications. Every field is optional.
// They run on the goroutine that caused the event and must not block for long.
type Callbacks struct {
	OnSuccess     func(h *Handle)
	OnFailure     func(msg string)
	OnStateUpdate func(h *Handle, s State)
	OnLaunched    func(h *Handle)
}

// Handle owns one child executable across launches.
type Handle struct {
	id   string
	name string
	path string

	mu        sync.Mutex
	cfg       *Config
	cb        Callbacks
	state     State
	proc      *process.Process
	arguments string
	exited    chan struct{}
	destroyed bool
	launching bool

	pid         int
	startedAt   time.Time
	osStartedAt time.Time
	exitedAt    time.Time
	exitCode    int
	exitErr     string
	launches    int
}

// Status is a point-in-time view of a handle.
type Status struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Path        string    `json:"path"`
	State       State     `json:"state"`
	PID         int       `json:"pid,omitempty"`
	Arguments   string    `json:"arguments"`
	StartedAt   time.Time `json:"started_at,omitempty"`
	OSStartedAt time.Time `json:"os_started_at,omitempty"`
	ExitedAt    time.Time `json:"exited_at,omitempty"`
	ExitCode    int       `json:"exit_code"`
	ExitError   string    `json:"exit_error,omitempty"`
	Launches    int       `json:"launches"`
	Destroyed   bool      `json:"destroyed,omitempty"`
}

func newHandle(cfg *Config, cb Callbacks) *Handle {
	done := make(chan struct{})
	close(done)
	return &Handle{
		id:     uuid.NewString(),
		name:   cfg.Name,
		path:   cfg.Path,
		cfg:    cfg,
		cb:     cb,
		state:  NotRunning,
		exited: done,
	}
}

func (h *Handle) ID() string { return h.id }

// Config returns a copy of the launch config. It is the zero Config after Destroy.
func (h *Handle) Config() Config {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cfg == nil {
		return Config{}
	}
	return *h.cfg.clone()
}

func (h *Handle) State() State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// Process returns the running child, or nil when nothing is running.
func (h *Handle) Process() *process.Process {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.proc
}

// Arguments returns the argument string sent on the last launch.
func (h *Handle) Arguments() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.arguments
}

// Exited is closed when the current run ends. Before the first launch it is
// already closed.
func (h *Handle) Exited() <-chan struct{} {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.exited
}

func (h *Handle) Status() Status {
	h.mu.Lock()
	defer h.mu.Unlock()
	st := Status{
		ID:          h.id,
		Name:        h.name,
		Path:        h.path,
		State:       h.state,
		PID:         h.pid,
		Arguments:   h.arguments,
		StartedAt:   h.startedAt,
		OSStartedAt: h.osStartedAt,
		ExitedAt:    h.exitedAt,
		ExitCode:    h.exitCode,
		ExitError:   h.exitErr,
		Launches:    h.launches,
		Destroyed:   h.destroyed,
	}
	return st
}

func (h *Handle) callbacks() Callbacks {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cb
}
