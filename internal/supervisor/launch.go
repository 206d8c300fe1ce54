package supervisor

import (
	"time"

	"github.com/loykin/launchr/internal/args"
	"github.com/loykin/launchr/internal/metrics"
	"github.com/loykin/launchr/internal/process"
)

// Launch starts the handle's executable with its encoded arguments and moves
// the handle to Running. Invalid input fails without side effects.
func (s *Supervisor) Launch(h *Handle) error {
	if h == nil {
		return ErrNilHandle
	}
	h.mu.Lock()
	cfg, cb, name := h.cfg, h.cb, h.name
	busy := h.state.busy() || h.launching
	if cfg != nil && !busy {
		h.launching = true
	}
	h.mu.Unlock()

	if cfg == nil {
		s.fail(h, cb, name, ErrNilConfig)
		return ErrNilConfig
	}
	if busy {
		s.fail(h, cb, name, ErrAlreadyRunning)
		return ErrAlreadyRunning
	}
	defer func() {
		h.mu.Lock()
		h.launching = false
		h.mu.Unlock()
	}()
	if err := cfg.check(); err != nil {
		s.fail(h, cb, name, err)
		return err
	}
	if err := s.reserveWatcher(); err != nil {
		s.fail(h, cb, name, err)
		return err
	}

	encoded, diags := args.EncodeChecked(cfg.ArgumentKeys, cfg.ArgumentValues)
	for _, d := range diags {
		s.log.Warn("argument rejected", "handle", h.id, "name", name, "index", d.Index, "key", d.Key, "reason", d.Message)
	}
	if cfg.Verbose {
		s.log.Debug("launching", "handle", h.id, "name", name, "path", cfg.Path, "args", encoded)
	}

	p, err := process.Start(process.Options{
		Name:   name,
		Path:   cfg.Path,
		Args:   args.Split(encoded),
		Output: cfg.Output,
	})
	if err != nil {
		s.wg.Done()
		lerr := &LaunchError{Path: cfg.Path, Err: err}
		s.fail(h, cb, name, lerr)
		return lerr
	}

	st := p.Snapshot()
	exited := make(chan struct{})
	h.mu.Lock()
	if !h.destroyed {
		h.proc = p
	}
	h.arguments = encoded
	h.exited = exited
	h.pid = st.PID
	h.startedAt = st.StartedAt
	h.osStartedAt = st.OSStartedAt
	h.exitedAt = time.Time{}
	h.exitCode = 0
	h.exitErr = ""
	h.launches++
	h.mu.Unlock()

	metrics.IncLaunch(name)
	s.transition(h, Running)
	if cb.OnLaunched != nil {
		cb.OnLaunched(h)
	}

	every := cfg.PollInterval
	if every <= 0 {
		every = s.poll
	}
	go s.watch(h, p, exited, every)
	return nil
}

// Destroy detaches h from its config, callbacks and process. The child is
// not killed; its watcher still reaps it but stops notifying. Destroy is
// idempotent and a nil handle is ignored.
func (s *Supervisor) Destroy(h *Handle) {
	if h == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.destroyed {
		return
	}
	h.destroyed = true
	h.proc = nil
	h.cfg = nil
	h.cb = Callbacks{}
	s.log.Debug("handle destroyed", "handle", h.id, "name", h.name)
}
