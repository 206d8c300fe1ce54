package supervisor

import (
	"time"

	"github.com/loykin/launchr/internal/metrics"
	"github.com/loykin/launchr/internal/process"
)

// watch polls p once per tick until it exits or the supervisor closes.
func (s *Supervisor) watch(h *Handle, p *process.Process, exited chan struct{}, every time.Duration) {
	defer s.wg.Done()
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-s.ctx.Done():
			return
		case <-t.C:
			if p.HasExited() {
				s.finish(h, p, exited)
				return
			}
		}
	}
}

// finish returns h to NotRunning as soon as the child is reaped, then drains
// and closes captured output. Exited closes last so waiters see complete logs.
func (s *Supervisor) finish(h *Handle, p *process.Process, exited chan struct{}) {
	st := p.Snapshot()

	h.mu.Lock()
	if h.proc == p {
		h.proc = nil
	}
	h.exitedAt = st.ExitedAt
	h.exitCode = st.ExitCode
	h.exitErr = st.ExitError
	h.mu.Unlock()

	s.log.Info("child exited", "handle", h.id, "name", h.name, "pid", st.PID, "exit_code", st.ExitCode)
	metrics.ObserveExit(h.name, st.ExitedAt.Sub(st.StartedAt).Seconds())
	s.transition(h, NotRunning)

	if err := p.Release(); err != nil {
		s.log.Warn("release child output", "handle", h.id, "name", h.name, "error", err)
	}
	close(exited)
}
