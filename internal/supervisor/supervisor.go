// Package supervisor launches child executables with encoded named arguments
// and tracks their run state without blocking the caller.
package supervisor

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/loykin/launchr/internal/history"
	"github.com/loykin/launchr/internal/metrics"
)

// Supervisor owns the shared machinery behind handles: logging, history
// export and the context exit watchers run under.
type Supervisor struct {
	log  *slog.Logger
	poll time.Duration

	hist    *history.Fanout
	sinks   []history.Sink
	ownHist bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu        sync.Mutex // guards closed and wg.Add against Close
	closed    bool
	closeOnce sync.Once
}

type Option func(*Supervisor)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Supervisor) {
		if l != nil {
			s.log = l
		}
	}
}

// WithHistory exports state transitions to the given sinks.
func WithHistory(sinks ...history.Sink) Option {
	return func(s *Supervisor) { s.sinks = append(s.sinks, sinks...) }
}

// WithFanout publishes into an existing fanout. The caller keeps ownership.
func WithFanout(f *history.Fanout) Option {
	return func(s *Supervisor) { s.hist = f }
}

// WithPollInterval sets the default exit watcher tick for handles whose
// config leaves it unset.
func WithPollInterval(d time.Duration) Option {
	return func(s *Supervisor) {
		if d > 0 {
			s.poll = d
		}
	}
}

// WithContext sets the parent context of every exit watcher.
func WithContext(ctx context.Context) Option {
	return func(s *Supervisor) {
		if ctx != nil {
			s.ctx = ctx
		}
	}
}

func New(opts ...Option) *Supervisor {
	s := &Supervisor{
		log:  slog.Default(),
		poll: DefaultPollInterval,
		ctx:  context.Background(),
	}
	for _, o := range opts {
		o(s)
	}
	s.ctx, s.cancel = context.WithCancel(s.ctx)
	if s.hist == nil && len(s.sinks) > 0 {
		s.hist = history.NewFanout(s.log, s.sinks...)
		s.ownHist = true
	}
	return s
}

// Close stops every exit watcher without touching handle state, then
// flushes history. Children keep running. Later launches fail with ErrClosed.
func (s *Supervisor) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()
		s.cancel()
		s.wg.Wait()
		if s.ownHist {
			err = s.hist.Close()
		}
	})
	return err
}

// reserveWatcher accounts for one exit watcher. It fails once Close began so
// no child is started that nothing would reap.
func (s *Supervisor) reserveWatcher() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.wg.Add(1)
	return nil
}

// transition moves h to the given state and notifies exactly once. A
// destroyed handle changes state silently.
func (s *Supervisor) transition(h *Handle, to State) {
	h.mu.Lock()
	from := h.state
	h.state = to
	cb := h.cb
	destroyed := h.destroyed
	rec := h.record()
	h.mu.Unlock()

	rec.From, rec.To = from.String(), to.String()
	metrics.RecordStateTransition(rec.Name, rec.From, rec.To)
	metrics.SetCurrentState(rec.Name, rec.To, StateNames())
	s.publish(history.EventStateChange, rec)
	s.log.Debug("state changed", "handle", rec.HandleID, "name", rec.Name, "from", rec.From, "to", rec.To)

	if !destroyed && cb.OnStateUpdate != nil {
		cb.OnStateUpdate(h, to)
	}
}

// fail reports a failed operation through the failure callback, the log,
// metrics and history.
func (s *Supervisor) fail(h *Handle, cb Callbacks, name string, err error) {
	s.log.Error("launch failed", "name", name, "error", err)
	metrics.IncLaunchFailure(name, failureReason(err))
	if h != nil {
		h.mu.Lock()
		rec := h.record()
		h.mu.Unlock()
		rec.Message = err.Error()
		s.publish(history.EventLaunchFailed, rec)
	}
	if cb.OnFailure != nil {
		cb.OnFailure(err.Error())
	}
}

func (s *Supervisor) publish(t history.EventType, rec history.Record) {
	if s.hist == nil {
		return
	}
	s.hist.Publish(history.Event{Type: t, OccurredAt: time.Now().UTC(), Record: rec})
}

// record builds a history record from h. Callers hold h.mu.
func (h *Handle) record() history.Record {
	return history.Record{
		HandleID:  h.id,
		Name:      h.name,
		Path:      h.path,
		PID:       h.pid,
		Arguments: h.arguments,
		ExitCode:  h.exitCode,
		ExitErr:   h.exitErr,
	}
}
