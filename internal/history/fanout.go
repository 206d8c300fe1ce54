package history

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"
)

const (
	defaultQueueSize   = 256
	defaultSendTimeout = 5 * time.Second
)

// Fanout delivers events to every sink from a single background goroutine so
// that slow sinks never block a state transition. Events keep their order.
// When the queue is full new events are dropped and logged.
type Fanout struct {
	sinks   []Sink
	logger  *slog.Logger
	timeout time.Duration

	mu     sync.Mutex
	closed bool
	queue  chan Event
	done   chan struct{}
}

// NewFanout starts the delivery goroutine. A nil logger uses slog.Default.
func NewFanout(logger *slog.Logger, sinks ...Sink) *Fanout {
	if logger == nil {
		logger = slog.Default()
	}
	f := &Fanout{
		sinks:   append([]Sink(nil), sinks...),
		logger:  logger,
		timeout: defaultSendTimeout,
		queue:   make(chan Event, defaultQueueSize),
		done:    make(chan struct{}),
	}
	go f.run()
	return f
}

// Publish enqueues e without blocking.
func (f *Fanout) Publish(e Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	select {
	case f.queue <- e:
	default:
		f.logger.Warn("history queue full, dropping event", "type", string(e.Type), "handle", e.Record.HandleID)
	}
}

// Send delivers e to all sinks synchronously and joins their errors.
func (f *Fanout) Send(ctx context.Context, e Event) error {
	var errs []error
	for _, s := range f.sinks {
		sctx, cancel := context.WithTimeout(ctx, f.timeout)
		err := s.Send(sctx, e)
		cancel()
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f *Fanout) run() {
	defer close(f.done)
	for e := range f.queue {
		if err := f.Send(context.Background(), e); err != nil {
			f.logger.Error("history sink send failed", "type", string(e.Type), "handle", e.Record.HandleID, "error", err)
		}
	}
}

// Close drains queued events and closes sinks that implement io.Closer.
func (f *Fanout) Close() error {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		<-f.done
		return nil
	}
	f.closed = true
	close(f.queue)
	f.mu.Unlock()
	<-f.done

	var errs []error
	for _, s := range f.sinks {
		if c, ok := s.(io.Closer); ok {
			errs = append(errs, c.Close())
		}
	}
	return errors.Join(errs...)
}
