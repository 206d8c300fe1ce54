// Package process is the thin OS adapter used by the supervisor: it starts an
// executable, answers the non-blocking "has it exited?" question and releases
// the OS resources once the child is gone.
package process

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/loykin/launchr/internal/logger"
)

// DefaultWaitDelay bounds how long Release waits for captured output after the
// child exited. Descendants that inherited stdout/stderr can hold the pipes open
// indefinitely.
const DefaultWaitDelay = 200 * time.Millisecond

// Options describes a single start of an executable.
type Options struct {
	Name      string            // label used for output file names
	Path      string            // executable
	Args      []string          // argv tail, without the executable
	Output    logger.FileConfig // optional stdout/stderr capture
	WaitDelay time.Duration     // output drain bound in Release; DefaultWaitDelay when zero
}

type Process struct {
	mu        sync.Mutex
	name      string
	cmd       *exec.Cmd
	status    Status
	released  bool
	outCloser io.WriteCloser
	errCloser io.WriteCloser
	readers   []*os.File
	copies    sync.WaitGroup
	waitDelay time.Duration
	waitDone  chan struct{} // used by platforms without a non-blocking wait
}

// FileExists reports whether path names an existing non-directory file.
func FileExists(path string) bool {
	if path == "" {
		return false
	}
	fi, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !fi.IsDir()
}

// Start launches o.Path with o.Args. Without output capture the child's stdio
// is bound to the null device.
func Start(o Options) (*Process, error) {
	if o.Path == "" {
		return nil, errors.New("empty executable path")
	}
	// #nosec G204 -- launching the configured executable is the point
	cmd := exec.Command(o.Path, o.Args...)
	p := &Process{name: o.Name, cmd: cmd, waitDelay: o.WaitDelay}
	if p.waitDelay <= 0 {
		p.waitDelay = DefaultWaitDelay
	}

	var parentEnds []*os.File
	if o.Output.Enabled() {
		outW, errW, err := o.Output.ProcessWriters(o.Name)
		if err != nil {
			return nil, fmt.Errorf("prepare output writers: %w", err)
		}
		p.outCloser, p.errCloser = outW, errW
		if outW != nil {
			w, err := p.pipeTo(outW)
			if err != nil {
				_ = p.closeWriters()
				return nil, err
			}
			cmd.Stdout = w
			parentEnds = append(parentEnds, w)
		}
		if errW != nil {
			w, err := p.pipeTo(errW)
			if err != nil {
				closeAll(parentEnds)
				p.copies.Wait()
				_ = p.closeWriters()
				return nil, err
			}
			cmd.Stderr = w
			parentEnds = append(parentEnds, w)
		}
	}

	err := cmd.Start()
	// The child holds its own copies of the write ends; ours must go so the
	// copy goroutines see EOF when the child exits.
	closeAll(parentEnds)
	if err != nil {
		p.copies.Wait()
		_ = p.closeWriters()
		return nil, err
	}

	pid := cmd.Process.Pid
	p.status = Status{
		Name:        o.Name,
		PID:         pid,
		StartedAt:   time.Now(),
		OSStartedAt: osStartTime(pid),
	}
	p.watchPlatform()
	return p, nil
}

// pipeTo returns the write end of a pipe whose read end is copied into dst.
func (p *Process) pipeTo(dst io.Writer) (*os.File, error) {
	r, w, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("create output pipe: %w", err)
	}
	p.readers = append(p.readers, r)
	p.copies.Add(1)
	go func() {
		defer p.copies.Done()
		_, _ = io.Copy(dst, r)
		_ = r.Close()
	}()
	return w, nil
}

func closeAll(fs []*os.File) {
	for _, f := range fs {
		_ = f.Close()
	}
}

func (p *Process) closeWriters() error {
	var errs []error
	if p.outCloser != nil {
		errs = append(errs, p.outCloser.Close())
		p.outCloser = nil
	}
	if p.errCloser != nil {
		errs = append(errs, p.errCloser.Close())
		p.errCloser = nil
	}
	return errors.Join(errs...)
}

// PID returns the OS process id.
func (p *Process) PID() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status.PID
}

// HasExited polls the child without blocking. Once it reports true it keeps
// doing so.
func (p *Process) HasExited() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.status.Exited {
		return true
	}
	exited, code, err := p.pollExit()
	if !exited {
		return false
	}
	p.status.Exited = true
	p.status.ExitedAt = time.Now()
	p.status.ExitCode = code
	p.status.ExitErr = err
	if err != nil {
		p.status.ExitError = err.Error()
	}
	return true
}

// Release frees the OS handle and closes captured output. It must only be
// called after HasExited reported true; further calls are no-ops. Output still
// buffered after the wait delay is discarded. The returned error comes from
// closing the output files.
func (p *Process) Release() error {
	p.mu.Lock()
	if p.released {
		p.mu.Unlock()
		return nil
	}
	p.released = true
	cmd := p.cmd
	readers := p.readers
	p.mu.Unlock()

	p.drain(readers)

	if cmd != nil && cmd.Process != nil {
		// already waited on some platforms; the handle is gone either way
		_ = cmd.Process.Release()
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closeWriters()
}

// drain waits for the copy goroutines to reach EOF. After waitDelay the read
// ends are closed, which ends any copy still blocked on a pipe a descendant
// keeps open.
func (p *Process) drain(readers []*os.File) {
	done := make(chan struct{})
	go func() {
		p.copies.Wait()
		close(done)
	}()
	t := time.NewTimer(p.waitDelay)
	defer t.Stop()
	select {
	case <-done:
	case <-t.C:
		closeAll(readers)
		<-done
	}
}

// Snapshot returns a copy of the current status.
func (p *Process) Snapshot() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}
