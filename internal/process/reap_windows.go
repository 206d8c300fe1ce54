//go:build windows

package process

import (
	"errors"
	"os/exec"
)

// Windows has no non-blocking wait; a goroutine parks in Wait and the poll
// only inspects its done channel.
func (p *Process) watchPlatform() {
	p.waitDone = make(chan struct{})
	cmd := p.cmd
	go func() {
		_ = cmd.Wait()
		close(p.waitDone)
	}()
}

func (p *Process) pollExit() (bool, int, error) {
	select {
	case <-p.waitDone:
	default:
		return false, 0, nil
	}
	st := p.cmd.ProcessState
	if st == nil {
		return true, -1, errors.New("process state unavailable")
	}
	if st.Success() {
		return true, 0, nil
	}
	return true, st.ExitCode(), &exec.ExitError{ProcessState: st}
}
