//go:build !windows

package process

import (
	"errors"
	"fmt"
	"syscall"
)

func (p *Process) watchPlatform() {}

// pollExit performs a non-blocking wait4 on the child. A reaped child is
// reported with its exit code (-1 when killed by a signal).
func (p *Process) pollExit() (bool, int, error) {
	if p.cmd == nil || p.cmd.Process == nil {
		return true, -1, errors.New("process not started")
	}
	var ws syscall.WaitStatus
	pid, err := syscall.Wait4(p.cmd.Process.Pid, &ws, syscall.WNOHANG, nil)
	if err != nil {
		if errors.Is(err, syscall.ECHILD) {
			// reaped elsewhere; nothing left to wait for
			return true, -1, err
		}
		return false, 0, nil
	}
	if pid == 0 {
		return false, 0, nil
	}
	switch {
	case ws.Exited():
		code := ws.ExitStatus()
		if code == 0 {
			return true, 0, nil
		}
		return true, code, fmt.Errorf("exit status %d", code)
	case ws.Signaled():
		return true, -1, fmt.Errorf("signal: %v", ws.Signal())
	default:
		return true, -1, fmt.Errorf("exit status: %v", ws)
	}
}
