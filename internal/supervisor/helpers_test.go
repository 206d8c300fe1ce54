package supervisor

import (
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func requireUnix(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script children need a unix shell")
	}
}

// writeScript creates an executable shell script in dir.
func writeScript(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte("#!/bin/sh\n"+body+"\n"), 0o755))
	return p
}

// blockingChild writes its argv, one per line, to out and then waits until
// release exists.
func blockingChild(t *testing.T) (path, out, release string) {
	t.Helper()
	dir := t.TempDir()
	out = filepath.Join(dir, "argv.txt")
	release = filepath.Join(dir, "release")
	path = writeScript(t, dir, "child.sh",
		`for a in "$@"; do echo "$a" >> "`+out+`"; done
while [ ! -f "`+release+`" ]; do sleep 0.02; done`)
	return path, out, release
}

func releaseChild(t *testing.T, release string) {
	t.Helper()
	require.NoError(t, os.WriteFile(release, nil, 0o644))
}

func waitExited(t *testing.T, h *Handle, within time.Duration) {
	t.Helper()
	select {
	case <-h.Exited():
	case <-time.After(within):
		t.Fatalf("handle %s did not exit within %s", h.ID(), within)
	}
}

// recorder collects callback invocations from any goroutine.
type recorder struct {
	mu        sync.Mutex
	states    []State
	failures  []string
	successes int
	launched  int
}

func (r *recorder) callbacks() Callbacks {
	return Callbacks{
		OnSuccess: func(*Handle) {
			r.mu.Lock()
			r.successes++
			r.mu.Unlock()
		},
		OnFailure: func(msg string) {
			r.mu.Lock()
			r.failures = append(r.failures, msg)
			r.mu.Unlock()
		},
		OnStateUpdate: func(_ *Handle, s State) {
			r.mu.Lock()
			r.states = append(r.states, s)
			r.mu.Unlock()
		},
		OnLaunched: func(*Handle) {
			r.mu.Lock()
			r.launched++
			r.mu.Unlock()
		},
	}
}

func (r *recorder) snapshot() (states []State, failures []string, successes, launched int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]State(nil), r.states...), append([]string(nil), r.failures...), r.successes, r.launched
}
