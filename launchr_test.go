package launchr

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	enc := Encode([]string{"level", "playerName"}, []string{"5", "Hero"})
	if enc != "-level 5 -playerName Hero" {
		t.Fatalf("unexpected encoding %q", enc)
	}
	argv := append([]string{"game"}, SplitArguments(enc)...)
	keys, values := DecodeKeys(argv), DecodeValues(argv)
	if len(keys) != 2 || keys[0] != "-level" || keys[1] != "-playerName" {
		t.Fatalf("keys = %v", keys)
	}
	if len(values) != 2 || values[0] != "5" || values[1] != "Hero" {
		t.Fatalf("values = %v", values)
	}
	if _, diags := EncodeChecked([]string{"-bad"}, []string{"x"}); len(diags) != 1 {
		t.Fatalf("expected a diagnostic for a prefixed key")
	}
}

func TestFacadeLaunch(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script children need a unix shell")
	}
	path := filepath.Join(t.TempDir(), "child.sh")
	if err := os.WriteFile(path, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	s := New(WithPollInterval(5 * time.Millisecond))
	defer func() { _ = s.Close() }()

	if _, err := s.Create(&Config{Path: path + ".missing"}, Callbacks{}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	h, err := s.Create(&Config{Path: path}, Callbacks{})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.Launch(h); err != nil {
		t.Fatalf("launch: %v", err)
	}
	select {
	case <-h.Exited():
	case <-time.After(5 * time.Second):
		t.Fatalf("child did not exit")
	}
	if h.State() != NotRunning || h.Process() != nil {
		t.Fatalf("unexpected final state %s", h.State())
	}
}

func TestParseStateFacade(t *testing.T) {
	st, err := ParseState("running")
	if err != nil || st != Running {
		t.Fatalf("ParseState = %v, %v", st, err)
	}
}

func TestRegisterMetrics(t *testing.T) {
	if err := RegisterMetrics(prometheus.NewRegistry()); err != nil {
		t.Fatalf("register: %v", err)
	}
}

func TestNewHistorySink(t *testing.T) {
	sink, err := NewHistorySink("sqlite://:memory:")
	if err != nil {
		t.Fatalf("sink: %v", err)
	}
	if c, ok := sink.(interface{ Close() error }); ok {
		_ = c.Close()
	}
}
