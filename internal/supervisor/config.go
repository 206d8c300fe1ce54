package supervisor

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/loykin/launchr/internal/logger"
	"github.com/loykin/launchr/internal/process"
)

// DefaultPollInterval is the exit watcher tick used when a config leaves it unset.
const DefaultPollInterval = 10 * time.Millisecond

// Config describes which executable a handle launches and with which
// named arguments.
type Config struct {
	Path string
	// Keys are written without the leading delimiter. Keys and values pair up
	// by position; a length mismatch sends no arguments at all.
	ArgumentKeys   []string
	ArgumentValues []string
	Verbose        bool

	Name         string
	Output       logger.FileConfig
	PollInterval time.Duration
}

// clone copies c and fills defaults so the handle never shares slices with the caller.
func (c *Config) clone() *Config {
	cp := *c
	if c.ArgumentKeys != nil {
		cp.ArgumentKeys = append([]string{}, c.ArgumentKeys...)
	}
	if c.ArgumentValues != nil {
		cp.ArgumentValues = append([]string{}, c.ArgumentValues...)
	}
	if strings.TrimSpace(cp.Name) == "" && cp.Path != "" {
		cp.Name = strings.TrimSuffix(filepath.Base(cp.Path), filepath.Ext(cp.Path))
	}
	return &cp
}

// check validates the executable path.
func (c *Config) check() error {
	if c == nil {
		return ErrNilConfig
	}
	if c.Path == "" {
		return ErrEmptyPath
	}
	if !process.FileExists(c.Path) {
		return fmt.Errorf("%w: %s", ErrNotFound, c.Path)
	}
	return nil
}
