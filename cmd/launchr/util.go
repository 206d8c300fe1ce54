package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/loykin/launchr/internal/config"
	"github.com/loykin/launchr/internal/logger"
)

// parseArgPairs splits "key=value" flags at the first '='. A bare key has an
// empty value.
func parseArgPairs(pairs []string) (keys, values []string, err error) {
	keys = make([]string, 0, len(pairs))
	values = make([]string, 0, len(pairs))
	for _, p := range pairs {
		k, v, _ := strings.Cut(p, "=")
		if k == "" {
			return nil, nil, fmt.Errorf("invalid --arg %q: empty key", p)
		}
		keys = append(keys, k)
		values = append(values, v)
	}
	return keys, values, nil
}

// loadConfig reads path when given, otherwise returns defaults.
func loadConfig(path string) (*config.File, error) {
	fc, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}
	if err := fc.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return fc, nil
}

// newLogger applies command line overrides to the [log] section.
func newLogger(fc *config.File, g *GlobalFlags) (*slog.Logger, error) {
	lc := fc.LoggerConfig()
	if g.LogLevel != "" {
		lc.Level = g.LogLevel
	}
	if g.LogFormat != "" {
		lc.Format = g.LogFormat
	}
	return logger.New(lc)
}

func printJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}
