// Package launchr launches child executables with ordered named arguments
// and tracks their run state. The child side decodes the same arguments
// with ReadKeys and ReadValues.
package launchr

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/loykin/launchr/internal/args"
	cfg "github.com/loykin/launchr/internal/config"
	"github.com/loykin/launchr/internal/history"
	"github.com/loykin/launchr/internal/history/factory"
	"github.com/loykin/launchr/internal/logger"
	"github.com/loykin/launchr/internal/metrics"
	iapi "github.com/loykin/launchr/internal/server"
	"github.com/loykin/launchr/internal/supervisor"
)

// Re-export core types for external consumers.
// These are aliases so conversions are zero-cost.

type Supervisor = supervisor.Supervisor

type Option = supervisor.Option

type Config = supervisor.Config

type Handle = supervisor.Handle

type Callbacks = supervisor.Callbacks

type State = supervisor.State

type Status = supervisor.Status

type Registry = supervisor.Registry

type LaunchError = supervisor.LaunchError

type LogConfig = logger.Config

type LogFileConfig = logger.FileConfig

type FileConfig = cfg.File

type HistorySink = history.Sink

type HistoryEvent = history.Event

type Diagnostic = args.Diagnostic

const (
	NotRunning = supervisor.NotRunning
	Updating   = supervisor.Updating
	Running    = supervisor.Running
)

var (
	ErrNilHandle      = supervisor.ErrNilHandle
	ErrNilConfig      = supervisor.ErrNilConfig
	ErrEmptyPath      = supervisor.ErrEmptyPath
	ErrNotFound       = supervisor.ErrNotFound
	ErrAlreadyRunning = supervisor.ErrAlreadyRunning
	ErrClosed         = supervisor.ErrClosed
)

func New(opts ...Option) *Supervisor { return supervisor.New(opts...) }

func NewRegistry() *Registry { return supervisor.NewRegistry() }

func WithLogger(l *slog.Logger) Option                   { return supervisor.WithLogger(l) }
func WithHistory(sinks ...HistorySink) Option            { return supervisor.WithHistory(sinks...) }
func WithPollInterval(d time.Duration) Option            { return supervisor.WithPollInterval(d) }
func ParseState(name string) (State, error)              { return supervisor.ParseState(name) }
func NewLogger(c LogConfig) (*slog.Logger, error)        { return logger.New(c) }
func NewHistorySink(dsn string) (HistorySink, error)     { return factory.NewSinkFromDSN(dsn) }
func LoadConfig(path string) (*FileConfig, error)        { return cfg.Load(path) }
func Encode(keys, values []string) string                { return args.Encode(keys, values) }
func DecodeKeys(argv []string) []string                  { return args.DecodeKeys(argv) }
func DecodeValues(argv []string) []string                { return args.DecodeValues(argv) }
func ReadKeys() []string                                 { return args.ReadKeys() }
func ReadValues() []string                               { return args.ReadValues() }
func SplitArguments(encoded string) []string             { return args.Split(encoded) }
func EncodeChecked(k, v []string) (string, []Diagnostic) { return args.EncodeChecked(k, v) }

// NewRouter returns the HTTP API over s and reg, mounted under basePath.
func NewRouter(s *Supervisor, reg *Registry, basePath string) *iapi.Router {
	return iapi.NewRouter(s, reg, basePath)
}

// NewHTTPServer starts an HTTP server exposing the API on addr.
func NewHTTPServer(addr, basePath string, s *Supervisor, reg *Registry) *http.Server {
	return iapi.NewServer(addr, iapi.NewRouter(s, reg, basePath))
}

// Metrics helpers (public facade)

func RegisterMetrics(r prometheus.Registerer) error { return metrics.Register(r) }
func RegisterMetricsDefault() error                 { return metrics.Register(prometheus.DefaultRegisterer) }

// ServeMetrics serves /metrics from the default registry on addr. It blocks
// until the server fails.
func ServeMetrics(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv.ListenAndServe()
}
