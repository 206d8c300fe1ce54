package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/loykin/launchr/internal/args"
	"github.com/loykin/launchr/internal/config"
	"github.com/loykin/launchr/internal/history"
	"github.com/loykin/launchr/internal/history/factory"
	"github.com/loykin/launchr/internal/logger"
	"github.com/loykin/launchr/internal/supervisor"
)

func createRunCommand(global *GlobalFlags) *cobra.Command {
	flags := &RunFlags{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Launch a child and wait for it to exit",
		Long: `Launch a child executable in this process, print its state changes
and block until it exits. The child is described either by flags or by a
[[launchers]] entry selected with --config and --name.

Examples:
  launchr run --path ./game --arg level=5 --arg playerName=Hero --verbose
  launchr run --config launchr.toml --name game`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runLaunch(ctx, cmd.OutOrStdout(), global, flags)
		},
	}
	cmd.Flags().StringVar(&flags.Name, "name", "", "launcher name (selects a [[launchers]] entry with --config)")
	cmd.Flags().StringVar(&flags.Path, "path", "", "executable to launch")
	cmd.Flags().StringArrayVar(&flags.Args, "arg", nil, "named argument key=value (repeatable, order kept)")
	cmd.Flags().BoolVar(&flags.Verbose, "verbose", false, "log launch details at debug level")
	cmd.Flags().DurationVar(&flags.PollInterval, "poll-interval", 0, "exit watcher tick (default 10ms)")
	cmd.Flags().StringVar(&flags.OutputDir, "output-dir", "", "capture child stdout/stderr into rotating files in this directory")
	return cmd
}

// runConfig builds the launch config from flags, or from the config file when
// --name is given without --path.
func runConfig(fc *config.File, flags *RunFlags) (supervisor.Config, error) {
	if flags.Path == "" {
		if flags.Name == "" {
			return supervisor.Config{}, errors.New("either --path or --name is required")
		}
		lc, ok := fc.Launcher(flags.Name)
		if !ok {
			return supervisor.Config{}, fmt.Errorf("launcher %q not found in config", flags.Name)
		}
		for _, c := range fc.SupervisorConfigs() {
			if c.Name == lc.Name {
				if flags.Verbose {
					c.Verbose = true
				}
				if flags.PollInterval > 0 {
					c.PollInterval = flags.PollInterval
				}
				return c, nil
			}
		}
	}
	keys, values, err := parseArgPairs(flags.Args)
	if err != nil {
		return supervisor.Config{}, err
	}
	c := supervisor.Config{
		Name:           flags.Name,
		Path:           flags.Path,
		ArgumentKeys:   keys,
		ArgumentValues: values,
		Verbose:        flags.Verbose,
		PollInterval:   flags.PollInterval,
	}
	if flags.OutputDir != "" {
		c.Output = logger.FileConfig{Dir: flags.OutputDir}
	}
	return c, nil
}

func runLaunch(ctx context.Context, out io.Writer, global *GlobalFlags, flags *RunFlags) error {
	fc, err := loadConfig(global.ConfigPath)
	if err != nil {
		return err
	}
	if flags.Verbose && global.LogLevel == "" {
		global.LogLevel = "debug"
	}
	log, err := newLogger(fc, global)
	if err != nil {
		return err
	}
	cfg, err := runConfig(fc, flags)
	if err != nil {
		return err
	}
	sinks, err := openSinks(fc.History.DSNs)
	if err != nil {
		return err
	}

	sup := supervisor.New(supervisor.WithLogger(log), supervisor.WithHistory(sinks...), supervisor.WithContext(ctx))
	defer func() { _ = sup.Close() }()

	cb := supervisor.Callbacks{
		OnStateUpdate: func(_ *supervisor.Handle, s supervisor.State) {
			_, _ = fmt.Fprintf(out, "state: %s\n", s)
		},
		OnFailure: func(msg string) {
			_, _ = fmt.Fprintf(out, "failure: %s\n", msg)
		},
	}
	h, err := sup.Create(&cfg, cb)
	if err != nil {
		return err
	}
	if err := sup.Launch(h); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(out, "launched %s pid=%d args=%q\n", h.Config().Path, h.Status().PID, h.Arguments())

	select {
	case <-h.Exited():
	case <-ctx.Done():
		return fmt.Errorf("interrupted while %s was running", cfg.Path)
	}
	st := h.Status()
	if st.ExitCode != 0 {
		return fmt.Errorf("child exited with code %d", st.ExitCode)
	}
	return nil
}

func openSinks(dsns []string) ([]history.Sink, error) {
	sinks := make([]history.Sink, 0, len(dsns))
	for _, dsn := range dsns {
		s, err := factory.NewSinkFromDSN(dsn)
		if err != nil {
			for _, opened := range sinks {
				if c, ok := opened.(io.Closer); ok {
					_ = c.Close()
				}
			}
			return nil, fmt.Errorf("history sink %q: %w", dsn, err)
		}
		sinks = append(sinks, s)
	}
	return sinks, nil
}

func createEncodeCommand() *cobra.Command {
	flags := &EncodeFlags{}
	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Print the argument string for key=value pairs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			keys, values, err := parseArgPairs(flags.Args)
			if err != nil {
				return err
			}
			encoded, diags := args.EncodeChecked(keys, values)
			for _, d := range diags {
				_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "warning:", d)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), encoded)
			return err
		},
	}
	cmd.Flags().StringArrayVar(&flags.Args, "arg", nil, "named argument key=value (repeatable, order kept)")
	return cmd
}

func createDecodeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "decode -- ARGV...",
		Short: "Decode an argv the way a child sees it",
		Long: `Decode an argv into keys and values. The first element is the program
name and is skipped, as in a child's own argument vector.

Example:
  launchr decode -- game -level 5 -playerName Hero`,
		RunE: func(cmd *cobra.Command, argv []string) error {
			return printJSON(cmd.OutOrStdout(), struct {
				Keys   []string `json:"keys"`
				Values []string `json:"values"`
			}{args.DecodeKeys(argv), args.DecodeValues(argv)})
		},
	}
}

// setupMetrics registers collectors and reports whether /metrics should be
// mounted on the API listener.
func setupMetrics(fc *config.File, log *slog.Logger) (mountOnAPI bool) {
	if !fc.Metrics.Enabled {
		return false
	}
	if err := registerDefaultMetrics(); err != nil {
		log.Warn("failed to register metrics", "error", err)
		return false
	}
	if fc.Metrics.Listen == "" || fc.Metrics.Listen == fc.Server.Listen {
		return true
	}
	go func() {
		if err := serveMetrics(fc.Metrics.Listen); err != nil {
			log.Error("metrics server error", "error", err)
		}
	}()
	return false
}

// waitTimeout bounds graceful HTTP shutdown.
const waitTimeout = 5 * time.Second

func absConfigDir(path string) string {
	if path == "" {
		return ""
	}
	if abs, err := filepath.Abs(filepath.Dir(path)); err == nil {
		return abs
	}
	return filepath.Dir(path)
}
