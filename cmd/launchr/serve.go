package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/loykin/launchr/internal/metrics"
	"github.com/loykin/launchr/internal/server"
	"github.com/loykin/launchr/internal/supervisor"
)

func createServeCommand(global *GlobalFlags) *cobra.Command {
	var listen string
	cmd := &cobra.Command{
		Use:   "serve [config.toml]",
		Short: "Start the launchr daemon",
		Long: `Start the HTTP API. Launchers from the config file are created at
startup and the ones marked autolaunch are launched.

Examples:
  launchr serve --config launchr.toml
  launchr serve launchr.toml --listen 127.0.0.1:9000`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, argv []string) error {
			path := global.ConfigPath
			if len(argv) > 0 {
				path = argv[0]
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cmd, global, path, listen)
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "API listen address (overrides [server].listen)")
	return cmd
}

func runServe(ctx context.Context, cmd *cobra.Command, global *GlobalFlags, path, listen string) error {
	if path == "" {
		return fmt.Errorf("config file required for serve command. Use --config=launchr.toml or provide as argument")
	}
	fc, err := loadConfig(path)
	if err != nil {
		return err
	}
	if listen != "" {
		fc.Server.Listen = listen
	}
	if fc.Server.Listen == "" {
		fc.Server.Listen = ":8080"
	}
	log, err := newLogger(fc, global)
	if err != nil {
		return err
	}
	sinks, err := openSinks(fc.History.DSNs)
	if err != nil {
		return err
	}

	sup := supervisor.New(supervisor.WithLogger(log), supervisor.WithHistory(sinks...))
	defer func() { _ = sup.Close() }()
	reg := supervisor.NewRegistry()

	base := absConfigDir(path)
	for _, c := range fc.SupervisorConfigs() {
		if !filepath.IsAbs(c.Path) && base != "" {
			c.Path = filepath.Join(base, c.Path)
		}
		lc, _ := fc.Launcher(c.Name)
		h, err := sup.Create(&c, supervisor.Callbacks{})
		if err != nil {
			log.Error("skipping launcher", "name", c.Name, "error", err)
			continue
		}
		reg.Add(h)
		if lc.AutoLaunch {
			if err := sup.Launch(h); err != nil {
				log.Error("autolaunch failed", "name", c.Name, "error", err)
			}
		}
	}

	mux := http.NewServeMux()
	if setupMetrics(fc, log) {
		mux.Handle("/metrics", metrics.Handler())
	}
	mux.Handle("/", server.NewRouter(sup, reg, fc.Server.BasePath).Handler())

	ln, err := net.Listen("tcp", fc.Server.Listen)
	if err != nil {
		return fmt.Errorf("listen %s: %w", fc.Server.Listen, err)
	}
	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Starting launchr HTTP server on %s%s\n", ln.Addr(), fc.Server.BasePath)
	log.Info("serving", "addr", ln.Addr().String(), "launchers", reg.Len())

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Shutting down...")
	sctx, cancel := context.WithTimeout(context.Background(), waitTimeout)
	defer cancel()
	return srv.Shutdown(sctx)
}

func registerDefaultMetrics() error { return metrics.Register(prometheus.DefaultRegisterer) }

func serveMetrics(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return srv.ListenAndServe()
}
